package wbxml

import (
	"errors"
	"fmt"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/wap"
	"firestige.xyz/wapdec/internal/core/wbxml/tokens"
)

// MaxVersion is the highest WBXML version byte understood (WBXML 1.3).
const MaxVersion = 0x03

// Header is the WBXML document preamble.
type Header struct {
	Version     byte
	PublicID    uint32 // 0 when the identifier is a string-table literal
	FormalID    string // Literal public identifier, or the registered one
	Charset     uint32 // IANA MIBenum, 0 when absent (WBXML 1.0)
	StringTable tokens.StringTable
	Size        int // Header length in bytes, string table included
}

// VersionString renders the version byte as "major.minor".
func (h Header) VersionString() string {
	return fmt.Sprintf("%d.%d", h.Version>>4+1, h.Version&0x0f)
}

// ReadHeader parses the WBXML header at off without emitting anything.
func ReadHeader(buf []byte, off int) (Header, error) {
	h, _, err := readHeader(buf, off, core.Discard)
	return h, err
}

type headerPos struct {
	publicID, publicIDLen int
	literalIndex          uint32
	literalErr            error
}

// readHeader parses and emits the header fields. The public identifier field is
// emitted once the string table is known, since a literal identifier indexes it.
func readHeader(buf []byte, off int, sink core.Sink) (Header, int, error) {
	var h Header
	start := off
	if off < 0 || off >= len(buf) {
		return h, 0, core.ErrNotWBXML
	}

	h.Version = buf[off]
	version := core.NewEnum("version", off, 1, uint64(h.Version), h.VersionString())
	if h.Version > MaxVersion {
		sink.Emit(version.WithErr(core.ErrUnsupportedVersion))
		return h, 1, fmt.Errorf("version byte 0x%02x: %w", h.Version, core.ErrUnsupportedVersion)
	}
	sink.Emit(version)
	off++

	var pos headerPos
	v, n, err := wap.ReadUintvar(buf, off)
	if err != nil && !isOversize(err) {
		return h, off - start, fmt.Errorf("public id: %w", err)
	}
	pos.publicID, pos.publicIDLen = off, n
	h.PublicID = v
	off += n
	if err != nil {
		h.PublicID = 1
		pos.literalErr = err
	} else if v == 0 {
		idx, n, err := wap.ReadUintvar(buf, off)
		if err != nil && !isOversize(err) {
			return h, off - start, fmt.Errorf("public id index: %w", err)
		}
		pos.literalIndex, pos.literalErr = idx, err
		pos.publicIDLen += n
		off += n
	}

	var charsetField core.Field
	if h.Version >= 0x01 {
		cs, n, err := wap.ReadUintvar(buf, off)
		if err != nil && !isOversize(err) {
			return h, off - start, fmt.Errorf("charset: %w", err)
		}
		charsetField = core.NewEnum("charset", off, n, uint64(cs), wap.CharsetName(cs))
		if err != nil {
			charsetField = charsetField.WithErr(err)
		} else {
			h.Charset = cs
		}
		off += n
	}

	stLen, n, err := wap.ReadUintvar(buf, off)
	if err != nil {
		emitPublicID(&h, pos, sink)
		if charsetField.Name != "" {
			sink.Emit(charsetField)
		}
		return h, off - start, fmt.Errorf("string table length: %w", err)
	}
	stOff := off
	off += n
	if err := need(buf, off, int(stLen)); err != nil {
		emitPublicID(&h, pos, sink)
		if charsetField.Name != "" {
			sink.Emit(charsetField)
		}
		return h, off - start, fmt.Errorf("string table of %d bytes: %w", stLen, err)
	}
	h.StringTable = tokens.StringTable(buf[off : off+int(stLen)])

	emitPublicID(&h, pos, sink)
	if charsetField.Name != "" {
		sink.Emit(charsetField)
	}
	emitStringTable(h.StringTable, stOff, n, sink)
	off += int(stLen)
	h.Size = off - start
	return h, h.Size, nil
}

func emitPublicID(h *Header, pos headerPos, sink core.Sink) {
	switch {
	case pos.literalErr != nil:
		sink.Emit(core.NewUint("public_id", pos.publicID, pos.publicIDLen, 0).WithErr(pos.literalErr))
	case h.PublicID == 0:
		id, err := h.StringTable.At(pos.literalIndex)
		if err != nil {
			sink.Emit(core.NewUint("public_id", pos.publicID, pos.publicIDLen, uint64(pos.literalIndex)).
				WithText(fmt.Sprintf("string table index %d", pos.literalIndex)).WithErr(err))
			return
		}
		h.FormalID = id
		sink.Emit(core.NewString("public_id", pos.publicID, pos.publicIDLen, id))
	default:
		h.FormalID = tokens.PublicIDName(h.PublicID)
		text := h.FormalID
		if text == "" {
			text = fmt.Sprintf("Unknown public identifier 0x%x", h.PublicID)
		}
		sink.Emit(core.NewEnum("public_id", pos.publicID, pos.publicIDLen, uint64(h.PublicID), text))
	}
}

func emitStringTable(st tokens.StringTable, off, lenBytes int, sink core.Sink) {
	sink.Emit(core.NewUint("string_table_length", off, lenBytes, uint64(len(st))))
	if len(st) == 0 {
		return
	}
	base := off + lenBytes
	g := sink.BeginGroup(core.NewGroup("string_table", base, fmt.Sprintf("%d bytes", len(st))))
	for i := 0; i < len(st); {
		s, _ := st.At(uint32(i))
		n := len(s) + 1
		if i+n > len(st) {
			n = len(st) - i
		}
		sink.Emit(core.NewString("string", base+i, n, s).WithText(fmt.Sprintf("[%d] %s", i, s)))
		i += n
	}
	sink.EndGroup(g, base+len(st))
}

func isOversize(err error) bool {
	return errors.Is(err, core.ErrOversizedVarint)
}

func need(buf []byte, off, n int) error {
	if off < 0 || n < 0 || off+n > len(buf) || off+n < off {
		return core.ErrTruncated
	}
	return nil
}
