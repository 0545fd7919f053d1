// Package mmse decodes the binary headers of MMS encapsulated PDUs (OMA-MMS-ENC).
//
// A PDU starts with X-Mms-Message-Type and carries a sequence of tagged headers up to
// Content-Type. Everything after Content-Type is the message body, which is handed to a
// BodyHandler or emitted as raw bytes.
package mmse

import (
	"fmt"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/wap"
)

// BodyHandler decodes the message body that follows the Content-Type header.
type BodyHandler interface {
	HandleBody(buf []byte, off int, ct wap.ContentType, sink core.Sink) (int, error)
}

// BodyHandlerFunc adapts a function to BodyHandler.
type BodyHandlerFunc func(buf []byte, off int, ct wap.ContentType, sink core.Sink) (int, error)

func (f BodyHandlerFunc) HandleBody(buf []byte, off int, ct wap.ContentType, sink core.Sink) (int, error) {
	return f(buf, off, ct, sink)
}

// Config controls one Decoder.
type Config struct {
	// Body receives the message body. When nil the body is emitted as a "message_body"
	// bytes field.
	Body BodyHandler
}

// Decoder decodes MMS PDUs. It holds only configuration and is safe for concurrent use.
type Decoder struct {
	cfg Config
}

func New(cfg Config) *Decoder {
	return &Decoder{cfg: cfg}
}

// Headers summarizes the headers most callers correlate on.
type Headers struct {
	MessageType     byte
	Version         byte
	TransactionID   string
	MessageID       string
	From            string
	To              []string
	Subject         string
	ContentLocation string

	// Next is the offset just after the Content-Type tag when AtContentType is set,
	// otherwise the end of the decoded headers.
	Next          int
	AtContentType bool
}

// VersionString renders the effective MMS version, "1.0" when none was declared.
func (h Headers) VersionString() string {
	if h.Version < Version10 {
		return wap.FormatVersion(Version10)
	}
	return wap.FormatVersion(h.Version)
}

// Decode decodes the PDU at off: headers, Content-Type and body. It returns the number of
// bytes consumed.
func (d *Decoder) Decode(buf []byte, off int, sink core.Sink) (int, error) {
	if sink == nil {
		sink = core.Discard
	}
	h, err := d.DecodeHeaders(buf, off, sink)
	if err != nil || !h.AtContentType {
		return h.Next - off, err
	}

	next, ct, err := wap.AddContentType(buf, h.Next, sink)
	if err != nil {
		if !core.IsFatal(err) {
			sink.Emit(core.NewBytes("content_type", h.Next, next-h.Next, buf[h.Next:next]).WithErr(err))
			return next - off, nil
		}
		return next - off, fmt.Errorf("Content-Type at offset %d: %w", h.Next-1, err)
	}
	if next >= len(buf) {
		return next - off, nil
	}

	if d.cfg.Body != nil {
		n, err := d.cfg.Body.HandleBody(buf, next, ct, sink)
		return next + n - off, err
	}
	sink.Emit(core.NewBytes("message_body", next, len(buf)-next, buf[next:]))
	return len(buf) - off, nil
}

// DecodeHeaders decodes the fixed header and the tagged headers at off. It stops at the
// Content-Type tag or at the end of buf.
func (d *Decoder) DecodeHeaders(buf []byte, off int, sink core.Sink) (Headers, error) {
	if sink == nil {
		sink = core.Discard
	}
	h := Headers{Version: DefaultVersion, Next: off}
	if off < 0 || off >= len(buf) {
		return h, fmt.Errorf("message type at offset %d: %w", off, core.ErrTruncated)
	}
	if buf[off] != TagMessageType {
		return h, fmt.Errorf("first octet 0x%02x: %w", buf[off], core.ErrNotMMSE)
	}
	if off+1 >= len(buf) {
		return h, fmt.Errorf("message type at offset %d: %w", off, core.ErrTruncated)
	}
	h.MessageType = buf[off+1]
	sink.Emit(core.NewEnum("message_type", off, 2, uint64(h.MessageType), MessageTypeName(h.MessageType)))

	pos := off + 2
	for pos < len(buf) {
		tag := buf[pos]
		if tag == TagContentType {
			h.Next = pos + 1
			h.AtContentType = true
			return h, nil
		}

		if tag&0x80 == 0 {
			n, err := literalHeader(buf, pos, sink)
			if err != nil {
				h.Next = pos
				return h, err
			}
			pos += n
			continue
		}

		def, ok := grammarFor(tag, h.Version)
		if !ok {
			def = headerDef{
				name:    fmt.Sprintf("header_0x%02x", tag),
				display: fmt.Sprintf("Unknown header 0x%02x", tag),
				grammar: generic{},
			}
		}
		f, n, err := def.grammar.DecodeValue(buf, pos+1)
		if err != nil {
			if core.IsFatal(err) {
				h.Next = pos
				return h, fmt.Errorf("%s at offset %d: %w", def.display, pos, err)
			}
			n = min(max(n, 1), len(buf)-pos-1)
			f = core.NewBytes("", pos+1, n, buf[pos+1:pos+1+n]).WithText("undecoded value").WithErr(err)
		}
		f.Name = def.name
		f.Start = pos
		f.Length = 1 + n
		core.EmitField(sink, f)
		h.record(tag, f, buf[pos+1])
		pos += 1 + n
	}
	h.Next = pos
	return h, nil
}

// record copies the correlation headers out of a decoded field.
func (h *Headers) record(tag byte, f core.Field, first byte) {
	if f.Err != nil && f.Kind == core.KindBytes {
		return
	}
	switch tag {
	case TagMMSVersion:
		if first&0x80 != 0 {
			h.Version = first
		}
	case TagTransactionID:
		h.TransactionID = f.Text
	case TagMessageID:
		h.MessageID = f.Text
	case TagFrom:
		h.From = f.Text
	case TagTo:
		h.To = append(h.To, f.Text)
	case TagSubject:
		h.Subject = f.Text
	case TagContentLocation:
		h.ContentLocation = f.Text
	}
}

// literalHeader decodes an application header sent as two Text-strings.
func literalHeader(buf []byte, off int, sink core.Sink) (int, error) {
	name, nn, err := wap.ReadTextString(buf, off)
	if err != nil {
		return nn, fmt.Errorf("header name at offset %d: %w", off, err)
	}
	value, vn, err := wap.ReadTextString(buf, off+nn)
	if err != nil {
		return nn + vn, fmt.Errorf("header %q at offset %d: %w", name, off, err)
	}
	f := core.NewString("header", off, nn+vn, value).WithText(name + ": " + value)
	f.Children = []core.Field{
		core.NewString("name", off, nn, name),
		core.NewString("value", off+nn, vn, value),
	}
	core.EmitField(sink, f)
	return nn + vn, nil
}
