// Package wbxml decodes WAP Binary XML documents into core.Field records.
//
// The decoder is a single pass over a fully buffered document. Element nesting is
// tracked on an explicit stack of open-tag frames, so input depth never grows the Go
// call stack. Token names come from the tokens package; a document whose token map
// cannot be determined is rendered numerically.
package wbxml

import (
	"bytes"
	"fmt"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/wap"
	"firestige.xyz/wapdec/internal/core/wbxml/tokens"
)

// Global tokens, valid on every code page.
const (
	SwitchPage byte = 0x00
	End        byte = 0x01
	Entity     byte = 0x02
	StrI       byte = 0x03
	Literal    byte = 0x04
	ExtI0      byte = 0x40
	ExtI1      byte = 0x41
	ExtI2      byte = 0x42
	PI         byte = 0x43
	LiteralC   byte = 0x44
	ExtT0      byte = 0x80
	ExtT1      byte = 0x81
	ExtT2      byte = 0x82
	StrT       byte = 0x83
	LiteralA   byte = 0x84
	Ext0       byte = 0xc0
	Ext1       byte = 0xc1
	Ext2       byte = 0xc2
	Opaque     byte = 0xc3 // RESERVED_2 in WBXML 1.0
	LiteralAC  byte = 0xc4
)

// Tag token flag bits.
const (
	tagHasContent byte = 0x40
	tagHasAttrs   byte = 0x80
)

// MaxDepth is the deepest element nesting accepted.
const MaxDepth = 255

// Config controls a Decoder. It is copied into the decoder and never shared.
type Config struct {
	// SkipTokenMapping renders every tag and attribute numerically.
	SkipTokenMapping bool
	// DisableBodyParsing emits the header and the body as one opaque field.
	DisableBodyParsing bool
	// TokenMap, when set, is used instead of public identifier and content type selection.
	TokenMap *tokens.Map
}

// Decoder decodes WBXML documents. A Decoder holds only configuration and is safe for
// concurrent use.
type Decoder struct {
	cfg Config
}

// New returns a decoder using cfg.
func New(cfg Config) *Decoder {
	return &Decoder{cfg: cfg}
}

// Decode decodes the document at buf[off:], which runs to the end of buf. contentType is
// the media type the document was delivered with and may be empty.
//
// It returns the number of bytes consumed. On a structural error it returns the offset
// reached relative to off together with the wrapped sentinel; fields emitted up to that
// point stay valid.
func (d *Decoder) Decode(buf []byte, off int, contentType string, sink core.Sink) (int, error) {
	if sink == nil {
		sink = core.Discard
	}
	h, n, err := readHeader(buf, off, sink)
	if err != nil {
		return n, err
	}
	body := off + n

	m := d.selectMap(h, contentType, buf, body)
	if m != nil {
		sink.Emit(core.NewString("token_map", body, 0, m.Name))
	}

	if d.cfg.DisableBodyParsing {
		if body < len(buf) {
			sink.Emit(core.NewBytes("body", body, len(buf)-body, buf[body:]))
		}
		return len(buf) - off, nil
	}

	p := &parser{
		buf:     buf,
		off:     body,
		m:       m,
		codec:   m.TokenCodec(),
		st:      h.StringTable,
		version: h.Version,
		sink:    sink,
	}
	end, err := p.run()
	return end - off, err
}

// Map returns the token map Decode would use for the document at buf[off:].
func (d *Decoder) Map(buf []byte, off int, contentType string) (*tokens.Map, error) {
	h, n, err := readHeader(buf, off, core.Discard)
	if err != nil {
		return nil, err
	}
	return d.selectMap(h, contentType, buf, off+n), nil
}

func (d *Decoder) selectMap(h Header, contentType string, buf []byte, body int) *tokens.Map {
	if d.cfg.SkipTokenMapping {
		return nil
	}
	if d.cfg.TokenMap != nil {
		return d.cfg.TokenMap
	}
	sel := tokens.Selection{
		PublicID:    h.PublicID,
		ContentType: contentType,
		BodyOffset:  body,
	}
	if h.PublicID == 0 {
		sel.FormalID = h.FormalID
	}
	return tokens.Select(sel, buf)
}

// frame is one open element.
type frame struct {
	literal bool
	token   byte
	page    byte
	name    string
	group   core.GroupHandle
}

type parser struct {
	buf     []byte
	off     int
	m       *tokens.Map
	codec   tokens.TokenCodec
	st      tokens.StringTable
	version byte

	tagPage  byte
	attrPage byte
	stack    []frame
	sink     core.Sink
}

func (p *parser) run() (int, error) {
	for p.off < len(p.buf) {
		if err := p.step(); err != nil {
			p.unwind()
			return p.off, err
		}
	}
	if open := len(p.stack); open > 0 {
		p.unwind()
		return p.off, fmt.Errorf("%d element(s) left open: %w", open, core.ErrTruncated)
	}
	return p.off, nil
}

// unwind closes every open element group at the current offset.
func (p *parser) unwind() {
	for i := len(p.stack) - 1; i >= 0; i-- {
		p.sink.EndGroup(p.stack[i].group, p.off)
	}
	p.stack = p.stack[:0]
}

// step consumes one token in tag state.
func (p *parser) step() error {
	start := p.off
	tok := p.buf[p.off]
	switch tok {
	case SwitchPage:
		f, page, err := p.switchPage("tag")
		if err != nil {
			return err
		}
		p.tagPage = page
		p.sink.Emit(f)
	case End:
		p.off++
		if len(p.stack) == 0 {
			p.sink.Emit(core.Field{Name: "end", Text: "END", Start: start, Length: 1, Err: core.ErrUnexpectedEnd})
			return nil
		}
		top := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		p.sink.EndGroup(top.group, p.off)
	case PI:
		return p.pi()
	case Literal, LiteralC, LiteralA, LiteralAC:
		return p.element(tok, true)
	case Opaque:
		if p.version == 0x00 {
			return fmt.Errorf("RESERVED_2 at offset %d: %w", start, core.ErrReservedToken)
		}
		data, err := p.opaque()
		if err != nil {
			return err
		}
		core.EmitField(p.sink, place(p.opaqueTagField(data), start, p.off))
	case Entity, StrI, StrT, ExtI0, ExtI1, ExtI2, ExtT0, ExtT1, ExtT2, Ext0, Ext1, Ext2:
		f, err := p.content(tok, p.tagPage)
		if err != nil {
			return err
		}
		core.EmitField(p.sink, f)
	default:
		return p.element(tok, false)
	}
	return nil
}

func (p *parser) element(tok byte, literal bool) error {
	start := p.off
	p.off++
	fr := frame{literal: literal, token: tok, page: p.tagPage}
	var nameErr error
	if literal {
		idx, n, err := wap.ReadUintvar(p.buf, p.off)
		if err != nil && !isOversize(err) {
			return err
		}
		p.off += n
		if err == nil {
			fr.name, err = p.st.At(idx)
		}
		if err != nil {
			fr.name = fmt.Sprintf("LITERAL %d", idx)
			nameErr = err
		}
	} else {
		fr.name = p.name(tokens.Tag, p.tagPage, tok)
	}

	var attrs []core.Field
	var attrErr error
	if tok&tagHasAttrs != 0 {
		attrs, attrErr = p.attributes()
	}

	g := core.NewGroup("element", start, fr.name)
	if nameErr != nil {
		g = g.WithErr(nameErr)
	}
	fr.group = p.sink.BeginGroup(g)
	for _, a := range attrs {
		core.EmitField(p.sink, a)
	}
	if attrErr != nil {
		p.sink.EndGroup(fr.group, p.off)
		return attrErr
	}
	if tok&tagHasContent == 0 {
		p.sink.EndGroup(fr.group, p.off)
		return nil
	}
	if len(p.stack) >= MaxDepth {
		p.sink.EndGroup(fr.group, p.off)
		return fmt.Errorf("element %q at offset %d: %w", fr.name, start, core.ErrNestingTooDeep)
	}
	p.stack = append(p.stack, fr)
	return nil
}

// pi decodes a processing instruction: a target attribute and its value, ended by END.
func (p *parser) pi() error {
	start := p.off
	p.off++
	attrs, err := p.attributes()
	text := ""
	for i, a := range attrs {
		if i > 0 {
			text += " "
		}
		text += a.Text
	}
	g := p.sink.BeginGroup(core.NewGroup("pi", start, "<?"+text+"?>"))
	for _, a := range attrs {
		core.EmitField(p.sink, a)
	}
	p.sink.EndGroup(g, p.off)
	return err
}

// content decodes the character data and extension tokens shared by tag and
// attribute state.
func (p *parser) content(tok, page byte) (core.Field, error) {
	start := p.off
	p.off++
	switch tok {
	case Entity:
		v, n, err := wap.ReadUintvar(p.buf, p.off)
		if err != nil && !isOversize(err) {
			return core.Field{}, err
		}
		p.off += n
		f := core.NewUint("entity", start, p.off-start, uint64(v)).WithText(fmt.Sprintf("&#%d;", v))
		if err != nil {
			f = f.WithErr(err)
		}
		return f, nil

	case StrI, ExtI0, ExtI1, ExtI2:
		s, err := p.cstring()
		if err != nil {
			return core.Field{}, err
		}
		if tok == StrI {
			return core.NewString("str_i", start, p.off-start, s), nil
		}
		n := int(tok - ExtI0)
		return core.NewString("ext_i", start, p.off-start, s).WithText(p.codec.ExtI(p.m, page, n, s)), nil

	case StrT, ExtT0, ExtT1, ExtT2:
		idx, n, err := wap.ReadUintvar(p.buf, p.off)
		if err != nil && !isOversize(err) {
			return core.Field{}, err
		}
		p.off += n
		if tok == StrT {
			if err != nil {
				return core.NewUint("str_t", start, p.off-start, 0).WithErr(err), nil
			}
			s, err := p.st.At(idx)
			if err != nil {
				return core.NewUint("str_t", start, p.off-start, uint64(idx)).
					WithText(fmt.Sprintf("string table index %d", idx)).WithErr(err), nil
			}
			return core.NewString("str_t", start, p.off-start, s), nil
		}
		f := core.NewUint("ext_t", start, p.off-start, uint64(idx))
		if err != nil {
			return f.WithErr(err), nil
		}
		return f.WithText(p.codec.ExtT(p.m, page, int(tok-ExtT0), idx, p.st)), nil

	case Ext0, Ext1, Ext2:
		n := int(tok - Ext0)
		return core.NewEnum("ext", start, 1, uint64(n), p.codec.Ext(p.m, page, n)), nil
	}
	return core.NewUint("token", start, 1, uint64(tok)).WithErr(core.ErrUnexpectedToken), nil
}

func (p *parser) switchPage(kind string) (core.Field, byte, error) {
	start := p.off
	if err := need(p.buf, p.off+1, 1); err != nil {
		return core.Field{}, 0, fmt.Errorf("SWITCH_PAGE at offset %d: %w", start, err)
	}
	page := p.buf[p.off+1]
	p.off += 2
	return core.NewEnum("switch_page", start, 2, uint64(page), fmt.Sprintf("%s code page %d", kind, page)), page, nil
}

// opaque reads an OPAQUE length and payload, the token itself already at p.off.
func (p *parser) opaque() ([]byte, error) {
	start := p.off
	p.off++
	l, n, err := wap.ReadUintvar(p.buf, p.off)
	if err != nil {
		return nil, fmt.Errorf("OPAQUE length at offset %d: %w", start, err)
	}
	p.off += n
	if err := need(p.buf, p.off, int(l)); err != nil {
		return nil, fmt.Errorf("OPAQUE of %d bytes at offset %d: %w", l, start, err)
	}
	data := p.buf[p.off : p.off+int(l)]
	p.off += int(l)
	return data, nil
}

// place sets the byte range of a field produced by a token codec.
func place(f core.Field, start, end int) core.Field {
	f.Start = start
	f.Length = end - start
	return f
}

// opaqueTagField renders OPAQUE content of the innermost open element.
func (p *parser) opaqueTagField(data []byte) core.Field {
	if len(p.stack) == 0 {
		return tokens.Generic.OpaqueBinaryTag(p.m, p.tagPage, 0, data)
	}
	top := p.stack[len(p.stack)-1]
	if top.literal {
		return p.codec.OpaqueLiteralTag(p.m, top.name, data)
	}
	return p.codec.OpaqueBinaryTag(p.m, top.page, top.token, data)
}

// cstring reads a NUL-terminated inline string following a token.
func (p *parser) cstring() (string, error) {
	if p.off >= len(p.buf) {
		return "", core.ErrTruncated
	}
	end := bytes.IndexByte(p.buf[p.off:], 0)
	if end < 0 {
		p.off = len(p.buf)
		return "", fmt.Errorf("unterminated inline string: %w", core.ErrTruncated)
	}
	s := string(p.buf[p.off : p.off+end])
	p.off += end + 1
	return s, nil
}

// name resolves a token, falling back to a numeric rendering that carries the lookup
// sentinel when a map is in use.
func (p *parser) name(c tokens.Category, page, tok byte) string {
	if name, ok := p.m.Resolve(c, page, tok); ok {
		return name
	}
	if c == tokens.Tag {
		tok &= 0x3f
	}
	prefix := "Tag"
	switch c {
	case tokens.AttrStart:
		prefix = "Attr"
	case tokens.AttrValue:
		prefix = "AttrValue"
	}
	if p.m == nil {
		return fmt.Sprintf("%s 0x%02x", prefix, tok)
	}
	return fmt.Sprintf("%s 0x%02x %s", prefix, tok, p.m.Lookup(c, page, tok))
}

