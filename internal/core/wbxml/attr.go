package wbxml

import (
	"fmt"
	"strings"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/wap"
	"firestige.xyz/wapdec/internal/core/wbxml/tokens"
)

// attribute accumulates the parts of one attribute until the next start token or END.
type attribute struct {
	start   int
	name    string
	value   strings.Builder
	literal bool
	token   byte
	page    byte
	parts   []core.Field
	err     error
}

func (a *attribute) field(end int) core.Field {
	v := a.value.String()
	text := a.name
	if v != "" {
		text = fmt.Sprintf("%s=\"%s\"", a.name, v)
	}
	f := core.NewString("attribute", a.start, end-a.start, v).WithText(text)
	f.Children = a.parts
	if a.err != nil {
		f = f.WithErr(a.err)
	}
	return f
}

// attributes decodes an attribute list in attribute state, up to and including the END
// that terminates it. It returns one field per attribute, each carrying its parts as
// children. Tokens seen before the first attribute start are returned ungrouped.
func (p *parser) attributes() ([]core.Field, error) {
	var (
		out []core.Field
		cur *attribute
	)
	flush := func() {
		if cur != nil {
			out = append(out, cur.field(p.off))
			cur = nil
		}
	}
	add := func(f core.Field, value string) {
		if cur == nil {
			out = append(out, f)
			return
		}
		cur.parts = append(cur.parts, f)
		cur.value.WriteString(value)
	}

	for {
		if p.off >= len(p.buf) {
			flush()
			return out, fmt.Errorf("unterminated attribute list: %w", core.ErrTruncated)
		}
		start := p.off
		tok := p.buf[p.off]
		switch {
		case tok == End:
			flush()
			p.off++
			return out, nil

		case tok == SwitchPage:
			f, page, err := p.switchPage("attribute")
			if err != nil {
				flush()
				return out, err
			}
			p.attrPage = page
			add(f, "")

		case tok == Literal || tok == LiteralC || tok == LiteralA || tok == LiteralAC:
			flush()
			p.off++
			idx, n, err := wap.ReadUintvar(p.buf, p.off)
			if err != nil && !isOversize(err) {
				return out, err
			}
			p.off += n
			cur = &attribute{start: start, literal: true}
			var name string
			if err == nil {
				name, err = p.st.At(idx)
			}
			if err != nil {
				name = fmt.Sprintf("LITERAL %d", idx)
				cur.err = err
			}
			cur.name = name
			cur.parts = append(cur.parts, core.NewUint("attr_start", start, p.off-start, uint64(idx)).WithText(name))

		case tok == PI:
			p.off++
			add(core.NewUint("token", start, 1, uint64(tok)).WithText("PI").WithErr(core.ErrUnexpectedToken), "")

		case tok == Opaque:
			if p.version == 0x00 {
				flush()
				return out, fmt.Errorf("RESERVED_2 at offset %d: %w", start, core.ErrReservedToken)
			}
			data, err := p.opaque()
			if err != nil {
				flush()
				return out, err
			}
			f := place(p.opaqueAttrField(cur, data), start, p.off)
			add(f, f.Text)

		case isGlobal(tok):
			f, err := p.content(tok, p.attrPage)
			if err != nil {
				flush()
				return out, err
			}
			add(f, f.Text)

		case tok >= 0x80:
			p.off++
			name := p.name(tokens.AttrValue, p.attrPage, tok)
			add(core.NewEnum("attr_value", start, 1, uint64(tok), name), name)

		default:
			flush()
			p.off++
			name := p.name(tokens.AttrStart, p.attrPage, tok)
			cur = &attribute{start: start, token: tok, page: p.attrPage}
			cur.parts = append(cur.parts, core.NewEnum("attr_start", start, 1, uint64(tok), name))
			if i := strings.IndexByte(name, '='); i >= 0 {
				cur.name = name[:i]
				cur.value.WriteString(strings.Trim(name[i+1:], "'\""))
			} else {
				cur.name = name
			}
		}
	}
}

// opaqueAttrField renders OPAQUE data inside the attribute being decoded.
func (p *parser) opaqueAttrField(a *attribute, data []byte) core.Field {
	switch {
	case a == nil:
		return tokens.Generic.OpaqueBinaryAttr(p.m, p.attrPage, 0, data)
	case a.literal:
		return p.codec.OpaqueLiteralAttr(p.m, a.name, data)
	default:
		return p.codec.OpaqueBinaryAttr(p.m, a.page, a.token, data)
	}
}

// isGlobal reports whether tok is one of the character data or extension tokens.
func isGlobal(tok byte) bool {
	switch tok {
	case Entity, StrI, StrT, ExtI0, ExtI1, ExtI2, ExtT0, ExtT1, ExtT2, Ext0, Ext1, Ext2:
		return true
	}
	return false
}
