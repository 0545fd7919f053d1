// Package tokens holds the WBXML token dictionaries: per document type tables mapping
// (code page, token) pairs to tag, attribute-start and attribute-value names, plus the
// codecs that render extension and opaque tokens for each document family.
//
// All maps are package-level read-only data and are safe for concurrent use.
package tokens

import (
	"bytes"
	"fmt"

	"firestige.xyz/wapdec/internal/core"
)

// Category selects one of the four tables of a Map.
type Category uint8

const (
	Global Category = iota
	Tag
	AttrStart
	AttrValue
)

func (c Category) String() string {
	switch c {
	case Global:
		return "global"
	case Tag:
		return "tag"
	case AttrStart:
		return "attr_start"
	case AttrValue:
		return "attr_value"
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Lookup sentinels. Each names a different missing level.
const (
	NoMap      = "(Requested token map not defined for this content type)"
	NoCodePage = "(Requested token code page not defined for this content type)"
	NoToken    = "(Requested token not defined for this code page)"
)

// CodePage maps a token to its name.
type CodePage map[byte]string

// Table maps a code page number to its tokens.
type Table map[byte]CodePage

// Map is the token dictionary of one document type.
type Map struct {
	Name      string // Short display name, e.g. "WML 1.3"
	FormalID  string // Formal public identifier, e.g. "-//WAPFORUM//DTD WML 1.3//EN"
	Global    Table
	Tags      Table
	AttrStart Table
	AttrValue Table
	Codec     TokenCodec
}

func (m *Map) table(c Category) Table {
	switch c {
	case Global:
		return m.Global
	case Tag:
		return m.Tags
	case AttrStart:
		return m.AttrStart
	case AttrValue:
		return m.AttrValue
	}
	return nil
}

// Lookup returns the name of token in code page page of category c. It never fails:
// missing maps, code pages and tokens each yield their own sentinel string.
// Tag tokens are looked up by their low six bits.
func (m *Map) Lookup(c Category, page, token byte) string {
	if m == nil {
		return NoMap
	}
	t := m.table(c)
	if t == nil {
		return NoMap
	}
	cp, ok := t[page]
	if !ok {
		return NoCodePage
	}
	if c == Tag {
		token &= 0x3f
	}
	name, ok := cp[token]
	if !ok {
		return NoToken
	}
	return name
}

// Resolve is Lookup without sentinels: the second result reports whether a name was found.
func (m *Map) Resolve(c Category, page, token byte) (string, bool) {
	name := m.Lookup(c, page, token)
	switch name {
	case NoMap, NoCodePage, NoToken:
		return "", false
	}
	return name, true
}

// HasTables reports whether the map carries any token tables.
func (m *Map) HasTables() bool {
	return m != nil && (m.Tags != nil || m.AttrStart != nil || m.AttrValue != nil)
}

// TokenCodec returns the map's codec, or the generic one when the map is nil or has none.
func (m *Map) TokenCodec() TokenCodec {
	if m == nil || m.Codec == nil {
		return Generic
	}
	return m.Codec
}

// StringTable is the WBXML string table: NUL-terminated strings addressed by byte offset.
type StringTable []byte

// At returns the string starting at index.
func (st StringTable) At(index uint32) (string, error) {
	if uint64(index) >= uint64(len(st)) {
		return "", fmt.Errorf("index %d of %d: %w", index, len(st), core.ErrBadStringIndex)
	}
	rest := st[index:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return string(rest), nil
	}
	return string(rest[:end]), nil
}

// merge returns a new table holding base overlaid with the extra pages and tokens.
func merge(base Table, extra Table) Table {
	out := make(Table, len(base))
	for page, cp := range base {
		c := make(CodePage, len(cp))
		for tok, name := range cp {
			c[tok] = name
		}
		out[page] = c
	}
	for page, cp := range extra {
		c, ok := out[page]
		if !ok {
			c = make(CodePage, len(cp))
			out[page] = c
		}
		for tok, name := range cp {
			c[tok] = name
		}
	}
	return out
}

// Common attribute value page shared by the push content types.
var domainValues = CodePage{
	0x85: ".com/",
	0x86: ".edu/",
	0x87: ".net/",
	0x88: ".org/",
}
