package tokens

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"firestige.xyz/wapdec/internal/core"
)

// TokenCodec renders the tokens whose meaning depends on the document family:
// the three extension token groups and OPAQUE data in tag and attribute context.
//
// Opaque hooks return a field whose Name, Kind, Value and Text are set; the decoder
// fills in the byte range.
type TokenCodec interface {
	ExtI(m *Map, page byte, n int, s string) string
	ExtT(m *Map, page byte, n int, index uint32, st StringTable) string
	Ext(m *Map, page byte, n int) string
	OpaqueBinaryTag(m *Map, page, token byte, data []byte) core.Field
	OpaqueLiteralTag(m *Map, name string, data []byte) core.Field
	OpaqueBinaryAttr(m *Map, page, token byte, data []byte) core.Field
	OpaqueLiteralAttr(m *Map, name string, data []byte) core.Field
}

// Generic renders extensions by number and opaque data as bytes.
var Generic TokenCodec = baseCodec{}

type baseCodec struct{}

func (baseCodec) ExtI(m *Map, page byte, n int, s string) string {
	return fmt.Sprintf("%s: '%s'", extName(m, page, 0x40+byte(n), "EXT_I_%d", n), s)
}

func (baseCodec) ExtT(m *Map, page byte, n int, index uint32, st StringTable) string {
	s, err := st.At(index)
	if err != nil {
		return fmt.Sprintf("%s: index %d", extName(m, page, 0x80+byte(n), "EXT_T_%d", n), index)
	}
	return fmt.Sprintf("%s: '%s'", extName(m, page, 0x80+byte(n), "EXT_T_%d", n), s)
}

func (baseCodec) Ext(m *Map, page byte, n int) string {
	return extName(m, page, 0xc0+byte(n), "EXT_%d", n)
}

func (baseCodec) OpaqueBinaryTag(_ *Map, _, _ byte, data []byte) core.Field {
	return core.NewBytes("opaque", 0, 0, data)
}

func (baseCodec) OpaqueLiteralTag(_ *Map, _ string, data []byte) core.Field {
	return core.NewBytes("opaque", 0, 0, data)
}

func (baseCodec) OpaqueBinaryAttr(_ *Map, _, _ byte, data []byte) core.Field {
	return core.NewBytes("opaque", 0, 0, data)
}

func (baseCodec) OpaqueLiteralAttr(_ *Map, _ string, data []byte) core.Field {
	return core.NewBytes("opaque", 0, 0, data)
}

func extName(m *Map, page, token byte, format string, n int) string {
	if name, ok := m.Resolve(Global, page, token); ok {
		return name
	}
	return fmt.Sprintf(format, n)
}

// wmlCodec renders extensions as WML variable references.
type wmlCodec struct{ baseCodec }

var wmlEscapes = [3]string{":e", ":u", ""}

func (wmlCodec) ExtI(_ *Map, _ byte, n int, s string) string {
	if n > 2 {
		return fmt.Sprintf("EXT_I_%d: '%s'", n, s)
	}
	return "$(" + s + wmlEscapes[n] + ")"
}

func (c wmlCodec) ExtT(m *Map, page byte, n int, index uint32, st StringTable) string {
	s, err := st.At(index)
	if err != nil || n > 2 {
		return c.baseCodec.ExtT(m, page, n, index, st)
	}
	return "$(" + s + wmlEscapes[n] + ")"
}

// dateCodec decodes OPAQUE attribute values of the named attributes as packed dates.
type dateCodec struct {
	baseCodec
	attrs map[string]bool
}

func (c dateCodec) OpaqueBinaryAttr(m *Map, page, token byte, data []byte) core.Field {
	name, _ := m.Resolve(AttrStart, page, token)
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	if !c.attrs[name] {
		return c.baseCodec.OpaqueBinaryAttr(m, page, token, data)
	}
	t, err := PackedDate(data)
	if err != nil {
		return core.NewBytes("date", 0, 0, data).WithErr(err)
	}
	return core.NewTime("date", 0, 0, t)
}

// PackedDate decodes the SI/EMN date format: up to seven octets holding two decimal digits
// each (YYYY MM DD hh mm ss), with trailing zero octets omitted.
func PackedDate(data []byte) (time.Time, error) {
	if len(data) == 0 || len(data) > 7 {
		return time.Time{}, fmt.Errorf("packed date of %d octets: %w", len(data), core.ErrValueRange)
	}
	digits := fmt.Sprintf("%x", data)
	digits += strings.Repeat("0", 14-len(digits))
	if digits[4:6] == "00" {
		digits = digits[:4] + "01" + digits[6:]
	}
	if digits[6:8] == "00" {
		digits = digits[:6] + "01" + digits[8:]
	}
	t, err := time.Parse("20060102150405", digits)
	if err != nil {
		return time.Time{}, fmt.Errorf("packed date %s: %w", digits, core.ErrValueRange)
	}
	return t, nil
}

// cspCodec handles Wireless Village CSP: EXT_T_0 indexes a fixed value enumeration,
// integer elements carry big-endian OPAQUE integers and DateTime a packed timestamp.
type cspCodec struct{ baseCodec }

func (c cspCodec) ExtT(m *Map, page byte, n int, index uint32, st StringTable) string {
	if n == 0 {
		if v, ok := cspCommonValues[index]; ok {
			return v
		}
		return fmt.Sprintf("(unknown common value 0x%02x)", index)
	}
	return c.baseCodec.ExtT(m, page, n, index, st)
}

func (c cspCodec) OpaqueBinaryTag(m *Map, page, token byte, data []byte) core.Field {
	name, _ := m.Resolve(Tag, page, token)
	switch {
	case cspIntegerTags[name]:
		if len(data) > 4 {
			return core.NewBytes("integer", 0, 0, data).WithErr(core.ErrValueRange)
		}
		var v uint64
		for _, b := range data {
			v = v<<8 | uint64(b)
		}
		return core.NewUint("integer", 0, 0, v)
	case name == "DateTime":
		s, err := cspDateTime(data)
		if err != nil {
			return core.NewBytes("datetime", 0, 0, data).WithErr(err)
		}
		return core.NewString("datetime", 0, 0, s)
	}
	return c.baseCodec.OpaqueBinaryTag(m, page, token, data)
}

// cspDateTime decodes the 6 octet CSP timestamp: 2 reserved bits, year(12) month(4) day(5)
// hour(5) minute(6) second(6), then one time zone character.
func cspDateTime(data []byte) (string, error) {
	if len(data) != 6 {
		return "", fmt.Errorf("csp datetime of %d octets: %w", len(data), core.ErrValueRange)
	}
	var v uint64
	for _, b := range data[:5] {
		v = v<<8 | uint64(b)
	}
	year := (v >> 26) & 0xfff
	month := (v >> 22) & 0x0f
	day := (v >> 17) & 0x1f
	hour := (v >> 12) & 0x1f
	minute := (v >> 6) & 0x3f
	second := v & 0x3f
	s := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", year, month, day, hour, minute, second)
	if tz := data[5]; tz != 0 {
		s += string(rune(tz))
	}
	return s, nil
}

// drmCodec decodes the ds:KeyValue OPAQUE content as base64 text.
type drmCodec struct{ baseCodec }

func (c drmCodec) OpaqueBinaryTag(m *Map, page, token byte, data []byte) core.Field {
	if name, _ := m.Resolve(Tag, page, token); name == "ds:KeyValue" {
		return core.NewString("key_value", 0, 0, base64.StdEncoding.EncodeToString(data))
	}
	return c.baseCodec.OpaqueBinaryTag(m, page, token, data)
}

// syncmlCodec renders OPAQUE payloads as text when they are printable, since SyncML
// carries nested documents and credentials that way.
type syncmlCodec struct{ baseCodec }

func (c syncmlCodec) OpaqueBinaryTag(m *Map, page, token byte, data []byte) core.Field {
	if printable(data) {
		return core.NewString("opaque", 0, 0, string(data))
	}
	return c.baseCodec.OpaqueBinaryTag(m, page, token, data)
}

func (c syncmlCodec) OpaqueLiteralTag(m *Map, name string, data []byte) core.Field {
	if printable(data) {
		return core.NewString("opaque", 0, 0, string(data))
	}
	return c.baseCodec.OpaqueLiteralTag(m, name, data)
}

func printable(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for _, r := range string(data) {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return false
		}
	}
	return true
}
