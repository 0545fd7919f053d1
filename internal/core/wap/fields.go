package wap

import (
	"bytes"
	"fmt"
	"time"

	"firestige.xyz/wapdec/internal/core"
)

// Octet boundaries of the WSP field grammar.
const (
	ShortLengthMax = 30   // Short-length is 0..30
	LengthQuote    = 0x1F // Value-length escape, a uintvar follows
	TextQuote      = 0x7F // Quote before a Text-string starting with a byte >= 0x80
	StringQuote    = 0x22 // Quoted-string marker
	NoValue        = 0x00
	ShortFilter    = 0x80

	// MaxLongIntegerLen is the widest Long-integer decoded into a value.
	MaxLongIntegerLen = 4
)

// ReadTextString reads a NUL-terminated Text-string. A leading quote byte 0x7F is stripped
// from the text but counted in n, as is the terminator.
func ReadTextString(buf []byte, off int) (string, int, error) {
	if err := need(buf, off, 1); err != nil {
		return "", 0, err
	}
	end := bytes.IndexByte(buf[off:], 0)
	if end < 0 {
		return "", len(buf) - off, core.ErrTruncated
	}
	s := buf[off : off+end]
	if len(s) > 0 && s[0] == TextQuote {
		s = s[1:]
	}
	return string(s), end + 1, nil
}

// ReadQuotedString reads a Quoted-string: 0x22, text, NUL. The quote is stripped.
func ReadQuotedString(buf []byte, off int) (string, int, error) {
	if err := need(buf, off, 1); err != nil {
		return "", 0, err
	}
	if buf[off] != StringQuote {
		return "", 0, core.ErrMalformedHeader
	}
	end := bytes.IndexByte(buf[off:], 0)
	if end < 0 {
		return "", len(buf) - off, core.ErrTruncated
	}
	return string(buf[off+1 : off+end]), end + 1, nil
}

// ReadTextValue reads a Text-value: No-value, Quoted-string or Token-text.
func ReadTextValue(buf []byte, off int) (string, int, error) {
	if err := need(buf, off, 1); err != nil {
		return "", 0, err
	}
	switch buf[off] {
	case NoValue:
		return "", 1, nil
	case StringQuote:
		return ReadQuotedString(buf, off)
	}
	return ReadTextString(buf, off)
}

// ReadValueLength reads a Value-length: a Short-length byte, or 0x1F followed by a uintvar.
func ReadValueLength(buf []byte, off int) (uint32, int, error) {
	if err := need(buf, off, 1); err != nil {
		return 0, 0, err
	}
	b := buf[off]
	switch {
	case b <= ShortLengthMax:
		return uint32(b), 1, nil
	case b == LengthQuote:
		v, n, err := ReadUintvar(buf, off+1)
		return v, n + 1, err
	}
	return 0, 1, core.ErrMalformedHeader
}

// AppendValueLength appends the Value-length encoding of l to dst.
func AppendValueLength(dst []byte, l uint32) []byte {
	if l <= ShortLengthMax {
		return append(dst, byte(l))
	}
	return AppendUintvar(append(dst, LengthQuote), l)
}

// ReadShortInteger reads a Short-integer: one byte with the high bit set, value in the low 7 bits.
func ReadShortInteger(buf []byte, off int) (uint8, int, error) {
	if err := need(buf, off, 1); err != nil {
		return 0, 0, err
	}
	b := buf[off]
	if b&ShortFilter == 0 {
		return 0, 1, core.ErrMalformedHeader
	}
	return b & 0x7f, 1, nil
}

// ReadLongInteger reads a Long-integer: a Short-length followed by that many big-endian octets.
// Integers wider than MaxLongIntegerLen decode to 0 with core.ErrValueRange; n still covers
// the declared octets.
func ReadLongInteger(buf []byte, off int) (uint64, int, error) {
	if err := need(buf, off, 1); err != nil {
		return 0, 0, err
	}
	l := int(buf[off])
	if l > ShortLengthMax {
		return 0, 1, core.ErrMalformedHeader
	}
	if err := need(buf, off+1, l); err != nil {
		return 0, 1, err
	}
	if l > MaxLongIntegerLen {
		return 0, 1 + l, core.ErrValueRange
	}
	var v uint64
	for _, b := range buf[off+1 : off+1+l] {
		v = v<<8 | uint64(b)
	}
	return v, 1 + l, nil
}

// ReadIntegerValue reads an Integer-value: a Short-integer when the high bit is set,
// a Long-integer otherwise.
func ReadIntegerValue(buf []byte, off int) (uint64, int, error) {
	if err := need(buf, off, 1); err != nil {
		return 0, 0, err
	}
	if buf[off]&ShortFilter != 0 {
		return uint64(buf[off] & 0x7f), 1, nil
	}
	return ReadLongInteger(buf, off)
}

// ReadDateValue reads a Date-value: a Long-integer of seconds since the Unix epoch.
func ReadDateValue(buf []byte, off int) (time.Time, int, error) {
	v, n, err := ReadLongInteger(buf, off)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.Unix(int64(v), 0).UTC(), n, nil
}

// EncodedString is a decoded Encoded-string-value.
type EncodedString struct {
	Text    string
	Charset uint32 // MIBenum from the charset octet, 0 when the plain Text-string form was used
}

// ReadEncodedStringValue reads an Encoded-string-value. When the first byte is below 0x20 it is
// a Value-length; one charset octet follows and the remaining length-1 octets are the text.
// Otherwise the value is a plain Text-string. Text is returned undecoded.
func ReadEncodedStringValue(buf []byte, off int) (EncodedString, int, error) {
	if err := need(buf, off, 1); err != nil {
		return EncodedString{}, 0, err
	}
	if buf[off] >= 0x20 {
		s, n, err := ReadTextString(buf, off)
		return EncodedString{Text: s}, n, err
	}
	l, ln, err := ReadValueLength(buf, off)
	if err != nil {
		return EncodedString{}, ln, err
	}
	if err := need(buf, off+ln, int(l)); err != nil {
		return EncodedString{}, ln, err
	}
	var es EncodedString
	if l > 0 {
		cs := buf[off+ln]
		if cs&ShortFilter != 0 {
			es.Charset = uint32(cs & 0x7f)
		} else {
			es.Charset = uint32(cs)
		}
	}
	if l >= 2 {
		es.Text = string(bytes.TrimRight(buf[off+ln+1:off+ln+int(l)], "\x00"))
	}
	return es, ln + int(l), nil
}

// ReadVersionValue reads a Version-value. The short form packs major in bits 4-6 and minor
// in bits 0-3, where minor 0x0F means "no minor version".
func ReadVersionValue(buf []byte, off int) (string, int, error) {
	if err := need(buf, off, 1); err != nil {
		return "", 0, err
	}
	if buf[off]&ShortFilter == 0 {
		return ReadTextString(buf, off)
	}
	return FormatVersion(buf[off]), 1, nil
}

// FormatVersion renders a short-form Version-value such as 0x90 as "1.0".
func FormatVersion(b byte) string {
	major := (b & 0x70) >> 4
	minor := b & 0x0f
	if minor == 0x0f {
		return fmt.Sprintf("%d", major)
	}
	return fmt.Sprintf("%d.%d", major, minor)
}

// ReadQValue reads a Q-value, a uintvar where 1..100 encode two decimal places and
// 101..1099 encode three.
func ReadQValue(buf []byte, off int) (string, int, error) {
	q, n, err := ReadUintvar(buf, off)
	if err != nil {
		return "", n, err
	}
	switch {
	case q == 0:
		return "", n, core.ErrValueRange
	case q <= 100:
		return fmt.Sprintf("0.%02d", q-1), n, nil
	case q <= 1099:
		return fmt.Sprintf("0.%03d", q-100), n, nil
	}
	return "", n, core.ErrValueRange
}
