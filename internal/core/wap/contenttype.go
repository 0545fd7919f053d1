package wap

import (
	"fmt"
	"strconv"
	"strings"

	"firestige.xyz/wapdec/internal/core"
)

// Param is one Content-Type parameter.
type Param struct {
	Name  string
	Value string
	Token uint64 // Well-known parameter token when Typed
	Typed bool
}

// ContentType is a decoded WSP Content-type-value.
type ContentType struct {
	WellKnown   uint32 // Assigned number, valid when IsWellKnown
	IsWellKnown bool
	MediaType   string // Registered or extension media type, empty for unregistered numbers
	Params      []Param
}

// Param returns the value of the first parameter called name.
func (ct ContentType) Param(name string) (string, bool) {
	for _, p := range ct.Params {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

// Media returns the media type, falling back to the numeric form for unregistered numbers.
func (ct ContentType) Media() string {
	if ct.MediaType != "" || !ct.IsWellKnown {
		return ct.MediaType
	}
	return fmt.Sprintf("0x%02x", ct.WellKnown)
}

func (ct ContentType) String() string {
	var sb strings.Builder
	sb.WriteString(ct.Media())
	for _, p := range ct.Params {
		sb.WriteString("; ")
		sb.WriteString(p.Name)
		if p.Value != "" {
			sb.WriteByte('=')
			sb.WriteString(p.Value)
		}
	}
	return sb.String()
}

// ParseContentType decodes one Content-type-value at off without emitting fields.
func ParseContentType(buf []byte, off int) (ContentType, int, error) {
	return parseContentType(buf, off, core.Discard)
}

// AddContentType decodes one Content-type-value at off, emits it to sink as a "content_type"
// field (a group when parameters are present) and returns the offset just after it.
func AddContentType(buf []byte, off int, sink core.Sink) (int, ContentType, error) {
	ct, n, err := parseContentType(buf, off, sink)
	return off + n, ct, err
}

func parseContentType(buf []byte, off int, sink core.Sink) (ContentType, int, error) {
	if err := need(buf, off, 1); err != nil {
		return ContentType{}, 0, err
	}
	b := buf[off]
	if b&ShortFilter != 0 {
		ct := wellKnown(uint32(b & 0x7f))
		sink.Emit(core.NewEnum("content_type", off, 1, uint64(ct.WellKnown), ct.Media()))
		return ct, 1, nil
	}
	if b >= 0x20 {
		s, n, err := ReadTextString(buf, off)
		if err != nil {
			return ContentType{}, n, err
		}
		sink.Emit(core.NewString("content_type", off, n, s))
		return ContentType{MediaType: s}, n, nil
	}

	// Content-general-form: Value-length Media-type *(Parameter)
	l, ln, err := ReadValueLength(buf, off)
	if err != nil {
		return ContentType{}, ln, err
	}
	if err := need(buf, off+ln, int(l)); err != nil {
		return ContentType{}, ln, err
	}
	end := off + ln + int(l)
	bounded := buf[:end]
	pos := off + ln

	ct, media, mn, err := readMediaType(bounded, pos)
	if err != nil {
		sink.Emit(core.NewBytes("content_type", off, end-off, buf[off:end]).WithErr(err))
		return ContentType{}, end - off, nil
	}
	pos += mn

	var params []core.Field
	for pos < end {
		p, f, n, err := readParameter(bounded, pos)
		if err != nil {
			params = append(params, core.NewBytes("parameter", pos, end-pos, buf[pos:end]).WithErr(
				fmt.Errorf("%w: %v", core.ErrMalformedHeader, err)))
			break
		}
		ct.Params = append(ct.Params, p)
		params = append(params, f)
		pos += n
	}

	h := sink.BeginGroup(core.NewGroup("content_type", off, ct.String()))
	sink.Emit(media)
	for _, f := range params {
		sink.Emit(f)
	}
	sink.EndGroup(h, end)
	return ct, end - off, nil
}

func wellKnown(id uint32) ContentType {
	name, _ := ContentTypeName(id)
	return ContentType{WellKnown: id, IsWellKnown: true, MediaType: name}
}

// readMediaType reads Well-known-media (Integer-value) or Extension-media (Text-string).
func readMediaType(buf []byte, off int) (ContentType, core.Field, int, error) {
	if err := need(buf, off, 1); err != nil {
		return ContentType{}, core.Field{}, 0, err
	}
	b := buf[off]
	if b&ShortFilter != 0 || b <= ShortLengthMax {
		v, n, err := ReadIntegerValue(buf, off)
		if err != nil {
			return ContentType{}, core.Field{}, n, err
		}
		ct := wellKnown(uint32(v))
		return ct, core.NewEnum("media_type", off, n, v, ct.Media()), n, nil
	}
	s, n, err := ReadTextString(buf, off)
	if err != nil {
		return ContentType{}, core.Field{}, n, err
	}
	return ContentType{MediaType: s}, core.NewString("media_type", off, n, s), n, nil
}

// readParameter reads a Typed-parameter or an Untyped-parameter.
func readParameter(buf []byte, off int) (Param, core.Field, int, error) {
	if err := need(buf, off, 1); err != nil {
		return Param{}, core.Field{}, 0, err
	}
	b := buf[off]
	if b&ShortFilter != 0 || b <= ShortLengthMax {
		tok, tn, err := ReadIntegerValue(buf, off)
		if err != nil {
			return Param{}, core.Field{}, tn, err
		}
		name := ParameterName(tok)
		f, vn, err := readTypedValue(buf, off+tn, tok, name)
		if err != nil {
			return Param{}, core.Field{}, tn + vn, err
		}
		f.Start, f.Length = off, tn+vn
		return Param{Name: name, Value: f.Text, Token: tok, Typed: true}, f, tn + vn, nil
	}

	name, nn, err := ReadTextString(buf, off)
	if err != nil {
		return Param{}, core.Field{}, nn, err
	}
	f, vn, err := readUntypedValue(buf, off+nn, name)
	if err != nil {
		return Param{}, core.Field{}, nn + vn, err
	}
	f.Start, f.Length = off, nn+vn
	return Param{Name: name, Value: f.Text}, f, nn + vn, nil
}

func readTypedValue(buf []byte, off int, tok uint64, name string) (core.Field, int, error) {
	switch tok {
	case ParamQ:
		s, n, err := ReadQValue(buf, off)
		return core.NewString(name, 0, 0, s), n, err
	case ParamCharset:
		if err := need(buf, off, 1); err != nil {
			return core.Field{}, 0, err
		}
		if buf[off] == ShortFilter {
			return core.NewEnum(name, 0, 0, 0, "*"), 1, nil
		}
		v, n, err := ReadIntegerValue(buf, off)
		return core.NewEnum(name, 0, 0, v, CharsetName(uint32(v))), n, err
	case ParamLevel:
		s, n, err := ReadVersionValue(buf, off)
		return core.NewString(name, 0, 0, s), n, err
	case ParamType, ParamSize, ParamMaxAge:
		v, n, err := ReadIntegerValue(buf, off)
		return core.NewUint(name, 0, 0, v), n, err
	case ParamPadding, ParamSec:
		v, n, err := ReadShortInteger(buf, off)
		return core.NewUint(name, 0, 0, uint64(v)), n, err
	case ParamContentType:
		if err := need(buf, off, 1); err != nil {
			return core.Field{}, 0, err
		}
		if buf[off]&ShortFilter != 0 {
			ct := wellKnown(uint32(buf[off] & 0x7f))
			return core.NewEnum(name, 0, 0, uint64(ct.WellKnown), ct.Media()), 1, nil
		}
		s, n, err := ReadTextString(buf, off)
		return core.NewString(name, 0, 0, s), n, err
	case ParamSecure:
		if err := need(buf, off, 1); err != nil {
			return core.Field{}, 0, err
		}
		if buf[off] == NoValue {
			return core.NewString(name, 0, 0, ""), 1, nil
		}
		s, n, err := ReadTextValue(buf, off)
		return core.NewString(name, 0, 0, s), n, err
	case ParamDifferences:
		if err := need(buf, off, 1); err != nil {
			return core.Field{}, 0, err
		}
		if buf[off]&ShortFilter != 0 {
			v := uint64(buf[off] & 0x7f)
			return core.NewEnum(name, 0, 0, v, "header 0x"+strconv.FormatUint(v, 16)), 1, nil
		}
		s, n, err := ReadTextString(buf, off)
		return core.NewString(name, 0, 0, s), n, err
	case ParamCreationDate, ParamModificationDate, ParamReadDate:
		t, n, err := ReadDateValue(buf, off)
		return core.NewTime(name, 0, 0, t), n, err
	case ParamNameDefunct, ParamFilenameDefunct, ParamStartDefunct, ParamStartInfoDefunct,
		ParamCommentDefunct, ParamDomainDefunct, ParamPathDefunct:
		s, n, err := ReadTextString(buf, off)
		return core.NewString(name, 0, 0, s), n, err
	case ParamMAC, ParamName, ParamFilename, ParamStart, ParamStartInfo, ParamComment,
		ParamDomain, ParamPath:
		s, n, err := ReadTextValue(buf, off)
		return core.NewString(name, 0, 0, s), n, err
	}
	return readUntypedValue(buf, off, name)
}

// readUntypedValue reads an Untyped-value: Integer-value or Text-value.
func readUntypedValue(buf []byte, off int, name string) (core.Field, int, error) {
	if err := need(buf, off, 1); err != nil {
		return core.Field{}, 0, err
	}
	b := buf[off]
	if b&ShortFilter != 0 || (b > 0 && b <= ShortLengthMax) {
		v, n, err := ReadIntegerValue(buf, off)
		return core.NewUint(name, 0, 0, v), n, err
	}
	s, n, err := ReadTextValue(buf, off)
	return core.NewString(name, 0, 0, s), n, err
}
