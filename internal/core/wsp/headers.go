package wsp

import (
	"fmt"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/wap"
)

// Well-known header field names, WSP Table 39 (encoding versions 1.1 to 1.4).
var headerNames = []string{
	"Accept", "Accept-Charset", "Accept-Encoding", "Accept-Language",
	"Accept-Ranges", "Age", "Allow", "Authorization",
	"Cache-Control", "Connection", "Content-Base", "Content-Encoding",
	"Content-Language", "Content-Length", "Content-Location", "Content-MD5",
	"Content-Range", "Content-Type", "Date", "Etag",
	"Expires", "From", "Host", "If-Modified-Since",
	"If-Match", "If-None-Match", "If-Range", "If-Unmodified-Since",
	"Location", "Last-Modified", "Max-Forwards", "Pragma",
	"Proxy-Authenticate", "Proxy-Authorization", "Public", "Range",
	"Referer", "Retry-After", "Server", "Transfer-Encoding",
	"Upgrade", "User-Agent", "Vary", "Via",
	"Warning", "WWW-Authenticate", "Content-Disposition", "X-Wap-Application-Id",
	"X-Wap-Content-URI", "X-Wap-Initiator-URI", "Accept-Application", "Bearer-Indication",
	"Push-Flag", "Profile", "Profile-Diff", "Profile-Warning",
	"Expect", "TE", "Trailer", "Accept-Charset",
	"Accept-Encoding", "Cache-Control", "Content-Range", "X-Wap-Tod",
	"Content-ID", "Set-Cookie", "Cookie", "Encoding-Version",
	"Profile-Warning", "Content-Disposition", "X-WAP-Security", "Cache-Control",
}

// Header field codes with a dedicated value grammar.
const (
	HeaderAge               = 0x05
	HeaderContentLength     = 0x0d
	HeaderContentLocation   = 0x0e
	HeaderDate              = 0x12
	HeaderExpires           = 0x14
	HeaderIfModifiedSince   = 0x17
	HeaderLastModified      = 0x1d
	HeaderMaxForwards       = 0x1e
	HeaderXWapApplicationID = 0x2f
	HeaderXWapContentURI    = 0x30
	HeaderXWapInitiatorURI  = 0x31
	HeaderPushFlag          = 0x34
	HeaderXWapTod           = 0x3f
	HeaderContentID         = 0x40
)

// HeaderName returns the name of a well-known header field code.
func HeaderName(code byte) string {
	if int(code) < len(headerNames) {
		return headerNames[code]
	}
	return fmt.Sprintf("Unknown header 0x%02x", code)
}

// Push application identifiers registered with OMNA.
var applicationIDs = map[uint64]string{
	0x00: "x-wap-application:*",
	0x01: "x-wap-application:push.sia",
	0x02: "x-wap-application:wml.ua",
	0x03: "x-wap-application:wta.ua",
	0x04: "x-wap-application:mms.ua",
	0x05: "x-wap-application:push.syncml",
	0x06: "x-wap-application:loc.ua",
	0x07: "x-wap-application:syncml.dm",
	0x08: "x-wap-application:drm.ua",
	0x09: "x-wap-application:emn.ua",
	0x0a: "x-wap-application:wv.ua",
}

// ApplicationIDName returns the registered URN of a push application id.
func ApplicationIDName(id uint64) string {
	if s, ok := applicationIDs[id]; ok {
		return s
	}
	return fmt.Sprintf("x-wap-application:0x%02x", id)
}

const (
	shiftDelimiter = 0x7f
	shortCutMax    = 0x1f
)

// header is one decoded header field.
type header struct {
	name  string
	code  int // well-known code, -1 for application headers
	value string
	field core.Field
}

// readHeaders decodes WSP headers from off to end. Malformed values become field-local
// diagnostics; the walk stops at the first header it cannot delimit.
func readHeaders(buf []byte, off, end int) ([]header, error) {
	b := buf[:end]
	var out []header
	page := 1
	for pos := off; pos < end; {
		start := pos
		c := b[pos]
		switch {
		case c == shiftDelimiter:
			if pos+1 >= end {
				return out, fmt.Errorf("code page shift at offset %d: %w", pos, core.ErrTruncated)
			}
			page = int(b[pos+1])
			f := core.NewUint("code_page", start, 2, uint64(page))
			out = append(out, header{name: "code_page", code: -1, field: f})
			pos += 2

		case c >= 0x01 && c <= shortCutMax:
			page = int(c)
			out = append(out, header{name: "code_page", code: -1, field: core.NewUint("code_page", start, 1, uint64(page))})
			pos++

		case c&0x80 != 0:
			code := c & 0x7f
			name := HeaderName(code)
			if page != 1 {
				name = fmt.Sprintf("Page %d header 0x%02x", page, code)
			}
			f, n, err := headerValue(b, pos+1, code)
			if err != nil {
				if core.IsFatal(err) {
					return out, fmt.Errorf("%s at offset %d: %w", name, pos, err)
				}
				n = min(max(n, 1), end-pos-1)
				f = core.NewBytes("", pos+1, n, b[pos+1:pos+1+n]).WithErr(err)
			}
			f.Name = "header"
			f.Start = start
			f.Length = 1 + n
			value := f.Text
			f = f.WithText(name + ": " + value)
			out = append(out, header{name: name, code: int(code), value: value, field: f})
			pos += 1 + n

		default:
			name, nn, err := wap.ReadTextString(b, pos)
			if err != nil {
				return out, fmt.Errorf("header name at offset %d: %w", pos, err)
			}
			value, vn, err := wap.ReadTextValue(b, pos+nn)
			if err != nil {
				return out, fmt.Errorf("header %q at offset %d: %w", name, pos, err)
			}
			f := core.NewString("header", start, nn+vn, value).WithText(name + ": " + value)
			out = append(out, header{name: name, code: -1, value: value, field: f})
			pos += nn + vn
		}
	}
	return out, nil
}

// headerValue decodes the value of well-known header code at off.
func headerValue(buf []byte, off int, code byte) (core.Field, int, error) {
	switch code {
	case HeaderDate, HeaderExpires, HeaderIfModifiedSince, HeaderLastModified, HeaderXWapTod:
		t, n, err := wap.ReadDateValue(buf, off)
		if err != nil {
			return core.Field{}, n, err
		}
		return core.NewTime("", off, n, t), n, nil

	case HeaderAge, HeaderContentLength, HeaderMaxForwards:
		v, n, err := wap.ReadIntegerValue(buf, off)
		if err != nil {
			return core.Field{}, n, err
		}
		return core.NewUint("", off, n, v), n, nil

	case HeaderXWapApplicationID:
		if off < len(buf) && buf[off] >= 0x20 && buf[off] < 0x80 {
			s, n, err := wap.ReadTextString(buf, off)
			if err != nil {
				return core.Field{}, n, err
			}
			return core.NewString("", off, n, s), n, nil
		}
		v, n, err := wap.ReadIntegerValue(buf, off)
		if err != nil {
			return core.Field{}, n, err
		}
		return core.NewEnum("", off, n, v, ApplicationIDName(v)), n, nil

	case HeaderPushFlag:
		v, n, err := wap.ReadShortInteger(buf, off)
		if err != nil {
			return core.Field{}, n, err
		}
		return core.NewEnum("", off, n, uint64(v), pushFlags(v)), n, nil

	case HeaderContentLocation, HeaderXWapContentURI, HeaderXWapInitiatorURI:
		s, n, err := wap.ReadTextString(buf, off)
		if err != nil {
			return core.Field{}, n, err
		}
		return core.NewString("", off, n, s), n, nil
	}
	return genericValue(buf, off)
}

// genericValue renders a value with no dedicated grammar: a Short-integer, a
// Value-length-prefixed block or a Text-string.
func genericValue(buf []byte, off int) (core.Field, int, error) {
	if off >= len(buf) {
		return core.Field{}, 0, core.ErrTruncated
	}
	c := buf[off]
	switch {
	case c&0x80 != 0:
		return core.NewUint("", off, 1, uint64(c&0x7f)), 1, nil
	case c <= shortCutMax:
		l, ln, err := wap.ReadValueLength(buf, off)
		if err != nil {
			return core.Field{}, ln, err
		}
		end := off + ln + int(l)
		if end > len(buf) {
			return core.Field{}, len(buf) - off, core.ErrTruncated
		}
		return core.NewBytes("", off, end-off, buf[off+ln:end]), end - off, nil
	}
	s, n, err := wap.ReadTextValue(buf, off)
	if err != nil {
		return core.Field{}, n, err
	}
	return core.NewString("", off, n, s), n, nil
}

func pushFlags(v uint8) string {
	var s string
	add := func(bit uint8, name string) {
		if v&bit != 0 {
			if s != "" {
				s += ", "
			}
			s += name
		}
	}
	add(0x01, "initiator authenticated")
	add(0x02, "content trusted")
	add(0x04, "last push")
	if s == "" {
		return "none"
	}
	return s
}
