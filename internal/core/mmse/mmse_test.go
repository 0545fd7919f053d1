package mmse

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/wap"
)

func pdu(parts ...any) []byte {
	var b []byte
	for _, p := range parts {
		switch v := p.(type) {
		case byte:
			b = append(b, v)
		case int:
			b = append(b, byte(v))
		case string:
			b = append(b, v...)
		case []byte:
			b = append(b, v...)
		default:
			panic(fmt.Sprintf("pdu: unsupported part %T", p))
		}
	}
	return b
}

func decodeHeaders(t *testing.T, buf []byte) (Headers, *core.Tree) {
	t.Helper()
	var tree core.Tree
	h, err := New(Config{}).DecodeHeaders(buf, 0, &tree)
	require.NoError(t, err)
	return h, &tree
}

func find(t *testing.T, tree *core.Tree, name string) core.Field {
	t.Helper()
	f, ok := tree.Find(name)
	require.True(t, ok, "field %q not emitted", name)
	return f
}

func TestSendReqHeaders(t *testing.T) {
	buf := pdu(0x8c, 0x80, 0x98, "TID", 0, 0x8d, 0x90, 0x84, 0xb3, "body")

	h, tree := decodeHeaders(t, buf)
	assert.Equal(t, SendReq, h.MessageType)
	assert.Equal(t, "TID", h.TransactionID)
	assert.Equal(t, Version10, h.Version)
	assert.True(t, h.AtContentType)
	assert.Equal(t, 10, h.Next)

	assert.Equal(t, "m-send-req", find(t, tree, "message_type").Text)
	assert.Equal(t, "TID", find(t, tree, "transaction_id").Text)
	assert.Equal(t, "1.0", find(t, tree, "mms_version").Text)

	tid := find(t, tree, "transaction_id")
	assert.Equal(t, 2, tid.Start)
	assert.Equal(t, 5, tid.Length)
}

func TestMessageIDHeader(t *testing.T) {
	buf := pdu(0x8c, 0x80, 0x8b, "TID", 0, 0x8d, 0x90, 0x84, 0xb3)

	h, tree := decodeHeaders(t, buf)
	assert.Equal(t, "TID", h.MessageID)
	assert.Empty(t, h.TransactionID)
	assert.Equal(t, 10, h.Next)
	assert.Equal(t, "TID", find(t, tree, "message_id").Text)
	_, ok := tree.Find("transaction_id")
	assert.False(t, ok)
}

func TestDecodeContentTypeAndBody(t *testing.T) {
	buf := pdu(0x8c, 0x84, 0x98, "T1", 0, 0x84, 0xa3, 0xde, 0xad)

	var tree core.Tree
	n, err := New(Config{}).Decode(buf, 0, &tree)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	assert.Equal(t, "m-retrieve-conf", find(t, &tree, "message_type").Text)
	assert.Equal(t, "application/vnd.wap.multipart.mixed", find(t, &tree, "content_type").Text)
	body := find(t, &tree, "message_body")
	assert.Equal(t, 8, body.Start)
	assert.Equal(t, []byte{0xde, 0xad}, body.Value)
}

func TestDecodeBodyHandler(t *testing.T) {
	buf := pdu(0x8c, 0x84, 0x84, 0xa3, 0x01, 0x02, 0x03)

	var gotOff int
	var gotCT wap.ContentType
	d := New(Config{Body: BodyHandlerFunc(func(buf []byte, off int, ct wap.ContentType, sink core.Sink) (int, error) {
		gotOff, gotCT = off, ct
		sink.Emit(core.NewUint("parts", off, 1, uint64(buf[off])))
		return len(buf) - off, nil
	})})

	var tree core.Tree
	n, err := d.Decode(buf, 0, &tree)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, 4, gotOff)
	assert.Equal(t, uint32(0x23), gotCT.WellKnown)
	assert.Equal(t, uint64(1), find(t, &tree, "parts").Value)
	_, ok := tree.Find("message_body")
	assert.False(t, ok)
}

func TestReadReplyDependsOnVersion(t *testing.T) {
	tests := []struct {
		name  string
		buf   []byte
		field string
		text  string
	}{
		{"no version", pdu(0x8c, 0x80, 0x90, 0x80), "read_reply", "Yes"},
		{"mms 1.0", pdu(0x8c, 0x80, 0x8d, 0x90, 0x90, 0x81), "read_reply", "No"},
		{"mms 1.1", pdu(0x8c, 0x80, 0x8d, 0x91, 0x90, 0x80), "read_report", "Yes"},
		{"mms 1.3", pdu(0x8c, 0x80, 0x8d, 0x93, 0x90, 0x81), "read_report", "No"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tree := decodeHeaders(t, tt.buf)
			assert.Equal(t, tt.text, find(t, tree, tt.field).Text)
		})
	}
}

func TestHeaderName(t *testing.T) {
	assert.Equal(t, "X-Mms-Read-Reply", HeaderName(TagReadReply, DefaultVersion))
	assert.Equal(t, "X-Mms-Read-Reply", HeaderName(TagReadReply, Version10))
	assert.Equal(t, "X-Mms-Read-Report", HeaderName(TagReadReply, Version12))
	assert.Equal(t, "Content-Type", HeaderName(TagContentType, Version10))
	assert.Equal(t, "X-Mms-Transaction-Id", HeaderName(TagTransactionID, Version10))
	assert.Equal(t, "", HeaderName(0xc5, Version13))
}

func TestMessageTypeName(t *testing.T) {
	assert.Equal(t, "m-notification-ind", MessageTypeName(NotificationInd))
	assert.Equal(t, "m-cancel-conf", MessageTypeName(CancelConf))
	assert.Equal(t, "Unknown type 153", MessageTypeName(0x99))
}

func TestDateHeader(t *testing.T) {
	_, tree := decodeHeaders(t, pdu(0x8c, 0x80, 0x85, 0x04, 0x3b, 0x9a, 0xca, 0x00))
	f := find(t, tree, "date")
	assert.Equal(t, time.Unix(1000000000, 0).UTC(), f.Value)
	assert.Equal(t, "2001-09-09T01:46:40Z", f.Text)
	assert.Equal(t, 6, f.Length)
}

func TestExpiry(t *testing.T) {
	t.Run("relative", func(t *testing.T) {
		_, tree := decodeHeaders(t, pdu(0x8c, 0x80, 0x88, 0x03, 0x81, 0x01, 0x3c))
		f := find(t, tree, "expiry")
		assert.Equal(t, uint64(60), f.Value)
		assert.Equal(t, "60 seconds", f.Text)
		assert.Equal(t, 5, f.Length)
		assert.Equal(t, "Relative", find(t, tree, "token").Text)
	})
	t.Run("absolute", func(t *testing.T) {
		_, tree := decodeHeaders(t, pdu(0x8c, 0x80, 0x88, 0x06, 0x80, 0x04, 0x3b, 0x9a, 0xca, 0x00))
		f := find(t, tree, "expiry")
		assert.Equal(t, "2001-09-09T01:46:40Z", f.Text)
		assert.Equal(t, "Absolute", find(t, tree, "token").Text)
		assert.Equal(t, "2001-09-09T01:46:40Z", find(t, tree, "absolute").Text)
	})
	t.Run("unregistered token is relative", func(t *testing.T) {
		h, tree := decodeHeaders(t, pdu(0x8c, 0x80, 0x87, 0x03, 0x82, 0x01, 0x3c, 0x98, "x", 0))
		f := find(t, tree, "delivery_time")
		assert.NoError(t, f.Err)
		assert.Equal(t, core.KindUint, f.Kind)
		assert.Equal(t, uint64(60), f.Value)
		assert.Equal(t, "60 seconds", f.Text)
		assert.Equal(t, "Relative (0x82)", find(t, tree, "token").Text)
		assert.Equal(t, uint64(60), find(t, tree, "relative").Value)
		assert.Equal(t, "x", h.TransactionID)
	})
}

func TestOversizedLengthIsFieldLocal(t *testing.T) {
	// From with a Length-quote and a five octet uintvar.
	buf := pdu(0x8c, 0x80, 0x89, 0x1f, 0x81, 0x80, 0x80, 0x80, 0x00, 0x98, "x", 0)
	var tree core.Tree
	h, err := New(Config{}).DecodeHeaders(buf, 0, &tree)
	require.NoError(t, err)

	f := find(t, &tree, "from")
	assert.ErrorIs(t, f.Err, core.ErrOversizedVarint)
	assert.Equal(t, 2, f.Start)
	assert.Equal(t, 7, f.Length)
	assert.Empty(t, h.From)

	assert.Equal(t, "x", h.TransactionID)
	assert.Equal(t, "x", find(t, &tree, "transaction_id").Text)
	assert.Equal(t, len(buf), h.Next)
	require.Len(t, tree.Diagnostics(), 1)
}

func TestFrom(t *testing.T) {
	t.Run("address", func(t *testing.T) {
		h, tree := decodeHeaders(t, pdu(0x8c, 0x80, 0x89, 0x05, 0x80, "abc", 0))
		assert.Equal(t, "abc", h.From)
		f := find(t, tree, "from")
		assert.Equal(t, "abc", f.Text)
		assert.Equal(t, 7, f.Length)
		assert.Equal(t, "abc", find(t, tree, "address").Text)
	})
	t.Run("insert address", func(t *testing.T) {
		_, tree := decodeHeaders(t, pdu(0x8c, 0x80, 0x89, 0x01, 0x81))
		assert.Equal(t, "<insert-address>", find(t, tree, "from").Text)
	})
}

func TestEncodedStringCharset(t *testing.T) {
	h, tree := decodeHeaders(t, pdu(0x8c, 0x80, 0x96, 0x05, 0xea, "hij", 0))
	assert.Equal(t, "hij", h.Subject)
	assert.Equal(t, "hij", find(t, tree, "subject").Text)
	cs := find(t, tree, "charset")
	assert.Equal(t, "utf-8", cs.Text)
	assert.Equal(t, 4, cs.Start)
}

func TestRepeatedTo(t *testing.T) {
	h, tree := decodeHeaders(t, pdu(0x8c, 0x80, 0x97, "a", 0, 0x97, "b", 0))
	assert.Equal(t, []string{"a", "b"}, h.To)
	assert.Len(t, tree.All("to"), 2)
}

func TestCompoundHeaders(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		field string
		text  string
	}{
		{"mm flags", pdu(0xa4, 0x05, 0x80, "key", 0), "mm_flags", "Add: key"},
		{"mbox totals", pdu(0xaa, 0x02, 0x80, 0x85), "mbox_totals", "5 messages"},
		{"mbox quotas", pdu(0xac, 0x03, 0x81, 0x01, 0x20), "mbox_quotas", "32 bytes"},
		{"previously sent by", pdu(0xa0, 0x05, 0x81, "xyz", 0), "previously_sent_by", "xyz (1)"},
		{"previously sent date", pdu(0xa1, 0x06, 0x82, 0x04, 0x3b, 0x9a, 0xca, 0x00), "previously_sent_date", "2001-09-09T01:46:40Z"},
		{"attributes", pdu(0xa8, 0x96), "attributes", "Subject"},
		{"element descriptor", pdu(0xb2, 0x06, "<a>", 0, 0x89, 0x9d), "element_descriptor", "<a>; type=image/gif"},
		{"message class token", pdu(0x8a, 0x82), "message_class", "Informational"},
		{"message class text", pdu(0x8a, "bulk", 0), "message_class", "bulk"},
		{"priority", pdu(0x8f, 0x82), "priority", "High"},
		{"response status", pdu(0x92, 0xe3), "response_status", "Error-permanent-sending-address-unresolved"},
		{"message count", pdu(0xad, 0x8a), "message_count", "10"},
		{"message size", pdu(0x8e, 0x02, 0x01, 0x00), "message_size", "256"},
		{"content class", pdu(0xba, 0x84), "content_class", "video-rich"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := pdu(0x8c, 0x80, tt.value)
			h, tree := decodeHeaders(t, buf)
			f := find(t, tree, tt.field)
			assert.Equal(t, tt.text, f.Text)
			assert.NoError(t, f.Err)
			assert.Equal(t, 2, f.Start)
			assert.Equal(t, len(tt.value), f.Length)
			assert.Equal(t, len(buf), h.Next)
			assert.False(t, h.AtContentType)
		})
	}
}

func TestLiteralHeader(t *testing.T) {
	h, tree := decodeHeaders(t, pdu(0x8c, 0x80, "X-Foo", 0, "bar", 0, 0x98, "t", 0))
	f := find(t, tree, "header")
	assert.Equal(t, "X-Foo: bar", f.Text)
	assert.Equal(t, 2, f.Start)
	assert.Equal(t, 10, f.Length)
	assert.Equal(t, "X-Foo", find(t, tree, "name").Text)
	assert.Equal(t, "t", h.TransactionID)
}

func TestUnknownHeader(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		text  string
	}{
		{"short integer", pdu(0xc5, 0x85), "5"},
		{"text", pdu(0xc5, "abc", 0), "abc"},
		{"value length", pdu(0xc5, 0x02, 0xab, 0xcd), "abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, tree := decodeHeaders(t, pdu(0x8c, 0x80, tt.value, 0x98, "x", 0))
			f := find(t, tree, "header_0xc5")
			assert.Equal(t, tt.text, f.Text)
			assert.NoError(t, f.Err)
			assert.Equal(t, "x", h.TransactionID)
		})
	}
}

func TestFieldLocalErrorsContinue(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		field string
		err   error
	}{
		{"enum without high bit", pdu(0x8f, 0x05), "priority", core.ErrMalformedHeader},
		{"unknown enum value", pdu(0x8f, 0x99), "priority", nil},
		{"long integer too wide", pdu(0x8e, 0x05, 1, 2, 3, 4, 5), "message_size", core.ErrValueRange},
		{"bad value length", pdu(0x89, 0x40), "from", core.ErrMalformedHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, tree := decodeHeaders(t, pdu(0x8c, 0x80, tt.value, 0x98, "x", 0))
			f := find(t, tree, tt.field)
			if tt.err == nil {
				assert.NoError(t, f.Err)
			} else {
				assert.ErrorIs(t, f.Err, tt.err)
			}
			assert.Equal(t, len(tt.value), f.Length)
			assert.Equal(t, "x", h.TransactionID)
		})
	}
	_, tree := decodeHeaders(t, pdu(0x8c, 0x80, 0x8f, 0x99))
	assert.Equal(t, "Unknown value 0x99", find(t, tree, "priority").Text)
}

func TestNotMMSE(t *testing.T) {
	_, err := New(Config{}).Decode([]byte{0x8d, 0x90}, 0, nil)
	assert.ErrorIs(t, err, core.ErrNotMMSE)

	_, err = New(Config{}).Decode([]byte{0x8c}, 0, nil)
	assert.ErrorIs(t, err, core.ErrTruncated)
}

func TestNegativeOffset(t *testing.T) {
	buf := pdu(0x8c, 0x80, 0x98, "x", 0)
	var tree core.Tree
	require.NotPanics(t, func() {
		h, err := New(Config{}).DecodeHeaders(buf, -1, &tree)
		assert.ErrorIs(t, err, core.ErrTruncated)
		assert.Equal(t, -1, h.Next)

		n, err := New(Config{}).Decode(buf, -3, nil)
		assert.ErrorIs(t, err, core.ErrTruncated)
		assert.Equal(t, 0, n)
	})
	assert.Equal(t, 0, tree.Len())
}

func TestOffset(t *testing.T) {
	buf := pdu(0xff, 0xff, 0x8c, 0x80, 0x98, "TID", 0, 0x84, 0xb3)
	var tree core.Tree
	n, err := New(Config{}).Decode(buf, 2, &tree)
	require.NoError(t, err)
	assert.Equal(t, len(buf)-2, n)
	assert.Equal(t, 2, find(t, &tree, "message_type").Start)
	assert.Equal(t, 4, find(t, &tree, "transaction_id").Start)
}

func TestTruncatedPrefixes(t *testing.T) {
	buf := pdu(
		0x8c, 0x80,
		0x98, "TID", 0,
		0x8d, 0x92,
		0x89, 0x05, 0x80, "abc", 0,
		0x96, 0x05, 0xea, "hij", 0,
		0x88, 0x03, 0x81, 0x01, 0x3c,
		0x8e, 0x02, 0x01, 0x00,
		"X-Foo", 0, "bar", 0,
		0x84, 0x1b, 0xb3, 0x89, "application/smil", 0, 0x8a, "<0000>", 0,
		0x01, 0x02,
	)
	var full core.Tree
	_, err := New(Config{}).Decode(buf, 0, &full)
	require.NoError(t, err)

	for i := 0; i < len(buf); i++ {
		var tree core.Tree
		assert.NotPanics(t, func() {
			_, err = New(Config{}).Decode(buf[:i], 0, &tree)
		})
		if err != nil {
			assert.True(t, errors.Is(err, core.ErrTruncated), "prefix %d: %v", i, err)
		}
		assert.LessOrEqual(t, tree.Len(), full.Len(), "prefix %d", i)
	}
}

func TestConcurrentDecode(t *testing.T) {
	d := New(Config{})
	buf := pdu(0x8c, 0x80, 0x98, "TID", 0, 0x8d, 0x90, 0x84, 0xb3)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var tree core.Tree
			h, err := d.DecodeHeaders(buf, 0, &tree)
			assert.NoError(t, err)
			assert.Equal(t, "TID", h.TransactionID)
		}()
	}
	wg.Wait()
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "1.0", Headers{Version: DefaultVersion}.VersionString())
	assert.Equal(t, "1.2", Headers{Version: Version12}.VersionString())
}
