package wsp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wapdec/internal/core"
)

func TestDecodeConnectionlessPush(t *testing.T) {
	body := []byte{0x02, 0x05, 0x6a, 0x00, 0x05, 0x01}
	buf := append([]byte{0x01, 0x06, 0x03, 0xae, 0xaf, 0x82}, body...)

	var tree core.Tree
	p, err := New(Config{Connectionless: true}).Decode(buf, 0, &tree)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), p.TID)
	assert.Equal(t, PDUPush, p.Type)
	assert.Equal(t, "application/vnd.wap.sic", p.ContentType.MediaType)
	assert.Equal(t, "x-wap-application:wml.ua", p.ApplicationID)
	assert.Equal(t, 6, p.Body)
	assert.Equal(t, len(body), p.BodyLen)
	assert.Equal(t, map[string]string{"X-Wap-Application-Id": "x-wap-application:wml.ua"}, p.Headers)

	pt, ok := tree.Find("pdu_type")
	require.True(t, ok)
	assert.Equal(t, "Push", pt.Text)
	h, ok := tree.Find("header")
	require.True(t, ok)
	assert.Equal(t, "X-Wap-Application-Id: x-wap-application:wml.ua", h.Text)
	assert.Equal(t, 4, h.Start)
	assert.Equal(t, 2, h.Length)
	g, ok := tree.Find("headers")
	require.True(t, ok)
	assert.Equal(t, 2, g.Length)
}

func TestDecodeConnectionOrientedPush(t *testing.T) {
	buf := []byte{0x06, 0x01, 0xbe, 0x8c, 0x82}
	p, err := New(Config{}).Decode(buf, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.wap.mms-message", p.ContentType.MediaType)
	assert.Equal(t, 3, p.Body)
	assert.Equal(t, 2, p.BodyLen)
	assert.Nil(t, p.Headers)
}

func TestPushHeaders(t *testing.T) {
	hdrs := []byte{
		0x92, 0x04, 0x3b, 0x9a, 0xca, 0x00, // Date
		0x8d, 0x82, // Content-Length: 2
		0xb4, 0x85, // Push-Flag
		0xaf, 'x', '-', 'a', 0x00, // X-Wap-Application-Id as URI
		'X', '-', 'F', 'o', 'o', 0x00, 'b', 'a', 'r', 0x00,
	}
	buf := append([]byte{0x06, byte(len(hdrs) + 1), 0xb0}, hdrs...)

	var tree core.Tree
	p, err := New(Config{}).Decode(buf, 0, &tree)
	require.NoError(t, err)
	assert.Equal(t, "x-a", p.ApplicationID)
	assert.Equal(t, "2001-09-09T01:46:40Z", p.Headers["Date"])
	assert.Equal(t, "2", p.Headers["Content-Length"])
	assert.Equal(t, "initiator authenticated, last push", p.Headers["Push-Flag"])
	assert.Equal(t, "bar", p.Headers["X-Foo"])
	assert.Len(t, tree.All("header"), 5)
	assert.Equal(t, len(buf), p.Body)
	assert.Equal(t, 0, p.BodyLen)
}

func TestPushCodePageShift(t *testing.T) {
	buf := []byte{0x06, 0x05, 0xb0, 0x7f, 0x02, 0x81, 0x83}
	var tree core.Tree
	p, err := New(Config{}).Decode(buf, 0, &tree)
	require.NoError(t, err)
	cp, ok := tree.Find("code_page")
	require.True(t, ok)
	assert.Equal(t, uint64(2), cp.Value)
	assert.Equal(t, "3", p.Headers["Page 2 header 0x01"])
}

func TestPushMalformedHeaderIsLocal(t *testing.T) {
	buf := []byte{0x06, 0x05, 0xb0, 0xb4, 0x05, 0x8d, 0x81}
	var tree core.Tree
	p, err := New(Config{}).Decode(buf, 0, &tree)
	require.NoError(t, err)
	require.Len(t, tree.Diagnostics(), 1)
	assert.ErrorIs(t, tree.Diagnostics()[0].Err, core.ErrMalformedHeader)
	assert.Equal(t, "1", p.Headers["Content-Length"])
}

func TestNotPush(t *testing.T) {
	_, err := New(Config{Connectionless: true}).Decode([]byte{0x01, 0x04, 0x00}, 0, nil)
	assert.ErrorIs(t, err, core.ErrNotWSPPush)
}

func TestPushTruncated(t *testing.T) {
	buf := []byte{0x01, 0x06, 0x03, 0xae, 0xaf, 0x82, 0x02}
	for i := 0; i < 6; i++ {
		_, err := New(Config{Connectionless: true}).Decode(buf[:i], 0, nil)
		assert.ErrorIs(t, err, core.ErrTruncated, "prefix %d", i)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "X-Wap-Application-Id", HeaderName(HeaderXWapApplicationID))
	assert.Equal(t, "Unknown header 0x7e", HeaderName(0x7e))
	assert.Equal(t, "x-wap-application:mms.ua", ApplicationIDName(4))
	assert.Equal(t, "x-wap-application:0x20", ApplicationIDName(0x20))
	assert.Equal(t, "ConfirmedPush", PDUTypeName(PDUConfirmedPush))
	assert.Equal(t, "Unknown PDU 0x7f", PDUTypeName(0x7f))
}

func TestDateHeaderValue(t *testing.T) {
	f, n, err := headerValue([]byte{0x04, 0x3b, 0x9a, 0xca, 0x00}, 0, HeaderDate)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, time.Unix(1000000000, 0).UTC(), f.Value)
}
