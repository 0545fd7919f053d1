package render

import (
	"bytes"
	"encoding/json"
	"net/netip"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugorji/go/codec"
	"gopkg.in/yaml.v3"

	"firestige.xyz/wapdec/internal/core"
)

func sampleFields() []core.Field {
	hdr := core.NewEnum("message_type", 0, 2, 0x80, "m-send-req")
	tid := core.NewString("transaction_id", 2, 5, "TID")
	bad := core.NewBytes("header_0x7e", 7, 2, []byte{0x01, 0x02}).WithErr(core.ErrMalformedHeader)
	date := core.NewTime("date", 9, 6, time.Unix(1000000000, 0))
	grp := core.NewGroup("headers", 2, "")
	grp.Length = 13
	grp.Children = []core.Field{tid, bad, date}
	return []core.Field{hdr, grp}
}

func TestNodes(t *testing.T) {
	got := Nodes(sampleFields())
	want := []Node{
		{Name: "message_type", Kind: "uint", Value: uint64(0x80), Text: "m-send-req", Offset: 0, Length: 2},
		{Name: "headers", Offset: 2, Length: 13, Children: []Node{
			{Name: "transaction_id", Kind: "string", Text: "TID", Offset: 2, Length: 5},
			{Name: "header_0x7e", Kind: "bytes", Text: "0102", Offset: 7, Length: 2, Error: core.ErrMalformedHeader.Error()},
			{Name: "date", Kind: "time", Text: "2001-09-09T01:46:40Z", Offset: 9, Length: 6},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Nodes() mismatch (-want +got):\n%s", diff)
	}
}

func samplePacket() *core.OutputPacket {
	return &core.OutputPacket{
		Source:      "push.pcap",
		Index:       4,
		Timestamp:   time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC),
		SrcIP:       netip.MustParseAddr("10.0.0.1"),
		DstIP:       netip.MustParseAddr("10.0.0.2"),
		SrcPort:     9200,
		DstPort:     2948,
		Protocol:    17,
		Labels:      core.Labels{core.LabelMMSMessageType: "m-send-req", core.LabelWSPPDUType: "Push"},
		PayloadType: "wap",
		Payload:     sampleFields(),
		RawPayload:  []byte{0x8c, 0x80},
	}
}

func TestFromPacket(t *testing.T) {
	r := FromPacket(samplePacket())
	assert.Equal(t, "10.0.0.1:9200", r.Src)
	assert.Equal(t, "10.0.0.2:2948", r.Dst)
	assert.Equal(t, "2024-01-02T03:04:05.000006Z", r.Timestamp)
	assert.Equal(t, 2, r.PayloadLen)
	assert.Len(t, r.Fields, 2)
	assert.Empty(t, r.Error)
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, textRenderer{}.Render(&buf, FromPacket(samplePacket())))
	want := "#4 2024-01-02T03:04:05.000006Z 10.0.0.1:9200 -> 10.0.0.2:2948 type=wap len=2\n" +
		"  mms.message_type=m-send-req\n" +
		"  wsp.pdu_type=Push\n" +
		"  [0+2] message_type: m-send-req\n" +
		"  [2+13] headers\n" +
		"    [2+5] transaction_id: TID\n" +
		"    [7+2] header_0x7e: 0102  !! " + core.ErrMalformedHeader.Error() + "\n" +
		"    [9+6] date: 2001-09-09T01:46:40Z\n"
	assert.Equal(t, want, buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jsonRenderer{}.Render(&buf, FromPacket(samplePacket())))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "push.pcap", got["source"])
	assert.Equal(t, "wap", got["payload_type"])
	fields := got["fields"].([]any)
	assert.Equal(t, "m-send-req", fields[0].(map[string]any)["text"])
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, yamlRenderer{}.Render(&buf, FromPacket(samplePacket())))

	var got Record
	require.NoError(t, yaml.Unmarshal(bytes.TrimPrefix(buf.Bytes(), []byte("---\n")), &got))
	assert.Equal(t, uint64(4), got.Index)
	assert.Equal(t, "TID", got.Fields[1].Children[0].Text)
}

func TestCBOR(t *testing.T) {
	var buf bytes.Buffer
	r, err := New("cbor")
	require.NoError(t, err)
	require.NoError(t, r.Render(&buf, FromPacket(samplePacket())))

	var got map[string]any
	require.NoError(t, codec.NewDecoderBytes(buf.Bytes(), &codec.CborHandle{}).Decode(&got))
	assert.Equal(t, "push.pcap", got["source"])
	assert.Equal(t, "10.0.0.1:9200", got["src"])
}

func TestNew(t *testing.T) {
	for _, f := range Formats {
		_, err := New(f)
		assert.NoError(t, err, f)
	}
	_, err := New("xml")
	assert.Error(t, err)
}
