package console

import (
	"bytes"
	"context"
	"encoding/json"
	"net/netip"
	"strings"
	"testing"
	"time"

	"firestige.xyz/wapdec/internal/core"
)

func TestConsoleReporter_Init(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
		wantFmt string
	}{
		{
			name:    "nil config defaults to text",
			config:  nil,
			wantFmt: "text",
		},
		{
			name:    "empty config defaults to text",
			config:  map[string]any{},
			wantFmt: "text",
		},
		{
			name:    "json format",
			config:  map[string]any{"format": "json"},
			wantFmt: "json",
		},
		{
			name:    "cbor format",
			config:  map[string]any{"format": "cbor"},
			wantFmt: "cbor",
		},
		{
			name:    "invalid format",
			config:  map[string]any{"format": "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewConsoleReporter().(*ConsoleReporter)
			err := r.Init(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("Init() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && r.format != tt.wantFmt {
				t.Errorf("Init() format = %v, want %v", r.format, tt.wantFmt)
			}
		})
	}
}

func testPacket() *core.OutputPacket {
	return &core.OutputPacket{
		Source:      "push.pcap",
		Index:       7,
		PipelineID:  1,
		Timestamp:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		SrcIP:       netip.MustParseAddr("192.168.1.1"),
		DstIP:       netip.MustParseAddr("192.168.1.2"),
		SrcPort:     9200,
		DstPort:     2948,
		Protocol:    17,
		PayloadType: "wap",
		Labels: core.Labels{
			core.LabelWSPPDUType:     "Push",
			core.LabelMMSMessageType: "m-notification-ind",
		},
		Payload:    []core.Field{core.NewEnum("pdu_type", 1, 1, 6, "Push")},
		RawPayload: []byte{0x01, 0x06},
	}
}

func TestConsoleReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	if err := r.Init(map[string]any{"format": "json"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := r.Report(ctx, testPacket()); err != nil {
		t.Errorf("Report() error = %v", err)
	}
	if count := r.reportedCount.Load(); count != 1 {
		t.Errorf("reportedCount = %d, want 1", count)
	}
	if err := r.Report(ctx, nil); err == nil {
		t.Error("Report(nil) should return error")
	}
	if err := r.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got["src"] != "192.168.1.1:9200" {
		t.Errorf("src = %v", got["src"])
	}
	if got["labels"].(map[string]any)["wsp.pdu_type"] != "Push" {
		t.Errorf("labels = %v", got["labels"])
	}
}

func TestConsoleReporter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	if err := r.Report(context.Background(), testPacket()); err != nil {
		t.Errorf("Report() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output written before Flush")
	}
	if err := r.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"#7 2024-05-01T12:00:00.000000Z 192.168.1.1:9200 -> 192.168.1.2:2948 type=wap len=2",
		"  mms.message_type=m-notification-ind",
		"  [1+1] pdu_type: Push",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporter_Lifecycle(t *testing.T) {
	r := NewConsoleReporter()

	if name := r.Name(); name != "console" {
		t.Errorf("Name() = %s, want console", name)
	}

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := r.Flush(ctx); err != nil {
		t.Errorf("Flush() error = %v", err)
	}
	if err := r.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
