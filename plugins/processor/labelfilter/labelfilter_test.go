package labelfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wapdec/internal/core"
)

func pkt(labels core.Labels) *core.OutputPacket {
	return &core.OutputPacket{Labels: labels}
}

func TestProcess(t *testing.T) {
	notification := core.Labels{core.LabelMMSMessageType: "m-notification-ind", core.LabelWSPPDUType: "Push"}
	sendReq := core.Labels{core.LabelMMSMessageType: "m-send-req"}
	si := core.Labels{core.LabelWBXMLRoot: "si"}

	tests := []struct {
		name   string
		config map[string]any
		want   []bool // notification, sendReq, si
	}{
		{"no rules keeps all", nil, []bool{true, true, true}},
		{
			"exact value",
			map[string]any{"match": map[string]any{"mms.message_type": "m-notification-ind"}},
			[]bool{true, false, false},
		},
		{
			"nested keys from viper",
			map[string]any{"match": map[string]any{"mms": map[string]any{"message_type": "m-send-req"}}},
			[]bool{false, true, false},
		},
		{
			"alternatives",
			map[string]any{"match": map[string]any{"mms.message_type": "m-send-req, m-notification-ind"}},
			[]bool{true, true, false},
		},
		{
			"wildcard",
			map[string]any{"match": map[string]any{"wbxml.root": "*"}},
			[]bool{false, false, true},
		},
		{
			"all rules must hold",
			map[string]any{"match": map[string]any{"mms.message_type": "*", "wsp.pdu_type": "Push"}},
			[]bool{true, false, false},
		},
		{
			"invert",
			map[string]any{"match": map[string]any{"wbxml.root": "*"}, "invert": true},
			[]bool{true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLabelFilter().(*Processor)
			require.NoError(t, p.Init(tt.config))
			got := []bool{p.Process(pkt(notification)), p.Process(pkt(sendReq)), p.Process(pkt(si))}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitRejectsUnsupportedValue(t *testing.T) {
	p := NewLabelFilter()
	assert.Error(t, p.Init(map[string]any{"match": map[string]any{"mms.to": []string{"a"}}}))
	assert.Equal(t, "labelfilter", p.Name())
}
