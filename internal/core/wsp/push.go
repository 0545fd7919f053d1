// Package wsp unwraps WSP Push PDUs so their payload can reach the WBXML and MMSE decoders.
//
// Only the Push and ConfirmedPush PDUs are decoded. The connectionless form carries a
// one-octet transaction id before the PDU type.
package wsp

import (
	"fmt"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/core/wap"
)

// WSP PDU types.
const (
	PDUConnect       byte = 0x01
	PDUConnectReply  byte = 0x02
	PDURedirect      byte = 0x03
	PDUReply         byte = 0x04
	PDUDisconnect    byte = 0x05
	PDUPush          byte = 0x06
	PDUConfirmedPush byte = 0x07
	PDUSuspend       byte = 0x08
	PDUResume        byte = 0x09
	PDUGet           byte = 0x40
	PDUPost          byte = 0x60
)

var pduTypes = map[byte]string{
	PDUConnect:       "Connect",
	PDUConnectReply:  "ConnectReply",
	PDURedirect:      "Redirect",
	PDUReply:         "Reply",
	PDUDisconnect:    "Disconnect",
	PDUPush:          "Push",
	PDUConfirmedPush: "ConfirmedPush",
	PDUSuspend:       "Suspend",
	PDUResume:        "Resume",
	PDUGet:           "Get",
	PDUPost:          "Post",
}

// PDUTypeName returns the name of a WSP PDU type.
func PDUTypeName(t byte) string {
	if s, ok := pduTypes[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown PDU 0x%02x", t)
}

// Config controls one Decoder.
type Config struct {
	// Connectionless PDUs start with a transaction id octet.
	Connectionless bool
}

// Decoder decodes WSP Push PDUs. It is safe for concurrent use.
type Decoder struct {
	cfg Config
}

func New(cfg Config) *Decoder {
	return &Decoder{cfg: cfg}
}

// Push is an unwrapped Push PDU. The payload occupies buf[Body:Body+BodyLen].
type Push struct {
	TID           byte
	Type          byte
	ContentType   wap.ContentType
	ApplicationID string
	Headers       map[string]string
	Body          int
	BodyLen       int
}

// Decode decodes the Push PDU at off and emits its fields to sink. The payload is not
// decoded; callers hand buf and Push.Body to the decoder matching Push.ContentType.
func (d *Decoder) Decode(buf []byte, off int, sink core.Sink) (Push, error) {
	if sink == nil {
		sink = core.Discard
	}
	var p Push
	pos := off
	if d.cfg.Connectionless {
		if pos >= len(buf) {
			return p, fmt.Errorf("transaction id at offset %d: %w", pos, core.ErrTruncated)
		}
		p.TID = buf[pos]
		sink.Emit(core.NewUint("tid", pos, 1, uint64(p.TID)))
		pos++
	}
	if pos >= len(buf) {
		return p, fmt.Errorf("pdu type at offset %d: %w", pos, core.ErrTruncated)
	}
	p.Type = buf[pos]
	if p.Type != PDUPush && p.Type != PDUConfirmedPush {
		return p, fmt.Errorf("pdu type %s: %w", PDUTypeName(p.Type), core.ErrNotWSPPush)
	}
	sink.Emit(core.NewEnum("pdu_type", pos, 1, uint64(p.Type), PDUTypeName(p.Type)))
	pos++

	hl, n, err := wap.ReadUintvar(buf, pos)
	if err != nil {
		return p, fmt.Errorf("headers length at offset %d: %w", pos, err)
	}
	sink.Emit(core.NewUint("headers_length", pos, n, uint64(hl)))
	pos += n
	end := pos + int(hl)
	if end > len(buf) || end < pos {
		return p, fmt.Errorf("headers of %d octets at offset %d: %w", hl, pos, core.ErrTruncated)
	}

	next, ct, err := wap.AddContentType(buf[:end], pos, sink)
	if err != nil {
		return p, fmt.Errorf("content type at offset %d: %w", pos, err)
	}
	p.ContentType = ct

	hdrs, err := readHeaders(buf, next, end)
	if len(hdrs) > 0 {
		g := sink.BeginGroup(core.NewGroup("headers", next, ""))
		for _, h := range hdrs {
			core.EmitField(sink, h.field)
			if h.code == -1 && h.name == "code_page" {
				continue
			}
			if p.Headers == nil {
				p.Headers = make(map[string]string)
			}
			p.Headers[h.name] = h.value
			if h.code == HeaderXWapApplicationID {
				p.ApplicationID = h.value
			}
		}
		sink.EndGroup(g, end)
	}
	if err != nil {
		return p, err
	}

	p.Body = end
	p.BodyLen = len(buf) - end
	return p, nil
}
