package plugin

import "firestige.xyz/wapdec/internal/core"

// Parser decodes application-layer payloads.
type Parser interface {
	Plugin
	CanHandle(pkt *core.DecodedPacket) bool
	Handle(pkt *core.DecodedPacket) (payload any, labels core.Labels, err error)
}
