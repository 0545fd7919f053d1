package plugin

import "firestige.xyz/wapdec/internal/core"

// Processor inspects output packets before they reach the reporters.
type Processor interface {
	Plugin
	Process(pkt *core.OutputPacket) (keep bool)
}
