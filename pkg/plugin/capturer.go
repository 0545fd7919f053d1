package plugin

import (
	"context"

	"firestige.xyz/wapdec/internal/core"
)

// Capturer produces raw frames. Capture returns when the source is exhausted or ctx is
// done; it never closes output.
type Capturer interface {
	Plugin
	Capture(ctx context.Context, output chan<- core.RawPacket) error
	Stats() CaptureStats
}

// CaptureStats represents capture statistics.
type CaptureStats struct {
	PacketsReceived uint64
	PacketsFiltered uint64 // Frames rejected by the port filter
	PacketsDropped  uint64 // Frames lost to a full output channel
}
