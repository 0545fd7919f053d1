package plugin

import (
	"context"

	"firestige.xyz/wapdec/internal/core"
)

// Reporter sends output packets to their destination.
type Reporter interface {
	Plugin
	Report(ctx context.Context, pkt *core.OutputPacket) error
	Flush(ctx context.Context) error
}
