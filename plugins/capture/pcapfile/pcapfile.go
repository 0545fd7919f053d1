// Package pcapfile implements the pcap/pcapng file capture plugin.
package pcapfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/mitchellh/mapstructure"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/internal/metrics"
	"firestige.xyz/wapdec/internal/utils"
	"firestige.xyz/wapdec/pkg/plugin"
)

const pluginName = "pcapfile"

var ngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// Config represents pcapfile-specific configuration.
type Config struct {
	File   string `mapstructure:"file"`   // required, "-" reads stdin
	Ports  []int  `mapstructure:"ports"`  // ports admitted by the filter
	Filter bool   `mapstructure:"filter"` // drop frames that are not UDP to or from Ports
}

// packetReader is satisfied by pcapgo.Reader and pcapgo.NgReader.
type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Capturer replays frames from a capture file.
type Capturer struct {
	name   string
	config Config
	source string

	packetsReceived atomic.Uint64
	packetsFiltered atomic.Uint64
}

// NewPcapFileCapturer creates a new file capturer instance.
func NewPcapFileCapturer() plugin.Capturer {
	return &Capturer{name: pluginName}
}

// Name returns the plugin name.
func (c *Capturer) Name() string {
	return c.name
}

// Init initializes the capturer with configuration.
func (c *Capturer) Init(cfg map[string]any) error {
	c.config = Config{Ports: []int{2948, 2949}}
	if err := mapstructure.WeakDecode(cfg, &c.config); err != nil {
		return fmt.Errorf("pcapfile: invalid config: %w", err)
	}
	if c.config.File == "" {
		return fmt.Errorf("pcapfile: file is required")
	}
	for _, p := range c.config.Ports {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("pcapfile: invalid port %d", p)
		}
	}
	c.source = filepath.Base(c.config.File)

	slog.Debug("pcapfile initialized", "file", c.config.File, "filter", c.config.Filter, "ports", c.config.Ports)
	return nil
}

// Start starts the capturer (no-op, the file is opened in Capture).
func (c *Capturer) Start(ctx context.Context) error {
	return nil
}

// Stop stops the capturer. Capture returns on context cancellation.
func (c *Capturer) Stop(ctx context.Context) error {
	return nil
}

// Capture reads the file to its end. Frames are never dropped: a full output channel
// blocks the reader.
func (c *Capturer) Capture(ctx context.Context, output chan<- core.RawPacket) error {
	var in io.Reader
	if c.config.File == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(c.config.File)
		if err != nil {
			return fmt.Errorf("failed to open capture file: %w", err)
		}
		defer f.Close()
		in = f
	}

	r, err := newReader(in)
	if err != nil {
		return fmt.Errorf("failed to read capture file %s: %w", c.config.File, err)
	}
	lt := r.LinkType()

	var filter *utils.PortFilter
	if c.config.Filter {
		ports := make([]uint16, len(c.config.Ports))
		for i, p := range c.config.Ports {
			ports[i] = uint16(p)
		}
		if filter, err = utils.NewPortFilter(lt, ports); err != nil {
			slog.Warn("port filter disabled", "link_type", lt, "error", err)
			filter = nil
		}
	}

	slog.Info("pcapfile capture started", "file", c.config.File, "link_type", lt)
	var index uint64
	for {
		if ctx.Err() != nil {
			return nil
		}
		data, ci, err := r.ReadPacketData()
		if errors.Is(err, io.EOF) {
			slog.Info("pcapfile capture finished", "file", c.config.File,
				"received", c.packetsReceived.Load(), "filtered", c.packetsFiltered.Load())
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read frame %d: %w", index+1, err)
		}

		index++
		c.packetsReceived.Add(1)
		metrics.CapturePacketsTotal.WithLabelValues(c.source, "received").Inc()
		if filter != nil && !filter.Match(data) {
			c.packetsFiltered.Add(1)
			metrics.CapturePacketsTotal.WithLabelValues(c.source, "filtered").Inc()
			continue
		}

		raw := core.RawPacket{
			Data:       data,
			Timestamp:  ci.Timestamp,
			CaptureLen: uint32(ci.CaptureLength),
			OrigLen:    uint32(ci.Length),
			LinkType:   uint8(lt),
			Index:      index,
		}
		select {
		case output <- raw:
		case <-ctx.Done():
			return nil
		}
	}
}

// newReader picks the pcapng or the classic pcap reader by the file magic.
func newReader(in io.Reader) (packetReader, error) {
	br := bufio.NewReader(in)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("short file: %w", err)
	}
	if bytes.Equal(magic, ngMagic) {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// Stats returns capture statistics.
func (c *Capturer) Stats() plugin.CaptureStats {
	return plugin.CaptureStats{
		PacketsReceived: c.packetsReceived.Load(),
		PacketsFiltered: c.packetsFiltered.Load(),
	}
}
