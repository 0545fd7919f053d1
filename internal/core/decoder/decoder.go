// Package decoder turns captured frames into UDP and TCP payloads for the WAP parsers.
//
// L2 to L4 headers are decoded with gopacket's DecodingLayerParser; IPv4 fragments are
// reassembled with ip4defrag so that WSP pushes larger than one frame reach the parsers whole.
package decoder

import (
	"fmt"
	"net"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/ip4defrag"
	"github.com/google/gopacket/layers"

	"firestige.xyz/wapdec/internal/core"
)

// Config configures a Decoder.
type Config struct {
	// Defrag enables IPv4 reassembly. Fragments are dropped when it is off.
	Defrag          bool          `mapstructure:"defrag"`
	FragmentTimeout time.Duration `mapstructure:"fragment_timeout"`

	FragmentRateLimiterConfig `mapstructure:",squash"`
}

// Stats counts what the decoder has seen.
type Stats struct {
	IPv4        uint64
	IPv6        uint64
	UDP         uint64
	TCP         uint64
	Fragments   uint64
	Reassembled uint64
	Limited     uint64
}

// Decoder decodes raw frames. It reuses its layer structs between calls and must not be
// shared between goroutines.
type Decoder struct {
	eth   layers.Ethernet
	dot1q layers.Dot1Q
	ip4   layers.IPv4
	ip6   layers.IPv6
	udp   layers.UDP
	tcp   layers.TCP

	parsers map[gopacket.LayerType]*gopacket.DecodingLayerParser
	decoded []gopacket.LayerType

	defrag    *ip4defrag.IPv4Defragmenter
	limiter   *FragmentRateLimiter
	timeout   time.Duration
	lastSweep time.Time

	stats struct {
		ipv4, ipv6, udp, tcp, fragments, reassembled, limited atomic.Uint64
	}
}

// NewDecoder returns a decoder for cfg.
func NewDecoder(cfg Config) *Decoder {
	d := &Decoder{
		timeout: cfg.FragmentTimeout,
		decoded: make([]gopacket.LayerType, 0, 8),
	}
	if d.timeout <= 0 {
		d.timeout = 30 * time.Second
	}
	if cfg.Defrag {
		d.defrag = ip4defrag.NewIPv4Defragmenter()
		d.limiter = NewFragmentRateLimiter(cfg.FragmentRateLimiterConfig)
	}

	known := []gopacket.DecodingLayer{&d.eth, &d.dot1q, &d.ip4, &d.ip6, &d.udp, &d.tcp}
	d.parsers = make(map[gopacket.LayerType]*gopacket.DecodingLayerParser, 3)
	for _, first := range []gopacket.LayerType{layers.LayerTypeEthernet, layers.LayerTypeIPv4, layers.LayerTypeIPv6} {
		p := gopacket.NewDecodingLayerParser(first, known...)
		p.IgnoreUnsupported = true
		d.parsers[first] = p
	}
	return d
}

// Stats returns a snapshot of the decoder counters.
func (d *Decoder) Stats() Stats {
	return Stats{
		IPv4:        d.stats.ipv4.Load(),
		IPv6:        d.stats.ipv6.Load(),
		UDP:         d.stats.udp.Load(),
		TCP:         d.stats.tcp.Load(),
		Fragments:   d.stats.fragments.Load(),
		Reassembled: d.stats.reassembled.Load(),
		Limited:     d.stats.limited.Load(),
	}
}

// Decode extracts the transport payload of raw. A buffered IPv4 fragment yields
// core.ErrFragmentPending; the frame that completes the datagram returns it whole.
func (d *Decoder) Decode(raw core.RawPacket) (core.DecodedPacket, error) {
	pkt := core.DecodedPacket{
		Timestamp:  raw.Timestamp,
		Index:      raw.Index,
		CaptureLen: raw.CaptureLen,
		OrigLen:    raw.OrigLen,
	}
	if len(raw.Data) == 0 {
		return pkt, core.ErrPacketTooShort
	}
	if err := d.decodeLayers(raw); err != nil {
		return pkt, err
	}

	switch {
	case d.has(layers.LayerTypeIPv4):
		d.stats.ipv4.Add(1)
		pkt.IP = core.IPHeader{
			Version:  4,
			SrcIP:    addr(d.ip4.SrcIP),
			DstIP:    addr(d.ip4.DstIP),
			Protocol: uint8(d.ip4.Protocol),
		}
		if isFragment(&d.ip4) {
			whole, err := d.reassemble(pkt.IP.SrcIP, raw.Timestamp)
			if err != nil {
				return pkt, err
			}
			pkt.Reassembled = true
			return d.transportFrom(pkt, whole.Protocol, whole.Payload)
		}
	case d.has(layers.LayerTypeIPv6):
		d.stats.ipv6.Add(1)
		pkt.IP = core.IPHeader{
			Version:  6,
			SrcIP:    addr(d.ip6.SrcIP),
			DstIP:    addr(d.ip6.DstIP),
			Protocol: uint8(d.ip6.NextHeader),
		}
	default:
		return pkt, fmt.Errorf("frame %d link type %d: %w", raw.Index, raw.LinkType, core.ErrUnsupportedProto)
	}

	switch {
	case d.has(layers.LayerTypeUDP):
		d.stats.udp.Add(1)
		pkt.Transport = core.TransportHeader{
			SrcPort:  uint16(d.udp.SrcPort),
			DstPort:  uint16(d.udp.DstPort),
			Protocol: uint8(layers.IPProtocolUDP),
		}
		pkt.Payload = d.udp.Payload
	case d.has(layers.LayerTypeTCP):
		d.stats.tcp.Add(1)
		pkt.Transport = core.TransportHeader{
			SrcPort:  uint16(d.tcp.SrcPort),
			DstPort:  uint16(d.tcp.DstPort),
			Protocol: uint8(layers.IPProtocolTCP),
		}
		pkt.Payload = d.tcp.Payload
	default:
		return pkt, fmt.Errorf("frame %d ip protocol %d: %w", raw.Index, pkt.IP.Protocol, core.ErrUnsupportedProto)
	}
	return pkt, nil
}

// decodeLayers fills the layer structs for raw and records which ones decoded.
func (d *Decoder) decodeLayers(raw core.RawPacket) error {
	d.decoded = d.decoded[:0]
	first := firstLayer(layers.LinkType(raw.LinkType), raw.Data)
	if p, ok := d.parsers[first]; ok {
		if err := p.DecodeLayers(raw.Data, &d.decoded); err != nil {
			return fmt.Errorf("frame %d: %w: %v", raw.Index, core.ErrPacketTooShort, err)
		}
		return nil
	}

	// Other link types (Linux cooked capture, loopback, ...) take the slower generic path.
	gp := gopacket.NewPacket(raw.Data, layers.LinkType(raw.LinkType), gopacket.NoCopy)
	if l, ok := gp.Layer(layers.LayerTypeIPv4).(*layers.IPv4); ok {
		d.ip4 = *l
		d.decoded = append(d.decoded, layers.LayerTypeIPv4)
	} else if l, ok := gp.Layer(layers.LayerTypeIPv6).(*layers.IPv6); ok {
		d.ip6 = *l
		d.decoded = append(d.decoded, layers.LayerTypeIPv6)
	}
	if l, ok := gp.Layer(layers.LayerTypeUDP).(*layers.UDP); ok {
		d.udp = *l
		d.decoded = append(d.decoded, layers.LayerTypeUDP)
	} else if l, ok := gp.Layer(layers.LayerTypeTCP).(*layers.TCP); ok {
		d.tcp = *l
		d.decoded = append(d.decoded, layers.LayerTypeTCP)
	}
	return nil
}

func (d *Decoder) has(t gopacket.LayerType) bool {
	for _, l := range d.decoded {
		if l == t {
			return true
		}
	}
	return false
}

// reassemble hands the current IPv4 fragment to the defragmenter.
func (d *Decoder) reassemble(src netip.Addr, ts time.Time) (*layers.IPv4, error) {
	d.stats.fragments.Add(1)
	if d.defrag == nil {
		return nil, core.ErrFragmentPending
	}
	if d.limiter != nil && !d.limiter.Allow(src, ts) {
		d.stats.limited.Add(1)
		return nil, fmt.Errorf("fragment from %s: %w", src, core.ErrFragmentLimited)
	}
	if ts.Sub(d.lastSweep) > d.timeout {
		d.defrag.DiscardOlderThan(ts.Add(-d.timeout))
		d.lastSweep = ts
	}

	// The defragmenter keeps the pointer it is given, so it gets its own copy.
	frag := d.ip4
	whole, err := d.defrag.DefragIPv4WithTimestamp(&frag, ts)
	if err != nil {
		return nil, fmt.Errorf("ipv4 reassembly: %w", err)
	}
	if whole == nil {
		return nil, core.ErrFragmentPending
	}
	d.stats.reassembled.Add(1)
	return whole, nil
}

// transportFrom decodes the transport header of a reassembled datagram.
func (d *Decoder) transportFrom(pkt core.DecodedPacket, proto layers.IPProtocol, data []byte) (core.DecodedPacket, error) {
	switch proto {
	case layers.IPProtocolUDP:
		if err := d.udp.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
			return pkt, fmt.Errorf("reassembled udp: %w: %v", core.ErrPacketTooShort, err)
		}
		d.stats.udp.Add(1)
		pkt.Transport = core.TransportHeader{
			SrcPort:  uint16(d.udp.SrcPort),
			DstPort:  uint16(d.udp.DstPort),
			Protocol: uint8(proto),
		}
		pkt.Payload = d.udp.Payload
		return pkt, nil
	case layers.IPProtocolTCP:
		if err := d.tcp.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
			return pkt, fmt.Errorf("reassembled tcp: %w: %v", core.ErrPacketTooShort, err)
		}
		d.stats.tcp.Add(1)
		pkt.Transport = core.TransportHeader{
			SrcPort:  uint16(d.tcp.SrcPort),
			DstPort:  uint16(d.tcp.DstPort),
			Protocol: uint8(proto),
		}
		pkt.Payload = d.tcp.Payload
		return pkt, nil
	}
	return pkt, fmt.Errorf("reassembled ip protocol %d: %w", proto, core.ErrUnsupportedProto)
}

func firstLayer(lt layers.LinkType, data []byte) gopacket.LayerType {
	switch lt {
	case layers.LinkTypeEthernet:
		return layers.LayerTypeEthernet
	case layers.LinkTypeIPv4:
		return layers.LayerTypeIPv4
	case layers.LinkTypeIPv6:
		return layers.LayerTypeIPv6
	case layers.LinkTypeRaw:
		if len(data) > 0 && data[0]>>4 == 6 {
			return layers.LayerTypeIPv6
		}
		return layers.LayerTypeIPv4
	}
	return gopacket.LayerTypeZero
}

func isFragment(ip *layers.IPv4) bool {
	return ip.Flags&layers.IPv4MoreFragments != 0 || ip.FragOffset != 0
}

func addr(ip net.IP) netip.Addr {
	a, _ := netip.AddrFromSlice(ip)
	return a.Unmap()
}
