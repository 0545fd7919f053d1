package decoder

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wapdec/internal/core"
)

var (
	srcIP = net.IP{192, 168, 1, 1}
	dstIP = net.IP{192, 168, 1, 2}
)

func serialize(t *testing.T, opts gopacket.SerializeOptions, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return append([]byte(nil), buf.Bytes()...)
}

func udpFrame(t *testing.T, sport, dport uint16, payload []byte) []byte {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		DstMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: srcIP, DstIP: dstIP}
	udp := &layers.UDP{SrcPort: layers.UDPPort(sport), DstPort: layers.UDPPort(dport)}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	return serialize(t, gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true},
		eth, ip, udp, gopacket.Payload(payload))
}

func TestDecodeUDP(t *testing.T) {
	payload := []byte{0x01, 0x06, 0x03, 0xae, 0xaf, 0x82}
	d := NewDecoder(Config{})
	pkt, err := d.Decode(core.RawPacket{
		Data:      udpFrame(t, 9200, 2948, payload),
		Timestamp: time.Unix(1000, 0),
		LinkType:  uint8(layers.LinkTypeEthernet),
		Index:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), pkt.Index)
	assert.Equal(t, uint8(4), pkt.IP.Version)
	assert.Equal(t, netip.MustParseAddr("192.168.1.1"), pkt.IP.SrcIP)
	assert.Equal(t, netip.MustParseAddr("192.168.1.2"), pkt.IP.DstIP)
	assert.Equal(t, uint16(9200), pkt.Transport.SrcPort)
	assert.Equal(t, uint16(2948), pkt.Transport.DstPort)
	assert.Equal(t, uint8(17), pkt.Transport.Protocol)
	assert.Equal(t, payload, pkt.Payload)
	assert.False(t, pkt.Reassembled)

	st := d.Stats()
	assert.Equal(t, uint64(1), st.IPv4)
	assert.Equal(t, uint64(1), st.UDP)
}

func TestDecodeRawIPv6(t *testing.T) {
	ip := &layers.IPv6{
		Version:    6,
		HopLimit:   64,
		NextHeader: layers.IPProtocolUDP,
		SrcIP:      net.ParseIP("2001:db8::1"),
		DstIP:      net.ParseIP("2001:db8::2"),
	}
	udp := &layers.UDP{SrcPort: 1000, DstPort: 2949}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	data := serialize(t, gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true},
		ip, udp, gopacket.Payload{0x8c, 0x82})

	pkt, err := NewDecoder(Config{}).Decode(core.RawPacket{Data: data, LinkType: uint8(layers.LinkTypeRaw)})
	require.NoError(t, err)
	assert.Equal(t, uint8(6), pkt.IP.Version)
	assert.Equal(t, netip.MustParseAddr("2001:db8::1"), pkt.IP.SrcIP)
	assert.Equal(t, uint16(2949), pkt.Transport.DstPort)
	assert.Equal(t, []byte{0x8c, 0x82}, pkt.Payload)
}

func TestDecodeErrors(t *testing.T) {
	d := NewDecoder(Config{})

	_, err := d.Decode(core.RawPacket{})
	assert.ErrorIs(t, err, core.ErrPacketTooShort)

	arp := serialize(t, gopacket.SerializeOptions{FixLengths: true},
		&layers.Ethernet{
			SrcMAC:       net.HardwareAddr{1, 2, 3, 4, 5, 6},
			DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			EthernetType: layers.EthernetTypeARP,
		},
		&layers.ARP{
			AddrType:          layers.LinkTypeEthernet,
			Protocol:          layers.EthernetTypeIPv4,
			HwAddressSize:     6,
			ProtAddressSize:   4,
			Operation:         layers.ARPRequest,
			SourceHwAddress:   []byte{1, 2, 3, 4, 5, 6},
			SourceProtAddress: []byte{10, 0, 0, 1},
			DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
			DstProtAddress:    []byte{10, 0, 0, 2},
		})
	_, err = d.Decode(core.RawPacket{Data: arp, LinkType: uint8(layers.LinkTypeEthernet)})
	assert.ErrorIs(t, err, core.ErrUnsupportedProto)

	frame := udpFrame(t, 1, 2, []byte("abc"))
	_, err = d.Decode(core.RawPacket{Data: frame[:20], LinkType: uint8(layers.LinkTypeEthernet)})
	assert.ErrorIs(t, err, core.ErrPacketTooShort)
}

// fragments splits a UDP datagram into two IPv4 fragments split at byte 16.
func fragments(t *testing.T, payload []byte) [][]byte {
	dgram := serialize(t, gopacket.SerializeOptions{FixLengths: true},
		&layers.UDP{SrcPort: 9200, DstPort: 2948}, gopacket.Payload(payload))
	require.Greater(t, len(dgram), 16)

	mk := func(flags layers.IPv4Flag, off uint16, data []byte) []byte {
		ip := &layers.IPv4{
			Version: 4, TTL: 64, Id: 7, Protocol: layers.IPProtocolUDP,
			Flags: flags, FragOffset: off, SrcIP: srcIP, DstIP: dstIP,
		}
		return serialize(t, gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true},
			ip, gopacket.Payload(data))
	}
	return [][]byte{
		mk(layers.IPv4MoreFragments, 0, dgram[:16]),
		mk(0, 2, dgram[16:]),
	}
}

func TestDecodeReassemblesFragments(t *testing.T) {
	payload := []byte("0123456789abcdefghijklmnop")
	frags := fragments(t, payload)
	d := NewDecoder(Config{Defrag: true})
	ts := time.Unix(1000, 0)

	_, err := d.Decode(core.RawPacket{Data: frags[0], LinkType: uint8(layers.LinkTypeIPv4), Timestamp: ts})
	require.ErrorIs(t, err, core.ErrFragmentPending)

	pkt, err := d.Decode(core.RawPacket{Data: frags[1], LinkType: uint8(layers.LinkTypeIPv4), Timestamp: ts})
	require.NoError(t, err)
	assert.True(t, pkt.Reassembled)
	assert.Equal(t, uint16(2948), pkt.Transport.DstPort)
	assert.Equal(t, payload, pkt.Payload)

	st := d.Stats()
	assert.Equal(t, uint64(2), st.Fragments)
	assert.Equal(t, uint64(1), st.Reassembled)
}

func TestDecodeFragmentsWithoutDefrag(t *testing.T) {
	frags := fragments(t, []byte("0123456789abcdefghijklmnop"))
	d := NewDecoder(Config{})
	for _, f := range frags {
		_, err := d.Decode(core.RawPacket{Data: f, LinkType: uint8(layers.LinkTypeIPv4)})
		assert.ErrorIs(t, err, core.ErrFragmentPending)
	}
}

func TestDecodeFragmentRateLimit(t *testing.T) {
	frags := fragments(t, []byte("0123456789abcdefghijklmnop"))
	d := NewDecoder(Config{
		Defrag:                    true,
		FragmentRateLimiterConfig: FragmentRateLimiterConfig{MaxFragsPerIP: 1, RateLimitWindow: time.Minute},
	})
	ts := time.Unix(1000, 0)

	_, err := d.Decode(core.RawPacket{Data: frags[0], LinkType: uint8(layers.LinkTypeIPv4), Timestamp: ts})
	assert.ErrorIs(t, err, core.ErrFragmentPending)
	_, err = d.Decode(core.RawPacket{Data: frags[1], LinkType: uint8(layers.LinkTypeIPv4), Timestamp: ts})
	assert.ErrorIs(t, err, core.ErrFragmentLimited)
	assert.Equal(t, uint64(1), d.Stats().Limited)
}
