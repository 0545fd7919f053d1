// Package core defines the packet envelope passed between capture, parsers and reporters,
// plus the decoded-field model shared by the WAP, WBXML and MMSE decoders.
package core

import (
	"net/netip"
	"time"
)

// RawPacket is one frame read from a capture source.
type RawPacket struct {
	Data       []byte    // Frame bytes, owned by the receiver
	Timestamp  time.Time // Capture timestamp
	CaptureLen uint32    // Captured length
	OrigLen    uint32    // Original frame length
	LinkType   uint8     // gopacket layers.LinkType of Data
	Index      uint64    // 1-based frame number within the source
}

// IPHeader holds the L3 fields the WAP parsers need.
type IPHeader struct {
	Version  uint8
	SrcIP    netip.Addr
	DstIP    netip.Addr
	Protocol uint8 // TCP=6, UDP=17
}

// TransportHeader holds the L4 ports.
type TransportHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// DecodedPacket is the result of L2-L4 decoding.
type DecodedPacket struct {
	Timestamp   time.Time
	Index       uint64
	IP          IPHeader
	Transport   TransportHeader
	Payload     []byte // Application payload, sub-slice of the frame or of a reassembled datagram
	CaptureLen  uint32
	OrigLen     uint32
	Reassembled bool // Whether the datagram went through IPv4 defragmentation
}

// OutputPacket is the final output sent to reporters.
type OutputPacket struct {
	Source     string // Capture source name (file path, "hex", ...)
	Index      uint64
	PipelineID int
	Timestamp  time.Time

	SrcIP    netip.Addr
	DstIP    netip.Addr
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8

	Labels Labels

	// PayloadType names the parser that produced Payload ("wap", "raw").
	PayloadType string
	Payload     any
	RawPayload  []byte
}
