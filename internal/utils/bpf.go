// Package utils holds small helpers shared by capture plugins.
package utils

import (
	"fmt"

	"github.com/google/gopacket/layers"
	"golang.org/x/net/bpf"
)

// maxSnapLen is returned by the filter for accepted frames.
const maxSnapLen = 262144

// PortFilter is a classic BPF program admitting UDP datagrams to or from a set of ports.
// Non-first IPv4 fragments are admitted too, their ports being unknown until reassembly.
// It runs in the pure Go BPF virtual machine and needs no kernel or libpcap support.
type PortFilter struct {
	insns []bpf.Instruction
	vm    *bpf.VM
}

// NewPortFilter builds the filter for frames of the given link type. Ethernet and raw IP
// link types are supported.
func NewPortFilter(lt layers.LinkType, ports []uint16) (*PortFilter, error) {
	if len(ports) == 0 {
		return nil, fmt.Errorf("port filter needs at least one port")
	}
	if len(ports) > 60 {
		return nil, fmt.Errorf("port filter supports at most 60 ports, got %d", len(ports))
	}

	var p program
	var base uint32
	switch lt {
	case layers.LinkTypeEthernet:
		base = 14
		p.emit(bpf.LoadAbsolute{Off: 12, Size: 2})
		p.jumpIf(bpf.JumpEqual, uint32(layers.EthernetTypeIPv6), "ipv6")
		p.jumpIf(bpf.JumpNotEqual, uint32(layers.EthernetTypeIPv4), "drop")
	case layers.LinkTypeRaw, layers.LinkTypeIPv4, layers.LinkTypeIPv6:
		p.emit(bpf.LoadAbsolute{Off: 0, Size: 1})
		p.emit(bpf.ALUOpConstant{Op: bpf.ALUOpShiftRight, Val: 4})
		p.jumpIf(bpf.JumpEqual, 6, "ipv6")
		p.jumpIf(bpf.JumpNotEqual, 4, "drop")
	default:
		return nil, fmt.Errorf("port filter: unsupported link type %s", lt)
	}

	// IPv4
	p.emit(bpf.LoadAbsolute{Off: base + 9, Size: 1})
	p.jumpIf(bpf.JumpNotEqual, uint32(layers.IPProtocolUDP), "drop")
	p.emit(bpf.LoadAbsolute{Off: base + 6, Size: 2})
	p.jumpIf(bpf.JumpBitsSet, 0x1fff, "accept")
	p.emit(bpf.LoadMemShift{Off: base})
	p.emit(bpf.LoadIndirect{Off: base, Size: 2})
	p.matchPorts(ports)
	p.emit(bpf.LoadIndirect{Off: base + 2, Size: 2})
	p.matchPorts(ports)
	p.jump("drop")

	// IPv6 without extension headers
	p.label("ipv6")
	p.emit(bpf.LoadAbsolute{Off: base + 6, Size: 1})
	p.jumpIf(bpf.JumpNotEqual, uint32(layers.IPProtocolUDP), "drop")
	p.emit(bpf.LoadAbsolute{Off: base + 40, Size: 2})
	p.matchPorts(ports)
	p.emit(bpf.LoadAbsolute{Off: base + 42, Size: 2})
	p.matchPorts(ports)

	p.label("drop")
	p.emit(bpf.RetConstant{Val: 0})
	p.label("accept")
	p.emit(bpf.RetConstant{Val: maxSnapLen})

	insns, err := p.resolve()
	if err != nil {
		return nil, err
	}
	vm, err := bpf.NewVM(insns)
	if err != nil {
		return nil, fmt.Errorf("failed to load BPF filter: %w", err)
	}
	return &PortFilter{insns: insns, vm: vm}, nil
}

// Match reports whether frame passes the filter.
func (f *PortFilter) Match(frame []byte) bool {
	n, err := f.vm.Run(frame)
	return err == nil && n > 0
}

// Raw returns the assembled program, e.g. for attaching to a socket.
func (f *PortFilter) Raw() ([]bpf.RawInstruction, error) {
	return bpf.Assemble(f.insns)
}

// program is a forward-jump-only assembler with named labels.
type program struct {
	insns  []bpf.Instruction
	labels map[string]int
	fixups []fixup
}

type fixup struct {
	at     int
	target string
}

func (p *program) emit(i bpf.Instruction) {
	p.insns = append(p.insns, i)
}

func (p *program) label(name string) {
	if p.labels == nil {
		p.labels = make(map[string]int)
	}
	p.labels[name] = len(p.insns)
}

// jumpIf jumps to target when the condition holds and falls through otherwise.
func (p *program) jumpIf(cond bpf.JumpTest, val uint32, target string) {
	p.fixups = append(p.fixups, fixup{at: len(p.insns), target: target})
	p.emit(bpf.JumpIf{Cond: cond, Val: val})
}

func (p *program) jump(target string) {
	p.fixups = append(p.fixups, fixup{at: len(p.insns), target: target})
	p.emit(bpf.Jump{})
}

func (p *program) matchPorts(ports []uint16) {
	for _, port := range ports {
		p.jumpIf(bpf.JumpEqual, uint32(port), "accept")
	}
}

func (p *program) resolve() ([]bpf.Instruction, error) {
	for _, f := range p.fixups {
		to, ok := p.labels[f.target]
		if !ok {
			return nil, fmt.Errorf("bpf: undefined label %q", f.target)
		}
		skip := to - f.at - 1
		switch i := p.insns[f.at].(type) {
		case bpf.JumpIf:
			if skip > 255 {
				return nil, fmt.Errorf("bpf: jump to %q out of range", f.target)
			}
			i.SkipTrue = uint8(skip)
			p.insns[f.at] = i
		case bpf.Jump:
			i.Skip = uint32(skip)
			p.insns[f.at] = i
		}
	}
	return p.insns, nil
}
