// Package render turns decoded field trees and output packets into text, JSON, YAML or
// CBOR for the CLI and the console reporter.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ugorji/go/codec"
	"gopkg.in/yaml.v3"

	"firestige.xyz/wapdec/internal/core"
)

// Node is the serializable form of a core.Field.
type Node struct {
	Name     string `json:"name" yaml:"name" codec:"name"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty" codec:"kind,omitempty"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty" codec:"value,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty" codec:"text,omitempty"`
	Offset   int    `json:"offset" yaml:"offset" codec:"offset"`
	Length   int    `json:"length" yaml:"length" codec:"length"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty" codec:"error,omitempty"`
	Children []Node `json:"children,omitempty" yaml:"children,omitempty" codec:"children,omitempty"`
}

// Nodes converts a field tree. Byte values are carried by Text only, as hex.
func Nodes(fields []core.Field) []Node {
	if len(fields) == 0 {
		return nil
	}
	out := make([]Node, 0, len(fields))
	for _, f := range fields {
		n := Node{
			Name:     f.Name,
			Text:     f.Text,
			Offset:   f.Start,
			Length:   f.Length,
			Children: Nodes(f.Children),
		}
		switch f.Kind {
		case core.KindUint, core.KindString:
			n.Kind = f.Kind.String()
			n.Value = f.Value
		case core.KindTime:
			n.Kind = f.Kind.String()
			if t, ok := f.Value.(time.Time); ok {
				n.Value = t.UTC().Format(time.RFC3339)
			}
		case core.KindBytes:
			n.Kind = f.Kind.String()
		}
		if s, ok := n.Value.(string); ok && s == f.Text {
			n.Value = nil
		}
		if f.Err != nil {
			n.Error = f.Err.Error()
		}
		out = append(out, n)
	}
	return out
}

// Record is one rendered unit: a decoded packet from a capture or a decoded buffer.
type Record struct {
	Source      string            `json:"source,omitempty" yaml:"source,omitempty" codec:"source,omitempty"`
	Index       uint64            `json:"index,omitempty" yaml:"index,omitempty" codec:"index,omitempty"`
	Timestamp   string            `json:"timestamp,omitempty" yaml:"timestamp,omitempty" codec:"timestamp,omitempty"`
	Src         string            `json:"src,omitempty" yaml:"src,omitempty" codec:"src,omitempty"`
	Dst         string            `json:"dst,omitempty" yaml:"dst,omitempty" codec:"dst,omitempty"`
	PayloadType string            `json:"payload_type,omitempty" yaml:"payload_type,omitempty" codec:"payload_type,omitempty"`
	PayloadLen  int               `json:"payload_len,omitempty" yaml:"payload_len,omitempty" codec:"payload_len,omitempty"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty" codec:"labels,omitempty"`
	Fields      []Node            `json:"fields,omitempty" yaml:"fields,omitempty" codec:"fields,omitempty"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty" codec:"error,omitempty"`
}

// FromPacket builds the record for an output packet. A payload that is a []core.Field
// becomes the field tree.
func FromPacket(pkt *core.OutputPacket) Record {
	r := Record{
		Source:      pkt.Source,
		Index:       pkt.Index,
		PayloadType: pkt.PayloadType,
		PayloadLen:  len(pkt.RawPayload),
		Labels:      pkt.Labels,
	}
	if !pkt.Timestamp.IsZero() {
		r.Timestamp = pkt.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z07:00")
	}
	if pkt.SrcIP.IsValid() {
		r.Src = fmt.Sprintf("%s:%d", pkt.SrcIP, pkt.SrcPort)
		r.Dst = fmt.Sprintf("%s:%d", pkt.DstIP, pkt.DstPort)
	}
	if fields, ok := pkt.Payload.([]core.Field); ok {
		r.Fields = Nodes(fields)
	}
	if e, ok := pkt.Labels[core.LabelDecodeError]; ok {
		r.Error = e
	}
	return r
}

// Renderer writes records to w.
type Renderer interface {
	Render(w io.Writer, r Record) error
}

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "yaml", "cbor"}

// New returns the renderer for format.
func New(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return textRenderer{}, nil
	case "json":
		return jsonRenderer{}, nil
	case "yaml":
		return yamlRenderer{}, nil
	case "cbor":
		return cborRenderer{h: &codec.CborHandle{}}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q (must be %s)", format, strings.Join(Formats, ", "))
}

type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type yamlRenderer struct{}

func (yamlRenderer) Render(w io.Writer, r Record) error {
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("yaml encode failed: %w", err)
	}
	return enc.Close()
}

// cborRenderer writes one CBOR data item per record.
type cborRenderer struct {
	h *codec.CborHandle
}

func (c cborRenderer) Render(w io.Writer, r Record) error {
	if err := codec.NewEncoder(w, c.h).Encode(r); err != nil {
		return fmt.Errorf("cbor encode failed: %w", err)
	}
	return nil
}

type textRenderer struct{}

func (textRenderer) Render(w io.Writer, r Record) error {
	var b strings.Builder
	if r.Index > 0 || r.Src != "" {
		fmt.Fprintf(&b, "#%d", r.Index)
		if r.Timestamp != "" {
			fmt.Fprintf(&b, " %s", r.Timestamp)
		}
		if r.Src != "" {
			fmt.Fprintf(&b, " %s -> %s", r.Src, r.Dst)
		}
		if r.PayloadType != "" {
			fmt.Fprintf(&b, " type=%s", r.PayloadType)
		}
		if r.PayloadLen > 0 {
			fmt.Fprintf(&b, " len=%d", r.PayloadLen)
		}
		b.WriteByte('\n')
	}
	if len(r.Labels) > 0 {
		keys := make([]string, 0, len(r.Labels))
		for k := range r.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s=%s\n", k, r.Labels[k])
		}
	}
	writeNodes(&b, r.Fields, 1)
	if r.Error != "" {
		fmt.Fprintf(&b, "  error: %s\n", r.Error)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeNodes(b *strings.Builder, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		fmt.Fprintf(b, "%s[%d+%d] %s", indent, n.Offset, n.Length, n.Name)
		if n.Text != "" {
			fmt.Fprintf(b, ": %s", n.Text)
		}
		if n.Error != "" {
			fmt.Fprintf(b, "  !! %s", n.Error)
		}
		b.WriteByte('\n')
		writeNodes(b, n.Children, depth+1)
	}
}
