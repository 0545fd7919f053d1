// Package labelfilter implements a processor that keeps packets by label.
package labelfilter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/mitchellh/mapstructure"

	"firestige.xyz/wapdec/internal/core"
	"firestige.xyz/wapdec/pkg/plugin"
)

const pluginName = "labelfilter"

// Config represents labelfilter configuration.
//
// Every key of Match must be present on a packet for it to be kept. A value of "*" accepts
// any value; a comma-separated value accepts any of its elements. Nested maps are joined
// with dots, so {mms: {message_type: x}} and {"mms.message_type": x} are equivalent.
type Config struct {
	Match  map[string]any `mapstructure:"match"`
	Invert bool           `mapstructure:"invert"` // Drop matching packets instead of keeping them
}

type rule struct {
	label  string
	values []string // nil accepts any value
}

// Processor filters output packets by their labels.
type Processor struct {
	name   string
	rules  []rule
	invert bool

	kept    atomic.Uint64
	dropped atomic.Uint64
}

// NewLabelFilter creates a processor that keeps every packet until configured.
func NewLabelFilter() plugin.Processor {
	return &Processor{name: pluginName}
}

// Name returns the plugin name.
func (p *Processor) Name() string {
	return p.name
}

// Init initializes the processor with configuration.
func (p *Processor) Init(cfg map[string]any) error {
	var c Config
	if err := mapstructure.WeakDecode(cfg, &c); err != nil {
		return fmt.Errorf("labelfilter: invalid config: %w", err)
	}

	flat := make(map[string]string)
	if err := flatten("", c.Match, flat); err != nil {
		return fmt.Errorf("labelfilter: %w", err)
	}
	rules := make([]rule, 0, len(flat))
	for label, v := range flat {
		r := rule{label: label}
		if v != "*" {
			for _, s := range strings.Split(v, ",") {
				r.values = append(r.values, strings.TrimSpace(s))
			}
		}
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].label < rules[j].label })

	p.rules = rules
	p.invert = c.Invert
	return nil
}

func flatten(prefix string, in map[string]any, out map[string]string) error {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case map[any]any:
			m := make(map[string]any, len(val))
			for mk, mv := range val {
				m[fmt.Sprint(mk)] = mv
			}
			if err := flatten(key, m, out); err != nil {
				return err
			}
		case string, bool, int, int64, uint64, float64:
			out[key] = fmt.Sprint(val)
		default:
			return fmt.Errorf("unsupported value %v for label %s", v, key)
		}
	}
	return nil
}

// Start starts the processor.
func (p *Processor) Start(ctx context.Context) error {
	return nil
}

// Stop stops the processor.
func (p *Processor) Stop(ctx context.Context) error {
	slog.Debug("labelfilter stopped", "kept", p.kept.Load(), "dropped", p.dropped.Load())
	return nil
}

// Process reports whether pkt should reach the reporters.
func (p *Processor) Process(pkt *core.OutputPacket) bool {
	keep := p.matches(pkt.Labels) != p.invert
	if keep {
		p.kept.Add(1)
	} else {
		p.dropped.Add(1)
	}
	return keep
}

func (p *Processor) matches(labels core.Labels) bool {
	for _, r := range p.rules {
		v, ok := labels[r.label]
		if !ok {
			return false
		}
		if r.values == nil {
			continue
		}
		found := false
		for _, want := range r.values {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
