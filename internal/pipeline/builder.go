package pipeline

import (
	"firestige.xyz/wapdec/pkg/plugin"
)

// Builder assembles a replay pipeline stage by stage.
type Builder struct {
	cfg Config
}

func NewBuilder() *Builder {
	return &Builder{cfg: Config{BufferSize: defaultBufferSize}}
}

// WithID tags metrics and logs of the pipeline.
func (b *Builder) WithID(id int) *Builder {
	b.cfg.ID = id
	return b
}

// WithSource sets the capture file name copied into every output packet.
func (b *Builder) WithSource(source string) *Builder {
	b.cfg.Source = source
	return b
}

func (b *Builder) WithCapturer(c plugin.Capturer) *Builder {
	b.cfg.Capturer = c
	return b
}

// WithDecoder sets the frame decoder that turns captured frames into UDP/TCP payloads.
func (b *Builder) WithDecoder(d Decoder) *Builder {
	b.cfg.Decoder = d
	return b
}

// WithParsers sets the parsers in priority order; the first whose CanHandle accepts a
// packet decodes it.
func (b *Builder) WithParsers(parsers ...plugin.Parser) *Builder {
	b.cfg.Parsers = parsers
	return b
}

func (b *Builder) WithProcessors(processors ...plugin.Processor) *Builder {
	b.cfg.Processors = processors
	return b
}

func (b *Builder) WithReporters(reporters ...plugin.Reporter) *Builder {
	b.cfg.Reporters = reporters
	return b
}

// WithBufferSize sets how many captured frames may wait for the decoder. Values below 1
// keep the default.
func (b *Builder) WithBufferSize(size int) *Builder {
	if size > 0 {
		b.cfg.BufferSize = size
	}
	return b
}

func (b *Builder) Build() *Pipeline {
	return New(b.cfg)
}
