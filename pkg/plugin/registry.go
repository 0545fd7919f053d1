package plugin

import (
	"fmt"
	"sort"
	"sync"

	"firestige.xyz/wapdec/internal/core"
)

// Factory functions create a fresh, uninitialized plugin instance.
type (
	CapturerFactory  func() Capturer
	ParserFactory    func() Parser
	ProcessorFactory func() Processor
	ReporterFactory  func() Reporter
)

type registry[F any] struct {
	kind      string
	mu        sync.RWMutex
	factories map[string]F
}

func newRegistry[F any](kind string) *registry[F] {
	return &registry[F]{kind: kind, factories: make(map[string]F)}
}

// register panics on programming errors; registration happens in init functions.
func (r *registry[F]) register(name string, f F, isNil bool) {
	if name == "" {
		panic(fmt.Sprintf("plugin: %s name is empty", r.kind))
	}
	if isNil {
		panic(fmt.Sprintf("plugin: %s %q has nil factory", r.kind, name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		panic(fmt.Sprintf("plugin: %s %q already registered", r.kind, name))
	}
	r.factories[name] = f
}

func (r *registry[F]) get(name string) (F, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		var zero F
		return zero, fmt.Errorf("%s %q: %w", r.kind, name, core.ErrPluginNotFound)
	}
	return f, nil
}

func (r *registry[F]) list() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes every registration. Tests use it to start from a clean registry.
func (r *registry[F]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = make(map[string]F)
}

var (
	capturerReg  = newRegistry[CapturerFactory]("capturer")
	parserReg    = newRegistry[ParserFactory]("parser")
	processorReg = newRegistry[ProcessorFactory]("processor")
	reporterReg  = newRegistry[ReporterFactory]("reporter")
)

func RegisterCapturer(name string, f CapturerFactory) { capturerReg.register(name, f, f == nil) }
func RegisterParser(name string, f ParserFactory)     { parserReg.register(name, f, f == nil) }
func RegisterProcessor(name string, f ProcessorFactory) {
	processorReg.register(name, f, f == nil)
}
func RegisterReporter(name string, f ReporterFactory) { reporterReg.register(name, f, f == nil) }

func GetCapturerFactory(name string) (CapturerFactory, error)   { return capturerReg.get(name) }
func GetParserFactory(name string) (ParserFactory, error)       { return parserReg.get(name) }
func GetProcessorFactory(name string) (ProcessorFactory, error) { return processorReg.get(name) }
func GetReporterFactory(name string) (ReporterFactory, error)   { return reporterReg.get(name) }

// List* return the registered names in sorted order.
func ListCapturers() []string  { return capturerReg.list() }
func ListParsers() []string    { return parserReg.list() }
func ListProcessors() []string { return processorReg.list() }
func ListReporters() []string  { return reporterReg.list() }
