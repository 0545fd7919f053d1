// Package plugin defines the plugin interfaces of the wapdec pipeline and the factory
// registries built-in plugins register into.
package plugin

import "context"

// Plugin is the base interface for all plugins.
type Plugin interface {
	Name() string
	Init(cfg map[string]any) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
