package dashboard

import (
	"fmt"
	"sync"
)

// WidgetHook lets packages register widgets/loaders during init().
type WidgetHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []WidgetHook
)

// RegisterWidgetHook registers a hook executed against new registries.
func RegisterWidgetHook(h WidgetHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// WidgetManifest represents config-driven registration entries.
type WidgetManifest struct {
	Definition WidgetDefinition
	Loader     LoaderFactory
}

// Registry implements DefinitionRegistry with hook + manifest support.
// Definitions keep their registration order, which is the grid order.
type Registry struct {
	mu          sync.RWMutex
	order       []string
	definitions map[string]WidgetDefinition
	loaders     map[string]LoaderFactory
}

// NewRegistry builds a registry seeded with the default widgets and applies global hooks.
func NewRegistry() *Registry {
	reg := NewEmptyRegistry()
	for _, def := range DefaultWidgetDefinitions() {
		_ = reg.RegisterDefinition(def)
	}
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyRegistry builds a registry without defaults or hooks.
func NewEmptyRegistry() *Registry {
	return &Registry{
		definitions: map[string]WidgetDefinition{},
		loaders:     map[string]LoaderFactory{},
	}
}

// ApplyHooks executes registered widget hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// LoadManifest registers definitions/loaders from config manifests.
func (r *Registry) LoadManifest(items []WidgetManifest) error {
	for _, item := range items {
		if err := r.RegisterDefinition(item.Definition); err != nil {
			return err
		}
		if item.Loader != nil {
			if err := r.RegisterLoader(item.Definition.Code, item.Loader); err != nil {
				return err
			}
		}
	}
	return nil
}

// RegisterDefinition stores widget metadata. Re-registering a code replaces it in place.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("widget definition code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.definitions[def.Code]; !exists {
		r.order = append(r.order, def.Code)
	}
	r.definitions[def.Code] = def
	return nil
}

// RegisterLoader overrides how a definition fetches its data.
func (r *Registry) RegisterLoader(code string, factory LoaderFactory) error {
	if code == "" {
		return fmt.Errorf("widget definition code is required to register loader")
	}
	if factory == nil {
		return fmt.Errorf("loader factory cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("widget definition %s not found", code)
	}
	r.loaders[code] = factory
	return nil
}

// Definition fetches a widget definition by code.
func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// LoaderFactory fetches a registered loader factory by code.
func (r *Registry) LoaderFactory(code string) (LoaderFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.loaders[code]
	return factory, ok
}

// Definitions returns all registered definitions in registration order.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.order))
	for _, code := range r.order {
		defs = append(defs, r.definitions[code])
	}
	return defs
}
