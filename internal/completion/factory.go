package completion

import (
	"fmt"
	"sort"

	"facturas/internal/config"
	"facturas/internal/port"
)

// ProviderFactory creates a CompletionService from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.CompletionService, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a completion provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// RegisteredProviders returns the sorted names of all registered providers.
func RegisteredProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a CompletionService from a provider config using the registered factory.
func New(cfg *config.ParserProviderConfig) (port.CompletionService, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// FromConfig builds the primary provider and, when a secondary is configured, wraps both in a Fallback.
func FromConfig(cfg *config.ParserConfig, opts ...FallbackOption) (port.CompletionService, error) {
	primary, err := New(cfg.PrimaryConfig())
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}
	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := New(secondaryCfg)
	if err != nil {
		return nil, fmt.Errorf("secondary provider: %w", err)
	}
	return NewFallback([]port.CompletionService{primary, secondary}, opts...), nil
}
