package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/dharti/dharti/bridge/internal/domain/service"
	"go.uber.org/zap"
)

// Provider is the infrastructure-layer model provider interface. Each
// provider implements service.LLMClient so the reasoning loop can use
// it directly.
type Provider interface {
	service.LLMClient

	// Name returns the provider identifier (e.g. "groq").
	Name() string

	// Models returns the list of supported model identifiers.
	Models() []string

	// SupportsModel checks if a specific model is supported.
	SupportsModel(model string) bool

	// IsAvailable checks if the provider is usable.
	IsAvailable(ctx context.Context) bool
}

// ProviderConfig holds configuration for one provider endpoint.
type ProviderConfig struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"` // "openai" (default; covers Groq and compatibles)
	BaseURL string   `json:"base_url"`
	APIKey  string   `json:"api_key"`
	Models  []string `json:"models"`
}

// --- Provider factory registry ---
// Providers register themselves via init() in their own package.

// ProviderFactory creates a Provider from config.
type ProviderFactory func(cfg ProviderConfig, logger *zap.Logger) Provider

var (
	factoryMu sync.RWMutex
	factories = map[string]ProviderFactory{}
)

// RegisterFactory registers a provider factory for the given type name.
func RegisterFactory(typeName string, factory ProviderFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[typeName] = factory
}

// CreateProvider creates a Provider using the registered factory for
// cfg.Type. An empty Type defaults to "openai".
func CreateProvider(cfg ProviderConfig, logger *zap.Logger) (Provider, error) {
	t := cfg.Type
	if t == "" {
		t = "openai"
	}

	factoryMu.RLock()
	factory, ok := factories[t]
	factoryMu.RUnlock()

	if !ok {
		factoryMu.RLock()
		available := make([]string, 0, len(factories))
		for k := range factories {
			available = append(available, k)
		}
		factoryMu.RUnlock()
		return nil, fmt.Errorf("unknown provider type %q (available: %v)", t, available)
	}

	return factory(cfg, logger), nil
}
