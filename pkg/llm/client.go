// Package llm defines the provider-agnostic model client behind the explain
// flow. Provider implementations live in internal/llm and register
// themselves by name from an init function; NewClient resolves the name and
// hands the rest of the Config to the matching factory.
package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Client is a handle to one configured model.
type Client interface {
	// Chat runs a single exchange: systemPrompt frames the task, messages
	// carry the conversation so far.
	Chat(ctx context.Context, systemPrompt string, messages []Message) (*Response, error)
	// Model returns the model identifier in use.
	Model() string
	// Provider returns the registered name of the serving provider.
	Provider() string
	// Close releases any resources the provider holds.
	Close() error
}

// Config carries the union of what the registered providers need. Each
// factory reads its own fields and validates them; fields for other
// providers are ignored.
type Config struct {
	// Provider selects the registered factory.
	Provider string
	// Model overrides the provider's default model when non-empty.
	Model string

	// APIKey and BaseURL configure the anthropic provider. BaseURL is an
	// endpoint override, mainly for tests against a local server.
	APIKey  string
	BaseURL string

	// Project, Location, and CredentialsFile configure the vertex-ai
	// provider.
	Project         string
	Location        string
	CredentialsFile string
}

// Factory builds a Client from a Config.
type Factory func(cfg Config) (Client, error)

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Factory)
)

// Register makes a provider available under name. Providers call this from
// init; a later registration under the same name replaces the earlier one.
func Register(name string, factory Factory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClient builds a client for cfg.Provider.
func NewClient(cfg Config) (Client, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (registered: %v)", cfg.Provider, Providers())
	}
	return factory(cfg)
}
