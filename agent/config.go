package agent

import "fmt"

// DefaultProvider is used when Config.Provider is empty.
const DefaultProvider = "groq"

// Config holds the collaborator parameters: which provider and model to
// target and the credential that authorizes calls.
type Config struct {
	Provider    string  `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model       string  `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxRetries  int     `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
}

// DefaultConfig targets Groq with the default catalog model. The credential
// is left empty.
func DefaultConfig() Config {
	return Config{
		Provider: DefaultProvider,
		Model:    DefaultModel,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.Temperature != 0 {
		c.Temperature = source.Temperature
	}
	if source.MaxRetries > 0 {
		c.MaxRetries = source.MaxRetries
	}
}

// HasCredential reports whether an API key is configured.
func (c *Config) HasCredential() bool {
	return c.APIKey != ""
}

// New creates a Client for the configured provider using the default
// registry. Returns ErrMissingCredential when no API key is set.
func New(cfg *Config) (Client, error) {
	return defaultRegistry.New(cfg)
}

func providerName(cfg *Config) string {
	if cfg.Provider == "" {
		return DefaultProvider
	}
	return cfg.Provider
}

func (r *Registry) New(cfg *Config) (Client, error) {
	if !cfg.HasCredential() {
		return nil, ErrMissingCredential
	}

	name := providerName(cfg)
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	client, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", name, err)
	}
	return client, nil
}
