package session

// Config holds session initialization parameters.
type Config struct {
	// Capacity preallocates room for this many exchanges. Zero allocates lazily.
	Capacity int `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Capacity > 0 {
		c.Capacity = source.Capacity
	}
}

// New creates a Session from configuration. Currently returns an in-memory session.
func New(cfg *Config) (Session, error) {
	return newMemorySession(cfg.Capacity), nil
}
