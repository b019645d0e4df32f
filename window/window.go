// Package window selects which exchanges of a transcript are sent to the
// model on the next turn. Only the K most recent exchanges are kept; older
// ones stay in the transcript but drop out of the prompt.
package window

import (
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/groqchat/core/protocol"
)

const (
	// DefaultSize is the number of exchanges kept when none is configured.
	DefaultSize = 5
	// MinSize and MaxSize bound the range offered by interactive front-ends.
	// Select itself accepts any positive size.
	MinSize = 1
	MaxSize = 10
)

// ErrInvalidSize is returned when a window size is not positive.
var ErrInvalidSize = errors.New("window size must be positive")

// Select returns the last min(k, len(transcript)) exchanges in chronological
// order. The result is a fresh slice; the transcript is not modified. An empty
// transcript or a non-positive k yields an empty result.
func Select(transcript []protocol.Exchange, k int) []protocol.Exchange {
	if k <= 0 || len(transcript) == 0 {
		return []protocol.Exchange{}
	}

	start := max(len(transcript)-k, 0)

	selected := make([]protocol.Exchange, len(transcript)-start)
	copy(selected, transcript[start:])
	return selected
}

// Config holds the window size K.
type Config struct {
	Size int `json:"size,omitempty" yaml:"size,omitempty"`
}

// DefaultConfig returns a Config using DefaultSize.
func DefaultConfig() Config {
	return Config{Size: DefaultSize}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Size > 0 {
		c.Size = source.Size
	}
}

// Validate reports ErrInvalidSize when Size is not positive.
func (c *Config) Validate() error {
	if c.Size < MinSize {
		return fmt.Errorf("%w: %d", ErrInvalidSize, c.Size)
	}
	return nil
}

// Select applies the configured size to transcript.
func (c Config) Select(transcript []protocol.Exchange) []protocol.Exchange {
	return Select(transcript, c.Size)
}
