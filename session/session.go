// Package session holds the transcript of completed exchanges for one chat
// session.
package session

import (
	"github.com/tailored-agentic-units/groqchat/core/protocol"
)

// Session is an ordered transcript of exchanges, oldest first. The order is
// the order of Append calls and is never rearranged. Implementations must be
// safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// Append adds an exchange to the end of the transcript.
	Append(exchange protocol.Exchange)
	// Exchanges returns a defensive copy of the transcript.
	Exchanges() []protocol.Exchange
	// Len returns the number of stored exchanges.
	Len() int
	// Clear resets the transcript to empty. The ID is kept.
	Clear()
}
