package chat

import (
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/groqchat/prompt"
)

var (
	// ErrInvalidInput is returned by Ask for empty input. Nothing is sent
	// and the transcript is unchanged.
	ErrInvalidInput = prompt.ErrInvalidInput
	// ErrNotConfigured is returned by Ask when no remote model client is
	// available, typically because no credential was supplied.
	ErrNotConfigured = errors.New("chat session has no configured model client")
	// ErrBusy is returned when a call arrives while another Ask is in flight.
	ErrBusy = errors.New("chat session is awaiting a reply")
	// ErrRemoteCall matches any *RemoteCallError via errors.Is.
	ErrRemoteCall = errors.New("remote call failed")
	// ErrInvalidModel is returned by SetModel for an empty identifier.
	ErrInvalidModel = errors.New("model identifier is empty")
)

// RemoteCallError reports a failed, cancelled or timed-out model call.
// Diagnostic preserves the collaborator's error text.
type RemoteCallError struct {
	Model      string
	Diagnostic string
	Err        error
}

func newRemoteCallError(model string, err error) *RemoteCallError {
	return &RemoteCallError{Model: model, Diagnostic: err.Error(), Err: err}
}

func (e *RemoteCallError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("remote call failed: %s", e.Diagnostic)
	}
	return fmt.Sprintf("remote call to %s failed: %s", e.Model, e.Diagnostic)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}
