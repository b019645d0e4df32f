// Package prompt assembles the role-tagged payload sent to the remote model
// for a single turn:
//
//	[system directive, if present] + [human, AI per windowed exchange] + [new human input]
//
// A Payload is rebuilt on every turn and is never stored.
package prompt

import (
	"errors"
	"slices"
	"strings"

	"github.com/tailored-agentic-units/groqchat/core/protocol"
)

// ErrInvalidInput is returned when the new human input is empty.
var ErrInvalidInput = errors.New("input must not be empty")

// Directive is the optional system instruction prepended to every payload.
// The zero value is an absent directive.
type Directive struct {
	text string
}

// NewDirective wraps text as a directive. Blank text yields an absent
// directive; otherwise the text is kept verbatim.
func NewDirective(text string) Directive {
	if strings.TrimSpace(text) == "" {
		return Directive{}
	}
	return Directive{text: text}
}

// Present reports whether the directive contributes a system unit.
func (d Directive) Present() bool {
	return d.text != ""
}

// Text returns the directive text, or "" when absent.
func (d Directive) Text() string {
	return d.text
}

// Payload is the ordered message sequence for one remote call.
type Payload struct {
	messages []protocol.Message
}

// Messages returns a copy of the payload units in order.
func (p Payload) Messages() []protocol.Message {
	return slices.Clone(p.messages)
}

// Len returns the number of units.
func (p Payload) Len() int {
	return len(p.messages)
}

// Roles returns the role of each unit in order.
func (p Payload) Roles() []protocol.Role {
	roles := make([]protocol.Role, len(p.messages))
	for i, m := range p.messages {
		roles[i] = m.Role
	}
	return roles
}

// ValidateInput returns ErrInvalidInput when input has no non-whitespace text.
func ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return ErrInvalidInput
	}
	return nil
}

// Assemble builds the payload for one turn. Each windowed exchange
// contributes a human unit followed by an AI unit, oldest exchange first.
// The input must contain non-whitespace text.
func Assemble(system Directive, windowed []protocol.Exchange, input string) (Payload, error) {
	if err := ValidateInput(input); err != nil {
		return Payload{}, err
	}

	size := 2*len(windowed) + 1
	if system.Present() {
		size++
	}

	messages := make([]protocol.Message, 0, size)
	if system.Present() {
		messages = append(messages, protocol.NewMessage(protocol.RoleSystem, system.Text()))
	}
	for _, e := range windowed {
		units := e.Messages()
		messages = append(messages, units[0], units[1])
	}
	messages = append(messages, protocol.NewMessage(protocol.RoleHuman, input))

	return Payload{messages: messages}, nil
}
