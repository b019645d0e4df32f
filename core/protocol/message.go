// Package protocol defines the role-tagged message units exchanged between
// the chat session and the remote model collaborator.
package protocol

// Role identifies the sender of a message unit. The set is closed: only the
// constants below are valid, and consumers switch over them exhaustively.
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "AI"
)

// Roles returns every valid role in declaration order.
func Roles() []Role {
	return []Role{RoleSystem, RoleHuman, RoleAI}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleHuman, RoleAI:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Message is a single role-tagged unit of a prompt payload.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleHuman, "Hello, world!")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}
