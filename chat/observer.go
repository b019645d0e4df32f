package chat

import "github.com/tailored-agentic-units/groqchat/observability"

// Chat session event types.
const (
	EventAskStart     observability.EventType = "chat.ask.start"
	EventAskComplete  observability.EventType = "chat.ask.complete"
	EventAskError     observability.EventType = "chat.ask.error"
	EventAskRejected  observability.EventType = "chat.ask.rejected"
	EventReset        observability.EventType = "chat.reset"
	EventConfigChange observability.EventType = "chat.config.change"
)
