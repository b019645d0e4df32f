package chat

// Register the OpenAI-compatible providers ("groq", "openai") so sessions
// built from Config can resolve them.
import _ "github.com/tailored-agentic-units/groqchat/agent/openai"
