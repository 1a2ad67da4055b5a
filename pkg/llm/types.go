package llm

// Role identifies the author of a conversation message. The system prompt
// is not a role here; Chat takes it as a separate argument because every
// provider wires it differently.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation, ordered oldest first.
type Message struct {
	Role    Role
	Content string
}

// Response is the model's reply to one Chat call.
type Response struct {
	Content string
	Usage   TokenUsage
}

// TokenUsage reports the token counts a provider accounted for one call.
// Zero values mean the provider did not report usage.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}
