package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Blob is binary content sent inline with a message, such as recorded audio.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Message represents a single message in a conversation. Attachments are only
// understood by providers that accept inline media.
type Message struct {
	Role        Role
	Content     string
	Attachments []Blob
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
