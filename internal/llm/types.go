package llm

import "encoding/base64"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Image is an inline image attached to a message.
type Image struct {
	MIME string
	Data []byte
}

// Base64 returns the image data base64 encoded.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL returns the image as a data URL.
func (i Image) DataURL() string {
	return "data:" + i.MIME + ";base64," + i.Base64()
}

// Message represents a single message in a conversation. Images are sent
// before the text for providers that care about order.
type Message struct {
	Role    Role
	Content string
	Images  []Image
}

// CompletionRequest contains the parameters for an LLM completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse contains the result of an LLM completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
