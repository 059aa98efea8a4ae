package domain

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. The caller persists the
// conversation across turns; the pipeline never stores it.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
