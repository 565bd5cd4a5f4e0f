package domain

import "time"

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of a chat widget transcript. Content may carry the
// **bold** and newline markup understood by the widget renderer.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Suggestion is a canned prompt offered by the chat widget.
type Suggestion struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// SuggestionCategory groups suggestions under a titled heading.
type SuggestionCategory struct {
	ID    string       `json:"id" yaml:"id"`
	Title string       `json:"title" yaml:"title"`
	Items []Suggestion `json:"items" yaml:"items"`
}
