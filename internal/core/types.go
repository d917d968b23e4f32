package core

const (
	GlimpseName          = "Glimpse"
	GlimpseUserAgent     = "Glimpse-Agent/0.1"
	GlimpseRepositoryURL = "https://github.com/sandevgo/glimpse"
	GlimpseVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length,omitempty"`
}
