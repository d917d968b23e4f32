package core

import "context"

// Completer is a single-turn, stateless text completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type AIProvider interface {
	Completer
	Chat(ctx context.Context, history []Message) (Message, error)
	Models(ctx context.Context) ([]Model, error)
}
