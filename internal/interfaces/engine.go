package interfaces

import "context"

// Engine answers one question at a time. Every failure maps to a
// textual answer; Answer never panics and never returns an empty
// string.
type Engine interface {
	Answer(ctx context.Context, question string) string
}
