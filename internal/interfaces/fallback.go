package interfaces

import (
	"context"
	"fmt"

	"stock-trading-chatbot/internal/types"
)

// Fallback is the language-understanding collaborator consulted when
// rule-based classification cannot interpret a question. The schema
// string describes the recognized intents so the model answers in the
// IntentGuess shape. Implementations must honor ctx cancellation.
type Fallback interface {
	Classify(ctx context.Context, question, schema string) (types.IntentGuess, error)
}

// ExternalServiceError reports that the collaborator was unreachable,
// timed out, or returned an unusable response. The classifier degrades
// to rule-based-only behavior when it sees one.
type ExternalServiceError struct {
	Provider string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s fallback unavailable: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
