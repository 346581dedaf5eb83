package noop

import (
	"context"

	"stock-trading-chatbot/internal/logger"
	"stock-trading-chatbot/internal/types"
)

// NoopClassifier is the fallback used when no LLM provider is
// configured. It always refuses, leaving the rule-based path as the
// only classifier.
type NoopClassifier struct{}

// NewNoopClassifier returns a new instance that always refuses
func NewNoopClassifier() *NoopClassifier {
	return &NoopClassifier{}
}

// Classify implements the Fallback interface. It always refuses.
func (c *NoopClassifier) Classify(ctx context.Context, question, schema string) (types.IntentGuess, error) {
	logger.Debug(ctx, "Noop classifier called - always refuses", "question", question)
	return types.IntentGuess{Refused: true}, nil
}
