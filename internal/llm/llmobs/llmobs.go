package llmobs

import (
	"context"

	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/logger"
	"stock-trading-chatbot/internal/trace"
	"stock-trading-chatbot/internal/types"
)

// observableFallback wraps a Fallback with observability (logging & tracing)
type observableFallback struct {
	fallback interfaces.Fallback
}

// Compile-time interface check
var _ interfaces.Fallback = (*observableFallback)(nil)

// Wrap wraps a fallback classifier with observability middleware
func Wrap(fallback interfaces.Fallback) interfaces.Fallback {
	return &observableFallback{fallback: fallback}
}

// Classify asks the collaborator for an intent guess with observability
func (of *observableFallback) Classify(ctx context.Context, question, schema string) (types.IntentGuess, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Classify")
	defer span.End()

	logger.Debug(ctx, "Requesting fallback classification", "question", question)

	guess, err := of.fallback.Classify(ctx, question, schema)
	if err != nil {
		logger.ErrorWithErr(ctx, "Fallback classification failed", err, "question", question)
		return types.IntentGuess{}, err
	}

	logger.Info(ctx, "Fallback classification received",
		"intent", guess.Intent,
		"symbol", guess.Symbol,
		"metric", guess.Metric,
		"refused", guess.Refused,
	)
	return guess, nil
}
