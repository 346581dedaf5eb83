package engineobs

import (
	"context"

	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/logger"
)

// observableEngine wraps an Engine with observability (logging & tracing)
type observableEngine struct {
	engine interfaces.Engine
}

// Compile-time interface check
var _ interfaces.Engine = (*observableEngine)(nil)

// Wrap wraps an engine with observability middleware
func Wrap(engine interfaces.Engine) interfaces.Engine {
	return &observableEngine{engine: engine}
}

// Answer resolves a question with observability
func (oe *observableEngine) Answer(ctx context.Context, question string) string {
	timer := logger.StartOperation(ctx, "engine.Answer", "question", question)
	ctx = timer.GetContext()

	answer := oe.engine.Answer(ctx, question)

	timer.End("answer_len", len(answer))
	return answer
}
