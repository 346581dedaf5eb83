// Package engine orchestrates one question/answer cycle: classify the
// question, resolve its dates, load the daily logs, execute the query,
// and format the result. A Session owns its own log cache, so
// concurrent sessions never share mutable state.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-trading-chatbot/internal/dateparse"
	"stock-trading-chatbot/internal/executor"
	"stock-trading-chatbot/internal/formatter"
	"stock-trading-chatbot/internal/intent"
	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/loader"
	"stock-trading-chatbot/internal/logger"
	"stock-trading-chatbot/internal/store"
	"stock-trading-chatbot/internal/trace"
	"stock-trading-chatbot/internal/types"
)

const internalError = "Something went wrong while reading the trade logs. Please try again."

// Session is one chat session: a classifier, a formatter, and an
// exclusively-owned log cache. Questions are answered one at a time.
type Session struct {
	id         string
	cfg        *store.Config
	loader     *loader.Loader
	classifier *intent.Classifier
	formatter  *formatter.Formatter
	now        func() time.Time

	mu sync.Mutex
}

var _ interfaces.Engine = (*Session)(nil)

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the reference-date source, for deterministic
// resolution of phrases like "yesterday" in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession builds a session over the configured data directory.
func NewSession(cfg *store.Config, fallback interfaces.Fallback, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		cfg:        cfg,
		loader:     loader.New(cfg.DataDir),
		classifier: intent.NewClassifier(fallback, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		formatter:  formatter.New(cfg.Answer.MaxTableRows),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Stats returns loader diagnostics for this session.
func (s *Session) Stats() loader.Stats { return s.loader.Stats() }

// AvailableDates lists the dates with log files.
func (s *Session) AvailableDates() ([]time.Time, error) { return s.loader.AvailableDates() }

// Answer resolves one question into a textual answer. Every error
// kind maps to text; the engine never crashes on bad input.
func (s *Session) Answer(ctx context.Context, question string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := trace.StartSpan(ctx, "engine.Answer")
	defer span.End()

	qi, err := s.classifier.Classify(ctx, question)
	if err != nil {
		var unclassifiable *intent.UnclassifiableQuestionError
		if errors.As(err, &unclassifiable) {
			return formatter.Clarification
		}
		logger.ErrorWithErr(ctx, "Classification failed", err, "question", question)
		return formatter.Clarification
	}

	switch qi.Kind {
	case types.IntentGreeting:
		return formatter.GreetingMessage
	case types.IntentHelp:
		return formatter.HelpMessage
	case types.IntentDates:
		return s.answerDates(ctx)
	case types.IntentCompare:
		return s.answerCompare(ctx, question, qi)
	default:
		return s.answerSingle(ctx, question, qi)
	}
}

func (s *Session) answerDates(ctx context.Context) string {
	dates, err := s.loader.AvailableDates()
	if err != nil {
		logger.ErrorWithErr(ctx, "Listing available dates failed", err)
		return internalError
	}
	return formatter.AvailableDates(dates)
}

func (s *Session) answerSingle(ctx context.Context, question string, qi types.QueryIntent) string {
	expr, err := dateparse.Resolve(qi.DatePhrase, s.now())
	if err != nil {
		return formatter.ClarifyDate(qi.DatePhrase)
	}

	logs, err := s.loader.Load(ctx, expr.Dates)
	if err != nil {
		var missing *loader.MissingLogError
		if errors.As(err, &missing) {
			return formatter.NoDataFor(expr.Label)
		}
		logger.ErrorWithErr(ctx, "Loading logs failed", err, "dates", expr.Label)
		return internalError
	}

	result := executor.Execute(qi, expr, logs)
	logger.Question(ctx, question, string(qi.Kind), qi.Symbol, expr.Label,
		"result", string(result.Kind))
	return s.formatter.Format(result)
}

func (s *Session) answerCompare(ctx context.Context, question string, qi types.QueryIntent) string {
	exprA, err := dateparse.Resolve(qi.ComparePhraseA, s.now())
	if err != nil {
		return formatter.ClarifyDate(qi.ComparePhraseA)
	}
	exprB, err := dateparse.Resolve(qi.ComparePhraseB, s.now())
	if err != nil {
		return formatter.ClarifyDate(qi.ComparePhraseB)
	}

	all := append(append([]time.Time{}, exprA.Dates...), exprB.Dates...)
	logs, err := s.loader.Load(ctx, all)
	if err != nil {
		var missing *loader.MissingLogError
		if errors.As(err, &missing) {
			return formatter.NoDataFor(exprA.Label + " or " + exprB.Label)
		}
		logger.ErrorWithErr(ctx, "Loading logs failed", err)
		return internalError
	}

	result := executor.ExecuteCompare(qi, exprA, exprB, logs)
	logger.Question(ctx, question, string(qi.Kind), qi.Symbol,
		exprA.Label+" vs "+exprB.Label, "result", string(result.Kind))
	return s.formatter.Format(result)
}
