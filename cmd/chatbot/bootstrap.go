package main

import (
	"context"
	"fmt"
	"os"

	"stock-trading-chatbot/internal/engine"
	"stock-trading-chatbot/internal/engine/engineobs"
	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/llm/claude"
	"stock-trading-chatbot/internal/llm/llmobs"
	"stock-trading-chatbot/internal/llm/noop"
	"stock-trading-chatbot/internal/llm/openai"
	"stock-trading-chatbot/internal/logger"
	"stock-trading-chatbot/internal/store"
	"stock-trading-chatbot/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger, and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads the configuration, falling back to defaults when no
// config file is present
func loadConfig(ctx context.Context, path string) *store.Config {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info(ctx, "No config file found, using defaults", "path", path)
			return store.Default()
		}
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		os.Exit(1)
	}
	return cfg
}

// initializeFallback returns the LLM classifier fallback with observability
func initializeFallback(ctx context.Context, cfg *store.Config) interfaces.Fallback {
	var fallback interfaces.Fallback

	switch cfg.LLM.Provider {
	case "OPENAI":
		fallback = openai.NewOpenAIClassifier(cfg)
	case "CLAUDE":
		fallback = claude.NewClaudeClassifier(cfg)
	default:
		fallback = noop.NewNoopClassifier()
		logger.Warn(ctx, "No LLM provider configured - unmatched questions get a clarification answer")
	}

	// Wrap with observability middleware
	return llmobs.Wrap(fallback)
}

// initializeEngine builds the chat session and wraps it with observability
func initializeEngine(cfg *store.Config, fallback interfaces.Fallback) (*engine.Session, interfaces.Engine) {
	session := engine.NewSession(cfg, fallback)
	return session, engineobs.Wrap(session)
}
