package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/llm/openai"
	"stock-trading-chatbot/internal/store"
	"stock-trading-chatbot/internal/trace"
	"stock-trading-chatbot/internal/types"
)

// ClaudeClassifier implements the Fallback interface using the
// Anthropic messages API.
type ClaudeClassifier struct {
	cfg      *store.Config
	endpoint string
}

var _ interfaces.Fallback = (*ClaudeClassifier)(nil)

func NewClaudeClassifier(cfg *store.Config) *ClaudeClassifier {
	endpoint := "https://api.anthropic.com/v1/messages"
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &ClaudeClassifier{cfg: cfg, endpoint: endpoint}
}

func (c *ClaudeClassifier) Classify(ctx context.Context, question, schema string) (types.IntentGuess, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return types.IntentGuess{}, &interfaces.ExternalServiceError{Provider: "claude", Err: errors.New("CLAUDE_API_KEY missing")}
	}

	system := c.cfg.LLM.System
	if system == "" {
		system = "You are a trading-data query analyst. Output STRICT JSON matching the schema. If the question is not about trading data, set refused to true."
	}
	user := fmt.Sprintf("Schema:%s\nQuestion:%s\n\nRespond ONLY with compact JSON matching the schema.", schema, question)

	reqBody := map[string]any{
		"model":       c.cfg.LLM.Model,
		"system":      system,
		"messages":    []map[string]string{{"role": "user", "content": user}},
		"max_tokens":  c.cfg.LLM.MaxTokens,
		"temperature": c.cfg.LLM.Temperature,
	}
	bb, _ := json.Marshal(reqBody)

	req, _ := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(bb))
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return types.IntentGuess{}, &interfaces.ExternalServiceError{Provider: "claude", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return types.IntentGuess{}, &interfaces.ExternalServiceError{Provider: "claude", Err: fmt.Errorf("http %d: %s", resp.StatusCode, string(body))}
	}

	respBytes, _ := io.ReadAll(resp.Body)

	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBytes, &r); err == nil {
		for _, part := range r.Content {
			if part.Type == "text" && strings.TrimSpace(part.Text) != "" {
				return openai.ParseGuessFromText(part.Text)
			}
		}
	}

	// Unexpected body shape, try the raw text.
	return openai.ParseGuessFromText(string(respBytes))
}
