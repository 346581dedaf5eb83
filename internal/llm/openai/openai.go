package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/store"
	"stock-trading-chatbot/internal/trace"
	"stock-trading-chatbot/internal/types"
)

type OpenAIClassifier struct {
	cfg      *store.Config
	endpoint string
}

var _ interfaces.Fallback = (*OpenAIClassifier)(nil)

func NewOpenAIClassifier(cfg *store.Config) *OpenAIClassifier {
	endpoint := "https://api.openai.com/v1/chat/completions"
	if ep := os.Getenv("OPENAI_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &OpenAIClassifier{cfg: cfg, endpoint: endpoint}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, question, schema string) (types.IntentGuess, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return types.IntentGuess{}, &interfaces.ExternalServiceError{Provider: "openai", Err: errors.New("OPENAI_API_KEY missing")}
	}

	system := c.cfg.LLM.System
	if system == "" {
		system = "You are a trading-data query analyst. Output STRICT JSON matching the schema. If the question is not about trading data, set refused to true."
	}
	prompt := fmt.Sprintf("Schema:%s\nQuestion:%s\n\nRespond ONLY with compact JSON matching the schema.", schema, question)

	body := map[string]any{
		"model":       c.cfg.LLM.Model,
		"messages":    []map[string]string{{"role": "system", "content": system}, {"role": "user", "content": prompt}},
		"temperature": c.cfg.LLM.Temperature,
		"max_tokens":  c.cfg.LLM.MaxTokens,
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(bb))
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return types.IntentGuess{}, &interfaces.ExternalServiceError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return types.IntentGuess{}, &interfaces.ExternalServiceError{Provider: "openai", Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return types.IntentGuess{}, &interfaces.ExternalServiceError{Provider: "openai", Err: err}
	}
	if len(r.Choices) == 0 {
		return types.IntentGuess{}, &interfaces.ExternalServiceError{Provider: "openai", Err: errors.New("no choices")}
	}

	return ParseGuessFromText(strings.TrimSpace(r.Choices[0].Message.Content))
}

// ParseGuessFromText locates a JSON object in model output and
// unmarshals it into an IntentGuess. Unparsable output becomes a
// refusal rather than an error.
func ParseGuessFromText(text string) (types.IntentGuess, error) {
	t := strings.TrimSpace(text)
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		var g types.IntentGuess
		if err := json.Unmarshal([]byte(t[start:end+1]), &g); err == nil {
			NormalizeGuess(&g)
			return g, nil
		}
	}
	return types.IntentGuess{Refused: true}, nil
}

// NormalizeGuess upper-cases the enum-like fields of a guess.
func NormalizeGuess(g *types.IntentGuess) {
	g.Intent = strings.ToUpper(strings.TrimSpace(g.Intent))
	g.Metric = strings.ToUpper(strings.TrimSpace(g.Metric))
	g.Symbol = strings.ToUpper(strings.TrimSpace(g.Symbol))
	g.DatePhrase = strings.TrimSpace(g.DatePhrase)
}
