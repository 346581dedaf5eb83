package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/store"
	"stock-trading-chatbot/internal/types"
)

func TestParseGuessFromText(t *testing.T) {
	g, err := ParseGuessFromText(`{"intent":"aggregate","symbol":"aapl","metric":"volume","date_phrase":"yesterday"}`)
	require.NoError(t, err)
	assert.Equal(t, "AGGREGATE", g.Intent)
	assert.Equal(t, "AAPL", g.Symbol)
	assert.Equal(t, "VOLUME", g.Metric)
	assert.False(t, g.Refused)

	// JSON embedded in chatter still parses.
	g, err = ParseGuessFromText("Sure! Here is the classification:\n```json\n{\"intent\":\"LOOKUP\",\"symbol\":\"MSFT\"}\n``` hope that helps")
	require.NoError(t, err)
	assert.Equal(t, "LOOKUP", g.Intent)
	assert.Equal(t, "MSFT", g.Symbol)

	// Garbage degrades to a refusal, not an error.
	g, err = ParseGuessFromText("I cannot answer that")
	require.NoError(t, err)
	assert.True(t, g.Refused)
}

func TestClassifyMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c := NewOpenAIClassifier(store.Default())
	_, err := c.Classify(context.Background(), "q", "schema")
	var ese *interfaces.ExternalServiceError
	require.ErrorAs(t, err, &ese)
	assert.Equal(t, "openai", ese.Provider)
}

func TestClassifyAgainstStub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-3.5-turbo", body["model"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"intent":"AGGREGATE","symbol":"AAPL","metric":"NOTIONAL"}`}},
			},
		})
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_API_ENDPOINT", srv.URL)

	c := NewOpenAIClassifier(store.Default())
	g, err := c.Classify(context.Background(), "what moved the most", "schema")
	require.NoError(t, err)
	assert.Equal(t, types.IntentGuess{Intent: "AGGREGATE", Symbol: "AAPL", Metric: "NOTIONAL"}, g)
}

func TestClassifyHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_API_ENDPOINT", srv.URL)

	c := NewOpenAIClassifier(store.Default())
	_, err := c.Classify(context.Background(), "q", "schema")
	var ese *interfaces.ExternalServiceError
	assert.ErrorAs(t, err, &ese)
}
