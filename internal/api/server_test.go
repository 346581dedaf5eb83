package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonDecode(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

type echoEngine struct{}

func (echoEngine) Answer(ctx context.Context, question string) string {
	return "answer to: " + question
}

type fixedDates struct{}

func (fixedDates) AvailableDates() ([]time.Time, error) {
	return []time.Time{time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)}, nil
}

func newTestServer() *httptest.Server {
	s := NewServer("127.0.0.1:0", echoEngine{}, fixedDates{})
	return httptest.NewServer(s.Handler())
}

func TestHealth(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestChat(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/chat", "application/json",
		strings.NewReader(`{"question":"total volume for AAPL yesterday"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Answer string `json:"answer"`
	}
	require.NoError(t, jsonDecode(resp, &body))
	assert.Equal(t, "answer to: total volume for AAPL yesterday", body.Answer)
}

func TestChatV1Alias(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/chat", "application/json",
		strings.NewReader(`{"question":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatRejectsBadBody(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	for _, body := range []string{"", "not json", `{"question":"   "}`} {
		resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
	}
}

func TestChatMethodNotAllowed(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/chat")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestDates(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/dates")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Dates []string `json:"dates"`
	}
	require.NoError(t, jsonDecode(resp, &body))
	assert.Equal(t, []string{"2024-03-04"}, body.Dates)
}
