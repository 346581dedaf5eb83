// Package api exposes the chat engine over HTTP. The transport is a
// thin layer: it decodes the question, hands it to the engine, and
// returns whatever text the engine produced.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"stock-trading-chatbot/internal/interfaces"
	"stock-trading-chatbot/internal/logger"
)

type Server struct {
	engine interfaces.Engine
	dates  DateLister
	router *mux.Router
	http   *http.Server
}

// DateLister reports which log dates the engine can answer about.
type DateLister interface {
	AvailableDates() ([]time.Time, error)
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(addr string, engine interfaces.Engine, dates DateLister) *Server {
	s := &Server{engine: engine, dates: dates}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	v1.HandleFunc("/dates", s.handleDates).Methods(http.MethodGet)

	s.router = r
	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	answer := s.engine.Answer(r.Context(), question)
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.dates.AvailableDates()
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Listing dates failed", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not list dates"})
		return
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	writeJSON(w, http.StatusOK, map[string][]string{"dates": out})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(context.Background(), "Encoding response failed", "error", err)
	}
}
