// Package server is the thin HTTP boundary. It validates input, hands the
// query to the pipeline and always reports acceptance; no downstream
// failure ever surfaces through these endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"scraperd/internal/ports"
	"scraperd/internal/usecase"
)

const (
	acceptedMessage     = "Scraping started successfully!"
	invalidQueryMessage = "Invalid input. 'query' is required."
)

// SearchHandler is the slice of the pipeline the boundary invokes.
type SearchHandler interface {
	HandleSearch(ctx context.Context, query string) (int64, error)
}

// Server routes HTTP requests into the pipeline.
type Server struct {
	pipeline SearchHandler
	jobs     ports.JobTracker
	logger   *slog.Logger
}

// New wires the boundary.
func New(pipeline SearchHandler, jobs ports.JobTracker, logger *slog.Logger) *Server {
	return &Server{pipeline: pipeline, jobs: jobs, logger: logger}
}

// Routes registers the endpoint handlers.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("GET /jobs/{id}", s.handleJob)
	return mux
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query *string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Query == nil || strings.TrimSpace(*body.Query) == "" {
		s.logger.Warn("invalid search input")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": invalidQueryMessage})
		return
	}

	s.logger.Info("received search query", "query", *body.Query)

	jobID, err := s.pipeline.HandleSearch(r.Context(), *body.Query)
	if errors.Is(err, usecase.ErrEmptyQuery) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": invalidQueryMessage})
		return
	}

	resp := map[string]any{"message": acceptedMessage}
	if jobID > 0 {
		resp["job_id"] = jobID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid job id"})
		return
	}

	job, err := s.jobs.GetJob(r.Context(), id)
	if errors.Is(err, ports.ErrJobNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}
	if err != nil {
		s.logger.Error("job lookup failed", "job_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "job lookup failed"})
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
