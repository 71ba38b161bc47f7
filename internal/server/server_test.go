package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scraperd/internal/domain"
	"scraperd/internal/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type stubPipeline struct {
	queries []string
	jobID   int64
	err     error
}

func (s *stubPipeline) HandleSearch(ctx context.Context, query string) (int64, error) {
	s.queries = append(s.queries, query)
	return s.jobID, s.err
}

type stubJobs struct {
	jobs map[int64]domain.Job
}

func (s *stubJobs) CreateJob(ctx context.Context, query, profile string) (int64, error) {
	return 0, nil
}

func (s *stubJobs) CompleteJob(ctx context.Context, id int64, status domain.JobStatus, detail string) error {
	return nil
}

func (s *stubJobs) GetJob(ctx context.Context, id int64) (domain.Job, error) {
	if job, ok := s.jobs[id]; ok {
		return job, nil
	}
	return domain.Job{}, ports.ErrJobNotFound
}

func postSearch(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestSearchAccepted(t *testing.T) {
	t.Parallel()

	pipeline := &stubPipeline{jobID: 7}
	srv := New(pipeline, &stubJobs{}, testLogger())

	rec := postSearch(t, srv, `{"query": "graph neural networks"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	payload := decodeBody(t, rec)
	if payload["message"] != "Scraping started successfully!" {
		t.Fatalf("message = %q", payload["message"])
	}
	if payload["job_id"] != float64(7) {
		t.Fatalf("job_id = %v", payload["job_id"])
	}
	if len(pipeline.queries) != 1 || pipeline.queries[0] != "graph neural networks" {
		t.Fatalf("pipeline received %v", pipeline.queries)
	}
}

func TestSearchAcceptedWithoutJobTracking(t *testing.T) {
	t.Parallel()

	srv := New(&stubPipeline{jobID: 0}, &stubJobs{}, testLogger())

	payload := decodeBody(t, postSearch(t, srv, `{"query": "q"}`))
	if _, ok := payload["job_id"]; ok {
		t.Fatal("job_id must be omitted when tracking produced no id")
	}
}

func TestSearchInvalidInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"missing query key", `{"q": "x"}`},
		{"null query", `{"query": null}`},
		{"empty query", `{"query": ""}`},
		{"whitespace query", `{"query": "   "}`},
		{"malformed json", `{"query": `},
		{"empty body", ``},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pipeline := &stubPipeline{}
			srv := New(pipeline, &stubJobs{}, testLogger())

			rec := postSearch(t, srv, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}

			payload := decodeBody(t, rec)
			if payload["error"] != "Invalid input. 'query' is required." {
				t.Fatalf("error = %q", payload["error"])
			}
			if len(pipeline.queries) != 0 {
				t.Fatal("invalid input must not reach the pipeline")
			}
		})
	}
}

func TestSearchMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := New(&stubPipeline{}, &stubJobs{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestJobLookup(t *testing.T) {
	t.Parallel()

	jobs := &stubJobs{jobs: map[int64]domain.Job{
		3: {ID: 3, Query: "q", Profile: "static", Status: domain.JobSucceeded},
	}}
	srv := New(&stubPipeline{}, jobs, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/jobs/3", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var job domain.Job
	if err := json.NewDecoder(rec.Body).Decode(&job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.ID != 3 || job.Status != domain.JobSucceeded {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestJobLookupFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		path string
		want int
	}{
		{"unknown id", "/jobs/99", http.StatusNotFound},
		{"non numeric id", "/jobs/abc", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := New(&stubPipeline{}, &stubJobs{}, testLogger())

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			srv.Routes().ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
