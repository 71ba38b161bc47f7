package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"scraperd/internal/domain"
	"scraperd/internal/normalize"
	"scraperd/internal/ports"
)

// ErrEmptyQuery rejects a search before any locator is built.
var ErrEmptyQuery = errors.New("query is required")

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Extractor  ports.Extractor
	Store      ports.RecordStore
	Jobs       ports.JobTracker
	Dispatcher *Dispatcher
	Profile    domain.Profile
	Logger     *slog.Logger
}

// Pipeline composes extract, normalize and persist for one search request.
// It accepts every valid request immediately; candidate-level outcomes go
// to the log and the job table, never back to the caller.
type Pipeline struct {
	extractor  ports.Extractor
	store      ports.RecordStore
	jobs       ports.JobTracker
	dispatcher *Dispatcher
	profile    domain.Profile
	policy     normalize.Policy
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		extractor:  deps.Extractor,
		store:      deps.Store,
		jobs:       deps.Jobs,
		dispatcher: deps.Dispatcher,
		profile:    deps.Profile,
		policy:     normalize.Policy{DescriptionFromTitle: deps.Profile.DescriptionFromTitle},
		logger:     deps.Logger,
	}
}

// HandleSearch validates the query, builds the locator and runs the scrape
// either inline or detached, depending on the profile. The returned job id
// is informational; acceptance never depends on downstream outcome.
func (p *Pipeline) HandleSearch(ctx context.Context, query string) (int64, error) {
	if strings.TrimSpace(query) == "" {
		return 0, ErrEmptyQuery
	}

	locator := p.profile.BuildLocator(query)
	jobID := p.acceptJob(ctx, query)

	if p.profile.Background {
		enqueued := p.dispatcher.Enqueue(func(taskCtx context.Context) {
			p.run(taskCtx, locator, jobID)
		})
		if !enqueued {
			p.logger.Warn("dispatch queue full, scrape dropped", "job_id", jobID)
			p.completeJob(ctx, jobID, domain.JobFailed, "dispatch queue full")
		}
		return jobID, nil
	}

	p.run(ctx, locator, jobID)
	return jobID, nil
}

// run walks one request through extracting, normalizing and persisting.
// Nothing it encounters propagates past the pipeline; failures are logged
// where they happen and summarized on the job row.
func (p *Pipeline) run(ctx context.Context, locator string, jobID int64) {
	log := p.logger.With("locator", locator, "job_id", jobID)

	candidates, err := p.extractor.Extract(ctx, locator)
	if err != nil {
		log.Error("extraction failed", "error", err)
		p.completeJob(ctx, jobID, domain.JobFailed, err.Error())
		return
	}

	var stored, conflicts, rejected, failed int
	for _, cand := range candidates {
		record, err := normalize.Normalize(cand, p.profile.Variant, p.policy)
		if err != nil {
			rejected++
			log.Warn("candidate rejected", "error", err)
			continue
		}

		err = p.store.Persist(ctx, record, p.profile.Variant)
		switch {
		case err == nil:
			stored++
		case errors.Is(err, ports.ErrConflict):
			conflicts++
			log.Info("duplicate record skipped", "error", err)
		default:
			failed++
			log.Error("persist failed", "error", err)
		}
	}

	log.Info("scrape finished",
		"candidates", len(candidates), "stored", stored,
		"conflicts", conflicts, "rejected", rejected, "failed", failed)

	detail := fmt.Sprintf("candidates=%d stored=%d conflicts=%d rejected=%d failed=%d",
		len(candidates), stored, conflicts, rejected, failed)
	p.completeJob(ctx, jobID, domain.JobSucceeded, detail)
}

// acceptJob records the request; tracking is best effort and a tracker
// failure never blocks acceptance.
func (p *Pipeline) acceptJob(ctx context.Context, query string) int64 {
	if p.jobs == nil {
		return 0
	}
	id, err := p.jobs.CreateJob(ctx, query, p.profile.Name)
	if err != nil {
		p.logger.Warn("job tracking unavailable", "error", err)
		return 0
	}
	return id
}

func (p *Pipeline) completeJob(ctx context.Context, jobID int64, status domain.JobStatus, detail string) {
	if p.jobs == nil || jobID == 0 {
		return
	}
	if err := p.jobs.CompleteJob(ctx, jobID, status, detail); err != nil {
		p.logger.Warn("job completion not recorded", "job_id", jobID, "error", err)
	}
}
