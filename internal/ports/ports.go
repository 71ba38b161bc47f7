package ports

import (
	"context"
	"errors"

	"scraperd/internal/domain"
)

// ErrConflict marks a persist attempt whose url duplicates a stored row.
// The pipeline treats it as an already-seen item, never as a failure.
var ErrConflict = errors.New("record already stored")

// ErrJobNotFound is returned when a job id has no row.
var ErrJobNotFound = errors.New("job not found")

// Extractor turns a target locator into zero or more raw candidates.
// All three fetch strategies share this contract.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, locator string) ([]domain.Candidate, error)
}

// RecordStore persists normalized records into the variant's table.
type RecordStore interface {
	Bootstrap(ctx context.Context, variant domain.SchemaVariant) error
	Persist(ctx context.Context, record domain.Record, variant domain.SchemaVariant) error
}

// JobTracker records acceptance and completion of search requests.
type JobTracker interface {
	CreateJob(ctx context.Context, query, profile string) (int64, error)
	CompleteJob(ctx context.Context, id int64, status domain.JobStatus, detail string) error
	GetJob(ctx context.Context, id int64) (domain.Job, error)
}
