package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"scraperd/internal/domain"
	"scraperd/internal/ports"
)

// Postgres error class for unique constraint violations.
const uniqueViolationCode = "23505"

const jobsTableSQL = `CREATE TABLE IF NOT EXISTS scrape_jobs (
	id SERIAL PRIMARY KEY,
	query TEXT NOT NULL,
	profile TEXT NOT NULL,
	status TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres persists records and job statuses through one shared pool.
// Concurrent callers are safe; the url uniqueness constraint is the only
// cross-request coordination the pipeline relies on.
type Postgres struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.RecordStore = (*Postgres)(nil)
var _ ports.JobTracker = (*Postgres)(nil)

// New connects the pool and verifies the database is reachable.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger,
	}, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Bootstrap idempotently ensures the variant's destination table and the
// job table exist. Safe to call on every start and to race across
// processes; CREATE IF NOT EXISTS carries the whole guarantee.
func (p *Postgres) Bootstrap(ctx context.Context, variant domain.SchemaVariant) error {
	if _, err := p.pool.Exec(ctx, createTableSQL(variant)); err != nil {
		return fmt.Errorf("create table %s: %w", variant.Table, err)
	}
	if _, err := p.pool.Exec(ctx, jobsTableSQL); err != nil {
		return fmt.Errorf("create table scrape_jobs: %w", err)
	}
	p.logger.Info("schema ready", "table", variant.Table, "variant", variant.Name)
	return nil
}

func createTableSQL(variant domain.SchemaVariant) string {
	cols := []string{"id SERIAL PRIMARY KEY"}
	for _, f := range variant.Columns {
		col := string(f) + " TEXT"
		if f == domain.FieldURL && variant.UniqueURL {
			col += " UNIQUE"
		}
		cols = append(cols, col)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", variant.Table, strings.Join(cols, ",\n\t"))
}

// Persist appends a single record row. A duplicate url surfaces as
// ports.ErrConflict; every other failure is a wrapped store error. Neither
// ever terminates the calling pipeline.
func (p *Postgres) Persist(ctx context.Context, record domain.Record, variant domain.SchemaVariant) error {
	query, args, err := insertRecordSQL(p.builder, record, variant)
	if err != nil {
		return fmt.Errorf("build insert for %s: %w", variant.Table, err)
	}

	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("url %s: %w", stringOr(record.URL, ""), ports.ErrConflict)
		}
		return fmt.Errorf("insert into %s: %w", variant.Table, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func insertRecordSQL(builder sq.StatementBuilderType, record domain.Record, variant domain.SchemaVariant) (string, []any, error) {
	cols := make([]string, 0, len(variant.Columns))
	vals := make([]any, 0, len(variant.Columns))
	for _, f := range variant.Columns {
		cols = append(cols, string(f))
		vals = append(vals, record.Get(f))
	}
	return builder.Insert(variant.Table).Columns(cols...).Values(vals...).ToSql()
}

// CreateJob records an accepted search request.
func (p *Postgres) CreateJob(ctx context.Context, query, profile string) (int64, error) {
	sql, args, err := p.builder.
		Insert("scrape_jobs").
		Columns("query", "profile", "status").
		Values(query, profile, string(domain.JobAccepted)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build job insert: %w", err)
	}

	var id int64
	if err := p.pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

// CompleteJob stores the terminal status and summary of a job.
func (p *Postgres) CompleteJob(ctx context.Context, id int64, status domain.JobStatus, detail string) error {
	sql, args, err := p.builder.
		Update("scrape_jobs").
		Set("status", string(status)).
		Set("detail", detail).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build job update: %w", err)
	}

	if _, err := p.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update job %d: %w", id, err)
	}
	return nil
}

// GetJob loads one job row.
func (p *Postgres) GetJob(ctx context.Context, id int64) (domain.Job, error) {
	sql, args, err := p.builder.
		Select("id", "query", "profile", "status", "detail", "created_at", "updated_at").
		From("scrape_jobs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Job{}, fmt.Errorf("build job select: %w", err)
	}

	var job domain.Job
	var status string
	err = p.pool.QueryRow(ctx, sql, args...).Scan(
		&job.ID, &job.Query, &job.Profile, &status, &job.Detail, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, ports.ErrJobNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("select job %d: %w", id, err)
	}
	job.Status = domain.JobStatus(status)
	return job, nil
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
