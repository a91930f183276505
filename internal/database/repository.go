package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go-linkedin-sweeper/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

type Repository struct {
	db   *sql.DB
	pool *pgxpool.Pool
}

// NewRepository wraps an already opened database. Used by tests with sqlmock.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.ConnConfig.RuntimeParams["application_name"] = "linkedin-sweeper"

	// Supabase's pooler (PgBouncer, transaction mode) does not support prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: stdlib.OpenDBFromPool(pool), pool: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		_ = r.db.Close()
	}
	if r.pool != nil {
		r.pool.Close()
	}
}

// Migrate creates the tables the tools need if they are missing.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS dismissed_jobs (
		job_id       TEXT PRIMARY KEY,
		title        TEXT NOT NULL DEFAULT '',
		company      TEXT NOT NULL DEFAULT '',
		location     TEXT NOT NULL DEFAULT '',
		reason       TEXT NOT NULL DEFAULT '',
		dismissed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS geo_candidates (
		pp_id             BIGSERIAL PRIMARY KEY,
		pp_name           TEXT,
		pp_corrected_name TEXT
	)`,
}

// placeholders returns "$from, $from+1, ..." for n arguments.
func placeholders(from, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", from+i)
	}
	return b.String()
}

// ---------------- DISMISSED JOBS ----------------

// GetDismissedJobIDs returns the subset of jobIDs already recorded as dismissed.
func (r *Repository) GetDismissedJobIDs(ctx context.Context, jobIDs []string) (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	if len(jobIDs) == 0 {
		return seen, nil
	}

	args := make([]any, len(jobIDs))
	for i, id := range jobIDs {
		args[i] = id
	}
	query := "SELECT job_id FROM dismissed_jobs WHERE job_id IN (" + placeholders(1, len(jobIDs)) + ")"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dismissed jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan dismissed job id: %w", err)
		}
		seen[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dismissed jobs: %w", err)
	}
	return seen, nil
}

// BatchSaveDismissedJobs upserts the well-formed records in a single statement
// and returns how many were written. Repeated job ids keep the first record.
func (r *Repository) BatchSaveDismissedJobs(ctx context.Context, records []*models.DismissedJob) (int, error) {
	valid := models.WellFormedDismissed(records)

	seen := make(map[string]bool, len(valid))
	unique := valid[:0:0]
	for _, rec := range valid {
		if seen[rec.JobID] {
			continue
		}
		seen[rec.JobID] = true
		unique = append(unique, rec)
	}
	if len(unique) == 0 {
		return 0, nil
	}

	const cols = 6
	values := make([]string, len(unique))
	args := make([]any, 0, len(unique)*cols)
	for i, rec := range unique {
		values[i] = "(" + placeholders(i*cols+1, cols) + ")"
		at := rec.DismissedAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		args = append(args, rec.JobID, rec.Title, rec.Company, rec.Location, string(rec.Reason), at)
	}

	query := `INSERT INTO dismissed_jobs (job_id, title, company, location, reason, dismissed_at)
		VALUES ` + strings.Join(values, ", ") + `
		ON CONFLICT (job_id)
		DO UPDATE SET title = EXCLUDED.title, company = EXCLUDED.company, location = EXCLUDED.location,
			reason = EXCLUDED.reason, dismissed_at = EXCLUDED.dismissed_at`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to save dismissed jobs: %w", err)
	}
	return len(unique), nil
}

// GetJobsMatching finds dismissed jobs by ILIKE patterns (callers add the % wildcards).
func (r *Repository) GetJobsMatching(ctx context.Context, titlePattern, companyPattern string) ([]models.StoredJob, error) {
	query := `SELECT job_id, title, company FROM dismissed_jobs
		WHERE title ILIKE $1 AND company ILIKE $2
		ORDER BY dismissed_at`

	rows, err := r.db.QueryContext(ctx, query, titlePattern, companyPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.StoredJob
	for rows.Next() {
		var j models.StoredJob
		if err := rows.Scan(&j.JobID, &j.Title, &j.Company); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs: %w", err)
	}
	return jobs, nil
}

// ---------------- GEO CANDIDATES ----------------

func (r *Repository) GetAllGeoCandidates(ctx context.Context) ([]models.GeoCandidate, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT pp_id, COALESCE(pp_name, ''), pp_corrected_name FROM geo_candidates ORDER BY pp_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query geo candidates: %w", err)
	}
	defer rows.Close()

	var out []models.GeoCandidate
	for rows.Next() {
		var c models.GeoCandidate
		var corrected sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &corrected); err != nil {
			return nil, fmt.Errorf("failed to scan geo candidate: %w", err)
		}
		if corrected.Valid {
			c.CorrectedName = &corrected.String
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read geo candidates: %w", err)
	}
	return out, nil
}

func (r *Repository) UpdateGeoCandidate(ctx context.Context, id int64, correctedName string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE geo_candidates SET pp_corrected_name = $1 WHERE pp_id = $2", correctedName, id)
	if err != nil {
		return fmt.Errorf("failed to update geo candidate %d: %w", id, err)
	}
	return nil
}

func (r *Repository) DeleteGeoCandidate(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM geo_candidates WHERE pp_id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete geo candidate %d: %w", id, err)
	}
	return nil
}
