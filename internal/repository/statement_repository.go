package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecoleplus/mobile-api/internal/models"
)

// StatementRepository persists statement export jobs.
type StatementRepository struct {
	db *sqlx.DB
}

// NewStatementRepository constructs a StatementRepository.
func NewStatementRepository(db *sqlx.DB) *StatementRepository {
	return &StatementRepository{db: db}
}

// Create inserts a new job row.
func (r *StatementRepository) Create(ctx context.Context, job *models.StatementJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.StatementStatusQueued
	}
	const query = `INSERT INTO statement_jobs (id, etudiant_id, format, status, progress, created_at)
        VALUES (:id, :etudiant_id, :format, :status, :progress, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create statement job: %w", err)
	}
	return nil
}

// FindByID fetches a job row.
func (r *StatementRepository) FindByID(ctx context.Context, id string) (*models.StatementJob, error) {
	const query = `SELECT id, etudiant_id, format, status, progress, file_path, result_url,
        error_message, created_at, finished_at
        FROM statement_jobs WHERE id = $1`
	var job models.StatementJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateProgress moves a job into a new status with a progress value.
func (r *StatementRepository) UpdateProgress(ctx context.Context, id string, status models.StatementStatus, progress int) error {
	const query = `UPDATE statement_jobs SET status = $2, progress = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, progress); err != nil {
		return fmt.Errorf("update statement job progress: %w", err)
	}
	return nil
}

// MarkFinished records a successful export with its file path and signed URL.
func (r *StatementRepository) MarkFinished(ctx context.Context, id, filePath, resultURL string) error {
	const query = `UPDATE statement_jobs SET status = $2, progress = 100, file_path = $3,
        result_url = $4, finished_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.StatementStatusFinished, filePath, resultURL, time.Now().UTC()); err != nil {
		return fmt.Errorf("finish statement job: %w", err)
	}
	return nil
}

// MarkFailed records a terminal failure with its message.
func (r *StatementRepository) MarkFailed(ctx context.Context, id, message string) error {
	const query = `UPDATE statement_jobs SET status = $2, error_message = $3, finished_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.StatementStatusFailed, message, time.Now().UTC()); err != nil {
		return fmt.Errorf("fail statement job: %w", err)
	}
	return nil
}
