package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/internal/models"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
	"github.com/ecoleplus/mobile-api/pkg/export"
	"github.com/ecoleplus/mobile-api/pkg/jobs"
)

type statementStore interface {
	Create(ctx context.Context, job *models.StatementJob) error
	FindByID(ctx context.Context, id string) (*models.StatementJob, error)
	UpdateProgress(ctx context.Context, id string, status models.StatementStatus, progress int) error
	MarkFinished(ctx context.Context, id, filePath, resultURL string) error
	MarkFailed(ctx context.Context, id, message string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type statementStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string) (jobID, relPath string, expiresAt time.Time, err error)
}

// StatementService manages the payment-statement export lifecycle:
// request, background rendering, status lookup and signed download.
type StatementService struct {
	repo     statementStore
	payments *PaymentService
	queue    jobDispatcher
	storage  statementStorage
	signer   downloadSigner
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger

	downloadPrefix  string
	resultTTL       time.Duration
	cleanupInterval time.Duration
}

// StatementServiceConfig bundles the construction options.
type StatementServiceConfig struct {
	DownloadPrefix  string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// StatementDownload is the resolved file for a validated token.
type StatementDownload struct {
	File      *os.File
	Filename  string
	Format    models.StatementFormat
	ExpiresAt time.Time
}

// NewStatementService constructs the statement service.
func NewStatementService(repo statementStore, payments *PaymentService, queue jobDispatcher, storage statementStorage, signer downloadSigner, logger *zap.Logger, cfg StatementServiceConfig) *StatementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.DownloadPrefix == "" {
		cfg.DownloadPrefix = "/api/mobile/v2/export"
	}
	return &StatementService{
		repo:            repo,
		payments:        payments,
		queue:           queue,
		storage:         storage,
		signer:          signer,
		csv:             export.NewCSVExporter(),
		pdf:             export.NewPDFExporter(),
		logger:          logger,
		downloadPrefix:  strings.TrimRight(cfg.DownloadPrefix, "/"),
		resultTTL:       cfg.ResultTTL,
		cleanupInterval: cfg.CleanupInterval,
	}
}

// SetQueue attaches the dispatcher after construction. The queue's
// handler is this service's Process method, so the two cannot be built
// in one step.
func (s *StatementService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// Request persists a new export job and enqueues it.
func (s *StatementService) Request(ctx context.Context, studentID int64, format models.StatementFormat) (*dto.StatementJobPayload, error) {
	if format != models.StatementFormatCSV && format != models.StatementFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "statement exports not available")
	}

	job := &models.StatementJob{StudentID: studentID, Format: format}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create statement job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "statement"}); err != nil {
		if markErr := s.repo.MarkFailed(ctx, job.ID, "failed to enqueue job"); markErr != nil {
			s.logger.Warn("failed to mark statement job failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue statement job")
	}

	return statementPayload(job), nil
}

// Status returns the job metadata for polling clients.
func (s *StatementService) Status(ctx context.Context, id string) (*dto.StatementJobPayload, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "statement job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load statement job")
	}
	return statementPayload(job), nil
}

// Process renders one queued job. It is the queue handler.
func (s *StatementService) Process(ctx context.Context, job jobs.Job) error {
	record, err := s.repo.FindByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load statement job %s: %w", job.ID, err)
	}

	if err := s.repo.UpdateProgress(ctx, record.ID, models.StatementStatusProcessing, 10); err != nil {
		return err
	}

	history, err := s.payments.History(ctx, record.StudentID)
	if err != nil {
		return s.fail(ctx, record.ID, err)
	}

	table := statementTable(record.StudentID, history)

	var data []byte
	switch record.Format {
	case models.StatementFormatPDF:
		data, err = s.pdf.Render(table)
	default:
		data, err = s.csv.Render(table)
	}
	if err != nil {
		return s.fail(ctx, record.ID, err)
	}

	relPath := fmt.Sprintf("%d/%s.%s", record.StudentID, record.ID, record.Format)
	if _, err := s.storage.Save(relPath, data); err != nil {
		return s.fail(ctx, record.ID, err)
	}

	token, _, err := s.signer.Generate(record.ID, relPath)
	if err != nil {
		return s.fail(ctx, record.ID, err)
	}
	resultURL := s.downloadPrefix + "/" + token

	if err := s.repo.MarkFinished(ctx, record.ID, relPath, resultURL); err != nil {
		return err
	}
	s.logger.Info("statement rendered",
		zap.String("job_id", record.ID),
		zap.Int64("student_id", record.StudentID),
		zap.String("format", string(record.Format)))
	return nil
}

// ResolveDownload validates a token and opens the stored statement file.
func (s *StatementService) ResolveDownload(ctx context.Context, token string) (*StatementDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "statement job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load statement job")
	}
	if job.Status != models.StatementStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "statement not ready")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open statement file")
	}
	return &StatementDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired statement files.
func (s *StatementService) StartCleanup(ctx context.Context) {
	if s.cleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.storage.CleanupOlderThan(s.resultTTL)
				if err != nil {
					s.logger.Warn("statement cleanup failed", zap.Error(err))
					continue
				}
				if len(deleted) > 0 {
					s.logger.Info("expired statements removed", zap.Int("count", len(deleted)))
				}
			}
		}
	}()
}

func (s *StatementService) fail(ctx context.Context, jobID string, cause error) error {
	if err := s.repo.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		s.logger.Warn("failed to mark statement job failed", zap.String("job_id", jobID), zap.Error(err))
	}
	return cause
}

func statementTable(studentID int64, history *dto.PaymentHistoryResponse) export.Table {
	rows := make([][]string, 0, len(history.Payments))
	for _, p := range history.Payments {
		date := ""
		if p.PaymentDate != nil {
			date = *p.PaymentDate
		}
		rows = append(rows, []string{
			p.Reference,
			date,
			fmt.Sprintf("%.2f", p.Amount),
			p.Mode,
			p.Status,
			p.FormationName,
		})
	}
	return export.Table{
		Title:   fmt.Sprintf("Relevé de paiements - Étudiant %d", studentID),
		Columns: []string{"Référence", "Date", "Montant", "Mode", "Statut", "Formation"},
		Rows:    rows,
		Footer: []string{
			"Total",
			"",
			fmt.Sprintf("%.2f", history.Summary.TotalPaid),
			"",
			"",
			fmt.Sprintf("Reste: %.2f", history.Summary.Remaining),
		},
	}
}

func statementPayload(job *models.StatementJob) *dto.StatementJobPayload {
	payload := &dto.StatementJobPayload{
		ID:        job.ID,
		Format:    string(job.Format),
		Status:    string(job.Status),
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		payload.ErrorMessage = job.ErrorMessage
	}
	payload.FinishedAt = formatDateTime(job.FinishedAt)
	return payload
}
