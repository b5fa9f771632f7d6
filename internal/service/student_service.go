package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/internal/models"
	"github.com/ecoleplus/mobile-api/pkg/config"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.StudentContext, error)
	FindByEmail(ctx context.Context, email string) (*models.StudentContext, error)
	FindByPhone(ctx context.Context, phone string) (*models.StudentContext, error)
	UpdateProfile(ctx context.Context, id int64, update models.StudentUpdate) ([]string, error)
}

type auditRecorder interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// LoginRequest accepts either a numeric student ID or an email/phone
// identifier. Both fields absent is a validation error.
type LoginRequest struct {
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
}

// ProfileUpdateRequest carries the whitelisted profile fields. Pointers
// distinguish "absent" from "set to empty".
type ProfileUpdateRequest struct {
	StudentID             string  `json:"student_id" validate:"required"`
	Telephone             *string `json:"telephone"`
	Mobile                *string `json:"mobile"`
	Email                 *string `json:"email" validate:"omitempty,email"`
	Address               *string `json:"adresse"`
	EducationLevel        *string `json:"niveau_etude"`
	ProfessionalSituation *string `json:"situation_professionnelle"`
	NIN                   *string `json:"nin"`
	BirthPlace            *string `json:"lieu_naissance"`
	Nationality           *string `json:"nationalite"`
	BirthDate             *string `json:"date_naissance"`
}

// StudentService handles login, profile reads and profile updates.
type StudentService struct {
	repo      studentRepository
	audit     auditRecorder
	cache     *CacheService
	media     config.MediaConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, audit auditRecorder, cache *CacheService, media config.MediaConfig, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, audit: audit, cache: cache, media: media, validator: validate, logger: logger}
}

// Login resolves the student by ID first, then email, then phone number.
func (s *StudentService) Login(ctx context.Context, req LoginRequest) (*dto.StudentPayload, error) {
	identifier := strings.TrimSpace(req.StudentID)
	email := strings.TrimSpace(req.Email)
	if identifier == "" && email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id ou email requis")
	}

	var student *models.StudentContext

	if identifier != "" {
		if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
			found, err := s.repo.FindByID(ctx, id)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
			}
			student = found
		}
	}

	lookupEmail := email
	if lookupEmail == "" && identifier != "" {
		lookupEmail = identifier
	}
	if student == nil && lookupEmail != "" {
		found, err := s.repo.FindByEmail(ctx, lookupEmail)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		student = found
	}

	if student == nil && identifier != "" {
		found, err := s.repo.FindByPhone(ctx, identifier)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		student = found
	}

	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Étudiant non trouvé")
	}

	s.recordAudit(ctx, student.ID, models.AuditActionLogin, "student", nil)

	return s.buildPayload(student), nil
}

// Profile returns the full student payload by ID.
func (s *StudentService) Profile(ctx context.Context, studentID int64) (*dto.StudentPayload, error) {
	student, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Étudiant non trouvé")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.buildPayload(student), nil
}

// UpdateProfile overwrites the whitelisted fields. An unparseable
// date_naissance is dropped without failing the request, matching the
// behaviour the mobile client has always relied on.
func (s *StudentService) UpdateProfile(ctx context.Context, req ProfileUpdateRequest) (*dto.ProfileUpdateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	studentID, err := strconv.ParseInt(strings.TrimSpace(req.StudentID), 10, 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id requis")
	}

	if _, err := s.repo.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Étudiant non trouvé")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	update := models.StudentUpdate{
		Telephone:             req.Telephone,
		Mobile:                req.Mobile,
		Email:                 req.Email,
		Address:               req.Address,
		EducationLevel:        req.EducationLevel,
		ProfessionalSituation: req.ProfessionalSituation,
		NIN:                   req.NIN,
		BirthPlace:            req.BirthPlace,
		Nationality:           req.Nationality,
	}

	if req.BirthDate != nil {
		if parsed, err := time.Parse("2006-01-02", *req.BirthDate); err == nil {
			update.BirthDate = &parsed
		} else {
			s.logger.Debug("discarding unparseable date_naissance",
				zap.Int64("student_id", studentID), zap.String("value", *req.BirthDate))
		}
	}

	updated, err := s.repo.UpdateProfile(ctx, studentID, update)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	if updated == nil {
		updated = []string{}
	}

	if len(updated) > 0 {
		s.recordAudit(ctx, studentID, models.AuditActionProfileUpdate, "student", updated)
		if s.cache != nil {
			_ = s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:student:%d", studentID))
		}
	}

	return &dto.ProfileUpdateResponse{
		Message:       "Profil mis à jour avec succès",
		UpdatedFields: updated,
	}, nil
}

func (s *StudentService) buildPayload(student *models.StudentContext) *dto.StudentPayload {
	payload := &dto.StudentPayload{
		ID:                    strconv.FormatInt(student.ID, 10),
		LastName:              student.LastName,
		FirstName:             student.FirstName,
		Email:                 student.Email,
		Telephone:             student.Telephone,
		Mobile:                student.Mobile,
		Photo:                 ResolveMediaURL(s.media, student.Photo),
		Status:                student.Status,
		BirthPlace:            student.BirthPlace,
		Nationality:           student.Nationality,
		Address:               student.Address,
		EducationLevel:        student.EducationLevel,
		ProfessionalSituation: student.ProfessionalSituation,
		NIN:                   student.NIN,
		EnrollmentCount:       student.EnrollmentCount,
	}
	if payload.Status == "" {
		payload.Status = "actif"
	}
	if student.FormationName != nil {
		payload.FormationName = *student.FormationName
	}
	if student.GroupName != nil {
		payload.GroupName = *student.GroupName
	}
	payload.BirthDate = formatDate(student.BirthDate)
	payload.RegisteredAt = formatDate(student.RegisteredAt)
	return payload
}

func (s *StudentService) recordAudit(ctx context.Context, studentID int64, action, resource string, fields []string) {
	if s.audit == nil {
		return
	}
	var values []byte
	if len(fields) > 0 {
		values, _ = json.Marshal(map[string][]string{"fields": fields})
	}
	log := &models.AuditLog{
		StudentID: &studentID,
		Action:    action,
		Resource:  resource,
		NewValues: values,
	}
	if err := s.audit.Create(ctx, log); err != nil {
		s.logger.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

// ResolveMediaURL turns a stored photo reference into a public URL. Already
// absolute references pass through untouched.
func ResolveMediaURL(media config.MediaConfig, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if media.BaseURL == "" {
		return ref
	}
	return media.BaseURL + "/" + strings.TrimLeft(ref, "/")
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func formatDateTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
