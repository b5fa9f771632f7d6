package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/internal/models"
	"github.com/ecoleplus/mobile-api/pkg/config"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

type instructorReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
	ActiveInstructor(ctx context.Context, formationID int64) (*models.Instructor, error)
}

// FormationService lists a student's formations with payment and progress
// data attached.
type FormationService struct {
	students    studentFinder
	enrollments instructorReader
	payments    paymentReader
	media       config.MediaConfig
	logger      *zap.Logger
}

// NewFormationService constructs the formation service.
func NewFormationService(students studentFinder, enrollments instructorReader, payments paymentReader, media config.MediaConfig, logger *zap.Logger) *FormationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormationService{students: students, enrollments: enrollments, payments: payments, media: media, logger: logger}
}

// List returns the student's enrolled formations, most recent first.
func (s *FormationService) List(ctx context.Context, studentID int64) ([]dto.FormationPayload, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Étudiant non trouvé")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	paymentDetails, err := s.payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}

	breakdown := EnrollmentBreakdown(enrollments, rawPayments(paymentDetails))
	instructors := s.resolveInstructors(ctx, enrollments)

	list := make([]dto.FormationPayload, 0, len(enrollments))
	for i, e := range enrollments {
		b := breakdown[i]
		status := e.Status
		if status == "" {
			status = "actif"
		}
		list = append(list, dto.FormationPayload{
			ID:              e.FormationID,
			Name:            e.FormationName,
			Description:     e.FormationDescription,
			Photo:           ResolveMediaURL(s.media, e.FormationPhoto),
			Category:        e.FormationCategory,
			Level:           e.FormationLevel,
			Duration:        e.FormationDuration,
			Price:           RoundMoney(b.Due),
			Paid:            RoundMoney(b.Paid),
			Remaining:       RoundMoney(b.Remaining),
			PaymentProgress: RoundProgress(b.PaymentProgress),
			ProgressPercent: e.ProgressPercent,
			Group:           e.GroupName,
			Session:         e.Session,
			EnrolledAt:      formatDate(e.EnrolledAt),
			Status:          status,
			Instructor:      instructors[e.FormationID],
			ModuleCount:     e.ModuleCount,
		})
	}
	return list, nil
}

// resolveInstructors looks up the active teacher once per distinct
// formation. A missing instructor is not an error.
func (s *FormationService) resolveInstructors(ctx context.Context, enrollments []models.EnrollmentDetail) map[int64]*dto.InstructorPayload {
	result := make(map[int64]*dto.InstructorPayload)
	for _, e := range enrollments {
		if _, done := result[e.FormationID]; done {
			continue
		}
		instructor, err := s.enrollments.ActiveInstructor(ctx, e.FormationID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("instructor lookup failed",
					zap.Int64("formation_id", e.FormationID), zap.Error(err))
			}
			result[e.FormationID] = nil
			continue
		}
		result[e.FormationID] = &dto.InstructorPayload{
			Name:      fmt.Sprintf("%s %s", instructor.FirstName, instructor.LastName),
			Photo:     ResolveMediaURL(s.media, instructor.Photo),
			Specialty: instructor.Specialty,
		}
	}
	return result
}
