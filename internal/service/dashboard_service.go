package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/internal/models"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

type enrollmentReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
}

type paymentReader interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.PaymentDetail, error)
	RecentByStudent(ctx context.Context, studentID int64, limit int) ([]models.PaymentDetail, error)
}

type eventReader interface {
	Upcoming(ctx context.Context, formationIDs, groupIDs []int64, now time.Time, limit int) ([]models.CalendarEvent, error)
	Recent(ctx context.Context, formationIDs, groupIDs []int64, now time.Time, limit int) ([]models.CalendarEvent, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id int64) (*models.StudentContext, error)
}

// DashboardService aggregates the student home-screen payload.
type DashboardService struct {
	students    studentFinder
	enrollments enrollmentReader
	payments    paymentReader
	events      eventReader
	cache       *CacheService
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(students studentFinder, enrollments enrollmentReader, payments paymentReader, events eventReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:    students,
		enrollments: enrollments,
		payments:    payments,
		events:      events,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// Get builds the dashboard for a student. The second return value reports
// whether the payload came from cache.
func (s *DashboardService) Get(ctx context.Context, studentID int64) (*dto.DashboardResponse, bool, error) {
	key := fmt.Sprintf("dashboard:student:%d", studentID)

	var cached dto.DashboardResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "Étudiant non trouvé")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	paymentDetails, err := s.payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}
	payments := rawPayments(paymentDetails)

	summary := ComputeBalance(enrollments, payments)
	breakdown := EnrollmentBreakdown(enrollments, payments)

	avgProgress := 0.0
	if len(enrollments) > 0 {
		total := 0.0
		for _, e := range enrollments {
			total += e.ProgressPercent
		}
		avgProgress = total / float64(len(enrollments))
	}

	now := s.now()
	formationIDs, groupIDs := scopeIDs(enrollments)

	upcoming, err := s.events.Upcoming(ctx, formationIDs, groupIDs, now, 5)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events")
	}
	news, err := s.events.Recent(ctx, formationIDs, groupIDs, now, 5)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news")
	}
	recent, err := s.payments.RecentByStudent(ctx, studentID, 3)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent activity")
	}

	resp := &dto.DashboardResponse{
		Stats: dto.DashboardStats{
			TotalFormations: len(enrollments),
			AverageProgress: roundTo(avgProgress, 1),
			TotalPaid:       RoundMoney(summary.TotalPaid),
			TotalDue:        RoundMoney(summary.TotalDue),
			Remaining:       RoundMoney(summary.Remaining),
			PaymentProgress: RoundProgress(summary.PaymentProgress),
			UpcomingEvents:  len(upcoming),
			OverduePayments: Overdue(breakdown),
		},
		Events:         eventPayloads(upcoming),
		News:           newsPayloads(news),
		RecentActivity: activityEntries(recent),
	}

	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Int64("student_id", studentID), zap.Error(err))
	}

	return resp, false, nil
}

func rawPayments(details []models.PaymentDetail) []models.Payment {
	payments := make([]models.Payment, len(details))
	for i := range details {
		payments[i] = details[i].Payment
	}
	return payments
}

func scopeIDs(enrollments []models.EnrollmentDetail) (formationIDs, groupIDs []int64) {
	formationIDs = make([]int64, 0, len(enrollments))
	groupIDs = make([]int64, 0, len(enrollments))
	seenFormations := make(map[int64]struct{}, len(enrollments))
	seenGroups := make(map[int64]struct{}, len(enrollments))
	for _, e := range enrollments {
		if _, ok := seenFormations[e.FormationID]; !ok {
			seenFormations[e.FormationID] = struct{}{}
			formationIDs = append(formationIDs, e.FormationID)
		}
		if e.GroupID != nil {
			if _, ok := seenGroups[*e.GroupID]; !ok {
				seenGroups[*e.GroupID] = struct{}{}
				groupIDs = append(groupIDs, *e.GroupID)
			}
		}
	}
	return formationIDs, groupIDs
}

func eventPayloads(events []models.CalendarEvent) []dto.EventPayload {
	out := make([]dto.EventPayload, 0, len(events))
	for _, e := range events {
		out = append(out, dto.EventPayload{
			ID:             e.ID,
			Title:          e.Title,
			Description:    e.Description,
			StartDatetime:  formatDateTime(e.StartAt),
			EndDatetime:    formatDateTime(e.EndAt),
			IsOnline:       e.IsOnline,
			FormationName:  e.FormationName,
			InstructorName: e.InstructorName,
		})
	}
	return out
}

func newsPayloads(events []models.CalendarEvent) []dto.NewsPayload {
	out := make([]dto.NewsPayload, 0, len(events))
	for _, e := range events {
		out = append(out, dto.NewsPayload{
			ID:            e.ID,
			Title:         e.Title,
			Description:   e.Description,
			Date:          formatDateTime(e.StartAt),
			FormationName: e.FormationName,
		})
	}
	return out
}

func activityEntries(payments []models.PaymentDetail) []dto.ActivityEntry {
	out := make([]dto.ActivityEntry, 0, len(payments))
	for i := range payments {
		p := &payments[i]
		description := fmt.Sprintf("%s FCFA", p.Amount.Round(2).String())
		if p.FormationName != "" {
			description = fmt.Sprintf("%s - %s", description, p.FormationName)
		} else {
			description = fmt.Sprintf("%s - Frais de scolarité", description)
		}
		out = append(out, dto.ActivityEntry{
			Title:       "Paiement effectué",
			Description: description,
			Date:        formatDate(p.PaidAt),
			Type:        "payment",
		})
	}
	return out
}

func roundTo(v float64, digits int) float64 {
	factor := 1.0
	for i := 0; i < digits; i++ {
		factor *= 10
	}
	return float64(int64(v*factor+0.5)) / factor
}
