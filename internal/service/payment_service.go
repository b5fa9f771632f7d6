package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/ecoleplus/mobile-api/internal/dto"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

// PaymentService builds the payment history response.
type PaymentService struct {
	students    studentFinder
	enrollments enrollmentReader
	payments    paymentReader
	logger      *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(students studentFinder, enrollments enrollmentReader, payments paymentReader, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{students: students, enrollments: enrollments, payments: payments, logger: logger}
}

// History returns the student's payments with the global balance summary.
func (s *PaymentService) History(ctx context.Context, studentID int64) (*dto.PaymentHistoryResponse, error) {
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

	payments := rawPayments(paymentDetails)
	summary := ComputeBalance(enrollments, payments)
	breakdown := EnrollmentBreakdown(enrollments, payments)

	list := make([]dto.PaymentPayload, 0, len(paymentDetails))
	for i := range paymentDetails {
		p := &paymentDetails[i]
		date := formatDate(p.PaidAt)
		mode := p.Mode
		if mode == "" {
			mode = "Espèces"
		}
		list = append(list, dto.PaymentPayload{
			ID:            p.ID,
			Reference:     p.DisplayReference(),
			Amount:        RoundMoney(p.Amount),
			PaymentDate:   date,
			PaidDate:      date,
			DueDate:       date,
			Mode:          mode,
			Status:        p.NormalizedStatus(),
			FormationName: p.FormationName,
			Remarks:       p.Remarks,
			IsOverdue:     false,
			TotalAmount:   RoundMoney(p.Amount),
		})
	}

	return &dto.PaymentHistoryResponse{
		Summary: dto.PaymentSummary{
			TotalDue:        RoundMoney(summary.TotalDue),
			TotalPaid:       RoundMoney(summary.TotalPaid),
			Remaining:       RoundMoney(summary.Remaining),
			PaymentProgress: RoundProgress(summary.PaymentProgress),
			OverduePayments: Overdue(breakdown),
		},
		Payments: list,
		Total:    len(list),
	}, nil
}
