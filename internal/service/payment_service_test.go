package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoleplus/mobile-api/internal/models"
	appErrors "github.com/ecoleplus/mobile-api/pkg/errors"
)

func TestPaymentHistory(t *testing.T) {
	students := &stubStudentRepo{byID: map[int64]*models.StudentContext{42: sampleStudent(42)}}
	enrollments := &stubEnrollments{list: []models.EnrollmentDetail{
		enrollment(1, 10, nullDec("100000"), "120000", datePtr("2025-01-10")),
	}}

	enrollmentID := int64(1)
	paidAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	payments := &stubPayments{list: []models.PaymentDetail{
		{
			Payment: models.Payment{
				ID:           5,
				EnrollmentID: &enrollmentID,
				Amount:       dec("60000"),
				PaidAt:       &paidAt,
				RawStatus:    "Pending validation",
			},
			FormationName: "Développement Web",
		},
		{
			Payment: models.Payment{
				ID:     6,
				Amount: dec("10000"),
			},
			FormationName: "",
		},
	}}

	svc := NewPaymentService(students, enrollments, payments, nil)

	resp, err := svc.History(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Total)
	first := resp.Payments[0]
	assert.Equal(t, "PAY000005", first.Reference)
	assert.Equal(t, models.PaymentStatusPending, first.Status)
	assert.Equal(t, "Espèces", resp.Payments[1].Mode)
	require.NotNil(t, first.PaymentDate)
	assert.Equal(t, "2025-06-01", *first.PaymentDate)

	// Override 100000 is the effective due; both payments count globally.
	assert.InDelta(t, 100000, resp.Summary.TotalDue, 0.01)
	assert.InDelta(t, 70000, resp.Summary.TotalPaid, 0.01)
	assert.InDelta(t, 30000, resp.Summary.Remaining, 0.01)
	assert.InDelta(t, 70.0, resp.Summary.PaymentProgress, 0.01)
	// Only the directly linked 60000 is attributed to the enrollment.
	assert.Equal(t, 1, resp.Summary.OverduePayments)
}

func TestPaymentHistoryUnknownStudent(t *testing.T) {
	svc := NewPaymentService(&stubStudentRepo{}, &stubEnrollments{}, &stubPayments{}, nil)

	_, err := svc.History(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
