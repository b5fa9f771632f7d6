package service

import (
	"github.com/shopspring/decimal"

	"github.com/ecoleplus/mobile-api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// BalanceSummary aggregates a student's financial position across all
// enrollments. Wire names are fixed by the mobile client contract.
type BalanceSummary struct {
	TotalDue        decimal.Decimal `json:"total_due"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	Remaining       decimal.Decimal `json:"remaining"`
	PaymentProgress decimal.Decimal `json:"payment_progress"`
}

// EnrollmentBalance is the per-enrollment slice of the student balance.
type EnrollmentBalance struct {
	EnrollmentID    int64
	FormationID     int64
	Due             decimal.Decimal
	Paid            decimal.Decimal
	Remaining       decimal.Decimal
	PaymentProgress decimal.Decimal
}

// EffectivePrice resolves what an enrollment actually costs: the enrollment
// price override when present and non-zero, otherwise the formation list
// price, otherwise zero. Every balance figure in the API derives from this
// single resolution.
func EffectivePrice(e models.EnrollmentDetail) decimal.Decimal {
	if e.PriceOverride.Valid && !e.PriceOverride.Decimal.IsZero() {
		return e.PriceOverride.Decimal
	}
	return e.FormationListPrice
}

// ComputeBalance computes the global balance. Every payment amount counts
// toward the paid total; the statut column is a display label and never a
// filter. A student owing nothing reports full payment progress.
func ComputeBalance(enrollments []models.EnrollmentDetail, payments []models.Payment) BalanceSummary {
	totalDue := decimal.Zero
	for _, e := range enrollments {
		totalDue = totalDue.Add(EffectivePrice(e))
	}

	totalPaid := decimal.Zero
	for i := range payments {
		totalPaid = totalPaid.Add(payments[i].Amount)
	}

	remaining := totalDue.Sub(totalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	progress := hundred
	if totalDue.IsPositive() {
		progress = totalPaid.Div(totalDue).Mul(hundred)
		if progress.GreaterThan(hundred) {
			progress = hundred
		}
	}

	return BalanceSummary{
		TotalDue:        totalDue,
		TotalPaid:       totalPaid,
		Remaining:       remaining,
		PaymentProgress: progress,
	}
}

// EnrollmentBreakdown attributes payments to enrollments and returns the
// per-enrollment balances in the input order.
//
// Attribution rules: a payment directly linked to an enrollment always
// counts toward that enrollment. A payment linked only to a formation
// counts toward the earliest enrollment in that formation (enrollment date,
// then ID as tiebreak) and no other, so an amount is never counted twice.
// Unlinked payments contribute to the global total only.
func EnrollmentBreakdown(enrollments []models.EnrollmentDetail, payments []models.Payment) []EnrollmentBalance {
	byID := make(map[int64]int, len(enrollments))
	for i, e := range enrollments {
		byID[e.ID] = i
	}

	// Earliest enrollment per formation receives formation-linked payments.
	earliest := make(map[int64]int64)
	for _, e := range enrollments {
		current, ok := earliest[e.FormationID]
		if !ok || enrollsBefore(e, enrollments[byID[current]]) {
			earliest[e.FormationID] = e.ID
		}
	}

	paid := make([]decimal.Decimal, len(enrollments))
	for i := range paid {
		paid[i] = decimal.Zero
	}

	for i := range payments {
		p := &payments[i]
		switch {
		case p.EnrollmentID != nil:
			if idx, ok := byID[*p.EnrollmentID]; ok {
				paid[idx] = paid[idx].Add(p.Amount)
			}
		case p.FormationID != nil:
			if target, ok := earliest[*p.FormationID]; ok {
				idx := byID[target]
				paid[idx] = paid[idx].Add(p.Amount)
			}
		}
	}

	result := make([]EnrollmentBalance, len(enrollments))
	for i, e := range enrollments {
		due := EffectivePrice(e)
		remaining := due.Sub(paid[i])
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		progress := hundred
		if due.IsPositive() {
			progress = paid[i].Div(due).Mul(hundred)
			if progress.GreaterThan(hundred) {
				progress = hundred
			}
		}
		result[i] = EnrollmentBalance{
			EnrollmentID:    e.ID,
			FormationID:     e.FormationID,
			Due:             due,
			Paid:            paid[i],
			Remaining:       remaining,
			PaymentProgress: progress,
		}
	}
	return result
}

// Overdue counts enrollments whose attributed payments do not cover their
// effective price.
func Overdue(breakdown []EnrollmentBalance) int {
	count := 0
	for _, b := range breakdown {
		if b.Paid.LessThan(b.Due) {
			count++
		}
	}
	return count
}

// enrollsBefore reports whether a predates b: earlier enrollment date wins,
// a nil date sorts last, equal dates fall back to the smaller ID.
func enrollsBefore(a, b models.EnrollmentDetail) bool {
	switch {
	case a.EnrolledAt == nil && b.EnrolledAt == nil:
		return a.ID < b.ID
	case a.EnrolledAt == nil:
		return false
	case b.EnrolledAt == nil:
		return true
	case a.EnrolledAt.Equal(*b.EnrolledAt):
		return a.ID < b.ID
	default:
		return a.EnrolledAt.Before(*b.EnrolledAt)
	}
}

// RoundMoney renders a decimal with two fraction digits for the wire.
func RoundMoney(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// RoundProgress renders a progress percentage with one fraction digit.
func RoundProgress(d decimal.Decimal) float64 {
	f, _ := d.Round(1).Float64()
	return f
}
