package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Normalised payment statuses exposed to the mobile client. Raw statut
// values in the database are free text; see NormalizedStatus.
const (
	PaymentStatusPaid      = "paid"
	PaymentStatusPending   = "pending"
	PaymentStatusCancelled = "cancelled"
)

// Payment is a recorded payment by a student. It may be linked to a
// specific enrollment, to a formation only, or to neither.
type Payment struct {
	ID           int64           `db:"id" json:"id"`
	StudentID    int64           `db:"etudiant_id" json:"etudiant_id"`
	EnrollmentID *int64          `db:"inscription_id" json:"inscription_id,omitempty"`
	FormationID  *int64          `db:"formation_id" json:"formation_id,omitempty"`
	Amount       decimal.Decimal `db:"montant" json:"montant"`
	Reference    string          `db:"reference" json:"reference"`
	PaidAt       *time.Time      `db:"date_paiement" json:"date_paiement,omitempty"`
	Mode         string          `db:"mode_paiement" json:"mode_paiement"`
	RawStatus    string          `db:"statut" json:"statut"`
	Remarks      string          `db:"remarques" json:"remarques"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// PaymentDetail adds the formation name resolved through either the direct
// formation link or the enrollment's formation.
type PaymentDetail struct {
	Payment
	FormationName string `db:"formation_nom" json:"formation_nom"`
}

// DisplayReference returns the stored reference, or a generated one when
// the legacy row has none.
func (p *Payment) DisplayReference() string {
	if p.Reference != "" {
		return p.Reference
	}
	return fmt.Sprintf("PAY%06d", p.ID)
}

// NormalizedStatus folds free-text statut values into the three statuses
// the client understands. Anything unrecognised counts as paid, matching
// the historical behaviour.
func (p *Payment) NormalizedStatus() string {
	lower := strings.ToLower(p.RawStatus)
	switch {
	case strings.Contains(lower, PaymentStatusPending):
		return PaymentStatusPending
	case strings.Contains(lower, PaymentStatusCancelled):
		return PaymentStatusCancelled
	default:
		return PaymentStatusPaid
	}
}
