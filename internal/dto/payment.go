package dto

// PaymentPayload is one row of the payment history.
type PaymentPayload struct {
	ID            int64   `json:"id"`
	Reference     string  `json:"reference"`
	Amount        float64 `json:"amount"`
	PaymentDate   *string `json:"date_paiement"`
	PaidDate      *string `json:"paid_date"`
	DueDate       *string `json:"due_date"`
	Mode          string  `json:"mode_paiement"`
	Status        string  `json:"statut"`
	FormationName string  `json:"formation_nom"`
	Remarks       string  `json:"remarques"`
	IsOverdue     bool    `json:"is_overdue"`
	TotalAmount   float64 `json:"total_amount"`
}

// PaymentSummary is the balance block of the payment history response.
type PaymentSummary struct {
	TotalDue        float64 `json:"total_due"`
	TotalPaid       float64 `json:"total_paid"`
	Remaining       float64 `json:"remaining"`
	PaymentProgress float64 `json:"payment_progress"`
	OverduePayments int     `json:"overdue_payments"`
}

// PaymentHistoryResponse bundles the history list with its summary.
type PaymentHistoryResponse struct {
	Summary  PaymentSummary   `json:"summary"`
	Payments []PaymentPayload `json:"payments"`
	Total    int              `json:"total"`
}
