package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecoleplus/mobile-api/internal/models"
)

// PaymentRepository reads payment history rows.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListByStudent returns the student's payments with the formation name
// resolved through either the direct formation link or the enrollment's
// formation, most recent payment first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.PaymentDetail, error) {
	const query = `SELECT p.id, p.etudiant_id, p.inscription_id, p.formation_id, p.montant,
        COALESCE(p.reference, '') AS reference, p.date_paiement,
        COALESCE(p.mode_paiement, '') AS mode_paiement,
        COALESCE(p.statut, '') AS statut, COALESCE(p.remarques, '') AS remarques, p.created_at,
        COALESCE(f.nom, f2.nom, '') AS formation_nom
        FROM paiements p
        LEFT JOIN formations f ON f.id = p.formation_id
        LEFT JOIN inscriptions i ON i.id = p.inscription_id
        LEFT JOIN formations f2 ON f2.id = i.formation_id
        WHERE p.etudiant_id = $1
        ORDER BY p.date_paiement DESC NULLS LAST, p.created_at DESC`

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// RecentByStudent returns the most recent payments for the activity feed.
func (r *PaymentRepository) RecentByStudent(ctx context.Context, studentID int64, limit int) ([]models.PaymentDetail, error) {
	if limit <= 0 {
		limit = 3
	}
	const query = `SELECT p.id, p.etudiant_id, p.inscription_id, p.formation_id, p.montant,
        COALESCE(p.reference, '') AS reference, p.date_paiement,
        COALESCE(p.mode_paiement, '') AS mode_paiement,
        COALESCE(p.statut, '') AS statut, COALESCE(p.remarques, '') AS remarques, p.created_at,
        COALESCE(f.nom, f2.nom, '') AS formation_nom
        FROM paiements p
        LEFT JOIN formations f ON f.id = p.formation_id
        LEFT JOIN inscriptions i ON i.id = p.inscription_id
        LEFT JOIN formations f2 ON f2.id = i.formation_id
        WHERE p.etudiant_id = $1
        ORDER BY p.date_paiement DESC NULLS LAST, p.created_at DESC
        LIMIT $2`

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, studentID, limit); err != nil {
		return nil, fmt.Errorf("list recent payments: %w", err)
	}
	return payments, nil
}
