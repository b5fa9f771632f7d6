package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecoleplus/mobile-api/internal/models"
)

// EnrollmentRepository reads enrollments joined with formation data.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByStudent returns the student's enrollments with formation and group
// context, most recent enrollment first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	const query = `SELECT i.id, i.etudiant_id, i.formation_id, i.groupe_id, i.prix_total,
        i.progress_percent, i.session, i.statut, i.date_inscription,
        f.nom AS formation_nom, f.contenu AS formation_description, f.photo AS formation_photo,
        f.categorie AS formation_categorie, f.niveau AS formation_niveau, f.duree AS formation_duree,
        COALESCE(f.prix_etudiant, 0) AS formation_prix,
        g.nom AS groupe_nom,
        (SELECT COUNT(*) FROM modules m WHERE m.formation_id = f.id) AS module_count
        FROM inscriptions i
        JOIN formations f ON f.id = i.formation_id
        LEFT JOIN groupes g ON g.id = i.groupe_id
        WHERE i.etudiant_id = $1
        ORDER BY i.date_inscription DESC NULLS LAST, i.id DESC`

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ActiveInstructor returns the active teacher for a formation, or nil when
// none is assigned.
func (r *EnrollmentRepository) ActiveInstructor(ctx context.Context, formationID int64) (*models.Instructor, error) {
	const query = `SELECT id, nom, prenom, COALESCE(photo, '') AS photo,
        COALESCE(specialite, '') AS specialite, is_active
        FROM enseignants
        WHERE formation_id = $1 AND is_active = true
        ORDER BY id
        LIMIT 1`

	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, formationID); err != nil {
		return nil, err
	}
	return &instructor, nil
}
