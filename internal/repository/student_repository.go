package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ecoleplus/mobile-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentContextQuery = `SELECT e.id, e.nom, e.prenom, e.email, e.telephone, e.mobile, e.photo, e.statut,
        e.date_naissance, e.lieu_naissance, e.nationalite, e.adresse, e.niveau_etude,
        e.situation_professionnelle, e.nin, e.date_inscription, e.created_at, e.updated_at,
        f.nom AS formation_nom, g.nom AS groupe_nom,
        (SELECT COUNT(*) FROM inscriptions i2 WHERE i2.etudiant_id = e.id) AS enrollment_count
        FROM etudiants e
        LEFT JOIN inscriptions i ON i.id = (
            SELECT id FROM inscriptions
            WHERE etudiant_id = e.id
            ORDER BY date_inscription DESC NULLS LAST, id DESC
            LIMIT 1
        )
        LEFT JOIN formations f ON f.id = i.formation_id
        LEFT JOIN groupes g ON g.id = i.groupe_id`

// FindByID fetches a student with their latest enrollment context.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.StudentContext, error) {
	query := studentContextQuery + " WHERE e.id = $1"
	var sc models.StudentContext
	if err := r.db.GetContext(ctx, &sc, query, id); err != nil {
		return nil, err
	}
	return &sc, nil
}

// FindByEmail fetches a student by email address.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.StudentContext, error) {
	query := studentContextQuery + " WHERE LOWER(e.email) = LOWER($1)"
	var sc models.StudentContext
	if err := r.db.GetContext(ctx, &sc, query, email); err != nil {
		return nil, err
	}
	return &sc, nil
}

// FindByPhone fetches a student by telephone or mobile number.
func (r *StudentRepository) FindByPhone(ctx context.Context, phone string) (*models.StudentContext, error) {
	query := studentContextQuery + " WHERE e.telephone = $1 OR e.mobile = $1"
	var sc models.StudentContext
	if err := r.db.GetContext(ctx, &sc, query, phone); err != nil {
		return nil, err
	}
	return &sc, nil
}

// UpdateProfile overwrites only the whitelisted fields present in the update.
// Returns the list of column names that were written.
func (r *StudentRepository) UpdateProfile(ctx context.Context, id int64, update models.StudentUpdate) ([]string, error) {
	sets := make([]string, 0, 10)
	args := []interface{}{id}
	updated := make([]string, 0, 10)

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		updated = append(updated, column)
	}

	if update.Telephone != nil {
		appendSet("telephone", *update.Telephone)
	}
	if update.Mobile != nil {
		appendSet("mobile", *update.Mobile)
	}
	if update.Email != nil {
		appendSet("email", *update.Email)
	}
	if update.Address != nil {
		appendSet("adresse", *update.Address)
	}
	if update.EducationLevel != nil {
		appendSet("niveau_etude", *update.EducationLevel)
	}
	if update.ProfessionalSituation != nil {
		appendSet("situation_professionnelle", *update.ProfessionalSituation)
	}
	if update.NIN != nil {
		appendSet("nin", *update.NIN)
	}
	if update.BirthPlace != nil {
		appendSet("lieu_naissance", *update.BirthPlace)
	}
	if update.Nationality != nil {
		appendSet("nationalite", *update.Nationality)
	}
	if update.BirthDate != nil {
		appendSet("date_naissance", *update.BirthDate)
	}

	if len(sets) == 0 {
		return nil, nil
	}

	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	query := "UPDATE etudiants SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE id = $1"

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update student profile: %w", err)
	}
	return updated, nil
}
