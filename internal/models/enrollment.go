package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enrollment links a student to a formation. PriceOverride, when set and
// non-zero, replaces the formation list price for balance purposes.
type Enrollment struct {
	ID              int64               `db:"id" json:"id"`
	StudentID       int64               `db:"etudiant_id" json:"etudiant_id"`
	FormationID     int64               `db:"formation_id" json:"formation_id"`
	GroupID         *int64              `db:"groupe_id" json:"groupe_id,omitempty"`
	PriceOverride   decimal.NullDecimal `db:"prix_total" json:"prix_total,omitempty"`
	ProgressPercent float64             `db:"progress_percent" json:"progress_percent"`
	Session         string              `db:"session" json:"session"`
	Status          string              `db:"statut" json:"statut"`
	EnrolledAt      *time.Time          `db:"date_inscription" json:"date_inscription,omitempty"`
}

// EnrollmentDetail joins an enrollment with its formation and group data.
type EnrollmentDetail struct {
	Enrollment
	FormationName        string          `db:"formation_nom" json:"formation_nom"`
	FormationDescription string          `db:"formation_description" json:"formation_description"`
	FormationPhoto       string          `db:"formation_photo" json:"formation_photo"`
	FormationCategory    string          `db:"formation_categorie" json:"formation_categorie"`
	FormationLevel       string          `db:"formation_niveau" json:"formation_niveau"`
	FormationDuration    string          `db:"formation_duree" json:"formation_duree"`
	FormationListPrice   decimal.Decimal `db:"formation_prix" json:"formation_prix"`
	GroupName            *string         `db:"groupe_nom" json:"groupe_nom,omitempty"`
	ModuleCount          int             `db:"module_count" json:"module_count"`
}
