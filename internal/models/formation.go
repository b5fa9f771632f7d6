package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Formation represents a training program offered by the school.
type Formation struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"nom" json:"nom"`
	Description string          `db:"contenu" json:"description"`
	Photo       string          `db:"photo" json:"photo"`
	Category    string          `db:"categorie" json:"categorie"`
	Level       string          `db:"niveau" json:"niveau"`
	Duration    string          `db:"duree" json:"duree"`
	ListPrice   decimal.Decimal `db:"prix_etudiant" json:"prix_etudiant"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Instructor is the active teacher assigned to a formation.
type Instructor struct {
	ID        int64  `db:"id" json:"id"`
	LastName  string `db:"nom" json:"nom"`
	FirstName string `db:"prenom" json:"prenom"`
	Photo     string `db:"photo" json:"photo"`
	Specialty string `db:"specialite" json:"specialite"`
	Active    bool   `db:"is_active" json:"is_active"`
}
