package models

import "time"

// Student represents a learner registered at the school. Column names keep
// the legacy French schema the mobile client was built against.
type Student struct {
	ID                       int64      `db:"id" json:"id"`
	LastName                 string     `db:"nom" json:"nom"`
	FirstName                string     `db:"prenom" json:"prenom"`
	Email                    string     `db:"email" json:"email"`
	Telephone                string     `db:"telephone" json:"telephone"`
	Mobile                   string     `db:"mobile" json:"mobile"`
	Photo                    string     `db:"photo" json:"photo"`
	Status                   string     `db:"statut" json:"statut"`
	BirthDate                *time.Time `db:"date_naissance" json:"date_naissance,omitempty"`
	BirthPlace               string     `db:"lieu_naissance" json:"lieu_naissance"`
	Nationality              string     `db:"nationalite" json:"nationalite"`
	Address                  string     `db:"adresse" json:"adresse"`
	EducationLevel           string     `db:"niveau_etude" json:"niveau_etude"`
	ProfessionalSituation    string     `db:"situation_professionnelle" json:"situation_professionnelle"`
	NIN                      string     `db:"nin" json:"nin"`
	RegisteredAt             *time.Time `db:"date_inscription" json:"date_inscription,omitempty"`
	CreatedAt                time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentContext carries the student together with the naming of their most
// recent enrollment, used by the login and profile payloads.
type StudentContext struct {
	Student
	FormationName   *string `db:"formation_nom" json:"formation_nom,omitempty"`
	GroupName       *string `db:"groupe_nom" json:"groupe_nom,omitempty"`
	EnrollmentCount int     `db:"enrollment_count" json:"enrollment_count"`
}

// StudentUpdate holds the whitelisted profile fields a student may overwrite.
// Nil means the field was absent from the request and must be left untouched.
type StudentUpdate struct {
	Telephone             *string
	Mobile                *string
	Email                 *string
	Address               *string
	EducationLevel        *string
	ProfessionalSituation *string
	NIN                   *string
	BirthPlace            *string
	Nationality           *string
	BirthDate             *time.Time
}
