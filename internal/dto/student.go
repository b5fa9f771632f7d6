package dto

// StudentPayload is the legacy mobile student profile contract. Every field
// name is fixed by the deployed Flutter client.
type StudentPayload struct {
	ID                    string  `json:"id"`
	LastName              string  `json:"nom"`
	FirstName             string  `json:"prenom"`
	Email                 string  `json:"email"`
	Telephone             string  `json:"telephone"`
	Mobile                string  `json:"mobile"`
	Photo                 string  `json:"photo"`
	FormationName         string  `json:"formation_nom"`
	GroupName             string  `json:"groupe_nom"`
	Status                string  `json:"statut"`
	BirthDate             *string `json:"date_naissance"`
	BirthPlace            string  `json:"lieu_naissance"`
	Nationality           string  `json:"nationalite"`
	Address               string  `json:"adresse"`
	EducationLevel        string  `json:"niveau_etude"`
	ProfessionalSituation string  `json:"situation_professionnelle"`
	NIN                   string  `json:"nin"`
	RegisteredAt          *string `json:"date_inscription"`
	EnrollmentCount       int     `json:"inscriptions_count"`
}

// ProfileUpdateResponse reports which fields were overwritten.
type ProfileUpdateResponse struct {
	Message       string   `json:"message"`
	UpdatedFields []string `json:"updated_fields"`
}
