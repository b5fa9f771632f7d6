package dto

// FormationPayload is one enrolled formation with payment and progress data.
type FormationPayload struct {
	ID              int64              `json:"id"`
	Name            string             `json:"nom"`
	Description     string             `json:"description"`
	Photo           string             `json:"photo"`
	Category        string             `json:"categorie"`
	Level           string             `json:"niveau"`
	Duration        string             `json:"duree"`
	Price           float64            `json:"prix"`
	Paid            float64            `json:"paid"`
	Remaining       float64            `json:"remaining"`
	PaymentProgress float64            `json:"payment_progress"`
	ProgressPercent float64            `json:"progress_percent"`
	Group           *string            `json:"groupe"`
	Session         string             `json:"session"`
	EnrolledAt      *string            `json:"date_inscription"`
	Status          string             `json:"statut"`
	Instructor      *InstructorPayload `json:"instructor"`
	ModuleCount     int                `json:"modules_count"`
}

// InstructorPayload describes the formation's active teacher.
type InstructorPayload struct {
	Name      string `json:"name"`
	Photo     string `json:"photo"`
	Specialty string `json:"specialite"`
}
