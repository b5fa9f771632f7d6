package dto

// IdentityExtraction is the OCR result contract. Unreadable fields come
// back as empty strings, never null.
type IdentityExtraction struct {
	NIN        string `json:"nin"`
	LastName   string `json:"nom"`
	FirstName  string `json:"prenom"`
	BirthDate  string `json:"dateNaissance"`
	BirthPlace string `json:"lieuNaissance"`
}
