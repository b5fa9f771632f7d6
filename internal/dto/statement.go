package dto

// StatementJobPayload reports the status of an export job.
type StatementJobPayload struct {
	ID           string  `json:"id"`
	Format       string  `json:"format"`
	Status       string  `json:"status"`
	Progress     int     `json:"progress"`
	ResultURL    *string `json:"result_url,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
	CreatedAt    string  `json:"created_at"`
	FinishedAt   *string `json:"finished_at,omitempty"`
}
