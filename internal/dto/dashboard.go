package dto

// DashboardResponse is the aggregated student dashboard payload.
type DashboardResponse struct {
	Stats          DashboardStats  `json:"stats"`
	Events         []EventPayload  `json:"events"`
	News           []NewsPayload   `json:"news"`
	RecentActivity []ActivityEntry `json:"recent_activity"`
}

// DashboardStats is the headline numbers block.
type DashboardStats struct {
	TotalFormations int     `json:"total_formations"`
	AverageProgress float64 `json:"average_progress"`
	TotalPaid       float64 `json:"total_paid"`
	TotalDue        float64 `json:"total_due"`
	Remaining       float64 `json:"remaining"`
	PaymentProgress float64 `json:"payment_progress"`
	UpcomingEvents  int     `json:"upcoming_events"`
	OverduePayments int     `json:"overdue_payments"`
}

// EventPayload is an upcoming calendar event.
type EventPayload struct {
	ID             int64   `json:"id"`
	Title          string  `json:"titre"`
	Description    string  `json:"description"`
	StartDatetime  *string `json:"start_datetime"`
	EndDatetime    *string `json:"end_datetime"`
	IsOnline       bool    `json:"is_online"`
	FormationName  string  `json:"formation_name"`
	InstructorName string  `json:"formateur_name"`
}

// NewsPayload is a past event shown as an announcement.
type NewsPayload struct {
	ID            int64   `json:"id"`
	Title         string  `json:"titre"`
	Description   string  `json:"description"`
	Date          *string `json:"date"`
	FormationName string  `json:"formation_name"`
}

// ActivityEntry is a recent-activity feed item.
type ActivityEntry struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        *string `json:"date"`
	Type        string  `json:"type"`
}
