package models

import "time"

// CalendarEvent is a scheduled session or announcement scoped to a
// formation or group.
type CalendarEvent struct {
	ID             int64      `db:"id" json:"id"`
	Title          string     `db:"titre" json:"titre"`
	Description    string     `db:"description" json:"description"`
	StartAt        *time.Time `db:"start_datetime" json:"start_datetime,omitempty"`
	EndAt          *time.Time `db:"end_datetime" json:"end_datetime,omitempty"`
	IsOnline       bool       `db:"is_online" json:"is_online"`
	FormationID    *int64     `db:"formation_id" json:"formation_id,omitempty"`
	GroupID        *int64     `db:"groupe_id" json:"groupe_id,omitempty"`
	FormationName  string     `db:"formation_name" json:"formation_name"`
	InstructorName string     `db:"formateur_name" json:"formateur_name"`
}
