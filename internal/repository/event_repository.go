package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ecoleplus/mobile-api/internal/models"
)

// EventRepository reads calendar events scoped to a student's formations
// and groups.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, COALESCE(titre, '') AS titre, COALESCE(description, '') AS description,
        start_datetime, end_datetime, COALESCE(is_online, false) AS is_online,
        formation_id, groupe_id,
        COALESCE(formation_name, '') AS formation_name, COALESCE(formateur_name, '') AS formateur_name`

// Upcoming returns the next events for the given formations/groups starting
// from now.
func (r *EventRepository) Upcoming(ctx context.Context, formationIDs, groupIDs []int64, now time.Time, limit int) ([]models.CalendarEvent, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM calendar_events
        WHERE (formation_id = ANY($1) OR groupe_id = ANY($2))
        AND start_datetime >= $3
        ORDER BY start_datetime ASC
        LIMIT $4`, eventColumns)

	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, pq.Array(formationIDs), pq.Array(groupIDs), now, limit); err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

// Recent returns the latest past events, used as the news feed.
func (r *EventRepository) Recent(ctx context.Context, formationIDs, groupIDs []int64, now time.Time, limit int) ([]models.CalendarEvent, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM calendar_events
        WHERE (formation_id = ANY($1) OR groupe_id = ANY($2))
        AND start_datetime < $3
        ORDER BY start_datetime DESC
        LIMIT $4`, eventColumns)

	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, pq.Array(formationIDs), pq.Array(groupIDs), now, limit); err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	return events, nil
}
