package database

import (
	"context"
	"encoding/json"
	"fmt"
	"photogenie/internal/events"
)

const eventPageSize = 100

// LogEvent appends to the journal. Run it in the same transaction as the
// change it describes and publish the returned event after commit.
func (q *Queries) LogEvent(ctx context.Context, eventType string, payload interface{}) (*events.Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event := events.Event{EventType: eventType, Payload: payloadBytes}
	query := `INSERT INTO event_journal (event_type, payload) VALUES ($1, $2) RETURNING id, event_time`
	if err := q.db.QueryRow(ctx, query, eventType, payloadBytes).Scan(&event.ID, &event.EventTime); err != nil {
		return nil, err
	}

	return &event, nil
}

func (q *Queries) GetEventsSince(ctx context.Context, sinceID int64) ([]events.Event, error) {
	query := `
		SELECT id, event_type, event_time, payload
		FROM event_journal
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`
	rows, err := q.db.Query(ctx, query, sinceID, eventPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []events.Event{}
	for rows.Next() {
		var event events.Event
		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.EventTime,
			&event.Payload,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}

	return result, rows.Err()
}
