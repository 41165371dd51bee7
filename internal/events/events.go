package events

import (
	"encoding/json"
	"log"
	"time"
)

const (
	PostCreated = "post_created"
	PostUpdated = "post_updated"
	PostDeleted = "post_deleted"
)

type Event struct {
	ID        int64           `json:"id" example:"123"`
	EventType string          `json:"event_type" example:"post_created"`
	EventTime time.Time       `json:"event_time"`
	Payload   json.RawMessage `json:"payload" swaggertype:"object"`
}

type Publisher interface {
	Publish(event *Event) error
}

// Fanout delivers each event to every publisher. A failing publisher is
// logged and does not stop the others.
type Fanout []Publisher

func (f Fanout) Publish(event *Event) error {
	for _, p := range f {
		if err := p.Publish(event); err != nil {
			log.Printf("WARN: Failed to publish event %d (%s): %v", event.ID, event.EventType, err)
		}
	}
	return nil
}
