package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// ConnectNATS dials url, retrying while the broker comes up.
func ConnectNATS(url string, attempts int, delay time.Duration) (*nats.Conn, error) {
	var conn *nats.Conn
	var err error
	for i := 1; i <= attempts; i++ {
		conn, err = nats.Connect(url, nats.Name("photogenie"))
		if err == nil {
			return conn, nil
		}
		log.Printf("WARN: Attempt %d: NATS not reachable at %s: %v", i, url, err)
		if i < attempts {
			time.Sleep(delay)
		}
	}
	return nil, fmt.Errorf("connect to nats after %d attempts: %w", attempts, err)
}

func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix}
}

func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.conn.Publish(p.Subject(event.EventType), data)
}
