// Package bbolt provides the bbolt-backed security-event journal.
//
// The journal is derived observability data only: session and rate-limit
// state live purely in memory, but anomalies (soft-binding mismatches,
// login lockouts) are worth keeping across restarts so operators can review
// them after the fact.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var eventsBucket = []byte("security_events")

// Event is one journal entry.
type Event struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	UserID    string `json:"user_id,omitempty"`
	RemoteIP  string `json:"remote_ip,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// EventStore is an append-only journal over a bbolt database.
type EventStore struct {
	db *bbolt.DB
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*EventStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening events db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(eventsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating events bucket: %w", err)
	}
	return &EventStore{db: db}, nil
}

// Close closes the underlying database.
func (s *EventStore) Close() error {
	return s.db.Close()
}

// Append writes one event. ID and CreatedAt are filled in when empty.
// Keys are time-prefixed so a cursor walk yields chronological order.
func (s *EventStore) Append(e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt == "" {
		e.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	key := []byte(e.CreatedAt + ":" + e.ID)
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(eventsBucket).Put(key, data)
	})
}

// Recent returns up to limit events, newest first.
func (s *EventStore) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(eventsBucket).Cursor()
		for k, v := c.Last(); k != nil && len(events) < limit; k, v = c.Prev() {
			var e Event
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			events = append(events, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
