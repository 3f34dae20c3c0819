package api

import (
	"encoding/json"
	"time"
)

// EventType discriminates data events on the channel.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventDelete EventType = "DELETE"
)

// DataEvent carries a create or delete for one entity, keyed by its
// primary id. Data is null on DELETE. Events are immutable once built and
// flow one way, from the composite integration to a domain service worker.
type DataEvent struct {
	EventType      EventType       `json:"eventType"`
	Key            int             `json:"key"`
	Data           json.RawMessage `json:"data,omitempty"`
	EventCreatedAt time.Time       `json:"eventCreatedAt"`
}

// NewDataEvent builds an event with the payload marshalled in place.
func NewDataEvent(eventType EventType, key int, data interface{}) (DataEvent, error) {
	ev := DataEvent{
		EventType:      eventType,
		Key:            key,
		EventCreatedAt: time.Now().UTC(),
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return DataEvent{}, err
		}
		ev.Data = raw
	}

	return ev, nil
}
