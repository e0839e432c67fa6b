// Package events provides the append-only log of notable game events.
// View collaborators (websocket hub, log book) poll it; an optional
// persister writes it through to durable storage for post-game analysis.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeDayClosed      EventType = "DAY_CLOSED"
	EventTypeWeekClosed     EventType = "WEEK_CLOSED"
	EventTypeRandomEvent    EventType = "RANDOM_EVENT"
	EventTypePurchase       EventType = "PURCHASE"
	EventTypeSkillUnlocked  EventType = "SKILL_UNLOCKED"
	EventTypeSkillPoint     EventType = "SKILL_POINT_BOUGHT"
	EventTypeMeasureToggled EventType = "MEASURE_TOGGLED"
	EventTypeCureIntroduced EventType = "CURE_INTRODUCED"
	EventTypeBankruptcy     EventType = "BANKRUPTCY"
)

// GameEvent represents an immutable record of something that happened in
// the simulation.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor"` // Which engine (or the player) caused it
	Payload   interface{} `json:"payload"`
	GameDay   int         `json:"game_day"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of game events.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
// A missing ID or timestamp is filled in here so callers can stay terse.
func (el *EventLog) Append(event GameEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		// Write through to durable storage off the caller's path.
		go func(e GameEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByDay returns all events that occurred on a specific game day.
func (el *EventLog) GetByDay(day int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.GameDay == day {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of the given type, in append order.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events for the log book view.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}
