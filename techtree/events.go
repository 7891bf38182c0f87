package techtree

import (
	"time"

	"github.com/google/uuid"
)

// EventType describes the kind of event emitted by the tree.
type EventType string

const EventItemCompleted EventType = "ItemCompleted"

// Event is emitted when research finishes. FirstOfKind is set when the
// item is the first completion of its kind.
type Event struct {
	ID          string
	At          time.Time
	Type        EventType
	ItemID      string
	Kind        Kind
	FirstOfKind bool
}

func newCompletedEvent(it Item, first bool, at time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		At:          at,
		Type:        EventItemCompleted,
		ItemID:      it.ID,
		Kind:        it.Kind,
		FirstOfKind: first,
	}
}

// Events returns pending events and clears them.
func (t *Tree) Events() []Event {
	out := t.events
	t.events = nil
	return out
}
