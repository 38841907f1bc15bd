// Package ledger holds the mutable scan log of one counting session.
//
// The ledger is one owned structure with two derived views: the ordered event
// sequence and the per-identifier event lists the duplicate check runs
// against. "Seen" membership is always derived from the stored events, so
// deleting the last real scan of an identifier evicts it automatically.
package ledger

import (
	"sync"
	"time"

	"github.com/ismailkaraca/kohasayim/internal/models"
)

// Ledger is the ordered log of scan events for the current session.
// There is exactly one logical writer at a time; the mutex guards the
// check-then-act sequence around seen-membership for concurrent callers.
type Ledger struct {
	mu           sync.RWMutex
	events       []*models.ScanEvent
	byIdentifier map[string][]*models.ScanEvent
	nextSeq      int64
	lastStamp    time.Time
	clock        func() time.Time
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		byIdentifier: make(map[string][]*models.ScanEvent),
		nextSeq:      1,
		clock:        time.Now,
	}
}

// NewEvent stamps a new event with the next sequence number and a timestamp
// guaranteed to be strictly after every earlier event's.
func (l *Ledger) NewEvent(rawInput, identifier string) *models.ScanEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if !now.After(l.lastStamp) {
		now = l.lastStamp.Add(time.Microsecond)
	}
	l.lastStamp = now

	event := &models.ScanEvent{
		Seq:        l.nextSeq,
		Timestamp:  now,
		RawInput:   rawInput,
		Identifier: identifier,
	}
	l.nextSeq++
	return event
}

// Append adds a finished event to the log.
func (l *Ledger) Append(event *models.ScanEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
	l.byIdentifier[event.Identifier] = append(l.byIdentifier[event.Identifier], event)
}

// Seen reports whether the identifier has a non-duplicate event in the log.
func (l *Ledger) Seen(identifier string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seenLocked(identifier)
}

func (l *Ledger) seenLocked(identifier string) bool {
	for _, event := range l.byIdentifier[identifier] {
		if !event.IsDuplicate() {
			return true
		}
	}
	return false
}

// FirstEvent returns the earliest event recorded for an identifier.
func (l *Ledger) FirstEvent(identifier string) (*models.ScanEvent, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	events := l.byIdentifier[identifier]
	if len(events) == 0 {
		return nil, false
	}
	return events[0], true
}

// Events returns a copy of the log, most recent first (the display order).
func (l *Ledger) Events() []*models.ScanEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*models.ScanEvent, len(l.events))
	for i, event := range l.events {
		out[len(l.events)-1-i] = event
	}
	return out
}

// EventsOldestFirst returns a copy of the log in scan order.
func (l *Ledger) EventsOldestFirst() []*models.ScanEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*models.ScanEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Remove deletes a single event by sequence number, the manual-delete path.
// Removing the last non-duplicate event of an identifier evicts it from the
// seen view, so it can be scanned cleanly again.
func (l *Ledger) Remove(seq int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, event := range l.events {
		if event.Seq != seq {
			continue
		}
		l.events = append(l.events[:i], l.events[i+1:]...)
		l.removeFromIndex(event)
		return true
	}
	return false
}

func (l *Ledger) removeFromIndex(event *models.ScanEvent) {
	events := l.byIdentifier[event.Identifier]
	for i, e := range events {
		if e.Seq != event.Seq {
			continue
		}
		events = append(events[:i], events[i+1:]...)
		break
	}
	if len(events) == 0 {
		delete(l.byIdentifier, event.Identifier)
	} else {
		l.byIdentifier[event.Identifier] = events
	}
}

// Clear removes every event, ending the session's log.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = nil
	l.byIdentifier = make(map[string][]*models.ScanEvent)
}

// Restore replays snapshot events into an empty ledger. The derived seen
// view is rebuilt from the events themselves, so a restored session
// classifies any repeat scan exactly as the original one would have.
func (l *Ledger) Restore(events []models.ScanEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = nil
	l.byIdentifier = make(map[string][]*models.ScanEvent)

	for i := range events {
		event := events[i]
		if event.Seq >= l.nextSeq {
			l.nextSeq = event.Seq + 1
		}
		if event.Timestamp.After(l.lastStamp) {
			l.lastStamp = event.Timestamp
		}
		l.events = append(l.events, &event)
		l.byIdentifier[event.Identifier] = append(l.byIdentifier[event.Identifier], &event)
	}
}

// Snapshot returns the events in scan order as values, for persistence.
func (l *Ledger) Snapshot() []models.ScanEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.ScanEvent, len(l.events))
	for i, event := range l.events {
		out[i] = *event
	}
	return out
}
