// Package catalog holds the tradable sports events and their outcome timelines.
package catalog

import (
	"slices"

	"github.com/sportpulse/pulse/internal/config"
	"github.com/sportpulse/pulse/internal/model"
)

// Catalog looks up events.
type Catalog interface {
	Events() []model.Event
	Event(id string) (model.Event, bool)
	HasTimeline(eventID, timeline string) bool
}

// Static is an immutable in-memory catalog. Safe for concurrent use.
type Static struct {
	events []model.Event
	byID   map[string]int
}

// NewStatic builds a catalog from events, keeping their order.
// Later duplicates of an ID are ignored.
func NewStatic(events []model.Event) *Static {
	s := &Static{
		events: make([]model.Event, 0, len(events)),
		byID:   make(map[string]int, len(events)),
	}
	for _, ev := range events {
		if _, dup := s.byID[ev.ID]; dup {
			continue
		}
		ev.Timelines = slices.Clone(ev.Timelines)
		s.byID[ev.ID] = len(s.events)
		s.events = append(s.events, ev)
	}
	return s
}

// FromConfig builds a catalog from the events section of the config.
func FromConfig(cfgs []config.EventConfig) *Static {
	events := make([]model.Event, len(cfgs))
	for i, c := range cfgs {
		events[i] = model.Event{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Date:        c.Date,
			Timelines:   c.Timelines,
			Resolved:    c.Resolved,
		}
	}
	return NewStatic(events)
}

// Events returns a copy of every event.
func (s *Static) Events() []model.Event {
	out := make([]model.Event, len(s.events))
	for i, ev := range s.events {
		ev.Timelines = slices.Clone(ev.Timelines)
		out[i] = ev
	}
	return out
}

// Active returns the events that are not yet resolved.
func (s *Static) Active() []model.Event {
	var out []model.Event
	for _, ev := range s.Events() {
		if !ev.Resolved {
			out = append(out, ev)
		}
	}
	return out
}

// Event returns the event with id.
func (s *Static) Event(id string) (model.Event, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Event{}, false
	}
	ev := s.events[i]
	ev.Timelines = slices.Clone(ev.Timelines)
	return ev, true
}

// HasTimeline reports whether timeline is an outcome of eventID.
func (s *Static) HasTimeline(eventID, timeline string) bool {
	i, ok := s.byID[eventID]
	if !ok {
		return false
	}
	return s.events[i].HasTimeline(timeline)
}
