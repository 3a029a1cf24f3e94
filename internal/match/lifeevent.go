// Package match maps normalized citizen text onto curated data: life events
// by trigger phrase and service records by keyword score.
package match

import (
	"strings"

	"github.com/kerala-navigator/navigator/internal/catalog"
)

// LifeEvents detects life-event phrasing. Events are checked in list order and
// the first one with a trigger contained in the text wins.
type LifeEvents struct {
	events []catalog.LifeEvent
}

// NewLifeEvents creates a matcher over events. A nil slice means the built-in
// life events.
func NewLifeEvents(events []catalog.LifeEvent) *LifeEvents {
	if events == nil {
		events = catalog.LifeEvents()
	}
	return &LifeEvents{events: events}
}

// Match returns the first event whose trigger appears in text, ignoring case.
func (m *LifeEvents) Match(text string) *catalog.LifeEvent {
	text = strings.ToLower(text)
	for i := range m.events {
		for _, trigger := range m.events[i].Triggers {
			if trigger == "" {
				continue
			}
			if strings.Contains(text, strings.ToLower(trigger)) {
				return &m.events[i]
			}
		}
	}
	return nil
}
