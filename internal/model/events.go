package model

import "encoding/json"

// Event is a single tracker mutation returned to the hosting framework.
type Event struct {
	Type  string
	Name  string
	Value any
}

const (
	EventSlot           = "slot"
	EventSessionStarted = "session_started"
	EventAction         = "action"
	EventFormDeactivate = "form"
)

// SlotSet sets (or, with a nil value, clears) a slot.
func SlotSet(name string, value any) Event {
	return Event{Type: EventSlot, Name: name, Value: value}
}

func SessionStarted() Event {
	return Event{Type: EventSessionStarted}
}

func ActionExecuted(name string) Event {
	return Event{Type: EventAction, Name: name}
}

// FormDeactivated ends the active form.
func FormDeactivated() Event {
	return Event{Type: EventFormDeactivate}
}

// MarshalJSON emits the framework wire format. Slot events always carry a
// value key, even when nil, since a missing key and an explicit null mean
// different things to the framework (no-op vs. clear).
func (e Event) MarshalJSON() ([]byte, error) {
	m := map[string]any{"event": e.Type}
	switch e.Type {
	case EventSlot:
		m["name"] = e.Name
		m["value"] = e.Value
	case EventAction:
		m["name"] = e.Name
	case EventFormDeactivate:
		m["name"] = nil
	}
	return json.Marshal(m)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var m struct {
		Event string `json:"event"`
		Name  string `json:"name"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	e.Type = m.Event
	e.Name = m.Name
	e.Value = m.Value
	return nil
}
