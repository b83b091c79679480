package model

import "strconv"

// Tracker is the per-turn snapshot of a conversation that the hosting
// framework sends with every webhook call. Slot values are loosely typed on
// the wire (string, number, bool, list, object or null), so accessors that
// expect a particular shape return the zero value for anything else.
type Tracker struct {
	SenderID      string         `json:"sender_id"`
	Slots         map[string]any `json:"slots"`
	LatestMessage Message        `json:"latest_message"`
}

// Message is the latest inbound user message on the tracker.
type Message struct {
	Text     string         `json:"text"`
	Intent   Intent         `json:"intent"`
	Entities []Entity       `json:"entities"`
	Metadata map[string]any `json:"metadata"`
}

type Intent struct {
	Name string `json:"name"`
}

type Entity struct {
	Entity string `json:"entity"`
	Value  any    `json:"value"`
}

// Slot returns the raw slot value, nil when unset.
func (t *Tracker) Slot(name string) any {
	if t.Slots == nil {
		return nil
	}
	return t.Slots[name]
}

// TextSlot returns the slot value when it is a non-empty string, "" otherwise.
func (t *Tracker) TextSlot(name string) string {
	s, _ := t.Slot(name).(string)
	return s
}

// IntSlot returns the slot value as an integer where possible. Numeric slots
// arrive as JSON numbers (float64) or as digit strings depending on the
// channel, so both are accepted.
func (t *Tracker) IntSlot(name string) (int, bool) {
	switch v := t.Slot(name).(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// HasSlot reports whether the slot holds a value the form engine considers
// filled. Empty strings, empty lists and nil all count as unset.
func (t *Tracker) HasSlot(name string) bool {
	switch v := t.Slot(name).(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	}
	return true
}

// Entity returns the value of the first entity with the given name.
func (m *Message) Entity(name string) (any, bool) {
	for _, e := range m.Entities {
		if e.Entity == name {
			return e.Value, true
		}
	}
	return nil, false
}

// WithSlots returns a shallow copy of the tracker with the given slot
// mutations applied. The receiver is not modified; the form engine uses this
// to re-resolve required slots after validation without mutating the
// framework's snapshot.
func (t *Tracker) WithSlots(updates map[string]any) *Tracker {
	out := *t
	out.Slots = make(map[string]any, len(t.Slots)+len(updates))
	for k, v := range t.Slots {
		out.Slots[k] = v
	}
	for k, v := range updates {
		out.Slots[k] = v
	}
	return &out
}
