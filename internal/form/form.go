package form

import (
	"context"
	"fmt"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
)

// Form is a multi-turn questionnaire. The engine asks for one slot per turn:
// RequiredSlots returns at most one unfilled slot, and once it returns an
// empty list the form submits.
type Form interface {
	Name() string
	RequiredSlots(t *model.Tracker) []string
	SlotMappings() map[string][]Mapping
	ValidateSlot(ctx context.Context, d *model.Dispatcher, t *model.Tracker, slot string, value any) (map[string]any, error)
	Submit(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error)
}

// Run advances a form by one turn. On activation it requests the first
// unfilled slot; on subsequent turns it extracts and validates the answer to
// the requested slot, then either requests the next slot or submits and
// deactivates.
func Run(ctx context.Context, f Form, t *model.Tracker, d *model.Dispatcher) ([]model.Event, error) {
	var events []model.Event
	working := t

	if requested := t.TextSlot(SlotRequested); requested != "" {
		value, _ := extractFor(f, requested, &t.LatestMessage)
		updates, err := f.ValidateSlot(ctx, d, t, requested, value)
		if err != nil {
			return nil, fmt.Errorf("validate %s: %w", requested, err)
		}
		for _, slot := range sortedKeys(updates) {
			events = append(events, model.SlotSet(slot, updates[slot]))
		}
		working = t.WithSlots(updates)
	}

	remaining := f.RequiredSlots(working)
	if len(remaining) > 0 {
		events = append(events, model.SlotSet(SlotRequested, remaining[0]))
		return events, nil
	}

	submitEvents, err := f.Submit(ctx, d, working)
	events = append(events, submitEvents...)
	events = append(events,
		model.FormDeactivated(),
		model.SlotSet(SlotRequested, nil),
	)
	if err != nil {
		return events, fmt.Errorf("submit %s: %w", f.Name(), err)
	}
	return events, nil
}

// extractFor finds the candidate value for a slot from the latest message.
// Slots without an explicit mapping take the message text.
func extractFor(f Form, slot string, msg *model.Message) (any, bool) {
	mappings := f.SlotMappings()[slot]
	if len(mappings) == 0 {
		mappings = []Mapping{FromText()}
	}
	return extract(mappings, msg)
}
