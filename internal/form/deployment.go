package form

import (
	"context"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
	"github.com/praekeltfoundation/healthcheckbot/internal/triage"
)

// Deployment bundles everything that differs between the hosted variants of
// the bot: which profile questions are asked and in what order, how answers
// are validated, the shape and destination of the event store payload, and
// the messaging around the final risk result.
type Deployment interface {
	// Subject reports who the current screening is about. Guardian
	// sessions in the education deployment answer on behalf of a learner.
	Subject(t *model.Tracker) Subject

	// ProfileSlots returns the next profile slot to fill, or an empty
	// list when the profile is complete.
	ProfileSlots(t *model.Tracker) []string
	HealthCheckSlots(t *model.Tracker) []string

	ProfileMappings() map[string][]Mapping
	HealthCheckMappings() map[string][]Mapping

	// ValidateProfileSlot validates an answer for a profile form slot and
	// returns the slot updates to apply.
	ValidateProfileSlot(ctx context.Context, d *model.Dispatcher, t *model.Tracker, slot string, value any) (map[string]any, error)

	// RiskInputs collects the classifier inputs from the tracker.
	RiskInputs(t *model.Tracker) (symptoms int, exposure string, age triage.AgeBucket)

	TriagePath() string
	BuildPayload(t *model.Tracker, risk triage.Risk) (map[string]any, error)

	SendRisk(d *model.Dispatcher, risk triage.Risk, t *model.Tracker)
	SendFollowUps(d *model.Dispatcher, risk triage.Risk, t *model.Tracker)

	// CarryOverSlots lists the slots preserved across sessions.
	CarryOverSlots() []string
	// SessionStartEvents returns extra events emitted on session start,
	// beyond the standard carry-over.
	SessionStartEvents(ctx context.Context, t *model.Tracker) ([]model.Event, error)
}

// firstUnfilled implements the single-question convention: the form engine
// is told about one required slot at a time, the first in order that has no
// value yet.
func firstUnfilled(t *model.Tracker, slots []string) []string {
	for _, slot := range slots {
		if !t.HasSlot(slot) {
			return []string{slot}
		}
	}
	return nil
}
