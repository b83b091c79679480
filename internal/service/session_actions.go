package service

import (
	"context"
	"strings"
	"time"

	"github.com/praekeltfoundation/healthcheckbot/internal/form"
	"github.com/praekeltfoundation/healthcheckbot/internal/model"
)

// SessionStartAction re-seeds a fresh session with the slots that survive
// between conversations, then hands control back to the user.
type SessionStartAction struct {
	Deployment form.Deployment
}

func (a *SessionStartAction) Name() string {
	return "action_session_start"
}

func (a *SessionStartAction) Run(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error) {
	events := carryOverEvents(a.Deployment, t)

	extra, err := a.Deployment.SessionStartEvents(ctx, t)
	if err != nil {
		return nil, err
	}
	events = append(events, extra...)
	events = append(events, model.ActionExecuted("action_listen"))
	return events, nil
}

// carryOverEvents emits a SlotSet for every carry-over slot, including the
// unset ones, so the new session starts from a known state.
func carryOverEvents(dep form.Deployment, t *model.Tracker) []model.Event {
	events := []model.Event{model.SessionStarted()}
	for _, slot := range dep.CarryOverSlots() {
		events = append(events, model.SlotSet(slot, t.Slot(slot)))
	}
	return events
}

// ExitAction says goodbye and preserves the same slots a session restart
// would.
type ExitAction struct {
	Deployment form.Deployment
}

func (a *ExitAction) Name() string {
	return "action_exit"
}

func (a *ExitAction) Run(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error) {
	d.Utter("utter_exit")
	return carryOverEvents(a.Deployment, t), nil
}

// StudyMessageAction sends the study-arm message a little while after the
// screening result, unless the user is unassigned or in the control arm.
type StudyMessageAction struct {
	Delay time.Duration
}

func (a *StudyMessageAction) Name() string {
	return "action_send_study_messages"
}

func (a *StudyMessageAction) Run(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error) {
	arm := t.TextSlot(form.SlotStudyAArm)
	if arm == "" || arm == "C" {
		return nil, nil
	}
	select {
	case <-time.After(a.Delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	d.Utter("utter_study_a_" + strings.TrimSpace(arm))
	return nil, nil
}

// SetProfileOboAction forces the on-behalf-of role; the DBE deployment links
// guardians straight into a learner screening.
type SetProfileOboAction struct{}

func (a *SetProfileOboAction) Name() string {
	return "action_set_profile_obo"
}

func (a *SetProfileOboAction) Run(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error) {
	return []model.Event{model.SlotSet(form.SlotProfile, "parent")}, nil
}
