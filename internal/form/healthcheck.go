package form

import (
	"context"
	"log"

	"github.com/praekeltfoundation/healthcheckbot/internal/eventstore"
	"github.com/praekeltfoundation/healthcheckbot/internal/model"
	"github.com/praekeltfoundation/healthcheckbot/internal/triage"
)

// HealthCheckForm asks the screening questions and, once complete, computes
// the risk level, reports it upstream and tells the user the result.
type HealthCheckForm struct {
	Deployment Deployment
	Store      TriageStore
}

// TriageStore is the slice of the event store client the form needs: it
// submits a payload and returns the study arm assignment, if any.
type TriageStore interface {
	SubmitTriage(path string, payload map[string]any) (string, error)
}

// EventStoreSubmitter adapts the event store client to TriageStore.
type EventStoreSubmitter struct {
	Client *eventstore.Client
}

func (s EventStoreSubmitter) SubmitTriage(path string, payload map[string]any) (string, error) {
	resp, err := s.Client.SubmitTriage(path, payload)
	if err != nil {
		return "", err
	}
	return resp.Profile.HCSStudyAArm, nil
}

func (f *HealthCheckForm) Name() string {
	return "healthcheck_form"
}

func (f *HealthCheckForm) RequiredSlots(t *model.Tracker) []string {
	return f.Deployment.HealthCheckSlots(t)
}

func (f *HealthCheckForm) SlotMappings() map[string][]Mapping {
	return f.Deployment.HealthCheckMappings()
}

func (f *HealthCheckForm) ValidateSlot(ctx context.Context, d *model.Dispatcher, t *model.Tracker, slot string, value any) (map[string]any, error) {
	sub, base := splitSubject(slot)

	var updates map[string]any
	switch base {
	case SlotExposure:
		updates = ValidateOption(SlotExposure, d, value, YesNoMaybe, true)
	default:
		updates = ValidateOption(base, d, value, YesNo, true)
	}
	return prefixKeys(updates, sub), nil
}

// Submit classifies the answers, submits the screening upstream and sends
// the result to the user. The user always hears their result: a failed
// submission is reported as an error only after the result messages are
// queued.
func (f *HealthCheckForm) Submit(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error) {
	symptoms, exposure, age := f.Deployment.RiskInputs(t)
	risk := triage.Classify(symptoms, exposure, age)

	var studyArm any
	var submitErr error
	if f.Store != nil {
		payload, err := f.Deployment.BuildPayload(t, risk)
		if err != nil {
			submitErr = err
		} else {
			arm, err := f.Store.SubmitTriage(f.Deployment.TriagePath(), payload)
			if err != nil {
				submitErr = err
			} else if arm != "" {
				studyArm = arm
			}
		}
	}

	f.Deployment.SendRisk(d, risk, t)
	f.Deployment.SendFollowUps(d, risk, t)

	if submitErr != nil {
		log.Printf("triage submission failed: %v", submitErr)
		return []model.Event{model.SlotSet(SlotStudyAArm, studyArm)}, submitErr
	}
	return []model.Event{model.SlotSet(SlotStudyAArm, studyArm)}, nil
}
