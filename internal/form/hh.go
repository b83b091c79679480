package form

import (
	"context"
	"time"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
	"github.com/praekeltfoundation/healthcheckbot/internal/triage"
)

// HHDeployment is the higher-education variant: staff and students check in
// before visiting a campus, so the bot also records who they are, where they
// are going and why.
type HHDeployment struct {
	BaseDeployment
	Now func() time.Time
}

func (h *HHDeployment) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().In(sast)
}

func (h *HHDeployment) profileSlotOrder(t *model.Tracker) []string {
	slots := []string{
		SlotAge,
		SlotFirstName,
		SlotLastName,
		SlotGender,
		SlotProvince,
		SlotLocation,
		SlotLocationConfirm,
		SlotDestination,
		SlotReason,
		SlotMedicalCondition,
	}
	if t.TextSlot(SlotMedicalCondition) != "no" {
		slots = append(slots, conditionSlots...)
	}
	if t.TextSlot(SlotAge) == string(triage.AgeUnder18) {
		slots = minorSkip(slots)
	}
	return slots
}

func (h *HHDeployment) ProfileSlots(t *model.Tracker) []string {
	return firstUnfilled(t, h.profileSlotOrder(t))
}

func (h *HHDeployment) ProfileMappings() map[string][]Mapping {
	m := h.BaseDeployment.ProfileMappings()
	m[SlotFirstName] = []Mapping{FromText()}
	m[SlotLastName] = []Mapping{FromText()}
	m[SlotDestination] = numberThenText()
	m[SlotReason] = numberThenText()
	return m
}

func (h *HHDeployment) ValidateProfileSlot(ctx context.Context, d *model.Dispatcher, t *model.Tracker, slot string, value any) (map[string]any, error) {
	switch slot {
	case SlotDestination:
		return ValidateOption(SlotDestination, d, value, h.Tables.Destinations, true), nil
	case SlotReason:
		return ValidateOption(SlotReason, d, value, h.Tables.Reasons, true), nil
	}
	return h.BaseDeployment.ValidateProfileSlot(ctx, d, t, slot, value)
}

func (h *HHDeployment) BuildPayload(t *model.Tracker, risk triage.Risk) (map[string]any, error) {
	payload, err := h.BaseDeployment.BuildPayload(t, risk)
	if err != nil {
		return nil, err
	}
	payload["first_name"] = t.TextSlot(SlotFirstName)
	payload["last_name"] = t.TextSlot(SlotLastName)

	data := payload["data"].(map[string]any)
	data["destination"] = t.TextSlot(SlotDestination)
	data["reason"] = t.TextSlot(SlotReason)
	return payload, nil
}

// SendRisk includes the check-in pass validity window.
func (h *HHDeployment) SendRisk(d *model.Dispatcher, risk triage.Risk, t *model.Tracker) {
	d.UtterVars("utter_risk_"+string(risk), riskTimestamps(h.now()))
}

func (h *HHDeployment) CarryOverSlots() []string {
	slots := h.BaseDeployment.CarryOverSlots()
	return append(slots, SlotFirstName, SlotLastName, SlotDestination, SlotReason)
}
