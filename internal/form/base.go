package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/praekeltfoundation/healthcheckbot/internal/eventstore"
	"github.com/praekeltfoundation/healthcheckbot/internal/geo"
	"github.com/praekeltfoundation/healthcheckbot/internal/lookup"
	"github.com/praekeltfoundation/healthcheckbot/internal/model"
	"github.com/praekeltfoundation/healthcheckbot/internal/places"
	"github.com/praekeltfoundation/healthcheckbot/internal/triage"
)

// notCollected is stored for slots that are deliberately skipped.
const notCollected = "<not collected>"

// genderReport maps the option labels shown to users onto the values the
// event store expects.
var genderReport = map[string]string{
	"MALE":           "male",
	"FEMALE":         "female",
	"OTHER":          "other",
	"RATHER NOT SAY": "not_say",
}

// exposureReport maps three-way answers for reporting.
var exposureReport = map[string]string{
	"yes":      "yes",
	"no":       "no",
	"not sure": "not_sure",
}

// BaseDeployment is the nationwide deployment of the bot. The other
// deployments build on its behavior.
type BaseDeployment struct {
	Tables *lookup.Tables
	Places *places.Client
}

func (b *BaseDeployment) Subject(t *model.Tracker) Subject {
	return Self
}

func (b *BaseDeployment) profileSlotOrder(t *model.Tracker) []string {
	slots := []string{
		SlotAge,
		SlotGender,
		SlotProvince,
		SlotLocation,
		SlotLocationConfirm,
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

// minorSkip removes the questions not asked of users under 18.
func minorSkip(slots []string) []string {
	skip := map[string]bool{
		SlotLocation:              true,
		SlotLocationConfirm:       true,
		SlotConditionObesity:      true,
		SlotConditionDiabetes:     true,
		SlotConditionHypertension: true,
		SlotConditionCardio:       true,
	}
	out := slots[:0]
	for _, slot := range slots {
		if !skip[slot] {
			out = append(out, slot)
		}
	}
	return out
}

func (b *BaseDeployment) ProfileSlots(t *model.Tracker) []string {
	return firstUnfilled(t, b.profileSlotOrder(t))
}

func (b *BaseDeployment) HealthCheckSlots(t *model.Tracker) []string {
	return firstUnfilled(t, symptomSlots)
}

func (b *BaseDeployment) ProfileMappings() map[string][]Mapping {
	m := map[string][]Mapping{
		SlotAge:    numberThenText(),
		SlotGender: numberThenText(),
		SlotProvince: {
			FromEntity("number"),
			FromEntityIntent("inform", "province"),
			FromText(),
		},
		SlotLocation:         {FromText()},
		SlotLocationConfirm:  yesNoMappings(),
		SlotMedicalCondition: yesNoMaybeMappings(),
	}
	for _, slot := range conditionSlots {
		m[slot] = yesNoMappings()
	}
	return m
}

func (b *BaseDeployment) HealthCheckMappings() map[string][]Mapping {
	m := make(map[string][]Mapping, len(symptomSlots))
	for _, slot := range symptomSlots {
		if slot == SlotExposure {
			m[slot] = yesNoMaybeMappings()
		} else {
			m[slot] = yesNoMappings()
		}
	}
	return m
}

func (b *BaseDeployment) ValidateProfileSlot(ctx context.Context, d *model.Dispatcher, t *model.Tracker, slot string, value any) (map[string]any, error) {
	switch slot {
	case SlotAge:
		updates := ValidateOption(SlotAge, d, value, b.Tables.Ages, true)
		if updates[SlotAge] == string(triage.AgeUnder18) {
			// Location is never collected for minors.
			updates[SlotLocation] = notCollected
		}
		return updates, nil
	case SlotGender:
		return ValidateOption(SlotGender, d, value, b.Tables.Genders, true), nil
	case SlotProvince:
		return ValidateOption(SlotProvince, d, value, b.Tables.Provinces, true), nil
	case SlotLocation:
		return validateLocation(ctx, d, t, Self, value, b.Places)
	case SlotLocationConfirm:
		return validateLocationConfirm(d, value), nil
	case SlotMedicalCondition:
		return ValidateOption(SlotMedicalCondition, d, value, YesNoMaybe, true), nil
	case SlotConditionObesity, SlotConditionDiabetes, SlotConditionHypertension, SlotConditionCardio:
		return ValidateOption(slot, d, value, YesNo, true), nil
	}
	return map[string]any{slot: value}, nil
}

// validateLocation resolves the user's answer to the location question. A
// shared location pin from the messaging channel wins outright; otherwise
// the text is resolved through the places API when one is configured.
func validateLocation(ctx context.Context, d *model.Dispatcher, t *model.Tracker, sub Subject, value any, pc *places.Client) (map[string]any, error) {
	if coords, ok := pinnedLocation(&t.LatestMessage); ok {
		return map[string]any{
			sub.SlotName(SlotLocationCoords):  coords.point,
			sub.SlotName(SlotLocation):        coords.address,
			sub.SlotName(SlotLocationConfirm): "yes",
		}, nil
	}

	text := answerText(value)
	if text == "" {
		d.Utter("utter_incorrect_selection")
		return map[string]any{sub.SlotName(SlotLocation): nil}, nil
	}

	if pc == nil || !pc.IsConfigured() {
		return map[string]any{sub.SlotName(SlotLocation): text}, nil
	}

	sessionToken := strings.ReplaceAll(uuid.NewString(), "-", "")
	province := t.TextSlot(sub.SlotName(SlotProvince))

	var place *places.Place
	var err error
	for i := 0; i < 3; i++ {
		place, err = pc.Lookup(text, sessionToken, province)
		if err == nil {
			break
		}
	}
	if place == nil {
		d.Utter("utter_incorrect_location")
		return map[string]any{sub.SlotName(SlotLocation): nil}, nil
	}
	return map[string]any{
		sub.SlotName(SlotLocation):           place.FormattedAddress,
		sub.SlotName(SlotCityLocationCoords): geo.FormatPoint(place.Lat, place.Lng),
	}, nil
}

type pinned struct {
	point   string
	address string
}

// pinnedLocation reads a location pin from the message metadata.
func pinnedLocation(msg *model.Message) (pinned, bool) {
	if msg.Metadata["type"] != "location" {
		return pinned{}, false
	}
	loc, ok := msg.Metadata["location"].(map[string]any)
	if !ok {
		return pinned{}, false
	}
	lat, _ := loc["latitude"].(float64)
	lng, _ := loc["longitude"].(float64)
	address, _ := loc["address"].(string)
	if address == "" {
		address = fmt.Sprintf("GPS: %v, %v", lat, lng)
	}
	return pinned{point: geo.FormatPoint(lat, lng), address: address}, true
}

// validateLocationConfirm re-asks for the location when the user rejects the
// resolved address.
func validateLocationConfirm(d *model.Dispatcher, value any) map[string]any {
	updates := ValidateOption(SlotLocationConfirm, d, value, YesNo, true)
	if updates[SlotLocationConfirm] == "no" {
		return map[string]any{SlotLocationConfirm: nil, SlotLocation: nil}
	}
	return updates
}

func (b *BaseDeployment) RiskInputs(t *model.Tracker) (int, string, triage.AgeBucket) {
	answers := make(map[string]string, len(symptomSlots))
	for _, slot := range symptomSlots {
		answers[slot] = t.TextSlot(slot)
	}
	age := triage.NormalizeBucket(t.TextSlot(SlotAge))
	return triage.CountSymptoms(answers), t.TextSlot(SlotExposure), age
}

func (b *BaseDeployment) TriagePath() string {
	return eventstore.TriagePath
}

func (b *BaseDeployment) BuildPayload(t *model.Tracker, risk triage.Risk) (map[string]any, error) {
	return buildScreeningPayload(t, risk, Self)
}

// buildScreeningPayload assembles the fields common to every deployment's
// event store submission, reading the given subject's slots.
func buildScreeningPayload(t *model.Tracker, risk triage.Risk, sub Subject) (map[string]any, error) {
	location, err := geo.NormalizePoint(t.TextSlot(sub.SlotName(SlotLocationCoords)))
	if err != nil {
		return nil, err
	}
	cityLocation, err := geo.NormalizePoint(t.TextSlot(sub.SlotName(SlotCityLocationCoords)))
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"deduplication_id":      strings.ReplaceAll(uuid.NewString(), "-", ""),
		"msisdn":                "+" + strings.TrimLeft(t.SenderID, "+"),
		"source":                "WhatsApp",
		"province":              "ZA-" + strings.ToUpper(t.TextSlot(sub.SlotName(SlotProvince))),
		"city":                  t.TextSlot(sub.SlotName(SlotLocation)),
		"age":                   string(triage.NormalizeBucket(t.TextSlot(sub.SlotName(SlotAge)))),
		"fever":                 yesNoBool(t, sub.SlotName(SlotSymptomsFever)),
		"cough":                 yesNoBool(t, sub.SlotName(SlotSymptomsCough)),
		"sore_throat":           yesNoBool(t, sub.SlotName(SlotSymptomsSoreThroat)),
		"difficulty_breathing":  yesNoBool(t, sub.SlotName(SlotSymptomsBreathing)),
		"smell":                 yesNoBool(t, sub.SlotName(SlotSymptomsTasteSmell)),
		"exposure":              exposureReport[t.TextSlot(sub.SlotName(SlotExposure))],
		"tracing":               yesNoBool(t, sub.SlotName(SlotTracing)),
		"risk":                  string(risk),
		"gender":                genderReport[t.TextSlot(sub.SlotName(SlotGender))],
		"location":              location,
		"city_location":         cityLocation,
		"preexisting_condition": exposureReport[t.TextSlot(sub.SlotName(SlotMedicalCondition))],
		"data": map[string]any{
			"obesity":      yesNoBool(t, sub.SlotName(SlotConditionObesity)),
			"diabetes":     yesNoBool(t, sub.SlotName(SlotConditionDiabetes)),
			"hypertension": yesNoBool(t, sub.SlotName(SlotConditionHypertension)),
			"cardio":       yesNoBool(t, sub.SlotName(SlotConditionCardio)),
		},
	}, nil
}

// yesNoBool reports a yes/no slot as a boolean, or nil when unanswered.
func yesNoBool(t *model.Tracker, slot string) any {
	switch t.TextSlot(slot) {
	case "yes":
		return true
	case "no":
		return false
	}
	return nil
}

func (b *BaseDeployment) SendRisk(d *model.Dispatcher, risk triage.Risk, t *model.Tracker) {
	d.Utter("utter_risk_" + string(risk))
}

// SendFollowUps sends the TB screening prompts. High risk users are already
// being referred, so they get nothing extra.
func (b *BaseDeployment) SendFollowUps(d *model.Dispatcher, risk triage.Risk, t *model.Tracker) {
	switch risk {
	case triage.RiskModerate:
		if t.TextSlot(SlotSymptomsCough) == "yes" {
			d.Utter("utter_tb_prompt_cough")
		} else if t.TextSlot(SlotSymptomsFever) == "yes" {
			d.Utter("utter_tb_prompt_fever")
		}
		d.Utter("utter_tb_prompt_moderate")
	case triage.RiskLow:
		d.Utter("utter_tb_prompt_low_risk_1")
		d.Utter("utter_tb_prompt_low_risk_2")
	}
}

func (b *BaseDeployment) CarryOverSlots() []string {
	slots := []string{
		SlotTerms,
		SlotGender,
		SlotProvince,
		SlotLocation,
		SlotLocationConfirm,
		SlotMedicalCondition,
	}
	slots = append(slots, conditionSlots...)
	return append(slots, SlotLocationCoords, SlotCityLocationCoords)
}

func (b *BaseDeployment) SessionStartEvents(ctx context.Context, t *model.Tracker) ([]model.Event, error) {
	return nil, nil
}

// ageYears reads a numeric age slot, which may arrive as a string or a
// number depending on where it was filled from.
func ageYears(t *model.Tracker, slot string) (int, bool) {
	return t.IntSlot(slot)
}
