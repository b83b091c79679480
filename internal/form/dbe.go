package form

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/praekeltfoundation/healthcheckbot/internal/eventstore"
	"github.com/praekeltfoundation/healthcheckbot/internal/lookup"
	"github.com/praekeltfoundation/healthcheckbot/internal/model"
	"github.com/praekeltfoundation/healthcheckbot/internal/repository"
	"github.com/praekeltfoundation/healthcheckbot/internal/triage"
)

// Role values for the education deployment's profile question.
const (
	RoleLearner       = "learner"
	RoleEducator      = "educator"
	RoleParent        = "parent"
	RoleActualParent  = "actual_parent"
	RoleSupport       = "support"
	RoleMarker        = "marker"
	RoleExamAssistant = "exam_assistant"
)

var roleOptions = map[int]string{
	1: RoleLearner,
	2: RoleEducator,
	3: RoleParent,
	4: RoleActualParent,
	5: RoleSupport,
	6: RoleMarker,
	7: RoleExamAssistant,
}

var roleDisplay = map[string]string{
	RoleLearner:       "Learner",
	RoleEducator:      "Educator",
	RoleParent:        "Parents / Guardian on behalf of learner",
	RoleActualParent:  "Parent",
	RoleSupport:       "Support staff",
	RoleMarker:        "Marker",
	RoleExamAssistant: "Exam Assistant",
}

var changeDetailsOptions = map[int]string{
	1: "school name",
	2: "province",
	3: "role",
}

// LearnerProfileSource fetches the saved on-behalf-of profiles for a number.
// Invalidate drops any cached list so the next fetch is fresh.
type LearnerProfileSource interface {
	Profiles(ctx context.Context, msisdn string) ([]eventstore.OnBehalfProfile, error)
	Invalidate(ctx context.Context, msisdn string)
}

// DBEDeployment is the Department of Basic Education variant: users identify
// a role, search for their school or marking venue, and guardians can screen
// saved learners.
type DBEDeployment struct {
	BaseDeployment
	Schools         repository.SchoolRepo
	MarkingCentres  repository.MarkingCentreRepo
	LearnerProfiles LearnerProfileSource
	Now             func() time.Time
}

// sast is the bot's reporting timezone.
var sast = time.FixedZone("SAST", 2*60*60)

func (d *DBEDeployment) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().In(sast)
}

func (d *DBEDeployment) Subject(t *model.Tracker) Subject {
	if t.TextSlot(SlotProfile) == RoleParent {
		return OnBehalf
	}
	return Self
}

// profileSlotOrder builds the full ordered question list for the current
// role. Guardians answer an obo-prefixed mirror of the questions about the
// learner instead of themselves.
func (d *DBEDeployment) profileSlotOrder(t *model.Tracker) []string {
	sub := d.Subject(t)

	if sub == OnBehalf {
		slots := []string{SlotProfile, SlotSelectLearnerProfile, SlotOboName}
		slots = append(slots, sub.SlotNames(d.subjectSlots(t, sub))...)
		return slots
	}

	return append([]string{SlotProfile}, d.subjectSlots(t, sub)...)
}

// subjectSlots lists the unprefixed question order for whoever is being
// screened, gated on their answers so far.
func (d *DBEDeployment) subjectSlots(t *model.Tracker, sub Subject) []string {
	slots := []string{
		SlotAge,
		SlotGender,
		SlotProvince,
		SlotLocation,
		SlotLocationConfirm,
		SlotSchool,
		SlotSchoolConfirm,
		SlotMedicalCondition,
	}
	if t.TextSlot(sub.SlotName(SlotMedicalCondition)) != "no" {
		slots = append(slots, conditionSlots...)
		if d.extendedConditions(t) {
			slots = append(slots, extendedConditionSlots...)
		}
	}
	if d.asksPregnancy(t, sub) {
		slots = append(slots, SlotConditionPregnant)
	}
	return slots
}

// extendedConditions reports whether the extra comorbidity questions apply:
// they are asked about learners, whether self-screened or on behalf of.
func (d *DBEDeployment) extendedConditions(t *model.Tracker) bool {
	role := t.TextSlot(SlotProfile)
	return role == RoleLearner || role == RoleParent
}

// asksPregnancy reports whether the pregnancy question applies to the
// subject: female learners aged twelve and over.
func (d *DBEDeployment) asksPregnancy(t *model.Tracker, sub Subject) bool {
	if !d.extendedConditions(t) {
		return false
	}
	if t.TextSlot(sub.SlotName(SlotGender)) != "FEMALE" {
		return false
	}
	age, ok := ageYears(t, sub.SlotName(SlotAge))
	return ok && age >= 12
}

func (d *DBEDeployment) ProfileSlots(t *model.Tracker) []string {
	// Returning users confirm their carried-over details before anything
	// else, and can ask to change them.
	if t.TextSlot(SlotReturningUser) == "yes" {
		if !t.HasSlot(SlotConfirmDetails) && !t.HasSlot(SlotChangeDetails) {
			return []string{SlotConfirmDetails}
		}
		if t.TextSlot(SlotConfirmDetails) == "no" {
			return []string{SlotChangeDetails}
		}
	}
	return firstUnfilled(t, d.profileSlotOrder(t))
}

func (d *DBEDeployment) HealthCheckSlots(t *model.Tracker) []string {
	return firstUnfilled(t, d.Subject(t).SlotNames(symptomSlots))
}

func (d *DBEDeployment) ProfileMappings() map[string][]Mapping {
	m := d.BaseDeployment.ProfileMappings()
	m[SlotProfile] = numberThenText()
	m[SlotSchool] = []Mapping{FromText()}
	m[SlotSchoolConfirm] = yesNoMappings()
	m[SlotConfirmDetails] = yesNoMappings()
	m[SlotChangeDetails] = numberThenText()
	m[SlotSelectLearnerProfile] = numberThenText()
	m[SlotOboName] = []Mapping{FromText()}
	m[SlotConditionPregnant] = yesNoMappings()
	for _, slot := range extendedConditionSlots {
		m[slot] = yesNoMappings()
	}
	for slot, mappings := range d.BaseDeployment.ProfileMappings() {
		m[oboPrefix+slot] = mappings
	}
	m[oboPrefix+SlotSchool] = []Mapping{FromText()}
	m[oboPrefix+SlotSchoolConfirm] = yesNoMappings()
	m[oboPrefix+SlotConditionPregnant] = yesNoMappings()
	for _, slot := range extendedConditionSlots {
		m[oboPrefix+slot] = yesNoMappings()
	}
	return m
}

func (d *DBEDeployment) HealthCheckMappings() map[string][]Mapping {
	m := d.BaseDeployment.HealthCheckMappings()
	for slot, mappings := range d.BaseDeployment.HealthCheckMappings() {
		m[oboPrefix+slot] = mappings
	}
	return m
}

func (d *DBEDeployment) ValidateProfileSlot(ctx context.Context, disp *model.Dispatcher, t *model.Tracker, slot string, value any) (map[string]any, error) {
	switch slot {
	case SlotProfile:
		return d.validateProfile(ctx, disp, t, value)
	case SlotSelectLearnerProfile:
		return d.validateSelectLearnerProfile(disp, t, value), nil
	case SlotConfirmDetails:
		return ValidateOption(SlotConfirmDetails, disp, value, YesNo, true), nil
	case SlotChangeDetails:
		return d.validateChangeDetails(disp, value), nil
	}

	sub, base := splitSubject(slot)
	updates, err := d.validateSubjectSlot(ctx, disp, t, sub, base, value)
	if err != nil {
		return nil, err
	}
	return prefixKeys(updates, sub), nil
}

// validateSubjectSlot validates the unprefixed questions. Updates come back
// with unprefixed keys and are mapped to the subject by the caller.
func (d *DBEDeployment) validateSubjectSlot(ctx context.Context, disp *model.Dispatcher, t *model.Tracker, sub Subject, base string, value any) (map[string]any, error) {
	switch base {
	case SlotAge:
		return validateNumericAge(disp, value), nil
	case SlotProvince:
		updates := ValidateOption(SlotProvince, disp, value, d.Tables.Provinces, true)
		if code, ok := updates[SlotProvince].(string); ok {
			updates[SlotProvinceDisplay] = lookup.ProvinceDisplay[code]
		}
		return updates, nil
	case SlotLocation:
		updates, err := validateLocation(ctx, disp, t, sub, value, d.Places)
		if err != nil {
			return nil, err
		}
		// Already subject-prefixed; strip so the caller's prefixing
		// does not double up.
		return stripKeys(updates, sub), nil
	case SlotSchool:
		return d.validateSchool(ctx, disp, t, sub, value)
	case SlotSchoolConfirm:
		updates := ValidateOption(SlotSchoolConfirm, disp, value, YesNo, true)
		if updates[SlotSchoolConfirm] == "no" {
			return map[string]any{SlotSchool: nil, SlotSchoolConfirm: nil}, nil
		}
		return updates, nil
	case SlotConditionPregnant:
		updates := ValidateOption(SlotConditionPregnant, disp, value, YesNo, true)
		if updates[SlotConditionPregnant] == "yes" {
			if sub == OnBehalf {
				disp.Utter("utter_obo_pregnant_yes")
			} else {
				disp.Utter("utter_pregnant_yes")
			}
		}
		return updates, nil
	case SlotConditionAsthma, SlotConditionTB, SlotConditionRespiratory,
		SlotConditionCardiac, SlotConditionImmuno:
		return ValidateOption(base, disp, value, YesNo, true), nil
	}
	return d.BaseDeployment.ValidateProfileSlot(ctx, disp, t, base, value)
}

// validateNumericAge accepts an exact age in years rather than a bucket.
func validateNumericAge(disp *model.Dispatcher, value any) map[string]any {
	text := answerText(value)
	n, err := strconv.Atoi(text)
	if err != nil || n <= 0 || n >= 150 {
		disp.Utter("utter_incorrect_selection")
		return map[string]any{SlotAge: nil}
	}
	return map[string]any{SlotAge: text}
}

// facilityPhrases fills the wording of the school question for the role:
// markers and exam assistants attend a facility rather than their school.
func facilityPhrases(role string) map[string]any {
	if role == RoleMarker || role == RoleExamAssistant {
		return map[string]any{
			SlotFacilityPhrase1: "the facility, school OR school's EMIS number.",
			SlotFacilityPhrase2: "facility or school",
		}
	}
	return map[string]any{
		SlotFacilityPhrase1: "your school OR your school's EMIS number. (Type OTHER " +
			"if you are not visiting a school)",
		SlotFacilityPhrase2: "school",
	}
}

func (d *DBEDeployment) validateProfile(ctx context.Context, disp *model.Dispatcher, t *model.Tracker, value any) (map[string]any, error) {
	// Role numbers only. Free-text labels like "parent" are ambiguous
	// between the two parent roles, so they are not accepted.
	updates := ValidateOption(SlotProfile, disp, value, roleOptions, false)
	role, _ := updates[SlotProfile].(string)
	if role != "" {
		updates[SlotProfileDisplay] = roleDisplay[role]
	}

	if role == RoleParent {
		profileSlots, err := d.learnerProfileSlots(ctx, t.SenderID)
		if err != nil {
			return nil, err
		}
		for k, v := range profileSlots {
			updates[k] = v
		}
	}

	for k, v := range facilityPhrases(role) {
		updates[k] = v
	}
	return updates, nil
}

// learnerProfileSlots fetches the saved profiles for the sender and builds
// the selection list shown to guardians.
func (d *DBEDeployment) learnerProfileSlots(ctx context.Context, senderID string) (map[string]any, error) {
	profiles, err := d.LearnerProfiles.Profiles(ctx, NormalizeMSISDN(senderID))
	if err != nil {
		return nil, fmt.Errorf("fetch learner profiles: %w", err)
	}

	slots := map[string]any{
		SlotLearnerProfiles:        profileSlotValues(profiles),
		SlotDisplayLearnerProfiles: profileOptionList(profiles),
	}
	if len(profiles) == 0 {
		slots[SlotSelectLearnerProfile] = "new"
	}
	return slots, nil
}

// profileOptionList renders the numbered list of saved profiles, with a
// final option to start fresh.
func profileOptionList(profiles []eventstore.OnBehalfProfile) string {
	lines := make([]string, 0, len(profiles)+1)
	for i, p := range profiles {
		lines = append(lines, fmt.Sprintf("*%d.* %s", i+1, p.Name))
	}
	lines = append(lines, fmt.Sprintf("*%d.* New HealthCheck", len(profiles)+1))
	return strings.Join(lines, "\n")
}

func (d *DBEDeployment) validateSelectLearnerProfile(disp *model.Dispatcher, t *model.Tracker, value any) map[string]any {
	profiles := trackerProfiles(t)

	table := make(map[int]string, len(profiles)+1)
	for i, p := range profiles {
		table[i+1] = p.Name
	}
	table[len(profiles)+1] = "new"

	text := answerText(value)
	selected := ""
	stored := text
	if n, err := strconv.Atoi(text); err == nil {
		// Numbered answers store the canonical name.
		selected = table[n]
		stored = selected
	} else {
		for _, name := range table {
			if strings.EqualFold(name, text) {
				selected = name
				break
			}
		}
	}
	if selected == "" {
		disp.Utter("utter_incorrect_selection")
		return map[string]any{SlotSelectLearnerProfile: nil}
	}
	if strings.EqualFold(selected, "new") {
		return map[string]any{SlotSelectLearnerProfile: "new"}
	}

	for _, p := range profiles {
		if p.Name == selected {
			updates := oboSlotsFromProfile(p)
			updates[SlotSelectLearnerProfile] = stored
			return updates
		}
	}
	disp.Utter("utter_incorrect_selection")
	return map[string]any{SlotSelectLearnerProfile: nil}
}

// oboSlotsFromProfile maps a stored profile back onto the on-behalf-of form
// slots, reversing the event store report formats.
func oboSlotsFromProfile(p eventstore.OnBehalfProfile) map[string]any {
	var age any
	if p.Age != nil {
		age = *p.Age
	}
	var emis any
	if p.SchoolEmis != nil {
		emis = *p.SchoolEmis
	}
	return map[string]any{
		SlotOboName:                              p.Name,
		oboPrefix + SlotAge:                      age,
		oboPrefix + SlotGender:                   reverseGender(p.Gender),
		oboPrefix + SlotProvince:                 strings.ToLower(strings.TrimPrefix(p.Province, "ZA-")),
		oboPrefix + SlotLocation:                 p.City,
		oboPrefix + SlotLocationConfirm:          "yes",
		oboPrefix + SlotLocationCoords:           p.Location,
		oboPrefix + SlotCityLocationCoords:       p.CityLocation,
		oboPrefix + SlotSchool:                   p.School,
		oboPrefix + SlotSchoolConfirm:            "yes",
		oboPrefix + SlotSchoolEMIS:               emis,
		oboPrefix + SlotMedicalCondition:         reverseThreeWay(p.PreexistingCondition),
		oboPrefix + SlotConditionObesity:         boolAnswer(p.Obesity),
		oboPrefix + SlotConditionDiabetes:        boolAnswer(p.Diabetes),
		oboPrefix + SlotConditionHypertension:    boolAnswer(p.Hypertension),
		oboPrefix + SlotConditionCardio:          boolAnswer(p.Cardio),
		oboPrefix + SlotConditionAsthma:          boolAnswer(p.Asthma),
		oboPrefix + SlotConditionTB:              boolAnswer(p.TB),
		oboPrefix + SlotConditionPregnant:        nil,
		oboPrefix + SlotConditionRespiratory:     boolAnswer(p.Respiratory),
		oboPrefix + SlotConditionCardiac:         boolAnswer(p.Cardiac),
		oboPrefix + SlotConditionImmuno:          boolAnswer(p.Immuno),
	}
}

func boolAnswer(v *bool) any {
	if v == nil {
		return nil
	}
	if *v {
		return "yes"
	}
	return "no"
}

func reverseGender(report string) any {
	for label, value := range genderReport {
		if value == report {
			return label
		}
	}
	return nil
}

func reverseThreeWay(report string) any {
	for label, value := range exposureReport {
		if value == report {
			return label
		}
	}
	return nil
}

func (d *DBEDeployment) validateSchool(ctx context.Context, disp *model.Dispatcher, t *model.Tracker, sub Subject, value any) (map[string]any, error) {
	// An EMIS number typed as digits arrives as a number entity.
	text := answerText(value)
	if strings.EqualFold(strings.TrimSpace(text), "other") {
		return map[string]any{
			SlotSchool:        "OTHER",
			SlotSchoolEMIS:    nil,
			SlotSchoolConfirm: "yes",
		}, nil
	}

	province := t.TextSlot(sub.SlotName(SlotProvince))
	role := t.TextSlot(SlotProfile)

	if role == RoleMarker || role == RoleExamAssistant {
		centre, err := d.MarkingCentres.Search(ctx, text, province)
		if err != nil {
			return nil, fmt.Errorf("marking centre search: %w", err)
		}
		if centre == nil {
			disp.Utter("utter_incorrect_school")
			return map[string]any{SlotSchool: nil, SlotProvince: nil}, nil
		}
		return map[string]any{SlotSchool: centre.Name, SlotSchoolEMIS: nil}, nil
	}

	school, err := d.Schools.Search(ctx, text, province)
	if err != nil {
		return nil, fmt.Errorf("school search: %w", err)
	}
	if school == nil {
		// The wrong province is the usual cause of a miss, so it is
		// cleared along with the search text.
		disp.Utter("utter_incorrect_school")
		return map[string]any{SlotSchool: nil, SlotProvince: nil}, nil
	}
	return map[string]any{SlotSchool: school.Name, SlotSchoolEMIS: school.EMIS}, nil
}

func (d *DBEDeployment) validateChangeDetails(disp *model.Dispatcher, value any) map[string]any {
	updates := ValidateOption(SlotChangeDetails, disp, value, changeDetailsOptions, true)
	switch updates[SlotChangeDetails] {
	case "school name":
		return map[string]any{
			SlotChangeDetails:  "school name",
			SlotConfirmDetails: nil,
			SlotSchool:         nil,
			SlotSchoolConfirm:  nil,
		}
	case "province":
		return map[string]any{
			SlotChangeDetails:  "province",
			SlotConfirmDetails: nil,
			SlotProvince:       nil,
		}
	case "role":
		return resetAllDetails()
	}
	return updates
}

// resetAllDetails clears the whole profile and screening state so the user
// starts over from the role question.
func resetAllDetails() map[string]any {
	updates := map[string]any{
		SlotConfirmDetails:         nil,
		SlotChangeDetails:          nil,
		SlotReturningUser:          nil,
		SlotProfile:                nil,
		SlotProfileDisplay:         nil,
		SlotProvinceDisplay:        nil,
		SlotSchool:                 nil,
		SlotSchoolConfirm:          nil,
		SlotSchoolEMIS:             nil,
		SlotLearnerProfiles:        nil,
		SlotSelectLearnerProfile:   nil,
		SlotDisplayLearnerProfiles: nil,
		SlotOboName:                nil,
	}
	for _, sub := range []Subject{Self, OnBehalf} {
		for _, slot := range []string{
			SlotAge, SlotGender, SlotProvince, SlotLocation,
			SlotLocationConfirm, SlotLocationCoords, SlotCityLocationCoords,
			SlotMedicalCondition, SlotConditionPregnant,
		} {
			updates[sub.SlotName(slot)] = nil
		}
		for _, slot := range conditionSlots {
			updates[sub.SlotName(slot)] = nil
		}
		for _, slot := range extendedConditionSlots {
			updates[sub.SlotName(slot)] = nil
		}
		for _, slot := range symptomSlots {
			updates[sub.SlotName(slot)] = nil
		}
	}
	// The self subject has no obo name/school mirror entries above.
	updates[oboPrefix+SlotSchool] = nil
	updates[oboPrefix+SlotSchoolConfirm] = nil
	updates[oboPrefix+SlotSchoolEMIS] = nil
	return updates
}

func (d *DBEDeployment) RiskInputs(t *model.Tracker) (int, string, triage.AgeBucket) {
	sub := d.Subject(t)
	answers := make(map[string]string, len(symptomSlots))
	for _, slot := range symptomSlots {
		answers[slot] = t.TextSlot(sub.SlotName(slot))
	}
	age := triage.AgeBucket("")
	if years, ok := ageYears(t, sub.SlotName(SlotAge)); ok {
		age = triage.BucketYears(years)
	}
	return triage.CountSymptoms(answers), t.TextSlot(sub.SlotName(SlotExposure)), age
}

func (d *DBEDeployment) TriagePath() string {
	return eventstore.TriagePathDBE
}

func (d *DBEDeployment) BuildPayload(t *model.Tracker, risk triage.Risk) (map[string]any, error) {
	sub := d.Subject(t)
	payload, err := buildScreeningPayload(t, risk, sub)
	if err != nil {
		return nil, err
	}

	if years, ok := ageYears(t, sub.SlotName(SlotAge)); ok {
		payload["age"] = string(triage.BucketYears(years))
	}

	data := payload["data"].(map[string]any)
	// The exact age goes through as given. A reused learner profile holds it
	// as a number rather than a digit string.
	data["age"] = t.Slot(sub.SlotName(SlotAge))
	data["school_name"] = t.TextSlot(sub.SlotName(SlotSchool))
	data["school_emis"] = t.Slot(sub.SlotName(SlotSchoolEMIS))
	data["profile"] = t.TextSlot(SlotProfile)
	data["asthma"] = yesNoBool(t, sub.SlotName(SlotConditionAsthma))
	data["tb"] = yesNoBool(t, sub.SlotName(SlotConditionTB))
	data["pregnant"] = yesNoBool(t, sub.SlotName(SlotConditionPregnant))
	data["respiratory"] = yesNoBool(t, sub.SlotName(SlotConditionRespiratory))
	data["cardiac"] = yesNoBool(t, sub.SlotName(SlotConditionCardiac))
	data["immuno"] = yesNoBool(t, sub.SlotName(SlotConditionImmuno))
	if sub == OnBehalf {
		data["name"] = t.TextSlot(SlotOboName)
	}
	return payload, nil
}

// riskTimestamps formats the pass issue and expiry times shown with the
// result. Passes are valid for one day.
func riskTimestamps(now time.Time) map[string]string {
	const layout = "January 2, 2006, 3:04 PM"
	return map[string]string{
		"issued":  now.Format(layout),
		"expired": now.Add(24 * time.Hour).Format(layout),
	}
}

func (d *DBEDeployment) SendRisk(disp *model.Dispatcher, risk triage.Risk, t *model.Tracker) {
	template := "utter_risk_" + string(risk)
	switch t.TextSlot(SlotProfile) {
	case RoleParent:
		template = "utter_obo_risk_" + string(risk)
	case RoleActualParent:
		template = "utter_risk_" + string(risk) + "_parent"
	case RoleEducator, RoleSupport, RoleMarker, RoleExamAssistant:
		template = "utter_risk_" + string(risk) + "_support"
	}
	disp.UtterVars(template, riskTimestamps(d.now()))
}

// SendFollowUps is a no-op: the education deployment's passes carry their
// own follow-up instructions.
func (d *DBEDeployment) SendFollowUps(disp *model.Dispatcher, risk triage.Risk, t *model.Tracker) {}

func (d *DBEDeployment) CarryOverSlots() []string {
	slots := d.BaseDeployment.CarryOverSlots()
	return append(slots,
		SlotProfile, SlotProfileDisplay,
		SlotSchool, SlotSchoolEMIS, SlotSchoolConfirm,
	)
}

func (d *DBEDeployment) SessionStartEvents(ctx context.Context, t *model.Tracker) ([]model.Event, error) {
	var events []model.Event

	if province := t.TextSlot(SlotProvince); province != "" {
		events = append(events, model.SlotSet(SlotProvinceDisplay, lookup.ProvinceDisplay[province]))
	}
	if t.HasSlot(SlotSchool) {
		events = append(events, model.SlotSet(SlotReturningUser, "yes"))
	}

	// Guardian profiles are refreshed each session so newly registered
	// learners appear in the list.
	if t.TextSlot(SlotProfile) == RoleParent {
		d.LearnerProfiles.Invalidate(ctx, NormalizeMSISDN(t.SenderID))
		slots, err := d.learnerProfileSlots(ctx, t.SenderID)
		if err != nil {
			log.Printf("learner profile refresh failed: %v", err)
		} else {
			for _, k := range sortedKeys(slots) {
				events = append(events, model.SlotSet(k, slots[k]))
			}
		}
	}
	return events, nil
}

// trackerProfiles reads the cached learner profile list back off the
// tracker, tolerating the JSON round trip through the framework.
func trackerProfiles(t *model.Tracker) []eventstore.OnBehalfProfile {
	raw, ok := t.Slot(SlotLearnerProfiles).([]any)
	if !ok {
		return nil
	}
	profiles := make([]eventstore.OnBehalfProfile, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		profiles = append(profiles, profileFromSlot(m))
	}
	return profiles
}

func profileFromSlot(m map[string]any) eventstore.OnBehalfProfile {
	p := eventstore.OnBehalfProfile{}
	p.Name, _ = m["name"].(string)
	p.Gender, _ = m["gender"].(string)
	p.Province, _ = m["province"].(string)
	p.City, _ = m["city"].(string)
	p.CityLocation, _ = m["city_location"].(string)
	p.Location, _ = m["location"].(string)
	p.School, _ = m["school"].(string)
	p.PreexistingCondition, _ = m["preexisting_condition"].(string)
	if age, ok := m["age"].(float64); ok {
		years := int(age)
		p.Age = &years
	}
	if emis, ok := m["school_emis"].(string); ok {
		p.SchoolEmis = &emis
	}
	p.Obesity = slotBool(m["obesity"])
	p.Diabetes = slotBool(m["diabetes"])
	p.Hypertension = slotBool(m["hypertension"])
	p.Cardio = slotBool(m["cardio"])
	p.Asthma = slotBool(m["asthma"])
	p.TB = slotBool(m["tb"])
	p.Respiratory = slotBool(m["respiratory"])
	p.Cardiac = slotBool(m["cardiac"])
	p.Immuno = slotBool(m["immuno"])
	return p
}

func slotBool(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

// profileSlotValues converts profiles to plain JSON-shaped values for slot
// storage.
func profileSlotValues(profiles []eventstore.OnBehalfProfile) []any {
	out := make([]any, 0, len(profiles))
	for _, p := range profiles {
		m := map[string]any{
			"name":                  p.Name,
			"gender":                p.Gender,
			"province":              p.Province,
			"city":                  p.City,
			"city_location":         p.CityLocation,
			"location":              p.Location,
			"school":                p.School,
			"preexisting_condition": p.PreexistingCondition,
		}
		if p.Age != nil {
			m["age"] = float64(*p.Age)
		}
		if p.SchoolEmis != nil {
			m["school_emis"] = *p.SchoolEmis
		}
		for key, v := range map[string]*bool{
			"obesity": p.Obesity, "diabetes": p.Diabetes,
			"hypertension": p.Hypertension, "cardio": p.Cardio,
			"asthma": p.Asthma, "tb": p.TB,
			"respiratory": p.Respiratory, "cardiac": p.Cardiac,
			"immuno": p.Immuno,
		} {
			if v != nil {
				m[key] = *v
			}
		}
		out = append(out, m)
	}
	return out
}

// prefixKeys maps unprefixed update keys to the subject's slots.
func prefixKeys(updates map[string]any, sub Subject) map[string]any {
	if sub == Self {
		return updates
	}
	out := make(map[string]any, len(updates))
	for k, v := range updates {
		out[sub.SlotName(k)] = v
	}
	return out
}

// stripKeys undoes subject prefixing on update keys.
func stripKeys(updates map[string]any, sub Subject) map[string]any {
	if sub == Self {
		return updates
	}
	out := make(map[string]any, len(updates))
	for k, v := range updates {
		_, base := splitSubject(k)
		out[base] = v
	}
	return out
}

// NormalizeMSISDN renders a sender ID as an E.164 South African number.
func NormalizeMSISDN(msisdn string) string {
	msisdn = strings.TrimSpace(msisdn)
	msisdn = strings.ReplaceAll(msisdn, " ", "")
	if strings.HasPrefix(msisdn, "+") {
		return msisdn
	}
	if strings.HasPrefix(msisdn, "0") {
		return "+27" + msisdn[1:]
	}
	return "+" + msisdn
}
