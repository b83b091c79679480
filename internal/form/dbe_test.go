package form

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praekeltfoundation/healthcheckbot/internal/eventstore"
	"github.com/praekeltfoundation/healthcheckbot/internal/model"
	"github.com/praekeltfoundation/healthcheckbot/internal/triage"
)

type fakeSchoolRepo struct {
	schools []model.School
}

func (r *fakeSchoolRepo) Search(ctx context.Context, name, province string) (*model.School, error) {
	for _, s := range r.schools {
		if province != "" && s.Province != province {
			continue
		}
		return &s, nil
	}
	return nil, nil
}

func (r *fakeSchoolRepo) Insert(ctx context.Context, schools []model.School) error {
	r.schools = append(r.schools, schools...)
	return nil
}

func (r *fakeSchoolRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeCentreRepo struct {
	centres []model.MarkingCentre
}

func (r *fakeCentreRepo) Search(ctx context.Context, name, province string) (*model.MarkingCentre, error) {
	for _, c := range r.centres {
		return &c, nil
	}
	return nil, nil
}

func (r *fakeCentreRepo) Insert(ctx context.Context, centres []model.MarkingCentre) error {
	r.centres = append(r.centres, centres...)
	return nil
}

func (r *fakeCentreRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeProfileSource struct {
	profiles    []eventstore.OnBehalfProfile
	msisdn      string
	invalidated string
}

func (s *fakeProfileSource) Profiles(ctx context.Context, msisdn string) ([]eventstore.OnBehalfProfile, error) {
	s.msisdn = msisdn
	return s.profiles, nil
}

func (s *fakeProfileSource) Invalidate(ctx context.Context, msisdn string) {
	s.invalidated = msisdn
}

func newDBE() *DBEDeployment {
	return &DBEDeployment{
		BaseDeployment: BaseDeployment{Tables: testTables()},
		Schools: &fakeSchoolRepo{schools: []model.School{
			{Name: "BERGVLIET HIGH SCHOOL", EMIS: "105310201", Province: "wc"},
		}},
		MarkingCentres:  &fakeCentreRepo{centres: []model.MarkingCentre{{Name: "PAARL GIM", Province: "wc"}}},
		LearnerProfiles: &fakeProfileSource{},
		Now: func() time.Time {
			return time.Date(2020, 1, 2, 3, 4, 5, 0, time.FixedZone("SAST", 2*60*60))
		},
	}
}

func TestDBEValidateAge(t *testing.T) {
	d := newDBE()
	ctx := context.Background()

	updates, err := d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotAge, "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"age": "1"}, updates)

	// A number entity arrives as a JSON number.
	updates, err = d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotAge, 12.0)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"age": "12"}, updates)

	for _, bad := range []string{"0", "150", "abc"} {
		updates, err = d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotAge, bad)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"age": nil}, updates, bad)
	}
}

func TestDBEValidateProvinceDisplay(t *testing.T) {
	d := newDBE()
	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tracker(nil), SlotProvince, "wc")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"province": "wc", "province_display": "WESTERN CAPE"}, updates)
}

func TestDBEValidateSchool(t *testing.T) {
	d := newDBE()
	tr := tracker(map[string]any{"province": "wc"})

	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tr, SlotSchool, "bergvleet")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"school":      "BERGVLIET HIGH SCHOOL",
		"school_emis": "105310201",
	}, updates)
}

func TestDBEValidateSchoolNumberEntity(t *testing.T) {
	// An EMIS number typed as digits is extracted as a number entity.
	d := newDBE()
	tr := tracker(map[string]any{"province": "wc"})

	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tr, SlotSchool, 105310201.0)
	require.NoError(t, err)
	assert.Equal(t, "BERGVLIET HIGH SCHOOL", updates["school"])
}

func TestDBEValidateSchoolOther(t *testing.T) {
	d := newDBE()
	tr := tracker(map[string]any{"province": "wc"})

	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tr, SlotSchool, "OthER ")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"school":         "OTHER",
		"school_emis":    nil,
		"school_confirm": "yes",
	}, updates)
}

func TestDBEValidateSchoolNoResults(t *testing.T) {
	d := newDBE()
	d.Schools = &fakeSchoolRepo{}
	disp := &model.Dispatcher{}
	tr := tracker(map[string]any{"province": "gt"})

	updates, err := d.ValidateProfileSlot(context.Background(), disp, tr, SlotSchool, "bergvleet")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"school": nil, "province": nil}, updates)
	assert.Equal(t, []model.Response{{Template: "utter_incorrect_school"}}, disp.Messages)
}

func TestDBEValidateSchoolMarker(t *testing.T) {
	d := newDBE()
	tr := tracker(map[string]any{"province": "wc", "profile": "marker"})

	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tr, SlotSchool, "paarl")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"school": "PAARL GIM", "school_emis": nil}, updates)
}

func TestDBEValidateSchoolConfirm(t *testing.T) {
	d := newDBE()
	ctx := context.Background()

	updates, err := d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotSchoolConfirm, "no")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"school": nil, "school_confirm": nil}, updates)

	updates, err = d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotSchoolConfirm, "yes")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"school_confirm": "yes"}, updates)
}

func TestDBEValidateConfirmDetails(t *testing.T) {
	d := newDBE()
	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tracker(nil), SlotConfirmDetails, "yes")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"confirm_details": "yes"}, updates)
}

func TestDBEValidateChangeDetails(t *testing.T) {
	d := newDBE()
	ctx := context.Background()

	updates, err := d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotChangeDetails, "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"change_details":  "school name",
		"confirm_details": nil,
		"school":          nil,
		"school_confirm":  nil,
	}, updates)

	updates, err = d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotChangeDetails, "2")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"change_details":  "province",
		"confirm_details": nil,
		"province":        nil,
	}, updates)
}

func TestDBEValidateChangeDetailsRole(t *testing.T) {
	d := newDBE()
	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tracker(nil), SlotChangeDetails, "3")
	require.NoError(t, err)

	// Changing role starts over: everything is cleared.
	assert.Nil(t, updates["change_details"])
	assert.Nil(t, updates["profile"])
	assert.Nil(t, updates["returning_user"])
	for _, slot := range []string{
		"age", "gender", "province", "province_display", "school", "school_emis",
		"medical_condition_pregnant", "symptoms_fever", "exposure", "tracing",
		"obo_name", "obo_age", "obo_school", "obo_symptoms_fever", "obo_exposure",
		"learner_profiles", "select_learner_profile", "display_learner_profiles",
	} {
		v, present := updates[slot]
		assert.True(t, present, slot)
		assert.Nil(t, v, slot)
	}
}

func TestDBEValidateProfile(t *testing.T) {
	d := newDBE()
	ctx := context.Background()

	updates, err := d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotProfile, "4")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"profile":         "actual_parent",
		"profile_display": "Parent",
		"facility_phrase_1": "your school OR your school's EMIS number. (Type OTHER " +
			"if you are not visiting a school)",
		"facility_phrase_2": "school",
	}, updates)

	// Labels are not accepted: "parent" is ambiguous between roles.
	updates, err = d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotProfile, "parent")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"profile": nil,
		"facility_phrase_1": "your school OR your school's EMIS number. (Type OTHER " +
			"if you are not visiting a school)",
		"facility_phrase_2": "school",
	}, updates)

	updates, err = d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), SlotProfile, "6")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"profile":           "marker",
		"profile_display":   "Marker",
		"facility_phrase_1": "the facility, school OR school's EMIS number.",
		"facility_phrase_2": "facility or school",
	}, updates)
}

func TestDBEValidateProfileParentFetchesLearners(t *testing.T) {
	d := newDBE()
	src := d.LearnerProfiles.(*fakeProfileSource)

	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tracker(nil), SlotProfile, "3")
	require.NoError(t, err)
	assert.Equal(t, "+27820001001", src.msisdn)
	assert.Equal(t, "parent", updates["profile"])
	assert.Equal(t, "Parents / Guardian on behalf of learner", updates["profile_display"])
	assert.Equal(t, []any{}, updates["learner_profiles"])
	assert.Equal(t, "*1.* New HealthCheck", updates["display_learner_profiles"])
	assert.Equal(t, "new", updates["select_learner_profile"])
}

func TestDBEValidateSelectLearnerProfileNumberEntity(t *testing.T) {
	d := newDBE()
	age := 12
	tr := tracker(map[string]any{
		"learner_profiles": profileSlotValues([]eventstore.OnBehalfProfile{{Name: "thabo", Age: &age}}),
	})

	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tr, SlotSelectLearnerProfile, 1.0)
	require.NoError(t, err)
	assert.Equal(t, "thabo", updates["select_learner_profile"])
}

func TestDBEValidateSelectLearnerProfile(t *testing.T) {
	d := newDBE()
	age := 12
	emis := "123456"
	tr := tracker(map[string]any{
		"learner_profiles": profileSlotValues([]eventstore.OnBehalfProfile{{
			Name:                 "thabo",
			Age:                  &age,
			Gender:               "not_say",
			Province:             "ZA-WC",
			City:                 "Cape Town",
			Location:             "",
			CityLocation:         "+12-34/",
			School:               "Bergvliet High School",
			SchoolEmis:           &emis,
			PreexistingCondition: "not_sure",
			Diabetes:             ptr(false),
			Hypertension:         ptr(true),
			Cardio:               ptr(false),
		}}),
	})

	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tr, SlotSelectLearnerProfile, "Thabo")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"obo_name":                           "thabo",
		"obo_age":                            12,
		"obo_gender":                         "RATHER NOT SAY",
		"obo_province":                       "wc",
		"obo_location":                       "Cape Town",
		"obo_location_confirm":               "yes",
		"obo_location_coords":                "",
		"obo_city_location_coords":           "+12-34/",
		"obo_school":                         "Bergvliet High School",
		"obo_school_confirm":                 "yes",
		"obo_school_emis":                    "123456",
		"obo_medical_condition":              "not sure",
		"obo_medical_condition_obesity":      nil,
		"obo_medical_condition_diabetes":     "no",
		"obo_medical_condition_hypertension": "yes",
		"obo_medical_condition_cardio":       "no",
		"obo_medical_condition_asthma":       nil,
		"obo_medical_condition_tb":           nil,
		"obo_medical_condition_pregnant":     nil,
		"obo_medical_condition_respiratory":  nil,
		"obo_medical_condition_cardiac":      nil,
		"obo_medical_condition_immuno":       nil,
		"select_learner_profile":             "Thabo",
	}, updates)
}

func TestDBEValidateSelectLearnerProfileNew(t *testing.T) {
	d := newDBE()
	tr := tracker(map[string]any{"learner_profiles": []any{}})

	updates, err := d.ValidateProfileSlot(context.Background(), &model.Dispatcher{}, tr, SlotSelectLearnerProfile, "1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"select_learner_profile": "new"}, updates)
}

func TestDBEValidatePregnant(t *testing.T) {
	d := newDBE()
	ctx := context.Background()

	disp := &model.Dispatcher{}
	_, err := d.ValidateProfileSlot(ctx, disp, tracker(nil), SlotConditionPregnant, "no")
	require.NoError(t, err)
	assert.Empty(t, disp.Messages)

	disp = &model.Dispatcher{}
	_, err = d.ValidateProfileSlot(ctx, disp, tracker(nil), SlotConditionPregnant, "yes")
	require.NoError(t, err)
	assert.Equal(t, []model.Response{{Template: "utter_pregnant_yes"}}, disp.Messages)

	disp = &model.Dispatcher{}
	updates, err := d.ValidateProfileSlot(ctx, disp, tracker(nil), oboPrefix+SlotConditionPregnant, "yes")
	require.NoError(t, err)
	assert.Equal(t, []model.Response{{Template: "utter_obo_pregnant_yes"}}, disp.Messages)
	assert.Equal(t, map[string]any{"obo_medical_condition_pregnant": "yes"}, updates)
}

func TestDBEOboValidatorRemapping(t *testing.T) {
	d := newDBE()
	ctx := context.Background()

	updates, err := d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), oboPrefix+SlotAge, "22")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"obo_age": "22"}, updates)

	// No places key configured: the location text is taken verbatim.
	updates, err = d.ValidateProfileSlot(ctx, &model.Dispatcher{}, tracker(nil), oboPrefix+SlotLocation, "cape town")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"obo_location": "cape town"}, updates)
}

func TestDBERequiredSlots(t *testing.T) {
	d := newDBE()

	assert.Equal(t, []string{"profile"}, d.ProfileSlots(tracker(nil)))

	tr := tracker(map[string]any{"profile": "educator"})
	assert.Equal(t, []string{"age"}, d.ProfileSlots(tr))

	tr = tracker(map[string]any{"profile": "parent", "select_learner_profile": "new"})
	assert.Equal(t, []string{"obo_name"}, d.ProfileSlots(tr))
}

func TestDBERequiredSlotsReturningUser(t *testing.T) {
	d := newDBE()
	tr := tracker(map[string]any{
		"province_display": "WESTERN CAPE",
		"school":           "BERGVLIET HIGH SCHOOL",
		"returning_user":   "yes",
	})
	assert.Equal(t, []string{"confirm_details"}, d.ProfileSlots(tr))

	tr.Slots["confirm_details"] = "yes"
	tr.Slots["profile"] = "learner"
	assert.Equal(t, []string{"age"}, d.ProfileSlots(tr))

	tr.Slots["confirm_details"] = "no"
	assert.Equal(t, []string{"change_details"}, d.ProfileSlots(tr))
}

func TestDBEParentFormComplete(t *testing.T) {
	d := newDBE()
	tr := tracker(map[string]any{
		"profile":                           "parent",
		"select_learner_profile":            "Thabo",
		"obo_name":                          "Thabo",
		"obo_age":                           "23",
		"obo_gender":                        "male",
		"obo_province":                      "wc",
		"obo_location":                      "cape town",
		"obo_location_confirm":              "yes",
		"obo_school":                        "BERGVLIET HIGH SCHOOL",
		"obo_school_confirm":                "yes",
		"obo_medical_condition":             "no",
	})
	assert.Empty(t, d.ProfileSlots(tr))
}

func TestDBEAllSlots(t *testing.T) {
	d := newDBE()

	slots := d.profileSlotOrder(tracker(nil))
	assert.Equal(t, []string{
		"profile", "age", "gender", "province", "location", "location_confirm",
		"school", "school_confirm", "medical_condition",
		"medical_condition_obesity", "medical_condition_diabetes",
		"medical_condition_hypertension", "medical_condition_cardio",
	}, slots)
}

func TestDBEAllSlotsExpandedComorbidities(t *testing.T) {
	d := newDBE()

	slots := d.profileSlotOrder(tracker(map[string]any{"profile": "learner"}))
	for _, extra := range extendedConditionSlots {
		assert.Contains(t, slots, extra)
	}

	slots = d.profileSlotOrder(tracker(map[string]any{"profile": "parent"}))
	for _, extra := range extendedConditionSlots {
		assert.Contains(t, slots, oboPrefix+extra)
	}

	slots = d.profileSlotOrder(tracker(map[string]any{"profile": "educator"}))
	for _, extra := range extendedConditionSlots {
		assert.NotContains(t, slots, extra)
	}
}

func TestDBEAllSlotsPregnant(t *testing.T) {
	d := newDBE()

	slots := d.profileSlotOrder(tracker(map[string]any{
		"profile": "learner", "gender": "FEMALE", "age": "13",
	}))
	assert.Contains(t, slots, SlotConditionPregnant)

	slots = d.profileSlotOrder(tracker(map[string]any{
		"profile": "parent", "obo_gender": "FEMALE", "obo_age": "13",
	}))
	assert.Contains(t, slots, oboPrefix+SlotConditionPregnant)

	slots = d.profileSlotOrder(tracker(map[string]any{
		"profile": "parent", "obo_gender": "FEMALE", "obo_age": "9",
	}))
	assert.NotContains(t, slots, oboPrefix+SlotConditionPregnant)

	slots = d.profileSlotOrder(tracker(map[string]any{
		"profile": "learner", "gender": "MALE", "age": "13",
	}))
	assert.NotContains(t, slots, SlotConditionPregnant)
}

func TestDBEHealthCheckSlots(t *testing.T) {
	d := newDBE()

	tr := tracker(map[string]any{"profile": "educator"})
	assert.Equal(t, []string{"symptoms_fever"}, d.HealthCheckSlots(tr))

	tr = tracker(map[string]any{"profile": "parent"})
	assert.Equal(t, []string{"obo_symptoms_fever"}, d.HealthCheckSlots(tr))

	tr.Slots["obo_symptoms_fever"] = "no"
	assert.Equal(t, []string{"obo_symptoms_cough"}, d.HealthCheckSlots(tr))

	for _, slot := range symptomSlots {
		tr.Slots[oboPrefix+slot] = "no"
	}
	assert.Empty(t, d.HealthCheckSlots(tr))
}

func TestDBEBuildPayload(t *testing.T) {
	d := newDBE()
	tr := tracker(map[string]any{
		"province":                       "wc",
		"age":                            "43",
		"symptoms_fever":                 "no",
		"symptoms_cough":                 "yes",
		"symptoms_sore_throat":           "no",
		"symptoms_difficulty_breathing":  "no",
		"symptoms_taste_smell":           "no",
		"medical_condition":              "not sure",
		"exposure":                       "not sure",
		"tracing":                        "yes",
		"gender":                         "OTHER",
		"location":                       "Long Street, Cape Town",
		"medical_condition_obesity":      "no",
		"medical_condition_diabetes":     "no",
		"medical_condition_hypertension": "yes",
		"medical_condition_cardio":       "no",
		"school":                         "BERGVLIET HIGH SCHOOL",
		"school_emis":                    "105310201",
		"profile":                        "learner",
	})

	payload, err := d.BuildPayload(tr, triage.RiskLow)
	require.NoError(t, err)
	assert.NotEmpty(t, payload["deduplication_id"])
	delete(payload, "deduplication_id")

	assert.Equal(t, map[string]any{
		"province":              "ZA-WC",
		"age":                   "40-65",
		"fever":                 false,
		"cough":                 true,
		"sore_throat":           false,
		"difficulty_breathing":  false,
		"smell":                 false,
		"preexisting_condition": "not_sure",
		"exposure":              "not_sure",
		"tracing":               true,
		"gender":                "other",
		"city":                  "Long Street, Cape Town",
		"city_location":         "",
		"location":              "",
		"msisdn":                "+27820001001",
		"risk":                  "low",
		"source":                "WhatsApp",
		"data": map[string]any{
			"age":          "43",
			"cardio":       false,
			"diabetes":     false,
			"hypertension": true,
			"obesity":      false,
			"school_name":  "BERGVLIET HIGH SCHOOL",
			"school_emis":  "105310201",
			"profile":      "learner",
			"asthma":       nil,
			"tb":           nil,
			"pregnant":     nil,
			"respiratory":  nil,
			"cardiac":      nil,
			"immuno":       nil,
		},
	}, payload)
}

func TestDBEBuildPayloadParent(t *testing.T) {
	d := newDBE()
	tr := tracker(map[string]any{
		"obo_name":                           "Thabo",
		"obo_province":                       "wc",
		"obo_age":                            "43",
		"obo_symptoms_fever":                 "no",
		"obo_symptoms_cough":                 "yes",
		"obo_symptoms_sore_throat":           "no",
		"obo_symptoms_difficulty_breathing":  "no",
		"obo_symptoms_taste_smell":           "no",
		"obo_medical_condition":              "not sure",
		"obo_exposure":                       "not sure",
		"obo_tracing":                        "yes",
		"obo_gender":                         "OTHER",
		"obo_location":                       "Long Street, Cape Town",
		"obo_medical_condition_obesity":      "no",
		"obo_medical_condition_diabetes":     "no",
		"obo_medical_condition_hypertension": "yes",
		"obo_medical_condition_cardio":       "no",
		"obo_school":                         "BERGVLIET HIGH SCHOOL",
		"obo_school_emis":                    "105310201",
		"profile":                            "parent",
	})

	payload, err := d.BuildPayload(tr, triage.RiskLow)
	require.NoError(t, err)
	delete(payload, "deduplication_id")

	assert.Equal(t, "ZA-WC", payload["province"])
	assert.Equal(t, "40-65", payload["age"])
	data := payload["data"].(map[string]any)
	assert.Equal(t, "Thabo", data["name"])
	assert.Equal(t, "43", data["age"])
	assert.Equal(t, "BERGVLIET HIGH SCHOOL", data["school_name"])
	assert.Equal(t, "105310201", data["school_emis"])
	assert.Equal(t, "parent", data["profile"])
}

func TestDBEBuildPayloadParentNumericAge(t *testing.T) {
	// Reusing a saved learner profile stores the age as a number; the
	// learner's age must still reach the submission.
	d := newDBE()
	tr := tracker(map[string]any{
		"obo_name":     "Thabo",
		"obo_province": "wc",
		"obo_age":      float64(12),
		"obo_gender":   "MALE",
		"obo_location": "Long Street, Cape Town",
		"obo_exposure": "no",
		"obo_tracing":  "yes",
		"profile":      "parent",
	})

	payload, err := d.BuildPayload(tr, triage.RiskLow)
	require.NoError(t, err)

	assert.Equal(t, "<18", payload["age"])
	data := payload["data"].(map[string]any)
	assert.Equal(t, float64(12), data["age"])
	assert.Equal(t, "Thabo", data["name"])
}

func TestDBESendRisk(t *testing.T) {
	cases := []struct {
		profile  string
		template string
	}{
		{"", "utter_risk_low"},
		{"learner", "utter_risk_low"},
		{"parent", "utter_obo_risk_low"},
		{"actual_parent", "utter_risk_low_parent"},
		{"support", "utter_risk_low_support"},
		{"marker", "utter_risk_low_support"},
		{"exam_assistant", "utter_risk_low_support"},
		{"educator", "utter_risk_low_support"},
	}
	for _, c := range cases {
		t.Run(c.profile, func(t *testing.T) {
			d := newDBE()
			disp := &model.Dispatcher{}
			tr := tracker(nil)
			if c.profile != "" {
				tr.Slots = map[string]any{"profile": c.profile}
			}
			d.SendRisk(disp, triage.RiskLow, tr)
			require.Len(t, disp.Messages, 1)
			assert.Equal(t, c.template, disp.Messages[0].Template)
			assert.Equal(t, map[string]string{
				"issued":  "January 2, 2020, 3:04 AM",
				"expired": "January 3, 2020, 3:04 AM",
			}, disp.Messages[0].Vars)
		})
	}
}

func TestDBERiskInputsBucketsAge(t *testing.T) {
	d := newDBE()
	tr := tracker(map[string]any{
		"age":            "66",
		"symptoms_fever": "yes",
		"symptoms_cough": "yes",
		"exposure":       "no",
	})
	symptoms, exposure, age := d.RiskInputs(tr)
	assert.Equal(t, 2, symptoms)
	assert.Equal(t, "no", exposure)
	assert.Equal(t, triage.AgeOver65, age)
	assert.Equal(t, triage.RiskHigh, triage.Classify(symptoms, exposure, age))
}

func TestDBESessionStartEvents(t *testing.T) {
	d := newDBE()
	events, err := d.SessionStartEvents(context.Background(), tracker(map[string]any{
		"province": "wc",
		"school":   "BERGVLIET HIGH SCHOOL",
	}))
	require.NoError(t, err)
	assert.Contains(t, events, model.SlotSet("province_display", "WESTERN CAPE"))
	assert.Contains(t, events, model.SlotSet("returning_user", "yes"))
}

func TestDBESessionStartEventsParentRefresh(t *testing.T) {
	d := newDBE()
	events, err := d.SessionStartEvents(context.Background(), tracker(map[string]any{
		"profile": "parent",
	}))
	require.NoError(t, err)
	assert.Contains(t, events, model.SlotSet("learner_profiles", []any{}))
	// A stale cached list would hide learners registered since last session.
	src := d.LearnerProfiles.(*fakeProfileSource)
	assert.Equal(t, "+27820001001", src.invalidated)
}

func TestDBECarryOverSlots(t *testing.T) {
	d := newDBE()
	slots := d.CarryOverSlots()
	assert.Contains(t, slots, SlotSchool)
	assert.Contains(t, slots, SlotSchoolEMIS)
	assert.Contains(t, slots, SlotSchoolConfirm)
	assert.Contains(t, slots, SlotProfile)
}

func TestNormalizeMSISDN(t *testing.T) {
	assert.Equal(t, "+27820001001", NormalizeMSISDN("27820001001"))
	assert.Equal(t, "+27820001001", NormalizeMSISDN("+27820001001"))
	assert.Equal(t, "+27820001001", NormalizeMSISDN("0820001001"))
}

func ptr[T any](v T) *T {
	return &v
}
