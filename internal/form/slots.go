// Package form implements the conversation forms that walk a user through
// the screening questionnaire one slot at a time.
package form

// Slot names shared across deployments.
const (
	SlotRequested = "requested_slot"

	SlotTerms = "terms"

	SlotAge                = "age"
	SlotGender             = "gender"
	SlotProvince           = "province"
	SlotProvinceDisplay    = "province_display"
	SlotLocation           = "location"
	SlotLocationConfirm    = "location_confirm"
	SlotLocationCoords     = "location_coords"
	SlotCityLocationCoords = "city_location_coords"

	SlotMedicalCondition      = "medical_condition"
	SlotConditionObesity      = "medical_condition_obesity"
	SlotConditionDiabetes     = "medical_condition_diabetes"
	SlotConditionHypertension = "medical_condition_hypertension"
	SlotConditionCardio       = "medical_condition_cardio"

	SlotSymptomsFever      = "symptoms_fever"
	SlotSymptomsCough      = "symptoms_cough"
	SlotSymptomsSoreThroat = "symptoms_sore_throat"
	SlotSymptomsBreathing  = "symptoms_difficulty_breathing"
	SlotSymptomsTasteSmell = "symptoms_taste_smell"
	SlotExposure           = "exposure"
	SlotTracing            = "tracing"

	SlotStudyAArm = "study_a_arm"
)

// Education deployment slots.
const (
	SlotProfile        = "profile"
	SlotProfileDisplay = "profile_display"
	SlotSchool         = "school"
	SlotSchoolConfirm  = "school_confirm"
	SlotSchoolEMIS     = "school_emis"

	SlotReturningUser  = "returning_user"
	SlotConfirmDetails = "confirm_details"
	SlotChangeDetails  = "change_details"

	SlotLearnerProfiles        = "learner_profiles"
	SlotDisplayLearnerProfiles = "display_learner_profiles"
	SlotSelectLearnerProfile   = "select_learner_profile"
	SlotOboName                = "obo_name"

	SlotConditionAsthma      = "medical_condition_asthma"
	SlotConditionTB          = "medical_condition_tb"
	SlotConditionPregnant    = "medical_condition_pregnant"
	SlotConditionRespiratory = "medical_condition_respiratory"
	SlotConditionCardiac     = "medical_condition_cardiac"
	SlotConditionImmuno      = "medical_condition_immuno"

	SlotFacilityPhrase1 = "facility_phrase_1"
	SlotFacilityPhrase2 = "facility_phrase_2"
)

// Higher-education deployment slots.
const (
	SlotFirstName   = "first_name"
	SlotLastName    = "last_name"
	SlotDestination = "destination"
	SlotReason      = "reason"
)

// conditionSlots are the follow-up questions asked when the user reports an
// underlying medical condition.
var conditionSlots = []string{
	SlotConditionObesity,
	SlotConditionDiabetes,
	SlotConditionHypertension,
	SlotConditionCardio,
}

// extendedConditionSlots are the extra comorbidity questions the education
// deployment asks learners and on-behalf-of screenings.
var extendedConditionSlots = []string{
	SlotConditionAsthma,
	SlotConditionTB,
	SlotConditionRespiratory,
	SlotConditionCardiac,
	SlotConditionImmuno,
}

// symptomSlots in question order.
var symptomSlots = []string{
	SlotSymptomsFever,
	SlotSymptomsCough,
	SlotSymptomsSoreThroat,
	SlotSymptomsBreathing,
	SlotSymptomsTasteSmell,
	SlotExposure,
	SlotTracing,
}

// YesNo is the standard two-option answer table.
var YesNo = map[int]string{1: "yes", 2: "no"}

// YesNoMaybe adds the uncertain option used for exposure and condition
// questions.
var YesNoMaybe = map[int]string{1: "yes", 2: "no", 3: "not sure"}
