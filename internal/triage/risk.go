// Package triage computes the discrete risk level for a completed screening.
package triage

import "strings"

type Risk string

const (
	RiskLow      Risk = "low"
	RiskModerate Risk = "moderate"
	RiskHigh     Risk = "high"
)

// Age buckets as reported to the event store, ordered youngest to oldest.
type AgeBucket string

const (
	AgeUnder18 AgeBucket = "<18"
	Age18To40  AgeBucket = "18-40"
	Age40To65  AgeBucket = "40-65"
	AgeOver65  AgeBucket = ">65"
)

// Exposure answers. Only an exact "yes" ever elevates risk; "not sure" is
// scored the same as "no".
const (
	ExposureYes     = "yes"
	ExposureNo      = "no"
	ExposureNotSure = "not sure"
)

// Classify maps a finalized answer set to a risk level. symptoms is the
// number of symptom questions answered "yes"; exposure and age must already
// be validated. Callers are responsible for only invoking this once every
// screening slot is filled.
func Classify(symptoms int, exposure string, age AgeBucket) Risk {
	switch {
	case symptoms >= 3:
		return RiskHigh
	case symptoms == 2:
		if exposure == ExposureYes || age == AgeOver65 {
			return RiskHigh
		}
		return RiskModerate
	case symptoms == 1:
		if exposure == ExposureYes {
			return RiskHigh
		}
		return RiskModerate
	default:
		if exposure == ExposureYes {
			return RiskModerate
		}
		return RiskLow
	}
}

// CountSymptoms counts affirmative answers among symptom slots. A slot is a
// symptom question if its name contains the "symptoms_" tag; exposure, age
// and tracing are never counted.
func CountSymptoms(slots map[string]string) int {
	n := 0
	for name, value := range slots {
		if strings.Contains(name, "symptoms_") && value == "yes" {
			n++
		}
	}
	return n
}

// BucketYears places an exact age in years into a reporting bucket.
func BucketYears(years int) AgeBucket {
	switch {
	case years < 18:
		return AgeUnder18
	case years < 40:
		return Age18To40
	case years <= 65:
		return Age40To65
	default:
		return AgeOver65
	}
}

// NormalizeBucket converts the age option labels shown to users into the
// event-store bucket labels. The only difference is the historical "18-39"
// label, which reports as "18-40".
func NormalizeBucket(label string) AgeBucket {
	if label == "18-39" {
		return Age18To40
	}
	return AgeBucket(label)
}
