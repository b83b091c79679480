package form

import "strings"

// oboPrefix marks slots that describe the person being screened for, rather
// than the account holder, in guardian sessions.
const oboPrefix = "obo_"

// Subject identifies who a screening answer is about.
type Subject int

const (
	Self Subject = iota
	OnBehalf
)

// SlotName maps a base slot name to the tracker slot used for this subject.
func (s Subject) SlotName(base string) string {
	if s == OnBehalf {
		return oboPrefix + base
	}
	return base
}

// SlotNames maps a list of base slot names for this subject.
func (s Subject) SlotNames(bases []string) []string {
	out := make([]string, len(bases))
	for i, b := range bases {
		out[i] = s.SlotName(b)
	}
	return out
}

// splitSubject splits a tracker slot name into its subject and base name.
func splitSubject(slot string) (Subject, string) {
	if base, ok := strings.CutPrefix(slot, oboPrefix); ok {
		return OnBehalf, base
	}
	return Self, slot
}
