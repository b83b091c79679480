package form

import (
	"context"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
)

// TermsForm asks the user to accept the terms of use before screening. The
// only way through is acceptance; asking for more detail repeats the
// question after sending the full terms.
type TermsForm struct{}

func (f *TermsForm) Name() string {
	return "healthcheck_terms_form"
}

func (f *TermsForm) RequiredSlots(t *model.Tracker) []string {
	return firstUnfilled(t, []string{SlotTerms})
}

func (f *TermsForm) SlotMappings() map[string][]Mapping {
	return map[string][]Mapping{
		SlotTerms: {
			FromIntent("affirm", "yes"),
			FromIntent("more", "more"),
			FromText(),
		},
	}
}

func (f *TermsForm) ValidateSlot(ctx context.Context, d *model.Dispatcher, t *model.Tracker, slot string, value any) (map[string]any, error) {
	if value == "more" {
		d.Utter("utter_more_terms")
		d.Utter("utter_more_terms_doc")
		return map[string]any{SlotTerms: nil}, nil
	}
	return ValidateOption(SlotTerms, d, value, map[int]string{1: "yes"}, true), nil
}

func (f *TermsForm) Submit(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error) {
	return nil, nil
}
