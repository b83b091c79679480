package form

import (
	"context"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
)

// ProfileForm collects who the user is: demographics, location, and the
// deployment's extra identity questions. All behavior is delegated to the
// deployment so the same engine drives every variant.
type ProfileForm struct {
	Deployment Deployment
}

func (f *ProfileForm) Name() string {
	return "healthcheck_profile_form"
}

func (f *ProfileForm) RequiredSlots(t *model.Tracker) []string {
	return f.Deployment.ProfileSlots(t)
}

func (f *ProfileForm) SlotMappings() map[string][]Mapping {
	return f.Deployment.ProfileMappings()
}

func (f *ProfileForm) ValidateSlot(ctx context.Context, d *model.Dispatcher, t *model.Tracker, slot string, value any) (map[string]any, error) {
	return f.Deployment.ValidateProfileSlot(ctx, d, t, slot, value)
}

func (f *ProfileForm) Submit(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error) {
	return nil, nil
}
