package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/praekeltfoundation/healthcheckbot/internal/form"
	"github.com/praekeltfoundation/healthcheckbot/internal/model"
)

var ErrUnknownAction = errors.New("unknown action")

// Action handles one named action from the hosting framework.
type Action interface {
	Name() string
	Run(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error)
}

// ActionService routes each webhook turn to the named action.
type ActionService struct {
	actions map[string]Action
}

// NewActionService creates the registry. Later registrations with the same
// name replace earlier ones.
func NewActionService(actions ...Action) *ActionService {
	s := &ActionService{actions: make(map[string]Action, len(actions))}
	for _, a := range actions {
		s.actions[a.Name()] = a
	}
	return s
}

// Run executes the named action and collects its events and messages.
func (s *ActionService) Run(ctx context.Context, name string, t *model.Tracker) ([]model.Event, []model.Response, error) {
	a, ok := s.actions[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	d := &model.Dispatcher{}
	events, err := a.Run(ctx, d, t)
	return events, d.Messages, err
}

type formAction struct {
	form form.Form
}

// FormAction exposes a form as an action under the form's name.
func FormAction(f form.Form) Action {
	return formAction{form: f}
}

func (a formAction) Name() string {
	return a.form.Name()
}

func (a formAction) Run(ctx context.Context, d *model.Dispatcher, t *model.Tracker) ([]model.Event, error) {
	return form.Run(ctx, a.form, t, d)
}
