package model

// Response is a templated message selection sent back to the user. Vars are
// named substitutions for the template (e.g. issued/expired timestamps).
type Response struct {
	Template string            `json:"template"`
	Vars     map[string]string `json:"vars,omitempty"`
}

// Dispatcher collects the messages produced while handling a single turn.
type Dispatcher struct {
	Messages []Response
}

func (d *Dispatcher) Utter(template string) {
	d.Messages = append(d.Messages, Response{Template: template})
}

func (d *Dispatcher) UtterVars(template string, vars map[string]string) {
	d.Messages = append(d.Messages, Response{Template: template, Vars: vars})
}
