package form

import "github.com/praekeltfoundation/healthcheckbot/internal/model"

// Mapping extracts a candidate slot value from the latest user message.
// Mappings are tried in order; the first one that produces a value wins.
type Mapping interface {
	Extract(msg *model.Message) (any, bool)
}

type entityMapping struct {
	entity string
	intent string
}

func (m entityMapping) Extract(msg *model.Message) (any, bool) {
	if m.intent != "" && msg.Intent.Name != m.intent {
		return nil, false
	}
	return msg.Entity(m.entity)
}

// FromEntity takes the value of a message entity.
func FromEntity(entity string) Mapping {
	return entityMapping{entity: entity}
}

// FromEntityIntent takes a message entity, but only for the given intent.
func FromEntityIntent(intent, entity string) Mapping {
	return entityMapping{entity: entity, intent: intent}
}

type intentMapping struct {
	intent string
	value  any
}

func (m intentMapping) Extract(msg *model.Message) (any, bool) {
	if msg.Intent.Name == m.intent {
		return m.value, true
	}
	return nil, false
}

// FromIntent produces a fixed value when the message matches an intent.
func FromIntent(intent string, value any) Mapping {
	return intentMapping{intent: intent, value: value}
}

type textMapping struct{}

func (textMapping) Extract(msg *model.Message) (any, bool) {
	return msg.Text, true
}

// FromText takes the raw message text. Always matches, so it goes last.
func FromText() Mapping {
	return textMapping{}
}

// extract runs the mappings in order and returns the first hit.
func extract(mappings []Mapping, msg *model.Message) (any, bool) {
	for _, m := range mappings {
		if v, ok := m.Extract(msg); ok {
			return v, true
		}
	}
	return nil, false
}

// numberThenText is the most common mapping set: a recognized number entity,
// falling back to the raw text.
func numberThenText() []Mapping {
	return []Mapping{FromEntity("number"), FromText()}
}

// yesNoMappings maps affirm/deny intents before falling back.
func yesNoMappings() []Mapping {
	return []Mapping{
		FromEntity("number"),
		FromIntent("affirm", "yes"),
		FromIntent("deny", "no"),
		FromText(),
	}
}

// yesNoMaybeMappings adds the maybe intent.
func yesNoMaybeMappings() []Mapping {
	return []Mapping{
		FromEntity("number"),
		FromIntent("affirm", "yes"),
		FromIntent("deny", "no"),
		FromIntent("maybe", "not sure"),
		FromText(),
	}
}
