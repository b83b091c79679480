package form

import (
	"strconv"
	"strings"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
)

// ValidateOption checks a raw answer against a numbered option table. The
// answer is accepted either as one of the option labels (case-insensitive,
// unless acceptLabels is false) or as the number of an option. Valid answers
// store the canonical table label; anything else tells the user to try again
// and leaves the slot unfilled so the question repeats.
func ValidateOption(field string, d *model.Dispatcher, value any, table map[int]string, acceptLabels bool) map[string]any {
	text := answerText(value)

	if acceptLabels && text != "" {
		lower := strings.ToLower(text)
		for _, label := range table {
			if strings.ToLower(label) == lower {
				return map[string]any{field: label}
			}
		}
	}
	if n, err := strconv.Atoi(text); err == nil {
		if label, ok := table[n]; ok {
			return map[string]any{field: label}
		}
	}

	d.Utter("utter_incorrect_selection")
	return map[string]any{field: nil}
}

// answerText renders the raw extracted value as text. Number entities arrive
// as JSON numbers rather than strings. Lists and objects are never valid
// answers.
func answerText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}
