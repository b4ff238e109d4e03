package intent

import "strings"

// Class names a group of phrases that signal one kind of request. The card
// resolver and the narrative synthesizer both consume this table, so a phrase
// added here changes intent detection and narrative selection together.
type Class string

const (
	ClassOverview      Class = "overview"
	ClassSpecificField Class = "specific_field"
	ClassFacility      Class = "facility"
	ClassNotes         Class = "notes"
	ClassRewards       Class = "rewards"
)

var classPhrases = map[Class][]string{
	ClassOverview: {
		"overview",
		"show account",
		"account summary",
		"summary",
	},
	ClassSpecificField: {
		"how many",
		"points",
		"tier",
		"rewards",
		"free vial",
	},
	ClassFacility: {
		"facility",
		"facilities",
	},
	ClassNotes: {
		"note",
		"notes",
	},
	ClassRewards: {
		"reward",
		"loyalty",
		"points",
		"tier",
		"free vial",
		"free vials",
	},
}

// Matches reports whether the text contains any phrase of the class,
// case-insensitively.
func Matches(text string, class Class) bool {
	lower := strings.ToLower(text)

	for _, phrase := range classPhrases[class] {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	return false
}
