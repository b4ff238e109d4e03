package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// EntityIDs carries the explicit ids supplied with a turn.
type EntityIDs struct {
	AccountID  string
	FacilityID string
	UserID     string
}

// NotesParams are the fetch parameters derived from the user text.
type NotesParams struct {
	Count int
	Order string
	Date  string
}

// Hints is the derived, per-turn intent snapshot. WantsOverview and
// WantsSpecificField may both be set; the card resolver breaks the tie.
type Hints struct {
	WantsOverview      bool
	WantsSpecificField bool
	WantsFacility      bool
	WantsNotes         bool
	Notes              NotesParams
}

var (
	countPattern = regexp.MustCompile(`(last|first)\s+(\d+)`)
	datePattern  = regexp.MustCompile(`(\d{2}/\d{2}/\d{4}|\d{4}-\d{2}-\d{2})`)
)

const (
	defaultNotesCount = 5
	defaultNotesOrder = "desc"
)

// Resolve derives intent hints from the user text. Pure function; malformed
// count or date tokens fall back to the defaults rather than failing.
func Resolve(text string, _ EntityIDs) Hints {
	hints := Hints{
		WantsOverview:      Matches(text, ClassOverview),
		WantsSpecificField: Matches(text, ClassSpecificField),
		WantsFacility:      Matches(text, ClassFacility),
		WantsNotes:         Matches(text, ClassNotes),
		Notes: NotesParams{
			Count: defaultNotesCount,
			Order: defaultNotesOrder,
		},
	}

	if m := countPattern.FindStringSubmatch(strings.ToLower(text)); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
			hints.Notes.Count = n
			if m[1] == "first" {
				hints.Notes.Order = "asc"
			}
		}
	}

	if m := datePattern.FindStringSubmatch(text); m != nil {
		hints.Notes.Date = normalizeDate(m[1])
	}

	return hints
}

// normalizeDate converts DD/MM/YYYY to YYYY-MM-DD.
func normalizeDate(date string) string {
	if len(date) == 10 && date[2] == '/' && date[5] == '/' {
		return date[6:] + "-" + date[3:5] + "-" + date[:2]
	}

	return date
}
