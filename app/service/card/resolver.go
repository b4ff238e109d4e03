package card

import (
	"concierge/app/data"
	"concierge/app/service/intent"
	"concierge/app/service/overlay"
)

// Key tags which UI presentation applies to a turn's data.
type Key string

const (
	KeyAccountOverview  Key = "account_overview"
	KeyFacilityOverview Key = "facility_overview"
	KeyRewardsOverview  Key = "rewards_overview"
	KeyOrderOverview    Key = "order_overview"
	KeyNoteOverview     Key = "note_overview"
	KeyOther            Key = "other"
	KeyGeneral          Key = "general"
	KeyError            Key = "error"
)

var valid = map[Key]bool{
	KeyAccountOverview:  true,
	KeyFacilityOverview: true,
	KeyRewardsOverview:  true,
	KeyOrderOverview:    true,
	KeyNoteOverview:     true,
	KeyOther:            true,
	KeyGeneral:          true,
	KeyError:            true,
}

func (k Key) Valid() bool {
	return valid[k]
}

// Resolve picks exactly one card key under a fixed precedence. Two rules are
// load-bearing: a specific-field question never leaks the full account record
// (the overlay is emptied, not just re-tagged), and heuristic outcomes always
// win over the structured output's own card key.
func Resolve(hints intent.Hints, ids intent.EntityIDs, m *overlay.Map, structuredKey Key) Key {
	if ids.AccountID != "" {
		switch {
		case hints.WantsOverview && len(m.AccountOverview) > 0:
			return KeyAccountOverview
		case hints.WantsSpecificField:
			m.AccountOverview = []data.Account{}
			return KeyOther
		}
	}

	if (ids.FacilityID != "" || hints.WantsFacility) &&
		len(m.FacilityOverview) > 0 &&
		(hints.WantsOverview || hints.WantsFacility) {
		return KeyFacilityOverview
	}

	// A notes request surfaces the notes card even when the fetch came back
	// empty.
	if hints.WantsNotes {
		return KeyNoteOverview
	}

	if structuredKey != "" && structuredKey.Valid() {
		return structuredKey
	}

	return KeyGeneral
}
