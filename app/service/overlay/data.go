package overlay

import "concierge/app/data"

// Map is the canonical per-turn snapshot of domain data keyed by display
// category. Nil slices serialize as null; note_overview always serializes as
// a list, matching the wire contract.
type Map struct {
	AccountOverview  []data.Account         `json:"account_overview"`
	RewardsOverview  []data.RewardsOverview `json:"rewards_overview"`
	FacilityOverview []data.Facility        `json:"facility_overview"`
	OrderOverview    []data.OrderOverview   `json:"order_overview"`
	NoteOverview     []data.Note            `json:"note_overview"`
}

func New() Map {
	return Map{
		NoteOverview: []data.Note{},
	}
}
