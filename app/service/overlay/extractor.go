package overlay

import (
	"log/slog"

	"concierge/app/data"
	"concierge/app/service/account"
	"concierge/app/service/facility"
	"concierge/app/service/intent"
	"concierge/app/service/notes"
	"concierge/app/service/reasoning"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// Extractor turns the reasoning service's tool log and structured output into
// the canonical overlay map. Every data-service failure degrades to an empty
// key; extraction itself never fails.
type Extractor struct {
	accountSvc  *account.Service
	facilitySvc *facility.Service
	notesSvc    *notes.Service
}

func NewExtractor(di *do.Injector) (*Extractor, error) {
	return &Extractor{
		accountSvc:  do.MustInvoke[*account.Service](di),
		facilitySvc: do.MustInvoke[*facility.Service](di),
		notesSvc:    do.MustInvoke[*notes.Service](di),
	}, nil
}

// Extract runs the extraction steps in order. Later steps only fill keys that
// are still empty, except the notes refresh, which is unconditional when the
// user text signals a notes request.
func (e *Extractor) Extract(
	invocations []reasoning.ToolInvocation,
	ids intent.EntityIDs,
	structured *reasoning.StructuredOutput,
	hints intent.Hints,
) Map {
	m := New()

	e.seedFromStructured(&m, structured)
	e.replayToolLog(&m, invocations, ids)
	e.fillFromExplicitIDs(&m, ids)
	e.deriveFacilities(&m, ids, hints)
	e.refreshNotes(&m, hints)

	if m.NoteOverview == nil {
		m.NoteOverview = []data.Note{}
	}

	return m
}

func (e *Extractor) seedFromStructured(m *Map, structured *reasoning.StructuredOutput) {
	if !structured.Consistent() {
		return
	}

	if len(structured.AccountOverview) > 0 {
		m.AccountOverview = structured.AccountOverview
	}
	if len(structured.RewardsOverview) > 0 {
		m.RewardsOverview = structured.RewardsOverview
	}
	if len(structured.FacilityOverview) > 0 {
		m.FacilityOverview = structured.FacilityOverview
	}
	if len(structured.OrderOverview) > 0 {
		m.OrderOverview = structured.OrderOverview
	}
	if len(structured.NoteOverview) > 0 {
		m.NoteOverview = structured.NoteOverview
	}
}

func (e *Extractor) replayToolLog(m *Map, invocations []reasoning.ToolInvocation, ids intent.EntityIDs) {
	for _, inv := range invocations {
		switch inv.Name {
		case reasoning.ToolFetchAccount:
			if len(m.AccountOverview) > 0 {
				continue
			}

			id := inv.StringArg("account_id")
			if id == "" {
				id = ids.AccountID
			}
			if id == "" {
				continue
			}

			if acc, err := e.accountSvc.Get(id); err == nil {
				m.AccountOverview = []data.Account{acc}
			} else {
				slog.Warn("Account lookup from tool log failed", "account_id", id, "error", err)
			}

		case reasoning.ToolFetchFacility:
			if len(m.FacilityOverview) > 0 {
				continue
			}

			id := inv.StringArg("facility_id")
			if id == "" {
				id = ids.FacilityID
			}
			if id == "" {
				continue
			}

			if fac, err := e.facilitySvc.Get(id); err == nil {
				m.FacilityOverview = []data.Facility{fac}
			} else {
				slog.Warn("Facility lookup from tool log failed", "facility_id", id, "error", err)
			}

		case reasoning.ToolFetchNotes:
			if len(m.NoteOverview) > 0 {
				continue
			}

			m.NoteOverview = e.notesSvc.Fetch(notes.Query{
				UserID: inv.StringArg("user_id"),
				Date:   inv.StringArg("date"),
				Count:  inv.IntArg("last_n"),
				Order:  inv.StringArg("order"),
			})
		}
	}
}

// fillFromExplicitIDs covers the reasoning service skipping an obviously
// required lookup: an explicit id always yields its overlay when the record
// exists.
func (e *Extractor) fillFromExplicitIDs(m *Map, ids intent.EntityIDs) {
	if ids.AccountID != "" && len(m.AccountOverview) == 0 {
		if acc, err := e.accountSvc.Get(ids.AccountID); err == nil {
			m.AccountOverview = []data.Account{acc}
		}
	}

	if ids.FacilityID != "" && len(m.FacilityOverview) == 0 {
		if fac, err := e.facilitySvc.Get(ids.FacilityID); err == nil {
			m.FacilityOverview = []data.Facility{fac}
		}
	}
}

// deriveFacilities handles facility intent without a facility id: list all
// facilities and keep those owned by the supplied account. Without an account
// id the filter matches nothing.
func (e *Extractor) deriveFacilities(m *Map, ids intent.EntityIDs, hints intent.Hints) {
	if !hints.WantsFacility || ids.FacilityID != "" || len(m.FacilityOverview) > 0 {
		return
	}

	owned := pie.Filter(e.facilitySvc.List(), func(f data.Facility) bool {
		return f.AccountID == ids.AccountID
	})

	if len(owned) > 0 {
		m.FacilityOverview = owned
	}
}

// refreshNotes re-issues the notes fetch with the derived parameters whenever
// the text signals a notes request. The fetch is idempotent and cheap, so the
// reasoning service's tool log is not trusted for it.
func (e *Extractor) refreshNotes(m *Map, hints intent.Hints) {
	if !hints.WantsNotes {
		return
	}

	m.NoteOverview = e.notesSvc.Fetch(notes.Query{
		Date:  hints.Notes.Date,
		Count: hints.Notes.Count,
		Order: hints.Notes.Order,
	})
}
