package narrative_test

import (
	"strings"
	"testing"
	"time"

	"concierge/app/data"
	"concierge/app/service/narrative"
	"concierge/app/service/overlay"
)

func testAccount() data.Account {
	return data.Account{
		AccountID:                          "A-011977763",
		Name:                               "Dimod Account",
		Status:                             "ACTIVE",
		CurrentTier:                        "Member",
		NextTier:                           "silver",
		PointsToNextTier:                   40,
		PointsEarnedThisQuarter:            10,
		PendingBalance:                     0,
		FreeVialsAvailable:                 29,
		RewardsRequiredForNextFreeVial:     10,
		RewardsRedeemedTowardsNextFreeVial: 0,
		RewardsStatus:                      "OPTED_IN",
	}
}

func TestSynthesizeAccountSummary(t *testing.T) {
	m := overlay.Map{AccountOverview: []data.Account{testAccount()}}

	got := narrative.Synthesize(m, "show account overview", "ignored prose")

	for _, want := range []string{
		"Here is a summary of your account:",
		"- Account Name: Dimod Account",
		"- Status: ACTIVE",
		"- Account ID: A-011977763",
		"- Current Loyalty Tier: Member (next tier: silver, 40 points needed)",
		"- Free Vials Available: 29",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\ngot:\n%s", want, got)
		}
	}

	if strings.Contains(got, "ignored prose") {
		t.Error("summary should not include the reasoning prose")
	}
}

func TestSynthesizeRewardsSummary(t *testing.T) {
	m := overlay.Map{AccountOverview: []data.Account{testAccount()}}

	got := narrative.Synthesize(m, "what are my rewards", "")

	for _, want := range []string{
		"Here are your current loyalty & rewards details:",
		"- Current Tier: Member (next tier: silver, 40 points needed)",
		"- Progress to Next Free Vial: 0/10",
		"- Rewards Opt-in Status: OPTED_IN",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\ngot:\n%s", want, got)
		}
	}
}

func TestSynthesizeFacilitySummary(t *testing.T) {
	m := overlay.Map{FacilityOverview: []data.Facility{
		{
			ID:                   "F-015766066",
			Name:                 "Diamond Facility",
			Status:               "ACTIVE",
			MedicalLicenseNumber: "ML-100",
			MedicalLicenseState:  "CA",
			AgreementStatus:      "SIGNED",
			AccountID:            "A-011977763",
			AccountName:          "Dimod Account",
		},
		{ID: "F-2", Name: "Second"},
	}}

	got := narrative.Synthesize(m, "show facility details", "")

	for _, want := range []string{
		"Here is a summary of the facility:",
		"- Facility Name: Diamond Facility",
		"- Medical License: ML-100 (CA)",
		"- Account: Dimod Account (A-011977763)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\ngot:\n%s", want, got)
		}
	}

	if strings.Contains(got, "Second") {
		t.Error("summary should describe only the first facility")
	}
}

func TestSynthesizeNotes(t *testing.T) {
	created := time.Date(2025, 10, 29, 10, 0, 0, 0, time.UTC)
	m := overlay.Map{NoteOverview: []data.Note{
		{NoteID: "N-1", Content: "Meeting recap", CreatedAt: created},
	}}

	got := narrative.Synthesize(m, "fetch my notes", "")

	if !strings.Contains(got, "Here are your notes:") {
		t.Errorf("missing notes header, got:\n%s", got)
	}
	if !strings.Contains(got, "- (2025-10-29 10:00) Meeting recap") {
		t.Errorf("missing note line, got:\n%s", got)
	}
}

func TestSynthesizeNotesEmpty(t *testing.T) {
	m := overlay.Map{NoteOverview: []data.Note{}}

	got := narrative.Synthesize(m, "fetch my notes", "some prose")

	if got != "No notes found for your query." {
		t.Errorf("got %q", got)
	}
}

func TestSynthesizeFallbacks(t *testing.T) {
	if got := narrative.Synthesize(overlay.Map{}, "hello", "Hi there!"); got != "Hi there!" {
		t.Errorf("prose fallback: got %q", got)
	}

	if got := narrative.Synthesize(overlay.Map{}, "hello", ""); got != "I'm here to help! How can I assist you?" {
		t.Errorf("greeting fallback: got %q", got)
	}
}
