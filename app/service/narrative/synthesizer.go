package narrative

import (
	"fmt"
	"strings"

	"concierge/app/data"
	"concierge/app/service/intent"
	"concierge/app/service/overlay"
)

const greetingFallback = "I'm here to help! How can I assist you?"

// Synthesize builds the turn's natural-language answer. Whenever overlay data
// is available for the matched keyword class the text is generated from it,
// because the reasoning service's prose may echo the question or disagree with
// the resolved data. Otherwise the prose is used as-is, with a generic
// greeting as the last resort.
func Synthesize(m overlay.Map, userText, prose string) string {
	switch {
	case len(m.AccountOverview) > 0:
		acc := m.AccountOverview[0]
		if intent.Matches(userText, intent.ClassRewards) {
			return rewardsSummary(acc)
		}
		if intent.Matches(userText, intent.ClassOverview) {
			return accountSummary(acc)
		}

	case len(m.FacilityOverview) > 0:
		return facilitySummary(m.FacilityOverview[0])

	case intent.Matches(userText, intent.ClassNotes):
		return notesSummary(m.NoteOverview)
	}

	if prose != "" {
		return prose
	}

	return greetingFallback
}

func accountSummary(acc data.Account) string {
	var b strings.Builder

	b.WriteString("Here is a summary of your account:\n")
	fmt.Fprintf(&b, "- Account Name: %s\n", acc.Name)
	fmt.Fprintf(&b, "- Status: %s\n", acc.Status)
	fmt.Fprintf(&b, "- Account ID: %s\n", acc.AccountID)

	address := joinNonEmpty(", ",
		acc.AddressLine1,
		acc.AddressCity,
		acc.AddressState,
		acc.AddressPostalCode,
	)
	fmt.Fprintf(&b, "- Address: %s\n", address)
	fmt.Fprintf(&b, "- Pricing Model: %s\n\n", acc.PricingModel)

	b.WriteString("Loyalty & Rewards:\n")
	fmt.Fprintf(&b, "- Current Loyalty Tier: %s (next tier: %s, %d points needed)\n",
		acc.CurrentTier, acc.NextTier, acc.PointsToNextTier)
	fmt.Fprintf(&b, "- Loyalty Points Balance: %d (pending: %d)\n",
		acc.PointsEarnedThisQuarter, acc.PendingBalance)
	fmt.Fprintf(&b, "- Free Vials Available: %d\n", acc.FreeVialsAvailable)
	fmt.Fprintf(&b, "- Rewards Redeemed Toward Next Free Vial: %d\n\n",
		acc.RewardsRedeemedTowardsNextFreeVial)

	b.WriteString("Other Details:\n")
	fmt.Fprintf(&b, "- Evolux Level: %s\n", acc.EvoluxLevel)
	fmt.Fprintf(&b, "- Reward Program Opt-in Status: %s\n\n", acc.RewardsStatus)

	b.WriteString("Let me know if you need more detailed information or have other questions!")

	return b.String()
}

func rewardsSummary(acc data.Account) string {
	var b strings.Builder

	b.WriteString("Here are your current loyalty & rewards details:\n\n")
	fmt.Fprintf(&b, "- Current Tier: %s (next tier: %s, %d points needed)\n",
		acc.CurrentTier, acc.NextTier, acc.PointsToNextTier)
	fmt.Fprintf(&b, "- Points Balance: %d (pending: %d)\n",
		acc.PointsEarnedThisQuarter, acc.PendingBalance)
	fmt.Fprintf(&b, "- Free Vials Available: %d\n", acc.FreeVialsAvailable)
	fmt.Fprintf(&b, "- Progress to Next Free Vial: %d/%d\n",
		acc.RewardsRedeemedTowardsNextFreeVial, acc.RewardsRequiredForNextFreeVial)
	fmt.Fprintf(&b, "- Rewards Opt-in Status: %s\n", acc.RewardsStatus)

	return b.String()
}

func facilitySummary(fac data.Facility) string {
	var b strings.Builder

	b.WriteString("Here is a summary of the facility:\n")
	fmt.Fprintf(&b, "- Facility Name: %s\n", fac.Name)
	fmt.Fprintf(&b, "- Status: %s\n", fac.Status)
	fmt.Fprintf(&b, "- Facility ID: %s\n", fac.ID)
	fmt.Fprintf(&b, "- Medical License: %s (%s)\n", fac.MedicalLicenseNumber, fac.MedicalLicenseState)
	fmt.Fprintf(&b, "- Agreement Status: %s\n", fac.AgreementStatus)
	fmt.Fprintf(&b, "- Account: %s (%s)\n", fac.AccountName, fac.AccountID)

	return b.String()
}

func notesSummary(list []data.Note) string {
	if len(list) == 0 {
		return "No notes found for your query."
	}

	var b strings.Builder
	b.WriteString("Here are your notes:\n\n")

	for _, n := range list {
		fmt.Fprintf(&b, "- (%s) %s\n", n.CreatedAt.Format("2006-01-02 15:04"), n.Content)
	}

	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, sep)
}
