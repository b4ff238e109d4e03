package data

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned by keyed lookups when no record exists for the id.
var ErrNotFound = fmt.Errorf("record not found")

// Store is the seeded in-memory backing store for accounts, facilities and
// notes. Domain data resets on restart; only saved notes mutate it.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]Account
	facilities map[string]Facility
	notes      map[string][]Note
}

func NewStore() *Store {
	s := &Store{
		accounts:   make(map[string]Account),
		facilities: make(map[string]Facility),
		notes:      make(map[string][]Note),
	}

	s.seedAccounts()
	s.seedFacilities()
	s.seedNotes()

	return s
}

func (s *Store) GetAccount(id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}

	return acc, nil
}

func (s *Store) AllAccounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		result = append(result, acc)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AccountID < result[j].AccountID
	})

	return result
}

func (s *Store) GetFacility(id string) (Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fac, ok := s.facilities[id]
	if !ok {
		return Facility{}, ErrNotFound
	}

	return fac, nil
}

func (s *Store) AllFacilities() []Facility {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Facility, 0, len(s.facilities))
	for _, fac := range s.facilities {
		result = append(result, fac)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

func (s *Store) SaveNote(userID, content string) Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	note := Note{
		NoteID:    fmt.Sprintf("N-%06d", len(s.notes[userID])+1),
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.notes[userID] = append(s.notes[userID], note)

	return note
}

// GetNotes filters by user and creation date (YYYY-MM-DD), sorts by creation
// time and truncates to count. Order "asc" returns oldest first.
func (s *Store) GetNotes(userID, date string, count int, order string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []Note
	if userID != "" {
		all = append(all, s.notes[userID]...)
	} else {
		for _, userNotes := range s.notes {
			all = append(all, userNotes...)
		}
	}

	if date != "" {
		filtered := all[:0]
		for _, n := range all {
			if n.CreatedAt.Format("2006-01-02") == date {
				filtered = append(filtered, n)
			}
		}
		all = filtered
	}

	sort.SliceStable(all, func(i, j int) bool {
		if order == "asc" {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if count > 0 && len(all) > count {
		all = all[:count]
	}

	return all
}

func (s *Store) seedAccounts() {
	s.accounts["A-011977763"] = Account{
		AccountID:         "A-011977763",
		Name:              "Dimod Account",
		Status:            "ACTIVE",
		CreatedAt:         "2025-02-18T04:46:02.486+00:00",
		PricingModel:      "ACCOUNT_LOYALTY",
		AddressLine1:      "100 WYCLIFFE",
		AddressCity:       "IRVINE",
		AddressState:      "CA",
		AddressPostalCode: "92602-1206",
		Facilities: []FacilityRef{
			{ID: "F-013203268", Name: "TEST Delete Facility", Status: "INACTIVE"},
			{ID: "F-015766066", Name: "Diamond Facility", Status: "ACTIVE"},
		},
		PendingBalance:                     50,
		CurrentTier:                        "Member",
		NextTier:                           "silver",
		PointsToNextTier:                   40,
		QuarterEndDate:                     "2025-09-30T23:59:59-07:00",
		FreeVialsAvailable:                 29,
		RewardsRequiredForNextFreeVial:     9,
		RewardsRedeemedTowardsNextFreeVial: 1,
		RewardsStatus:                      "OPTED_IN",
		RewardsUpdatedAt:                   "2025-04-25T13:40:50.176+00:00",
		EvoluxLevel:                        "LEVEL_0",
	}
}

func (s *Store) seedFacilities() {
	base := Facility{
		HasSignedMedicalLiabilityAgreement: true,
		MedicalLicenseID:                   "CA-G38840",
		MedicalLicenseState:                "CA",
		MedicalLicenseNumber:               "G38840",
		MedicalLicenseInvolvement:          "WORKS_AT_ACCOUNT",
		MedicalLicenseExpirationDate:       "2026-09-30T00:00:00.000+00:00",
		MedicalLicenseStatus:               "Renewed & Current",
		MedicalLicenseOwnerFirstName:       "GAYLE",
		MedicalLicenseOwnerLastName:        "MISLE",
		AccountID:                          "A-011977763",
		AccountName:                        "Dimod Account",
		AccountStatus:                      "ACTIVE",
		AccountHasSignedFinancialAgreement: true,
		ShippingAddressLine1:               "15035 E 14TH ST",
		ShippingAddressCity:                "SAN LEANDRO",
		ShippingAddressState:               "CA",
		ShippingAddressZip:                 "94578",
		ShippingAddressCommercial:          true,
		AgreementStatus:                    "SIGNED",
		AgreementType:                      "MEDICAL_LIABILITY",
	}

	inactive := base
	inactive.ID = "F-013203268"
	inactive.Name = "TEST Delete Facility"
	inactive.Status = "INACTIVE"
	inactive.AgreementSignedAt = "2025-04-24T05:22:40.173+00:00"
	s.facilities[inactive.ID] = inactive

	active := base
	active.ID = "F-015766066"
	active.Name = "Diamond Facility"
	active.Status = "ACTIVE"
	active.AgreementSignedAt = "2025-02-18T04:51:09.920+00:00"
	s.facilities[active.ID] = active
}

func (s *Store) seedNotes() {
	users := []string{
		"sumer.choudhary@bitcot.com",
		"kaushal.sethia.c@evolus.com",
	}

	now := time.Now().UTC()
	meeting := time.Date(2025, 10, 29, 10, 0, 0, 0, time.UTC)

	for _, u := range users {
		s.notes[u] = []Note{
			{
				NoteID:    "N-000001",
				UserID:    u,
				Content:   "Kickoff call summary: discussed account overview and next steps.",
				CreatedAt: now.AddDate(0, 0, -5),
				UpdatedAt: now.AddDate(0, 0, -5),
			},
			{
				NoteID:    "N-000002",
				UserID:    u,
				Content:   "Follow-up: pending balance and rewards status reviewed.",
				CreatedAt: now.AddDate(0, 0, -2),
				UpdatedAt: now.AddDate(0, 0, -2),
			},
			{
				NoteID:    "N-000003",
				UserID:    u,
				Content:   "Meeting 29/10/2025: confirmed free vials availability.",
				CreatedAt: meeting,
				UpdatedAt: meeting,
			},
		}
	}
}
