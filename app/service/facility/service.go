package facility

import (
	"log/slog"

	"concierge/app/data"

	"github.com/samber/do"
)

// Service exposes keyed facility lookups over the backing store.
type Service struct {
	store *data.Store
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		store: do.MustInvoke[*data.Store](di),
	}, nil
}

func (s *Service) Get(id string) (data.Facility, error) {
	fac, err := s.store.GetFacility(id)
	if err != nil {
		slog.Warn("Facility not found", "facility_id", id)
		return data.Facility{}, err
	}

	return fac, nil
}

func (s *Service) List() []data.Facility {
	return s.store.AllFacilities()
}
