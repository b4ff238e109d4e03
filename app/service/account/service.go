package account

import (
	"log/slog"

	"concierge/app/data"

	"github.com/samber/do"
)

// Service exposes keyed account lookups over the backing store.
type Service struct {
	store *data.Store
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		store: do.MustInvoke[*data.Store](di),
	}, nil
}

func (s *Service) Get(id string) (data.Account, error) {
	acc, err := s.store.GetAccount(id)
	if err != nil {
		slog.Warn("Account not found", "account_id", id)
		return data.Account{}, err
	}

	return acc, nil
}

func (s *Service) List() []data.Account {
	return s.store.AllAccounts()
}
