package notes

import (
	"log/slog"
	"strings"

	"concierge/app/data"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const defaultCount = 5

// Query describes a notes fetch. Zero Count falls back to the default,
// any Order other than "asc" sorts newest first.
type Query struct {
	UserID string
	Date   string
	Count  int
	Order  string
}

type Service struct {
	store *data.Store
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		store: do.MustInvoke[*data.Store](di),
	}, nil
}

func (s *Service) Save(userID, content string) (data.Note, error) {
	if content == "" {
		return data.Note{}, oops.Errorf("note content is empty")
	}

	note := s.store.SaveNote(userID, content)

	slog.Info("Note saved", "user_id", userID, "note_id", note.NoteID)

	return note, nil
}

func (s *Service) Fetch(q Query) []data.Note {
	if q.Count <= 0 {
		q.Count = defaultCount
	}

	result := s.store.GetNotes(q.UserID, normalizeDate(q.Date), q.Count, q.Order)

	slog.Debug("Notes fetched",
		"user_id", q.UserID,
		"date", q.Date,
		"count", len(result))

	return result
}

// normalizeDate converts DD/MM/YYYY to YYYY-MM-DD; anything else passes
// through untouched.
func normalizeDate(date string) string {
	if !strings.Contains(date, "/") {
		return date
	}

	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return date
	}

	dd, mm, yyyy := parts[0], parts[1], parts[2]
	if len(dd) == 1 {
		dd = "0" + dd
	}
	if len(mm) == 1 {
		mm = "0" + mm
	}

	return yyyy + "-" + mm + "-" + dd
}
