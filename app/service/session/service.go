package session

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/oops"
)

var defaultFilePath = filepath.Join("data", "sessions.json")

// Service owns all sessions and their message histories. It is the only
// mutable shared state in the system; every mutation is serialized through
// the store lock and snapshotted to a JSONL file so sessions survive a
// restart.
type Service struct {
	mu       sync.RWMutex
	filePath string
	sessions map[string]*Session
}

func New(_ *do.Injector) (*Service, error) {
	_ = os.MkdirAll(filepath.Dir(defaultFilePath), 0755)

	return NewWithFile(defaultFilePath)
}

// NewWithFile builds a store snapshotting to the given JSONL file, loading
// whatever sessions the file already holds.
func NewWithFile(filePath string) (*Service, error) {
	s := &Service{
		filePath: filePath,
		sessions: make(map[string]*Session),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) Create(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	sess := &Session{
		SessionID: uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []Message{},
	}

	s.sessions[sess.SessionID] = sess
	s.snapshot()

	return sess.clone()
}

func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	return sess.clone(), nil
}

// Append adds one message and bumps updated_at. It is the only mutation a
// session sees after creation.
func (s *Service) Append(id, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}

	sess.Messages = append(sess.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	sess.UpdatedAt = time.Now().UTC()
	s.snapshot()

	return nil
}

// History returns the ordered role/content sequence, empty for unknown ids.
func (s *Service) History(id string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return []Message{}
	}

	result := make([]Message, len(sess.Messages))
	copy(result, sess.Messages)

	return result
}

func (s *Service) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}

	delete(s.sessions, id)
	s.snapshot()

	return true
}

// List returns session summaries, optionally filtered by owning user, most
// recently updated first.
func (s *Service) List(userID string) []Summary {
	s.mu.RLock()

	var result []Summary
	for _, sess := range s.sessions {
		if userID != "" && sess.UserID != userID {
			continue
		}

		result = append(result, Summary{
			SessionID:    sess.SessionID,
			UserID:       sess.UserID,
			CreatedAt:    sess.CreatedAt.Format(time.RFC3339),
			UpdatedAt:    sess.UpdatedAt.Format(time.RFC3339),
			MessageCount: len(sess.Messages),
		})
	}

	s.mu.RUnlock()

	return pie.SortUsing(result, func(a, b Summary) bool {
		return a.UpdatedAt > b.UpdatedAt
	})
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func (s *Service) load() error {
	file, err := os.OpenFile(s.filePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return oops.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var sess Session
		if err = json.Unmarshal([]byte(line), &sess); err != nil {
			return oops.Errorf("failed to parse session line: %w", err)
		}

		s.sessions[sess.SessionID] = &sess
	}

	if err = scanner.Err(); err != nil {
		return oops.Errorf("error reading session file: %w", err)
	}

	return nil
}

// snapshot rewrites the JSONL file; callers hold the write lock. Snapshot
// failures are logged, never propagated: the in-memory store stays the source
// of truth for the running process.
func (s *Service) snapshot() {
	file, err := os.OpenFile(s.filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		slog.Warn("Failed to open session file for snapshot", "error", err)
		return
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	for _, sess := range s.sessions {
		line, err := json.Marshal(sess)
		if err != nil {
			slog.Warn("Failed to marshal session", "session_id", sess.SessionID, "error", err)
			continue
		}

		if _, err = writer.Write(append(line, '\n')); err != nil {
			slog.Warn("Failed to write session", "session_id", sess.SessionID, "error", err)
			return
		}
	}

	if err = writer.Flush(); err != nil {
		slog.Warn("Failed to flush session snapshot", "error", err)
	}
}

func (sess *Session) clone() *Session {
	cp := *sess
	cp.Messages = make([]Message, len(sess.Messages))
	copy(cp.Messages, sess.Messages)

	return &cp
}
