package turn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"concierge/app/service/card"
	"concierge/app/service/intent"
	"concierge/app/service/narrative"
	"concierge/app/service/overlay"
	"concierge/app/service/reasoning"
	"concierge/app/service/session"

	"github.com/samber/do"
)

// Service drives one turn end to end: reasoning call, extraction, card
// resolution, narrative synthesis, assembly, history append.
type Service struct {
	sessionSvc *session.Service
	reasoner   reasoning.Client
	extractor  *overlay.Extractor

	// one mutex per session id; turns on the same session are processed in
	// the order received, turns on different sessions run in parallel.
	locks sync.Map
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		sessionSvc: do.MustInvoke[*session.Service](di),
		reasoner:   do.MustInvoke[reasoning.Client](di),
		extractor:  do.MustInvoke[*overlay.Extractor](di),
	}, nil
}

// Process handles one turn. Validation and unknown-session faults are
// returned as errors for the transport to map; everything downstream of a
// valid request resolves to a well-formed Response, failed reasoning
// included. No message is appended unless the full response was produced.
func (s *Service) Process(ctx context.Context, in Input) (*Response, error) {
	if in.SessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}
	if in.Text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrValidation)
	}

	unlock := s.lockSession(in.SessionID)
	defer unlock()

	sess, err := s.sessionSvc.Get(in.SessionID)
	if err != nil {
		return nil, err
	}

	ids := intent.EntityIDs{
		AccountID:  in.AccountID,
		FacilityID: in.FacilityID,
		UserID:     in.UserID,
	}
	if ids.UserID == "" {
		ids.UserID = sess.UserID
	}

	start := time.Now()

	result, err := s.reasoner.Reason(ctx, reasoning.Request{
		History:    s.historyFor(in.SessionID),
		Text:       in.Text,
		AccountID:  ids.AccountID,
		FacilityID: ids.FacilityID,
		UserID:     ids.UserID,
		SessionID:  in.SessionID,
	})
	if err != nil {
		slog.Error("Reasoning call failed",
			"session_id", in.SessionID,
			"error", err,
			"telegram", true)
		return failure(err), nil
	}

	hints := intent.Resolve(in.Text, ids)
	m := s.extractor.Extract(result.ToolCalls, ids, result.Structured, hints)

	var structuredKey card.Key
	if result.Structured != nil {
		structuredKey = card.Key(result.Structured.CardKey)
	}

	key := card.Resolve(hints, ids, &m, structuredKey)
	text := narrative.Synthesize(m, in.Text, result.Text)

	resp := assemble(text, key, m, result.ToolCalls)

	if err = s.sessionSvc.Append(in.SessionID, session.RoleUser, in.Text); err != nil {
		slog.Warn("Failed to append user message", "session_id", in.SessionID, "error", err)
	}
	if err = s.sessionSvc.Append(in.SessionID, session.RoleAssistant, resp.FinalResponse); err != nil {
		slog.Warn("Failed to append assistant message", "session_id", in.SessionID, "error", err)
	}

	slog.Info("Turn processed",
		"session_id", in.SessionID,
		"card_key", key,
		"tool_calls", len(resp.ToolCalls),
		"duration", time.Since(start))

	return resp, nil
}

func (s *Service) lockSession(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}

func (s *Service) historyFor(sessionID string) []reasoning.Message {
	msgs := s.sessionSvc.History(sessionID)

	history := make([]reasoning.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, reasoning.Message{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	return history
}
