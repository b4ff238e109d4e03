package turn_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"concierge/app/data"
	"concierge/app/service/account"
	"concierge/app/service/card"
	"concierge/app/service/facility"
	"concierge/app/service/notes"
	"concierge/app/service/overlay"
	"concierge/app/service/reasoning"
	"concierge/app/service/session"
	"concierge/app/service/turn"

	"github.com/samber/do"
)

type stubReasoner struct {
	result  *reasoning.Result
	err     error
	lastReq reasoning.Request
}

func (s *stubReasoner) Reason(_ context.Context, req reasoning.Request) (*reasoning.Result, error) {
	s.lastReq = req

	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTurnService(t *testing.T, stub *stubReasoner) (*turn.Service, *session.Service) {
	t.Helper()

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })

	do.ProvideValue(di, data.NewStore())
	do.Provide(di, account.New)
	do.Provide(di, facility.New)
	do.Provide(di, notes.New)
	do.Provide(di, overlay.NewExtractor)
	do.ProvideValue[reasoning.Client](di, stub)

	sessionSvc, err := session.NewWithFile(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("session.NewWithFile: %v", err)
	}
	do.ProvideValue(di, sessionSvc)

	svc, err := turn.New(di)
	if err != nil {
		t.Fatalf("turn.New: %v", err)
	}

	return svc, sessionSvc
}

func TestProcessAccountOverview(t *testing.T) {
	stub := &stubReasoner{result: &reasoning.Result{
		Text: "Here is your account.",
		ToolCalls: []reasoning.ToolInvocation{{
			Name:      reasoning.ToolFetchAccount,
			Arguments: map[string]any{"account_id": "A-011977763"},
		}},
	}}

	svc, sessionSvc := newTurnService(t, stub)
	sess := sessionSvc.Create("user@example.com")

	resp, err := svc.Process(context.Background(), turn.Input{
		Text:      "show account overview",
		SessionID: sess.SessionID,
		AccountID: "A-011977763",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !resp.Success {
		t.Error("Success = false")
	}
	if resp.CardKey != card.KeyAccountOverview {
		t.Errorf("CardKey = %q, want %q", resp.CardKey, card.KeyAccountOverview)
	}
	if len(resp.AccountOverview) != 1 || resp.AccountOverview[0].Name != "Dimod Account" {
		t.Errorf("AccountOverview = %+v", resp.AccountOverview)
	}
	if !strings.Contains(resp.FinalResponse, "Here is a summary of your account:") {
		t.Errorf("FinalResponse = %q", resp.FinalResponse)
	}
	if len(resp.ToolCalls) != 1 {
		t.Errorf("ToolCalls = %+v", resp.ToolCalls)
	}

	history := sessionSvc.History(sess.SessionID)
	if len(history) != 2 {
		t.Fatalf("history has %d messages, want 2", len(history))
	}
	if history[0].Role != session.RoleUser || history[0].Content != "show account overview" {
		t.Errorf("first history message = %+v", history[0])
	}
	if history[1].Role != session.RoleAssistant || history[1].Content != resp.FinalResponse {
		t.Errorf("second history message = %+v", history[1])
	}
}

func TestProcessSpecificFieldRedactsAccount(t *testing.T) {
	stub := &stubReasoner{result: &reasoning.Result{
		Text: "You have 40 points to go.",
	}}

	svc, sessionSvc := newTurnService(t, stub)
	sess := sessionSvc.Create("user@example.com")

	resp, err := svc.Process(context.Background(), turn.Input{
		Text:      "how many points do I have",
		SessionID: sess.SessionID,
		AccountID: "A-011977763",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if resp.CardKey != card.KeyOther {
		t.Errorf("CardKey = %q, want %q", resp.CardKey, card.KeyOther)
	}
	if resp.AccountOverview == nil || len(resp.AccountOverview) != 0 {
		t.Errorf("AccountOverview = %+v, want empty slice", resp.AccountOverview)
	}
	if resp.FinalResponse != "You have 40 points to go." {
		t.Errorf("FinalResponse = %q", resp.FinalResponse)
	}
}

func TestProcessNotesRequest(t *testing.T) {
	stub := &stubReasoner{result: &reasoning.Result{Text: "Fetched."}}

	svc, sessionSvc := newTurnService(t, stub)
	sess := sessionSvc.Create("user@example.com")

	resp, err := svc.Process(context.Background(), turn.Input{
		Text:      "fetch last 3 notes",
		SessionID: sess.SessionID,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if resp.CardKey != card.KeyNoteOverview {
		t.Errorf("CardKey = %q, want %q", resp.CardKey, card.KeyNoteOverview)
	}
	if len(resp.NoteOverview) != 3 {
		t.Fatalf("got %d notes, want 3", len(resp.NoteOverview))
	}
	for i := 1; i < len(resp.NoteOverview); i++ {
		if resp.NoteOverview[i].CreatedAt.After(resp.NoteOverview[i-1].CreatedAt) {
			t.Errorf("notes not newest first at index %d", i)
		}
	}
	if !strings.Contains(resp.FinalResponse, "Here are your notes:") {
		t.Errorf("FinalResponse = %q", resp.FinalResponse)
	}
}

func TestProcessGreeting(t *testing.T) {
	stub := &stubReasoner{result: &reasoning.Result{Text: ""}}

	svc, sessionSvc := newTurnService(t, stub)
	sess := sessionSvc.Create("user@example.com")

	resp, err := svc.Process(context.Background(), turn.Input{
		Text:      "hello",
		SessionID: sess.SessionID,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if resp.CardKey != card.KeyGeneral {
		t.Errorf("CardKey = %q, want %q", resp.CardKey, card.KeyGeneral)
	}
	if resp.FinalResponse != "I'm here to help! How can I assist you?" {
		t.Errorf("FinalResponse = %q", resp.FinalResponse)
	}
	if len(resp.ToolCalls) != 0 || resp.ToolCalls == nil {
		t.Errorf("ToolCalls = %+v, want empty slice", resp.ToolCalls)
	}
}

func TestProcessStructuredCardKey(t *testing.T) {
	stub := &stubReasoner{result: &reasoning.Result{
		Text: "You earned 10 points this quarter.",
		Structured: &reasoning.StructuredOutput{
			FinalResponse: "You earned 10 points this quarter.",
			CardKey:       "rewards_overview",
			RewardsOverview: []data.RewardsOverview{{
				CurrentTier: "Member",
			}},
		},
	}}

	svc, sessionSvc := newTurnService(t, stub)
	sess := sessionSvc.Create("user@example.com")

	resp, err := svc.Process(context.Background(), turn.Input{
		Text:      "tell me about my quarter",
		SessionID: sess.SessionID,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if resp.CardKey != card.KeyRewardsOverview {
		t.Errorf("CardKey = %q, want %q", resp.CardKey, card.KeyRewardsOverview)
	}
	if len(resp.RewardsOverview) != 1 {
		t.Errorf("RewardsOverview = %+v", resp.RewardsOverview)
	}
	if resp.FinalResponse != "You earned 10 points this quarter." {
		t.Errorf("FinalResponse = %q", resp.FinalResponse)
	}
}

func TestProcessReasonerFailure(t *testing.T) {
	stub := &stubReasoner{err: fmt.Errorf("model unavailable")}

	svc, sessionSvc := newTurnService(t, stub)
	sess := sessionSvc.Create("user@example.com")

	resp, err := svc.Process(context.Background(), turn.Input{
		Text:      "show account overview",
		SessionID: sess.SessionID,
		AccountID: "A-011977763",
	})
	if err != nil {
		t.Fatalf("Process returned transport error: %v", err)
	}

	if resp.Success {
		t.Error("Success = true for failed turn")
	}
	if resp.CardKey != card.KeyError {
		t.Errorf("CardKey = %q, want %q", resp.CardKey, card.KeyError)
	}
	if resp.FinalResponse != "I encountered an error: model unavailable" {
		t.Errorf("FinalResponse = %q", resp.FinalResponse)
	}
	if resp.Error != "model unavailable" {
		t.Errorf("Error = %q", resp.Error)
	}
	if len(resp.AccountOverview) != 0 {
		t.Errorf("AccountOverview = %+v, want empty", resp.AccountOverview)
	}

	if got := sessionSvc.History(sess.SessionID); len(got) != 0 {
		t.Errorf("failed turn appended %d messages, want 0", len(got))
	}
}

func TestProcessValidation(t *testing.T) {
	svc, sessionSvc := newTurnService(t, &stubReasoner{result: &reasoning.Result{}})
	sess := sessionSvc.Create("user@example.com")

	tests := []struct {
		name    string
		input   turn.Input
		wantErr error
	}{
		{
			name:    "missing session id",
			input:   turn.Input{Text: "hello"},
			wantErr: turn.ErrValidation,
		},
		{
			name:    "missing text",
			input:   turn.Input{SessionID: sess.SessionID},
			wantErr: turn.ErrValidation,
		},
		{
			name:    "unknown session",
			input:   turn.Input{Text: "hello", SessionID: "nope"},
			wantErr: session.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Process(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Process() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProcessPassesContextToReasoner(t *testing.T) {
	stub := &stubReasoner{result: &reasoning.Result{Text: "ok"}}

	svc, sessionSvc := newTurnService(t, stub)
	sess := sessionSvc.Create("owner@example.com")

	if err := sessionSvc.Append(sess.SessionID, session.RoleUser, "earlier question"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	_, err := svc.Process(context.Background(), turn.Input{
		Text:       "follow-up",
		SessionID:  sess.SessionID,
		AccountID:  "A-011977763",
		FacilityID: "F-015766066",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	req := stub.lastReq
	if req.Text != "follow-up" {
		t.Errorf("Text = %q", req.Text)
	}
	if req.AccountID != "A-011977763" || req.FacilityID != "F-015766066" {
		t.Errorf("ids not forwarded: %+v", req)
	}
	if req.UserID != "owner@example.com" {
		t.Errorf("UserID = %q, want session owner", req.UserID)
	}
	if len(req.History) != 1 || req.History[0].Content != "earlier question" {
		t.Errorf("History = %+v", req.History)
	}
}
