package api

import "concierge/app/service/turn"

type createSessionRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type createSessionResponse struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	CreatedAt      string `json:"created_at"`
	Message        string `json:"message"`
}

type chatRequest struct {
	Text           string `json:"text" validate:"required"`
	UserID         string `json:"user_id"`
	AccountID      string `json:"account_id"`
	FacilityID     string `json:"facility_id"`
	ConversationID string `json:"conversation_id" validate:"required"`
}

// chatResponse flattens the resolved turn into the wire payload alongside the
// conversation id.
type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	*turn.Response
}

type historyMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

type historyResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []historyMessage `json:"messages"`
}

type healthResponse struct {
	Status         string `json:"status"`
	AgentModel     string `json:"agent_model"`
	ActiveSessions int    `json:"active_sessions"`
}
