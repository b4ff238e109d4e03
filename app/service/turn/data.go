package turn

import (
	"fmt"

	"concierge/app/service/card"
	"concierge/app/service/overlay"
	"concierge/app/service/reasoning"
)

// ErrValidation marks malformed turn input, rejected before any processing.
var ErrValidation = fmt.Errorf("invalid turn input")

// Input is one turn request as the transport layer hands it over.
type Input struct {
	Text       string
	SessionID  string
	UserID     string
	AccountID  string
	FacilityID string
}

// Response is the terminal artifact of a turn: constructed exactly once,
// never mutated after assembly. Overlay keys are flattened into the payload.
type Response struct {
	FinalResponse string   `json:"final_response"`
	CardKey       card.Key `json:"card_key"`
	overlay.Map
	ToolCalls []reasoning.ToolInvocation `json:"tool_calls"`
	Success   bool                       `json:"success"`
	Error     string                     `json:"error,omitempty"`
}

func assemble(text string, key card.Key, m overlay.Map, toolCalls []reasoning.ToolInvocation) *Response {
	if toolCalls == nil {
		toolCalls = []reasoning.ToolInvocation{}
	}

	return &Response{
		FinalResponse: text,
		CardKey:       key,
		Map:           m,
		ToolCalls:     toolCalls,
		Success:       true,
	}
}

// failure converts any upstream fault into the terminal error response. This
// is the single point where partial failures become a total, well-formed
// object; the caller never sees a half-built response.
func failure(err error) *Response {
	return &Response{
		FinalResponse: fmt.Sprintf("I encountered an error: %s", err.Error()),
		CardKey:       card.KeyError,
		Map:           overlay.New(),
		ToolCalls:     []reasoning.ToolInvocation{},
		Error:         err.Error(),
	}
}
