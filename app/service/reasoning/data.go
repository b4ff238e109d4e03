package reasoning

import (
	"encoding/json"

	"concierge/app/data"
)

// Message is one history entry handed to the reasoning service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the per-turn input contract: full prior history, the new user
// text and the explicit ids supplied with the turn.
type Request struct {
	History    []Message
	Text       string
	AccountID  string
	FacilityID string
	UserID     string
	SessionID  string
}

// ToolInvocation records one tool call the reasoning service made. It is a
// record, not a live call; the extractor replays it against the data services.
type ToolInvocation struct {
	Name      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// StringArg returns a string argument by key, or "" when absent.
func (t ToolInvocation) StringArg(key string) string {
	v, _ := t.Arguments[key].(string)
	return v
}

// IntArg returns an integer argument by key, tolerating the float64 shape
// JSON decoding produces. Returns 0 when absent or malformed.
func (t ToolInvocation) IntArg(key string) int {
	switch v := t.Arguments[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// StructuredOutput is the optional machine-readable object the reasoning
// service may emit alongside its prose.
type StructuredOutput struct {
	FinalResponse    string                 `json:"final_response"`
	CardKey          string                 `json:"card_key"`
	AccountOverview  []data.Account         `json:"account_overview"`
	RewardsOverview  []data.RewardsOverview `json:"rewards_overview"`
	FacilityOverview []data.Facility        `json:"facility_overview"`
	OrderOverview    []data.OrderOverview   `json:"order_overview"`
	NoteOverview     []data.Note            `json:"note_overview"`
}

var knownCardKeys = map[string]bool{
	"account_overview":  true,
	"facility_overview": true,
	"rewards_overview":  true,
	"order_overview":    true,
	"note_overview":     true,
	"other":             true,
	"general":           true,
}

// Consistent reports whether the structured output passes its own field
// constraints; inconsistent objects are ignored by the extractor.
func (o *StructuredOutput) Consistent() bool {
	if o == nil {
		return false
	}

	return o.CardKey == "" || knownCardKeys[o.CardKey]
}

// Result is the reasoning service's output contract. Text may be empty,
// Structured may be nil; ToolCalls lists every tool invoked this turn.
type Result struct {
	Text       string
	Structured *StructuredOutput
	ToolCalls  []ToolInvocation
}

func decodeArguments(raw string) map[string]any {
	args := map[string]any{}
	if raw == "" {
		return args
	}

	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		args["input"] = raw
	}

	return args
}
