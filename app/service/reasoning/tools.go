package reasoning

import (
	"context"
	"encoding/json"

	"concierge/app/service/account"
	"concierge/app/service/facility"
	"concierge/app/service/notes"

	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
)

// Tool names form the wire contract shared by the reasoning loop, the
// extractor and the MCP surface.
const (
	ToolFetchAccount  = "fetch_account_details"
	ToolFetchFacility = "fetch_facility_details"
	ToolSaveNote      = "save_note"
	ToolFetchNotes    = "fetch_notes"
)

type toolEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

func envelopeJSON(env toolEnvelope) string {
	b, _ := json.Marshal(env)
	return string(b)
}

type agentTool struct {
	name        string
	description string
	parameters  map[string]any
	call        func(ctx context.Context, input string) (string, error)
}

var _ tools.Tool = (*agentTool)(nil)

func (t *agentTool) Name() string {
	return t.name
}

func (t *agentTool) Description() string {
	return t.description
}

func (t *agentTool) Call(ctx context.Context, input string) (string, error) {
	return t.call(ctx, input)
}

// Catalog holds the domain tools offered to the reasoning service together
// with their function-call definitions.
type Catalog struct {
	byName map[string]*agentTool
	defs   []llms.Tool
}

func NewCatalog(accountSvc *account.Service, facilitySvc *facility.Service, notesSvc *notes.Service) *Catalog {
	all := []*agentTool{
		{
			name:        ToolFetchAccount,
			description: "Retrieve account related information including status, facilities, balance, and rewards.",
			parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"account_id": map[string]any{
						"type":        "string",
						"description": "The account ID to fetch details for (e.g. 'A-011977763')",
					},
				},
				"required": []string{"account_id"},
			},
			call: func(_ context.Context, input string) (string, error) {
				var args struct {
					AccountID string `json:"account_id"`
				}
				if err := json.Unmarshal([]byte(input), &args); err != nil {
					return "", oops.Errorf("invalid arguments JSON: %w", err)
				}

				acc, err := accountSvc.Get(args.AccountID)
				if err != nil {
					return envelopeJSON(toolEnvelope{Error: err.Error()}), nil
				}

				return envelopeJSON(toolEnvelope{Success: true, Data: acc}), nil
			},
		},
		{
			name:        ToolFetchFacility,
			description: "Retrieve facility related information including medical licenses, agreements, and status.",
			parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"facility_id": map[string]any{
						"type":        "string",
						"description": "The facility ID to fetch details for (e.g. 'F-015766066')",
					},
				},
				"required": []string{"facility_id"},
			},
			call: func(_ context.Context, input string) (string, error) {
				var args struct {
					FacilityID string `json:"facility_id"`
				}
				if err := json.Unmarshal([]byte(input), &args); err != nil {
					return "", oops.Errorf("invalid arguments JSON: %w", err)
				}

				fac, err := facilitySvc.Get(args.FacilityID)
				if err != nil {
					return envelopeJSON(toolEnvelope{Error: err.Error()}), nil
				}

				return envelopeJSON(toolEnvelope{Success: true, Data: fac}), nil
			},
		},
		{
			name:        ToolSaveNote,
			description: "Store a meeting minute or note for a user.",
			parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{
						"type":        "string",
						"description": "Owner of the note",
					},
					"content": map[string]any{
						"type":        "string",
						"description": "Note content to store",
					},
				},
				"required": []string{"content"},
			},
			call: func(_ context.Context, input string) (string, error) {
				var args struct {
					UserID  string `json:"user_id"`
					Content string `json:"content"`
				}
				if err := json.Unmarshal([]byte(input), &args); err != nil {
					return "", oops.Errorf("invalid arguments JSON: %w", err)
				}

				note, err := notesSvc.Save(args.UserID, args.Content)
				if err != nil {
					return envelopeJSON(toolEnvelope{Error: err.Error()}), nil
				}

				return envelopeJSON(toolEnvelope{Success: true, Data: note}), nil
			},
		},
		{
			name:        ToolFetchNotes,
			description: "Retrieve saved notes filtered by user, date, or recent history.",
			parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": map[string]any{
						"type":        "string",
						"description": "Optional owner filter",
					},
					"date": map[string]any{
						"type":        "string",
						"description": "Optional creation date filter (YYYY-MM-DD or DD/MM/YYYY)",
					},
					"last_n": map[string]any{
						"type":        "integer",
						"description": "Number of notes to return (default 5)",
					},
					"order": map[string]any{
						"type":        "string",
						"description": "'desc' for newest first (default), 'asc' for oldest first",
					},
				},
			},
			call: func(_ context.Context, input string) (string, error) {
				var args struct {
					UserID string `json:"user_id"`
					Date   string `json:"date"`
					LastN  int    `json:"last_n"`
					Order  string `json:"order"`
				}
				if input != "" {
					if err := json.Unmarshal([]byte(input), &args); err != nil {
						return "", oops.Errorf("invalid arguments JSON: %w", err)
					}
				}

				result := notesSvc.Fetch(notes.Query{
					UserID: args.UserID,
					Date:   args.Date,
					Count:  args.LastN,
					Order:  args.Order,
				})

				return envelopeJSON(toolEnvelope{Success: true, Data: result, Count: len(result)}), nil
			},
		},
	}

	c := &Catalog{
		byName: make(map[string]*agentTool, len(all)),
	}

	for _, t := range all {
		c.byName[t.name] = t
		c.defs = append(c.defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.name,
				Description: t.description,
				Parameters:  t.parameters,
			},
		})
	}

	return c
}

// Definitions returns the function-call descriptors for the chat request.
func (c *Catalog) Definitions() []llms.Tool {
	return c.defs
}

// Call executes a named tool with raw JSON arguments.
func (c *Catalog) Call(ctx context.Context, name, input string) (string, error) {
	t, ok := c.byName[name]
	if !ok {
		return "", oops.Errorf("unknown tool: %s", name)
	}

	return t.Call(ctx, input)
}
