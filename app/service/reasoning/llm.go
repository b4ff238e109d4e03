package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"concierge/app/config"
	"concierge/app/service/account"
	"concierge/app/service/facility"
	"concierge/app/service/notes"

	_ "embed"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

//go:embed system_prompt.txt
var systemDirective string

const (
	maxReasonDuration  = 30 * time.Second
	maxToolRounds      = 4
	defaultTemperature = 0.7
)

// Service is the production reasoning client backed by an OpenAI-compatible
// chat model with function calling.
type Service struct {
	cfg     *config.Config
	model   llms.Model
	catalog *Catalog
}

var _ Client = (*Service)(nil)

func New(di *do.Injector) (Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	model, err := openai.New(
		openai.WithToken(cfg.OpenAI.Token),
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
	)
	if err != nil {
		return nil, oops.Errorf("failed to create openai client: %w", err)
	}

	catalog := NewCatalog(
		do.MustInvoke[*account.Service](di),
		do.MustInvoke[*facility.Service](di),
		do.MustInvoke[*notes.Service](di),
	)

	return &Service{
		cfg:     cfg,
		model:   model,
		catalog: catalog,
	}, nil
}

func (s *Service) Reason(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, maxReasonDuration)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemDirective),
	}

	for _, m := range req.History {
		role := llms.ChatMessageTypeHuman
		if m.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, m.Content))
	}

	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, contextPrefix(req)+req.Text))

	result := &Result{}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := s.model.GenerateContent(ctx, messages,
			llms.WithTools(s.catalog.Definitions()),
			llms.WithTemperature(defaultTemperature),
		)
		if err != nil {
			return nil, oops.Errorf("failed to create chat completion: %w", err)
		}

		if len(resp.Choices) == 0 {
			return nil, oops.Errorf("no chat completion found")
		}

		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			result.Text, result.Structured = parseStructured(choice.Content)
			return result, nil
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, tc := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, tc)
		}
		messages = append(messages, assistant)

		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}

			name := tc.FunctionCall.Name
			args := tc.FunctionCall.Arguments

			result.ToolCalls = append(result.ToolCalls, ToolInvocation{
				Name:      name,
				Arguments: decodeArguments(args),
			})

			output, err := s.catalog.Call(ctx, name, args)
			if err != nil {
				slog.Warn("Tool call failed", "tool", name, "error", err)
				output = envelopeJSON(toolEnvelope{Error: err.Error()})
			}

			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: tc.ID,
						Name:       name,
						Content:    output,
					},
				},
			})
		}
	}

	return nil, oops.Errorf("tool loop did not converge after %d rounds", maxToolRounds)
}

func contextPrefix(req Request) string {
	var b strings.Builder

	if req.AccountID != "" {
		fmt.Fprintf(&b, "Context: User is asking about account_id: %s. ", req.AccountID)
	}
	if req.FacilityID != "" {
		fmt.Fprintf(&b, "Context: User is asking about facility_id: %s. ", req.FacilityID)
	}

	return b.String()
}
