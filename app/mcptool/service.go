package mcptool

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"concierge/app/service/account"
	"concierge/app/service/facility"
	"concierge/app/service/notes"
	"concierge/app/service/reasoning"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

// Service exposes the domain tool catalog over MCP stdio so external agent
// runtimes can reuse the same data services the reasoning loop calls, with
// the identical wire envelope.
type Service struct {
	accountSvc  *account.Service
	facilitySvc *facility.Service
	notesSvc    *notes.Service

	srv *server.MCPServer
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		accountSvc:  do.MustInvoke[*account.Service](di),
		facilitySvc: do.MustInvoke[*facility.Service](di),
		notesSvc:    do.MustInvoke[*notes.Service](di),
	}

	s.srv = server.NewMCPServer("concierge-tools", "1.0.0",
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s, nil
}

func (s *Service) registerTools() {
	s.srv.AddTool(
		mcp.NewTool(reasoning.ToolFetchAccount,
			mcp.WithDescription("Retrieve account related information including status, facilities, balance, and rewards."),
			mcp.WithString("account_id", mcp.Required(), mcp.Description("Account ID, e.g. 'A-011977763'")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("account_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			acc, err := s.accountSvc.Get(id)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return jsonResult(acc)
		},
	)

	s.srv.AddTool(
		mcp.NewTool(reasoning.ToolFetchFacility,
			mcp.WithDescription("Retrieve facility related information including medical licenses, agreements, and status."),
			mcp.WithString("facility_id", mcp.Required(), mcp.Description("Facility ID, e.g. 'F-015766066'")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("facility_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			fac, err := s.facilitySvc.Get(id)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return jsonResult(fac)
		},
	)

	s.srv.AddTool(
		mcp.NewTool(reasoning.ToolSaveNote,
			mcp.WithDescription("Store a meeting minute or note for a user."),
			mcp.WithString("user_id", mcp.Description("Owner of the note")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Note content to store")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			content, err := req.RequireString("content")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			note, err := s.notesSvc.Save(req.GetString("user_id", ""), content)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return jsonResult(note)
		},
	)

	s.srv.AddTool(
		mcp.NewTool(reasoning.ToolFetchNotes,
			mcp.WithDescription("Retrieve saved notes filtered by user, date, or recent history."),
			mcp.WithString("user_id", mcp.Description("Optional owner filter")),
			mcp.WithString("date", mcp.Description("Optional creation date filter (YYYY-MM-DD or DD/MM/YYYY)")),
			mcp.WithNumber("last_n", mcp.Description("Number of notes to return (default 5)")),
			mcp.WithString("order", mcp.Description("'desc' for newest first (default), 'asc' for oldest first")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result := s.notesSvc.Fetch(notes.Query{
				UserID: req.GetString("user_id", ""),
				Date:   req.GetString("date", ""),
				Count:  req.GetInt("last_n", 0),
				Order:  req.GetString("order", ""),
			})

			return jsonResult(result)
		},
	)
}

// Run serves MCP over stdio until the context is cancelled or stdin closes.
func (s *Service) Run(ctx context.Context) {
	slog.Info("MCP tool server listening on stdio")

	stdio := server.NewStdioServer(s.srv)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		slog.Error("MCP tool server stopped", "error", err, "telegram", true)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(b)), nil
}
