package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"concierge/app/config"
	"concierge/app/service/session"
	"concierge/app/service/turn"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP transport: request framing and validation only, all turn
// semantics live in the turn service.
type Server struct {
	cfg        *config.Config
	app        *fiber.App
	validate   *validator.Validate
	sessionSvc *session.Service
	turnSvc    *turn.Service
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:        do.MustInvoke[*config.Config](di),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		sessionSvc: do.MustInvoke[*session.Service](di),
		turnSvc:    do.MustInvoke[*turn.Service](di),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "concierge",
		DisableStartupMessage: true,
	})

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.app.Get("/", s.handleRoot)
	s.app.Get("/health", s.handleHealth)

	s.app.Post("/sessions", s.handleCreateSession)
	s.app.Get("/sessions", s.handleListSessions)
	s.app.Get("/sessions/:id", s.handleGetSession)
	s.app.Delete("/sessions/:id", s.handleDeleteSession)
	s.app.Get("/sessions/:id/history", s.handleHistory)

	s.app.Post("/chat", s.handleChat)
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			slog.Warn("HTTP shutdown failed", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	slog.Info("HTTP server listening", "addr", addr)

	if err := s.app.Listen(addr); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("HTTP server stopped", "error", err, "telegram", true)
	}
}
