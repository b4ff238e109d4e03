package api

import (
	"errors"
	"fmt"
	"time"

	"concierge/app/service/session"
	"concierge/app/service/turn"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":        "Concierge Agent API",
		"version":     "1.0.0",
		"description": "Conversational account, facility and notes assistant",
		"endpoints": fiber.Map{
			"health":         "GET /health",
			"create_session": "POST /sessions",
			"chat":           "POST /chat",
			"list_sessions":  "GET /sessions",
			"get_session":    "GET /sessions/:id",
			"delete_session": "DELETE /sessions/:id",
			"get_history":    "GET /sessions/:id/history",
		},
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		Status:         "healthy",
		AgentModel:     s.cfg.OpenAI.Model,
		ActiveSessions: s.sessionSvc.Count(),
	})
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	sess := s.sessionSvc.Create(req.UserID)

	return c.Status(fiber.StatusCreated).JSON(createSessionResponse{
		ConversationID: sess.SessionID,
		UserID:         sess.UserID,
		CreatedAt:      sess.CreatedAt.Format(time.RFC3339),
		Message:        "Conversation created successfully",
	})
}

func (s *Server) handleListSessions(c *fiber.Ctx) error {
	return c.JSON(s.sessionSvc.List(c.Query("user_id")))
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sess, err := s.sessionSvc.Get(c.Params("id"))
	if err != nil {
		return sessionNotFound(c, c.Params("id"))
	}

	return c.JSON(session.Summary{
		SessionID:    sess.SessionID,
		UserID:       sess.UserID,
		CreatedAt:    sess.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    sess.UpdatedAt.Format(time.RFC3339),
		MessageCount: len(sess.Messages),
	})
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.sessionSvc.Delete(id) {
		return sessionNotFound(c, id)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Session '%s' deleted successfully", id),
	})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	id := c.Params("id")

	sess, err := s.sessionSvc.Get(id)
	if err != nil {
		return sessionNotFound(c, id)
	}

	includeMetadata := c.QueryBool("include_metadata")

	messages := make([]historyMessage, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		msg := historyMessage{Role: m.Role, Content: m.Content}
		if includeMetadata {
			msg.Timestamp = m.Timestamp.Format(time.RFC3339)
		}
		messages = append(messages, msg)
	}

	return c.JSON(historyResponse{
		SessionID: id,
		Messages:  messages,
	})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := s.turnSvc.Process(c.UserContext(), turn.Input{
		Text:       req.Text,
		SessionID:  req.ConversationID,
		UserID:     req.UserID,
		AccountID:  req.AccountID,
		FacilityID: req.FacilityID,
	})

	switch {
	case errors.Is(err, turn.ErrValidation):
		return badRequest(c, err.Error())
	case errors.Is(err, session.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": fmt.Sprintf("Conversation '%s' not found", req.ConversationID),
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": fmt.Sprintf("Error processing message: %s", err.Error()),
		})
	}

	return c.JSON(chatResponse{
		ConversationID: req.ConversationID,
		Response:       resp,
	})
}

func badRequest(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": detail})
}

func sessionNotFound(c *fiber.Ctx, id string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"detail": fmt.Sprintf("Session '%s' not found", id),
	})
}
