package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"placement-portal/internal/chat"
)

type chatRequest struct {
	Message string `json:"message"`
}

// sendChatMessage forwards one user message to the actor's assistant
// session and returns the resulting assistant turn. Only one message may be
// in flight at a time; overlapping sends are rejected with 409.
func (s *Server) sendChatMessage(c *fiber.Ctx) error {
	if _, ok := s.requireActor(c); !ok {
		return nil
	}
	session := s.currentSession()
	if session == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "the assistant is not available"})
	}

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	turn, err := session.Send(c.UserContext(), req.Message)
	switch {
	case errors.Is(err, chat.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "a message is already being processed"})
	case errors.Is(err, chat.ErrUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "the assistant is not available"})
	case err != nil:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(turn)
}

func (s *Server) getChatTranscript(c *fiber.Ctx) error {
	if _, ok := s.requireActor(c); !ok {
		return nil
	}
	session := s.currentSession()
	if session == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "the assistant is not available"})
	}

	return c.JSON(session.Transcript())
}
