package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"placement-portal/internal/chat"
	"placement-portal/internal/portal"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login authenticates the actor and opens their chat session. Signing in
// replaces any previous actor: the old session is closed and the candidate
// selection is cleared.
func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	user, err := s.deps.Store.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, portal.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	session := chat.NewManager(context.Background(), s.deps.ChatStarter, user, s.deps.Store.Jobs(), s.log)

	s.mu.Lock()
	if s.session != nil {
		s.session.Close()
	}
	s.actor = user
	s.session = session
	s.mu.Unlock()

	s.deps.Selection.Reset()
	s.deps.Ranking.Reset()
	s.deps.Pairwise.Reset()

	s.log.Info("actor signed in",
		zap.Int("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return c.JSON(user)
}

// logout tears down the actor's session state.
func (s *Server) logout(c *fiber.Ctx) error {
	s.mu.Lock()
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
	actor := s.actor
	s.actor = nil
	s.mu.Unlock()

	s.deps.Selection.Reset()
	s.deps.Ranking.Reset()
	s.deps.Pairwise.Reset()

	if actor != nil {
		s.log.Info("actor signed out", zap.Int("user_id", actor.ID))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
	}

	user, err := s.deps.Store.Register(req.Name, req.Email, req.Password, portal.RoleStudent)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// currentSession returns the signed-in actor's chat session, or nil.
func (s *Server) currentSession() *chat.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session
}
