package server

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"placement-portal/internal/ai"
	"placement-portal/internal/attachments"
	"placement-portal/internal/chat"
	"placement-portal/internal/compare"
	"placement-portal/internal/notify"
	"placement-portal/internal/portal"
	"placement-portal/internal/selection"
)

const maxUploadBytes = 10 * 1024 * 1024

// Deps carries everything the HTTP surface delegates to.
type Deps struct {
	Store         *portal.Store
	Loader        *attachments.Loader
	Notifications *notify.Queue
	Selection     *selection.Set
	Ranking       *compare.Ranking
	Pairwise      *compare.Pairwise
	ChatStarter   ai.ConversationStarter
	Logger        *zap.Logger
}

// Server exposes the portal over HTTP. It mirrors the single-operator shape
// of the application: one actor is signed in at a time, and the chat session
// and selection set belong to that actor.
type Server struct {
	app  *fiber.App
	addr string
	log  *zap.Logger
	deps Deps

	mu        sync.Mutex
	actor     *portal.User
	session   *chat.Manager
	rankedJob int
}

func New(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		BodyLimit: maxUploadBytes,
	})

	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	s := &Server{
		app:  app,
		addr: addr,
		log:  deps.Logger,
		deps: deps,
	}
	s.registerRoutes()

	return s
}

// App exposes the underlying fiber app, mainly for tests via app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.log.Info("server listening", zap.String("addr", s.addr))
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown() error {
	s.mu.Lock()
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
	s.mu.Unlock()

	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	api.Post("/login", s.login)
	api.Post("/logout", s.logout)
	api.Post("/register", s.register)

	api.Get("/jobs", s.listJobs)
	api.Get("/jobs/:id", s.getJob)
	api.Post("/jobs/:id/applications", s.apply)

	api.Get("/notifications", s.listNotifications)
	api.Delete("/notifications/:id", s.dismissNotification)

	api.Get("/students", s.listStudents)

	api.Post("/selection/:studentId", s.toggleSelection)
	api.Get("/selection", s.getSelection)
	api.Delete("/selection", s.resetSelection)

	api.Post("/comparisons/jobs/:id", s.startRanking)
	api.Get("/comparisons/jobs/:id", s.getRanking)
	api.Post("/comparisons/candidates", s.startPairwise)
	api.Get("/comparisons/candidates", s.getPairwise)

	api.Post("/chat/messages", s.sendChatMessage)
	api.Get("/chat/messages", s.getChatTranscript)
}

// currentActor returns the signed-in actor, or nil.
func (s *Server) currentActor() *portal.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.actor
}

// requireActor writes a 401 and reports false when nobody is signed in.
func (s *Server) requireActor(c *fiber.Ctx) (*portal.User, bool) {
	actor := s.currentActor()
	if actor == nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not signed in"})
		return nil, false
	}
	return actor, true
}

// requireAdmin writes a 401/403 and reports false unless the admin is
// signed in.
func (s *Server) requireAdmin(c *fiber.Ctx) (*portal.User, bool) {
	actor, ok := s.requireActor(c)
	if !ok {
		return nil, false
	}
	if actor.Role != portal.RoleAdmin {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
		return nil, false
	}
	return actor, true
}
