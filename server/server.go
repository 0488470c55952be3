// Package server implements the sync service HTTP API consumed by the
// cloud storage adapter.
package server

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mindfoldco/mindfold/server/store"
)

// Config holds the server settings.
type Config struct {
	// ListenAddr is the address to bind, e.g. ":8787".
	ListenAddr string
	// BodyLimit caps request bodies in bytes. Zero means the default
	// of 16 MiB, sized for base64 image payloads.
	BodyLimit int
}

const defaultBodyLimit = 16 << 20

// Server is the sync API server.
type Server struct {
	config Config
	store  store.Store
	logger *slog.Logger
	app    *fiber.App
}

// errorResponse is the JSON error envelope for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// New creates a sync server. The store is injected to allow sharing
// backends between the server and tests.
func New(config Config, st store.Store, logger *slog.Logger) *Server {
	bodyLimit := config.BodyLimit
	if bodyLimit == 0 {
		bodyLimit = defaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
	})

	s := &Server{
		config: config,
		store:  st,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	app.Post("/api/auth/register", s.handleRegister)
	app.Post("/api/auth/login", s.handleLogin)
	app.Post("/api/auth/logout", s.requireAuth, s.handleLogout)
	app.Get("/api/auth/me", s.requireAuth, s.handleMe)

	app.Get("/api/maps", s.requireAuth, s.handleListMaps)
	app.Get("/api/maps/+", s.requireAuth, s.handleGetMap)
	app.Put("/api/maps/+", s.requireAuth, s.handleSaveMap)
	app.Delete("/api/maps/+", s.requireAuth, s.handleDeleteMap)

	app.Post("/api/images/upload", s.requireAuth, s.handleUploadImage)
	// The list route must be registered before the wildcard so that
	// "list" is never treated as an image key.
	app.Get("/api/images/list", s.requireAuth, s.handleListImages)
	app.Get("/api/images/+", s.requireAuth, s.handleGetImage)
	app.Delete("/api/images/+", s.requireAuth, s.handleDeleteImage)

	return s
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting sync server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app, used by tests to drive requests
// in-process.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

const userKey = "user"

// requireAuth resolves the bearer token into a user and stores it on the
// request context.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "missing bearer token"})
	}

	user, err := s.store.UserByToken(c.Context(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid session"})
	}

	c.Locals(userKey, user)
	return c.Next()
}

func (s *Server) currentUser(c *fiber.Ctx) *store.User {
	user, _ := c.Locals(userKey).(*store.User)
	return user
}

// bearerToken returns the token from the Authorization header. Callers
// behind requireAuth can assume it is present.
func bearerToken(c *fiber.Ctx) string {
	token, _ := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	return token
}
