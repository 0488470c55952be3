package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/server/store"
)

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  *mapdoc.CloudUser `json:"user"`
}

type meResponse struct {
	User *mapdoc.CloudUser `json:"user"`
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "email and password required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to hash password"})
	}

	user, err := s.store.CreateUser(c.Context(), email, hash)
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: "email already registered"})
		}
		s.logger.Error("failed to create user", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to create user"})
	}

	return s.issueSession(c, user)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req authRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.store.UserByEmail(c.Context(), email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid email or password"})
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid email or password"})
	}

	return s.issueSession(c, user)
}

func (s *Server) issueSession(c *fiber.Ctx, user *store.User) error {
	token := uuid.NewString()
	if err := s.store.CreateSession(c.Context(), token, user.ID); err != nil {
		s.logger.Error("failed to create session", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to create session"})
	}

	return c.JSON(authResponse{
		Token: token,
		User:  &mapdoc.CloudUser{ID: user.ID, Email: user.Email},
	})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	if err := s.store.DeleteSession(c.Context(), bearerToken(c)); err != nil {
		s.logger.Warn("failed to delete session", "err", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	user := s.currentUser(c)
	return c.JSON(meResponse{
		User: &mapdoc.CloudUser{ID: user.ID, Email: user.Email},
	})
}
