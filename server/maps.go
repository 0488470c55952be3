package server

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mindfoldco/mindfold/server/store"
)

type mapDescriptor struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listMapsResponse struct {
	Maps []mapDescriptor `json:"maps"`
}

type mapResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type saveMapRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// wildcardParam returns the decoded wildcard segment of the route. Map
// and image keys can contain slashes; clients escape them, so the raw
// capture is unescaped here.
func wildcardParam(c *fiber.Ctx) string {
	raw := c.Params("+")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func (s *Server) handleListMaps(c *fiber.Ctx) error {
	user := s.currentUser(c)

	records, err := s.store.ListMaps(c.Context(), user.ID)
	if err != nil {
		s.logger.Error("failed to list maps", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to list maps"})
	}

	maps := make([]mapDescriptor, 0, len(records))
	for _, rec := range records {
		maps = append(maps, mapDescriptor{
			ID:        rec.ID,
			Title:     rec.Title,
			UpdatedAt: rec.UpdatedAt,
		})
	}

	return c.JSON(listMapsResponse{Maps: maps})
}

func (s *Server) handleGetMap(c *fiber.Ctx) error {
	user := s.currentUser(c)
	id := wildcardParam(c)
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "map id required"})
	}

	rec, err := s.store.GetMap(c.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "map not found"})
		}
		s.logger.Error("failed to get map", "id", id, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to get map"})
	}

	return c.JSON(mapResponse{
		ID:        rec.ID,
		Title:     rec.Title,
		Content:   rec.Content,
		UpdatedAt: rec.UpdatedAt,
	})
}

func (s *Server) handleSaveMap(c *fiber.Ctx) error {
	user := s.currentUser(c)
	id := wildcardParam(c)
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "map id required"})
	}

	var req saveMapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	rec := store.MapRecord{
		UserID:    user.ID,
		ID:        id,
		Title:     req.Title,
		Content:   req.Content,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.store.PutMap(c.Context(), rec); err != nil {
		s.logger.Error("failed to store map", "id", id, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to store map"})
	}

	return c.JSON(mapResponse{
		ID:        rec.ID,
		Title:     rec.Title,
		Content:   rec.Content,
		UpdatedAt: rec.UpdatedAt,
	})
}

func (s *Server) handleDeleteMap(c *fiber.Ctx) error {
	user := s.currentUser(c)
	id := wildcardParam(c)
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "map id required"})
	}

	if err := s.store.DeleteMap(c.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "map not found"})
		}
		s.logger.Error("failed to delete map", "id", id, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to delete map"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
