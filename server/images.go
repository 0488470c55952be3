package server

import (
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mindfoldco/mindfold/server/store"
)

type imageUploadRequest struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

type imageResponse struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

type listImagesResponse struct {
	Images []string `json:"images"`
}

// handleUploadImage accepts either a multipart form (fields "path",
// "contentType" and a "file" part) or a JSON body carrying the bytes as
// base64. Clients fall back to JSON when multipart is rejected en route.
func (s *Server) handleUploadImage(c *fiber.Ctx) error {
	user := s.currentUser(c)

	var rec store.ImageRecord
	var err error
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		rec, err = parseMultipartUpload(c)
	} else {
		rec, err = parseJSONUpload(c)
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}

	rec.UserID = user.ID
	if rec.ContentType == "" {
		rec.ContentType = mime.TypeByExtension(filepath.Ext(rec.Path))
	}

	if err := s.store.PutImage(c.Context(), rec); err != nil {
		s.logger.Error("failed to store image", "path", rec.Path, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to store image"})
	}

	return c.JSON(imageResponse{
		Path:        rec.Path,
		ContentType: rec.ContentType,
		Data:        base64.StdEncoding.EncodeToString(rec.Data),
	})
}

func parseMultipartUpload(c *fiber.Ctx) (store.ImageRecord, error) {
	path := c.FormValue("path")
	if path == "" {
		return store.ImageRecord{}, errors.New("path field required")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return store.ImageRecord{}, errors.New("file part required")
	}

	f, err := header.Open()
	if err != nil {
		return store.ImageRecord{}, errors.New("failed to open file part")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return store.ImageRecord{}, errors.New("failed to read file part")
	}

	return store.ImageRecord{
		Path:        path,
		ContentType: c.FormValue("contentType"),
		Data:        data,
	}, nil
}

func parseJSONUpload(c *fiber.Ctx) (store.ImageRecord, error) {
	var req imageUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return store.ImageRecord{}, errors.New("invalid request body")
	}
	if req.Path == "" {
		return store.ImageRecord{}, errors.New("path field required")
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return store.ImageRecord{}, errors.New("data must be base64")
	}

	return store.ImageRecord{
		Path:        req.Path,
		ContentType: req.ContentType,
		Data:        data,
	}, nil
}

func (s *Server) handleListImages(c *fiber.Ctx) error {
	user := s.currentUser(c)
	prefix := c.Query("path")

	images, err := s.store.ListImages(c.Context(), user.ID, prefix)
	if err != nil {
		s.logger.Error("failed to list images", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to list images"})
	}

	if images == nil {
		images = []string{}
	}

	return c.JSON(listImagesResponse{Images: images})
}

func (s *Server) handleGetImage(c *fiber.Ctx) error {
	user := s.currentUser(c)
	path := wildcardParam(c)
	if path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "image path required"})
	}

	rec, err := s.store.GetImage(c.Context(), user.ID, path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "image not found"})
		}
		s.logger.Error("failed to get image", "path", path, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to get image"})
	}

	return c.JSON(imageResponse{
		Path:        rec.Path,
		ContentType: rec.ContentType,
		Data:        base64.StdEncoding.EncodeToString(rec.Data),
	})
}

func (s *Server) handleDeleteImage(c *fiber.Ctx) error {
	user := s.currentUser(c)
	path := wildcardParam(c)
	if path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "image path required"})
	}

	if err := s.store.DeleteImage(c.Context(), user.ID, path); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "image not found"})
		}
		s.logger.Error("failed to delete image", "path", path, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "failed to delete image"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
