package cloud

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/mindfoldco/mindfold/pkg/storage"
)

// SaveImage uploads image bytes. It first attempts a multipart upload;
// if that fails it falls back, exactly once, to a JSON body carrying
// base64 bytes and an explicit content type. Some deployment targets and
// proxies reject multipart but accept JSON.
func (a *Adapter) SaveImage(ctx context.Context, path string, data []byte, contentType string) error {
	if !a.IsAuthenticated() {
		return storage.ErrNotAuthenticated
	}

	cleaned := a.CleanPath(path)
	if cleaned == "" {
		return storage.ErrInvalidMapID{MapID: path, Reason: "empty image path"}
	}

	if err := a.uploadMultipart(ctx, cleaned, data, contentType); err != nil {
		a.logger.Debug("multipart upload failed, falling back to JSON", "path", cleaned, "err", err)
		return a.uploadJSON(ctx, cleaned, data, contentType)
	}

	return nil
}

func (a *Adapter) uploadMultipart(ctx context.Context, path string, data []byte, contentType string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("path", path); err != nil {
		return err
	}
	if err := w.WriteField("contentType", contentType); err != nil {
		return err
	}

	part, err := w.CreateFormFile("file", path)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	// The writer's content type carries the boundary; forcing a plain
	// default here would corrupt the request.
	_, err = a.doRequest(ctx, http.MethodPost, "/api/images/upload", &buf, w.FormDataContentType())
	return err
}

func (a *Adapter) uploadJSON(ctx context.Context, path string, data []byte, contentType string) error {
	body := imageUploadRequest{
		Path:        path,
		ContentType: contentType,
		Data:        base64.StdEncoding.EncodeToString(data),
	}

	return a.sendJSON(ctx, http.MethodPost, "/api/images/upload", body, nil)
}

// ReadImage fetches an image and decodes the server's base64 payload back
// into bytes.
func (a *Adapter) ReadImage(ctx context.Context, path string) ([]byte, string, error) {
	if !a.IsAuthenticated() {
		return nil, "", nil
	}

	cleaned := a.CleanPath(path)

	var resp imageResponse
	if err := a.getJSON(ctx, "/api/images/"+url.PathEscape(cleaned), &resp); err != nil {
		return nil, "", err
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image payload: %w", err)
	}

	return data, resp.ContentType, nil
}

// ReadImageAsDataURL fetches an image as a data: URL string.
func (a *Adapter) ReadImageAsDataURL(ctx context.Context, path string) (string, error) {
	if !a.IsAuthenticated() {
		return "", nil
	}

	cleaned := a.CleanPath(path)

	var resp imageResponse
	if err := a.getJSON(ctx, "/api/images/"+url.PathEscape(cleaned), &resp); err != nil {
		return "", err
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return "data:" + contentType + ";base64," + resp.Data, nil
}

// DeleteImage removes an image by key.
func (a *Adapter) DeleteImage(ctx context.Context, path string) error {
	if !a.IsAuthenticated() {
		return storage.ErrNotAuthenticated
	}

	cleaned := a.CleanPath(path)
	_, err := a.doRequest(ctx, http.MethodDelete, "/api/images/"+url.PathEscape(cleaned), nil, "")
	return err
}

// ListImages returns the stored image keys under prefix. Unauthenticated
// calls degrade to empty.
func (a *Adapter) ListImages(ctx context.Context, prefix string) ([]string, error) {
	if !a.IsAuthenticated() {
		return nil, nil
	}

	path := "/api/images/list"
	if cleaned := a.CleanPath(prefix); cleaned != "" {
		path += "?path=" + url.QueryEscape(cleaned)
	}

	var resp listImagesResponse
	if err := a.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	return resp.Images, nil
}
