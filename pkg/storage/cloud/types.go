package cloud

import (
	"time"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
)

// Wire shapes for the sync service API. Every response is decoded into an
// explicit schema at the deserialization boundary; nothing is trusted as
// an untyped body.

type errorResponse struct {
	Error string `json:"error"`
}

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

// mapDescriptor is one entry of the GET /api/maps listing.
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

// imageUploadRequest is the JSON-base64 fallback body for image uploads,
// used when the multipart attempt is rejected.
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
