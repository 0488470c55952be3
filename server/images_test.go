package server_test

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http/httptest"
	"net/url"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type imagePayload struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
}

var _ = Describe("image endpoints", func() {
	var (
		app   *fiber.App
		token string
	)

	uploadJSON := func(path, contentType string, data []byte) imagePayload {
		var out imagePayload
		status := doJSON(app, jsonRequest(fiber.MethodPost, "/api/images/upload", token, map[string]string{
			"path":        path,
			"contentType": contentType,
			"data":        base64.StdEncoding.EncodeToString(data),
		}), &out)
		Expect(status).To(Equal(fiber.StatusOK))
		return out
	}

	uploadMultipart := func(path, contentType string, data []byte) imagePayload {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		Expect(w.WriteField("path", path)).To(Succeed())
		Expect(w.WriteField("contentType", contentType)).To(Succeed())

		part, err := w.CreateFormFile("file", "upload.bin")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Close()).To(Succeed())

		req := httptest.NewRequest(fiber.MethodPost, "/api/images/upload", &body)
		req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		var out imagePayload
		status := doJSON(app, req, &out)
		Expect(status).To(Equal(fiber.StatusOK))
		return out
	}

	BeforeEach(func() {
		app = newTestApp()
		token = registerUser(app, "kay@example.com", "hunter22")
	})

	It("requires authentication", func() {
		status := doJSON(app, jsonRequest(fiber.MethodGet, "/api/images/list", "", nil), nil)
		Expect(status).To(Equal(fiber.StatusUnauthorized))
	})

	Describe("multipart upload", func() {
		It("stores the file and echoes its bytes", func() {
			payload := []byte{0x89, 'P', 'N', 'G'}
			out := uploadMultipart("shots/header.png", "image/png", payload)

			Expect(out.Path).To(Equal("shots/header.png"))
			Expect(out.ContentType).To(Equal("image/png"))
			Expect(out.Data).To(Equal(base64.StdEncoding.EncodeToString(payload)))
		})

		It("requires the path field", func() {
			var body bytes.Buffer
			w := multipart.NewWriter(&body)
			part, err := w.CreateFormFile("file", "upload.bin")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte("x"))
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Close()).To(Succeed())

			req := httptest.NewRequest(fiber.MethodPost, "/api/images/upload", &body)
			req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

			status := doJSON(app, req, nil)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})
	})

	Describe("JSON upload", func() {
		It("accepts base64 bytes", func() {
			payload := []byte("gif bytes")
			out := uploadJSON("shots/anim.gif", "image/gif", payload)

			Expect(out.Path).To(Equal("shots/anim.gif"))
			Expect(out.Data).To(Equal(base64.StdEncoding.EncodeToString(payload)))
		})

		It("rejects bad base64", func() {
			status := doJSON(app, jsonRequest(fiber.MethodPost, "/api/images/upload", token, map[string]string{
				"path": "shots/x.png",
				"data": "not base64!!",
			}), nil)
			Expect(status).To(Equal(fiber.StatusBadRequest))
		})

		It("derives the content type from the extension when omitted", func() {
			out := uploadJSON("shots/pic.png", "", []byte("png"))
			Expect(out.ContentType).To(Equal("image/png"))
		})
	})

	Describe("fetch and delete", func() {
		It("round-trips through the wildcard route", func() {
			payload := []byte("jpeg bytes")
			uploadJSON("shots/photo.jpg", "image/jpeg", payload)

			var out imagePayload
			status := doJSON(app, jsonRequest(fiber.MethodGet,
				"/api/images/"+url.PathEscape("shots/photo.jpg"), token, nil), &out)

			Expect(status).To(Equal(fiber.StatusOK))
			Expect(out.Path).To(Equal("shots/photo.jpg"))
			Expect(out.ContentType).To(Equal("image/jpeg"))
			Expect(out.Data).To(Equal(base64.StdEncoding.EncodeToString(payload)))
		})

		It("returns 404 for a missing image", func() {
			status := doJSON(app, jsonRequest(fiber.MethodGet,
				"/api/images/"+url.PathEscape("missing.png"), token, nil), nil)
			Expect(status).To(Equal(fiber.StatusNotFound))
		})

		It("deletes an image", func() {
			uploadJSON("shots/photo.jpg", "image/jpeg", []byte("x"))

			status := doJSON(app, jsonRequest(fiber.MethodDelete,
				"/api/images/"+url.PathEscape("shots/photo.jpg"), token, nil), nil)
			Expect(status).To(Equal(fiber.StatusNoContent))

			status = doJSON(app, jsonRequest(fiber.MethodDelete,
				"/api/images/"+url.PathEscape("shots/photo.jpg"), token, nil), nil)
			Expect(status).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("listing", func() {
		BeforeEach(func() {
			uploadJSON("shots/a.png", "image/png", []byte("a"))
			uploadJSON("shots/b.png", "image/png", []byte("b"))
			uploadJSON("other/c.png", "image/png", []byte("c"))
		})

		It("lists every image without a prefix", func() {
			var out struct {
				Images []string `json:"images"`
			}
			status := doJSON(app, jsonRequest(fiber.MethodGet, "/api/images/list", token, nil), &out)

			Expect(status).To(Equal(fiber.StatusOK))
			Expect(out.Images).To(ConsistOf("shots/a.png", "shots/b.png", "other/c.png"))
		})

		It("filters by prefix", func() {
			var out struct {
				Images []string `json:"images"`
			}
			status := doJSON(app, jsonRequest(fiber.MethodGet,
				"/api/images/list?path="+url.QueryEscape("shots/"), token, nil), &out)

			Expect(status).To(Equal(fiber.StatusOK))
			Expect(out.Images).To(ConsistOf("shots/a.png", "shots/b.png"))
		})

		It("returns an empty array for a fresh account", func() {
			other := registerUser(app, "lee@example.com", "hunter22")

			var out struct {
				Images []string `json:"images"`
			}
			status := doJSON(app, jsonRequest(fiber.MethodGet, "/api/images/list", other, nil), &out)

			Expect(status).To(Equal(fiber.StatusOK))
			Expect(out.Images).NotTo(BeNil())
			Expect(out.Images).To(BeEmpty())
		})

		It("is not shadowed by the image wildcard", func() {
			uploadJSON("list", "image/png", []byte("sneaky"))

			var out struct {
				Images []string `json:"images"`
			}
			status := doJSON(app, jsonRequest(fiber.MethodGet, "/api/images/list", token, nil), &out)

			Expect(status).To(Equal(fiber.StatusOK))
			Expect(out.Images).To(ContainElement("list"))
		})
	})
})
