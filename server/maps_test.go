package server_test

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mapPayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

var _ = Describe("map endpoints", func() {
	var (
		app   *fiber.App
		token string
	)

	saveMap := func(id, title, content string) {
		status := doJSON(app, jsonRequest(fiber.MethodPut,
			"/api/maps/"+url.PathEscape(id), token, map[string]string{
				"title":   title,
				"content": content,
			}), nil)
		Expect(status).To(Equal(fiber.StatusOK))
	}

	BeforeEach(func() {
		app = newTestApp()
		token = registerUser(app, "kay@example.com", "hunter22")
	})

	It("requires authentication", func() {
		status := doJSON(app, jsonRequest(fiber.MethodGet, "/api/maps", "", nil), nil)
		Expect(status).To(Equal(fiber.StatusUnauthorized))
	})

	It("lists no maps for a fresh account", func() {
		var out struct {
			Maps []mapPayload `json:"maps"`
		}
		status := doJSON(app, jsonRequest(fiber.MethodGet, "/api/maps", token, nil), &out)

		Expect(status).To(Equal(fiber.StatusOK))
		Expect(out.Maps).NotTo(BeNil())
		Expect(out.Maps).To(BeEmpty())
	})

	It("stores and returns a map", func() {
		saveMap("ideas.md", "Ideas", "# Ideas\n\n- one\n")

		var out mapPayload
		status := doJSON(app, jsonRequest(fiber.MethodGet,
			"/api/maps/"+url.PathEscape("ideas.md"), token, nil), &out)

		Expect(status).To(Equal(fiber.StatusOK))
		Expect(out.ID).To(Equal("ideas.md"))
		Expect(out.Title).To(Equal("Ideas"))
		Expect(out.Content).To(Equal("# Ideas\n\n- one\n"))
	})

	It("round-trips ids containing slashes", func() {
		saveMap("projects/roadmap.md", "Roadmap", "# Roadmap\n")

		var out mapPayload
		status := doJSON(app, jsonRequest(fiber.MethodGet,
			"/api/maps/"+url.PathEscape("projects/roadmap.md"), token, nil), &out)

		Expect(status).To(Equal(fiber.StatusOK))
		Expect(out.ID).To(Equal("projects/roadmap.md"))
	})

	It("overwrites on a second save", func() {
		saveMap("ideas.md", "Ideas", "# Ideas\n")
		saveMap("ideas.md", "Better Ideas", "# Better Ideas\n")

		var list struct {
			Maps []mapPayload `json:"maps"`
		}
		status := doJSON(app, jsonRequest(fiber.MethodGet, "/api/maps", token, nil), &list)

		Expect(status).To(Equal(fiber.StatusOK))
		Expect(list.Maps).To(HaveLen(1))
		Expect(list.Maps[0].Title).To(Equal("Better Ideas"))
	})

	It("omits content from listings", func() {
		saveMap("ideas.md", "Ideas", "# Ideas\n")

		var list struct {
			Maps []mapPayload `json:"maps"`
		}
		doJSON(app, jsonRequest(fiber.MethodGet, "/api/maps", token, nil), &list)

		Expect(list.Maps).To(HaveLen(1))
		Expect(list.Maps[0].Content).To(BeEmpty())
	})

	It("returns 404 for a missing map", func() {
		status := doJSON(app, jsonRequest(fiber.MethodGet,
			"/api/maps/"+url.PathEscape("missing.md"), token, nil), nil)
		Expect(status).To(Equal(fiber.StatusNotFound))
	})

	It("deletes a map", func() {
		saveMap("ideas.md", "Ideas", "# Ideas\n")

		status := doJSON(app, jsonRequest(fiber.MethodDelete,
			"/api/maps/"+url.PathEscape("ideas.md"), token, nil), nil)
		Expect(status).To(Equal(fiber.StatusNoContent))

		status = doJSON(app, jsonRequest(fiber.MethodGet,
			"/api/maps/"+url.PathEscape("ideas.md"), token, nil), nil)
		Expect(status).To(Equal(fiber.StatusNotFound))
	})

	It("returns 404 when deleting a missing map", func() {
		status := doJSON(app, jsonRequest(fiber.MethodDelete,
			"/api/maps/"+url.PathEscape("missing.md"), token, nil), nil)
		Expect(status).To(Equal(fiber.StatusNotFound))
	})

	It("isolates maps between users", func() {
		saveMap("ideas.md", "Ideas", "# Ideas\n")

		other := registerUser(app, "lee@example.com", "hunter22")
		status := doJSON(app, jsonRequest(fiber.MethodGet,
			"/api/maps/"+url.PathEscape("ideas.md"), other, nil), nil)
		Expect(status).To(Equal(fiber.StatusNotFound))
	})
})
