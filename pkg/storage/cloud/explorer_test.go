package cloud_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/storage"
	"github.com/mindfoldco/mindfold/pkg/storage/cloud"
)

var _ = Describe("explorer view", func() {
	var (
		ctx     context.Context
		backend *httptest.Server
		adapter *cloud.Adapter
	)

	cloudID := func(mapID string) mapdoc.MapIdentifier {
		return mapdoc.MapIdentifier{MapID: mapID, WorkspaceID: mapdoc.CloudWorkspaceID}
	}

	findRoot := func(tree []*mapdoc.ExplorerItem, name string) *mapdoc.ExplorerItem {
		for _, item := range tree {
			if item.Name == name {
				return item
			}
		}
		return nil
	}

	BeforeEach(func() {
		ctx = context.Background()
		backend = newTestBackend()
		adapter = newTestAdapter(backend.URL, newTestCreds())
		Expect(adapter.Initialize(ctx)).To(Succeed())
		Expect(adapter.Register(ctx, "tree@example.com", "pw").Success).To(BeTrue())
	})

	It("rebuilds folders from flat map ids", func() {
		Expect(adapter.SaveMapMarkdown(ctx, cloudID("work/projects/alpha"), "# A\n")).To(Succeed())
		Expect(adapter.SaveMapMarkdown(ctx, cloudID("inbox"), "# I\n")).To(Succeed())

		tree, err := adapter.ExplorerTree(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(tree).To(HaveLen(2))

		work := findRoot(tree, "work")
		Expect(work).NotTo(BeNil())
		Expect(work.Type).To(Equal(mapdoc.ExplorerFolder))
		Expect(work.Children[0].Name).To(Equal("projects"))
		Expect(work.Children[0].Children[0].Name).To(Equal("alpha.md"))
		Expect(work.Children[0].Children[0].IsMarkdown).To(BeTrue())

		inbox := findRoot(tree, "inbox.md")
		Expect(inbox).NotTo(BeNil())
		Expect(inbox.Type).To(Equal(mapdoc.ExplorerFile))
	})

	It("merges stored images into the tree", func() {
		Expect(adapter.SaveMapMarkdown(ctx, cloudID("doc"), "# D\n")).To(Succeed())
		Expect(adapter.SaveImage(ctx, "assets/logo.png", []byte("png"), "image/png")).To(Succeed())

		tree, err := adapter.ExplorerTree(ctx)
		Expect(err).NotTo(HaveOccurred())

		assets := findRoot(tree, "assets")
		Expect(assets).NotTo(BeNil())
		Expect(assets.Children[0].Name).To(Equal("logo.png"))
		Expect(assets.Children[0].IsMarkdown).To(BeFalse())
	})

	Describe("virtual folders", func() {
		It("stay visible until a file lands in them", func() {
			Expect(adapter.CreateFolder(ctx, "drafts")).To(Succeed())

			tree, err := adapter.ExplorerTree(ctx)
			Expect(err).NotTo(HaveOccurred())
			folder := findRoot(tree, "drafts")
			Expect(folder).NotTo(BeNil())
			Expect(folder.Type).To(Equal(mapdoc.ExplorerFolder))
			Expect(folder.Children).To(BeEmpty())
		})

		It("normalize the /cloud prefix on creation", func() {
			Expect(adapter.CreateFolder(ctx, "/cloud/drafts")).To(Succeed())

			tree, err := adapter.ExplorerTree(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(findRoot(tree, "drafts")).NotTo(BeNil())
		})

		It("are forgotten by DeleteItem", func() {
			Expect(adapter.CreateFolder(ctx, "drafts")).To(Succeed())
			Expect(adapter.DeleteItem(ctx, "drafts")).To(Succeed())

			tree, err := adapter.ExplorerTree(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(findRoot(tree, "drafts")).To(BeNil())
		})

		It("do not survive Cleanup", func() {
			Expect(adapter.CreateFolder(ctx, "ephemeral")).To(Succeed())
			Expect(adapter.Cleanup()).To(Succeed())

			Expect(adapter.Initialize(ctx)).To(Succeed())
			resp := adapter.Login(ctx, "tree@example.com", "pw")
			Expect(resp.Success).To(BeTrue())

			tree, err := adapter.ExplorerTree(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(findRoot(tree, "ephemeral")).To(BeNil())
		})

		It("requires a session to create", func() {
			fresh := newTestAdapter(backend.URL, nil)
			Expect(fresh.CreateFolder(ctx, "x")).To(MatchError(storage.ErrNotAuthenticated))
		})
	})

	It("deletes maps via UI paths with the /cloud prefix", func() {
		Expect(adapter.SaveMapMarkdown(ctx, cloudID("notes/plan"), "# P\n")).To(Succeed())
		Expect(adapter.DeleteItem(ctx, "/cloud/notes/plan.md")).To(Succeed())

		maps, err := adapter.LoadAllMaps(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(maps).To(BeEmpty())
	})

	It("drops nested virtual entries when their parent is deleted", func() {
		Expect(adapter.SaveMapMarkdown(ctx, cloudID("parent"), "# P\n")).To(Succeed())
		Expect(adapter.CreateFolder(ctx, "parent/nested")).To(Succeed())

		Expect(adapter.DeleteItem(ctx, "parent")).To(Succeed())

		tree, err := adapter.ExplorerTree(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(findRoot(tree, "parent")).To(BeNil())
	})

	It("does not support rename or move", func() {
		err := adapter.RenameItem(ctx, "a", "b")
		Expect(err).To(BeAssignableToTypeOf(storage.ErrNotSupported{}))
		Expect(err.Error()).To(ContainSubstring("cloud storage does not support"))

		err = adapter.MoveItem(ctx, "a", "b")
		Expect(err).To(BeAssignableToTypeOf(storage.ErrNotSupported{}))
	})

	Describe("images", func() {
		It("uploads via multipart and reads back bytes", func() {
			data := []byte{0x89, 0x50, 0x4e, 0x47}
			Expect(adapter.SaveImage(ctx, "img/logo.png", data, "image/png")).To(Succeed())

			got, contentType, err := adapter.ReadImage(ctx, "img/logo.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(data))
			Expect(contentType).To(Equal("image/png"))
		})

		It("falls back to JSON upload when multipart is rejected", func() {
			creds := newTestCreds()
			fallback := cloud.New(cloud.Config{
				BaseURL:     backend.URL,
				Credentials: creds,
				Codec:       nil,
				Client:      &rejectMultipartDoer{inner: http.DefaultClient},
			})
			Expect(fallback.Initialize(ctx)).To(Succeed())
			Expect(fallback.Register(ctx, "fallback@example.com", "pw").Success).To(BeTrue())

			data := []byte("jpeg-bytes")
			Expect(fallback.SaveImage(ctx, "photo.jpg", data, "image/jpeg")).To(Succeed())

			got, contentType, err := fallback.ReadImage(ctx, "photo.jpg")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(data))
			Expect(contentType).To(Equal("image/jpeg"))
		})

		It("encodes images as data URLs", func() {
			Expect(adapter.SaveImage(ctx, "pic.png", []byte("abc"), "image/png")).To(Succeed())

			url, err := adapter.ReadImageAsDataURL(ctx, "pic.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(url).To(HavePrefix("data:image/png;base64,"))
		})

		It("lists stored image keys by prefix", func() {
			Expect(adapter.SaveImage(ctx, "a/one.png", []byte("1"), "image/png")).To(Succeed())
			Expect(adapter.SaveImage(ctx, "b/two.png", []byte("2"), "image/png")).To(Succeed())

			all, err := adapter.ListImages(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(ConsistOf("a/one.png", "b/two.png"))

			scoped, err := adapter.ListImages(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(scoped).To(ConsistOf("a/one.png"))
		})

		It("deletes images", func() {
			Expect(adapter.SaveImage(ctx, "gone.png", []byte("x"), "image/png")).To(Succeed())
			Expect(adapter.DeleteImage(ctx, "gone.png")).To(Succeed())

			_, _, err := adapter.ReadImage(ctx, "gone.png")
			Expect(err).To(BeAssignableToTypeOf(storage.ErrNotFound{}))
		})
	})
})
