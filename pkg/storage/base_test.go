package storage_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/storage"
)

var _ = Describe("Base path handling", func() {
	It("cleans slashes and empty segments", func() {
		b := storage.Base{}
		Expect(b.CleanPath("/a//b/c/")).To(Equal("a/b/c"))
		Expect(b.CleanPath("")).To(Equal(""))
		Expect(b.CleanPath("///")).To(Equal(""))
	})

	It("strips the configured prefix", func() {
		b := storage.Base{PathPrefix: "/cloud"}
		Expect(b.CleanPath("/cloud/notes/roadmap.md")).To(Equal("notes/roadmap.md"))
		Expect(b.CleanPath("cloud/notes/roadmap.md")).To(Equal("notes/roadmap.md"))
		Expect(b.CleanPath("notes/roadmap.md")).To(Equal("notes/roadmap.md"))
	})

	It("strips the prefix only at a segment boundary", func() {
		b := storage.Base{PathPrefix: "cloud"}
		Expect(b.CleanPath("cloudy/pic.png")).To(Equal("cloudy/pic.png"))
		Expect(b.CleanPath("cloud-notes/a.md")).To(Equal("cloud-notes/a.md"))
		Expect(b.CleanPath("notes/cloud/a.md")).To(Equal("notes/cloud/a.md"))
		Expect(b.ParsePathParts("cloudy/pic.png")).To(Equal([]string{"cloudy", "pic.png"}))
	})

	It("splits paths into parts", func() {
		b := storage.Base{}
		Expect(b.ParsePathParts("a/b")).To(Equal([]string{"a", "b"}))
		Expect(b.ParsePathParts("/")).To(BeEmpty())
	})
})

var _ = Describe("Markdown name helpers", func() {
	It("removes the md extension case-insensitively", func() {
		Expect(storage.RemoveMdExtension("notes.md")).To(Equal("notes"))
		Expect(storage.RemoveMdExtension("NOTES.MD")).To(Equal("NOTES"))
		Expect(storage.RemoveMdExtension("notes")).To(Equal("notes"))
		Expect(storage.RemoveMdExtension("archive.tar")).To(Equal("archive.tar"))
	})

	It("detects markdown files case-insensitively", func() {
		Expect(storage.IsMarkdownFile("a.md")).To(BeTrue())
		Expect(storage.IsMarkdownFile("a.MD")).To(BeTrue())
		Expect(storage.IsMarkdownFile("a.png")).To(BeFalse())
	})
})

var _ = Describe("ExtractTitleFromMarkdown", func() {
	It("returns the first heading's text", func() {
		Expect(storage.ExtractTitleFromMarkdown("# My Map\n\n- a\n")).To(Equal("My Map"))
	})

	It("skips prose before the heading", func() {
		Expect(storage.ExtractTitleFromMarkdown("intro\n# Later\n")).To(Equal("Later"))
	})

	It("trims whitespace around the title", func() {
		Expect(storage.ExtractTitleFromMarkdown("#   padded  \n")).To(Equal("padded"))
	})

	It("falls back to Untitled", func() {
		Expect(storage.ExtractTitleFromMarkdown("no heading here")).To(Equal("Untitled"))
		Expect(storage.ExtractTitleFromMarkdown("")).To(Equal("Untitled"))
		// "##" is a subheading, not a title
		Expect(storage.ExtractTitleFromMarkdown("## sub\n")).To(Equal("Untitled"))
	})
})

var _ = Describe("GenerateUniqueName", func() {
	ctx := context.Background()

	It("keeps a free name unchanged", func() {
		name, err := storage.GenerateUniqueName(ctx, "notes.md", ".md",
			func(context.Context, string) (bool, error) { return false, nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("notes.md"))
	})

	It("appends numeric suffixes before the extension", func() {
		taken := map[string]bool{"notes.md": true, "notes-1.md": true}
		name, err := storage.GenerateUniqueName(ctx, "notes.md", ".md",
			func(_ context.Context, n string) (bool, error) { return taken[n], nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("notes-2.md"))
	})

	It("falls back to a timestamp suffix when every candidate is taken", func() {
		name, err := storage.GenerateUniqueName(ctx, "notes.md", ".md",
			func(context.Context, string) (bool, error) { return true, nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(MatchRegexp(`^notes-\d{10,}\.md$`))
	})

	It("propagates existence check errors", func() {
		_, err := storage.GenerateUniqueName(ctx, "notes.md", ".md",
			func(context.Context, string) (bool, error) {
				return false, context.DeadlineExceeded
			})
		Expect(err).To(HaveOccurred())
	})

	It("handles folder names without extensions", func() {
		taken := map[string]bool{"ideas": true}
		name, err := storage.GenerateUniqueFolderName(ctx, "ideas",
			func(_ context.Context, n string) (bool, error) { return taken[n], nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("ideas-1"))
	})
})

var _ = Describe("SortExplorerItems", func() {
	It("orders folders before files, then by name case-insensitively", func() {
		items := []*mapdoc.ExplorerItem{
			{Type: mapdoc.ExplorerFile, Name: "zeta.md"},
			{Type: mapdoc.ExplorerFolder, Name: "Beta"},
			{Type: mapdoc.ExplorerFile, Name: "Alpha.md"},
			{Type: mapdoc.ExplorerFolder, Name: "alpha"},
		}

		storage.SortExplorerItems(items)

		Expect(items[0].Name).To(Equal("alpha"))
		Expect(items[1].Name).To(Equal("Beta"))
		Expect(items[2].Name).To(Equal("Alpha.md"))
		Expect(items[3].Name).To(Equal("zeta.md"))
	})

	It("sorts nested children recursively", func() {
		items := []*mapdoc.ExplorerItem{
			{
				Type: mapdoc.ExplorerFolder,
				Name: "parent",
				Children: []*mapdoc.ExplorerItem{
					{Type: mapdoc.ExplorerFile, Name: "b.md"},
					{Type: mapdoc.ExplorerFolder, Name: "a"},
				},
			},
		}

		storage.SortExplorerItems(items)

		Expect(items[0].Children[0].Name).To(Equal("a"))
		Expect(items[0].Children[1].Name).To(Equal("b.md"))
	})
})

var _ = Describe("SameMap", func() {
	It("matches only when both map and workspace ids agree", func() {
		a := mapdoc.MapIdentifier{MapID: "m", WorkspaceID: "local"}
		Expect(storage.SameMap(a, mapdoc.MapIdentifier{MapID: "m", WorkspaceID: "local"})).To(BeTrue())
		Expect(storage.SameMap(a, mapdoc.MapIdentifier{MapID: "m", WorkspaceID: "cloud"})).To(BeFalse())
		Expect(storage.SameMap(a, mapdoc.MapIdentifier{MapID: "n", WorkspaceID: "local"})).To(BeFalse())
	})
})
