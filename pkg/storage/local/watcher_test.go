package local_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindfoldco/mindfold/pkg/markdown"
	"github.com/mindfoldco/mindfold/pkg/storage/local"
)

var _ = Describe("Watch", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		root    string
		adapter *local.Adapter
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		root = GinkgoT().TempDir()

		adapter = local.New(local.Config{
			Root:         root,
			HandleDBPath: ":memory:",
			Codec:        markdown.NewCodec(),
		})
		Expect(adapter.Initialize(ctx)).To(Succeed())
	})

	AfterEach(func() {
		cancel()
		Expect(adapter.Cleanup()).To(Succeed())
	})

	It("reports workspace-relative paths for external writes", func() {
		var mu sync.Mutex
		var seen []string

		Expect(adapter.Watch(ctx, func(path string) {
			mu.Lock()
			seen = append(seen, path)
			mu.Unlock()
		})).To(Succeed())

		Expect(os.WriteFile(filepath.Join(root, "external.md"), []byte("# E\n"), 0o644)).To(Succeed())

		Eventually(func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), seen...)
		}, 5*time.Second, 50*time.Millisecond).Should(ContainElement("external.md"))
	})

	It("picks up files in directories created after the watch started", func() {
		var mu sync.Mutex
		var seen []string

		Expect(adapter.Watch(ctx, func(path string) {
			mu.Lock()
			seen = append(seen, path)
			mu.Unlock()
		})).To(Succeed())

		sub := filepath.Join(root, "late")
		Expect(os.Mkdir(sub, 0o755)).To(Succeed())

		// Give the watcher a beat to register the new directory.
		Eventually(func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), seen...)
		}, 5*time.Second, 50*time.Millisecond).Should(ContainElement("late"))

		Expect(os.WriteFile(filepath.Join(sub, "inner.md"), []byte("# I\n"), 0o644)).To(Succeed())

		Eventually(func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), seen...)
		}, 5*time.Second, 50*time.Millisecond).Should(ContainElement("late/inner.md"))
	})
})
