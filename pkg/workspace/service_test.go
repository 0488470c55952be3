package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mindfoldco/mindfold/pkg/mapdoc"
	"github.com/mindfoldco/mindfold/pkg/workspace"
)

var _ = Describe("Service", func() {
	var (
		svc *workspace.Service
		dir string
	)

	BeforeEach(func() {
		svc, dir = newTestService()
	})

	Describe("registering local workspaces", func() {
		It("stores and returns the workspace", func() {
			ws := mapdoc.Workspace{
				ID:        "ws_notes",
				Name:      "Notes",
				Type:      mapdoc.WorkspaceLocal,
				Removable: true,
			}
			Expect(svc.AddLocalWorkspace(ws)).To(Succeed())

			got, ok := svc.Workspace("ws_notes")
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(ws))
			Expect(svc.Workspaces()).To(ContainElement(ws))
		})

		It("rejects non-local workspace types", func() {
			err := svc.AddLocalWorkspace(mapdoc.Workspace{
				ID:   mapdoc.CloudWorkspaceID,
				Type: mapdoc.WorkspaceCloud,
			})
			Expect(err).To(MatchError(ContainSubstring("not local")))
		})

		It("persists the manifest to the config directory", func() {
			Expect(svc.AddLocalWorkspace(mapdoc.Workspace{
				ID:        "ws_notes",
				Name:      "Notes",
				Type:      mapdoc.WorkspaceLocal,
				Removable: true,
			})).To(Succeed())

			data, err := os.ReadFile(filepath.Join(dir, "workspaces.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("ws_notes"))
		})

		It("restores persisted workspaces in a new service", func() {
			ws := mapdoc.Workspace{
				ID:        "ws_notes",
				Name:      "Notes",
				Type:      mapdoc.WorkspaceLocal,
				Removable: true,
			}
			Expect(svc.AddLocalWorkspace(ws)).To(Succeed())

			reopened, err := workspace.NewService(dir, discardLogger())
			Expect(err).NotTo(HaveOccurred())

			got, ok := reopened.Workspace("ws_notes")
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(ws))
		})
	})

	Describe("removing workspaces", func() {
		BeforeEach(func() {
			Expect(svc.AddLocalWorkspace(mapdoc.Workspace{
				ID:        "ws_notes",
				Name:      "Notes",
				Type:      mapdoc.WorkspaceLocal,
				Removable: true,
			})).To(Succeed())
		})

		It("removes a registered workspace", func() {
			Expect(svc.RemoveWorkspace("ws_notes")).To(Succeed())

			_, ok := svc.Workspace("ws_notes")
			Expect(ok).To(BeFalse())
		})

		It("errors on an unknown workspace", func() {
			err := svc.RemoveWorkspace("ws_missing")
			Expect(err).To(MatchError(ContainSubstring("unknown workspace")))
		})

		It("refuses to remove the cloud workspace", func() {
			err := svc.RemoveWorkspace(mapdoc.CloudWorkspaceID)
			Expect(err).To(MatchError(ContainSubstring("logging out")))
		})
	})

	Describe("change listeners", func() {
		It("notifies on every mutation", func() {
			calls := 0
			svc.Subscribe(func() { calls++ })

			Expect(svc.AddLocalWorkspace(mapdoc.Workspace{
				ID: "ws_a", Type: mapdoc.WorkspaceLocal,
			})).To(Succeed())
			Expect(svc.RemoveWorkspace("ws_a")).To(Succeed())

			Expect(calls).To(Equal(2))
		})

		It("stops notifying after unsubscribe", func() {
			calls := 0
			unsubscribe := svc.Subscribe(func() { calls++ })
			unsubscribe()

			Expect(svc.AddLocalWorkspace(mapdoc.Workspace{
				ID: "ws_a", Type: mapdoc.WorkspaceLocal,
			})).To(Succeed())

			Expect(calls).To(BeZero())
		})

		It("lets listeners read the registry during notification", func() {
			var seen []mapdoc.Workspace
			svc.Subscribe(func() { seen = svc.Workspaces() })

			Expect(svc.AddLocalWorkspace(mapdoc.Workspace{
				ID: "ws_a", Type: mapdoc.WorkspaceLocal,
			})).To(Succeed())

			Expect(seen).To(HaveLen(1))
		})
	})

	Describe("cloud workspace lifecycle", func() {
		It("requires a user", func() {
			err := svc.AddCloudWorkspace(nil)
			Expect(err).To(MatchError(ContainSubstring("without a user")))
		})

		It("registers a non-removable entry named after the user", func() {
			Expect(svc.AddCloudWorkspace(&mapdoc.CloudUser{
				ID:    "u1",
				Email: "kay@example.com",
			})).To(Succeed())

			ws, ok := svc.Workspace(mapdoc.CloudWorkspaceID)
			Expect(ok).To(BeTrue())
			Expect(ws.Name).To(Equal("kay@example.com"))
			Expect(ws.Type).To(Equal(mapdoc.WorkspaceCloud))
			Expect(ws.Removable).To(BeFalse())
		})

		It("does not restore the cloud entry from the manifest", func() {
			Expect(svc.AddCloudWorkspace(&mapdoc.CloudUser{
				ID:    "u1",
				Email: "kay@example.com",
			})).To(Succeed())

			reopened, err := workspace.NewService(dir, discardLogger())
			Expect(err).NotTo(HaveOccurred())

			_, ok := reopened.Workspace(mapdoc.CloudWorkspaceID)
			Expect(ok).To(BeFalse())
		})

		Context("with an authenticated adapter", func() {
			BeforeEach(func(ctx context.Context) {
				ts := newTestBackend()
				adapter := newTestCloudAdapter(ts.URL)
				Expect(adapter.Initialize(ctx)).To(Succeed())

				result := adapter.Register(ctx, "kay@example.com", "hunter22")
				Expect(result.Success).To(BeTrue())

				svc.SetCloudAdapter(adapter)
			})

			It("exposes the adapter and its auth state", func() {
				Expect(svc.CloudAdapter()).NotTo(BeNil())
				Expect(svc.IsCloudAuthenticated()).To(BeTrue())
				Expect(svc.CloudUser()).NotTo(BeNil())
				Expect(svc.CloudUser().Email).To(Equal("kay@example.com"))
			})

			It("restores the cloud workspace from the adapter", func() {
				Expect(svc.RestoreCloudWorkspace()).To(Succeed())

				ws, ok := svc.Workspace(mapdoc.CloudWorkspaceID)
				Expect(ok).To(BeTrue())
				Expect(ws.Name).To(Equal("kay@example.com"))
			})

			Describe("logout", func() {
				BeforeEach(func() {
					Expect(svc.RestoreCloudWorkspace()).To(Succeed())
				})

				It("clears adapter and workspace before any network call", func() {
					Expect(svc.LogoutFromCloud()).To(Succeed())

					Expect(svc.CloudAdapter()).To(BeNil())
					Expect(svc.IsCloudAuthenticated()).To(BeFalse())
					Expect(svc.CloudUser()).To(BeNil())

					_, ok := svc.Workspace(mapdoc.CloudWorkspaceID)
					Expect(ok).To(BeFalse())
				})

				It("notifies listeners of the removal", func() {
					calls := 0
					svc.Subscribe(func() { calls++ })

					Expect(svc.LogoutFromCloud()).To(Succeed())
					Expect(calls).To(Equal(1))
				})

				It("eventually deauthenticates the adapter itself", func() {
					adapter := svc.CloudAdapter()
					Expect(svc.LogoutFromCloud()).To(Succeed())

					Eventually(adapter.IsAuthenticated, 5*time.Second, 50*time.Millisecond).
						Should(BeFalse())
				})
			})
		})

		It("refuses to restore without an authenticated adapter", func() {
			err := svc.RestoreCloudWorkspace()
			Expect(err).To(MatchError(ContainSubstring("no authenticated cloud adapter")))
		})
	})
})
