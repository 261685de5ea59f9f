//go:build integration

package integration

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/steamshim/internal/config"
	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
	"github.com/eliteGoblin/focusd/steamshim/internal/infra"
	"github.com/eliteGoblin/focusd/steamshim/internal/lifecycle"
	"github.com/eliteGoblin/focusd/steamshim/internal/shim"
	"github.com/eliteGoblin/focusd/steamshim/internal/steam"
	"github.com/eliteGoblin/focusd/steamshim/test/fixtures"
)

var _ = Describe("Shim lifecycle", func() {
	var (
		tmpDir   string
		install  *fixtures.FakeSteamInstall
		reg      *fixtures.FakeRegistry
		env      *fixtures.FakeEnvironment
		loader   *fixtures.FakeLoader
		notifier *fixtures.FakeNotifier

		mu    sync.Mutex
		exits []int
	)

	newController := func() *lifecycle.Controller {
		logger := zap.NewNop()
		layout := install.Layout
		components := lifecycle.Components{
			Resolver: config.NewResolverWithLayout(layout),
			Process: &fixtures.FakeProcess{
				Identity: domain.ProcessIdentity{PID: 9001, ExecutablePath: install.ExecutablePath()},
			},
			Environment: shim.NewProcessEnvironment(env, logger),
			Registry:    shim.NewRegistryShim(reg, layout, logger),
			Loader:      shim.NewLoader(loader, infra.NewFileSystem(), logger),
			Notifier:    notifier,
			Layout:      layout,
		}
		terminate := func(code int) {
			mu.Lock()
			defer mu.Unlock()
			exits = append(exits, code)
		}
		return lifecycle.NewControllerWithDeps(lifecycle.DefaultControllerConfig(), components, logger, terminate, time.After)
	}

	exitCodes := func() []int {
		mu.Lock()
		defer mu.Unlock()
		return append([]int(nil), exits...)
	}

	clientValue := func() any {
		v, _ := reg.Value(domain.HiveCurrentUser, steam.ActiveProcessKey, install.Layout.ClientDLLValue)
		return v
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "steamshim-integration-*")
		Expect(err).NotTo(HaveOccurred())

		install = fixtures.NewFakeSteamInstall(tmpDir)
		Expect(install.Create()).To(Succeed())

		reg = fixtures.NewFakeRegistry()
		install.SeedRegistry(reg)
		env = fixtures.NewFakeEnvironment()
		loader = fixtures.NewFakeLoader()
		notifier = &fixtures.FakeNotifier{}
		exits = nil
	})

	AfterEach(func() {
		Expect(install.Cleanup()).To(Succeed())
	})

	Describe("OnAttach", func() {
		Context("with a settings file and a short cleanup delay", func() {
			BeforeEach(func() {
				Expect(install.WriteSettings(730, "100ms")).To(Succeed())
				Expect(install.AddOverlay()).To(Succeed())
			})

			It("should impersonate Steam and then restore the real install", func() {
				c := newController()
				c.OnAttach(install.ModuleDir)

				Expect(exitCodes()).To(BeEmpty())
				Expect(c.State()).To(Equal(domain.StateCleanupArmed))
				Expect(clientValue()).To(Equal(install.ClientLibraryPath()))

				pid, _ := reg.Value(domain.HiveCurrentUser, steam.ActiveProcessKey, steam.ValuePID)
				Expect(pid).To(Equal(uint32(9001)))
				running, _ := reg.Value(domain.HiveCurrentUser, steam.SteamKey, steam.ValueRunningAppID)
				Expect(running).To(Equal(uint32(730)))

				for _, name := range []string{"SteamAppId", "SteamGameId"} {
					v, ok := env.Get(name)
					Expect(ok).To(BeTrue())
					Expect(v).To(Equal("730"))
				}

				Expect(loader.Loaded()).To(Equal([]string{install.ClientLibraryPath(), install.OverlayPath()}))

				Eventually(c.State, 2*time.Second, 10*time.Millisecond).Should(Equal(domain.StateCleanedUp))
				Expect(clientValue()).To(Equal(install.Layout.ClientLibraryIn(install.SteamDir)))
				steamPath, _ := reg.Value(domain.HiveCurrentUser, steam.SteamKey, steam.ValueSteamPath)
				Expect(steamPath).To(Equal(install.SteamDir))
			})

			It("should reconcile right away when detached before the timer", func() {
				c := newController()
				c.OnAttach(install.ModuleDir)
				c.OnDetach()

				Expect(c.State()).To(Equal(domain.StateCleanedUp))
				Expect(clientValue()).To(Equal(install.Layout.ClientLibraryIn(install.SteamDir)))

				// Let the timer goroutine run its own, redundant reconcile.
				Consistently(c.State, 300*time.Millisecond, 20*time.Millisecond).Should(Equal(domain.StateCleanedUp))
				Expect(clientValue()).To(Equal(install.Layout.ClientLibraryIn(install.SteamDir)))
			})
		})

		Context("with only steam_appid.txt", func() {
			It("should use the app id from the file", func() {
				Expect(install.WriteAppIDFile(440)).To(Succeed())

				c := newController()
				c.OnAttach(install.ModuleDir)
				defer c.OnDetach()

				Expect(exitCodes()).To(BeEmpty())
				v, _ := env.Get("SteamAppId")
				Expect(v).To(Equal("440"))
			})
		})

		Context("without any app id", func() {
			It("should fail without touching the registry", func() {
				before := reg.Snapshot(domain.HiveCurrentUser, steam.ActiveProcessKey)

				c := newController()
				c.OnAttach(install.ModuleDir)

				Expect(exitCodes()).To(Equal([]int{lifecycle.ExitCodeAttachFailed}))
				Expect(notifier.Count()).To(Equal(1))
				Expect(reg.Snapshot(domain.HiveCurrentUser, steam.ActiveProcessKey)).To(Equal(before))
				Expect(loader.Loaded()).To(BeEmpty())
			})
		})

		Context("when the replacement library cannot be loaded", func() {
			It("should fail after patching and leave cleanup to a later reconcile", func() {
				Expect(install.WriteSettings(730, "")).To(Succeed())
				loader.Fail[install.ClientLibraryPath()] = true

				c := newController()
				c.OnAttach(install.ModuleDir)

				Expect(exitCodes()).To(Equal([]int{lifecycle.ExitCodeAttachFailed}))
				Expect(c.State()).To(Equal(domain.StateIdle))
				Expect(clientValue()).To(Equal(install.ClientLibraryPath()))

				c.OnDetach()
				Expect(clientValue()).To(Equal(install.Layout.ClientLibraryIn(install.SteamDir)))
			})
		})

		Context("when the overlay is missing", func() {
			It("should attach with only the client library", func() {
				Expect(install.WriteSettings(730, "")).To(Succeed())

				c := newController()
				c.OnAttach(install.ModuleDir)
				defer c.OnDetach()

				Expect(exitCodes()).To(BeEmpty())
				Expect(loader.Loaded()).To(Equal([]string{install.ClientLibraryPath()}))
			})
		})
	})

	Describe("Reconcile", func() {
		Context("when the install record is gone", func() {
			It("should leave the patched values in place", func() {
				Expect(install.WriteSettings(730, "")).To(Succeed())

				c := newController()
				c.OnAttach(install.ModuleDir)
				reg.DeleteKey(domain.HiveLocalMachine, steam.InstallRecordKey)
				c.OnDetach()

				Expect(c.State()).To(Equal(domain.StateCleanedUp))
				Expect(clientValue()).To(Equal(install.ClientLibraryPath()))
				Expect(filepath.Dir(install.ClientLibraryPath())).To(Equal(install.ModuleDir))
			})
		})
	})
})
