package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
	"github.com/eliteGoblin/focusd/steamshim/internal/steam"
)

// FakeSteamInstall lays out a directory tree mimicking a shim deployment:
// a real Steam install, a game directory with the host executable, and the
// shim directory holding the replacement client library.
type FakeSteamInstall struct {
	Root      string
	Layout    steam.Layout
	SteamDir  string // The "real" Steam install recorded under HKLM
	GameDir   string // Directory of the host executable
	ModuleDir string // Directory of the shim library
}

// NewFakeSteamInstall creates a new fake install generator under root.
func NewFakeSteamInstall(root string) *FakeSteamInstall {
	return &FakeSteamInstall{
		Root:      root,
		Layout:    steam.LayoutFor("amd64"),
		SteamDir:  filepath.Join(root, "Program Files (x86)", "Steam"),
		GameDir:   filepath.Join(root, "Games", "Example"),
		ModuleDir: filepath.Join(root, "Games", "Example", "shim"),
	}
}

// Create creates the directory structure and the client library files.
func (f *FakeSteamInstall) Create() error {
	for _, dir := range []string{f.SteamDir, f.GameDir, f.ModuleDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	files := []string{
		f.Layout.ClientLibraryIn(f.SteamDir),
		f.ClientLibraryPath(),
		f.ExecutablePath(),
	}
	for _, path := range files {
		if err := os.WriteFile(path, []byte("MZ"), 0644); err != nil {
			return err
		}
	}
	return nil
}

// ClientLibraryPath is the replacement library inside the shim directory.
func (f *FakeSteamInstall) ClientLibraryPath() string {
	return filepath.Join(f.ModuleDir, f.Layout.ClientLibrary)
}

// ExecutablePath is the host executable.
func (f *FakeSteamInstall) ExecutablePath() string {
	return filepath.Join(f.GameDir, "game.exe")
}

// OverlayPath is where the optional overlay library is looked up.
func (f *FakeSteamInstall) OverlayPath() string {
	return f.Layout.OverlayLibraryBeside(f.ExecutablePath())
}

// AddOverlay places the optional overlay library beside the executable.
func (f *FakeSteamInstall) AddOverlay() error {
	return os.WriteFile(f.OverlayPath(), []byte("MZ"), 0644)
}

// WriteSettings writes steamshim.ini with the given app id and delay.
func (f *FakeSteamInstall) WriteSettings(appID uint32, cleanupDelay string) error {
	content := fmt.Sprintf("[settings]\nappid=%d\n", appID)
	if cleanupDelay != "" {
		content += "cleanup_delay=" + cleanupDelay + "\n"
	}
	return os.WriteFile(filepath.Join(f.ModuleDir, "steamshim.ini"), []byte(content), 0644)
}

// WriteAppIDFile writes steam_appid.txt next to the replacement library.
func (f *FakeSteamInstall) WriteAppIDFile(appID uint32) error {
	return os.WriteFile(filepath.Join(f.ModuleDir, "steam_appid.txt"), []byte(strconv.FormatUint(uint64(appID), 10)+"\n"), 0644)
}

// SeedRegistry writes the registry state a normal Steam install leaves behind.
func (f *FakeSteamInstall) SeedRegistry(r *FakeRegistry) {
	r.Set(domain.HiveLocalMachine, steam.InstallRecordKey, steam.ValueInstallPath, f.SteamDir)
	r.Set(domain.HiveCurrentUser, steam.SteamKey, steam.ValueSteamPath, f.SteamDir)
	r.Set(domain.HiveCurrentUser, steam.SteamKey, steam.ValueRunningAppID, uint32(0))
	r.Set(domain.HiveCurrentUser, steam.ActiveProcessKey, steam.ValuePID, uint32(0))
	r.Set(domain.HiveCurrentUser, steam.ActiveProcessKey, f.Layout.ClientDLLValue, f.Layout.ClientLibraryIn(f.SteamDir))
	r.Set(domain.HiveCurrentUser, steam.ActiveProcessKey, steam.ValueUniverse, steam.Universe)
}

// Cleanup removes the whole fake tree.
func (f *FakeSteamInstall) Cleanup() error {
	return os.RemoveAll(f.Root)
}
