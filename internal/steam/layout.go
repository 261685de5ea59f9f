// Package steam holds the well-known Steam names the shim impersonates:
// registry key paths, value names, environment variables and library files.
package steam

import (
	"path/filepath"
	"runtime"
)

// Registry key paths.
const (
	// ActiveProcessKey lives under HKCU and describes the running Steam client.
	ActiveProcessKey = `Software\Valve\Steam\ActiveProcess`

	// SteamKey lives under HKCU and holds per-user Steam state.
	SteamKey = `Software\Valve\Steam`

	// InstallRecordKey lives under HKLM and is written by the Steam installer.
	InstallRecordKey = `Software\WOW6432Node\Valve\Steam`
)

// Registry value names.
const (
	ValuePID          = "pid"
	ValueUniverse     = "Universe"
	ValueSteamPath    = "SteamPath"
	ValueRunningAppID = "RunningAppID"
	ValueInstallPath  = "InstallPath"
)

// Universe is the only universe the shim ever reports.
const Universe = "public"

// Environment variables read by the Steam API on startup.
const (
	EnvAppID        = "SteamAppId"
	EnvGameID       = "SteamGameId"
	EnvClientLaunch = "SteamClientLaunch"
	EnvSteamEnv     = "SteamEnv"
)

// Layout names the architecture-specific Steam files and values.
type Layout struct {
	ClientLibrary  string // e.g. steamclient64.dll
	OverlayLibrary string // e.g. gameoverlayrenderer64.dll
	ClientDLLValue string // ActiveProcess value holding the client path
	SettingsKey    string // settings file key overriding the client path
}

var (
	layout64 = Layout{
		ClientLibrary:  "steamclient64.dll",
		OverlayLibrary: "gameoverlayrenderer64.dll",
		ClientDLLValue: "SteamClientDll64",
		SettingsKey:    "steamclient64",
	}
	layout32 = Layout{
		ClientLibrary:  "steamclient.dll",
		OverlayLibrary: "gameoverlayrenderer.dll",
		ClientDLLValue: "SteamClientDll",
		SettingsKey:    "steamclient",
	}
)

// LayoutFor returns the layout for a GOARCH value.
// Only 386 maps to the 32-bit names.
func LayoutFor(goarch string) Layout {
	if goarch == "386" {
		return layout32
	}
	return layout64
}

// CurrentLayout returns the layout matching the running binary.
func CurrentLayout() Layout {
	return LayoutFor(runtime.GOARCH)
}

// ClientLibraryIn joins an install directory with the client library name.
func (l Layout) ClientLibraryIn(installDir string) string {
	return filepath.Join(installDir, l.ClientLibrary)
}

// OverlayLibraryBeside returns the overlay path next to the host executable.
func (l Layout) OverlayLibraryBeside(executablePath string) string {
	return filepath.Join(filepath.Dir(executablePath), l.OverlayLibrary)
}
