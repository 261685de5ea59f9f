// Package config resolves the shim configuration from the settings file
// next to the shim library and the files it points at.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
	"github.com/eliteGoblin/focusd/steamshim/internal/steam"
)

const (
	// SettingsFileName is looked up in the shim's own directory.
	SettingsFileName = "steamshim.ini"

	settingsSection = "settings"
	keyAppID        = "appid"
	keyCleanupDelay = "cleanup_delay"

	appIDFileName    = "steam_appid.txt"
	appIDSettingsDir = "steam_settings"
)

// Resolver implements domain.ConfigResolver.
type Resolver struct {
	layout steam.Layout
}

// NewResolver creates a resolver for the running architecture.
func NewResolver() *Resolver {
	return &Resolver{layout: steam.CurrentLayout()}
}

// NewResolverWithLayout creates a resolver for a specific layout (for testing).
func NewResolverWithLayout(layout steam.Layout) *Resolver {
	return &Resolver{layout: layout}
}

// Resolve reads steamshim.ini from baseDir and derives the loader config.
// A missing or unreadable settings file is not an error: every key has a fallback.
func (r *Resolver) Resolve(baseDir string) (*domain.LoaderConfig, error) {
	section := loadSettings(filepath.Join(baseDir, SettingsFileName))

	libPath, err := r.resolveLibrary(baseDir, section)
	if err != nil {
		return nil, err
	}

	appID, err := resolveAppID(libPath, section)
	if err != nil {
		return nil, err
	}

	delay, err := resolveCleanupDelay(section)
	if err != nil {
		return nil, err
	}

	return &domain.LoaderConfig{
		AppID:             appID,
		ClientLibraryPath: libPath,
		CleanupDelay:      delay,
	}, nil
}

// loadSettings returns the [settings] section, or nil.
// Inline comments are disabled so paths such as "Game #1" survive intact.
func loadSettings(path string) *ini.Section {
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil
	}
	section, err := file.GetSection(settingsSection)
	if err != nil {
		return nil
	}
	return section
}

func lookup(section *ini.Section, key string) (string, bool) {
	if section == nil || !section.HasKey(key) {
		return "", false
	}
	value := strings.TrimSpace(section.Key(key).String())
	return value, value != ""
}

func (r *Resolver) resolveLibrary(baseDir string, section *ini.Section) (string, error) {
	name, ok := lookup(section, r.layout.SettingsKey)
	if !ok {
		name = r.layout.ClientLibrary
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, name)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: invalid client library path %q: %w", domain.ErrConfig, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s not found at %s", domain.ErrConfig, r.layout.ClientLibrary, abs)
	}
	return abs, nil
}

// resolveAppID prefers the settings key and falls back to steam_appid.txt
// beside the client library, then under its steam_settings directory.
func resolveAppID(libPath string, section *ini.Section) (uint32, error) {
	if raw, ok := lookup(section, keyAppID); ok {
		if id, err := parseAppID(raw); err == nil {
			return id, nil
		}
	}

	libDir := filepath.Dir(libPath)
	candidates := []string{
		filepath.Join(libDir, appIDFileName),
		filepath.Join(libDir, appIDSettingsDir, appIDFileName),
	}
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if id, err := parseAppID(string(data)); err == nil {
			return id, nil
		}
	}

	return 0, fmt.Errorf("%w: appid not found in %s or %s", domain.ErrConfig, SettingsFileName, appIDFileName)
}

func parseAppID(raw string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}

// resolveCleanupDelay accepts a Go duration ("30s") or bare seconds ("30").
func resolveCleanupDelay(section *ini.Section) (time.Duration, error) {
	raw, ok := lookup(section, keyCleanupDelay)
	if !ok {
		return 0, nil
	}

	if secs, err := strconv.ParseUint(raw, 10, 32); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrConfig, keyCleanupDelay, raw)
	}
	return d, nil
}

// Ensure Resolver implements domain.ConfigResolver.
var _ domain.ConfigResolver = (*Resolver)(nil)
