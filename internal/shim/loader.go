package shim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// Loader distinguishes a library the shim cannot run without from one
// whose absence is a supported configuration.
type Loader struct {
	loader domain.LibraryLoader
	fs     domain.FileSystem
	logger *zap.Logger
}

// NewLoader creates a library loader.
func NewLoader(loader domain.LibraryLoader, fs domain.FileSystem, logger *zap.Logger) *Loader {
	return &Loader{
		loader: loader,
		fs:     fs,
		logger: logger,
	}
}

// LoadMandatory loads a library that attach cannot complete without.
func (l *Loader) LoadMandatory(path string) (domain.LibraryHandle, error) {
	handle, err := l.loader.Load(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrMandatoryLoadFailed, path, err)
	}

	l.logger.Info("loaded library", zap.String("path", path))
	return handle, nil
}

// LoadOptional loads a library if it exists.
// Absence returns LoadSkipped with no error. A file that exists but does not
// load returns LoadFailed and an error wrapping ErrOptionalLoadFailed.
func (l *Loader) LoadOptional(path string) (domain.OptionalLoad, error) {
	if !l.fs.Exists(path) {
		l.logger.Warn("optional library not found, skipping load", zap.String("path", path))
		return domain.OptionalLoad{Status: domain.LoadSkipped}, nil
	}

	handle, err := l.loader.Load(path)
	if err != nil {
		return domain.OptionalLoad{Status: domain.LoadFailed},
			fmt.Errorf("%w: %s: %w", domain.ErrOptionalLoadFailed, path, err)
	}

	l.logger.Info("loaded library", zap.String("path", path))
	return domain.OptionalLoad{Status: domain.LoadLoaded, Handle: handle}, nil
}
