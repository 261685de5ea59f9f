//go:build !windows

package infra

import (
	"fmt"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// LibraryLoaderImpl is a stub outside Windows: every load fails.
type LibraryLoaderImpl struct{}

// NewLibraryLoader creates a new library loader.
func NewLibraryLoader() *LibraryLoaderImpl {
	return &LibraryLoaderImpl{}
}

// Load always returns ErrUnsupportedPlatform.
func (l *LibraryLoaderImpl) Load(path string) (domain.LibraryHandle, error) {
	return 0, fmt.Errorf("load %s: %w", path, domain.ErrUnsupportedPlatform)
}

// Ensure LibraryLoaderImpl implements domain.LibraryLoader.
var _ domain.LibraryLoader = (*LibraryLoaderImpl)(nil)
