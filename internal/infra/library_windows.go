//go:build windows

package infra

import (
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// LibraryLoaderImpl implements domain.LibraryLoader with LoadLibraryEx.
// Handles are never freed: loaded libraries live as long as the host.
type LibraryLoaderImpl struct{}

// NewLibraryLoader creates a new library loader.
func NewLibraryLoader() *LibraryLoaderImpl {
	return &LibraryLoaderImpl{}
}

// Load maps a library into the host process.
// Dependencies are searched in the library's own directory first.
func (l *LibraryLoaderImpl) Load(path string) (domain.LibraryHandle, error) {
	h, err := windows.LoadLibraryEx(path, 0,
		windows.LOAD_LIBRARY_SEARCH_DLL_LOAD_DIR|windows.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS)
	if err != nil {
		return 0, err
	}
	return domain.LibraryHandle(h), nil
}

// Ensure LibraryLoaderImpl implements domain.LibraryLoader.
var _ domain.LibraryLoader = (*LibraryLoaderImpl)(nil)
