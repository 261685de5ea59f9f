package infra

import (
	"os"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// FileSystemImpl implements domain.FileSystem.
type FileSystemImpl struct{}

// NewFileSystem creates a new filesystem adapter.
func NewFileSystem() *FileSystemImpl {
	return &FileSystemImpl{}
}

// Exists checks if a regular file exists at path.
func (fs *FileSystemImpl) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Ensure FileSystemImpl implements domain.FileSystem.
var _ domain.FileSystem = (*FileSystemImpl)(nil)
