//go:build !windows

package infra

import (
	"fmt"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// RegistryImpl is a stub outside Windows: every open fails.
type RegistryImpl struct{}

// NewRegistry creates a new registry adapter.
func NewRegistry() *RegistryImpl {
	return &RegistryImpl{}
}

// OpenKey always returns ErrUnsupportedPlatform.
func (r *RegistryImpl) OpenKey(hive domain.RegistryHive, path string, access domain.RegistryAccess) (domain.RegistryKey, error) {
	return nil, fmt.Errorf("open %s\\%s: %w", hive, path, domain.ErrUnsupportedPlatform)
}

// Ensure RegistryImpl implements domain.Registry.
var _ domain.Registry = (*RegistryImpl)(nil)
