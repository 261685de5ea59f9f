//go:build windows

package infra

import (
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// RegistryImpl implements domain.Registry on the Windows registry.
type RegistryImpl struct{}

// NewRegistry creates a new registry adapter.
func NewRegistry() *RegistryImpl {
	return &RegistryImpl{}
}

// OpenKey opens an existing key. Keys are never created.
func (r *RegistryImpl) OpenKey(hive domain.RegistryHive, path string, access domain.RegistryAccess) (domain.RegistryKey, error) {
	root, err := rootKey(hive)
	if err != nil {
		return nil, err
	}

	mask := uint32(registry.READ)
	if access == domain.AccessAll {
		mask = registry.ALL_ACCESS
	}

	key, err := registry.OpenKey(root, path, mask)
	if err != nil {
		return nil, err
	}
	return &registryKey{key: key}, nil
}

func rootKey(hive domain.RegistryHive) (registry.Key, error) {
	switch hive {
	case domain.HiveCurrentUser:
		return registry.CURRENT_USER, nil
	case domain.HiveLocalMachine:
		return registry.LOCAL_MACHINE, nil
	default:
		return 0, fmt.Errorf("unknown registry hive %d", hive)
	}
}

type registryKey struct {
	key registry.Key
}

func (k *registryKey) SetDWord(name string, value uint32) error {
	return k.key.SetDWordValue(name, value)
}

func (k *registryKey) SetString(name, value string) error {
	return k.key.SetStringValue(name, value)
}

func (k *registryKey) GetString(name string) (string, error) {
	v, _, err := k.key.GetStringValue(name)
	return v, err
}

func (k *registryKey) GetDWord(name string) (uint32, error) {
	v, _, err := k.key.GetIntegerValue(name)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (k *registryKey) Close() error {
	return k.key.Close()
}

// Ensure RegistryImpl implements domain.Registry.
var _ domain.Registry = (*RegistryImpl)(nil)
