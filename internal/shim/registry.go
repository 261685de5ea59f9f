// Package shim implements the impersonation steps the lifecycle controller
// runs: registry patch/reconcile, environment setup and library loading.
package shim

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
	"github.com/eliteGoblin/focusd/steamshim/internal/steam"
)

// RegistryShim writes the impersonated Steam state into HKCU and restores
// it from the machine-wide Steam install record.
//
// Every write is a whole-value overwrite derived from the session or from
// the install record, never from a value read back from the patched keys.
// Reconcile is idempotent and may run concurrently without a lock.
type RegistryShim struct {
	registry domain.Registry
	layout   steam.Layout
	logger   *zap.Logger
}

// NewRegistryShim creates a registry shim.
func NewRegistryShim(registry domain.Registry, layout steam.Layout, logger *zap.Logger) *RegistryShim {
	return &RegistryShim{
		registry: registry,
		layout:   layout,
		logger:   logger,
	}
}

// Patch points ActiveProcess and the Steam key at the configured client library.
// A failure on the second key does not undo writes to the first.
func (s *RegistryShim) Patch(cfg domain.LoaderConfig, proc domain.ProcessIdentity) error {
	err := s.withKey(domain.HiveCurrentUser, steam.ActiveProcessKey, domain.AccessAll, func(key domain.RegistryKey) error {
		if err := setDWord(key, steam.ValuePID, proc.PID); err != nil {
			return err
		}
		if err := setString(key, s.layout.ClientDLLValue, cfg.ClientLibraryPath); err != nil {
			return err
		}
		return setString(key, steam.ValueUniverse, steam.Universe)
	})
	if err != nil {
		s.logger.Error("unable to patch registry", zap.String("key", steam.ActiveProcessKey), zap.Error(err))
		return err
	}

	err = s.withKey(domain.HiveCurrentUser, steam.SteamKey, domain.AccessAll, func(key domain.RegistryKey) error {
		if err := setString(key, steam.ValueSteamPath, steamPathFor(cfg.ClientLibraryPath)); err != nil {
			return err
		}
		return setDWord(key, steam.ValueRunningAppID, cfg.AppID)
	})
	if err != nil {
		s.logger.Error("unable to patch registry", zap.String("key", steam.SteamKey), zap.Error(err))
		return err
	}

	s.logger.Info("patched registry",
		zap.Uint32("pid", proc.PID),
		zap.Uint32("app_id", cfg.AppID),
		zap.String("client_library", cfg.ClientLibraryPath))
	return nil
}

// Reconcile rewrites the client library path and SteamPath from the real
// Steam install record. It leaves pid, Universe and RunningAppID alone.
// Best effort: nothing is written when the install record is missing, and
// failures are logged, never returned.
func (s *RegistryShim) Reconcile() {
	installPath, err := s.InstallPath()
	if err != nil {
		s.logger.Info("steam install record unavailable, registry left as patched", zap.Error(err))
		return
	}

	clientPath := s.layout.ClientLibraryIn(installPath)

	activeErr := s.withKey(domain.HiveCurrentUser, steam.ActiveProcessKey, domain.AccessAll, func(key domain.RegistryKey) error {
		return setString(key, s.layout.ClientDLLValue, clientPath)
	})
	if activeErr != nil {
		s.logger.Warn("failed to reconcile registry", zap.String("key", steam.ActiveProcessKey), zap.Error(activeErr))
	}

	steamErr := s.withKey(domain.HiveCurrentUser, steam.SteamKey, domain.AccessAll, func(key domain.RegistryKey) error {
		return setString(key, steam.ValueSteamPath, installPath)
	})
	if steamErr != nil {
		s.logger.Warn("failed to reconcile registry", zap.String("key", steam.SteamKey), zap.Error(steamErr))
	}

	if activeErr != nil && steamErr != nil {
		s.logger.Warn("registry left as patched, no value reconciled",
			zap.String("install_path", installPath),
			zap.Error(multierr.Combine(activeErr, steamErr)))
		return
	}
	s.logger.Info("reconciled registry with steam install",
		zap.String("install_path", installPath),
		zap.Bool("partial", activeErr != nil || steamErr != nil))
}

// InstallPath reads the real Steam install directory from HKLM.
func (s *RegistryShim) InstallPath() (string, error) {
	var installPath string
	err := s.withKey(domain.HiveLocalMachine, steam.InstallRecordKey, domain.AccessRead, func(key domain.RegistryKey) error {
		v, err := key.GetString(steam.ValueInstallPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", steam.ValueInstallPath, err)
		}
		installPath = v
		return nil
	})
	if err != nil {
		return "", err
	}
	if installPath == "" {
		return "", errors.New("steam install path is empty")
	}
	return installPath, nil
}

// ActivePID reads the pid currently recorded in ActiveProcess.
func (s *RegistryShim) ActivePID() (uint32, error) {
	var pid uint32
	err := s.withKey(domain.HiveCurrentUser, steam.ActiveProcessKey, domain.AccessRead, func(key domain.RegistryKey) error {
		v, err := key.GetDWord(steam.ValuePID)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", steam.ValuePID, err)
		}
		pid = v
		return nil
	})
	return pid, err
}

// withKey opens a key, runs fn and closes the key, keeping both errors.
func (s *RegistryShim) withKey(hive domain.RegistryHive, path string, access domain.RegistryAccess, fn func(domain.RegistryKey) error) (err error) {
	key, err := s.registry.OpenKey(hive, path, access)
	if err != nil {
		return fmt.Errorf("%w: %s\\%s: %w", domain.ErrKeyUnavailable, hive, path, err)
	}
	defer func() {
		err = multierr.Append(err, key.Close())
	}()
	return fn(key)
}

func setString(key domain.RegistryKey, name, value string) error {
	if err := key.SetString(name, value); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrValueWrite, name, err)
	}
	return nil
}

func setDWord(key domain.RegistryKey, name string, value uint32) error {
	if err := key.SetDWord(name, value); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrValueWrite, name, err)
	}
	return nil
}

// steamPathFor returns the directory Steam would report for a client library.
func steamPathFor(clientLibraryPath string) string {
	return filepath.Dir(clientLibraryPath)
}
