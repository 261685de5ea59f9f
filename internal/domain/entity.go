// Package domain contains core entities and interfaces for the shim.
// This is the innermost layer - no external dependencies.
package domain

import "time"

// LoaderConfig is the resolved shim configuration.
// Produced once at attach and never mutated afterwards.
type LoaderConfig struct {
	AppID             uint32
	ClientLibraryPath string        // Absolute path to the Steam client library
	CleanupDelay      time.Duration // Zero means the controller default
}

// ProcessIdentity describes the host process we were loaded into.
type ProcessIdentity struct {
	PID            uint32
	ExecutablePath string
}

// Session holds everything captured once during attach.
// It is passed by value into every later step.
type Session struct {
	Config    LoaderConfig
	Process   ProcessIdentity
	ModuleDir string // Directory of the shim library itself
}

// LifecycleState tracks where the shim is in its attach/cleanup cycle.
type LifecycleState int32

const (
	StateIdle LifecycleState = iota
	StateAttached
	StateCleanupArmed
	StateCleanedUp
)

// String returns the state name used in logs.
func (s LifecycleState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttached:
		return "attached"
	case StateCleanupArmed:
		return "cleanup_armed"
	case StateCleanedUp:
		return "cleaned_up"
	default:
		return "unknown"
	}
}

// RegistryHive identifies a predefined registry root.
type RegistryHive int

const (
	HiveCurrentUser RegistryHive = iota
	HiveLocalMachine
)

func (h RegistryHive) String() string {
	switch h {
	case HiveCurrentUser:
		return "HKCU"
	case HiveLocalMachine:
		return "HKLM"
	default:
		return "HK?"
	}
}

// RegistryAccess is the access level requested when opening a key.
type RegistryAccess int

const (
	AccessRead RegistryAccess = iota
	AccessAll
)

// LibraryHandle is an opaque handle to a loaded native library.
type LibraryHandle uintptr

// LoadStatus is the outcome of an optional library load.
type LoadStatus int

const (
	LoadSkipped LoadStatus = iota // File absent, expected configuration
	LoadLoaded
	LoadFailed // File present but could not be loaded
)

func (s LoadStatus) String() string {
	switch s {
	case LoadSkipped:
		return "skipped"
	case LoadLoaded:
		return "loaded"
	case LoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OptionalLoad is the result of loading a library that may be absent.
type OptionalLoad struct {
	Status LoadStatus
	Handle LibraryHandle
}
