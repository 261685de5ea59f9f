package domain

import "errors"

var (
	// ErrConfig marks any failure to resolve the loader configuration.
	ErrConfig = errors.New("config error")

	// ErrKeyUnavailable is returned when a registry key cannot be opened.
	ErrKeyUnavailable = errors.New("registry key unavailable")

	// ErrValueWrite is returned when a value write fails on an open key.
	ErrValueWrite = errors.New("registry value write failed")

	// ErrMandatoryLoadFailed is fatal to attach.
	ErrMandatoryLoadFailed = errors.New("mandatory library load failed")

	// ErrOptionalLoadFailed means an optional library exists but would not load.
	ErrOptionalLoadFailed = errors.New("optional library present but failed to load")

	// ErrUnsupportedPlatform is returned by OS adapters outside Windows.
	ErrUnsupportedPlatform = errors.New("not supported on this platform")
)
