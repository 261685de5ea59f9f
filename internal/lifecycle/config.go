package lifecycle

import "time"

const (
	// ExitCodeAttachFailed is the process exit status after a fatal attach error.
	ExitCodeAttachFailed = 3

	// DefaultCleanupDelay applies when the settings file does not set one.
	DefaultCleanupDelay = 10 * time.Second

	defaultFatalTitle = "steamshim"
)

// ControllerConfig holds lifecycle controller configuration.
type ControllerConfig struct {
	CleanupDelay time.Duration // Delay before the background reconcile when config has none
	ExitCode     int           // Exit status used after a fatal attach error
	FatalTitle   string        // Caption of the fatal startup message
}

// DefaultControllerConfig returns default controller configuration.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		CleanupDelay: DefaultCleanupDelay,
		ExitCode:     ExitCodeAttachFailed,
		FatalTitle:   defaultFatalTitle,
	}
}
