package domain

// ConfigResolver produces the loader configuration for a module directory.
type ConfigResolver interface {
	// Resolve locates the client library and app id relative to baseDir.
	// All failures wrap ErrConfig.
	Resolve(baseDir string) (*LoaderConfig, error)
}

// ProcessInspector answers questions about OS processes.
// Implementation: uses gopsutil.
type ProcessInspector interface {
	// CurrentIdentity captures the pid and executable path of this process.
	CurrentIdentity() (ProcessIdentity, error)

	// IsRunning checks if a PID exists and is running.
	IsRunning(pid uint32) bool
}

// RegistryKey is an open registry key handle.
type RegistryKey interface {
	SetDWord(name string, value uint32) error
	SetString(name, value string) error
	GetString(name string) (string, error)
	GetDWord(name string) (uint32, error)
	Close() error
}

// Registry opens keys under the predefined hives.
// Implementation: golang.org/x/sys/windows/registry on Windows.
type Registry interface {
	// OpenKey opens an existing key. It never creates keys.
	OpenKey(hive RegistryHive, path string, access RegistryAccess) (RegistryKey, error)
}

// Environment mutates the environment block of the current process.
type Environment interface {
	Setenv(key, value string) error
}

// LibraryLoader maps native libraries into the current process.
// Implementation: LoadLibraryEx on Windows.
type LibraryLoader interface {
	Load(path string) (LibraryHandle, error)
}

// FileSystem handles filesystem checks.
type FileSystem interface {
	// Exists checks if a regular file or directory exists at path.
	Exists(path string) bool
}

// Notifier shows a blocking message to the operator before the process exits.
type Notifier interface {
	NotifyFatal(title, message string)
}
