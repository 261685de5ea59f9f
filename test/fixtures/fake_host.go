package fixtures

import (
	"errors"
	"sync"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// FakeEnvironment records Setenv calls instead of touching the real process.
type FakeEnvironment struct {
	mu   sync.Mutex
	vars map[string]string
	Err  error
}

// NewFakeEnvironment creates an empty environment.
func NewFakeEnvironment() *FakeEnvironment {
	return &FakeEnvironment{vars: make(map[string]string)}
}

func (e *FakeEnvironment) Setenv(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.vars[key] = value
	return nil
}

// Get returns a recorded variable.
func (e *FakeEnvironment) Get(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vars[key]
	return v, ok
}

// FakeLoader records Load calls. Paths in Fail return an error.
type FakeLoader struct {
	mu     sync.Mutex
	Fail   map[string]bool
	loaded []string
}

// NewFakeLoader creates a loader that succeeds for every path.
func NewFakeLoader() *FakeLoader {
	return &FakeLoader{Fail: make(map[string]bool)}
}

func (l *FakeLoader) Load(path string) (domain.LibraryHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Fail[path] {
		return 0, errors.New("the specified module could not be found")
	}
	l.loaded = append(l.loaded, path)
	return domain.LibraryHandle(len(l.loaded)), nil
}

// Loaded returns the paths loaded so far, in order.
func (l *FakeLoader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.loaded...)
}

// FakeProcess is a fixed domain.ProcessInspector.
type FakeProcess struct {
	Identity domain.ProcessIdentity
	Err      error
	Running  map[uint32]bool
}

func (p *FakeProcess) CurrentIdentity() (domain.ProcessIdentity, error) {
	if p.Err != nil {
		return domain.ProcessIdentity{}, p.Err
	}
	return p.Identity, nil
}

func (p *FakeProcess) IsRunning(pid uint32) bool {
	return p.Running[pid]
}

// FakeNotifier records fatal notifications.
type FakeNotifier struct {
	mu       sync.Mutex
	Messages []string
}

func (n *FakeNotifier) NotifyFatal(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, title+": "+message)
}

// Count returns the number of notifications shown.
func (n *FakeNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Messages)
}

// Ensure fakes implement the domain interfaces.
var (
	_ domain.Environment      = (*FakeEnvironment)(nil)
	_ domain.LibraryLoader    = (*FakeLoader)(nil)
	_ domain.ProcessInspector = (*FakeProcess)(nil)
	_ domain.Notifier         = (*FakeNotifier)(nil)
)
