// Package fixtures provides test helpers for unit and integration tests.
package fixtures

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// ErrAccessDenied is returned by OpenKey for keys marked with DenyOpen.
var ErrAccessDenied = errors.New("access denied")

type keyID struct {
	hive domain.RegistryHive
	path string
}

// FakeRegistry is an in-memory domain.Registry.
// Every value write replaces the whole value under a single lock, the same
// guarantee the OS gives for a single RegSetValueEx call.
type FakeRegistry struct {
	mu        sync.Mutex
	keys      map[keyID]map[string]any
	denied    map[keyID]bool
	failWrite map[string]error
	writes    int
	opens     int
}

// NewFakeRegistry creates an empty registry with no keys.
func NewFakeRegistry() *FakeRegistry {
	return &FakeRegistry{
		keys:      make(map[keyID]map[string]any),
		denied:    make(map[keyID]bool),
		failWrite: make(map[string]error),
	}
}

func id(hive domain.RegistryHive, path string) keyID {
	return keyID{hive: hive, path: strings.ToLower(path)}
}

// CreateKey makes a key exist. Existing values are kept.
func (r *FakeRegistry) CreateKey(hive domain.RegistryHive, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := id(hive, path)
	if _, ok := r.keys[k]; !ok {
		r.keys[k] = make(map[string]any)
	}
}

// DeleteKey removes a key and its values.
func (r *FakeRegistry) DeleteKey(hive domain.RegistryHive, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keys, id(hive, path))
}

// Set stores a value, creating the key if needed.
func (r *FakeRegistry) Set(hive domain.RegistryHive, path, name string, value any) {
	r.CreateKey(hive, path)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[id(hive, path)][name] = value
}

// Value returns a stored value and whether it exists.
func (r *FakeRegistry) Value(hive domain.RegistryHive, path, name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	values, ok := r.keys[id(hive, path)]
	if !ok {
		return nil, false
	}
	v, ok := values[name]
	return v, ok
}

// Snapshot copies all values of a key.
func (r *FakeRegistry) Snapshot(hive domain.RegistryHive, path string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]any)
	for k, v := range r.keys[id(hive, path)] {
		out[k] = v
	}
	return out
}

// DenyOpen makes OpenKey fail for a key even if it exists.
func (r *FakeRegistry) DenyOpen(hive domain.RegistryHive, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied[id(hive, path)] = true
}

// FailWrites makes every write of the named value fail with err.
func (r *FakeRegistry) FailWrites(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWrite[name] = err
}

// WriteCount returns the number of successful value writes.
func (r *FakeRegistry) WriteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// OpenCount returns the number of OpenKey calls.
func (r *FakeRegistry) OpenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens
}

// OpenKey implements domain.Registry.
func (r *FakeRegistry) OpenKey(hive domain.RegistryHive, path string, access domain.RegistryAccess) (domain.RegistryKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opens++

	k := id(hive, path)
	if r.denied[k] {
		return nil, fmt.Errorf("open %s\\%s: %w", hive, path, ErrAccessDenied)
	}
	if _, ok := r.keys[k]; !ok {
		return nil, fmt.Errorf("open %s\\%s: %w", hive, path, os.ErrNotExist)
	}
	return &fakeKey{registry: r, id: k, access: access}, nil
}

type fakeKey struct {
	registry *FakeRegistry
	id       keyID
	access   domain.RegistryAccess
	closed   bool
}

func (k *fakeKey) set(name string, value any) error {
	r := k.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	if k.closed {
		return errors.New("key is closed")
	}
	if k.access != domain.AccessAll {
		return fmt.Errorf("set %s: %w", name, ErrAccessDenied)
	}
	if err := r.failWrite[name]; err != nil {
		return err
	}
	values, ok := r.keys[k.id]
	if !ok {
		return fmt.Errorf("set %s: %w", name, os.ErrNotExist)
	}
	values[name] = value
	r.writes++
	return nil
}

func (k *fakeKey) get(name string) (any, error) {
	r := k.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	if k.closed {
		return nil, errors.New("key is closed")
	}
	v, ok := r.keys[k.id][name]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", name, os.ErrNotExist)
	}
	return v, nil
}

func (k *fakeKey) SetDWord(name string, value uint32) error { return k.set(name, value) }

func (k *fakeKey) SetString(name, value string) error { return k.set(name, value) }

func (k *fakeKey) GetString(name string) (string, error) {
	v, err := k.get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("get %s: unexpected type %T", name, v)
	}
	return s, nil
}

func (k *fakeKey) GetDWord(name string) (uint32, error) {
	v, err := k.get(name)
	if err != nil {
		return 0, err
	}
	d, ok := v.(uint32)
	if !ok {
		return 0, fmt.Errorf("get %s: unexpected type %T", name, v)
	}
	return d, nil
}

func (k *fakeKey) Close() error {
	k.registry.mu.Lock()
	defer k.registry.mu.Unlock()
	k.closed = true
	return nil
}

// Ensure FakeRegistry implements domain.Registry.
var _ domain.Registry = (*FakeRegistry)(nil)
