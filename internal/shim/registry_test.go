package shim

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
	"github.com/eliteGoblin/focusd/steamshim/internal/steam"
	"github.com/eliteGoblin/focusd/steamshim/test/fixtures"
)

var layout = steam.LayoutFor("amd64")

func testSession() (domain.LoaderConfig, domain.ProcessIdentity) {
	cfg := domain.LoaderConfig{
		AppID:             730,
		ClientLibraryPath: filepath.Join("games", "cs", "shim", "steamclient64.dll"),
	}
	proc := domain.ProcessIdentity{PID: 4242, ExecutablePath: filepath.Join("games", "cs", "cs2.exe")}
	return cfg, proc
}

// newSeededRegistry returns a registry as a normal Steam install leaves it.
func newSeededRegistry(steamDir string) *fixtures.FakeRegistry {
	reg := fixtures.NewFakeRegistry()
	reg.Set(domain.HiveLocalMachine, steam.InstallRecordKey, steam.ValueInstallPath, steamDir)
	reg.Set(domain.HiveCurrentUser, steam.SteamKey, steam.ValueSteamPath, steamDir)
	reg.Set(domain.HiveCurrentUser, steam.ActiveProcessKey, steam.ValuePID, uint32(0))
	return reg
}

func TestPatch_WritesBothKeys(t *testing.T) {
	reg := newSeededRegistry("steam")
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()

	require.NoError(t, shim.Patch(cfg, proc))

	active := reg.Snapshot(domain.HiveCurrentUser, steam.ActiveProcessKey)
	assert.Equal(t, uint32(4242), active[steam.ValuePID])
	assert.Equal(t, cfg.ClientLibraryPath, active["SteamClientDll64"])
	assert.Equal(t, "public", active[steam.ValueUniverse])

	steamKey := reg.Snapshot(domain.HiveCurrentUser, steam.SteamKey)
	assert.Equal(t, filepath.Join("games", "cs", "shim"), steamKey[steam.ValueSteamPath])
	assert.Equal(t, uint32(730), steamKey[steam.ValueRunningAppID])
}

// TestPatch_Twice verifies patching is idempotent
func TestPatch_Twice(t *testing.T) {
	reg := newSeededRegistry("steam")
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()

	require.NoError(t, shim.Patch(cfg, proc))
	first := reg.Snapshot(domain.HiveCurrentUser, steam.ActiveProcessKey)
	require.NoError(t, shim.Patch(cfg, proc))

	assert.Equal(t, first, reg.Snapshot(domain.HiveCurrentUser, steam.ActiveProcessKey))
}

func TestPatch_ActiveProcessKeyMissing(t *testing.T) {
	reg := fixtures.NewFakeRegistry()
	reg.CreateKey(domain.HiveCurrentUser, steam.SteamKey)
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()

	err := shim.Patch(cfg, proc)

	assert.ErrorIs(t, err, domain.ErrKeyUnavailable)
	assert.Empty(t, reg.Snapshot(domain.HiveCurrentUser, steam.SteamKey), "steam key must not be written")
}

// TestPatch_SteamKeyDenied verifies the first key is not rolled back
func TestPatch_SteamKeyDenied(t *testing.T) {
	reg := newSeededRegistry("steam")
	reg.DenyOpen(domain.HiveCurrentUser, steam.SteamKey)
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()

	err := shim.Patch(cfg, proc)

	assert.ErrorIs(t, err, domain.ErrKeyUnavailable)
	assert.ErrorIs(t, err, fixtures.ErrAccessDenied)
	pid, _ := reg.Value(domain.HiveCurrentUser, steam.ActiveProcessKey, steam.ValuePID)
	assert.Equal(t, uint32(4242), pid)
}

func TestPatch_ValueWriteFails(t *testing.T) {
	reg := newSeededRegistry("steam")
	reg.FailWrites(steam.ValueUniverse, errors.New("disk full"))
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()

	err := shim.Patch(cfg, proc)

	assert.ErrorIs(t, err, domain.ErrValueWrite)
	_, written := reg.Value(domain.HiveCurrentUser, steam.SteamKey, steam.ValueRunningAppID)
	assert.False(t, written, "patch must stop at the first failed write")
}

// TestReconcile_RestoresInstallPath verifies reconcile only touches the two path values
func TestReconcile_RestoresInstallPath(t *testing.T) {
	steamDir := filepath.Join("Program Files (x86)", "Steam")
	reg := newSeededRegistry(steamDir)
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()
	require.NoError(t, shim.Patch(cfg, proc))

	shim.Reconcile()

	active := reg.Snapshot(domain.HiveCurrentUser, steam.ActiveProcessKey)
	assert.Equal(t, filepath.Join(steamDir, "steamclient64.dll"), active["SteamClientDll64"])
	assert.Equal(t, uint32(4242), active[steam.ValuePID])
	assert.Equal(t, "public", active[steam.ValueUniverse])

	steamKey := reg.Snapshot(domain.HiveCurrentUser, steam.SteamKey)
	assert.Equal(t, steamDir, steamKey[steam.ValueSteamPath])
	assert.Equal(t, uint32(730), steamKey[steam.ValueRunningAppID])
}

// TestReconcile_Idempotent verifies patch, reconcile, reconcile ends in the same state
func TestReconcile_Idempotent(t *testing.T) {
	reg := newSeededRegistry("steam")
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()
	require.NoError(t, shim.Patch(cfg, proc))

	shim.Reconcile()
	afterFirst := map[string]any{}
	for k, v := range reg.Snapshot(domain.HiveCurrentUser, steam.ActiveProcessKey) {
		afterFirst["A."+k] = v
	}
	for k, v := range reg.Snapshot(domain.HiveCurrentUser, steam.SteamKey) {
		afterFirst["B."+k] = v
	}

	for i := 0; i < 3; i++ {
		shim.Reconcile()
	}

	afterMany := map[string]any{}
	for k, v := range reg.Snapshot(domain.HiveCurrentUser, steam.ActiveProcessKey) {
		afterMany["A."+k] = v
	}
	for k, v := range reg.Snapshot(domain.HiveCurrentUser, steam.SteamKey) {
		afterMany["B."+k] = v
	}
	assert.Equal(t, afterFirst, afterMany)
}

// TestReconcile_NoInstallRecord verifies patched values survive when Steam is not installed
func TestReconcile_NoInstallRecord(t *testing.T) {
	reg := newSeededRegistry("steam")
	reg.DeleteKey(domain.HiveLocalMachine, steam.InstallRecordKey)
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()
	require.NoError(t, shim.Patch(cfg, proc))
	writes := reg.WriteCount()

	shim.Reconcile()

	assert.Equal(t, writes, reg.WriteCount(), "reconcile must not write without an install record")
	lib, _ := reg.Value(domain.HiveCurrentUser, steam.ActiveProcessKey, "SteamClientDll64")
	assert.Equal(t, cfg.ClientLibraryPath, lib)
	path, _ := reg.Value(domain.HiveCurrentUser, steam.SteamKey, steam.ValueSteamPath)
	assert.Equal(t, filepath.Dir(cfg.ClientLibraryPath), path)
}

func TestReconcile_EmptyInstallPath(t *testing.T) {
	reg := newSeededRegistry("")
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()
	require.NoError(t, shim.Patch(cfg, proc))
	writes := reg.WriteCount()

	shim.Reconcile()

	assert.Equal(t, writes, reg.WriteCount())
}

// TestReconcile_KeyDeniedIsSwallowed verifies one unavailable key does not stop the other
func TestReconcile_KeyDeniedIsSwallowed(t *testing.T) {
	reg := newSeededRegistry("steam")
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()
	require.NoError(t, shim.Patch(cfg, proc))
	reg.DenyOpen(domain.HiveCurrentUser, steam.ActiveProcessKey)

	assert.NotPanics(t, shim.Reconcile)

	path, _ := reg.Value(domain.HiveCurrentUser, steam.SteamKey, steam.ValueSteamPath)
	assert.Equal(t, "steam", path)
}

// TestReconcile_AllWritesFailed verifies success is not logged when nothing was reconciled
func TestReconcile_AllWritesFailed(t *testing.T) {
	reg := newSeededRegistry("steam")
	core, logs := observer.New(zapcore.InfoLevel)
	shim := NewRegistryShim(reg, layout, zap.New(core))
	cfg, proc := testSession()
	require.NoError(t, shim.Patch(cfg, proc))
	reg.DenyOpen(domain.HiveCurrentUser, steam.ActiveProcessKey)
	reg.DenyOpen(domain.HiveCurrentUser, steam.SteamKey)

	shim.Reconcile()

	assert.Zero(t, logs.FilterMessage("reconciled registry with steam install").Len())
	assert.Equal(t, 1, logs.FilterMessage("registry left as patched, no value reconciled").Len())
}

// TestReconcile_PartialIsLogged verifies one failed key still reports a partial success
func TestReconcile_PartialIsLogged(t *testing.T) {
	reg := newSeededRegistry("steam")
	core, logs := observer.New(zapcore.InfoLevel)
	shim := NewRegistryShim(reg, layout, zap.New(core))
	cfg, proc := testSession()
	require.NoError(t, shim.Patch(cfg, proc))
	reg.DenyOpen(domain.HiveCurrentUser, steam.SteamKey)

	shim.Reconcile()

	entries := logs.FilterMessage("reconciled registry with steam install").All()
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].ContextMap()["partial"])
}

// TestReconcile_Concurrent verifies concurrent reconciles never leave torn values
func TestReconcile_Concurrent(t *testing.T) {
	steamDir := filepath.Join("real", "Steam")
	reg := newSeededRegistry(steamDir)
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()
	require.NoError(t, shim.Patch(cfg, proc))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shim.Reconcile()
		}()
	}
	wg.Wait()

	lib, _ := reg.Value(domain.HiveCurrentUser, steam.ActiveProcessKey, "SteamClientDll64")
	assert.Equal(t, filepath.Join(steamDir, "steamclient64.dll"), lib)
	path, _ := reg.Value(domain.HiveCurrentUser, steam.SteamKey, steam.ValueSteamPath)
	assert.Equal(t, steamDir, path)
}

func TestInstallPath(t *testing.T) {
	reg := newSeededRegistry("C:/Steam")
	shim := NewRegistryShim(reg, layout, zap.NewNop())

	got, err := shim.InstallPath()

	require.NoError(t, err)
	assert.Equal(t, "C:/Steam", got)
}

func TestActivePID(t *testing.T) {
	reg := newSeededRegistry("steam")
	shim := NewRegistryShim(reg, layout, zap.NewNop())
	cfg, proc := testSession()
	require.NoError(t, shim.Patch(cfg, proc))

	pid, err := shim.ActivePID()

	require.NoError(t, err)
	assert.Equal(t, uint32(4242), pid)
}

func TestActivePID_KeyMissing(t *testing.T) {
	shim := NewRegistryShim(fixtures.NewFakeRegistry(), layout, zap.NewNop())

	_, err := shim.ActivePID()

	assert.ErrorIs(t, err, domain.ErrKeyUnavailable)
}

// TestPatch_32BitLayout verifies the value name follows the layout
func TestPatch_32BitLayout(t *testing.T) {
	reg := newSeededRegistry("steam")
	shim := NewRegistryShim(reg, steam.LayoutFor("386"), zap.NewNop())
	cfg, proc := testSession()

	require.NoError(t, shim.Patch(cfg, proc))
	shim.Reconcile()

	lib, ok := reg.Value(domain.HiveCurrentUser, steam.ActiveProcessKey, "SteamClientDll")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("steam", "steamclient.dll"), lib)
	_, ok = reg.Value(domain.HiveCurrentUser, steam.ActiveProcessKey, "SteamClientDll64")
	assert.False(t, ok, fmt.Sprintf("unexpected 64-bit value in %v", reg.Snapshot(domain.HiveCurrentUser, steam.ActiveProcessKey)))
}
