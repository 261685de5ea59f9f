// Package infra implements the OS adapters behind the domain ports
// (process, filesystem, environment, registry, library loading, dialogs).
package infra

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// ProcessInspectorImpl implements domain.ProcessInspector using gopsutil.
type ProcessInspectorImpl struct {
	pid int
}

// NewProcessInspector creates an inspector for the current process.
func NewProcessInspector() *ProcessInspectorImpl {
	return &ProcessInspectorImpl{pid: os.Getpid()}
}

// NewProcessInspectorWithPID creates an inspector reporting another PID (for testing).
func NewProcessInspectorWithPID(pid int) *ProcessInspectorImpl {
	return &ProcessInspectorImpl{pid: pid}
}

// CurrentIdentity returns the PID and executable path of the host process.
func (pi *ProcessInspectorImpl) CurrentIdentity() (domain.ProcessIdentity, error) {
	identity := domain.ProcessIdentity{PID: uint32(pi.pid)}

	p, err := process.NewProcess(int32(pi.pid))
	if err == nil {
		if exe, exeErr := p.Exe(); exeErr == nil && exe != "" {
			identity.ExecutablePath = exe
			return identity, nil
		}
	}

	// gopsutil cannot always read the image path; our own process is still known.
	if pi.pid != os.Getpid() {
		return domain.ProcessIdentity{}, fmt.Errorf("failed to read executable path of pid %d", pi.pid)
	}
	exe, err := os.Executable()
	if err != nil {
		return domain.ProcessIdentity{}, fmt.Errorf("failed to read executable path: %w", err)
	}
	identity.ExecutablePath = exe
	return identity, nil
}

// IsRunning checks if a PID exists.
func (pi *ProcessInspectorImpl) IsRunning(pid uint32) bool {
	if pid == 0 {
		return false
	}
	exists, err := process.PidExists(int32(pid))
	return err == nil && exists
}

// Ensure ProcessInspectorImpl implements domain.ProcessInspector.
var _ domain.ProcessInspector = (*ProcessInspectorImpl)(nil)
