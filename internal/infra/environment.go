package infra

import (
	"os"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
)

// EnvironmentImpl implements domain.Environment on the process environment block.
type EnvironmentImpl struct{}

// NewEnvironment creates a new environment adapter.
func NewEnvironment() *EnvironmentImpl {
	return &EnvironmentImpl{}
}

// Setenv sets a variable visible to the host and everything it loads later.
func (e *EnvironmentImpl) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

// Ensure EnvironmentImpl implements domain.Environment.
var _ domain.Environment = (*EnvironmentImpl)(nil)
