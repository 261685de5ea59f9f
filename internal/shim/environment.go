package shim

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
	"github.com/eliteGoblin/focusd/steamshim/internal/steam"
)

// ProcessEnvironment sets the variables the Steam API checks to decide it
// was started by the Steam client. Children spawned later inherit them.
type ProcessEnvironment struct {
	env    domain.Environment
	logger *zap.Logger
}

// NewProcessEnvironment creates a process environment shim.
func NewProcessEnvironment(env domain.Environment, logger *zap.Logger) *ProcessEnvironment {
	return &ProcessEnvironment{env: env, logger: logger}
}

// ApplyImpersonation sets the app id (under two names) and the launch flags.
// A failed assignment is logged and skipped; it never aborts attach.
func (p *ProcessEnvironment) ApplyImpersonation(appID uint32) {
	id := strconv.FormatUint(uint64(appID), 10)
	vars := []struct{ key, value string }{
		{steam.EnvAppID, id},
		{steam.EnvGameID, id},
		{steam.EnvClientLaunch, "1"},
		{steam.EnvSteamEnv, "1"},
	}

	for _, v := range vars {
		if err := p.env.Setenv(v.key, v.value); err != nil {
			p.logger.Warn("failed to set environment variable",
				zap.String("name", v.key),
				zap.Error(err))
		}
	}

	p.logger.Info("set steam environment variables", zap.Uint32("app_id", appID))
}
