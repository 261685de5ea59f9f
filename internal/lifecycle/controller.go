// Package lifecycle implements the attach/detach state machine of the shim.
package lifecycle

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
	"github.com/eliteGoblin/focusd/steamshim/internal/shim"
	"github.com/eliteGoblin/focusd/steamshim/internal/steam"
)

// Components groups the collaborators a controller drives.
type Components struct {
	Resolver    domain.ConfigResolver
	Process     domain.ProcessInspector
	Environment *shim.ProcessEnvironment
	Registry    *shim.RegistryShim
	Loader      *shim.Loader
	Notifier    domain.Notifier
	Layout      steam.Layout
}

// Controller drives the shim through Idle -> Attached -> CleanupArmed -> CleanedUp.
//
// Both the delayed cleanup goroutine and OnDetach may reconcile the registry,
// possibly at the same time. Reconcile is idempotent so it runs unguarded;
// only the state transition is atomic.
type Controller struct {
	config     ControllerConfig
	components Components
	logger     *zap.Logger

	terminate func(code int)
	after     func(time.Duration) <-chan time.Time

	attachOnce sync.Once
	state      atomic.Int32
	session    atomic.Pointer[domain.Session]
}

// NewController creates a controller that exits the process on fatal errors.
func NewController(config ControllerConfig, components Components, logger *zap.Logger) *Controller {
	return NewControllerWithDeps(config, components, logger, os.Exit, time.After)
}

// NewControllerWithDeps creates a controller with injected exit and timer
// functions (for testing).
func NewControllerWithDeps(
	config ControllerConfig,
	components Components,
	logger *zap.Logger,
	terminate func(code int),
	after func(time.Duration) <-chan time.Time,
) *Controller {
	return &Controller{
		config:     config,
		components: components,
		logger:     logger,
		terminate:  terminate,
		after:      after,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() domain.LifecycleState {
	return domain.LifecycleState(c.state.Load())
}

// Session returns what attach captured. Zero until attach succeeds.
func (c *Controller) Session() domain.Session {
	if s := c.session.Load(); s != nil {
		return *s
	}
	return domain.Session{}
}

// OnAttach initializes the shim once. Later calls are ignored.
// Any error before the Attached state is fatal: it is logged, shown to the
// operator, and the process terminates.
func (c *Controller) OnAttach(moduleDir string) {
	ran := false
	c.attachOnce.Do(func() {
		ran = true
		c.attach(moduleDir)
	})
	if !ran {
		c.logger.Warn("attach already handled, ignoring", zap.Stringer("state", c.State()))
	}
}

func (c *Controller) attach(moduleDir string) {
	defer func() {
		if r := recover(); r != nil {
			c.fail(fmt.Errorf("panic during attach: %v", r))
		}
	}()

	c.logger.Info("attaching", zap.String("module_dir", moduleDir))

	session, err := c.initialize(moduleDir)
	if err != nil {
		c.fail(err)
		return
	}

	c.session.Store(&session)

	// A detach may have run while attach was in progress; never leave CleanedUp.
	if !c.state.CompareAndSwap(int32(domain.StateIdle), int32(domain.StateAttached)) {
		c.logger.Warn("detached during attach, reconciling again",
			zap.Stringer("state", c.State()))
		c.components.Registry.Reconcile()
		return
	}
	c.logger.Info("attached",
		zap.Uint32("app_id", session.Config.AppID),
		zap.Uint32("pid", session.Process.PID))

	c.armCleanup(session.Config.CleanupDelay)
}

// initialize runs every attach step in order. Environment goes before the
// registry patch, and nothing is loaded until the patch succeeded.
func (c *Controller) initialize(moduleDir string) (domain.Session, error) {
	cfg, err := c.components.Resolver.Resolve(moduleDir)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to resolve config: %w", err)
	}

	proc, err := c.components.Process.CurrentIdentity()
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to capture process identity: %w", err)
	}

	session := domain.Session{
		Config:    *cfg,
		Process:   proc,
		ModuleDir: moduleDir,
	}
	if session.Config.CleanupDelay == 0 {
		session.Config.CleanupDelay = c.config.CleanupDelay
	}

	c.components.Environment.ApplyImpersonation(session.Config.AppID)

	if err := c.components.Registry.Patch(session.Config, session.Process); err != nil {
		return domain.Session{}, fmt.Errorf("failed to patch registry: %w", err)
	}

	if _, err := c.components.Loader.LoadMandatory(session.Config.ClientLibraryPath); err != nil {
		return domain.Session{}, err
	}

	overlay := c.components.Layout.OverlayLibraryBeside(session.Process.ExecutablePath)
	result, err := c.components.Loader.LoadOptional(overlay)
	if err != nil {
		c.logger.Error("optional library present but failed to load",
			zap.String("path", overlay),
			zap.Error(err))
	} else {
		c.logger.Debug("optional library", zap.String("path", overlay), zap.Stringer("status", result.Status))
	}

	return session, nil
}

// armCleanup starts the detached cleanup goroutine. It is never joined.
func (c *Controller) armCleanup(delay time.Duration) {
	go c.delayedCleanup(delay)

	// A zero delay may already have cleaned up; never move back from CleanedUp.
	if c.state.CompareAndSwap(int32(domain.StateAttached), int32(domain.StateCleanupArmed)) {
		c.logger.Info("registry cleanup scheduled", zap.Duration("delay", delay))
	}
}

func (c *Controller) delayedCleanup(delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("delayed cleanup panicked", zap.Any("panic", r))
		}
	}()

	<-c.after(delay)

	c.logger.Info("performing delayed registry cleanup")
	c.components.Registry.Reconcile()
	c.markCleanedUp("timer")
}

// OnDetach reconciles the registry immediately, whatever the current state.
func (c *Controller) OnDetach() {
	c.logger.Info("detaching, performing registry cleanup", zap.Stringer("state", c.State()))
	c.components.Registry.Reconcile()
	c.markCleanedUp("detach")
	_ = c.logger.Sync()
}

// markCleanedUp enters the terminal state. Only the first caller logs it.
func (c *Controller) markCleanedUp(source string) {
	prev := domain.LifecycleState(c.state.Swap(int32(domain.StateCleanedUp)))
	if prev == domain.StateCleanedUp {
		c.logger.Debug("cleanup already performed", zap.String("source", source))
		return
	}
	c.logger.Info("cleaned up",
		zap.String("source", source),
		zap.Stringer("previous_state", prev))
}

// fail reports a fatal attach error and terminates the process.
func (c *Controller) fail(err error) {
	c.logger.Error("failed to initialize", zap.Error(err))
	_ = c.logger.Sync()

	if c.components.Notifier != nil {
		c.components.Notifier.NotifyFatal(c.config.FatalTitle, "Failed to initialize: "+err.Error())
	}
	c.terminate(c.config.ExitCode)
}
