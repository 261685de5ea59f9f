package main

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/steamshim/internal/config"
	"github.com/eliteGoblin/focusd/steamshim/internal/infra"
	"github.com/eliteGoblin/focusd/steamshim/internal/lifecycle"
	"github.com/eliteGoblin/focusd/steamshim/internal/shim"
	"github.com/eliteGoblin/focusd/steamshim/internal/steam"
)

// newController wires the OS adapters into a lifecycle controller.
func newController(logger *zap.Logger) *lifecycle.Controller {
	layout := steam.CurrentLayout()

	components := lifecycle.Components{
		Resolver:    config.NewResolverWithLayout(layout),
		Process:     infra.NewProcessInspector(),
		Environment: shim.NewProcessEnvironment(infra.NewEnvironment(), logger),
		Registry:    shim.NewRegistryShim(infra.NewRegistry(), layout, logger),
		Loader:      shim.NewLoader(infra.NewLibraryLoader(), infra.NewFileSystem(), logger),
		Notifier:    infra.NewNotifier(logger),
		Layout:      layout,
	}

	return lifecycle.NewController(lifecycle.DefaultControllerConfig(), components, logger)
}
