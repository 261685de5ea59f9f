// Package main is the CLI entry point for steamshimctl, the out-of-process
// companion of the steamshim library.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/steamshim/internal/domain"
	"github.com/eliteGoblin/focusd/steamshim/internal/infra"
	"github.com/eliteGoblin/focusd/steamshim/internal/shim"
	"github.com/eliteGoblin/focusd/steamshim/internal/steam"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

// errShimActive is returned when reconcile would undo a live shim's patch.
var errShimActive = errors.New("process recorded in ActiveProcess is still running")

func main() {
	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		os.Exit(1)
	}
}

// deps are the adapters the commands drive.
type deps struct {
	registry domain.Registry
	process  domain.ProcessInspector
	layout   steam.Layout
	logger   func(verbose bool) *zap.Logger
}

func defaultDeps() deps {
	return deps{
		registry: infra.NewRegistry(),
		process:  infra.NewProcessInspector(),
		layout:   steam.CurrentLayout(),
		logger:   infra.NewConsoleLogger,
	}
}

func newRootCmd(d deps) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "steamshimctl",
		Short: "Inspect and repair the Steam registry state left by steamshim",
		Long: `steamshimctl works on the same registry values the steamshim library
patches when a game starts. Use it to check what is currently recorded
and to restore the real Steam install after a crash.`,
		Version:      Version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	var force bool
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Point the Steam registry back at the real Steam install",
		Long: `Rewrites the client library path and SteamPath from the Steam install
record, exactly as the library does on cleanup. Refuses while the process
recorded in ActiveProcess is still running unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := d.logger(verbose)
			defer func() { _ = logger.Sync() }()
			return runReconcile(cmd.OutOrStdout(), d, logger, force)
		},
	}
	reconcileCmd.Flags().BoolVar(&force, "force", false, "Reconcile even if the recorded process is alive")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the registry values steamshim manages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := d.logger(verbose)
			defer func() { _ = logger.Sync() }()
			return runStatus(cmd.OutOrStdout(), d, logger)
		},
	}

	var jsonOutput bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.OutOrStdout(), jsonOutput)
		},
	}
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(reconcileCmd, statusCmd, versionCmd)
	return rootCmd
}

func runReconcile(out io.Writer, d deps, logger *zap.Logger, force bool) error {
	registry := shim.NewRegistryShim(d.registry, d.layout, logger)

	if pid, err := registry.ActivePID(); err == nil && d.process.IsRunning(pid) {
		if !force {
			return fmt.Errorf("%w (pid %d), use --force to reconcile anyway", errShimActive, pid)
		}
		logger.Warn("reconciling while recorded process is alive", zap.Uint32("pid", pid))
	}

	installPath, err := registry.InstallPath()
	if err != nil {
		return fmt.Errorf("cannot reconcile without a Steam install record: %w", err)
	}

	registry.Reconcile()
	fmt.Fprintf(out, "Registry now points at %s\n", d.layout.ClientLibraryIn(installPath))
	return nil
}

func runStatus(out io.Writer, d deps, logger *zap.Logger) error {
	registry := shim.NewRegistryShim(d.registry, d.layout, logger)

	installPath, err := registry.InstallPath()
	if err != nil {
		fmt.Fprintf(out, "Steam install:  unknown (%v)\n", err)
	} else {
		fmt.Fprintf(out, "Steam install:  %s\n", installPath)
	}

	pid, err := registry.ActivePID()
	switch {
	case err != nil:
		fmt.Fprintf(out, "Active process: unknown (%v)\n", err)
	case d.process.IsRunning(pid):
		fmt.Fprintf(out, "Active process: %d (running)\n", pid)
	default:
		fmt.Fprintf(out, "Active process: %d (not running)\n", pid)
	}
	return nil
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(out io.Writer, jsonOutput bool) error {
	if jsonOutput {
		return json.NewEncoder(out).Encode(versionInfo{
			Version:   Version,
			Commit:    Commit,
			BuildTime: BuildTime,
		})
	}
	_, err := fmt.Fprintf(out, "steamshimctl %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
	return err
}
