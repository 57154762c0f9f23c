package main

import (
	"fmt"
	"io"

	"github.com/awake/awake/internal/config"
	"github.com/awake/awake/internal/daemon"
	"github.com/awake/awake/internal/logging"
	"github.com/awake/awake/pkg/platform"
	"github.com/awake/awake/pkg/utils"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates a new status command
func NewStatusCmd(globalFlags *GlobalFlags) *cobra.Command {
	var system bool

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Shows whether an instance is running",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(globalFlags, cobraCmd.Flags())
			if err != nil {
				return err
			}

			if err := printStatus(cobraCmd.OutOrStdout(), cfg); err != nil {
				return err
			}
			if system {
				printSystem(cobraCmd.OutOrStdout(), cobraCmd.ErrOrStderr(), cfg)
			}
			return nil
		},
	}

	statusCmd.Flags().BoolVar(&system, "system", true, "Also report keepalive backends, idle time and lock state")
	return statusCmd
}

func printStatus(out io.Writer, cfg *config.Config) error {
	running, pid, err := daemon.New(cfg.Daemon.PIDFile).IsRunning()
	if err != nil {
		return err
	}

	if running {
		fmt.Fprintf(out, "Status: Running (PID: %d)\n", pid)
	} else {
		fmt.Fprintln(out, "Status: Not running")
	}
	fmt.Fprintf(out, "PID File: %s\n", cfg.Daemon.PIDFile)
	fmt.Fprintf(out, "Log File: %s\n", cfg.Daemon.LogFile)
	if cfg.JournalEnabled() {
		fmt.Fprintf(out, "Journal: %s\n", cfg.Journal.Path)
	} else {
		fmt.Fprintln(out, "Journal: disabled")
	}
	return nil
}

// printSystem reports what this machine offers. Failures are informational.
func printSystem(out, logOut io.Writer, cfg *config.Config) {
	log := logging.New(logOut, cfg.Log.Debug)

	fmt.Fprintf(out, "\nDisplay: %s\n", platform.DetectDisplayServer())

	backend, err := platform.New(platform.Options{
		PreventLock:    cfg.Keeper.PreventLock,
		RestorePointer: cfg.Keeper.RestorePointer,
	}, log)
	if err != nil {
		fmt.Fprintf(out, "Backends: none (%v)\n", err)
	} else {
		fmt.Fprintf(out, "Backends: %s\n", backend.Name())
		_ = backend.Close()
	}

	if idle, err := platform.IdleTime(); err == nil {
		fmt.Fprintf(out, "Idle Time: %s\n", utils.FormatDuration(idle))
	}
	if locked, err := platform.ScreenLocked(); err == nil {
		fmt.Fprintf(out, "Screen Saver Active: %v\n", locked)
	}
}
