package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/awake/awake/internal/daemon"

	"github.com/spf13/cobra"
)

const stopTimeout = 5 * time.Second

// NewStopCmd creates a new stop command
func NewStopCmd(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stops the running instance",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(globalFlags, cobraCmd.Flags())
			if err != nil {
				return err
			}

			out := cobraCmd.OutOrStdout()
			pid, err := daemon.New(cfg.Daemon.PIDFile).Stop(stopTimeout)
			if errors.Is(err, daemon.ErrNotRunning) {
				fmt.Fprintf(out, "%s is not running\n", appName)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Stopped %s (PID: %d)\n", appName, pid)
			return nil
		},
	}
}
