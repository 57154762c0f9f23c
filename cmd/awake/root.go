package main

import (
	"github.com/awake/awake/internal/config"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

// newRootCmd builds the command tree. The root command runs the keepalive loop.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Keep the computer awake by simulating user activity",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	globalFlags := SetGlobalFlags(rootCmd.PersistentFlags())
	runFlags := SetRunFlags(rootCmd.Flags())

	rootCmd.RunE = func(cobraCmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(globalFlags, cobraCmd.Flags())
		if err != nil {
			return err
		}
		if err := runFlags.apply(cfg, cobraCmd.Flags()); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		return (&RunCmd{Config: cfg, Out: cobraCmd.OutOrStdout(), ErrOut: cobraCmd.ErrOrStderr()}).Run(cobraCmd.Context())
	}

	rootCmd.AddCommand(NewStopCmd(globalFlags))
	rootCmd.AddCommand(NewStatusCmd(globalFlags))
	rootCmd.AddCommand(NewStatsCmd(globalFlags))
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

// loadConfig reads defaults, the env file and the environment, then the global flags
func loadConfig(globalFlags *GlobalFlags, flags *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	globalFlags.apply(cfg, flags)
	return cfg, nil
}
