package main

import (
	"github.com/awake/awake/internal/config"

	flag "github.com/spf13/pflag"
)

// GlobalFlags are shared by every command
type GlobalFlags struct {
	PIDFile     string
	JournalFile string
}

// RunFlags hold the flags of the keepalive loop itself
type RunFlags struct {
	Interval    float64
	Daemon      bool
	PreventLock bool
	Debug       bool
	Journal     bool
}

// SetGlobalFlags applies the global flags
func SetGlobalFlags(flags *flag.FlagSet) *GlobalFlags {
	globalFlags := &GlobalFlags{}

	flags.StringVar(&globalFlags.PIDFile, "pid-file", "", "Single-instance marker. You can also use AWAKE_PID_FILE to set this")
	flags.StringVar(&globalFlags.JournalFile, "journal-file", "", "Tick journal location. You can also use AWAKE_JOURNAL_FILE to set this")
	return globalFlags
}

// SetRunFlags applies the flags of the root command
func SetRunFlags(flags *flag.FlagSet) *RunFlags {
	runFlags := &RunFlags{}

	flags.Float64VarP(&runFlags.Interval, "interval", "i", 60, "Seconds between keepalive ticks")
	flags.BoolVarP(&runFlags.Daemon, "daemon", "d", false, "Detach into the background")
	flags.BoolVarP(&runFlags.PreventLock, "prevent-lock", "p", false, "Also send a harmless key tap to keep the screen from locking")
	flags.BoolVarP(&runFlags.Debug, "debug", "v", false, "Verbose status logging")
	flags.BoolVar(&runFlags.Journal, "journal", false, "Record every tick in the journal. Implied by --journal-file")
	return runFlags
}

// apply copies the global flags that were set explicitly onto cfg
func (g *GlobalFlags) apply(cfg *config.Config, flags *flag.FlagSet) {
	if flags.Changed("pid-file") {
		cfg.Daemon.PIDFile = g.PIDFile
	}
	if flags.Changed("journal-file") {
		cfg.Journal.Path = g.JournalFile
	}
}

// apply copies the run flags that were set explicitly onto cfg, so
// environment values survive unless overridden on the command line
func (r *RunFlags) apply(cfg *config.Config, flags *flag.FlagSet) error {
	if flags.Changed("interval") {
		if err := cfg.SetIntervalSeconds(r.Interval); err != nil {
			return err
		}
	}
	if flags.Changed("daemon") {
		cfg.Daemon.Detach = r.Daemon
	}
	if flags.Changed("prevent-lock") {
		cfg.Keeper.PreventLock = r.PreventLock
	}
	if flags.Changed("debug") {
		cfg.Log.Debug = r.Debug
	}
	if flags.Changed("journal") {
		cfg.Journal.Enabled = r.Journal
	} else if flags.Changed("journal-file") {
		cfg.Journal.Enabled = true
	}
	return nil
}
