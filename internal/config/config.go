package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Keepalive loop configuration
	Keeper KeeperConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Tick journal configuration
	Journal JournalConfig

	// Logging configuration
	Log LogConfig
}

// KeeperConfig holds keepalive loop configuration
type KeeperConfig struct {
	Interval       time.Duration // Time between two keepalive ticks
	Slice          time.Duration // Granularity at which a pending stop is noticed
	PreventLock    bool          // Also send a synthetic key tap each tick
	RestorePointer bool          // Move the pointer back after each nudge
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	Detach  bool   // Detach into the background
	PIDFile string // Single-instance marker
	LogFile string // Log destination of the detached process
}

// JournalConfig holds tick journal configuration
type JournalConfig struct {
	Enabled bool   // Record every tick
	Path    string // SQLite file
}

// LogConfig holds logging configuration
type LogConfig struct {
	Debug bool
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Keeper: KeeperConfig{
			Interval:       60 * time.Second,
			Slice:          200 * time.Millisecond,
			PreventLock:    false,
			RestorePointer: true,
		},
		Daemon: DaemonConfig{
			Detach:  false,
			PIDFile: filepath.Join(os.TempDir(), "awake.pid"),
			LogFile: filepath.Join(os.TempDir(), "awake.log"),
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    DefaultJournalPath(),
		},
	}
}

// DefaultJournalPath returns the journal location under the user config
// directory, or the temp directory when there is none. Nothing is created.
func DefaultJournalPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "awake", "journal.db")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Keeper.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Keeper.Interval)
	}

	if c.Keeper.Slice <= 0 {
		return fmt.Errorf("slice must be positive, got %v", c.Keeper.Slice)
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.Daemon.Detach && c.Daemon.LogFile == "" {
		return fmt.Errorf("log file path cannot be empty in daemon mode")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal path cannot be empty when the journal is enabled")
	}

	return nil
}

// SetIntervalSeconds sets the tick interval from a floating point number of seconds
func (c *Config) SetIntervalSeconds(seconds float64) error {
	interval, err := ParseSeconds(seconds)
	if err != nil {
		return err
	}
	c.Keeper.Interval = interval
	return nil
}

// ParseSeconds converts a positive number of seconds into a duration
func ParseSeconds(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("interval must be a finite number, got %v", seconds)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("interval must be greater than 0, got %v", seconds)
	}
	if seconds > float64(math.MaxInt64)/float64(time.Second) {
		return 0, fmt.Errorf("interval %v is too large", seconds)
	}

	d := time.Duration(seconds * float64(time.Second))
	if d <= 0 {
		return 0, fmt.Errorf("interval %v is below the clock resolution", seconds)
	}
	return d, nil
}

// JournalEnabled reports whether keepalive ticks are recorded
func (c *Config) JournalEnabled() bool {
	return c.Journal.Enabled
}

// String returns a string representation of the config
func (c *Config) String() string {
	journal := c.Journal.Path
	if !c.Journal.Enabled {
		journal = "disabled"
	}

	return fmt.Sprintf(`Configuration:
  Keeper:
    Interval: %v
    Slice: %v
    Prevent Lock: %v
    Restore Pointer: %v
  Daemon:
    Detach: %v
    PID File: %s
    Log File: %s
  Journal: %s
  Debug: %v`,
		c.Keeper.Interval,
		c.Keeper.Slice,
		c.Keeper.PreventLock,
		c.Keeper.RestorePointer,
		c.Daemon.Detach,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		journal,
		c.Log.Debug,
	)
}
