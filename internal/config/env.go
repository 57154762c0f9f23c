package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// EnvFileVar names the variable pointing at an optional dotenv file
const EnvFileVar = "AWAKE_ENV_FILE"

// LoadFromEnv loads configuration from environment variables.
// Environment variables override default values; a malformed value is an
// error rather than being ignored.
func LoadFromEnv(cfg *Config) error {
	// Keeper configuration
	if interval := os.Getenv("AWAKE_INTERVAL"); interval != "" {
		seconds, err := strconv.ParseFloat(interval, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid AWAKE_INTERVAL %q", interval)
		}
		if err := cfg.SetIntervalSeconds(seconds); err != nil {
			return errors.Wrap(err, "invalid AWAKE_INTERVAL")
		}
	}

	if err := envBool("AWAKE_PREVENT_LOCK", &cfg.Keeper.PreventLock); err != nil {
		return err
	}
	if err := envBool("AWAKE_RESTORE_POINTER", &cfg.Keeper.RestorePointer); err != nil {
		return err
	}

	// Daemon configuration
	if pidFile := os.Getenv("AWAKE_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := os.Getenv("AWAKE_LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	// Journal configuration
	if err := envBool("AWAKE_JOURNAL", &cfg.Journal.Enabled); err != nil {
		return err
	}
	if journalFile := os.Getenv("AWAKE_JOURNAL_FILE"); journalFile != "" {
		cfg.Journal.Path = journalFile
	}

	return envBool("AWAKE_DEBUG", &cfg.Log.Debug)
}

// envBool sets *dst from a boolean variable when it is present
func envBool(key string, dst *bool) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid %s %q", key, raw)
	}
	*dst = val
	return nil
}

// EnvFilePath returns the dotenv file consulted by New
func EnvFilePath() string {
	if path := os.Getenv(EnvFileVar); path != "" {
		return path
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "awake", "awake.env")
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment. Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "load env file %s", path)
	}
	return nil
}

// New creates a new Config with default values and loads from environment
func New() (*Config, error) {
	cfg := Default()
	if err := LoadEnvFile(EnvFilePath()); err != nil {
		return nil, err
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
