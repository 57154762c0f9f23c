package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    time.Duration
		wantErr bool
	}{
		{name: "default", seconds: 60, want: time.Minute},
		{name: "fractional", seconds: 0.5, want: 500 * time.Millisecond},
		{name: "zero", seconds: 0, wantErr: true},
		{name: "negative", seconds: -1, wantErr: true},
		{name: "NaN", seconds: math.NaN(), wantErr: true},
		{name: "infinite", seconds: math.Inf(1), wantErr: true},
		{name: "overflow", seconds: 1e300, wantErr: true},
		{name: "below resolution", seconds: 1e-12, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeconds(tt.seconds)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Keeper.Interval = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Keeper.Slice = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Daemon.PIDFile = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Daemon.Detach = true
	cfg.Daemon.LogFile = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Journal.Enabled = true
	cfg.Journal.Path = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AWAKE_INTERVAL", "1.5")
	t.Setenv("AWAKE_PREVENT_LOCK", "true")
	t.Setenv("AWAKE_RESTORE_POINTER", "false")
	t.Setenv("AWAKE_PID_FILE", "/run/user/1000/awake.pid")
	t.Setenv("AWAKE_LOG_FILE", "/run/user/1000/awake.log")
	t.Setenv("AWAKE_JOURNAL", "true")
	t.Setenv("AWAKE_JOURNAL_FILE", "/run/user/1000/journal.db")
	t.Setenv("AWAKE_DEBUG", "1")

	cfg := Default()
	require.NoError(t, LoadFromEnv(cfg))

	assert.Equal(t, 1500*time.Millisecond, cfg.Keeper.Interval)
	assert.True(t, cfg.Keeper.PreventLock)
	assert.False(t, cfg.Keeper.RestorePointer)
	assert.Equal(t, "/run/user/1000/awake.pid", cfg.Daemon.PIDFile)
	assert.Equal(t, "/run/user/1000/awake.log", cfg.Daemon.LogFile)
	assert.Equal(t, "/run/user/1000/journal.db", cfg.Journal.Path)
	assert.True(t, cfg.JournalEnabled())
	assert.True(t, cfg.Log.Debug)
}

func TestLoadFromEnvRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"AWAKE_INTERVAL", "0"},
		{"AWAKE_INTERVAL", "-5"},
		{"AWAKE_INTERVAL", "abc"},
		{"AWAKE_PREVENT_LOCK", "maybe"},
		{"AWAKE_JOURNAL", "sometimes"},
		{"AWAKE_DEBUG", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			err := LoadFromEnv(Default())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadFromEnvEmptyKeepsDefaults(t *testing.T) {
	for _, key := range []string{"AWAKE_INTERVAL", "AWAKE_PREVENT_LOCK", "AWAKE_JOURNAL", "AWAKE_JOURNAL_FILE", "AWAKE_DEBUG"} {
		t.Setenv(key, "")
	}

	cfg := Default()
	require.NoError(t, LoadFromEnv(cfg))
	assert.Equal(t, time.Minute, cfg.Keeper.Interval)
	assert.False(t, cfg.JournalEnabled())
	assert.Equal(t, DefaultJournalPath(), cfg.Journal.Path)
}

func TestNewFailsOnInvalidEnvironment(t *testing.T) {
	t.Setenv(EnvFileVar, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("AWAKE_INTERVAL", "0")

	_, err := New()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	const key = "AWAKE_TEST_ENV_FILE_VALUE"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), "awake.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=42\n"), 0644))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "42", os.Getenv(key))
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	const key = "AWAKE_TEST_ENV_FILE_KEEP"
	t.Setenv(key, "set")

	path := filepath.Join(t.TempDir(), "awake.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=file\n"), 0644))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "set", os.Getenv(key))
}

func TestLoadEnvFileMissing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, LoadEnvFile(""))
}

func TestEnvFilePathOverride(t *testing.T) {
	t.Setenv(EnvFileVar, "/etc/awake.env")
	assert.Equal(t, "/etc/awake.env", EnvFilePath())
}

func TestString(t *testing.T) {
	cfg := Default()
	assert.Contains(t, cfg.String(), "Journal: disabled")

	cfg.Journal.Enabled = true
	cfg.Journal.Path = "/tmp/journal.db"
	assert.Contains(t, cfg.String(), "Journal: /tmp/journal.db")
}
