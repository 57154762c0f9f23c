// Package platform selects the keepalive backends for the running system.
// Selection happens once at startup; the result is a fixed backend or chain.
package platform

import (
	"errors"
	"os"

	"github.com/awake/awake/pkg/keepalive"
	"github.com/sirupsen/logrus"
)

// ErrNoBackend is returned when no keepalive backend works on this system.
var ErrNoBackend = errors.New("no keepalive backend available on this platform")

// ErrIdleUnsupported is returned by IdleTime where idle time cannot be read.
var ErrIdleUnsupported = errors.New("idle time is not available on this platform")

// ErrLockUnsupported is returned by ScreenLocked where the lock state cannot be read.
var ErrLockUnsupported = errors.New("screen lock state is not available on this platform")

// Options controls which variants are selected
type Options struct {
	PreventLock    bool
	RestorePointer bool
}

// New returns the keepalive backend for this platform
func New(opts Options, log logrus.FieldLogger) (keepalive.Backend, error) {
	return combine(newBackends(opts, log))
}

func combine(backends []keepalive.Backend) (keepalive.Backend, error) {
	switch len(backends) {
	case 0:
		return nil, ErrNoBackend
	case 1:
		return backends[0], nil
	}
	return keepalive.NewChain(backends...), nil
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
