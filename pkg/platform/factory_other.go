//go:build !linux && !freebsd && !openbsd && !netbsd && !dragonfly && !windows && !darwin

package platform

import (
	"time"

	"github.com/awake/awake/pkg/keepalive"
	"github.com/sirupsen/logrus"
)

func newBackends(opts Options, log logrus.FieldLogger) []keepalive.Backend {
	return nil
}

func IdleTime() (time.Duration, error) {
	return 0, ErrIdleUnsupported
}

func ScreenLocked() (bool, error) {
	return false, ErrLockUnsupported
}
