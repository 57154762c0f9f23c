//go:build darwin

package platform

import (
	"time"

	"github.com/awake/awake/pkg/integrations/quartz"
	"github.com/awake/awake/pkg/keepalive"
	"github.com/sirupsen/logrus"
)

func newBackends(opts Options, log logrus.FieldLogger) []keepalive.Backend {
	injector, err := quartz.Connect()
	if err != nil {
		log.WithError(err).Warn("Input injection unavailable")
		return nil
	}

	backends := []keepalive.Backend{keepalive.NewPointer(injector, opts.RestorePointer, log)}
	if opts.PreventLock {
		backends = append(backends, keepalive.NewKeyboard(injector))
	}
	return backends
}

func IdleTime() (time.Duration, error) {
	return 0, ErrIdleUnsupported
}

func ScreenLocked() (bool, error) {
	return false, ErrLockUnsupported
}
