//go:build windows

package platform

import (
	"time"

	"github.com/awake/awake/pkg/integrations/win32"
	"github.com/awake/awake/pkg/keepalive"
	"github.com/sirupsen/logrus"
)

func newBackends(opts Options, log logrus.FieldLogger) []keepalive.Backend {
	var backends []keepalive.Backend

	state, err := win32.NewExecutionState()
	if err != nil {
		log.WithError(err).Warn("Execution state hint unavailable")
	} else {
		backends = append(backends, keepalive.NewPowerHint(state))
	}

	input, err := win32.NewInput()
	if err != nil {
		log.WithError(err).Warn("Input injection unavailable")
		return backends
	}

	backends = append(backends, keepalive.NewPointer(input, opts.RestorePointer, log))
	if opts.PreventLock {
		backends = append(backends, keepalive.NewKeyboard(input))
	}
	return backends
}

// IdleTime returns the time since the last user input
func IdleTime() (time.Duration, error) {
	return win32.IdleTime()
}

func ScreenLocked() (bool, error) {
	return false, ErrLockUnsupported
}
