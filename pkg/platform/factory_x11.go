//go:build linux || freebsd || openbsd || netbsd || dragonfly

package platform

import (
	"time"

	"github.com/awake/awake/pkg/integrations/freedesktop"
	"github.com/awake/awake/pkg/integrations/x11"
	"github.com/awake/awake/pkg/keepalive"
	"github.com/sirupsen/logrus"
)

func newBackends(opts Options, log logrus.FieldLogger) []keepalive.Backend {
	var backends []keepalive.Backend

	switch display := DetectDisplayServer(); display {
	case "x11":
		injector, err := x11.Connect("")
		if err != nil {
			log.WithError(err).Warn("X11 input injection unavailable")
			break
		}
		backends = append(backends, keepalive.NewPointer(injector, opts.RestorePointer, log))
		if opts.PreventLock {
			backends = append(backends, keepalive.NewKeyboard(injector))
		}
	case "wayland":
		log.Warn("Wayland session: synthetic input is not supported, relying on the screen saver hint")
	default:
		log.Warn("No graphical session detected")
	}

	if opts.PreventLock && len(backends) == 0 {
		log.Warn("Lock prevention needs X11 input injection and is disabled")
	}

	ss, err := freedesktop.Connect()
	if err != nil {
		log.WithError(err).Debug("Screen saver hint unavailable")
	} else {
		log.Debugf("Using screen saver hint via %s", ss.Service().Dest)
		backends = append(backends, keepalive.NewPowerHint(ss))
	}

	return backends
}

// IdleTime returns the time since the last user input
func IdleTime() (time.Duration, error) {
	if DetectDisplayServer() != "x11" {
		return 0, ErrIdleUnsupported
	}

	injector, err := x11.Connect("")
	if err != nil {
		return 0, err
	}
	defer injector.Close()

	return injector.IdleTime()
}

// ScreenLocked asks the session screen saver whether it is active
func ScreenLocked() (bool, error) {
	ss, err := freedesktop.Connect()
	if err != nil {
		return false, err
	}
	defer ss.Close()

	return ss.Locked()
}
