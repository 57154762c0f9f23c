//go:build darwin && cgo

package quartz

import (
	"github.com/go-vgo/robotgo"
	"github.com/pkg/errors"
)

// keepaliveKey is not bound by any common application
const keepaliveKey = "f15"

// Injector implements keepalive.PointerDriver and keepalive.KeyTapper
type Injector struct{}

func Connect() (*Injector, error) {
	return &Injector{}, nil
}

func (i *Injector) Position() (int, int, error) {
	x, y := robotgo.Location()
	return x, y, nil
}

func (i *Injector) ScreenSize() (int, int, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return 0, 0, errors.New("no main display")
	}
	return w, h, nil
}

func (i *Injector) MoveRelative(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

func (i *Injector) TapKeepaliveKey() error {
	return errors.Wrap(robotgo.KeyTap(keepaliveKey), "tap "+keepaliveKey)
}

func (i *Injector) Close() error {
	return nil
}
