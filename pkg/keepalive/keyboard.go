package keepalive

import "github.com/pkg/errors"

// Keyboard taps a harmless key each tick to reset the lock-screen timer
type Keyboard struct {
	tapper KeyTapper
}

func NewKeyboard(tapper KeyTapper) *Keyboard {
	return &Keyboard{tapper: tapper}
}

func (k *Keyboard) Name() string {
	return "keyboard"
}

func (k *Keyboard) Tick() error {
	return errors.Wrap(k.tapper.TapKeepaliveKey(), "tap keepalive key")
}

func (k *Keyboard) Close() error {
	return k.tapper.Close()
}
