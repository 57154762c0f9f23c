package keepalive

import "errors"

// ErrFailSafe reports that the pointer rests where a synthetic move is
// refused, such as a screen corner. It is expected and never fatal.
var ErrFailSafe = errors.New("pointer fail-safe triggered")

// Backend is the interface that all keepalive implementations must satisfy
type Backend interface {
	// Tick performs one keepalive action
	Tick() error

	// Name identifies the backend in logs and the journal
	Name() string

	// Close releases any resources used by the backend
	Close() error
}

// PointerDriver moves the platform pointer
type PointerDriver interface {
	// Position returns the pointer location in screen coordinates
	Position() (x, y int, err error)

	// ScreenSize returns the size of the screen holding the pointer
	ScreenSize() (width, height int, err error)

	// MoveRelative shifts the pointer by the given offset
	MoveRelative(dx, dy int) error

	Close() error
}

// KeyTapper injects one keypress of a key no application binds
type KeyTapper interface {
	TapKeepaliveKey() error
	Close() error
}

// Hinter asks the OS power manager to postpone sleep and display-off
type Hinter interface {
	Hint() error
	Close() error
}
