package keepalive

import (
	"errors"

	perrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Pointer nudges the pointer by one unit each tick
type Pointer struct {
	driver  PointerDriver
	restore bool
	log     logrus.FieldLogger
}

// NewPointer creates a pointer backend. With restore set the pointer is moved
// back after every nudge so it never drifts.
func NewPointer(driver PointerDriver, restore bool, log logrus.FieldLogger) *Pointer {
	return &Pointer{driver: driver, restore: restore, log: log}
}

func (p *Pointer) Name() string {
	return "pointer"
}

// Tick nudges the pointer. A fail-safe condition is swallowed.
func (p *Pointer) Tick() error {
	err := p.nudge()
	if errors.Is(err, ErrFailSafe) {
		p.log.Debug("Pointer in fail-safe position, skipping nudge")
		return nil
	}
	return err
}

func (p *Pointer) nudge() error {
	x, y, err := p.driver.Position()
	if err != nil {
		return perrors.Wrap(err, "query pointer position")
	}

	width, height, err := p.driver.ScreenSize()
	if err != nil {
		return perrors.Wrap(err, "query screen size")
	}

	if inCorner(x, y, width, height) {
		return ErrFailSafe
	}

	dx := 1
	if x >= width-1 {
		dx = -1
	}

	if err := p.driver.MoveRelative(dx, 0); err != nil {
		return perrors.Wrap(err, "move pointer")
	}

	if p.restore {
		if err := p.driver.MoveRelative(-dx, 0); err != nil {
			return perrors.Wrap(err, "restore pointer")
		}
	}
	return nil
}

func (p *Pointer) Close() error {
	return p.driver.Close()
}

// inCorner reports whether (x, y) is one of the four screen corners
func inCorner(x, y, width, height int) bool {
	left := x <= 0
	right := x >= width-1
	top := y <= 0
	bottom := y >= height-1
	return (left || right) && (top || bottom)
}
