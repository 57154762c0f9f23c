package x11

import (
	"fmt"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"
	"github.com/pkg/errors"
)

// keysymF15 is XK_F15, a key no desktop binds by default
const keysymF15 xproto.Keysym = 0xffcc

// Injector implements keepalive.PointerDriver and keepalive.KeyTapper on top
// of the XTEST extension
type Injector struct {
	conn    *xgb.Conn
	root    xproto.Window
	width   int
	height  int
	keycode xproto.Keycode

	closeOnce sync.Once
}

// Connect opens the X display (empty means $DISPLAY) and checks for XTEST
func Connect(display string) (*Injector, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrap(err, "connect to X server")
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "XTEST extension unavailable")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	i := &Injector{
		conn:   conn,
		root:   screen.Root,
		width:  int(screen.WidthInPixels),
		height: int(screen.HeightInPixels),
	}

	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	mapping, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err == nil {
		i.keycode = findKeycode(setup.MinKeycode, int(mapping.KeysymsPerKeycode), mapping.Keysyms, keysymF15)
	}

	return i, nil
}

// findKeycode returns the first keycode producing target, or 0
func findKeycode(min xproto.Keycode, perKeycode int, keysyms []xproto.Keysym, target xproto.Keysym) xproto.Keycode {
	if perKeycode <= 0 {
		return 0
	}
	for idx, sym := range keysyms {
		if sym == target {
			return min + xproto.Keycode(idx/perKeycode)
		}
	}
	return 0
}

// Position returns the pointer location on the root window
func (i *Injector) Position() (int, int, error) {
	reply, err := xproto.QueryPointer(i.conn, i.root).Reply()
	if err != nil {
		return 0, 0, errors.Wrap(err, "query pointer")
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// ScreenSize returns the default screen size in pixels
func (i *Injector) ScreenSize() (int, int, error) {
	return i.width, i.height, nil
}

// MoveRelative sends a relative XTEST motion event
func (i *Injector) MoveRelative(dx, dy int) error {
	err := xtest.FakeInputChecked(i.conn, xproto.MotionNotify, 1, 0, xproto.WindowNone, int16(dx), int16(dy), 0).Check()
	if err != nil {
		return errors.Wrap(err, "fake motion")
	}
	return nil
}

// TapKeepaliveKey presses and releases F15
func (i *Injector) TapKeepaliveKey() error {
	if i.keycode == 0 {
		return fmt.Errorf("no keycode is mapped to F15")
	}

	for _, eventType := range []byte{xproto.KeyPress, xproto.KeyRelease} {
		err := xtest.FakeInputChecked(i.conn, eventType, byte(i.keycode), 0, xproto.WindowNone, 0, 0, 0).Check()
		if err != nil {
			return errors.Wrap(err, "fake key event")
		}
	}
	return nil
}

// IdleTime returns the time since the last user input, as reported by the
// MIT-SCREEN-SAVER extension
func (i *Injector) IdleTime() (time.Duration, error) {
	if err := screensaver.Init(i.conn); err != nil {
		return 0, errors.Wrap(err, "MIT-SCREEN-SAVER extension unavailable")
	}

	info, err := screensaver.QueryInfo(i.conn, xproto.Drawable(i.root)).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "query screen saver info")
	}
	return time.Duration(info.MsSinceUserInput) * time.Millisecond, nil
}

// Close disconnects from the X server. It is shared by the pointer and
// keyboard backends, so only the first call does anything.
func (i *Injector) Close() error {
	i.closeOnce.Do(func() {
		i.conn.Close()
	})
	return nil
}
