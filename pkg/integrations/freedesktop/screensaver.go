// Package freedesktop talks to the session screen saver over D-Bus.
package freedesktop

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

// Service describes one screen saver implementation on the session bus
type Service struct {
	Dest      string
	Path      dbus.ObjectPath
	Interface string
}

// Services lists the screen savers tried in order
var Services = []Service{
	{
		Dest:      "org.freedesktop.ScreenSaver",
		Path:      "/org/freedesktop/ScreenSaver",
		Interface: "org.freedesktop.ScreenSaver",
	},
	{
		Dest:      "org.gnome.ScreenSaver",
		Path:      "/org/gnome/ScreenSaver",
		Interface: "org.gnome.ScreenSaver",
	},
}

// ScreenSaver implements keepalive.Hinter through SimulateUserActivity
type ScreenSaver struct {
	conn    *dbus.Conn
	service Service
	obj     dbus.BusObject
}

// Connect opens a private session bus connection and picks the first
// screen saver service that has an owner
func Connect() (*ScreenSaver, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, errors.Wrap(err, "connect to session bus")
	}

	for _, svc := range Services {
		var owned bool
		err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, svc.Dest).Store(&owned)
		if err == nil && owned {
			return &ScreenSaver{
				conn:    conn,
				service: svc,
				obj:     conn.Object(svc.Dest, svc.Path),
			}, nil
		}
	}

	conn.Close()
	return nil, fmt.Errorf("no screen saver service on the session bus")
}

// Service returns the screen saver in use
func (s *ScreenSaver) Service() Service {
	return s.service
}

// Hint resets the screen saver idle timer
func (s *ScreenSaver) Hint() error {
	call := s.obj.Call(s.service.Interface+".SimulateUserActivity", 0)
	if call.Err != nil {
		return errors.Wrapf(call.Err, "%s.SimulateUserActivity", s.service.Interface)
	}
	return nil
}

// Locked reports whether the screen saver is active
func (s *ScreenSaver) Locked() (bool, error) {
	var active bool
	if err := s.obj.Call(s.service.Interface+".GetActive", 0).Store(&active); err != nil {
		return false, errors.Wrapf(err, "%s.GetActive", s.service.Interface)
	}
	return active, nil
}

func (s *ScreenSaver) Close() error {
	return s.conn.Close()
}
