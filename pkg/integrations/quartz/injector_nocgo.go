//go:build darwin && !cgo

package quartz

type Injector struct{}

func Connect() (*Injector, error) {
	return nil, ErrUnavailable
}

func (i *Injector) Position() (int, int, error)   { return 0, 0, ErrUnavailable }
func (i *Injector) ScreenSize() (int, int, error) { return 0, 0, ErrUnavailable }
func (i *Injector) MoveRelative(dx, dy int) error { return ErrUnavailable }
func (i *Injector) TapKeepaliveKey() error        { return ErrUnavailable }
func (i *Injector) Close() error                  { return nil }
