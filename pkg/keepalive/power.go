package keepalive

import "github.com/pkg/errors"

// PowerHint renews the OS sleep and display-off inhibition each tick.
// It is a hint only: lock-screen policies may still apply.
type PowerHint struct {
	hinter Hinter
}

func NewPowerHint(hinter Hinter) *PowerHint {
	return &PowerHint{hinter: hinter}
}

func (p *PowerHint) Name() string {
	return "power"
}

func (p *PowerHint) Tick() error {
	return errors.Wrap(p.hinter.Hint(), "power state hint")
}

func (p *PowerHint) Close() error {
	return p.hinter.Close()
}
