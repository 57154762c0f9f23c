package keepalive

import (
	"errors"
	"fmt"
	"strings"
)

// Chain runs every member on each tick. A failing member does not keep the
// others from running.
type Chain struct {
	backends []Backend
}

func NewChain(backends ...Backend) *Chain {
	return &Chain{backends: backends}
}

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.backends))
	for _, b := range c.backends {
		names = append(names, b.Name())
	}
	return strings.Join(names, "+")
}

// Backends returns the members in tick order
func (c *Chain) Backends() []Backend {
	return c.backends
}

func (c *Chain) Tick() error {
	var errs []error
	for _, b := range c.backends {
		if err := b.Tick(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (c *Chain) Close() error {
	var errs []error
	for _, b := range c.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
		}
	}
	return errors.Join(errs...)
}
