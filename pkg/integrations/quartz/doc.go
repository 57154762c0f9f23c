// Package quartz drives the macOS pointer and keyboard through robotgo.
// Without cgo the injector is unavailable and Connect returns ErrUnavailable.
package quartz

import "errors"

// ErrUnavailable is returned when the binary was built without cgo.
var ErrUnavailable = errors.New("quartz input requires cgo")
