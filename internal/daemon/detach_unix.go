//go:build unix

package daemon

import "syscall"

const detachSupported = true

func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
