//go:build !unix

package daemon

import "syscall"

const detachSupported = false

func detachAttr() *syscall.SysProcAttr {
	return nil
}
