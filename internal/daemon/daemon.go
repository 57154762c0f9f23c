package daemon

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrAlreadyRunning is returned by Acquire when a live instance holds the marker.
var ErrAlreadyRunning = stderrors.New("another instance is already running")

// ErrNotRunning is returned by Stop when no live instance holds the marker.
var ErrNotRunning = stderrors.New("no running instance")

// ErrForeignProcess is returned by Stop when the marker names a live process
// that is not this program, typically a reused PID after a crash.
var ErrForeignProcess = stderrors.New("marker names a different program")

// processExecutable returns the executable path of pid, or its name when the
// path cannot be read.
var processExecutable = func(pid int) (string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", err
	}
	if exe, err := p.Exe(); err == nil && exe != "" {
		return exe, nil
	}
	return p.Name()
}

// selfExecutable returns the path of the running binary
var selfExecutable = os.Executable

// processExists reports whether pid names a live process.
var processExists = func(pid int) (bool, error) {
	return process.PidExists(int32(pid))
}

// terminateProcess asks pid to shut down gracefully.
var terminateProcess = func(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	return p.Terminate()
}

// Daemon guards a single-instance marker holding the PID of the running instance
type Daemon struct {
	pidFile string
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

// PIDFile returns the marker path
func (d *Daemon) PIDFile() string {
	return d.pidFile
}

func (d *Daemon) WritePID() error {
	pid := os.Getpid()
	return os.WriteFile(d.pidFile, fmt.Appendf([]byte{}, "%d", pid), 0644)
}

func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID in file: %d", pid)
	}

	return pid, nil
}

func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning reports whether the marker names a live process other than this one.
// A missing, unreadable or malformed marker counts as not running; a marker
// naming a dead process is removed.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, nil
	}

	if pid == 0 || pid == os.Getpid() {
		return false, 0, nil
	}

	alive, err := processExists(pid)
	if err != nil {
		return false, 0, errors.Wrapf(err, "look up process %d", pid)
	}

	if !alive {
		_ = d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// Acquire claims the marker for the current process. The check and the write
// happen under a file lock so two instances starting together cannot both win.
func (d *Daemon) Acquire() error {
	fileLock := flock.New(d.pidFile + ".lock")
	locked, err := fileLock.TryLock()
	if err != nil {
		return errors.Wrap(err, "acquire marker lock")
	}
	if !locked {
		return ErrAlreadyRunning
	}
	defer func(fileLock *flock.Flock) {
		_ = fileLock.Unlock()
	}(fileLock)

	running, pid, err := d.IsRunning()
	if err != nil {
		return err
	}
	if running {
		return errors.Wrapf(ErrAlreadyRunning, "PID %d", pid)
	}

	if err := d.WritePID(); err != nil {
		return errors.Wrap(err, "write PID file")
	}
	return nil
}

// Release removes the marker if it still names the current process
func (d *Daemon) Release() error {
	pid, err := d.ReadPID()
	if err == nil && pid != 0 && pid != os.Getpid() {
		return nil
	}
	return d.RemovePID()
}

// Stop asks the recorded instance to terminate and waits up to timeout for it to exit
func (d *Daemon) Stop(timeout time.Duration) (int, error) {
	running, pid, err := d.IsRunning()
	if err != nil {
		return 0, errors.Wrap(err, "error checking daemon status")
	}

	if !running {
		return 0, ErrNotRunning
	}

	same, err := isSameProgram(pid)
	if err != nil {
		return pid, errors.Wrapf(err, "identify process %d", pid)
	}
	if !same {
		_ = d.RemovePID()
		return pid, errors.Wrapf(ErrForeignProcess, "PID %d", pid)
	}

	if err := terminateProcess(pid); err != nil {
		return pid, errors.Wrapf(err, "failed to terminate process %d", pid)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		alive, err := processExists(pid)
		if err == nil && !alive {
			return pid, nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return pid, fmt.Errorf("process %d did not exit within %v", pid, timeout)
}

// isSameProgram reports whether pid runs the same executable as this process.
// A bare name is compared against the base name of our executable.
func isSameProgram(pid int) (bool, error) {
	target, err := processExecutable(pid)
	if err != nil {
		return false, err
	}

	self, err := selfExecutable()
	if err != nil {
		return false, errors.Wrap(err, "locate executable")
	}

	if !filepath.IsAbs(target) {
		return target == filepath.Base(self), nil
	}
	return resolvePath(target) == resolvePath(self), nil
}

func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
