package daemon

import (
	stderrors "errors"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// ChildEnv marks a process that was already detached
const ChildEnv = "AWAKE_DAEMON"

// ErrDetachUnsupported is returned by Detach on platforms without a session model.
var ErrDetachUnsupported = stderrors.New("detaching is not supported on this platform")

// IsChild reports whether this process is the detached instance
func IsChild() bool {
	return os.Getenv(ChildEnv) == "1"
}

// ChildArgs returns args without any -d/--daemon occurrence.
// Clusters of boolean shorthands such as -vd keep their other letters.
func ChildArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}

		switch {
		case arg == "-d", arg == "--daemon", strings.HasPrefix(arg, "--daemon="):
			continue
		case isBoolCluster(arg):
			rest := strings.ReplaceAll(arg[1:], "d", "")
			if rest != "" {
				out = append(out, "-"+rest)
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}

// isBoolCluster matches combined shorthands made only of boolean flags.
func isBoolCluster(arg string) bool {
	if len(arg) < 3 || arg[0] != '-' || arg[1] == '-' {
		return false
	}
	for _, c := range arg[1:] {
		if !strings.ContainsRune("dpv", c) {
			return false
		}
	}
	return strings.ContainsRune(arg, 'd')
}

// Detach starts a copy of this executable in a new session with its standard
// streams on the null device and returns the child's PID.
func Detach(args []string) (int, error) {
	if !detachSupported {
		return 0, ErrDetachUnsupported
	}

	exe, err := os.Executable()
	if err != nil {
		return 0, errors.Wrap(err, "locate executable")
	}

	cmd := exec.Command(exe, ChildArgs(args)...)
	cmd.Env = append(os.Environ(), ChildEnv+"=1")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachAttr()

	if err := cmd.Start(); err != nil {
		return 0, errors.Wrap(err, "failed to start daemon process")
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, errors.Wrap(err, "release daemon process")
	}
	return pid, nil
}
