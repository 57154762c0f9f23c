package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/awake/awake/internal/config"
	"github.com/awake/awake/internal/daemon"
	"github.com/awake/awake/internal/database"
	"github.com/awake/awake/internal/keeper"
	"github.com/awake/awake/internal/logging"
	"github.com/awake/awake/pkg/keepalive"
	"github.com/awake/awake/pkg/platform"

	perrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RunCmd runs the keepalive loop until interrupted
type RunCmd struct {
	Config *config.Config
	Out    io.Writer
	ErrOut io.Writer

	// Detach starts the background copy; defaults to daemon.Detach
	Detach func(args []string) (int, error)
	// NewBackend selects the keepalive backend; defaults to platform.New
	NewBackend func(opts platform.Options, log logrus.FieldLogger) (keepalive.Backend, error)
	// Signals replaces SIGINT/SIGTERM delivery when set
	Signals <-chan os.Signal
}

func (cmd *RunCmd) detach(args []string) (int, error) {
	if cmd.Detach != nil {
		return cmd.Detach(args)
	}
	return daemon.Detach(args)
}

func (cmd *RunCmd) newBackend(opts platform.Options, log logrus.FieldLogger) (keepalive.Backend, error) {
	if cmd.NewBackend != nil {
		return cmd.NewBackend(opts, log)
	}
	return platform.New(opts, log)
}

// signals subscribes to shutdown signals. It must run before any slow setup
// so a signal never hits the default disposition while the marker exists.
func (cmd *RunCmd) signals() (<-chan os.Signal, func()) {
	if cmd.Signals != nil {
		return cmd.Signals, func() {}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan, func() { signal.Stop(sigChan) }
}

// Run runs the command logic
func (cmd *RunCmd) Run(ctx context.Context) error {
	cfg := cmd.Config

	logOut := cmd.ErrOut
	if daemon.IsChild() {
		logFile, err := logging.OpenFile(cfg.Daemon.LogFile)
		if err != nil {
			return err
		}
		defer logFile.Close()
		logOut = logFile
	}
	log := logging.New(logOut, cfg.Log.Debug)

	dm := daemon.New(cfg.Daemon.PIDFile)

	// Checked before detaching so the message reaches the terminal
	running, pid, err := dm.IsRunning()
	if err != nil {
		return perrors.Wrap(err, "check for a running instance")
	}
	if running {
		fmt.Fprintf(cmd.Out, "%s is already running (PID: %d). Exiting.\n", appName, pid)
		return nil
	}

	if cfg.Daemon.Detach && !daemon.IsChild() {
		childPID, err := cmd.detach(os.Args[1:])
		switch {
		case err == nil:
			fmt.Fprintf(cmd.Out, "Started background process (pid=%d).\n", childPID)
			fmt.Fprintf(cmd.Out, "Logs: %s\n", cfg.Daemon.LogFile)
			return nil
		case errors.Is(err, daemon.ErrDetachUnsupported):
			log.WithError(err).Warn("Cannot detach, running in the foreground")
		default:
			return err
		}
	}

	// Subscribed before the marker is written; a signal arriving during setup
	// waits in the channel and ends the loop right away
	sigs, stopSignals := cmd.signals()
	defer stopSignals()

	if err := dm.Acquire(); err != nil {
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			fmt.Fprintf(cmd.Out, "%s is already running. Exiting.\n", appName)
			return nil
		}
		return perrors.Wrap(err, "acquire single-instance marker")
	}
	defer func() {
		if err := dm.Release(); err != nil {
			log.WithError(err).Warn("Failed to remove PID file")
		}
	}()

	backend, err := cmd.newBackend(platform.Options{
		PreventLock:    cfg.Keeper.PreventLock,
		RestorePointer: cfg.Keeper.RestorePointer,
	}, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	var opts []keeper.Option
	if cfg.JournalEnabled() {
		db, err := database.Create(cfg.Journal.Path)
		if err != nil {
			return perrors.Wrap(err, "open journal")
		}
		defer db.Close()
		opts = append(opts, keeper.WithRecorder(database.NewRepository(db)))
	}

	svc := keeper.NewService(cfg.Keeper, backend, log, opts...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go watchSignals(ctx, sigs, svc, cancel, log)

	log.WithField("pid", os.Getpid()).Debug("awake started")
	log.Debug(cfg.String())

	if err := svc.Run(ctx); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"ticks":    svc.Ticks(),
		"failures": svc.Failures(),
	}).Debug("awake stopped")
	return nil
}

// stopper is the part of the keeper a signal needs
type stopper interface {
	Stop()
}

// watchSignals stops svc on the first signal. It only flips the stop flag and
// cancels ctx; cleanup happens after Run returns.
func watchSignals(ctx context.Context, sigs <-chan os.Signal, svc stopper, cancel context.CancelFunc, log logrus.FieldLogger) {
	select {
	case sig := <-sigs:
		log.WithField("signal", sig.String()).Debug("Received shutdown signal")
		svc.Stop()
		cancel()
	case <-ctx.Done():
	}
}
