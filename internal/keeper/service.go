package keeper

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/awake/awake/internal/config"
	"github.com/awake/awake/internal/models"
	"github.com/awake/awake/pkg/keepalive"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrAlreadyRunning is returned by Run when the loop is already active
var ErrAlreadyRunning = errors.New("keeper is already running")

// Recorder stores the outcome of each tick
type Recorder interface {
	Record(event *models.TickEvent) error
}

// Option configures a Service
type Option func(*Service)

// WithRecorder journals every tick to rec
func WithRecorder(rec Recorder) Option {
	return func(s *Service) {
		s.recorder = rec
	}
}

// WithClock replaces time.Now and the sleep used between stop checks
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(s *Service) {
		s.now = now
		s.sleep = sleep
	}
}

// group is a backend made of members that succeed or fail on their own
type group interface {
	Backends() []keepalive.Backend
}

type Service struct {
	config   config.KeeperConfig
	backend  keepalive.Backend
	members  []keepalive.Backend
	recorder Recorder
	log      logrus.FieldLogger

	now   func() time.Time
	sleep func(time.Duration)

	running  atomic.Bool
	stopping atomic.Bool
	ticks    atomic.Int64
	failures atomic.Int64
}

func NewService(cfg config.KeeperConfig, backend keepalive.Backend, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		config:  cfg,
		backend: backend,
		log:     log,
		now:     time.Now,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.members = []keepalive.Backend{backend}
	if g, ok := backend.(group); ok && len(g.Backends()) > 0 {
		s.members = g.Backends()
	}
	return s
}

// Run ticks the backend every interval until Stop is called or ctx is done.
// Tick failures never end the loop.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	s.log.WithFields(logrus.Fields{
		"backend":  s.backend.Name(),
		"interval": s.config.Interval,
	}).Debug("awake running")

	for !s.stopped(ctx) {
		start := s.now()
		s.tickOnce()
		s.wait(ctx, start.Add(s.config.Interval))
	}

	s.log.WithField("ticks", s.ticks.Load()).Debug("awake stopped")
	return nil
}

// Stop requests the loop to end. It is safe to call from a signal handler
// goroutine and more than once.
func (s *Service) Stop() {
	s.stopping.Store(true)
}

func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// Ticks returns the number of ticks performed so far
func (s *Service) Ticks() int64 {
	return s.ticks.Load()
}

// Failures returns the number of ticks in which at least one member failed
func (s *Service) Failures() int64 {
	return s.failures.Load()
}

func (s *Service) stopped(ctx context.Context) bool {
	return s.stopping.Load() || ctx.Err() != nil
}

// wait sleeps until deadline in slices, returning early once a stop is requested
func (s *Service) wait(ctx context.Context, deadline time.Time) {
	for !s.stopped(ctx) {
		remaining := deadline.Sub(s.now())
		if remaining <= 0 {
			return
		}
		if remaining > s.config.Slice {
			remaining = s.config.Slice
		}
		s.sleep(remaining)
	}
}

// tickOnce ticks every member and journals one row per member
func (s *Service) tickOnce() {
	failed := false
	for _, member := range s.members {
		start := s.now()
		err := safeTick(member)
		latency := s.now().Sub(start)

		log := s.log.WithField("backend", member.Name())
		if err != nil {
			failed = true
			log.WithError(err).Debug("Keepalive tick failed")
		} else {
			log.WithField("latency", latency).Debug("Keepalive tick")
		}

		s.record(member, start, latency, err)
	}

	s.ticks.Add(1)
	if failed {
		s.failures.Add(1)
	}
}

// safeTick runs b, converting a panic into an error
func safeTick(b keepalive.Backend) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return b.Tick()
}

func (s *Service) record(b keepalive.Backend, at time.Time, latency time.Duration, tickErr error) {
	if s.recorder == nil {
		return
	}

	event := &models.TickEvent{
		Timestamp: at,
		Backend:   b.Name(),
		Success:   tickErr == nil,
		LatencyMs: latency.Milliseconds(),
		PID:       os.Getpid(),
	}
	if tickErr != nil {
		event.ErrorMsg = tickErr.Error()
	}

	if err := s.recorder.Record(event); err != nil {
		s.log.WithError(err).Warn("Failed to journal tick")
	}
}
