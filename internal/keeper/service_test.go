package keeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/awake/awake/internal/config"
	"github.com/awake/awake/internal/models"
	"github.com/awake/awake/pkg/keepalive"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBackend runs step for every tick, if set
type scriptedBackend struct {
	mu    sync.Mutex
	times []time.Time
	step  func(n int) error
}

func (b *scriptedBackend) Tick() error {
	b.mu.Lock()
	b.times = append(b.times, time.Now())
	n := len(b.times)
	b.mu.Unlock()

	if b.step != nil {
		return b.step(n)
	}
	return nil
}

func (b *scriptedBackend) Name() string { return "scripted" }
func (b *scriptedBackend) Close() error { return nil }

func (b *scriptedBackend) tickTimes() []time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]time.Time(nil), b.times...)
}

type memoryRecorder struct {
	mu     sync.Mutex
	events []*models.TickEvent
	err    error
}

func (r *memoryRecorder) Record(event *models.TickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func keeperConfig(interval, slice time.Duration) config.KeeperConfig {
	return config.KeeperConfig{Interval: interval, Slice: slice, RestorePointer: true}
}

func newTestService(cfg config.KeeperConfig, backend keepalive.Backend, opts ...Option) *Service {
	logger, _ := logtest.NewNullLogger()
	return NewService(cfg, backend, logger, opts...)
}

func runAsync(t *testing.T, svc *Service, ctx context.Context) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error, within time.Duration) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(within):
		t.Fatalf("Run did not return within %v", within)
	}
}

func TestIntervalAccuracy(t *testing.T) {
	const interval = 100 * time.Millisecond
	const slice = 20 * time.Millisecond

	var svc *Service
	backend := &scriptedBackend{step: func(n int) error {
		if n == 5 {
			svc.Stop()
		}
		return nil
	}}
	svc = newTestService(keeperConfig(interval, slice), backend)

	require.NoError(t, svc.Run(context.Background()))

	times := backend.tickTimes()
	require.Len(t, times, 5)
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		assert.GreaterOrEqual(t, gap, interval, "gap %d", i)
		assert.Less(t, gap, interval+slice+100*time.Millisecond, "gap %d", i)
	}
}

func TestStopLatencyAndNoFinalTick(t *testing.T) {
	const slice = 20 * time.Millisecond
	backend := &scriptedBackend{}
	svc := newTestService(keeperConfig(time.Hour, slice), backend)

	done := runAsync(t, svc, context.Background())
	require.Eventually(t, func() bool { return svc.Ticks() == 1 }, time.Second, 5*time.Millisecond)

	stopAt := time.Now()
	svc.Stop()
	waitDone(t, done, time.Second)

	assert.Less(t, time.Since(stopAt), slice+150*time.Millisecond)
	assert.Equal(t, int64(1), svc.Ticks(), "no tick after stop")
	assert.False(t, svc.IsRunning())
}

func TestStopBeforeRun(t *testing.T) {
	backend := &scriptedBackend{}
	svc := newTestService(keeperConfig(time.Second, 10*time.Millisecond), backend)

	svc.Stop()
	svc.Stop()
	require.NoError(t, svc.Run(context.Background()))
	assert.Zero(t, svc.Ticks())
}

func TestContextCancelEndsLoop(t *testing.T) {
	backend := &scriptedBackend{}
	svc := newTestService(keeperConfig(time.Hour, 10*time.Millisecond), backend)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(t, svc, ctx)
	require.Eventually(t, func() bool { return svc.Ticks() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	waitDone(t, done, time.Second)
	assert.Equal(t, int64(1), svc.Ticks())
}

func TestFailuresAndPanicsDoNotStopLoop(t *testing.T) {
	var svc *Service
	backend := &scriptedBackend{step: func(n int) error {
		switch n {
		case 1:
			return errors.New("display went away")
		case 2:
			panic("driver bug")
		case 4:
			svc.Stop()
		}
		return nil
	}}
	rec := &memoryRecorder{}
	svc = newTestService(keeperConfig(10*time.Millisecond, 5*time.Millisecond), backend, WithRecorder(rec))

	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, int64(4), svc.Ticks())
	assert.Equal(t, int64(2), svc.Failures())

	require.Len(t, rec.events, 4)
	assert.False(t, rec.events[0].Success)
	assert.Equal(t, "display went away", rec.events[0].ErrorMsg)
	assert.False(t, rec.events[1].Success)
	assert.Contains(t, rec.events[1].ErrorMsg, "driver bug")
	assert.True(t, rec.events[2].Success)
	assert.Equal(t, "scripted", rec.events[2].Backend)
	assert.NotZero(t, rec.events[2].PID)
}

func TestRecorderErrorIsIgnored(t *testing.T) {
	var svc *Service
	backend := &scriptedBackend{step: func(n int) error {
		if n == 2 {
			svc.Stop()
		}
		return nil
	}}
	rec := &memoryRecorder{err: errors.New("disk full")}
	svc = newTestService(keeperConfig(5*time.Millisecond, time.Millisecond), backend, WithRecorder(rec))

	require.NoError(t, svc.Run(context.Background()))
	assert.Equal(t, int64(2), svc.Ticks())
	assert.Zero(t, svc.Failures())
}

// namedBackend fails with err on every tick
type namedBackend struct {
	name  string
	err   error
	ticks int
}

func (b *namedBackend) Tick() error  { b.ticks++; return b.err }
func (b *namedBackend) Name() string { return b.name }
func (b *namedBackend) Close() error { return nil }

func TestChainMembersJournaledSeparately(t *testing.T) {
	power := &namedBackend{name: "power", err: errors.New("no session bus")}
	pointer := &namedBackend{name: "pointer"}

	var svc *Service
	stopper := &scriptedBackend{step: func(n int) error {
		if n == 2 {
			svc.Stop()
		}
		return nil
	}}
	chain := keepalive.NewChain(power, pointer, stopper)
	rec := &memoryRecorder{}
	svc = newTestService(keeperConfig(5*time.Millisecond, time.Millisecond), chain, WithRecorder(rec))

	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, int64(2), svc.Ticks())
	assert.Equal(t, int64(2), svc.Failures())
	assert.Equal(t, 2, pointer.ticks, "a failing member must not keep the others from running")

	require.Len(t, rec.events, 6)
	for i := 0; i < len(rec.events); i += 3 {
		assert.Equal(t, "power", rec.events[i].Backend)
		assert.False(t, rec.events[i].Success)
		assert.Equal(t, "no session bus", rec.events[i].ErrorMsg)

		assert.Equal(t, "pointer", rec.events[i+1].Backend)
		assert.True(t, rec.events[i+1].Success)
		assert.Empty(t, rec.events[i+1].ErrorMsg)

		assert.Equal(t, "scripted", rec.events[i+2].Backend)
		assert.True(t, rec.events[i+2].Success)
	}
}

func TestChainMemberPanicIsContained(t *testing.T) {
	var svc *Service
	pointer := &namedBackend{name: "pointer"}
	chain := keepalive.NewChain(&scriptedBackend{step: func(n int) error {
		svc.Stop()
		panic("driver bug")
	}}, pointer)
	rec := &memoryRecorder{}
	svc = newTestService(keeperConfig(time.Hour, time.Millisecond), chain, WithRecorder(rec))

	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, int64(1), svc.Failures())
	assert.Equal(t, 1, pointer.ticks)
	require.Len(t, rec.events, 2)
	assert.Contains(t, rec.events[0].ErrorMsg, "driver bug")
	assert.True(t, rec.events[1].Success)
}

// cornerDriver keeps the pointer parked in the top-left corner
type cornerDriver struct {
	moves int
}

func (d *cornerDriver) Position() (int, int, error)   { return 0, 0, nil }
func (d *cornerDriver) ScreenSize() (int, int, error) { return 1920, 1080, nil }
func (d *cornerDriver) MoveRelative(dx, dy int) error { d.moves++; return nil }
func (d *cornerDriver) Close() error                  { return nil }

func TestFailSafeKeepsSchedule(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	driver := &cornerDriver{}
	pointer := keepalive.NewPointer(driver, true, logger)

	svc := newTestService(keeperConfig(20*time.Millisecond, 5*time.Millisecond), pointer)
	done := runAsync(t, svc, context.Background())

	require.Eventually(t, func() bool { return svc.Ticks() >= 3 }, 2*time.Second, 5*time.Millisecond)
	svc.Stop()
	waitDone(t, done, time.Second)

	assert.Zero(t, svc.Failures())
	assert.Zero(t, driver.moves)
}

func TestRunTwice(t *testing.T) {
	backend := &scriptedBackend{}
	svc := newTestService(keeperConfig(time.Hour, 10*time.Millisecond), backend)

	done := runAsync(t, svc, context.Background())
	require.Eventually(t, svc.IsRunning, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, svc.Run(context.Background()), ErrAlreadyRunning)

	svc.Stop()
	waitDone(t, done, time.Second)
}

func TestIntervalMeasuredFromTickStart(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	var sleeps []time.Duration
	sleep := func(d time.Duration) {
		sleeps = append(sleeps, d)
		clock = clock.Add(d)
	}

	var svc *Service
	backend := &scriptedBackend{step: func(n int) error {
		// The tick itself takes 250ms of clock time.
		clock = clock.Add(250 * time.Millisecond)
		if n == 2 {
			svc.Stop()
		}
		return nil
	}}
	svc = newTestService(keeperConfig(time.Second, 200*time.Millisecond), backend, WithClock(now, sleep))

	require.NoError(t, svc.Run(context.Background()))

	want := []time.Duration{
		200 * time.Millisecond,
		200 * time.Millisecond,
		200 * time.Millisecond,
		150 * time.Millisecond,
	}
	assert.Equal(t, want, sleeps)
}
