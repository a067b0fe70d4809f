package rollout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingChecker struct {
	calls   atomic.Int32
	block   chan struct{}
	started chan struct{}
	err     error
}

func (c *countingChecker) CheckAutoAdvance(ctx context.Context) (*CheckResult, error) {
	c.calls.Add(1)
	if c.started != nil {
		close(c.started)
	}
	if c.block != nil {
		<-c.block
	}
	if c.err != nil {
		return nil, c.err
	}
	return &CheckResult{Phase: PhaseInitial, Reason: "no-op"}, nil
}

type fakeLease struct {
	mu       sync.Mutex
	held     bool
	err      error
	released int
}

func (l *fakeLease) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	return !l.held, nil
}

func (l *fakeLease) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released++
	return nil
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler(&countingChecker{}, "every now and then", nil, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestSchedulerTick(t *testing.T) {
	checker := &countingChecker{}
	lease := &fakeLease{}
	s, err := NewScheduler(checker, "@every 1h", lease, logger.NewNopLogger())
	require.NoError(t, err)

	assert.True(t, s.tick())
	assert.Equal(t, int32(1), checker.calls.Load())
	assert.Equal(t, 1, lease.released)

	checker.err = errors.New("db down")
	assert.True(t, s.tick())
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestSchedulerTickSkipsWithoutLease(t *testing.T) {
	checker := &countingChecker{}
	s, err := NewScheduler(checker, "@every 1h", &fakeLease{held: true}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.False(t, s.tick())

	s, err = NewScheduler(checker, "@every 1h", &fakeLease{err: errors.New("redis down")}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.False(t, s.tick())

	assert.Zero(t, checker.calls.Load())
}

func TestSchedulerTicksDoNotOverlap(t *testing.T) {
	checker := &countingChecker{block: make(chan struct{}), started: make(chan struct{})}
	s, err := NewScheduler(checker, "@every 1h", nil, logger.NewNopLogger())
	require.NoError(t, err)

	done := make(chan bool)
	go func() { done <- s.tick() }()
	<-checker.started

	assert.False(t, s.tick())

	close(checker.block)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), checker.calls.Load())
}

func TestSchedulerStartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	checker := &countingChecker{}
	s, err := NewScheduler(checker, "@every 1h", nil, logger.NewNopLogger())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestSchedulerTickAdvancesOnceAutoAdvanceIsEnabledAtRuntime(t *testing.T) {
	settings := DefaultSettings()
	settings.AutoAdvance = false
	h := newHarness(t, settings)
	ctx := context.Background()

	_, err := h.ctrl.StartPhase(ctx, PhaseInitial, 10)
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	h.record(t, entity.SystemNew, 200, 194, 2, 0.88)
	h.record(t, entity.SystemLegacy, 100, 90, 1, 0.80)
	h.clock.Advance(time.Hour)

	s, err := NewScheduler(h.ctrl, "@hourly", nil, logger.NewNopLogger())
	require.NoError(t, err)

	require.True(t, s.tick())
	phase, err := h.ctrl.CurrentPhase(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseInitial, phase.Name)

	on := true
	_, err = h.ctrl.UpdateRolloutConfig(ctx, ConfigUpdate{AutoAdvance: &on})
	require.NoError(t, err)

	require.True(t, s.tick())
	phase, err = h.ctrl.CurrentPhase(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhasePilot, phase.Name)
	assert.Equal(t, 25, phase.RolloutPercentage)
}
