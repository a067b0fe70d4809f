package rollout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"candidate-router/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Checker is what the scheduler ticks.
type Checker interface {
	CheckAutoAdvance(ctx context.Context) (*CheckResult, error)
}

// Scheduler runs the auto-advance check on a cron spec. Ticks never overlap:
// cron.SkipIfStillRunning drops a tick while the previous one runs and the
// TryLock guard covers manual Tick calls racing the cron.
type Scheduler struct {
	cron    *cron.Cron
	checker Checker
	lease   Lease
	logger  logger.ILogger
	timeout time.Duration

	running sync.Mutex
}

func NewScheduler(checker Checker, spec string, lease Lease, log logger.ILogger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl)),
		checker: checker,
		lease:   lease,
		logger:  log,
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return nil, fmt.Errorf("invalid rollout schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("ROLLOUT", "Auto-advance scheduler started", nil)
}

// Stop waits for a running tick to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Tick runs one check unless another is in flight or another replica holds
// the lease.
func (s *Scheduler) Tick() {
	s.tick()
}

// tick reports whether the check ran.
func (s *Scheduler) tick() bool {
	if !s.running.TryLock() {
		s.logger.Debug("ROLLOUT", "Auto-advance tick skipped: previous run active", nil)
		return false
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if s.lease != nil {
		ok, err := s.lease.Acquire(ctx)
		if err != nil {
			s.logger.Warn("ROLLOUT", "Auto-advance tick skipped: lease unavailable", map[string]interface{}{"error": err.Error()})
			return false
		}
		if !ok {
			s.logger.Debug("ROLLOUT", "Auto-advance tick skipped: lease held elsewhere", nil)
			return false
		}
		defer func() {
			if err := s.lease.Release(context.Background()); err != nil {
				s.logger.Warn("ROLLOUT", "Failed to release scheduler lease", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	res, err := s.checker.CheckAutoAdvance(ctx)
	if err != nil {
		s.logger.Warn("ROLLOUT", "Auto-advance check failed", map[string]interface{}{"error": err.Error()})
		return true
	}
	s.logger.Info("ROLLOUT", "Auto-advance check finished", map[string]interface{}{
		"phase":    res.Phase,
		"advanced": res.Advanced,
		"reason":   res.Reason,
	})
	return true
}

// cronLogger adapts ILogger to cron.Logger.
type cronLogger struct {
	log logger.ILogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("CRON", msg, kvToMap(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	details := kvToMap(keysAndValues)
	details["error"] = err.Error()
	l.log.Error("CRON", msg, details)
}

func kvToMap(kv []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		out[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return out
}
