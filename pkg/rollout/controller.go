package rollout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"
	"candidate-router/internal/repository/memory"
	"candidate-router/internal/repository/specification"
	"candidate-router/internal/repository/unitofwork"
	"candidate-router/pkg/database"
	"candidate-router/pkg/events"

	"github.com/google/uuid"
)

// Controller owns the migration phase log. Every transition goes through
// transition() while holding mu; the store's single open-slot index catches
// writers in other processes.
type Controller struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.RolloutCacheRepository
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time

	mu sync.Mutex

	// updateMu serializes UpdateRolloutConfig's read-modify-write of settings.
	updateMu   sync.Mutex
	settingsMu sync.RWMutex
	settings   Settings
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithPercentageCache serves CurrentPercentage from cache between transitions.
func WithPercentageCache(cache *memory.RolloutCacheRepository) Option {
	return func(c *Controller) { c.cache = cache }
}

func NewController(uowFactory unitofwork.RepositoryFactory, settings Settings, publisher events.Publisher, logger logger.ILogger, opts ...Option) *Controller {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	c := &Controller{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
		settings:   settings,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TransitionResult describes one close-and-open step of the log.
type TransitionResult struct {
	Closed  *entity.MigrationPhase `json:"closed,omitempty"`
	Opened  *entity.MigrationPhase `json:"opened"`
	Metrics *entity.PhaseMetrics   `json:"metrics,omitempty"`
}

// CheckResult is the outcome of one auto-advance evaluation.
type CheckResult struct {
	Advanced bool                   `json:"advanced"`
	Reason   string                 `json:"reason"`
	Phase    string                 `json:"phase,omitempty"`
	Metrics  *entity.PhaseMetrics   `json:"metrics,omitempty"`
	Opened   *entity.MigrationPhase `json:"opened,omitempty"`
}

func (c *Controller) Settings() Settings {
	c.settingsMu.RLock()
	defer c.settingsMu.RUnlock()
	return c.settings
}

func (c *Controller) CurrentPhase(ctx context.Context) (*entity.MigrationPhase, error) {
	phase, err := c.uowFactory.NewUnitOfWork(ctx).MigrationPhaseRepository().FindOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("load open phase: %w", err)
	}
	return phase, nil
}

// CurrentPercentage is the share of traffic routed to the new system. No open
// phase means 0.
func (c *Controller) CurrentPercentage(ctx context.Context) (int, error) {
	if c.cache != nil {
		if pct, ok := c.cache.GetPercentage(); ok {
			return pct, nil
		}
	}
	phase, err := c.CurrentPhase(ctx)
	if err != nil {
		return 0, err
	}
	pct := 0
	if phase != nil {
		pct = phase.RolloutPercentage
	}
	if c.cache != nil {
		c.cache.SavePercentage(pct)
	}
	return pct, nil
}

// StartPhase opens a phase when none is open.
func (c *Controller) StartPhase(ctx context.Context, name string, pct int) (*entity.MigrationPhase, error) {
	if _, ok := Lookup(name); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, name)
	}
	if pct < 0 || pct > 100 {
		return nil, fmt.Errorf("%w: percentage %d out of [0,100]", ErrInvalidConfig, pct)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.transition(ctx, nil, true, entity.PhaseClosure{}, PhaseSpec{Name: name, Percentage: pct})
	if err != nil {
		return nil, err
	}
	c.publish(ctx, events.NewPhaseStarted(res.Opened))
	c.logger.Info("ROLLOUT", "Phase started", map[string]interface{}{
		"phase":      name,
		"percentage": pct,
	})
	return res.Opened, nil
}

// EnsureStarted opens the first ladder phase when the log has no open phase.
// It reports whether a phase was opened.
func (c *Controller) EnsureStarted(ctx context.Context) (*entity.MigrationPhase, bool, error) {
	current, err := c.CurrentPhase(ctx)
	if err != nil {
		return nil, false, err
	}
	if current != nil {
		return current, false, nil
	}
	first := Ladder[0]
	phase, err := c.StartPhase(ctx, first.Name, first.Percentage)
	if err != nil {
		return nil, false, err
	}
	return phase, true, nil
}

// transition closes expected (when not nil) and opens next in one
// transaction. With mustBeEmpty the log must have no open phase. Callers hold
// mu.
func (c *Controller) transition(ctx context.Context, expected *entity.MigrationPhase, mustBeEmpty bool, closure entity.PhaseClosure, next PhaseSpec) (*TransitionResult, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	repo := uow.MigrationPhaseRepository()

	fail := func(err error) (*TransitionResult, error) {
		_ = uow.Rollback()
		return nil, err
	}

	current, err := repo.FindOpen(ctx)
	if err != nil {
		return fail(fmt.Errorf("load open phase: %w", err))
	}
	if mustBeEmpty && current != nil {
		return fail(fmt.Errorf("%w: %s", ErrPhaseAlreadyOpen, current.Name))
	}
	if !mustBeEmpty && !samePhase(expected, current) {
		return fail(ErrConcurrentTransition)
	}

	result := &TransitionResult{Metrics: closure.Metrics}
	if current != nil {
		closed, err := repo.Close(ctx, current.Id, closure)
		if err != nil {
			return fail(fmt.Errorf("close phase %s: %w", current.Name, err))
		}
		if !closed {
			return fail(ErrConcurrentTransition)
		}
		result.Closed = current
		result.Closed.EndedAt = &closure.EndedAt
		result.Closed.AutoAdvanced = closure.AutoAdvanced
		result.Closed.Notes = closure.Notes
		result.Closed.Metrics = closure.Metrics
	}

	opened := &entity.MigrationPhase{
		Name:              next.Name,
		RolloutPercentage: next.Percentage,
		StartedAt:         c.now(),
	}
	if err := repo.Insert(ctx, opened); err != nil {
		if database.IsDuplicateKey(err) {
			return fail(ErrConcurrentTransition)
		}
		return fail(fmt.Errorf("insert phase %s: %w", next.Name, err))
	}

	if err := uow.Commit(); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrConcurrentTransition
		}
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	if c.cache != nil {
		c.cache.Invalidate()
	}
	result.Opened = opened
	return result, nil
}

func samePhase(a, b *entity.MigrationPhase) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Id == b.Id
}

// ComputeMetrics aggregates the samples recorded during a phase.
func (c *Controller) ComputeMetrics(ctx context.Context, phaseId uuid.UUID) (*entity.PhaseMetrics, error) {
	phase, err := c.uowFactory.NewUnitOfWork(ctx).MigrationPhaseRepository().FindOne(ctx, specification.ByID{ID: phaseId})
	if err != nil {
		return nil, fmt.Errorf("load phase: %w", err)
	}
	if phase == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPhase, phaseId)
	}
	return c.metricsFor(ctx, phase)
}

func (c *Controller) metricsFor(ctx context.Context, phase *entity.MigrationPhase) (*entity.PhaseMetrics, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	aggs, err := uow.PerformanceSampleRepository().AggregateBySystem(ctx, phase.StartedAt, phase.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("aggregate samples: %w", err)
	}
	escalations, err := uow.EscalationRepository().Count(ctx, specification.EscalationsCreatedBetween(phase.StartedAt, phase.EndedAt))
	if err != nil {
		return nil, fmt.Errorf("count escalations: %w", err)
	}
	return buildMetrics(aggs, escalations, c.Settings().Policy, c.now()), nil
}

// CheckAutoAdvance evaluates the open phase and advances it when its metrics
// clear the thresholds. A metrics failure skips the tick.
func (c *Controller) CheckAutoAdvance(ctx context.Context) (*CheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	settings := c.Settings()
	if !settings.AutoAdvance {
		return &CheckResult{Reason: "auto-advance disabled"}, nil
	}

	current, err := c.CurrentPhase(ctx)
	if err != nil {
		c.logger.Warn("ROLLOUT", "Auto-advance skipped: phase unavailable", map[string]interface{}{"error": err.Error()})
		return &CheckResult{Reason: "phase unavailable"}, err
	}
	if current == nil {
		return &CheckResult{Reason: "no open phase"}, nil
	}
	res := &CheckResult{Phase: current.Name}
	if current.Name == PhaseRollback {
		res.Reason = "rollback phase requires a manual advance"
		return res, nil
	}
	if IsTerminal(current.Name) {
		res.Reason = "terminal phase"
		return res, nil
	}
	next, ok := Next(current.Name)
	if !ok {
		res.Reason = "phase not on the ladder"
		return res, nil
	}

	metrics, err := c.metricsFor(ctx, current)
	if err != nil {
		c.logger.Warn("ROLLOUT", "Auto-advance skipped: metrics unavailable", map[string]interface{}{
			"phase": current.Name,
			"error": err.Error(),
		})
		res.Reason = "metrics unavailable"
		return res, err
	}
	res.Metrics = metrics

	t := settings.Thresholds
	if metrics.New.Samples < t.MinSamples {
		res.Reason = fmt.Sprintf("insufficient samples: %d of %d", metrics.New.Samples, t.MinSamples)
		return res, nil
	}
	if !t.Met(metrics.SuccessRate, metrics.ErrorRate, metrics.ConfidenceImprovement) {
		res.Reason = fmt.Sprintf("thresholds not met: success %.3f, error %.3f, confidence %+.3f",
			metrics.SuccessRate, metrics.ErrorRate, metrics.ConfidenceImprovement)
		return res, nil
	}

	tr, err := c.transition(ctx, current, false, entity.PhaseClosure{
		EndedAt:      c.now(),
		Metrics:      metrics,
		AutoAdvanced: true,
		Notes: fmt.Sprintf("auto-advanced: success %.3f, error %.3f, confidence %+.3f over %d samples",
			metrics.SuccessRate, metrics.ErrorRate, metrics.ConfidenceImprovement, metrics.SampleCount),
	}, next)
	if err != nil {
		c.logger.Error("ROLLOUT", "Auto-advance transition failed", map[string]interface{}{
			"phase": current.Name,
			"error": err.Error(),
		})
		res.Reason = "transition failed"
		return res, err
	}

	res.Advanced = true
	res.Reason = "thresholds met"
	res.Opened = tr.Opened
	c.publish(ctx, events.NewPhaseAdvanced(tr.Closed, tr.Opened, true))
	c.logger.Info("ROLLOUT", "Phase auto-advanced", map[string]interface{}{
		"from":       current.Name,
		"to":         tr.Opened.Name,
		"percentage": tr.Opened.RolloutPercentage,
	})
	return res, nil
}

// ForceAdvance moves to the next phase without checking thresholds. From no
// phase or rollback it opens the first ladder phase; at the terminal phase it
// is a no-op that returns the current phase.
func (c *Controller) ForceAdvance(ctx context.Context, note string) (*TransitionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.CurrentPhase(ctx)
	if err != nil {
		return nil, err
	}
	name := ""
	if current != nil {
		name = current.Name
	}
	next, ok := Next(name)
	if !ok {
		return &TransitionResult{Opened: current}, nil
	}

	closure := entity.PhaseClosure{EndedAt: c.now(), Notes: forcedNote("forced advance", note)}
	if current != nil {
		closure.Metrics = c.bestEffortMetrics(ctx, current)
	}

	tr, err := c.transition(ctx, current, false, closure, next)
	if err != nil {
		return nil, err
	}
	c.publish(ctx, events.NewPhaseAdvanced(tr.Closed, tr.Opened, false))
	c.logger.Info("ROLLOUT", "Phase force-advanced", map[string]interface{}{
		"from":       name,
		"to":         tr.Opened.Name,
		"percentage": tr.Opened.RolloutPercentage,
		"note":       note,
	})
	return tr, nil
}

// ForceRollback closes whatever phase is open with reason and opens the
// rollback phase at 0%. It retries once when the log moved underneath it.
func (c *Controller) ForceRollback(ctx context.Context, reason string) (*TransitionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		current, err := c.CurrentPhase(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		closure := entity.PhaseClosure{EndedAt: c.now(), Notes: reason}
		if current != nil {
			closure.Metrics = c.bestEffortMetrics(ctx, current)
		}

		tr, err := c.transition(ctx, current, false, closure, rollbackSpec)
		if err != nil {
			lastErr = err
			continue
		}

		c.publish(ctx, events.NewPhaseRolledBack(tr.Closed, tr.Opened, reason))
		fields := map[string]interface{}{"reason": reason}
		if tr.Closed != nil {
			fields["from"] = tr.Closed.Name
		}
		c.logger.Warn("ROLLOUT", "Rolled back to legacy", fields)
		return tr, nil
	}

	c.logger.Error("ROLLOUT", "Rollback failed", map[string]interface{}{
		"reason": reason,
		"error":  lastErr.Error(),
	})
	return nil, fmt.Errorf("rollback: %w", lastErr)
}

func (c *Controller) bestEffortMetrics(ctx context.Context, phase *entity.MigrationPhase) *entity.PhaseMetrics {
	metrics, err := c.metricsFor(ctx, phase)
	if err != nil {
		c.logger.Warn("ROLLOUT", "Closing phase without metrics", map[string]interface{}{
			"phase": phase.Name,
			"error": err.Error(),
		})
		return nil
	}
	return metrics
}

func (c *Controller) publish(ctx context.Context, event events.Event) {
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("ROLLOUT", "Failed to publish rollout event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func forcedNote(prefix, note string) string {
	if note == "" {
		return prefix
	}
	return prefix + ": " + note
}
