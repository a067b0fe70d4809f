package escalation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"
	"candidate-router/internal/repository/specification"
	"candidate-router/internal/repository/unitofwork"
	"candidate-router/pkg/database"
	"candidate-router/pkg/events"
	"candidate-router/pkg/intent"
	"candidate-router/pkg/response"

	"golang.org/x/sync/singleflight"
)

var (
	ErrEscalationNotFound = errors.New("escalation not found")
	ErrEscalationNotOpen  = errors.New("escalation is not open")
)

const (
	defaultDepartment = "support"
	legalDepartment   = "legal"
	legalTrigger      = "legal"

	maxListedOpen = 200
)

// Gate turns "needs a human" signals into escalation records, at most one
// open record per (candidate, message).
type Gate struct {
	uowFactory unitofwork.RepositoryFactory
	table      *intent.Table
	publisher  events.Publisher
	logger     logger.ILogger
	now        func() time.Time

	inflight singleflight.Group
}

type Option func(*Gate)

func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func NewGate(uowFactory unitofwork.RepositoryFactory, table *intent.Table, publisher events.Publisher, logger logger.ILogger, opts ...Option) *Gate {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	g := &Gate{
		uowFactory: uowFactory,
		table:      table,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type outcome struct {
	escalation *entity.Escalation
	created    bool
}

// MaybeEscalate returns the open escalation for the message, creating it when
// the classification or the response asks for a human. It returns nil when
// neither does. created is false when an open escalation already existed.
// Concurrent calls for the same message share one store round trip and
// observe the same result.
func (g *Gate) MaybeEscalate(ctx context.Context, cls intent.Result, resp response.Result, candidate entity.CandidateContext, messageId string) (*entity.Escalation, bool, error) {
	if !cls.RequiresEscalation && !resp.RequiresAdminAttention {
		return nil, false, nil
	}

	key := inflightKey(candidate.Id, messageId)
	v, err, _ := g.inflight.Do(key, func() (interface{}, error) {
		esc, created, err := g.escalate(ctx, cls, resp, candidate, messageId)
		return outcome{escalation: esc, created: created}, err
	})
	if err != nil {
		return nil, false, err
	}
	out := v.(outcome)
	return out.escalation, out.created, nil
}

// inflightKey length-prefixes the candidate id so ids containing the
// separator cannot collide.
func inflightKey(candidateId, messageId string) string {
	return strconv.Itoa(len(candidateId)) + ":" + candidateId + ":" + messageId
}

func (g *Gate) escalate(ctx context.Context, cls intent.Result, resp response.Result, candidate entity.CandidateContext, messageId string) (*entity.Escalation, bool, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("begin escalation: %w", err)
	}
	repo := uow.EscalationRepository()

	existing, err := repo.FindOne(ctx,
		specification.EscalationByMessage{CandidateID: candidate.Id, MessageID: messageId},
		specification.OpenEscalations{},
	)
	if err != nil {
		_ = uow.Rollback()
		return nil, false, fmt.Errorf("find open escalation: %w", err)
	}
	if existing != nil {
		_ = uow.Rollback()
		return existing, false, nil
	}

	esc := g.build(cls, resp, candidate, messageId)
	if err := repo.Create(ctx, esc); err != nil {
		_ = uow.Rollback()
		if database.IsDuplicateKey(err) {
			// another process won the insert
			return g.findOpen(ctx, candidate.Id, messageId)
		}
		return nil, false, fmt.Errorf("create escalation: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit escalation: %w", err)
	}

	g.logger.Info("ESCALATION", "Escalation created", map[string]interface{}{
		"escalation_id": esc.Id.String(),
		"candidate_id":  esc.CandidateId,
		"message_id":    esc.TriggeringMessageId,
		"priority":      esc.Priority,
		"department":    esc.Department,
	})
	if err := g.publisher.Publish(ctx, events.NewEscalationCreated(esc)); err != nil {
		g.logger.Warn("ESCALATION", "Failed to publish escalation event", map[string]interface{}{
			"escalation_id": esc.Id.String(),
			"error":         err.Error(),
		})
	}
	return esc, true, nil
}

func (g *Gate) findOpen(ctx context.Context, candidateId, messageId string) (*entity.Escalation, bool, error) {
	uow := g.uowFactory.NewUnitOfWork(ctx)
	winner, err := uow.EscalationRepository().FindOne(ctx,
		specification.EscalationByMessage{CandidateID: candidateId, MessageID: messageId},
		specification.OpenEscalations{},
	)
	if err != nil {
		return nil, false, fmt.Errorf("re-read open escalation: %w", err)
	}
	if winner == nil {
		return nil, false, fmt.Errorf("escalation for %s/%s conflicted but no open row found", candidateId, messageId)
	}
	return winner, false, nil
}

func (g *Gate) build(cls intent.Result, resp response.Result, candidate entity.CandidateContext, messageId string) *entity.Escalation {
	triggers := make([]string, 0, len(cls.Triggers))
	for _, t := range cls.Triggers {
		triggers = append(triggers, t.Category)
	}

	return &entity.Escalation{
		CandidateId:         candidate.Id,
		TriggeringMessageId: messageId,
		Priority:            PriorityFor(cls.EscalationUrgency),
		Department:          g.departmentFor(cls),
		Status:              entity.EscalationStatusOpen,
		Reason:              reasonFor(cls, resp),
		Intent:              string(cls.PrimaryIntent),
		Context: map[string]interface{}{
			"urgency":                  string(cls.EscalationUrgency),
			"escalation_score":         cls.EscalationScore,
			"triggers":                 triggers,
			"classifier_confidence":    cls.Confidence,
			"response_source":          string(resp.Source),
			"uses_real_data":           resp.UsesRealData,
			"requires_admin_attention": resp.RequiresAdminAttention,
			"candidate_status":         string(candidate.Status),
		},
		CreatedAt: g.now().UTC(),
	}
}

// PriorityFor maps classifier urgency onto escalation priority.
func PriorityFor(u intent.Urgency) entity.EscalationPriority {
	switch u {
	case intent.UrgencyHigh:
		return entity.EscalationPriorityUrgent
	case intent.UrgencyMedium:
		return entity.EscalationPriorityNormal
	default:
		return entity.EscalationPriorityLow
	}
}

func (g *Gate) departmentFor(cls intent.Result) string {
	if cls.HasTrigger(legalTrigger) {
		return legalDepartment
	}
	if g.table != nil {
		if p, ok := g.table.Pattern(cls.PrimaryIntent); ok && p.Department != "" {
			return p.Department
		}
	}
	return defaultDepartment
}

func reasonFor(cls intent.Result, resp response.Result) string {
	if cls.EscalationReason != nil && *cls.EscalationReason != "" {
		return *cls.EscalationReason
	}
	return fmt.Sprintf("response needs review (source: %s, intent: %s)", resp.Source, cls.PrimaryIntent)
}

// Resolve closes an open escalation with the given resolution text.
func (g *Gate) Resolve(ctx context.Context, id string, resolution string) (*entity.Escalation, error) {
	escId, err := parseID(id)
	if err != nil {
		return nil, err
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	repo := uow.EscalationRepository()

	ok, err := repo.Resolve(ctx, escId, resolution, g.now())
	if err != nil {
		return nil, fmt.Errorf("resolve escalation: %w", err)
	}

	esc, err := repo.FindOne(ctx, specification.ByID{ID: escId})
	if err != nil {
		return nil, fmt.Errorf("load escalation: %w", err)
	}
	if esc == nil {
		return nil, ErrEscalationNotFound
	}
	if !ok {
		return esc, ErrEscalationNotOpen
	}

	g.logger.Info("ESCALATION", "Escalation resolved", map[string]interface{}{
		"escalation_id": esc.Id.String(),
		"candidate_id":  esc.CandidateId,
	})
	return esc, nil
}

// ListOpen returns the oldest open escalations, optionally for one candidate.
func (g *Gate) ListOpen(ctx context.Context, candidateId string) ([]*entity.Escalation, error) {
	specs := []specification.Specification{
		specification.OpenEscalations{},
		specification.Pagination{Limit: maxListedOpen},
	}
	if candidateId != "" {
		specs = append(specs, specification.EscalationByCandidate{CandidateID: candidateId})
	}
	uow := g.uowFactory.NewUnitOfWork(ctx)
	return uow.EscalationRepository().FindAll(ctx, specs...)
}
