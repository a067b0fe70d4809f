package service

import (
	"context"
	"encoding/json"
	"time"

	"candidate-router/internal/dto"
	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"
	"candidate-router/pkg/escalation"
	"candidate-router/pkg/intent"
	"candidate-router/pkg/legacy"
	"candidate-router/pkg/livefacts"
	"candidate-router/pkg/response"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var messageTracer = otel.Tracer("candidate-router.message")

const legacyFailureText = "Thanks for your message. A member of our team will get back to you shortly."

type IMessageService interface {
	HandleMessage(ctx context.Context, req *dto.HandleMessageRequest) (*dto.HandleMessageResponse, error)
}

// SystemRouter picks which responder handles a candidate.
type SystemRouter interface {
	Route(ctx context.Context, candidateId string) (entity.System, error)
}

type MessageServiceConfig struct {
	FactsTimeout  time.Duration
	ShadowCompare bool
}

type messageService struct {
	router      SystemRouter
	classifier  *intent.Classifier
	resolver    livefacts.Resolver
	synthesizer *response.Synthesizer
	gate        *escalation.Gate
	legacy      legacy.Responder
	samples     IPublisherService
	cfg         MessageServiceConfig
	logger      logger.ILogger
	now         func() time.Time
}

func NewMessageService(
	router SystemRouter,
	classifier *intent.Classifier,
	resolver livefacts.Resolver,
	synthesizer *response.Synthesizer,
	gate *escalation.Gate,
	legacyResponder legacy.Responder,
	samples IPublisherService,
	cfg MessageServiceConfig,
	logger logger.ILogger,
) IMessageService {
	return &messageService{
		router:      router,
		classifier:  classifier,
		resolver:    resolver,
		synthesizer: synthesizer,
		gate:        gate,
		legacy:      legacyResponder,
		samples:     samples,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// outcome is one system's answer to a message.
type outcome struct {
	reply      string
	confidence float64
	success    bool
	errored    bool
	elapsed    time.Duration

	intent     intent.ID
	response   *response.Result
	escalation *entity.Escalation
	created    bool
}

func (s *messageService) HandleMessage(ctx context.Context, req *dto.HandleMessageRequest) (*dto.HandleMessageResponse, error) {
	ctx, span := messageTracer.Start(ctx, "MessageService.HandleMessage")
	defer span.End()

	candidate := candidateFromDTO(req.Candidate)

	system, err := s.router.Route(ctx, candidate.Id)
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(
		attribute.String("candidate.id", candidate.Id),
		attribute.String("message.id", req.MessageId),
		attribute.String("router.system", string(system)),
	)

	var primary, shadow *outcome
	if s.cfg.ShadowCompare {
		primary, shadow = s.compare(ctx, system, candidate, req)
	} else if system == entity.SystemNew {
		primary = s.handleNew(ctx, candidate, req, true)
	} else {
		primary = s.handleLegacy(ctx, candidate, req)
	}

	if primary.errored {
		span.SetStatus(codes.Error, "responder failed")
	}
	span.SetAttributes(
		attribute.Bool("response.success", primary.success),
		attribute.Float64("response.confidence", primary.confidence),
	)

	s.recordPerformance(ctx, system, candidate, req.MessageId, primary)
	if shadow != nil {
		s.recordComparison(ctx, system, candidate, req.MessageId, primary, shadow)
	}

	return buildMessageResponse(req.MessageId, system, primary), nil
}

// compare evaluates both systems concurrently. The system the candidate was
// not routed to runs without side effects.
func (s *messageService) compare(ctx context.Context, system entity.System, candidate entity.CandidateContext, req *dto.HandleMessageRequest) (*outcome, *outcome) {
	var newOut, legacyOut *outcome

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		newOut = s.handleNew(egCtx, candidate, req, system == entity.SystemNew)
		return nil
	})
	eg.Go(func() error {
		legacyOut = s.handleLegacy(egCtx, candidate, req)
		return nil
	})
	_ = eg.Wait()

	if system == entity.SystemNew {
		return newOut, legacyOut
	}
	return legacyOut, newOut
}

// handleNew runs classify, fetch, synthesize and, when live, escalate.
func (s *messageService) handleNew(ctx context.Context, candidate entity.CandidateContext, req *dto.HandleMessageRequest, live bool) *outcome {
	start := time.Now()

	cls := s.classifier.Classify(req.Message, candidate)

	var facts *livefacts.Facts
	if cls.RequiresRealData && candidate.Status != entity.CandidateStatusPending {
		facts = livefacts.FetchWithTimeout(ctx, s.resolver, s.cfg.FactsTimeout, candidate.Id, cls.PrimaryIntent, s.logger)
	}

	res := s.synthesizer.Synthesize(cls, candidate, facts)

	out := &outcome{
		reply:      res.Content,
		confidence: res.Confidence,
		intent:     cls.PrimaryIntent,
		response:   &res,
		errored:    res.Source == response.SourceError,
		success:    res.Source != response.SourceError && res.Source != response.SourceFallback && !cls.Fallback,
	}

	if live {
		esc, created, err := s.gate.MaybeEscalate(ctx, cls, res, candidate, req.MessageId)
		if err != nil {
			s.logger.Error("MESSAGE", "Escalation failed", map[string]interface{}{
				"candidate_id":    candidate.Id,
				"chat_message_id": req.MessageId,
				"error":           err.Error(),
			})
			out.errored = true
			out.success = false
		}
		out.escalation, out.created = esc, created
	}

	out.elapsed = time.Since(start)
	return out
}

func (s *messageService) handleLegacy(ctx context.Context, candidate entity.CandidateContext, req *dto.HandleMessageRequest) *outcome {
	start := time.Now()
	reply, err := s.legacy.Respond(ctx, candidate.Id, req.Message)
	if err != nil {
		s.logger.Warn("MESSAGE", "Legacy responder failed", map[string]interface{}{
			"candidate_id":    candidate.Id,
			"chat_message_id": req.MessageId,
			"error":           err.Error(),
		})
		return &outcome{reply: legacyFailureText, errored: true, elapsed: time.Since(start)}
	}
	return &outcome{
		reply:      reply.Content,
		confidence: reply.Confidence,
		success:    reply.Handled,
		elapsed:    time.Since(start),
	}
}

func (s *messageService) recordPerformance(ctx context.Context, system entity.System, candidate entity.CandidateContext, messageId string, out *outcome) {
	s.publishSample(ctx, dto.SampleMessage{Performance: &dto.PerformanceSampleDTO{
		System:         string(system),
		Success:        out.success,
		Errored:        out.errored,
		Confidence:     out.confidence,
		ResponseTimeMs: out.elapsed.Milliseconds(),
		CandidateId:    candidate.Id,
		MessageId:      messageId,
		Intent:         string(out.intent),
		RecordedAt:     s.now().UTC(),
	}}, messageId)
}

func (s *messageService) recordComparison(ctx context.Context, system entity.System, candidate entity.CandidateContext, messageId string, primary, shadow *outcome) {
	newOut, legacyOut := primary, shadow
	if system == entity.SystemLegacy {
		newOut, legacyOut = shadow, primary
	}
	s.publishSample(ctx, dto.SampleMessage{Comparison: &dto.ComparisonSampleDTO{
		MessageId:        messageId,
		CandidateId:      candidate.Id,
		RoutedTo:         string(system),
		NewSuccess:       newOut.success,
		NewConfidence:    newOut.confidence,
		LegacySuccess:    legacyOut.success,
		LegacyConfidence: legacyOut.confidence,
		RecordedAt:       s.now().UTC(),
	}}, messageId)
}

// publishSample never fails the request; a lost sample only thins the metrics.
func (s *messageService) publishSample(ctx context.Context, msg dto.SampleMessage, messageId string) {
	payload, err := json.Marshal(msg)
	if err == nil {
		err = s.samples.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Warn("MESSAGE", "Failed to publish sample", map[string]interface{}{
			"chat_message_id": messageId,
			"error":           err.Error(),
		})
	}
}

func candidateFromDTO(c dto.CandidateDTO) entity.CandidateContext {
	return entity.CandidateContext{
		Id:            c.Id,
		DisplayName:   c.DisplayName,
		Status:        entity.ParseCandidateStatus(c.Status),
		CreatedAt:     c.CreatedAt,
		LastShiftAt:   c.LastShiftAt,
		LastMessageAt: c.LastMessageAt,
	}
}

func buildMessageResponse(messageId string, system entity.System, out *outcome) *dto.HandleMessageResponse {
	res := &dto.HandleMessageResponse{
		MessageId:  messageId,
		System:     string(system),
		Reply:      out.reply,
		Confidence: out.confidence,
		Intent:     string(out.intent),
	}
	if out.response != nil {
		res.Source = string(out.response.Source)
		res.UsesRealData = out.response.UsesRealData
		res.RequiresAdminAttention = out.response.RequiresAdminAttention
	} else {
		res.Source = "legacy"
	}
	if out.escalation != nil {
		res.Escalation = &dto.EscalationSummaryDTO{
			Id:         out.escalation.Id,
			Priority:   string(out.escalation.Priority),
			Department: out.escalation.Department,
			Created:    out.created,
		}
	}
	return res
}
