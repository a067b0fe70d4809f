package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"candidate-router/internal/dto"
	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"
	"candidate-router/internal/repository/unitofwork"
	"candidate-router/pkg/database/databasetest"
	"candidate-router/pkg/escalation"
	"candidate-router/pkg/intent"
	"candidate-router/pkg/legacy"
	"candidate-router/pkg/livefacts"
	"candidate-router/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRouter struct {
	system entity.System
}

func (r fixedRouter) Route(ctx context.Context, candidateId string) (entity.System, error) {
	return r.system, nil
}

type stubLegacy struct {
	reply legacy.Reply
	err   error
}

func (s stubLegacy) Respond(ctx context.Context, candidateId, message string) (legacy.Reply, error) {
	return s.reply, s.err
}

type stubResolver struct {
	calls atomic.Int32
	facts *livefacts.Facts
}

func (s *stubResolver) Fetch(ctx context.Context, candidateId string, intentId intent.ID) (*livefacts.Facts, error) {
	s.calls.Add(1)
	return s.facts, nil
}

type capturingPublisher struct {
	mu       sync.Mutex
	messages []dto.SampleMessage
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	var msg dto.SampleMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *capturingPublisher) all() []dto.SampleMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dto.SampleMessage(nil), p.messages...)
}

type messageFixture struct {
	factory   unitofwork.RepositoryFactory
	gate      *escalation.Gate
	resolver  *stubResolver
	publisher *capturingPublisher
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	factory := unitofwork.NewRepositoryFactory(databasetest.NewSQLite(t))
	table, err := intent.DefaultTable()
	require.NoError(t, err)
	return &messageFixture{
		factory:   factory,
		gate:      escalation.NewGate(factory, table, nil, logger.NewNopLogger()),
		resolver:  &stubResolver{facts: &livefacts.Facts{Earnings: &livefacts.Earnings{Available: 120.50, Paid: 300}}},
		publisher: &capturingPublisher{},
	}
}

func (f *messageFixture) service(t *testing.T, system entity.System, legacyResponder legacy.Responder, shadow bool) IMessageService {
	t.Helper()
	table, err := intent.DefaultTable()
	require.NoError(t, err)
	return NewMessageService(
		fixedRouter{system: system},
		intent.NewClassifier(table, intent.DefaultScoringConfig()),
		f.resolver,
		response.NewDefaultSynthesizer(logger.NewNopLogger()),
		f.gate,
		legacyResponder,
		f.publisher,
		MessageServiceConfig{FactsTimeout: time.Second, ShadowCompare: shadow},
		logger.NewNopLogger(),
	)
}

func request(messageId, message string, status entity.CandidateStatus) *dto.HandleMessageRequest {
	return &dto.HandleMessageRequest{
		MessageId: messageId,
		Message:   message,
		Candidate: dto.CandidateDTO{Id: "cand-1", DisplayName: "Sam", Status: string(status)},
	}
}

func (f *messageFixture) openEscalations(t *testing.T) []*entity.Escalation {
	t.Helper()
	list, err := f.gate.ListOpen(context.Background(), "")
	require.NoError(t, err)
	return list
}

func TestHandleMessageNewSystemUsesLiveFacts(t *testing.T) {
	f := newMessageFixture(t)
	svc := f.service(t, entity.SystemNew, legacy.HandoffResponder{}, false)

	res, err := svc.HandleMessage(context.Background(), request("m-1", "when will I get paid?", entity.CandidateStatusActive))
	require.NoError(t, err)

	assert.Equal(t, "new", res.System)
	assert.Equal(t, string(intent.PaymentInquiry), res.Intent)
	assert.Equal(t, string(response.SourceRealData), res.Source)
	assert.True(t, res.UsesRealData)
	assert.Contains(t, res.Reply, "$120.50")
	assert.Nil(t, res.Escalation)
	assert.Equal(t, int32(1), f.resolver.calls.Load())

	samples := f.publisher.all()
	require.Len(t, samples, 1)
	require.NotNil(t, samples[0].Performance)
	assert.Equal(t, "new", samples[0].Performance.System)
	assert.True(t, samples[0].Performance.Success)
	assert.False(t, samples[0].Performance.Errored)
	assert.Equal(t, "m-1", samples[0].Performance.MessageId)
}

func TestHandleMessageNewSystemEscalatesComplaint(t *testing.T) {
	f := newMessageFixture(t)
	svc := f.service(t, entity.SystemNew, legacy.HandoffResponder{}, false)

	res, err := svc.HandleMessage(context.Background(), request("m-2", "this is unfair, I want to complain", entity.CandidateStatusActive))
	require.NoError(t, err)

	require.NotNil(t, res.Escalation)
	assert.True(t, res.Escalation.Created)
	assert.Len(t, f.openEscalations(t), 1)

	again, err := svc.HandleMessage(context.Background(), request("m-2", "this is unfair, I want to complain", entity.CandidateStatusActive))
	require.NoError(t, err)
	require.NotNil(t, again.Escalation)
	assert.False(t, again.Escalation.Created)
	assert.Equal(t, res.Escalation.Id, again.Escalation.Id)
	assert.Len(t, f.openEscalations(t), 1)
}

func TestHandleMessagePendingCandidateSkipsFactFetch(t *testing.T) {
	f := newMessageFixture(t)
	svc := f.service(t, entity.SystemNew, legacy.HandoffResponder{}, false)

	res, err := svc.HandleMessage(context.Background(), request("m-3", "when will I get paid?", entity.CandidateStatusPending))
	require.NoError(t, err)

	assert.Equal(t, string(response.SourcePendingTemplate), res.Source)
	assert.NotContains(t, res.Reply, "$")
	assert.Zero(t, f.resolver.calls.Load())
}

func TestHandleMessageLegacySystem(t *testing.T) {
	f := newMessageFixture(t)
	svc := f.service(t, entity.SystemLegacy, stubLegacy{reply: legacy.Reply{Content: "Payday is Friday.", Confidence: 0.7, Handled: true}}, false)

	res, err := svc.HandleMessage(context.Background(), request("m-4", "when will I get paid?", entity.CandidateStatusActive))
	require.NoError(t, err)

	assert.Equal(t, "legacy", res.System)
	assert.Equal(t, "legacy", res.Source)
	assert.Equal(t, "Payday is Friday.", res.Reply)
	assert.Zero(t, f.resolver.calls.Load())

	samples := f.publisher.all()
	require.Len(t, samples, 1)
	assert.Equal(t, "legacy", samples[0].Performance.System)
	assert.True(t, samples[0].Performance.Success)
	assert.InDelta(t, 0.7, samples[0].Performance.Confidence, 1e-9)
}

func TestHandleMessageLegacyFailureStillReplies(t *testing.T) {
	f := newMessageFixture(t)
	svc := f.service(t, entity.SystemLegacy, stubLegacy{err: errors.New("connection refused")}, false)

	res, err := svc.HandleMessage(context.Background(), request("m-5", "hello", entity.CandidateStatusActive))
	require.NoError(t, err)
	assert.Equal(t, legacyFailureText, res.Reply)

	samples := f.publisher.all()
	require.Len(t, samples, 1)
	assert.True(t, samples[0].Performance.Errored)
	assert.False(t, samples[0].Performance.Success)
}

func TestHandleMessageShadowCompareHasNoSideEffectsOnShadowSystem(t *testing.T) {
	f := newMessageFixture(t)
	svc := f.service(t, entity.SystemLegacy, stubLegacy{reply: legacy.Reply{Content: "We hear you.", Confidence: 0.4}}, true)

	res, err := svc.HandleMessage(context.Background(), request("m-6", "this is unfair, I want to complain", entity.CandidateStatusActive))
	require.NoError(t, err)

	assert.Equal(t, "legacy", res.System)
	assert.Equal(t, "We hear you.", res.Reply)
	assert.Nil(t, res.Escalation)
	assert.Empty(t, f.openEscalations(t))

	samples := f.publisher.all()
	require.Len(t, samples, 2)
	require.NotNil(t, samples[0].Performance)
	assert.Equal(t, "legacy", samples[0].Performance.System)
	require.NotNil(t, samples[1].Comparison)
	cmp := samples[1].Comparison
	assert.Equal(t, "legacy", cmp.RoutedTo)
	assert.False(t, cmp.LegacySuccess)
	assert.InDelta(t, 0.4, cmp.LegacyConfidence, 1e-9)
	assert.Greater(t, cmp.NewConfidence, 0.0)
}

func TestHandleMessageShadowCompareRoutedNew(t *testing.T) {
	f := newMessageFixture(t)
	svc := f.service(t, entity.SystemNew, stubLegacy{reply: legacy.Reply{Content: "ok", Confidence: 0.6, Handled: true}}, true)

	res, err := svc.HandleMessage(context.Background(), request("m-7", "this is unfair, I want to complain", entity.CandidateStatusActive))
	require.NoError(t, err)

	require.NotNil(t, res.Escalation)
	assert.Len(t, f.openEscalations(t), 1)

	samples := f.publisher.all()
	require.Len(t, samples, 2)
	assert.Equal(t, "new", samples[1].Comparison.RoutedTo)
	assert.True(t, samples[1].Comparison.LegacySuccess)
}
