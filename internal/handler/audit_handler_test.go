package handler

import (
	"context"
	"testing"
	"time"

	"candidate-router/internal/pkg/logger"
	"candidate-router/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSubscriber struct {
	subject string
	durable string
	handler events.Handler
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, subject string, durableName string, handler events.Handler) error {
	f.subject, f.durable, f.handler = subject, durableName, handler
	return nil
}

func TestAuditHandlerWritesRolloutEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewAuditHandler(logger.NewWithCore(core), logger.NewNopLogger())

	sub := &fakeSubscriber{}
	require.NoError(t, h.Start(context.Background(), sub))
	assert.Equal(t, "events.>", sub.subject)
	require.NotNil(t, sub.handler)

	rolledBack := events.BaseEvent{
		Type:       events.TypePhaseRolledBack,
		Data:       map[string]interface{}{"reason": "spike in errors"},
		OccurredAt: time.Now(),
	}
	require.NoError(t, sub.handler(context.Background(), rolledBack))
	require.NoError(t, sub.handler(context.Background(), events.BaseEvent{Type: "SOMETHING_ELSE"}))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "Rollout rolled back", entries[0].Message)
	assert.Equal(t, "AUDIT", entries[0].ContextMap()["module"])
}
