package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	data := []byte(`{"phase":"pilot","rollout_percentage":25,"occurred_at":"` + at.Format(time.RFC3339Nano) + `"}`)

	event, err := decodeEvent("events.PHASE_ADVANCED", "PHASE_ADVANCED", data)
	require.NoError(t, err)
	assert.Equal(t, "PHASE_ADVANCED", event.EventType())
	assert.True(t, at.Equal(event.Timestamp()))
	assert.Equal(t, "pilot", event.Payload()["phase"])
	assert.NotContains(t, event.Payload(), "occurred_at")
}

func TestDecodeEventFallsBackToSubject(t *testing.T) {
	event, err := decodeEvent("events.ESCALATION_CREATED", "", []byte(`{"priority":"urgent"}`))
	require.NoError(t, err)
	assert.Equal(t, "ESCALATION_CREATED", event.EventType())

	_, err = decodeEvent("events.X", "", []byte(`not json`))
	assert.Error(t, err)
}
