package legacy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"candidate-router/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPResponder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req respondRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "c-1", req.CandidateId)
		assert.Equal(t, "when do I get paid", req.Message)
		_, _ = w.Write([]byte(`{"reply":"Payday is Friday.","confidence":1.4}`))
	}))
	defer srv.Close()

	r := NewHTTPResponder(srv.URL, time.Second, logger.NewNopLogger())
	reply, err := r.Respond(context.Background(), "c-1", "when do I get paid")

	require.NoError(t, err)
	assert.Equal(t, "Payday is Friday.", reply.Content)
	assert.Equal(t, 1.0, reply.Confidence)
	assert.True(t, reply.Handled)
}

func TestHTTPResponderHandoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"Passing you to the team.","handled":false}`))
	}))
	defer srv.Close()

	reply, err := NewHTTPResponder(srv.URL, time.Second, logger.NewNopLogger()).Respond(context.Background(), "c-1", "hello")

	require.NoError(t, err)
	assert.False(t, reply.Handled)
	assert.Equal(t, 0.5, reply.Confidence)
}

func TestHTTPResponderErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "down", http.StatusServiceUnavailable) }},
		{"body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`not json`)) }},
		{"empty reply", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"reply":"  "}`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := NewHTTPResponder(srv.URL, time.Second, logger.NewNopLogger()).Respond(context.Background(), "c-1", "hi")
			assert.Error(t, err)
		})
	}
}

func TestHTTPResponderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewHTTPResponder(srv.URL, 50*time.Millisecond, logger.NewNopLogger()).Respond(context.Background(), "c-1", "hi")
	assert.Error(t, err)
}

func TestHandoffResponder(t *testing.T) {
	reply, err := HandoffResponder{}.Respond(context.Background(), "c-1", "hi")
	require.NoError(t, err)
	assert.False(t, reply.Handled)
	assert.NotEmpty(t, reply.Content)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = HandoffResponder{}.Respond(ctx, "c-1", "hi")
	assert.Error(t, err)
}
