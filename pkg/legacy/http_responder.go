package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"candidate-router/internal/pkg/logger"
)

// HTTPResponder forwards messages to the legacy chat endpoint:
// POST {url} {"candidate_id": ..., "message": ...}
type HTTPResponder struct {
	url    string
	client *http.Client
	logger logger.ILogger
}

func NewHTTPResponder(url string, timeout time.Duration, logger logger.ILogger) *HTTPResponder {
	return &HTTPResponder{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type respondRequest struct {
	CandidateId string `json:"candidate_id"`
	Message     string `json:"message"`
}

type respondResponse struct {
	Reply      string   `json:"reply"`
	Confidence *float64 `json:"confidence"`
	Handled    *bool    `json:"handled"`
}

func (r *HTTPResponder) Respond(ctx context.Context, candidateId, message string) (Reply, error) {
	body, err := json.Marshal(respondRequest{CandidateId: candidateId, Message: message})
	if err != nil {
		return Reply{}, fmt.Errorf("encode legacy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("build legacy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := r.client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("legacy request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return Reply{}, fmt.Errorf("legacy status %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out respondResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Reply{}, fmt.Errorf("decode legacy response: %w", err)
	}
	if strings.TrimSpace(out.Reply) == "" {
		return Reply{}, errors.New("legacy response has no reply")
	}

	reply := Reply{Content: out.Reply, Confidence: 0.5, Handled: true}
	if out.Confidence != nil {
		reply.Confidence = clamp(*out.Confidence)
	}
	if out.Handled != nil {
		reply.Handled = *out.Handled
	}

	r.logger.Debug("LEGACY", "Legacy responder replied", map[string]interface{}{
		"candidate_id": candidateId,
		"handled":      reply.Handled,
		"elapsed_ms":   time.Since(start).Milliseconds(),
	})
	return reply, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
