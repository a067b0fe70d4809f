package livefacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"candidate-router/internal/pkg/logger"
	"candidate-router/pkg/intent"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// HTTPResolver fetches facts from the account service:
// GET {baseURL}/candidates/{id}/facts?intent={intent}
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
	logger  logger.ILogger
}

func NewHTTPResolver(baseURL string, timeout time.Duration, rps float64, burst int, logger logger.ILogger) *HTTPResolver {
	if burst < 1 {
		burst = 1
	}
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Fetch collapses identical in-flight requests so a burst of messages from
// one candidate costs a single upstream call.
func (r *HTTPResolver) Fetch(ctx context.Context, candidateId string, intentId intent.ID) (*Facts, error) {
	key := candidateId + "|" + string(intentId)
	v, err, shared := r.group.Do(key, func() (interface{}, error) {
		return r.fetch(ctx, candidateId, intentId)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug("LIVEFACTS", "Shared in-flight fetch", map[string]interface{}{"candidate_id": candidateId, "intent": intentId})
	}
	facts, _ := v.(*Facts)
	return facts, nil
}

func (r *HTTPResolver) fetch(ctx context.Context, candidateId string, intentId intent.ID) (*Facts, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("live facts rate limit: %w", err)
	}

	endpoint := fmt.Sprintf("%s/candidates/%s/facts?intent=%s",
		r.baseURL, url.PathEscape(candidateId), url.QueryEscape(string(intentId)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build live facts request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("live facts request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("live facts status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var facts Facts
	if err := json.NewDecoder(res.Body).Decode(&facts); err != nil {
		return nil, fmt.Errorf("decode live facts: %w", err)
	}
	if facts.FetchedAt.IsZero() {
		facts.FetchedAt = time.Now().UTC()
	}
	return &facts, nil
}

// FetchWithTimeout bounds a fetch and folds every failure into "no facts".
// The synthesizer must treat missing data as unknown, never as an error.
func FetchWithTimeout(ctx context.Context, resolver Resolver, timeout time.Duration, candidateId string, intentId intent.ID, l logger.ILogger) *Facts {
	if resolver == nil {
		return nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	facts, err := resolver.Fetch(fetchCtx, candidateId, intentId)
	if err != nil {
		l.Warn("LIVEFACTS", "Live fact fetch failed, continuing without facts", map[string]interface{}{
			"candidate_id": candidateId,
			"intent":       intentId,
			"error":        err.Error(),
			"timed_out":    fetchCtx.Err() == context.DeadlineExceeded,
		})
		return nil
	}
	return facts
}
