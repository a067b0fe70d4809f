package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"candidate-router/internal/dto"
	"candidate-router/internal/pkg/serverutils"
	"candidate-router/pkg/rollout"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRolloutService struct {
	err          error
	lastReason   string
	lastNote     string
	lastAutoFlag *bool
}

func (s *stubRolloutService) GetStatus(ctx context.Context) (*rollout.MigrationStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &rollout.MigrationStatus{}, nil
}

func (s *stubRolloutService) ForceAdvance(ctx context.Context, req *dto.ForceAdvanceRequest) (*rollout.TransitionResult, error) {
	s.lastNote = req.Note
	return &rollout.TransitionResult{}, s.err
}

func (s *stubRolloutService) ForceRollback(ctx context.Context, req *dto.ForceRollbackRequest) (*rollout.TransitionResult, error) {
	s.lastReason = req.Reason
	return &rollout.TransitionResult{}, s.err
}

func (s *stubRolloutService) UpdateConfig(ctx context.Context, req *dto.UpdateRolloutConfigRequest) (*rollout.MigrationStatus, error) {
	s.lastAutoFlag = req.AutoAdvance
	return &rollout.MigrationStatus{}, s.err
}

func (s *stubRolloutService) CheckNow(ctx context.Context) (*rollout.CheckResult, error) {
	return &rollout.CheckResult{}, s.err
}

func rolloutApp(svc *stubRolloutService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	passthrough := func(ctx *fiber.Ctx) error { return ctx.Next() }
	NewRolloutController(svc).RegisterRoutes(app.Group("/api"), passthrough)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, serverutils.BaseResponse[json.RawMessage]) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out serverutils.BaseResponse[json.RawMessage]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRolloutControllerRoutes(t *testing.T) {
	svc := &stubRolloutService{}
	app := rolloutApp(svc)

	code, res := send(t, app, "GET", "/api/admin/rollout/status", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.True(t, res.Success)

	code, _ = send(t, app, "POST", "/api/admin/rollout/advance", "")
	assert.Equal(t, fiber.StatusOK, code)

	code, _ = send(t, app, "POST", "/api/admin/rollout/advance", `{"note":"metrics look good"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "metrics look good", svc.lastNote)

	code, _ = send(t, app, "POST", "/api/admin/rollout/rollback", `{"reason":"spike in errors"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "spike in errors", svc.lastReason)

	code, _ = send(t, app, "PATCH", "/api/admin/rollout/config", `{"auto_advance":false}`)
	assert.Equal(t, fiber.StatusOK, code)
	require.NotNil(t, svc.lastAutoFlag)
	assert.False(t, *svc.lastAutoFlag)

	code, _ = send(t, app, "POST", "/api/admin/rollout/check", "")
	assert.Equal(t, fiber.StatusOK, code)
}

func TestRolloutControllerRejectsRollbackWithoutReason(t *testing.T) {
	svc := &stubRolloutService{}
	code, res := send(t, rolloutApp(svc), "POST", "/api/admin/rollout/rollback", `{}`)

	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.False(t, res.Success)
	assert.Empty(t, svc.lastReason)
}

func TestRolloutControllerMapsDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{rollout.ErrNoOpenPhase, fiber.StatusNotFound},
		{fmt.Errorf("advance: %w", rollout.ErrConcurrentTransition), fiber.StatusConflict},
		{rollout.ErrInvalidConfig, fiber.StatusBadRequest},
		{assert.AnError, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		code, res := send(t, rolloutApp(&stubRolloutService{err: tt.err}), "GET", "/api/admin/rollout/status", "")
		assert.Equal(t, tt.want, code, tt.err.Error())
		assert.False(t, res.Success)
	}
}
