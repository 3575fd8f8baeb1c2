package handler_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"essay-hub/internal/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		checks         map[string]handler.HealthCheck
		expectedCode   int
		expectedStatus string
		expectedChecks map[string]string
	}{
		{
			name:           "all healthy",
			checks:         map[string]handler.HealthCheck{"db": ok, "redis": ok, "mongo": ok},
			expectedCode:   fiber.StatusOK,
			expectedStatus: "ok",
			expectedChecks: map[string]string{"db": "ok", "redis": "ok", "mongo": "ok"},
		},
		{
			name:           "redis down",
			checks:         map[string]handler.HealthCheck{"db": ok, "redis": down},
			expectedCode:   fiber.StatusServiceUnavailable,
			expectedStatus: "degraded",
			expectedChecks: map[string]string{"db": "ok", "redis": "error"},
		},
		{
			name:           "no checks",
			checks:         map[string]handler.HealthCheck{},
			expectedCode:   fiber.StatusOK,
			expectedStatus: "ok",
			expectedChecks: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/health", handler.NewHealthHandler(tt.checks).Health)

			resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, resp.StatusCode)

			var body handler.HealthResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.expectedStatus, body.Status)
			assert.Equal(t, tt.expectedChecks, body.Checks)
		})
	}
}
