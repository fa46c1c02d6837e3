package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweepTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/internal/expire", SweepKeyAuth(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestSweepKeyAuth(t *testing.T) {
	t.Setenv("SPONSOR_SWEEP_API_KEY", "sweep-secret")
	app := sweepTestApp()

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{name: "valid x-api-key", header: "X-API-Key", value: "sweep-secret", wantStatus: fiber.StatusOK},
		{name: "valid bearer", header: "Authorization", value: "Bearer sweep-secret", wantStatus: fiber.StatusOK},
		{name: "wrong key", header: "X-API-Key", value: "nope", wantStatus: fiber.StatusUnauthorized},
		{name: "missing key", wantStatus: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/internal/expire", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestSweepKeyAuthUnconfigured(t *testing.T) {
	t.Setenv("SPONSOR_SWEEP_API_KEY", "")
	app := sweepTestApp()

	req := httptest.NewRequest(fiber.MethodPost, "/internal/expire", nil)
	req.Header.Set("X-API-Key", "anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
