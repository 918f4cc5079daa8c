package auth_test

import (
	"net/http/httptest"
	"testing"

	"listing-mirror/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	app.Get("/mirror/plan", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/swagger/index.html", func(c *fiber.Ctx) error { return c.SendString("docs") })
	return app
}

func TestAuth(t *testing.T) {
	app := newApp(auth.Config{ApiKey: "secret", Skip: []string{"/swagger"}})

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"MissingKey", "/mirror/plan", "", fiber.StatusUnauthorized},
		{"WrongKey", "/mirror/plan", "nope", fiber.StatusUnauthorized},
		{"HeaderKey", "/mirror/plan", "secret", fiber.StatusOK},
		{"QueryKey", "/mirror/plan?api_key=secret", "", fiber.StatusOK},
		{"SkippedPrefix", "/swagger/index.html", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set(auth.HeaderName, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuth_Disabled(t *testing.T) {
	app := newApp(auth.Config{})

	resp, err := app.Test(httptest.NewRequest("GET", "/mirror/plan", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
