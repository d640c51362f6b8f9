package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	app := fiber.New()
	app.Use(New(Config{ApiKey: "secret", Skip: []string{"/metrics"}}))
	app.Get("/*", func(c *fiber.Ctx) error { return c.SendString("ok") })

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"No key", "/inventory/reconcile", nil, fiber.StatusUnauthorized},
		{"Wrong key", "/inventory/reconcile", map[string]string{HeaderName: "nope"}, fiber.StatusUnauthorized},
		{"Header key", "/inventory/reconcile", map[string]string{HeaderName: "secret"}, fiber.StatusOK},
		{"Bearer key", "/inventory/reconcile", map[string]string{"Authorization": "Bearer secret"}, fiber.StatusOK},
		{"Skipped path", "/metrics", nil, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestNew_Disabled(t *testing.T) {
	app := fiber.New()
	app.Use(New(Config{}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
