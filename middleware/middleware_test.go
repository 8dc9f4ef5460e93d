package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(ServiceTokenMiddleware("s3cret", nil), ParticipantContextMiddleware())
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"participant": ParticipantID(c), "admin": HasRole(c, RoleAdmin)})
	})
	app.Get("/admin", RequireRole(RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func send(t *testing.T, app *fiber.App, path string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestServiceToken(t *testing.T) {
	app := newApp()
	tests := []struct {
		name string
		auth string
		want int
	}{
		{"bearer", "Bearer s3cret", http.StatusOK},
		{"raw", "s3cret", http.StatusOK},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{HeaderParticipantID: "p1"}
			if tt.auth != "" {
				headers[fiber.HeaderAuthorization] = tt.auth
			}
			assert.Equal(t, tt.want, send(t, app, "/me", headers))
		})
	}
}

func TestEmptyExpectedTokenRejectsEverything(t *testing.T) {
	app := fiber.New()
	app.Use(ServiceTokenMiddleware("", nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, send(t, app, "/", map[string]string{fiber.HeaderAuthorization: "Bearer "}))
}

func TestParticipantAndRoles(t *testing.T) {
	app := newApp()
	auth := "Bearer s3cret"

	assert.Equal(t, http.StatusUnauthorized, send(t, app, "/me", map[string]string{fiber.HeaderAuthorization: auth}))
	assert.Equal(t, http.StatusForbidden, send(t, app, "/admin", map[string]string{
		fiber.HeaderAuthorization: auth, HeaderParticipantID: "p1", HeaderUserRoles: "player",
	}))
	assert.Equal(t, http.StatusNoContent, send(t, app, "/admin", map[string]string{
		fiber.HeaderAuthorization: auth, HeaderParticipantID: "p1", HeaderUserRoles: "player, ADMIN",
	}))
}

func TestParseRoles(t *testing.T) {
	assert.Equal(t, []string{"admin", "mod"}, ParseRoles(" Admin ,, mod "))
	assert.Nil(t, ParseRoles(""))
}
