package auth

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

func newTestApp(t *testing.T) (*fiber.App, *TokenManager, *Service) {
	t.Helper()

	db := setupTestDB(t)
	tokens := NewTokenManager("secret", "test", time.Hour, time.Hour)
	s := NewService(db, "admin")

	admin := seedRole(t, db, "admin", models.RoleStatusEnabled)
	auditor := seedRole(t, db, "auditor", models.RoleStatusEnabled, "expense_action_audit")
	seedUser(t, db, "boss", nil, admin)
	seedUser(t, db, "audit", nil, auditor)

	app := fiber.New()
	app.Use(Authenticate(tokens))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(Username(c))
	})
	app.Post("/audit", RequireAction(s, ResourceExpense, ActionAudit), func(c *fiber.Ctx) error {
		a, err := AccessFromContext(c, s, ResourceExpense)
		if err != nil {
			return err
		}

		return c.SendString(a.User.Username)
	})
	app.Get("/admin", RequireAdmin(s), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app, tokens, s
}

func bearer(t *testing.T, tokens *TokenManager, id uint64, username string) string {
	t.Helper()

	pair, err := tokens.Issue(&models.User{ID: id, Username: username})
	require.NoError(t, err)

	return "Bearer " + pair.AccessToken
}

func TestMiddleware(t *testing.T) {
	app, tokens, _ := newTestApp(t)

	refresh, err := tokens.Issue(&models.User{ID: 1, Username: "boss"})
	require.NoError(t, err)

	testCases := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
		body   string
	}{
		{name: "no token", method: fiber.MethodGet, path: "/whoami", status: fiber.StatusUnauthorized},
		{name: "refresh token is not an access token", method: fiber.MethodGet, path: "/whoami",
			auth: "Bearer " + refresh.RefreshToken, status: fiber.StatusUnauthorized},
		{name: "valid token", method: fiber.MethodGet, path: "/whoami",
			auth: bearer(t, tokens, 1, "boss"), status: fiber.StatusOK, body: "boss"},
		{name: "action granted", method: fiber.MethodPost, path: "/audit",
			auth: bearer(t, tokens, 2, "audit"), status: fiber.StatusOK, body: "audit"},
		{name: "action denied", method: fiber.MethodPost, path: "/audit",
			auth: bearer(t, tokens, 1, "boss"), status: fiber.StatusForbidden},
		{name: "unknown user", method: fiber.MethodPost, path: "/audit",
			auth: bearer(t, tokens, 99, "ghost"), status: fiber.StatusUnauthorized},
		{name: "admin granted", method: fiber.MethodGet, path: "/admin",
			auth: bearer(t, tokens, 1, "boss"), status: fiber.StatusOK, body: "ok"},
		{name: "admin denied", method: fiber.MethodGet, path: "/admin",
			auth: bearer(t, tokens, 2, "audit"), status: fiber.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.auth != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.auth)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			if tc.body != "" {
				assert.Equal(t, tc.body, string(body))
				return
			}

			var envelope struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(body, &envelope))
			assert.False(t, envelope.Success)
			assert.NotEmpty(t, envelope.Message)
		})
	}
}
