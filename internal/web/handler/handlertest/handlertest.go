// Package handlertest provides the fixtures shared by the handler tests: an in-memory
// database, an authenticated fiber app and request helpers.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/role"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	webauth "github.com/zhongyue-admin/zhongyue-admin/internal/web/middleware/auth"
)

// AdminCode is the role code granting the management endpoints in tests.
const AdminCode = "admin"

// Env is a test environment.
type Env struct {
	DB     *gorm.DB
	App    *fiber.App
	Cfg    *config.Config
	Tokens *auth.TokenManager
	Auth   *auth.Service
}

// Response is a decoded JSON envelope.
type Response struct {
	Status  int
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
	Body    []byte
	Header  http.Header
}

// New creates an environment with a migrated in-memory database and an app that
// requires access tokens.
func New(t *testing.T) *Env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err, "failed to open sqlite in-memory db")
	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate")

	cfg := &config.Config{Auth: config.Auth{AdminRoleCodes: []string{AdminCode}}}
	tokens := auth.NewTokenManager("secret", "test", time.Hour, time.Hour)

	app := fiber.New()
	app.Use(webauth.Middleware(tokens))

	return &Env{
		DB:     db,
		App:    app,
		Cfg:    cfg,
		Tokens: tokens,
		Auth:   auth.NewService(db, AdminCode),
	}
}

// Role creates an enabled role. Keys in granted are set to true.
func (e *Env) Role(t *testing.T, name, code string, granted ...string) *models.Role {
	t.Helper()

	ctx := context.Background()

	r := &models.Role{Name: name, Code: code, Status: models.RoleStatusEnabled}
	require.NoError(t, role.Create(ctx, e.DB, r))

	for _, key := range granted {
		require.NoError(t, role.SetPermission(ctx, e.DB, name, key, true))
	}

	return r
}

// Admin creates a role with the admin code and every flag set.
func (e *Env) Admin(t *testing.T) *models.Role {
	t.Helper()

	r := e.Role(t, "超级管理员", AdminCode)
	require.NoError(t, role.GrantAll(context.Background(), e.DB, r.ID))

	return r
}

// User creates an enabled user bound to roles.
func (e *Env) User(t *testing.T, username string, deptID *uint, roles ...*models.Role) *models.User {
	t.Helper()

	ids := make([]uint, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}

	u := &models.User{Username: username, Status: models.UserStatusEnabled, DeptID: deptID}
	require.NoError(t, auth.NewLocalProvider(e.DB).CreateUser(context.Background(), u, "secret", ids))

	return u
}

// Department creates a department.
func (e *Env) Department(t *testing.T, name string) *models.Department {
	t.Helper()

	d := &models.Department{Name: name, Status: 1, Type: models.DepartmentTypeBranch}
	require.NoError(t, e.DB.Create(d).Error)

	return d
}

// Do sends a request as user. A nil user sends no token. Non-nil bodies are sent as JSON.
func (e *Env) Do(t *testing.T, method, path string, body interface{}, user *models.User) Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if user != nil {
		pair, err := e.Tokens.Issue(user)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+pair.AccessToken)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := Response{Status: resp.StatusCode, Body: raw, Header: resp.Header}
	if json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &out))
	}

	return out
}

// List is the data of a list response.
type List[T any] struct {
	List        []T                      `json:"list"`
	Total       int64                    `json:"total"`
	CurrentPage int                      `json:"currentPage"`
	PageSize    int                      `json:"pageSize"`
	Permissions auth.ResourcePermissions `json:"permissions"`
}

// Decode unmarshals the data of a response.
func Decode[T any](t *testing.T, r Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(r.Data, &out), string(r.Body))

	return out
}
