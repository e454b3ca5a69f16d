package user

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/handlertest"
)

func setup(t *testing.T) (*handlertest.Env, *models.User) {
	t.Helper()

	env := handlertest.New(t)

	var s Service
	s.Init(env.App, env.Cfg, env.DB, env.Auth)

	admin := env.User(t, "admin", nil, env.Admin(t))

	return env, admin
}

func TestAdminOnly(t *testing.T) {
	env, _ := setup(t)
	clerk := env.User(t, "clerk", nil, env.Role(t, "文员", "clerk"))

	resp := env.Do(t, fiber.MethodPost, Path, map[string]interface{}{}, clerk)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)

	resp = env.Do(t, fiber.MethodPost, Path, map[string]interface{}{}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)

	resp = env.Do(t, fiber.MethodGet, CurrentRolesPath, nil, clerk)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, []string{"文员"}, handlertest.Decode[[]string](t, resp))
}

func TestCreateListUpdateDelete(t *testing.T) {
	env, admin := setup(t)
	clerkRole := env.Role(t, "文员", "clerk")
	dept := env.Department(t, "雄安")

	resp := env.Do(t, fiber.MethodPost, Path+"/create", map[string]interface{}{
		"username": "wang",
		"password": "secret1",
		"nickname": "小王",
		"deptId":   dept.ID,
		"roleIds":  []uint{clerkRole.ID},
	}, admin)
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))

	created := handlertest.Decode[models.User](t, resp)
	assert.Equal(t, models.UserStatusEnabled, created.Status)

	resp = env.Do(t, fiber.MethodPost, Path+"/create", map[string]interface{}{
		"username": "wang",
		"password": "secret1",
	}, admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)

	resp = env.Do(t, fiber.MethodPost, Path+"/create", map[string]interface{}{
		"username": "short",
		"password": "123",
	}, admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Contains(t, string(resp.Errors), "Password")

	resp = env.Do(t, fiber.MethodPost, Path, map[string]interface{}{"username": "wan"}, admin)
	require.Equal(t, fiber.StatusOK, resp.Status)

	list := handlertest.Decode[handlertest.List[models.User]](t, resp)
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.List, 1)
	require.NotNil(t, list.List[0].Dept)
	assert.Equal(t, "雄安", list.List[0].Dept.Name)

	resp = env.Do(t, fiber.MethodPost, Path+"/update", map[string]interface{}{
		"id":       created.ID,
		"nickname": "王",
		"status":   0,
	}, admin)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	updated := handlertest.Decode[models.User](t, resp)
	assert.Equal(t, "王", updated.Nickname)
	assert.Equal(t, models.UserStatusDisabled, updated.Status)

	resp = env.Do(t, fiber.MethodPost, Path+"/update", map[string]interface{}{"id": 999, "nickname": "x"}, admin)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)

	resp = env.Do(t, fiber.MethodPost, Path+"/delete", map[string]interface{}{"id": admin.ID}, admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)

	resp = env.Do(t, fiber.MethodPost, Path+"/delete", map[string]interface{}{"id": created.ID}, admin)
	assert.Equal(t, fiber.StatusOK, resp.Status)

	resp = env.Do(t, fiber.MethodPost, Path+"/delete", map[string]interface{}{"id": created.ID}, admin)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
}

func TestRoles(t *testing.T) {
	env, admin := setup(t)
	r1 := env.Role(t, "文员", "clerk")
	r2 := env.Role(t, "会计", "accountant")
	u := env.User(t, "wang", nil, r1)

	resp := env.Do(t, fiber.MethodPost, Path+"/update-roles", map[string]interface{}{
		"userId": u.ID,
		"ids":    []uint{r2.ID, r1.ID},
	}, admin)
	require.Equal(t, fiber.StatusOK, resp.Status)

	resp = env.Do(t, fiber.MethodPost, RoleIDsPath, map[string]interface{}{"userId": u.ID}, admin)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, []uint{r1.ID, r2.ID}, handlertest.Decode[[]uint](t, resp))

	resp = env.Do(t, fiber.MethodPost, Path+"/update-roles", map[string]interface{}{
		"userId": u.ID,
		"ids":    []uint{999},
	}, admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}

func TestResetPassword(t *testing.T) {
	env, admin := setup(t)
	u := env.User(t, "wang", nil)

	resp := env.Do(t, fiber.MethodPost, Path+"/reset-password", map[string]interface{}{
		"id":       u.ID,
		"password": "newpass",
	}, admin)
	require.Equal(t, fiber.StatusOK, resp.Status)

	_, err := auth.NewLocalProvider(env.DB).Authenticate(t.Context(), "wang", "newpass")
	require.NoError(t, err)
}
