package auth

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/locationscope"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	return db
}

// seedRole creates a role with a full catalog of flags. Keys in granted are true.
func seedRole(t *testing.T, db *gorm.DB, name string, status int, granted ...string) *models.Role {
	t.Helper()

	role := &models.Role{Name: name, Code: name, Status: status}
	require.NoError(t, db.Create(role).Error)

	grant := map[string]bool{}
	for _, g := range granted {
		grant[g] = true
	}

	rows := make([]models.Permission, 0, len(catalog))
	for _, k := range catalog {
		rows = append(rows, models.Permission{
			RoleID:   role.ID,
			RoleName: name,
			Resource: string(k.Resource),
			Category: string(k.Category),
			Action:   k.Name,
			Name:     k.String(),
			Value:    grant[k.String()],
		})
	}

	require.NoError(t, db.Omit("Role").Create(&rows).Error)

	return role
}

func seedUser(t *testing.T, db *gorm.DB, username string, deptID *uint, roles ...*models.Role) *models.User {
	t.Helper()

	user := &models.User{Username: username, Status: models.UserStatusEnabled, DeptID: deptID}
	require.NoError(t, db.Create(user).Error)

	for _, r := range roles {
		require.NoError(t, db.Omit("User", "Role").Create(&models.UserRole{UserID: user.ID, RoleID: r.ID}).Error)
	}

	return user
}

func TestResolveOrMerge(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)
	ctx := context.Background()

	seedRole(t, db, "own", models.RoleStatusEnabled, "expense_data_view_own", "expense_action_create")
	seedRole(t, db, "none", models.RoleStatusEnabled)
	seedRole(t, db, "auditor", models.RoleStatusEnabled, "expense_action_audit", "contract_data_view_all")

	ab, err := s.Resolve(ctx, []string{"own", "none", "auditor"})
	require.NoError(t, err)

	ba, err := s.Resolve(ctx, []string{"auditor", "none", "own", "own"})
	require.NoError(t, err)

	again, err := s.Resolve(ctx, []string{"own", "none", "auditor"})
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Equal(t, ab, again)

	assert.True(t, ab[ResourceExpense].Scope(ScopeViewOwn))
	assert.False(t, ab[ResourceExpense].Scope(ScopeViewAll))
	assert.True(t, ab[ResourceExpense].Can(ActionCreate))
	assert.True(t, ab[ResourceExpense].Can(ActionAudit))
	assert.True(t, ab[ResourceContract].Scope(ScopeViewAll))
	assert.False(t, ab[ResourceCustomer].Can(ActionDelete))
}

func TestResolveCompleteShape(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	e, err := s.Resolve(context.Background(), nil)
	require.NoError(t, err)

	for _, k := range Catalog() {
		rp, ok := e[k.Resource]
		require.True(t, ok, k.String())

		if k.Category == CategoryData {
			v, present := rp.Data[k.Name]
			assert.True(t, present, k.String())
			assert.False(t, v, k.String())
		} else {
			v, present := rp.Action[k.Name]
			assert.True(t, present, k.String())
			assert.False(t, v, k.String())
		}
	}
}

func TestResolveMissingAndDisabledRoles(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)
	ctx := context.Background()

	seedRole(t, db, "disabled", models.RoleStatusDisabled, "expense_data_view_all")
	seedRole(t, db, "own", models.RoleStatusEnabled, "customer_data_view_own")

	e, err := s.Resolve(ctx, []string{"deleted-role", "disabled", "own"})
	require.NoError(t, err)

	assert.False(t, e[ResourceExpense].Scope(ScopeViewAll))
	assert.True(t, e[ResourceCustomer].Scope(ScopeViewOwn))

	only, err := s.Resolve(ctx, []string{"deleted-role"})
	require.NoError(t, err)
	assert.Equal(t, NewEffective(), only)
}

func TestResolveSkipsUnknownKeys(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	r := seedRole(t, db, "r", models.RoleStatusEnabled)
	require.NoError(t, db.Omit("Role").Create(&models.Permission{
		RoleID: r.ID, RoleName: "r", Resource: "expense", Category: "data", Action: "x",
		Name: "expense_data_view_everything", Value: true,
	}).Error)

	e, err := s.Resolve(context.Background(), []string{"r"})
	require.NoError(t, err)
	assert.Equal(t, NewEffective(), e)
}

func TestResolveUser(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	own := seedRole(t, db, "own", models.RoleStatusEnabled, "expense_data_view_own")
	none := seedRole(t, db, "none", models.RoleStatusEnabled)
	u := seedUser(t, db, "wang", nil, own, none)

	e, roles, err := s.ResolveUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"own", "none"}, roles)
	assert.True(t, e[ResourceExpense].Scope(ScopeViewOwn))
}

func TestLocations(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)
	ctx := context.Background()

	seedRole(t, db, "雄安分公司负责人", models.RoleStatusEnabled, "expense_data_view_by_location")
	seedRole(t, db, "高碑店分公司负责人", models.RoleStatusEnabled, "customer_data_view_by_location")
	seedRole(t, db, "区域经理", models.RoleStatusEnabled, "expense_data_view_by_location")

	scopes := locationscope.Settings{Scopes: map[string]string{
		"雄安分公司负责人":  "雄安",
		"高碑店分公司负责人": "高碑店",
	}}
	require.NoError(t, scopes.Save(db))

	locs, err := s.Locations(ctx, []string{"雄安分公司负责人", "高碑店分公司负责人"}, ResourceExpense, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"雄安"}, locs)

	locs, err = s.Locations(ctx, []string{"区域经理"}, ResourceExpense, "保定")
	require.NoError(t, err)
	assert.Equal(t, []string{"保定"}, locs)

	locs, err = s.Locations(ctx, []string{"区域经理"}, ResourceExpense, "")
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestLocationsWithoutStoredMapping(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	seedRole(t, db, "雄安分公司负责人", models.RoleStatusEnabled, "contract_data_view_by_location")

	locs, err := s.Locations(context.Background(), []string{"雄安分公司负责人"}, ResourceContract, "雄安")
	require.NoError(t, err)
	assert.Equal(t, []string{"雄安"}, locs)
}

func TestDepartmentUsernamesAndIsAdmin(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := NewService(db, "admin")

	dept := models.Department{Name: "财务部", Status: 1}
	require.NoError(t, db.Create(&dept).Error)

	admin := seedRole(t, db, "admin", models.RoleStatusEnabled)
	a := seedUser(t, db, "a", &dept.ID, admin)
	seedUser(t, db, "b", &dept.ID)
	c := seedUser(t, db, "c", nil)

	names, err := s.DepartmentUsernames(ctx, &dept.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	names, err = s.DepartmentUsernames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, names)

	ok, err := s.IsAdmin(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsAdmin(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserDisabled(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	u := seedUser(t, db, "a", nil)
	require.NoError(t, db.Model(u).Update("status", models.UserStatusDisabled).Error)

	_, err := s.User(context.Background(), u.ID)
	require.ErrorIs(t, err, ErrUserAccountDisabled)

	_, err = s.User(context.Background(), 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}
