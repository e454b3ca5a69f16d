package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/locationscope"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		DB: config.DB{
			GormEngine: config.GormEngineSQLite,
			Name:       filepath.Join(t.TempDir(), "zhongyue.db"),
		},
		Log: logger.Log{LogLevel: "error", AppName: "zhongyue-admin", ServiceName: "test"},
		Auth: config.Auth{AdminRoleCodes: []string{"admin"}},
		Seed: config.Seed{AdminUsername: "root", AdminPassword: "s3cret"},
		LocationScopes: []config.LocationScope{
			{Role: "雄安分公司负责人", Location: "雄安"},
		},
	}
}

func TestMigrateSeeds(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, Migrate(cfg))
	require.NoError(t, Migrate(cfg), "migrate must be repeatable")

	db, err := gorm.Open(sqlite.Open(cfg.DB.Name), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)

	ctx := context.Background()

	user, err := auth.NewLocalProvider(db).Authenticate(ctx, "root", "s3cret")
	require.NoError(t, err)

	s := auth.NewService(db, cfg.Auth.AdminRoleCodes...)

	isAdmin, err := s.IsAdmin(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	effective, roles, err := s.ResolveUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{defaultAdminRoleName}, roles)

	for _, k := range auth.Catalog() {
		rp := effective[k.Resource]
		if k.Category == auth.CategoryData {
			assert.True(t, rp.Scope(k.Name), k.String())
		} else {
			assert.True(t, rp.Can(k.Name), k.String())
		}
	}

	var scopes locationscope.Settings
	require.NoError(t, scopes.Load(db))
	assert.Equal(t, map[string]string{"雄安分公司负责人": "雄安"}, scopes.Scopes)
}

func TestNilConfig(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrConfigNil)
	require.ErrorIs(t, Migrate(nil), ErrConfigNil)
}

func TestUnsupportedEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.GormEngine = "oracle"

	err := Migrate(cfg)
	require.ErrorIs(t, err, config.ErrUnsupportedGormEngine)
}
