package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/locationscope"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/role"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "changeme"
	defaultAdminRoleName = "超级管理员"
)

// seed creates the admin role and user on an empty user table, stores the configured
// location scopes unless a mapping exists and adds missing permission rows to every role.
func seed(cfg *config.Config, db *gorm.DB) error {
	ctx := context.Background()

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count users")
	}

	if count == 0 {
		if err := seedAdmin(ctx, cfg, db); err != nil {
			return err
		}
	}

	seeded, err := locationscope.SeedFromConfig(db, cfg.LocationMap())
	if err != nil {
		return errors.Wrap(err, "failed to seed location scopes")
	}

	if seeded {
		log.Info().Int("roles", len(cfg.LocationScopes)).Msg("location scopes seeded from config")
	}

	inserted, err := role.SyncCatalog(ctx, db)
	if err != nil {
		return errors.Wrap(err, "failed to sync permission catalog")
	}

	if inserted > 0 {
		log.Info().Int("rows", inserted).Msg("permission catalog synced")
	}

	return nil
}

func seedAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	s := cfg.Seed

	username := orDefault(s.AdminUsername, defaultAdminUsername)
	password := orDefault(s.AdminPassword, defaultAdminPassword)
	code := s.AdminRoleCode

	if code == "" && len(cfg.Auth.AdminRoleCodes) > 0 {
		code = cfg.Auth.AdminRoleCodes[0]
	}

	admin, err := role.GetByName(ctx, db, orDefault(s.AdminRoleName, defaultAdminRoleName))
	if errors.Is(err, role.ErrRoleNotFound) {
		admin = &models.Role{
			Name:   orDefault(s.AdminRoleName, defaultAdminRoleName),
			Code:   code,
			Status: models.RoleStatusEnabled,
			Remark: "系统初始化创建",
		}

		if err = role.Create(ctx, db, admin); err != nil {
			return errors.Wrap(err, "failed to create admin role")
		}
	} else if err != nil {
		return errors.Wrap(err, "failed to load admin role")
	}

	if err = role.GrantAll(ctx, db, admin.ID); err != nil {
		return errors.Wrap(err, "failed to grant admin role")
	}

	user := &models.User{
		Username: username,
		Nickname: username,
		Status:   models.UserStatusEnabled,
	}

	if err = auth.NewLocalProvider(db).CreateUser(ctx, user, password, []uint{admin.ID}); err != nil {
		return errors.Wrap(err, "failed to create admin user")
	}

	log.Warn().Str("user", username).Msg("initial admin user created, change its password")

	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}
