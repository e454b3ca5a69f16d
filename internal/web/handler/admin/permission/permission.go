// Package permission provides the handlers of the role permission matrix and the
// role to location mapping.
package permission

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/locationscope"
	rolectl "github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/role"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/setting"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/navigation"
)

const (
	// Path is the base path of the permission matrix.
	Path = handler.RootPath + "permission"
	// CurrentPath returns the permissions of the requesting user.
	CurrentPath = handler.RootPath + "current-user-permissions"
	// LocationScopePath reads and replaces the role to location mapping.
	LocationScopePath = handler.RootPath + "location-scope"
	// RoutesPath returns the menu of the requesting user.
	RoutesPath = handler.RootPath + "get-async-routes"
)

// Service serves the permission matrix.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

type updateRequest struct {
	Role      string `json:"role" validate:"required"`
	Field     string `json:"field" validate:"required"`
	IsAllowed *bool  `json:"isAllowed" validate:"required"`
}

// CurrentPermissions is the answer of CurrentPath.
type CurrentPermissions struct {
	Roles       []string       `json:"roles"`
	Permissions auth.Effective `json:"permissions"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.validator = validator.New()

	admin := auth.RequireAdmin(authService)

	app.Get(Path, admin, s.Matrix)
	app.Post(Path+"/update", admin, s.Update)
	app.Get(CurrentPath, s.Current)
	app.Get(RoutesPath, s.Routes)
	app.Get(LocationScopePath, admin, s.LocationScopes)
	app.Post(LocationScopePath, admin, s.SaveLocationScopes)
}

// Matrix lists the permission structure of every enabled role.
func (s *Service) Matrix(c *fiber.Ctx) error {
	matrix, err := rolectl.Matrix(c.UserContext(), s.db)
	if err != nil {
		return handler.InternalError(c, err, "获取权限失败")
	}

	return handler.OK(c, matrix)
}

// Update sets one flag of one role.
func (s *Service) Update(c *fiber.Ctx) error {
	req := new(updateRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	err := rolectl.SetPermission(c.UserContext(), s.db, req.Role, req.Field, *req.IsAllowed)

	switch {
	case errors.Is(err, rolectl.ErrRoleNotFound):
		return handler.NotFound(c, "角色不存在")
	case errors.Is(err, rolectl.ErrPermissionNotFound):
		return handler.NotFound(c, "权限不存在")
	case errors.Is(err, rolectl.ErrUnknownPermission):
		return handler.BadRequest(c, "权限字段不存在")
	case err != nil:
		return handler.InternalError(c, err, "更新权限失败")
	}

	log.Info().Str("role", req.Role).Str("field", req.Field).Bool("value", *req.IsAllowed).
		Str("by", auth.Username(c)).Msg("permission updated")

	return handler.Message(c, "更新成功")
}

func requester(c *fiber.Ctx) (uint64, bool) {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return 0, false
	}

	userID, err := claims.UserID()

	return userID, err == nil
}

// Current returns the role names and merged permissions of the requesting user.
func (s *Service) Current(c *fiber.Ctx) error {
	userID, ok := requester(c)
	if !ok {
		return handler.Fail(c, fiber.StatusUnauthorized, "未登录")
	}

	effective, roles, err := s.authService.ResolveUser(c.UserContext(), userID)
	if err != nil {
		return handler.InternalError(c, err, "获取权限失败")
	}

	if roles == nil {
		roles = []string{}
	}

	return handler.OK(c, CurrentPermissions{Roles: roles, Permissions: effective})
}

// Routes returns the menu tree the requesting user may open.
func (s *Service) Routes(c *fiber.Ctx) error {
	userID, ok := requester(c)
	if !ok {
		return handler.Fail(c, fiber.StatusUnauthorized, "未登录")
	}

	effective, _, err := s.authService.ResolveUser(c.UserContext(), userID)
	if err != nil {
		return handler.InternalError(c, err, "获取菜单失败")
	}

	isAdmin, err := s.authService.IsAdmin(c.UserContext(), userID)
	if err != nil {
		return handler.InternalError(c, err, "获取菜单失败")
	}

	return handler.OK(c, navigation.Routes(effective, isAdmin))
}

// LocationScopes returns the stored role to location mapping.
func (s *Service) LocationScopes(c *fiber.Ctx) error {
	var scopes locationscope.Settings

	err := scopes.Load(s.db.WithContext(c.UserContext()))
	if errors.Is(err, setting.ErrSettingNotFound) {
		scopes.Scopes = map[string]string{}
	} else if err != nil {
		return handler.InternalError(c, err, "获取区域配置失败")
	}

	return handler.OK(c, scopes)
}

// SaveLocationScopes replaces the role to location mapping.
func (s *Service) SaveLocationScopes(c *fiber.Ctx) error {
	var scopes locationscope.Settings
	if err := c.BodyParser(&scopes); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if scopes.Scopes == nil {
		scopes.Scopes = map[string]string{}
	}

	err := scopes.Save(s.db.WithContext(c.UserContext()))

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return handler.BadRequest(c, "角色名称和区域不能为空")
	}

	if err != nil {
		return handler.InternalError(c, err, "保存区域配置失败")
	}

	log.Info().Int("roles", len(scopes.Scopes)).Str("by", auth.Username(c)).Msg("location scopes saved")

	return handler.OK(c, scopes)
}
