// Package role provides handlers for managing roles. Creating and deleting a role
// also creates and removes its row of the permission matrix.
package role

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	rolectl "github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/role"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler"
)

const (
	// Path is the base path for role management.
	Path = handler.RootPath + "role"
	// AllPath lists every enabled role.
	AllPath = handler.RootPath + "list-all-role"
)

// Service provides CRUD operations for roles.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

type listRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Status      *int   `json:"status"`
	CurrentPage int    `json:"currentPage"`
	PageSize    int    `json:"pageSize"`
}

type roleRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=100"`
	Code   *string `json:"code" validate:"omitempty,min=1,max=100"`
	Status *int    `json:"status" validate:"omitempty,oneof=0 1"`
	Remark *string `json:"remark" validate:"omitempty,max=255"`
}

type idRequest struct {
	ID uint `json:"id" validate:"required"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	admin := auth.RequireAdmin(authService)

	app.Post(Path, admin, s.List)
	app.Get(AllPath, admin, s.All)
	app.Post(Path+"/create", admin, s.Create)
	app.Put(Path+"/update/:id", admin, s.Update)
	app.Post(Path+"/delete", admin, s.Delete)
}

// List shows roles with pagination and filters.
func (s *Service) List(c *fiber.Ctx) error {
	req := new(listRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return handler.BadRequest(c, "参数错误")
		}
	}

	page := handler.NewPage(req.CurrentPage, req.PageSize)

	roles, total, err := rolectl.List(c.UserContext(), s.db,
		rolectl.Filter{Name: req.Name, Code: req.Code, Status: req.Status}, page.Size, page.Offset())
	if err != nil {
		return handler.InternalError(c, err, "获取角色列表失败")
	}

	return handler.List(c, roles, total, page, nil)
}

// All lists every enabled role.
func (s *Service) All(c *fiber.Ctx) error {
	roles, err := rolectl.All(c.UserContext(), s.db)
	if err != nil {
		return handler.InternalError(c, err, "获取角色失败")
	}

	return handler.OK(c, roles)
}

// Create creates a role with all permissions denied.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(roleRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	role := &models.Role{Status: models.RoleStatusEnabled}

	if req.Name != nil {
		role.Name = *req.Name
	}

	if req.Code != nil {
		role.Code = *req.Code
	}

	if req.Status != nil {
		role.Status = *req.Status
	}

	if req.Remark != nil {
		role.Remark = *req.Remark
	}

	if err := rolectl.Create(c.UserContext(), s.db, role); err != nil {
		return roleError(c, err, "创建角色失败")
	}

	log.Info().Str("role", role.Name).Str("by", auth.Username(c)).Msg("role created")

	return handler.Created(c, "创建成功", role)
}

// Update changes a role. A rename is carried into its permission rows.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return handler.BadRequest(c, "参数错误")
	}

	req := new(roleRequest)
	if err = c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err = s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	role, err := rolectl.Update(c.UserContext(), s.db, uint(id), rolectl.Changes{
		Name:   req.Name,
		Code:   req.Code,
		Status: req.Status,
		Remark: req.Remark,
	})
	if err != nil {
		return roleError(c, err, "更新角色失败")
	}

	return handler.OK(c, role)
}

// Delete removes a role with its permissions and user bindings.
func (s *Service) Delete(c *fiber.Ctx) error {
	req := new(idRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	if err := rolectl.Delete(c.UserContext(), s.db, req.ID); err != nil {
		return roleError(c, err, "删除角色失败")
	}

	log.Info().Uint("role_id", req.ID).Str("by", auth.Username(c)).Msg("role deleted")

	return handler.Message(c, "删除成功")
}

func roleError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, rolectl.ErrRoleNotFound):
		return handler.NotFound(c, "角色不存在")
	case errors.Is(err, rolectl.ErrRoleAlreadyExists):
		return handler.BadRequest(c, "角色名称或编码已存在")
	case errors.Is(err, rolectl.ErrRoleNameEmpty), errors.Is(err, rolectl.ErrRoleCodeEmpty):
		return handler.BadRequest(c, "角色名称和编码不能为空")
	default:
		return handler.InternalError(c, err, message)
	}
}
