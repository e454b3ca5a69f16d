// Package user provides handlers for managing users (CRUD) and their role bindings.
package user

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "user"
	// RoleIDsPath lists the role ids of a user.
	RoleIDsPath = handler.RootPath + "list-role-ids"
	// CurrentRolesPath lists the role names of the requesting user.
	CurrentRolesPath = handler.RootPath + "user-roles"
)

// Service provides CRUD operations for users.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	local       *auth.LocalProvider
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

type listRequest struct {
	Username    string `json:"username"`
	Status      *int   `json:"status"`
	DeptID      *uint  `json:"deptId"`
	CurrentPage int    `json:"currentPage"`
	PageSize    int    `json:"pageSize"`
}

type createRequest struct {
	Username         string `json:"username" validate:"required,max=100"`
	Password         string `json:"password" validate:"required,min=6"`
	Nickname         string `json:"nickname" validate:"max=100"`
	Avatar           string `json:"avatar"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone" validate:"max=20"`
	Sex              int    `json:"sex" validate:"oneof=0 1 2"`
	Status           *int   `json:"status" validate:"omitempty,oneof=0 1"`
	DeptID           *uint  `json:"deptId"`
	IsExpenseAuditor bool   `json:"isExpenseAuditor"`
	Remark           string `json:"remark"`
	RoleIDs          []uint `json:"roleIds"`
}

type updateRequest struct {
	ID               uint64  `json:"id" validate:"required"`
	Nickname         *string `json:"nickname" validate:"omitempty,max=100"`
	Avatar           *string `json:"avatar"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone" validate:"omitempty,max=20"`
	Sex              *int    `json:"sex" validate:"omitempty,oneof=0 1 2"`
	Status           *int    `json:"status" validate:"omitempty,oneof=0 1"`
	DeptID           *uint   `json:"deptId"`
	IsExpenseAuditor *bool   `json:"isExpenseAuditor"`
	Remark           *string `json:"remark"`
}

type idRequest struct {
	ID uint64 `json:"id" validate:"required"`
}

type resetPasswordRequest struct {
	ID       uint64 `json:"id" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type userRolesRequest struct {
	UserID uint64 `json:"userId" validate:"required"`
	IDs    []uint `json:"ids"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.local = auth.NewLocalProvider(db)
	s.validator = validator.New()

	admin := auth.RequireAdmin(authService)

	app.Post(Path, admin, s.List)
	app.Post(Path+"/create", admin, s.Create)
	app.Post(Path+"/update", admin, s.Update)
	app.Post(Path+"/delete", admin, s.Delete)
	app.Post(Path+"/reset-password", admin, s.ResetPassword)
	app.Post(Path+"/update-roles", admin, s.UpdateRoles)
	app.Post(RoleIDsPath, admin, s.RoleIDs)
	app.Get(CurrentRolesPath, s.CurrentRoles)
}

// List shows users with pagination and filters.
func (s *Service) List(c *fiber.Ctx) error {
	req := new(listRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return handler.BadRequest(c, "参数错误")
		}
	}

	page := handler.NewPage(req.CurrentPage, req.PageSize)

	users, total, err := s.local.ListUsers(c.UserContext(),
		auth.UserFilter{Username: req.Username, Status: req.Status, DeptID: req.DeptID},
		page.Size, page.Offset())
	if err != nil {
		return handler.InternalError(c, err, "获取用户列表失败")
	}

	return handler.List(c, users, total, page, nil)
}

// Create creates a user with its role bindings.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(createRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	status := models.UserStatusEnabled
	if req.Status != nil {
		status = *req.Status
	}

	user := &models.User{
		Username:         req.Username,
		Nickname:         req.Nickname,
		Avatar:           req.Avatar,
		Email:            req.Email,
		Phone:            req.Phone,
		Sex:              req.Sex,
		Status:           status,
		DeptID:           req.DeptID,
		IsExpenseAuditor: req.IsExpenseAuditor,
		Remark:           req.Remark,
	}

	err := s.local.CreateUser(c.UserContext(), user, req.Password, req.RoleIDs)

	switch {
	case errors.Is(err, auth.ErrUserNameExists):
		return handler.BadRequest(c, "用户名已存在")
	case errors.Is(err, auth.ErrUnknownRole):
		return handler.BadRequest(c, "角色不存在")
	case err != nil:
		return handler.InternalError(c, err, "创建用户失败")
	}

	log.Info().Str("user", user.Username).Str("by", auth.Username(c)).Msg("user created")

	return handler.Created(c, "创建成功", user)
}

// Update changes the profile of a user.
func (s *Service) Update(c *fiber.Ctx) error {
	req := new(updateRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	updates := map[string]interface{}{}

	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}

	setString("nickname", req.Nickname)
	setString("avatar", req.Avatar)
	setString("email", req.Email)
	setString("phone", req.Phone)
	setString("remark", req.Remark)

	if req.Sex != nil {
		updates["sex"] = *req.Sex
	}

	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if req.DeptID != nil {
		updates["dept_id"] = *req.DeptID
	}

	if req.IsExpenseAuditor != nil {
		updates["is_expense_auditor"] = *req.IsExpenseAuditor
	}

	if len(updates) > 0 {
		if err := s.local.UpdateUser(c.UserContext(), req.ID, updates); err != nil {
			return s.userError(c, err, "更新用户失败")
		}
	}

	user, err := s.local.GetUserByID(c.UserContext(), req.ID)
	if err != nil {
		return s.userError(c, err, "更新用户失败")
	}

	return handler.OK(c, user)
}

// Delete deletes a user.
func (s *Service) Delete(c *fiber.Ctx) error {
	req := new(idRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	if claims, ok := auth.ClaimsFromContext(c); ok {
		if id, err := claims.UserID(); err == nil && id == req.ID {
			return handler.BadRequest(c, "不能删除当前登录用户")
		}
	}

	if err := s.local.DeleteUser(c.UserContext(), req.ID); err != nil {
		return s.userError(c, err, "删除用户失败")
	}

	log.Info().Uint64("user_id", req.ID).Str("by", auth.Username(c)).Msg("user deleted")

	return handler.Message(c, "删除成功")
}

// ResetPassword sets a new password for a user.
func (s *Service) ResetPassword(c *fiber.Ctx) error {
	req := new(resetPasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	if err := s.local.ResetPassword(c.UserContext(), req.ID, req.Password); err != nil {
		return s.userError(c, err, "重置密码失败")
	}

	return handler.Message(c, "重置成功")
}

// RoleIDs lists the role ids bound to a user.
func (s *Service) RoleIDs(c *fiber.Ctx) error {
	req := new(userRolesRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	ids, err := s.local.RoleIDs(c.UserContext(), req.UserID)
	if err != nil {
		return handler.InternalError(c, err, "获取用户角色失败")
	}

	if ids == nil {
		ids = []uint{}
	}

	return handler.OK(c, ids)
}

// UpdateRoles replaces the role bindings of a user.
func (s *Service) UpdateRoles(c *fiber.Ctx) error {
	req := new(userRolesRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	err := s.local.SetRoles(c.UserContext(), req.UserID, req.IDs)
	if errors.Is(err, auth.ErrUnknownRole) {
		return handler.BadRequest(c, "角色不存在")
	}

	if err != nil {
		return s.userError(c, err, "更新用户角色失败")
	}

	log.Info().Uint64("user_id", req.UserID).Uints("roles", req.IDs).Str("by", auth.Username(c)).
		Msg("user roles updated")

	return handler.Message(c, "更新成功")
}

// CurrentRoles lists the role names of the requesting user.
func (s *Service) CurrentRoles(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return handler.Fail(c, fiber.StatusUnauthorized, "未登录")
	}

	userID, err := claims.UserID()
	if err != nil {
		return handler.Fail(c, fiber.StatusUnauthorized, "未登录")
	}

	names, err := s.authService.RoleNames(c.UserContext(), userID)
	if err != nil {
		return handler.InternalError(c, err, "获取用户角色失败")
	}

	if names == nil {
		names = []string{}
	}

	return handler.OK(c, names)
}

func (s *Service) userError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, auth.ErrUserNotFound) {
		return handler.NotFound(c, "用户不存在")
	}

	return handler.InternalError(c, err, message)
}
