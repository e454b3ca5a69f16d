// Package dept provides handlers for managing departments.
package dept

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

// Path is the base path for department management.
const Path = handler.RootPath + "dept"

// Service provides CRUD operations for departments.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

type listRequest struct {
	Name        string `json:"name"`
	Status      *int   `json:"status"`
	CurrentPage int    `json:"currentPage"`
	PageSize    int    `json:"pageSize"`
}

type deptRequest struct {
	ID        uint    `json:"id"`
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	ParentID  *uint   `json:"parentId"`
	Sort      *int    `json:"sort"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Principal *string `json:"principal" validate:"omitempty,max=50"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Status    *int    `json:"status" validate:"omitempty,oneof=0 1"`
	Type      *int    `json:"type" validate:"omitempty,oneof=1 2 3"`
	Remark    *string `json:"remark" validate:"omitempty,max=255"`
}

type idRequest struct {
	ID uint `json:"id" validate:"required"`
}

var errDeptNotFound = errors.New("department not found")

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
	app.Post(Path+"/create", admin, s.Create)
	app.Post(Path+"/update", admin, s.Update)
	app.Post(Path+"/delete", admin, s.Delete)
}

// List shows departments ordered by sort.
func (s *Service) List(c *fiber.Ctx) error {
	req := new(listRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return handler.BadRequest(c, "参数错误")
		}
	}

	page := handler.NewPage(req.CurrentPage, req.PageSize)

	query := s.db.WithContext(c.UserContext()).Model(&models.Department{})
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}

	if req.Status != nil {
		query = query.Where("status = ?", *req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return handler.InternalError(c, err, "获取部门列表失败")
	}

	var depts []models.Department
	if err := query.Order("sort ASC, id ASC").Scopes(page.Paginate).Find(&depts).Error; err != nil {
		return handler.InternalError(c, err, "获取部门列表失败")
	}

	return handler.List(c, depts, total, page, nil)
}

// Create creates a department. Status defaults to enabled.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(deptRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	if req.Name == nil {
		return handler.BadRequest(c, "部门名称不能为空")
	}

	dept := &models.Department{Status: 1, Type: models.DepartmentTypeDepartment}
	apply(dept, req)

	if dept.ParentID != nil {
		if err := s.exists(c, *dept.ParentID); err != nil {
			return s.deptError(c, err, "创建部门失败")
		}
	}

	if err := s.db.WithContext(c.UserContext()).Create(dept).Error; err != nil {
		return handler.InternalError(c, err, "创建部门失败")
	}

	return handler.Created(c, "创建成功", dept)
}

// Update changes a department.
func (s *Service) Update(c *fiber.Ctx) error {
	req := new(deptRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	if req.ID == 0 {
		return handler.BadRequest(c, "参数错误")
	}

	if req.ParentID != nil && *req.ParentID == req.ID {
		return handler.BadRequest(c, "上级部门不能是自己")
	}

	var dept models.Department
	if err := s.db.WithContext(c.UserContext()).First(&dept, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = errDeptNotFound
		}

		return s.deptError(c, err, "更新部门失败")
	}

	apply(&dept, req)

	if err := s.db.WithContext(c.UserContext()).Save(&dept).Error; err != nil {
		return handler.InternalError(c, err, "更新部门失败")
	}

	return handler.OK(c, dept)
}

// Delete removes a department without children. Its users are left without department.
func (s *Service) Delete(c *fiber.Ctx) error {
	req := new(idRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	var children int64
	if err := s.db.WithContext(c.UserContext()).Model(&models.Department{}).
		Where("parent_id = ?", req.ID).Count(&children).Error; err != nil {
		return handler.InternalError(c, err, "删除部门失败")
	}

	if children > 0 {
		return handler.BadRequest(c, "请先删除下级部门")
	}

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Department{}, req.ID)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return errDeptNotFound
		}

		return tx.Model(&models.User{}).Where("dept_id = ?", req.ID).Update("dept_id", nil).Error
	})
	if err != nil {
		return s.deptError(c, err, "删除部门失败")
	}

	log.Info().Uint("dept_id", req.ID).Str("by", auth.Username(c)).Msg("department deleted")

	return handler.Message(c, "删除成功")
}

func (s *Service) exists(c *fiber.Ctx, id uint) error {
	var count int64
	if err := s.db.WithContext(c.UserContext()).Model(&models.Department{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		return errDeptNotFound
	}

	return nil
}

func (s *Service) deptError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, errDeptNotFound) {
		return handler.NotFound(c, "部门不存在")
	}

	return handler.InternalError(c, err, message)
}

func apply(d *models.Department, req *deptRequest) {
	if req.Name != nil {
		d.Name = *req.Name
	}

	if req.ParentID != nil {
		d.ParentID = req.ParentID
		if *req.ParentID == 0 {
			d.ParentID = nil
		}
	}

	if req.Sort != nil {
		d.Sort = *req.Sort
	}

	if req.Phone != nil {
		d.Phone = *req.Phone
	}

	if req.Principal != nil {
		d.Principal = *req.Principal
	}

	if req.Email != nil {
		d.Email = *req.Email
	}

	if req.Status != nil {
		d.Status = *req.Status
	}

	if req.Type != nil {
		d.Type = *req.Type
	}

	if req.Remark != nil {
		d.Remark = *req.Remark
	}
}
