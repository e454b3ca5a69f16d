// Package contract provides the handlers of the service contracts.
package contract

import (
	"encoding/json"
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

// Path is the base path of the contract endpoints.
const Path = handler.RootPath + "contract"

// Columns are the scope columns of the contract table.
var Columns = auth.Columns{Submitter: "submitter", Location: "customer_address"} //nolint:gochecknoglobals

var (
	errContractNotFound = errors.New("contract not found")
	errDuplicateNo      = errors.New("contract number already exists")
)

// Service serves the contract endpoints.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// contractRules are checked on create and on the merged record of an update.
type contractRules struct {
	ContractNo   string `validate:"required,max=50"`
	BusinessType string `validate:"required,max=20"`
	CustomerName string `validate:"required,max=255"`
	CompanyName  string `validate:"required,max=255"`
	Status       string `validate:"oneof=未签署 生效中 已过期 已作废"`
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

	action := func(name string) fiber.Handler {
		return auth.RequireAction(authService, auth.ResourceContract, name)
	}

	app.Get(Path+"/list", auth.RequireAccess(authService, auth.ResourceContract), s.List)
	app.Post(Path+"/create", action(auth.ActionCreate), s.Create)
	app.Put(Path+"/update/:id", action(auth.ActionEdit), s.Update)
	app.Delete(Path+"/delete/:id", action(auth.ActionDelete), s.Delete)
}

func (s *Service) access(c *fiber.Ctx) (*auth.Access, error) {
	return auth.AccessFromContext(c, s.authService, auth.ResourceContract)
}

// List shows the contracts within the requester's scope.
// A period filter keeps contracts starting on or after start_date and expiring on or
// before end_date.
func (s *Service) List(c *fiber.Ctx) error {
	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "获取合同列表失败")
	}

	from, to, ranged, err := handler.DateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return handler.BadRequest(c, "日期格式错误")
	}

	query := s.db.WithContext(c.UserContext()).Model(&models.Contract{}).Scopes(
		a.Scope(Columns),
		handler.Contains("company_name", c.Query("company_name")),
		handler.Equals("business_type", c.Query("business_type")),
		handler.Equals("status", c.Query("contract_status")),
	)

	if ranged {
		query = query.Where("start_date >= ? AND expire_date <= ?", from, to)
	}

	page := handler.ParsePage(c)

	var total int64
	if err = query.Count(&total).Error; err != nil {
		return handler.InternalError(c, err, "获取合同列表失败")
	}

	var contracts []models.Contract
	if err = query.Order(handler.OrderNewestFirst).Scopes(page.Paginate).Find(&contracts).Error; err != nil {
		return handler.InternalError(c, err, "获取合同列表失败")
	}

	return handler.List(c, contracts, total, page, a.Permissions())
}

// Create stores a new contract submitted by the requester.
func (s *Service) Create(c *fiber.Ctx) error {
	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "合同创建失败")
	}

	contract := new(models.Contract)
	if err = c.BodyParser(contract); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	contract.ID = 0
	contract.Submitter = a.User.Username

	if contract.Status == "" {
		contract.Status = models.ContractStatusUnsigned
	}

	if err = s.validate(contract); err != nil {
		return handler.ValidationFailed(c, err)
	}

	if err = s.save(c, contract); err != nil {
		return s.contractError(c, err, "合同创建失败")
	}

	return handler.Created(c, "合同创建成功", contract)
}

// Update changes the fields present in the body. The submitter is never changed.
func (s *Service) Update(c *fiber.Ctx) error {
	existing, err := s.find(c)
	if err != nil {
		return s.contractError(c, err, "合同更新失败")
	}

	updated := *existing
	if err = json.Unmarshal(c.Body(), &updated); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	updated.ID = existing.ID
	updated.Submitter = existing.Submitter
	updated.CreatedAt = existing.CreatedAt

	if err = s.validate(&updated); err != nil {
		return handler.ValidationFailed(c, err)
	}

	if err = s.save(c, &updated); err != nil {
		return s.contractError(c, err, "合同更新失败")
	}

	return handler.OK(c, updated)
}

// Delete removes a contract.
func (s *Service) Delete(c *fiber.Ctx) error {
	contract, err := s.find(c)
	if err != nil {
		return s.contractError(c, err, "合同删除失败")
	}

	if err = s.db.WithContext(c.UserContext()).Delete(contract).Error; err != nil {
		return handler.InternalError(c, err, "合同删除失败")
	}

	log.Info().Uint64("contract_id", contract.ID).Str("by", auth.Username(c)).Msg("contract deleted")

	return handler.Message(c, "合同删除成功")
}

func (s *Service) validate(m *models.Contract) error {
	return s.validator.Struct(contractRules{
		ContractNo:   m.ContractNo,
		BusinessType: m.BusinessType,
		CustomerName: m.CustomerName,
		CompanyName:  m.CompanyName,
		Status:       m.Status,
	})
}

// save creates or updates m. Contract numbers are unique.
func (s *Service) save(c *fiber.Ctx, m *models.Contract) error {
	return s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Contract{}).
			Where("contract_no = ? AND id <> ?", m.ContractNo, m.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return errDuplicateNo
		}

		return tx.Save(m).Error
	})
}

// find loads the contract of the :id parameter within the requester's scope.
func (s *Service) find(c *fiber.Ctx) (*models.Contract, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, errContractNotFound
	}

	a, err := s.access(c)
	if err != nil {
		return nil, err
	}

	var contract models.Contract

	err = s.db.WithContext(c.UserContext()).Scopes(a.Scope(Columns)).First(&contract, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errContractNotFound
	}

	if err != nil {
		return nil, err
	}

	return &contract, nil
}

func (s *Service) contractError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, errContractNotFound):
		return handler.NotFound(c, "合同不存在")
	case errors.Is(err, errDuplicateNo):
		return handler.BadRequest(c, "合同编号已存在")
	default:
		return handler.InternalError(c, err, message)
	}
}
