// Package customer provides the handlers of the customer records.
package customer

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler"
)

// Path is the base path of the customer endpoints.
const Path = handler.RootPath + "customer"

// Columns are the scope columns of the customer table.
var Columns = auth.Columns{Submitter: "submitter", Location: "business_address"} //nolint:gochecknoglobals

// searchFields maps the camelCase query parameters of List to text columns.
// The same columns are offered by Autocomplete.
var searchFields = map[string]string{ //nolint:gochecknoglobals
	"companyName":              "company_name",
	"dailyContact":             "daily_contact",
	"dailyContactPhone":        "daily_contact_phone",
	"salesRepresentative":      "sales_representative",
	"socialCreditCode":         "social_credit_code",
	"taxBureau":                "tax_bureau",
	"businessSource":           "business_source",
	"taxRegistrationType":      "tax_registration_type",
	"chiefAccountant":          "chief_accountant",
	"responsibleAccountant":    "responsible_accountant",
	"enterpriseStatus":         "enterprise_status",
	"mainBusiness":             "main_business",
	"bossName":                 "boss_name",
	"businessScope":            "business_scope",
	"businessAddress":          "business_address",
	"enterpriseType":           "enterprise_type",
	"legalRepresentativeName":  "legal_representative_name",
	"legalRepresentativePhone": "legal_representative_phone",
	"basicBank":                "basic_bank",
	"businessStatus":           "business_status",
	"submitter":                "submitter",
}

var errCustomerNotFound = errors.New("customer not found")

// Service serves the customer endpoints.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Related is an entry of RelatedCustomers.
type Related struct {
	ID          uint64 `json:"id"`
	CompanyName string `json:"company_name"`
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

	access := auth.RequireAccess(authService, auth.ResourceCustomer)
	action := func(name string) fiber.Handler {
		return auth.RequireAction(authService, auth.ResourceCustomer, name)
	}

	app.Get(Path+"/list", access, s.List)
	app.Get(Path+"/detail/:id", access, s.Detail)
	app.Get(Path+"/related-customers", access, s.RelatedCustomers)
	app.Get(Path+"/export", access, s.Export)
	app.Get(Path+"/autocomplete", access, s.Autocomplete)
	app.Post(Path+"/create", action(auth.ActionCreate), s.Create)
	app.Put(Path+"/update/:id", action(auth.ActionEdit), s.Update)
	app.Delete(Path+"/delete/:id", action(auth.ActionDelete), s.Delete)
}

func (s *Service) access(c *fiber.Ctx) (*auth.Access, error) {
	return auth.AccessFromContext(c, s.authService, auth.ResourceCustomer)
}

// search applies every known camelCase query parameter as a substring match.
func search(c *fiber.Ctx) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for param, column := range searchFields {
			db = db.Scopes(handler.Contains(column, c.Query(param)))
		}

		return db
	}
}

// List shows the customers within the requester's scope.
func (s *Service) List(c *fiber.Ctx) error {
	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "获取客户列表失败")
	}

	page := handler.ParsePage(c)
	query := s.db.WithContext(c.UserContext()).Model(&models.Customer{}).Scopes(a.Scope(Columns), search(c))

	var total int64
	if err = query.Count(&total).Error; err != nil {
		return handler.InternalError(c, err, "获取客户列表失败")
	}

	var customers []models.Customer
	if err = query.Order(handler.OrderNewestFirst).Scopes(page.Paginate).Find(&customers).Error; err != nil {
		return handler.InternalError(c, err, "获取客户列表失败")
	}

	return handler.List(c, customers, total, page, a.Permissions())
}

// Detail returns one customer.
func (s *Service) Detail(c *fiber.Ctx) error {
	customer, err := s.find(c)
	if err != nil {
		return s.customerError(c, err, "获取客户失败")
	}

	return handler.OK(c, customer)
}

// RelatedCustomers lists the customers sharing a boss.
func (s *Service) RelatedCustomers(c *fiber.Ctx) error {
	boss := strings.TrimSpace(c.Query("boss_name"))
	if boss == "" {
		return handler.BadRequest(c, "缺少老板姓名")
	}

	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "获取关联客户失败")
	}

	var related []Related

	err = s.db.WithContext(c.UserContext()).Model(&models.Customer{}).
		Scopes(a.Scope(Columns)).
		Where("boss_name = ?", boss).
		Order("id").
		Find(&related).Error
	if err != nil {
		return handler.InternalError(c, err, "获取关联客户失败")
	}

	if len(related) == 0 {
		return handler.NotFound(c, "没有关联客户")
	}

	return handler.OK(c, related)
}

// Create stores a new customer submitted by the requester.
func (s *Service) Create(c *fiber.Ctx) error {
	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "创建客户失败")
	}

	customer := new(models.Customer)
	if err = c.BodyParser(customer); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err = s.validator.Var(strings.TrimSpace(customer.CompanyName), "required,max=255"); err != nil {
		return handler.BadRequest(c, "企业名称不能为空")
	}

	customer.ID = 0
	customer.Submitter = a.User.Username

	if err = s.db.WithContext(c.UserContext()).Create(customer).Error; err != nil {
		return handler.InternalError(c, err, "创建客户失败")
	}

	return handler.Created(c, "创建成功", customer)
}

// Update changes the fields present in the body. The submitter is kept.
func (s *Service) Update(c *fiber.Ctx) error {
	existing, err := s.find(c)
	if err != nil {
		return s.customerError(c, err, "更新客户失败")
	}

	updated := *existing
	if err = json.Unmarshal(c.Body(), &updated); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	updated.ID = existing.ID
	updated.Submitter = existing.Submitter
	updated.CreateTime = existing.CreateTime

	if err = s.validator.Var(strings.TrimSpace(updated.CompanyName), "required,max=255"); err != nil {
		return handler.BadRequest(c, "企业名称不能为空")
	}

	if err = s.db.WithContext(c.UserContext()).Save(&updated).Error; err != nil {
		return handler.InternalError(c, err, "更新客户失败")
	}

	return handler.OK(c, updated)
}

// Delete removes a customer.
func (s *Service) Delete(c *fiber.Ctx) error {
	customer, err := s.find(c)
	if err != nil {
		return s.customerError(c, err, "删除客户失败")
	}

	if err = s.db.WithContext(c.UserContext()).Delete(customer).Error; err != nil {
		return handler.InternalError(c, err, "删除客户失败")
	}

	log.Info().Uint64("customer_id", customer.ID).Str("by", auth.Username(c)).Msg("customer deleted")

	return handler.Message(c, "删除成功")
}

// Autocomplete suggests values of a searchable column within the requester's scope.
// field may be given as column or camelCase name.
func (s *Service) Autocomplete(c *fiber.Ctx) error {
	field := c.Query("field")
	if field == "" {
		return handler.BadRequest(c, "缺少字段参数")
	}

	column, ok := columnOf(field)
	if !ok {
		return handler.BadRequest(c, "无效的字段")
	}

	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "获取候选项失败")
	}

	values, err := handler.Autocomplete(
		s.db.WithContext(c.UserContext()).Model(&models.Customer{}).Scopes(a.Scope(Columns)),
		column, c.Query("query"))
	if err != nil {
		return handler.InternalError(c, err, "获取候选项失败")
	}

	return handler.OK(c, values)
}

func columnOf(field string) (string, bool) {
	if column, ok := searchFields[field]; ok {
		return column, true
	}

	for _, column := range searchFields {
		if column == field {
			return column, true
		}
	}

	return "", false
}

// find loads the customer of the :id parameter within the requester's scope.
func (s *Service) find(c *fiber.Ctx) (*models.Customer, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, errCustomerNotFound
	}

	a, err := s.access(c)
	if err != nil {
		return nil, err
	}

	var customer models.Customer

	err = s.db.WithContext(c.UserContext()).Scopes(a.Scope(Columns)).First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errCustomerNotFound
	}

	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (s *Service) customerError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, errCustomerNotFound) {
		return handler.NotFound(c, "客户不存在")
	}

	return handler.InternalError(c, err, message)
}
