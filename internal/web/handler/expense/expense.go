// Package expense provides the handlers of the fee records. Every query is
// restricted to the data scope of the requester.
package expense

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler"
)

// Path is the base path of the expense endpoints.
const Path = handler.RootPath + "expense"

// Columns are the scope columns of the expense table.
var Columns = auth.Columns{Submitter: "submitter", Location: "company_location"} //nolint:gochecknoglobals

// autocompleteFields are the columns offered by Autocomplete.
var autocompleteFields = map[string]bool{ //nolint:gochecknoglobals
	"company_name":              true,
	"company_type":              true,
	"company_location":          true,
	"license_type":              true,
	"agency_type":               true,
	"business_type":             true,
	"contract_type":             true,
	"invoice_software_provider": true,
	"change_business":           true,
	"administrative_license":    true,
	"other_business":            true,
	"submitter":                 true,
	"charge_method":             true,
	"auditor":                   true,
}

var errExpenseNotFound = errors.New("expense not found")

// Service serves the expense endpoints.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// expenseRequest accepts "2006-01" for the agency period; the end resolves to the
// last day of the month.
type expenseRequest struct {
	models.Expense
	AgencyStartDate *string `json:"agency_start_date"`
	AgencyEndDate   *string `json:"agency_end_date"`
}

type idRequest struct {
	ID uint64 `json:"id" validate:"required"`
}

type auditRequest struct {
	ID           uint64 `json:"id" validate:"required"`
	Status       int    `json:"status" validate:"oneof=1 2"`
	RejectReason string `json:"reject_reason"`
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

	access := auth.RequireAccess(authService, auth.ResourceExpense)
	action := func(name string) fiber.Handler {
		return auth.RequireAction(authService, auth.ResourceExpense, name)
	}

	app.Get(Path, access, s.List)
	app.Get(Path+"/export", access, s.Export)
	app.Get(Path+"/autocomplete", access, s.Autocomplete)
	app.Post(Path+"/create", action(auth.ActionCreate), s.Create)
	app.Post(Path+"/update", action(auth.ActionEdit), s.Update)
	app.Post(Path+"/delete", action(auth.ActionDelete), s.Delete)
	app.Post(Path+"/audit", action(auth.ActionAudit), s.Audit)
	app.Post(Path+"/cancel-audit", action(auth.ActionCancelAudit), s.CancelAudit)
}

// search applies the query string filters of the list and export endpoints.
func search(c *fiber.Ctx) (func(*gorm.DB) *gorm.DB, error) {
	start, end, ranged, err := handler.DateRange(c.Query("chargeDateStart"), c.Query("chargeDateEnd"))
	if err != nil {
		return nil, err
	}

	return func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(
			handler.Contains("company_name", c.Query("companyName")),
			handler.Equals("status", c.Query("status")),
			handler.Contains("submitter", c.Query("submitter")),
			handler.Contains("company_location", c.Query("company_location")),
			handler.Contains("business_type", c.Query("business_type")),
			handler.Contains("agency_type", c.Query("agency_type")),
			handler.Contains("contract_type", c.Query("contract_type")),
			handler.Contains("charge_method", c.Query("charge_method")),
			handler.Contains("auditor", c.Query("auditor")),
		)

		if ranged {
			db = db.Where("charge_date BETWEEN ? AND ?", start, end)
		}

		return db
	}, nil
}

func (s *Service) access(c *fiber.Ctx) (*auth.Access, error) {
	return auth.AccessFromContext(c, s.authService, auth.ResourceExpense)
}

// List shows the expenses within the requester's scope.
func (s *Service) List(c *fiber.Ctx) error {
	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "获取费用列表失败")
	}

	filter, err := search(c)
	if err != nil {
		return handler.BadRequest(c, "日期格式错误")
	}

	page := handler.ParsePage(c)
	query := s.db.WithContext(c.UserContext()).Model(&models.Expense{}).Scopes(a.Scope(Columns), filter)

	var total int64
	if err = query.Count(&total).Error; err != nil {
		return handler.InternalError(c, err, "获取费用列表失败")
	}

	var expenses []models.Expense
	if err = query.Order(handler.OrderNewestFirst).Scopes(page.Paginate).Find(&expenses).Error; err != nil {
		return handler.InternalError(c, err, "获取费用列表失败")
	}

	if !a.Can(auth.ActionViewReceipt) {
		for i := range expenses {
			expenses[i].ProofOfCharge = nil
		}
	}

	return handler.List(c, expenses, total, page, a.Permissions())
}

// Create stores a new expense submitted by the requester.
func (s *Service) Create(c *fiber.Ctx) error {
	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "创建费用失败")
	}

	req := new(expenseRequest)
	if err = c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	e := req.Expense
	if err = req.applyDates(&e); err != nil {
		return handler.BadRequest(c, "日期格式错误")
	}

	if err = s.validator.Var(strings.TrimSpace(e.CompanyName), "required,max=255"); err != nil {
		return handler.BadRequest(c, "企业名称不能为空")
	}

	e.ID = 0
	e.Submitter = a.User.Username
	e.Status = models.ExpenseStatusPending
	e.Auditor = ""
	e.AuditDate = nil
	e.RejectReason = ""

	if e.TotalFee == nil {
		total := e.SumFees()
		e.TotalFee = &total
	}

	if err = s.db.WithContext(c.UserContext()).Create(&e).Error; err != nil {
		return handler.InternalError(c, err, "创建费用失败")
	}

	return handler.Created(c, "创建成功", e)
}

// Update changes the fields present in the body. The submitter and the audit
// fields are kept.
func (s *Service) Update(c *fiber.Ctx) error {
	id := new(idRequest)
	if err := c.BodyParser(id); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(id); err != nil {
		return handler.ValidationFailed(c, err)
	}

	existing, err := s.find(c, id.ID)
	if err != nil {
		return s.expenseError(c, err, "更新费用失败")
	}

	req := &expenseRequest{Expense: *existing}
	if err = json.Unmarshal(c.Body(), req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	e := req.Expense
	if err = req.applyDates(&e); err != nil {
		return handler.BadRequest(c, "日期格式错误")
	}

	e.ID = existing.ID
	e.Submitter = existing.Submitter
	e.CreateTime = existing.CreateTime
	e.Status = existing.Status
	e.Auditor = existing.Auditor
	e.AuditDate = existing.AuditDate
	e.RejectReason = existing.RejectReason

	var fields map[string]json.RawMessage
	if err = json.Unmarshal(c.Body(), &fields); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if _, ok := fields["total_fee"]; !ok {
		total := e.SumFees()
		e.TotalFee = &total
	}

	if err = s.db.WithContext(c.UserContext()).Save(&e).Error; err != nil {
		return handler.InternalError(c, err, "更新费用失败")
	}

	return handler.OK(c, e)
}

// Delete removes an expense.
func (s *Service) Delete(c *fiber.Ctx) error {
	req := new(idRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	e, err := s.find(c, req.ID)
	if err != nil {
		return s.expenseError(c, err, "删除费用失败")
	}

	if err = s.db.WithContext(c.UserContext()).Delete(e).Error; err != nil {
		return handler.InternalError(c, err, "删除费用失败")
	}

	log.Info().Uint64("expense_id", e.ID).Str("by", auth.Username(c)).Msg("expense deleted")

	return handler.Message(c, "删除成功")
}

// Audit approves (1) or rejects (2) an expense. The reject reason is only stored
// on rejection.
func (s *Service) Audit(c *fiber.Ctx) error {
	req := new(auditRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "参数错误")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	e, err := s.find(c, req.ID)
	if err != nil {
		return s.expenseError(c, err, "审核失败")
	}

	today := models.NewDate(time.Now())
	updates := map[string]interface{}{
		"status":     req.Status,
		"auditor":    auth.Username(c),
		"audit_date": today,
	}

	if req.Status == models.ExpenseStatusRejected {
		updates["reject_reason"] = req.RejectReason
	}

	if err = s.db.WithContext(c.UserContext()).Model(e).Updates(updates).Error; err != nil {
		return handler.InternalError(c, err, "审核失败")
	}

	log.Info().Uint64("expense_id", e.ID).Int("status", req.Status).Str("by", auth.Username(c)).
		Msg("expense audited")

	return handler.Message(c, "审核成功")
}

// CancelAudit returns an expense to pending and clears the audit fields.
func (s *Service) CancelAudit(c *fiber.Ctx) error {
	req := new(idRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "未提供有效的费用记录ID")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, "未提供有效的费用记录ID")
	}

	e, err := s.find(c, req.ID)
	if err != nil {
		return s.expenseError(c, err, "取消审核失败")
	}

	err = s.db.WithContext(c.UserContext()).Model(e).Updates(map[string]interface{}{
		"status":        models.ExpenseStatusPending,
		"auditor":       "",
		"audit_date":    nil,
		"reject_reason": "",
	}).Error
	if err != nil {
		return handler.InternalError(c, err, "取消审核失败")
	}

	return handler.Message(c, "取消审核成功")
}

// Autocomplete suggests values of an allow-listed column within the requester's scope.
func (s *Service) Autocomplete(c *fiber.Ctx) error {
	field := c.Query("field")
	if field == "" {
		return handler.BadRequest(c, "缺少字段参数")
	}

	if !autocompleteFields[field] {
		return handler.BadRequest(c, "无效的字段")
	}

	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "获取候选项失败")
	}

	values, err := handler.Autocomplete(
		s.db.WithContext(c.UserContext()).Model(&models.Expense{}).Scopes(a.Scope(Columns)),
		field, c.Query("query"))
	if err != nil {
		return handler.InternalError(c, err, "获取候选项失败")
	}

	return handler.OK(c, values)
}

// find loads an expense within the requester's scope.
func (s *Service) find(c *fiber.Ctx, id uint64) (*models.Expense, error) {
	a, err := s.access(c)
	if err != nil {
		return nil, err
	}

	var e models.Expense

	err = s.db.WithContext(c.UserContext()).Scopes(a.Scope(Columns)).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errExpenseNotFound
	}

	if err != nil {
		return nil, err
	}

	return &e, nil
}

func (s *Service) expenseError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, errExpenseNotFound) {
		return handler.NotFound(c, "费用记录不存在")
	}

	return handler.InternalError(c, err, message)
}

func (r *expenseRequest) applyDates(e *models.Expense) error {
	if r.AgencyStartDate != nil {
		d, err := handler.ParseStartDate(*r.AgencyStartDate)
		if err != nil {
			return err
		}

		e.AgencyStartDate = d
	}

	if r.AgencyEndDate != nil {
		d, err := handler.ParseEndDate(*r.AgencyEndDate)
		if err != nil {
			return err
		}

		e.AgencyEndDate = d
	}

	return nil
}
