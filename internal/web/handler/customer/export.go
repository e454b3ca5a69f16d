package customer

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler"
)

const (
	// ExportFilename is the attachment name of Export.
	ExportFilename = "customers.xlsx"
	// ExportSheet is the name of the exported sheet.
	ExportSheet = "客户列表"

	exportColumnWidth = 20
	timeLayout        = "2006-01-02 15:04:05"
)

type exportColumn struct {
	header string
	value  func(*models.Customer) interface{}
}

var exportColumns = []exportColumn{ //nolint:gochecknoglobals
	{"ID", func(m *models.Customer) interface{} { return m.ID }},
	{"企业名称", func(m *models.Customer) interface{} { return m.CompanyName }},
	{"日常联系人", func(m *models.Customer) interface{} { return m.DailyContact }},
	{"日常联系人电话", func(m *models.Customer) interface{} { return m.DailyContactPhone }},
	{"销售代表", func(m *models.Customer) interface{} { return m.SalesRepresentative }},
	{"统一社会信用代码", func(m *models.Customer) interface{} { return m.SocialCreditCode }},
	{"税务局", func(m *models.Customer) interface{} { return m.TaxBureau }},
	{"业务来源", func(m *models.Customer) interface{} { return m.BusinessSource }},
	{"税务登记类型", func(m *models.Customer) interface{} { return m.TaxRegistrationType }},
	{"主管会计", func(m *models.Customer) interface{} { return m.ChiefAccountant }},
	{"责任会计", func(m *models.Customer) interface{} { return m.ResponsibleAccountant }},
	{"企业状态", func(m *models.Customer) interface{} { return m.EnterpriseStatus }},
	{"关联企业", func(m *models.Customer) interface{} { return m.AffiliatedEnterprises }},
	{"主营业务", func(m *models.Customer) interface{} { return m.MainBusiness }},
	{"老板姓名", func(m *models.Customer) interface{} { return m.BossName }},
	{"老板简介", func(m *models.Customer) interface{} { return m.BossProfile }},
	{"沟通记录", func(m *models.Customer) interface{} { return m.CommunicationNotes }},
	{"经营范围", func(m *models.Customer) interface{} { return m.BusinessScope }},
	{"经营地址", func(m *models.Customer) interface{} { return m.BusinessAddress }},
	{"注册资本", func(m *models.Customer) interface{} { return nullDecimal(m.RegisteredCapital) }},
	{"实缴资本", func(m *models.Customer) interface{} { return nullDecimal(m.PaidInCapital) }},
	{"成立日期", func(m *models.Customer) interface{} { return dateString(m.EstablishmentDate) }},
	{"营业执照到期日", func(m *models.Customer) interface{} { return dateString(m.LicenseExpiryDate) }},
	{"企业类型", func(m *models.Customer) interface{} { return m.EnterpriseType }},
	{"法定代表人", func(m *models.Customer) interface{} { return m.LegalRepresentativeName }},
	{"法定代表人电话", func(m *models.Customer) interface{} { return m.LegalRepresentativePhone }},
	{"基本户开户行", func(m *models.Customer) interface{} { return m.BasicBank }},
	{"基本户账号", func(m *models.Customer) interface{} { return m.BasicBankAccount }},
	{"是否有网银", func(m *models.Customer) interface{} { return yesNo(m.HasOnlineBanking) }},
	{"网银是否托管", func(m *models.Customer) interface{} { return yesNo(m.IsOnlineBankingCustodian) }},
	{"营业执照图片", func(m *models.Customer) interface{} { return jsonString(m.BusinessLicenseImages) }},
	{"业务状态", func(m *models.Customer) interface{} { return m.BusinessStatus }},
	{"提交人", func(m *models.Customer) interface{} { return m.Submitter }},
	{"创建时间", func(m *models.Customer) interface{} { return m.CreateTime.Format(timeLayout) }},
	{"更新时间", func(m *models.Customer) interface{} { return m.UpdateTime.Format(timeLayout) }},
}

// Export writes the customers within the requester's scope as an xlsx workbook.
func (s *Service) Export(c *fiber.Ctx) error {
	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "导出失败")
	}

	var customers []models.Customer

	err = s.db.WithContext(c.UserContext()).
		Scopes(a.Scope(Columns), search(c)).
		Order(handler.OrderNewestFirst).
		Find(&customers).Error
	if err != nil {
		return handler.InternalError(c, err, "导出失败")
	}

	data, err := workbook(customers)
	if err != nil {
		return handler.InternalError(c, err, "导出失败")
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(ExportFilename)

	return c.Send(data)
}

func workbook(customers []models.Customer) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, 0, len(exportColumns))
	for _, col := range exportColumns {
		header = append(header, col.header)
	}

	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i := range customers {
		row := make([]interface{}, 0, len(exportColumns))
		for _, col := range exportColumns {
			row = append(row, col.value(&customers[i]))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		if err = f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	last, err := excelize.ColumnNumberToName(len(exportColumns))
	if err != nil {
		return nil, err
	}

	if err = f.SetColWidth(ExportSheet, "A", last, exportColumnWidth); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func nullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}

	return d.Decimal.String()
}

func dateString(d *models.Date) string {
	if d == nil {
		return ""
	}

	return d.String()
}

func yesNo(b bool) string {
	if b {
		return "是"
	}

	return "否"
}

func jsonString(v []string) string {
	if len(v) == 0 {
		return ""
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}

	return string(raw)
}
