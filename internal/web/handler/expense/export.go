package expense

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler"
)

// ExportFilename is the attachment name of Export.
const ExportFilename = "expenses.csv"

// utf8BOM lets spreadsheet programs detect the encoding.
const utf8BOM = "\ufeff"

var exportHeader = []string{ //nolint:gochecknoglobals
	"企业名称", "企业类型", "企业归属地", "办照类型", "办照费用", "一次性地址费", "牌子费", "刻章费",
	"代理类型", "代理费", "记账软件费", "地址费", "代理开始日期", "代理结束日期", "业务类型", "合同类型",
	"开票软件服务商", "开票软件费", "社保代理费", "统计局报表费", "变更业务", "变更收费", "行政许可",
	"行政许可收费", "其他业务", "其他业务收费", "总费用", "提交人", "创建日期", "收费日期", "收费方式",
	"审核员", "审核日期", "状态", "备注",
}

var statusNames = map[int]string{ //nolint:gochecknoglobals
	models.ExpenseStatusPending:  "待审核",
	models.ExpenseStatusApproved: "已通过",
	models.ExpenseStatusRejected: "已拒绝",
}

// Export writes the expenses within the requester's scope as CSV.
func (s *Service) Export(c *fiber.Ctx) error {
	a, err := s.access(c)
	if err != nil {
		return handler.InternalError(c, err, "导出失败")
	}

	filter, err := search(c)
	if err != nil {
		return handler.BadRequest(c, "日期格式错误")
	}

	var expenses []models.Expense

	err = s.db.WithContext(c.UserContext()).
		Scopes(a.Scope(Columns), filter).
		Order(handler.OrderNewestFirst).
		Find(&expenses).Error
	if err != nil {
		return handler.InternalError(c, err, "导出失败")
	}

	var buf bytes.Buffer

	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err = w.Write(exportHeader); err != nil {
		return handler.InternalError(c, err, "导出失败")
	}

	for i := range expenses {
		if err = w.Write(exportRow(&expenses[i])); err != nil {
			return handler.InternalError(c, err, "导出失败")
		}
	}

	w.Flush()

	if err = w.Error(); err != nil {
		return handler.InternalError(c, err, "导出失败")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(ExportFilename)

	return c.Send(buf.Bytes())
}

func exportRow(e *models.Expense) []string {
	return []string{
		e.CompanyName, e.CompanyType, e.CompanyLocation, e.LicenseType,
		fee(e.LicenseFee), fee(e.OneTimeAddressFee), fee(e.BrandFee), fee(e.SealFee),
		e.AgencyType, fee(e.AgencyFee), fee(e.AccountingSoftwareFee), fee(e.AddressFee),
		date(e.AgencyStartDate), date(e.AgencyEndDate), e.BusinessType, e.ContractType,
		e.InvoiceSoftwareProvider, fee(e.InvoiceSoftwareFee), fee(e.SocialInsuranceAgencyFee),
		fee(e.StatisticalReportFee), e.ChangeBusiness, fee(e.ChangeFee), e.AdministrativeLicense,
		fee(e.AdministrativeLicenseFee), e.OtherBusiness, fee(e.OtherBusinessFee), fee(e.TotalFee),
		e.Submitter, e.CreateTime.Format("2006-01-02 15:04:05"), date(e.ChargeDate), e.ChargeMethod,
		e.Auditor, date(e.AuditDate), statusNames[e.Status], e.Remarks,
	}
}

func fee(v *int) string {
	if v == nil {
		return ""
	}

	return strconv.Itoa(*v)
}

func date(d *models.Date) string {
	if d == nil {
		return ""
	}

	return d.String()
}
