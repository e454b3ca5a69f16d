package models

import (
	"time"

	"gorm.io/datatypes"
)

// Expense audit states.
const (
	ExpenseStatusPending  = 0
	ExpenseStatusApproved = 1
	ExpenseStatusRejected = 2
)

// Expense is a fee record collected from a customer company. Scope filters use
// Submitter and CompanyLocation. Fees are whole yuan.
type Expense struct {
	ID                       uint64                      `gorm:"primaryKey" json:"id"`
	CompanyName              string                      `gorm:"size:255;index" json:"company_name"`
	CompanyType              string                      `gorm:"size:100" json:"company_type"`
	CompanyLocation          string                      `gorm:"size:255" json:"company_location"`
	LicenseType              string                      `gorm:"size:100" json:"license_type"`
	LicenseFee               *int                        `json:"license_fee"`
	OneTimeAddressFee        *int                        `json:"one_time_address_fee"`
	BrandFee                 *int                        `json:"brand_fee"`
	SealFee                  *int                        `json:"seal_fee"`
	AgencyType               string                      `gorm:"size:100" json:"agency_type"`
	AgencyFee                *int                        `json:"agency_fee"`
	AccountingSoftwareFee    *int                        `json:"accounting_software_fee"`
	AddressFee               *int                        `json:"address_fee"`
	AgencyStartDate          *Date                       `json:"agency_start_date"`
	AgencyEndDate            *Date                       `json:"agency_end_date"`
	BusinessType             string                      `gorm:"size:100" json:"business_type"`
	ContractType             string                      `gorm:"size:100" json:"contract_type"`
	InvoiceSoftwareProvider  string                      `gorm:"size:255" json:"invoice_software_provider"`
	InvoiceSoftwareFee       *int                        `json:"invoice_software_fee"`
	SocialInsuranceAgencyFee *int                        `json:"social_insurance_agency_fee"`
	StatisticalReportFee     *int                        `json:"statistical_report_fee"`
	ChangeBusiness           string                      `gorm:"size:255" json:"change_business"`
	ChangeFee                *int                        `json:"change_fee"`
	AdministrativeLicense    string                      `gorm:"size:255" json:"administrative_license"`
	AdministrativeLicenseFee *int                        `json:"administrative_license_fee"`
	OtherBusiness            string                      `gorm:"size:255" json:"other_business"`
	OtherBusinessFee         *int                        `json:"other_business_fee"`
	ProofOfCharge            datatypes.JSONSlice[string] `json:"proof_of_charge"`
	TotalFee                 *int                        `json:"total_fee"`
	// Submitter is the username of the creator.
	Submitter    string    `gorm:"size:100;index" json:"submitter"`
	CreateTime   time.Time `gorm:"autoCreateTime" json:"create_time"`
	ChargeDate   *Date     `gorm:"index" json:"charge_date"`
	ChargeMethod string    `gorm:"size:100" json:"charge_method"`
	Auditor      string    `gorm:"size:100" json:"auditor"`
	AuditDate    *Date     `json:"audit_date"`
	// Status is one of ExpenseStatusPending, ExpenseStatusApproved or ExpenseStatusRejected.
	Status       int    `gorm:"not null;default:0;index" json:"status"`
	RejectReason string `gorm:"type:text" json:"reject_reason"`
	Remarks      string `gorm:"type:text" json:"remarks"`
}

// TableName specifies the database table name for the Expense model.
func (Expense) TableName() string {
	return "zy_expense"
}

// SumFees adds up all fee fields. Nil fees count as zero.
func (e *Expense) SumFees() int {
	total := 0

	for _, fee := range []*int{
		e.LicenseFee, e.OneTimeAddressFee, e.BrandFee, e.SealFee, e.AgencyFee,
		e.AccountingSoftwareFee, e.AddressFee, e.InvoiceSoftwareFee,
		e.SocialInsuranceAgencyFee, e.StatisticalReportFee, e.ChangeFee,
		e.AdministrativeLicenseFee, e.OtherBusinessFee,
	} {
		if fee != nil {
			total += *fee
		}
	}

	return total
}
