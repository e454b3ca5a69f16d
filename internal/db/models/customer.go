package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Customer is a client company of the agency. Scope filters use Submitter and BusinessAddress.
type Customer struct {
	ID                       uint64                      `gorm:"primaryKey" json:"id"`
	CompanyName              string                      `gorm:"size:255;index" json:"company_name"`
	DailyContact             string                      `gorm:"size:100" json:"daily_contact"`
	DailyContactPhone        string                      `gorm:"size:20" json:"daily_contact_phone"`
	SalesRepresentative      string                      `gorm:"size:100" json:"sales_representative"`
	SocialCreditCode         string                      `gorm:"size:18" json:"social_credit_code"`
	TaxBureau                string                      `gorm:"size:100" json:"tax_bureau"`
	BusinessSource           string                      `gorm:"size:100" json:"business_source"`
	TaxRegistrationType      string                      `gorm:"size:20" json:"tax_registration_type"`
	ChiefAccountant          string                      `gorm:"size:100" json:"chief_accountant"`
	ResponsibleAccountant    string                      `gorm:"size:100" json:"responsible_accountant"`
	EnterpriseStatus         string                      `gorm:"size:20" json:"enterprise_status"`
	AffiliatedEnterprises    string                      `gorm:"type:text" json:"affiliated_enterprises"`
	MainBusiness             string                      `gorm:"type:text" json:"main_business"`
	BossName                 string                      `gorm:"size:100;index" json:"boss_name"`
	BossProfile              string                      `gorm:"type:text" json:"boss_profile"`
	CommunicationNotes       string                      `gorm:"type:text" json:"communication_notes"`
	BusinessScope            string                      `gorm:"type:text" json:"business_scope"`
	BusinessAddress          string                      `gorm:"size:255" json:"business_address"`
	RegisteredCapital        decimal.NullDecimal         `gorm:"type:decimal(15,0)" json:"registered_capital"`
	PaidInCapital            decimal.NullDecimal         `gorm:"type:decimal(15,2)" json:"paid_in_capital"`
	EstablishmentDate        *Date                       `json:"establishment_date"`
	LicenseExpiryDate        *Date                       `json:"license_expiry_date"`
	EnterpriseType           string                      `gorm:"size:100" json:"enterprise_type"`
	LegalRepresentativeName  string                      `gorm:"size:100" json:"legal_representative_name"`
	LegalRepresentativePhone string                      `gorm:"size:20" json:"legal_representative_phone"`
	BasicBank                string                      `gorm:"size:100" json:"basic_bank"`
	BasicBankAccount         string                      `gorm:"size:30" json:"basic_bank_account"`
	HasOnlineBanking         bool                        `gorm:"default:false" json:"has_online_banking"`
	IsOnlineBankingCustodian bool                        `gorm:"default:false" json:"is_online_banking_custodian"`
	BusinessLicenseImages    datatypes.JSONSlice[string] `json:"business_license_images"`
	BusinessStatus           string                      `gorm:"size:20" json:"business_status"`
	// Submitter is the username of the creator. It is never changed by updates.
	Submitter  string    `gorm:"size:100;index" json:"submitter"`
	CreateTime time.Time `gorm:"autoCreateTime" json:"create_time"`
	UpdateTime time.Time `gorm:"autoUpdateTime" json:"update_time"`
}

// TableName specifies the database table name for the Customer model.
func (Customer) TableName() string {
	return "zy_customer"
}
