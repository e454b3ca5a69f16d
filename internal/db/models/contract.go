package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Contract status values.
const (
	ContractStatusUnsigned = "未签署"
	ContractStatusActive   = "生效中"
	ContractStatusExpired  = "已过期"
	ContractStatusVoid     = "已作废"
)

// Contract is a service contract between a customer (party A) and one of the agency's
// companies (party B). Scope filters use Submitter and CustomerAddress.
type Contract struct {
	ID              uint64                      `gorm:"primaryKey" json:"id"`
	ContractNo      string                      `gorm:"size:50;not null;uniqueIndex" json:"contract_no"`
	BusinessType    string                      `gorm:"size:20;not null;index" json:"business_type"`
	CustomerName    string                      `gorm:"size:255;not null;index" json:"customer_name"`
	CustomerCode    string                      `gorm:"size:50" json:"customer_code"`
	CustomerAddress string                      `gorm:"size:255" json:"customer_address"`
	CustomerPhone   string                      `gorm:"size:20" json:"customer_phone"`
	CustomerContact string                      `gorm:"size:50" json:"customer_contact"`
	CompanyName     string                      `gorm:"size:255;not null" json:"company_name"`
	CompanyCode     string                      `gorm:"size:50" json:"company_code"`
	CompanyAddress  string                      `gorm:"size:255" json:"company_address"`
	CompanyPhone    string                      `gorm:"size:20" json:"company_phone"`
	BusinessPerson  string                      `gorm:"size:50" json:"business_person"`
	Amount          decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"amount"`
	SignDate        *Date                       `json:"sign_date"`
	StartDate       *Date                       `json:"start_date"`
	ExpireDate      *Date                       `json:"expire_date"`
	Status          string                      `gorm:"size:20;not null;default:'未签署';index" json:"status"`
	Remark          string                      `gorm:"type:text" json:"remark"`
	ContractFiles   datatypes.JSONSlice[string] `json:"contract_files"`
	// Submitter is the username of the creator. It is never changed by updates.
	Submitter string    `gorm:"size:50;not null;index" json:"submitter"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Contract model.
func (Contract) TableName() string {
	return "zy_contract"
}
