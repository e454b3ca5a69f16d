package models

import "time"

const (
	// DepartmentTypeCompany is the head company.
	DepartmentTypeCompany = 1
	// DepartmentTypeBranch is a branch office.
	DepartmentTypeBranch = 2
	// DepartmentTypeDepartment is a plain department.
	DepartmentTypeDepartment = 3
)

// Department is a node of the organisation tree. Users belong to at most one department.
// Department membership drives the view_department_submissions scope.
type Department struct {
	// ID is the unique identifier for the department.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name of the department, also used as location fallback for view_by_location.
	Name string `gorm:"size:100;not null" json:"name"`
	// ParentID is the parent department, nil for the root.
	ParentID *uint `gorm:"index" json:"parentId"`
	// Sort orders siblings ascending.
	Sort int `gorm:"default:0" json:"sort"`
	// Phone of the department.
	Phone string `gorm:"size:20" json:"phone"`
	// Principal is the name of the department head.
	Principal string `gorm:"size:50" json:"principal"`
	// Email of the department.
	Email string `gorm:"size:100" json:"email"`
	// Status is 1 for enabled and 0 for disabled.
	Status int `gorm:"not null" json:"status"`
	// Type is one of DepartmentTypeCompany, DepartmentTypeBranch or DepartmentTypeDepartment.
	Type int `gorm:"not null;default:3" json:"type"`
	// Remark is a free text note.
	Remark string `gorm:"size:255" json:"remark"`
	// CreatedAt is the timestamp when the department was created (managed by GORM).
	CreatedAt time.Time `json:"createTime"`
}

// TableName specifies the database table name for the Department model.
func (Department) TableName() string {
	return "departments"
}
