package models

import "time"

const (
	// RoleStatusDisabled marks a role whose permissions are ignored.
	RoleStatusDisabled = 0
	// RoleStatusEnabled marks an active role.
	RoleStatusEnabled = 1
)

// Role represents a role in the role-based access control (RBAC) system.
// Every role owns exactly one Permission row per known permission key.
// Users are bound to roles through the user_roles join table.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique display name of the role (e.g., "雄安分公司负责人").
	// It is copied into Permission.RoleName.
	Name string `gorm:"unique;size:100;not null" json:"name"`
	// Code is the unique machine readable code of the role (e.g., "admin").
	Code string `gorm:"unique;size:100;not null" json:"code"`
	// Status is RoleStatusEnabled or RoleStatusDisabled.
	Status int `gorm:"not null" json:"status"`
	// Remark is a free text note.
	Remark string `gorm:"size:255" json:"remark"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"createTime"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updateTime"`
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}

// Enabled reports whether the role contributes permissions.
func (r *Role) Enabled() bool {
	return r.Status == RoleStatusEnabled
}
