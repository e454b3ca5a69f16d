package models

import "time"

// Permission is one cell of the role permission matrix: a boolean flag of a single
// permission key for a single role. A key is either a data scope (which records a
// role may list) or an action (what a role may do) on one resource.
type Permission struct {
	// ID is the unique identifier for the permission row.
	ID uint `gorm:"primaryKey" json:"id"`
	// RoleID is the owning role. Together with Name it is unique.
	RoleID uint `gorm:"not null;uniqueIndex:idx_role_permission" json:"roleId"`
	// Role is the owning role (enforced with a foreign key constraint).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
	// RoleName is a denormalized copy of Role.Name, kept in sync on rename.
	RoleName string `gorm:"size:100;not null;index" json:"roleName"`
	// PageName is the display name of the page the key belongs to (e.g., "费用管理").
	PageName string `gorm:"size:100" json:"pageName"`
	// Resource is the resource of the key (expense, customer or contract).
	Resource string `gorm:"size:50;not null" json:"resource"`
	// Category is "data" for view scopes and "action" for actions.
	Category string `gorm:"size:20;not null" json:"category"`
	// Action is the scope or action name (e.g., "view_all", "audit").
	Action string `gorm:"size:50;not null" json:"action"`
	// Name is the full permission key, e.g. "expense_data_view_all".
	Name string `gorm:"size:100;not null;uniqueIndex:idx_role_permission" json:"permissionName"`
	// Value is the flag itself.
	Value bool `gorm:"not null;default:false" json:"permissionValue"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255" json:"description"`
	// CreatedAt is the timestamp when the row was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the flag was last changed (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
