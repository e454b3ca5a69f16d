package models

// UserRole represents the many-to-many relationship between users and roles.
// A user's effective permissions are the logical OR of the flags of all roles bound here.
// Rows are removed together with either side (CASCADE).
type UserRole struct {
	// UserID is the ID of the user in this binding.
	UserID uint64 `gorm:"primaryKey;column:user_id"`
	// RoleID is the ID of the role in this binding.
	RoleID uint `gorm:"primaryKey;column:role_id;index"`
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the UserRole model.
// This overrides GORM's default pluralized table naming.
func (UserRole) TableName() string {
	return "user_roles"
}
