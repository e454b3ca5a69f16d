package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

const (
	// UserStatusDisabled blocks login.
	UserStatusDisabled = 0
	// UserStatusEnabled allows login.
	UserStatusEnabled = 1
)

// User represents a local user account.
// Roles are bound through UserRole, the department through DeptID.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Username is the unique username for login. It is stored as submitter on records.
	Username string `gorm:"unique;size:100;not null" json:"username"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255" json:"-"`
	// Nickname is the display name.
	Nickname string `gorm:"size:100" json:"nickname"`
	// Avatar is an image URL.
	Avatar string `gorm:"size:255" json:"avatar"`
	// Email is the user's email address.
	Email string `gorm:"size:255" json:"email"`
	// Phone is the user's phone number.
	Phone string `gorm:"size:20" json:"phone"`
	// Sex is 0 unknown, 1 male, 2 female.
	Sex int `gorm:"default:0" json:"sex"`
	// Status is UserStatusEnabled or UserStatusDisabled.
	Status int `gorm:"not null" json:"status"`
	// DeptID is the department of the user, nil if none.
	DeptID *uint `gorm:"index" json:"deptId"`
	// Dept is the associated department.
	Dept *Department `gorm:"foreignKey:DeptID;constraint:OnDelete:SET NULL" json:"dept,omitempty"`
	// IsExpenseAuditor marks users that are listed as expense auditors.
	IsExpenseAuditor bool `gorm:"default:false" json:"isExpenseAuditor"`
	// Remark is a free text note.
	Remark string `gorm:"size:255" json:"remark"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"createTime"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updateTime"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// Enabled reports whether the user may log in.
func (u *User) Enabled() bool {
	return u.Status == UserStatusEnabled
}

// DisplayName returns the nickname, or the username if no nickname is set.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}

	return u.Username
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// It uses the default Argon2id parameters.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
