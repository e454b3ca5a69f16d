package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

// LocalProvider handles local database authentication and user accounts.
type LocalProvider struct {
	db *gorm.DB
}

const (
	whereID       = "id = ?"
	whereUsername = "username = ?"
	whereUserID   = "user_id = ?"
)

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// UserFilter narrows ListUsers. Zero values do not filter.
type UserFilter struct {
	Username string
	Status   *int
	DeptID   *uint
}

// Authenticate authenticates a user against the local database.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where(whereUsername, username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Enabled() {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return &user, nil
}

// CreateUser creates a new local user with the given plaintext password and roles.
func (p *LocalProvider) CreateUser(ctx context.Context, user *models.User, password string, roleIDs []uint) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where(whereUsername, user.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}

		if count > 0 {
			return ErrUserNameExists
		}

		user.Password = models.HashPassword(password)

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return setRoles(tx, user.ID, roleIDs)
	})
}

// UpdateUser updates profile fields of a user. Username and password are not changed.
func (p *LocalProvider) UpdateUser(ctx context.Context, userID uint64, updates map[string]interface{}) error {
	delete(updates, "username")
	delete(updates, "password")

	result := p.db.WithContext(ctx).Model(&models.User{}).Where(whereID, userID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return p.exists(ctx, userID)
	}

	return nil
}

// ChangePassword changes a user's password after checking the old one.
func (p *LocalProvider) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := p.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	return p.ResetPassword(ctx, userID, newPassword)
}

// ResetPassword resets a user's password (admin function).
func (p *LocalProvider) ResetPassword(ctx context.Context, userID uint64, newPassword string) error {
	result := p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("password", models.HashPassword(newPassword))
	if result.Error != nil {
		return fmt.Errorf("failed to reset password: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteUser deletes a user and its role bindings.
func (p *LocalProvider) DeleteUser(ctx context.Context, userID uint64) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(whereUserID, userID).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to delete user roles: %w", err)
		}

		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

// GetUserByID retrieves a user by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// ListUsers lists users with optional filters, newest first.
func (p *LocalProvider) ListUsers(ctx context.Context, filter UserFilter, limit, offset int) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	query := p.db.WithContext(ctx).Model(&models.User{})

	if filter.Username != "" {
		query = query.Where("username LIKE ?", "%"+filter.Username+"%")
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.DeptID != nil {
		query = query.Where("dept_id = ?", *filter.DeptID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if err := query.Preload("Dept").Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// RoleIDs returns the ids of the roles bound to the user.
func (p *LocalProvider) RoleIDs(ctx context.Context, userID uint64) ([]uint, error) {
	var ids []uint

	err := p.db.WithContext(ctx).Model(&models.UserRole{}).
		Where(whereUserID, userID).
		Order("role_id").
		Pluck("role_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user role ids: %w", err)
	}

	return ids, nil
}

// SetRoles replaces the role bindings of a user.
func (p *LocalProvider) SetRoles(ctx context.Context, userID uint64, roleIDs []uint) error {
	if err := p.exists(ctx, userID); err != nil {
		return err
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return setRoles(tx, userID, roleIDs)
	})
}

func (p *LocalProvider) exists(ctx context.Context, userID uint64) error {
	var count int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).Where(whereID, userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to query user: %w", err)
	}

	if count == 0 {
		return ErrUserNotFound
	}

	return nil
}

func setRoles(tx *gorm.DB, userID uint64, roleIDs []uint) error {
	if err := tx.Where(whereUserID, userID).Delete(&models.UserRole{}).Error; err != nil {
		return fmt.Errorf("failed to remove old user roles: %w", err)
	}

	unique := make([]uint, 0, len(roleIDs))
	seen := make(map[uint]bool, len(roleIDs))

	for _, id := range roleIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	if len(unique) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Role{}).Where("id IN ?", unique).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check roles: %w", err)
	}

	if count != int64(len(unique)) {
		return ErrUnknownRole
	}

	bindings := make([]models.UserRole, 0, len(unique))
	for _, id := range unique {
		bindings = append(bindings, models.UserRole{UserID: userID, RoleID: id})
	}

	if err := tx.Omit(clause.Associations).Create(&bindings).Error; err != nil {
		return fmt.Errorf("failed to add user roles: %w", err)
	}

	return nil
}
