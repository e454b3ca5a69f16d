// Package role manages roles and their rows of the permission matrix.
package role

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/locationscope"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

const (
	whereRoleID   = "role_id = ?"
	whereName     = "name = ?"
	batchSize     = 100
	defaultOrder  = "id DESC"
	nameLikeQuery = "name LIKE ?"
)

// Changes are the editable fields of a role. Nil fields are left untouched.
type Changes struct {
	Name   *string
	Code   *string
	Status *int
	Remark *string
}

// Filter narrows List. Zero values do not filter.
type Filter struct {
	Name   string
	Code   string
	Status *int
}

// RoleMatrix is the permission structure of one role.
type RoleMatrix struct {
	Role        models.Role    `json:"role"`
	Permissions auth.Effective `json:"permissions"`
}

// Create inserts a role together with one false flag per catalog key.
func Create(ctx context.Context, db *gorm.DB, role *models.Role) error {
	if db == nil {
		return ErrDBNil
	}

	role.Name = strings.TrimSpace(role.Name)
	role.Code = strings.TrimSpace(role.Code)

	if role.Name == "" {
		return ErrRoleNameEmpty
	}

	if role.Code == "" {
		return ErrRoleCodeEmpty
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, 0, role.Name, role.Code); err != nil {
			return err
		}

		if err := tx.Create(role).Error; err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}

		return OnRoleCreated(tx, role)
	})
}

// Update changes a role. A new name is cascaded into its permission rows and
// the location mapping.
func Update(ctx context.Context, db *gorm.DB, id uint, changes Changes) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var updated models.Role

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := get(tx, id)
		if err != nil {
			return err
		}

		oldName := role.Name

		if changes.Name != nil {
			role.Name = strings.TrimSpace(*changes.Name)
			if role.Name == "" {
				return ErrRoleNameEmpty
			}
		}

		if changes.Code != nil {
			role.Code = strings.TrimSpace(*changes.Code)
			if role.Code == "" {
				return ErrRoleCodeEmpty
			}
		}

		if changes.Status != nil {
			role.Status = *changes.Status
		}

		if changes.Remark != nil {
			role.Remark = *changes.Remark
		}

		if err = checkUnique(tx, role.ID, role.Name, role.Code); err != nil {
			return err
		}

		if err = tx.Save(role).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		if oldName != role.Name {
			if err = OnRoleRenamed(tx, role, oldName); err != nil {
				return err
			}
		}

		updated = *role

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes a role, its permission rows and its user bindings.
func Delete(ctx context.Context, db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := get(tx, id)
		if err != nil {
			return err
		}

		if err = OnRoleDeleted(tx, role); err != nil {
			return err
		}

		if err = tx.Delete(role).Error; err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}

		return nil
	})
}

// OnRoleCreated inserts the permission rows of a new role, all false.
func OnRoleCreated(tx *gorm.DB, role *models.Role) error {
	rows := make([]models.Permission, 0, len(auth.Catalog()))
	for _, k := range auth.Catalog() {
		rows = append(rows, newPermission(role, k, false))
	}

	if err := tx.Omit(clause.Associations).CreateInBatches(&rows, batchSize).Error; err != nil {
		return fmt.Errorf("failed to create role permissions: %w", err)
	}

	return nil
}

// OnRoleRenamed copies the new role name into its permission rows and moves its
// location mapping.
func OnRoleRenamed(tx *gorm.DB, role *models.Role, oldName string) error {
	err := tx.Model(&models.Permission{}).
		Where(whereRoleID, role.ID).
		Update("role_name", role.Name).Error
	if err != nil {
		return fmt.Errorf("failed to rename role permissions: %w", err)
	}

	if err = locationscope.Rename(tx, oldName, role.Name); err != nil {
		return fmt.Errorf("failed to rename location scope: %w", err)
	}

	return nil
}

// OnRoleDeleted removes exactly the permission rows, user bindings and location
// mapping of the role.
func OnRoleDeleted(tx *gorm.DB, role *models.Role) error {
	if err := tx.Where(whereRoleID, role.ID).Delete(&models.Permission{}).Error; err != nil {
		return fmt.Errorf("failed to delete role permissions: %w", err)
	}

	if err := tx.Where(whereRoleID, role.ID).Delete(&models.UserRole{}).Error; err != nil {
		return fmt.Errorf("failed to delete role bindings: %w", err)
	}

	if err := locationscope.Remove(tx, role.Name); err != nil {
		return fmt.Errorf("failed to remove location scope: %w", err)
	}

	return nil
}

// Get retrieves a role by ID.
func Get(ctx context.Context, db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return get(db.WithContext(ctx), id)
}

// GetByName retrieves a role by name.
func GetByName(ctx context.Context, db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role

	err := db.WithContext(ctx).Where(whereName, name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, err
	}

	return &role, nil
}

// List returns a page of roles, newest first, and the total count.
func List(ctx context.Context, db *gorm.DB, filter Filter, limit, offset int) ([]models.Role, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	var (
		roles []models.Role
		total int64
	)

	query := db.WithContext(ctx).Model(&models.Role{})

	if filter.Name != "" {
		query = query.Where(nameLikeQuery, "%"+filter.Name+"%")
	}

	if filter.Code != "" {
		query = query.Where("code LIKE ?", "%"+filter.Code+"%")
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order(defaultOrder).Limit(limit).Offset(offset).Find(&roles).Error; err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

// All returns every enabled role ordered by ID.
func All(ctx context.Context, db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role

	err := db.WithContext(ctx).
		Where("status = ?", models.RoleStatusEnabled).
		Order("id").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}

	return roles, nil
}

// SetPermission changes a single flag of a role.
func SetPermission(ctx context.Context, db *gorm.DB, roleName, key string, value bool) error {
	if db == nil {
		return ErrDBNil
	}

	k, ok := auth.LookupKey(key)
	if !ok {
		return ErrUnknownPermission
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role

		err := tx.Where(whereName, roleName).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}

		if err != nil {
			return err
		}

		var p models.Permission

		err = tx.Where(whereRoleID+" AND name = ?", role.ID, k.String()).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionNotFound
		}

		if err != nil {
			return err
		}

		// MySQL reports no affected rows for an unchanged value, so the row is checked first.
		return tx.Model(&p).Update("value", value).Error
	})
}

// GrantAll sets every flag of a role to true.
func GrantAll(ctx context.Context, db *gorm.DB, roleID uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Model(&models.Permission{}).
		Where(whereRoleID, roleID).
		Update("value", true).Error
}

// Matrix returns the permission structure of every enabled role.
func Matrix(ctx context.Context, db *gorm.DB) ([]RoleMatrix, error) {
	roles, err := All(ctx, db)
	if err != nil {
		return nil, err
	}

	out := make([]RoleMatrix, 0, len(roles))
	if len(roles) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(roles))
	index := make(map[uint]int, len(roles))

	for i, r := range roles {
		ids = append(ids, r.ID)
		index[r.ID] = i
		out = append(out, RoleMatrix{Role: r, Permissions: auth.NewEffective()})
	}

	var rows []models.Permission
	if err = db.WithContext(ctx).Where("role_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		k, ok := auth.LookupKey(row.Name)
		if !ok {
			continue
		}

		out[index[row.RoleID]].Permissions.Merge(k, row.Value)
	}

	return out, nil
}

// SyncCatalog inserts the missing catalog rows of every role. Existing rows keep
// their value. It returns the number of inserted rows.
func SyncCatalog(ctx context.Context, db *gorm.DB) (int, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	inserted := 0

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roles []models.Role
		if err := tx.Order("id").Find(&roles).Error; err != nil {
			return err
		}

		for i := range roles {
			var names []string
			if err := tx.Model(&models.Permission{}).Where(whereRoleID, roles[i].ID).Pluck("name", &names).Error; err != nil {
				return err
			}

			have := make(map[string]bool, len(names))
			for _, n := range names {
				have[n] = true
			}

			var missing []models.Permission

			for _, k := range auth.Catalog() {
				if !have[k.String()] {
					missing = append(missing, newPermission(&roles[i], k, false))
				}
			}

			if len(missing) == 0 {
				continue
			}

			if err := tx.Omit(clause.Associations).CreateInBatches(&missing, batchSize).Error; err != nil {
				return fmt.Errorf("failed to sync permissions of role %s: %w", roles[i].Name, err)
			}

			inserted += len(missing)
		}

		return nil
	})

	return inserted, err
}

func newPermission(role *models.Role, k auth.Key, value bool) models.Permission {
	return models.Permission{
		RoleID:      role.ID,
		RoleName:    role.Name,
		PageName:    k.PageName(),
		Resource:    string(k.Resource),
		Category:    string(k.Category),
		Action:      k.Name,
		Name:        k.String(),
		Value:       value,
		Description: k.Description(),
	}
}

func get(db *gorm.DB, id uint) (*models.Role, error) {
	var role models.Role

	err := db.First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, err
	}

	return &role, nil
}

func checkUnique(tx *gorm.DB, id uint, name, code string) error {
	var count int64

	err := tx.Model(&models.Role{}).
		Where("(name = ? OR code = ?) AND id <> ?", name, code, id).
		Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrRoleAlreadyExists
	}

	return nil
}
