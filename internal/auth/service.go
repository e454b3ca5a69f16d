package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/locationscope"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/setting"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

// Service resolves effective permissions and data scopes of users.
// Nothing is cached: every call reads the current matrix.
type Service struct {
	db         *gorm.DB
	adminCodes []string
}

// NewService creates a new auth service. Users holding an enabled role with one of
// adminRoleCodes may use the management endpoints.
func NewService(db *gorm.DB, adminRoleCodes ...string) *Service {
	return &Service{db: db, adminCodes: adminRoleCodes}
}

// ResourcePermissions are the effective flags of one resource.
type ResourcePermissions struct {
	Data   map[string]bool `json:"data"`
	Action map[string]bool `json:"action"`
}

// Scope reports a data scope flag.
func (p ResourcePermissions) Scope(name string) bool {
	return p.Data[name]
}

// Can reports an action flag.
func (p ResourcePermissions) Can(action string) bool {
	return p.Action[action]
}

// Effective is the merged permission set of a user over all resources.
type Effective map[Resource]ResourcePermissions

// NewEffective returns a set with every known key present and false.
func NewEffective() Effective {
	e := make(Effective, len(Resources))

	for _, k := range catalog {
		rp, ok := e[k.Resource]
		if !ok {
			rp = ResourcePermissions{Data: map[string]bool{}, Action: map[string]bool{}}
			e[k.Resource] = rp
		}

		if k.Category == CategoryData {
			rp.Data[k.Name] = false
		} else {
			rp.Action[k.Name] = false
		}
	}

	return e
}

// Merge ORs value into the flag of k.
func (e Effective) Merge(k Key, value bool) {
	rp := e[k.Resource]

	if k.Category == CategoryData {
		rp.Data[k.Name] = rp.Data[k.Name] || value
	} else {
		rp.Action[k.Name] = rp.Action[k.Name] || value
	}
}

type permissionRow struct {
	Name  string
	Value bool
}

// Resolve merges the flags of the named roles with logical OR.
// Unknown or disabled role names contribute nothing, unknown keys are skipped.
// The result does not depend on order or duplicates of roleNames.
func (s *Service) Resolve(ctx context.Context, roleNames []string) (Effective, error) {
	effective := NewEffective()

	if len(roleNames) == 0 {
		resolutions("empty")
		return effective, nil
	}

	var rows []permissionRow

	err := s.db.WithContext(ctx).Table("permissions").
		Select("permissions.name, permissions.value").
		Joins("JOIN roles ON roles.id = permissions.role_id").
		Where("roles.name IN ? AND roles.status = ?", roleNames, models.RoleStatusEnabled).
		Scan(&rows).Error
	if err != nil {
		resolutions("error")
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	for _, row := range rows {
		k, ok := LookupKey(row.Name)
		if !ok {
			log.Debug().Str("permission", row.Name).Msg("skipping unknown permission key")
			continue
		}

		effective.Merge(k, row.Value)
	}

	resolutions("ok")

	return effective, nil
}

// RoleNames returns the names of all roles bound to the user, disabled ones included.
func (s *Service) RoleNames(ctx context.Context, userID uint64) ([]string, error) {
	var names []string

	err := s.db.WithContext(ctx).Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.id").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return names, nil
}

// ResolveUser resolves the effective permissions of a user through its roles.
func (s *Service) ResolveUser(ctx context.Context, userID uint64) (Effective, []string, error) {
	names, err := s.RoleNames(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	effective, err := s.Resolve(ctx, names)
	if err != nil {
		return nil, nil, err
	}

	return effective, names, nil
}

// Locations returns the location substrings granted by those of roleNames that have
// view_by_location on resource. A role without a configured location falls back
// to deptName. Empty locations are dropped.
func (s *Service) Locations(ctx context.Context, roleNames []string, resource Resource, deptName string) ([]string, error) {
	if len(roleNames) == 0 {
		return nil, nil
	}

	key := Key{Resource: resource, Category: CategoryData, Name: ScopeViewByLocation}

	var granted []string

	err := s.db.WithContext(ctx).Table("roles").
		Joins("JOIN permissions ON permissions.role_id = roles.id").
		Where("roles.name IN ? AND roles.status = ?", roleNames, models.RoleStatusEnabled).
		Where("permissions.name = ? AND permissions.value = ?", key.String(), true).
		Distinct().
		Pluck("roles.name", &granted).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load location roles: %w", err)
	}

	if len(granted) == 0 {
		return nil, nil
	}

	var scopes locationscope.Settings
	if err = scopes.Load(s.db.WithContext(ctx)); err != nil && !errors.Is(err, setting.ErrSettingNotFound) {
		return nil, fmt.Errorf("failed to load location scopes: %w", err)
	}

	seen := map[string]bool{}

	for _, role := range granted {
		loc, ok := scopes.Scopes[role]
		if !ok {
			loc = deptName
		}

		if loc != "" {
			seen[loc] = true
		}
	}

	out := make([]string, 0, len(seen))
	for loc := range seen {
		out = append(out, loc)
	}

	sort.Strings(out)

	return out, nil
}

// DepartmentUsernames returns the usernames of all users in the department.
// A nil department yields an empty set.
func (s *Service) DepartmentUsernames(ctx context.Context, deptID *uint) ([]string, error) {
	if deptID == nil {
		return nil, nil
	}

	var names []string

	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("dept_id = ?", *deptID).
		Order("id").
		Pluck("username", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load department users: %w", err)
	}

	return names, nil
}

// IsAdmin checks if the user holds an enabled role with one of the admin codes.
func (s *Service) IsAdmin(ctx context.Context, userID uint64) (bool, error) {
	if len(s.adminCodes) == 0 {
		return false, nil
	}

	var count int64

	err := s.db.WithContext(ctx).Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.code IN ? AND roles.status = ?",
			userID, s.adminCodes, models.RoleStatusEnabled).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check admin role: %w", err)
	}

	return count > 0, nil
}

// User loads an enabled user with its department.
func (s *Service) User(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Preload("Dept").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Enabled() {
		return nil, ErrUserAccountDisabled
	}

	return &user, nil
}
