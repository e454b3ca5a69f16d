package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

// Access is the resolved view of one user on one resource for a single request.
type Access struct {
	User      *models.User
	Roles     []string
	Effective Effective
	Resource  Resource
	Requester Requester
}

// Permissions returns the flags of the accessed resource.
func (a *Access) Permissions() ResourcePermissions {
	return a.Effective[a.Resource]
}

// Can reports an action flag of the accessed resource.
func (a *Access) Can(action string) bool {
	return a.Permissions().Can(action)
}

// Scope returns the data scope of the accessed resource for the given columns.
func (a *Access) Scope(cols Columns) func(*gorm.DB) *gorm.DB {
	return Scope(a.Permissions(), a.Requester, cols)
}

// Access resolves the user's permissions and builds the requester for resource.
// Locations and department members are only loaded when the matching scope is granted.
func (s *Service) Access(ctx context.Context, userID uint64, resource Resource) (*Access, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	effective, roles, err := s.ResolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &Access{
		User:      user,
		Roles:     roles,
		Effective: effective,
		Resource:  resource,
		Requester: Requester{Username: user.Username},
	}

	perms := a.Permissions()
	if perms.Scope(ScopeViewAll) {
		return a, nil
	}

	if perms.Scope(ScopeViewByLocation) {
		var deptName string
		if user.Dept != nil {
			deptName = user.Dept.Name
		}

		if a.Requester.Locations, err = s.Locations(ctx, roles, resource, deptName); err != nil {
			return nil, err
		}
	}

	if perms.Scope(ScopeViewDepartment) {
		if a.Requester.DepartmentUsers, err = s.DepartmentUsernames(ctx, user.DeptID); err != nil {
			return nil, err
		}
	}

	return a, nil
}
