package auth

import (
	"strings"

	"gorm.io/gorm"
)

// Requester is the identity a data scope is evaluated against.
type Requester struct {
	Username string
	// Locations are substrings matched against the location column.
	Locations []string
	// DepartmentUsers are the usernames sharing the requester's department.
	DepartmentUsers []string
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_") //nolint:gochecknoglobals

// ContainsClause returns a case-insensitive substring condition on column and its
// argument. LIKE wildcards in value match literally.
func ContainsClause(column, value string) (string, string) {
	return "LOWER(" + column + ") LIKE ? ESCAPE '!'", "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
}

// Columns names the columns of a resource table the scopes filter on.
type Columns struct {
	Submitter string
	Location  string
}

// Scope turns the data flags of one resource into a gorm scope.
//
// view_all yields no filter. Otherwise the granted scopes are OR-ed:
// view_own matches Submitter = username, view_by_location matches Location
// containing any requester location, and view_department_submissions matches
// Submitter in the department usernames. Without any usable scope the filter
// matches nothing.
func Scope(perms ResourcePermissions, req Requester, cols Columns) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if perms.Scope(ScopeViewAll) {
			return db
		}

		var (
			conds []string
			args  []interface{}
		)

		if perms.Scope(ScopeViewOwn) && req.Username != "" {
			conds = append(conds, cols.Submitter+" = ?")
			args = append(args, req.Username)
		}

		if perms.Scope(ScopeViewByLocation) {
			for _, loc := range req.Locations {
				if loc == "" {
					continue
				}

				cond, arg := ContainsClause(cols.Location, loc)
				conds = append(conds, cond)
				args = append(args, arg)
			}
		}

		if perms.Scope(ScopeViewDepartment) && len(req.DepartmentUsers) > 0 {
			conds = append(conds, cols.Submitter+" IN ?")
			args = append(args, req.DepartmentUsers)
		}

		if len(conds) == 0 {
			return db.Where("1 = 0")
		}

		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}
