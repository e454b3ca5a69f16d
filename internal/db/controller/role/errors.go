package role

import "errors"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when a role name is empty.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleCodeEmpty is returned when a role code is empty.
	ErrRoleCodeEmpty = errors.New("role code cannot be empty")
	// ErrRoleAlreadyExists is returned when the name or code of a role is taken.
	ErrRoleAlreadyExists = errors.New("role already exists")
	// ErrPermissionNotFound is returned when a role has no row for a known key.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrUnknownPermission is returned for a key outside the catalog.
	ErrUnknownPermission = errors.New("unknown permission")
)
