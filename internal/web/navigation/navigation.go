// Package navigation builds the menu tree served to the admin frontend. Pages are
// only listed for users holding a data scope on their resource, system pages only
// for admins.
package navigation

import (
	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
)

// Meta describes how the frontend renders a route.
type Meta struct {
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
	Rank  int    `json:"rank,omitempty"`
	// Auths lists the granted action keys of the page, used to show buttons.
	Auths []string `json:"auths,omitempty"`
}

// Route is a node of the menu tree.
type Route struct {
	Path     string  `json:"path"`
	Name     string  `json:"name,omitempty"`
	Meta     Meta    `json:"meta"`
	Children []Route `json:"children,omitempty"`
}

type section struct {
	resource auth.Resource
	path     string
	name     string
	icon     string
	rank     int
}

var sections = []section{ //nolint:gochecknoglobals
	{resource: auth.ResourceExpense, path: "/expense", name: "Expense", icon: "ri:money-cny-box-line", rank: 1},
	{resource: auth.ResourceCustomer, path: "/customer", name: "Customer", icon: "ri:team-line", rank: 2},
	{resource: auth.ResourceContract, path: "/contract", name: "Contract", icon: "ri:file-text-line", rank: 3},
}

var systemPages = []Route{ //nolint:gochecknoglobals
	{Path: "/system/user/index", Name: "SystemUser", Meta: Meta{Title: "用户管理"}},
	{Path: "/system/role/index", Name: "SystemRole", Meta: Meta{Title: "角色管理"}},
	{Path: "/system/dept/index", Name: "SystemDept", Meta: Meta{Title: "部门管理"}},
	{Path: "/system/permission/index", Name: "SystemPermission", Meta: Meta{Title: "权限管理"}},
	{Path: "/system/location-scope/index", Name: "SystemLocationScope", Meta: Meta{Title: "区域管理"}},
}

const systemRank = 10

// Routes returns the menu visible with the effective permissions.
func Routes(effective auth.Effective, isAdmin bool) []Route {
	routes := []Route{}

	for _, s := range sections {
		perms := effective[s.resource]
		if !anyScope(perms) {
			continue
		}

		page := auth.Key{Resource: s.resource}.PageName()

		routes = append(routes, Route{
			Path: s.path,
			Meta: Meta{Title: page, Icon: s.icon, Rank: s.rank},
			Children: []Route{{
				Path: s.path + "/index",
				Name: s.name,
				Meta: Meta{Title: page, Auths: granted(s.resource, perms)},
			}},
		})
	}

	if isAdmin {
		children := make([]Route, len(systemPages))
		copy(children, systemPages)

		routes = append(routes, Route{
			Path:     "/system",
			Meta:     Meta{Title: "系统管理", Icon: "ri:settings-3-line", Rank: systemRank},
			Children: children,
		})
	}

	return routes
}

func anyScope(perms auth.ResourcePermissions) bool {
	for _, name := range auth.Scopes {
		if perms.Scope(name) {
			return true
		}
	}

	return false
}

func granted(r auth.Resource, perms auth.ResourcePermissions) []string {
	var out []string

	for _, action := range auth.Actions(r) {
		if perms.Can(action) {
			out = append(out, auth.Key{Resource: r, Category: auth.CategoryAction, Name: action}.String())
		}
	}

	return out
}
