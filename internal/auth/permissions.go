package auth

import (
	"strings"
)

// Resource is a record type protected by the permission matrix.
type Resource string

// Category groups the keys of a resource.
type Category string

// Resources.
const (
	ResourceExpense  Resource = "expense"
	ResourceCustomer Resource = "customer"
	ResourceContract Resource = "contract"
)

// Categories.
const (
	// CategoryData keys decide which records a role may list.
	CategoryData Category = "data"
	// CategoryAction keys decide what a role may do.
	CategoryAction Category = "action"
)

// Data scopes, shared by all resources.
const (
	ScopeViewAll        = "view_all"
	ScopeViewOwn        = "view_own"
	ScopeViewByLocation = "view_by_location"
	ScopeViewDepartment = "view_department_submissions"
)

// Actions.
const (
	ActionCreate      = "create"
	ActionEdit        = "edit"
	ActionDelete      = "delete"
	ActionAudit       = "audit"
	ActionCancelAudit = "cancel_audit"
	ActionViewReceipt = "view_receipt"
)

// Key identifies one permission flag, e.g. expense_data_view_all.
type Key struct {
	Resource Resource
	Category Category
	Name     string
}

// String returns the stored key name <resource>_<category>_<name>.
func (k Key) String() string {
	return string(k.Resource) + "_" + string(k.Category) + "_" + k.Name
}

// PageName is the display name of the page the key belongs to.
func (k Key) PageName() string {
	return pageNames[k.Resource]
}

// Description is a human readable explanation of the key.
func (k Key) Description() string {
	return k.PageName() + "-" + labels[k.Name]
}

var (
	// Resources lists the protected resources in display order.
	Resources = []Resource{ResourceExpense, ResourceCustomer, ResourceContract} //nolint:gochecknoglobals

	// Scopes lists the data scopes in display order.
	Scopes = []string{ScopeViewAll, ScopeViewByLocation, ScopeViewDepartment, ScopeViewOwn} //nolint:gochecknoglobals

	actions = map[Resource][]string{ //nolint:gochecknoglobals
		ResourceExpense: {
			ActionCreate, ActionEdit, ActionDelete, ActionAudit, ActionCancelAudit, ActionViewReceipt,
		},
		ResourceCustomer: {ActionCreate, ActionEdit, ActionDelete},
		ResourceContract: {ActionCreate, ActionEdit, ActionDelete},
	}

	pageNames = map[Resource]string{ //nolint:gochecknoglobals
		ResourceExpense:  "费用管理",
		ResourceCustomer: "客户管理",
		ResourceContract: "合同管理",
	}

	labels = map[string]string{ //nolint:gochecknoglobals
		ScopeViewAll:        "查看所有记录",
		ScopeViewOwn:        "查看自己提交的记录",
		ScopeViewByLocation: "按区域查看记录",
		ScopeViewDepartment: "查看本部门提交的记录",
		ActionCreate:        "新增",
		ActionEdit:          "编辑",
		ActionDelete:        "删除",
		ActionAudit:         "审核",
		ActionCancelAudit:   "取消审核",
		ActionViewReceipt:   "查看收费凭证",
	}

	catalog  = buildCatalog()      //nolint:gochecknoglobals
	keyIndex = buildIndex(catalog) //nolint:gochecknoglobals
)

func buildCatalog() []Key {
	var keys []Key

	for _, r := range Resources {
		for _, s := range Scopes {
			keys = append(keys, Key{Resource: r, Category: CategoryData, Name: s})
		}

		for _, a := range actions[r] {
			keys = append(keys, Key{Resource: r, Category: CategoryAction, Name: a})
		}
	}

	return keys
}

func buildIndex(keys []Key) map[string]Key {
	idx := make(map[string]Key, len(keys))
	for _, k := range keys {
		idx[k.String()] = k
	}

	return idx
}

// Catalog returns every known permission key. The returned slice is a copy.
func Catalog() []Key {
	out := make([]Key, len(catalog))
	copy(out, catalog)

	return out
}

// LookupKey resolves a stored key name by exact match.
func LookupKey(name string) (Key, bool) {
	k, ok := keyIndex[strings.TrimSpace(name)]

	return k, ok
}

// Actions returns the action names of a resource.
func Actions(r Resource) []string {
	return append([]string(nil), actions[r]...)
}

// ParseResource validates a resource name.
func ParseResource(s string) (Resource, bool) {
	r := Resource(s)
	_, ok := pageNames[r]

	return r, ok
}
