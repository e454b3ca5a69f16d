package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
)

func grant(e auth.Effective, keys ...string) auth.Effective {
	for _, name := range keys {
		k, ok := auth.LookupKey(name)
		if ok {
			e.Merge(k, true)
		}
	}

	return e
}

func TestRoutes_Empty(t *testing.T) {
	routes := Routes(auth.NewEffective(), false)

	assert.NotNil(t, routes)
	assert.Empty(t, routes)
}

func TestRoutes_ScopedPages(t *testing.T) {
	e := grant(auth.NewEffective(),
		"expense_data_view_own", "expense_action_create", "expense_action_audit",
		"contract_action_create",
	)

	routes := Routes(e, false)
	require.Len(t, routes, 1, "contract has an action but no scope")

	expense := routes[0]
	assert.Equal(t, "/expense", expense.Path)
	assert.Equal(t, "费用管理", expense.Meta.Title)
	require.Len(t, expense.Children, 1)
	assert.Equal(t, "/expense/index", expense.Children[0].Path)
	assert.Equal(t, []string{"expense_action_create", "expense_action_audit"}, expense.Children[0].Meta.Auths)
}

func TestRoutes_Admin(t *testing.T) {
	e := grant(auth.NewEffective(), "customer_data_view_all", "contract_data_view_by_location")

	routes := Routes(e, true)
	require.Len(t, routes, 3)

	assert.Equal(t, "/customer", routes[0].Path)
	assert.Nil(t, routes[0].Children[0].Meta.Auths)
	assert.Equal(t, "/contract", routes[1].Path)
	assert.Equal(t, "/system", routes[2].Path)
	assert.Len(t, routes[2].Children, len(systemPages))

	routes[2].Children[0].Meta.Title = "changed"
	assert.Equal(t, "用户管理", systemPages[0].Meta.Title)
}
