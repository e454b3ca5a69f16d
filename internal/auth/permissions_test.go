package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	keys := Catalog()
	assert.Len(t, keys, 24)

	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k.String()], "duplicate key %s", k)
		seen[k.String()] = true
	}

	keys[0].Name = "changed"
	assert.Equal(t, ScopeViewAll, Catalog()[0].Name)
}

func TestLookupKey(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Key
		ok    bool
	}{
		{name: "scope", input: "expense_data_view_all", want: Key{ResourceExpense, CategoryData, ScopeViewAll}, ok: true},
		{name: "multi word action", input: "expense_action_cancel_audit", want: Key{ResourceExpense, CategoryAction, ActionCancelAudit}, ok: true},
		{name: "department scope", input: "contract_data_view_department_submissions", want: Key{ResourceContract, CategoryData, ScopeViewDepartment}, ok: true},
		{name: "surrounding space", input: " customer_action_edit ", want: Key{ResourceCustomer, CategoryAction, ActionEdit}, ok: true},
		{name: "action not on resource", input: "customer_action_audit"},
		{name: "unknown resource", input: "invoice_data_view_all"},
		{name: "prefix only", input: "expense_data"},
		{name: "empty", input: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			k, ok := LookupKey(tc.input)
			assert.Equal(t, tc.ok, ok)

			if tc.ok {
				assert.Equal(t, tc.want, k)
			}
		})
	}
}

func TestKeyLabels(t *testing.T) {
	k := Key{ResourceExpense, CategoryAction, ActionViewReceipt}

	assert.Equal(t, "费用管理", k.PageName())
	assert.Equal(t, "费用管理-查看收费凭证", k.Description())
}

func TestParseResource(t *testing.T) {
	r, ok := ParseResource("customer")
	assert.True(t, ok)
	assert.Equal(t, ResourceCustomer, r)

	_, ok = ParseResource("zone")
	assert.False(t, ok)

	assert.Equal(t, []string{ActionCreate, ActionEdit, ActionDelete}, Actions(ResourceContract))
}
