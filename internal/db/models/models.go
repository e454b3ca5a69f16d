// Package models contains the database models.
package models

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&Department{},
		&User{},
		&Role{},
		&UserRole{},
		&Permission{},
		&Setting{},
		&Contract{},
		&Customer{},
		&Expense{},
	}
}
