package handler

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
)

// AutocompleteLimit is the number of suggestions returned by autocomplete endpoints.
const AutocompleteLimit = 10

// ErrInvalidDate is returned for dates that are neither "2006-01-02" nor "2006-01".
var ErrInvalidDate = errors.New("invalid date")

// Contains matches column against value as a case-insensitive substring. Empty values
// match everything.
func Contains(column, value string) func(*gorm.DB) *gorm.DB {
	value = strings.TrimSpace(value)

	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}

		cond, arg := auth.ContainsClause(column, value)

		return db.Where(cond, arg)
	}
}

// Equals matches column against value. Empty values match everything.
func Equals(column, value string) func(*gorm.DB) *gorm.DB {
	value = strings.TrimSpace(value)

	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}

		return db.Where(column+" = ?", value)
	}
}

// ParseStartDate parses a date; a month resolves to its first day.
func ParseStartDate(s string) (*models.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil //nolint:nilnil
	}

	d, err := models.ParseDate(s)
	if err != nil {
		return nil, ErrInvalidDate
	}

	return &d, nil
}

// ParseEndDate parses a date; a month resolves to its last day.
func ParseEndDate(s string) (*models.Date, error) {
	s = strings.TrimSpace(s)

	d, err := ParseStartDate(s)
	if err != nil || d == nil {
		return d, err
	}

	if len(s) == len(models.MonthLayout) {
		end := d.EndOfMonth()
		return &end, nil
	}

	return d, nil
}

// DateRange parses an inclusive range. ok is false unless both bounds are given.
func DateRange(from, to string) (start, end *models.Date, ok bool, err error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, nil, false, nil
	}

	if start, err = ParseStartDate(from); err != nil {
		return nil, nil, false, err
	}

	if end, err = ParseEndDate(to); err != nil {
		return nil, nil, false, err
	}

	return start, end, true, nil
}

// Autocomplete returns up to AutocompleteLimit distinct non-empty values of column
// containing query, case-insensitive. column must come from an allow-list.
func Autocomplete(db *gorm.DB, column, query string) ([]string, error) {
	values := []string{}
	cond, arg := auth.ContainsClause(column, strings.TrimSpace(query))

	err := db.
		Where(column+" <> ''").
		Where(cond, arg).
		Distinct().
		Order(column).
		Limit(AutocompleteLimit).
		Pluck(column, &values).Error

	return values, err
}
