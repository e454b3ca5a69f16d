package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the wire format of Date.
const DateLayout = time.DateOnly

// MonthLayout is accepted on input and resolved by the caller to a day.
const MonthLayout = "2006-01"

// Date is a calendar date stored in a DATE column and encoded as "2006-01-02" in JSON.
type Date datatypes.Date

// NewDate truncates t to its date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()

	return Date(time.Date(y, m, d, 0, 0, 0, 0, time.Local))
}

// ParseDate parses "2006-01-02". A "2006-01" month resolves to its first day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return Date(t), nil
	}

	t, err := time.ParseInLocation(MonthLayout, s, time.Local)
	if err != nil {
		return Date{}, err //nolint:wrapcheck
	}

	return Date(t), nil
}

// EndOfMonth returns the last day of the month of d.
func (d Date) EndOfMonth() Date {
	t := time.Time(d)

	return Date(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()))
}

// Time returns d as time.Time.
func (d Date) Time() time.Time {
	return time.Time(d)
}

// String formats d as "2006-01-02", the zero date as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return time.Time(d).Format(DateLayout)
}

// GormDataType implements schema.GormDataTypeInterface.
func (Date) GormDataType() string {
	return "date"
}

// Scan implements sql.Scanner. NULL resets d to the zero date.
func (d *Date) Scan(value interface{}) error {
	if value == nil {
		*d = Date{}
		return nil
	}

	return (*datatypes.Date)(d).Scan(value)
}

// Value implements driver.Valuer. The zero date is stored as NULL.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil //nolint:nilnil
	}

	return datatypes.Date(d).Value()
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

// MarshalJSON encodes the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "2006-01-02", "2006-01" and RFC 3339 timestamps.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err //nolint:wrapcheck
	}

	if s == "" {
		*d = Date{}
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = NewDate(t)
		return nil
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
