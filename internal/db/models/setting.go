package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a named JSON document, e.g. the role to location mapping.
type Setting struct {
	ID        uint64         `gorm:"primaryKey"`
	Name      string         `gorm:"uniqueIndex;size:100;not null"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}
