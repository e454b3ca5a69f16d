// Package locationscope stores the role to location mapping used by the
// view_by_location data scope.
package locationscope

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/db/controller/setting"
)

const (
	// SettingKeyLocationScopes is the key used to store the mapping in the settings table.
	SettingKeyLocationScopes = "location_scopes"
)

// Settings maps a role name to the location substring its holders may see.
type Settings struct {
	Scopes map[string]string `json:"scopes" validate:"dive,keys,required,endkeys,required"`
}

// Load loads the mapping from the database.
// It returns setting.ErrSettingNotFound if nothing was stored yet.
func (s *Settings) Load(db *gorm.DB) error {
	if err := setting.Load(db, SettingKeyLocationScopes, s); err != nil {
		return err
	}

	if s.Scopes == nil {
		s.Scopes = map[string]string{}
	}

	return nil
}

// Save replaces the stored mapping.
func (s *Settings) Save(db *gorm.DB) error {
	if err := s.Validate(); err != nil {
		return err
	}

	return setting.Store(db, SettingKeyLocationScopes, s)
}

// Validate trims the mapping and rejects empty role names or locations.
func (s *Settings) Validate() error {
	trimmed := make(map[string]string, len(s.Scopes))
	for role, loc := range s.Scopes {
		trimmed[strings.TrimSpace(role)] = strings.TrimSpace(loc)
	}

	s.Scopes = trimmed

	return validator.New().Struct(s)
}

// Rename moves the mapping of a renamed role. Nothing is stored if the role had no mapping.
func Rename(db *gorm.DB, oldName, newName string) error {
	var s Settings
	if err := s.Load(db); err != nil {
		if errors.Is(err, setting.ErrSettingNotFound) {
			return nil
		}

		return err
	}

	loc, ok := s.Scopes[oldName]
	if !ok || oldName == newName {
		return nil
	}

	delete(s.Scopes, oldName)
	s.Scopes[newName] = loc

	return s.Save(db)
}

// Remove drops the mapping of a deleted role.
func Remove(db *gorm.DB, name string) error {
	var s Settings
	if err := s.Load(db); err != nil {
		if errors.Is(err, setting.ErrSettingNotFound) {
			return nil
		}

		return err
	}

	if _, ok := s.Scopes[name]; !ok {
		return nil
	}

	delete(s.Scopes, name)

	return s.Save(db)
}

// SeedFromConfig stores scopes unless a mapping already exists.
// It reports whether anything was written.
func SeedFromConfig(db *gorm.DB, scopes map[string]string) (bool, error) {
	exists, err := setting.Exists(db, SettingKeyLocationScopes)
	if err != nil || exists {
		return false, err
	}

	s := Settings{Scopes: scopes}
	if s.Scopes == nil {
		s.Scopes = map[string]string{}
	}

	if err = s.Save(db); err != nil {
		return false, err
	}

	return true, nil
}
