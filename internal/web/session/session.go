// Package session keeps the allow-list of issued refresh tokens.
// A refresh token is only accepted while its id is stored here.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// ErrSessionNotFound is returned when a refresh token id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store //nolint:gochecknoglobals

// Data represents the session data stored per refresh token id.
type Data struct {
	UserID   uint64 `json:"userId"`
	Username string `json:"username"`
}

// Write writes the session data for the given refresh token id with an expiration duration.
func (s *Data) Write(id string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(id, out, exp)
}

// Read reads the session data for the given refresh token id.
func (s *Data) Read(id string) error {
	byteData, err := Store.Storage.Get(id)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrSessionNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Delete revokes a refresh token id.
func Delete(id string) error {
	return Store.Storage.Delete(id)
}

// Init initializes the session store with the provided storage backend.
// A nil storage keeps sessions in memory.
func Init(storage fiber.Storage) {
	Store = session.New(session.Config{
		Storage: storage,
	})
}
