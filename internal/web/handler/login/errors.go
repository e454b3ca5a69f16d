// Package login provides the token endpoints: login, refresh and logout.
//
// This file defines exported error values used throughout the login flow.
package login

import "errors"

var (
	// ErrInvalidFormData is returned when the submitted body cannot be parsed
	// or fails validation.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrInvalidCredentials is returned when the provided username and/or password
	// are not valid.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionRevoked is returned when a refresh token is no longer on the allow-list.
	ErrSessionRevoked = errors.New("session revoked")
)
