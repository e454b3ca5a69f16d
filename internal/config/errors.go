package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrTokenSecretEmpty error if no token signing secret was configured.
	ErrTokenSecretEmpty = errors.New("toml config webserver.token.secret can not be empty")

	// ErrUnsupportedGormEngine error if db.gormengine is not mysql, postgres or sqlite.
	ErrUnsupportedGormEngine = errors.New("toml config db.gormengine is not supported")

	// ErrDuplicateLocationScope error if a role is bound to more than one location.
	ErrDuplicateLocationScope = errors.New("toml config locationscopes contains a role twice")
)
