package config

import (
	"time"

	"github.com/zhongyue-admin/zhongyue-admin/internal/logger"
)

// Token settings for the issued JWTs.
type Token struct {
	Secret     string        // HMAC secret used to sign access and refresh tokens
	Issuer     string        // iss claim
	AccessTTL  time.Duration // lifetime of an access token
	RefreshTTL time.Duration // lifetime of a refresh token
}

// Auth settings.
type Auth struct {
	// AdminRoleCodes lists the role codes that grant access to the user, role,
	// department and permission management endpoints.
	AdminRoleCodes []string
}

// LocationScope binds a role name to the location substring used when that role
// is allowed to view records by location.
type LocationScope struct {
	Role     string
	Location string
}

// Seed holds the initial admin account created on an empty database.
type Seed struct {
	AdminUsername string
	AdminPassword string
	AdminRoleName string
	AdminRoleCode string
}

// Config overall data structure.
type Config struct {
	DevMode        bool // enable dev mode for development
	DB             DB
	Log            logger.Log
	Title          string
	Webserver      Webserver
	Auth           Auth
	LocationScopes []LocationScope
	Seed           Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	CaseSensitive  bool   // enable case sensitive routing
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	BodyLimit      int    // max request body size in bytes
	Token          Token  // token settings
}
