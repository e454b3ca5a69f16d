package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
)

// PublicPaths are reachable without an access token.
var PublicPaths = []string{ //nolint:gochecknoglobals
	"/login",
	"/refresh-token",
	"/logout",
	"/checkalive",
	"/metrics",
}

// Middleware returns a Fiber middleware that requires a valid access token on
// every path except PublicPaths.
func Middleware(tokens *auth.TokenManager) fiber.Handler {
	authenticate := auth.Authenticate(tokens)

	return func(c *fiber.Ctx) error {
		if IsPublic(c) {
			return c.Next()
		}

		return authenticate(c)
	}
}

// IsPublic checks if the current request is for a public path.
func IsPublic(c *fiber.Ctx) bool {
	path := strings.ToLower(c.Path())

	for _, p := range PublicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}

	return false
}
