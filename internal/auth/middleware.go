package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	// LocalsClaims is the fiber.Locals key of the verified access token claims.
	LocalsClaims = "claims"

	localsAccessPrefix = "access:"
	bearerPrefix       = "Bearer "
)

func deny(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// Authenticate verifies the bearer access token and stores its claims in fiber.Locals.
func Authenticate(tokens *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return deny(c, fiber.StatusUnauthorized, "未登录")
		}

		claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)), TokenAccess)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("rejected access token")
			return deny(c, fiber.StatusUnauthorized, "登录已过期")
		}

		c.Locals(LocalsClaims, claims)

		return c.Next()
	}
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(LocalsClaims).(*Claims)

	return claims, ok && claims != nil
}

// Username returns the authenticated username or an empty string.
func Username(c *fiber.Ctx) string {
	if claims, ok := ClaimsFromContext(c); ok {
		return claims.Username
	}

	return ""
}

// AccessFromContext resolves the access of the authenticated user on resource.
// The result is kept in fiber.Locals for the rest of the request.
func AccessFromContext(c *fiber.Ctx, s *Service, resource Resource) (*Access, error) {
	key := localsAccessPrefix + string(resource)
	if a, ok := c.Locals(key).(*Access); ok && a != nil {
		return a, nil
	}

	claims, ok := ClaimsFromContext(c)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	a, err := s.Access(c.UserContext(), userID, resource)
	if err != nil {
		return nil, err
	}

	c.Locals(key, a)

	return a, nil
}

// RequireAccess loads the access of the user on resource and rejects users that
// cannot be resolved.
func RequireAccess(s *Service, resource Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := AccessFromContext(c, s, resource); err != nil {
			return accessError(c, err)
		}

		return c.Next()
	}
}

// RequireAction rejects users without the action flag on resource.
func RequireAction(s *Service, resource Resource, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := AccessFromContext(c, s, resource)
		if err != nil {
			return accessError(c, err)
		}

		if !a.Can(action) {
			log.Warn().Str("user", a.User.Username).Str("resource", string(resource)).Str("action", action).
				Msg("user lacks required permission")

			return deny(c, fiber.StatusForbidden, "没有权限")
		}

		return c.Next()
	}
}

// RequireAdmin rejects users without an admin role.
func RequireAdmin(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return deny(c, fiber.StatusUnauthorized, "未登录")
		}

		userID, err := claims.UserID()
		if err != nil {
			return deny(c, fiber.StatusUnauthorized, "登录已过期")
		}

		isAdmin, err := s.IsAdmin(c.UserContext(), userID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Msg("failed to check admin role")
			return deny(c, fiber.StatusInternalServerError, "服务器错误")
		}

		if !isAdmin {
			log.Warn().Uint64("user_id", userID).Str("path", c.Path()).Msg("user is not an admin")
			return deny(c, fiber.StatusForbidden, "没有权限")
		}

		return c.Next()
	}
}

func accessError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrUserAccountDisabled):
		return deny(c, fiber.StatusUnauthorized, "未登录")
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("failed to resolve permissions")
		return deny(c, fiber.StatusInternalServerError, "服务器错误")
	}
}
