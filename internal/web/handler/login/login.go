package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/session"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.RootPath + "login"
	// RefreshPath exchanges a refresh token for a new token pair.
	RefreshPath = handler.RootPath + "refresh-token"
	// LogoutPath revokes a refresh token.
	LogoutPath = handler.RootPath + "logout"
)

// Service is the login handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	tokens      *auth.TokenManager
	local       *auth.LocalProvider
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken" validate:"required"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	Expires      string   `json:"expires"`
	Username     string   `json:"username"`
	Nickname     string   `json:"nickname"`
	Avatar       string   `json:"avatar"`
	Roles        []string `json:"roles"`
}

// Init registers the token endpoints.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service,
	tokens *auth.TokenManager,
) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.tokens = tokens
	s.authService = authService
	s.local = auth.NewLocalProvider(db)
	s.validator = validator.New()

	app.Post(Path, s.Login)
	app.Post(RefreshPath, s.Refresh)
	app.Post(LogoutPath, s.Logout)
}

// Login checks the credentials and issues a token pair.
func (s *Service) Login(c *fiber.Ctx) error {
	req := new(loginRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, ErrInvalidFormData.Error())
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	user, err := s.local.Authenticate(c.UserContext(), req.Username, req.Password)

	switch {
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		log.Warn().Str("user", req.Username).Msg("login failed")
		return handler.Fail(c, fiber.StatusUnauthorized, "用户名或密码错误")
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return handler.Fail(c, fiber.StatusForbidden, "账号已停用")
	case err != nil:
		return handler.InternalError(c, err, "登录失败")
	}

	return s.issue(c, user)
}

// Refresh exchanges a refresh token that is still on the allow-list.
// The old refresh token is revoked.
func (s *Service) Refresh(c *fiber.Ctx) error {
	req := new(refreshRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, ErrInvalidFormData.Error())
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.ValidationFailed(c, err)
	}

	claims, err := s.tokens.Parse(req.RefreshToken, auth.TokenRefresh)
	if err != nil {
		return handler.Fail(c, fiber.StatusUnauthorized, "登录已过期")
	}

	userID, err := claims.UserID()
	if err != nil {
		return handler.Fail(c, fiber.StatusUnauthorized, "登录已过期")
	}

	data := new(session.Data)
	if err = data.Read(claims.ID); err != nil || data.UserID != userID {
		log.Warn().Err(errors.Join(ErrSessionRevoked, err)).Uint64("user_id", userID).Msg("refresh rejected")
		return handler.Fail(c, fiber.StatusUnauthorized, "登录已过期")
	}

	user, err := s.authService.User(c.UserContext(), userID)
	if err != nil {
		return handler.Fail(c, fiber.StatusUnauthorized, "登录已过期")
	}

	if err = session.Delete(claims.ID); err != nil {
		return handler.InternalError(c, err, "刷新失败")
	}

	return s.issue(c, user)
}

// Logout revokes the refresh token. Unknown or invalid tokens are ignored.
func (s *Service) Logout(c *fiber.Ctx) error {
	req := new(refreshRequest)
	if err := c.BodyParser(req); err == nil && req.RefreshToken != "" {
		if claims, errParse := s.tokens.Parse(req.RefreshToken, auth.TokenRefresh); errParse == nil {
			if errDel := session.Delete(claims.ID); errDel != nil {
				log.Error().Err(errDel).Msg("failed to revoke refresh token")
			}
		}
	}

	return handler.Message(c, "已退出登录")
}

func (s *Service) issue(c *fiber.Ctx, user *models.User) error {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return handler.InternalError(c, err, "登录失败")
	}

	data := &session.Data{UserID: user.ID, Username: user.Username}
	if err = data.Write(pair.RefreshID, s.tokens.RefreshTTL()); err != nil {
		return handler.InternalError(c, err, "登录失败")
	}

	roles, err := s.authService.RoleNames(c.UserContext(), user.ID)
	if err != nil {
		return handler.InternalError(c, err, "登录失败")
	}

	return handler.OK(c, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Expires:      pair.AccessExpires.Format("2006/01/02 15:04:05"),
		Username:     user.Username,
		Nickname:     user.DisplayName(),
		Avatar:       user.Avatar,
		Roles:        roles,
	})
}
