package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/auth"
	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	fiberlogger "github.com/zhongyue-admin/zhongyue-admin/internal/logger/adapter/fiber"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/admin/dept"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/admin/permission"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/admin/role"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/admin/user"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/contract"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/customer"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/expense"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/handler/login"
	webauth "github.com/zhongyue-admin/zhongyue-admin/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
	tokens       *auth.TokenManager
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a termination signal and shuts the web service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive reports 200 while the service accepts traffic and 503 during shutdown.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  cfg.Webserver.CaseSensitive,
			BodyLimit:      cfg.Webserver.BodyLimit,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   errorHandler,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
		User:          auth.Username,
	}))

	tokens := auth.NewTokenManager(
		cfg.Webserver.Token.Secret,
		cfg.Webserver.Token.Issuer,
		cfg.Webserver.Token.AccessTTL,
		cfg.Webserver.Token.RefreshTTL,
	)
	authService := auth.NewService(db, cfg.Auth.AdminRoleCodes...)

	service := &Service{
		cfg:          cfg,
		App:          app,
		db:           db,
		authService:  authService,
		tokens:       tokens,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.CheckAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(webauth.Middleware(tokens))

	login.Handler.Init(app, cfg, db, authService, tokens)

	for _, h := range []handler.Service{
		&user.Handler,
		&role.Handler,
		&dept.Handler,
		&permission.Handler,
		&expense.Handler,
		&customer.Handler,
		&contract.Handler,
	} {
		h.Init(app, cfg, db, authService)
	}

	return service
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		return handler.InternalError(c, err, "服务器错误")
	}

	return handler.Fail(c, code, err.Error())
}
