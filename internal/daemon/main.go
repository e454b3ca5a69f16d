// Package daemon wires the configuration, database, session storage and web service together.
package daemon

import (
	"strconv"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/dsn"
	"github.com/zhongyue-admin/zhongyue-admin/internal/db/models"
	"github.com/zhongyue-admin/zhongyue-admin/internal/logger"
	gormadapter "github.com/zhongyue-admin/zhongyue-admin/internal/logger/adapter/gorm"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web"
	"github.com/zhongyue-admin/zhongyue-admin/internal/web/session"
)

const sessionTable = "sessions"

// ErrConfigNil is returned when no configuration is given.
var ErrConfigNil = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it is shut down.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
// The schema is migrated and the initial data seeded before the web service is built.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}

	db, storage, err := open(cfg)
	if err != nil {
		return nil, err
	}

	if err = migrate(cfg, db); err != nil {
		return nil, err
	}

	session.Init(storage)

	log.Info().Str("engine", cfg.DB.GormEngine).Int("port", cfg.Webserver.Port).Msg("daemon initialized")

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}, nil
}

// Migrate migrates the schema and seeds the initial data without starting the web service.
func Migrate(cfg *config.Config) error {
	if cfg == nil {
		return ErrConfigNil
	}

	if err := logger.Init(cfg.Log); err != nil {
		return errors.Wrap(err, "failed to init logger")
	}

	db, _, err := open(cfg)
	if err != nil {
		return err
	}

	return migrate(cfg, db)
}

func migrate(cfg *config.Config, db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return seed(cfg, db)
}

// open connects gorm and selects the session storage matching the configured engine.
// sqlite keeps sessions in memory.
func open(cfg *config.Config) (*gorm.DB, fiber.Storage, error) {
	var (
		dialector gorm.Dialector
		storage   fiber.Storage
	)

	switch cfg.DB.GormEngine {
	case config.GormEngineMySQL:
		dialector = gormmysql.Open(dsn.Create(cfg))
	case config.GormEnginePostgres:
		dialector = gormpostgres.Open(dsn.Postgres(cfg))
	case config.GormEngineSQLite:
		dialector = sqlite.Open(cfg.DB.Name)
	default:
		return nil, nil, errors.Wrap(config.ErrUnsupportedGormEngine, cfg.DB.GormEngine)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormadapter.New(cfg.Log)})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect database")
	}

	switch cfg.DB.GormEngine {
	case config.GormEngineMySQL:
		storage = sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.GormEnginePostgres:
		storage = sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         sessionTable,
		})
	}

	return db, storage, nil
}
