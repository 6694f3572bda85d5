package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoProfilePortal/GoProfilePortal/internal/auth"
	"github.com/GoProfilePortal/GoProfilePortal/internal/config"
	"github.com/GoProfilePortal/GoProfilePortal/internal/db/dsn"
	"github.com/GoProfilePortal/GoProfilePortal/internal/db/models"
	"github.com/GoProfilePortal/GoProfilePortal/internal/web"
)

const providerSetupTimeout = 30 * time.Second

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(&models.User{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	provider := newOIDCProvider(cfg)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, provider),
	}
}

// openDialector picks the gorm driver for the configured engine. SQLite is
// the default so a bare config boots without a database server.
func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.GormEngine {
	case config.GormEngineMySQL:
		return gormmysql.Open(dsn.Create(cfg))
	case config.GormEnginePostgres:
		return gormpostgres.Open(dsn.Create(cfg))
	default:
		return sqlite.Open(dsn.Create(cfg))
	}
}

// newOIDCProvider runs the OIDC discovery against the configured issuer. A
// discovery failure is logged but not fatal; the portal still serves pages,
// only the login routes answer 503.
func newOIDCProvider(cfg *config.Config) *auth.OIDCProvider {
	ctx, cancel := context.WithTimeout(context.Background(), providerSetupTimeout)
	defer cancel()

	provider, err := auth.NewOIDCProvider(ctx, &auth.OIDCConfig{
		ProviderURL:     cfg.Auth.OIDC.ProviderURL,
		ClientID:        cfg.Auth.OIDC.ClientID,
		ClientSecret:    cfg.Auth.OIDC.ClientSecret,
		RedirectURL:     cfg.Auth.OIDC.RedirectURL,
		Scopes:          cfg.Auth.OIDC.Scopes,
		EndSessionURL:   cfg.Auth.OIDC.EndSessionURL,
		ExchangeTimeout: cfg.Auth.OIDC.ExchangeTimeout,
	})
	if err != nil {
		log.Error().Err(err).Str("issuer", cfg.Auth.OIDC.ProviderURL).Msg("OIDC discovery failed, login disabled")
		return nil
	}

	return provider
}
