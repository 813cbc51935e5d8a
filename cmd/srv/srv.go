package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/soundtrail/backend/config"
	"github.com/soundtrail/backend/internal/domain"
	"github.com/soundtrail/backend/internal/domain/session"
	"github.com/soundtrail/backend/internal/domain/upstream"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/migration"
	"github.com/soundtrail/backend/pkg/api/spotify"
	"github.com/soundtrail/backend/pkg/authenticator"
	"github.com/soundtrail/backend/pkg/logger"
	"github.com/soundtrail/backend/pkg/router"
	"github.com/soundtrail/backend/pkg/xcontext"
	"github.com/soundtrail/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs config.Configs

	userRepo             repository.UserRepository
	refreshTokenRepo     repository.RefreshTokenRepository
	listeningHistoryRepo repository.ListeningHistoryRepository

	spotifyEndpoint spotify.IEndpoint
	rateLimitWindow upstream.RateLimitWindow

	issuer   *session.Issuer
	verifier *session.Verifier
	caller   *upstream.Caller

	authDomain      domain.AuthDomain
	userDomain      domain.UserDomain
	dashboardDomain domain.DashboardDomain

	router *router.Router
	server *http.Server
}

// loadConfig reads the config file, then the flags, and binds the result
// and a logger to the root context.
func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	overrideConfigs(cctx, &cfg)
	s.configs = cfg

	s.ctx = cctx.Context
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.loadLogger()
	return nil
}

func (s *srv) loadLogger() {
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(s.configs.LogLevel)))
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := s.configs.Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Error
	}
}

func (s *srv) migrateDB() error {
	return migration.Migrate(s.ctx)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.refreshTokenRepo = repository.NewRefreshTokenRepository()
	s.listeningHistoryRepo = repository.NewListeningHistoryRepository()
}

func (s *srv) loadEndpoint() error {
	s.ctx = xcontext.WithTokenEngine(s.ctx, authenticator.NewTokenEngine(s.configs.Auth.TokenSecret))

	oauth2Config, err := authenticator.NewOAuth2Config(s.ctx, s.configs.Spotify)
	if err != nil {
		return err
	}

	s.spotifyEndpoint = spotify.New(oauth2Config, s.configs.Spotify)
	return nil
}

// loadRateLimitWindow shares the window through redis when enabled, so the
// api and the cron worker back off together.
func (s *srv) loadRateLimitWindow() error {
	if !s.configs.Redis.Enable {
		s.rateLimitWindow = upstream.NewMemoryWindow()
		return nil
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		return err
	}

	s.rateLimitWindow = upstream.NewRedisWindow(redisClient, s.configs.Spotify.Name)
	return nil
}

func (s *srv) loadDomains() {
	s.issuer = session.NewIssuer(s.refreshTokenRepo)
	s.verifier = session.NewVerifier(s.userRepo)
	s.caller = upstream.NewCaller(s.rateLimitWindow, upstream.NewRefresher(s.userRepo, s.spotifyEndpoint))

	s.authDomain = domain.NewAuthDomain(s.userRepo, s.issuer, s.spotifyEndpoint)
	s.userDomain = domain.NewUserDomain(s.userRepo)
	s.dashboardDomain = domain.NewDashboardDomain(
		s.userRepo, s.listeningHistoryRepo, s.caller, s.spotifyEndpoint)
}

// loadService prepares everything the api and the cron worker share.
func (s *srv) loadService() error {
	if err := s.configs.Validate(); err != nil {
		return err
	}

	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.migrateDB(); err != nil {
		return err
	}

	if err := s.loadEndpoint(); err != nil {
		return err
	}

	if err := s.loadRateLimitWindow(); err != nil {
		return err
	}

	s.loadRepos()
	s.loadDomains()
	return nil
}
