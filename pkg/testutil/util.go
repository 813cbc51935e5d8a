package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/soundtrail/backend/config"
	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/pkg/authenticator"
	"github.com/soundtrail/backend/pkg/logger"
	"github.com/soundtrail/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const ServerState = "some-state-of-my-choice"

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.Env = "test"
	cfg.Auth.TokenSecret = "secret"
	cfg.Auth.AccessToken.Expiration = time.Minute
	cfg.Auth.LongExpirationMonths = 1
	cfg.Spotify.ClientID = "client"
	cfg.Spotify.ClientSecret = "client-secret"
	cfg.Spotify.RedirectURL = "https://example.com/callback"
	cfg.Spotify.State = ServerState
	cfg.Spotify.RequestTimeout = time.Second
	cfg.Spotify.DefaultRetryAfter = 5 * time.Second
	return cfg
}

// NewMockDB opens an empty in-memory sqlite database.
func NewMockDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Every connection to ":memory:" opens a new empty database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db
}

// MockContextWithDB binds configs, a silent logger, the token engine and db to
// a background context. Tables are not created.
func MockContextWithDB(db *gorm.DB) context.Context {
	cfg := MockConfigs()

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithDB(ctx, db)
	return ctx
}

func MockContext() context.Context {
	ctx := MockContextWithDB(NewMockDB())
	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}

// Clock is a manually driven time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// WithMockClock binds a Clock starting at FixtureTime to ctx.
func WithMockClock(ctx context.Context) (context.Context, *Clock) {
	clock := NewClock(FixtureTime)
	return xcontext.WithClock(ctx, clock.Now), clock
}
