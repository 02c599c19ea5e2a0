package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/donutdot/internal/api"
	"github.com/dom/donutdot/internal/api/handlers"
	"github.com/dom/donutdot/internal/cache"
	"github.com/dom/donutdot/internal/config"
	"github.com/dom/donutdot/internal/notify"
	repoPostgres "github.com/dom/donutdot/internal/repository/postgres"
	"github.com/dom/donutdot/internal/service"
	"github.com/dom/donutdot/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AdminSecret is the plaintext matching TestConfig's AdminSecretHash.
const AdminSecret = "test-admin-secret"

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_donutdot"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(repoPostgres.Models()...); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"reports",
		"chat_sessions",
		"passes",
		"matches",
		"likes",
		"profiles",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// NewTestRedis starts a redis container and returns a connected wrapper.
func NewTestRedis(t *testing.T) *cache.Redis {
	t.Helper()

	ctx := context.Background()

	container, err := tcRedis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	rdb, err := cache.NewRedis(url)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() {
		rdb.Close()
	})

	return rdb
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	cfg := config.Default()
	cfg.Port = "0"
	cfg.Environment = "test"
	cfg.JWTSecret = "test-jwt-secret-key-for-testing-only"
	cfg.JWTExpirationHours = 1
	cfg.ChannelSecret = "test-channel-secret"
	cfg.CronSecret = "test-cron-secret"
	cfg.PaymentSecret = "test-payment-secret"
	cfg.AdminSecretHash = hashSecret(AdminSecret)
	cfg.NotifyTimeout = time.Second
	return cfg
}

func hashSecret(secret string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

// TestServer holds all components for HTTP integration testing. Storage is
// in memory so handler tests run without containers.
type TestServer struct {
	Server   *httptest.Server
	Store    *MemoryStore
	Cache    *MemoryCache
	Services *service.Services
	Hub      *websocket.Hub
	Notifier *RecordingNotifier
	Clock    *FakeClock
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig()
	store := NewMemoryStore()
	memCache := NewMemoryCache()
	clock := NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	recorder := NewRecordingNotifier()

	hub := websocket.NewHub()
	go hub.Run()

	services := service.NewServices(service.Deps{
		Repos:      store.Repositories(),
		Onboarding: memCache,
		Browse:     memCache,
		Verify:     memCache,
		Notifier:   notify.Multi{recorder, hub},
		Config:     cfg,
		Now:        clock.Now,
	})

	router := api.NewRouter(api.RouterDeps{
		Services: services,
		Hub:      hub,
		Limiter:  memCache,
		Health:   map[string]handlers.Pinger{},
		Config:   cfg,
	})

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Store:    store,
		Cache:    memCache,
		Services: services,
		Hub:      hub,
		Notifier: recorder,
		Clock:    clock,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:]
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}

// TokenFor mints a bearer token for userID.
func (ts *TestServer) TokenFor(t *testing.T, userID int64) string {
	t.Helper()
	result, err := ts.Services.Auth.IssueToken(userID)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return result.AccessToken
}
