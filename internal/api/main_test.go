package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"photogenie/internal/config"
	"photogenie/internal/database"
	"photogenie/internal/events"
	"photogenie/internal/storage"
	"photogenie/internal/websocket"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testServer    *Server
	testRouter    http.Handler
	testPublished *recordingPublisher
)

// recordingPublisher keeps every event the handlers publish.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) find(eventType string, match func(events.Event) bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.EventType == eventType && match(e) {
			return true
		}
	}
	return false
}

func testConfig(storagePath string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
		JWT: config.JWTConfig{
			Secret:     "api_test_secret",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		Storage:   config.StorageConfig{Path: storagePath, MaxUploadBytes: 1 << 20},
		RateLimit: config.RateLimitConfig{Requests: 10000, Window: time.Minute},
		AppHost:   "localhost:8080",
	}
}

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:14-alpine",
		postgres.WithDatabase("test_api_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		log.Fatalf("Could not start postgres: %s", err)
	}
	defer pgContainer.Terminate(ctx)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("Could not get connection string: %s", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile("../../db/init.sql")
	if err != nil {
		log.Fatalf("Could not read schema file: %s", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Could not apply schema: %s", err)
	}

	tempDir, err := os.MkdirTemp("", "api-storage-test")
	if err != nil {
		log.Fatalf("Could not create temp dir: %s", err)
	}
	defer os.RemoveAll(tempDir)

	localStorage, err := storage.NewLocalStorage(tempDir)
	if err != nil {
		log.Fatalf("Could not create local storage: %s", err)
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()

	testPublished = &recordingPublisher{}
	store := database.NewStore(pool)
	testServer = NewServer(testConfig(tempDir), store, localStorage, wsHub, events.Fanout{wsHub, testPublished})
	testRouter = testServer.Routes()

	return m.Run()
}
