package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/ws"
)

// application holds the shared application dependencies so wiring and
// cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService  auth.JWTService
	sessions    *auth.SessionManager
	taskService service.TaskService

	eventEmitter events.Emitter
	hub          *ws.Hub
}

// newApplication wires every dependency. Configuration, logging and the
// database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"access_token_lifetime_minutes", cfg.Auth.AccessTokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	app.sessions = auth.NewSessionManager(app.userStore, app.jwtService, hasher, hasher)

	emitter := events.NewInMemoryEmitter(logger)
	app.eventEmitter = emitter

	app.taskService, err = service.NewTaskService(app.taskStore, emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	// The hub receives every task event and fans it out to websocket clients.
	app.hub = ws.NewHub(logger)
	emitter.RegisterHandler(app.hub)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the websocket hub and the HTTP server, blocking until
// shutdown completes.
func (app *application) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go app.hub.Run(hubCtx)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// refreshTokenLifetime converts the configured refresh lifetime for the
// auth handler's cookie.
func (app *application) refreshTokenLifetime() time.Duration {
	return time.Duration(app.config.Auth.RefreshTokenLifetimeMinutes) * time.Minute
}

// cleanup releases application resources after the server has stopped.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
