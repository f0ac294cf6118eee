package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/platform/postgres"
	"github.com/taskwell/taskwell-api/internal/service"
	"github.com/taskwell/taskwell-api/internal/service/auth"
	"github.com/taskwell/taskwell-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	taskStore         store.TaskStore
	projectStore      store.ProjectStore
	contentStore      store.ContentStore
	activityStore     store.ActivityStore
	importSourceStore store.ImportSourceStore
	transactor        store.Transactor

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	taskService      service.TaskService
	projectService   service.ProjectService
	boardService     service.BoardService
	importService    service.ImportService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger,
// and database connection that must be established before application
// initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize password verifier
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Initialize stores
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.projectStore = postgres.NewPostgresProjectStore(db, logger)
	app.contentStore = postgres.NewPostgresContentStore(db, logger)
	app.activityStore = postgres.NewPostgresActivityStore(db, logger)
	app.importSourceStore = postgres.NewPostgresImportSourceStore(db, logger)
	app.transactor = store.NewTransactor(db)

	// Initialize services
	app.taskService, err = service.NewTaskService(
		app.taskStore,
		app.projectStore,
		app.activityStore,
		app.transactor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.projectService, err = service.NewProjectService(
		app.projectStore,
		app.taskStore,
		app.contentStore,
		app.activityStore,
		app.transactor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project service: %w", err)
	}

	app.boardService, err = service.NewBoardService(
		app.taskStore,
		app.activityStore,
		app.transactor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create board service: %w", err)
	}

	app.importService, err = service.NewImportService(
		app.taskStore,
		app.projectStore,
		app.contentStore,
		app.activityStore,
		app.importSourceStore,
		app.transactor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create import service: %w", err)
	}

	// The Inbox must exist before any task can fall back to it.
	if _, err := app.projectStore.EnsureInbox(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure inbox project: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
}
