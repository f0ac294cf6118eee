package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskwell/taskwell-api/internal/api"
	apiMiddleware "github.com/taskwell/taskwell-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.config.Auth, app.jwtService, app.passwordVerifier)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	taskHandler := api.NewTaskHandler(app.taskService, app.projectService)
	projectHandler := api.NewProjectHandler(app.projectService)
	boardHandler := api.NewBoardHandler(app.taskService, app.boardService)
	importHandler := api.NewImportHandler(app.importService)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task endpoints
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)
			r.Post("/tasks/{id}/notes", taskHandler.CreateTaskNote)
			r.Get("/tasks/{id}/notes", taskHandler.ListTaskNotes)

			// Project endpoints
			r.Post("/projects", projectHandler.CreateProject)
			r.Get("/projects", projectHandler.ListProjects)
			r.Get("/projects/{id}", projectHandler.GetProject)
			r.Patch("/projects/{id}", projectHandler.UpdateProject)
			r.Delete("/projects/{id}", projectHandler.DeleteProject)
			r.Post("/projects/{id}/notes", projectHandler.CreateProjectNote)
			r.Get("/projects/{id}/notes", projectHandler.ListProjectNotes)

			// Board endpoints
			r.Get("/board", boardHandler.GetBoard)
			r.Post("/board/reorder", boardHandler.Reorder)

			// Import endpoints
			r.Post("/imports/preview", importHandler.Preview)
			r.Post("/imports/commit", importHandler.Commit)
			r.Get("/imports/sources", importHandler.SourceStats)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
