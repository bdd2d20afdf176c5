package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/worktrack/worktrack-api/internal/api"
	apiMiddleware "github.com/worktrack/worktrack-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	jobsHandler := api.NewJobsHandler(app.taskService, app.reminderService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.CreateTask)
			r.Get("/", taskHandler.ListTasks)
			r.Get("/search", taskHandler.SearchTasks)

			// Static status views before the wildcard status match.
			r.Get("/status/overdue", taskHandler.ListOverdue)
			r.Get("/status/active", taskHandler.ListActive)
			r.Get("/status/{status}", taskHandler.ListByStatus)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Post("/hours", taskHandler.LogHours)
				r.Get("/daily-hours", taskHandler.DailyHours)
			})
		})

		r.Route("/employees/{employeeID}/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.EmployeeTasks)
			r.Get("/private", taskHandler.EmployeePrivateTasks)
			r.Get("/assigned", taskHandler.EmployeeAssignedTasks)
			r.Get("/incomplete", taskHandler.EmployeeIncompleteTasks)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/rollover", jobsHandler.TriggerRollover)
			r.Post("/overdue", jobsHandler.TriggerOverdue)
			r.Post("/reminders", jobsHandler.TriggerReminders)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
