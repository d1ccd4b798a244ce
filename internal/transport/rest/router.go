package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/mzavatta/effort-tracking/internal/auth"
	"github.com/mzavatta/effort-tracking/internal/availability"
	"github.com/mzavatta/effort-tracking/internal/catalog"
	"github.com/mzavatta/effort-tracking/internal/ledger"
	"github.com/mzavatta/effort-tracking/internal/timesheet"
	"github.com/mzavatta/effort-tracking/internal/transport/middleware"
	"github.com/mzavatta/effort-tracking/internal/transport/swagger"
	"github.com/mzavatta/effort-tracking/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	catalogHandler *catalog.Handler,
	ledgerHandler *ledger.Handler,
	timesheetHandler *timesheet.Handler,
	availabilityHandler *availability.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve the OpenAPI spec at root, outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
			})
		}

		if authHandler == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			if userHandler != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/me", userHandler.Me)
					ur.Post("/", userHandler.CreateUser)
					ur.Get("/", userHandler.ListUsers)
					ur.Patch("/{userID}/role", userHandler.UpdateRole)
				})
			}

			if catalogHandler != nil {
				pr.Route("/catalog", func(cr chi.Router) {
					cr.Post("/projects", catalogHandler.CreateProject)
					cr.Get("/projects", catalogHandler.ListProjects)
					cr.Patch("/projects/{projectID}/archived", catalogHandler.SetArchived)
					cr.Post("/projects/{projectID}/researchers", catalogHandler.AddResearcher)
					cr.Get("/projects/{projectID}/work-packages", catalogHandler.ListWorkPackages)

					cr.Post("/work-packages", catalogHandler.CreateWorkPackage)
					cr.Patch("/work-packages/{workPackageID}/window", catalogHandler.UpdateWorkPackageWindow)
					cr.Delete("/work-packages/{workPackageID}", catalogHandler.DeleteWorkPackage)
					cr.Get("/work-packages/{workPackageID}/tasks", catalogHandler.ListTasks)

					cr.Post("/tasks", catalogHandler.CreateTask)
					cr.Delete("/tasks/{taskID}", catalogHandler.DeleteTask)
					cr.Post("/tasks/{taskID}/assignments", catalogHandler.AssignTask)
					cr.Get("/tasks/{taskID}/assignments", catalogHandler.ListAssignments)
				})
			}

			pr.Route("/tracking", func(tr chi.Router) {
				if ledgerHandler != nil {
					tr.Post("/entries", ledgerHandler.RecordHours)
					tr.Delete("/entries/{taskID}/{date}", ledgerHandler.RemoveHours)
					tr.Post("/consumed", ledgerHandler.AdjustConsumed)
					tr.Post("/consumed/repair", ledgerHandler.RepairConsistency)
				}
				if timesheetHandler != nil {
					tr.Get("/weeks/{date}", timesheetHandler.WeeklyView)
					tr.Get("/days/{date}", timesheetHandler.DayView)
				}
				if availabilityHandler != nil {
					tr.Get("/days/{date}/available-tasks", availabilityHandler.AvailableTasks)
				}
			})
		})
	})
}
