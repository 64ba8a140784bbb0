package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
	"github.com/kozaktomas/face-attendance/internal/web/middleware"
)

func (s *Server) setupRoutes(deps Deps) {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(deps.Pinger)
	identifyHandler := handlers.NewIdentifyHandler(deps.Service, deps.Embedder)
	personsHandler := handlers.NewPersonsHandler(deps.Enrollments)
	attendanceHandler := handlers.NewAttendanceHandler(deps.Ledger)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", healthHandler.Check)

	// API routes behind the static API key
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(s.config.API.Key))

		// Identification
		r.Post("/identify", identifyHandler.Identify)

		// Enrollment registry
		r.Get("/persons", personsHandler.List)
		r.Post("/persons", personsHandler.Enroll)
		r.Get("/persons/{id}", personsHandler.Get)
		r.Put("/persons/{id}", personsHandler.Replace)
		r.Delete("/persons/{id}", personsHandler.Delete)

		// Attendance ledger
		r.Get("/attendance", attendanceHandler.List)
		r.Delete("/attendance", attendanceHandler.Clear)
	})
}
