package web

import (
	"github.com/go-chi/chi/v5"

	"nautilus/internal/facer"
	"nautilus/internal/web/handlers"
	"nautilus/internal/web/middleware"
)

func (s *Server) setupRoutes(stores Stores, provider facer.Provider) {
	authHandler := handlers.NewAuthHandler(stores.Registry, s.sessionManager, s.logger)
	scansHandler := handlers.NewScansHandler(stores.History, stores.Images, s.logger)
	peopleHandler := handlers.NewPeopleHandler(stores.Images, s.logger)
	analyzeHandler := handlers.NewAnalyzeHandler(provider, stores.Images, s.logger)
	settingsHandler := handlers.NewSettingsHandler(s.sessionManager)
	statsHandler := handlers.NewStatsHandler(stores.History, stores.Images, s.logger)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		// Everything else requires a session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.sessionManager))

			// Detection & matching
			r.Post("/scan/analyze", analyzeHandler.Analyze)

			// Scan history
			r.Get("/scans", scansHandler.List)
			r.Post("/scans", scansHandler.Save)
			r.Get("/scans/{fileName}/image", scansHandler.Image)
			r.Delete("/scans/{fileName}", scansHandler.Delete)

			// Face gallery
			r.Get("/people", peopleHandler.List)
			r.Post("/people/{person}/images", peopleHandler.AddImages)
			r.Delete("/people/{person}", peopleHandler.Delete)

			// Settings
			r.Get("/settings", settingsHandler.Get)
			r.Put("/settings", settingsHandler.Update)

			// Stats
			r.Get("/stats", statsHandler.Get)
		})
	})
}
