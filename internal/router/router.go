// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// content pipeline API. Everything under /api requires a session except
// login; mutating requests additionally pass the CSRF check.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"postforge/internal/handlers"
	"postforge/internal/middleware"
	"postforge/internal/session"
)

// New creates the configured Chi router.
func New(sessionStore *session.Store, api *handlers.API, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Login is rate limited per client IP to slow credential stuffing.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(secureCookies))

		r.With(loginLimiter.Middleware).Post("/auth/login", api.Login)
		r.Post("/auth/logout", api.Logout)

		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/auth/me", api.Me)

			// Topic ingestion and registries.
			r.Route("/topics", func(r chi.Router) {
				r.Get("/", api.TopicsList)
				r.Post("/", api.TopicsCreate)
			})
			r.Get("/platforms", api.PlatformsList)
			r.Route("/brands", func(r chi.Router) {
				r.Get("/", api.BrandsList)
				r.Post("/", api.BrandsCreate)

				r.Route("/{brandID}/profile", func(r chi.Router) {
					r.Get("/", api.ProfileGet)
					r.Post("/", api.ProfileStart)
					r.Patch("/", api.ProfilePatch)
					r.Delete("/", api.ProfileCancel)
				})
			})

			// Content items.
			r.Route("/content", func(r chi.Router) {
				r.Get("/", api.ContentList)
				r.Get("/recent", api.ContentRecent)
				r.Get("/{id}", api.ContentGet)
				r.Patch("/{id}", api.ContentUpdate)
				r.Post("/{id}/move-to-pending", api.MoveToPending)

				// Generation.
				r.Post("/generate", api.Generate)
				r.Post("/generate-media", api.MediaGenerate)

				// Bulk lifecycle transitions.
				r.Post("/approve", api.Approve)
				r.Post("/reject", api.Reject)
				r.Post("/schedule", api.BulkSchedule)
				r.Post("/mark-queued", api.MarkQueued)
				r.Post("/mark-published", api.MarkPublished)
				r.Post("/undo-queued", api.UndoQueued)
				r.Post("/retry-failed", api.RetryFailed)

				// Publish bridge.
				r.Post("/publish", api.Publish)
			})

			// AI provider registry (admin only).
			r.Route("/ai/providers", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", api.ProvidersList)
				r.Post("/activate", api.ProvidersActivate)
			})

			r.Get("/stats/overview", api.StatsOverview)
			r.Get("/export/schedule", api.ExportSchedule)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
