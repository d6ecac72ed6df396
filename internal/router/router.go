// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// polycms API. Routes are organized into a public group and a
// bearer-authenticated admin group.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"polycms/internal/handlers"
	"polycms/internal/middleware"
	"polycms/internal/token"
)

// Handlers bundles the per-resource handler groups wired by New.
type Handlers struct {
	Auth       *handlers.Auth
	Categories *handlers.Categories
	Posts      *handlers.Posts
	Media      *handlers.Media
	Contacts   *handlers.Contacts
	Users      *handlers.Users
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The rate limiter guards the unauthenticated
// write endpoints (login, contact form).
func New(tokens *token.Manager, limiter *middleware.RateLimiter, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Public read surface.
		r.Get("/categories/tree", h.Categories.Tree)
		r.Get("/categories/{slug}", h.Categories.GetBySlug)
		r.Get("/posts", h.Posts.PublicList)
		r.Get("/posts/{slug}", h.Posts.PublicGet)
		r.Get("/media/{id}/raw", h.Media.Raw)

		// Public, rate-limited writes.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Limit)
			r.Post("/contacts", h.Contacts.Create)
			r.Post("/auth/login", h.Auth.Login)
			r.Post("/auth/refresh", h.Auth.Refresh)
		})
		r.Post("/auth/logout", h.Auth.Logout)

		// Authenticated admin area.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens))

			r.Get("/me", h.Auth.Me)
			r.Post("/2fa/setup", h.Auth.TwoFASetup)
			r.Post("/2fa/verify", h.Auth.TwoFAVerify)

			// Categories
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.Categories.List)
				r.Get("/tree", h.Categories.AdminTree)
				r.Get("/slug/{slug}", h.Categories.AdminGetBySlug)
				r.Post("/", h.Categories.Create)
				r.Get("/{id}", h.Categories.Get)
				r.Put("/{id}", h.Categories.Update)
				r.Delete("/{id}", h.Categories.Delete)
			})

			// Posts
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.Posts.List)
				r.Post("/", h.Posts.Create)
				r.Get("/{id}", h.Posts.Get)
				r.Put("/{id}", h.Posts.Update)
				r.Delete("/{id}", h.Posts.Delete)
			})

			// Media
			r.Route("/media", func(r chi.Router) {
				r.Get("/", h.Media.List)
				r.Post("/", h.Media.Upload)
				r.Get("/{id}", h.Media.Get)
				r.Put("/{id}", h.Media.Update)
				r.Delete("/{id}", h.Media.Delete)
			})

			// Contact inbox
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", h.Contacts.List)
				r.Post("/{id}/handle", h.Contacts.MarkHandled)
				r.Delete("/{id}", h.Contacts.Delete)
			})

			// User management — admin only
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", h.Users.List)
				r.Post("/", h.Users.Create)
				r.Put("/{id}/role", h.Users.UpdateRole)
				r.Post("/{id}/reset-2fa", h.Users.Reset2FA)
				r.Delete("/{id}", h.Users.Delete)
			})
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
