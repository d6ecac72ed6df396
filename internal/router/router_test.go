// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"polycms/internal/handlers"
	"polycms/internal/middleware"
	"polycms/internal/token"
)

// testRouter wires the router with empty handler groups. Requests that
// are rejected by middleware never reach a store, so nil dependencies
// are fine here.
func testRouter(t *testing.T) http.Handler {
	t.Helper()

	tokens := token.NewManager("test-secret", time.Minute)
	limiter := middleware.NewRateLimiter(100, time.Minute)
	t.Cleanup(limiter.Stop)

	return New(tokens, limiter, Handlers{
		Auth:       handlers.NewAuth(nil, nil, tokens),
		Categories: handlers.NewCategories(nil, nil),
		Posts:      handlers.NewPosts(nil, nil, nil, nil),
		Media:      handlers.NewMedia(nil, nil, nil),
		Contacts:   handlers.NewContacts(nil),
		Users:      handlers.NewUsers(nil),
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Errorf("body = %q", got)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	r := testRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/categories/"},
		{http.MethodPost, "/api/admin/categories/"},
		{http.MethodGet, "/api/admin/posts/"},
		{http.MethodGet, "/api/admin/media/"},
		{http.MethodGet, "/api/admin/contacts/"},
		{http.MethodGet, "/api/admin/users/"},
		{http.MethodGet, "/api/admin/me"},
	}

	for _, tt := range paths {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tt.method, tt.path, rec.Code)
		}
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
