// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"polycms/internal/models"
	"polycms/internal/store"
)

func newContactRouter(t *testing.T) chi.Router {
	t.Helper()

	db := testDB(t)
	contacts := NewContacts(store.NewContactStore(db))

	t.Cleanup(func() {
		db.Exec(`DELETE FROM contacts WHERE email LIKE '%@contact-test.local'`)
	})

	r := chi.NewRouter()
	r.Post("/api/contacts", contacts.Create)
	r.Get("/api/contacts", contacts.List)
	r.Post("/api/contacts/{id}/handle", contacts.MarkHandled)
	r.Delete("/api/contacts/{id}", contacts.Delete)
	return r
}

func TestContactSubmitAndHandle(t *testing.T) {
	router := newContactRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/contacts",
		`{"name": "Visitor", "email": "visitor@contact-test.local", "subject": "Hi", "message": "Hello from the form"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created models.Contact
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Handled {
		t.Error("new submission should start unhandled")
	}

	// It shows up in the unhandled inbox.
	list := doJSON(t, router, http.MethodGet, "/api/contacts?unhandled=true", "")
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
	var items []models.Contact
	if err := json.Unmarshal(list.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	found := false
	for _, c := range items {
		if c.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("submission missing from unhandled inbox")
	}

	// Handling removes it from the unhandled view.
	handle := doJSON(t, router, http.MethodPost, "/api/contacts/"+created.ID.String()+"/handle", "")
	if handle.Code != http.StatusOK {
		t.Fatalf("handle status = %d", handle.Code)
	}

	list = doJSON(t, router, http.MethodGet, "/api/contacts?unhandled=true", "")
	items = nil
	json.Unmarshal(list.Body.Bytes(), &items)
	for _, c := range items {
		if c.ID == created.ID {
			t.Error("handled submission still in unhandled inbox")
		}
	}
}

func TestContactSubmitValidation(t *testing.T) {
	router := newContactRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email": "a@contact-test.local", "message": "hi"}`},
		{"bad email", `{"name": "A", "email": "nope", "message": "hi"}`},
		{"missing message", `{"name": "A", "email": "a@contact-test.local"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/contacts", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestContactHandleUnknownIsNotFound(t *testing.T) {
	router := newContactRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/contacts/00000000-0000-0000-0000-000000000000/handle", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
