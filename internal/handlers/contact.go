// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"polycms/internal/models"
	"polycms/internal/store"
)

// Contacts groups the contact-form HTTP handlers: a public, rate-limited
// submission endpoint and the admin inbox.
type Contacts struct {
	contacts *store.ContactStore
}

// NewContacts creates a new Contacts handler group.
func NewContacts(contacts *store.ContactStore) *Contacts {
	return &Contacts{contacts: contacts}
}

type contactRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Subject *string `json:"subject"`
	Message string  `json:"message"`
}

// Create accepts a public contact-form submission.
func (h *Contacts) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if msg := validateContact(req.Name, req.Email, req.Message); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Subject != nil && utf8.RuneCountInString(*req.Subject) > maxSubjectLen {
		respondError(w, http.StatusBadRequest, "Subject is too long (max 300 characters).")
		return
	}

	c := &models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if req.Subject != nil {
		if v := strings.TrimSpace(*req.Subject); v != "" {
			c.Subject = &v
		}
	}

	created, err := h.contacts.Create(c)
	if err != nil {
		slog.Error("create contact failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("contact submitted", "id", created.ID)
	respondJSON(w, http.StatusCreated, created)
}

// List returns submissions for the admin inbox, newest first. Handled
// submissions are filtered out with ?unhandled=true.
func (h *Contacts) List(w http.ResponseWriter, r *http.Request) {
	unhandledOnly := r.URL.Query().Get("unhandled") == "true"

	items, err := h.contacts.List(unhandledOnly)
	if err != nil {
		slog.Error("list contacts failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if items == nil {
		items = []models.Contact{}
	}
	respondJSON(w, http.StatusOK, items)
}

// MarkHandled flags a submission as dealt with.
func (h *Contacts) MarkHandled(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	found, err := h.contacts.MarkHandled(id)
	if err != nil {
		slog.Error("mark contact handled failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "contact not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"handled": true})
}

// Delete removes a submission.
func (h *Contacts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	c, err := h.contacts.FindByID(id)
	if err != nil {
		slog.Error("find contact failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "contact not found")
		return
	}

	if err := h.contacts.Delete(id); err != nil {
		slog.Error("delete contact failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
