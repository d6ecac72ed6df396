// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"polycms/internal/middleware"
	"polycms/internal/models"
	"polycms/internal/store"
)

// Users groups the admin-only user management handlers.
type Users struct {
	users *store.UserStore
}

// NewUsers creates a new Users handler group.
func NewUsers(users *store.UserStore) *Users {
	return &Users{users: users}
}

// List returns all users ordered by creation date.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.users.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if items == nil {
		items = []models.User{}
	}
	respondJSON(w, http.StatusOK, items)
}

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Create adds a new user account.
func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if msg := validateEmail(req.Email); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.DisplayName == "" {
		respondError(w, http.StatusBadRequest, "Display name is required.")
		return
	}

	role, ok := parseRole(req.Role)
	if !ok {
		respondError(w, http.StatusBadRequest, "role must be admin or editor")
		return
	}

	existing, err := h.users.FindByEmail(req.Email)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "a user with this email already exists")
		return
	}

	user, err := h.users.Create(req.Email, req.Password, req.DisplayName, role)
	if err != nil {
		slog.Error("create user failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("user created", "id", user.ID, "email", user.Email, "role", user.Role)
	respondJSON(w, http.StatusCreated, user)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a user's role. Admins cannot demote themselves, so
// the system always keeps at least one admin able to manage users.
func (h *Users) UpdateRole(w http.ResponseWriter, r *http.Request) {
	user, ok := h.find(w, r)
	if !ok {
		return
	}

	var req updateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, valid := parseRole(req.Role)
	if !valid {
		respondError(w, http.StatusBadRequest, "role must be admin or editor")
		return
	}

	claims := middleware.ClaimsFromCtx(r.Context())
	if claims != nil && claims.UserID == user.ID && role != models.RoleAdmin {
		respondError(w, http.StatusConflict, "cannot demote your own account")
		return
	}

	if err := h.users.UpdateRole(user.ID, role); err != nil {
		slog.Error("update user role failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user.Role = role
	slog.Info("user role updated", "id", user.ID, "role", role)
	respondJSON(w, http.StatusOK, user)
}

// Reset2FA clears a user's 2FA enrollment so they can re-enroll after
// losing their authenticator.
func (h *Users) Reset2FA(w http.ResponseWriter, r *http.Request) {
	user, ok := h.find(w, r)
	if !ok {
		return
	}

	if err := h.users.ResetTOTP(user.ID); err != nil {
		slog.Error("reset totp failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("2fa reset", "id", user.ID)
	respondJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// Delete removes a user account. Deleting your own account is rejected.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.find(w, r)
	if !ok {
		return
	}

	claims := middleware.ClaimsFromCtx(r.Context())
	if claims != nil && claims.UserID == user.ID {
		respondError(w, http.StatusConflict, "cannot delete your own account")
		return
	}

	if err := h.users.Delete(user.ID); err != nil {
		slog.Error("delete user failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("user deleted", "id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// find loads the user named in the URL, writing the error response itself
// on failure.
func (h *Users) find(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return nil, false
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		slog.Error("find user failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return user, true
}

func parseRole(s string) (models.Role, bool) {
	role := models.Role(s)
	if !role.Valid() {
		return "", false
	}
	return role, true
}
