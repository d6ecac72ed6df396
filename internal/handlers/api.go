// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP handlers for the polycms API.
// Handlers are grouped per resource into dependency-injected structs;
// wiring happens in internal/router.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"polycms/internal/category"
)

// maxBodyBytes caps JSON request bodies. Media uploads carry base64
// payloads, so the cap is generous.
const maxBodyBytes = 32 << 20 // 32 MiB

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// respondError writes the API's error envelope: {"error": "..."}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into dst, rejecting unknown fields and
// oversized bodies. Returns false after writing a 400 response on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// respondCategoryError maps the category engine's sentinel errors onto HTTP
// statuses: validation failures are 400, missing records 404, structural
// conflicts (children, posts, cycles) 409, everything else 500.
func respondCategoryError(w http.ResponseWriter, err error) {
	var verr *category.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, category.ErrNotFound):
		respondError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, category.ErrHasChildren):
		respondError(w, http.StatusConflict, "category still has child categories")
	case errors.Is(err, category.ErrHasPosts):
		respondError(w, http.StatusConflict, "category still has posts")
	case errors.Is(err, category.ErrCycle):
		respondError(w, http.StatusConflict, "parent change would create a cycle")
	default:
		slog.Error("category operation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
