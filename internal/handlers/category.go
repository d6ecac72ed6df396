// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"polycms/internal/cache"
	"polycms/internal/category"
)

// Categories groups the category HTTP handlers. All tree logic lives in
// the category service; this layer only translates JSON and invalidates
// the tree cache on mutations.
type Categories struct {
	svc       *category.Service
	treeCache *cache.TreeCache // nil when Valkey caching is disabled
}

// NewCategories creates a new Categories handler group.
func NewCategories(svc *category.Service, treeCache *cache.TreeCache) *Categories {
	return &Categories{svc: svc, treeCache: treeCache}
}

// categoryRequest is the JSON body for create and update. All fields are
// pointers so that absent and present-but-empty can be told apart.
type categoryRequest struct {
	Name            *string    `json:"name"`
	NameEn          *string    `json:"name_en"`
	NameVi          *string    `json:"name_vi"`
	NameKo          *string    `json:"name_ko"`
	Description     *string    `json:"description"`
	DescriptionEn   *string    `json:"description_en"`
	DescriptionVi   *string    `json:"description_vi"`
	DescriptionKo   *string    `json:"description_ko"`
	Parent          *uuid.UUID `json:"parent"`
	Color           *string    `json:"color"`
	Icon            *string    `json:"icon"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	IsActive        *bool      `json:"is_active"`
	SortOrder       *int       `json:"sort_order"`
}

// decodeCategoryRequest reads the body once and reports whether the
// "parent" key was present at all, so that {"parent": null} (detach) can
// be told apart from a body that never mentions the parent.
func decodeCategoryRequest(w http.ResponseWriter, r *http.Request) (*categoryRequest, bool, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "read body: "+err.Error())
		return nil, false, false
	}

	var req categoryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return nil, false, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return nil, false, false
	}
	_, parentSet := raw["parent"]

	return &req, parentSet, true
}

// List returns the flat category list. Admin endpoint; inactive
// categories are included with ?include_inactive=true.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	items, err := h.svc.List(includeInactive)
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Tree returns the active category forest as nested nodes. The rendered
// JSON is cached in Valkey; mutations invalidate it.
func (h *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	h.serveTree(w, r, false)
}

// AdminTree returns the full forest including inactive categories.
func (h *Categories) AdminTree(w http.ResponseWriter, r *http.Request) {
	h.serveTree(w, r, true)
}

func (h *Categories) serveTree(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	if h.treeCache != nil {
		if payload, ok := h.treeCache.Get(r.Context(), includeInactive); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(payload)
			return
		}
	}

	nodes, err := h.svc.Tree(includeInactive)
	if err != nil {
		respondCategoryError(w, err)
		return
	}

	payload, err := json.Marshal(nodes)
	if err != nil {
		slog.Error("marshal category tree failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.treeCache != nil {
		h.treeCache.Set(r.Context(), includeInactive, payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// Get returns a single category by id, children included.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	c, err := h.svc.Get(id)
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// GetBySlug returns a single category by slug. Public endpoint.
func (h *Categories) GetBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	if !c.IsActive {
		respondError(w, http.StatusNotFound, "category not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// AdminGetBySlug returns a category by slug regardless of its active flag.
// Inactive categories are hidden from the public surface but stay
// addressable for editors.
func (h *Categories) AdminGetBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		respondCategoryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Create inserts a new category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	req, _, ok := decodeCategoryRequest(w, r)
	if !ok {
		return
	}

	in := category.CreateInput{
		NameEn:          req.NameEn,
		NameVi:          req.NameVi,
		NameKo:          req.NameKo,
		Description:     req.Description,
		DescriptionEn:   req.DescriptionEn,
		DescriptionVi:   req.DescriptionVi,
		DescriptionKo:   req.DescriptionKo,
		Parent:          req.Parent,
		Color:           req.Color,
		Icon:            req.Icon,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		IsActive:        req.IsActive,
		SortOrder:       req.SortOrder,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}

	c, err := h.svc.Create(in)
	if err != nil {
		respondCategoryError(w, err)
		return
	}

	h.invalidate(r)
	slog.Info("category created", "id", c.ID, "slug", c.Slug)
	respondJSON(w, http.StatusCreated, c)
}

// Update applies a partial patch to a category.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	req, parentSet, ok := decodeCategoryRequest(w, r)
	if !ok {
		return
	}

	in := category.UpdateInput{
		Name:            req.Name,
		NameEn:          req.NameEn,
		NameVi:          req.NameVi,
		NameKo:          req.NameKo,
		Description:     req.Description,
		DescriptionEn:   req.DescriptionEn,
		DescriptionVi:   req.DescriptionVi,
		DescriptionKo:   req.DescriptionKo,
		Parent:          req.Parent,
		ParentSet:       parentSet,
		Color:           req.Color,
		Icon:            req.Icon,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		IsActive:        req.IsActive,
		SortOrder:       req.SortOrder,
	}

	c, err := h.svc.Update(id, in)
	if err != nil {
		respondCategoryError(w, err)
		return
	}

	h.invalidate(r)
	slog.Info("category updated", "id", c.ID, "slug", c.Slug)
	respondJSON(w, http.StatusOK, c)
}

// Delete removes a category. Rejected with 409 while children or posts
// still reference it.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.svc.Delete(id); err != nil {
		respondCategoryError(w, err)
		return
	}

	h.invalidate(r)
	slog.Info("category deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Categories) invalidate(r *http.Request) {
	if h.treeCache != nil {
		h.treeCache.Invalidate(r.Context())
	}
}
