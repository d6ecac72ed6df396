// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"polycms/internal/category"
	"polycms/internal/markdown"
	"polycms/internal/middleware"
	"polycms/internal/models"
	"polycms/internal/slug"
	"polycms/internal/storage"
	"polycms/internal/store"
)

// maxSlugRetries bounds re-allocation when a concurrent write takes the
// probed slug, mirroring the category engine's allocation discipline.
const maxSlugRetries = 100

// Posts groups the post HTTP handlers: a public read surface (published
// posts only, Markdown rendered to HTML with attached images interpolated)
// and the admin CRUD surface.
type Posts struct {
	posts      *store.PostStore
	media      *store.MediaStore
	categories *category.Service
	objects    *storage.Client // nil when object storage is not configured
}

// NewPosts creates a new Posts handler group.
func NewPosts(posts *store.PostStore, media *store.MediaStore, categories *category.Service, objects *storage.Client) *Posts {
	return &Posts{posts: posts, media: media, categories: categories, objects: objects}
}

// postRequest is the JSON body for create and update. Pointer fields make
// partial patches possible; for nullable text an empty string clears.
type postRequest struct {
	Title           *string     `json:"title"`
	TitleEn         *string     `json:"title_en"`
	TitleVi         *string     `json:"title_vi"`
	TitleKo         *string     `json:"title_ko"`
	Content         *string     `json:"content"`
	ContentEn       *string     `json:"content_en"`
	ContentVi       *string     `json:"content_vi"`
	ContentKo       *string     `json:"content_ko"`
	Description     *string     `json:"description"`
	DescriptionEn   *string     `json:"description_en"`
	DescriptionVi   *string     `json:"description_vi"`
	DescriptionKo   *string     `json:"description_ko"`
	CategoryID      *uuid.UUID  `json:"category_id"`
	Images          []uuid.UUID `json:"images"`
	Status          *string     `json:"status"`
	MetaTitle       *string     `json:"meta_title"`
	MetaDescription *string     `json:"meta_description"`
}

// decodePostRequest reads the body once and reports which nullable keys
// were present, so "clear the category" and "replace the images" can be
// told apart from fields the caller never mentioned.
func decodePostRequest(w http.ResponseWriter, r *http.Request) (*postRequest, map[string]bool, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "read body: "+err.Error())
		return nil, nil, false
	}

	var req postRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return nil, nil, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return nil, nil, false
	}
	present := map[string]bool{
		"category_id": func() bool { _, ok := raw["category_id"]; return ok }(),
		"images":      func() bool { _, ok := raw["images"]; return ok }(),
	}

	return &req, present, true
}

// PublicList returns published posts, optionally filtered by category slug
// or id.
func (h *Posts) PublicList(w http.ResponseWriter, r *http.Request) {
	filter := store.ListFilter{Status: models.PostStatusPublished}

	if cat := r.URL.Query().Get("category"); cat != "" {
		id, err := h.resolveCategory(cat)
		if err != nil {
			respondError(w, http.StatusNotFound, "category not found")
			return
		}
		filter.CategoryID = &id
	}

	items, err := h.posts.List(filter)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if items == nil {
		items = []models.Post{}
	}
	respondJSON(w, http.StatusOK, items)
}

// resolveCategory accepts a category reference as UUID or slug.
func (h *Posts) resolveCategory(ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	c, err := h.categories.GetBySlug(ref)
	if err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}

// publicPost is the public detail payload: the post record plus its
// content rendered to HTML with attached images interpolated.
type publicPost struct {
	models.Post
	HTML string `json:"html"`
}

// PublicGet returns a published post by slug with rendered HTML. The
// ?locale= query selects the content variant; missing variants fall back
// to the default content.
func (h *Posts) PublicGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.FindPublishedBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("find post failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := h.fillImages(p); err != nil {
		slog.Error("load post images failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	refs, err := h.imageRefs(p.ImageIDs)
	if err != nil {
		slog.Error("load media failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	content := p.LocalizedContent(r.URL.Query().Get("locale"))
	html, err := markdown.RenderWithImages(content, refs)
	if err != nil {
		slog.Error("render post failed", "error", err, "slug", p.Slug)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, publicPost{Post: *p, HTML: html})
}

// imageRefs resolves attached media ids to image URLs and alt texts.
// Mirrored media is served from object storage, everything else through
// the raw media endpoint.
func (h *Posts) imageRefs(ids []uuid.UUID) ([]markdown.ImageRef, error) {
	var refs []markdown.ImageRef
	for _, id := range ids {
		m, err := h.media.FindByID(id)
		if err != nil {
			return nil, err
		}
		if m == nil || !m.IsImage() {
			continue
		}

		url := "/api/media/" + m.ID.String() + "/raw"
		if h.objects != nil && m.S3Key != nil {
			url = h.objects.ObjectURL(*m.S3Key)
		}

		alt := m.Filename
		if m.AltText != nil && *m.AltText != "" {
			alt = *m.AltText
		}
		refs = append(refs, markdown.ImageRef{URL: url, Alt: alt})
	}
	return refs, nil
}

// List returns all posts for the admin, optionally filtered by status and
// category id.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	var filter store.ListFilter

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = models.PostStatus(status)
	}
	if cat := r.URL.Query().Get("category"); cat != "" {
		id, err := uuid.Parse(cat)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		filter.CategoryID = &id
	}

	items, err := h.posts.List(filter)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if items == nil {
		items = []models.Post{}
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns a single post by id with its attached image ids.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	p, err := h.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := h.fillImages(p); err != nil {
		slog.Error("load post images failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Create inserts a new post. The slug is derived from the title and
// de-duplicated with -N suffixes against existing posts.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	req, _, ok := decodePostRequest(w, r)
	if !ok {
		return
	}

	var title, content string
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		content = *req.Content
	}
	if msg := validatePost(title, content); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	p := &models.Post{
		Title:    title,
		Content:  content,
		Status:   models.PostStatusDraft,
		AuthorID: claims.UserID,
	}
	patchText(&p.TitleEn, req.TitleEn)
	patchText(&p.TitleVi, req.TitleVi)
	patchText(&p.TitleKo, req.TitleKo)
	patchText(&p.ContentEn, req.ContentEn)
	patchText(&p.ContentVi, req.ContentVi)
	patchText(&p.ContentKo, req.ContentKo)
	patchText(&p.Description, req.Description)
	patchText(&p.DescriptionEn, req.DescriptionEn)
	patchText(&p.DescriptionVi, req.DescriptionVi)
	patchText(&p.DescriptionKo, req.DescriptionKo)
	patchText(&p.MetaTitle, req.MetaTitle)
	patchText(&p.MetaDescription, req.MetaDescription)

	if req.CategoryID != nil {
		if _, err := h.categories.Get(*req.CategoryID); err != nil {
			respondError(w, http.StatusBadRequest, "category does not exist")
			return
		}
		p.CategoryID = req.CategoryID
	}

	if req.Status != nil {
		status, ok := parseStatus(*req.Status)
		if !ok {
			respondError(w, http.StatusBadRequest, "status must be draft or published")
			return
		}
		p.Status = status
	}
	if p.Status == models.PostStatusPublished {
		now := time.Now()
		p.PublishedAt = &now
	}

	base := slug.Generate(title)
	if base == "" {
		respondError(w, http.StatusBadRequest, "title derives to an empty slug")
		return
	}

	var created *models.Post
	for attempt := 0; ; attempt++ {
		allocated, err := h.posts.AllocateSlug(base, nil)
		if err != nil {
			slog.Error("allocate post slug failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		p.Slug = allocated

		created, err = h.posts.Create(p)
		if errors.Is(err, store.ErrDuplicateSlug) && attempt < maxSlugRetries {
			continue
		}
		if err != nil {
			slog.Error("create post failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		break
	}

	if err := h.setImages(created, req.Images); err != nil {
		respondCategoryError(w, err)
		return
	}

	slog.Info("post created", "id", created.ID, "slug", created.Slug)
	respondJSON(w, http.StatusCreated, created)
}

// Update applies a partial patch to a post. A title change regenerates
// the slug through the same de-duplication, excluding the post itself.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	req, present, ok := decodePostRequest(w, r)
	if !ok {
		return
	}

	p, err := h.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	titleChanged := false
	if req.Title != nil {
		if v := strings.TrimSpace(*req.Title); v != p.Title {
			p.Title = v
			titleChanged = true
		}
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if msg := validatePost(p.Title, p.Content); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	patchText(&p.TitleEn, req.TitleEn)
	patchText(&p.TitleVi, req.TitleVi)
	patchText(&p.TitleKo, req.TitleKo)
	patchText(&p.ContentEn, req.ContentEn)
	patchText(&p.ContentVi, req.ContentVi)
	patchText(&p.ContentKo, req.ContentKo)
	patchText(&p.Description, req.Description)
	patchText(&p.DescriptionEn, req.DescriptionEn)
	patchText(&p.DescriptionVi, req.DescriptionVi)
	patchText(&p.DescriptionKo, req.DescriptionKo)
	patchText(&p.MetaTitle, req.MetaTitle)
	patchText(&p.MetaDescription, req.MetaDescription)

	if present["category_id"] {
		if req.CategoryID != nil {
			if _, err := h.categories.Get(*req.CategoryID); err != nil {
				respondError(w, http.StatusBadRequest, "category does not exist")
				return
			}
		}
		p.CategoryID = req.CategoryID
	}

	if req.Status != nil {
		status, ok := parseStatus(*req.Status)
		if !ok {
			respondError(w, http.StatusBadRequest, "status must be draft or published")
			return
		}
		// PublishedAt records the first publication and survives
		// later unpublish/republish cycles.
		if status == models.PostStatusPublished && p.PublishedAt == nil {
			now := time.Now()
			p.PublishedAt = &now
		}
		p.Status = status
	}

	base := ""
	if titleChanged {
		base = slug.Generate(p.Title)
		if base == "" {
			respondError(w, http.StatusBadRequest, "title derives to an empty slug")
			return
		}
	}

	var updated *models.Post
	for attempt := 0; ; attempt++ {
		if titleChanged {
			allocated, err := h.posts.AllocateSlug(base, &id)
			if err != nil {
				slog.Error("allocate post slug failed", "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			p.Slug = allocated
		}

		updated, err = h.posts.Update(p)
		if errors.Is(err, store.ErrDuplicateSlug) && titleChanged && attempt < maxSlugRetries {
			continue
		}
		if err != nil {
			slog.Error("update post failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		break
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	if present["images"] {
		if err := h.setImages(updated, req.Images); err != nil {
			respondCategoryError(w, err)
			return
		}
	} else if err := h.fillImages(updated); err != nil {
		slog.Error("load post images failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("post updated", "id", updated.ID, "slug", updated.Slug)
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a post and its image attachments.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	p, err := h.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := h.posts.Delete(id); err != nil {
		slog.Error("delete post failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("post deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// setImages validates and replaces the post's attachments, then refreshes
// the ImageIDs field on the response.
func (h *Posts) setImages(p *models.Post, ids []uuid.UUID) error {
	for _, mediaID := range ids {
		m, err := h.media.FindByID(mediaID)
		if err != nil {
			return err
		}
		if m == nil {
			return &category.ValidationError{Field: "images", Reason: "media " + mediaID.String() + " does not exist"}
		}
	}

	if err := h.posts.SetImages(p.ID, ids); err != nil {
		return err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	p.ImageIDs = ids
	return nil
}

// fillImages populates ImageIDs from the attachment table.
func (h *Posts) fillImages(p *models.Post) error {
	ids, err := h.posts.ImageIDs(p.ID)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	p.ImageIDs = ids
	return nil
}

func parseStatus(s string) (models.PostStatus, bool) {
	switch models.PostStatus(s) {
	case models.PostStatusDraft:
		return models.PostStatusDraft, true
	case models.PostStatusPublished:
		return models.PostStatusPublished, true
	}
	return "", false
}

// patchText applies an optional patch to a nullable text field; an empty
// string clears the value.
func patchText(dst **string, src *string) {
	if src == nil {
		return
	}
	v := strings.TrimSpace(*src)
	if v == "" {
		*dst = nil
		return
	}
	*dst = &v
}
