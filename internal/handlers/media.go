// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"polycms/internal/imaging"
	"polycms/internal/middleware"
	"polycms/internal/models"
	"polycms/internal/storage"
	"polycms/internal/store"
)

// maxUploadBytes caps the decoded size of an uploaded file.
const maxUploadBytes = 10 << 20 // 10 MiB

// Media groups the media HTTP handlers. Payloads arrive and are stored
// as base64; image uploads get a thumbnail, and when object storage is
// configured the decoded bytes are mirrored to S3.
type Media struct {
	media   *store.MediaStore
	posts   *store.PostStore
	objects *storage.Client // nil when object storage is not configured
}

// NewMedia creates a new Media handler group.
func NewMedia(media *store.MediaStore, posts *store.PostStore, objects *storage.Client) *Media {
	return &Media{media: media, posts: posts, objects: objects}
}

type mediaUploadRequest struct {
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	Data        string  `json:"data"` // base64-encoded payload
	AltText     *string `json:"alt_text"`
}

// List returns media metadata newest first, payloads omitted.
func (h *Media) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.media.List()
	if err != nil {
		slog.Error("list media failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if items == nil {
		items = []models.Media{}
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns a media item including its base64 payload.
func (h *Media) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.find(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// Raw serves the decoded payload with its stored content type. This is
// the image URL used by the public post renderer when media is not
// mirrored to object storage.
func (h *Media) Raw(w http.ResponseWriter, r *http.Request) {
	m, ok := h.find(w, r)
	if !ok {
		return
	}

	payload, err := base64.StdEncoding.DecodeString(m.Data)
	if err != nil {
		slog.Error("decode media payload failed", "error", err, "id", m.ID)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", m.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(payload)
}

// Upload stores a new media item from a base64 JSON body.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	var req mediaUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Filename = strings.TrimSpace(req.Filename)
	if req.Filename == "" {
		respondError(w, http.StatusBadRequest, "filename is required")
		return
	}
	if utf8.RuneCountInString(req.Filename) > maxFilenameLen {
		respondError(w, http.StatusBadRequest, "filename is too long")
		return
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		respondError(w, http.StatusBadRequest, "content_type must be an image type")
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		respondError(w, http.StatusBadRequest, "data is not valid base64")
		return
	}
	if len(payload) == 0 {
		respondError(w, http.StatusBadRequest, "data is empty")
		return
	}
	if len(payload) > maxUploadBytes {
		respondError(w, http.StatusBadRequest, "file exceeds the 10 MB limit")
		return
	}
	if req.AltText != nil && utf8.RuneCountInString(*req.AltText) > maxAltTextLen {
		respondError(w, http.StatusBadRequest, "alt_text is too long")
		return
	}

	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	m := &models.Media{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		SizeBytes:   int64(len(payload)),
		Data:        base64.StdEncoding.EncodeToString(payload),
		AltText:     req.AltText,
		UploaderID:  claims.UserID,
	}

	thumb, _, err := imaging.Thumbnail(payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is not a decodable image")
		return
	}
	encoded := base64.StdEncoding.EncodeToString(thumb)
	m.ThumbData = &encoded

	if h.objects != nil {
		key := fmt.Sprintf("media/%s/%s", uuid.New().String(), req.Filename)
		if err := h.objects.Upload(r.Context(), key, req.ContentType, payload); err != nil {
			// Mirroring is best effort; the database copy is canonical.
			slog.Warn("s3 mirror failed", "error", err, "key", key)
		} else {
			m.S3Key = &key
		}
	}

	created, err := h.media.Create(m)
	if err != nil {
		slog.Error("create media failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("media uploaded", "id", created.ID, "filename", created.Filename, "size", created.HumanSize())
	respondJSON(w, http.StatusCreated, created)
}

type mediaUpdateRequest struct {
	AltText *string `json:"alt_text"`
}

// Update changes a media item's alt text.
func (h *Media) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.find(w, r)
	if !ok {
		return
	}

	var req mediaUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AltText != nil && utf8.RuneCountInString(*req.AltText) > maxAltTextLen {
		respondError(w, http.StatusBadRequest, "alt_text is too long")
		return
	}

	if err := h.media.UpdateAltText(m.ID, req.AltText); err != nil {
		slog.Error("update media failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	m.AltText = req.AltText
	respondJSON(w, http.StatusOK, m)
}

// Delete removes a media item. Rejected with 409 while posts still
// reference it; the mirrored S3 object is removed as well.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.find(w, r)
	if !ok {
		return
	}

	inUse, err := h.posts.MediaInUse(m.ID)
	if err != nil {
		slog.Error("media in-use check failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if inUse {
		respondError(w, http.StatusConflict, "media is still attached to posts")
		return
	}

	if err := h.media.Delete(m.ID); err != nil {
		slog.Error("delete media failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.objects != nil && m.S3Key != nil {
		if err := h.objects.Delete(r.Context(), *m.S3Key); err != nil {
			slog.Warn("s3 delete failed", "error", err, "key", *m.S3Key)
		}
	}

	slog.Info("media deleted", "id", m.ID)
	w.WriteHeader(http.StatusNoContent)
}

// find loads the media item named in the URL, writing the error response
// itself on failure.
func (h *Media) find(w http.ResponseWriter, r *http.Request) (*models.Media, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid media id")
		return nil, false
	}

	m, err := h.media.FindByID(id)
	if err != nil {
		slog.Error("find media failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if m == nil {
		respondError(w, http.StatusNotFound, "media not found")
		return nil, false
	}
	return m, true
}
