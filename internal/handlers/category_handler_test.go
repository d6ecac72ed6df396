// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// category_handler_test.go exercises the category handlers end to end
// against an in-memory store, without PostgreSQL or Valkey.
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"polycms/internal/category"
	"polycms/internal/models"
)

// fakeCategoryStore is an in-memory category.Store for handler tests.
type fakeCategoryStore struct {
	items map[uuid.UUID]*models.Category
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{items: make(map[uuid.UUID]*models.Category)}
}

func (f *fakeCategoryStore) List(includeInactive bool) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.items {
		if !includeInactive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].DisplayName() < out[j].DisplayName()
	})
	return out, nil
}

func (f *fakeCategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCategoryStore) FindBySlug(slug string) (*models.Category, error) {
	for _, c := range f.items {
		if c.Slug == slug {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryStore) SlugExists(slug string, exclude *uuid.UUID) (bool, error) {
	for _, c := range f.items {
		if exclude != nil && c.ID == *exclude {
			continue
		}
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryStore) KeyExists(key string, exclude *uuid.UUID) (bool, error) {
	for _, c := range f.items {
		if exclude != nil && c.ID == *exclude {
			continue
		}
		if c.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryStore) Insert(c *models.Category) (*models.Category, error) {
	if taken, _ := f.SlugExists(c.Slug, nil); taken {
		return nil, category.ErrDuplicate
	}
	if taken, _ := f.KeyExists(c.Key, nil); taken {
		return nil, category.ErrDuplicate
	}
	clone := *c
	clone.ID = uuid.New()
	f.items[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (f *fakeCategoryStore) Update(c *models.Category) (*models.Category, error) {
	if _, ok := f.items[c.ID]; !ok {
		return nil, category.ErrNotFound
	}
	if taken, _ := f.SlugExists(c.Slug, &c.ID); taken {
		return nil, category.ErrDuplicate
	}
	if taken, _ := f.KeyExists(c.Key, &c.ID); taken {
		return nil, category.ErrDuplicate
	}
	clone := *c
	f.items[c.ID] = &clone
	out := clone
	return &out, nil
}

func (f *fakeCategoryStore) Delete(id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

func (f *fakeCategoryStore) ChildIDs(id uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, c := range f.items {
		if c.ParentID != nil && *c.ParentID == id {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (f *fakeCategoryStore) HasChildren(id uuid.UUID) (bool, error) {
	ids, _ := f.ChildIDs(id)
	return len(ids) > 0, nil
}

func (f *fakeCategoryStore) PostCount(id uuid.UUID) (int, error) {
	return 0, nil
}

// categoryTestRouter mounts the category handlers the way the real router
// does, minus auth.
func categoryTestRouter(h *Categories) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/categories", h.List)
	r.Get("/api/categories/tree", h.Tree)
	r.Get("/api/categories/{slug}", h.GetBySlug)
	r.Get("/api/admin/categories/slug/{slug}", h.AdminGetBySlug)
	r.Post("/api/categories", h.Create)
	r.Get("/api/categories/id/{id}", h.Get)
	r.Put("/api/categories/id/{id}", h.Update)
	r.Delete("/api/categories/id/{id}", h.Delete)
	return r
}

func newCategoryEnv() (*fakeCategoryStore, chi.Router) {
	store := newFakeCategoryStore()
	h := NewCategories(category.NewService(store), nil)
	return store, categoryTestRouter(h)
}

func doJSON(t *testing.T, router chi.Router, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCategoryCreateDerivesIdentifiers(t *testing.T) {
	_, router := newCategoryEnv()

	rec := doJSON(t, router, http.MethodPost, "/api/categories", `{"name": "About Us"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got models.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Slug != "about-us" {
		t.Errorf("slug = %q, want %q", got.Slug, "about-us")
	}
	if got.Key != "about_us" {
		t.Errorf("key = %q, want %q", got.Key, "about_us")
	}
	if !got.IsActive {
		t.Error("new category should default to active")
	}
}

func TestCategoryCreateRequiresName(t *testing.T) {
	_, router := newCategoryEnv()

	rec := doJSON(t, router, http.MethodPost, "/api/categories", `{"color": "#ff0000"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var envelope map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope["error"] == "" {
		t.Error("error envelope missing")
	}
}

func TestCategoryCreateSuffixesCollidingSlugs(t *testing.T) {
	_, router := newCategoryEnv()

	first := doJSON(t, router, http.MethodPost, "/api/categories", `{"name": "Products"}`)
	second := doJSON(t, router, http.MethodPost, "/api/categories", `{"name": "Products"}`)
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("statuses = %d, %d", first.Code, second.Code)
	}

	var got models.Category
	if err := json.Unmarshal(second.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Slug != "products-1" {
		t.Errorf("slug = %q, want %q", got.Slug, "products-1")
	}
	if got.Key != "products_1" {
		t.Errorf("key = %q, want %q", got.Key, "products_1")
	}
}

func TestCategoryUpdateParentNullDetaches(t *testing.T) {
	_, router := newCategoryEnv()

	parent := createCategoryT(t, router, `{"name": "Parent"}`)
	child := createCategoryT(t, router, `{"name": "Child", "parent": "`+parent.ID.String()+`"}`)
	if child.ParentID == nil {
		t.Fatal("child should start attached")
	}

	// A body that never mentions the parent leaves it alone.
	rec := doJSON(t, router, http.MethodPut, "/api/categories/id/"+child.ID.String(), `{"color": "#00ff00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var updated models.Category
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.ParentID == nil {
		t.Fatal("parent should be untouched when the key is absent")
	}

	// An explicit null detaches.
	rec = doJSON(t, router, http.MethodPut, "/api/categories/id/"+child.ID.String(), `{"parent": null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.ParentID != nil {
		t.Error("explicit null should detach the category")
	}
}

func TestCategoryUpdateCycleConflicts(t *testing.T) {
	_, router := newCategoryEnv()

	parent := createCategoryT(t, router, `{"name": "Top"}`)
	child := createCategoryT(t, router, `{"name": "Mid", "parent": "`+parent.ID.String()+`"}`)

	rec := doJSON(t, router, http.MethodPut, "/api/categories/id/"+parent.ID.String(),
		`{"parent": "`+child.ID.String()+`"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCategoryDeleteWithChildrenConflicts(t *testing.T) {
	_, router := newCategoryEnv()

	parent := createCategoryT(t, router, `{"name": "Docs"}`)
	createCategoryT(t, router, `{"name": "Guides", "parent": "`+parent.ID.String()+`"}`)

	rec := doJSON(t, router, http.MethodDelete, "/api/categories/id/"+parent.ID.String(), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCategoryDeleteUnknownIsNotFound(t *testing.T) {
	_, router := newCategoryEnv()

	rec := doJSON(t, router, http.MethodDelete, "/api/categories/id/"+uuid.New().String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCategoryTreeNestsAndOrders(t *testing.T) {
	_, router := newCategoryEnv()

	root := createCategoryT(t, router, `{"name": "Root", "sort_order": 5}`)
	createCategoryT(t, router, `{"name": "Beta", "parent": "`+root.ID.String()+`", "sort_order": 2}`)
	createCategoryT(t, router, `{"name": "Alpha", "parent": "`+root.ID.String()+`", "sort_order": 1}`)

	rec := doJSON(t, router, http.MethodGet, "/api/categories/tree", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var nodes []models.CategoryNode
	if err := json.Unmarshal(rec.Body.Bytes(), &nodes); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("roots = %d, want 1", len(nodes))
	}
	if len(nodes[0].Children) != 2 {
		t.Fatalf("children = %d, want 2", len(nodes[0].Children))
	}
	if nodes[0].Children[0].Name != "Alpha" || nodes[0].Children[1].Name != "Beta" {
		t.Errorf("child order = %q, %q", nodes[0].Children[0].Name, nodes[0].Children[1].Name)
	}
}

func TestCategoryGetBySlugHidesInactive(t *testing.T) {
	_, router := newCategoryEnv()

	c := createCategoryT(t, router, `{"name": "Hidden", "is_active": false}`)

	rec := doJSON(t, router, http.MethodGet, "/api/categories/"+c.Slug, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCategoryAdminGetBySlugIncludesInactive(t *testing.T) {
	_, router := newCategoryEnv()

	c := createCategoryT(t, router, `{"name": "Archived", "is_active": false}`)

	rec := doJSON(t, router, http.MethodGet, "/api/admin/categories/slug/"+c.Slug, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got models.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != c.ID || got.IsActive {
		t.Errorf("got id=%s active=%v, want id=%s active=false", got.ID, got.IsActive, c.ID)
	}

	if rec := doJSON(t, router, http.MethodGet, "/api/admin/categories/slug/no-such-slug", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want 404", rec.Code)
	}
}

func createCategoryT(t *testing.T, router chi.Router, body string) *models.Category {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/categories", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var c models.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &c
}
