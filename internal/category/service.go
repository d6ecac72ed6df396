// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"polycms/internal/models"
	"polycms/internal/slug"
)

// maxAllocAttempts bounds the insert-retry loop for slug/key allocation.
// Reaching it means something other than a suffix race is wrong.
const maxAllocAttempts = 100

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Service maintains the category forest's structural invariants. All
// mutations go through it; handlers never talk to the store directly.
type Service struct {
	store Store
}

// NewService returns a Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput carries the fields accepted when creating a category.
// A usable name is required: the explicit Name, or the first present
// locale variant.
type CreateInput struct {
	Name          string
	NameEn        *string
	NameVi        *string
	NameKo        *string
	Description   *string
	DescriptionEn *string
	DescriptionVi *string
	DescriptionKo *string
	Parent        *uuid.UUID
	Color         *string
	Icon          *string
	MetaTitle     *string
	MetaDescription *string
	IsActive      *bool
	SortOrder     *int
}

// UpdateInput carries a partial patch. Nil pointers leave the field
// untouched; for nullable text fields an empty string clears the value.
// Parent uses an explicit ParentSet flag so that "set parent to null"
// can be distinguished from "leave parent alone".
type UpdateInput struct {
	Name          *string
	NameEn        *string
	NameVi        *string
	NameKo        *string
	Description   *string
	DescriptionEn *string
	DescriptionVi *string
	DescriptionKo *string
	Parent        *uuid.UUID
	ParentSet     bool
	Color         *string
	Icon          *string
	MetaTitle     *string
	MetaDescription *string
	IsActive      *bool
	SortOrder     *int
}

// Create inserts a new category. Slug and key are derived from the display
// name and de-duplicated with -N / _N suffixes; collisions with concurrent
// creators are absorbed by retrying against the unique index.
func (s *Service) Create(in CreateInput) (*models.Category, error) {
	c := &models.Category{
		Name:     strings.TrimSpace(in.Name),
		IsActive: true,
	}
	applyText(&c.NameEn, in.NameEn)
	applyText(&c.NameVi, in.NameVi)
	applyText(&c.NameKo, in.NameKo)
	applyText(&c.Description, in.Description)
	applyText(&c.DescriptionEn, in.DescriptionEn)
	applyText(&c.DescriptionVi, in.DescriptionVi)
	applyText(&c.DescriptionKo, in.DescriptionKo)
	applyText(&c.Icon, in.Icon)
	applyText(&c.MetaTitle, in.MetaTitle)
	applyText(&c.MetaDescription, in.MetaDescription)

	name := c.DisplayName()
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "a name is required"}
	}

	base := slug.Generate(name)
	if base == "" {
		return nil, &ValidationError{Field: "name", Reason: "name derives to an empty slug"}
	}
	keyBase := slug.Key(name)

	if in.Color != nil && *in.Color != "" {
		if !hexColor.MatchString(*in.Color) {
			return nil, &ValidationError{Field: "color", Reason: "must be #RRGGBB"}
		}
		c.Color = in.Color
	}

	if in.Parent != nil {
		parent, err := s.store.FindByID(*in.Parent)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, &ValidationError{Field: "parent", Reason: "parent category does not exist"}
		}
		c.ParentID = in.Parent
	}

	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		var err error
		if c.Slug, err = s.allocate(base, "-", nil, s.store.SlugExists); err != nil {
			return nil, err
		}
		if c.Key, err = s.allocate(keyBase, "_", nil, s.store.KeyExists); err != nil {
			return nil, err
		}

		created, err := s.store.Insert(c)
		if errors.Is(err, ErrDuplicate) {
			// Lost a race with a concurrent creator; re-probe and retry.
			continue
		}
		if err != nil {
			return nil, err
		}
		created.ChildIDs = []uuid.UUID{}
		return created, nil
	}
	return nil, fmt.Errorf("allocate slug %q: gave up after %d attempts", base, maxAllocAttempts)
}

// Update applies a partial patch. A name change regenerates slug and key
// through the same de-duplication, excluding the record's own id from
// collision checks. A parent change is validated for existence and cycles.
func (s *Service) Update(id uuid.UUID, in UpdateInput) (*models.Category, error) {
	c, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	nameChanged := false
	if in.Name != nil {
		if v := strings.TrimSpace(*in.Name); v != c.Name {
			c.Name = v
			nameChanged = true
		}
	}
	nameChanged = applyText(&c.NameEn, in.NameEn) || nameChanged
	nameChanged = applyText(&c.NameVi, in.NameVi) || nameChanged
	nameChanged = applyText(&c.NameKo, in.NameKo) || nameChanged

	if c.DisplayName() == "" {
		return nil, &ValidationError{Field: "name", Reason: "a name is required"}
	}

	applyText(&c.Description, in.Description)
	applyText(&c.DescriptionEn, in.DescriptionEn)
	applyText(&c.DescriptionVi, in.DescriptionVi)
	applyText(&c.DescriptionKo, in.DescriptionKo)
	applyText(&c.Icon, in.Icon)
	applyText(&c.MetaTitle, in.MetaTitle)
	applyText(&c.MetaDescription, in.MetaDescription)

	if in.Color != nil {
		if *in.Color == "" {
			c.Color = nil
		} else {
			if !hexColor.MatchString(*in.Color) {
				return nil, &ValidationError{Field: "color", Reason: "must be #RRGGBB"}
			}
			c.Color = in.Color
		}
	}

	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}

	if in.ParentSet {
		if err := s.validateParent(id, in.Parent); err != nil {
			return nil, err
		}
		c.ParentID = in.Parent
	}

	base := slug.Generate(c.DisplayName())
	keyBase := slug.Key(c.DisplayName())
	if nameChanged && base == "" {
		return nil, &ValidationError{Field: "name", Reason: "name derives to an empty slug"}
	}

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		if nameChanged {
			if c.Slug, err = s.allocate(base, "-", &id, s.store.SlugExists); err != nil {
				return nil, err
			}
			if c.Key, err = s.allocate(keyBase, "_", &id, s.store.KeyExists); err != nil {
				return nil, err
			}
		}

		updated, err := s.store.Update(c)
		if errors.Is(err, ErrDuplicate) && nameChanged {
			continue
		}
		if err != nil {
			return nil, err
		}
		if updated == nil {
			// The row vanished between FindByID and Update.
			return nil, ErrNotFound
		}
		return s.fillChildren(updated)
	}
	return nil, fmt.Errorf("allocate slug %q: gave up after %d attempts", base, maxAllocAttempts)
}

// Delete removes a category. It is rejected while other categories still
// name it as parent, or while posts reference it; deletion never cascades.
func (s *Service) Delete(id uuid.UUID) error {
	c, err := s.store.FindByID(id)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}

	hasChildren, err := s.store.HasChildren(id)
	if err != nil {
		return err
	}
	if hasChildren {
		return ErrHasChildren
	}

	posts, err := s.store.PostCount(id)
	if err != nil {
		return err
	}
	if posts > 0 {
		return ErrHasPosts
	}

	return s.store.Delete(id)
}

// Get returns a category by id with its child ids populated.
func (s *Service) Get(id uuid.UUID) (*models.Category, error) {
	c, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return s.fillChildren(c)
}

// GetBySlug returns a category by slug with its child ids populated.
func (s *Service) GetBySlug(sl string) (*models.Category, error) {
	c, err := s.store.FindBySlug(sl)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return s.fillChildren(c)
}

// List returns the flat category list with child ids populated in a single
// pass, ordered by (sort_order, name).
func (s *Service) List(includeInactive bool) ([]models.Category, error) {
	flat, err := s.store.List(includeInactive)
	if err != nil {
		return nil, err
	}

	children := make(map[uuid.UUID][]uuid.UUID)
	for _, c := range flat {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}
	for i := range flat {
		ids := children[flat[i].ID]
		if ids == nil {
			ids = []uuid.UUID{}
		}
		flat[i].ChildIDs = ids
	}
	return flat, nil
}

// Tree returns the category forest as nested, deterministically-ordered
// root nodes. When includeInactive is false, inactive categories are
// excluded and their active children surface as roots.
func (s *Service) Tree(includeInactive bool) ([]*models.CategoryNode, error) {
	flat, err := s.store.List(includeInactive)
	if err != nil {
		return nil, err
	}
	return BuildTree(flat), nil
}

// allocate probes for a free identifier, suffixing -1, -2, … (or _1, _2, …)
// until no collision remains. Computed against current state; the caller's
// insert-retry loop closes the check-then-act race via the unique index.
func (s *Service) allocate(base, sep string, exclude *uuid.UUID, exists func(string, *uuid.UUID) (bool, error)) (string, error) {
	taken, err := exists(base, exclude)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for n := 1; n <= 10000; n++ {
		candidate := fmt.Sprintf("%s%s%d", base, sep, n)
		taken, err := exists(candidate, exclude)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free suffix for %q", base)
}

// validateParent rejects a parent assignment to the category itself or to
// one of its own descendants. It walks ancestors upward from the proposed
// parent; a visited set guards against pre-existing corruption.
func (s *Service) validateParent(id uuid.UUID, parent *uuid.UUID) error {
	if parent == nil {
		return nil
	}
	if *parent == id {
		return ErrCycle
	}

	p, err := s.store.FindByID(*parent)
	if err != nil {
		return err
	}
	if p == nil {
		return &ValidationError{Field: "parent", Reason: "parent category does not exist"}
	}

	visited := map[uuid.UUID]bool{*parent: true}
	for p.ParentID != nil {
		ancestor := *p.ParentID
		if ancestor == id {
			return ErrCycle
		}
		if visited[ancestor] {
			return nil
		}
		visited[ancestor] = true

		p, err = s.store.FindByID(ancestor)
		if err != nil {
			return err
		}
		if p == nil {
			return nil
		}
	}
	return nil
}

// fillChildren populates ChildIDs from the reverse parent index.
func (s *Service) fillChildren(c *models.Category) (*models.Category, error) {
	ids, err := s.store.ChildIDs(c.ID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	c.ChildIDs = ids
	return c, nil
}

// applyText applies an optional patch to a nullable text field. A non-nil
// pointer sets the value; an empty string clears it. Returns true when the
// stored value actually changed.
func applyText(dst **string, src *string) bool {
	if src == nil {
		return false
	}
	v := strings.TrimSpace(*src)
	if v == "" {
		if *dst == nil {
			return false
		}
		*dst = nil
		return true
	}
	if *dst != nil && **dst == v {
		return false
	}
	*dst = &v
	return true
}
