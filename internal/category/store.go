// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package category implements the category tree engine: it owns the
// forest's structural invariants (unique slug/key, parent consistency,
// cycle avoidance, deterministic ordering) and exposes tree-shaped views,
// independent of how categories are persisted.
package category

import (
	"github.com/google/uuid"

	"polycms/internal/models"
)

// Store is the persistence contract the engine needs. The PostgreSQL
// implementation lives in internal/store; tests use an in-memory fake.
//
// Lookups return (nil, nil) when no record matches. Insert and Update must
// return ErrDuplicate when the storage-level unique index on slug or key is
// violated, so the engine can retry with the next suffix.
type Store interface {
	// List returns all categories, or only active ones when
	// includeInactive is false.
	List(includeInactive bool) ([]models.Category, error)
	FindByID(id uuid.UUID) (*models.Category, error)
	FindBySlug(slug string) (*models.Category, error)

	// SlugExists and KeyExists probe for identifier collisions, excluding
	// the record being updated when exclude is non-nil.
	SlugExists(slug string, exclude *uuid.UUID) (bool, error)
	KeyExists(key string, exclude *uuid.UUID) (bool, error)

	Insert(c *models.Category) (*models.Category, error)
	Update(c *models.Category) (*models.Category, error)
	Delete(id uuid.UUID) error

	// ChildIDs returns the ids of direct children of the given category,
	// ordered by (sort_order, name).
	ChildIDs(id uuid.UUID) ([]uuid.UUID, error)
	HasChildren(id uuid.UUID) (bool, error)

	// PostCount reports how many posts reference the category.
	PostCount(id uuid.UUID) (int, error)
}
