// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a node in the hierarchical content category forest.
// Display names and descriptions carry optional per-locale variants
// (English, Vietnamese, Korean) alongside the default.
//
// ParentID is the source of truth for the hierarchy; ChildIDs is derived
// from it by the store and never written directly.
type Category struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	NameEn        *string    `json:"name_en,omitempty"`
	NameVi        *string    `json:"name_vi,omitempty"`
	NameKo        *string    `json:"name_ko,omitempty"`
	Slug          string     `json:"slug"`
	Key           string     `json:"key"`
	Description   *string    `json:"description,omitempty"`
	DescriptionEn *string    `json:"description_en,omitempty"`
	DescriptionVi *string    `json:"description_vi,omitempty"`
	DescriptionKo *string    `json:"description_ko,omitempty"`
	ParentID      *uuid.UUID `json:"parent"`
	ChildIDs      []uuid.UUID `json:"children"`
	Color         *string    `json:"color,omitempty"`
	Icon          *string    `json:"icon,omitempty"`
	IsActive      bool       `json:"is_active"`
	SortOrder     int        `json:"sort_order"`
	MetaTitle     *string    `json:"meta_title,omitempty"`
	MetaDescription *string  `json:"meta_description,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DisplayName returns the best-available name for sorting and slug
// derivation: the explicit name, else the first present locale variant,
// else the empty string.
func (c *Category) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	for _, n := range []*string{c.NameEn, c.NameVi, c.NameKo} {
		if n != nil && *n != "" {
			return *n
		}
	}
	return ""
}

// CategoryNode is a category with its children expanded into nested nodes
// rather than ids. Returned by tree views.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}
