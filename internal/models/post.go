// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post represents an article with per-locale title/content/description
// variants. Content is Markdown source; the public detail endpoint renders
// it to HTML with attached images interpolated between paragraphs.
type Post struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	TitleEn       *string     `json:"title_en,omitempty"`
	TitleVi       *string     `json:"title_vi,omitempty"`
	TitleKo       *string     `json:"title_ko,omitempty"`
	Slug          string      `json:"slug"`
	Content       string      `json:"content"`
	ContentEn     *string     `json:"content_en,omitempty"`
	ContentVi     *string     `json:"content_vi,omitempty"`
	ContentKo     *string     `json:"content_ko,omitempty"`
	Description   *string     `json:"description,omitempty"`
	DescriptionEn *string     `json:"description_en,omitempty"`
	DescriptionVi *string     `json:"description_vi,omitempty"`
	DescriptionKo *string     `json:"description_ko,omitempty"`
	CategoryID    *uuid.UUID  `json:"category_id"`
	ImageIDs      []uuid.UUID `json:"images"`
	Status        PostStatus  `json:"status"`
	MetaTitle     *string     `json:"meta_title,omitempty"`
	MetaDescription *string   `json:"meta_description,omitempty"`
	AuthorID      uuid.UUID   `json:"author_id"`
	PublishedAt   *time.Time  `json:"published_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// LocalizedContent returns the content variant for the given locale,
// falling back to the default content when the variant is absent.
func (p *Post) LocalizedContent(locale string) string {
	var v *string
	switch locale {
	case "en":
		v = p.ContentEn
	case "vi":
		v = p.ContentVi
	case "ko":
		v = p.ContentKo
	}
	if v != nil && *v != "" {
		return *v
	}
	return p.Content
}
