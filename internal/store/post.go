// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"polycms/internal/models"
)

// maxSlugAttempts bounds the post slug insert-retry loop.
const maxSlugAttempts = 100

// ErrDuplicateSlug is returned by Create and Update when the unique index
// on posts.slug rejects the write. Callers re-allocate and retry.
var ErrDuplicateSlug = errors.New("duplicate post slug")

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, title_en, title_vi, title_ko, slug,
	content, content_en, content_vi, content_ko,
	description, description_en, description_vi, description_ko,
	category_id, status, meta_title, meta_description,
	author_id, published_at, created_at, updated_at`

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.TitleEn, &p.TitleVi, &p.TitleKo, &p.Slug,
		&p.Content, &p.ContentEn, &p.ContentVi, &p.ContentKo,
		&p.Description, &p.DescriptionEn, &p.DescriptionVi, &p.DescriptionKo,
		&p.CategoryID, &p.Status, &p.MetaTitle, &p.MetaDescription,
		&p.AuthorID, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	CategoryID *uuid.UUID
	Status     models.PostStatus
}

// List returns posts matching the filter, newest first.
func (s *PostStore) List(filter ListFilter) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE 1=1`
	var args []any
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published post by its slug. Used by the
// public blog-detail endpoint.
func (s *PostStore) FindPublishedBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(
		`SELECT `+postColumns+` FROM posts WHERE slug = $1 AND status = 'published'`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// SlugExists probes for a slug collision, excluding one record when updating.
func (s *PostStore) SlugExists(slug string, exclude *uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if exclude == nil {
		err = s.db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	} else {
		err = s.db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, *exclude).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("post slug exists: %w", err)
	}
	return exists, nil
}

// AllocateSlug probes for a free slug, suffixing -1, -2, … on collisions.
// A concurrent writer can still take the probed slug first; the unique
// index then surfaces ErrDuplicateSlug from Create or Update and the
// caller allocates again.
func (s *PostStore) AllocateSlug(base string, exclude *uuid.UUID) (string, error) {
	taken, err := s.SlugExists(base, exclude)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := s.SlugExists(candidate, exclude)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q", base)
}

// Create inserts a new post and returns it.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	row := s.db.QueryRow(`
		INSERT INTO posts (
			title, title_en, title_vi, title_ko, slug,
			content, content_en, content_vi, content_ko,
			description, description_en, description_vi, description_ko,
			category_id, status, meta_title, meta_description,
			author_id, published_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING `+postColumns,
		p.Title, p.TitleEn, p.TitleVi, p.TitleKo, p.Slug,
		p.Content, p.ContentEn, p.ContentVi, p.ContentKo,
		p.Description, p.DescriptionEn, p.DescriptionVi, p.DescriptionKo,
		p.CategoryID, p.Status, p.MetaTitle, p.MetaDescription,
		p.AuthorID, p.PublishedAt,
	)
	result, err := scanPost(row)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateSlug
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post and returns the stored row. Returns nil
// if the post no longer exists.
func (s *PostStore) Update(p *models.Post) (*models.Post, error) {
	row := s.db.QueryRow(`
		UPDATE posts SET
			title = $1, title_en = $2, title_vi = $3, title_ko = $4, slug = $5,
			content = $6, content_en = $7, content_vi = $8, content_ko = $9,
			description = $10, description_en = $11, description_vi = $12, description_ko = $13,
			category_id = $14, status = $15, meta_title = $16, meta_description = $17,
			published_at = $18, updated_at = NOW()
		WHERE id = $19
		RETURNING `+postColumns,
		p.Title, p.TitleEn, p.TitleVi, p.TitleKo, p.Slug,
		p.Content, p.ContentEn, p.ContentVi, p.ContentKo,
		p.Description, p.DescriptionEn, p.DescriptionVi, p.DescriptionKo,
		p.CategoryID, p.Status, p.MetaTitle, p.MetaDescription,
		p.PublishedAt, p.ID,
	)
	result, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateSlug
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return result, nil
}

// Delete removes a post by ID.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// SetImages replaces a post's ordered image attachments in a transaction.
func (s *PostStore) SetImages(postID uuid.UUID, mediaIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_images WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post images: %w", err)
	}
	for pos, mediaID := range mediaIDs {
		if _, err := tx.Exec(
			`INSERT INTO post_images (post_id, media_id, position) VALUES ($1, $2, $3)`,
			postID, mediaID, pos,
		); err != nil {
			return fmt.Errorf("attach image %s: %w", mediaID, err)
		}
	}

	return tx.Commit()
}

// ImageIDs returns a post's attached media ids in display order.
func (s *PostStore) ImageIDs(postID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(
		`SELECT media_id FROM post_images WHERE post_id = $1 ORDER BY position`, postID)
	if err != nil {
		return nil, fmt.Errorf("post images: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan image id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MediaInUse reports whether any post still references the media item.
func (s *PostStore) MediaInUse(mediaID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM post_images WHERE media_id = $1)`, mediaID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("media in use: %w", err)
	}
	return exists, nil
}
