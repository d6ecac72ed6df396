// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"polycms/internal/category"
	"polycms/internal/models"
)

// CategoryStore is the PostgreSQL implementation of the category engine's
// persistence contract. Slug and key carry unique indexes; violations are
// reported as category.ErrDuplicate so the engine can retry with the next
// suffix.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, name_en, name_vi, name_ko, slug, key,
	description, description_en, description_vi, description_ko,
	parent_id, color, icon, is_active, sort_order,
	meta_title, meta_description, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.NameEn, &c.NameVi, &c.NameKo, &c.Slug, &c.Key,
		&c.Description, &c.DescriptionEn, &c.DescriptionVi, &c.DescriptionKo,
		&c.ParentID, &c.Color, &c.Icon, &c.IsActive, &c.SortOrder,
		&c.MetaTitle, &c.MetaDescription, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by (sort_order, name). When
// includeInactive is false, inactive categories are filtered out.
func (s *CategoryStore) List(includeInactive bool) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// SlugExists probes for a slug collision, excluding one record when updating.
func (s *CategoryStore) SlugExists(slug string, exclude *uuid.UUID) (bool, error) {
	return s.identifierExists("slug", slug, exclude)
}

// KeyExists probes for a key collision, excluding one record when updating.
func (s *CategoryStore) KeyExists(key string, exclude *uuid.UUID) (bool, error) {
	return s.identifierExists("key", key, exclude)
}

func (s *CategoryStore) identifierExists(column, value string, exclude *uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if exclude == nil {
		err = s.db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM categories WHERE `+column+` = $1)`, value,
		).Scan(&exists)
	} else {
		err = s.db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM categories WHERE `+column+` = $1 AND id <> $2)`, value, *exclude,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("%s exists: %w", column, err)
	}
	return exists, nil
}

// Insert stores a new category and returns it fully populated.
func (s *CategoryStore) Insert(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (
			name, name_en, name_vi, name_ko, slug, key,
			description, description_en, description_vi, description_ko,
			parent_id, color, icon, is_active, sort_order,
			meta_title, meta_description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+categoryColumns,
		c.Name, c.NameEn, c.NameVi, c.NameKo, c.Slug, c.Key,
		c.Description, c.DescriptionEn, c.DescriptionVi, c.DescriptionKo,
		c.ParentID, c.Color, c.Icon, c.IsActive, c.SortOrder,
		c.MetaTitle, c.MetaDescription,
	)
	result, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, category.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category and returns the stored row.
func (s *CategoryStore) Update(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		UPDATE categories SET
			name = $1, name_en = $2, name_vi = $3, name_ko = $4,
			slug = $5, key = $6,
			description = $7, description_en = $8, description_vi = $9, description_ko = $10,
			parent_id = $11, color = $12, icon = $13,
			is_active = $14, sort_order = $15,
			meta_title = $16, meta_description = $17,
			updated_at = NOW()
		WHERE id = $18
		RETURNING `+categoryColumns,
		c.Name, c.NameEn, c.NameVi, c.NameKo,
		c.Slug, c.Key,
		c.Description, c.DescriptionEn, c.DescriptionVi, c.DescriptionKo,
		c.ParentID, c.Color, c.Icon,
		c.IsActive, c.SortOrder,
		c.MetaTitle, c.MetaDescription,
		c.ID,
	)
	result, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, category.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return result, nil
}

// Delete removes a category by ID. The engine guards against deleting
// categories with children or referencing posts before calling this.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// ChildIDs returns the ids of direct children, ordered by (sort_order, name).
func (s *CategoryStore) ChildIDs(id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(
		`SELECT id FROM categories WHERE parent_id = $1 ORDER BY sort_order, name`, id)
	if err != nil {
		return nil, fmt.Errorf("child ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var childID uuid.UUID
		if err := rows.Scan(&childID); err != nil {
			return nil, fmt.Errorf("scan child id: %w", err)
		}
		ids = append(ids, childID)
	}
	return ids, rows.Err()
}

// HasChildren reports whether any category references id as its parent.
func (s *CategoryStore) HasChildren(id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM categories WHERE parent_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has children: %w", err)
	}
	return exists, nil
}

// PostCount reports how many posts reference the category.
func (s *CategoryStore) PostCount(id uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM posts WHERE category_id = $1`, id,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("post count: %w", err)
	}
	return count, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-index
// violation (error code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
