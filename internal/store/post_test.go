// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"testing"

	"polycms/internal/models"
)

func seedAuthor(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	users := NewUserStore(db)
	email := "author@post-store-test.local"
	cleanUsers(t, db, email)
	u, err := users.Create(email, "longenoughpass", "Post Author", models.RoleEditor)
	if err != nil {
		t.Fatalf("seed author: %v", err)
	}
	t.Cleanup(func() { cleanUsers(t, db, email) })
	return u
}

func TestPostCreateDuplicateSlug(t *testing.T) {
	db := testDB(t)
	author := seedAuthor(t, db)
	posts := NewPostStore(db)

	t.Cleanup(func() { cleanPosts(t, db, "dup-slug-post") })

	first, err := posts.Create(&models.Post{
		Title: "Dup Slug Post", Slug: "dup-slug-post",
		Status: models.PostStatusDraft, AuthorID: author.ID,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Slug != "dup-slug-post" {
		t.Fatalf("slug = %q", first.Slug)
	}

	_, err = posts.Create(&models.Post{
		Title: "Dup Slug Post Again", Slug: "dup-slug-post",
		Status: models.PostStatusDraft, AuthorID: author.ID,
	})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("error = %v, want ErrDuplicateSlug", err)
	}
}

func TestPostUpdateDuplicateSlug(t *testing.T) {
	db := testDB(t)
	author := seedAuthor(t, db)
	posts := NewPostStore(db)

	t.Cleanup(func() { cleanPosts(t, db, "taken-slug", "movable-slug") })

	if _, err := posts.Create(&models.Post{
		Title: "Taken", Slug: "taken-slug",
		Status: models.PostStatusDraft, AuthorID: author.ID,
	}); err != nil {
		t.Fatalf("create taken: %v", err)
	}
	movable, err := posts.Create(&models.Post{
		Title: "Movable", Slug: "movable-slug",
		Status: models.PostStatusDraft, AuthorID: author.ID,
	})
	if err != nil {
		t.Fatalf("create movable: %v", err)
	}

	movable.Slug = "taken-slug"
	if _, err := posts.Update(movable); !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("error = %v, want ErrDuplicateSlug", err)
	}
}

func TestPostAllocateSlugSuffixes(t *testing.T) {
	db := testDB(t)
	author := seedAuthor(t, db)
	posts := NewPostStore(db)

	t.Cleanup(func() { cleanPosts(t, db, "alloc-base", "alloc-base-1") })

	got, err := posts.AllocateSlug("alloc-base", nil)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got != "alloc-base" {
		t.Errorf("slug = %q, want alloc-base", got)
	}

	if _, err := posts.Create(&models.Post{
		Title: "Alloc Base", Slug: "alloc-base",
		Status: models.PostStatusDraft, AuthorID: author.ID,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err = posts.AllocateSlug("alloc-base", nil)
	if err != nil {
		t.Fatalf("allocate second: %v", err)
	}
	if got != "alloc-base-1" {
		t.Errorf("slug = %q, want alloc-base-1", got)
	}
}
