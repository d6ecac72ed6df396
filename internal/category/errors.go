// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package category

import (
	"errors"
	"fmt"
)

// Sentinel errors for the category engine. Handlers map these onto HTTP
// status codes: not-found → 404, conflicts → 409, validation → 400.
var (
	// ErrNotFound is returned when the requested category does not exist.
	ErrNotFound = errors.New("category not found")

	// ErrHasChildren blocks deletion of a category that other categories
	// still reference as their parent.
	ErrHasChildren = errors.New("category has child categories")

	// ErrHasPosts blocks deletion of a category that posts still reference.
	ErrHasPosts = errors.New("category is referenced by posts")

	// ErrCycle blocks a parent assignment that would make a category its
	// own ancestor.
	ErrCycle = errors.New("parent assignment would create a cycle")

	// ErrDuplicate is returned by Store implementations when an insert or
	// update hits the unique index on slug or key. The service absorbs it
	// by retrying with the next suffix; it never reaches callers.
	ErrDuplicate = errors.New("duplicate slug or key")
)

// ValidationError reports invalid caller input (missing name, a name that
// derives to an empty slug, a malformed color).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
