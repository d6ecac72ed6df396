// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug and machine-key generation from
// arbitrary display names. Slugs use hyphens ("about-us"), keys use
// underscores ("about_us"); both are lowercase ASCII.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonSlugChars matches anything that isn't a lowercase letter, digit,
	// whitespace, or hyphen.
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	// nonKeyChars is the underscore-separated equivalent.
	nonKeyChars = regexp.MustCompile(`[^a-z0-9\s_]`)

	whitespaceRun  = regexp.MustCompile(`\s+`)
	hyphenRun      = regexp.MustCompile(`-{2,}`)
	underscoreRun  = regexp.MustCompile(`_{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonSlugChars.ReplaceAllString(result, "")
	result = whitespaceRun.ReplaceAllString(result, "-")
	result = hyphenRun.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Key creates a machine identifier from the given string, used for
// client-side lookups. Same rules as Generate but underscore-separated.
// Example: "About Us" → "about_us"
func Key(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonKeyChars.ReplaceAllString(result, "")
	result = whitespaceRun.ReplaceAllString(result, "_")
	result = underscoreRun.ReplaceAllString(result, "_")
	return strings.Trim(result, "_")
}
