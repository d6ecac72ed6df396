// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for API inputs.
const (
	maxNameLen     = 200
	maxTitleLen    = 300
	maxContentLen  = 100_000
	maxDescLen     = 1_000
	maxMetaLen     = 500
	maxEmailLen    = 254
	maxSubjectLen  = 300
	maxMessageLen  = 10_000
	maxAltTextLen  = 500
	maxFilenameLen = 255
	minPasswordLen = 8
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateEmail checks an email address. Returns the first error found,
// or "" when valid.
func validateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long."
	}
	if !emailPattern.MatchString(email) {
		return "Email is not a valid address."
	}
	return ""
}

// validateContact checks contact-form inputs.
func validateContact(name, email, message string) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	if strings.TrimSpace(message) == "" {
		return "Message is required."
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		return "Message is too long (max 10,000 characters)."
	}
	return ""
}

// validatePost checks post title and content inputs.
func validatePost(title, content string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	return ""
}

// validatePassword checks a new password.
func validatePassword(password string) string {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	return ""
}
