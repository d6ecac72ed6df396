package token

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"polycms/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "editor@example.com",
		Role:  models.RoleEditor,
	}
}

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	u := testUser()

	signed, err := m.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != u.ID {
		t.Errorf("user id = %s, want %s", claims.UserID, u.ID)
	}
	if claims.Email != u.Email {
		t.Errorf("email = %q, want %q", claims.Email, u.Email)
	}
	if claims.Role != "editor" {
		t.Errorf("role = %q, want editor", claims.Role)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewManager("secret-a", time.Minute).Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewManager("secret-b", time.Minute).Verify(signed); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	signed, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(signed); err == nil {
		t.Error("expired token was accepted")
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	signed, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", signed)
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := m.Verify(tampered); err == nil {
		t.Error("tampered token was accepted")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	if _, err := m.Verify("not-a-jwt"); err == nil {
		t.Error("garbage token was accepted")
	}
}
