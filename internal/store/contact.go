package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"polycms/internal/models"
)

// ContactStore persists contact-form submissions.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore returns a new ContactStore.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

const contactColumns = `id, name, email, subject, message, handled, created_at`

func scanContact(scanner interface{ Scan(...any) error }) (*models.Contact, error) {
	var c models.Contact
	err := scanner.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &c.Handled, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns submissions newest first. When unhandledOnly is true,
// already-handled submissions are filtered out.
func (s *ContactStore) List(unhandledOnly bool) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts`
	if unhandledOnly {
		query += ` WHERE NOT handled`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var items []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a submission by ID. Returns nil if not found.
func (s *ContactStore) FindByID(id uuid.UUID) (*models.Contact, error) {
	row := s.db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find contact by id: %w", err)
	}
	return c, nil
}

// Create inserts a new submission and returns it.
func (s *ContactStore) Create(c *models.Contact) (*models.Contact, error) {
	row := s.db.QueryRow(`
		INSERT INTO contacts (name, email, subject, message)
		VALUES ($1, $2, $3, $4)
		RETURNING `+contactColumns,
		c.Name, c.Email, c.Subject, c.Message,
	)
	result, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return result, nil
}

// MarkHandled flags a submission as dealt with. Returns false if the
// submission does not exist.
func (s *ContactStore) MarkHandled(id uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`UPDATE contacts SET handled = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("mark contact handled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark contact handled: %w", err)
	}
	return n > 0, nil
}

// Delete removes a submission by ID.
func (s *ContactStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
