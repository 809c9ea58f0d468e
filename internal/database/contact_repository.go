package database

import (
	"fmt"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/google/uuid"
)

// ContactRepository handles contact message database operations
type ContactRepository struct {
	db DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create stores a new contact message
func (r *ContactRepository) Create(c *models.Contact) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Status = models.ContactStatusNew
	c.CreatedAt = time.Now()

	_, err := r.db.Exec(`
		INSERT INTO contacts (id, name, email, subject, message, user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Email, c.Subject, c.Message, c.UserID, c.Status, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// List returns contact messages newest first, optionally filtered by status
func (r *ContactRepository) List(status *models.ContactStatus) ([]models.Contact, error) {
	contacts := []models.Contact{}
	query := `SELECT id, name, email, subject, message, user_id, status, created_at FROM contacts`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	if err := r.db.Select(&contacts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// UpdateStatus sets the handling status of a message
func (r *ContactRepository) UpdateStatus(id uuid.UUID, status models.ContactStatus) error {
	result, err := r.db.Exec(`UPDATE contacts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update contact status: %w", err)
	}
	return expectOneRow(result, "update contact status")
}
