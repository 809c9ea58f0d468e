package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/pkg/validator"
	"github.com/google/uuid"
)

// ContactService stores and triages contact form messages
type ContactService struct {
	repo      *database.ContactRepository
	validator *validator.Validator
}

// NewContactService creates a new contact service
func NewContactService(repo *database.ContactRepository, v *validator.Validator) *ContactService {
	return &ContactService{repo: repo, validator: v}
}

// ContactInput is a contact form submission
type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Submit stores a message. userID is set when the sender is signed in.
func (s *ContactService) Submit(in ContactInput, userID *uuid.UUID) (*models.Contact, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = s.validator.NormalizeEmail(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if fields := s.validator.Struct(in); fields != nil {
		return nil, fieldsError(fields)
	}

	contact := &models.Contact{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
		UserID:  userID,
	}
	if err := s.repo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// List returns messages for administrators
func (s *ContactService) List(p models.Principal, status *models.ContactStatus) ([]models.Contact, error) {
	if !p.IsAdmin() {
		return nil, AuthorizationError(msgAdminOnly)
	}
	if status != nil && !status.IsValid() {
		return nil, ValidationError("Invalid status filter")
	}
	return s.repo.List(status)
}

// UpdateStatus sets a message's handling status
func (s *ContactService) UpdateStatus(p models.Principal, id uuid.UUID, status models.ContactStatus) error {
	if !p.IsAdmin() {
		return AuthorizationError(msgAdminOnly)
	}
	if !status.IsValid() {
		return ValidationError("Invalid status")
	}
	if err := s.repo.UpdateStatus(id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NotFoundError("Contact message not found")
		}
		return err
	}
	return nil
}
