package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/pkg/validator"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const (
	msgDuplicateRoomNumber = "Room number already exists"
	msgRoomHasBookings     = "Room has active bookings"
)

// RoomService manages the room inventory
type RoomService struct {
	rooms         *database.RoomRepository
	reviews       *database.ReviewRepository
	notifications *NotificationService
	validator     *validator.Validator
	db            database.DB
	logger        *logrus.Logger
}

// NewRoomService creates a new room service
func NewRoomService(
	db database.DB,
	rooms *database.RoomRepository,
	reviews *database.ReviewRepository,
	notifications *NotificationService,
	v *validator.Validator,
	logger *logrus.Logger,
) *RoomService {
	return &RoomService{
		rooms:         rooms,
		reviews:       reviews,
		notifications: notifications,
		validator:     v,
		db:            db,
		logger:        logger,
	}
}

// CreateRoomInput is the payload for a new room
type CreateRoomInput struct {
	RoomNumber  string          `json:"room_number" validate:"required,max=20"`
	Type        models.RoomType `json:"type" validate:"required,oneof=Single Double Suite Studio"`
	Price       float64         `json:"price" validate:"gt=0"`
	Capacity    int             `json:"capacity" validate:"omitempty,min=1"`
	Amenities   []string        `json:"amenities"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	Description string          `json:"description" validate:"max=2000"`
	University  string          `json:"university" validate:"max=200"`
}

// FindRoom is the booking core's view of a room: nil when absent
func (s *RoomService) FindRoom(id uuid.UUID) (*models.Room, error) {
	return s.rooms.GetByID(id)
}

// List returns rooms matching filter. Without an approval filter only
// approved rooms are listed.
func (s *RoomService) List(filter models.RoomFilter) ([]models.Room, error) {
	if filter.ApprovalStatus == nil {
		approved := models.ApprovalApproved
		filter.ApprovalStatus = &approved
	}
	if filter.Type != nil && !filter.Type.IsValid() {
		return nil, ValidationError("Invalid room type")
	}
	if filter.ApprovalStatus != nil && !filter.ApprovalStatus.IsValid() {
		return nil, ValidationError("Invalid approval status")
	}
	return s.rooms.List(filter)
}

// Get returns a room with its reviews
func (s *RoomService) Get(id uuid.UUID) (*models.RoomDetail, error) {
	room, err := s.rooms.GetByID(id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, NotFoundError(msgRoomNotFound)
	}

	reviews, err := s.reviews.ListByRoom(id)
	if err != nil {
		return nil, err
	}

	detail := &models.RoomDetail{Room: *room, Reviews: reviews}
	if avg, ok := averageRating(reviews); ok {
		detail.Rating = avg
	}
	return detail, nil
}

// Create adds a room. Admin rooms are listed immediately; warden rooms wait
// for admin approval.
func (s *RoomService) Create(p models.Principal, in CreateRoomInput) (*models.Room, error) {
	if !p.IsStaff() {
		return nil, AuthorizationError(msgAccessDenied)
	}
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	if fields := s.validator.Struct(in); fields != nil {
		return nil, fieldsError(fields)
	}

	room := &models.Room{
		RoomNumber:     in.RoomNumber,
		Type:           in.Type,
		Price:          in.Price,
		Capacity:       in.Capacity,
		Amenities:      models.StringArray(in.Amenities),
		ImageURL:       in.ImageURL,
		IsAvailable:    true,
		Description:    in.Description,
		University:     in.University,
		ApprovalStatus: models.ApprovalApproved,
	}
	if room.Capacity == 0 {
		room.Capacity = 1
	}
	if room.ImageURL == "" {
		room.ImageURL = models.DefaultRoomImageURL
	}
	if p.Role == models.RoleWarden {
		wardenID := p.UserID
		room.WardenID = &wardenID
		room.ApprovalStatus = models.ApprovalPending
	}

	if err := s.rooms.Create(room); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ConflictError(msgDuplicateRoomNumber)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"room_id":         room.ID,
		"room_number":     room.RoomNumber,
		"approval_status": room.ApprovalStatus,
	}).Info("Room created")

	return room, nil
}

// Update applies a partial update. Admins may edit any room, wardens only
// their own.
func (s *RoomService) Update(p models.Principal, id uuid.UUID, update models.RoomUpdate) (*models.Room, error) {
	room, err := s.rooms.GetByID(id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, NotFoundError(msgRoomNotFound)
	}
	if !canManageRoom(p, room) {
		return nil, AuthorizationError(msgAccessDenied)
	}

	if update.Type != nil && !update.Type.IsValid() {
		return nil, ValidationError("Invalid room type")
	}
	if update.Price != nil && *update.Price <= 0 {
		return nil, ValidationError("Price must be greater than zero")
	}
	if update.Capacity != nil && *update.Capacity < 1 {
		return nil, ValidationError("Capacity must be at least 1")
	}
	if update.RoomNumber != nil && strings.TrimSpace(*update.RoomNumber) == "" {
		return nil, ValidationError("Room number cannot be empty")
	}

	update.Apply(room)
	if err := s.rooms.Update(room); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ConflictError(msgDuplicateRoomNumber)
		}
		return nil, err
	}
	return room, nil
}

// Delete removes a room that has no pending, confirmed or completed bookings.
// Cancelled bookings of the room go with it.
func (s *RoomService) Delete(p models.Principal, id uuid.UUID) error {
	if !p.IsAdmin() {
		return AuthorizationError(msgAdminOnly)
	}

	err := database.RunInTx(s.db, func(tx *sqlx.Tx) error {
		room, err := s.rooms.GetByIDForUpdate(tx, id)
		if err != nil {
			return err
		}
		if room == nil {
			return NotFoundError(msgRoomNotFound)
		}

		active, err := s.rooms.HasActiveBookings(tx, id)
		if err != nil {
			return err
		}
		if active {
			return ConflictError(msgRoomHasBookings)
		}

		return s.rooms.Delete(tx, id)
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return NotFoundError(msgRoomNotFound)
	case errors.Is(err, database.ErrForeignKeyViolation):
		return ConflictError(msgRoomHasBookings)
	}
	return err
}

// SetApproval approves or rejects a room listing and tells its warden
func (s *RoomService) SetApproval(p models.Principal, id uuid.UUID, status models.ApprovalStatus) (*models.Room, error) {
	if !p.IsAdmin() {
		return nil, AuthorizationError(msgAdminOnly)
	}
	if status != models.ApprovalApproved && status != models.ApprovalRejected {
		return nil, ValidationError("Status must be approved or rejected")
	}

	room, err := s.rooms.GetByID(id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, NotFoundError(msgRoomNotFound)
	}

	if err := s.rooms.SetApprovalStatus(id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFoundError(msgRoomNotFound)
		}
		return nil, err
	}
	room.ApprovalStatus = status

	if room.WardenID != nil {
		kind, verb := models.NotificationInfo, "approved"
		if status == models.ApprovalRejected {
			kind, verb = models.NotificationWarning, "rejected"
		}
		relatedType := models.RelatedRoom
		_, err := s.notifications.Notify(s.db, NotifyInput{
			UserID:      *room.WardenID,
			Type:        kind,
			Title:       fmt.Sprintf("Room Listing %s", strings.ToUpper(verb[:1])+verb[1:]),
			Message:     fmt.Sprintf("Your listing for room %s was %s.", room.RoomNumber, verb),
			RelatedID:   &room.ID,
			RelatedType: &relatedType,
		})
		if err != nil {
			s.logger.WithError(err).WithField("room_id", room.ID).Warn("Failed to notify warden")
		}
	}

	return room, nil
}

func canManageRoom(p models.Principal, room *models.Room) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == models.RoleWarden && room.WardenID != nil && *room.WardenID == p.UserID
}

func averageRating(reviews []models.Review) (float64, bool) {
	if len(reviews) == 0 {
		return 0, false
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return math.Round(float64(total)/float64(len(reviews))*100) / 100, true
}

// fieldsError reports failed struct validation as a single message
func fieldsError(fields map[string]string) *Error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return ValidationError("Invalid or missing fields: %s", strings.Join(names, ", "))
}
