package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomType is the kind of accommodation
type RoomType string

const (
	RoomTypeSingle RoomType = "Single"
	RoomTypeDouble RoomType = "Double"
	RoomTypeSuite  RoomType = "Suite"
	RoomTypeStudio RoomType = "Studio"
)

// IsValid reports whether t is a known room type
func (t RoomType) IsValid() bool {
	switch t {
	case RoomTypeSingle, RoomTypeDouble, RoomTypeSuite, RoomTypeStudio:
		return true
	}
	return false
}

// ApprovalStatus is the listing workflow state of a room. Every room carries
// one; admin-created rooms start approved, warden-created rooms start pending.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid reports whether s is a known approval status
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// DefaultRoomImageURL is used when a room is created without an image
const DefaultRoomImageURL = "https://images.unsplash.com/photo-1582719508461-905c673771fd?q=80&w=800"

// Room represents a bookable campus room
type Room struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	RoomNumber     string         `json:"room_number" db:"room_number"`
	Type           RoomType       `json:"type" db:"type"`
	Price          float64        `json:"price" db:"price"`
	Capacity       int            `json:"capacity" db:"capacity"`
	Amenities      StringArray    `json:"amenities" db:"amenities"`
	Rating         float64        `json:"rating" db:"rating"`
	ImageURL       string         `json:"image_url" db:"image_url"`
	IsAvailable    bool           `json:"is_available" db:"is_available"`
	Description    string         `json:"description" db:"description"`
	University     string         `json:"university" db:"university"`
	ApprovalStatus ApprovalStatus `json:"approval_status" db:"approval_status"`
	WardenID       *uuid.UUID     `json:"warden_id,omitempty" db:"warden_id"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// AcceptsBookings reports whether new bookings or requests may target the room
func (r *Room) AcceptsBookings() bool {
	return r.IsAvailable && r.ApprovalStatus == ApprovalApproved
}

// RoomFilter narrows room listings. Nil fields are not applied.
type RoomFilter struct {
	Type           *RoomType
	MinPrice       *float64
	MaxPrice       *float64
	Available      *bool
	ApprovalStatus *ApprovalStatus
}

// RoomUpdate is a partial update; nil fields are left unchanged
type RoomUpdate struct {
	RoomNumber  *string   `json:"room_number"`
	Type        *RoomType `json:"type"`
	Price       *float64  `json:"price"`
	Capacity    *int      `json:"capacity"`
	Amenities   []string  `json:"amenities"`
	ImageURL    *string   `json:"image_url"`
	IsAvailable *bool     `json:"is_available"`
	Description *string   `json:"description"`
	University  *string   `json:"university"`
}

// Apply copies the set fields onto room
func (u RoomUpdate) Apply(room *Room) {
	if u.RoomNumber != nil {
		room.RoomNumber = *u.RoomNumber
	}
	if u.Type != nil {
		room.Type = *u.Type
	}
	if u.Price != nil {
		room.Price = *u.Price
	}
	if u.Capacity != nil {
		room.Capacity = *u.Capacity
	}
	if u.Amenities != nil {
		room.Amenities = StringArray(u.Amenities)
	}
	if u.ImageURL != nil {
		room.ImageURL = *u.ImageURL
	}
	if u.IsAvailable != nil {
		room.IsAvailable = *u.IsAvailable
	}
	if u.Description != nil {
		room.Description = *u.Description
	}
	if u.University != nil {
		room.University = *u.University
	}
}

// RoomDetail is a room with its reviews and computed rating
type RoomDetail struct {
	Room
	Reviews []Review `json:"reviews"`
}
