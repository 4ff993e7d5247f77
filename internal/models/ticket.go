package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketValid   TicketStatus = "valid"
	TicketUsed    TicketStatus = "used"
	TicketRevoked TicketStatus = "revoked"
)

type TicketDelivery string

const (
	DeliveryDigital  TicketDelivery = "digital"
	DeliveryPhysical TicketDelivery = "physical"
)

// Ticket is one unit of admission. Every ticket starts out valid; the
// only transitions are valid->used (gate redemption) and valid->revoked
// (administrative). Both are terminal. Tickets are never deleted.
type Ticket struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Code           string         `gorm:"uniqueIndex;not null" json:"code"`
	OrderID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	TicketTypeID   uuid.UUID      `gorm:"type:uuid;not null" json:"ticket_type_id"`
	TicketTypeName string         `gorm:"not null" json:"ticket_type_name"`
	OwnerName      string         `gorm:"not null" json:"owner_name"`
	OwnerEmail     string         `json:"owner_email,omitempty"`
	Status         TicketStatus   `gorm:"not null;default:'valid'" json:"status"`
	Delivery       TicketDelivery `gorm:"not null;default:'digital'" json:"delivery"`
	CreatedAt      time.Time      `json:"created_at"`
	RedeemedAt     *time.Time     `json:"redeemed_at,omitempty"`
	RevokedAt      *time.Time     `json:"revoked_at,omitempty"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
