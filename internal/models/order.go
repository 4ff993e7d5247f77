package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is created exactly once when a payment is confirmed and is
// immutable afterwards; there is no update or delete path.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CustomerName    string          `gorm:"not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"not null" json:"customer_email"`
	CustomerCountry string          `gorm:"not null" json:"customer_country"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Items           []OrderItem     `json:"items"`
	Tickets         []Ticket        `json:"tickets,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderItem is one (ticket type, quantity) line of a purchase, stored
// exactly as submitted.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	TicketTypeID uuid.UUID       `gorm:"type:uuid;not null" json:"ticket_type_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
}

func (order *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return
}

func (item *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return
}
