package ticketing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jkfest/jkfest-api/internal/models"
)

// ErrNotFound is returned by Store lookups when no row matches.
var ErrNotFound = errors.New("ticketing: not found")

// Store is the persistence boundary of the ticket lifecycle. The
// service never touches the database directly, so the state machine can
// be exercised against the in-memory implementation in tests and local
// development.
type Store interface {
	// FindTicketType resolves a ticket type for pricing. Returns
	// ErrNotFound for unknown ids.
	FindTicketType(ctx context.Context, id uuid.UUID) (*models.TicketType, error)

	// CodeExists reports whether a normalized code is already taken.
	CodeExists(ctx context.Context, code string) (bool, error)

	// CreateOrderWithTickets persists the order and all of its tickets
	// as a single transaction. Either everything is written or nothing.
	CreateOrderWithTickets(ctx context.Context, order *models.Order, tickets []*models.Ticket) error

	// FindTicketByCode looks a ticket up by its normalized code.
	FindTicketByCode(ctx context.Context, code string) (*models.Ticket, error)

	// FindTicket looks a ticket up by id.
	FindTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error)

	// TrySetStatus performs the conditional transition
	// "status = to WHERE id = ? AND status = from" and reports whether
	// this caller won the update. A false return with a nil error means
	// the ticket was not in the expected prior state.
	TrySetStatus(ctx context.Context, id uuid.UUID, from, to models.TicketStatus, at time.Time) (bool, error)

	// FindOrder returns an order with its line items and tickets.
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// CountTicketsByStatus returns ticket counts keyed by status.
	CountTicketsByStatus(ctx context.Context) (map[models.TicketStatus]int64, error)
}
