package ticketing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jkfest/jkfest-api/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart rejects issuance requests without line items.
	ErrEmptyCart = errors.New("ticketing: cart has no line items")

	// ErrUnknownTicketType rejects the whole request when any line item
	// references a missing or unavailable ticket type. Partially
	// resolvable carts are never silently under-charged.
	ErrUnknownTicketType = errors.New("ticketing: unknown or unavailable ticket type")

	// ErrInvalidQuantity rejects line items with quantity below one.
	ErrInvalidQuantity = errors.New("ticketing: line item quantity must be at least 1")

	// ErrZeroTotal rejects orders whose computed total is not positive.
	ErrZeroTotal = errors.New("ticketing: order total must be positive")

	// ErrCodeSpaceExhausted is returned when the bounded
	// generate-and-check loop cannot find a free code. With an 8
	// character code over a 31 letter alphabet this is effectively
	// unreachable and indicates a broken store.
	ErrCodeSpaceExhausted = errors.New("ticketing: could not generate a unique ticket code")
)

// codeRetries bounds the generate -> check-not-exists loop per ticket.
const codeRetries = 5

// ScanStatus tags the outcome of a gate scan. Business outcomes are
// data, not errors: gate UIs branch on the tag, never on a fault.
type ScanStatus string

const (
	ScanValid    ScanStatus = "valid"
	ScanUsed     ScanStatus = "used"
	ScanRevoked  ScanStatus = "revoked"
	ScanNotFound ScanStatus = "not_found"
	// ScanActivated is the observable result of a successful
	// redemption, not a stored ticket state.
	ScanActivated ScanStatus = "activated"
)

// ScanResult is what the gate UI renders after a lookup or redemption.
type ScanResult struct {
	Status  ScanStatus     `json:"status"`
	Message string         `json:"message"`
	Ticket  *models.Ticket `json:"ticket,omitempty"`
}

// LineItem is one (ticket type, quantity) pair of a purchase request.
type LineItem struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id"`
	Quantity     int       `json:"quantity"`
}

// Customer identifies the buyer as reported by the payment collaborator.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country"`
}

// Checkout is a cart waiting for its payment confirmation.
type Checkout struct {
	Customer Customer   `json:"customer"`
	Items    []LineItem `json:"items"`
}

// Service implements the ticket lifecycle: issuance after a confirmed
// payment, gate lookup, redemption and administrative revocation.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Quote validates a cart and computes its total. It applies the same
// rules as Issue without persisting anything, so checkout can price an
// invoice before the payment gateway is involved.
func (s *Service) Quote(ctx context.Context, items []LineItem) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, ErrEmptyCart
	}

	total := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 {
			return decimal.Zero, ErrInvalidQuantity
		}
		tt, err := s.store.FindTicketType(ctx, item.TicketTypeID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownTicketType, item.TicketTypeID)
			}
			return decimal.Zero, fmt.Errorf("resolving ticket type: %w", err)
		}
		if !tt.Available {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownTicketType, item.TicketTypeID)
		}
		total = total.Add(tt.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if !total.IsPositive() {
		return decimal.Zero, ErrZeroTotal
	}
	return total, nil
}

// Issue mints an order plus one valid ticket per purchased unit. It is
// called once per confirmed payment. The order and all tickets are
// written in a single transaction by the store.
func (s *Service) Issue(ctx context.Context, customer Customer, items []LineItem) (*models.Order, error) {
	total, err := s.Quote(ctx, items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerCountry: customer.Country,
		Total:           total,
	}

	var tickets []*models.Ticket
	for _, item := range items {
		tt, err := s.store.FindTicketType(ctx, item.TicketTypeID)
		if err != nil {
			return nil, fmt.Errorf("resolving ticket type: %w", err)
		}

		order.Items = append(order.Items, models.OrderItem{
			OrderID:      order.ID,
			TicketTypeID: tt.ID,
			Quantity:     item.Quantity,
			UnitPrice:    tt.Price,
		})

		for i := 0; i < item.Quantity; i++ {
			code, err := s.uniqueCode(ctx)
			if err != nil {
				return nil, err
			}
			tickets = append(tickets, &models.Ticket{
				ID:             uuid.New(),
				Code:           code,
				OrderID:        order.ID,
				TicketTypeID:   tt.ID,
				TicketTypeName: tt.Name,
				OwnerName:      customer.Name,
				OwnerEmail:     customer.Email,
				Status:         models.TicketValid,
				Delivery:       models.DeliveryDigital,
			})
		}
	}

	if err := s.store.CreateOrderWithTickets(ctx, order, tickets); err != nil {
		return nil, fmt.Errorf("persisting order: %w", err)
	}

	for _, ticket := range tickets {
		order.Tickets = append(order.Tickets, *ticket)
	}
	return order, nil
}

// uniqueCode loops generate -> check-not-exists with a bounded retry.
// The unique index on tickets.code remains the final arbiter for
// concurrent issuance.
func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		taken, err := s.store.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// Lookup is the read-only half of the gate flow. It never mutates:
// redemption is an explicit second step after the operator confirms.
func (s *Service) Lookup(ctx context.Context, code string) (*ScanResult, error) {
	ticket, err := s.store.FindTicketByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ScanResult{
				Status:  ScanNotFound,
				Message: "No ticket matches this code.",
			}, nil
		}
		return nil, fmt.Errorf("looking up ticket: %w", err)
	}

	switch ticket.Status {
	case models.TicketUsed:
		return &ScanResult{
			Status:  ScanUsed,
			Message: "Ticket was already redeemed.",
			Ticket:  ticket,
		}, nil
	case models.TicketRevoked:
		return &ScanResult{
			Status:  ScanRevoked,
			Message: "Ticket has been revoked. Entry denied.",
			Ticket:  ticket,
		}, nil
	default:
		return &ScanResult{
			Status:  ScanValid,
			Message: "Ticket is valid. Confirm to redeem.",
			Ticket:  ticket,
		}, nil
	}
}

// Redeem consumes a valid ticket at the gate. The valid->used
// transition is a conditional update at the store, so two simultaneous
// attempts on the same ticket produce exactly one activation; the loser
// gets the already-redeemed result, never a second success.
func (s *Service) Redeem(ctx context.Context, ticketID uuid.UUID) (*ScanResult, error) {
	now := time.Now().UTC()
	won, err := s.store.TrySetStatus(ctx, ticketID, models.TicketValid, models.TicketUsed, now)
	if err != nil {
		return nil, fmt.Errorf("redeeming ticket: %w", err)
	}

	ticket, err := s.store.FindTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ScanResult{
				Status:  ScanNotFound,
				Message: "No ticket matches this id.",
			}, nil
		}
		return nil, fmt.Errorf("reading ticket after redeem: %w", err)
	}

	if won {
		return &ScanResult{
			Status:  ScanActivated,
			Message: "Ticket redeemed. Entry granted.",
			Ticket:  ticket,
		}, nil
	}

	// Lost the conditional update: report the state someone else put
	// the ticket in.
	switch ticket.Status {
	case models.TicketRevoked:
		return &ScanResult{
			Status:  ScanRevoked,
			Message: "Ticket has been revoked. Entry denied.",
			Ticket:  ticket,
		}, nil
	default:
		return &ScanResult{
			Status:  ScanUsed,
			Message: "Ticket was already redeemed.",
			Ticket:  ticket,
		}, nil
	}
}

// Revoke is the administrative valid->revoked transition. Used tickets
// stay used; revocation only applies to tickets that could still enter.
func (s *Service) Revoke(ctx context.Context, ticketID uuid.UUID) (*ScanResult, error) {
	now := time.Now().UTC()
	won, err := s.store.TrySetStatus(ctx, ticketID, models.TicketValid, models.TicketRevoked, now)
	if err != nil {
		return nil, fmt.Errorf("revoking ticket: %w", err)
	}

	ticket, err := s.store.FindTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ScanResult{
				Status:  ScanNotFound,
				Message: "No ticket matches this id.",
			}, nil
		}
		return nil, fmt.Errorf("reading ticket after revoke: %w", err)
	}

	if won {
		return &ScanResult{
			Status:  ScanRevoked,
			Message: "Ticket revoked.",
			Ticket:  ticket,
		}, nil
	}

	switch ticket.Status {
	case models.TicketUsed:
		return &ScanResult{
			Status:  ScanUsed,
			Message: "Ticket was already redeemed and cannot be revoked.",
			Ticket:  ticket,
		}, nil
	default:
		return &ScanResult{
			Status:  ScanRevoked,
			Message: "Ticket was already revoked.",
			Ticket:  ticket,
		}, nil
	}
}

// Order returns an order with its items and tickets for the
// confirmation view.
func (s *Service) Order(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.store.FindOrder(ctx, id)
}

// Stats returns ticket counts by status for the admin dashboard.
func (s *Service) Stats(ctx context.Context) (map[models.TicketStatus]int64, error) {
	return s.store.CountTicketsByStatus(ctx)
}
