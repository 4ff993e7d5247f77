package ticketing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jkfest/jkfest-api/internal/models"
)

// MemoryStore keeps everything in process memory behind one mutex, so
// the lifecycle logic can be exercised without a live database. The
// conditional status update holds the same exactly-one-winner contract
// as the postgres store.
type MemoryStore struct {
	mu      sync.Mutex
	types   map[uuid.UUID]models.TicketType
	orders  map[uuid.UUID]models.Order
	tickets map[uuid.UUID]models.Ticket
	byCode  map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		types:   make(map[uuid.UUID]models.TicketType),
		orders:  make(map[uuid.UUID]models.Order),
		tickets: make(map[uuid.UUID]models.Ticket),
		byCode:  make(map[string]uuid.UUID),
	}
}

// SeedTicketType registers reference data for issuance pricing.
func (s *MemoryStore) SeedTicketType(tt models.TicketType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[tt.ID] = tt
}

func (s *MemoryStore) FindTicketType(ctx context.Context, id uuid.UUID) (*models.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tt, ok := s.types[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tt, nil
}

func (s *MemoryStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byCode[code]
	return ok, nil
}

func (s *MemoryStore) CreateOrderWithTickets(ctx context.Context, order *models.Order, tickets []*models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// All-or-nothing: check every code before writing anything.
	for _, ticket := range tickets {
		if _, taken := s.byCode[ticket.Code]; taken {
			return ErrCodeSpaceExhausted
		}
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	s.orders[order.ID] = *order
	for _, ticket := range tickets {
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = now
		}
		s.tickets[ticket.ID] = *ticket
		s.byCode[ticket.Code] = ticket.ID
	}
	return nil
}

func (s *MemoryStore) FindTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	ticket := s.tickets[id]
	return &ticket, nil
}

func (s *MemoryStore) FindTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ticket, nil
}

func (s *MemoryStore) TrySetStatus(ctx context.Context, id uuid.UUID, from, to models.TicketStatus, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok || ticket.Status != from {
		return false, nil
	}

	ticket.Status = to
	switch to {
	case models.TicketUsed:
		ticket.RedeemedAt = &at
	case models.TicketRevoked:
		ticket.RevokedAt = &at
	}
	s.tickets[id] = ticket
	return true, nil
}

func (s *MemoryStore) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order.Tickets = nil
	for _, ticket := range s.tickets {
		if ticket.OrderID == id {
			order.Tickets = append(order.Tickets, ticket)
		}
	}
	return &order, nil
}

func (s *MemoryStore) CountTicketsByStatus(ctx context.Context) (map[models.TicketStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[models.TicketStatus]int64)
	for _, ticket := range s.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}
