package ticketing

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkfest/jkfest-api/internal/models"
)

type fixture struct {
	svc     *Service
	store   *MemoryStore
	general models.TicketType
	vip     models.TicketType
	free    models.TicketType
	soldOut models.TicketType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMemoryStore()

	f := &fixture{
		store: store,
		svc:   NewService(store),
		general: models.TicketType{
			ID:        uuid.New(),
			Name:      "Entrada General",
			Price:     decimal.RequireFromString("45.00"),
			Available: true,
		},
		vip: models.TicketType{
			ID:        uuid.New(),
			Name:      "VIP",
			Price:     decimal.RequireFromString("150.00"),
			Available: true,
		},
		free: models.TicketType{
			ID:        uuid.New(),
			Name:      "Cortesía",
			Price:     decimal.Zero,
			Available: true,
		},
		soldOut: models.TicketType{
			ID:        uuid.New(),
			Name:      "Early Bird",
			Price:     decimal.RequireFromString("30.00"),
			Available: false,
		},
	}
	store.SeedTicketType(f.general)
	store.SeedTicketType(f.vip)
	store.SeedTicketType(f.free)
	store.SeedTicketType(f.soldOut)
	return f
}

func (f *fixture) issueGeneral(t *testing.T, quantity int) *models.Order {
	t.Helper()
	order, err := f.svc.Issue(context.Background(),
		Customer{Name: "Ana Torres", Email: "ana@example.com", Country: "ES"},
		[]LineItem{{TicketTypeID: f.general.ID, Quantity: quantity}},
	)
	require.NoError(t, err)
	return order
}

func TestIssue_CreatesOneTicketPerUnit(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Issue(context.Background(),
		Customer{Name: "Ana Torres", Email: "ana@example.com", Country: "ES"},
		[]LineItem{
			{TicketTypeID: f.general.ID, Quantity: 2},
			{TicketTypeID: f.vip.ID, Quantity: 3},
		},
	)
	require.NoError(t, err)

	require.Len(t, order.Tickets, 5)
	codes := make(map[string]struct{})
	for _, ticket := range order.Tickets {
		assert.Equal(t, models.TicketValid, ticket.Status)
		assert.Equal(t, order.ID, ticket.OrderID)
		assert.Equal(t, "Ana Torres", ticket.OwnerName)
		codes[ticket.Code] = struct{}{}
	}
	assert.Len(t, codes, 5, "codes must be pairwise distinct")

	// 2*45.00 + 3*150.00
	assert.True(t, order.Total.Equal(decimal.RequireFromString("540.00")),
		"got total %s", order.Total)
}

func TestIssue_ConcreteGeneralScenario(t *testing.T) {
	f := newFixture(t)

	order := f.issueGeneral(t, 2)

	assert.True(t, order.Total.Equal(decimal.RequireFromString("90.00")),
		"got total %s", order.Total)
	require.Len(t, order.Tickets, 2)
	for _, ticket := range order.Tickets {
		assert.Equal(t, "Entrada General", ticket.TicketTypeName)
		assert.Equal(t, models.TicketValid, ticket.Status)
		assert.Equal(t, order.ID, ticket.OrderID)
	}
}

func TestIssue_EmptyCartRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), Customer{Name: "Ana"}, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestIssue_UnknownTypeRejectsWholeRequest(t *testing.T) {
	f := newFixture(t)

	// A resolvable item does not rescue a cart containing an unknown
	// type; the request is rejected outright instead of under-charging.
	_, err := f.svc.Issue(context.Background(), Customer{Name: "Ana"},
		[]LineItem{
			{TicketTypeID: f.general.ID, Quantity: 1},
			{TicketTypeID: uuid.New(), Quantity: 1},
		},
	)
	assert.ErrorIs(t, err, ErrUnknownTicketType)

	counts, err := f.store.CountTicketsByStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts, "nothing may be persisted on rejection")
}

func TestIssue_UnavailableTypeRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), Customer{Name: "Ana"},
		[]LineItem{{TicketTypeID: f.soldOut.ID, Quantity: 1}})
	assert.ErrorIs(t, err, ErrUnknownTicketType)
}

func TestIssue_ZeroTotalRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), Customer{Name: "Ana"},
		[]LineItem{{TicketTypeID: f.free.ID, Quantity: 2}})
	assert.ErrorIs(t, err, ErrZeroTotal)
}

func TestIssue_ZeroQuantityRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), Customer{Name: "Ana"},
		[]LineItem{{TicketTypeID: f.general.ID, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestLookup_RoundTripForFreshTicket(t *testing.T) {
	f := newFixture(t)
	order := f.issueGeneral(t, 1)
	ticket := order.Tickets[0]

	result, err := f.svc.Lookup(context.Background(), ticket.Code)
	require.NoError(t, err)

	assert.Equal(t, ScanValid, result.Status)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, "Ana Torres", result.Ticket.OwnerName)
	assert.Equal(t, "Entrada General", result.Ticket.TicketTypeName)
}

func TestLookup_IsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	order := f.issueGeneral(t, 1)
	ticket := order.Tickets[0]

	upper, err := f.svc.Lookup(context.Background(), ticket.Code)
	require.NoError(t, err)
	lower, err := f.svc.Lookup(context.Background(), "  "+strings.ToLower(ticket.Code)+" ")
	require.NoError(t, err)

	require.NotNil(t, upper.Ticket)
	require.NotNil(t, lower.Ticket)
	assert.Equal(t, upper.Ticket.ID, lower.Ticket.ID)
}

func TestLookup_UnknownCode(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Lookup(context.Background(), "NONEXISTENT")
	require.NoError(t, err)

	assert.Equal(t, ScanNotFound, result.Status)
	assert.Nil(t, result.Ticket)
}

func TestLookup_DoesNotMutate(t *testing.T) {
	f := newFixture(t)
	order := f.issueGeneral(t, 1)
	ticket := order.Tickets[0]

	for i := 0; i < 3; i++ {
		result, err := f.svc.Lookup(context.Background(), ticket.Code)
		require.NoError(t, err)
		assert.Equal(t, ScanValid, result.Status)
	}
}

func TestRedeem_ThenSiblingStaysValid(t *testing.T) {
	f := newFixture(t)
	order := f.issueGeneral(t, 2)
	redeemed, sibling := order.Tickets[0], order.Tickets[1]

	result, err := f.svc.Redeem(context.Background(), redeemed.ID)
	require.NoError(t, err)
	assert.Equal(t, ScanActivated, result.Status)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, models.TicketUsed, result.Ticket.Status)
	assert.NotNil(t, result.Ticket.RedeemedAt)

	afterRedeem, err := f.svc.Lookup(context.Background(), redeemed.Code)
	require.NoError(t, err)
	assert.Equal(t, ScanUsed, afterRedeem.Status)
	assert.Equal(t, "Ana Torres", afterRedeem.Ticket.OwnerName)

	siblingResult, err := f.svc.Lookup(context.Background(), sibling.Code)
	require.NoError(t, err)
	assert.Equal(t, ScanValid, siblingResult.Status)
}

func TestRedeem_SecondAttemptRefused(t *testing.T) {
	f := newFixture(t)
	order := f.issueGeneral(t, 1)
	ticket := order.Tickets[0]

	first, err := f.svc.Redeem(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, ScanActivated, first.Status)

	second, err := f.svc.Redeem(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ScanUsed, second.Status, "replay must not succeed twice")
}

func TestRedeem_UnknownTicket(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Redeem(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, ScanNotFound, result.Status)
}

func TestRedeem_ConcurrentAttemptsExactlyOneWinner(t *testing.T) {
	f := newFixture(t)
	order := f.issueGeneral(t, 1)
	ticket := order.Tickets[0]

	const attempts = 16
	results := make([]ScanStatus, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			result, err := f.svc.Redeem(context.Background(), ticket.ID)
			if assert.NoError(t, err) {
				results[slot] = result.Status
			}
		}(i)
	}
	wg.Wait()

	activated, used := 0, 0
	for _, status := range results {
		switch status {
		case ScanActivated:
			activated++
		case ScanUsed:
			used++
		}
	}
	assert.Equal(t, 1, activated, "exactly one attempt may win")
	assert.Equal(t, attempts-1, used)
}

func TestRevoke_ThenLookupReportsRevoked(t *testing.T) {
	f := newFixture(t)
	order := f.issueGeneral(t, 1)
	ticket := order.Tickets[0]

	result, err := f.svc.Revoke(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ScanRevoked, result.Status)
	require.NotNil(t, result.Ticket)
	assert.NotNil(t, result.Ticket.RevokedAt)

	lookup, err := f.svc.Lookup(context.Background(), ticket.Code)
	require.NoError(t, err)
	assert.Equal(t, ScanRevoked, lookup.Status, "revoked is reported distinctly from used")

	// Terminal: a revoked ticket cannot be redeemed.
	redeem, err := f.svc.Redeem(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ScanRevoked, redeem.Status)
}

func TestRevoke_UsedTicketRefused(t *testing.T) {
	f := newFixture(t)
	order := f.issueGeneral(t, 1)
	ticket := order.Tickets[0]

	_, err := f.svc.Redeem(context.Background(), ticket.ID)
	require.NoError(t, err)

	result, err := f.svc.Revoke(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ScanUsed, result.Status)

	reread, err := f.svc.Lookup(context.Background(), ticket.Code)
	require.NoError(t, err)
	assert.Equal(t, ScanUsed, reread.Status, "used is terminal")
}

func TestStats_CountsByStatus(t *testing.T) {
	f := newFixture(t)
	order := f.issueGeneral(t, 3)

	_, err := f.svc.Redeem(context.Background(), order.Tickets[0].ID)
	require.NoError(t, err)
	_, err = f.svc.Revoke(context.Background(), order.Tickets[1].ID)
	require.NoError(t, err)

	counts, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.TicketValid])
	assert.Equal(t, int64(1), counts[models.TicketUsed])
	assert.Equal(t, int64(1), counts[models.TicketRevoked])
}

// collidingStore reports the first n codes as taken to exercise the
// generate -> check-not-exists retry loop.
type collidingStore struct {
	*MemoryStore
	collisions int
}

func (s *collidingStore) CodeExists(ctx context.Context, code string) (bool, error) {
	if s.collisions > 0 {
		s.collisions--
		return true, nil
	}
	return s.MemoryStore.CodeExists(ctx, code)
}

func TestIssue_RetriesOnCodeCollision(t *testing.T) {
	f := newFixture(t)
	svc := NewService(&collidingStore{MemoryStore: f.store, collisions: 2})

	order, err := svc.Issue(context.Background(),
		Customer{Name: "Ana Torres", Email: "ana@example.com", Country: "ES"},
		[]LineItem{{TicketTypeID: f.general.ID, Quantity: 1}},
	)
	require.NoError(t, err)
	require.Len(t, order.Tickets, 1)
	assert.NotEmpty(t, order.Tickets[0].Code)
}

func TestIssue_FailsLoudlyWhenCodeSpaceExhausted(t *testing.T) {
	f := newFixture(t)
	svc := NewService(&collidingStore{MemoryStore: f.store, collisions: 1 << 20})

	_, err := svc.Issue(context.Background(),
		Customer{Name: "Ana Torres", Email: "ana@example.com", Country: "ES"},
		[]LineItem{{TicketTypeID: f.general.ID, Quantity: 1}},
	)
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestOrder_ConfirmationViewIncludesTickets(t *testing.T) {
	f := newFixture(t)
	issued := f.issueGeneral(t, 2)

	order, err := f.svc.Order(context.Background(), issued.ID)
	require.NoError(t, err)
	assert.Len(t, order.Tickets, 2)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("90.00")))

	_, err = f.svc.Order(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
