package ticketing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jkfest/jkfest-api/internal/models"
	"gorm.io/gorm"
)

// GormStore is the postgres-backed Store. The valid->used and
// valid->revoked transitions rely on a conditional UPDATE so the
// exactly-one-winner guarantee holds across concurrent gates.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindTicketType(ctx context.Context, id uuid.UUID) (*models.TicketType, error) {
	var tt models.TicketType
	if err := s.db.WithContext(ctx).First(&tt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tt, nil
}

func (s *GormStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) CreateOrderWithTickets(ctx context.Context, order *models.Order, tickets []*models.Ticket) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, ticket := range tickets {
			if err := tx.Create(ticket).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) FindTicketByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).First(&ticket, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *GormStore) FindTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (s *GormStore) TrySetStatus(ctx context.Context, id uuid.UUID, from, to models.TicketStatus, at time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	switch to {
	case models.TicketUsed:
		updates["redeemed_at"] = at
	case models.TicketRevoked:
		updates["revoked_at"] = at
	}

	res := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Tickets").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *GormStore) CountTicketsByStatus(ctx context.Context) (map[models.TicketStatus]int64, error) {
	type row struct {
		Status models.TicketStatus
		Count  int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TicketStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
