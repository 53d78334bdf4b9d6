package stripe

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
)

// EventRepository records processed payment-provider deliveries. The primary
// key is the provider event id, so the table doubles as a durable replay fence
// behind the redis guard.
type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository
	CreateEvent(ctx context.Context, event *models.PaymentEvent) error
	FindEvent(ctx context.Context, id string) (*models.PaymentEvent, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository builds a payment event repository bound to the provided DB.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	if tx == nil {
		return r
	}
	return &eventRepository{db: tx}
}

func (r *eventRepository) CreateEvent(ctx context.Context, event *models.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindEvent(ctx context.Context, id string) (*models.PaymentEvent, error) {
	var event models.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}
