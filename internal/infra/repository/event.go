package repository

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/eventgate/scanlink/internal/domain"
	"github.com/eventgate/scanlink/internal/infra/database/models"
)

// EventRepository looks up scope (event) metadata. Events change rarely and
// are read on every scan, so lookups go through an in-process cache.
type EventRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{
		db:    db,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (r *EventRepository) Create(ctx context.Context, e domain.Event) error {

	row := models.Event{
		ID:       e.ID,
		Name:     e.Name,
		StartsAt: e.StartsAt,
		EndsAt:   e.EndsAt,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return classify("event.Create", err)
	}

	r.cache.Delete(e.ID)
	return nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (domain.Event, error) {

	if cached, found := r.cache.Get(id); found {
		return cached.(domain.Event), nil
	}

	var row models.Event
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Event{}, domain.NotFoundError{Resource: "event"}
		}
		return domain.Event{}, classify("event.Get", err)
	}

	event := domain.Event{
		ID:        row.ID,
		Name:      row.Name,
		StartsAt:  row.StartsAt,
		EndsAt:    row.EndsAt,
		CreatedAt: row.CDate,
	}

	r.cache.Set(id, event, cache.DefaultExpiration)
	return event, nil
}
