package usecase

import (
	"context"

	"github.com/eventgate/scanlink/internal/domain"
)

type EventUsecase struct {
	repo EventRepository
}

func NewEventUsecase(repo EventRepository) *EventUsecase {
	return &EventUsecase{repo: repo}
}

func (uc *EventUsecase) Create(ctx context.Context, event domain.Event) error {
	return uc.repo.Create(ctx, event)
}

func (uc *EventUsecase) Get(ctx context.Context, id string) (domain.Event, error) {
	return uc.repo.Get(ctx, id)
}
