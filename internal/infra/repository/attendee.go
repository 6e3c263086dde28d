package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eventgate/scanlink/internal/domain"
	"github.com/eventgate/scanlink/internal/infra/database/models"
)

type AttendeeRepository struct {
	db *gorm.DB
}

func NewAttendeeRepository(db *gorm.DB) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

func (r *AttendeeRepository) Create(ctx context.Context, a domain.Attendee) error {

	var scope *string
	if a.ScopeID != "" {
		s := a.ScopeID
		scope = &s
	}

	row := models.Attendee{
		ID:      a.ID,
		ScopeID: scope,
		Name:    a.Name,
		Region:  a.Region,
		Phone:   a.Phone,
	}

	// Re-registration of the same attendee id replaces the attributes.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "region", "phone"}),
	}).Create(&row).Error
	if err != nil {
		return classify("attendee.Create", err)
	}

	return nil
}

func (r *AttendeeRepository) Get(ctx context.Context, id string) (domain.Attendee, error) {

	var row models.Attendee
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Attendee{}, domain.NotFoundError{Resource: "attendee"}
		}
		return domain.Attendee{}, classify("attendee.Get", err)
	}

	scope := ""
	if row.ScopeID != nil {
		scope = *row.ScopeID
	}

	return domain.Attendee{
		ID:        row.ID,
		ScopeID:   scope,
		Name:      row.Name,
		Region:    row.Region,
		Phone:     row.Phone,
		CreatedAt: row.CDate,
	}, nil
}
