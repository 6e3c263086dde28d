package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eventgate/scanlink/internal/domain"
	"github.com/eventgate/scanlink/internal/infra/database/models"
)

type CheckinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

func (r *CheckinRepository) Insert(ctx context.Context, c domain.Checkin) (domain.Checkin, error) {

	row := models.Checkin{
		ScopeID:    c.ScopeID,
		AttendeeID: c.AttendeeID,
		Kind:       string(c.Kind),
		Direction:  c.Direction,
		DeviceID:   c.DeviceID,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Checkin{}, classify("checkin.Insert", err)
	}

	c.ID = row.ID
	c.CreatedAt = row.CDate
	return c, nil
}

// LastSecurityDirection returns the most recent in/out state recorded for
// the attendee in the scope, so the next security scan can toggle it.
func (r *CheckinRepository) LastSecurityDirection(ctx context.Context, scopeID, attendeeID string) (domain.SecurityDirection, error) {

	var row models.Checkin
	err := r.db.WithContext(ctx).
		Where("scope_id = ? AND attendee_id = ? AND kind = ?", scopeID, attendeeID, string(domain.CheckinSecurity)).
		Order("id DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.NotFoundError{Resource: "security checkin"}
		}
		return "", classify("checkin.LastSecurityDirection", err)
	}

	return domain.SecurityDirection(row.Direction), nil
}
