package repository

import (
	"context"
	"errors"
	"net"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eventgate/scanlink/internal/domain"
	"github.com/eventgate/scanlink/internal/infra/database/models"
)

// MappingRepository is the shared, authoritative mapping store. Every device
// in a scope reads and writes the same table; a single-row upsert keyed by
// (scope_id, token) is the only write primitive.
type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

func (r *MappingRepository) Upsert(ctx context.Context, m domain.Mapping) error {

	var scope *string
	if m.ScopeID != "" {
		s := m.ScopeID
		scope = &s
	}

	row := models.Mapping{
		ScopeID:    scope,
		Token:      m.Token,
		AttendeeID: m.AttendeeID,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope_id"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"attendee_id"}),
	}).Create(&row).Error
	if err != nil {
		return classify("mapping.Upsert", err)
	}

	return nil
}

func (r *MappingRepository) Get(ctx context.Context, scopeID, token string) (domain.Mapping, error) {

	query := r.db.WithContext(ctx).Where("token = ?", token)
	if scopeID != "" {
		query = query.Where("scope_id = ?", scopeID)
	}

	var row models.Mapping
	err := query.Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Mapping{}, domain.NotFoundError{Resource: "mapping"}
		}
		return domain.Mapping{}, classify("mapping.Get", err)
	}

	scope := ""
	if row.ScopeID != nil {
		scope = *row.ScopeID
	}

	return domain.Mapping{
		Token:      row.Token,
		AttendeeID: row.AttendeeID,
		ScopeID:    scope,
		CreatedAt:  row.CDate,
	}, nil
}

// classify splits store failures into retryable and terminal. Constraint
// and malformed-input failures never heal on retry; everything else is
// assumed transient, including exceeded call timeouts.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated),
		errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidField),
		errors.Is(err, gorm.ErrInvalidValue),
		errors.Is(err, gorm.ErrPrimaryKeyRequired):
		return domain.TerminalStoreError{Op: op, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.RetryableStoreError{Op: op, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.RetryableStoreError{Op: op, Err: err}
	}

	return domain.RetryableStoreError{Op: op, Err: err}
}
