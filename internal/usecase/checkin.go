package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/eventgate/scanlink/internal/domain"
)

// CheckinInput is one scan routed to a domain action.
type CheckinInput struct {
	ScopeID  string
	Token    string
	Kind     domain.CheckinKind
	DeviceID string
}

// CheckinOutput reports the recorded action, or NeedsRegistration when the
// token resolved to nothing and the scan should be routed to registration.
type CheckinOutput struct {
	Checkin           domain.Checkin
	Source            string // which layer resolved the token
	NeedsRegistration bool
}

type CheckinUsecase struct {
	mappings *MappingUsecase
	events   EventRepository
	checkins CheckinRepository
	signal   SignalPublisher
}

func NewCheckinUsecase(
	mappings *MappingUsecase,
	events EventRepository,
	checkins CheckinRepository,
	signal SignalPublisher,
) *CheckinUsecase {
	return &CheckinUsecase{
		mappings: mappings,
		events:   events,
		checkins: checkins,
		signal:   signal,
	}
}

// Checkin resolves the scanned token and records the requested action. An
// unresolvable token is not an error: the scan is routed back to
// registration via NeedsRegistration.
func (uc *CheckinUsecase) Checkin(ctx context.Context, input CheckinInput) (CheckinOutput, error) {
	ctx, span := tracer.Start(ctx, "Checkin.Usecase.Checkin")
	defer span.End()

	span.SetAttributes(
		attribute.String("scope", input.ScopeID),
		attribute.String("kind", string(input.Kind)),
		attribute.String("token.fp", domain.TokenFingerprint(input.Token)),
	)

	switch input.Kind {
	case domain.CheckinAttendance, domain.CheckinSecurity, domain.CheckinMeal:
	default:
		return CheckinOutput{}, fmt.Errorf("unknown checkin kind: %s", input.Kind)
	}

	if input.ScopeID != "" {
		if _, err := uc.events.Get(ctx, input.ScopeID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return CheckinOutput{}, err
			}
			// Event metadata is advisory here; scope isolation holds via
			// the mapping key regardless.
			span.RecordError(err)
		}
	}

	resolution, found, err := uc.mappings.Resolve(ctx, input.ScopeID, input.Token)
	if err != nil {
		span.RecordError(err)
		return CheckinOutput{}, err
	}
	if !found {
		return CheckinOutput{NeedsRegistration: true}, nil
	}

	checkin := domain.Checkin{
		ScopeID:    input.ScopeID,
		AttendeeID: resolution.AttendeeID,
		Kind:       input.Kind,
		DeviceID:   input.DeviceID,
	}

	if input.Kind == domain.CheckinSecurity {
		direction, err := uc.nextSecurityDirection(ctx, input.ScopeID, resolution.AttendeeID)
		if err != nil {
			span.RecordError(err)
			return CheckinOutput{}, err
		}
		checkin.Direction = string(direction)
	}

	recorded, err := uc.checkins.Insert(ctx, checkin)
	if err != nil {
		span.RecordError(err)
		return CheckinOutput{}, err
	}

	event := domain.CheckinEvent{
		ScopeID:    recorded.ScopeID,
		AttendeeID: recorded.AttendeeID,
		Kind:       recorded.Kind,
		Direction:  recorded.Direction,
		DeviceID:   recorded.DeviceID,
		Timestamp:  time.Now().UTC(),
	}
	if err := uc.signal.Publish(ctx, checkinChannel(input.ScopeID), event); err != nil {
		// Live feed only; the check-in itself is already durable.
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to publish checkin event",
			slog.String("scope", input.ScopeID),
			slog.String("error", err.Error()),
			slog.String("module", "checkin"),
		)
	}

	return CheckinOutput{Checkin: recorded, Source: resolution.Source}, nil
}

func (uc *CheckinUsecase) nextSecurityDirection(ctx context.Context, scopeID, attendeeID string) (domain.SecurityDirection, error) {
	last, err := uc.checkins.LastSecurityDirection(ctx, scopeID, attendeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SecurityIn, nil
		}
		return "", err
	}
	if last == domain.SecurityIn {
		return domain.SecurityOut, nil
	}
	return domain.SecurityIn, nil
}

func checkinChannel(scopeID string) string {
	if scopeID == "" {
		return "checkin"
	}
	return "checkin:" + scopeID
}
