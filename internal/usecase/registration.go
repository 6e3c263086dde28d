package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/eventgate/scanlink/internal/domain"
)

// RegisterInput carries the attributes collected on first scan of an
// unregistered token.
type RegisterInput struct {
	ScopeID  string
	Token    string
	Name     string
	Region   string
	Phone    string
	DeviceID string
}

// RegisterOutput reports how far the registration got. Synced and Confirmed
// are advisory: a false value downgrades the registration, it never voids it.
type RegisterOutput struct {
	Attendee  domain.Attendee
	Synced    bool // remote mapping upsert landed
	Confirmed bool // mapping resolvable within the reconciliation window
}

// confirmMaxWait bounds the post-registration confirmation on top of the
// per-poll schedule.
const confirmMaxWait = 2 * time.Second

type RegistrationUsecase struct {
	attendees AttendeeRepository
	mappings  *MappingUsecase
}

func NewRegistrationUsecase(attendees AttendeeRepository, mappings *MappingUsecase) *RegistrationUsecase {
	return &RegistrationUsecase{
		attendees: attendees,
		mappings:  mappings,
	}
}

// Register creates the attendee, persists the token mapping exactly once,
// then confirms the mapping is resolvable before the caller proceeds to
// domain actions keyed by the new attendee id. Only the attendee write is
// fatal; mapping sync and confirmation failures degrade to local-only mode.
func (uc *RegistrationUsecase) Register(ctx context.Context, input RegisterInput) (RegisterOutput, error) {
	ctx, span := tracer.Start(ctx, "Registration.Usecase.Register")
	defer span.End()

	fp := domain.TokenFingerprint(input.Token)
	span.SetAttributes(
		attribute.String("scope", input.ScopeID),
		attribute.String("token.fp", fp),
	)

	attendee := domain.Attendee{
		ID:      uuid.New().String(),
		ScopeID: input.ScopeID,
		Name:    input.Name,
		Region:  input.Region,
		Phone:   input.Phone,
	}

	if err := uc.attendees.Create(ctx, attendee); err != nil {
		span.RecordError(err)
		return RegisterOutput{}, err
	}

	result, err := uc.mappings.Persist(ctx, input.ScopeID, input.Token, attendee.ID)
	if err != nil {
		// The local copy is in place; this station keeps working.
		span.RecordError(err)
		slog.WarnContext(ctx, "mapping sync failed, continuing local-only",
			slog.String("token.fp", fp),
			slog.String("attendee", attendee.ID),
			slog.String("error", err.Error()),
			slog.String("module", "registration"),
		)
	}

	_, confirmed, err := uc.mappings.ConfirmResolvable(ctx, input.ScopeID, input.Token, confirmMaxWait)
	if err != nil {
		span.RecordError(err)
		return RegisterOutput{Attendee: attendee, Synced: result.Synced}, err
	}
	if !confirmed {
		slog.WarnContext(ctx, "registration unconfirmed within reconciliation window",
			slog.String("token.fp", fp),
			slog.String("attendee", attendee.ID),
			slog.String("module", "registration"),
		)
	}

	return RegisterOutput{
		Attendee:  attendee,
		Synced:    result.Synced,
		Confirmed: confirmed,
	}, nil
}
