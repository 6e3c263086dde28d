package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/eventgate/scanlink/internal/domain"
	"github.com/eventgate/scanlink/internal/metrics"
)

var tracer = otel.Tracer("mapping")

const (
	persistMaxAttempts = 3
	persistBaseDelay   = 100 * time.Millisecond
)

// reconcileDelays are the waits before each post-registration poll. The
// first poll is immediate; the later ones absorb read-after-write lag
// between the attendee store and the mapping store.
var reconcileDelays = []time.Duration{0, 300 * time.Millisecond, 500 * time.Millisecond}

type MappingUsecase struct {
	remote RemoteMappingStore
	local  LocalMappingCache

	// overridable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewMappingUsecase(remote RemoteMappingStore, local LocalMappingCache) *MappingUsecase {
	return &MappingUsecase{
		remote: remote,
		local:  local,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Persist writes the mapping locally, then upserts it into the remote store
// with bounded backoff. The caller always receives a definitive outcome:
// Synced reports whether the remote write landed, and the local copy remains
// the fallback of record either way. A remote failure is not fatal to the
// surrounding registration.
func (uc *MappingUsecase) Persist(ctx context.Context, scopeID, token, attendeeID string) (domain.PersistResult, error) {
	ctx, span := tracer.Start(ctx, "Mapping.Usecase.Persist")
	defer span.End()

	fp := domain.TokenFingerprint(token)
	span.SetAttributes(
		attribute.String("scope", scopeID),
		attribute.String("token.fp", fp),
	)

	if token == "" || attendeeID == "" {
		err := domain.TerminalStoreError{Op: "mapping.Persist", Err: fmt.Errorf("empty token or attendee id")}
		span.RecordError(err)
		return domain.PersistResult{}, err
	}

	mapping := domain.Mapping{
		Token:      token,
		AttendeeID: attendeeID,
		ScopeID:    scopeID,
		CreatedAt:  time.Now().UTC(),
	}

	// Local first, unconditionally. This is the guaranteed floor: even if
	// every remote attempt fails, this device can still resolve the token.
	if err := uc.local.Put(ctx, mapping); err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "local mapping write failed",
			slog.String("token.fp", fp),
			slog.String("error", err.Error()),
			slog.String("module", "mapping"),
		)
	}

	var lastErr error
	for attempt := 1; attempt <= persistMaxAttempts; attempt++ {

		delay := persistBaseDelay << (attempt - 1)
		if err := uc.sleep(ctx, delay); err != nil {
			metrics.PersistOutcomes.WithLabelValues("false").Inc()
			return domain.PersistResult{Synced: false, Attempts: attempt - 1},
				domain.RetryableStoreError{Op: "mapping.Persist", Err: err}
		}

		start := time.Now()
		err := uc.remote.Upsert(ctx, mapping)
		metrics.RemoteUpsertDuration.Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.PersistAttempts.WithLabelValues("ok").Inc()
			metrics.PersistOutcomes.WithLabelValues("true").Inc()
			return domain.PersistResult{Synced: true, Attempts: attempt}, nil
		}

		lastErr = err
		span.RecordError(err)

		if errors.Is(err, domain.ErrTerminal) {
			metrics.PersistAttempts.WithLabelValues("terminal").Inc()
			slog.ErrorContext(ctx, "remote mapping upsert failed terminally",
				slog.Int("attempt", attempt),
				slog.String("token.fp", fp),
				slog.String("error", err.Error()),
				slog.String("module", "mapping"),
			)
			metrics.PersistOutcomes.WithLabelValues("false").Inc()
			return domain.PersistResult{Synced: false, Attempts: attempt}, err
		}

		metrics.PersistAttempts.WithLabelValues("retryable").Inc()
		slog.WarnContext(ctx, "remote mapping upsert failed",
			slog.Int("attempt", attempt),
			slog.String("token.fp", fp),
			slog.String("error", err.Error()),
			slog.String("module", "mapping"),
		)
	}

	metrics.PersistOutcomes.WithLabelValues("false").Inc()
	return domain.PersistResult{Synced: false, Attempts: persistMaxAttempts}, lastErr
}

// Resolve maps (scope, token) to an attendee id. The remote store answers
// first: it is the only layer that sees mappings created on other devices.
// The local cache answers only when the remote store errors or has no
// record. A miss on both layers is an ordinary outcome, not an error.
func (uc *MappingUsecase) Resolve(ctx context.Context, scopeID, token string) (domain.Resolution, bool, error) {
	ctx, span := tracer.Start(ctx, "Mapping.Usecase.Resolve")
	defer span.End()

	fp := domain.TokenFingerprint(token)
	span.SetAttributes(
		attribute.String("scope", scopeID),
		attribute.String("token.fp", fp),
	)

	remoteMapping, remoteErr := uc.remote.Get(ctx, scopeID, token)
	if remoteErr == nil {
		metrics.ResolveResults.WithLabelValues(domain.ResolutionSourceRemote).Inc()
		return domain.Resolution{
			AttendeeID: remoteMapping.AttendeeID,
			Source:     domain.ResolutionSourceRemote,
		}, true, nil
	}

	if !errors.Is(remoteErr, domain.ErrNotFound) {
		span.RecordError(remoteErr)
		slog.WarnContext(ctx, "remote mapping lookup failed, falling back to local cache",
			slog.String("token.fp", fp),
			slog.String("error", remoteErr.Error()),
			slog.String("module", "mapping"),
		)
	}

	localMapping, localErr := uc.local.Get(ctx, token)
	if localErr == nil {
		metrics.ResolveResults.WithLabelValues(domain.ResolutionSourceLocal).Inc()
		return domain.Resolution{
			AttendeeID: localMapping.AttendeeID,
			Source:     domain.ResolutionSourceLocal,
		}, true, nil
	}

	if !errors.Is(localErr, domain.ErrNotFound) {
		span.RecordError(localErr)
		slog.ErrorContext(ctx, "local mapping lookup failed",
			slog.String("token.fp", fp),
			slog.String("error", localErr.Error()),
			slog.String("module", "mapping"),
		)
	}

	metrics.ResolveResults.WithLabelValues("miss").Inc()
	return domain.Resolution{}, false, nil
}

// ConfirmResolvable polls Resolve after a registration until the new mapping
// is visible, compensating for read-after-write lag. maxWait (when positive)
// bounds the whole confirmation on top of the per-poll schedule. Exhausting
// the polls is a warning-level condition, not an error: the storage writes
// already happened, only the confirmation read failed.
func (uc *MappingUsecase) ConfirmResolvable(ctx context.Context, scopeID, token string, maxWait time.Duration) (domain.Resolution, bool, error) {
	ctx, span := tracer.Start(ctx, "Mapping.Usecase.ConfirmResolvable")
	defer span.End()

	span.SetAttributes(
		attribute.String("scope", scopeID),
		attribute.String("token.fp", domain.TokenFingerprint(token)),
	)

	if maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxWait)
		defer cancel()
	}

	for _, delay := range reconcileDelays {
		if err := uc.sleep(ctx, delay); err != nil {
			// Out of time mid-schedule counts as exhaustion.
			break
		}

		metrics.ReconcilePolls.Inc()
		resolution, found, err := uc.Resolve(ctx, scopeID, token)
		if err != nil {
			span.RecordError(err)
			continue
		}
		if found {
			return resolution, true, nil
		}
	}

	metrics.ReconcileUnconfirmed.Inc()
	return domain.Resolution{}, false, nil
}
