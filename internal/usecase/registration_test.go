package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/eventgate/scanlink/internal/domain"
)

type fakeAttendeeRepo struct {
	created   []domain.Attendee
	createErr error
}

func (r *fakeAttendeeRepo) Create(ctx context.Context, a domain.Attendee) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, a)
	return nil
}

func (r *fakeAttendeeRepo) Get(ctx context.Context, id string) (domain.Attendee, error) {
	for _, a := range r.created {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Attendee{}, domain.NotFoundError{Resource: "attendee"}
}

func TestRegisterHappyPath(t *testing.T) {
	attendees := &fakeAttendeeRepo{}
	mappings, _ := newTestMappingUsecase(newFakeRemoteStore(), newFakeLocalCache())
	uc := NewRegistrationUsecase(attendees, mappings)

	output, err := uc.Register(context.Background(), RegisterInput{
		ScopeID: "evt-1",
		Token:   "TOKEN-1",
		Name:    "Taro Yamada",
		Region:  "kanto",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if output.Attendee.ID == "" {
		t.Fatal("expected generated attendee id")
	}
	if !output.Synced || !output.Confirmed {
		t.Fatalf("expected synced and confirmed, got %+v", output)
	}
	if len(attendees.created) != 1 {
		t.Fatalf("expected 1 attendee, got %d", len(attendees.created))
	}

	resolution, found, _ := mappings.Resolve(context.Background(), "evt-1", "TOKEN-1")
	if !found || resolution.AttendeeID != output.Attendee.ID {
		t.Fatalf("token must resolve to new attendee, got found=%v %+v", found, resolution)
	}
}

// A remote outage downgrades the registration, it never voids it: the
// attendee exists and the local cache still confirms the mapping.
func TestRegisterRemoteOutageDegradesToLocalOnly(t *testing.T) {
	attendees := &fakeAttendeeRepo{}
	remote := newFakeRemoteStore()
	remote.upsertErr = retryableAlways
	remote.getErr = func(int) error {
		return domain.RetryableStoreError{Op: "mapping.Get", Err: errConnRefused}
	}
	mappings, _ := newTestMappingUsecase(remote, newFakeLocalCache())
	uc := NewRegistrationUsecase(attendees, mappings)

	output, err := uc.Register(context.Background(), RegisterInput{
		ScopeID: "evt-1",
		Token:   "TOKEN-1",
		Name:    "Taro Yamada",
	})
	if err != nil {
		t.Fatalf("register must not fail on remote outage: %v", err)
	}
	if output.Synced {
		t.Fatal("expected synced=false")
	}
	if !output.Confirmed {
		t.Fatal("local fallback should still confirm the mapping")
	}
	if len(attendees.created) != 1 {
		t.Fatalf("attendee must survive the outage, got %d", len(attendees.created))
	}
}

func TestRegisterUnconfirmedIsReported(t *testing.T) {
	attendees := &fakeAttendeeRepo{}
	remote := newFakeRemoteStore()
	remote.upsertErr = retryableAlways
	remote.getErr = func(int) error {
		return domain.RetryableStoreError{Op: "mapping.Get", Err: errConnRefused}
	}
	local := newFakeLocalCache()
	local.putErr = errors.New("disk full")
	local.getErr = domain.NotFoundError{Resource: "cached mapping"}
	mappings, _ := newTestMappingUsecase(remote, local)
	uc := NewRegistrationUsecase(attendees, mappings)

	output, err := uc.Register(context.Background(), RegisterInput{
		ScopeID: "evt-1",
		Token:   "TOKEN-1",
		Name:    "Taro Yamada",
	})
	if err != nil {
		t.Fatalf("unconfirmed is a warning, not an error: %v", err)
	}
	if output.Confirmed {
		t.Fatal("expected confirmed=false")
	}
	if len(attendees.created) != 1 {
		t.Fatal("attendee must not be discarded")
	}
}

func TestRegisterAttendeeWriteFailureIsFatal(t *testing.T) {
	attendees := &fakeAttendeeRepo{createErr: errors.New("permission denied")}
	mappings, _ := newTestMappingUsecase(newFakeRemoteStore(), newFakeLocalCache())
	uc := NewRegistrationUsecase(attendees, mappings)

	_, err := uc.Register(context.Background(), RegisterInput{
		ScopeID: "evt-1",
		Token:   "TOKEN-1",
		Name:    "Taro Yamada",
	})
	if err == nil {
		t.Fatal("expected error when the attendee write fails")
	}
}
