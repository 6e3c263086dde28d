package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eventgate/scanlink/internal/config"
	"github.com/eventgate/scanlink/internal/domain"
	"github.com/eventgate/scanlink/internal/service"
	"github.com/eventgate/scanlink/internal/usecase"
)

// --- mocks ---

type mockRemoteStore struct {
	rows map[string]domain.Mapping
}

func key(scopeID, token string) string { return scopeID + "\x00" + token }

func (m *mockRemoteStore) Upsert(ctx context.Context, mapping domain.Mapping) error {
	m.rows[key(mapping.ScopeID, mapping.Token)] = mapping
	return nil
}

func (m *mockRemoteStore) Get(ctx context.Context, scopeID, token string) (domain.Mapping, error) {
	mapping, ok := m.rows[key(scopeID, token)]
	if !ok {
		return domain.Mapping{}, domain.NotFoundError{Resource: "mapping"}
	}
	return mapping, nil
}

type mockLocalCache struct {
	rows map[string]domain.Mapping
}

func (m *mockLocalCache) Put(ctx context.Context, mapping domain.Mapping) error {
	m.rows[mapping.Token] = mapping
	return nil
}

func (m *mockLocalCache) Get(ctx context.Context, token string) (domain.Mapping, error) {
	mapping, ok := m.rows[token]
	if !ok {
		return domain.Mapping{}, domain.NotFoundError{Resource: "cached mapping"}
	}
	return mapping, nil
}

type mockAttendeeRepo struct {
	created []domain.Attendee
}

func (m *mockAttendeeRepo) Create(ctx context.Context, a domain.Attendee) error {
	m.created = append(m.created, a)
	return nil
}

func (m *mockAttendeeRepo) Get(ctx context.Context, id string) (domain.Attendee, error) {
	return domain.Attendee{}, domain.NotFoundError{Resource: "attendee"}
}

type mockEventRepo struct {
	events map[string]domain.Event
}

func (m *mockEventRepo) Create(ctx context.Context, e domain.Event) error {
	m.events[e.ID] = e
	return nil
}

func (m *mockEventRepo) Get(ctx context.Context, id string) (domain.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return domain.Event{}, domain.NotFoundError{Resource: "event"}
	}
	return e, nil
}

type mockCheckinRepo struct {
	rows []domain.Checkin
}

func (m *mockCheckinRepo) Insert(ctx context.Context, c domain.Checkin) (domain.Checkin, error) {
	c.ID = int64(len(m.rows) + 1)
	c.CreatedAt = time.Now().UTC()
	m.rows = append(m.rows, c)
	return c, nil
}

func (m *mockCheckinRepo) LastSecurityDirection(ctx context.Context, scopeID, attendeeID string) (domain.SecurityDirection, error) {
	return "", domain.NotFoundError{Resource: "security checkin"}
}

type mockPublisher struct{}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event domain.CheckinEvent) error {
	return nil
}

// --- fixture ---

type fixture struct {
	echo     *echo.Echo
	remote   *mockRemoteStore
	checkins *mockCheckinRepo
}

func newFixture() *fixture {
	remote := &mockRemoteStore{rows: map[string]domain.Mapping{}}
	local := &mockLocalCache{rows: map[string]domain.Mapping{}}
	events := &mockEventRepo{events: map[string]domain.Event{
		"evt-1": {ID: "evt-1", Name: "Summer Camp"},
	}}
	checkins := &mockCheckinRepo{}

	mappingUC := usecase.NewMappingUsecase(remote, local)
	registrationUC := usecase.NewRegistrationUsecase(&mockAttendeeRepo{}, mappingUC)
	checkinUC := usecase.NewCheckinUsecase(mappingUC, events, checkins, &mockPublisher{})
	eventUC := usecase.NewEventUsecase(events)

	// Constructed but never dialed in these tests.
	signal := service.NewSignalService(redis.NewClient(&redis.Options{}))
	presence := service.NewPresenceService(memcache.New("localhost:11211"))

	h := NewHandler(config.Config{}, mappingUC, registrationUC, checkinUC, eventUC, signal, presence)

	e := echo.New()
	h.RegisterRoutes(e)

	return &fixture{echo: e, remote: remote, checkins: checkins}
}

func (f *fixture) post(t *testing.T, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()
	f.echo.ServeHTTP(res, req)

	var decoded map[string]any
	_ = json.Unmarshal(res.Body.Bytes(), &decoded)
	return res, decoded
}

// --- tests ---

func TestHandleScanKnownToken(t *testing.T) {
	f := newFixture()
	f.remote.rows[key("evt-1", "TOKEN-1")] = domain.Mapping{ScopeID: "evt-1", Token: "TOKEN-1", AttendeeID: "m-1"}

	res, body := f.post(t, "/api/v1/scan", echo.Map{"scopeId": "evt-1", "token": "TOKEN-1"})

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if body["found"] != true || body["attendeeId"] != "m-1" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandleScanUnknownToken(t *testing.T) {
	f := newFixture()

	res, body := f.post(t, "/api/v1/scan", echo.Map{"scopeId": "evt-1", "token": "never-seen"})

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if body["found"] != false || body["needsRegistration"] != true {
		t.Fatalf("expected needsRegistration, got %v", body)
	}
}

func TestHandleScanMissingToken(t *testing.T) {
	f := newFixture()

	res, _ := f.post(t, "/api/v1/scan", echo.Map{"scopeId": "evt-1"})

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestHandleRegister(t *testing.T) {
	f := newFixture()

	res, body := f.post(t, "/api/v1/register", echo.Map{
		"scopeId": "evt-1",
		"token":   "TOKEN-1",
		"name":    "Taro Yamada",
	})

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if body["synced"] != true || body["confirmed"] != true {
		t.Fatalf("expected synced+confirmed, got %v", body)
	}

	// The mapping must now resolve on the scan path.
	res, scan := f.post(t, "/api/v1/scan", echo.Map{"scopeId": "evt-1", "token": "TOKEN-1"})
	if res.Code != http.StatusOK || scan["found"] != true {
		t.Fatalf("registered token must resolve, got %d %v", res.Code, scan)
	}
}

func TestHandleAttendance(t *testing.T) {
	f := newFixture()
	f.remote.rows[key("evt-1", "TOKEN-1")] = domain.Mapping{ScopeID: "evt-1", Token: "TOKEN-1", AttendeeID: "m-1"}

	res, body := f.post(t, "/api/v1/attendance", echo.Map{"scopeId": "evt-1", "token": "TOKEN-1", "deviceId": "door-1"})

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if body["found"] != true {
		t.Fatalf("unexpected body %v", body)
	}
	if len(f.checkins.rows) != 1 {
		t.Fatalf("expected 1 checkin, got %d", len(f.checkins.rows))
	}
}

func TestHandleAttendanceUnknownTokenRoutesToRegistration(t *testing.T) {
	f := newFixture()

	res, body := f.post(t, "/api/v1/attendance", echo.Map{"scopeId": "evt-1", "token": "never-seen"})

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if body["needsRegistration"] != true {
		t.Fatalf("expected needsRegistration, got %v", body)
	}
	if len(f.checkins.rows) != 0 {
		t.Fatal("no checkin must be recorded")
	}
}

func TestHandleGetEventNotFound(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/evt-unknown", nil)
	res := httptest.NewRecorder()
	f.echo.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestHandlePresenceMissingDevice(t *testing.T) {
	f := newFixture()

	res, _ := f.post(t, "/api/v1/presence", echo.Map{"scopeId": "evt-1"})

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}
