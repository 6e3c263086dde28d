package service

import (
	"encoding/json"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/eventgate/scanlink/internal/domain"
)

const presenceTTL = 90 * time.Second

// PresenceService tracks which check-in stations are alive. Heartbeats land
// in memcache with a TTL, so a silent device simply ages out.
type PresenceService struct {
	mc *memcache.Client
}

func NewPresenceService(mc *memcache.Client) *PresenceService {
	return &PresenceService{mc: mc}
}

type presenceRecord struct {
	DeviceID string    `json:"deviceId"`
	ScopeID  string    `json:"scopeId,omitempty"`
	SeenAt   time.Time `json:"seenAt"`
}

func (s *PresenceService) Heartbeat(deviceID, scopeID string) error {

	record := presenceRecord{
		DeviceID: deviceID,
		ScopeID:  scopeID,
		SeenAt:   time.Now().UTC(),
	}

	value, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.mc.Set(&memcache.Item{
		Key:        presenceKey(deviceID),
		Value:      value,
		Expiration: int32(presenceTTL.Seconds()),
	})
}

// LastSeen reports when the device last heartbeated. A missing entry means
// the device is offline or aged out.
func (s *PresenceService) LastSeen(deviceID string) (time.Time, error) {

	item, err := s.mc.Get(presenceKey(deviceID))
	if err == memcache.ErrCacheMiss {
		return time.Time{}, domain.NotFoundError{Resource: "device presence"}
	}
	if err != nil {
		return time.Time{}, err
	}

	var record presenceRecord
	if err := json.Unmarshal(item.Value, &record); err != nil {
		return time.Time{}, err
	}

	return record.SeenAt, nil
}

func presenceKey(deviceID string) string {
	return "presence:" + deviceID
}
