package usecase

import (
	"context"

	"github.com/eventgate/scanlink/internal/domain"
)

// RemoteMappingStore is the shared, authoritative mapping store reachable
// over the network. Upsert is keyed by (scope, token) and replaces in place.
type RemoteMappingStore interface {
	Upsert(ctx context.Context, m domain.Mapping) error
	Get(ctx context.Context, scopeID, token string) (domain.Mapping, error)
}

// LocalMappingCache is the device-local durable fallback copy.
type LocalMappingCache interface {
	Put(ctx context.Context, m domain.Mapping) error
	Get(ctx context.Context, token string) (domain.Mapping, error)
}

// AttendeeRepository defines persistence/lookup for attendees.
type AttendeeRepository interface {
	Create(ctx context.Context, a domain.Attendee) error
	Get(ctx context.Context, id string) (domain.Attendee, error)
}

// EventRepository defines persistence/lookup for events (scopes).
type EventRepository interface {
	Create(ctx context.Context, e domain.Event) error
	Get(ctx context.Context, id string) (domain.Event, error)
}

// CheckinRepository defines persistence for domain actions keyed by a
// resolved attendee.
type CheckinRepository interface {
	Insert(ctx context.Context, c domain.Checkin) (domain.Checkin, error)
	LastSecurityDirection(ctx context.Context, scopeID, attendeeID string) (domain.SecurityDirection, error)
}

// SignalPublisher fans a completed check-in out to live listeners.
type SignalPublisher interface {
	Publish(ctx context.Context, channel string, event domain.CheckinEvent) error
}
