package domain

import "time"

// Mapping associates a scanned token with an attendee within a scope.
// The pair (ScopeID, Token) is the natural key; tokens are opaque strings
// and are only unique within a scope, never globally.
type Mapping struct {
	Token      string    `json:"token"`
	AttendeeID string    `json:"attendeeId"`
	ScopeID    string    `json:"scopeId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Resolution is the outcome of resolving a token. Source reports which
// layer answered, for diagnostics.
type Resolution struct {
	AttendeeID string `json:"attendeeId"`
	Source     string `json:"source"` // "remote", "local"
}

const (
	ResolutionSourceRemote = "remote"
	ResolutionSourceLocal  = "local"
)

// PersistResult reports how far a mapping write got. The local write is
// unconditional; Synced reports whether the remote upsert also landed.
type PersistResult struct {
	Synced   bool `json:"synced"`
	Attempts int  `json:"attempts"`
}
