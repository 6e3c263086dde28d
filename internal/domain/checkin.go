package domain

import "time"

// CheckinKind distinguishes the domain actions a resolved scan can trigger.
type CheckinKind string

const (
	CheckinAttendance CheckinKind = "attendance"
	CheckinSecurity   CheckinKind = "security"
	CheckinMeal       CheckinKind = "meal"
)

// SecurityDirection is the in/out state toggled by a security scan.
type SecurityDirection string

const (
	SecurityIn  SecurityDirection = "in"
	SecurityOut SecurityDirection = "out"
)

// Checkin is one recorded domain action keyed by a resolved attendee.
type Checkin struct {
	ID         int64       `json:"id"`
	ScopeID    string      `json:"scopeId"`
	AttendeeID string      `json:"attendeeId"`
	Kind       CheckinKind `json:"kind"`
	Direction  string      `json:"direction,omitempty"` // security scans only
	DeviceID   string      `json:"deviceId,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// CheckinEvent is the payload published on the realtime feed after a
// successful domain action.
type CheckinEvent struct {
	ScopeID    string      `json:"scopeId"`
	AttendeeID string      `json:"attendeeId"`
	Kind       CheckinKind `json:"kind"`
	Direction  string      `json:"direction,omitempty"`
	DeviceID   string      `json:"deviceId,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}
