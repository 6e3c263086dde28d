package domain

import "time"

// Attendee is the durable record a token ultimately identifies. The mapping
// layer only reads its existence; registration is the sole writer.
type Attendee struct {
	ID        string    `json:"id"`
	ScopeID   string    `json:"scopeId,omitempty"`
	Name      string    `json:"name"`
	Region    string    `json:"region,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
