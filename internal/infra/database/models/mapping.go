package models

import (
	"time"
)

// Mapping is the shared token association table. (scope_id, token) is the
// natural key; scope_id is nullable so legacy scope-less rows keep working,
// but every new write supplies it. Upserts replace entity_id in place, so a
// token reused within a scope never produces a second row.
type Mapping struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ScopeID    *string   `json:"scopeId" gorm:"type:text;uniqueIndex:uniq_scope_token"`
	Token      string    `json:"token" gorm:"type:text;not null;uniqueIndex:uniq_scope_token;index"`
	AttendeeID string    `json:"attendeeId" gorm:"type:text;not null"`
	CDate      time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
