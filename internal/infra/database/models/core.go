package models

import (
	"time"
)

type Attendee struct {
	ID      string    `json:"id" gorm:"primaryKey;type:text"`
	ScopeID *string   `json:"scopeId" gorm:"type:text;index"`
	Name    string    `json:"name" gorm:"type:text;not null"`
	Region  string    `json:"region" gorm:"type:text"`
	Phone   string    `json:"phone" gorm:"type:text"`
	CDate   time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Event struct {
	ID       string    `json:"id" gorm:"primaryKey;type:text"`
	Name     string    `json:"name" gorm:"type:text;not null"`
	StartsAt time.Time `json:"startsAt" gorm:"type:timestamp with time zone"`
	EndsAt   time.Time `json:"endsAt" gorm:"type:timestamp with time zone"`
	CDate    time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Checkin struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ScopeID    string    `json:"scopeId" gorm:"type:text;not null;index:idx_checkin_scope_kind"`
	AttendeeID string    `json:"attendeeId" gorm:"type:text;not null;index"`
	Kind       string    `json:"kind" gorm:"type:text;not null;index:idx_checkin_scope_kind"`
	Direction  string    `json:"direction" gorm:"type:text"`
	DeviceID   string    `json:"deviceId" gorm:"type:text"`
	CDate      time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
