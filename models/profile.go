package models

import (
	"time"
)

// CreatorProfile is the primary profile registry. Doubles as a read-through
// cache for avatar resolution: successful social-graph fetches are written
// back here (no TTL — last write wins).
type CreatorProfile struct {
	ID                  string    `json:"id" gorm:"primaryKey"`
	Handle              string    `json:"handle" gorm:"uniqueIndex;not null"`
	DisplayName         string    `json:"display_name"`
	AvatarURL           string    `json:"avatar_url"`
	Bio                 string    `json:"bio" gorm:"type:text"`
	SmartFollowersCount int64     `json:"smart_followers_count" gorm:"default:0"`
	CreatedAt           time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TrackedProfile is the secondary, lesser-authoritative registry, mirrored
// from the profile service by the profile sync worker. Consulted for avatar
// resolution only after CreatorProfile misses.
type TrackedProfile struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Handle      string    `json:"handle" gorm:"uniqueIndex;not null"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Source      string    `json:"source" gorm:"type:varchar(32)"` // e.g. "profile-service"
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"index"`
}
