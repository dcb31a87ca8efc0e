package models

import (
	"time"
)

// Creator rings. Advisory classification only — never affects scoring.
const (
	RingCore      = "core"
	RingMomentum  = "momentum"
	RingDiscovery = "discovery"
)

// ArenaCreator is an explicitly-joined participant of an arena. ProfileID is
// nullable: a creator can be added by handle before claiming a profile.
// Points holds the manually-assigned base points; moderation corrections live
// in the point_adjustments ledger, never here.
type ArenaCreator struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ArenaID   string    `json:"arena_id" gorm:"not null;index"`
	ProfileID *string   `json:"profile_id,omitempty" gorm:"index"`
	Handle    string    `json:"handle" gorm:"not null;index"` // normalized: no @, lowercase
	Points    int64     `json:"points" gorm:"default:0"`
	Ring      string    `json:"ring" gorm:"type:varchar(16);default:'discovery'"`
	JoinedAt  time.Time `json:"joined_at" gorm:"autoCreateTime;index"`
}

// PointAdjustment is an append-only moderation ledger entry. Rows are never
// updated or deleted; a creator's effective base is points + sum(deltas).
type PointAdjustment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ArenaID   string    `json:"arena_id" gorm:"not null;index"`
	ProfileID string    `json:"profile_id" gorm:"not null;index"`
	Delta     int64     `json:"delta" gorm:"not null"`
	Reason    string    `json:"reason"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// FollowVerification records whether a handle was confirmed to follow the
// project account. A non-null VerifiedAt unlocks the 1.5x score multiplier.
type FollowVerification struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	ProjectID  string     `json:"project_id" gorm:"not null;index"`
	Handle     string     `json:"handle" gorm:"not null;index"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
}
