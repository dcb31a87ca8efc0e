package models

import (
	"time"
)

// Arena statuses. draft → scheduled → active → {ended, cancelled}
const (
	ArenaStatusDraft     = "draft"
	ArenaStatusScheduled = "scheduled"
	ArenaStatusActive    = "active"
	ArenaStatusEnded     = "ended"
	ArenaStatusCancelled = "cancelled"
)

// MindshareArenaKinds are the arena kinds the scoring engine operates on.
// Arenas of other kinds (e.g. one-off quest campaigns) are ignored by the
// leaderboard and cannot be activated through the lifecycle endpoints.
var MindshareArenaKinds = []string{"leaderboard", "mindshare"}

func IsMindshareArenaKind(kind string) bool {
	for _, k := range MindshareArenaKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Arena is a scored campaign period for a project. At most one arena per
// (project, mindshare kind group) may be active at a time — enforced by
// ArenaService.Activate, not by a DB constraint.
type Arena struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	ProjectID   string     `json:"project_id" gorm:"not null;index"`
	Name        string     `json:"name" gorm:"not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;not null"`
	Kind        string     `json:"kind" gorm:"default:'leaderboard'"`
	Status      string     `json:"status" gorm:"default:'draft';index"`
	Description string     `json:"description"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"` // set once final standings land in R2
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Project  Project       `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Creators []ArenaCreator `json:"creators,omitempty" gorm:"foreignKey:ArenaID"`

	// Calculated fields (not stored in DB)
	CreatorsCount int64 `json:"creators_count,omitempty" gorm:"-"`
}

// ArenaAccessRequest is an access-approval workflow row. Approved requests are
// supposed to get an arena created for them; Backfill reconciles the ones that
// slipped through without a link.
type ArenaAccessRequest struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	ProjectID   string     `json:"project_id" gorm:"not null;index"`
	ProjectName string     `json:"project_name"`
	Kind        string     `json:"kind" gorm:"default:'leaderboard'"`
	Status      string     `json:"status" gorm:"default:'pending';index"` // pending, approved, rejected
	RequestedBy string     `json:"requested_by"`
	ArenaID     *string    `json:"arena_id,omitempty" gorm:"index"` // set once matched or created
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
