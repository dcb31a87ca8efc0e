package models

import (
	"time"
)

// LeaderboardEntry is computed per request and never persisted. Nullable
// enrichment fields stay nil when resolution fails — an entry is always
// structurally complete, only its optional data may be missing.
type LeaderboardEntry struct {
	Handle          string     `json:"handle"`
	Name            string     `json:"name,omitempty"`
	AvatarURL       *string    `json:"avatar_url"`
	BasePoints      int64      `json:"base_points"`
	Multiplier      float64    `json:"multiplier"`
	Score           int64      `json:"score"`
	IsJoined        bool       `json:"is_joined"`
	IsAutoTracked   bool       `json:"is_auto_tracked"`
	FollowVerified  bool       `json:"follow_verified"`
	Ring            string     `json:"ring,omitempty"`
	Rank            int        `json:"rank"`
	ContributionPct *float64   `json:"contribution_pct"`
	Delta7d         *int       `json:"delta_7d"` // basis points vs 7 days ago
	Delta1m         *int       `json:"delta_1m"`
	Delta3m         *int       `json:"delta_3m"`
	CtHeat          *float64   `json:"ct_heat"`
	SignalScore     *float64   `json:"signal_score"`
	TrustBand       *string    `json:"trust_band"`
	ProfileID       *string    `json:"profile_id,omitempty"`
	JoinedAt        *time.Time `json:"joined_at,omitempty"`
}

// LeaderboardResponse is the engine's external contract. ArenaID/ArenaName are
// null when the project has no active arena (auto-tracked-only board).
type LeaderboardResponse struct {
	Entries   []LeaderboardEntry `json:"entries"`
	ArenaID   *string            `json:"arena_id"`
	ArenaName *string            `json:"arena_name"`
}
