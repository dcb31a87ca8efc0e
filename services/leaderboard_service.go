// services/leaderboard_service.go
package services

import (
	"log"
	"math"
	"sort"
	"time"

	"arc-mindshare-system/models"
	"arc-mindshare-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	followVerifiedMultiplier = 1.5
	defaultEnrichBatchSize   = 5
	defaultEnrichBatchDelay  = 250 * time.Millisecond
)

type LeaderboardService struct {
	DB          *gorm.DB
	SocialGraph *SocialGraphClient // nil disables the live avatar tier

	// Enrichment throttle knobs — tuned down in tests.
	EnrichBatchSize  int
	EnrichBatchDelay time.Duration
}

func NewLeaderboardService(db *gorm.DB, socialGraph *SocialGraphClient) *LeaderboardService {
	return &LeaderboardService{
		DB:               db,
		SocialGraph:      socialGraph,
		EnrichBatchSize:  defaultEnrichBatchSize,
		EnrichBatchDelay: defaultEnrichBatchDelay,
	}
}

// GetProjectLeaderboard is the public leaderboard endpoint. Returns either a
// complete ranked board or a single top-level error — never partial entries.
func (s *LeaderboardService) GetProjectLeaderboard(c *fiber.Ctx) error {
	projectID := c.Params("id")
	if projectID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "project id required in URL"})
	}
	if err := s.DB.First(&models.Project{}, "id = ?", projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "project not found"})
		}
		log.Printf("[LEADERBOARD] ❌ DB error fetching project %s: %v", projectID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to load project"})
	}

	resp, err := s.Compute(projectID)
	if err != nil {
		log.Printf("[LEADERBOARD] ❌ Failed to compute leaderboard for project %s: %v", projectID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute leaderboard"})
	}
	return c.JSON(resp)
}

// mergeEntries combines the joined-creator side with auto-tracked mention
// points into one entry per handle:
//   - joined creator: base = manual points + adjustment sum (+ any auto
//     points for the same handle), score = floor(base × multiplier)
//   - mention-only handle with points > 0: flat auto-tracked entry
//   - mention-only handle with 0 points: omitted
//
// Auto points never earn a multiplier on their own; once a creator has
// joined they just widen the raw point pool before multiplication.
func mergeEntries(participation *participationData, autoPoints map[string]int64) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(participation.Creators)+len(autoPoints))
	seen := make(map[string]bool, len(participation.Creators))

	for _, creator := range participation.Creators {
		handle := utils.NormalizeHandle(creator.Handle)
		if handle == "" || seen[handle] {
			continue
		}
		seen[handle] = true

		base := creator.Points
		if creator.ProfileID != nil {
			base += participation.AdjustmentTotals[*creator.ProfileID]
		}
		base += autoPoints[handle]

		multiplier := 1.0
		if participation.Verified[handle] {
			multiplier = followVerifiedMultiplier
		}

		joinedAt := creator.JoinedAt
		entries = append(entries, models.LeaderboardEntry{
			Handle:         handle,
			BasePoints:     base,
			Multiplier:     multiplier,
			Score:          int64(math.Floor(float64(base) * multiplier)),
			IsJoined:       true,
			FollowVerified: participation.Verified[handle],
			Ring:           creator.Ring,
			ProfileID:      creator.ProfileID,
			JoinedAt:       &joinedAt,
		})
	}

	for handle, points := range autoPoints {
		if seen[handle] || points <= 0 {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			Handle:        handle,
			BasePoints:    points,
			Multiplier:    1.0,
			Score:         points,
			IsAutoTracked: true,
		})
	}

	return entries
}

// rankEntries sorts by score descending and assigns ranks and contribution
// percentages in place. Ties break deterministically: earliest join time
// first (auto-tracked entries, having none, sort after joined ones), then
// handle ascending.
func rankEntries(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch {
		case a.JoinedAt != nil && b.JoinedAt != nil && !a.JoinedAt.Equal(*b.JoinedAt):
			return a.JoinedAt.Before(*b.JoinedAt)
		case a.JoinedAt != nil && b.JoinedAt == nil:
			return true
		case a.JoinedAt == nil && b.JoinedAt != nil:
			return false
		}
		return a.Handle < b.Handle
	})

	var total int64
	for i := range entries {
		total += entries[i].Score
	}
	for i := range entries {
		entries[i].Rank = i + 1
		if total > 0 {
			pct := float64(entries[i].Score) / float64(total) * 100
			entries[i].ContributionPct = &pct
		} else {
			entries[i].ContributionPct = nil
		}
	}
}

// Compute runs the full scoring pipeline for one project: aggregate mentions,
// resolve participation, merge, rank, replay history for trend deltas, then
// enrich. Stateless, not cancellable once started — every call re-reads all
// inputs and runs to completion.
func (s *LeaderboardService) Compute(projectID string) (*models.LeaderboardResponse, error) {
	autoPoints, err := AggregateMentionPoints(s.DB, projectID, nil)
	if err != nil {
		return nil, err
	}

	participation, err := loadParticipation(s.DB, projectID, nil)
	if err != nil {
		return nil, err
	}

	entries := mergeEntries(participation, autoPoints)
	rankEntries(entries)

	s.applyHistoricalDeltas(projectID, entries)
	s.enrichEntries(projectID, entries)

	return &models.LeaderboardResponse{
		Entries:   entries,
		ArenaID:   participation.ArenaID,
		ArenaName: participation.ArenaName,
	}, nil
}

// ComputeForArena scores one specific arena, frozen at its end time when it
// has one. The snapshot archiver uses this for ended arenas, which the
// active-arena lookup in Compute would never see. Trend deltas are skipped —
// they have no meaning on a frozen board.
func (s *LeaderboardService) ComputeForArena(arena *models.Arena) (*models.LeaderboardResponse, error) {
	asOf := arena.EndTime

	autoPoints, err := AggregateMentionPoints(s.DB, arena.ProjectID, asOf)
	if err != nil {
		return nil, err
	}
	participation, err := loadParticipationForArena(s.DB, arena, asOf)
	if err != nil {
		return nil, err
	}

	entries := mergeEntries(participation, autoPoints)
	rankEntries(entries)
	s.enrichEntries(arena.ProjectID, entries)

	return &models.LeaderboardResponse{
		Entries:   entries,
		ArenaID:   participation.ArenaID,
		ArenaName: participation.ArenaName,
	}, nil
}
