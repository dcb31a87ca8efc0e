// services/participation.go
package services

import (
	"errors"
	"log"
	"time"

	"arc-mindshare-system/models"
	"arc-mindshare-system/utils"

	"gorm.io/gorm"
)

// participationData is the resolved joined-creator side of the board.
// ArenaID/ArenaName stay nil when the project has no active arena — a valid
// state where the leaderboard degrades to auto-tracked creators only.
type participationData struct {
	ArenaID          *string
	ArenaName        *string
	Creators         []models.ArenaCreator
	AdjustmentTotals map[string]int64 // profile_id → sum of ledger deltas
	Verified         map[string]bool  // normalized handle → follow verified
}

// findActiveArena returns the project's active mindshare arena. Several active
// arenas at once is a data anomaly; the most recently created one wins.
func findActiveArena(db *gorm.DB, projectID string) (*models.Arena, error) {
	var arena models.Arena
	err := db.Where("project_id = ? AND status = ? AND kind IN ?",
		projectID, models.ArenaStatusActive, models.MindshareArenaKinds).
		Order("created_at DESC").
		First(&arena).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &arena, nil
}

// loadParticipation resolves the joined side of a project's board. A non-nil
// asOf restricts everything to what was true at that cutoff: creators joined
// before it, adjustments written before it, verifications confirmed before it.
//
// The creator list is a required read — its failure is fatal. Adjustments and
// verifications are not: a failed read there is logged and treated as empty so
// the board still renders.
func loadParticipation(db *gorm.DB, projectID string, asOf *time.Time) (*participationData, error) {
	arena, err := findActiveArena(db, projectID)
	if err != nil {
		return nil, err
	}
	if arena == nil {
		return &participationData{
			AdjustmentTotals: make(map[string]int64),
			Verified:         make(map[string]bool),
		}, nil
	}
	return loadParticipationForArena(db, arena, asOf)
}

// loadParticipationForArena is the arena-explicit variant; the snapshot
// archiver uses it to score ended arenas the active-arena lookup would skip.
func loadParticipationForArena(db *gorm.DB, arena *models.Arena, asOf *time.Time) (*participationData, error) {
	data := &participationData{
		AdjustmentTotals: make(map[string]int64),
		Verified:         make(map[string]bool),
	}
	projectID := arena.ProjectID
	data.ArenaID = &arena.ID
	data.ArenaName = &arena.Name

	creatorQuery := db.Where("arena_id = ?", arena.ID)
	if asOf != nil {
		creatorQuery = creatorQuery.Where("joined_at < ?", *asOf)
	}
	if err := creatorQuery.Find(&data.Creators).Error; err != nil {
		return nil, err
	}

	// Adjustment ledger sums, grouped by profile. Non-critical.
	type adjustmentSum struct {
		ProfileID string
		Total     int64
	}
	var sums []adjustmentSum
	adjQuery := db.Model(&models.PointAdjustment{}).
		Select("profile_id, SUM(delta) as total").
		Where("arena_id = ?", arena.ID).
		Group("profile_id")
	if asOf != nil {
		adjQuery = adjQuery.Where("created_at < ?", *asOf)
	}
	if err := adjQuery.Find(&sums).Error; err != nil {
		log.Printf("[LEADERBOARD] ⚠️ Failed to load point adjustments for arena %s: %v", arena.ID, err)
	} else {
		for _, s := range sums {
			data.AdjustmentTotals[s.ProfileID] = s.Total
		}
	}

	// Follow verifications. Non-critical.
	var verifications []models.FollowVerification
	verQuery := db.Where("project_id = ? AND verified_at IS NOT NULL", projectID)
	if asOf != nil {
		verQuery = verQuery.Where("verified_at < ?", *asOf)
	}
	if err := verQuery.Find(&verifications).Error; err != nil {
		log.Printf("[LEADERBOARD] ⚠️ Failed to load follow verifications for project %s: %v", projectID, err)
	} else {
		for _, v := range verifications {
			if h := utils.NormalizeHandle(v.Handle); h != "" {
				data.Verified[h] = true
			}
		}
	}

	return data, nil
}
