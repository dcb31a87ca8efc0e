// workers/snapshot_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"arc-mindshare-system/models"
	"arc-mindshare-system/services"
	"arc-mindshare-system/utils"

	"gorm.io/gorm"
)

// SnapshotArchiver watches for ended, unarchived arenas and uploads their
// final standings to R2 as JSON. Upload failures are logged and retried on
// the next poll — the arena only gets stamped once the upload lands.
type SnapshotArchiver struct {
	db          *gorm.DB
	leaderboard *services.LeaderboardService
}

func NewSnapshotArchiver(db *gorm.DB, leaderboard *services.LeaderboardService) *SnapshotArchiver {
	return &SnapshotArchiver{db: db, leaderboard: leaderboard}
}

// Poll runs the archive sweep every interval until ctx is cancelled.
func (a *SnapshotArchiver) Poll(ctx context.Context, interval time.Duration) {
	log.Println("🔁 Starting Snapshot Archiver (ended arenas → R2)…")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.sweep(ctx); err != nil {
				log.Printf("❌ Snapshot sweep failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Snapshot Archiver stopped")
			return
		}
	}
}

func (a *SnapshotArchiver) sweep(ctx context.Context) error {
	var arenas []models.Arena
	err := a.db.Where("status = ? AND archived_at IS NULL AND kind IN ?",
		models.ArenaStatusEnded, models.MindshareArenaKinds).
		Order("updated_at ASC").
		Limit(10).
		Find(&arenas).Error
	if err != nil {
		return fmt.Errorf("failed to load ended arenas: %w", err)
	}

	for i := range arenas {
		if err := a.archive(ctx, &arenas[i]); err != nil {
			log.Printf("[ARCHIVE] ⚠️ Failed to archive arena %s: %v", arenas[i].ID, err)
		}
	}
	return nil
}

type arenaSnapshot struct {
	ArenaID    string                    `json:"arena_id"`
	ArenaName  string                    `json:"arena_name"`
	ProjectID  string                    `json:"project_id"`
	EndedAt    *time.Time                `json:"ended_at"`
	ArchivedAt time.Time                 `json:"archived_at"`
	Entries    []models.LeaderboardEntry `json:"entries"`
}

func (a *SnapshotArchiver) archive(ctx context.Context, arena *models.Arena) error {
	// The standard pipeline only scores the active arena; the final board of
	// an ended one is its frozen state as of the end time.
	resp, err := a.leaderboard.ComputeForArena(arena)
	if err != nil {
		return fmt.Errorf("failed to compute final standings: %w", err)
	}

	now := time.Now()
	snapshot := arenaSnapshot{
		ArenaID:    arena.ID,
		ArenaName:  arena.Name,
		ProjectID:  arena.ProjectID,
		EndedAt:    arena.EndTime,
		ArchivedAt: now,
		Entries:    resp.Entries,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("arenas/%s/final-standings.json", arena.Slug)
	url, err := utils.UploadJSONToR2(ctx, data, key)
	if err != nil {
		return err
	}

	if err := a.db.Model(&models.Arena{}).
		Where("id = ?", arena.ID).
		Update("archived_at", now).Error; err != nil {
		return fmt.Errorf("uploaded but failed to stamp archived_at: %w", err)
	}

	log.Printf("✅ Archived final standings for arena %s → %s", arena.Slug, url)
	return nil
}
