// services/backfill_service.go
package services

import (
	"fmt"
	"log"
	"time"

	"arc-mindshare-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// backfillMatchWindow is the preferred request-decision-to-arena-creation
// proximity. Matches outside it are still taken, but only as a fallback.
const backfillMatchWindow = time.Hour

type BackfillService struct {
	DB *gorm.DB
}

func NewBackfillService(db *gorm.DB) *BackfillService {
	return &BackfillService{DB: db}
}

// BackfillSummary reports what a reconciliation run did (or, in dry-run mode,
// would have done).
type BackfillSummary struct {
	ScannedCount int      `json:"scanned_count"`
	CreatedCount int      `json:"created_count"`
	UpdatedCount int      `json:"updated_count"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors"`
}

// RunBackfill is the admin endpoint wrapping Reconcile.
func (s *BackfillService) RunBackfill(c *fiber.Ctx) error {
	type Req struct {
		DryRun    bool   `json:"dry_run"`
		Limit     int    `json:"limit"`
		RequestID string `json:"request_id,omitempty"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}

	summary, err := s.Reconcile(req.DryRun, req.Limit, req.RequestID)
	if err != nil {
		log.Printf("[BACKFILL] ❌ Reconciliation failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "backfill failed"})
	}
	return c.JSON(summary)
}

// Reconcile retroactively links approved access requests to the arena that
// was (or should have been) created for them. Matching is a greedy bipartite
// assignment: requests in decision-time order each claim the nearest
// still-unclaimed arena by creation time — preferring matches within one
// hour of the decision, falling back to the globally closest. An arena
// claimed by one request is excluded from all later ones. Requests with no
// candidate at all get a fresh arena, unless dry-run, which only counts.
func (s *BackfillService) Reconcile(dryRun bool, limit int, requestID string) (*BackfillSummary, error) {
	summary := &BackfillSummary{Errors: []string{}}

	// Orphaned approved requests, oldest decision first — earlier requests
	// get first pick of earlier arenas.
	query := s.DB.Where("status = ? AND arena_id IS NULL AND decided_at IS NOT NULL", "approved")
	if requestID != "" {
		query = query.Where("id = ?", requestID)
	}
	var requests []models.ArenaAccessRequest
	if err := query.Order("decided_at ASC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to load access requests: %w", err)
	}
	summary.ScannedCount = len(requests)
	if len(requests) == 0 {
		return summary, nil
	}

	// Arenas claimed earlier in this run. Matters for dry-run (nothing is
	// written) and saves a re-read otherwise.
	claimed := make(map[string]bool)

	for _, request := range requests {
		candidates, err := s.unclaimedArenas(request.ProjectID, request.Kind)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("request %s: %v", request.ID, err))
			summary.SkippedCount++
			continue
		}
		unclaimed := candidates[:0]
		for _, a := range candidates {
			if !claimed[a.ID] {
				unclaimed = append(unclaimed, a)
			}
		}

		match := pickNearestArena(unclaimed, *request.DecidedAt)
		if match != nil {
			claimed[match.ID] = true
			summary.UpdatedCount++
			if dryRun {
				continue
			}
			if err := s.DB.Model(&models.ArenaAccessRequest{}).
				Where("id = ?", request.ID).
				Update("arena_id", match.ID).Error; err != nil {
				summary.UpdatedCount--
				summary.SkippedCount++
				summary.Errors = append(summary.Errors, fmt.Sprintf("request %s: link failed: %v", request.ID, err))
			}
			continue
		}

		// No candidate anywhere: create rather than orphan the request.
		summary.CreatedCount++
		if dryRun {
			continue
		}
		if err := s.createArenaForRequest(&request); err != nil {
			summary.CreatedCount--
			summary.SkippedCount++
			summary.Errors = append(summary.Errors, fmt.Sprintf("request %s: create failed: %v", request.ID, err))
		}
	}

	return summary, nil
}

// unclaimedArenas lists a project's arenas of the given kind that no access
// request has claimed yet. Re-queried per request so an arena claimed by an
// earlier request in this run is already excluded.
func (s *BackfillService) unclaimedArenas(projectID, kind string) ([]models.Arena, error) {
	if kind == "" {
		kind = "leaderboard"
	}
	var arenas []models.Arena
	err := s.DB.
		Where("project_id = ? AND kind = ?", projectID, kind).
		Where("id NOT IN (?)", s.DB.Model(&models.ArenaAccessRequest{}).
			Select("arena_id").
			Where("arena_id IS NOT NULL")).
		Order("created_at ASC").
		Find(&arenas).Error
	if err != nil {
		return nil, err
	}
	return arenas, nil
}

// pickNearestArena picks the candidate created closest to the decision time:
// nearest within the one-hour window first, nearest overall as the fallback.
func pickNearestArena(candidates []models.Arena, decidedAt time.Time) *models.Arena {
	nearest := func(within time.Duration) *models.Arena {
		var best *models.Arena
		var bestDist time.Duration
		for i := range candidates {
			d := absDuration(candidates[i].CreatedAt.Sub(decidedAt))
			if within > 0 && d > within {
				continue
			}
			if best == nil || d < bestDist {
				best = &candidates[i]
				bestDist = d
			}
		}
		return best
	}
	if match := nearest(backfillMatchWindow); match != nil {
		return match
	}
	return nearest(0)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// createArenaForRequest creates the arena an approved request should have
// gotten, linking the two in one transaction.
func (s *BackfillService) createArenaForRequest(request *models.ArenaAccessRequest) error {
	name := request.ProjectName
	if name == "" {
		name = "Arena"
	}
	name = name + " Arena"

	kind := request.Kind
	if kind == "" {
		kind = "leaderboard"
	}

	arena := &models.Arena{
		ID:        uuid.NewString(),
		ProjectID: request.ProjectID,
		Name:      name,
		Slug:      s.uniqueSlug(slug.Make(name)),
		Kind:      kind,
		Status:    models.ArenaStatusDraft,
		CreatedAt: time.Now(),
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(arena).Error; err != nil {
			return err
		}
		return tx.Model(&models.ArenaAccessRequest{}).
			Where("id = ?", request.ID).
			Update("arena_id", arena.ID).Error
	})
}

func (s *BackfillService) uniqueSlug(base string) string {
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := s.DB.Model(&models.Arena{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
		}
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
