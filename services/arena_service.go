// services/arena_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"arc-mindshare-system/models"
	"arc-mindshare-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ArenaService struct {
	DB *gorm.DB
}

func NewArenaService(db *gorm.DB) *ArenaService {
	return &ArenaService{DB: db}
}

// CreateArena creates a draft (or scheduled, when a start time is given)
// arena for a project.
func (s *ArenaService) CreateArena(c *fiber.Ctx) error {
	type Req struct {
		ProjectID   string `json:"project_id" validate:"required,uuid"`
		Name        string `json:"name" validate:"required"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
		StartTime   string `json:"start_time"` // RFC3339
		EndTime     string `json:"end_time"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.ProjectID == "" || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "project_id and name are required"})
	}
	if req.Kind == "" {
		req.Kind = "leaderboard"
	}
	if !models.IsMindshareArenaKind(req.Kind) {
		return c.Status(400).JSON(fiber.Map{"error": "unsupported arena kind", "code": "invalid_arena_kind"})
	}

	if err := s.DB.First(&models.Project{}, "id = ?", req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "project not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching project"})
	}

	var startTime, endTime *time.Time
	if req.StartTime != "" {
		t, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid start_time (use RFC3339)"})
		}
		startTime = &t
	}
	if req.EndTime != "" {
		t, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid end_time (use RFC3339)"})
		}
		if startTime != nil && !t.After(*startTime) {
			return c.Status(400).JSON(fiber.Map{"error": "end_time must be after start_time"})
		}
		endTime = &t
	}

	status := models.ArenaStatusDraft
	if startTime != nil {
		status = models.ArenaStatusScheduled
	}

	arena := &models.Arena{
		ID:          uuid.NewString(),
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Slug:        s.uniqueArenaSlug(req.Name),
		Kind:        req.Kind,
		Status:      status,
		Description: req.Description,
		StartTime:   startTime,
		EndTime:     endTime,
	}
	if err := s.DB.Create(arena).Error; err != nil {
		log.Printf("[ARENA] ❌ Failed to create arena for project %s: %v", req.ProjectID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create arena"})
	}
	return c.Status(201).JSON(arena)
}

func (s *ArenaService) GetProjectArenas(c *fiber.Ctx) error {
	projectID := c.Params("id")
	var arenas []models.Arena
	if err := s.DB.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&arenas).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch arenas"})
	}
	return c.JSON(arenas)
}

func (s *ArenaService) GetArenaByID(c *fiber.Ctx) error {
	id := c.Params("id")
	var arena models.Arena
	if err := s.DB.First(&arena, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "arena not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	var count int64
	s.DB.Model(&models.ArenaCreator{}).Where("arena_id = ?", arena.ID).Count(&count)
	arena.CreatorsCount = count
	return c.JSON(arena)
}

// ActivateArena flips an arena to active. Ending every other active arena of
// the same (project, kind group) and activating the target happen inside one
// transaction: two concurrent activations cannot leave two arenas active, and
// a failure ending the old ones aborts before the new one is touched.
func (s *ArenaService) ActivateArena(c *fiber.Ctx) error {
	arenaID := c.Params("id")
	if _, err := uuid.Parse(arenaID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "malformed arena id", "code": "invalid_arena_id"})
	}

	var arena models.Arena
	if err := s.DB.First(&arena, "id = ?", arenaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "arena not found"})
		}
		log.Printf("[ARENA] ❌ DB error fetching arena %s: %v", arenaID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if !models.IsMindshareArenaKind(arena.Kind) {
		return c.Status(400).JSON(fiber.Map{"error": "arena kind cannot be activated", "code": "invalid_arena_kind"})
	}
	if arena.Status == models.ArenaStatusCancelled {
		return c.Status(400).JSON(fiber.Map{"error": "cancelled arenas cannot be activated"})
	}

	if err := s.Activate(&arena); err != nil {
		log.Printf("[ARENA] ❌ Activation failed for arena %s: %v", arenaID, err)
		return c.Status(500).JSON(fiber.Map{"error": "activation failed"})
	}

	return c.JSON(fiber.Map{
		"project_id":         arena.ProjectID,
		"activated_arena_id": arena.ID,
	})
}

// Activate performs the transition itself; the scheduler reuses it so the
// timed path and the admin path share one invariant.
func (s *ArenaService) Activate(arena *models.Arena) error {
	now := time.Now()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		// Step 1: end every other active arena in the kind group. If this
		// fails nothing below runs — no partial state.
		err := tx.Model(&models.Arena{}).
			Where("project_id = ? AND kind IN ? AND status = ? AND id <> ?",
				arena.ProjectID, models.MindshareArenaKinds, models.ArenaStatusActive, arena.ID).
			Updates(map[string]interface{}{
				"status":   models.ArenaStatusEnded,
				"end_time": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to end previous active arenas: %w", err)
		}

		// Step 2: activate the target.
		updates := map[string]interface{}{"status": models.ArenaStatusActive}
		if arena.StartTime == nil {
			updates["start_time"] = now
		}
		if err := tx.Model(&models.Arena{}).
			Where("id = ?", arena.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to activate arena: %w", err)
		}
		return nil
	})
}

// EndArena moves an active arena to ended, stamping the end time.
func (s *ArenaService) EndArena(c *fiber.Ctx) error {
	id := c.Params("id")
	now := time.Now()
	result := s.DB.Model(&models.Arena{}).
		Where("id = ? AND status = ?", id, models.ArenaStatusActive).
		Updates(map[string]interface{}{
			"status":   models.ArenaStatusEnded,
			"end_time": now,
		})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB update failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "no active arena with that id"})
	}
	return c.JSON(fiber.Map{"message": "arena ended"})
}

// JoinArena creates a participation record for a creator. Never auto-deleted;
// re-joining with the same handle is a conflict.
func (s *ArenaService) JoinArena(c *fiber.Ctx) error {
	type Req struct {
		Handle    string  `json:"handle" validate:"required"`
		ProfileID *string `json:"profile_id,omitempty"`
		Points    int64   `json:"points"`
		Ring      string  `json:"ring"`
	}
	arenaID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	handle := utils.NormalizeHandle(req.Handle)
	if handle == "" {
		return c.Status(400).JSON(fiber.Map{"error": "handle is required"})
	}
	if req.Ring == "" {
		req.Ring = models.RingDiscovery
	}

	var arena models.Arena
	if err := s.DB.First(&arena, "id = ?", arenaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "arena not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching arena"})
	}

	var existing models.ArenaCreator
	if err := s.DB.Where("arena_id = ? AND handle = ?", arenaID, handle).
		First(&existing).Error; err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "creator already joined", "creator": existing})
	}

	creator := models.ArenaCreator{
		ID:        uuid.NewString(),
		ArenaID:   arenaID,
		ProfileID: req.ProfileID,
		Handle:    handle,
		Points:    req.Points,
		Ring:      req.Ring,
		JoinedAt:  time.Now(),
	}
	if err := s.DB.Create(&creator).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create participation record"})
	}
	return c.Status(201).JSON(creator)
}

// AdjustPoints appends a moderation entry to the point ledger. The ledger is
// append-only: corrections of corrections are new rows.
func (s *ArenaService) AdjustPoints(c *fiber.Ctx) error {
	type Req struct {
		ProfileID string `json:"profile_id" validate:"required"`
		Delta     int64  `json:"delta" validate:"required"`
		Reason    string `json:"reason"`
	}
	arenaID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.ProfileID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "profile_id is required"})
	}
	if req.Delta == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "delta must be non-zero"})
	}

	if err := s.DB.First(&models.Arena{}, "id = ?", arenaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "arena not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching arena"})
	}

	createdBy, _ := c.Locals("user_id").(string)
	adjustment := models.PointAdjustment{
		ID:        uuid.NewString(),
		ArenaID:   arenaID,
		ProfileID: req.ProfileID,
		Delta:     req.Delta,
		Reason:    req.Reason,
		CreatedBy: createdBy,
	}
	if err := s.DB.Create(&adjustment).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to record adjustment"})
	}
	return c.Status(201).JSON(adjustment)
}

// uniqueArenaSlug slugifies a name and appends -2, -3, … until the slug is
// free.
func (s *ArenaService) uniqueArenaSlug(name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := s.DB.Model(&models.Arena{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			log.Printf("[ARENA] ⚠️ Slug uniqueness check failed for %q: %v", candidate, err)
			return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
		}
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
