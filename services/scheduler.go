// services/scheduler.go
package services

import (
	"log"
	"time"

	"arc-mindshare-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartArenaScheduler runs the timed lifecycle transitions: activate
// scheduled arenas whose start time has arrived (through the same
// transactional path as the admin endpoint, so the single-active invariant
// holds), and end active arenas past their end time.
func (s *ArenaService) StartArenaScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()

			var due []models.Arena
			err := s.DB.Where("status = ? AND kind IN ? AND start_time <= ?",
				models.ArenaStatusScheduled, models.MindshareArenaKinds, now).
				Find(&due).Error
			if err != nil {
				log.Printf("[Scheduler] DB error loading scheduled arenas: %v", err)
			} else {
				for i := range due {
					if err := s.Activate(&due[i]); err != nil {
						log.Printf("[Scheduler] Failed to activate arena %s: %v", due[i].ID, err)
					} else {
						log.Printf("✅ Auto-activated arena: %s", due[i].Name)
					}
				}
			}

			result := s.DB.Model(&models.Arena{}).
				Where("status = ? AND end_time IS NOT NULL AND end_time <= ?", models.ArenaStatusActive, now).
				Update("status", models.ArenaStatusEnded)
			if result.Error != nil {
				log.Printf("[Scheduler] DB error ending expired arenas: %v", result.Error)
			} else if result.RowsAffected > 0 {
				log.Printf("✅ Auto-ended %d expired arena(s)", result.RowsAffected)
			}
		}),
	)
}
