// services/history.go
package services

import (
	"log"
	"math"
	"sync"
	"time"

	"arc-mindshare-system/models"
)

// The three trend windows shown on the board.
var deltaWindows = []struct {
	name   string
	cutoff func(now time.Time) time.Time
}{
	{"7d", func(now time.Time) time.Time { return now.AddDate(0, 0, -7) }},
	{"1m", func(now time.Time) time.Time { return now.AddDate(0, -1, 0) }},
	{"3m", func(now time.Time) time.Time { return now.AddDate(0, -3, 0) }},
}

// contributionAt replays the merge+rank pipeline as it would have run at the
// cutoff: mentions created before it, creators joined before it, adjustments
// written before it, verifications confirmed before it. Returns each handle's
// contribution percentage of total mindshare at that moment.
func contributionAt(s *LeaderboardService, projectID string, cutoff time.Time) (map[string]float64, error) {
	autoPoints, err := AggregateMentionPoints(s.DB, projectID, &cutoff)
	if err != nil {
		return nil, err
	}
	participation, err := loadParticipation(s.DB, projectID, &cutoff)
	if err != nil {
		return nil, err
	}

	entries := mergeEntries(participation, autoPoints)
	rankEntries(entries)

	pcts := make(map[string]float64, len(entries))
	for i := range entries {
		if entries[i].ContributionPct != nil {
			pcts[entries[i].Handle] = *entries[i].ContributionPct
		}
	}
	return pcts, nil
}

// applyHistoricalDeltas fills Delta7d/Delta1m/Delta3m on every entry, in basis
// points (1% = 100 bps). The three cutoffs have no ordering dependency, so
// they run concurrently and join before deltas are written. A failed replay is
// logged and leaves that window's deltas null — trend data is never worth
// failing the board over.
func (s *LeaderboardService) applyHistoricalDeltas(projectID string, entries []models.LeaderboardEntry) {
	if len(entries) == 0 {
		return
	}
	now := time.Now()

	historical := make([]map[string]float64, len(deltaWindows))
	var wg sync.WaitGroup
	for i, window := range deltaWindows {
		wg.Add(1)
		go func(i int, name string, cutoff time.Time) {
			defer wg.Done()
			pcts, err := contributionAt(s, projectID, cutoff)
			if err != nil {
				log.Printf("[LEADERBOARD] ⚠️ Historical replay (%s) failed for project %s: %v", name, projectID, err)
				return
			}
			historical[i] = pcts
		}(i, window.name, window.cutoff(now))
	}
	wg.Wait()

	for i := range entries {
		entry := &entries[i]
		current := 0.0
		if entry.ContributionPct != nil {
			current = *entry.ContributionPct
		}
		targets := [...]**int{&entry.Delta7d, &entry.Delta1m, &entry.Delta3m}
		for w := range deltaWindows {
			if historical[w] == nil {
				continue
			}
			past := historical[w][entry.Handle]
			if current == 0 && past == 0 {
				continue // no signal at either point
			}
			bps := int(math.Round((current - past) * 100))
			*targets[w] = &bps
		}
	}
}
