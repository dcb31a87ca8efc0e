// services/enrichment.go
package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"arc-mindshare-system/models"
	"arc-mindshare-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// Bounded scan: only the newest mentions are checked for avatar
	// snapshots and heat metrics, not the whole mention history.
	enrichMentionScanLimit = 200

	// A mention this popular counts as an influencer mention for ct-heat.
	influencerLikesThreshold = 100

	signalScoreWindow = 30 * 24 * time.Hour

	socialGraphMaxAttempts  = 3 // 1 try + 2 retries per handle variant
	socialGraphRetryBackoff = 300 * time.Millisecond
)

// enrichmentContext holds everything derivable from the project's recent
// mentions, loaded once per request and shared across all entries.
type enrichmentContext struct {
	avatarByHandle     map[string]string // newest http(s) snapshot per handle
	postsByHandle      map[string][]PostMetrics
	likeSumByHandle    map[string]int64
	retweetSumByHandle map[string]int64
	influencerMentions map[string]int64
	uniqueAuthors      int64
}

func loadEnrichmentContext(db *gorm.DB, projectID string) (*enrichmentContext, error) {
	var mentions []models.Mention
	err := db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(enrichMentionScanLimit).
		Find(&mentions).Error
	if err != nil {
		return nil, err
	}

	ectx := &enrichmentContext{
		avatarByHandle:     make(map[string]string),
		postsByHandle:      make(map[string][]PostMetrics),
		likeSumByHandle:    make(map[string]int64),
		retweetSumByHandle: make(map[string]int64),
		influencerMentions: make(map[string]int64),
	}
	authors := make(map[string]bool)
	for _, m := range mentions {
		handle := utils.NormalizeHandle(m.AuthorHandle)
		if handle == "" {
			continue
		}
		authors[handle] = true
		// Mentions arrive newest-first, so the first snapshot wins.
		if _, ok := ectx.avatarByHandle[handle]; !ok && utils.IsHTTPURL(m.AvatarURL) {
			ectx.avatarByHandle[handle] = m.AvatarURL
		}
		if m.IsOfficial {
			continue // official posts carry no creator signal
		}
		ectx.postsByHandle[handle] = append(ectx.postsByHandle[handle], PostMetrics{
			Likes:    m.Likes,
			Replies:  m.Replies,
			Retweets: m.Retweets,
			PostedAt: m.CreatedAt,
		})
		ectx.likeSumByHandle[handle] += m.Likes
		ectx.retweetSumByHandle[handle] += m.Retweets
		if m.Likes >= influencerLikesThreshold {
			ectx.influencerMentions[handle]++
		}
	}
	ectx.uniqueAuthors = int64(len(authors))
	return ectx, nil
}

// enrichEntries resolves avatars, display names and derived scores for every
// entry. Entries are processed in small batches with a fixed pause in between
// — throttling for the social graph provider's rate limit, nothing more.
// Every failure in here is per-creator and non-fatal: the field stays null.
func (s *LeaderboardService) enrichEntries(projectID string, entries []models.LeaderboardEntry) {
	if len(entries) == 0 {
		return
	}

	ectx, err := loadEnrichmentContext(s.DB, projectID)
	if err != nil {
		log.Printf("[ENRICH] ⚠️ Failed to load mention context for project %s: %v", projectID, err)
		ectx = &enrichmentContext{
			avatarByHandle:     map[string]string{},
			postsByHandle:      map[string][]PostMetrics{},
			likeSumByHandle:    map[string]int64{},
			retweetSumByHandle: map[string]int64{},
			influencerMentions: map[string]int64{},
		}
	}

	batchSize := s.EnrichBatchSize
	if batchSize <= 0 {
		batchSize = defaultEnrichBatchSize
	}

	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(entry *models.LeaderboardEntry) {
				defer wg.Done()
				s.enrichEntry(entry, ectx)
			}(&entries[i])
		}
		wg.Wait()

		if end < len(entries) && s.EnrichBatchDelay > 0 {
			time.Sleep(s.EnrichBatchDelay)
		}
	}
}

func (s *LeaderboardService) enrichEntry(entry *models.LeaderboardEntry, ectx *enrichmentContext) {
	profile := s.lookupCreatorProfile(entry.Handle)
	if profile != nil {
		entry.Name = profile.DisplayName
		if entry.ProfileID == nil {
			entry.ProfileID = &profile.ID
		}
	}

	if avatar := s.resolveAvatar(entry.Handle, profile, ectx); avatar != "" {
		entry.AvatarURL = &avatar
	}

	posts := ectx.postsByHandle[entry.Handle]
	mentionsCount := int64(len(posts))
	var avgLikes, avgRetweets float64
	if mentionsCount > 0 {
		avgLikes = float64(ectx.likeSumByHandle[entry.Handle]) / float64(mentionsCount)
		avgRetweets = float64(ectx.retweetSumByHandle[entry.Handle]) / float64(mentionsCount)
	}
	heat := ComputeCtHeat(mentionsCount, avgLikes, avgRetweets, ectx.uniqueAuthors, ectx.influencerMentions[entry.Handle])
	entry.CtHeat = &heat

	var smartFollowers int64
	if profile != nil {
		smartFollowers = profile.SmartFollowersCount
	}
	score, band := ComputeSignalScore(posts, signalScoreWindow, entry.IsJoined, smartFollowers)
	entry.SignalScore = &score
	entry.TrustBand = &band
}

// lookupCreatorProfile checks the primary registry under every storage
// variant of the handle. Registries predate handle normalization, so rows
// may exist under @-prefixed or mixed-case forms.
func (s *LeaderboardService) lookupCreatorProfile(handle string) *models.CreatorProfile {
	for _, variant := range utils.HandleVariants(handle) {
		var profile models.CreatorProfile
		err := s.DB.Where("handle = ?", variant).First(&profile).Error
		if err == nil {
			return &profile
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[ENRICH] ⚠️ Profile registry lookup failed for %q: %v", variant, err)
		}
	}
	return nil
}

func (s *LeaderboardService) lookupTrackedProfile(handle string) *models.TrackedProfile {
	for _, variant := range utils.HandleVariants(handle) {
		var profile models.TrackedProfile
		err := s.DB.Where("handle = ?", variant).First(&profile).Error
		if err == nil {
			return &profile
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[ENRICH] ⚠️ Tracked profile lookup failed for %q: %v", variant, err)
		}
	}
	return nil
}

// resolveAvatar walks the fallback chain in strict priority order and stops
// at the first usable http(s) URL:
//  1. newest mention snapshot
//  2. primary profile registry
//  3. secondary (tracked) registry
//  4. live social graph fetch, cached back into the primary registry
//
// Returns "" when every tier misses — the entry keeps a null avatar, which is
// a normal outcome, not an error.
func (s *LeaderboardService) resolveAvatar(handle string, profile *models.CreatorProfile, ectx *enrichmentContext) string {
	if avatar, ok := ectx.avatarByHandle[handle]; ok {
		return avatar
	}

	if profile != nil && utils.IsHTTPURL(profile.AvatarURL) {
		return profile.AvatarURL
	}

	if tracked := s.lookupTrackedProfile(handle); tracked != nil && utils.IsHTTPURL(tracked.AvatarURL) {
		return tracked.AvatarURL
	}

	if s.SocialGraph == nil {
		return ""
	}
	return s.fetchAvatarFromSocialGraph(handle)
}

// fetchAvatarFromSocialGraph tries each handle variant against the provider
// with bounded linear-backoff retries. A hit is written back to the primary
// registry from a detached goroutine; a failed cache write is logged and
// swallowed — the response never waits on it.
func (s *LeaderboardService) fetchAvatarFromSocialGraph(handle string) string {
	variants := []string{utils.NormalizeHandle(handle), handle, "@" + utils.NormalizeHandle(handle)}
	tried := make(map[string]bool, len(variants))

	for _, variant := range variants {
		if variant == "" || variant == "@" || tried[variant] {
			continue
		}
		tried[variant] = true

		for attempt := 1; attempt <= socialGraphMaxAttempts; attempt++ {
			p, err := s.SocialGraph.GetProfile(variant)
			if err != nil {
				if attempt < socialGraphMaxAttempts {
					time.Sleep(time.Duration(attempt) * socialGraphRetryBackoff)
				}
				continue
			}
			if p == nil {
				break // provider doesn't know this variant; no point retrying
			}
			if utils.IsHTTPURL(p.AvatarURL) {
				s.cacheProfileAsync(handle, p)
				return p.AvatarURL
			}
			break
		}
	}
	return ""
}

// cacheProfileAsync writes a freshly fetched profile into the primary
// registry without blocking the caller.
func (s *LeaderboardService) cacheProfileAsync(handle string, p *SocialGraphProfile) {
	normalized := utils.NormalizeHandle(handle)
	go func() {
		row := models.CreatorProfile{
			ID:          uuid.NewString(),
			Handle:      normalized,
			DisplayName: p.Name,
			AvatarURL:   p.AvatarURL,
		}
		err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "handle"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "avatar_url", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			log.Printf("[ENRICH] ⚠️ Failed to cache social graph profile for %q: %v", normalized, err)
		}
	}()
}
