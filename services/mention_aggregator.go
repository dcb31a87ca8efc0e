// services/mention_aggregator.go
package services

import (
	"time"

	"arc-mindshare-system/models"
	"arc-mindshare-system/utils"

	"gorm.io/gorm"
)

// AggregateMentionPoints sums engagement points per normalized author handle
// for a project's organic mentions (is_official = false). When asOf is set,
// only mentions created strictly before it count — this is what lets the
// historical delta engine replay the board at an earlier point in time.
// A handle with no mentions is simply absent from the map.
func AggregateMentionPoints(db *gorm.DB, projectID string, asOf *time.Time) (map[string]int64, error) {
	query := db.
		Select("author_handle", "likes", "replies", "retweets").
		Where("project_id = ? AND is_official = ?", projectID, false)
	if asOf != nil {
		query = query.Where("created_at < ?", *asOf)
	}

	var mentions []models.Mention
	if err := query.Find(&mentions).Error; err != nil {
		return nil, err
	}

	points := make(map[string]int64, len(mentions))
	for i := range mentions {
		handle := utils.NormalizeHandle(mentions[i].AuthorHandle)
		if handle == "" {
			continue
		}
		points[handle] += mentions[i].EngagementPoints()
	}
	return points, nil
}
