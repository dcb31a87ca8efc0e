package models

import (
	"time"
)

// Mention is a raw social-post record captured by the ingest side. Mentions
// with IsOfficial=true come from the project's own account and never count
// toward auto-tracked scoring.
type Mention struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	ProjectID    string    `json:"project_id" gorm:"not null;index"`
	AuthorHandle string    `json:"author_handle" gorm:"not null;index"`
	PostURL      string    `json:"post_url"`
	Content      string    `json:"content" gorm:"type:text"`
	Likes        int64     `json:"likes" gorm:"default:0"`
	Replies      int64     `json:"replies" gorm:"default:0"`
	Retweets     int64     `json:"retweets" gorm:"default:0"`
	IsOfficial   bool      `json:"is_official" gorm:"default:false"`
	AvatarURL    string    `json:"avatar_url"` // author avatar snapshot at capture time
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// EngagementPoints is the per-mention scoring weight: replies signal more
// effort than likes, retweets more reach than either.
func (m *Mention) EngagementPoints() int64 {
	return m.Likes + 2*m.Replies + 3*m.Retweets
}
