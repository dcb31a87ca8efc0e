package models

import (
	"time"
)

// Project is the campaign owner. Arenas, mentions and follow verifications
// all hang off a project; creators belong to arenas.
type Project struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	XHandle     string    `json:"x_handle"` // project account handle, used for follow verification
	Description string    `json:"description"`
	LogoURL     string    `json:"logo_url"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Arenas []Arena `json:"arenas,omitempty" gorm:"foreignKey:ProjectID"`
}
