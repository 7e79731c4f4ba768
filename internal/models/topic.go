package models

import (
	"time"

	"github.com/google/uuid"
)

// Topic is a raw content idea supplied by an operator. Expansion spawns one
// ContentItem per requested platform x content type, all sharing the topic ID.
type Topic struct {
	ID        uuid.UUID `json:"id"`
	BrandID   string    `json:"brand_id"`
	TopicText string    `json:"topic_text"`
	CreatedAt time.Time `json:"created_at"`
}

// Brand is a tenant the system produces content for.
type Brand struct {
	ID          string    `json:"id"` // e.g. "neuroflow-ai"
	DisplayName string    `json:"display_name"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Platform is an entry in the extensible social platform registry.
type Platform struct {
	ID          string    `json:"id"` // e.g. "facebook"
	DisplayName string    `json:"display_name"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
