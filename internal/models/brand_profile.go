package models

import (
	"encoding/json"
	"time"
)

// ProfileStatus tracks the asynchronous scrape-and-profile job for a brand.
type ProfileStatus string

const (
	ProfileStatusIdle     ProfileStatus = "IDLE"
	ProfileStatusScraping ProfileStatus = "SCRAPING"
	ProfileStatusReady    ProfileStatus = "READY"
	ProfileStatusFailed   ProfileStatus = "FAILED"
)

// BrandProfile holds the scraped and AI-distilled identity of a brand,
// used as generation context so drafts don't read generic. One row per brand.
type BrandProfile struct {
	BrandID    string  `json:"brand_id"`
	WebsiteURL *string `json:"website_url,omitempty"`

	Status    ProfileStatus `json:"status"`
	LastError *string       `json:"last_error,omitempty"`

	LastScrapedAt *time.Time      `json:"last_scraped_at,omitempty"`
	PagesScraped  json.RawMessage `json:"pages_scraped,omitempty"` // JSON array of URLs
	RawText       *string         `json:"-"`                       // full scrape text, not serialized

	ProfileJSON    json.RawMessage `json:"profile_json,omitempty"`
	ProfileSummary *string         `json:"profile_summary,omitempty"`

	Colors   json.RawMessage `json:"colors,omitempty"`
	ToneTags json.RawMessage `json:"tone_tags,omitempty"`

	NotesManualOverride *string `json:"notes_manual_override,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
