// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"postforge/internal/lifecycle"
)

// ContentType is the kind of asset a content item resolves to. Fixed at
// creation; it never changes over the item's lifetime.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
)

// ContentTypes is the set of supported content types.
var ContentTypes = map[ContentType]bool{
	ContentTypeText:  true,
	ContentTypeImage: true,
	ContentTypeVideo: true,
}

// MediaProvider identifies where a generated media file is hosted.
const (
	MediaProviderObjectStore = "object-store"
	MediaProviderExternal    = "external"
)

// ContentItem is one piece of content at one point in its lifecycle. Topic
// expansion creates one row per topic x platform x content type, all sharing
// a topic_id. Items are mutated only through the bulk handlers, the
// generation orchestrator, and the publish bridge.
type ContentItem struct {
	ID      uuid.UUID `json:"id"`
	TopicID uuid.UUID `json:"topic_id"`

	BrandID     string           `json:"brand_id"`
	Platform    string           `json:"platform"`
	ContentType ContentType      `json:"content_type"`
	Status      lifecycle.Status `json:"status"`

	Title    *string `json:"title,omitempty"`
	BodyText *string `json:"body_text,omitempty"`
	Hashtags *string `json:"hashtags,omitempty"`

	// Media payload — populated by the media generator, never by user input.
	MediaType     *string `json:"media_type,omitempty"`
	MediaURL      *string `json:"media_url,omitempty"`
	MediaURLs     *string `json:"media_urls,omitempty"` // JSON array or comma list
	MediaCaption  *string `json:"media_caption,omitempty"`
	ThumbnailURL  *string `json:"thumbnail_url,omitempty"`
	MediaProvider *string `json:"media_provider,omitempty"`

	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	PublishedURL *string    `json:"published_url,omitempty"`

	LastError    *string `json:"last_error,omitempty"`
	AttemptCount int     `json:"attempt_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsMedia returns true for items whose payload is an image or a video.
func (c *ContentItem) IsMedia() bool {
	return c.ContentType == ContentTypeImage || c.ContentType == ContentTypeVideo
}

// HasMediaURL reports whether at least one media URL is present, which the
// publish bridge requires before sending an image/video item.
func (c *ContentItem) HasMediaURL() bool {
	if c.MediaURL != nil && *c.MediaURL != "" {
		return true
	}
	return c.MediaURLs != nil && *c.MediaURLs != ""
}

// SetError records a failure message on the item.
func (c *ContentItem) SetError(msg string) {
	c.LastError = &msg
}

// ClearError wipes the last failure message. Called on every successful
// transition.
func (c *ContentItem) ClearError() {
	c.LastError = nil
}
