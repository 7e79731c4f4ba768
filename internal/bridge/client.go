// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package bridge talks to the external publishing automation webhook. The
// automation receives a batch of ready-to-post items and answers with one
// structured outcome per item; reconciling those outcomes back onto content
// items happens in the handlers layer.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"postforge/internal/models"
)

// Item is one entry in the outbound publish batch.
type Item struct {
	ContentItemID string  `json:"content_item_id"`
	BrandID       string  `json:"brand_id"`
	Platform      string  `json:"platform"`
	ContentType   string  `json:"content_type"`
	ScheduledAt   *string `json:"scheduled_at"`

	Text     string  `json:"text"`
	Caption  *string `json:"caption"`
	Hashtags *string `json:"hashtags"`

	MediaURL     *string `json:"media_url"`
	MediaURLs    *string `json:"media_urls"`
	MediaType    *string `json:"media_type"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// Result is the automation's verdict for one sent item.
type Result struct {
	ContentItemID string `json:"content_item_id"`
	OK            bool   `json:"ok"`
	PublishedURL  string `json:"published_url,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Response is the automation's reply to a publish batch.
type Response struct {
	Results []Result `json:"results"`
}

/// TransportError marks a failure to complete the webhook round-trip: the
// endpoint was unreachable or answered with an error status. On a
// TransportError no item state may be mutated.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("publish bridge: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client sends publish batches to the automation webhook.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

// NewClient creates a bridge client. An empty URL yields a client whose
// calls fail with a configuration error, surfaced at request time so the
// server can still boot without the webhook configured.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		url:    strings.TrimSpace(url),
		apiKey: strings.TrimSpace(apiKey),
		http:   &http.Client{Timeout: timeout},
	}
}

// Configured reports whether both the webhook URL and API key are set.
func (c *Client) Configured() bool {
	return c.url != "" && c.apiKey != ""
}

// PublishBatch sends the items as one request and decodes the per-item
// results. Any transport or HTTP-status failure returns a *TransportError
// and implies nothing was published — callers must not mutate item state.
func (c *Client) PublishBatch(ctx context.Context, items []Item) (*Response, error) {
	if !c.Configured() {
		return nil, &TransportError{Err: fmt.Errorf("webhook URL or API key not configured")}
	}

	payload, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return nil, fmt.Errorf("bridge marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &TransportError{Err: fmt.Errorf("webhook rejected request: %d %s", resp.StatusCode, truncate(string(body), 500))}
	}

	out := &Response{}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("webhook returned non-JSON response: %w", err)}
	}
	return out, nil
}

// ResultsByID indexes a response for reconciliation lookups.
func (r *Response) ResultsByID() map[string]Result {
	out := make(map[string]Result, len(r.Results))
	for _, res := range r.Results {
		id := strings.TrimSpace(res.ContentItemID)
		if id != "" {
			out[id] = res
		}
	}
	return out
}

// BuildItem converts a content item into its outbound wire shape. It does
// not check eligibility; see Eligible.
func BuildItem(c *models.ContentItem) Item {
	var scheduledAt *string
	if c.ScheduledAt != nil {
		s := c.ScheduledAt.Format(time.RFC3339)
		scheduledAt = &s
	}

	text := StripMarkdown(deref(c.BodyText))

	var caption *string
	if capText := StripMarkdown(strings.TrimSpace(firstNonEmpty(deref(c.MediaCaption), deref(c.BodyText)))); capText != "" {
		caption = &capText
	}

	var hashtags *string
	if h := strings.TrimSpace(deref(c.Hashtags)); h != "" {
		hashtags = &h
	}

	mediaType := c.MediaType
	if c.IsMedia() && mediaType == nil {
		mt := string(c.ContentType)
		mediaType = &mt
	}

	return Item{
		ContentItemID: c.ID.String(),
		BrandID:       c.BrandID,
		Platform:      c.Platform,
		ContentType:   string(c.ContentType),
		ScheduledAt:   scheduledAt,
		Text:          text,
		Caption:       caption,
		Hashtags:      hashtags,
		MediaURL:      c.MediaURL,
		MediaURLs:     c.MediaURLs,
		MediaType:     mediaType,
		ThumbnailURL:  c.ThumbnailURL,
	}
}

// Eligible checks whether an item carries the payload its content type
// needs before it may be sent. Returns a skip reason, or "" when sendable.
func Eligible(c *models.ContentItem) string {
	switch c.ContentType {
	case models.ContentTypeText:
		if strings.TrimSpace(deref(c.BodyText)) == "" {
			return "No body_text to publish as text"
		}
	case models.ContentTypeImage, models.ContentTypeVideo:
		if !c.HasMediaURL() {
			return fmt.Sprintf("No media_url(s) for %s publish", c.ContentType)
		}
	default:
		return fmt.Sprintf("Unsupported content_type: %s", c.ContentType)
	}
	return ""
}

var (
	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.*?)\*`)
	codeRe   = regexp.MustCompile("`(.*?)`")
)

// StripMarkdown removes the inline markdown the generator tends to emit;
// social platforms render it literally.
func StripMarkdown(s string) string {
	if s == "" {
		return s
	}
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = codeRe.ReplaceAllString(s, "$1")
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
