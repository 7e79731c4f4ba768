// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mediagen calls the media generation webhook. The webhook takes a
// prompt and answers with either a hosted URL or the raw file bytes; when no
// webhook is configured a stub asset is returned so the rest of the flow
// stays exercisable in development.
package mediagen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postforge/internal/models"
)

// Request is the outbound payload for one asset.
type Request struct {
	ContentItemID string `json:"content_item_id"`
	BrandID       string `json:"brand_id"`
	Platform      string `json:"platform"`
	ContentType   string `json:"content_type"`
	Prompt        string `json:"prompt"`
}

// Asset is what the webhook produced. Exactly one of URL or Data is set;
// Thumbnail is optional and only meaningful for video.
type Asset struct {
	URL       string
	Data      []byte
	MimeType  string
	Thumbnail []byte
	Stub      bool
}

type webhookResponse struct {
	MediaURL        string `json:"media_url"`
	FileBase64      string `json:"file_base64"`
	MimeType        string `json:"mime_type"`
	ThumbnailBase64 string `json:"thumbnail_base64"`
	Error           string `json:"error"`
}

// Client talks to the media webhook.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(webhookURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		url:  strings.TrimSpace(webhookURL),
		http: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a real webhook is wired. When false, Generate
// serves stub assets.
func (c *Client) Configured() bool {
	return c.url != ""
}

// Generate requests one asset for the item's prompt.
func (c *Client) Generate(ctx context.Context, req Request) (*Asset, error) {
	if !c.Configured() {
		return stubAsset(req), nil
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mediagen marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("mediagen request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("media webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("media webhook read: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("media webhook returned %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var out webhookResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("media webhook returned non-JSON response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("media webhook error: %s", out.Error)
	}

	return assetFromResponse(&out)
}

func assetFromResponse(r *webhookResponse) (*Asset, error) {
	if u := strings.TrimSpace(r.MediaURL); u != "" {
		if _, err := url.ParseRequestURI(u); err != nil {
			return nil, fmt.Errorf("media webhook returned invalid media_url: %w", err)
		}
		return &Asset{URL: u}, nil
	}

	if r.FileBase64 == "" {
		return nil, fmt.Errorf("media webhook returned neither media_url nor file_base64")
	}
	data, err := base64.StdEncoding.DecodeString(r.FileBase64)
	if err != nil {
		return nil, fmt.Errorf("media webhook file_base64: %w", err)
	}

	asset := &Asset{Data: data, MimeType: r.MimeType}
	if r.ThumbnailBase64 != "" {
		thumb, err := base64.StdEncoding.DecodeString(r.ThumbnailBase64)
		if err != nil {
			return nil, fmt.Errorf("media webhook thumbnail_base64: %w", err)
		}
		asset.Thumbnail = thumb
	}
	return asset, nil
}

// Placeholder assets used when no webhook is configured.
const (
	stubImageURL = "https://placehold.co/1080x1080/1a1a2e/e94560/png?text=Generated+Image"
	stubVideoURL = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4"
)

func stubAsset(req Request) *Asset {
	u := stubImageURL
	if req.ContentType == string(models.ContentTypeVideo) {
		u = stubVideoURL
	}
	return &Asset{URL: u, Stub: true}
}

// Ext maps a webhook mime type to a storage file extension.
func Ext(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "video/mp4":
		return "mp4"
	case "video/webm":
		return "webm"
	default:
		return "bin"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
