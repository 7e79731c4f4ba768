// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// media.go implements media generation for image/video items. The media
// webhook answers with either a hosted URL or raw bytes; raw bytes are
// uploaded to object storage and the resulting public URL is stored.
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"postforge/internal/ai"
	"postforge/internal/lifecycle"
	"postforge/internal/mediagen"
	"postforge/internal/models"
)

// MediaGenerate produces media assets for the requested image/video items.
// Media generation fills the item's media payload; it does not advance the
// lifecycle except on failure, which resolves to FAILED per item.
func (a *API) MediaGenerate(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	ids, err := parseIDs(req.ContentItemIDs)
	if err != nil {
		respondErr(w, err)
		return
	}

	items, err := a.loadItems(ids)
	if err != nil {
		respondErr(w, err)
		return
	}

	var generated, failed int
	skipped := []SkippedItem{}

	for _, c := range items {
		if !c.IsMedia() {
			skipped = append(skipped, SkippedItem{
				ID: c.ID.String(), Status: string(c.Status),
				Reason: "Only image/video items carry media",
			})
			continue
		}
		switch c.Status {
		case lifecycle.StatusDraftReady, lifecycle.StatusPendingApproval:
			// media can still change before approval
		default:
			skipped = append(skipped, SkippedItem{
				ID: c.ID.String(), Status: string(c.Status),
				Reason: "Media can only be generated before approval",
			})
			continue
		}

		prompt := mediaPrompt(c)
		if prompt == "" {
			skipped = append(skipped, SkippedItem{
				ID: c.ID.String(), Status: string(c.Status),
				Reason: "No media prompt on item, generate text first",
			})
			continue
		}

		if err := a.generateMediaFor(r, c, prompt); err != nil {
			slog.Warn("media generation failed", "item", c.ID, "error", err)
			if lifecycle.Validate(c.Status, lifecycle.StatusFailed) == nil {
				c.Status = lifecycle.StatusFailed
			}
			c.SetError(err.Error())
			failed++
		} else {
			c.ClearError()
			generated++
		}
		if err := a.items.Update(c); err != nil {
			slog.Error("media result persist failed", "item", c.ID, "error", err)
		}
	}

	a.invalidateStats(r)
	respond(w, http.StatusOK, map[string]any{
		"generated":     generated,
		"failed":        failed,
		"skipped":       len(skipped),
		"skipped_items": skipped,
	})
}

// generateMediaFor runs one webhook round-trip and writes the asset onto
// the item.
func (a *API) generateMediaFor(r *http.Request, c *models.ContentItem, prompt string) error {
	asset, err := a.media.Generate(r.Context(), mediagen.Request{
		ContentItemID: c.ID.String(),
		BrandID:       c.BrandID,
		Platform:      c.Platform,
		ContentType:   string(c.ContentType),
		Prompt:        prompt,
	})
	if err != nil {
		return err
	}

	a.dropStoredMedia(r, c)

	if asset.URL != "" {
		u := asset.URL
		c.MediaURL = &u
		p := models.MediaProviderExternal
		c.MediaProvider = &p
		return nil
	}

	// Raw bytes: upload to the object store.
	if a.storage == nil {
		return &ExternalServiceError{Err: errStorageUnconfigured}
	}
	url, err := a.storage.PutBytes(r.Context(), asset.Data, asset.MimeType, "media", mediagen.Ext(asset.MimeType))
	if err != nil {
		return err
	}
	c.MediaURL = &url
	p := models.MediaProviderObjectStore
	c.MediaProvider = &p

	if len(asset.Thumbnail) > 0 {
		thumbURL, err := a.storage.PutBytes(r.Context(), asset.Thumbnail, "image/jpeg", "thumbnails", "jpg")
		if err != nil {
			slog.Warn("thumbnail upload failed", "item", c.ID, "error", err)
		} else {
			c.ThumbnailURL = &thumbURL
		}
	}
	return nil
}

// dropStoredMedia deletes a previously uploaded asset when a regeneration
// replaces it. External URLs are not ours to delete.
func (a *API) dropStoredMedia(r *http.Request, c *models.ContentItem) {
	if a.storage == nil || c.MediaProvider == nil || *c.MediaProvider != models.MediaProviderObjectStore {
		return
	}
	for _, u := range []*string{c.MediaURL, c.ThumbnailURL} {
		if u == nil {
			continue
		}
		if key, ok := a.storage.ExtractKey(*u); ok {
			if err := a.storage.Delete(r.Context(), key); err != nil {
				slog.Warn("stale media delete failed", "item", c.ID, "key", key, "error", err)
			}
		}
	}
	c.ThumbnailURL = nil
}

// mediaPrompt extracts the labeled prompt block the generator appended to
// the caption; the whole caption is the fallback.
func mediaPrompt(c *models.ContentItem) string {
	caption := ""
	if c.MediaCaption != nil {
		caption = *c.MediaCaption
	} else if c.BodyText != nil {
		caption = *c.BodyText
	}

	marker := ai.PromptLabel(c.ContentType) + ":"
	if idx := strings.Index(caption, marker); idx != -1 {
		return strings.TrimSpace(caption[idx+len(marker):])
	}
	return strings.TrimSpace(caption)
}
