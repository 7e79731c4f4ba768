// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// generation.go implements the generation orchestrator: it drives selected
// items TOPIC_INGESTED/REJECTED -> GENERATING -> PENDING_APPROVAL through
// the AI generator. Unlike the bulk transition handlers, every state change
// here is persisted immediately so a crash mid-batch leaves each item in
// its true state.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"postforge/internal/ai"
	"postforge/internal/lifecycle"
	"postforge/internal/models"
	"postforge/internal/store"
)

type generateRequest struct {
	ContentItemIDs []string `json:"content_item_ids"`
	Mode           string   `json:"mode"` // "new" (default) or "rejected"
	BrandID        string   `json:"brand_id"`
	Platform       string   `json:"platform"`
	ContentType    string   `json:"content_type"`
	Limit          int      `json:"limit"`
}

// Generate runs the generation orchestrator over the selected items.
// Selection is by explicit ids, or by mode plus brand/platform/type
// filters. Items are processed sequentially; one failure never blocks the
// rest.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	items, err := a.selectForGeneration(&req)
	if err != nil {
		respondErr(w, err)
		return
	}
	if len(items) == 0 {
		respondErr(w, &NotFoundError{Msg: "No content items eligible for generation"})
		return
	}

	var generated, failed int
	var skipped []SkippedItem
	topicText := map[uuid.UUID]string{}
	brandCtx := map[string]brandContext{}

	for _, c := range items {
		if err := lifecycle.Validate(c.Status, lifecycle.StatusGenerating); err != nil {
			skipped = append(skipped, SkippedItem{ID: c.ID.String(), Status: string(c.Status), Reason: err.Error()})
			continue
		}

		c.Status = lifecycle.StatusGenerating
		c.ClearError()
		if err := a.items.Update(c); err != nil {
			slog.Error("generation status persist failed", "item", c.ID, "error", err)
			skipped = append(skipped, SkippedItem{ID: c.ID.String(), Status: string(c.Status), Reason: "persist failed"})
			continue
		}

		if err := a.generateOne(r, c, topicText, brandCtx); err != nil {
			// Generation failure always resolves GENERATING to FAILED.
			c.Status = lifecycle.StatusFailed
			c.SetError(err.Error())
			failed++
		} else {
			c.Status = lifecycle.StatusPendingApproval
			c.ClearError()
			generated++
		}
		if err := a.items.Update(c); err != nil {
			slog.Error("generation result persist failed", "item", c.ID, "error", err)
		}
	}

	a.invalidateStats(r)
	if skipped == nil {
		skipped = []SkippedItem{}
	}
	respond(w, http.StatusOK, map[string]any{
		"generated":     generated,
		"failed":        failed,
		"skipped":       len(skipped),
		"skipped_items": skipped,
	})
}

// selectForGeneration resolves the request to a list of items, either by
// explicit ids or by mode.
func (a *API) selectForGeneration(req *generateRequest) ([]*models.ContentItem, error) {
	f := store.Filter{
		BrandID:     req.BrandID,
		Platform:    req.Platform,
		ContentType: models.ContentType(req.ContentType),
		Limit:       req.Limit,
	}

	if len(req.ContentItemIDs) > 0 {
		ids, err := parseIDs(req.ContentItemIDs)
		if err != nil {
			return nil, err
		}
		return a.items.ListForGeneration(ids, "", f)
	}

	switch req.Mode {
	case "rejected":
		return a.items.ListForGeneration(nil, lifecycle.StatusRejected, f)
	case "", "new":
		return a.items.ListForGeneration(nil, lifecycle.StatusTopicIngested, f)
	default:
		return nil, &ValidationError{Msg: "mode must be \"new\" or \"rejected\""}
	}
}

// generateOne calls the generator for one item and writes the draft onto
// it. topicText and brandCtx memoize lookups across the batch.
func (a *API) generateOne(r *http.Request, c *models.ContentItem, topicText map[uuid.UUID]string, brandCtx map[string]brandContext) error {
	text, ok := topicText[c.TopicID]
	if !ok {
		if topic, err := a.topics.FindByID(c.TopicID); err == nil && topic != nil {
			text = topic.TopicText
		} else if c.Title != nil {
			text = *c.Title
		}
		topicText[c.TopicID] = text
	}

	bc, ok := brandCtx[c.BrandID]
	if !ok {
		bc = a.brandContext(c.BrandID)
		brandCtx[c.BrandID] = bc
	}

	draft, err := a.generator.GeneratePost(r.Context(), ai.GenerateRequest{
		TopicText:    text,
		Platform:     c.Platform,
		BrandID:      c.BrandID,
		ContentType:  c.ContentType,
		BrandSummary: bc.summary,
		ToneTags:     bc.toneTags,
		Audiences:    bc.audiences,
	})
	if err != nil {
		return err
	}

	caption := draft.BodyText
	if c.IsMedia() {
		caption = ai.AppendPromptBlock(caption, draft.MediaPrompt, c.ContentType)
		mc := caption
		c.MediaCaption = &mc
	}
	c.BodyText = &caption
	if draft.Hashtags != "" {
		h := draft.Hashtags
		c.Hashtags = &h
	}
	return nil
}

// brandContext is the slice of a brand profile the generator prompt uses.
type brandContext struct {
	summary   string
	toneTags  []string
	audiences []string
}

// brandContext loads profile context for a brand. Missing or unfinished
// profiles degrade to an empty context, never an error.
func (a *API) brandContext(brandID string) brandContext {
	profile, err := a.profiles.Find(brandID)
	if err != nil || profile == nil || profile.Status != models.ProfileStatusReady {
		return brandContext{}
	}

	var bc brandContext
	if profile.ProfileSummary != nil {
		bc.summary = *profile.ProfileSummary
	}
	if len(profile.ToneTags) > 0 {
		json.Unmarshal(profile.ToneTags, &bc.toneTags)
	}
	if len(profile.ProfileJSON) > 0 {
		var p ai.BrandProfile
		if json.Unmarshal(profile.ProfileJSON, &p) == nil {
			bc.audiences = p.Audiences
		}
	}
	return bc
}
