// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// topics.go implements topic ingestion: each submitted topic is expanded
// into one TOPIC_INGESTED content item per platform x content-type
// combination, all sharing the topic's id.
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"postforge/internal/lifecycle"
	"postforge/internal/models"
)

type topicsRequest struct {
	BrandID      string   `json:"brand_id"`
	Topics       []string `json:"topics"`
	Platforms    []string `json:"platforms"`
	ContentTypes []string `json:"content_types"`
}

// TopicsCreate ingests topics and expands them into content items.
func (a *API) TopicsCreate(w http.ResponseWriter, r *http.Request) {
	var req topicsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	if req.BrandID == "" {
		req.BrandID = a.defaultBrand
	}

	topics := cleanStrings(req.Topics)
	if len(topics) == 0 {
		respondErr(w, &ValidationError{Msg: "topics must be a non-empty list"})
		return
	}

	platforms := cleanStrings(req.Platforms)
	if len(platforms) == 0 {
		respondErr(w, &ValidationError{Msg: "platforms must be a non-empty list"})
		return
	}
	for _, p := range platforms {
		ok, err := a.platforms.Exists(p)
		if err != nil {
			respondErr(w, err)
			return
		}
		if !ok {
			respondErr(w, &ValidationError{Msg: "Unknown platform: " + p})
			return
		}
	}

	contentTypes := cleanStrings(req.ContentTypes)
	if len(contentTypes) == 0 {
		contentTypes = []string{string(models.ContentTypeText)}
	}
	for _, ct := range contentTypes {
		if !models.ContentTypes[models.ContentType(ct)] {
			respondErr(w, &ValidationError{Msg: "Unknown content_type: " + ct})
			return
		}
	}

	var created int
	var itemIDs []string
	for _, text := range topics {
		topic := &models.Topic{BrandID: req.BrandID, TopicText: text}
		if err := a.topics.Create(topic); err != nil {
			slog.Error("topic create failed", "error", err)
			respondErr(w, err)
			return
		}

		var items []*models.ContentItem
		for _, platform := range platforms {
			for _, ct := range contentTypes {
				title := text
				item := &models.ContentItem{
					TopicID:     topic.ID,
					BrandID:     req.BrandID,
					Platform:    platform,
					ContentType: models.ContentType(ct),
					Status:      lifecycle.StatusTopicIngested,
					Title:       &title,
				}
				if item.IsMedia() {
					mt := ct
					item.MediaType = &mt
				}
				items = append(items, item)
			}
		}

		if err := a.items.CreateBatch(items); err != nil {
			slog.Error("topic expansion failed", "topic", topic.ID, "error", err)
			respondErr(w, err)
			return
		}
		created += len(items)
		for _, it := range items {
			itemIDs = append(itemIDs, it.ID.String())
		}
	}

	a.invalidateStats(r)
	respond(w, http.StatusCreated, map[string]any{
		"topics":           len(topics),
		"items_created":    created,
		"content_item_ids": itemIDs,
	})
}

// TopicsList returns all topics for a brand.
func (a *API) TopicsList(w http.ResponseWriter, r *http.Request) {
	brandID := r.URL.Query().Get("brand_id")
	if brandID == "" {
		brandID = a.defaultBrand
	}
	topics, err := a.topics.List(brandID)
	if err != nil {
		respondErr(w, err)
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	respond(w, http.StatusOK, map[string]any{"topics": topics})
}

// PlatformsList returns the active platform registry.
func (a *API) PlatformsList(w http.ResponseWriter, r *http.Request) {
	platforms, err := a.platforms.ListActive()
	if err != nil {
		respondErr(w, err)
		return
	}
	if platforms == nil {
		platforms = []models.Platform{}
	}
	respond(w, http.StatusOK, map[string]any{"platforms": platforms})
}

// BrandsList returns the active brand registry.
func (a *API) BrandsList(w http.ResponseWriter, r *http.Request) {
	brands, err := a.brands.ListActive()
	if err != nil {
		respondErr(w, err)
		return
	}
	if brands == nil {
		brands = []models.Brand{}
	}
	respond(w, http.StatusOK, map[string]any{"brands": brands})
}

type brandCreateRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// BrandsCreate registers a new brand.
func (a *API) BrandsCreate(w http.ResponseWriter, r *http.Request) {
	var req brandCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		respondErr(w, &ValidationError{Msg: "id is required"})
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.ID
	}

	brand := &models.Brand{ID: req.ID, DisplayName: req.DisplayName, IsActive: true}
	if err := a.brands.Create(brand); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, brand)
}

func cleanStrings(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
