// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"postforge/internal/lifecycle"
	"postforge/internal/models"
	"postforge/internal/store"
)

// listFilter builds a store filter from common query params.
func listFilter(r *http.Request) store.Filter {
	q := r.URL.Query()
	f := store.Filter{
		BrandID:     q.Get("brand_id"),
		Platform:    q.Get("platform"),
		ContentType: models.ContentType(q.Get("content_type")),
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			f.Limit = n
		}
	}
	return f
}

// ContentList returns content items, optionally narrowed by status, brand,
// platform, content type, and limit.
func (a *API) ContentList(w http.ResponseWriter, r *http.Request) {
	f := listFilter(r)

	var items []*models.ContentItem
	var err error
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := lifecycle.Status(raw)
		if !lifecycle.Valid(status) {
			respondErr(w, &ValidationError{Msg: "Unknown status: " + raw})
			return
		}
		items, err = a.items.ListByStatus(status, f)
	} else {
		items, err = a.items.ListAll(f)
	}
	if err != nil {
		respondErr(w, err)
		return
	}

	if items == nil {
		items = []*models.ContentItem{}
	}
	respond(w, http.StatusOK, map[string]any{
		"count": len(items),
		"items": items,
	})
}

// ContentRecent returns the most recently published items.
func (a *API) ContentRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	items, err := a.items.ListPublished(limit)
	if err != nil {
		respondErr(w, err)
		return
	}
	if items == nil {
		items = []*models.ContentItem{}
	}
	respond(w, http.StatusOK, map[string]any{"count": len(items), "items": items})
}

// ContentGet returns one item by id.
func (a *API) ContentGet(w http.ResponseWriter, r *http.Request) {
	item, err := a.itemFromURL(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, item)
}

type contentUpdateRequest struct {
	Title    *string `json:"title"`
	BodyText *string `json:"body_text"`
	Hashtags *string `json:"hashtags"`
}

// ContentUpdate edits the text payload of an item before approval.
// Items past PENDING_APPROVAL are locked.
func (a *API) ContentUpdate(w http.ResponseWriter, r *http.Request) {
	item, err := a.itemFromURL(r)
	if err != nil {
		respondErr(w, err)
		return
	}

	switch item.Status {
	case lifecycle.StatusTopicIngested, lifecycle.StatusGenerating,
		lifecycle.StatusDraftReady, lifecycle.StatusPendingApproval,
		lifecycle.StatusRejected:
		// editable
	default:
		respondErr(w, &ValidationError{Msg: "Content can only be edited before approval"})
		return
	}

	var req contentUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if req.Title != nil {
		item.Title = req.Title
	}
	if req.BodyText != nil {
		item.BodyText = req.BodyText
	}
	if req.Hashtags != nil {
		item.Hashtags = req.Hashtags
	}

	if err := a.items.Update(item); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, item)
}

// MoveToPending pushes a single item straight to PENDING_APPROVAL, used
// for manually written drafts that skip generation.
func (a *API) MoveToPending(w http.ResponseWriter, r *http.Request) {
	item, err := a.itemFromURL(r)
	if err != nil {
		respondErr(w, err)
		return
	}

	if err := lifecycle.Validate(item.Status, lifecycle.StatusPendingApproval); err != nil {
		respondErr(w, &ValidationError{Msg: err.Error()})
		return
	}

	item.Status = lifecycle.StatusPendingApproval
	item.ClearError()
	if err := a.items.Update(item); err != nil {
		respondErr(w, err)
		return
	}
	a.invalidateStats(r)
	respond(w, http.StatusOK, item)
}

// itemFromURL resolves the {id} route parameter to a stored item.
func (a *API) itemFromURL(r *http.Request) (*models.ContentItem, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &ValidationError{Msg: "Invalid content item id: " + raw}
	}
	item, err := a.items.FindByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &NotFoundError{Msg: "Content item not found"}
	}
	return item, nil
}
