// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// publish.go implements the publish bridge endpoint: one synchronous batch
// round-trip to the publishing automation, reconciled per item. Transport
// failures abort before any item is touched; per-item failures do not.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"postforge/internal/bridge"
	"postforge/internal/lifecycle"
	"postforge/internal/models"
)

// Publish sends the requested QUEUED items to the publish webhook and
// applies the per-item outcomes.
func (a *API) Publish(w http.ResponseWriter, r *http.Request) {
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

	// Step 1: filter to QUEUED items carrying a sendable payload. Items
	// failing the filter are never sent.
	var sendable []*models.ContentItem
	skipped := []SkippedItem{}
	for _, c := range items {
		if c.Status != lifecycle.StatusQueued {
			skipped = append(skipped, SkippedItem{
				ID: c.ID.String(), Status: string(c.Status),
				Reason: "Item is not QUEUED, only QUEUED items can be published",
			})
			continue
		}
		if reason := bridge.Eligible(c); reason != "" {
			skipped = append(skipped, SkippedItem{ID: c.ID.String(), Status: string(c.Status), Reason: reason})
			continue
		}
		sendable = append(sendable, c)
	}

	if len(sendable) == 0 {
		respond(w, http.StatusOK, map[string]any{
			"published":           0,
			"failed":              0,
			"skipped":             len(skipped),
			"skipped_items":       skipped,
			"missing_in_response": []string{},
		})
		return
	}

	wire := make([]bridge.Item, 0, len(sendable))
	for _, c := range sendable {
		wire = append(wire, bridge.BuildItem(c))
	}

	resp, err := a.bridge.PublishBatch(r.Context(), wire)
	if err != nil {
		var te *bridge.TransportError
		if errors.As(err, &te) {
			// Nothing was sent successfully; no item state changes.
			respondErr(w, &ExternalServiceError{Err: err})
			return
		}
		respondErr(w, err)
		return
	}

	published, failed, missing := a.reconcilePublish(sendable, resp)

	if err := a.items.UpdateAll(sendable); err != nil {
		slog.Error("publish reconcile commit failed", "error", err)
		respondErr(w, err)
		return
	}
	a.invalidateStats(r)

	respond(w, http.StatusOK, map[string]any{
		"published":           published,
		"failed":              failed,
		"skipped":             len(skipped),
		"skipped_items":       skipped,
		"missing_in_response": missing,
	})
}

// reconcilePublish maps webhook results onto the sent items. Every sent
// item counts an attempt. Items absent from the response keep their status
// — their outcome is unknown, not assumed either way.
func (a *API) reconcilePublish(sent []*models.ContentItem, resp *bridge.Response) (published, failed int, missing []string) {
	byID := resp.ResultsByID()
	now := time.Now().UTC()
	missing = []string{}

	for _, c := range sent {
		c.AttemptCount++

		res, ok := byID[c.ID.String()]
		if !ok {
			missing = append(missing, c.ID.String())
			continue
		}

		if res.OK {
			if err := lifecycle.Validate(c.Status, lifecycle.StatusPublished); err != nil {
				slog.Error("publish result for item in unexpected state", "item", c.ID, "error", err)
				continue
			}
			c.Status = lifecycle.StatusPublished
			t := now
			c.PublishedAt = &t
			if res.PublishedURL != "" {
				u := res.PublishedURL
				c.PublishedURL = &u
			}
			c.ClearError()
			published++
			continue
		}

		if err := lifecycle.Validate(c.Status, lifecycle.StatusFailed); err != nil {
			slog.Error("publish failure for item in unexpected state", "item", c.ID, "error", err)
			continue
		}
		c.Status = lifecycle.StatusFailed
		msg := res.Error
		if msg == "" {
			msg = "Publish failed with no error detail"
		}
		c.SetError(msg)
		failed++
	}
	return published, failed, missing
}
