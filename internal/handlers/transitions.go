// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// transitions.go implements the bulk lifecycle endpoints. Each handler
// loads the requested items, applies its precondition plus the transition
// table, mutates the survivors in memory, and flushes them with one
// batched commit. Items that fail a check are skipped with a reason, never
// aborting the rest — except bulk schedule, which is all-or-nothing.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"postforge/internal/lifecycle"
	"postforge/internal/models"
)

type bulkRequest struct {
	ContentItemIDs []string `json:"content_item_ids"`
	Reason         *string  `json:"reason"`        // reject only
	ScheduledAt    string   `json:"scheduled_at"`  // bulk schedule only
	PublishedURL   *string  `json:"published_url"` // mark published only
}

// transitionOp describes one bulk operation: the states it accepts, the
// state it moves to, the skip message for everything else, and the
// per-item side effects.
type transitionOp struct {
	verb    string
	allowed []lifecycle.Status
	target  lifecycle.Status
	reason  string
	apply   func(c *models.ContentItem, req *bulkRequest)
}

func statusAllowed(s lifecycle.Status, allowed []lifecycle.Status) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// runBulk is the shared engine behind approve, reject, mark-queued,
// mark-published, undo-queued and retry-failed.
func (a *API) runBulk(w http.ResponseWriter, r *http.Request, op transitionOp) {
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

	var acted []*models.ContentItem
	var skipped []SkippedItem

	for _, c := range items {
		if !statusAllowed(c.Status, op.allowed) {
			skipped = append(skipped, SkippedItem{ID: c.ID.String(), Status: string(c.Status), Reason: op.reason})
			continue
		}
		if err := lifecycle.Validate(c.Status, op.target); err != nil {
			skipped = append(skipped, SkippedItem{ID: c.ID.String(), Status: string(c.Status), Reason: err.Error()})
			continue
		}
		c.Status = op.target
		if op.apply != nil {
			op.apply(c, &req)
		}
		acted = append(acted, c)
	}

	if len(acted) > 0 {
		if err := a.items.UpdateAll(acted); err != nil {
			slog.Error("bulk transition commit failed", "op", op.verb, "error", err)
			respondErr(w, err)
			return
		}
		a.invalidateStats(r)
	}

	if skipped == nil {
		skipped = []SkippedItem{}
	}
	respond(w, http.StatusOK, map[string]any{
		op.verb:         len(acted),
		"skipped":       len(skipped),
		"skipped_items": skipped,
	})
}

// Approve moves PENDING_APPROVAL or DRAFT_READY items to APPROVED.
func (a *API) Approve(w http.ResponseWriter, r *http.Request) {
	a.runBulk(w, r, transitionOp{
		verb:    "approved",
		allowed: []lifecycle.Status{lifecycle.StatusPendingApproval, lifecycle.StatusDraftReady},
		target:  lifecycle.StatusApproved,
		reason:  "Item must be PENDING_APPROVAL or DRAFT_READY first",
		apply: func(c *models.ContentItem, _ *bulkRequest) {
			c.ClearError()
		},
	})
}

// Reject moves PENDING_APPROVAL or DRAFT_READY items to REJECTED, storing
// the supplied reason as last_error so regeneration can see it.
func (a *API) Reject(w http.ResponseWriter, r *http.Request) {
	a.runBulk(w, r, transitionOp{
		verb:    "rejected",
		allowed: []lifecycle.Status{lifecycle.StatusPendingApproval, lifecycle.StatusDraftReady},
		target:  lifecycle.StatusRejected,
		reason:  "Item must be PENDING_APPROVAL or DRAFT_READY first",
		apply: func(c *models.ContentItem, req *bulkRequest) {
			c.LastError = req.Reason
		},
	})
}

// MarkQueued moves SCHEDULED items to QUEUED.
func (a *API) MarkQueued(w http.ResponseWriter, r *http.Request) {
	a.runBulk(w, r, transitionOp{
		verb:    "queued",
		allowed: []lifecycle.Status{lifecycle.StatusScheduled},
		target:  lifecycle.StatusQueued,
		reason:  "Only SCHEDULED items can be queued",
	})
}

// MarkPublished moves QUEUED items to PUBLISHED. Already-published items
// are reported as skips, not errors, so the call is safely repeatable.
func (a *API) MarkPublished(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	a.runBulk(w, r, transitionOp{
		verb:    "published",
		allowed: []lifecycle.Status{lifecycle.StatusQueued},
		target:  lifecycle.StatusPublished,
		reason:  "Item is not QUEUED, only QUEUED items can be published",
		apply: func(c *models.ContentItem, req *bulkRequest) {
			t := now
			c.PublishedAt = &t
			if req.PublishedURL != nil && *req.PublishedURL != "" {
				c.PublishedURL = req.PublishedURL
			}
			c.ClearError()
		},
	})
}

// UndoQueued reverts QUEUED items back to SCHEDULED, keeping their slot.
func (a *API) UndoQueued(w http.ResponseWriter, r *http.Request) {
	a.runBulk(w, r, transitionOp{
		verb:    "reverted",
		allowed: []lifecycle.Status{lifecycle.StatusQueued},
		target:  lifecycle.StatusScheduled,
		reason:  "Only QUEUED items can be reverted",
	})
}

// RetryFailed resets FAILED items to SCHEDULED for another attempt.
func (a *API) RetryFailed(w http.ResponseWriter, r *http.Request) {
	a.runBulk(w, r, transitionOp{
		verb:    "retried",
		allowed: []lifecycle.Status{lifecycle.StatusFailed},
		target:  lifecycle.StatusScheduled,
		reason:  "Only FAILED items can be retried",
		apply: func(c *models.ContentItem, _ *bulkRequest) {
			c.ClearError()
			c.AttemptCount++
		},
	})
}

// BulkSchedule moves a batch of APPROVED items to SCHEDULED at one shared
// timestamp. Unlike the other bulk handlers it is all-or-nothing: if any
// item in the batch is not APPROVED, nothing is mutated and the whole
// request fails.
func (a *API) BulkSchedule(w http.ResponseWriter, r *http.Request) {
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

	when, err := parseScheduledAt(req.ScheduledAt)
	if err != nil {
		respondErr(w, err)
		return
	}

	items, err := a.loadItems(ids)
	if err != nil {
		respondErr(w, err)
		return
	}

	// Validate the entire batch before touching anything.
	for _, c := range items {
		if c.Status != lifecycle.StatusApproved {
			respondErr(w, &ValidationError{Msg: fmt.Sprintf(
				"Item %s is %s, all items must be APPROVED to schedule", c.ID, c.Status)})
			return
		}
		if err := lifecycle.Validate(c.Status, lifecycle.StatusScheduled); err != nil {
			respondErr(w, &ValidationError{Msg: err.Error()})
			return
		}
	}

	for _, c := range items {
		c.Status = lifecycle.StatusScheduled
		t := when
		c.ScheduledAt = &t
		c.ClearError()
	}

	if err := a.items.UpdateAll(items); err != nil {
		slog.Error("bulk schedule commit failed", "error", err)
		respondErr(w, err)
		return
	}
	a.invalidateStats(r)

	respond(w, http.StatusOK, map[string]any{
		"scheduled":     len(items),
		"scheduled_at":  when.Format(time.RFC3339),
		"skipped":       0,
		"skipped_items": []SkippedItem{},
	})
}

// parseScheduledAt accepts RFC 3339 timestamps, with or without the Z
// suffix; naive timestamps are taken as UTC.
func parseScheduledAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &ValidationError{Msg: "scheduled_at is required"}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &ValidationError{Msg: "scheduled_at must be an ISO 8601 timestamp"}
}
