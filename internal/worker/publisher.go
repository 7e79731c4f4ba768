// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package worker runs the due publisher: a ticker loop that picks up
// SCHEDULED items whose time has passed and pushes them through the
// publish webhook without waiting for a manual queue step.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"postforge/internal/bridge"
	"postforge/internal/lifecycle"
	"postforge/internal/models"
	"postforge/internal/store"
)

// retryLimit caps webhook attempts per item. Once reached the item parks
// in FAILED until someone retries it by hand.
const retryLimit = 3

// Publisher is the background due-publishing loop.
type Publisher struct {
	items    *store.ContentItemStore
	bridge   *bridge.Client
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

func NewPublisher(items *store.ContentItemStore, bc *bridge.Client, logger *slog.Logger, interval time.Duration, batch int) *Publisher {
	if batch <= 0 {
		batch = 20
	}
	return &Publisher{
		items:    items,
		bridge:   bc,
		logger:   logger,
		interval: interval,
		batch:    batch,
	}
}

// Run blocks until ctx is done. An interval of zero disables the loop.
func (p *Publisher) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.logger.Info("due publisher disabled")
		return
	}
	if !p.bridge.Configured() {
		p.logger.Warn("due publisher disabled, publish webhook not configured")
		return
	}

	p.logger.Info("due publisher started", "interval", p.interval.String(), "batch", p.batch)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("due publisher stopped")
			return
		case <-ticker.C:
			p.tick(ctx, time.Now().UTC())
		}
	}
}

// tick publishes one batch of due items. Split out for tests.
func (p *Publisher) tick(ctx context.Context, now time.Time) {
	due, err := p.items.ListDue(now, p.batch)
	if err != nil {
		p.logger.Error("due publisher list failed", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	sendable := p.partition(due)
	if len(sendable) == 0 {
		return
	}

	wire := make([]bridge.Item, 0, len(sendable))
	for _, c := range sendable {
		wire = append(wire, bridge.BuildItem(c))
	}

	resp, err := p.bridge.PublishBatch(ctx, wire)
	if err != nil {
		var te *bridge.TransportError
		if errors.As(err, &te) {
			// Nothing was published; leave every item untouched for the
			// next tick.
			p.logger.Error("publish webhook unreachable", "error", err, "items", len(sendable))
			return
		}
		p.logger.Error("due publisher publish failed", "error", err)
		return
	}

	p.reconcile(sendable, resp, now)
}

// partition weeds out items that cannot be sent. Items missing their
// payload or out of retries are marked FAILED in place; the remainder is
// returned for the webhook call.
func (p *Publisher) partition(due []*models.ContentItem) []*models.ContentItem {
	var sendable []*models.ContentItem
	var failed []*models.ContentItem

	for _, c := range due {
		if c.AttemptCount >= retryLimit {
			c.Status = lifecycle.StatusFailed
			c.SetError("Retry limit reached")
			failed = append(failed, c)
			continue
		}
		if reason := bridge.Eligible(c); reason != "" {
			c.Status = lifecycle.StatusFailed
			c.SetError(reason)
			failed = append(failed, c)
			continue
		}
		sendable = append(sendable, c)
	}

	if len(failed) > 0 {
		if err := p.items.UpdateAll(failed); err != nil {
			p.logger.Error("due publisher failed-item save failed", "error", err)
		} else {
			p.logger.Warn("due items failed preflight", "count", len(failed))
		}
	}
	return sendable
}

// reconcile maps webhook results back onto the sent items. Every sent item
// counts an attempt; items the webhook did not answer for are failed with
// an explicit marker since their fate is unknown.
func (p *Publisher) reconcile(sent []*models.ContentItem, resp *bridge.Response, now time.Time) {
	byID := resp.ResultsByID()
	published, failed := 0, 0

	for _, c := range sent {
		c.AttemptCount++

		res, ok := byID[c.ID.String()]
		switch {
		case ok && res.OK:
			c.Status = lifecycle.StatusPublished
			t := now
			c.PublishedAt = &t
			if res.PublishedURL != "" {
				u := res.PublishedURL
				c.PublishedURL = &u
			}
			c.ClearError()
			published++
		case ok:
			c.Status = lifecycle.StatusFailed
			msg := res.Error
			if msg == "" {
				msg = "Publish failed with no error detail"
			}
			c.SetError(msg)
			failed++
		default:
			c.Status = lifecycle.StatusFailed
			c.SetError("No result returned by publish endpoint (missing_in_response)")
			failed++
		}
	}

	if err := p.items.UpdateAll(sent); err != nil {
		p.logger.Error("due publisher reconcile save failed", "error", err)
		return
	}
	p.logger.Info("due publisher batch done", "published", published, "failed", failed)
}
