// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"postforge/internal/models"
)

// ExportSchedule streams the SCHEDULED queue as CSV, oldest first. The
// window is optional: ?from=2026-03-01&to=2026-03-31 (dates or RFC3339).
func (a *API) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	f := listFilter(r)

	from, err := parseDateParam(r.URL.Query().Get("from"))
	if err != nil {
		respondErr(w, err)
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"))
	if err != nil {
		respondErr(w, err)
		return
	}

	items, err := a.items.ListScheduledRange(f, from, to)
	if err != nil {
		respondErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="schedule-%s.csv"`, time.Now().UTC().Format("2006-01-02")))

	cw := csv.NewWriter(w)
	cw.Write([]string{"text", "scheduled_at", "platform", "internal_id"})
	for _, c := range items {
		scheduledAt := ""
		if c.ScheduledAt != nil {
			scheduledAt = c.ScheduledAt.UTC().Format(time.RFC3339)
		}
		cw.Write([]string{exportText(c), scheduledAt, c.Platform, c.ID.String()})
	}
	cw.Flush()
}

// exportText picks the text a human scheduler cares about: the caption for
// media items, the post body otherwise, the topic title as a last resort.
func exportText(c *models.ContentItem) string {
	if c.IsMedia() && c.MediaCaption != nil && *c.MediaCaption != "" {
		return *c.MediaCaption
	}
	if c.BodyText != nil && *c.BodyText != "" {
		return *c.BodyText
	}
	if c.Title != nil {
		return *c.Title
	}
	return ""
}

// parseDateParam accepts a bare date or a full RFC3339 timestamp; empty
// means no bound.
func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &ValidationError{Msg: fmt.Sprintf("Invalid date %q, use YYYY-MM-DD or RFC3339", raw)}
}
