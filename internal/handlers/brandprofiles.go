// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"postforge/internal/models"
	"postforge/internal/scrape"
)

// ProfileStart kicks off the asynchronous scrape-and-profile job for a
// brand. One job per brand at a time.
func (a *API) ProfileStart(w http.ResponseWriter, r *http.Request) {
	brandID := chi.URLParam(r, "brandID")

	var req struct {
		WebsiteURL string `json:"website_url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	site, err := scrape.NormalizeURL(strings.TrimSpace(req.WebsiteURL))
	if err != nil {
		respondErr(w, &ValidationError{Msg: "A valid website_url is required"})
		return
	}

	if _, err := a.profiles.GetOrCreate(brandID); err != nil {
		respondErr(w, err)
		return
	}

	if err := a.profiler.Start(brandID, site.String()); err != nil {
		respond(w, http.StatusConflict, map[string]string{"error": "A profile job is already running for this brand"})
		return
	}

	respond(w, http.StatusAccepted, map[string]any{
		"brand_id": brandID,
		"status":   string(models.ProfileStatusScraping),
	})
}

// ProfileGet returns the stored profile plus the live job flag.
func (a *API) ProfileGet(w http.ResponseWriter, r *http.Request) {
	brandID := chi.URLParam(r, "brandID")

	bp, err := a.profiles.Find(brandID)
	if err != nil {
		respondErr(w, err)
		return
	}
	if bp == nil {
		respondErr(w, &NotFoundError{Msg: "No profile for this brand yet"})
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"profile": bp,
		"running": a.profiler.Running(brandID),
	})
}

// ProfilePatch updates the manual override notes that are folded into the
// generation context alongside the scraped profile.
func (a *API) ProfilePatch(w http.ResponseWriter, r *http.Request) {
	brandID := chi.URLParam(r, "brandID")

	var req struct {
		NotesManualOverride *string `json:"notes_manual_override"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	bp, err := a.profiles.GetOrCreate(brandID)
	if err != nil {
		respondErr(w, err)
		return
	}

	if req.NotesManualOverride != nil {
		notes := strings.TrimSpace(*req.NotesManualOverride)
		if notes == "" {
			bp.NotesManualOverride = nil
		} else {
			bp.NotesManualOverride = &notes
		}
	}

	if err := a.profiles.Update(bp); err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"profile": bp})
}

// ProfileCancel stops a running profile job. Cancelling a brand with no
// running job is a no-op.
func (a *API) ProfileCancel(w http.ResponseWriter, r *http.Request) {
	brandID := chi.URLParam(r, "brandID")

	cancelled := a.profiler.Cancel(brandID)
	respond(w, http.StatusOK, map[string]any{
		"brand_id":  brandID,
		"cancelled": cancelled,
	})
}
