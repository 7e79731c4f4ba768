// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import "net/http"

// statsOverview is the cached dashboard payload.
type statsOverview struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPlatform map[string]int `json:"by_platform"`
	ByBrand    map[string]int `json:"by_brand"`
}

// StatsOverview serves the dashboard counters, short-lived cached in Valkey
// so a polling dashboard does not hammer the aggregate queries.
func (a *API) StatsOverview(w http.ResponseWriter, r *http.Request) {
	if a.stats != nil {
		var cached statsOverview
		if a.stats.Get(r.Context(), &cached) {
			respond(w, http.StatusOK, cached)
			return
		}
	}

	byStatus, err := a.items.StatusCounts()
	if err != nil {
		respondErr(w, err)
		return
	}
	byPlatform, err := a.items.PlatformCounts()
	if err != nil {
		respondErr(w, err)
		return
	}
	byBrand, err := a.items.BrandCounts()
	if err != nil {
		respondErr(w, err)
		return
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	overview := statsOverview{
		Total:      total,
		ByStatus:   byStatus,
		ByPlatform: byPlatform,
		ByBrand:    byBrand,
	}
	if a.stats != nil {
		a.stats.Set(r.Context(), overview)
	}
	respond(w, http.StatusOK, overview)
}
