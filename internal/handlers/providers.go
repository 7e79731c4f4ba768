// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import "net/http"

// ProvidersList reports the configured AI providers and which one is active.
func (a *API) ProvidersList(w http.ResponseWriter, r *http.Request) {
	available := a.registry.Available()
	if available == nil {
		available = []string{}
	}
	respond(w, http.StatusOK, map[string]any{
		"active":    a.registry.ActiveName(),
		"available": available,
	})
}

// ProvidersActivate switches the active AI provider at runtime.
func (a *API) ProvidersActivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, err)
		return
	}

	if err := a.registry.SetActive(req.Name); err != nil {
		respondErr(w, &ValidationError{Msg: err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"active": a.registry.ActiveName()})
}
