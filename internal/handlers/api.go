// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP JSON handlers for the PostForge API.
// Handlers are grouped by concern (topics, content, bulk transitions,
// generation, publishing, profiles, auth) and receive their dependencies
// through the API struct.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"postforge/internal/ai"
	"postforge/internal/bridge"
	"postforge/internal/cache"
	"postforge/internal/jobs"
	"postforge/internal/mediagen"
	"postforge/internal/models"
	"postforge/internal/session"
	"postforge/internal/storage"
	"postforge/internal/store"
)

// API groups all HTTP handlers and their dependencies.
type API struct {
	sessions     *session.Store
	items        *store.ContentItemStore
	topics       *store.TopicStore
	platforms    *store.PlatformStore
	brands       *store.BrandStore
	profiles     *store.BrandProfileStore
	users        *store.UserStore
	generator    *ai.Generator
	registry     *ai.Registry
	bridge       *bridge.Client
	media        *mediagen.Client
	storage      *storage.Client
	profiler     *jobs.Profiler
	stats        *cache.StatsCache
	defaultBrand string
}

// Deps carries the constructor arguments for NewAPI; the list got long
// enough that positional parameters stopped being readable.
type Deps struct {
	Sessions     *session.Store
	Items        *store.ContentItemStore
	Topics       *store.TopicStore
	Platforms    *store.PlatformStore
	Brands       *store.BrandStore
	Profiles     *store.BrandProfileStore
	Users        *store.UserStore
	Generator    *ai.Generator
	Registry     *ai.Registry
	Bridge       *bridge.Client
	Media        *mediagen.Client
	Storage      *storage.Client // may be nil if S3 is not configured
	Profiler     *jobs.Profiler
	Stats        *cache.StatsCache
	DefaultBrand string
}

// NewAPI creates the handler group.
func NewAPI(d Deps) *API {
	return &API{
		sessions:     d.Sessions,
		items:        d.Items,
		topics:       d.Topics,
		platforms:    d.Platforms,
		brands:       d.Brands,
		profiles:     d.Profiles,
		users:        d.Users,
		generator:    d.Generator,
		registry:     d.Registry,
		bridge:       d.Bridge,
		media:        d.Media,
		storage:      d.Storage,
		profiler:     d.Profiler,
		stats:        d.Stats,
		defaultBrand: d.DefaultBrand,
	}
}

// --- Error taxonomy ---

// errStorageUnconfigured is returned when the media webhook delivers raw
// bytes but no object storage backend is wired.
var errStorageUnconfigured = errors.New("object storage is not configured")

// ValidationError rejects a malformed request before any item is touched.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError means the request named no existing items.
type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

// ExternalServiceError wraps an upstream failure that aborted the request
// before any mutation.
type ExternalServiceError struct{ Err error }

func (e *ExternalServiceError) Error() string { return e.Err.Error() }
func (e *ExternalServiceError) Unwrap() error { return e.Err }

// --- Response helpers ---

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondErr maps the error taxonomy onto HTTP status codes. Anything not
// classified is a 500.
func respondErr(w http.ResponseWriter, err error) {
	var ve *ValidationError
	var nfe *NotFoundError
	var ese *ExternalServiceError

	switch {
	case errors.As(err, &ve):
		respond(w, http.StatusBadRequest, map[string]string{"error": ve.Msg})
	case errors.As(err, &nfe):
		respond(w, http.StatusNotFound, map[string]string{"error": nfe.Msg})
	case errors.As(err, &ese):
		respond(w, http.StatusBadGateway, map[string]string{"error": ese.Error()})
	default:
		respond(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// --- Bulk request plumbing ---

// SkippedItem reports why one item in a bulk request was not acted upon.
type SkippedItem struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// decodeJSON decodes the request body into dst, surfacing malformed JSON
// as a ValidationError.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ValidationError{Msg: "Invalid JSON body: " + err.Error()}
	}
	return nil
}

// parseIDs validates and parses a content_item_ids list. Empty lists and
// unparseable UUIDs reject the whole request.
func parseIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, &ValidationError{Msg: "content_item_ids must be a non-empty list"}
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, &ValidationError{Msg: "Invalid content item id: " + s}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// loadItems resolves ids to stored items, failing with NotFoundError when
// nothing matches.
func (a *API) loadItems(ids []uuid.UUID) ([]*models.ContentItem, error) {
	items, err := a.items.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &NotFoundError{Msg: "No content items found for the given ids"}
	}
	return items, nil
}

// invalidateStats drops the cached dashboard snapshot after any bulk
// mutation so counts stay fresh.
func (a *API) invalidateStats(r *http.Request) {
	if a.stats != nil {
		a.stats.Invalidate(r.Context())
	}
}
