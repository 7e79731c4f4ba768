package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postforge/internal/bridge"
	"postforge/internal/lifecycle"
	"postforge/internal/store"
)

type publishSummary struct {
	Published int           `json:"published"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Items     []SkippedItem `json:"skipped_items"`
	Missing   []string      `json:"missing_in_response"`
}

func TestPublishReconciliation(t *testing.T) {
	db := testDB(t)

	items := seedItems(t, db,
		lifecycle.StatusQueued, lifecycle.StatusQueued, lifecycle.StatusQueued)
	body := "ready to ship"
	for _, c := range items {
		c.BodyText = &body
	}
	if err := store.NewContentItemStore(db).UpdateAll(items); err != nil {
		t.Fatalf("UpdateAll: %v", err)
	}

	// The webhook answers for two of the three sent items.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(bridge.Response{Results: []bridge.Result{
			{ContentItemID: items[0].ID.String(), OK: true, PublishedURL: "https://linkedin.com/posts/1"},
			{ContentItemID: items[1].ID.String(), OK: false, Error: "account token expired"},
		}})
	}))
	t.Cleanup(srv.Close)

	a := testAPI(t, db, func(d *Deps) {
		d.Bridge = bridge.NewClient(srv.URL, "test-key", 5*time.Second)
	})

	rec := postJSON(t, a.Publish, map[string]any{"content_item_ids": idsOf(items...)})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var got publishSummary
	decodeBody(t, rec, &got)
	if got.Published != 1 || got.Failed != 1 {
		t.Fatalf("published = %d failed = %d, want 1/1", got.Published, got.Failed)
	}
	if len(got.Missing) != 1 || got.Missing[0] != items[2].ID.String() {
		t.Fatalf("missing_in_response = %v, want the unanswered item", got.Missing)
	}

	ok := reload(t, db, items[0].ID)
	if ok.Status != lifecycle.StatusPublished {
		t.Errorf("item 0 status = %s, want PUBLISHED", ok.Status)
	}
	if ok.PublishedURL == nil || *ok.PublishedURL != "https://linkedin.com/posts/1" {
		t.Errorf("item 0 published_url = %v", ok.PublishedURL)
	}
	if ok.PublishedAt == nil {
		t.Error("item 0 published_at not set")
	}

	bad := reload(t, db, items[1].ID)
	if bad.Status != lifecycle.StatusFailed {
		t.Errorf("item 1 status = %s, want FAILED", bad.Status)
	}
	if bad.LastError == nil || *bad.LastError != "account token expired" {
		t.Errorf("item 1 last_error = %v", bad.LastError)
	}

	// The unanswered item keeps its state: its outcome is unknown.
	unknown := reload(t, db, items[2].ID)
	if unknown.Status != lifecycle.StatusQueued {
		t.Errorf("item 2 status = %s, want QUEUED unchanged", unknown.Status)
	}

	// Every sent item counts an attempt, answered or not.
	for i, c := range items {
		if got := reload(t, db, c.ID).AttemptCount; got != 1 {
			t.Errorf("item %d attempt_count = %d, want 1", i, got)
		}
	}
}

func TestPublishTransportErrorMutatesNothing(t *testing.T) {
	db := testDB(t)

	items := seedItems(t, db, lifecycle.StatusQueued)
	body := "ready to ship"
	items[0].BodyText = &body
	if err := store.NewContentItemStore(db).Update(items[0]); err != nil {
		t.Fatalf("Update: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "automation down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	a := testAPI(t, db, func(d *Deps) {
		d.Bridge = bridge.NewClient(srv.URL, "test-key", 5*time.Second)
	})

	rec := postJSON(t, a.Publish, map[string]any{"content_item_ids": idsOf(items...)})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", rec.Code, rec.Body.String())
	}

	c := reload(t, db, items[0].ID)
	if c.Status != lifecycle.StatusQueued {
		t.Errorf("status = %s, want QUEUED unchanged", c.Status)
	}
	if c.AttemptCount != 0 {
		t.Errorf("attempt_count = %d, want 0", c.AttemptCount)
	}
}

func TestPublishSkipsIneligible(t *testing.T) {
	db := testDB(t)

	// One APPROVED (wrong state), one QUEUED with no body (payload check).
	items := seedItems(t, db, lifecycle.StatusApproved, lifecycle.StatusQueued)

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		json.NewEncoder(w).Encode(bridge.Response{})
	}))
	t.Cleanup(srv.Close)

	a := testAPI(t, db, func(d *Deps) {
		d.Bridge = bridge.NewClient(srv.URL, "test-key", 5*time.Second)
	})

	rec := postJSON(t, a.Publish, map[string]any{"content_item_ids": idsOf(items...)})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var got publishSummary
	decodeBody(t, rec, &got)
	if got.Published != 0 || got.Failed != 0 || got.Skipped != 2 {
		t.Fatalf("summary = %+v, want two skips and no sends", got)
	}
	if called {
		t.Error("webhook was called with nothing sendable")
	}

	for i, c := range items {
		if st := reload(t, db, c.ID).Status; st != c.Status {
			t.Errorf("item %d status changed to %s", i, st)
		}
	}
}
