package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"postforge/internal/lifecycle"
	"postforge/internal/models"
)

func strPtr(s string) *string { return &s }

func textItem(body string) *models.ContentItem {
	return &models.ContentItem{
		ID:          uuid.New(),
		BrandID:     "neuroflow-ai",
		Platform:    "linkedin",
		ContentType: models.ContentTypeText,
		Status:      lifecycle.StatusQueued,
		BodyText:    strPtr(body),
	}
}

func TestPublishBatchSuccess(t *testing.T) {
	var gotKey string
	var gotPayload map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(Response{Results: []Result{
			{ContentItemID: "abc", OK: true, PublishedURL: "https://example.com/p/1"},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 5*time.Second)
	resp, err := c.PublishBatch(context.Background(), []Item{{ContentItemID: "abc", Text: "hi"}})
	if err != nil {
		t.Fatalf("PublishBatch: %v", err)
	}

	if gotKey != "secret" {
		t.Errorf("api key header: got %q", gotKey)
	}
	if _, ok := gotPayload["items"]; !ok {
		t.Error("payload missing items array")
	}
	if len(resp.Results) != 1 || !resp.Results[0].OK {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPublishBatchHTTPErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "scenario disabled", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	_, err := c.PublishBatch(context.Background(), []Item{{ContentItemID: "x"}})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("want TransportError, got %v", err)
	}
}

func TestPublishBatchUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "k", 200*time.Millisecond)
	_, err := c.PublishBatch(context.Background(), []Item{{ContentItemID: "x"}})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("want TransportError for unreachable host, got %v", err)
	}
}

func TestPublishBatchNotConfigured(t *testing.T) {
	c := NewClient("", "", time.Second)
	if c.Configured() {
		t.Fatal("empty client should not report configured")
	}
	var te *TransportError
	if _, err := c.PublishBatch(context.Background(), nil); !errors.As(err, &te) {
		t.Fatalf("want TransportError, got %v", err)
	}
}

func TestPublishBatchNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Accepted"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	var te *TransportError
	if _, err := c.PublishBatch(context.Background(), []Item{{}}); !errors.As(err, &te) {
		t.Fatalf("non-JSON body must be a TransportError (no receipt, no mutation), got %v", err)
	}
}

func TestEligible(t *testing.T) {
	if reason := Eligible(textItem("hello")); reason != "" {
		t.Errorf("text with body should be eligible, got %q", reason)
	}
	if reason := Eligible(textItem("   ")); reason == "" {
		t.Error("blank text must be ineligible")
	}

	img := textItem("caption")
	img.ContentType = models.ContentTypeImage
	if reason := Eligible(img); reason == "" {
		t.Error("image without media_url must be ineligible")
	}
	img.MediaURL = strPtr("https://cdn.example.com/a.png")
	if reason := Eligible(img); reason != "" {
		t.Errorf("image with media_url should be eligible, got %q", reason)
	}

	odd := textItem("x")
	odd.ContentType = "carousel"
	if reason := Eligible(odd); reason == "" {
		t.Error("unknown content type must be ineligible")
	}
}

func TestBuildItem(t *testing.T) {
	it := textItem("**bold** and *italic* and `code`")
	it.Hashtags = strPtr(" #a #b ")
	sched := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	it.ScheduledAt = &sched

	wire := BuildItem(it)

	if wire.Text != "bold and italic and code" {
		t.Errorf("markdown not stripped: %q", wire.Text)
	}
	if wire.Hashtags == nil || *wire.Hashtags != "#a #b" {
		t.Errorf("hashtags: %v", wire.Hashtags)
	}
	if wire.ScheduledAt == nil || *wire.ScheduledAt != "2026-03-01T09:00:00Z" {
		t.Errorf("scheduled_at: %v", wire.ScheduledAt)
	}
	if wire.ContentItemID != it.ID.String() {
		t.Error("id mismatch")
	}

	img := textItem("cap")
	img.ContentType = models.ContentTypeImage
	wire = BuildItem(img)
	if wire.MediaType == nil || *wire.MediaType != "image" {
		t.Errorf("media_type should default from content type: %v", wire.MediaType)
	}
}

func TestResultsByID(t *testing.T) {
	r := &Response{Results: []Result{
		{ContentItemID: "a", OK: true},
		{ContentItemID: " ", OK: true}, // blank ids are dropped
		{ContentItemID: "b", OK: false, Error: "denied"},
	}}

	byID := r.ResultsByID()
	if len(byID) != 2 {
		t.Fatalf("got %d results, want 2", len(byID))
	}
	if !byID["a"].OK || byID["b"].Error != "denied" {
		t.Errorf("index wrong: %+v", byID)
	}
}
