package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"postforge/internal/lifecycle"
	"postforge/internal/models"
)

func TestContentItemCreateBatchAndFind(t *testing.T) {
	db := testDB(t)
	s := NewContentItemStore(db)

	topicID := uuid.New()
	t.Cleanup(func() { cleanTopic(t, db, topicID) })

	title := "launch announcement"
	mediaType := "image"
	items := []*models.ContentItem{
		{TopicID: topicID, BrandID: "neuroflow-ai", Platform: "facebook",
			ContentType: models.ContentTypeText, Status: lifecycle.StatusTopicIngested, Title: &title},
		{TopicID: topicID, BrandID: "neuroflow-ai", Platform: "instagram",
			ContentType: models.ContentTypeImage, Status: lifecycle.StatusTopicIngested,
			Title: &title, MediaType: &mediaType},
	}

	if err := s.CreateBatch(items); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	for _, it := range items {
		if it.ID == uuid.Nil {
			t.Fatal("expected generated ID")
		}
	}

	found, err := s.FindByIDs([]uuid.UUID{items[0].ID, items[1].ID, uuid.New()})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("found %d items, want 2 (unknown IDs are silently absent)", len(found))
	}

	one, err := s.FindByID(items[1].ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if one == nil || one.ContentType != models.ContentTypeImage {
		t.Fatalf("unexpected item: %+v", one)
	}
	if one.MediaType == nil || *one.MediaType != "image" {
		t.Error("media_type not persisted for image item")
	}
	if one.Status != lifecycle.StatusTopicIngested {
		t.Errorf("status: got %s", one.Status)
	}
}

func TestContentItemUpdateAllIsTransactional(t *testing.T) {
	db := testDB(t)
	s := NewContentItemStore(db)

	items := seedItems(t, db, lifecycle.StatusPendingApproval, lifecycle.StatusPendingApproval)

	for _, it := range items {
		it.Status = lifecycle.StatusApproved
		it.ClearError()
	}
	if err := s.UpdateAll(items); err != nil {
		t.Fatalf("UpdateAll: %v", err)
	}

	for _, it := range items {
		got, err := s.FindByID(it.ID)
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if got.Status != lifecycle.StatusApproved {
			t.Errorf("status: got %s, want APPROVED", got.Status)
		}
		if !got.UpdatedAt.After(got.CreatedAt) {
			t.Error("updated_at not refreshed")
		}
	}
}

func TestContentItemListByStatusFilters(t *testing.T) {
	db := testDB(t)
	s := NewContentItemStore(db)

	seedItems(t, db, lifecycle.StatusApproved, lifecycle.StatusApproved, lifecycle.StatusRejected)

	approved, err := s.ListByStatus(lifecycle.StatusApproved, Filter{
		BrandID: "neuroflow-ai", Platform: "linkedin", ContentType: models.ContentTypeText,
	})
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(approved) < 2 {
		t.Fatalf("got %d approved items, want >= 2", len(approved))
	}
	for _, it := range approved {
		if it.Status != lifecycle.StatusApproved {
			t.Errorf("filter leak: %s", it.Status)
		}
	}

	none, err := s.ListByStatus(lifecycle.StatusApproved, Filter{Platform: "no-such-platform"})
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected empty result for unknown platform, got %d", len(none))
	}
}

func TestContentItemListDue(t *testing.T) {
	db := testDB(t)
	s := NewContentItemStore(db)

	items := seedItems(t, db, lifecycle.StatusScheduled, lifecycle.StatusScheduled)

	past := time.Now().Add(-1 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	items[0].ScheduledAt = &past
	items[1].ScheduledAt = &future
	if err := s.UpdateAll(items); err != nil {
		t.Fatalf("UpdateAll: %v", err)
	}

	due, err := s.ListDue(time.Now(), 50)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}

	var foundPast, foundFuture bool
	for _, it := range due {
		if it.ID == items[0].ID {
			foundPast = true
		}
		if it.ID == items[1].ID {
			foundFuture = true
		}
	}
	if !foundPast {
		t.Error("past-due item missing from ListDue")
	}
	if foundFuture {
		t.Error("future item returned by ListDue")
	}
}

func TestContentItemListForGeneration(t *testing.T) {
	db := testDB(t)
	s := NewContentItemStore(db)

	items := seedItems(t, db, lifecycle.StatusTopicIngested, lifecycle.StatusRejected)

	// Mode "rejected" picks only the rejected item.
	rejected, err := s.ListForGeneration(nil, lifecycle.StatusRejected, Filter{BrandID: "neuroflow-ai"})
	if err != nil {
		t.Fatalf("ListForGeneration: %v", err)
	}
	var hit bool
	for _, it := range rejected {
		if it.Status != lifecycle.StatusRejected {
			t.Errorf("mode filter leak: %s", it.Status)
		}
		if it.ID == items[1].ID {
			hit = true
		}
	}
	if !hit {
		t.Error("rejected item missing from rejected-mode selection")
	}

	// Explicit IDs override the status filter.
	byID, err := s.ListForGeneration([]uuid.UUID{items[0].ID}, lifecycle.StatusRejected, Filter{})
	if err != nil {
		t.Fatalf("ListForGeneration by id: %v", err)
	}
	if len(byID) != 1 || byID[0].ID != items[0].ID {
		t.Fatalf("explicit id selection failed: %+v", byID)
	}
}

func TestStatusCounts(t *testing.T) {
	db := testDB(t)
	s := NewContentItemStore(db)

	seedItems(t, db, lifecycle.StatusFailed, lifecycle.StatusFailed)

	counts, err := s.StatusCounts()
	if err != nil {
		t.Fatalf("StatusCounts: %v", err)
	}
	if counts["FAILED"] < 2 {
		t.Errorf("FAILED count: got %d, want >= 2", counts["FAILED"])
	}
}
