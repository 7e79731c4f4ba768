// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"postforge/internal/database"
	"postforge/internal/lifecycle"
	"postforge/internal/models"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDSN returns the PostgreSQL connection string for testing.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "postforge")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "postforge")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testDB opens a connection to the test database and runs migrations + seed.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	if err := database.Seed(db); err != nil {
		db.Close()
		t.Fatalf("failed to seed: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanTopic removes all content items and the topic row for a topic ID.
// Call in t.Cleanup().
func cleanTopic(t *testing.T, db *sql.DB, topicID uuid.UUID) {
	t.Helper()
	db.Exec("DELETE FROM content_items WHERE topic_id = $1", topicID)
	db.Exec("DELETE FROM topics WHERE id = $1", topicID)
}

// seedItems creates one text item per status given, all under one topic,
// and returns them. The topic is cleaned up automatically.
func seedItems(t *testing.T, db *sql.DB, statuses ...lifecycle.Status) []*models.ContentItem {
	t.Helper()

	s := NewContentItemStore(db)
	topicID := uuid.New()
	t.Cleanup(func() { cleanTopic(t, db, topicID) })

	title := "store test topic"
	var items []*models.ContentItem
	for range statuses {
		items = append(items, &models.ContentItem{
			TopicID:     topicID,
			BrandID:     "neuroflow-ai",
			Platform:    "linkedin",
			ContentType: models.ContentTypeText,
			Status:      lifecycle.StatusTopicIngested,
			Title:       &title,
		})
	}
	if err := s.CreateBatch(items); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	// Force the requested statuses directly; tests need arbitrary states
	// without replaying the whole lifecycle.
	for i, st := range statuses {
		items[i].Status = st
		if err := s.Update(items[i]); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	return items
}
