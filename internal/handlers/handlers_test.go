// handlers_test.go provides the shared harness for handler integration
// tests: a migrated test database, an API wired to real stores, and JSON
// request helpers. Tests are skipped if PostgreSQL is not available.
package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"postforge/internal/database"
	"postforge/internal/lifecycle"
	"postforge/internal/models"
	"postforge/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "postforge")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "postforge")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testDB opens the test database, runs migrations and seed, and skips the
// test if the database is unavailable.
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

// testAPI builds an API over real stores. customize may adjust the Deps
// (e.g. swap in a bridge client pointed at a test webhook) before NewAPI.
func testAPI(t *testing.T, db *sql.DB, customize func(*Deps)) *API {
	t.Helper()

	d := Deps{
		Items:        store.NewContentItemStore(db),
		Topics:       store.NewTopicStore(db),
		Platforms:    store.NewPlatformStore(db),
		Brands:       store.NewBrandStore(db),
		Profiles:     store.NewBrandProfileStore(db),
		Users:        store.NewUserStore(db),
		DefaultBrand: "neuroflow-ai",
	}
	if customize != nil {
		customize(&d)
	}
	return NewAPI(d)
}

// seedItems creates one text item per status given, all under one topic,
// and returns them. The topic row is never created; content_items.topic_id
// carries no foreign key.
func seedItems(t *testing.T, db *sql.DB, statuses ...lifecycle.Status) []*models.ContentItem {
	t.Helper()

	s := store.NewContentItemStore(db)
	topicID := uuid.New()
	t.Cleanup(func() {
		db.Exec("DELETE FROM content_items WHERE topic_id = $1", topicID)
		db.Exec("DELETE FROM topics WHERE id = $1", topicID)
	})

	title := "handler test topic"
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

	for i, st := range statuses {
		items[i].Status = st
		if err := s.Update(items[i]); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	return items
}

// postJSON runs a handler against a JSON body and returns the recorder.
func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/test", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// decodeBody unmarshals the recorded JSON response.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// reload fetches an item's current row.
func reload(t *testing.T, db *sql.DB, id uuid.UUID) *models.ContentItem {
	t.Helper()
	c, err := store.NewContentItemStore(db).FindByID(id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if c == nil {
		t.Fatalf("item %s vanished", id)
	}
	return c
}

// idsOf collects string IDs for a bulk request body.
func idsOf(items ...*models.ContentItem) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.ID.String()
	}
	return out
}
