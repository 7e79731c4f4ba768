package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"postforge/internal/lifecycle"
	"postforge/internal/store"
)

// getItem runs a single-item handler through a chi route so {id} resolves.
func getItem(t *testing.T, a *API, method, id string, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.MethodFunc(method, "/api/content/{id}", h)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, "/api/content/"+id, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestContentUpdateLockedAfterApproval(t *testing.T) {
	db := testDB(t)
	a := testAPI(t, db, nil)

	items := seedItems(t, db, lifecycle.StatusPendingApproval, lifecycle.StatusApproved)

	rec := getItem(t, a, http.MethodPatch, items[0].ID.String(), a.ContentUpdate,
		map[string]any{"body_text": "edited before approval"})
	if rec.Code != http.StatusOK {
		t.Fatalf("editable item: status = %d: %s", rec.Code, rec.Body.String())
	}
	c := reload(t, db, items[0].ID)
	if c.BodyText == nil || *c.BodyText != "edited before approval" {
		t.Errorf("body_text = %v", c.BodyText)
	}

	rec = getItem(t, a, http.MethodPatch, items[1].ID.String(), a.ContentUpdate,
		map[string]any{"body_text": "too late"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("approved item: status = %d, want 400", rec.Code)
	}
	if got := reload(t, db, items[1].ID).BodyText; got != nil {
		t.Errorf("approved item body_text = %q, want untouched", *got)
	}
}

func TestContentGetUnknown(t *testing.T) {
	db := testDB(t)
	a := testAPI(t, db, nil)

	rec := getItem(t, a, http.MethodGet, "9f3cc1fa-0b0a-4f6e-aaaa-000000000000", a.ContentGet, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = getItem(t, a, http.MethodGet, "garbage", a.ContentGet, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestContentListByStatus(t *testing.T) {
	db := testDB(t)
	a := testAPI(t, db, nil)

	seedItems(t, db, lifecycle.StatusDraftReady)

	req := httptest.NewRequest(http.MethodGet, "/api/content?status=DRAFT_READY", nil)
	rec := httptest.NewRecorder()
	a.ContentList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Count int               `json:"count"`
		Items []json.RawMessage `json:"items"`
	}
	decodeBody(t, rec, &got)
	if got.Count < 1 {
		t.Errorf("count = %d, want at least the seeded item", got.Count)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/content?status=NOT_A_STATE", nil)
	rec = httptest.NewRecorder()
	a.ContentList(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status: code = %d, want 400", rec.Code)
	}
}

func TestExportScheduleCSV(t *testing.T) {
	db := testDB(t)
	a := testAPI(t, db, nil)

	items := seedItems(t, db, lifecycle.StatusScheduled)
	body := "post body, with a comma"
	when := time.Date(2026, 9, 20, 8, 0, 0, 0, time.UTC)
	items[0].BodyText = &body
	items[0].ScheduledAt = &when
	if err := store.NewContentItemStore(db).Update(items[0]); err != nil {
		t.Fatalf("Update: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/export/schedule?from=2026-09-20&to=2026-09-21", nil)
	rec := httptest.NewRecorder()
	a.ExportSchedule(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("rows = %d, want header plus data", len(rows))
	}
	if want := []string{"text", "scheduled_at", "platform", "internal_id"}; !equalRow(rows[0], want) {
		t.Errorf("header = %v, want %v", rows[0], want)
	}

	found := false
	for _, row := range rows[1:] {
		if row[3] == items[0].ID.String() {
			found = true
			if row[0] != body {
				t.Errorf("text = %q, want the body with its comma intact", row[0])
			}
			if row[1] != "2026-09-20T08:00:00Z" {
				t.Errorf("scheduled_at = %q", row[1])
			}
			if row[2] != "linkedin" {
				t.Errorf("platform = %q", row[2])
			}
		}
	}
	if !found {
		t.Error("seeded item missing from export")
	}
}

func TestExportScheduleBadDate(t *testing.T) {
	db := testDB(t)
	a := testAPI(t, db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/export/schedule?from=next-tuesday", nil)
	rec := httptest.NewRecorder()
	a.ExportSchedule(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func equalRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
