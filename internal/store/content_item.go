// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access for all persisted entities.
// Stores wrap a *sql.DB and expose typed query methods; they contain no
// business rules beyond what the schema itself enforces.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"postforge/internal/lifecycle"
	"postforge/internal/models"
)

// contentItemColumns is the canonical column list shared by every content
// item query so Scan call sites stay in one shape.
const contentItemColumns = `id, topic_id, brand_id, platform, content_type, status,
	title, body_text, hashtags,
	media_type, media_url, media_urls, media_caption, thumbnail_url, media_provider,
	scheduled_at, published_at, published_url,
	last_error, attempt_count, created_at, updated_at`

// ContentItemStore handles all content item database operations.
type ContentItemStore struct {
	db *sql.DB
}

// NewContentItemStore creates a ContentItemStore with the given connection.
func NewContentItemStore(db *sql.DB) *ContentItemStore {
	return &ContentItemStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentItem(row rowScanner) (*models.ContentItem, error) {
	c := &models.ContentItem{}
	err := row.Scan(
		&c.ID, &c.TopicID, &c.BrandID, &c.Platform, &c.ContentType, &c.Status,
		&c.Title, &c.BodyText, &c.Hashtags,
		&c.MediaType, &c.MediaURL, &c.MediaURLs, &c.MediaCaption, &c.ThumbnailURL, &c.MediaProvider,
		&c.ScheduledAt, &c.PublishedAt, &c.PublishedURL,
		&c.LastError, &c.AttemptCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func collectContentItems(rows *sql.Rows) ([]*models.ContentItem, error) {
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		c, err := scanContentItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content item: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// placeholders builds "$start, $start+1, ..." for dynamic IN clauses.
// database/sql over the pgx driver does not expand slice arguments.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// FindByID retrieves a single content item. Returns nil if not found.
func (s *ContentItemStore) FindByID(id uuid.UUID) (*models.ContentItem, error) {
	row := s.db.QueryRow(
		`SELECT `+contentItemColumns+` FROM content_items WHERE id = $1`, id)
	c, err := scanContentItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content item: %w", err)
	}
	return c, nil
}

// FindByIDs loads all items matching the given IDs. Items not present in the
// database are simply absent from the result; the caller decides whether an
// empty result is an error.
func (s *ContentItemStore) FindByIDs(ids []uuid.UUID) ([]*models.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT ` + contentItemColumns + ` FROM content_items WHERE id IN (` +
		placeholders(1, len(ids)) + `)`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("find content items by ids: %w", err)
	}
	return collectContentItems(rows)
}

// Filter narrows list queries. Zero values mean "no constraint".
type Filter struct {
	BrandID     string
	Platform    string
	ContentType models.ContentType
	Limit       int
}

func (f Filter) apply(where []string, args []any) ([]string, []any) {
	if f.BrandID != "" {
		args = append(args, f.BrandID)
		where = append(where, fmt.Sprintf("brand_id = $%d", len(args)))
	}
	if f.Platform != "" {
		args = append(args, f.Platform)
		where = append(where, fmt.Sprintf("platform = $%d", len(args)))
	}
	if f.ContentType != "" {
		args = append(args, f.ContentType)
		where = append(where, fmt.Sprintf("content_type = $%d", len(args)))
	}
	return where, args
}

// ListByStatus returns all items in a given lifecycle state, newest first,
// optionally narrowed by brand, platform, and content type.
func (s *ContentItemStore) ListByStatus(status lifecycle.Status, f Filter) ([]*models.ContentItem, error) {
	where := []string{"status = $1"}
	args := []any{status}
	where, args = f.apply(where, args)

	query := `SELECT ` + contentItemColumns + ` FROM content_items WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY updated_at DESC, created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content items by status: %w", err)
	}
	return collectContentItems(rows)
}

// ListAll returns every content item, newest first.
func (s *ContentItemStore) ListAll(f Filter) ([]*models.ContentItem, error) {
	var where []string
	var args []any
	where, args = f.apply(where, args)

	query := `SELECT ` + contentItemColumns + ` FROM content_items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY updated_at DESC, created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	return collectContentItems(rows)
}

// ListPublished returns published items ordered by publish date.
func (s *ContentItemStore) ListPublished(limit int) ([]*models.ContentItem, error) {
	rows, err := s.db.Query(`
		SELECT `+contentItemColumns+` FROM content_items
		WHERE status = $1
		ORDER BY published_at DESC NULLS LAST, updated_at DESC
		LIMIT $2
	`, lifecycle.StatusPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("list published: %w", err)
	}
	return collectContentItems(rows)
}

// ListDue returns SCHEDULED items whose scheduled_at has passed, oldest
// first. Used by the due-publisher worker.
func (s *ContentItemStore) ListDue(now time.Time, limit int) ([]*models.ContentItem, error) {
	rows, err := s.db.Query(`
		SELECT `+contentItemColumns+` FROM content_items
		WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
		LIMIT $3
	`, lifecycle.StatusScheduled, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due: %w", err)
	}
	return collectContentItems(rows)
}

// ListScheduledRange returns SCHEDULED items in an optional scheduled_at
// window, oldest first. Used by the CSV export.
func (s *ContentItemStore) ListScheduledRange(f Filter, from, to *time.Time) ([]*models.ContentItem, error) {
	where := []string{"status = $1"}
	args := []any{lifecycle.StatusScheduled}
	where, args = f.apply(where, args)

	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("scheduled_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		where = append(where, fmt.Sprintf("scheduled_at <= $%d", len(args)))
	}

	query := `SELECT ` + contentItemColumns + ` FROM content_items WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY scheduled_at ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scheduled range: %w", err)
	}
	return collectContentItems(rows)
}

// ListForGeneration selects generation candidates: by explicit IDs when
// given, otherwise by status (REJECTED for mode "rejected", TOPIC_INGESTED
// for new drafts), narrowed by brand, platform, and content type.
func (s *ContentItemStore) ListForGeneration(ids []uuid.UUID, status lifecycle.Status, f Filter) ([]*models.ContentItem, error) {
	var where []string
	var args []any

	if len(ids) > 0 {
		for _, id := range ids {
			args = append(args, id)
		}
		where = append(where, fmt.Sprintf("id IN (%s)", placeholders(1, len(ids))))
	} else {
		args = append(args, status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	where, args = f.apply(where, args)

	query := `SELECT ` + contentItemColumns + ` FROM content_items WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list for generation: %w", err)
	}
	return collectContentItems(rows)
}

// CreateBatch inserts all items in a single transaction. Used by topic
// expansion; either every row lands or none do.
func (s *ContentItemStore) CreateBatch(items []*models.ContentItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("create batch begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range items {
		err := tx.QueryRow(`
			INSERT INTO content_items (topic_id, brand_id, platform, content_type, status,
			                           title, media_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`, c.TopicID, c.BrandID, c.Platform, c.ContentType, c.Status, c.Title, c.MediaType,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create content item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create batch commit: %w", err)
	}
	return nil
}

// updateSQL writes every mutable column; updated_at refreshes on all paths.
const updateSQL = `
	UPDATE content_items SET
		status = $1, title = $2, body_text = $3, hashtags = $4,
		media_type = $5, media_url = $6, media_urls = $7, media_caption = $8,
		thumbnail_url = $9, media_provider = $10,
		scheduled_at = $11, published_at = $12, published_url = $13,
		last_error = $14, attempt_count = $15,
		updated_at = NOW()
	WHERE id = $16`

func updateArgs(c *models.ContentItem) []any {
	return []any{
		c.Status, c.Title, c.BodyText, c.Hashtags,
		c.MediaType, c.MediaURL, c.MediaURLs, c.MediaCaption,
		c.ThumbnailURL, c.MediaProvider,
		c.ScheduledAt, c.PublishedAt, c.PublishedURL,
		c.LastError, c.AttemptCount,
		c.ID,
	}
}

// Update persists a single item immediately. The generation orchestrator
// uses this so a crash mid-batch leaves correct partial state.
func (s *ContentItemStore) Update(c *models.ContentItem) error {
	if _, err := s.db.Exec(updateSQL, updateArgs(c)...); err != nil {
		return fmt.Errorf("update content item: %w", err)
	}
	return nil
}

// UpdateAll persists every item in one transaction — the single batched
// commit at the end of a bulk handler. A crash before Commit loses the whole
// batch, which is the accepted weak-consistency window of the design.
func (s *ContentItemStore) UpdateAll(items []*models.ContentItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("update all begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range items {
		if _, err := tx.Exec(updateSQL, updateArgs(c)...); err != nil {
			return fmt.Errorf("update content item %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update all commit: %w", err)
	}
	return nil
}

// StatusCounts returns item counts grouped by lifecycle state.
func (s *ContentItemStore) StatusCounts() (map[string]int, error) {
	return s.countsBy("status")
}

// PlatformCounts returns item counts grouped by platform.
func (s *ContentItemStore) PlatformCounts() (map[string]int, error) {
	return s.countsBy("platform")
}

// BrandCounts returns item counts grouped by brand.
func (s *ContentItemStore) BrandCounts() (map[string]int, error) {
	return s.countsBy("brand_id")
}

func (s *ContentItemStore) countsBy(column string) (map[string]int, error) {
	// column is one of three fixed names above, never user input.
	rows, err := s.db.Query(
		`SELECT ` + column + `, COUNT(*) FROM content_items GROUP BY ` + column + ` ORDER BY ` + column)
	if err != nil {
		return nil, fmt.Errorf("counts by %s: %w", column, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[key] = n
	}
	return out, rows.Err()
}
