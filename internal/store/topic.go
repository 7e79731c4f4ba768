package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"postforge/internal/models"
)

// TopicStore persists raw topics. Kept for audit; expansion itself writes
// content_items through ContentItemStore.
type TopicStore struct {
	db *sql.DB
}

// NewTopicStore creates a TopicStore with the given database connection.
func NewTopicStore(db *sql.DB) *TopicStore {
	return &TopicStore{db: db}
}

// Create inserts a topic and fills in the generated ID and timestamp.
func (s *TopicStore) Create(t *models.Topic) error {
	err := s.db.QueryRow(`
		INSERT INTO topics (brand_id, topic_text)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, t.BrandID, t.TopicText).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}

// FindByID fetches one topic.
func (s *TopicStore) FindByID(id uuid.UUID) (*models.Topic, error) {
	var t models.Topic
	err := s.db.QueryRow(`
		SELECT id, brand_id, topic_text, created_at
		FROM topics WHERE id = $1
	`, id).Scan(&t.ID, &t.BrandID, &t.TopicText, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find topic: %w", err)
	}
	return &t, nil
}

// List returns all topics for a brand, newest first.
func (s *TopicStore) List(brandID string) ([]models.Topic, error) {
	rows, err := s.db.Query(`
		SELECT id, brand_id, topic_text, created_at
		FROM topics WHERE brand_id = $1
		ORDER BY created_at DESC
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.BrandID, &t.TopicText, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// PlatformStore reads the extensible platform registry.
type PlatformStore struct {
	db *sql.DB
}

// NewPlatformStore creates a PlatformStore with the given database connection.
func NewPlatformStore(db *sql.DB) *PlatformStore {
	return &PlatformStore{db: db}
}

// ListActive returns all active platforms ordered by ID.
func (s *PlatformStore) ListActive() ([]models.Platform, error) {
	rows, err := s.db.Query(`
		SELECT id, display_name, is_active, created_at
		FROM platforms WHERE is_active ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	defer rows.Close()

	var platforms []models.Platform
	for rows.Next() {
		var p models.Platform
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan platform: %w", err)
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

// Exists reports whether a platform ID is registered and active.
func (s *PlatformStore) Exists(id string) (bool, error) {
	var ok bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM platforms WHERE id = $1 AND is_active)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("platform exists: %w", err)
	}
	return ok, nil
}

// BrandStore reads and writes the brand registry.
type BrandStore struct {
	db *sql.DB
}

// NewBrandStore creates a BrandStore with the given database connection.
func NewBrandStore(db *sql.DB) *BrandStore {
	return &BrandStore{db: db}
}

// ListActive returns all active brands ordered by ID.
func (s *BrandStore) ListActive() ([]models.Brand, error) {
	rows, err := s.db.Query(`
		SELECT id, display_name, is_active, created_at
		FROM brands WHERE is_active ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []models.Brand
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.DisplayName, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// Create inserts a brand. The ID is caller-chosen (slug-like).
func (s *BrandStore) Create(b *models.Brand) error {
	err := s.db.QueryRow(`
		INSERT INTO brands (id, display_name, is_active)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, b.ID, b.DisplayName, b.IsActive).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("create brand: %w", err)
	}
	return nil
}
