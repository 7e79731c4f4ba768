// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"postforge/internal/models"
)

// BrandProfileStore persists scraped brand profiles, one row per brand.
type BrandProfileStore struct {
	db *sql.DB
}

// NewBrandProfileStore creates a BrandProfileStore with the given connection.
func NewBrandProfileStore(db *sql.DB) *BrandProfileStore {
	return &BrandProfileStore{db: db}
}

const brandProfileColumns = `brand_id, website_url, status, last_error,
	last_scraped_at, pages_scraped, raw_text, profile_json, profile_summary,
	colors, tone_tags, notes_manual_override, created_at, updated_at`

func scanBrandProfile(row rowScanner) (*models.BrandProfile, error) {
	bp := &models.BrandProfile{}
	err := row.Scan(
		&bp.BrandID, &bp.WebsiteURL, &bp.Status, &bp.LastError,
		&bp.LastScrapedAt, &bp.PagesScraped, &bp.RawText, &bp.ProfileJSON, &bp.ProfileSummary,
		&bp.Colors, &bp.ToneTags, &bp.NotesManualOverride, &bp.CreatedAt, &bp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bp, nil
}

// Find retrieves the profile for a brand. Returns nil if none exists yet.
func (s *BrandProfileStore) Find(brandID string) (*models.BrandProfile, error) {
	row := s.db.QueryRow(
		`SELECT `+brandProfileColumns+` FROM brand_profiles WHERE brand_id = $1`, brandID)
	bp, err := scanBrandProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find brand profile: %w", err)
	}
	return bp, nil
}

// GetOrCreate returns the existing profile, creating an IDLE row if absent.
func (s *BrandProfileStore) GetOrCreate(brandID string) (*models.BrandProfile, error) {
	bp, err := s.Find(brandID)
	if err != nil {
		return nil, err
	}
	if bp != nil {
		return bp, nil
	}

	row := s.db.QueryRow(`
		INSERT INTO brand_profiles (brand_id, status)
		VALUES ($1, $2)
		ON CONFLICT (brand_id) DO UPDATE SET updated_at = NOW()
		RETURNING `+brandProfileColumns, brandID, models.ProfileStatusIdle)
	bp, err = scanBrandProfile(row)
	if err != nil {
		return nil, fmt.Errorf("create brand profile: %w", err)
	}
	return bp, nil
}

// Update writes every mutable column back.
func (s *BrandProfileStore) Update(bp *models.BrandProfile) error {
	_, err := s.db.Exec(`
		UPDATE brand_profiles SET
			website_url = $1, status = $2, last_error = $3,
			last_scraped_at = $4, pages_scraped = $5, raw_text = $6,
			profile_json = $7, profile_summary = $8,
			colors = $9, tone_tags = $10, notes_manual_override = $11,
			updated_at = NOW()
		WHERE brand_id = $12
	`, bp.WebsiteURL, bp.Status, bp.LastError,
		bp.LastScrapedAt, bp.PagesScraped, bp.RawText,
		bp.ProfileJSON, bp.ProfileSummary,
		bp.Colors, bp.ToneTags, bp.NotesManualOverride, bp.BrandID)
	if err != nil {
		return fmt.Errorf("update brand profile: %w", err)
	}
	return nil
}

// SetStatus updates just the job status and error message. Used by the
// scrape job to mark SCRAPING/FAILED without rewriting the whole row.
func (s *BrandProfileStore) SetStatus(brandID string, status models.ProfileStatus, lastError *string) error {
	_, err := s.db.Exec(`
		UPDATE brand_profiles SET status = $1, last_error = $2, updated_at = NOW()
		WHERE brand_id = $3
	`, status, lastError, brandID)
	if err != nil {
		return fmt.Errorf("set brand profile status: %w", err)
	}
	return nil
}
