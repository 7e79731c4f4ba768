// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package jobs runs the asynchronous brand profiling pipeline: scrape the
// brand website, distill it with the active AI provider, persist the result.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"postforge/internal/ai"
	"postforge/internal/models"
	"postforge/internal/scrape"
	"postforge/internal/store"
)

// Profiler owns the scrape-and-profile jobs. At most one job per brand
// runs at a time; a second start while one is running is rejected.
type Profiler struct {
	profiles  *store.BrandProfileStore
	scraper   *scrape.Scraper
	generator *ai.Generator
	logger    *slog.Logger

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

func NewProfiler(profiles *store.BrandProfileStore, scraper *scrape.Scraper, generator *ai.Generator, logger *slog.Logger) *Profiler {
	return &Profiler{
		profiles:  profiles,
		scraper:   scraper,
		generator: generator,
		logger:    logger,
		running:   make(map[string]context.CancelFunc),
	}
}

// Start kicks off profiling for a brand in the background. Returns an error
// if a job for the brand is already running.
func (p *Profiler) Start(brandID, websiteURL string) error {
	p.mu.Lock()
	if _, busy := p.running[brandID]; busy {
		p.mu.Unlock()
		return fmt.Errorf("profiling already running for brand %s", brandID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	p.running[brandID] = cancel
	p.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			p.mu.Lock()
			delete(p.running, brandID)
			p.mu.Unlock()
		}()
		p.run(ctx, brandID, websiteURL)
	}()
	return nil
}

// Cancel stops a running job, if any. The job marks the profile FAILED on
// its way out.
func (p *Profiler) Cancel(brandID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.running[brandID]; ok {
		cancel()
		return true
	}
	return false
}

// Running reports whether a job is in flight for the brand.
func (p *Profiler) Running(brandID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.running[brandID]
	return ok
}

func (p *Profiler) run(ctx context.Context, brandID, websiteURL string) {
	log := p.logger.With("brand_id", brandID, "website", websiteURL)

	if err := p.profiles.SetStatus(brandID, models.ProfileStatusScraping, nil); err != nil {
		log.Error("profile status update failed", "error", err)
		return
	}

	profile, err := p.buildProfile(ctx, brandID, websiteURL)
	if err != nil {
		log.Error("brand profiling failed", "error", err)
		msg := err.Error()
		if err := p.profiles.SetStatus(brandID, models.ProfileStatusFailed, &msg); err != nil {
			log.Error("profile status update failed", "error", err)
		}
		return
	}

	if err := p.profiles.Update(profile); err != nil {
		log.Error("profile save failed", "error", err)
		return
	}
	log.Info("brand profile ready")
}

func (p *Profiler) buildProfile(ctx context.Context, brandID, websiteURL string) (*models.BrandProfile, error) {
	site, err := p.scraper.Site(ctx, websiteURL)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}

	distilled, profileJSON, err := p.generator.BuildBrandProfile(ctx, site.RawText, site.Colors, websiteURL)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	profile, err := p.profiles.GetOrCreate(brandID)
	if err != nil {
		return nil, err
	}

	pages, _ := json.Marshal(site.Pages)
	colors, _ := json.Marshal(mergedColors(site.Colors, distilled.Visual.Colors))
	toneTags, _ := json.Marshal(distilled.Tone.Tags)
	summary := ai.SummarizeProfile(distilled)
	now := time.Now().UTC()

	profile.WebsiteURL = &websiteURL
	profile.Status = models.ProfileStatusReady
	profile.LastError = nil
	profile.LastScrapedAt = &now
	profile.PagesScraped = pages
	profile.RawText = &site.RawText
	profile.ProfileJSON = profileJSON
	profile.ProfileSummary = &summary
	profile.Colors = colors
	profile.ToneTags = toneTags
	return profile, nil
}

// mergedColors prefers the model's curated palette but keeps any detected
// colors it missed, capped so the list stays usable.
func mergedColors(detected, curated []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range append(append([]string{}, curated...), detected...) {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) >= 12 {
			break
		}
	}
	return out
}
