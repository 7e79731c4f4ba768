// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scrape fetches a brand's website and extracts the text and
// colors the profiler needs. It only follows a fixed set of common
// marketing pages on the same host, never arbitrary links.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Pages we try beyond the homepage. Marketing sites keep their voice and
// offering on a handful of well-known paths.
var candidatePaths = []string{
	"/about", "/about-us", "/services", "/products",
	"/pricing", "/contact", "/faq", "/blog",
}

const (
	maxPageBytes = 2 << 20 // 2 MiB per page
	userAgent    = "Mozilla/5.0 (compatible; PostForgeBot/1.0)"
)

var hexColorRe = regexp.MustCompile(`#[0-9a-fA-F]{3,8}\b`)

// Page is one fetched page.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"-"`
}

// Result holds everything scraped from one site.
type Result struct {
	Pages   []Page
	RawText string
	Colors  []string
}

// Scraper fetches site pages with a shared HTTP client.
type Scraper struct {
	http *http.Client
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{http: &http.Client{Timeout: timeout}}
}

// Site scrapes the homepage plus any candidate pages that exist. A site
// with an unreachable homepage is an error; missing subpages are not.
func (s *Scraper) Site(ctx context.Context, siteURL string) (*Result, error) {
	base, err := NormalizeURL(siteURL)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	colorSet := map[string]bool{}
	var texts []string

	home, err := s.page(ctx, base.String())
	if err != nil {
		return nil, fmt.Errorf("fetch homepage: %w", err)
	}
	res.Pages = append(res.Pages, home.page)
	texts = append(texts, home.page.Text)
	addColors(colorSet, home.raw)

	for _, p := range candidatePaths {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		u := *base
		u.Path = p
		fetched, err := s.page(ctx, u.String())
		if err != nil {
			continue // subpage missing or broken, move on
		}
		res.Pages = append(res.Pages, fetched.page)
		texts = append(texts, fetched.page.Text)
		addColors(colorSet, fetched.raw)
	}

	res.RawText = strings.Join(texts, "\n\n")
	for c := range colorSet {
		res.Colors = append(res.Colors, c)
	}
	return res, nil
}

type fetchedPage struct {
	page Page
	raw  string
}

func (s *Scraper) page(ctx context.Context, pageURL string) (*fetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}
	raw := string(body)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}

	// Scripts and styles pollute the extracted text.
	doc.Find("script, style, noscript, svg").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := collapseWhitespace(doc.Find("body").Text())

	return &fetchedPage{
		page: Page{URL: pageURL, Title: title, Text: text},
		raw:  raw,
	}, nil
}

// NormalizeURL validates a site URL and strips it to scheme plus host.
// A bare domain gets https.
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty website URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid website URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("website URL has no host")
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

func addColors(set map[string]bool, raw string) {
	for _, c := range hexColorRe.FindAllString(raw, -1) {
		set[strings.ToLower(c)] = true
	}
}

var wsRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}
