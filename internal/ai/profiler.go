package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// BrandProfile is the structured output of the profiling pass over a
// website scrape. Arrays stay short on purpose; the generator prompt quotes
// them verbatim.
type BrandProfile struct {
	BrandNameGuess string `json:"brand_name_guess"`
	OneLiner       string `json:"one_liner"`
	Tone           struct {
		Tags  []string `json:"tags"`
		Dos   []string `json:"dos"`
		Donts []string `json:"donts"`
	} `json:"tone"`
	Positioning struct {
		ValueProps      []string `json:"value_props"`
		Differentiators []string `json:"differentiators"`
	} `json:"positioning"`
	Audiences        []string `json:"audiences"`
	ProductsServices []string `json:"products_services"`
	ProofPoints      []string `json:"proof_points"`
	CTAStyle         []string `json:"cta_style"`
	Visual           struct {
		Colors     []string `json:"colors"`
		StyleNotes string   `json:"style_notes"`
	} `json:"visual"`
	ContentAngles []string `json:"content_angles"`
	Keywords      []string `json:"keywords"`
}

// maxScrapeChars caps how much scrape text goes into the prompt.
const maxScrapeChars = 120_000

const profilerSystemPrompt = `You are a brand strategist and social media content director.

Your job:
1) Read the website scrape text
2) Extract key brand signals (copy, tone, positioning, products/services, CTAs)
3) Produce a compact, structured brand profile JSON matching the provided schema.

Rules:
- Be specific, not generic.
- If information is missing, infer carefully and label it as "inferred".
- Keep arrays short and punchy.
- Use simple language (business-friendly).
- Respond with JSON only.`

// BuildBrandProfile distills a website scrape into a structured profile via
// the active provider. Detected colors are passed through so the model can
// fold them into the visual section.
func (g *Generator) BuildBrandProfile(ctx context.Context, rawText string, colors []string, websiteURL string) (*BrandProfile, json.RawMessage, error) {
	if len(rawText) > maxScrapeChars {
		rawText = rawText[:maxScrapeChars]
	}

	schema := BrandProfile{}
	schema.Visual.Colors = colors
	schemaJSON, _ := json.MarshalIndent(schema, "", "  ")

	user := fmt.Sprintf(`Website: %s

Detected colors: %s

SCHEMA (must match shape; fill values):
%s

SCRAPE TEXT:
%s`, websiteURL, strings.Join(colors, ", "), schemaJSON, rawText)

	text, err := g.registry.Generate(ctx, profilerSystemPrompt, user)
	if err != nil {
		return nil, nil, fmt.Errorf("build brand profile: %w", err)
	}

	raw, err := extractJSON(text)
	if err != nil {
		return nil, nil, err
	}

	profile := &BrandProfile{}
	if err := json.Unmarshal(raw, profile); err != nil {
		return nil, nil, fmt.Errorf("profile unmarshal: %w", err)
	}
	return profile, raw, nil
}

// extractJSON locates the outermost JSON object in a model response that may
// carry extra prose around it.
func extractJSON(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("profiler did not return JSON")
	}
	return json.RawMessage(text[start : end+1]), nil
}

// SummarizeProfile renders a short human-readable summary for review UIs.
func SummarizeProfile(p *BrandProfile) string {
	var lines []string

	if p.OneLiner != "" {
		lines = append(lines, "**One-liner:** "+p.OneLiner)
	}
	if len(p.Tone.Tags) > 0 {
		lines = append(lines, "**Tone:** "+strings.Join(head(p.Tone.Tags, 6), ", "))
	}
	if len(p.ProductsServices) > 0 {
		lines = append(lines, "**Products/Services:** "+strings.Join(head(p.ProductsServices, 6), ", "))
	}
	if len(p.Positioning.ValueProps) > 0 {
		lines = append(lines, "**Value props:** "+strings.Join(head(p.Positioning.ValueProps, 6), "; "))
	}
	if len(p.ContentAngles) > 0 {
		lines = append(lines, "**Recommended content angles:** "+strings.Join(head(p.ContentAngles, 6), "; "))
	}

	return strings.Join(lines, "\n")
}

func head(xs []string, n int) []string {
	if len(xs) <= n {
		return xs
	}
	return xs[:n]
}
