// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"strings"

	"postforge/internal/models"
)

// PostDraft is the structured result of one generation call.
type PostDraft struct {
	BodyText    string
	Hashtags    string
	MediaPrompt string // empty for text posts
}

// GenerateRequest carries everything the generator needs for one item.
type GenerateRequest struct {
	TopicText   string
	Platform    string
	BrandID     string
	ContentType models.ContentType

	// Optional scraped brand context; empty values degrade to a generic
	// prompt rather than failing.
	BrandSummary string
	ToneTags     []string
	Audiences    []string
}

// labels are the markers the model is instructed to emit. Parsing stops a
// block at the next known label so a rambling response still splits cleanly.
var labels = []string{"CAPTION:", "HASHTAGS:", "IMAGE_PROMPT:", "VIDEO_CONCEPT:", "THUMBNAIL_PROMPT:"}

// Generator produces post drafts through an LLM provider.
type Generator struct {
	registry *Registry
}

// NewGenerator creates a Generator backed by the provider registry.
func NewGenerator(registry *Registry) *Generator {
	return &Generator{registry: registry}
}

// GeneratePost asks the active provider for a draft and parses the labeled
// blocks out of its response. Any provider or parse failure is returned as
// an error; the caller decides how to record it on the item.
func (g *Generator) GeneratePost(ctx context.Context, req GenerateRequest) (*PostDraft, error) {
	system := buildInstructions(req.Platform, req.BrandID, req.ContentType)
	user := buildUserPrompt(req)

	text, err := g.registry.Generate(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("generate post: %w", err)
	}

	return parseDraft(text, req.ContentType), nil
}

// buildInstructions composes the system prompt from base rules, platform
// style, and content-type output requirements.
func buildInstructions(platform, brandID string, contentType models.ContentType) string {
	base := fmt.Sprintf(`You are a senior social media copywriter for %s.
Write ORIGINAL, non-generic marketing content based on the topic and brand context.
No fluff. Clear hook + value + CTA.
Avoid vague claims. Be concrete.`, brandID)

	var style string
	switch platform {
	case "linkedin":
		style = `LinkedIn style:
- professional, insight-driven
- 120-220 words
- include 3-5 bullet points if helpful
- no hashtags OR max 3 hashtags at the end`
	case "facebook", "instagram":
		style = `Facebook/Instagram style:
- punchy, short-form
- 60-150 words
- strong first line hook
- include 5-12 relevant hashtags at the end (not spam)`
	default:
		style = "Generic social style. Keep it clear and direct."
	}

	var ctype string
	switch contentType {
	case models.ContentTypeImage:
		ctype = `Content type: IMAGE
Return:
1) caption
2) hashtags
3) IMAGE_PROMPT (a single detailed prompt for generating the image that matches the caption + brand style)`
	case models.ContentTypeVideo:
		ctype = `Content type: VIDEO
Return:
1) caption
2) hashtags
3) VIDEO_CONCEPT (short concept: scene + camera + on-screen text + duration)
4) THUMBNAIL_PROMPT (prompt for a thumbnail image)`
	default:
		ctype = `Content type: TEXT
Return a caption and hashtags only.`
	}

	return base + "\n\n" + style + "\n\n" + ctype
}

// buildUserPrompt composes the brand context block, the topic, and the
// strict output format the parser depends on.
func buildUserPrompt(req GenerateRequest) string {
	var b strings.Builder

	b.WriteString("BRAND CONTEXT (use this to avoid generic writing):\n")
	b.WriteString("Brand: " + req.BrandID + "\n\n")
	if req.BrandSummary != "" {
		b.WriteString("Brand summary:\n" + req.BrandSummary + "\n\n")
	}
	if len(req.ToneTags) > 0 {
		b.WriteString("Tone tags: " + strings.Join(req.ToneTags, ", ") + "\n")
	}
	if len(req.Audiences) > 0 {
		b.WriteString("Target audiences: " + strings.Join(req.Audiences, ", ") + "\n")
	}

	b.WriteString("\nTOPIC:\n" + req.TopicText + "\n\n")
	b.WriteString(`OUTPUT FORMAT (MUST FOLLOW EXACTLY):
CAPTION:
<caption text>

HASHTAGS:
<hashtags line, either empty or starting with #>

IF IMAGE, ALSO INCLUDE:
IMAGE_PROMPT:
<prompt>

IF VIDEO, ALSO INCLUDE:
VIDEO_CONCEPT:
<concept>
THUMBNAIL_PROMPT:
<prompt>`)

	return b.String()
}

// parseDraft splits the model output into labeled blocks and assembles the
// draft for the given content type.
func parseDraft(text string, contentType models.ContentType) *PostDraft {
	caption := extractBlock(text, "CAPTION:")
	hashtags := normalizeHashtags(extractBlock(text, "HASHTAGS:"))

	var mediaPrompt string
	switch contentType {
	case models.ContentTypeImage:
		mediaPrompt = extractBlock(text, "IMAGE_PROMPT:")
	case models.ContentTypeVideo:
		concept := extractBlock(text, "VIDEO_CONCEPT:")
		thumb := extractBlock(text, "THUMBNAIL_PROMPT:")
		if concept != "" || thumb != "" {
			mediaPrompt = strings.TrimSpace("VIDEO_CONCEPT: " + concept + "\nTHUMBNAIL_PROMPT: " + thumb)
		}
	}

	return &PostDraft{
		BodyText:    caption,
		Hashtags:    hashtags,
		MediaPrompt: mediaPrompt,
	}
}

// extractBlock returns the text following marker up to the next known label.
// Returns "" if the marker is absent.
func extractBlock(text, marker string) string {
	idx := strings.Index(text, marker)
	if idx == -1 {
		return ""
	}
	after := text[idx+len(marker):]
	for _, next := range labels {
		if next == marker {
			continue
		}
		if cut := strings.Index(after, next); cut != -1 {
			after = after[:cut]
		}
	}
	return strings.TrimSpace(after)
}

// normalizeHashtags collapses whitespace to single spaces.
func normalizeHashtags(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PromptLabel returns the human-visible label prepended to the prompt block
// stored inside the caption for media items.
func PromptLabel(contentType models.ContentType) string {
	if contentType == models.ContentTypeVideo {
		return "VIDEO_PROMPT"
	}
	return "IMAGE_PROMPT"
}

// AppendPromptBlock attaches a labeled media prompt to a caption so
// reviewers see exactly what the media generator will be asked for.
func AppendPromptBlock(caption, mediaPrompt string, contentType models.ContentType) string {
	if mediaPrompt == "" {
		return caption
	}
	return strings.TrimSpace(fmt.Sprintf("%s\n\n---\n%s:\n%s", caption, PromptLabel(contentType), mediaPrompt))
}
