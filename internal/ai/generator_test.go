package ai

import (
	"context"
	"strings"
	"testing"

	"postforge/internal/models"
)

// fakeProvider returns a canned response for generator tests.
type fakeProvider struct {
	response string
	err      error

	lastSystem string
	lastUser   string
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Generate(_ context.Context, system, user string) (string, error) {
	f.lastSystem = system
	f.lastUser = user
	return f.response, f.err
}

func newFakeGenerator(response string) (*Generator, *fakeProvider) {
	fake := &fakeProvider{response: response}
	r := NewRegistry("fake", nil)
	r.Register("fake", fake)
	return NewGenerator(r), fake
}

func TestGeneratePostText(t *testing.T) {
	g, fake := newFakeGenerator(`CAPTION:
Ship faster with automated reviews.

HASHTAGS:
#devtools   #automation
`)

	draft, err := g.GeneratePost(context.Background(), GenerateRequest{
		TopicText:   "automated code review",
		Platform:    "linkedin",
		BrandID:     "neuroflow-ai",
		ContentType: models.ContentTypeText,
	})
	if err != nil {
		t.Fatalf("GeneratePost: %v", err)
	}

	if draft.BodyText != "Ship faster with automated reviews." {
		t.Errorf("body: got %q", draft.BodyText)
	}
	if draft.Hashtags != "#devtools #automation" {
		t.Errorf("hashtags not normalized: got %q", draft.Hashtags)
	}
	if draft.MediaPrompt != "" {
		t.Errorf("text post should have no media prompt, got %q", draft.MediaPrompt)
	}

	if !strings.Contains(fake.lastSystem, "LinkedIn style") {
		t.Error("system prompt missing platform style")
	}
	if !strings.Contains(fake.lastUser, "automated code review") {
		t.Error("user prompt missing topic text")
	}
}

func TestGeneratePostImage(t *testing.T) {
	g, _ := newFakeGenerator(`CAPTION:
A look behind the scenes.

HASHTAGS:
#madewithai

IMAGE_PROMPT:
Studio photo of a small robot assembling gears, warm light.
`)

	draft, err := g.GeneratePost(context.Background(), GenerateRequest{
		TopicText:   "behind the scenes",
		Platform:    "instagram",
		BrandID:     "neuroflow-ai",
		ContentType: models.ContentTypeImage,
	})
	if err != nil {
		t.Fatalf("GeneratePost: %v", err)
	}

	want := "Studio photo of a small robot assembling gears, warm light."
	if draft.MediaPrompt != want {
		t.Errorf("media prompt: got %q, want %q", draft.MediaPrompt, want)
	}
}

func TestGeneratePostVideoJoinsConceptAndThumbnail(t *testing.T) {
	g, _ := newFakeGenerator(`CAPTION:
Sixty seconds of product.

HASHTAGS:

VIDEO_CONCEPT:
Fast cuts of the dashboard, 30s, on-screen captions.
THUMBNAIL_PROMPT:
Bold title card with product logo.
`)

	draft, err := g.GeneratePost(context.Background(), GenerateRequest{
		TopicText:   "product tour",
		Platform:    "facebook",
		BrandID:     "neuroflow-ai",
		ContentType: models.ContentTypeVideo,
	})
	if err != nil {
		t.Fatalf("GeneratePost: %v", err)
	}

	if !strings.Contains(draft.MediaPrompt, "VIDEO_CONCEPT: Fast cuts") {
		t.Errorf("media prompt missing concept: %q", draft.MediaPrompt)
	}
	if !strings.Contains(draft.MediaPrompt, "THUMBNAIL_PROMPT: Bold title card") {
		t.Errorf("media prompt missing thumbnail: %q", draft.MediaPrompt)
	}
}

func TestExtractBlockStopsAtNextLabel(t *testing.T) {
	text := "CAPTION:\nfirst part\nHASHTAGS:\n#one\nIMAGE_PROMPT:\npaint me"
	if got := extractBlock(text, "CAPTION:"); got != "first part" {
		t.Errorf("caption: got %q", got)
	}
	if got := extractBlock(text, "HASHTAGS:"); got != "#one" {
		t.Errorf("hashtags: got %q", got)
	}
	if got := extractBlock(text, "VIDEO_CONCEPT:"); got != "" {
		t.Errorf("absent marker should return empty, got %q", got)
	}
}

func TestAppendPromptBlock(t *testing.T) {
	got := AppendPromptBlock("caption here", "a prompt", models.ContentTypeImage)
	if !strings.Contains(got, "IMAGE_PROMPT:\na prompt") {
		t.Errorf("missing labeled block: %q", got)
	}
	if !strings.HasPrefix(got, "caption here") {
		t.Errorf("caption misplaced: %q", got)
	}

	if got := AppendPromptBlock("caption", "", models.ContentTypeImage); got != "caption" {
		t.Errorf("empty prompt should leave caption alone, got %q", got)
	}

	video := AppendPromptBlock("c", "v", models.ContentTypeVideo)
	if !strings.Contains(video, "VIDEO_PROMPT:") {
		t.Errorf("video label wrong: %q", video)
	}
}

func TestBuildUserPromptIncludesBrandContext(t *testing.T) {
	prompt := buildUserPrompt(GenerateRequest{
		TopicText:    "topic",
		BrandID:      "acme",
		BrandSummary: "We sell anvils.",
		ToneTags:     []string{"bold", "dry"},
		Audiences:    []string{"coyotes"},
	})

	for _, want := range []string{"Brand: acme", "We sell anvils.", "bold, dry", "coyotes", "OUTPUT FORMAT"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
