package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// openAIProvider talks to the OpenAI chat completions API.
type openAIProvider struct {
	config ProviderConfig
	client *http.Client
}

func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &openAIProvider{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *openAIProvider) Name() string { return "openai" }

// Generate drafts content through POST /chat/completions.
func (p *openAIProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var out struct {
		Choices []struct {
			Message openAIMessage `json:"message"`
		} `json:"choices"`
	}

	in := openAIRequest{
		Model: p.config.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	headers := map[string]string{"Authorization": "Bearer " + p.config.APIKey}

	if err := postJSON(ctx, p.client, p.config.BaseURL+"/chat/completions", headers, in, &out); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}

	return out.Choices[0].Message.Content, nil
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}
