package advisor

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/de-tools/ledger-atlas/pkg/models/domain"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type GeminiSettings struct {
	APIKey string
	Model  string
}

// Gemini generates recommendations with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, settings GeminiSettings) (*Gemini, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	model := settings.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: settings.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Name returns the advisor name.
func (g *Gemini) Name() string {
	return fmt.Sprintf("gemini:%s", g.model)
}

func (g *Gemini) Advise(ctx context.Context, anomalies []domain.Anomaly) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(Prompt(anomalies), genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return NormalizeBullets(text), nil
}

// Close closes the underlying API client. The genai client holds no
// closable resources, so this is a no-op.
func (g *Gemini) Close() error {
	return nil
}
