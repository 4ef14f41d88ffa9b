package query

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Alyfish/spacestest-v0-mvp/internal/imageio"
)

const extractPrompt = `You are looking at a cropped photo of a single furniture or home item.
Identify it for a shopping search. Return STRICT JSON:
{
  "color": string,     // dominant color, one or two words, "" if unclear
  "material": string,  // primary material, one word, "" if unclear
  "style": string,     // design style (modern, rustic, mid-century...), "" if unclear
  "item_type": string  // specific item type ("coffee table", "armchair", "floor lamp")
}
item_type is required. Do not add fields or commentary.`

// GeminiExtractor extracts structured shopping attributes from a crop with
// the Gemini vision API.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

func (g *GeminiExtractor) Extract(ctx context.Context, img image.Image) (Attributes, error) {
	data, err := imageio.EncodeJPEG(img)
	if err != nil {
		return Attributes{}, fmt.Errorf("encode crop: %w", err)
	}

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx,
		genai.ImageData("jpeg", data),
		genai.Text(extractPrompt),
	)
	if err != nil {
		return Attributes{}, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Attributes{}, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return parseAttributes(sb.String())
}

// parseAttributes decodes the model's JSON reply, tolerating markdown code
// fences some responses still wrap it in.
func parseAttributes(raw string) (Attributes, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var attrs Attributes
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &attrs); err != nil {
		return Attributes{}, fmt.Errorf("parse gemini response: %w", err)
	}
	if attrs.ItemType == "" {
		return Attributes{}, fmt.Errorf("gemini response missing item_type")
	}
	return attrs, nil
}

// Close releases the underlying API client.
func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}
