package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/raine/produce-shelf-life/internal/produce"
)

const DefaultGeminiModel = "gemini-2.5-flash"

const geminiPromptTemplate = `
	Analyze this image of a fruit or vegetable and estimate how long it keeps.

	Respond with exactly one line per field, in this format and order:
	%s

	Rules:
	- Use the field labels exactly as written, followed by a colon and the value.
	- Shelf life is the minimum estimate for the produce as it looks in the image.
	- Refrigeration Required is Yes or No, optionally with a short qualifier.
	- The storage tip is a single sentence.
	- Do not add any other text, headings or markdown.`

var geminiPrompt = buildPrompt()

func buildPrompt() string {
	var fields []string
	for _, l := range produce.KnownLabels() {
		fields = append(fields, string(l)+": <value>")
	}
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(geminiPromptTemplate)), strings.Join(fields, "\n"))
}

// GeminiPredictor runs the vision analysis on Google's Gemini API.
type GeminiPredictor struct {
	client *genai.Client
	model  string
}

// NewGeminiPredictor creates a Gemini client authenticated with apiKey.
func NewGeminiPredictor(ctx context.Context, apiKey, model string) (*GeminiPredictor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiPredictor{client: client, model: model}, nil
}

func (g *GeminiPredictor) Name() string {
	return "gemini:" + g.model
}

// Predict implements Predictor.
func (g *GeminiPredictor) Predict(ctx context.Context, pngImage []byte) ([]produce.Annotation, error) {
	if len(pngImage) == 0 {
		return nil, fmt.Errorf("no image provided")
	}

	parts := []*genai.Part{
		genai.NewPartFromText(geminiPrompt),
		{InlineData: &genai.Blob{Data: pngImage, MIMEType: "image/png"}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	annotations := FilterKnown(ParseAnnotationText(result.Text()))

	event := log.Info().
		Str("model", g.model).
		Int("imageBytes", len(pngImage)).
		Int("annotations", len(annotations))
	if result.UsageMetadata != nil {
		event = event.
			Int32("inputTokens", result.UsageMetadata.PromptTokenCount).
			Int32("outputTokens", result.UsageMetadata.CandidatesTokenCount)
	}
	event.Msg("vision llm call")

	return annotations, nil
}
