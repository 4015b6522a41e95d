package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// transcribePrompt asks the vision model for a faithful transcription only.
// Structure is the next stage's job; markup here would just pollute it.
const transcribePrompt = `Extract ALL readable text from this receipt image.

Return the text exactly as it appears, one line of the receipt per line of output,
top to bottom. Do not add any commentary, markup, or structure of your own.
If the image contains no readable text, return an empty response.`

// GeminiExtractor implements TextExtractor using a vision-capable Gemini model.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiExtractor creates a Gemini-backed text extractor.
func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiExtractor{
		client: client,
		model:  model,
	}, nil
}

// ExtractText sends the image with a transcription instruction and returns the
// model's reply verbatim.
func (g *GeminiExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	format, ok := DetectFormat(image)
	if !ok {
		// Let the model try anyway; unknown bytes are still sent as jpeg.
		format = "jpeg"
	}

	parts := []genai.Part{
		genai.ImageData(format, image),
		genai.Text(transcribePrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", &ExtractionError{Provider: "gemini", Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &ExtractionError{Provider: "gemini", Err: fmt.Errorf("no candidates in response")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// Close closes the underlying Gemini client.
func (g *GeminiExtractor) Close() error {
	return g.client.Close()
}
