package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// VisionExtractor implements TextExtractor using the Google Cloud Vision
// TEXT_DETECTION feature.
type VisionExtractor struct {
	service             *vision.Service
	confidenceThreshold float64
}

// NewVisionExtractor creates a Cloud Vision text extractor. Text blocks with a
// detection confidence below threshold are dropped from the result.
func NewVisionExtractor(ctx context.Context, credentialsFile string, threshold float64) (*VisionExtractor, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("vision credentials file is required")
	}

	service, err := vision.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}

	return &VisionExtractor{
		service:             service,
		confidenceThreshold: threshold,
	}, nil
}

// ExtractText runs TEXT_DETECTION on the image and returns the detected text,
// lines ordered top to bottom. No detected text yields an empty string.
func (v *VisionExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image: &vision.Image{
					Content: base64.StdEncoding.EncodeToString(image),
				},
				Features: []*vision.Feature{
					{Type: "TEXT_DETECTION"},
				},
			},
		},
	}

	resp, err := v.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", &ExtractionError{Provider: "vision", Err: err}
	}

	if len(resp.Responses) == 0 {
		return "", &ExtractionError{Provider: "vision", Err: fmt.Errorf("empty annotate response")}
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return "", &ExtractionError{
			Provider: "vision",
			Err:      fmt.Errorf("api error %d: %s", r.Error.Code, r.Error.Message),
		}
	}

	// The full-text annotation carries per-block confidence; prefer it so low
	// confidence regions can be filtered out. Older responses without one fall
	// back to the aggregate text annotation.
	if r.FullTextAnnotation != nil {
		return filterFullText(r.FullTextAnnotation, v.confidenceThreshold), nil
	}
	if len(r.TextAnnotations) == 0 {
		return "", nil
	}
	return r.TextAnnotations[0].Description, nil
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (v *VisionExtractor) Close() error {
	return nil
}

// filterFullText flattens a full-text annotation into plain text, silently
// dropping blocks whose confidence falls below the threshold. Surviving blocks
// are joined with newlines to preserve line structure for the structuring step.
func filterFullText(annotation *vision.TextAnnotation, threshold float64) string {
	var blocks []string
	for _, page := range annotation.Pages {
		for _, block := range page.Blocks {
			// TEXT_DETECTION often reports no confidence at all (0.0); only an
			// actual low score should drop a block.
			if block.Confidence > 0 && block.Confidence < threshold {
				continue
			}
			text := blockText(block)
			if text != "" {
				blocks = append(blocks, text)
			}
		}
	}
	return strings.Join(blocks, "\n")
}

// blockText reassembles the words of a block, honoring the detected breaks so
// line boundaries inside the block survive.
func blockText(block *vision.Block) string {
	var sb strings.Builder
	for _, paragraph := range block.Paragraphs {
		for _, word := range paragraph.Words {
			for _, symbol := range word.Symbols {
				sb.WriteString(symbol.Text)
				if symbol.Property != nil && symbol.Property.DetectedBreak != nil {
					switch symbol.Property.DetectedBreak.Type {
					case "SPACE", "SURE_SPACE":
						sb.WriteString(" ")
					case "EOL_SURE_SPACE", "LINE_BREAK":
						sb.WriteString("\n")
					}
				}
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n ")
}
