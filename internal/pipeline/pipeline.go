package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/receiptscan/receipt-ocr-service/internal/ai"
	"github.com/receiptscan/receipt-ocr-service/internal/models"
	"github.com/receiptscan/receipt-ocr-service/internal/ocr"
)

// Structurer is the text-to-JSON stage the pipeline depends on.
type Structurer interface {
	Structure(ctx context.Context, rawText string) (map[string]interface{}, error)
}

// Pipeline sequences extraction, structuring and normalization for a single
// request. It holds only injected read-only dependencies and is safe for
// concurrent use; all per-request state lives on the stack of Process.
type Pipeline struct {
	extractor  ocr.TextExtractor
	structurer Structurer
	timeout    time.Duration
}

// New creates a pipeline. timeout bounds each upstream call separately.
func New(extractor ocr.TextExtractor, structurer Structurer, timeout time.Duration) *Pipeline {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Pipeline{
		extractor:  extractor,
		structurer: structurer,
		timeout:    timeout,
	}
}

// Process runs one receipt image through the full pipeline. Every failure is a
// *Error carrying its classification; there is no retry, and no failure here
// is fatal to the process.
func (p *Pipeline) Process(ctx context.Context, image []byte, contentType string) (*models.Receipt, error) {
	if len(image) == 0 {
		return nil, &Error{Kind: KindInvalidInput, Detail: "Empty file provided"}
	}
	if ocr.FormatFromContentType(contentType) == "" {
		return nil, &Error{Kind: KindInvalidInput, Detail: "File must be an image (JPEG, PNG, etc.)"}
	}
	if _, ok := ocr.DetectFormat(image); !ok {
		return nil, &Error{Kind: KindInvalidInput, Detail: "File content is not a supported image format"}
	}

	extractCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	rawText, err := p.extractor.ExtractText(extractCtx, image)
	if err != nil {
		var extractionErr *ocr.ExtractionError
		if errors.As(err, &extractionErr) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Kind: KindUpstreamExtraction, Detail: "Text extraction failed", Err: err}
		}
		return nil, &Error{Kind: KindInternal, Detail: "unexpected extraction fault", Err: err}
	}
	slog.Debug("extraction complete", "duration", time.Since(start), "chars", len(rawText))

	if strings.TrimSpace(rawText) == "" {
		return nil, &Error{Kind: KindNoTextFound, Detail: "No text could be extracted from the image"}
	}

	structureCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start = time.Now()
	parsed, err := p.structurer.Structure(structureCtx, rawText)
	if err != nil {
		var structuringErr *ai.StructuringError
		if errors.As(err, &structuringErr) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Kind: KindUpstreamStructuring, Detail: "Receipt structuring failed", Err: err}
		}
		return nil, &Error{Kind: KindInternal, Detail: "unexpected structuring fault", Err: err}
	}
	slog.Debug("structuring complete", "duration", time.Since(start))

	// Normalization is total; it cannot fail on any parsed reply.
	return ai.Normalize(parsed, rawText), nil
}
