package ocr

import (
	"context"
	"fmt"
)

// TextExtractor turns raw image bytes into the text readable on the image.
//
// Implementations return the transcription as a single string, lines ordered
// top to bottom. Zero detected text is an empty string, not an error; the
// caller decides what an empty receipt means.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
	// Close releases provider resources.
	Close() error
}

// ExtractionError wraps any provider-side failure during text extraction.
// The message always carries the provider's own error text so operators can
// diagnose upstream problems from our logs.
type ExtractionError struct {
	Provider string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s text extraction failed: %v", e.Provider, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
