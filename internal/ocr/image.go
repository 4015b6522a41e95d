package ocr

import (
	"bytes"
	"strings"
)

// DetectFormat sniffs the raster format from the leading magic bytes.
// Returns the short format name ("jpeg", "png", "gif", "bmp", "webp") and
// whether the bytes look like a supported image at all.
func DetectFormat(data []byte) (string, bool) {
	switch {
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg", true
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "png", true
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "gif", true
	case len(data) >= 2 && bytes.Equal(data[:2], []byte("BM")):
		return "bmp", true
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp", true
	}
	return "", false
}

// FormatFromContentType maps a MIME type to the short format name used by the
// vision providers. Empty string when the content type is not a supported image.
func FormatFromContentType(contentType string) string {
	// Strip any parameters (e.g. "image/jpeg; charset=binary")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/bmp", "image/x-ms-bmp":
		return "bmp"
	case "image/webp":
		return "webp"
	}
	return ""
}

// MIMEType returns the canonical MIME type for a short format name.
func MIMEType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
