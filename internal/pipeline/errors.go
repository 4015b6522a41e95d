package pipeline

import "net/http"

// FailureKind classifies a terminal pipeline failure.
type FailureKind string

const (
	// KindInvalidInput is a malformed request: empty bytes, unsupported or
	// mismatching content type. User-correctable.
	KindInvalidInput FailureKind = "invalid_input"

	// KindNoTextFound means extraction succeeded but found nothing to read.
	// User-correctable; the structuring stage is never reached.
	KindNoTextFound FailureKind = "no_text_found"

	// KindUpstreamExtraction is a text-extraction provider failure.
	KindUpstreamExtraction FailureKind = "upstream_extraction"

	// KindUpstreamStructuring is a structuring provider failure.
	KindUpstreamStructuring FailureKind = "upstream_structuring"

	// KindInternal is any fault not classified above. The detail shown to the
	// caller is generic; the real error stays in the logs.
	KindInternal FailureKind = "internal"
)

// Error is the pipeline's terminal failure: a kind for the HTTP mapping, a
// caller-safe detail string, and the wrapped cause for the logs.
type Error struct {
	Kind   FailureKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the failure kind to the response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNoTextFound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// PublicDetail is the message safe to show the caller. Internal faults never
// leak their underlying error text.
func (e *Error) PublicDetail() string {
	if e.Kind == KindInternal {
		return "Internal server error while processing receipt"
	}
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}
