package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money fields go over the wire as bare JSON numbers, not quoted strings.
	// decimal.Decimal preserves the exact digits in both directions.
	decimal.MarshalJSONWithoutQuotes = true
}

// Receipt is the structured record produced from a receipt image. It is built
// once per request by the normalizer and never mutated afterwards.
type Receipt struct {
	Merchant    Merchant    `json:"merchant"`
	Transaction Transaction `json:"transaction"`
	Items       []LineItem  `json:"items"`
	RawText     string      `json:"raw_text,omitempty"` // original extracted text, kept for debugging
}

// Merchant holds store information from the receipt header.
type Merchant struct {
	Name    string  `json:"name"` // "Unknown Store" when the reply omits it
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// Transaction holds the totals block of the receipt.
type Transaction struct {
	Date          *string          `json:"date"` // YYYY-MM-DD when present
	Time          *string          `json:"time"` // HH:MM when present
	Subtotal      *decimal.Decimal `json:"subtotal"`
	Tax           *decimal.Decimal `json:"tax"`
	Total         decimal.Decimal  `json:"total"` // zero when the reply omits it
	PaymentMethod *string          `json:"payment_method"`
}

// LineItem is a single purchased item.
//
// Quantity stays nil when the upstream reply omits it. The structuring prompt
// instructs the model to assume 1, so a nil quantity means the model itself
// could not read one off the receipt.
type LineItem struct {
	Description string           `json:"description"` // "Unknown Item" when the reply omits it
	Quantity    *int             `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal  `json:"total_price"` // zero when the reply omits it
}

// SuccessEnvelope wraps a processed receipt for the HTTP response.
type SuccessEnvelope struct {
	Status     string            `json:"status"` // always "success"
	StatusCode int               `json:"status_code"`
	Data       *Receipt          `json:"data"`
	Validation *ValidationReport `json:"validation,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Status     string    `json:"status"` // always "error"
	StatusCode int       `json:"status_code"`
	Detail     string    `json:"detail"`
	ErrorCode  string    `json:"error_code,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ValidationReport carries non-fatal arithmetic consistency findings for a
// receipt. A receipt with warnings is still returned normally.
type ValidationReport struct {
	Consistent bool                `json:"consistent"`
	Warnings   []ValidationWarning `json:"warnings,omitempty"`
}

// ValidationWarning flags a single inconsistency between extracted amounts.
type ValidationWarning struct {
	Field    string `json:"field"`
	Code     string `json:"code"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Message  string `json:"message"`
}

// NewSuccessEnvelope builds the success variant for a processed receipt.
func NewSuccessEnvelope(receipt *Receipt, report *ValidationReport) SuccessEnvelope {
	return SuccessEnvelope{
		Status:     "success",
		StatusCode: 200,
		Data:       receipt,
		Validation: report,
		Timestamp:  time.Now().UTC(),
	}
}

// NewErrorEnvelope builds the error variant for a failed request.
func NewErrorEnvelope(statusCode int, detail, errorCode string) ErrorEnvelope {
	return ErrorEnvelope{
		Status:     "error",
		StatusCode: statusCode,
		Detail:     detail,
		ErrorCode:  errorCode,
		Timestamp:  time.Now().UTC(),
	}
}
