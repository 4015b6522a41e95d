package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// ChatProvider sends a prompt to a text-generation model and returns its raw
// reply text. Implementations must keep temperature at or below 0.1: the
// downstream parsing assumes near-deterministic response structure.
type ChatProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}

// StructuringError wraps any failure between sending the prompt and obtaining
// a parsed JSON object from the model's reply.
type StructuringError struct {
	Err error
}

func (e *StructuringError) Error() string {
	return fmt.Sprintf("receipt structuring failed: %v", e.Err)
}

func (e *StructuringError) Unwrap() error {
	return e.Err
}

// Structurer converts raw extracted text into a loosely-typed JSON object by
// prompting a chat model and decoding its reply.
type Structurer struct {
	provider ChatProvider
}

// NewStructurer creates a structurer on top of the given chat provider.
func NewStructurer(provider ChatProvider) *Structurer {
	return &Structurer{provider: provider}
}

// Structure prompts the model with the raw receipt text and returns the
// decoded JSON object. A single attempt; failures propagate as
// *StructuringError.
func (s *Structurer) Structure(ctx context.Context, rawText string) (map[string]interface{}, error) {
	prompt := buildPrompt(rawText)

	reply, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		return nil, &StructuringError{Err: err}
	}

	cleaned := stripCodeFences(reply)

	// UseNumber keeps money amounts as their exact decimal digit strings
	// instead of rounding them through float64.
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.UseNumber()

	var parsed map[string]interface{}
	if err := decoder.Decode(&parsed); err != nil {
		// Keep the bad reply in the logs for offline diagnosis; it never
		// reaches the caller.
		slog.Error("structuring reply is not valid JSON", "error", err, "reply", cleaned)
		return nil, &StructuringError{Err: fmt.Errorf("model reply is not valid JSON: %w", err)}
	}

	return parsed, nil
}

// buildPrompt creates the fixed structuring instruction for the model. The
// schema here must stay in lockstep with the normalizer's field names.
func buildPrompt(rawText string) string {
	return fmt.Sprintf(`You are an expert at parsing receipt data. Analyze the following raw OCR text from a receipt and extract structured information.

Raw OCR Text:
%s

Extract and return ONLY a valid JSON object with the following structure. Do not include any other text or formatting:

{
    "merchant": {
        "name": "Store Name",
        "address": "Store Address if available",
        "phone": "Phone number if available"
    },
    "transaction": {
        "date": "Transaction date if available (YYYY-MM-DD format)",
        "time": "Transaction time if available (HH:MM format)",
        "subtotal": 0.00,
        "tax": 0.00,
        "total": 0.00,
        "payment_method": "Payment method if available"
    },
    "items": [
        {
            "description": "Item description",
            "quantity": 1,
            "unit_price": 0.00,
            "total_price": 0.00
        }
    ]
}

Important guidelines:
- Extract all line items with their descriptions and prices
- Use null for missing information rather than empty strings
- Ensure all prices and quantities are numeric values (not strings)
- If quantity is not specified, assume 1
- Be as accurate as possible with item descriptions
- Total should match the final amount paid
- Your response must be valid JSON only, no other text

DO NOT OUTPUT ANYTHING OTHER THAN VALID JSON.`, rawText)
}

// stripCodeFences removes markdown code-fence wrapping from a model reply.
// Models wrap JSON in fences no matter how firmly the prompt forbids it. Only
// the outer fence is trimmed; backticks inside string values stay intact.
func stripCodeFences(reply string) string {
	cleaned := strings.TrimSpace(reply)
	fence := "```"
	if strings.HasPrefix(cleaned, fence) {
		cleaned = strings.TrimPrefix(cleaned, fence+"json")
		cleaned = strings.TrimPrefix(cleaned, fence)
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), fence)
	}
	return strings.TrimSpace(cleaned)
}
