package ai

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/receiptscan/receipt-ocr-service/internal/models"
)

// Normalize converts a loosely-typed parsed reply into a Receipt. It is total
// over its input: missing keys, nulls and wrong-shaped nested values all fall
// back to the documented defaults instead of failing. Identical input always
// yields an identical Receipt.
func Normalize(parsed map[string]interface{}, rawText string) *models.Receipt {
	merchant := asObject(parsed["merchant"])
	transaction := asObject(parsed["transaction"])

	receipt := &models.Receipt{
		Merchant: models.Merchant{
			Name:    stringOrDefault(merchant["name"], "Unknown Store"),
			Address: optionalString(merchant["address"]),
			Phone:   optionalString(merchant["phone"]),
		},
		Transaction: models.Transaction{
			Date:          optionalString(transaction["date"]),
			Time:          optionalString(transaction["time"]),
			Subtotal:      safeDecimal(transaction["subtotal"]),
			Tax:           safeDecimal(transaction["tax"]),
			Total:         requiredDecimal(transaction["total"]),
			PaymentMethod: optionalString(transaction["payment_method"]),
		},
		Items:   make([]models.LineItem, 0),
		RawText: rawText,
	}

	if items, ok := parsed["items"].([]interface{}); ok {
		for _, raw := range items {
			item := asObject(raw)
			if item == nil {
				// A non-object entry carries nothing usable; drop it rather
				// than fabricate an all-default line item.
				continue
			}
			receipt.Items = append(receipt.Items, models.LineItem{
				Description: stringOrDefault(item["description"], "Unknown Item"),
				Quantity:    optionalInt(item["quantity"]),
				UnitPrice:   safeDecimal(item["unit_price"]),
				TotalPrice:  requiredDecimal(item["total_price"]),
			})
		}
	}

	return receipt
}

// asObject returns v as a JSON object, or nil when it is anything else.
// Indexing a nil map is safe, so callers can chase keys without checking.
func asObject(v interface{}) map[string]interface{} {
	obj, _ := v.(map[string]interface{})
	return obj
}

// optionalString yields nil for missing/null/empty values and a best-effort
// stringification for present scalars of the wrong type.
func optionalString(v interface{}) *string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return &val
	case json.Number:
		s := string(val)
		return &s
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(val)
		return &s
	default:
		// Objects and arrays have no meaningful string form.
		return nil
	}
}

func stringOrDefault(v interface{}, def string) string {
	if s := optionalString(v); s != nil {
		return *s
	}
	return def
}

// safeDecimal attempts an exact decimal from any JSON value intended as money.
// Null, missing and non-numeric values yield nil rather than an error. Strings
// may carry thousands separators ("3,965.34").
func safeDecimal(v interface{}) *decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return nil
	case json.Number:
		if d, err := decimal.NewFromString(string(val)); err == nil {
			return &d
		}
		return nil
	case float64:
		d := decimal.NewFromFloat(val)
		return &d
	case int:
		d := decimal.NewFromInt(int64(val))
		return &d
	case int64:
		d := decimal.NewFromInt(val)
		return &d
	case string:
		cleaned := strings.ReplaceAll(val, ",", "")
		if cleaned == "" {
			return nil
		}
		if d, err := decimal.NewFromString(cleaned); err == nil {
			return &d
		}
		return nil
	default:
		return nil
	}
}

// requiredDecimal is safeDecimal for fields that must carry a value: coerce
// failures and absences become zero instead of nil.
func requiredDecimal(v interface{}) decimal.Decimal {
	if d := safeDecimal(v); d != nil {
		return *d
	}
	return decimal.Zero
}

// optionalInt coerces quantity-like values, truncating fractions. Absent or
// unreadable values stay nil; the normalizer never invents a quantity of 1.
func optionalInt(v interface{}) *int {
	d := safeDecimal(v)
	if d == nil {
		return nil
	}
	i := int(d.IntPart())
	return &i
}
