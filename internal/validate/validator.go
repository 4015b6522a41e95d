package validate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/receiptscan/receipt-ocr-service/internal/models"
)

// Validator cross-checks the arithmetic of a normalized receipt. Findings are
// warnings only; a receipt that does not add up is still returned to the
// caller, flagged for review.
type Validator struct {
	tolerance decimal.Decimal // absolute tolerance per comparison
}

// New creates a validator with the default one-cent tolerance.
func New() *Validator {
	return &Validator{tolerance: decimal.NewFromFloat(0.01)}
}

// Validate runs all consistency checks over the receipt.
func (v *Validator) Validate(receipt *models.Receipt) *models.ValidationReport {
	report := &models.ValidationReport{
		Consistent: true,
		Warnings:   []models.ValidationWarning{},
	}

	v.checkTotal(receipt, report)
	v.checkItemSum(receipt, report)
	v.checkItems(receipt, report)

	report.Consistent = len(report.Warnings) == 0
	return report
}

// checkTotal verifies subtotal + tax matches the total, when both parts are present.
func (v *Validator) checkTotal(receipt *models.Receipt, report *models.ValidationReport) {
	tx := receipt.Transaction
	if tx.Subtotal == nil || tx.Tax == nil || tx.Total.IsZero() {
		return
	}

	expected := tx.Subtotal.Add(*tx.Tax)
	if tx.Total.Sub(expected).Abs().GreaterThan(v.tolerance) {
		report.Warnings = append(report.Warnings, models.ValidationWarning{
			Field:    "transaction.total",
			Code:     "total_mismatch",
			Expected: expected.String(),
			Actual:   tx.Total.String(),
			Message:  "total does not match subtotal plus tax",
		})
	}
}

// checkItemSum verifies the line items add up to the subtotal (or, without a
// subtotal, to the total).
func (v *Validator) checkItemSum(receipt *models.Receipt, report *models.ValidationReport) {
	if len(receipt.Items) == 0 {
		return
	}

	sum := decimal.Zero
	for _, item := range receipt.Items {
		sum = sum.Add(item.TotalPrice)
	}

	reference := receipt.Transaction.Total
	field := "transaction.total"
	if receipt.Transaction.Subtotal != nil {
		reference = *receipt.Transaction.Subtotal
		field = "transaction.subtotal"
	}
	if reference.IsZero() {
		return
	}

	if sum.Sub(reference).Abs().GreaterThan(v.tolerance) {
		report.Warnings = append(report.Warnings, models.ValidationWarning{
			Field:    field,
			Code:     "item_sum_mismatch",
			Expected: reference.String(),
			Actual:   sum.String(),
			Message:  "line items do not add up to the receipt amount",
		})
	}
}

// checkItems verifies quantity times unit price against each item's total.
func (v *Validator) checkItems(receipt *models.Receipt, report *models.ValidationReport) {
	for i, item := range receipt.Items {
		if item.Quantity == nil || item.UnitPrice == nil {
			continue
		}

		expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(*item.Quantity)))
		if item.TotalPrice.Sub(expected).Abs().GreaterThan(v.tolerance) {
			report.Warnings = append(report.Warnings, models.ValidationWarning{
				Field:    fmt.Sprintf("items[%d].total_price", i),
				Code:     "item_price_mismatch",
				Expected: expected.String(),
				Actual:   item.TotalPrice.String(),
				Message:  "item total does not match quantity times unit price",
			})
		}
	}
}
