package ai

import (
	"encoding/json"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/receiptscan/receipt-ocr-service/internal/models"
)

func TestAI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AI Suite")
}

// decode mirrors the structurer's decoding so tests feed Normalize the same
// value shapes it sees in production.
func decode(jsonText string) map[string]interface{} {
	decoder := json.NewDecoder(strings.NewReader(jsonText))
	decoder.UseNumber()
	var parsed map[string]interface{}
	Expect(decoder.Decode(&parsed)).To(Succeed())
	return parsed
}

var _ = Describe("Normalize", func() {
	When("given a complete well-formed reply", func() {
		It("maps every field through", func() {
			parsed := decode(`{
				"merchant": {"name": "STORE A", "address": "1 Main St", "phone": "555-0100"},
				"transaction": {
					"date": "2024-03-01", "time": "12:30",
					"subtotal": 16.50, "tax": 1.48, "total": 17.98,
					"payment_method": "VISA"
				},
				"items": [
					{"description": "Milk", "quantity": 2, "unit_price": 3.25, "total_price": 6.50},
					{"description": "Bread", "quantity": 1, "unit_price": 10.00, "total_price": 10.00}
				]
			}`)

			r := Normalize(parsed, "raw text")

			Expect(r.Merchant.Name).To(Equal("STORE A"))
			Expect(*r.Merchant.Address).To(Equal("1 Main St"))
			Expect(*r.Merchant.Phone).To(Equal("555-0100"))
			Expect(*r.Transaction.Date).To(Equal("2024-03-01"))
			Expect(r.Transaction.Total.Equal(decimal.RequireFromString("17.98"))).To(BeTrue())
			Expect(r.Transaction.Subtotal.Equal(decimal.RequireFromString("16.50"))).To(BeTrue())
			Expect(r.Items).To(HaveLen(2))
			Expect(r.Items[0].Description).To(Equal("Milk"))
			Expect(*r.Items[0].Quantity).To(Equal(2))
			Expect(r.Items[1].TotalPrice.Equal(decimal.RequireFromString("10.00"))).To(BeTrue())
			Expect(r.RawText).To(Equal("raw text"))
		})

		It("preserves money digits exactly", func() {
			parsed := decode(`{"transaction": {"total": 17.98}}`)
			r := Normalize(parsed, "")
			Expect(r.Transaction.Total.String()).To(Equal("17.98"))
		})
	})

	When("given an empty reply", func() {
		var r *models.Receipt

		BeforeEach(func() {
			r = Normalize(map[string]interface{}{}, "some text")
		})

		It("falls back to the documented defaults", func() {
			Expect(r.Merchant.Name).To(Equal("Unknown Store"))
			Expect(r.Merchant.Address).To(BeNil())
			Expect(r.Transaction.Total.IsZero()).To(BeTrue())
			Expect(r.Transaction.Subtotal).To(BeNil())
			Expect(r.Transaction.Tax).To(BeNil())
		})

		It("yields an empty, non-nil items slice", func() {
			Expect(r.Items).NotTo(BeNil())
			Expect(r.Items).To(BeEmpty())
		})
	})

	When("values carry the wrong type", func() {
		It("stringifies scalar values in string positions", func() {
			parsed := decode(`{"merchant": {"name": 742, "phone": true}}`)
			r := Normalize(parsed, "")
			Expect(r.Merchant.Name).To(Equal("742"))
			Expect(*r.Merchant.Phone).To(Equal("true"))
		})

		It("drops objects and arrays in string positions", func() {
			parsed := decode(`{"merchant": {"name": {"nested": 1}, "address": [1, 2]}}`)
			r := Normalize(parsed, "")
			Expect(r.Merchant.Name).To(Equal("Unknown Store"))
			Expect(r.Merchant.Address).To(BeNil())
		})

		It("parses money given as a string with thousands separators", func() {
			parsed := decode(`{"transaction": {"total": "3,965.34"}}`)
			r := Normalize(parsed, "")
			Expect(r.Transaction.Total.String()).To(Equal("3965.34"))
		})

		It("coerces unparseable optional money to nil and required money to zero", func() {
			parsed := decode(`{"transaction": {"subtotal": "n/a", "tax": {}, "total": "free"}}`)
			r := Normalize(parsed, "")
			Expect(r.Transaction.Subtotal).To(BeNil())
			Expect(r.Transaction.Tax).To(BeNil())
			Expect(r.Transaction.Total.IsZero()).To(BeTrue())
		})

		It("treats a non-object transaction as absent", func() {
			parsed := decode(`{"transaction": "cash only"}`)
			r := Normalize(parsed, "")
			Expect(r.Transaction.Total.IsZero()).To(BeTrue())
			Expect(r.Transaction.Date).To(BeNil())
		})
	})

	When("item entries are malformed", func() {
		It("skips non-object entries and keeps the rest", func() {
			parsed := decode(`{"items": ["oops", 42, {"description": "Eggs", "total_price": 4.99}]}`)
			r := Normalize(parsed, "")
			Expect(r.Items).To(HaveLen(1))
			Expect(r.Items[0].Description).To(Equal("Eggs"))
		})

		It("defaults a nameless item and leaves its quantity nil", func() {
			parsed := decode(`{"items": [{"total_price": 2.00}]}`)
			r := Normalize(parsed, "")
			Expect(r.Items[0].Description).To(Equal("Unknown Item"))
			Expect(r.Items[0].Quantity).To(BeNil())
			Expect(r.Items[0].UnitPrice).To(BeNil())
		})

		It("truncates a fractional quantity", func() {
			parsed := decode(`{"items": [{"description": "Bulk rice", "quantity": 2.7, "total_price": 5.40}]}`)
			r := Normalize(parsed, "")
			Expect(*r.Items[0].Quantity).To(Equal(2))
		})
	})

	When("run twice on the same input", func() {
		It("is deterministic", func() {
			parsed := decode(`{
				"merchant": {"name": "STORE A"},
				"transaction": {"total": 17.98},
				"items": [{"description": "Milk", "total_price": 6.50}]
			}`)
			first := Normalize(parsed, "raw")
			second := Normalize(parsed, "raw")
			Expect(second).To(Equal(first))
		})
	})
})
