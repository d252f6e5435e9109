/*
Package ledger provides the core record management and derived-aggregate engine.

PURPOSE:
  This package contains the canonical model for sales transaction records and
  the algorithms the rest of the application depends on: computed-field
  derivation (total, balance amount), identity management (unique serial
  numbers, auto-assignment), filtering, and summary aggregation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: A single sales transaction (customer, item, quantity, rate, payments)
  - PaymentStatus: Two-value enum ("Done" / "Incomplete")
  - RowTag: Presentation classification used for table striping
  - BillLine: Stable positional projection consumed by the invoice renderer

DESIGN PRINCIPLES:
  1. Derivation at write time: Total and Amount are computed when a record is
     prepared, never re-checked on read
  2. Precision: Monetary math goes through decimal.Decimal; stored fields stay
     float64 to match the on-disk REAL columns
  3. Stable projections: Positional consumers get an explicit ordered tuple,
     so a struct field reorder cannot silently break them

SEE ALSO:
  - prepare.go: Validation and derivation engine
  - query.go: Filters and aggregation
  - store.go: Persistence interface
*/
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT STATUS
// =============================================================================

type PaymentStatus string

const (
	PaymentDone       PaymentStatus = "Done"
	PaymentIncomplete PaymentStatus = "Incomplete"
)

// ValidStatus reports whether s is one of the two accepted enum values.
// Comparison is case-insensitive; storage keeps the canonical casing.
func ValidStatus(s string) bool {
	return strings.EqualFold(s, string(PaymentDone)) || strings.EqualFold(s, string(PaymentIncomplete))
}

// =============================================================================
// RECORD - The sole entity: one sales transaction
// =============================================================================

// Record is a fully-derived sales transaction. Total and Amount are always
// computed from Quantity, Rate and AdvancePaid at write time (see prepare.go);
// they are never independently supplied by a caller.
type Record struct {
	SNo           int     `json:"sno"`
	Date          string  `json:"date"` // DD-MM-YYYY
	Time          string  `json:"time"` // HH:MM:SS, system-assigned at write
	CustomerName  string  `json:"customer_name"`
	Item          string  `json:"item"`
	Count         string  `json:"count"` // free text, tolerates non-numeric annotations
	Quantity      float64 `json:"quantity"`
	Rate          float64 `json:"rate"`
	Total         float64 `json:"total"`        // derived: quantity * rate
	AdvancePaid   float64 `json:"advance_paid"`
	Amount        float64 `json:"amount"`       // derived: max(total - advance_paid, 0)
	Phone         string  `json:"phone"`
	Location      string  `json:"location"`
	PaymentStatus string  `json:"payment_status"`
}

// BillLine returns the ordered field tuple consumed positionally by the
// invoice renderer:
//
//	[sno, date, time, customer, item, count, quantity, rate,
//	 total, advance_paid, amount, phone, location]
//
// The order is a published contract; do not reorder.
func (r Record) BillLine() []any {
	return []any{
		r.SNo, r.Date, r.Time, r.CustomerName, r.Item, r.Count,
		r.Quantity, r.Rate, r.Total, r.AdvancePaid, r.Amount,
		r.Phone, r.Location,
	}
}

// Derive recomputes the two derived fields in place from Quantity, Rate and
// AdvancePaid. Amount is clamped at zero: overpayment does not produce a
// negative balance, the excess is discarded.
func (r *Record) Derive() {
	total := decimal.NewFromFloat(r.Quantity).Mul(decimal.NewFromFloat(r.Rate))
	amount := total.Sub(decimal.NewFromFloat(r.AdvancePaid))
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	r.Total, _ = total.Float64()
	r.Amount, _ = amount.Float64()
}

// =============================================================================
// ROW TAG - Presentation classification
// =============================================================================

type RowTag string

const (
	TagIncomplete RowTag = "incomplete"
	TagEven       RowTag = "even"
	TagOdd        RowTag = "odd"
)

// ClassifyRow returns the tag for a record at position index within a result
// set: "incomplete" when the payment status says so, otherwise alternating
// even/odd striping.
func ClassifyRow(r Record, index int) RowTag {
	if strings.EqualFold(r.PaymentStatus, string(PaymentIncomplete)) {
		return TagIncomplete
	}
	if index%2 == 0 {
		return TagEven
	}
	return TagOdd
}
