/*
query.go - Filter predicates and summary aggregation

PURPOSE:
  Produces the filtered views and numeric summaries every presentation surface
  (browser table, search, month view, footer totals) consumes.

FILTERING POLICY:
  - Payment status: exact case-insensitive match; blank means "no filter"
  - Item: case-insensitive substring match; blank means "no filter"
  - Month: textual substring match against the stored DD-MM-YYYY date
    ("-MM-YYYY"). This is a deliberate, documented constraint of the string
    date format: existing database files keep working without migration.

AGGREGATION POLICY:
  Defensive. A malformed positional cell (wrong arity, non-numeric value)
  contributes zero to its sum; one bad row never aborts the whole query.

SEE ALSO:
  - types.go: ClassifyRow (row tags for striping)
*/
package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FILTERS
// =============================================================================

// FilterByPaymentStatus keeps records whose status equals status,
// case-insensitively. A blank status means no filter.
func FilterByPaymentStatus(records []Record, status string) []Record {
	status = strings.TrimSpace(status)
	if status == "" {
		return records
	}
	var out []Record
	for _, r := range records {
		if strings.EqualFold(r.PaymentStatus, status) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByItem keeps records whose item contains text, case-insensitively.
// Blank text means no filter.
func FilterByItem(records []Record, text string) []Record {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return records
	}
	var out []Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Item), text) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMonth keeps records whose textual date contains "-MM-YYYY".
func FilterByMonth(records []Record, month, year int) []Record {
	target := fmt.Sprintf("-%02d-%d", month, year)
	var out []Record
	for _, r := range records {
		if strings.Contains(r.Date, target) {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// SUMMARY AGGREGATION
// =============================================================================

// Summary is the footer block: row count plus the four monetary sums.
type Summary struct {
	Rows        int     `json:"rows"`
	Quantity    float64 `json:"quantity"`
	Total       float64 `json:"total"`
	AdvancePaid float64 `json:"advance_paid"`
	Amount      float64 `json:"amount"`
}

// Aggregate sums the derived fields of a record set.
func Aggregate(records []Record) Summary {
	lines := make([][]any, len(records))
	for i, r := range records {
		lines[i] = r.BillLine()
	}
	return SummarizeLines(lines)
}

// SummarizeLines aggregates positional bill lines. Positions follow the
// BillLine contract: quantity=6, total=8, advance_paid=9, amount=10. A line
// too short or a cell that is not numeric contributes zero for that field.
func SummarizeLines(lines [][]any) Summary {
	var qty, total, adv, amount decimal.Decimal
	for _, line := range lines {
		qty = qty.Add(cellValue(line, 6))
		total = total.Add(cellValue(line, 8))
		adv = adv.Add(cellValue(line, 9))
		amount = amount.Add(cellValue(line, 10))
	}
	s := Summary{Rows: len(lines)}
	s.Quantity, _ = qty.Float64()
	s.Total, _ = total.Float64()
	s.AdvancePaid, _ = adv.Float64()
	s.Amount, _ = amount.Float64()
	return s
}

func cellValue(line []any, idx int) decimal.Decimal {
	if idx >= len(line) {
		return decimal.Zero
	}
	switch v := line[idx].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
