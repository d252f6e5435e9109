/*
importer.go - Bulk import engine

PURPOSE:
  Accepts a sequence of candidate rows (column-name to value maps, the shape a
  spreadsheet or CSV parser produces) and runs each through the same
  validation/derivation as manual entry.

BATCH SEMANTICS:
  - A row with a blank or whitespace-only customer name is silently skipped;
    it is excluded from the batch, not an error
  - Accepted rows receive consecutive serial numbers starting at
    max(existing)+1, in input order
  - Payment status defaults to "Incomplete" for imported rows
  - Each row commits individually (at-most-once per row). A failure partway
    through leaves prior rows in the ledger; the failed row is reported in the
    result and the batch continues with the remaining rows.

COLUMN NAMES:
  Keys are matched case-insensitively: CUSTOMER, DATE, ITEM, COUNT, QUANTITY,
  RATE, ADVANCE, PHONE, LOCATION, PAYMENT.

SEE ALSO:
  - prepare.go: Shared derivation
  - api/handlers.go: HTTP import endpoint
*/
package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ImportRow is one candidate row keyed by column name.
type ImportRow map[string]string

// RowIssue explains why a row was skipped or failed, 0-based input index.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportReport is the outcome of one batch.
type ImportReport struct {
	BatchID  string     `json:"batch_id"`
	Accepted int        `json:"accepted"`
	Skipped  []RowIssue `json:"skipped,omitempty"`
	Failed   []RowIssue `json:"failed,omitempty"`
}

// Importer feeds candidate rows through the preparer into the store.
type Importer struct {
	store    Store
	preparer *Preparer
}

func NewImporter(store Store, preparer *Preparer) *Importer {
	return &Importer{store: store, preparer: preparer}
}

// Run imports the batch. The returned error only reports inability to start
// (store unreachable); per-row outcomes live in the report.
func (im *Importer) Run(ctx context.Context, rows []ImportRow) (ImportReport, error) {
	report := ImportReport{BatchID: uuid.NewString()}

	next, err := im.store.NextSNo(ctx)
	if err != nil {
		return report, err
	}

	for i, row := range rows {
		customer := strings.TrimSpace(column(row, "CUSTOMER"))
		if customer == "" {
			report.Skipped = append(report.Skipped, RowIssue{Row: i, Reason: "blank customer name"})
			continue
		}

		status := strings.TrimSpace(column(row, "PAYMENT"))
		if status == "" {
			status = string(PaymentIncomplete)
		}

		rec := im.preparer.build(next, RawRecord{
			Date:          column(row, "DATE"),
			CustomerName:  customer,
			Item:          column(row, "ITEM"),
			Count:         column(row, "COUNT"),
			Quantity:      column(row, "QUANTITY"),
			Rate:          column(row, "RATE"),
			AdvancePaid:   column(row, "ADVANCE"),
			Phone:         column(row, "PHONE"),
			Location:      column(row, "LOCATION"),
			PaymentStatus: status,
		})

		if err := im.store.Insert(ctx, rec); err != nil {
			report.Failed = append(report.Failed, RowIssue{Row: i, Reason: err.Error()})
			continue
		}
		report.Accepted++
		next++
	}

	return report, nil
}

func column(row ImportRow, name string) string {
	if v, ok := row[name]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(strings.TrimSpace(k), name) {
			return v
		}
	}
	return ""
}
