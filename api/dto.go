/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers returned to clients

VALIDATION:
  Request DTOs carry validator/v10 struct tags; handlers run them through the
  shared validator before touching the preparer. The preparer stays forgiving
  about numerics — validation here only guards the enum and arity level.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Domain model
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/tidebook/accounts-engine/ledger"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// RecordRequest is the insert/update payload. Every field arrives as free
// text, exactly as the entry form produces it; the derivation engine owns
// parsing and defaulting.
type RecordRequest struct {
	SNo           string `json:"sno"`
	Date          string `json:"date"`
	CustomerName  string `json:"customer_name" validate:"required"`
	Item          string `json:"item"`
	Count         string `json:"count"`
	Quantity      string `json:"quantity"`
	Rate          string `json:"rate"`
	AdvancePaid   string `json:"advance_paid"`
	Phone         string `json:"phone"`
	Location      string `json:"location"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=Done Incomplete done incomplete"`
}

// Raw converts the payload into the preparer's input shape.
func (rr RecordRequest) Raw() ledger.RawRecord {
	return ledger.RawRecord{
		SNo:           rr.SNo,
		Date:          rr.Date,
		CustomerName:  rr.CustomerName,
		Item:          rr.Item,
		Count:         rr.Count,
		Quantity:      rr.Quantity,
		Rate:          rr.Rate,
		AdvancePaid:   rr.AdvancePaid,
		Phone:         rr.Phone,
		Location:      rr.Location,
		PaymentStatus: rr.PaymentStatus,
	}
}

// ImportRequest is the bulk-import payload: pre-split rows keyed by column.
type ImportRequest struct {
	Rows []map[string]string `json:"rows" validate:"required,min=1"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RowView is one browser table row: the record plus its presentation tag.
type RowView struct {
	ledger.Record
	Tag ledger.RowTag `json:"tag"`
}

// ListResponse carries a filtered view with the footer summary.
type ListResponse struct {
	Rows    []RowView      `json:"rows"`
	Summary ledger.Summary `json:"summary"`
}

// BillResponse is the invoice projection: the record and its positional
// field tuple in renderer order.
type BillResponse struct {
	Record ledger.Record `json:"record"`
	Line   []any         `json:"line"`
}

// CustomerDetails is the last known contact data for a customer.
type CustomerDetails struct {
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
}

// RateResponse is the latest-rate lookup result.
type RateResponse struct {
	Item  string  `json:"item"`
	Rate  float64 `json:"rate"`
	Found bool    `json:"found"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// HELPERS
// =============================================================================

func toRowViews(records []ledger.Record) []RowView {
	views := make([]RowView, len(records))
	for i, r := range records {
		views[i] = RowView{Record: r, Tag: ledger.ClassifyRow(r, i)}
	}
	return views
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
