/*
handlers.go - HTTP handlers for the ledger engine

PURPOSE:
  Exposes the record engine via REST. Handles HTTP request/response, JSON
  serialization and status mapping, and delegates everything else to the
  ledger package.

ENDPOINTS:
  Records:
    GET    /api/records              List with filters + footer summary
    POST   /api/records              Insert (auto serial number when omitted)
    GET    /api/records/{sno}        Fetch one
    PUT    /api/records/{sno}        Full replace (sno immutable)
    DELETE /api/records/{sno}        Delete permanently
    GET    /api/records/{sno}/bill   Positional invoice projection
    POST   /api/records/import       Bulk import batch

  Lookups:
    GET    /api/customers                   Distinct customer names (sorted)
    GET    /api/customers/{name}/details    Last known phone/location
    GET    /api/items                       Distinct item names
    GET    /api/items/rate?item=            Latest rate for an item

ERROR HANDLING:
  - 400: Invalid request body or parameters
  - 404: Missing record
  - 409: Duplicate serial number
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/tidebook/accounts-engine/ledger"
	"github.com/tidebook/accounts-engine/logger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    ledger.Store
	Preparer *ledger.Preparer
	Importer *ledger.Importer

	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a handler around the given store.
func NewHandler(store ledger.Store) *Handler {
	preparer := ledger.NewPreparer(store)
	return &Handler{
		Store:    store,
		Preparer: preparer,
		Importer: ledger.NewImporter(store, preparer),
		validate: validator.New(),
		log:      logger.WithComponent("api"),
	}
}

// =============================================================================
// RECORD ENDPOINTS
// =============================================================================

// ListRecords returns a filtered view with tags and footer summary.
// GET /api/records?customer=&item=&status=&month=&year=&limit=
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		records []ledger.Record
		err     error
	)
	if customer := q.Get("customer"); customer != "" {
		records, err = h.Store.ListByCustomer(ctx, customer)
	} else {
		records, err = h.Store.ListAll(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	records = ledger.FilterByPaymentStatus(records, q.Get("status"))
	records = ledger.FilterByItem(records, q.Get("item"))

	month, merr := strconv.Atoi(q.Get("month"))
	year, yerr := strconv.Atoi(q.Get("year"))
	if merr == nil && yerr == nil {
		records = ledger.FilterByMonth(records, month, year)
	}

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit >= 0 && limit < len(records) {
		records = records[:limit]
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Rows:    toRowViews(records),
		Summary: ledger.Aggregate(records),
	})
}

// CreateRecord inserts a new record.
// POST /api/records
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record", err)
		return
	}

	rec, err := h.Preparer.PrepareInsert(r.Context(), req.Raw())
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	if err := h.Store.Insert(r.Context(), rec); err != nil {
		h.writeLedgerError(w, err)
		return
	}

	h.log.Info().Int("sno", rec.SNo).Str("customer", rec.CustomerName).Msg("record added")
	writeJSON(w, http.StatusCreated, rec)
}

// GetRecord fetches one record by serial number.
// GET /api/records/{sno}
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	sno, ok := h.snoParam(w, r)
	if !ok {
		return
	}
	rec, err := h.Store.Get(r.Context(), sno)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateRecord replaces every field of an existing record except its serial
// number.
// PUT /api/records/{sno}
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	sno, ok := h.snoParam(w, r)
	if !ok {
		return
	}

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record", err)
		return
	}

	raw := req.Raw()
	raw.SNo = strconv.Itoa(sno) // the URL owns the identity

	rec, err := h.Preparer.PrepareUpdate(r.Context(), raw)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	if err := h.Store.Update(r.Context(), rec); err != nil {
		h.writeLedgerError(w, err)
		return
	}

	h.log.Info().Int("sno", rec.SNo).Msg("record updated")
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecord removes a record permanently.
// DELETE /api/records/{sno}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	sno, ok := h.snoParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), sno); err != nil {
		h.writeLedgerError(w, err)
		return
	}
	h.log.Info().Int("sno", sno).Msg("record deleted")
	w.WriteHeader(http.StatusNoContent)
}

// GetBill returns the invoice projection: the record plus its positional
// field tuple in renderer order.
// GET /api/records/{sno}/bill
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	sno, ok := h.snoParam(w, r)
	if !ok {
		return
	}
	rec, err := h.Store.Get(r.Context(), sno)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BillResponse{Record: rec, Line: rec.BillLine()})
}

// ImportRecords runs a bulk import batch.
// POST /api/records/import
func (h *Handler) ImportRecords(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid import batch", err)
		return
	}

	rows := make([]ledger.ImportRow, len(req.Rows))
	for i, m := range req.Rows {
		rows[i] = ledger.ImportRow(m)
	}

	report, err := h.Importer.Run(r.Context(), rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Import failed to start", err)
		return
	}

	h.log.Info().
		Str("batch", report.BatchID).
		Int("accepted", report.Accepted).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failed)).
		Msg("import batch complete")
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// LOOKUP ENDPOINTS
// =============================================================================

// ListCustomers returns the sorted distinct customer names.
// GET /api/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	names, err := h.Store.DistinctCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// GetCustomerDetails returns the last known phone and location for a
// customer, taken from their most recent record.
// GET /api/customers/{name}/details
func (h *Handler) GetCustomerDetails(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	records, err := h.Store.ListByCustomer(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up customer", err)
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "Customer not found", nil)
		return
	}
	last := records[len(records)-1]
	writeJSON(w, http.StatusOK, CustomerDetails{
		CustomerName: last.CustomerName,
		Phone:        last.Phone,
		Location:     last.Location,
	})
}

// ListItems returns the distinct non-empty item names.
// GET /api/items
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.DistinctItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItemRate returns the most recent rate recorded for an item.
// GET /api/items/rate?item=
func (h *Handler) GetItemRate(w http.ResponseWriter, r *http.Request) {
	item := strings.TrimSpace(r.URL.Query().Get("item"))
	if item == "" {
		writeError(w, http.StatusBadRequest, "Missing item parameter", nil)
		return
	}
	rate, found, err := h.Store.LatestRateForItem(r.Context(), item)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up rate", err)
		return
	}
	writeJSON(w, http.StatusOK, RateResponse{Item: item, Rate: rate, Found: found})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) snoParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	sno, err := strconv.Atoi(chi.URLParam(r, "sno"))
	if err != nil || sno <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid serial number", err)
		return 0, false
	}
	return sno, true
}

func (h *Handler) writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrDuplicateID):
		writeError(w, http.StatusConflict, "Duplicate serial number", err)
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, "Record not found", err)
	default:
		h.log.Error().Err(err).Msg("store operation failed")
		writeError(w, http.StatusInternalServerError, "Store operation failed", err)
	}
}
