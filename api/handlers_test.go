/*
handlers_test.go - Unit tests for API handlers

Tests the HTTP surface end to end against an in-memory SQLite store:
record CRUD, filters with footer summary, the positional bill projection,
and the bulk import endpoint.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidebook/accounts-engine/ledger"
	"github.com/tidebook/accounts-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(NewRouter(NewHandler(store)))
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createRecord(t *testing.T, srv *httptest.Server, req RecordRequest) ledger.Record {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/records", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[ledger.Record](t, resp)
}

// =============================================================================
// RECORD CRUD
// =============================================================================

func TestCreateRecord_AutoAssignsSerialAndDerives(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := createRecord(t, srv, RecordRequest{
		CustomerName: "Ravi", Item: "Tiger Prawn",
		Quantity: "12.5", Rate: "240", AdvancePaid: "500",
		PaymentStatus: "Done",
	})

	assert.Equal(t, 1, rec.SNo)
	assert.Equal(t, 3000.0, rec.Total)
	assert.Equal(t, 2500.0, rec.Amount)
	assert.NotEmpty(t, rec.Date)
	assert.NotEmpty(t, rec.Time)
}

func TestCreateRecord_DuplicateSerialConflicts(t *testing.T) {
	srv, _ := newTestServer(t)

	createRecord(t, srv, RecordRequest{SNo: "5", CustomerName: "Ravi"})

	resp := postJSON(t, srv.URL+"/api/records", RecordRequest{SNo: "5", CustomerName: "Suresh"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateRecord_RejectsUnknownPaymentStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/records", RecordRequest{
		CustomerName: "Ravi", PaymentStatus: "Pending",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateRecord_RederivesAndKeepsSerial(t *testing.T) {
	srv, _ := newTestServer(t)
	createRecord(t, srv, RecordRequest{CustomerName: "Ravi", Quantity: "2", Rate: "100"})

	body, _ := json.Marshal(RecordRequest{
		CustomerName: "Ravi", Quantity: "3", Rate: "100", AdvancePaid: "50",
		PaymentStatus: "Incomplete",
	})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/records/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rec := decodeBody[ledger.Record](t, resp)
	assert.Equal(t, 1, rec.SNo)
	assert.Equal(t, 300.0, rec.Total)
	assert.Equal(t, 250.0, rec.Amount)
}

func TestUpdateRecord_MissingIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(RecordRequest{CustomerName: "Ghost"})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/records/42", bytes.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteRecord_ThenGetIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	createRecord(t, srv, RecordRequest{CustomerName: "Ravi"})

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/records/1", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/api/records/1")
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

// =============================================================================
// LISTING, FILTERS, SUMMARY
// =============================================================================

func TestListRecords_TagsAndSummary(t *testing.T) {
	srv, _ := newTestServer(t)

	createRecord(t, srv, RecordRequest{CustomerName: "A", Quantity: "2", Rate: "5", PaymentStatus: "Done"})
	createRecord(t, srv, RecordRequest{CustomerName: "B", Quantity: "1", Rate: "5", PaymentStatus: "Incomplete"})

	resp, err := http.Get(srv.URL + "/api/records")
	require.NoError(t, err)
	list := decodeBody[ListResponse](t, resp)

	require.Len(t, list.Rows, 2)
	assert.Equal(t, ledger.TagEven, list.Rows[0].Tag)
	assert.Equal(t, ledger.TagIncomplete, list.Rows[1].Tag)
	assert.Equal(t, 2, list.Summary.Rows)
	assert.Equal(t, 3.0, list.Summary.Quantity)
	assert.Equal(t, 15.0, list.Summary.Total)
}

func TestListRecords_StatusAndMonthFilters(t *testing.T) {
	srv, _ := newTestServer(t)

	createRecord(t, srv, RecordRequest{CustomerName: "A", Date: "15-06-2024", PaymentStatus: "Done"})
	createRecord(t, srv, RecordRequest{CustomerName: "B", Date: "15-07-2024", PaymentStatus: "Incomplete"})

	resp, err := http.Get(srv.URL + "/api/records?status=done")
	require.NoError(t, err)
	list := decodeBody[ListResponse](t, resp)
	require.Len(t, list.Rows, 1)
	assert.Equal(t, "A", list.Rows[0].CustomerName)

	resp, err = http.Get(srv.URL + "/api/records?month=7&year=2024")
	require.NoError(t, err)
	list = decodeBody[ListResponse](t, resp)
	require.Len(t, list.Rows, 1)
	assert.Equal(t, "B", list.Rows[0].CustomerName)
}

func TestListRecords_Limit(t *testing.T) {
	srv, _ := newTestServer(t)
	for i := 0; i < 5; i++ {
		createRecord(t, srv, RecordRequest{CustomerName: fmt.Sprintf("C%d", i)})
	}

	resp, err := http.Get(srv.URL + "/api/records?limit=3")
	require.NoError(t, err)
	list := decodeBody[ListResponse](t, resp)
	assert.Len(t, list.Rows, 3)
	assert.Equal(t, 3, list.Summary.Rows)
}

// =============================================================================
// BILL PROJECTION
// =============================================================================

func TestGetBill_PositionalLine(t *testing.T) {
	srv, _ := newTestServer(t)
	createRecord(t, srv, RecordRequest{
		SNo: "9", CustomerName: "Ravi", Item: "Tiger Prawn", Count: "40",
		Quantity: "12.5", Rate: "240", AdvancePaid: "500",
		Phone: "98400", Location: "Nellore", PaymentStatus: "Done",
	})

	resp, err := http.Get(srv.URL + "/api/records/9/bill")
	require.NoError(t, err)
	bill := decodeBody[BillResponse](t, resp)

	require.Len(t, bill.Line, 13)
	// JSON numbers decode as float64; spot-check the contract positions.
	assert.Equal(t, 9.0, bill.Line[0])
	assert.Equal(t, "Ravi", bill.Line[3])
	assert.Equal(t, "40", bill.Line[5])
	assert.Equal(t, 3000.0, bill.Line[8])
	assert.Equal(t, 2500.0, bill.Line[10])
	assert.Equal(t, "Nellore", bill.Line[12])
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImportRecords_BatchReport(t *testing.T) {
	srv, store := newTestServer(t)
	createRecord(t, srv, RecordRequest{SNo: "5", CustomerName: "Existing"})

	resp := postJSON(t, srv.URL+"/api/records/import", ImportRequest{Rows: []map[string]string{
		{"CUSTOMER": "A", "QUANTITY": "1", "RATE": "10"},
		{"CUSTOMER": "  "},
		{"CUSTOMER": "B", "QUANTITY": "2", "RATE": "10"},
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decodeBody[ledger.ImportReport](t, resp)

	assert.Equal(t, 2, report.Accepted)
	assert.Len(t, report.Skipped, 1)
	assert.NotEmpty(t, report.BatchID)

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 6, records[1].SNo)
	assert.Equal(t, 7, records[2].SNo)
	assert.Equal(t, "Incomplete", records[1].PaymentStatus)
}

// =============================================================================
// LOOKUPS
// =============================================================================

func TestCustomerAndItemLookups(t *testing.T) {
	srv, _ := newTestServer(t)

	createRecord(t, srv, RecordRequest{
		CustomerName: "Ravi", Item: "Tiger Prawn", Rate: "200",
		Phone: "90000", Location: "Ongole",
	})
	createRecord(t, srv, RecordRequest{
		CustomerName: "Ravi", Item: "Tiger Prawn", Rate: "240",
		Phone: "98400", Location: "Nellore",
	})
	createRecord(t, srv, RecordRequest{CustomerName: "Suresh", Item: "White Prawn"})

	resp, err := http.Get(srv.URL + "/api/customers")
	require.NoError(t, err)
	names := decodeBody[[]string](t, resp)
	assert.Equal(t, []string{"Ravi", "Suresh"}, names)

	resp, err = http.Get(srv.URL + "/api/customers/Ravi/details")
	require.NoError(t, err)
	details := decodeBody[CustomerDetails](t, resp)
	assert.Equal(t, "98400", details.Phone)
	assert.Equal(t, "Nellore", details.Location)

	resp, err = http.Get(srv.URL + "/api/items/rate?item=Tiger+Prawn")
	require.NoError(t, err)
	rate := decodeBody[RateResponse](t, resp)
	assert.True(t, rate.Found)
	assert.Equal(t, 240.0, rate.Rate)
}
