package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidebook/accounts-engine/ledger"
	"github.com/tidebook/accounts-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(sno int, customer string) ledger.Record {
	return ledger.Record{
		SNo: sno, Date: "15-06-2024", Time: "10:00:00",
		CustomerName: customer, Item: "Tiger Prawn", Count: "40",
		Quantity: 10, Rate: 200, Total: 2000, AdvancePaid: 500, Amount: 1500,
		Phone: "98400", Location: "Nellore", PaymentStatus: "Done",
	}
}

// =============================================================================
// INSERT / GET
// =============================================================================

func TestInsertAndGet_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := record(1, "Ravi")
	require.NoError(t, store.Insert(ctx, want))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInsert_DuplicateSerialRejected_StoreUnchanged(t *testing.T) {
	// GIVEN: A record with sno 1
	// WHEN: Inserting another record with sno 1
	// THEN: DuplicateIDError, and the original record is untouched

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record(1, "Ravi")))

	err := store.Insert(ctx, record(1, "Someone Else"))
	assert.Error(t, err)
	var dup *ledger.DuplicateIDError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.SNo)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.CustomerName)
}

func TestGet_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), 99)
	assert.True(t, ledger.IsNotFound(err))
}

// =============================================================================
// ORDERED LISTING
// =============================================================================

func TestListAll_AscendingSerialOrder(t *testing.T) {
	// Records inserted {3, 1, 2} come back [1, 2, 3].

	store := newTestStore(t)
	ctx := context.Background()

	for _, sno := range []int{3, 1, 2} {
		require.NoError(t, store.Insert(ctx, record(sno, "Ravi")))
	}

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 1, records[0].SNo)
	assert.Equal(t, 2, records[1].SNo)
	assert.Equal(t, 3, records[2].SNo)
}

func TestListByCustomer_CaseInsensitiveSubstring(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record(1, "Ravi Kumar")))
	require.NoError(t, store.Insert(ctx, record(2, "Suresh")))
	require.NoError(t, store.Insert(ctx, record(3, "RAVINDRA")))

	matches, err := store.ListByCustomer(ctx, "ravi")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].SNo)
	assert.Equal(t, 3, matches[1].SNo)
}

// =============================================================================
// UPDATE / DELETE
// =============================================================================

func TestUpdate_ReplacesAllFieldsExceptSerial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record(1, "Ravi")))

	updated := record(1, "Ravi")
	updated.Item = "White Prawn"
	updated.Rate = 180
	updated.PaymentStatus = "Incomplete"
	require.NoError(t, store.Update(ctx, updated))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdate_Missing_StoreUnchanged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Update(ctx, record(42, "Ghost"))
	assert.True(t, ledger.IsNotFound(err))

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDelete_RemovesOnlyTarget(t *testing.T) {
	// Deleting sno 2 leaves 1 and 3 retrievable.

	store := newTestStore(t)
	ctx := context.Background()

	for _, sno := range []int{1, 2, 3} {
		require.NoError(t, store.Insert(ctx, record(sno, "Ravi")))
	}

	require.NoError(t, store.Delete(ctx, 2))

	_, err := store.Get(ctx, 2)
	assert.True(t, ledger.IsNotFound(err))

	_, err = store.Get(ctx, 1)
	assert.NoError(t, err)
	_, err = store.Get(ctx, 3)
	assert.NoError(t, err)
}

func TestDelete_Missing(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), 42)
	assert.True(t, ledger.IsNotFound(err))
}

// =============================================================================
// LOOKUPS
// =============================================================================

func TestDistinctCustomers_Sorted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record(1, "Suresh")))
	require.NoError(t, store.Insert(ctx, record(2, "Ravi")))
	require.NoError(t, store.Insert(ctx, record(3, "Ravi")))

	names, err := store.DistinctCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ravi", "Suresh"}, names)
}

func TestDistinctItems_SkipsEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := record(1, "Ravi")
	a.Item = "Tiger Prawn"
	b := record(2, "Ravi")
	b.Item = ""
	c := record(3, "Ravi")
	c.Item = "White Prawn"
	for _, r := range []ledger.Record{a, b, c} {
		require.NoError(t, store.Insert(ctx, r))
	}

	items, err := store.DistinctItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tiger Prawn", "White Prawn"}, items)
}

func TestLatestRateForItem_HighestSerialWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := record(1, "Ravi")
	a.Rate = 200
	b := record(5, "Suresh")
	b.Rate = 240
	require.NoError(t, store.Insert(ctx, a))
	require.NoError(t, store.Insert(ctx, b))

	rate, ok, err := store.LatestRateForItem(ctx, "Tiger Prawn")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 240.0, rate)

	_, ok, err = store.LatestRateForItem(ctx, "Crab")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextSNo(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	next, err := store.NextSNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next, "empty ledger starts at 1")

	require.NoError(t, store.Insert(ctx, record(7, "Ravi")))

	next, err = store.NextSNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, next)
}

func TestExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Insert(ctx, record(1, "Ravi")))

	ok, err = store.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
