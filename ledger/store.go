/*
store.go - Persistence interface for the ledger

PURPOSE:
  Defines the interface between the domain logic and the database. A Store is
  a durable keyed collection of Records ordered by ascending serial number.

IMPLEMENTATIONS:
  - store/sqlite: Production single-file SQLite store
  - ledger/store: In-memory store for tests and development

CONCURRENCY CONTRACT:
  At most one mutation is in flight at any instant. Implementations serialize
  writers internally (both ship a mutex); callers never need row-level locking.

ORDERING CONTRACT:
  ListAll and every filtered listing return records in ascending SNo order.
  Listings are restartable: each call re-reads the store.

SEE ALSO:
  - prepare.go: Uses NextSNo/Exists for identity assignment
  - store/sqlite/sqlite.go: Concrete implementation
*/
package ledger

import "context"

// Store handles persistence of ledger records.
type Store interface {
	// Insert persists a fully-derived record. Returns DuplicateIDError when
	// the serial number is already live.
	Insert(ctx context.Context, r Record) error

	// Update replaces every field of the record with r.SNo except the serial
	// number itself. Returns NotFoundError when the record is absent.
	Update(ctx context.Context, r Record) error

	// Delete removes the record permanently. Returns NotFoundError when absent.
	Delete(ctx context.Context, sno int) error

	// Get returns the record with the given serial number, or NotFoundError.
	Get(ctx context.Context, sno int) (Record, error)

	// ListAll returns every record ordered by ascending SNo.
	ListAll(ctx context.Context) ([]Record, error)

	// ListByCustomer returns records whose customer name contains text,
	// case-insensitively, ordered by ascending SNo.
	ListByCustomer(ctx context.Context, text string) ([]Record, error)

	// DistinctCustomers returns the sorted set of unique customer names.
	DistinctCustomers(ctx context.Context) ([]string, error)

	// DistinctItems returns the set of unique non-empty item names.
	DistinctItems(ctx context.Context) ([]string, error)

	// LatestRateForItem returns the rate of the most recently inserted
	// (highest SNo) record with a matching item. ok is false when no record
	// matches.
	LatestRateForItem(ctx context.Context, item string) (rate float64, ok bool, err error)

	// NextSNo returns max(existing)+1, or 1 when the ledger is empty.
	NextSNo(ctx context.Context) (int, error)

	// Exists reports whether a record with the serial number is live.
	Exists(ctx context.Context, sno int) (bool, error)
}
