/*
Package sqlite provides the SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists the ledger in a single local database file: one `accounts` table of
  fourteen columns keyed by `sno`. Column names match the historical file
  format (customer_name, count, advance_paid, amount, payment_status), so a
  database produced by older versions of the application opens unchanged.

KEY TABLE:
  accounts:
    sno INTEGER PRIMARY KEY    unique record identity
    date TEXT                  DD-MM-YYYY display format
    time TEXT                  HH:MM:SS, assigned at write
    customer_name TEXT
    item TEXT
    count TEXT                 free text; tolerates non-numeric annotations
    quantity REAL
    rate REAL
    total REAL                 derived at write time
    advance_paid REAL
    amount REAL                derived at write time
    phone TEXT
    location TEXT
    payment_status TEXT

INDEXES:
  Secondary indexes on customer_name, date and item are created idempotently
  at open — the startup maintenance contract. Adding them to an old file is
  not a schema migration.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety: a single writer at a time, which is the
  store's whole concurrency contract. SQLite is opened in WAL mode so readers
  don't block on the writer.

ERROR MAPPING:
  UNIQUE constraint on sno   -> ledger.DuplicateIDError
  Zero rows updated/deleted  -> ledger.NotFoundError
  Open/driver failures       -> wrapped with ledger.ErrStoreUnavailable

USAGE:
  store, err := sqlite.New("./accounts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tidebook/accounts-engine/ledger"
)

// Store implements ledger.Store using SQLite.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// New opens (or creates) the database at dbPath and ensures the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ledger.ErrStoreUnavailable, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path ("" for in-memory). The backup routine
// uses it.
func (s *Store) Path() string {
	if s.path == ":memory:" {
		return ""
	}
	return s.path
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		sno INTEGER PRIMARY KEY,
		date TEXT,
		time TEXT,
		customer_name TEXT,
		item TEXT,
		count TEXT,
		quantity REAL,
		rate REAL,
		total REAL,
		advance_paid REAL,
		amount REAL,
		phone TEXT,
		location TEXT,
		payment_status TEXT
	);

	-- Secondary lookup indexes for the browser filters
	CREATE INDEX IF NOT EXISTS idx_customer ON accounts(customer_name);
	CREATE INDEX IF NOT EXISTS idx_date ON accounts(date);
	CREATE INDEX IF NOT EXISTS idx_item ON accounts(item);
	`

	_, err := s.db.Exec(schema)
	return err
}

const allColumns = `sno, date, time, customer_name, item, count,
	quantity, rate, total, advance_paid, amount, phone, location, payment_status`

// =============================================================================
// MUTATIONS
// =============================================================================

// Insert persists a record. The primary key rejects a colliding sno.
func (s *Store) Insert(ctx context.Context, r ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO accounts (` + allColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.SNo, r.Date, r.Time, r.CustomerName, r.Item, r.Count,
		r.Quantity, r.Rate, r.Total, r.AdvancePaid, r.Amount,
		r.Phone, r.Location, r.PaymentStatus,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &ledger.DuplicateIDError{SNo: r.SNo}
		}
		return fmt.Errorf("insert record %d: %w", r.SNo, err)
	}
	return nil
}

// Update replaces every field except sno.
func (s *Store) Update(ctx context.Context, r ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE accounts SET
			date = ?, time = ?, customer_name = ?, item = ?, count = ?,
			quantity = ?, rate = ?, total = ?, advance_paid = ?, amount = ?,
			phone = ?, location = ?, payment_status = ?
		WHERE sno = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		r.Date, r.Time, r.CustomerName, r.Item, r.Count,
		r.Quantity, r.Rate, r.Total, r.AdvancePaid, r.Amount,
		r.Phone, r.Location, r.PaymentStatus, r.SNo,
	)
	if err != nil {
		return fmt.Errorf("update record %d: %w", r.SNo, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record %d: %w", r.SNo, err)
	}
	if n == 0 {
		return &ledger.NotFoundError{SNo: r.SNo}
	}
	return nil
}

// Delete removes a record permanently. No soft-delete.
func (s *Store) Delete(ctx context.Context, sno int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE sno = ?", sno)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", sno, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %d: %w", sno, err)
	}
	if n == 0 {
		return &ledger.NotFoundError{SNo: sno}
	}
	return nil
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Get returns one record by serial number.
func (s *Store) Get(ctx context.Context, sno int) (ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+allColumns+" FROM accounts WHERE sno = ?", sno)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Record{}, &ledger.NotFoundError{SNo: sno}
	}
	if err != nil {
		return ledger.Record{}, fmt.Errorf("get record %d: %w", sno, err)
	}
	return r, nil
}

// ListAll returns every record ordered by ascending sno.
func (s *Store) ListAll(ctx context.Context) ([]ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx,
		"SELECT "+allColumns+" FROM accounts ORDER BY sno ASC")
}

// ListByCustomer does a case-insensitive substring match on customer_name.
// SQLite's LIKE is case-insensitive for ASCII, matching the historic behavior.
func (s *Store) ListByCustomer(ctx context.Context, text string) ([]ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx,
		"SELECT "+allColumns+" FROM accounts WHERE customer_name LIKE ? ORDER BY sno ASC",
		"%"+text+"%")
}

// DistinctCustomers returns the sorted set of unique customer names.
func (s *Store) DistinctCustomers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryStrings(ctx,
		"SELECT DISTINCT customer_name FROM accounts ORDER BY customer_name ASC")
}

// DistinctItems returns unique non-empty item names.
func (s *Store) DistinctItems(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryStrings(ctx,
		"SELECT DISTINCT item FROM accounts WHERE item IS NOT NULL AND item != '' ORDER BY item ASC")
}

// LatestRateForItem returns the rate of the highest-sno record matching item.
func (s *Store) LatestRateForItem(ctx context.Context, item string) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rate float64
	err := s.db.QueryRowContext(ctx,
		"SELECT rate FROM accounts WHERE item = ? ORDER BY sno DESC LIMIT 1", item,
	).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("latest rate for %q: %w", item, err)
	}
	return rate, true, nil
}

// NextSNo returns max(sno)+1, or 1 for an empty ledger.
func (s *Store) NextSNo(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(sno) FROM accounts").Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("next sno: %w", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

// Exists reports whether a record with the serial number is live.
func (s *Store) Exists(ctx context.Context, sno int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM accounts WHERE sno = ?", sno).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("exists %d: %w", sno, err)
	}
	return count > 0, nil
}

// =============================================================================
// SCANNING
// =============================================================================

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]ledger.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []ledger.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query strings: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v.String)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one accounts row. Text columns come back through
// sql.NullString so a file written by an older tool with NULLs still loads.
func scanRecord(row scanner) (ledger.Record, error) {
	var (
		r                                ledger.Record
		date, tm, customer, item, count  sql.NullString
		phone, location, status          sql.NullString
		quantity, rate, total, adv, amnt sql.NullFloat64
	)

	err := row.Scan(
		&r.SNo, &date, &tm, &customer, &item, &count,
		&quantity, &rate, &total, &adv, &amnt,
		&phone, &location, &status,
	)
	if err != nil {
		return r, err
	}

	r.Date = date.String
	r.Time = tm.String
	r.CustomerName = customer.String
	r.Item = item.String
	r.Count = count.String
	r.Quantity = quantity.Float64
	r.Rate = rate.Float64
	r.Total = total.Float64
	r.AdvancePaid = adv.Float64
	r.Amount = amnt.Float64
	r.Phone = phone.String
	r.Location = location.String
	r.PaymentStatus = status.String
	return r, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
