/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error kinds in one place. Callers classify with errors.Is / errors.As;
  the HTTP layer maps them to status codes.

ERROR CATEGORIES:
  1. Identity errors   - Duplicate serial number on insert
  2. Lookup errors     - Update/delete/get against a missing serial number
  3. Store errors      - Underlying database unreachable or corrupt

Numeric parse failures are NOT errors here: the derivation engine absorbs them
and defaults the value to zero (see prepare.go).

SEE ALSO:
  - prepare.go: Raises DuplicateIDError / NotFoundError
  - store/sqlite: Wraps driver failures with ErrStoreUnavailable
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateID is returned when an insert supplies a serial number that
	// already exists in the ledger.
	ErrDuplicateID = errors.New("duplicate serial number")

	// ErrNotFound is returned when an update, delete or get targets a serial
	// number with no live record.
	ErrNotFound = errors.New("record not found")

	// ErrStoreUnavailable is returned when the underlying durable storage is
	// unreachable or corrupt. Fatal for the operation, never for the process.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the offending serial number
// =============================================================================

// DuplicateIDError reports an insert that collided with an existing record.
type DuplicateIDError struct {
	SNo int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("record %d already exists", e.SNo)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// NotFoundError reports an operation against a missing record.
type NotFoundError struct {
	SNo int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found", e.SNo)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError reports whether err is caused by invalid caller input rather
// than a storage failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateID) || errors.Is(err, ErrNotFound)
}
