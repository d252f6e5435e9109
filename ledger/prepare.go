/*
prepare.go - Record validation and derivation engine

PURPOSE:
  Transforms raw candidate input (form submission, import row, API payload)
  into a valid, fully-derived Record, or rejects it. This is the ONLY place
  derived fields are computed; stored values are never re-checked on read.

CONTRACT:
  1. Quantity, rate and advance are parsed forgivingly: an unparsable value
     becomes 0.0, never an error (mirrors the numeric-entry UX of the form)
  2. total = quantity * rate; amount = max(total - advance, 0)
  3. Blank date -> today in DD-MM-YYYY
  4. Time is ALWAYS the wall-clock time of the write, never caller-supplied
  5. Insert without a serial number -> max(existing)+1 (1 when empty)
  6. Insert with a colliding serial number -> DuplicateIDError
  7. Update target must exist -> NotFoundError otherwise; SNo is immutable

CLOCK:
  The preparer owns an injectable clock so tests can pin the derived date and
  time fields.

SEE ALSO:
  - types.go: Record.Derive()
  - importer.go: Batch path reusing the same derivation
*/
package ledger

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the display format of the stored date column.
const DateLayout = "02-01-2006"

// TimeLayout is the format of the write-time column.
const TimeLayout = "15:04:05"

// ToFloat parses a monetary or quantity field. An unparsable or blank value
// yields 0.0 by policy; parse failures are absorbed here and never surfaced.
func ToFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// =============================================================================
// RAW INPUT
// =============================================================================

// RawRecord is candidate input exactly as a caller supplies it: every field a
// string, nothing validated or derived yet.
type RawRecord struct {
	SNo           string
	Date          string
	CustomerName  string
	Item          string
	Count         string
	Quantity      string
	Rate          string
	AdvancePaid   string
	Phone         string
	Location      string
	PaymentStatus string
}

// =============================================================================
// PREPARER
// =============================================================================

// Preparer turns RawRecords into stored Records, consulting the store for
// identity assignment and collision checks.
type Preparer struct {
	store Store
	now   func() time.Time
}

func NewPreparer(store Store) *Preparer {
	return &Preparer{store: store, now: time.Now}
}

// WithClock replaces the wall clock. Tests use this to pin Date/Time.
func (p *Preparer) WithClock(now func() time.Time) *Preparer {
	p.now = now
	return p
}

// PrepareInsert builds a fully-derived record for insertion. A blank or
// non-numeric serial number is auto-assigned; a supplied one that collides
// with a live record fails with DuplicateIDError.
func (p *Preparer) PrepareInsert(ctx context.Context, raw RawRecord) (Record, error) {
	sno, supplied := parseSNo(raw.SNo)
	if supplied {
		exists, err := p.store.Exists(ctx, sno)
		if err != nil {
			return Record{}, err
		}
		if exists {
			return Record{}, &DuplicateIDError{SNo: sno}
		}
	} else {
		next, err := p.store.NextSNo(ctx)
		if err != nil {
			return Record{}, err
		}
		sno = next
	}
	return p.build(sno, raw), nil
}

// PrepareUpdate builds a full replacement for an existing record. The serial
// number is immutable and must reference a live record.
func (p *Preparer) PrepareUpdate(ctx context.Context, raw RawRecord) (Record, error) {
	sno, supplied := parseSNo(raw.SNo)
	if !supplied {
		return Record{}, &NotFoundError{SNo: sno}
	}
	exists, err := p.store.Exists(ctx, sno)
	if err != nil {
		return Record{}, err
	}
	if !exists {
		return Record{}, &NotFoundError{SNo: sno}
	}
	return p.build(sno, raw), nil
}

// build normalizes, derives and timestamps. Shared by both modes and by the
// import engine.
func (p *Preparer) build(sno int, raw RawRecord) Record {
	now := p.now()

	date := strings.TrimSpace(raw.Date)
	if date == "" {
		date = now.Format(DateLayout)
	}

	r := Record{
		SNo:           sno,
		Date:          date,
		Time:          now.Format(TimeLayout),
		CustomerName:  raw.CustomerName,
		Item:          raw.Item,
		Count:         strings.TrimSpace(raw.Count),
		Quantity:      ToFloat(raw.Quantity),
		Rate:          ToFloat(raw.Rate),
		AdvancePaid:   ToFloat(raw.AdvancePaid),
		Phone:         raw.Phone,
		Location:      raw.Location,
		PaymentStatus: NormalizeStatus(raw.PaymentStatus),
	}
	r.Derive()
	return r
}

// NormalizeStatus canonicalizes the casing of a recognized payment status and
// leaves anything else (including blank) as supplied.
func NormalizeStatus(s string) string {
	t := strings.TrimSpace(s)
	switch {
	case strings.EqualFold(t, string(PaymentDone)):
		return string(PaymentDone)
	case strings.EqualFold(t, string(PaymentIncomplete)):
		return string(PaymentIncomplete)
	default:
		return t
	}
}

func parseSNo(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
