/*
ledger.go - Spend-gated resource balances

PURPOSE:
  The ResourceLedger owns the balance of every resource kind. It is the
  single gate every debit passes through: a Spend either succeeds in full
  or leaves the balance untouched.

CRITICAL INVARIANTS:
  1. ALL-OR-NOTHING: Spend(k, x) succeeds iff Balance(k) >= x
  2. UNCONDITIONAL ADD: Add never fails; negative deltas may take the
     balance below zero unless the kind is FloorAtZero
  3. NEVER PANICS: Unknown kinds are rejected, not fatal

JOURNAL:
  Every applied change is appended to a bounded journal (oldest entries
  drop off). The journal is for display only and is never persisted.

CONCURRENCY:
  Not safe for concurrent use. The orchestrator serializes all access.

EXAMPLE FLOW:
  1. Start: money 100
  2. Spend(money, 50, "hire:talent") -> true, money 50
  3. Spend(money, 60, "hire:talent") -> false, money 50
  4. Add(money, -10, "upkeep:talent") -> money 40

SEE ALSO:
  - resource.go: Per-kind rules
  - staff/staff.go: Hire costs and upkeep
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// DefaultJournalSize bounds the journal when no size is configured.
const DefaultJournalSize = 64

// =============================================================================
// LEDGER INTERFACE - What game modules depend on
// =============================================================================

// Ledger is the balance surface game modules are given.
type Ledger interface {
	// Add applies a delta unconditionally.
	Add(kind ResourceKind, amount decimal.Decimal, reason string)

	// Spend debits amount iff the balance covers it.
	Spend(kind ResourceKind, amount decimal.Decimal, reason string) bool

	// Balance returns the current balance of kind.
	Balance(kind ResourceKind) decimal.Decimal

	// CanAfford reports whether Spend would succeed.
	CanAfford(kind ResourceKind, amount decimal.Decimal) bool
}

// Entry is one applied balance change.
type Entry struct {
	Seq     uint64
	Month   int
	Delta   Amount
	Balance decimal.Decimal // balance after the change
	Reason  string
}

// =============================================================================
// RESOURCE LEDGER
// =============================================================================

type ResourceLedger struct {
	table    ResourceTable
	balances map[ResourceKind]decimal.Decimal

	journal     []Entry
	journalSize int
	seq         uint64
	month       int
}

// NewLedger creates a ledger with every kind at zero.
// A journalSize <= 0 uses DefaultJournalSize.
func NewLedger(table ResourceTable, journalSize int) *ResourceLedger {
	if journalSize <= 0 {
		journalSize = DefaultJournalSize
	}
	l := &ResourceLedger{table: table, journalSize: journalSize}
	l.Reset()
	return l
}

// Add applies amount to kind. Zero deltas are not journaled.
func (l *ResourceLedger) Add(kind ResourceKind, amount decimal.Decimal, reason string) {
	spec, err := l.table.Lookup(kind)
	if err != nil || amount.IsZero() {
		return
	}
	next := l.balances[kind].Add(amount)
	if spec.FloorAtZero && next.IsNegative() {
		amount = l.balances[kind].Neg()
		next = decimal.Zero
		if amount.IsZero() {
			return
		}
	}
	l.apply(kind, amount, next, reason)
}

// Spend debits amount from kind if the balance covers it.
// Negative amounts are refused.
func (l *ResourceLedger) Spend(kind ResourceKind, amount decimal.Decimal, reason string) bool {
	if _, err := l.table.Lookup(kind); err != nil || amount.IsNegative() {
		return false
	}
	if !l.CanAfford(kind, amount) {
		return false
	}
	if amount.IsZero() {
		return true
	}
	l.apply(kind, amount.Neg(), l.balances[kind].Sub(amount), reason)
	return true
}

func (l *ResourceLedger) Balance(kind ResourceKind) decimal.Decimal {
	return l.balances[kind]
}

func (l *ResourceLedger) CanAfford(kind ResourceKind, amount decimal.Decimal) bool {
	return l.balances[kind].GreaterThanOrEqual(amount)
}

// Progress returns balance/target clamped to [0, 1].
func (l *ResourceLedger) Progress(kind ResourceKind, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 1
	}
	p := l.balances[kind].Div(target).InexactFloat64()
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Set overwrites a balance without journaling. Used when restoring a save.
func (l *ResourceLedger) Set(kind ResourceKind, value decimal.Decimal) {
	if _, err := l.table.Lookup(kind); err != nil {
		return
	}
	l.balances[kind] = value
}

// Reset zeroes every balance and clears the journal.
func (l *ResourceLedger) Reset() {
	l.balances = make(map[ResourceKind]decimal.Decimal, len(l.table.order))
	for _, k := range l.table.order {
		l.balances[k] = decimal.Zero
	}
	l.journal = nil
	l.seq = 0
	l.month = 0
}

// Stamp sets the game month recorded on subsequent journal entries.
func (l *ResourceLedger) Stamp(month int) {
	l.month = month
}

// Journal returns a copy of the recent entries, oldest first.
func (l *ResourceLedger) Journal() []Entry {
	out := make([]Entry, len(l.journal))
	copy(out, l.journal)
	return out
}

// Kinds returns the tracked kinds in configuration order.
func (l *ResourceLedger) Kinds() []ResourceKind {
	return l.table.Kinds()
}

func (l *ResourceLedger) apply(kind ResourceKind, delta, next decimal.Decimal, reason string) {
	l.balances[kind] = next
	l.seq++
	l.journal = append(l.journal, Entry{
		Seq:     l.seq,
		Month:   l.month,
		Delta:   Amount{Value: delta, Kind: kind},
		Balance: next,
		Reason:  reason,
	})
	if over := len(l.journal) - l.journalSize; over > 0 {
		l.journal = append(l.journal[:0:0], l.journal[over:]...)
	}
}
