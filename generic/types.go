/*
Package generic provides the domain-agnostic core of the simulation.

PURPOSE:
  Holds the primitives every game module builds on: resource kinds and
  amounts, the spend-gated resource ledger, the game calendar and the
  key/value store contract the save blob is written through.

KEY CONCEPTS IN THIS FILE (types.go):
  - ResourceKind: Identifies a tracked currency (money, insights)
  - Amount: A decimal quantity tagged with its kind
  - Dec: Float conversion used by modules whose tuning lives in config

DESIGN PRINCIPLES:
  1. Precision: Balances use decimal.Decimal so repeated monthly deltas
     never drift
  2. Gating: Every debit passes through the ledger's Spend
  3. No globals: Tables and ledgers are values owned by the orchestrator

USAGE:
  if ledger.Spend(generic.ResourceMoney, generic.Dec(50), "hire:talent") {
      // ...
  }

SEE ALSO:
  - ledger.go: Balances and the journal
  - resource.go: Per-kind rules (floor at zero)
  - store.go: Save blob persistence contract
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RESOURCE KIND
// =============================================================================

// ResourceKind identifies a currency tracked by the ledger.
type ResourceKind string

const (
	ResourceMoney    ResourceKind = "money"
	ResourceInsights ResourceKind = "insights"
)

func (k ResourceKind) String() string { return string(k) }

// =============================================================================
// AMOUNT - Quantity tagged with its resource kind
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Kind  ResourceKind
}

func (a Amount) Float64() float64 { return a.Value.InexactFloat64() }

// Dec converts a tuning value to a decimal.
func Dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
