package generic_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/march-of-mind/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestLedger() *generic.ResourceLedger {
	return generic.NewLedger(generic.DefaultResources(), 0)
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// =============================================================================
// SPEND GATING
// =============================================================================

func TestLedger_Spend_SucceedsWhenCovered(t *testing.T) {
	// GIVEN: 100 money
	// WHEN: Spending 50
	// THEN: Spend succeeds and 50 remains

	l := newTestLedger()
	l.Add(generic.ResourceMoney, dec(100), "seed")

	ok := l.Spend(generic.ResourceMoney, dec(50), "hire")

	assert.True(t, ok)
	assert.True(t, l.Balance(generic.ResourceMoney).Equal(dec(50)))
}

func TestLedger_Spend_InsufficientLeavesBalanceUnchanged(t *testing.T) {
	// GIVEN: 40 money
	// WHEN: Spending 50
	// THEN: Spend fails and the balance is untouched

	l := newTestLedger()
	l.Add(generic.ResourceMoney, dec(40), "seed")

	ok := l.Spend(generic.ResourceMoney, dec(50), "hire")

	assert.False(t, ok)
	assert.True(t, l.Balance(generic.ResourceMoney).Equal(dec(40)))
	assert.Len(t, l.Journal(), 1, "failed spend is not journaled")
}

func TestLedger_Spend_ExactBalance(t *testing.T) {
	l := newTestLedger()
	l.Add(generic.ResourceInsights, dec(1), "seed")

	assert.True(t, l.Spend(generic.ResourceInsights, dec(1), "launch"))
	assert.True(t, l.Balance(generic.ResourceInsights).IsZero())
}

func TestLedger_Spend_NegativeAmountRefused(t *testing.T) {
	l := newTestLedger()

	assert.False(t, l.Spend(generic.ResourceMoney, dec(-5), "exploit"))
	assert.True(t, l.Balance(generic.ResourceMoney).IsZero())
}

func TestLedger_Spend_NegativeBalanceCannotSpend(t *testing.T) {
	l := newTestLedger()
	l.Add(generic.ResourceMoney, dec(-10), "upkeep")

	assert.False(t, l.Spend(generic.ResourceMoney, dec(1), "hire"))
	assert.False(t, l.CanAfford(generic.ResourceMoney, dec(1)))
}

func TestLedger_UnknownKind_NeverPanics(t *testing.T) {
	l := newTestLedger()

	assert.NotPanics(t, func() {
		l.Add("gold", dec(5), "x")
		assert.False(t, l.Spend("gold", dec(1), "x"))
	})
	assert.True(t, l.Balance("gold").IsZero())
}

// =============================================================================
// ADD AND FLOORS
// =============================================================================

func TestLedger_Add_AllowsNegativeByDefault(t *testing.T) {
	// GIVEN: Default resource table (no floors)
	// WHEN: Upkeep exceeds income
	// THEN: Money goes negative

	l := newTestLedger()
	l.Add(generic.ResourceMoney, dec(-10), "upkeep")

	assert.True(t, l.Balance(generic.ResourceMoney).Equal(dec(-10)))
}

func TestLedger_Add_FloorAtZeroClamps(t *testing.T) {
	table, err := generic.NewResourceTable(
		generic.ResourceSpec{Kind: generic.ResourceMoney, FloorAtZero: true},
	)
	require.NoError(t, err)
	l := generic.NewLedger(table, 0)
	l.Add(generic.ResourceMoney, dec(4), "seed")

	l.Add(generic.ResourceMoney, dec(-10), "upkeep")

	assert.True(t, l.Balance(generic.ResourceMoney).IsZero())
	journal := l.Journal()
	require.Len(t, journal, 2)
	assert.True(t, journal[1].Delta.Value.Equal(dec(-4)), "journal records the applied delta")
}

func TestLedger_Add_DecimalDoesNotDrift(t *testing.T) {
	l := newTestLedger()
	for i := 0; i < 1000; i++ {
		l.Add(generic.ResourceInsights, dec(0.1), "click")
	}
	assert.True(t, l.Balance(generic.ResourceInsights).Equal(dec(100)))
}

// =============================================================================
// JOURNAL, PROGRESS, RESET
// =============================================================================

func TestLedger_Journal_IsBounded(t *testing.T) {
	l := generic.NewLedger(generic.DefaultResources(), 3)
	for i := 1; i <= 5; i++ {
		l.Stamp(i)
		l.Add(generic.ResourceMoney, dec(1), "work")
	}

	journal := l.Journal()
	require.Len(t, journal, 3)
	assert.Equal(t, uint64(3), journal[0].Seq)
	assert.Equal(t, 5, journal[2].Month)
	assert.True(t, journal[2].Balance.Equal(dec(5)))
}

func TestLedger_Progress(t *testing.T) {
	l := newTestLedger()
	l.Add(generic.ResourceMoney, dec(25), "seed")

	assert.InDelta(t, 0.25, l.Progress(generic.ResourceMoney, dec(100)), 1e-9)
	assert.InDelta(t, 1.0, l.Progress(generic.ResourceMoney, dec(10)), 1e-9)
	assert.InDelta(t, 1.0, l.Progress(generic.ResourceMoney, decimal.Zero), 1e-9)

	l.Add(generic.ResourceMoney, dec(-50), "upkeep")
	assert.InDelta(t, 0.0, l.Progress(generic.ResourceMoney, dec(100)), 1e-9)
}

func TestLedger_SetAndReset(t *testing.T) {
	l := newTestLedger()
	l.Set(generic.ResourceMoney, dec(42))
	assert.True(t, l.Balance(generic.ResourceMoney).Equal(dec(42)))
	assert.Empty(t, l.Journal(), "Set is not journaled")

	l.Add(generic.ResourceInsights, dec(3), "think")
	l.Reset()

	assert.True(t, l.Balance(generic.ResourceMoney).IsZero())
	assert.True(t, l.Balance(generic.ResourceInsights).IsZero())
	assert.Empty(t, l.Journal())
}

// =============================================================================
// RESOURCE TABLE
// =============================================================================

func TestResourceTable_RejectsDuplicates(t *testing.T) {
	_, err := generic.NewResourceTable(
		generic.ResourceSpec{Kind: generic.ResourceMoney},
		generic.ResourceSpec{Kind: generic.ResourceMoney},
	)
	assert.ErrorIs(t, err, generic.ErrInvalidConfig)
}

func TestResourceTable_Lookup(t *testing.T) {
	table := generic.DefaultResources()

	spec, err := table.Lookup(generic.ResourceInsights)
	require.NoError(t, err)
	assert.Equal(t, "Insights", spec.Name)

	_, err = table.Lookup("gold")
	assert.ErrorIs(t, err, generic.ErrUnknownResource)
	assert.True(t, generic.IsNotFound(err))
	assert.Equal(t, []generic.ResourceKind{generic.ResourceMoney, generic.ResourceInsights}, table.Kinds())
}
