// Package hardware tracks the compute tier and the savings put toward the
// next one.
//
// Savings come from the researcher pool's diverted income; Upgrade moves
// exactly one tier and debits that tier's cost from savings.
package hardware

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/warp/march-of-mind/generic"
)

// Tier is one step of the hardware ladder.
type Tier struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Cost  float64 `json:"cost"`
	Flops float64 `json:"flops"`
}

type Save struct {
	CurrentTierIndex int     `json:"currentTierIndex"`
	Savings          float64 `json:"savings"`
}

type Module struct {
	tiers   []Tier
	index   int
	savings decimal.Decimal
}

// New requires at least one tier; the first is the starting hardware.
func New(tiers []Tier) (*Module, error) {
	if len(tiers) == 0 {
		return nil, &generic.ConfigError{Source: "hardware", Reason: "no tiers"}
	}
	for _, t := range tiers {
		if t.Cost < 0 || t.Flops < 0 {
			return nil, &generic.ConfigError{Source: "hardware", Field: t.ID, Reason: "negative cost or flops"}
		}
	}
	m := &Module{tiers: append([]Tier(nil), tiers...)}
	m.Reset()
	return m, nil
}

// AddSavings accumulates non-negative amounts.
func (m *Module) AddSavings(amount decimal.Decimal) {
	if amount.IsNegative() {
		return
	}
	m.savings = m.savings.Add(amount)
}

// Upgrade moves to the next tier if savings cover its cost.
func (m *Module) Upgrade() bool {
	next, ok := m.Next()
	if !ok {
		return false
	}
	cost := generic.Dec(next.Cost)
	if m.savings.LessThan(cost) {
		return false
	}
	m.savings = m.savings.Sub(cost)
	m.index++
	return true
}

func (m *Module) Current() Tier            { return m.tiers[m.index] }
func (m *Module) CurrentIndex() int        { return m.index }
func (m *Module) CurrentFlops() float64    { return m.tiers[m.index].Flops }
func (m *Module) Savings() decimal.Decimal { return m.savings }
func (m *Module) Tiers() []Tier            { return append([]Tier(nil), m.tiers...) }

// Next returns the tier after the current one, if any.
func (m *Module) Next() (Tier, bool) {
	if m.index+1 >= len(m.tiers) {
		return Tier{}, false
	}
	return m.tiers[m.index+1], true
}

func (m *Module) CanUpgrade() bool {
	next, ok := m.Next()
	return ok && m.savings.GreaterThanOrEqual(generic.Dec(next.Cost))
}

// UpgradeProgress is savings/nextCost clamped to [0, 1]; 1 at the top tier.
func (m *Module) UpgradeProgress() float64 {
	next, ok := m.Next()
	if !ok || next.Cost <= 0 {
		return 1
	}
	return math.Min(1, m.savings.InexactFloat64()/next.Cost)
}

// InsightMultiplier is 1 + log10(flops) x 0.5, or 1 when flops <= 0.
func (m *Module) InsightMultiplier() float64 {
	flops := m.CurrentFlops()
	if flops <= 0 {
		return 1
	}
	return 1 + math.Log10(flops)*0.5
}

// WorkRate is flops^0.7 x researchers^0.3.
func (m *Module) WorkRate(researchers int) float64 {
	if researchers <= 0 {
		return 0
	}
	return math.Pow(m.CurrentFlops(), 0.7) * math.Pow(float64(researchers), 0.3)
}

func (m *Module) Save() Save {
	return Save{CurrentTierIndex: m.index, Savings: m.savings.InexactFloat64()}
}

// Load restores the tier index (clamped into range) and savings.
func (m *Module) Load(s Save) {
	m.index = s.CurrentTierIndex
	if m.index < 0 {
		m.index = 0
	}
	if m.index >= len(m.tiers) {
		m.index = len(m.tiers) - 1
	}
	m.savings = decimal.Zero
	if s.Savings > 0 {
		m.savings = decimal.NewFromFloat(s.Savings)
	}
}

func (m *Module) Reset() {
	m.index = 0
	m.savings = decimal.Zero
}
