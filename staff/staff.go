/*
Package staff models hired personnel as counted pools.

PURPOSE:
  One Pool type serves every kind of staff. A Role record carries the
  numbers that differ (hire cost, salary, income, insight yield), so the
  talent pool of the company phase and the researcher pool of the lab
  phase share one implementation.

MONTHLY ECONOMICS:
  net = count x (income - salary)

  The net is applied to money unconditionally, so an unprofitable pool
  drives money negative. With the default roles every hire loses 10 a
  month: 1 talent -> money drops by 10 each month.

ALLOCATION:
  Allocation (0..1, default 0.5) is the share of a positive net that the
  orchestrator diverts from money into hardware savings. The pool only
  stores it.

SEE ALSO:
  - generic/ledger.go: Spend gate for hire costs
  - game/game.go: Savings diversion
*/
package staff

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/warp/march-of-mind/generic"
)

// DefaultAllocation is the savings share a fresh pool starts with.
const DefaultAllocation = 0.5

// Role is the configuration of one kind of staff.
type Role struct {
	ID               string               `yaml:"id" json:"id"`
	Name             string               `yaml:"name" json:"name"`
	HireCost         float64              `yaml:"hire_cost" json:"hireCost"`
	HireCurrency     generic.ResourceKind `yaml:"hire_currency" json:"hireCurrency"`
	Salary           float64              `yaml:"salary" json:"salary"`
	Income           float64              `yaml:"income" json:"income"`
	InsightsPerMonth float64              `yaml:"insights_per_month" json:"insightsPerMonth"`
	InsightsPerClick float64              `yaml:"insights_per_click" json:"insightsPerClick"`
}

// Talent is the default company-phase role.
func Talent() Role {
	return Role{
		ID:               "talent",
		Name:             "Talent",
		HireCost:         50,
		HireCurrency:     generic.ResourceMoney,
		Salary:           15,
		Income:           5,
		InsightsPerMonth: 0.02,
	}
}

// Researcher is the default lab-phase role.
func Researcher() Role {
	return Role{
		ID:               "researcher",
		Name:             "Researcher",
		HireCost:         10,
		HireCurrency:     generic.ResourceMoney,
		Salary:           15,
		Income:           5,
		InsightsPerClick: 0.1,
	}
}

// Save is the persisted pool state. Allocation is a pointer so an absent
// field restores the default rather than zero.
type Save struct {
	Count      int      `json:"count"`
	HasHired   bool     `json:"hasHired"`
	Allocation *float64 `json:"allocation,omitempty"`
}

// =============================================================================
// POOL
// =============================================================================

type Pool struct {
	role   Role
	ledger generic.Ledger

	count      int
	hasHired   bool
	allocation float64
}

func NewPool(role Role, ledger generic.Ledger) *Pool {
	if role.HireCurrency == "" {
		role.HireCurrency = generic.ResourceMoney
	}
	p := &Pool{role: role, ledger: ledger}
	p.Reset()
	return p
}

// Hire spends the role's hire cost and adds one member.
func (p *Pool) Hire() bool {
	if !p.ledger.Spend(p.role.HireCurrency, generic.Dec(p.role.HireCost), "hire:"+p.role.ID) {
		return false
	}
	p.count++
	p.hasHired = true
	return true
}

// Fire removes one member. No refund.
func (p *Pool) Fire() bool {
	if p.count <= 0 {
		return false
	}
	p.count--
	return true
}

// SetAllocation stores v clamped to [0, 1].
func (p *Pool) SetAllocation(v float64) {
	switch {
	case v < 0 || math.IsNaN(v):
		v = 0
	case v > 1:
		v = 1
	}
	p.allocation = v
}

// ProcessMonth applies this month's net income to money and returns it.
func (p *Pool) ProcessMonth() decimal.Decimal {
	net := p.MonthlyNetIncome()
	p.ledger.Add(generic.ResourceMoney, net, "upkeep:"+p.role.ID)
	return net
}

// Think adds (base + count x insightsPerClick) x multiplier insights and
// returns the amount added.
func (p *Pool) Think(base, multiplier float64) decimal.Decimal {
	amount := p.InsightsPerClick(base, multiplier)
	p.ledger.Add(generic.ResourceInsights, amount, "think:"+p.role.ID)
	return amount
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

func (p *Pool) Role() Role          { return p.role }
func (p *Pool) Count() int          { return p.count }
func (p *Pool) HasHired() bool      { return p.hasHired }
func (p *Pool) Allocation() float64 { return p.allocation }
func (p *Pool) CanFire() bool       { return p.count > 0 }

func (p *Pool) CanHire() bool {
	return p.ledger.CanAfford(p.role.HireCurrency, generic.Dec(p.role.HireCost))
}

func (p *Pool) MonthlyIncome() decimal.Decimal {
	return generic.Dec(p.role.Income).Mul(decimal.NewFromInt(int64(p.count)))
}

func (p *Pool) MonthlySalary() decimal.Decimal {
	return generic.Dec(p.role.Salary).Mul(decimal.NewFromInt(int64(p.count)))
}

func (p *Pool) MonthlyNetIncome() decimal.Decimal {
	return p.MonthlyIncome().Sub(p.MonthlySalary())
}

// MonthlyInsights is the unmultiplied monthly insight yield of the pool.
func (p *Pool) MonthlyInsights() decimal.Decimal {
	return generic.Dec(p.role.InsightsPerMonth).Mul(decimal.NewFromInt(int64(p.count)))
}

// InsightsPerClick is what one Think would add.
func (p *Pool) InsightsPerClick(base, multiplier float64) decimal.Decimal {
	perMember := generic.Dec(p.role.InsightsPerClick).Mul(decimal.NewFromInt(int64(p.count)))
	return generic.Dec(base).Add(perMember).Mul(generic.Dec(multiplier))
}

// FirstHireProgress is 1 once anyone was hired, otherwise the share of
// the hire cost currently affordable.
func (p *Pool) FirstHireProgress() float64 {
	if p.hasHired {
		return 1
	}
	cost := p.role.HireCost
	if cost <= 0 {
		return 1
	}
	have := p.ledger.Balance(p.role.HireCurrency).InexactFloat64()
	switch {
	case have <= 0:
		return 0
	case have >= cost:
		return 1
	}
	return have / cost
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func (p *Pool) Save() Save {
	alloc := p.allocation
	return Save{Count: p.count, HasHired: p.hasHired, Allocation: &alloc}
}

func (p *Pool) Load(s Save) {
	p.Reset()
	if s.Count > 0 {
		p.count = s.Count
	}
	p.hasHired = s.HasHired || p.count > 0
	if s.Allocation != nil {
		p.SetAllocation(*s.Allocation)
	}
}

func (p *Pool) Reset() {
	p.count = 0
	p.hasHired = false
	p.allocation = DefaultAllocation
}
