/*
Package products runs the launched-product economy.

PURPOSE:
  Products become available by calendar year. Launching one spends its
  base cost in insights and adds it to the active set, where it earns
  monthly income scaled by how unsaturated its market is.

MARKET SATURATION (0..100):
  - starts at InitialSaturation (10) on launch
  - decays by SaturationDecay (5) every month, floored at 0
  - marketing raises it by MarketingStep x effectiveness, capped at 100

INCOME:
  multiplier = 1 + (1 - saturation/100) x IncomeBonus
  clamped to [MinMultiplier, MaxMultiplier] (1.0 .. 1.2 by default)
  monthly    = sum(baseIncome x multiplier)

MARKETING EFFECTIVENESS:
  weighted = sum(saturation x baseIncome) / sum(baseIncome)
  effectiveness = max(MIN, 1 - weighted/100 x (1 - MIN))

SEE ALSO:
  - factory/data/products.json: The catalog
  - game/game.go: Calls ProcessMonth with the current year
*/
package products

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/march-of-mind/generic"
)

// Product is a catalog template.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Year        int     `json:"year"`
	BaseCost    float64 `json:"baseCost"`
	BaseIncome  float64 `json:"baseIncome"`
}

// Instance is a launched product.
type Instance struct {
	Product
	Launched      bool    `json:"launched"`
	Saturation    float64 `json:"saturation"`
	CurrentIncome float64 `json:"currentIncome"`
	Progress      float64 `json:"progress"`
}

// Config holds the market tuning.
type Config struct {
	InitialSaturation         float64 `yaml:"initial_saturation"`
	SaturationDecay           float64 `yaml:"saturation_decay"`
	MarketingStep             float64 `yaml:"marketing_step"`
	MarketingMinEffectiveness float64 `yaml:"marketing_min_effectiveness"`
	IncomeBonus               float64 `yaml:"income_bonus"`
	MinMultiplier             float64 `yaml:"min_multiplier"`
	MaxMultiplier             float64 `yaml:"max_multiplier"`
}

func DefaultConfig() Config {
	return Config{
		InitialSaturation:         10,
		SaturationDecay:           5,
		MarketingStep:             20,
		MarketingMinEffectiveness: 0.2,
		IncomeBonus:               0.2,
		MinMultiplier:             1.0,
		MaxMultiplier:             1.2,
	}
}

// Save is the persisted module state.
type Save struct {
	HasProduct       bool       `json:"hasProduct"`
	HasLaunchedFirst bool       `json:"hasLaunchedFirst"`
	ActiveProducts   []Instance `json:"activeProducts"`
}

const maxSaturation = 100

// =============================================================================
// MODULE
// =============================================================================

type Module struct {
	cfg     Config
	catalog []Product
	ledger  generic.Ledger

	active           []Instance
	available        []Product
	hasProduct       bool
	hasLaunchedFirst bool
}

// New returns a module with the catalog sorted by year.
func New(cfg Config, catalog []Product, ledger generic.Ledger) *Module {
	sorted := make([]Product, len(catalog))
	copy(sorted, catalog)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	return &Module{cfg: cfg, catalog: sorted, ledger: ledger}
}

// RefreshAvailable lists catalog products released by year that are not
// already active, oldest first.
func (m *Module) RefreshAvailable(year int) {
	activeIDs := make(map[string]bool, len(m.active))
	for _, a := range m.active {
		activeIDs[a.ID] = true
	}
	m.available = m.available[:0]
	for _, p := range m.catalog {
		if p.Year <= year && !activeIDs[p.ID] {
			m.available = append(m.available, p)
		}
	}
}

// Launch spends the next available product's base cost in insights and
// activates it.
func (m *Module) Launch() bool {
	if len(m.available) == 0 {
		return false
	}
	head := m.available[0]
	if !m.ledger.Spend(generic.ResourceInsights, generic.Dec(head.BaseCost), "launch:"+head.ID) {
		return false
	}
	inst := Instance{
		Product:    head,
		Launched:   true,
		Saturation: m.cfg.InitialSaturation,
		Progress:   1,
	}
	inst.CurrentIncome = m.income(inst).InexactFloat64()
	m.active = append(m.active, inst)
	m.available = append(m.available[:0:0], m.available[1:]...)
	m.hasProduct = true
	m.hasLaunchedFirst = true
	return true
}

// ProcessMonth pays this month's income, decays saturation and refreshes
// availability for year. Returns the income paid.
func (m *Module) ProcessMonth(year int) decimal.Decimal {
	total := decimal.Zero
	for i := range m.active {
		p := &m.active[i]
		income := m.income(*p)
		p.CurrentIncome = income.InexactFloat64()
		total = total.Add(income)
	}
	m.ledger.Add(generic.ResourceMoney, total, "product income")

	for i := range m.active {
		m.active[i].Saturation = math.Max(0, m.active[i].Saturation-m.cfg.SaturationDecay)
	}
	m.RefreshAvailable(year)
	return total
}

// ApplyMarketing raises every active product's saturation.
func (m *Module) ApplyMarketing() bool {
	if len(m.active) == 0 {
		return false
	}
	step := m.cfg.MarketingStep * m.MarketingEffectiveness()
	for i := range m.active {
		m.active[i].Saturation = math.Min(maxSaturation, m.active[i].Saturation+step)
	}
	return true
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Multiplier returns the income multiplier for a saturation value.
func (m *Module) Multiplier(saturation float64) float64 {
	mult := 1 + (1-saturation/maxSaturation)*m.cfg.IncomeBonus
	return math.Min(m.cfg.MaxMultiplier, math.Max(m.cfg.MinMultiplier, mult))
}

func (m *Module) income(p Instance) decimal.Decimal {
	return generic.Dec(p.BaseIncome).Mul(generic.Dec(m.Multiplier(p.Saturation)))
}

// WeightedSaturation is the base-income weighted average saturation.
func (m *Module) WeightedSaturation() float64 {
	var weighted, weight float64
	for _, p := range m.active {
		weighted += p.Saturation * p.BaseIncome
		weight += p.BaseIncome
	}
	if weight <= 0 {
		return 0
	}
	return weighted / weight
}

func (m *Module) MarketingEffectiveness() float64 {
	minEff := m.cfg.MarketingMinEffectiveness
	return math.Max(minEff, 1-m.WeightedSaturation()/maxSaturation*(1-minEff))
}

// CurrentIncome is the income the next month would pay.
func (m *Module) CurrentIncome() decimal.Decimal {
	total := decimal.Zero
	for _, p := range m.active {
		total = total.Add(m.income(p))
	}
	return total
}

func (m *Module) CanLaunch() bool {
	return len(m.available) > 0 &&
		m.ledger.CanAfford(generic.ResourceInsights, generic.Dec(m.available[0].BaseCost))
}

// CurrentInDevelopment is the product the next Launch would activate.
func (m *Module) CurrentInDevelopment() (Product, bool) {
	if len(m.available) == 0 {
		return Product{}, false
	}
	return m.available[0], true
}

// DevelopmentProgress is the affordable share of the next launch cost.
func (m *Module) DevelopmentProgress() float64 {
	next, ok := m.CurrentInDevelopment()
	if !ok {
		return 0
	}
	if next.BaseCost <= 0 {
		return 1
	}
	have := m.ledger.Balance(generic.ResourceInsights).InexactFloat64()
	return math.Min(1, math.Max(0, have/next.BaseCost))
}

func (m *Module) Active() []Instance {
	out := make([]Instance, len(m.active))
	copy(out, m.active)
	return out
}

func (m *Module) Available() []Product {
	out := make([]Product, len(m.available))
	copy(out, m.available)
	return out
}

func (m *Module) HasProduct() bool       { return m.hasProduct }
func (m *Module) HasLaunchedFirst() bool { return m.hasLaunchedFirst }
func (m *Module) Config() Config         { return m.cfg }

// =============================================================================
// PERSISTENCE
// =============================================================================

func (m *Module) Save() Save {
	return Save{
		HasProduct:       m.hasProduct,
		HasLaunchedFirst: m.hasLaunchedFirst,
		ActiveProducts:   m.Active(),
	}
}

// Load restores launched products and recomputes availability for year.
func (m *Module) Load(s Save, year int) {
	m.active = nil
	for _, p := range s.ActiveProducts {
		p.Saturation = math.Min(maxSaturation, math.Max(0, p.Saturation))
		m.active = append(m.active, p)
	}
	m.hasProduct = s.HasProduct || len(m.active) > 0
	m.hasLaunchedFirst = s.HasLaunchedFirst || len(m.active) > 0
	m.RefreshAvailable(year)
}

func (m *Module) Reset(year int) {
	m.active = nil
	m.hasProduct = false
	m.hasLaunchedFirst = false
	m.RefreshAvailable(year)
}
