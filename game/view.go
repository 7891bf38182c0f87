package game

import (
	"time"

	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/hardware"
	"github.com/warp/march-of-mind/phase"
	"github.com/warp/march-of-mind/products"
	"github.com/warp/march-of-mind/staff"
	"github.com/warp/march-of-mind/techtree"
)

// =============================================================================
// READ MODEL
// =============================================================================

// View is a copy of every value a UI renders, valid after the lock is
// released. Catalog slices inside it are shared and must not be modified.
type View struct {
	Date          generic.GameDate
	DisplayDate   string
	ElapsedMonths float64
	Paused        bool
	Running       bool
	Finished      bool
	LastSavedAt   time.Time

	Phase      phase.Phase
	PhaseTitle string
	Modules    phase.Modules

	Resources map[generic.ResourceKind]float64
	Founding  FoundingView

	Talent      StaffView
	Researchers StaffView
	Products    ProductsView
	TechTree    TechTreeView
	Hardware    HardwareView
}

// FoundingView is the progress toward the two founding thresholds.
type FoundingView struct {
	CanFoundCompany bool
	CompanyProgress float64
	CanFoundLab     bool
	LabProgress     float64
}

type StaffView struct {
	RoleID            string
	RoleName          string
	Count             int
	HasHired          bool
	Allocation        float64
	CanHire           bool
	CanFire           bool
	HireCost          float64
	MonthlyIncome     float64
	MonthlySalary     float64
	MonthlyNetIncome  float64
	MonthlyInsights   float64
	InsightsPerClick  float64
	FirstHireProgress float64
}

type ProductsView struct {
	Active                 []products.Instance
	Available              []products.Product
	InDevelopment          *products.Product
	DevelopmentProgress    float64
	CanLaunch              bool
	WeightedSaturation     float64
	MarketingEffectiveness float64
	CurrentIncome          float64
	HasProduct             bool
	HasLaunchedFirst       bool
}

type TechItemView struct {
	techtree.Item
	State    techtree.State
	Progress float64
	Selected bool
}

type TechTreeView struct {
	Items             []TechItemView
	SelectedProduct   string
	SelectedDiscovery string
	ProductShare      float64
	TotalMultiplier   float64
	IncomePerMonth    float64
}

type HardwareView struct {
	Current           hardware.Tier
	Next              *hardware.Tier
	TierIndex         int
	Savings           float64
	CanUpgrade        bool
	UpgradeProgress   float64
	InsightMultiplier float64
	WorkRate          float64
}

// View builds the read model under the lock.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	mods := g.phase.ActiveModules()
	v := View{
		Date:          g.clock.Date(),
		DisplayDate:   g.clock.DisplayDate(),
		ElapsedMonths: g.clock.ElapsedMonths(),
		Paused:        g.clock.Paused(),
		Running:       g.clock.Running(),
		Finished:      g.clock.Finished(),
		LastSavedAt:   g.lastSavedAt,
		Phase:         g.phase.Current(),
		PhaseTitle:    g.phase.Title(),
		Modules:       mods,
		Resources:     make(map[generic.ResourceKind]float64),
		Talent:        g.staffView(g.talent),
		Researchers:   g.staffView(g.researchers),
		Products:      g.productsView(),
		TechTree:      g.techView(),
		Hardware:      g.hardwareView(),
	}
	for _, k := range g.ledger.Kinds() {
		v.Resources[k] = g.ledger.Balance(k).InexactFloat64()
	}

	companyCost := generic.Dec(g.balance.Actions.CompanyFoundingCost)
	labCost := generic.Dec(g.balance.Actions.LabFoundingCost)
	v.Founding = FoundingView{
		CanFoundCompany: v.Phase == phase.Job && g.ledger.CanAfford(generic.ResourceMoney, companyCost),
		CompanyProgress: g.ledger.Progress(generic.ResourceMoney, companyCost),
		CanFoundLab:     v.Phase == phase.Company && g.ledger.CanAfford(generic.ResourceInsights, labCost),
		LabProgress:     g.ledger.Progress(generic.ResourceInsights, labCost),
	}
	return v
}

// Journal returns the recent ledger entries, oldest first.
func (g *Game) Journal() []generic.Entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ledger.Journal()
}

func (g *Game) staffView(pool *staff.Pool) StaffView {
	mult := g.insightMultiplier(g.phase.ActiveModules())
	role := pool.Role()
	return StaffView{
		RoleID:            role.ID,
		RoleName:          role.Name,
		Count:             pool.Count(),
		HasHired:          pool.HasHired(),
		Allocation:        pool.Allocation(),
		CanHire:           pool.CanHire(),
		CanFire:           pool.CanFire(),
		HireCost:          role.HireCost,
		MonthlyIncome:     pool.MonthlyIncome().InexactFloat64(),
		MonthlySalary:     pool.MonthlySalary().InexactFloat64(),
		MonthlyNetIncome:  pool.MonthlyNetIncome().InexactFloat64(),
		MonthlyInsights:   pool.MonthlyInsights().InexactFloat64(),
		InsightsPerClick:  pool.InsightsPerClick(g.balance.Actions.ThinkBase, mult).InexactFloat64(),
		FirstHireProgress: pool.FirstHireProgress(),
	}
}

func (g *Game) productsView() ProductsView {
	v := ProductsView{
		Active:                 g.products.Active(),
		Available:              g.products.Available(),
		DevelopmentProgress:    g.products.DevelopmentProgress(),
		CanLaunch:              g.products.CanLaunch(),
		WeightedSaturation:     g.products.WeightedSaturation(),
		MarketingEffectiveness: g.products.MarketingEffectiveness(),
		CurrentIncome:          g.products.CurrentIncome().InexactFloat64(),
		HasProduct:             g.products.HasProduct(),
		HasLaunchedFirst:       g.products.HasLaunchedFirst(),
	}
	if next, ok := g.products.CurrentInDevelopment(); ok {
		v.InDevelopment = &next
	}
	return v
}

func (g *Game) techView() TechTreeView {
	v := TechTreeView{
		SelectedProduct:   g.tech.Selected(techtree.KindProduct),
		SelectedDiscovery: g.tech.Selected(techtree.KindDiscovery),
		ProductShare:      g.tech.ProductShare(),
		TotalMultiplier:   g.tech.TotalMultiplier(),
		IncomePerMonth:    g.tech.IncomePerMonth().InexactFloat64(),
	}
	for _, it := range g.tech.All() {
		iv := TechItemView{Item: it, State: g.tech.State(it.ID)}
		switch iv.State {
		case techtree.StateComplete:
			iv.Progress = 1
		case techtree.StateInProgress:
			if p, ok := g.tech.Progress(it.ID); ok {
				iv.Progress = p.Fraction()
			}
		}
		iv.Selected = g.tech.Selected(it.Kind) == it.ID
		v.Items = append(v.Items, iv)
	}
	return v
}

func (g *Game) hardwareView() HardwareView {
	v := HardwareView{
		Current:           g.hardware.Current(),
		TierIndex:         g.hardware.CurrentIndex(),
		Savings:           g.hardware.Savings().InexactFloat64(),
		CanUpgrade:        g.hardware.CanUpgrade(),
		UpgradeProgress:   g.hardware.UpgradeProgress(),
		InsightMultiplier: g.hardware.InsightMultiplier(),
		WorkRate:          g.hardware.WorkRate(g.researchers.Count()),
	}
	if next, ok := g.hardware.Next(); ok {
		v.Next = &next
	}
	return v
}
