/*
Package game is the orchestrator that owns every simulation module.

PURPOSE:
  Game wires the ledger, clock, phase machine, staff pools, products,
  tech tree and hardware together, runs the monthly update in a fixed
  order and persists the aggregate state as one save blob.

CONCURRENCY:
  One mutex guards all module state. The clock's ticker goroutine takes it
  (as the clock guard) before every tick, and every public method takes it
  too, so the simulation behaves like a single event loop. Nothing inside
  the lock blocks on the ticker.

MONTHLY ORDER (processOneMonth):
  1. talent upkeep
  2. researcher upkeep, then savings diversion
  3. insight generation (x tech multiplier x hardware multiplier)
  4. products: income, saturation decay, availability
  5. tech tree: research work, completed product income
  6. milestone events
  7. end-of-calendar check
  8. autosave

  In the job phase steps 1-6 are skipped.

SEE ALSO:
  - actions.go: Player actions
  - snapshot.go: Save blob layout
  - view.go: Read model
*/
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/warp/march-of-mind/clock"
	"github.com/warp/march-of-mind/factory"
	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/hardware"
	"github.com/warp/march-of-mind/phase"
	"github.com/warp/march-of-mind/products"
	"github.com/warp/march-of-mind/staff"
	"github.com/warp/march-of-mind/techtree"
)

// Observer receives lifecycle notifications. Implementations must not call
// back into the Game.
type Observer interface {
	MonthProcessed(p phase.Phase)
	Saved(err error)
	Loaded(found bool, err error)
	ActionTaken(action string, ok bool)
}

type nopObserver struct{}

func (nopObserver) MonthProcessed(phase.Phase) {}
func (nopObserver) Saved(error)                {}
func (nopObserver) Loaded(bool, error)         {}
func (nopObserver) ActionTaken(string, bool)   {}

// Options configures a Game. Balance, Catalog and Store are required.
type Options struct {
	Balance  factory.Balance
	Catalog  factory.Catalog
	Store    generic.Store
	Clock    clock.Clock
	Logger   *log.Logger
	Observer Observer
}

// =============================================================================
// GAME
// =============================================================================

type Game struct {
	mu sync.Mutex

	balance  factory.Balance
	store    generic.Store
	src      clock.Clock
	logger   *log.Logger
	observer Observer

	ledger      *generic.ResourceLedger
	clock       *clock.TimeClock
	phase       *phase.Machine
	talent      *staff.Pool
	researchers *staff.Pool
	products    *products.Module
	tech        *techtree.Tree
	hardware    *hardware.Module

	lastSavedAt time.Time
}

// New builds a game in its initial state. The clock is not started.
func New(opts Options) (*Game, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", generic.ErrInvalidConfig)
	}
	if err := opts.Balance.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	table, err := opts.Balance.ResourceTable()
	if err != nil {
		return nil, err
	}
	ledger := generic.NewLedger(table, opts.Balance.JournalSize)

	machine, err := phase.NewMachine(opts.Balance.Milestones)
	if err != nil {
		return nil, err
	}
	tree, err := techtree.New(opts.Catalog.TechTree, ledger)
	if err != nil {
		return nil, err
	}
	hw, err := hardware.New(opts.Catalog.Hardware)
	if err != nil {
		return nil, err
	}

	g := &Game{
		balance:     opts.Balance,
		store:       opts.Store,
		src:         opts.Clock,
		logger:      opts.Logger.WithPrefix("game"),
		observer:    opts.Observer,
		ledger:      ledger,
		phase:       machine,
		talent:      staff.NewPool(opts.Balance.Roles.Talent, ledger),
		researchers: staff.NewPool(opts.Balance.Roles.Researcher, ledger),
		products:    products.New(opts.Balance.Products, opts.Catalog.Products, ledger),
		tech:        tree,
		hardware:    hw,
	}
	g.clock = clock.New(opts.Balance.Time, opts.Clock, clock.WithGuard(&g.mu), clock.WithLogger(opts.Logger))
	tree.SetTimeSource(opts.Clock.Now)

	g.resetModules()
	return g, nil
}

// Init loads the saved game, if any, and starts the clock. The clock is
// started even when the backend fails; the error is returned and the game
// runs from its initial state.
func (g *Game) Init(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	found, err := g.loadLocked(ctx)
	defer g.clock.Start(g.processOneMonth)
	if err != nil {
		return err
	}
	if found {
		g.logger.Info("resumed saved game", "date", g.clock.DisplayDate(), "phase", g.phase.Current())
	} else {
		g.logger.Info("starting new game", "date", g.clock.DisplayDate())
	}
	return nil
}

// Stop halts the clock. State is kept; call SaveGame to persist it.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clock.Stop()
}

// ResetGame wipes every module, removes the save blob and restarts the clock.
func (g *Game) ResetGame(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clock.Reset()
	g.resetModules()
	g.lastSavedAt = time.Time{}
	err := g.store.Remove(ctx, g.balance.SaveKey)
	g.clock.Start(g.processOneMonth)
	if err != nil {
		return &generic.SaveError{Key: g.balance.SaveKey, Op: "remove", Err: err}
	}
	g.logger.Info("game reset")
	return nil
}

// ProcessOneMonth runs the monthly update for the month in progress
// without moving the calendar.
func (g *Game) ProcessOneMonth() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closeMonth(g.clock.MonthNumber())
}

// AdvanceMonths moves the calendar forward by n whole months, running the
// monthly update for each. Returns the months actually processed.
func (g *Game) AdvanceMonths(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.clock.Finished() {
		return 0
	}
	return g.clock.Advance(n, g.processOneMonth)
}

// resetModules restores every module to its initial state, in fixed order.
func (g *Game) resetModules() {
	g.phase.Reset()
	g.ledger.Reset()
	g.ledger.Stamp(g.clock.MonthNumber())
	g.talent.Reset()
	g.researchers.Reset()
	g.products.Reset(g.clock.CurrentYear())
	g.tech.Reset()
	g.tech.SetProductShare(g.balance.Research.ProductShare)
	g.hardware.Reset()
}

// =============================================================================
// MONTHLY UPDATE - Runs with g.mu held
// =============================================================================

// processOneMonth is the clock callback. Elapsed sits on the boundary just
// crossed, so the closing month is the whole months elapsed.
func (g *Game) processOneMonth() {
	g.closeMonth(generic.WholeMonths(g.clock.ElapsedMonths()))
}

// closeMonth runs the monthly update with journal entries stamped month.
// Later entries (player actions) carry the month in progress.
func (g *Game) closeMonth(month int) {
	g.ledger.Stamp(month)

	mods := g.phase.ActiveModules()
	if mods.Any() {
		g.runModules(mods)
		g.applyMilestones()
	}

	if g.clock.Finished() {
		if g.clock.Running() {
			g.logger.Info("calendar complete", "date", g.clock.DisplayDate())
		}
		g.clock.Stop()
	}

	if err := g.saveLocked(context.Background()); err != nil {
		g.logger.Error("autosave failed", "err", err)
	}
	g.ledger.Stamp(g.clock.MonthNumber())
	g.observer.MonthProcessed(g.phase.Current())
}

func (g *Game) runModules(mods phase.Modules) {
	if mods.Talent {
		g.talent.ProcessMonth()
	}
	if mods.Researchers {
		net := g.researchers.ProcessMonth()
		if mods.Hardware && net.IsPositive() {
			g.divertToSavings(net.Mul(generic.Dec(g.researchers.Allocation())))
		}
	}

	boost := generic.Dec(g.insightMultiplier(mods))
	if mods.Talent {
		g.ledger.Add(generic.ResourceInsights, g.talent.MonthlyInsights().Mul(boost), "insights:talent")
	}
	if mods.Researchers {
		g.ledger.Add(generic.ResourceInsights, g.researchers.MonthlyInsights().Mul(boost), "insights:researcher")
	}

	if mods.Products {
		g.products.ProcessMonth(g.clock.CurrentYear())
	}

	if mods.TechTree {
		if mods.Hardware {
			work := g.hardware.WorkRate(g.researchers.Count()) * g.balance.Research.WorkScale
			g.tech.DistributeWork(work)
		}
		g.ledger.Add(generic.ResourceMoney, g.tech.IncomePerMonth(), "income:research products")
	}
}

// divertToSavings moves share from money into hardware savings.
func (g *Game) divertToSavings(share decimal.Decimal) {
	if g.ledger.Spend(generic.ResourceMoney, share, "hardware savings") {
		g.hardware.AddSavings(share)
	}
}

func (g *Game) insightMultiplier(mods phase.Modules) float64 {
	m := 1.0
	if mods.TechTree {
		m *= g.tech.TotalMultiplier()
	}
	if mods.Hardware {
		m *= g.hardware.InsightMultiplier()
	}
	return m
}

// applyMilestones consumes completion events and applies phase rules.
func (g *Game) applyMilestones() {
	for _, ev := range g.tech.Events() {
		g.logger.Info("research complete", "item", ev.ItemID, "kind", ev.Kind, "event", ev.ID)
		if next, ok := g.phase.Resolve(ev.ItemID, string(ev.Kind), ev.FirstOfKind); ok {
			g.logger.Info("phase change", "from", g.phase.Current(), "to", next, "trigger", ev.ItemID)
			g.phase.Enter(next)
		}
	}
}

// SaveKey is the store key the game persists under.
func (g *Game) SaveKey() string { return g.balance.SaveKey }
