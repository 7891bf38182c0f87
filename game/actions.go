package game

import (
	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/phase"
	"github.com/warp/march-of-mind/staff"
)

// =============================================================================
// PLAYER ACTIONS
// =============================================================================
//
// Every action takes the game lock. A false result means the action was not
// possible right now (insufficient funds, wrong phase, wrong state); errors
// are reserved for unknown ids.

// act runs fn under the lock and reports the outcome.
func (g *Game) act(name string, fn func() bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	ok := fn()
	g.logger.Debug("action", "name", name, "ok", ok)
	g.observer.ActionTaken(name, ok)
	return ok
}

// actID is act for actions addressed by id.
func (g *Game) actID(name, id string, lookup func(string) error, fn func() bool) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := lookup(id); err != nil {
		return false, err
	}
	ok := fn()
	g.logger.Debug("action", "name", name, "id", id, "ok", ok)
	g.observer.ActionTaken(name, ok)
	return ok, nil
}

// Work earns the day-job income. Always available.
func (g *Game) Work() bool {
	return g.act("work", func() bool {
		g.ledger.Add(generic.ResourceMoney, generic.Dec(g.balance.Actions.WorkIncome), "work")
		return true
	})
}

// FoundCompany leaves the day job once the founding cost is affordable.
func (g *Game) FoundCompany() bool {
	return g.act("found_company", func() bool {
		if g.phase.Current() != phase.Job {
			return false
		}
		if !g.ledger.Spend(generic.ResourceMoney, generic.Dec(g.balance.Actions.CompanyFoundingCost), "found company") {
			return false
		}
		g.phase.Enter(phase.Company)
		g.logger.Info("company founded", "date", g.clock.DisplayDate())
		return true
	})
}

// FoundLab opens the research lab, paid in insights.
func (g *Game) FoundLab() bool {
	return g.act("found_lab", func() bool {
		if g.phase.Current() != phase.Company {
			return false
		}
		if !g.ledger.Spend(generic.ResourceInsights, generic.Dec(g.balance.Actions.LabFoundingCost), "found lab") {
			return false
		}
		g.phase.Enter(phase.Research)
		g.logger.Info("lab founded", "date", g.clock.DisplayDate())
		return true
	})
}

// Think is the manual insight click. The researcher pool adds its per-click
// yield on top of the base amount.
func (g *Game) Think() bool {
	return g.act("think", func() bool {
		mult := g.insightMultiplier(g.phase.ActiveModules())
		g.researchers.Think(g.balance.Actions.ThinkBase, mult)
		return true
	})
}

// Hire adds one member of roleID if its module is active and affordable.
func (g *Game) Hire(roleID string) (bool, error) {
	var pool *staff.Pool
	return g.actID("hire", roleID, func(id string) (err error) {
		pool, err = g.pool(id)
		return err
	}, func() bool {
		return g.poolActive(pool) && pool.Hire()
	})
}

// Fire removes one member of roleID.
func (g *Game) Fire(roleID string) (bool, error) {
	var pool *staff.Pool
	return g.actID("fire", roleID, func(id string) (err error) {
		pool, err = g.pool(id)
		return err
	}, func() bool {
		return g.poolActive(pool) && pool.Fire()
	})
}

// SetAllocation sets the researcher savings share, clamped to [0, 1].
func (g *Game) SetAllocation(v float64) bool {
	return g.act("set_allocation", func() bool {
		g.researchers.SetAllocation(v)
		return true
	})
}

func (g *Game) pool(roleID string) (*staff.Pool, error) {
	switch roleID {
	case g.talent.Role().ID:
		return g.talent, nil
	case g.researchers.Role().ID:
		return g.researchers, nil
	}
	return nil, generic.UnknownRole(roleID)
}

func (g *Game) poolActive(p *staff.Pool) bool {
	mods := g.phase.ActiveModules()
	if p == g.talent {
		return mods.Talent
	}
	return mods.Researchers
}

// Launch releases the product at the head of the available list.
func (g *Game) Launch() bool {
	return g.act("launch", func() bool {
		return g.phase.ActiveModules().Products && g.products.Launch()
	})
}

func (g *Game) ApplyMarketing() bool {
	return g.act("marketing", func() bool {
		return g.phase.ActiveModules().Products && g.products.ApplyMarketing()
	})
}

// Unlock starts research on an unlockable item.
func (g *Game) Unlock(itemID string) (bool, error) {
	return g.actID("unlock", itemID, g.lookupItem, func() bool {
		return g.phase.ActiveModules().TechTree && g.tech.Unlock(itemID)
	})
}

// ApplyWork adds manual research work to an in-progress item.
func (g *Game) ApplyWork(itemID string, amount float64) (bool, error) {
	return g.actID("apply_work", itemID, g.lookupItem, func() bool {
		if !g.phase.ActiveModules().TechTree || !g.tech.ApplyWork(itemID, amount) {
			return false
		}
		g.applyMilestones()
		return true
	})
}

func (g *Game) SelectProduct(itemID string) (bool, error) {
	return g.actID("select_product", itemID, g.lookupItem, func() bool {
		return g.tech.SelectProduct(itemID)
	})
}

func (g *Game) SelectDiscovery(itemID string) (bool, error) {
	return g.actID("select_discovery", itemID, g.lookupItem, func() bool {
		return g.tech.SelectDiscovery(itemID)
	})
}

// Select picks itemID for its own kind.
func (g *Game) Select(itemID string) (bool, error) {
	return g.actID("select", itemID, g.lookupItem, func() bool {
		return g.tech.Select(itemID)
	})
}

// SetWorkSplit sets the share of monthly research work that goes to the
// selected product. The rest goes to the selected discovery.
func (g *Game) SetWorkSplit(productShare float64) bool {
	return g.act("set_work_split", func() bool {
		g.tech.SetProductShare(productShare)
		return true
	})
}

func (g *Game) lookupItem(id string) error {
	_, err := g.tech.Item(id)
	return err
}

// Upgrade buys the next hardware tier from savings.
func (g *Game) Upgrade() bool {
	return g.act("upgrade", func() bool {
		if !g.phase.ActiveModules().Hardware || !g.hardware.Upgrade() {
			return false
		}
		g.logger.Info("hardware upgraded", "tier", g.hardware.Current().ID)
		return true
	})
}

// DepositSavings moves amount of money into hardware savings.
func (g *Game) DepositSavings(amount float64) bool {
	return g.act("deposit_savings", func() bool {
		if !g.phase.ActiveModules().Hardware || amount <= 0 {
			return false
		}
		share := generic.Dec(amount)
		if !g.ledger.Spend(generic.ResourceMoney, share, "hardware savings") {
			return false
		}
		g.hardware.AddSavings(share)
		return true
	})
}

// EnterPhase switches phase unconditionally.
func (g *Game) EnterPhase(name string) error {
	p, err := phase.Parse(name)
	if err != nil {
		return err
	}
	g.act("enter_phase", func() bool {
		g.phase.Enter(p)
		return true
	})
	return nil
}

func (g *Game) Pause() {
	g.act("pause", func() bool {
		g.clock.Pause()
		return true
	})
}

func (g *Game) Resume() {
	g.act("resume", func() bool {
		g.clock.Resume()
		return true
	})
}
