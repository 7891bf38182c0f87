package game

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/march-of-mind/clock"
	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/hardware"
	"github.com/warp/march-of-mind/phase"
	"github.com/warp/march-of-mind/products"
	"github.com/warp/march-of-mind/staff"
	"github.com/warp/march-of-mind/techtree"
)

// =============================================================================
// SAVE BLOB
// =============================================================================

// snapshot is the persisted document. Sections are pointers so an absent
// section resets its module instead of loading zero values.
type snapshot struct {
	SavedAt     int64                            `json:"savedAt"`
	Phase       *phase.Save                      `json:"phase,omitempty"`
	Resources   map[generic.ResourceKind]float64 `json:"resources,omitempty"`
	Time        *clock.Save                      `json:"time,omitempty"`
	Talent      *staff.Save                      `json:"talent,omitempty"`
	Researchers *staff.Save                      `json:"researchers,omitempty"`
	Products    *products.Save                   `json:"products,omitempty"`
	TechTree    *techtree.Save                   `json:"techTree,omitempty"`
	Hardware    *hardware.Save                   `json:"hardware,omitempty"`
}

// SaveGame writes the aggregate state under the configured key.
func (g *Game) SaveGame(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saveLocked(ctx)
}

// LoadGame replaces memory with the saved game. It returns false when there
// is nothing usable to load: no blob, or a blob that does not decode. Only a
// backend failure is returned as an error.
func (g *Game) LoadGame(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loadLocked(ctx)
}

func (g *Game) saveLocked(ctx context.Context) error {
	now := g.src.Now()
	raw, err := json.Marshal(g.snapshot(now))
	if err == nil {
		err = g.store.Set(ctx, g.balance.SaveKey, string(raw))
	}
	if err != nil {
		err = &generic.SaveError{Key: g.balance.SaveKey, Op: "save", Err: err}
	} else {
		g.lastSavedAt = now
	}
	g.observer.Saved(err)
	return err
}

func (g *Game) snapshot(now time.Time) snapshot {
	ph := g.phase.Save()
	tm := g.clock.Save()
	talent := g.talent.Save()
	researchers := g.researchers.Save()
	prods := g.products.Save()
	tech := g.tech.Save()
	hw := g.hardware.Save()

	res := make(map[generic.ResourceKind]float64)
	for _, k := range g.ledger.Kinds() {
		res[k] = g.ledger.Balance(k).InexactFloat64()
	}
	return snapshot{
		SavedAt:     now.UnixMilli(),
		Phase:       &ph,
		Resources:   res,
		Time:        &tm,
		Talent:      &talent,
		Researchers: &researchers,
		Products:    &prods,
		TechTree:    &tech,
		Hardware:    &hw,
	}
}

func (g *Game) loadLocked(ctx context.Context) (found bool, err error) {
	defer func() { g.observer.Loaded(found, err) }()

	raw, ok, err := g.store.Get(ctx, g.balance.SaveKey)
	if err != nil {
		return false, &generic.SaveError{Key: g.balance.SaveKey, Op: "load", Err: err}
	}
	if !ok {
		return false, nil
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		g.logger.Warn("ignoring malformed save", "key", g.balance.SaveKey, "err", err)
		return false, nil
	}
	if snap.Phase != nil && snap.Phase.GamePhase != "" {
		if _, err := phase.Parse(snap.Phase.GamePhase); err != nil {
			g.logger.Warn("ignoring malformed save", "key", g.balance.SaveKey, "err", err)
			return false, nil
		}
	}

	g.apply(snap)
	if snap.SavedAt > 0 {
		g.lastSavedAt = time.UnixMilli(snap.SavedAt)
	}
	return true, nil
}

// apply restores every module from snap. The phase is already validated.
func (g *Game) apply(snap snapshot) {
	g.phase.Reset()
	if snap.Phase != nil {
		_ = g.phase.Load(*snap.Phase)
	}

	g.ledger.Reset()
	for kind, v := range snap.Resources {
		g.ledger.Set(kind, decimal.NewFromFloat(v))
	}

	g.clock.Load(valueOr(snap.Time))
	g.ledger.Stamp(g.clock.MonthNumber())
	g.talent.Load(valueOr(snap.Talent))
	g.researchers.Load(valueOr(snap.Researchers))
	g.products.Load(valueOr(snap.Products), g.clock.CurrentYear())

	g.tech.Load(valueOr(snap.TechTree))
	if snap.TechTree == nil || snap.TechTree.ProductShare == nil {
		g.tech.SetProductShare(g.balance.Research.ProductShare)
	}
	g.hardware.Load(valueOr(snap.Hardware))
}

func valueOr[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
