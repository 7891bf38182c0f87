/*
Package techtree tracks research items gated by prerequisites.

PURPOSE:
  Items (products and discoveries) move through a fixed lifecycle. The
  tree owns item state, work progress and the per-kind selection, and
  emits completion events for the orchestrator to react to.

STATE MACHINE:
  locked --(referenced, all prerequisites complete)--> unlockable
  unlockable --Unlock (spend cost in insights)-------> in_progress
  in_progress --ApplyWork reaches workRequired-------> complete

KEY CONCEPTS:
  - referenced:  An item named by a root or by a completed item's
                 completionUnlocks. Only referenced items can leave locked.
  - conjunctive: Every prerequisite must be complete. A referenced item
                 whose prerequisites are not yet complete stays locked and
                 is re-checked after every later completion.
  - idempotent:  Re-referencing an item never moves it backwards.

DERIVED VALUES:
  TotalMultiplier = product of boost over complete discoveries (1 if none)
  IncomePerMonth  = sum of incomePerMonth over complete products

SEE ALSO:
  - events.go: Completion events
  - game/game.go: applyMilestones drives phase transitions
*/
package techtree

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/march-of-mind/generic"
)

// Kind distinguishes research that yields income from research that
// yields multipliers.
type Kind string

const (
	KindProduct   Kind = "product"
	KindDiscovery Kind = "discovery"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindProduct, KindDiscovery:
		return Kind(s), true
	}
	return "", false
}

type State string

const (
	StateLocked     State = "locked"
	StateUnlockable State = "unlockable"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// Item is a catalog entry.
type Item struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Kind              Kind     `json:"kind"`
	Cost              float64  `json:"cost"`
	Prerequisites     []string `json:"prerequisites,omitempty"`
	CompletionUnlocks []string `json:"completionUnlocks,omitempty"`
	WorkRequired      float64  `json:"workRequired"`
	Boost             float64  `json:"boost,omitempty"`
	IncomePerMonth    float64  `json:"incomePerMonth,omitempty"`
}

// Catalog is the static definition of a tree.
type Catalog struct {
	Roots []string `json:"roots"`
	Items []Item   `json:"items"`
}

// Progress is the work state of an in-progress item.
type Progress struct {
	Required float64 `json:"required"`
	Applied  float64 `json:"applied"`
}

// Fraction returns applied/required clamped to [0, 1].
func (p Progress) Fraction() float64 {
	if p.Required <= 0 {
		return 1
	}
	f := p.Applied / p.Required
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// DefaultProductShare is the share of research work sent to the selected
// product; the remainder goes to the selected discovery.
const DefaultProductShare = 0.5

// =============================================================================
// TREE
// =============================================================================

type Tree struct {
	catalog Catalog
	items   map[string]Item
	ledger  generic.Ledger
	now     func() time.Time

	states       map[string]State
	progress     map[string]*Progress
	referenced   map[string]bool
	selected     map[Kind]string
	productShare float64
	events       []Event
}

// New validates the catalog and returns a tree in its initial state.
func New(catalog Catalog, ledger generic.Ledger) (*Tree, error) {
	items := make(map[string]Item, len(catalog.Items))
	for i, it := range catalog.Items {
		if it.ID == "" {
			return nil, &generic.ConfigError{Source: "techtree", Field: fmt.Sprintf("items[%d].id", i), Reason: "empty"}
		}
		if _, dup := items[it.ID]; dup {
			return nil, &generic.ConfigError{Source: "techtree", Field: it.ID, Reason: "duplicate id"}
		}
		if _, ok := ParseKind(string(it.Kind)); !ok {
			return nil, &generic.ConfigError{Source: "techtree", Field: it.ID, Reason: fmt.Sprintf("unknown kind %q", it.Kind)}
		}
		items[it.ID] = it
	}
	check := func(owner, field string, ids []string) error {
		for _, id := range ids {
			if _, ok := items[id]; !ok {
				return &generic.ConfigError{Source: "techtree", Field: owner + "." + field, Reason: "unknown item " + id}
			}
		}
		return nil
	}
	if err := check("catalog", "roots", catalog.Roots); err != nil {
		return nil, err
	}
	for _, it := range catalog.Items {
		if err := check(it.ID, "prerequisites", it.Prerequisites); err != nil {
			return nil, err
		}
		if err := check(it.ID, "completionUnlocks", it.CompletionUnlocks); err != nil {
			return nil, err
		}
	}

	t := &Tree{catalog: catalog, items: items, ledger: ledger, now: time.Now}
	t.Reset()
	return t, nil
}

// Reset returns every item to locked and references the roots.
func (t *Tree) Reset() {
	t.states = make(map[string]State, len(t.items))
	for id := range t.items {
		t.states[id] = StateLocked
	}
	t.progress = make(map[string]*Progress)
	t.referenced = make(map[string]bool)
	t.selected = make(map[Kind]string)
	t.productShare = DefaultProductShare
	t.events = nil
	for _, id := range t.catalog.Roots {
		t.reference(id)
	}
}

// SetTimeSource overrides the clock used to stamp events.
func (t *Tree) SetTimeSource(now func() time.Time) {
	t.now = now
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Unlock spends the item's cost in insights and starts work on it.
func (t *Tree) Unlock(id string) bool {
	it, ok := t.items[id]
	if !ok || t.states[id] != StateUnlockable {
		return false
	}
	if it.Cost > 0 && !t.ledger.Spend(generic.ResourceInsights, generic.Dec(it.Cost), "unlock:"+id) {
		return false
	}
	t.states[id] = StateInProgress
	t.progress[id] = &Progress{Required: it.WorkRequired}
	if it.WorkRequired <= 0 {
		t.complete(id)
	}
	return true
}

// ApplyWork adds work to an in-progress item, completing it when the
// required amount is reached.
func (t *Tree) ApplyWork(id string, amount float64) bool {
	if amount < 0 || t.states[id] != StateInProgress {
		return false
	}
	p := t.progress[id]
	p.Applied += amount
	if p.Applied >= p.Required {
		p.Applied = p.Required
		t.complete(id)
	}
	return true
}

// Select makes an in-progress item the work target for its kind.
func (t *Tree) Select(id string) bool {
	it, ok := t.items[id]
	if !ok || t.states[id] != StateInProgress {
		return false
	}
	t.selected[it.Kind] = id
	return true
}

// SelectProduct selects id only if it is a product.
func (t *Tree) SelectProduct(id string) bool {
	return t.items[id].Kind == KindProduct && t.Select(id)
}

// SelectDiscovery selects id only if it is a discovery.
func (t *Tree) SelectDiscovery(id string) bool {
	return t.items[id].Kind == KindDiscovery && t.Select(id)
}

// SetProductShare sets the product share of DistributeWork, clamped to [0, 1].
func (t *Tree) SetProductShare(v float64) {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	t.productShare = v
}

// DistributeWork splits total between the selected product and the
// selected discovery. A share with no selection is lost.
func (t *Tree) DistributeWork(total float64) {
	if total <= 0 {
		return
	}
	if id := t.selected[KindProduct]; id != "" {
		t.ApplyWork(id, total*t.productShare)
	}
	if id := t.selected[KindDiscovery]; id != "" {
		t.ApplyWork(id, total*(1-t.productShare))
	}
}

func (t *Tree) complete(id string) {
	it := t.items[id]
	t.states[id] = StateComplete
	delete(t.progress, id)
	if t.selected[it.Kind] == id {
		delete(t.selected, it.Kind)
	}
	t.events = append(t.events, newCompletedEvent(it, t.countComplete(it.Kind) == 1, t.now()))

	for _, next := range it.CompletionUnlocks {
		t.reference(next)
	}
	// A prerequisite may have been the last blocker of an earlier reference.
	for ref := range t.referenced {
		t.promote(ref)
	}
}

func (t *Tree) reference(id string) {
	t.referenced[id] = true
	t.promote(id)
}

func (t *Tree) promote(id string) {
	if t.states[id] != StateLocked {
		return
	}
	for _, pre := range t.items[id].Prerequisites {
		if t.states[pre] != StateComplete {
			return
		}
	}
	t.states[id] = StateUnlockable
}

func (t *Tree) countComplete(kind Kind) int {
	n := 0
	for id, s := range t.states {
		if s == StateComplete && t.items[id].Kind == kind {
			n++
		}
	}
	return n
}

// =============================================================================
// QUERIES
// =============================================================================

// Item returns the catalog entry for id.
func (t *Tree) Item(id string) (Item, error) {
	it, ok := t.items[id]
	if !ok {
		return Item{}, generic.UnknownItem(id)
	}
	return it, nil
}

// State returns the state of id; unknown ids report locked.
func (t *Tree) State(id string) State {
	if s, ok := t.states[id]; ok {
		return s
	}
	return StateLocked
}

// Progress returns the work state of an in-progress item.
func (t *Tree) Progress(id string) (Progress, bool) {
	p, ok := t.progress[id]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

func (t *Tree) Selected(kind Kind) string { return t.selected[kind] }
func (t *Tree) ProductShare() float64     { return t.productShare }

// Items returns the items of kind in the given state, in catalog order.
// An empty kind matches both kinds.
func (t *Tree) Items(kind Kind, state State) []Item {
	var out []Item
	for _, it := range t.catalog.Items {
		if (kind == "" || it.Kind == kind) && t.states[it.ID] == state {
			out = append(out, it)
		}
	}
	return out
}

func (t *Tree) Available(kind Kind) []Item  { return t.Items(kind, StateUnlockable) }
func (t *Tree) InProgress(kind Kind) []Item { return t.Items(kind, StateInProgress) }
func (t *Tree) Completed(kind Kind) []Item  { return t.Items(kind, StateComplete) }

// All returns every catalog item in catalog order.
func (t *Tree) All() []Item { return append([]Item(nil), t.catalog.Items...) }

// TotalMultiplier is the product of complete discovery boosts.
func (t *Tree) TotalMultiplier() float64 {
	m := 1.0
	for _, it := range t.Completed(KindDiscovery) {
		if it.Boost > 0 {
			m *= it.Boost
		}
	}
	return m
}

// IncomePerMonth is the summed income of complete products.
func (t *Tree) IncomePerMonth() decimal.Decimal {
	total := decimal.Zero
	for _, it := range t.Completed(KindProduct) {
		total = total.Add(generic.Dec(it.IncomePerMonth))
	}
	return total
}

// =============================================================================
// PERSISTENCE
// =============================================================================

type Save struct {
	AvailableIDs      []string            `json:"availableIds,omitempty"`
	UnlockedIDs       []string            `json:"unlockedIds"`
	ProgressByID      map[string]Progress `json:"progressById"`
	CompletedIDs      []string            `json:"completedIds"`
	SelectedProduct   string              `json:"selectedProduct,omitempty"`
	SelectedDiscovery string              `json:"selectedDiscovery,omitempty"`
	ProductShare      *float64            `json:"productShare,omitempty"`
}

func (t *Tree) Save() Save {
	s := Save{
		UnlockedIDs:       ids(t.InProgress("")),
		CompletedIDs:      ids(t.Completed("")),
		AvailableIDs:      ids(t.Available("")),
		ProgressByID:      make(map[string]Progress, len(t.progress)),
		SelectedProduct:   t.selected[KindProduct],
		SelectedDiscovery: t.selected[KindDiscovery],
	}
	for id, p := range t.progress {
		s.ProgressByID[id] = *p
	}
	share := t.productShare
	s.ProductShare = &share
	return s
}

// Load restores a saved tree. Ids missing from the catalog are skipped.
func (t *Tree) Load(s Save) {
	t.Reset()
	for _, id := range s.CompletedIDs {
		if _, ok := t.items[id]; ok {
			t.states[id] = StateComplete
		}
	}
	for _, id := range s.UnlockedIDs {
		it, ok := t.items[id]
		if !ok || t.states[id] == StateComplete {
			continue
		}
		t.states[id] = StateInProgress
		p := Progress{Required: it.WorkRequired}
		if saved, ok := s.ProgressByID[id]; ok {
			p = saved
		}
		t.progress[id] = &p
	}
	for _, id := range s.AvailableIDs {
		if t.states[id] == StateLocked {
			if _, ok := t.items[id]; ok {
				t.referenced[id] = true
				t.states[id] = StateUnlockable
			}
		}
	}
	for _, it := range t.catalog.Items {
		if t.states[it.ID] == StateComplete {
			for _, next := range it.CompletionUnlocks {
				t.referenced[next] = true
			}
		}
	}
	for ref := range t.referenced {
		t.promote(ref)
	}
	if s.SelectedProduct != "" {
		t.SelectProduct(s.SelectedProduct)
	}
	if s.SelectedDiscovery != "" {
		t.SelectDiscovery(s.SelectedDiscovery)
	}
	if s.ProductShare != nil {
		t.SetProductShare(*s.ProductShare)
	}
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
