/*
Package factory builds game configuration from embedded data files.

PURPOSE:
  Converts the embedded balance.yaml and JSON catalogs into the typed
  values the game modules take. Tuning changes need no code changes: an
  override YAML file is merged over the embedded defaults, field by field.

FILES (factory/data):
  balance.yaml   Clock, costs, roles, market tuning, milestone rules
  products.json  Product templates, released by year
  techtree.json  Research items and roots
  hardware.json  Hardware ladder, cheapest first

USAGE:
  bal, err := factory.LoadBalance("")            // embedded defaults
  bal, err := factory.LoadBalance("./hard.yaml") // defaults + overrides
  cat, err := factory.DefaultCatalog()

SEE ALSO:
  - catalog.go: Catalog parsing and validation
  - game/game.go: Consumes Balance and Catalog
*/
package factory

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warp/march-of-mind/clock"
	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/phase"
	"github.com/warp/march-of-mind/products"
	"github.com/warp/march-of-mind/staff"
)

//go:embed data/*
var dataFS embed.FS

// =============================================================================
// BALANCE SCHEMA
// =============================================================================

// Balance is the full tuning of a game.
type Balance struct {
	Time        clock.Config           `yaml:"time"`
	SaveKey     string                 `yaml:"save_key"`
	JournalSize int                    `yaml:"journal_size"`
	Resources   []generic.ResourceSpec `yaml:"resources"`
	Actions     ActionCosts            `yaml:"actions"`
	Roles       Roles                  `yaml:"roles"`
	Products    products.Config        `yaml:"products"`
	Research    Research               `yaml:"research"`
	Milestones  []phase.Milestone      `yaml:"milestones"`
}

// ActionCosts tunes the manual player actions.
type ActionCosts struct {
	WorkIncome          float64 `yaml:"work_income"`
	ThinkBase           float64 `yaml:"think_base"`
	CompanyFoundingCost float64 `yaml:"company_founding_cost"`
	LabFoundingCost     float64 `yaml:"lab_founding_cost"`
}

type Roles struct {
	Talent     staff.Role `yaml:"talent"`
	Researcher staff.Role `yaml:"researcher"`
}

// Research tunes how hardware work reaches the tech tree.
type Research struct {
	WorkScale    float64 `yaml:"work_scale"`
	ProductShare float64 `yaml:"product_share"`
}

// ResourceTable builds the ledger's resource table.
func (b Balance) ResourceTable() (generic.ResourceTable, error) {
	return generic.NewResourceTable(b.Resources...)
}

// Validate checks the fields the game cannot run without.
func (b Balance) Validate() error {
	bad := func(field, reason string) error {
		return &generic.ConfigError{Source: "balance", Field: field, Reason: reason}
	}
	switch {
	case b.Time.MonthDuration <= 0:
		return bad("time.month_duration", "must be positive")
	case b.Time.TickInterval <= 0:
		return bad("time.tick_interval", "must be positive")
	case b.Time.EndYear != 0 && b.Time.EndYear < b.Time.StartYear:
		return bad("time.end_year", "before start_year")
	case b.SaveKey == "":
		return bad("save_key", "empty")
	case b.Roles.Talent.ID == "" || b.Roles.Researcher.ID == "":
		return bad("roles", "talent and researcher need ids")
	case b.Roles.Talent.ID == b.Roles.Researcher.ID:
		return bad("roles", "duplicate role id")
	case b.Research.ProductShare < 0 || b.Research.ProductShare > 1:
		return bad("research.product_share", "must be within [0, 1]")
	case b.Products.MinMultiplier > b.Products.MaxMultiplier:
		return bad("products.min_multiplier", "greater than max_multiplier")
	}
	table, err := b.ResourceTable()
	if err != nil {
		return err
	}
	for _, k := range []generic.ResourceKind{generic.ResourceMoney, generic.ResourceInsights} {
		if _, err := table.Lookup(k); err != nil {
			return bad("resources", err.Error())
		}
	}
	if _, err := phase.NewMachine(b.Milestones); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// DefaultBalance returns the embedded tuning.
func DefaultBalance() (Balance, error) {
	raw, err := dataFS.ReadFile("data/balance.yaml")
	if err != nil {
		return Balance{}, fmt.Errorf("read embedded balance: %w", err)
	}
	var b Balance
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return Balance{}, &generic.ConfigError{Source: "balance.yaml", Reason: err.Error()}
	}
	return b, b.Validate()
}

// LoadBalance returns the embedded tuning with path's fields merged over
// it. An empty path returns the defaults.
func LoadBalance(path string) (Balance, error) {
	b, err := DefaultBalance()
	if err != nil || path == "" {
		return b, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Balance{}, fmt.Errorf("read balance override: %w", err)
	}
	return ParseBalanceOverride(b, raw)
}

// ParseBalanceOverride decodes raw YAML over base.
func ParseBalanceOverride(base Balance, raw []byte) (Balance, error) {
	if err := yaml.Unmarshal(raw, &base); err != nil {
		return Balance{}, &generic.ConfigError{Source: "balance override", Reason: err.Error()}
	}
	return base, base.Validate()
}
