/*
resource.go - Resource kind rules and lookup

PURPOSE:
  Describes how each resource kind behaves in the ledger. The table is
  built from configuration and handed to the ledger, so no kind carries
  hidden global state.

RULES:
  FloorAtZero: Add clamps the balance at zero instead of letting it go
               negative. Off by default, so staff upkeep can put money
               below zero.

USAGE:
  table, err := generic.NewResourceTable(
      generic.ResourceSpec{Kind: generic.ResourceMoney, Name: "Money"},
      generic.ResourceSpec{Kind: generic.ResourceInsights, Name: "Insights", FloorAtZero: true},
  )

SEE ALSO:
  - ledger.go: Applies these rules
  - factory/balance.go: Loads specs from balance.yaml
*/
package generic

import "fmt"

// ResourceSpec configures one resource kind.
type ResourceSpec struct {
	Kind        ResourceKind `yaml:"kind" json:"kind"`
	Name        string       `yaml:"name" json:"name"`
	FloorAtZero bool         `yaml:"floor_at_zero" json:"floorAtZero"`
}

// =============================================================================
// RESOURCE TABLE
// =============================================================================

// ResourceTable is an ordered, immutable set of resource specs.
type ResourceTable struct {
	order []ResourceKind
	specs map[ResourceKind]ResourceSpec
}

// NewResourceTable builds a table. Duplicate or empty kinds are rejected.
func NewResourceTable(specs ...ResourceSpec) (ResourceTable, error) {
	t := ResourceTable{specs: make(map[ResourceKind]ResourceSpec, len(specs))}
	for _, s := range specs {
		if s.Kind == "" {
			return ResourceTable{}, &ConfigError{Source: "resources", Field: "kind", Reason: "empty"}
		}
		if _, dup := t.specs[s.Kind]; dup {
			return ResourceTable{}, &ConfigError{Source: "resources", Field: string(s.Kind), Reason: "duplicate kind"}
		}
		if s.Name == "" {
			s.Name = string(s.Kind)
		}
		t.specs[s.Kind] = s
		t.order = append(t.order, s.Kind)
	}
	return t, nil
}

// DefaultResources returns the money and insights kinds with no floor.
func DefaultResources() ResourceTable {
	t, _ := NewResourceTable(
		ResourceSpec{Kind: ResourceMoney, Name: "Money"},
		ResourceSpec{Kind: ResourceInsights, Name: "Insights"},
	)
	return t
}

// Lookup finds the spec for a kind.
func (t ResourceTable) Lookup(kind ResourceKind) (ResourceSpec, error) {
	s, ok := t.specs[kind]
	if !ok {
		return ResourceSpec{}, fmt.Errorf("%w: %s", ErrUnknownResource, kind)
	}
	return s, nil
}

// Kinds returns the registered kinds in configuration order.
func (t ResourceTable) Kinds() []ResourceKind {
	out := make([]ResourceKind, len(t.order))
	copy(out, t.order)
	return out
}
