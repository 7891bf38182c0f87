package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/hardware"
	"github.com/warp/march-of-mind/products"
	"github.com/warp/march-of-mind/techtree"
)

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is the static content of a game.
type Catalog struct {
	Products []products.Product
	TechTree techtree.Catalog
	Hardware []hardware.Tier
}

// DefaultCatalog parses the embedded catalogs.
func DefaultCatalog() (Catalog, error) {
	files := make(map[string][]byte, 3)
	for _, name := range []string{"products.json", "techtree.json", "hardware.json"} {
		raw, err := dataFS.ReadFile("data/" + name)
		if err != nil {
			return Catalog{}, fmt.Errorf("read embedded %s: %w", name, err)
		}
		files[name] = raw
	}
	return ParseCatalog(files["products.json"], files["techtree.json"], files["hardware.json"])
}

// ParseCatalog decodes and validates the three catalog documents.
func ParseCatalog(productsJSON, techJSON, hardwareJSON []byte) (Catalog, error) {
	var c Catalog
	if err := decode("products.json", productsJSON, &c.Products); err != nil {
		return Catalog{}, err
	}
	if err := decode("techtree.json", techJSON, &c.TechTree); err != nil {
		return Catalog{}, err
	}
	if err := decode("hardware.json", hardwareJSON, &c.Hardware); err != nil {
		return Catalog{}, err
	}
	return c, c.Validate()
}

// Validate checks cross-entry rules that the module constructors do not.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		switch {
		case p.ID == "":
			return &generic.ConfigError{Source: "products.json", Field: fmt.Sprintf("[%d].id", i), Reason: "empty"}
		case seen[p.ID]:
			return &generic.ConfigError{Source: "products.json", Field: p.ID, Reason: "duplicate id"}
		case p.BaseCost < 0 || p.BaseIncome < 0:
			return &generic.ConfigError{Source: "products.json", Field: p.ID, Reason: "negative cost or income"}
		}
		seen[p.ID] = true
	}
	for i := 1; i < len(c.Hardware); i++ {
		if c.Hardware[i].Flops < c.Hardware[i-1].Flops {
			return &generic.ConfigError{Source: "hardware.json", Field: c.Hardware[i].ID, Reason: "flops must not decrease"}
		}
	}
	if _, err := hardware.New(c.Hardware); err != nil {
		return err
	}
	if _, err := techtree.New(c.TechTree, nil); err != nil {
		return err
	}
	return nil
}

func decode(source string, raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &generic.ConfigError{Source: source, Reason: err.Error()}
	}
	return nil
}
