// Package catalog is the read-only price and weight lookup shared by every
// calculator. A Catalog is never mutated after New, so it is safe to share
// across goroutines without locking; a price change builds a new one.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/Simplici0/fabquote/internal/domain"
)

// SeededPrice is a supplier-quoted price that overrides the market average
// for one profile.
type SeededPrice struct {
	PricePerFoot float64 `json:"price_per_foot"`
	Supplier     string  `json:"supplier"`
}

// Catalog answers price and weight questions by profile key.
type Catalog struct {
	perFoot  map[string]float64
	perSqFt  map[string]float64
	perUnit  map[string]float64
	weights  map[string]float64
	hardware map[string]HardwareSpec
	seeded   map[string]SeededPrice
}

// Option configures a Catalog at construction.
type Option func(*Catalog)

// WithSeededPrices layers supplier-quoted prices over the market averages.
func WithSeededPrices(prices map[string]SeededPrice) Option {
	return func(c *Catalog) {
		for k, v := range prices {
			if v.PricePerFoot > 0 {
				c.seeded[k] = v
			}
		}
	}
}

// New builds a catalog from the built-in tables plus any options.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		perFoot:  maps.Clone(pricePerFoot),
		perSqFt:  maps.Clone(pricePerSqFt),
		perUnit:  maps.Clone(pricePerUnit),
		weights:  maps.Clone(stockWeights),
		hardware: maps.Clone(hardwareCatalog),
		seeded:   make(map[string]SeededPrice),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Default is a catalog with no overrides.
func Default() *Catalog {
	return New()
}

// LoadSeededPrices decodes a JSON object of profile -> {price_per_foot,
// supplier}.
func LoadSeededPrices(r io.Reader) (map[string]SeededPrice, error) {
	var prices map[string]SeededPrice
	if err := json.NewDecoder(r).Decode(&prices); err != nil {
		return nil, fmt.Errorf("decode seeded prices: %w", err)
	}
	return prices, nil
}

// LookupPricePerFoot returns the per-foot price and whether the profile is
// known. Seeded prices win over market averages.
func (c *Catalog) LookupPricePerFoot(profile string) (float64, bool) {
	if s, ok := c.seeded[profile]; ok {
		return s.PricePerFoot, true
	}
	p, ok := c.perFoot[profile]
	return p, ok
}

// PricePerFoot returns the per-foot price, or MarketPricePerFoot when the
// profile is unknown.
func (c *Catalog) PricePerFoot(profile string) float64 {
	if p, ok := c.LookupPricePerFoot(profile); ok && p > 0 {
		return p
	}
	return MarketPricePerFoot
}

// PriceSource names where a per-foot price came from.
func (c *Catalog) PriceSource(profile string) (float64, string) {
	if s, ok := c.seeded[profile]; ok {
		supplier := s.Supplier
		if supplier == "" {
			supplier = "seeded"
		}
		return s.PricePerFoot, supplier
	}
	if p, ok := c.perFoot[profile]; ok {
		return p, "market_average"
	}
	return MarketPricePerFoot, "fallback"
}

// PricePerSqFt returns the per-square-foot price for sheet stock, or
// MarketPricePerSqFt when unknown.
func (c *Catalog) PricePerSqFt(sheet string) float64 {
	if p, ok := c.perSqFt[sheet]; ok && p > 0 {
		return p
	}
	return MarketPricePerSqFt
}

// UnitPrice returns a per-unit price and whether the key is known.
func (c *Catalog) UnitPrice(key string) (float64, bool) {
	p, ok := c.perUnit[key]
	return p, ok
}

// WeightPerFoot returns lb/ft for a stock profile, or zero when unknown.
func (c *Catalog) WeightPerFoot(profile string) float64 {
	return c.weights[profile]
}

// WeightLbs is the weight of lengthFt of a profile. Unknown profiles use
// DefaultWeightPerFt.
func (c *Catalog) WeightLbs(profile string, lengthFt float64) float64 {
	w, ok := c.weights[profile]
	if !ok || w == 0 {
		w = DefaultWeightPerFt
	}
	return domain.Round(w*lengthFt, 3)
}

// PlateWeightLbs is the weight of a solid rectangle given in inches.
func (c *Catalog) PlateWeightLbs(lengthIn, widthIn, thicknessIn float64, material string) float64 {
	d, ok := densities[material]
	if !ok {
		d = MildSteelDensity
	}
	return domain.Round(lengthIn*widthIn*thicknessIn*d, 3)
}

// GaugeThickness converts a gauge key such as "11ga" to inches.
func GaugeThickness(gauge string) float64 {
	return gaugeThickness[strings.ToLower(strings.TrimSpace(gauge))]
}

// Hardware returns the supplier offers for a hardware key. Unknown keys get
// a single estimated option so a price is never silently zero.
func (c *Catalog) Hardware(key string) []domain.PricingOption {
	spec, ok := c.hardware[key]
	if !ok {
		return []domain.PricingOption{{Supplier: "Estimated", Price: MarketHardwarePrice}}
	}
	return slices.Clone(spec.Options)
}

// HardwareCategory returns the category of a hardware key, or "".
func (c *Catalog) HardwareCategory(key string) string {
	return c.hardware[key].Category
}

// HasHardware reports whether key is in the hardware catalog.
func (c *Catalog) HasHardware(key string) bool {
	_, ok := c.hardware[key]
	return ok
}

// Profiles lists every profile with a per-foot price, sorted.
func (c *Catalog) Profiles() []string {
	keys := make([]string, 0, len(c.perFoot)+len(c.seeded))
	seen := make(map[string]bool)
	for k := range c.perFoot {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range c.seeded {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// SeededCount is the number of supplier-quoted overrides in effect.
func (c *Catalog) SeededCount() int {
	return len(c.seeded)
}

// ConcreteCubicYards is the volume of n round holes of the given diameter
// and depth, both in inches.
func ConcreteCubicYards(n int, holeDiameterIn, depthIn float64) float64 {
	r := holeDiameterIn / 2
	return math.Pi * r * r * depthIn * float64(n) / 46656.0
}
