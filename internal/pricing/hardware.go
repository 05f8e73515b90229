package pricing

import (
	"fmt"
	"math"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/finishing"
)

// NoPrice is the supplier recorded when no option carries a price.
const NoPrice = "NO PRICE FOUND"

// Cheapest returns the lowest-priced option. Options without a positive
// price are ignored.
func Cheapest(opts []domain.PricingOption) (price float64, supplier string) {
	found := false
	for _, o := range opts {
		if o.Price <= 0 {
			continue
		}
		if !found || o.Price < price {
			price, supplier, found = o.Price, o.Supplier, true
		}
	}
	if !found {
		return 0, NoPrice
	}
	return price, supplier
}

// PriceHardware prices every hardware line at its cheapest option.
func PriceHardware(items []domain.HardwareItem) []domain.PricedHardware {
	out := make([]domain.PricedHardware, 0, len(items))
	for _, it := range items {
		qty := max(it.Quantity, 1)
		price, supplier := Cheapest(it.Options)
		it.Quantity = qty
		out = append(out, domain.PricedHardware{
			HardwareItem: it,
			UnitPrice:    price,
			Supplier:     supplier,
			LineTotal:    domain.Round(price*float64(qty), 2),
		})
	}
	return out
}

func singleSourced(items []domain.PricedHardware) []string {
	var out []string
	for _, it := range items {
		var priced []domain.PricingOption
		for _, o := range it.Options {
			if o.Price > 0 {
				priced = append(priced, o)
			}
		}
		if len(priced) == 1 && priced[0].Supplier == "McMaster-Carr" {
			out = append(out, it.Description)
		}
	}
	return out
}

// Consumable usage rates.
const (
	wirePerLb          = 3.50
	wireLbsPer100In    = 0.5
	grindDiscEach      = 4.50
	grindDiscsPer100In = 1.0
	flapDiscEach       = 6.50
	flapDiscsPer100In  = 0.5
	gasPerCuFt         = 0.08
	gasCuFtPerWeldHour = 25.0
	weldInchesPerHour  = 10.0
	clearcoatCan       = 12.50
	clearcoatCoverage  = 25.0
	primerCan          = 8.50
	primerCoverage     = 20.0
)

// Consumables estimates wire, discs, gas and finish cans from weld length,
// finish area and the finish answer.
func Consumables(weldInches, areaSqFt float64, finish string) []domain.ConsumableItem {
	var out []domain.ConsumableItem
	add := func(desc string, qty int, unit float64) {
		if qty <= 0 {
			return
		}
		out = append(out, domain.ConsumableItem{
			Description: desc,
			Quantity:    qty,
			UnitPrice:   unit,
			LineTotal:   domain.Round(float64(qty)*unit, 2),
		})
	}
	up := func(v float64) int { return int(math.Ceil(v - 1e-9)) }

	hundreds := weldInches / 100
	wire := up(hundreds * wireLbsPer100In)
	add(fmt.Sprintf("ER70S-6 welding wire (%d lbs)", wire), wire, wirePerLb)
	discs := up(hundreds * grindDiscsPer100In)
	add(fmt.Sprintf("4.5\" grinding disc x%d", discs), discs, grindDiscEach)
	flaps := up(hundreds * flapDiscsPer100In)
	add(fmt.Sprintf("4.5\" flap disc x%d", flaps), flaps, flapDiscEach)
	gas := up(weldInches / weldInchesPerHour * gasCuFtPerWeldHour)
	add(fmt.Sprintf("75/25 Ar/CO2 shielding gas (%d cu ft)", gas), gas, gasPerCuFt)

	switch finishing.Normalize(finish) {
	case finishing.Clearcoat:
		cans := up(areaSqFt / clearcoatCoverage)
		add(fmt.Sprintf("Clear coat spray x%d", cans), cans, clearcoatCan)
	case finishing.Paint:
		cans := up(areaSqFt / primerCoverage)
		add(fmt.Sprintf("Primer spray x%d", cans), cans, primerCan)
	}
	return out
}
