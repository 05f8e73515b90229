package catalog

import (
	"math"
	"strings"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestPricePerFoot_KnownAndFallback(t *testing.T) {
	c := Default()

	nearlyEqual(t, "sq_tube_2x2_11ga", c.PricePerFoot("sq_tube_2x2_11ga"), 3.50)
	nearlyEqual(t, "pipe_6_sch40", c.PricePerFoot("pipe_6_sch40"), 12.00)
	nearlyEqual(t, "unknown", c.PricePerFoot("unobtainium_bar"), MarketPricePerFoot)

	if _, ok := c.LookupPricePerFoot("unobtainium_bar"); ok {
		t.Fatalf("LookupPricePerFoot reported unknown profile as known")
	}
}

func TestSeededPricesOverrideMarketAverage(t *testing.T) {
	prices, err := LoadSeededPrices(strings.NewReader(`{
		"sq_tube_2x2_11ga": {"price_per_foot": 4.10, "supplier": "Osario"},
		"flat_bar_1x0.25": {"price_per_foot": 0}
	}`))
	if err != nil {
		t.Fatalf("LoadSeededPrices: %v", err)
	}

	c := New(WithSeededPrices(prices))

	nearlyEqual(t, "seeded", c.PricePerFoot("sq_tube_2x2_11ga"), 4.10)
	nearlyEqual(t, "zero seed ignored", c.PricePerFoot("flat_bar_1x0.25"), 1.75)

	price, source := c.PriceSource("sq_tube_2x2_11ga")
	if source != "Osario" || price != 4.10 {
		t.Fatalf("PriceSource = (%v, %q), want (4.1, Osario)", price, source)
	}
	if c.SeededCount() != 1 {
		t.Fatalf("SeededCount = %d, want 1", c.SeededCount())
	}

	// The default catalog is untouched by another instance's overrides.
	nearlyEqual(t, "default", Default().PricePerFoot("sq_tube_2x2_11ga"), 3.50)
}

func TestLoadSeededPrices_RejectsMalformedJSON(t *testing.T) {
	if _, err := LoadSeededPrices(strings.NewReader(`{not json`)); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestPricePerSqFt(t *testing.T) {
	c := Default()
	nearlyEqual(t, "sheet_11ga", c.PricePerSqFt("sheet_11ga"), 2.65)
	nearlyEqual(t, "expanded_metal_13ga", c.PricePerSqFt("expanded_metal_13ga"), 1.40)
	nearlyEqual(t, "unknown sheet", c.PricePerSqFt("sheet_7ga"), MarketPricePerSqFt)
}

func TestWeights(t *testing.T) {
	c := Default()

	nearlyEqual(t, "2x2 10ft", c.WeightLbs("sq_tube_2x2_11ga", 10), 19.51)
	nearlyEqual(t, "unknown 10ft", c.WeightLbs("mystery", 10), 20)
	nearlyEqual(t, "plate 12x12x0.25", c.PlateWeightLbs(12, 12, 0.25, "mild_steel"), 10.199)
	nearlyEqual(t, "aluminum plate", c.PlateWeightLbs(10, 10, 1, "aluminum_6061"), 9.75)
	nearlyEqual(t, "11ga", GaugeThickness("11ga"), 0.1196)
	nearlyEqual(t, "unknown gauge", GaugeThickness("3ga"), 0)
}

func TestHardware_KnownAndEstimated(t *testing.T) {
	c := Default()

	opts := c.Hardware("gravity_latch")
	if len(opts) != 3 {
		t.Fatalf("gravity_latch options = %d, want 3", len(opts))
	}
	if c.HardwareCategory("gravity_latch") != "latch" {
		t.Fatalf("category = %q, want latch", c.HardwareCategory("gravity_latch"))
	}

	// Mutating the returned slice must not leak into the catalog.
	opts[0].Price = 0
	nearlyEqual(t, "catalog price after mutation", c.Hardware("gravity_latch")[0].Price, 35)

	est := c.Hardware("flux_capacitor")
	if len(est) != 1 || est[0].Supplier != "Estimated" {
		t.Fatalf("unknown hardware = %+v, want single Estimated option", est)
	}
	nearlyEqual(t, "estimated price", est[0].Price, MarketHardwarePrice)
}

func TestConcreteCubicYards(t *testing.T) {
	// Three 12" holes, 42" deep.
	got := ConcreteCubicYards(3, 12, 42)
	want := math.Pi * 36 * 42 * 3 / 46656.0
	nearlyEqual(t, "cu yd", got, want)
}
