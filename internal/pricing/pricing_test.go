package pricing

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/labor"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func sampleInput() Input {
	return Input{
		SessionID: "s-1",
		JobType:   domain.JobSwingGate,
		Fields:    domain.Fields{"has_motor": "Yes", "installation": "Full installation"},
		Materials: domain.MaterialList{
			Items: []domain.MaterialItem{
				{Description: "Frame", UnitPrice: 40, Quantity: 3},
				{Description: "Pickets", UnitPrice: 2.5, Quantity: 20},
			},
			Assumptions: []string{"Gate frame 2x2 11ga."},
		},
		Hardware: PriceHardware([]domain.HardwareItem{
			{Description: "Hinge", Quantity: 2, Options: []domain.PricingOption{
				{Supplier: "McMaster-Carr", Price: 60},
				{Supplier: "Amazon", Price: 45},
			}},
		}),
		Consumables: []domain.ConsumableItem{{Description: "Wire", Quantity: 2, UnitPrice: 3.5, LineTotal: 7}},
		Labor: domain.LaborEstimate{
			Processes: []domain.LaborProcess{
				{Process: labor.FullWeld, Hours: 4, Rate: 125},
				{Process: labor.SiteInstall, Hours: 2, Rate: 145},
			},
			TotalHours: 6,
			Source:     labor.SourceRuleBased,
		},
		Finishing: domain.FinishingSection{Method: "powder_coat", Total: 70},
		Markup:    15,
		Now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuild_Subtotals(t *testing.T) {
	q, err := Build(sampleInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	nearlyEqual(t, "materials", q.Subtotals.Materials, 170)
	nearlyEqual(t, "hardware", q.Subtotals.Hardware, 90)
	nearlyEqual(t, "consumables", q.Subtotals.Consumables, 7)
	nearlyEqual(t, "labor", q.Subtotals.Labor, 790)
	nearlyEqual(t, "finishing", q.Subtotals.Finishing, 70)
	nearlyEqual(t, "subtotal", q.Subtotal, 1127)
	nearlyEqual(t, "total", q.Total, 1296.05)
}

func TestBuild_MarkupLadder(t *testing.T) {
	q, err := Build(sampleInput())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(q.MarkupOptions) != len(MarkupLadder) {
		t.Fatalf("options = %d, want %d", len(q.MarkupOptions), len(MarkupLadder))
	}
	for _, o := range q.MarkupOptions {
		nearlyEqual(t, "option", o.Total, domain.Round(q.Subtotal*(1+float64(o.Percent)/100), 2))
	}
}

func TestWithMarkup_KeepsSubtotal(t *testing.T) {
	q, _ := Build(sampleInput())
	for _, pct := range MarkupLadder {
		got, err := WithMarkup(q, pct)
		if err != nil {
			t.Fatalf("WithMarkup(%d): %v", pct, err)
		}
		nearlyEqual(t, "subtotal", got.Subtotal, q.Subtotal)
		nearlyEqual(t, "total", got.Total, got.MarkupOptions[slices.Index(MarkupLadder, pct)].Total)
	}
	if _, err := WithMarkup(q, 12); !errors.Is(err, domain.ErrInvalidMarkup) {
		t.Fatalf("err = %v, want ErrInvalidMarkup", err)
	}
}

func TestBuild_RejectsOffLadderMarkup(t *testing.T) {
	in := sampleInput()
	in.Markup = 17
	if _, err := Build(in); !errors.Is(err, domain.ErrInvalidMarkup) {
		t.Fatalf("err = %v, want ErrInvalidMarkup", err)
	}
}

func TestBuild_AdvisoryNotesDoNotChangeNumbers(t *testing.T) {
	in := sampleInput()
	base, _ := Build(in)

	in.Materials.Items = append(in.Materials.Items, domain.MaterialItem{Description: "Beam", UnitPrice: 6000, Quantity: 1})
	in.Labor.Flagged = true
	in.Labor.FlagReason = "grind time 3.0 h exceeds weld time 2.0 h"
	q, _ := Build(in)

	nearlyEqual(t, "subtotal grows only by the beam", q.Subtotal-base.Subtotal, 6000)
	joined := strings.Join(q.Assumptions, "\n")
	for _, want := range []string{"exceeds $5000", "FLAGGED: grind time", "Gate frame 2x2 11ga.", "shop rules"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("assumptions missing %q:\n%s", want, joined)
		}
	}
}

func TestBuild_Exclusions(t *testing.T) {
	q, _ := Build(sampleInput())
	joined := strings.Join(q.Exclusions, "\n")
	for _, want := range []string{"Permit fees", "beyond post holes", "gate operator", "Touch-up"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("exclusions missing %q:\n%s", want, joined)
		}
	}

	in := sampleInput()
	in.JobType = domain.JobRepairDecorative
	in.Fields = domain.Fields{}
	q, _ = Build(in)
	joined = strings.Join(q.Exclusions, "\n")
	if !strings.Contains(joined, "disassembly") || strings.Contains(joined, "post holes") {
		t.Fatalf("repair exclusions wrong:\n%s", joined)
	}
}

func TestCheapest(t *testing.T) {
	price, supplier := Cheapest([]domain.PricingOption{
		{Supplier: "A", Price: 12},
		{Supplier: "B", Price: 0},
		{Supplier: "C", Price: 9.5},
	})
	nearlyEqual(t, "price", price, 9.5)
	if supplier != "C" {
		t.Fatalf("supplier = %q, want C", supplier)
	}

	price, supplier = Cheapest(nil)
	nearlyEqual(t, "no price", price, 0)
	if supplier != NoPrice {
		t.Fatalf("supplier = %q, want %q", supplier, NoPrice)
	}
}

func TestPriceHardware_SingleSourceNote(t *testing.T) {
	in := sampleInput()
	in.Hardware = PriceHardware([]domain.HardwareItem{
		{Description: "Gate latch", Quantity: 0, Options: []domain.PricingOption{{Supplier: "McMaster-Carr", Price: 30}}},
	})
	if in.Hardware[0].Quantity != 1 {
		t.Fatalf("quantity = %d, want floor of 1", in.Hardware[0].Quantity)
	}
	q, _ := Build(in)
	if !strings.Contains(strings.Join(q.Assumptions, "\n"), "only source for: Gate latch") {
		t.Fatalf("missing single-source note: %v", q.Assumptions)
	}
}

func TestConsumables(t *testing.T) {
	items := Consumables(250, 40, "Clear coat")
	want := map[string]float64{
		"ER70S-6 welding wire (2 lbs)":           7,
		"4.5\" grinding disc x3":                 13.5,
		"4.5\" flap disc x2":                     13,
		"75/25 Ar/CO2 shielding gas (625 cu ft)": 50,
		"Clear coat spray x2":                    25,
	}
	if len(items) != len(want) {
		t.Fatalf("items = %d, want %d: %+v", len(items), len(want), items)
	}
	for _, it := range items {
		total, ok := want[it.Description]
		if !ok {
			t.Fatalf("unexpected consumable %q", it.Description)
		}
		nearlyEqual(t, it.Description, it.LineTotal, total)
	}

	if got := Consumables(0, 40, "Powder coat"); len(got) != 0 {
		t.Fatalf("no welding and outsourced finish should need nothing, got %+v", got)
	}
}
