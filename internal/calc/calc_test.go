package calc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/logger"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

type stubCompleter struct {
	reply string
	err   error
	calls *int
}

func (s stubCompleter) Complete(context.Context, domain.CompletionRequest) (string, error) {
	if s.calls != nil {
		*s.calls++
	}
	return s.reply, s.err
}

func hasNote(ml domain.MaterialList, prefix string) bool {
	for _, a := range ml.Assumptions {
		if strings.HasPrefix(a, prefix) {
			return true
		}
	}
	return false
}

func hasItem(ml domain.MaterialList, substr string) bool {
	for _, it := range ml.Items {
		if strings.Contains(it.Description, substr) {
			return true
		}
	}
	return false
}

const longDescription = "Dining table with a welded steel base, tapered legs and a floating glass top on standoffs"

func TestApplyWaste(t *testing.T) {
	tests := []struct {
		q, w float64
		want int
	}{
		{20, WasteTube, 21},
		{10, WasteFlat, 11},
		{2, WasteSheet, 3},
		{1, WasteTube, 2},
		{3, WasteHardware, 3},
		{0, WasteTube, 0},
	}
	for _, tt := range tests {
		if got := ApplyWaste(tt.q, tt.w); got != tt.want {
			t.Fatalf("ApplyWaste(%v, %v) = %d, want %d", tt.q, tt.w, got, tt.want)
		}
	}
}

func TestStickCount(t *testing.T) {
	if StickCount(20) != 1 || StickCount(20.5) != 2 || StickCount(40) != 2 {
		t.Fatalf("StickCount = %d %d %d, want 1 2 2", StickCount(20), StickCount(20.5), StickCount(40))
	}
}

func TestCantileverGate_TailAndTotalLength(t *testing.T) {
	ml := cantileverGate{}.Calculate(catalog.Default(), domain.Fields{
		"clear_width": "10",
		"height":      "6",
	})

	if !hasNote(ml, "Counterbalance tail: 5.5 ft") {
		t.Fatalf("missing tail note in %v", ml.Assumptions)
	}
	if !hasNote(ml, "Gate total length: 15.5 ft") {
		t.Fatalf("missing total length note in %v", ml.Assumptions)
	}
	if ml.Assumptions[0] != priceNote {
		t.Fatalf("first assumption = %q, want price note", ml.Assumptions[0])
	}
}

func TestOffroadBumper_NoWinchNoDRings(t *testing.T) {
	ml := offroadBumper{}.Calculate(catalog.Default(), domain.Fields{
		"bumper_position": "Front bumper",
		"winch_mount":     "No",
		"d_ring_mounts":   "No",
	})

	if !hasItem(ml, "main plate") {
		t.Fatalf("missing main plate: %+v", ml.Items)
	}
	if !hasItem(ml, "mount brackets") {
		t.Fatalf("missing mount brackets: %+v", ml.Items)
	}
	if hasItem(ml, "Winch") {
		t.Fatalf("unexpected winch plate: %+v", ml.Items)
	}
	if len(ml.Hardware) != 0 {
		t.Fatalf("hardware = %d lines, want 0", len(ml.Hardware))
	}
}

func TestOffroadBumper_WinchAndDRings(t *testing.T) {
	ml := offroadBumper{}.Calculate(catalog.Default(), domain.Fields{
		"bumper_position": "Front bumper",
		"winch_mount":     "Yes",
		"d_ring_mounts":   "Yes",
	})

	if !hasItem(ml, "Winch mount plate") {
		t.Fatalf("missing winch plate")
	}
	if len(ml.Hardware) != 1 || ml.Hardware[0].Quantity != 2 {
		t.Fatalf("hardware = %+v, want one line of 2 shackles", ml.Hardware)
	}
}

func TestStraightRailing_PostCount(t *testing.T) {
	ml := straightRailing{}.Calculate(catalog.Default(), domain.Fields{
		"linear_footage": "20",
		"post_spacing":   "6 ft on-center (standard)",
	})

	if !hasItem(ml, "x 4 (") {
		t.Fatalf("expected 4 posts, got %q", ml.Items[0].Description)
	}
	if ml.Hardware[0].Quantity != 4 {
		t.Fatalf("flanges = %d, want 4", ml.Hardware[0].Quantity)
	}
	nearlyEqual(t, "sq ft", ml.TotalSqFt, 70)
}

func TestRepairDecorative_BrokenWeldHasNoMaterial(t *testing.T) {
	ml := repairDecorative{}.Calculate(catalog.Default(), domain.Fields{
		"repair_type":       []any{"Broken weld (piece detached)"},
		"damage_dimensions": `12" x 4"`,
	})

	if len(ml.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(ml.Items))
	}
	nearlyEqual(t, "weld", ml.WeldLinearInches, 6)
}

func TestRepairDecorative_ScopeCreepBuffer(t *testing.T) {
	f := domain.Fields{
		"repair_type":       "Bent or deformed section",
		"damage_dimensions": `24" x 4"`,
	}
	base := repairDecorative{}.Calculate(catalog.Default(), f)

	f["surrounding_damage"] = "Yes, additional rust nearby"
	buffered := repairDecorative{}.Calculate(catalog.Default(), f)

	if buffered.Items[0].Quantity != 2 || base.Items[0].Quantity != 1 {
		t.Fatalf("quantity = %d (buffered) vs %d, want 2 vs 1", buffered.Items[0].Quantity, base.Items[0].Quantity)
	}
	nearlyEqual(t, "weld", buffered.WeldLinearInches, base.WeldLinearInches*1.25)
}

func TestRoughSize(t *testing.T) {
	half := func(l float64) float64 { return max(l*0.5, 6) }
	tests := []struct {
		in           string
		wantL, wantW float64
		wantH        float64
	}{
		{"", 24, 12, 12},
		{"48", 48, 24, 24},
		{"30 x 20", 30, 20, 15},
		{"4 ft x 2 ft x 3 ft", 48, 24, 36},
	}
	for _, tt := range tests {
		l, w, h := roughSize(tt.in, 24, 12, 12, half)
		if l != tt.wantL || w != tt.wantW || h != tt.wantH {
			t.Fatalf("roughSize(%q) = %v,%v,%v, want %v,%v,%v", tt.in, l, w, h, tt.wantL, tt.wantW, tt.wantH)
		}
	}
}

func TestParseCuts_DefaultsAndValidation(t *testing.T) {
	cuts, err := parseCuts("```json\n"+`[
		{"description": "Leg", "length_inches": -3, "quantity": 0, "cut_type": "Miter"},
		"not an object",
		{"description": "Rail", "profile": "flat_bar_1x0.25", "weld_process": "laser"}
	]`+"\n```", "sq_tube_1.5x1.5_11ga")
	if err != nil {
		t.Fatalf("parseCuts: %v", err)
	}
	if len(cuts) != 2 {
		t.Fatalf("cuts = %d, want 2", len(cuts))
	}
	leg := cuts[0]
	if leg.LengthInches != 12 || leg.Quantity != 1 || leg.CutType != "miter_45" || leg.Profile != "sq_tube_1.5x1.5_11ga" {
		t.Fatalf("leg = %+v", leg)
	}
	if cuts[1].WeldProcess != "mig" {
		t.Fatalf("weld process = %q, want mig", cuts[1].WeldProcess)
	}

	if _, err := parseCuts("[]", "x"); err == nil {
		t.Fatalf("expected error for empty cut list")
	}
}

// checkList fails unless every total and line is finite and non-negative,
// every purchased quantity follows the waste rule and the list encodes.
func checkList(t *testing.T, label string, ml domain.MaterialList) {
	t.Helper()
	for name, v := range map[string]float64{
		"weight": ml.TotalWeightLbs, "sq ft": ml.TotalSqFt, "weld": ml.WeldLinearInches,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			t.Fatalf("%s: %s = %v", label, name, v)
		}
	}
	for _, it := range ml.Items {
		if it.UnitPrice < 0 || it.LengthInches < 0 || math.IsInf(it.UnitPrice, 0) || math.IsInf(it.LengthInches, 0) {
			t.Fatalf("%s: %q price %v length %v", label, it.Description, it.UnitPrice, it.LengthInches)
		}
		if want := max(ApplyWaste(it.RawQuantity, it.WasteFactor), 1); it.Quantity != want {
			t.Fatalf("%s: %q quantity = %d, want %d from raw %v at waste %v", label, it.Description, it.Quantity, want, it.RawQuantity, it.WasteFactor)
		}
	}
	if _, err := json.Marshal(ml); err != nil {
		t.Fatalf("%s: encode: %v", label, err)
	}
}

func TestEngine_EveryJobTypeResolves(t *testing.T) {
	e := NewEngine(catalog.Default(), logger.Nop())
	zero := domain.Fields{
		"clear_width":      "0",
		"linear_footage":   "0",
		"quantity":         "0",
		"approximate_size": "0 x 0 x 0",
		"total_rise":       "0",
		"diameter":         "0",
		"span":             "0",
	}
	negative := domain.Fields{
		"clear_width":    "-10",
		"height":         "-4",
		"linear_footage": -20.0,
		"quantity":       "-3",
		"total_rise":     "-9",
		"bollard_count":  -2.0,
	}
	huge := domain.Fields{
		"clear_width":      1e308,
		"height":           1e308,
		"linear_footage":   "1e308",
		"quantity":         1e308,
		"approximate_size": "999999999999999999999 x 1 x 1",
		"total_rise":       math.MaxFloat64,
		"diameter":         1e300,
		"span":             1e308,
		"bollard_count":    1e308,
		"length":           1e308,
		"letter_count":     1e308,
	}

	for _, job := range domain.AllJobTypes {
		if !Registered(job) {
			t.Fatalf("%s has no strategy", job)
		}
		for name, f := range map[string]domain.Fields{"empty": {}, "zero": zero, "negative": negative, "huge": huge} {
			label := string(job) + "/" + name
			ml := e.Calculate(context.Background(), job, f)
			if ml.JobType != job {
				t.Fatalf("%s: JobType = %s", label, ml.JobType)
			}
			if ml.Items == nil || ml.Hardware == nil {
				t.Fatalf("%s: nil slices in %+v", label, ml)
			}
			if len(ml.Assumptions) == 0 || ml.Assumptions[0] != priceNote {
				t.Fatalf("%s: assumptions = %v", label, ml.Assumptions)
			}
			if hasNote(ml, fmt.Sprintf(substituteNote, job)) {
				t.Fatalf("%s: calculator panicked", label)
			}
			checkList(t, label, ml)
		}
	}
}

func TestCantileverGate_NegativeHeightUsesDefault(t *testing.T) {
	neg := cantileverGate{}.Calculate(catalog.Default(), domain.Fields{"clear_width": "10", "height": "-4"})
	def := cantileverGate{}.Calculate(catalog.Default(), domain.Fields{"clear_width": "10"})
	nearlyEqual(t, "weight", neg.TotalWeightLbs, def.TotalWeightLbs)
}

func TestCantileverGate_WasteOnEveryStickLine(t *testing.T) {
	ml := cantileverGate{}.Calculate(catalog.Default(), domain.Fields{})
	for _, want := range []string{"Mid-rail stiffeners", "Bottom guide rail"} {
		found := false
		for _, it := range ml.Items {
			if !strings.HasPrefix(it.Description, want) {
				continue
			}
			found = true
			if it.WasteFactor != WasteTube || it.Quantity != ApplyWaste(it.RawQuantity, WasteTube) {
				t.Fatalf("%s: qty %d raw %v waste %v", want, it.Quantity, it.RawQuantity, it.WasteFactor)
			}
		}
		if !found {
			t.Fatalf("missing %s in %+v", want, ml.Items)
		}
	}
	checkList(t, "cantilever", ml)
}

func TestBuildFromCuts_WasteByStockClass(t *testing.T) {
	cuts := []Cut{
		{Description: "Rail", Profile: "sq_tube_2x2_11ga", MaterialType: "square_tubing", LengthInches: 24, Quantity: 10},
		{Description: "Strap", Profile: "flat_bar_1x0.25", MaterialType: "flat_bar", LengthInches: 24, Quantity: 10},
		{Description: "Gusset", Profile: "plate_0.25", MaterialType: "plate", LengthInches: 4, Quantity: 10},
	}
	ml := buildFromCuts(catalog.Default(), domain.JobCustomFab, domain.Fields{}, cuts, defaultAIProfile, nil)

	want := map[string]struct {
		waste float64
		qty   int
	}{
		"Rail":   {WasteTube, 11},
		"Strap":  {WasteFlat, 11},
		"Gusset": {WasteSheet, 12},
	}
	for _, it := range ml.Items {
		w := want[it.Description]
		if it.WasteFactor != w.waste || it.Quantity != w.qty {
			t.Fatalf("%s: waste %v qty %d, want %v %d", it.Description, it.WasteFactor, it.Quantity, w.waste, w.qty)
		}
	}
}

func TestParseCuts_RejectsNonFiniteNumbers(t *testing.T) {
	cuts, err := parseCuts(`[{"description": "Rail", "length_inches": "NaN", "quantity": "Inf"}, {"description": "Post", "length_inches": 1e308, "quantity": 1e300}]`, "sq_tube_2x2_11ga")
	if err != nil {
		t.Fatalf("parseCuts: %v", err)
	}
	for _, c := range cuts {
		if c.LengthInches != 12 || c.Quantity != 1 {
			t.Fatalf("%s: length %v qty %d, want defaults", c.Description, c.LengthInches, c.Quantity)
		}
	}
}

type panicking struct{}

func (panicking) Calculate(*catalog.Catalog, domain.Fields) domain.MaterialList {
	panic("index out of range")
}

func TestEngine_PanicSubstitutesCustomEstimate(t *testing.T) {
	orig := registry[domain.JobBollard]
	registry[domain.JobBollard] = panicking{}
	t.Cleanup(func() { registry[domain.JobBollard] = orig })

	ml := NewEngine(catalog.Default(), logger.Nop()).Calculate(context.Background(), domain.JobBollard, domain.Fields{})

	if ml.JobType != domain.JobBollard {
		t.Fatalf("JobType = %s", ml.JobType)
	}
	if !hasNote(ml, fmt.Sprintf(substituteNote, domain.JobBollard)) {
		t.Fatalf("substitution not noted: %v", ml.Assumptions)
	}
}

func TestEngine_UnknownJobUsesCustomFab(t *testing.T) {
	e := NewEngine(catalog.Default(), logger.Nop())

	ml := e.Calculate(context.Background(), domain.JobType("hovercraft"), domain.Fields{"approximate_size": "24 x 12 x 12"})

	if ml.JobType != domain.JobCustomFab {
		t.Fatalf("JobType = %s, want custom_fab", ml.JobType)
	}
	if _, ok := Lookup("hovercraft").(customFab); !ok {
		t.Fatalf("Lookup did not fall back to customFab")
	}
}

func TestEngine_AICutListReplacesTemplate(t *testing.T) {
	calls := 0
	reply := `[{"description": "Leg", "profile": "sq_tube_2x2_11ga", "length_inches": 30, "quantity": 4, "group": "legs"}]`
	e := NewEngine(catalog.Default(), logger.Nop(), WithCompleter(stubCompleter{reply: reply, calls: &calls}))

	ml := e.Calculate(context.Background(), domain.JobFurnitureTable, domain.Fields{"description": longDescription})

	if calls != 1 {
		t.Fatalf("completer calls = %d, want 1", calls)
	}
	if len(ml.Items) != 1 || ml.Items[0].Quantity != 5 || ml.Items[0].Group != "legs" {
		t.Fatalf("items = %+v", ml.Items)
	}
	if ml.Assumptions[len(ml.Assumptions)-1] != defaultAIProfile.note {
		t.Fatalf("last assumption = %q", ml.Assumptions[len(ml.Assumptions)-1])
	}
	nearlyEqual(t, "weld", ml.WeldLinearInches, 24)
}

func TestEngine_SetCatalogRepricesLaterCalculations(t *testing.T) {
	e := NewEngine(catalog.Default(), logger.Nop())
	f := domain.Fields{"bollard_count": 2, "pipe_size": `6" schedule 40`}

	before := e.Calculate(context.Background(), domain.JobBollard, f)
	e.SetCatalog(catalog.New(catalog.WithSeededPrices(map[string]catalog.SeededPrice{
		"pipe_6_sch40": {PricePerFoot: 24, Supplier: "Valley Steel"},
	})))
	after := e.Calculate(context.Background(), domain.JobBollard, f)

	if before.Items[0].Profile != "pipe_6_sch40" || after.Items[0].Profile != "pipe_6_sch40" {
		t.Fatalf("first lines = %s / %s, want the bollard pipe", before.Items[0].Profile, after.Items[0].Profile)
	}
	nearlyEqual(t, "repriced pipe", after.Items[0].UnitPrice, before.Items[0].UnitPrice*2)
	if _, source := e.Catalog().PriceSource("pipe_6_sch40"); source != "Valley Steel" {
		t.Fatalf("source = %q, want the swapped catalog's supplier", source)
	}
}

func TestEngine_FallsBackToTemplate(t *testing.T) {
	f := domain.Fields{"description": longDescription}
	template := furnitureTable{}.Calculate(catalog.Default(), f)

	tests := []struct {
		name      string
		completer domain.Completer
	}{
		{"no completer", nil},
		{"completer error", stubCompleter{err: errors.New("boom")}},
		{"malformed reply", stubCompleter{reply: "I cannot help with that"}},
		{"empty list", stubCompleter{reply: "[]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []EngineOption
			if tt.completer != nil {
				opts = append(opts, WithCompleter(tt.completer))
			}
			ml := NewEngine(catalog.Default(), logger.Nop(), opts...).Calculate(context.Background(), domain.JobFurnitureTable, f)
			if len(ml.Items) != len(template.Items) || ml.TotalWeightLbs != template.TotalWeightLbs {
				t.Fatalf("got %d items / %v lbs, want template %d / %v", len(ml.Items), ml.TotalWeightLbs, len(template.Items), template.TotalWeightLbs)
			}
		})
	}
}

func TestEngine_ShortDescriptionSkipsAI(t *testing.T) {
	calls := 0
	e := NewEngine(catalog.Default(), logger.Nop(), WithCompleter(stubCompleter{reply: "[]", calls: &calls}))

	e.Calculate(context.Background(), domain.JobFurnitureTable, domain.Fields{"description": "coffee table"})

	if calls != 0 {
		t.Fatalf("completer called %d times for a short description", calls)
	}
}

func TestFiretable_EmbeddedBOM(t *testing.T) {
	if firetableBOM == nil {
		t.Fatalf("embedded BOM failed to parse")
	}
	full := firetable{}.Calculate(catalog.Default(), domain.Fields{"quantity": "2"})
	base := firetable{}.Calculate(catalog.Default(), domain.Fields{"configuration": "Base only"})

	if len(base.Items) != len(full.Items)-1 {
		t.Fatalf("base only items = %d, want %d", len(base.Items), len(full.Items)-1)
	}
	nearlyEqual(t, "weight", full.TotalWeightLbs, firetableBOM.Totals.WeightLbs*2)
}
