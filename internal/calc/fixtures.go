package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// ── Table frames ─────────────────────────────────────────────────

type furnitureTable struct{}

func (furnitureTable) cutList() aiProfile { return defaultAIProfile }

func (furnitureTable) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobFurnitureTable)

	l, w, h := tableDims(f)
	qty := atLeastOne(count(f, "quantity", 1))

	const frame = "sq_tube_1.5x1.5_11ga"
	leg := "sq_tube_2x2_11ga"
	if containsAny(lower(f, "leg_style", "Straight legs"), "round", "hairpin") {
		leg = "round_tube_1.5_14ga"
	}

	legs := 4 * qty
	t.pieces(fmt.Sprintf("Table legs: %s x %d (%.0f\" each)", leg, legs, h), "square_tubing", leg, h, legs, "miter_45", WasteTube)
	t.pieces(fmt.Sprintf("Top frame long rails: %s x %d (%.0f\" each)", frame, 2*qty, l), "square_tubing", frame, l, 2*qty, "miter_45", WasteTube)
	t.pieces(fmt.Sprintf("Top frame short rails: %s x %d (%.0f\" each)", frame, 2*qty, w), "square_tubing", frame, w, 2*qty, "miter_45", WasteTube)
	t.pieces(fmt.Sprintf("Center stretcher: %s x %d (%.0f\" each)", frame, qty, l-4), "square_tubing", frame, l-4, qty, "square", WasteTube)
	t.pieces(fmt.Sprintf("Bottom stretchers: %s x %d (%.0f\" each)", frame, 2*qty, l-4), "square_tubing", frame, l-4, 2*qty, "square", WasteTube)
	t.addHardware("Adjustable leveling feet", "leveling_foot", 4*qty)

	t.weld = float64(legs*8 + 2*qty*4 + qty*4 + 4*qty*6)
	t.sqft = SqFt(l, w) * float64(qty)
	t.note("Table: %.0f\" x %.0f\" x %.0f\" height x %d unit(s). Top material (wood, stone, glass) NOT included; steel frame only.", l, w, h, qty)
	return t.list()
}

// tableDims reads a combined size string first, then individual fields,
// defaulting to 60" x 30" x 30". Small values are taken as feet.
func tableDims(f domain.Fields) (l, w, h float64) {
	for _, key := range []string{"approximate_size", "dimensions", "size"} {
		s := text(f, key, "")
		if s == "" {
			continue
		}
		vals, ok := dims(strings.ReplaceAll(s, "×", "x"))
		if !ok || len(vals) < 2 {
			continue
		}
		h = 30
		if len(vals) == 3 {
			h = max(vals[2], 6)
		}
		return max(vals[0], 6), max(vals[1], 6), h
	}
	l = inches(f, "table_length", feet(f, "length", 5)*12)
	if l < 12 {
		l *= 12
	}
	w = inches(f, "table_width", feet(f, "width", 2.5)*12)
	if w < 12 {
		w *= 12
	}
	h = inches(f, "table_height", inches(f, "height", 30))
	if h < 12 {
		h *= 12
	}
	return l, w, h
}

// ── Utility enclosures ───────────────────────────────────────────

type utilityEnclosure struct{}

func (utilityEnclosure) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobUtilityEnclosure)

	width := boxSide(f, "width", 2, 6)
	height := boxSide(f, "height", 3, 6)
	depth := boxSide(f, "depth", 1, 4)
	qty := atLeastOne(count(f, "quantity", 1))

	sheet, thickness := "sheet_14ga", 0.0747
	switch gauge := text(f, "gauge", "14 gauge"); {
	case strings.Contains(gauge, "11"):
		sheet, thickness = "sheet_11ga", 0.1196
	case strings.Contains(gauge, "16"):
		sheet, thickness = "sheet_16ga", 0.0598
	}

	panelSqFt := (SqFt(width, height) + SqFt(depth, height) + SqFt(width, depth)) * 2 * float64(qty)
	sheets := max(int(math.Ceil(panelSqFt/SheetSqFt-1e-9)), 1)
	t.add(domain.MaterialItem{
		Description:  fmt.Sprintf("Enclosure panels: %s (%.0f sq ft total, %d units)", sheet, panelSqFt, qty),
		MaterialType: "plate",
		Profile:      sheet,
		LengthInches: max(width, height),
		Quantity:     sheets,
		UnitPrice:    panelSqFt * cat.PricePerSqFt(sheet) / float64(sheets),
		CutType:      "square",
		WasteFactor:  WasteSheet,
	})
	for _, p := range [][2]float64{{width, height}, {depth, height}, {width, depth}} {
		t.weight += cat.PlateWeightLbs(p[0], p[1], thickness, "mild_steel") * 2 * float64(qty)
	}

	const angle = "angle_1.5x1.5x0.125"
	edgesIn := (4*width + 4*height + 4*depth) * float64(qty)
	edges := 12 * qty
	t.add(domain.MaterialItem{
		Description:  fmt.Sprintf("Internal frame: 1-1/2\" angle x %d (12 edges per box x %d)", edges, qty),
		MaterialType: "angle_iron",
		Profile:      angle,
		LengthInches: edgesIn / float64(edges),
		Quantity:     edges,
		UnitPrice:    edgesIn / float64(edges) / 12 * cat.PricePerFoot(angle),
		CutType:      "miter_45",
		WasteFactor:  WasteTube,
	})
	t.weight += cat.WeightLbs(angle, edgesIn/12)

	if yes(f, "has_door", "Yes") || strings.Contains(lower(f, "door_type", ""), "door") {
		t.addHardware("Enclosure hinges (pair per unit)", "standard_weld_hinge_pair", qty)
		t.addHardware("Enclosure latch / handle", "gravity_latch", qty)
		t.note("Hinged door on front panel. Padlock hasp if security needed.")
	}

	t.weld = edgesIn*0.25 + float64(qty)*Perimeter(width, height)
	t.sqft = panelSqFt
	t.note("Enclosure: %.0f\" x %.0f\" x %.0f\" (%s), %d unit(s).", width, height, depth, sheet, qty)
	return t.list()
}

// boxSide reads a side length in inches; bare values under floor are feet.
func boxSide(f domain.Fields, key string, defFt, floor float64) float64 {
	v := inches(f, key, defFt*12)
	if v < floor {
		v *= 12
	}
	return v
}

// ── Bollards ─────────────────────────────────────────────────────

type bollard struct{}

func (bollard) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobBollard)

	n := atLeastOne(count(f, "bollard_count", count(f, "quantity", 1)))
	height := 36.0
	switch h := text(f, "bollard_height", `36" (standard)`); {
	case strings.Contains(h, "30"):
		height = 30
	case strings.Contains(h, "42"):
		height = 42
	case strings.Contains(h, "48"):
		height = 48
	}
	pipe := "pipe_6_sch40"
	if p := text(f, "pipe_size", `6" schedule 40`); strings.Contains(p, `4"`) || strings.Contains(p, "4 ") {
		pipe = "pipe_4_sch40"
	}
	dia := pipeOD(pipe)

	mount := lower(f, "fixed_or_removable", "Fixed: set in concrete (permanent)")
	surface := strings.Contains(mount, "surface")
	removable := strings.Contains(mount, "removable")
	embed := max(height*0.5, 24)
	switch {
	case surface:
		embed = 0
	case removable:
		embed = height * 0.5
	}

	pipeIn := height + embed
	t.pieces(fmt.Sprintf("Bollard pipe: %s x %d (%.1f ft each, %.0f\" above grade + %.0f\" embed)", pipe, n, pipeIn/12, height, embed),
		"mild_steel", pipe, pipeIn, n, "square", WasteTube)

	if !strings.Contains(lower(f, "cap_style", "Flat plate cap (welded on)"), "open") {
		capIn := dia + 1
		t.plate(fmt.Sprintf("Cap plates: 1/4\" plate x %d (%.0f\" x %.0f\")", n, capIn, capIn), capIn, capIn, 0.25, n)
		t.weld += math.Pi * dia * float64(n)
	}
	if surface {
		base := 10.0
		switch s := text(f, "base_plate_size", `10" x 10"`); {
		case strings.Contains(s, `8"`), strings.Contains(s, "8 "):
			base = 8
		case strings.Contains(s, "12"):
			base = 12
		}
		t.plate(fmt.Sprintf("Base plates: 1/2\" plate x %d (%.0f\" x %.0f\")", n, base, base), base, base, 0.5, n)
		t.weld += math.Pi * dia * float64(n)
		t.note("Surface mount: 4 anchor bolts per base plate (not included).")
	}
	if removable {
		sleeveIn := embed + 2
		t.pieces(fmt.Sprintf("Receiver sleeves: pipe_6_sch40 x %d (%.1f ft each)", n, sleeveIn/12),
			"mild_steel", "pipe_6_sch40", sleeveIn, n, "square", WasteTube)
		t.note("Removable bollards include receiver sleeves set in concrete.")
	}

	t.sqft = math.Pi * dia / 12 * height / 12 * float64(n)
	t.note("%d bollards, %s, %.0f\" height above grade.", n, pipe, height)
	if yes(f, "concrete_fill", "No") {
		t.note("Concrete-filled for impact resistance.")
	}
	return t.list()
}

// pipeOD is the outside diameter of a schedule 40 pipe profile.
func pipeOD(profile string) float64 {
	switch {
	case strings.Contains(profile, "pipe_4"):
		return 4.5
	case strings.Contains(profile, "pipe_3.5"):
		return 4.0
	case strings.Contains(profile, "pipe_3"):
		return 3.5
	}
	return 6.625
}
