package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// ── Ornamental fence ─────────────────────────────────────────────

type ornamentalFence struct{}

func (ornamentalFence) cutList() aiProfile { return defaultAIProfile }

func (ornamentalFence) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobOrnamentalFence)

	footage := feet(f, "total_footage", feet(f, "linear_footage", 50))
	heightFt := feet(f, "fence_height", feet(f, "height", 6))
	panelFt := feet(f, "panel_width", 6)
	if panelFt <= 0 {
		panelFt = 6
	}
	heightIn, panelIn := heightFt*12, panelFt*12

	spacing := 4.0
	switch s := text(f, "picket_spacing", ""); {
	case strings.Contains(s, "3.5"), strings.Contains(s, "3-1/2"):
		spacing = 3.5
	case strings.Contains(s, "5"):
		spacing = 5
	}
	picket, picketMaterial := balusterProfile(text(f, "picket_style", ""))

	panels := max(int(math.Ceil(footage/panelFt-1e-9)), 1)
	posts := panels + 1

	const embed = 36.0
	postIn := heightIn + embed + 2
	t.pieces(fmt.Sprintf("Posts: 2\" sq tube 11ga x %d (%.1f ft each, includes %.0f\" embed)", posts, postIn/12, embed),
		"square_tubing", "sq_tube_2x2_11ga", postIn, posts, "square", WasteTube)

	railIn := panelIn * float64(panels) * 2
	t.linear(fmt.Sprintf("Top + bottom rails: 1-1/2\" sq tube 11ga x %d panels (%.1f ft total)", panels, railIn/12),
		"square_tubing", "sq_tube_1.5x1.5_11ga", railIn, "square", WasteTube)

	perPanel := int(math.Ceil(panelIn/spacing)) + 1
	pickets := perPanel * panels
	t.pieces(fmt.Sprintf("Pickets: %s at %.0f\" OC x %d total (%d per panel x %d panels)", picket, spacing, pickets, perPanel, panels),
		picketMaterial, picket, heightIn-4, pickets, "square", WasteTube)
	setGroup(t, "infill")

	t.weld = float64(pickets*2)*1.5 + float64(panels*4)*3
	t.sqft = footage * heightFt * 2
	t.note("%d panels at %.0f ft each, %d pickets per panel at %.0f\" OC.", panels, panelFt, perPanel, spacing)
	t.note("Post embed depth: %.0f\" (concrete not included in material list).", embed)
	return t.list()
}

// ── Window security grates ───────────────────────────────────────

type windowGrate struct{}

func (windowGrate) cutList() aiProfile { return defaultAIProfile }

func (windowGrate) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobWindowSecurityGrate)

	width := inches(f, "window_width", 36)
	if width < 12 {
		width *= 12
	}
	height := inches(f, "window_height", 48)
	if height < 12 {
		height *= 12
	}
	windows := atLeastOne(count(f, "window_count", count(f, "quantity", 1)))
	spacing := inches(f, "bar_spacing", 4)
	if spacing <= 0 {
		spacing = 4
	}
	crossbars := yes(f, "horizontal_bars", text(f, "crossbars", "No"))
	mount := lower(f, "fixed_or_hinged", "Fixed")

	const frame, bar = "angle_1.5x1.5x0.125", "sq_bar_0.75"
	perim := Perimeter(width, height)
	t.add(domain.MaterialItem{
		Description:  fmt.Sprintf("Frame: 1-1/2\" x 1-1/2\" x 1/8\" angle x %d windows (%.0f\" perimeter each)", windows, perim),
		MaterialType: "angle_iron",
		Profile:      frame,
		LengthInches: perim,
		Quantity:     windows * 4,
		UnitPrice:    perim / 12 * cat.PricePerFoot(frame) / 4,
		CutType:      "miter_45",
		WasteFactor:  WasteTube,
	})
	t.weight += cat.WeightLbs(frame, perim/12*float64(windows))

	vertical := max(int(math.Ceil(width/spacing))-1, 1)
	t.pieces(fmt.Sprintf("Vertical bars: 3/4\" sq bar x %d per window x %d windows", vertical, windows),
		"square_tubing", bar, height-1, vertical*windows, "square", WasteTube)
	t.weld += float64(vertical*windows*2) * 1.5

	if crossbars {
		horizontal := max(int(math.Ceil(height/spacing))-1, 1)
		t.pieces(fmt.Sprintf("Horizontal crossbars: 3/4\" sq bar x %d per window x %d windows", horizontal, windows),
			"square_tubing", bar, width-1, horizontal*windows, "square", WasteTube)
		t.weld += float64(horizontal*windows*2) * 1.5
	}
	hinged := strings.Contains(mount, "hinged") || strings.Contains(mount, "swing")
	if hinged {
		t.addHardware("Security grate hinges (pair per window)", "standard_weld_hinge_pair", windows)
		t.addHardware("Padlock hasp / latch", "hasp_padlock", windows)
	}

	t.weld += float64(windows*4) * 2
	t.sqft = SqFt(width, height) * float64(windows)
	t.note("%d window(s), %.0f\" x %.0f\" each. %d vertical bars at %.0f\" spacing.", windows, width, height, vertical, spacing)
	if crossbars {
		t.note("Crossbar pattern included.")
	}
	if hinged {
		t.note("Hinged grates include hinges and padlock hasp.")
	}
	return t.list()
}

// ── Complete stairs ──────────────────────────────────────────────

type completeStair struct{}

func (completeStair) cutList() aiProfile { return defaultAIProfile }

func (completeStair) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobCompleteStair)

	riseIn := feet(f, "total_rise", feet(f, "height", 10)) * 12
	risePerStep := inches(f, "rise_per_step", 7.5)
	if risePerStep <= 0 {
		risePerStep = 7.5
	}
	runPerStep := inches(f, "run_per_step", inches(f, "tread_depth", 10))
	width := inches(f, "stair_width", feet(f, "width", 3)*12)
	if width < 12 {
		width *= 12
	}

	risers := count(f, "num_risers", 0)
	if risers <= 0 {
		risers = max(int(math.Ceil(riseIn/risePerStep-1e-9)), 1)
	}
	treads := risers

	runIn := float64(risers) * runPerStep
	stringerIn := math.Hypot(riseIn, runIn)
	stringers := 2
	if width > 48 {
		stringers = 3
		t.note("Stair width > 48\": center stringer added.")
	}
	t.pieces(fmt.Sprintf("Stringers: C6x8.2 channel x %d (%.1f ft each)", stringers, stringerIn/12),
		"channel", "channel_6x8.2", stringerIn, stringers, "miter_45", WasteTube)

	treadSqFt := SqFt(width, runPerStep) * float64(treads)
	t.sheets(fmt.Sprintf("Treads: 11ga checker plate x %d (%.0f\" x %.0f\" each)", treads, width, runPerStep),
		"sheet_11ga", width, treadSqFt, 0.1196)

	t.pieces(fmt.Sprintf("Tread support angles: 2\"x2\"x3/16\" x %d pairs", treads),
		"angle_iron", "angle_2x2x0.1875", width, treads*2, "square", WasteTube)

	if yes(f, "has_landing", "No") {
		depth := max(width, 36)
		t.linear(fmt.Sprintf("Landing frame: 2\" sq tube 11ga (%.0f\" x %.0f\")", width, depth),
			"square_tubing", "sq_tube_2x2_11ga", Perimeter(width, depth), "miter_45", WasteTube)
		t.sqft += SqFt(width, depth)
	}

	t.weld = float64(treads*stringers*2)*3 + float64(treads*2)*width*0.2
	t.sqft += treadSqFt + stringerIn/12*2*float64(stringers)
	t.note("%d risers at %.1f\" rise x %.1f\" run. Stringer length: %.1f ft.", risers, risePerStep, runPerStep, stringerIn/12)
	t.note("Stair width: %.0f\".", width)
	return t.list()
}

// ── Spiral stairs ────────────────────────────────────────────────

type spiralStair struct{}

func (spiralStair) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobSpiralStair)

	riseIn := feet(f, "total_rise", feet(f, "height", 10)) * 12
	diameter := inches(f, "diameter", 60)
	if diameter < 24 {
		diameter *= 12
	}
	risePerStep := inches(f, "rise_per_step", 7.5)
	if risePerStep <= 0 {
		risePerStep = 7.5
	}
	rotation := number(f, "rotation_per_step", 30)
	treads := max(int(math.Ceil(riseIn/risePerStep-1e-9)), 1)

	columnIn := riseIn + 42
	t.linear(fmt.Sprintf("Center column: 4\" pipe Sch 40 (%.1f ft)", columnIn/12),
		"mild_steel", "pipe_4_sch40", columnIn, "square", WasteTube)

	radius := max(diameter/2-2, 1)
	treadSqFt := 0.5 * radius * radius * rotation * math.Pi / 180 / 144 * float64(treads)
	t.sheets(fmt.Sprintf("Treads: 11ga plate x %d pie-shaped (%.0f\" radius)", treads, radius),
		"sheet_11ga", radius, treadSqFt, 0.1196)
	t.items[len(t.items)-1].CutType = "notch"

	t.pieces(fmt.Sprintf("Tread support arms: 1-1/2\" sq tube x %d (%.0f\" each)", treads, radius),
		"square_tubing", "sq_tube_1.5x1.5_11ga", radius, treads, "cope", WasteTube)

	turns := rotation * float64(treads) / 360
	handrailIn := math.Hypot(math.Pi*diameter*turns, riseIn)
	t.linear(fmt.Sprintf("Handrail: 1-1/2\" round tube (%.1f ft spiral path)", handrailIn/12),
		"dom_tubing", "round_tube_1.5_14ga", handrailIn, "square", WasteTube)

	const perTread = 3
	balusters := perTread * treads
	t.pieces(fmt.Sprintf("Balusters: 5/8\" sq bar x %d (%d per tread)", balusters, perTread),
		"square_tubing", "sq_bar_0.625", risePerStep+6, balusters, "square", WasteTube)

	t.weld = float64(treads*4)*3 + float64(balusters*2)*1.5
	t.sqft = treadSqFt + handrailIn/12*0.5
	t.note("%d treads at %.1f\" rise, %.0f\" diameter. %.1f turns total.", treads, risePerStep, diameter, turns)
	t.note("Handrail is rolled/bent tube and requires roll bending.")
	return t.list()
}
