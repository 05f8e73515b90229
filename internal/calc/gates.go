package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// TailRatio is the cantilever counterbalance tail as a fraction of the
// clear opening.
const TailRatio = 0.55

// Frost-line post embed used for gate posts.
const gatePostEmbedIn = 42.0

// ── Cantilever gate ──────────────────────────────────────────────

type cantileverGate struct{}

func (cantileverGate) cutList() aiProfile { return defaultAIProfile }

func (cantileverGate) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobCantileverGate)

	widthFt := feet(f, "clear_width", 10)
	heightFt := feet(f, "height", 6)
	widthIn, heightIn := widthFt*12, heightFt*12

	frameSize := text(f, "frame_size", `2" x 2"`)
	gauge := normalizeGauge(text(f, "frame_gauge", "11 gauge"))
	frame := gateFrameProfile(frameSize, gauge)

	embed := gatePostEmbedIn
	if c := text(f, "post_concrete", "Yes"); !strings.Contains(c, "Yes") && strings.Contains(c, "No") {
		embed = 0
	}
	posts := gatePostCount(text(f, "post_count", "3 posts (standard)"))
	postSize := text(f, "post_size", `4" x 4" square tube`)

	infill := text(f, "infill_type", "Expanded metal")
	spacing := picketSpacing(text(f, "picket_spacing", text(f, "flat_bar_spacing", `4" on-center`)))
	hasMotor := yes(f, "has_motor", "No")

	tailIn := widthIn * TailRatio
	totalIn := widthIn + tailIn

	// Face and tail are one continuous frame: two rails plus end and
	// divider verticals.
	frameIn := 2*totalIn + 3*heightIn
	frameFt := frameIn / 12
	sticks := max(StickCount(frameFt), 1)
	t.add(domain.MaterialItem{
		Description:  fmt.Sprintf("Gate frame: %s %s (face + counterbalance tail)", frameSize, gauge),
		MaterialType: "square_tubing",
		Profile:      frame,
		LengthInches: frameIn,
		Quantity:     sticks,
		UnitPrice:    frameFt * cat.PricePerFoot(frame) / float64(sticks),
		CutType:      "miter_45",
		WasteFactor:  WasteTube,
	})
	t.weight += cat.WeightLbs(frame, frameFt)
	t.weld += 6 * heightIn * 0.25

	midRails := 1
	if heightIn > 72 {
		midRails = 2
	}
	t.linear(fmt.Sprintf("Mid-rail stiffeners: %s %s x %d", frameSize, gauge, midRails),
		"square_tubing", frame, totalIn*float64(midRails), "square", WasteTube)
	t.weld += float64(midRails*4) * 3

	// Infill covers the face only, never the tail.
	gateInfill(t, infill, spacing, widthIn, heightIn, 2, "Gate face")

	post := gatePostProfile(postSize)
	postIn := heightIn + 2 + embed
	t.add(domain.MaterialItem{
		Description:  fmt.Sprintf("Posts: %s x %d (%.1f ft each, includes %.0f\" embed)", postSize, posts, postIn/12, embed),
		MaterialType: "square_tubing",
		Profile:      post,
		LengthInches: postIn,
		Quantity:     posts,
		UnitPrice:    postIn / 12 * cat.PricePerFoot(post),
		CutType:      "square",
	})
	t.weight += cat.WeightLbs(post, postIn/12*float64(posts))
	t.concrete(posts, 12, embed)

	guideIn := totalIn + 24
	t.linear(fmt.Sprintf("Bottom guide rail: 2\"x2\"x1/4\" angle (%.1f ft)", guideIn/12),
		"angle_iron", "angle_2x2x0.25", guideIn, "square", WasteTube)

	carriage, label := "roller_carriage_standard", "standard"
	if strings.Contains(lower(f, "roller_carriages", ""), "heavy") {
		carriage, label = "roller_carriage_heavy", "heavy duty"
	}
	t.addHardware("Roller carriage: "+label, carriage, 2)
	t.addHardware("Gate stop/bumper", "gate_stop", 2)

	if hasMotor {
		brand := text(f, "motor_brand", "")
		name := brand
		if name == "" {
			name = "LiftMaster LA412"
		}
		t.addHardware("Gate operator: "+name, slidingOperator(brand), 1)
	}
	latch := text(f, "latch_lock", "Gravity latch")
	if key := latchKey(latch); key != "" {
		t.addHardware("Gate latch: "+latch, key, 1)
	}

	aboveGradeIn := heightIn + 2
	t.sqft = SqFt(widthIn, heightIn)*2 + SqFt(tailIn, heightIn)*2 +
		float64(posts)*SqFt(16, aboveGradeIn)*0.1
	t.weld += float64(posts*2) * 4

	t.note("Counterbalance tail: %.1f ft (%.0f%% of %.0f ft opening).", tailIn/12, TailRatio*100, widthFt)
	t.note("Gate total length: %.1f ft (face + tail).", totalIn/12)
	if !hasMotor {
		t.note("No gate operator included. Manual operation.")
	}
	return t.list()
}

// ── Swing gate ───────────────────────────────────────────────────

type swingGate struct{}

func (swingGate) cutList() aiProfile { return defaultAIProfile }

func (swingGate) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobSwingGate)

	widthIn := feet(f, "clear_width", 8) * 12
	heightIn := feet(f, "height", 6) * 12

	config := text(f, "panel_config", "Single panel (one leaf)")
	double := strings.Contains(config, "Double")
	widths := []float64{widthIn}
	if double {
		if strings.Contains(strings.ToLower(config), "unequal") {
			widths = []float64{widthIn * 2 / 3, widthIn / 3}
			t.note("Unequal double: 2/3 active panel + 1/3 fixed panel.")
		} else {
			widths = []float64{widthIn / 2, widthIn / 2}
		}
	}
	panels := len(widths)

	frameSize := text(f, "frame_size", `2" x 2"`)
	gauge := normalizeGauge(text(f, "frame_gauge", "11 gauge"))
	frame := gateFrameProfile(frameSize, gauge)
	infill := text(f, "infill_type", "Pickets (vertical bars)")
	spacing := picketSpacing(text(f, "picket_spacing", text(f, "flat_bar_spacing", `4" on-center`)))

	midRails := 0
	if heightIn > 48 {
		midRails = 1
	}
	if heightIn > 72 {
		midRails = 2
	}

	for i, w := range widths {
		label := "Gate panel"
		if panels > 1 {
			label = fmt.Sprintf("Panel %d", i+1)
		}
		frameIn := Perimeter(w, heightIn) + w*float64(midRails)
		t.linear(fmt.Sprintf("%s frame: %s %s (%.1f ft incl. %d mid-rail)", label, frameSize, gauge, frameIn/12, midRails),
			"square_tubing", frame, frameIn, "miter_45", WasteTube)
		t.weld += 4 * heightIn * 0.12
		t.weld += float64(midRails*2) * 3

		gateInfill(t, infill, spacing, w, heightIn, 4, label)
	}
	panelWeight := t.weight / float64(panels)

	postAnswer := lower(f, "post_count", "")
	posts := 2
	switch {
	case strings.Contains(postAnswer, "already"):
		posts = 0
		t.note("Posts already in place. Not included in material list.")
	case double && strings.Contains(postAnswer, "3"):
		posts = 3
	}
	if posts > 0 {
		postSize := text(f, "post_size", `4" x 4" square tube`)
		post := gatePostProfile(postSize)
		postIn := heightIn + 2 + gatePostEmbedIn
		t.add(domain.MaterialItem{
			Description:  fmt.Sprintf("Posts: %s x %d (%.1f ft each, %.0f\" embed)", postSize, posts, postIn/12, gatePostEmbedIn),
			MaterialType: "square_tubing",
			Profile:      post,
			LengthInches: postIn,
			Quantity:     posts,
			UnitPrice:    postIn / 12 * cat.PricePerFoot(post),
			CutType:      "square",
		})
		t.weight += cat.WeightLbs(post, postIn/12*float64(posts))
		t.concrete(posts, 12, gatePostEmbedIn)
	}

	hingeType := text(f, "hinge_type", "Heavy duty weld-on barrel hinges")
	hinges := hingeCount(panelWeight, text(f, "hinge_count", ""))
	plural := ""
	if panels > 1 {
		plural = "s"
	}
	t.addHardware(fmt.Sprintf("Gate hinge: %s (%d per panel x %d panel%s)", hingeType, hinges, panels, plural),
		hingeKey(hingeType, panelWeight), hinges*panels)
	if panelWeight > 500 {
		t.note("WARNING: Panel weight estimated at %.0f lbs, exceeds standard hinge capacity. Engineering review recommended.", panelWeight)
	}

	latch := text(f, "latch_type", "Gravity latch")
	if key := latchKey(latch); key != "" {
		t.addHardware("Gate latch: "+latch, key, 1)
	}
	if stop := text(f, "center_stop", ""); double && stop != "" {
		t.addHardware("Center stop: "+stop, centerStopKey(stop), 1)
	}
	switch closer := lower(f, "auto_close", "No"); {
	case strings.Contains(closer, "spring"):
		t.addHardware("Self-closing spring hinge pair", "spring_hinge_pair", panels)
	case strings.Contains(closer, "hydraulic"):
		t.addHardware("Hydraulic gate closer", "hydraulic_closer", panels)
	}
	if yes(f, "has_motor", "No") {
		brand := text(f, "motor_brand", "")
		name := brand
		if name == "" {
			name = "LiftMaster RSW12U"
		}
		t.addHardware("Swing gate operator: "+name, swingOperator(brand), panels)
	}
	t.addHardware("Gate stop/bumper", "gate_stop", 2)

	for _, w := range widths {
		t.sqft += SqFt(w, heightIn) * 2
	}
	return t.list()
}

// gateInfill adds the infill for one gate face. railAllowanceIn is taken
// off picket length for the top and bottom rails.
func gateInfill(t *takeoff, infill string, spacing, widthIn, heightIn, railAllowanceIn float64, label string) {
	switch {
	case strings.Contains(infill, "Expanded"):
		area := SqFt(widthIn, heightIn)
		t.sheets(fmt.Sprintf("%s expanded metal infill, 13ga", label), "expanded_metal_13ga", widthIn, area, 0.075)
		t.weld += Perimeter(widthIn, heightIn) * 0.5
	case strings.Contains(infill, "Pickets") || strings.Contains(infill, "Flat bar"):
		flat := strings.Contains(infill, "Flat")
		profile, material, waste := "sq_bar_0.75", "square_tubing", WasteTube
		if flat {
			profile, material, waste = "flat_bar_1x0.25", "flat_bar", WasteFlat
		}
		n := int(math.Ceil(widthIn/spacing)) + 1
		t.pieces(fmt.Sprintf("%s infill: %s at %.1f\" OC x %d pcs", label, infill, spacing, n),
			material, profile, heightIn-railAllowanceIn, n, "square", waste)
		setGroup(t, "infill")
		t.weld += float64(n*2) * 1.5
	case strings.Contains(infill, "Solid"):
		area := SqFt(widthIn, heightIn)
		t.sheets(fmt.Sprintf("%s solid sheet panel, 14ga", label), "sheet_14ga", widthIn, area, 0.075)
		t.weld += Perimeter(widthIn, heightIn) * 0.5
	case strings.Contains(infill, "Horizontal"):
		n := int(math.Ceil(heightIn/spacing)) + 1
		t.pieces(fmt.Sprintf("%s horizontal bar infill at %.1f\" OC x %d pcs", label, spacing, n),
			"square_tubing", "sq_bar_0.75", widthIn, n, "square", WasteTube)
		setGroup(t, "infill")
		t.weld += float64(n*2) * 2
	}
}

// setGroup tags the most recent item with a group.
func setGroup(t *takeoff, group string) {
	if len(t.items) > 0 {
		t.items[len(t.items)-1].Group = group
	}
}

func normalizeGauge(s string) string {
	switch {
	case strings.Contains(s, "11"):
		return "11 gauge"
	case strings.Contains(s, "14"):
		return "14 gauge"
	case strings.Contains(s, "16"):
		return "16 gauge"
	}
	return "11 gauge"
}

var sizeNormalizer = strings.NewReplacer(" ", "", `"`, "", "×", "x", "-1/2", ".5")

// gateFrameProfile maps a frame size and gauge answer to a catalog profile.
func gateFrameProfile(size, gauge string) string {
	s := sizeNormalizer.Replace(strings.ToLower(size))
	switch {
	case strings.HasPrefix(s, "1.5x1.5"), strings.HasPrefix(s, "11/2x11/2"):
		return "sq_tube_1.5x1.5_11ga"
	case strings.HasPrefix(s, "2x3"):
		return "rect_tube_2x3_11ga"
	case strings.HasPrefix(s, "2x4"):
		return "rect_tube_2x4_11ga"
	case strings.HasPrefix(s, "3x3"):
		return "sq_tube_3x3_11ga"
	case strings.HasPrefix(s, "4x4"):
		return "sq_tube_4x4_11ga"
	}
	switch gauge {
	case "14 gauge":
		return "sq_tube_2x2_14ga"
	case "16 gauge":
		return "sq_tube_2x2_16ga"
	}
	return "sq_tube_2x2_11ga"
}

// gatePostProfile maps a post answer to a profile. There is no 6x6 tube in
// the catalog, so 4x4 stands in for it.
func gatePostProfile(size string) string {
	s := strings.ToLower(size)
	if strings.Contains(s, "pipe") {
		if strings.HasPrefix(strings.TrimSpace(s), "6") {
			return "pipe_6_sch40"
		}
		return "pipe_4_sch40"
	}
	return "sq_tube_4x4_11ga"
}

func gatePostCount(s string) int {
	switch {
	case strings.Contains(s, "2"):
		return 2
	case strings.Contains(s, "4"):
		return 4
	}
	return 3
}

// picketSpacing reads an on-center spacing answer in inches.
func picketSpacing(s string) float64 {
	switch {
	case s == "":
		return 4
	case strings.Contains(s, "3.5"), strings.Contains(s, "3-1/2"):
		return 3.5
	case strings.Contains(s, "3"):
		return 3
	case strings.Contains(s, "5"):
		return 5
	case strings.Contains(s, "6"):
		return 6
	}
	return 4
}

func latchKey(s string) string {
	if s == "" || strings.Contains(s, "None") {
		return ""
	}
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "gravity"):
		return "gravity_latch"
	case strings.Contains(l, "magnetic"):
		return "magnetic_latch"
	case strings.Contains(l, "deadbolt"), strings.Contains(l, "keyed"):
		return "keyed_deadbolt"
	case strings.Contains(l, "pool"):
		return "pool_code_latch"
	case strings.Contains(l, "electric"):
		return "electric_strike"
	}
	return "gravity_latch"
}

func centerStopKey(s string) string {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "surface"):
		return "surface_drop_rod"
	case strings.Contains(l, "flush"):
		return "flush_bolt"
	}
	return "cane_bolt"
}

func slidingOperator(brand string) string {
	b := strings.ToLower(brand)
	if strings.Contains(b, "patriot") || strings.Contains(b, "us automatic") {
		return "us_automatic_patriot"
	}
	return "liftmaster_la412"
}

func swingOperator(brand string) string {
	b := strings.ToLower(brand)
	switch {
	case strings.Contains(b, "csw"):
		return "liftmaster_csw24u"
	case strings.Contains(b, "patriot"), strings.Contains(b, "us auto"):
		return "us_automatic_patriot"
	}
	return "liftmaster_rsw12u"
}

// hingeCount honors an explicit answer, otherwise sizes by panel weight.
func hingeCount(panelWeight float64, answer string) int {
	switch {
	case strings.Contains(answer, "2"):
		return 2
	case strings.Contains(answer, "3"):
		return 3
	case strings.Contains(answer, "4"):
		return 4
	}
	if panelWeight < 300 {
		return 2
	}
	return 3
}

func hingeKey(hingeType string, panelWeight float64) string {
	h := strings.ToLower(hingeType)
	switch {
	case strings.Contains(h, "ball"), strings.Contains(h, "bearing"):
		return "ball_bearing_hinge_pair"
	case panelWeight > 150, strings.Contains(h, "heavy"):
		return "heavy_duty_weld_hinge_pair"
	}
	return "standard_weld_hinge_pair"
}
