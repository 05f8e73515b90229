package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// ── Straight railing ─────────────────────────────────────────────

type straightRailing struct{}

func (straightRailing) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobStraightRailing)
	railRun(t, f, feet(f, "linear_footage", 20), railingHeight(f, 42))
	return t.list()
}

// railRun adds posts, rails and infill for a run of linearFt at heightIn.
// Stair and balcony railings build on it.
func railRun(t *takeoff, f domain.Fields, linearFt, heightIn float64) {
	linearIn := linearFt * 12
	spacing := balusterSpacing(text(f, "baluster_spacing", text(f, "horizontal_bar_spacing", `4" max clear`)))
	postSpacing := postSpacingFt(text(f, "post_spacing", "6 ft on-center (standard)"))
	mount := text(f, "post_mount_type", "Surface mount flange")
	transitions := count(f, "transitions", 0)
	if transitions < 0 {
		transitions = 0
	}
	infill := text(f, "infill_style", "Vertical square bar (traditional)")

	const post = "sq_tube_1.5x1.5_11ga"
	posts := int(math.Floor(linearFt/postSpacing)) + 1 + transitions
	m := strings.ToLower(mount)
	postIn, flanges := heightIn, true
	switch {
	case strings.Contains(m, "core"):
		postIn, flanges = heightIn+5, false
	case strings.Contains(m, "embedded"):
		postIn, flanges = heightIn+6, false
	}
	t.pieces(fmt.Sprintf("Posts: 1-1/2\" sq tube 11ga x %d (%.1f ft each)", posts, postIn/12),
		"square_tubing", post, postIn, posts, "square", WasteTube)
	t.weld += float64(posts*2) * 3
	if flanges {
		t.addHardware("Surface mount flange: "+mount, "surface_mount_flange", posts)
	}

	rail, railMaterial := topRailProfile(text(f, "top_rail_profile", `1-1/2" round tube (ADA graspable)`))
	railIn := linearIn + float64(transitions)*6
	cut := "square"
	if transitions > 0 {
		cut = "miter_45"
	}
	t.linear(fmt.Sprintf("Top rail: %s (%.1f ft)", rail, railIn/12), railMaterial, rail, railIn, cut, WasteTube)
	t.linear(fmt.Sprintf("Bottom rail: %s (%.1f ft)", rail, railIn/12), railMaterial, rail, railIn, "square", WasteTube)

	sections := posts - 1
	switch {
	case strings.Contains(infill, "Cable"):
		cables := int(math.Ceil((heightIn-4)/3)) + 1
		t.note("Cable infill: %d cables at 3\" spacing, %.0f total linear feet.", cables, float64(cables)*linearFt)
		t.addHardware(fmt.Sprintf("Cable tensioner: %d cables x %d sections", cables, sections), "cable_tensioner", cables*sections)
		t.addHardware("Cable end fitting", "cable_end_fitting", cables*2)
	case strings.Contains(infill, "Glass"):
		width := linearIn
		if sections > 0 {
			width = linearIn/float64(sections) - 2
		}
		t.note("Glass panels: %d panels approx. %.0f\" x %.0f\". Glass sourced separately, not included in this quote.", sections, width, heightIn-6)
	case strings.Contains(infill, "None"), strings.Contains(strings.ToLower(infill), "open"):
	default:
		profile, material := balusterProfile(infill)
		waste := WasteTube
		if strings.Contains(material, "flat") {
			waste = WasteFlat
		}
		if strings.Contains(infill, "Horizontal") {
			n := int(math.Ceil((heightIn-4)/spacing)) + 1
			t.pieces(fmt.Sprintf("Horizontal bars at %.1f\" OC x %d", spacing, n), material, profile, linearIn, n, "square", waste)
			setGroup(t, "infill")
			t.weld += float64(n*2) * 1.5
		} else {
			n := int(math.Ceil(linearIn/spacing)) + 1
			t.pieces(fmt.Sprintf("Balusters: %s at %.1f\" OC x %d", infill, spacing, n), material, profile, heightIn-4, n, "square", waste)
			setGroup(t, "infill")
			t.weld += float64(n*2) * 1.5
		}
	}
	if transitions > 0 {
		t.note("%d transitions/corners. Miter joints add waste and labor.", transitions)
	}
	t.sqft += linearFt * heightIn / 12
}

func railingHeight(f domain.Fields, def float64) float64 {
	if f.Has("custom_height") {
		return inches(f, "custom_height", def)
	}
	h := text(f, "railing_height", "")
	for _, v := range []float64{34, 36, 42, 48} {
		if strings.Contains(h, trimFloat(v)) {
			return v
		}
	}
	return def
}

func balusterSpacing(s string) float64 {
	switch {
	case s == "":
		return 4
	case strings.Contains(s, "3-1/2"), strings.Contains(s, "3.5"):
		return 3.5
	case strings.Contains(s, "3") && !strings.Contains(s, "13"):
		return 3
	case strings.Contains(s, "5"):
		return 5
	case strings.Contains(s, "6"):
		return 6
	}
	return 4
}

func postSpacingFt(s string) float64 {
	switch {
	case strings.Contains(s, "4") && !strings.Contains(s, "14"):
		return 4
	case strings.Contains(s, "5") && !strings.Contains(s, "15"):
		return 5
	case strings.Contains(s, "8"):
		return 8
	}
	return 6
}

func topRailProfile(s string) (profile, material string) {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "1-1/4") && strings.Contains(l, "round"):
		return "round_tube_1.25_14ga", "dom_tubing"
	case strings.Contains(l, "round"):
		return "round_tube_1.5_14ga", "dom_tubing"
	case strings.Contains(l, "flat") && strings.Contains(l, "2\""):
		return "flat_bar_2x0.25", "flat_bar"
	case strings.Contains(l, "flat"):
		return "flat_bar_1.5x0.25", "flat_bar"
	case strings.Contains(l, "square") && strings.Contains(l, "2\""):
		return "sq_tube_2x2_14ga", "square_tubing"
	}
	return "sq_tube_1.5x1.5_14ga", "square_tubing"
}

func balusterProfile(style string) (profile, material string) {
	l := strings.ToLower(style)
	switch {
	case strings.Contains(l, "round"):
		return "round_bar_0.625", "flat_bar"
	case strings.Contains(l, "flat"):
		return "flat_bar_1x0.25", "flat_bar"
	}
	return "sq_bar_0.75", "square_tubing"
}

// ── Stair railing ────────────────────────────────────────────────

var stairAngles = map[string]float64{
	"Standard residential (about 35-37 degrees)": 36,
	"Steep (38-42 degrees)":                      40,
	"Shallow (under 35 degrees)":                 30,
}

type stairRailing struct{}

func (stairRailing) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobStairRailing)

	slopeFt := feet(f, "linear_footage", 12)
	heightIn := 34.0
	h := text(f, "railing_height", `34"`)
	for _, v := range []float64{34, 36, 42, 48} {
		if strings.Contains(h, trimFloat(v)) {
			heightIn = v
			break
		}
	}

	rise := inches(f, "stair_rise", 0)
	run := inches(f, "stair_run", 0)
	risers := count(f, "num_risers", 14)
	angleAnswer := text(f, "stair_angle", "Standard residential (about 35-37 degrees)")
	angle := 36.0
	switch {
	case rise > 0 && run > 0:
		angle = math.Atan(rise/run) * 180 / math.Pi
		t.note("Stair angle calculated from rise/run: %s\" / %s\" = %.1f deg.", trimFloat(rise), trimFloat(run), angle)
	case strings.Contains(strings.ToLower(angleAnswer), "provide"):
		t.note("Stair angle defaulted to 36 deg. Rise/run not provided.")
	default:
		if a, ok := stairAngles[angleAnswer]; ok {
			angle = a
		}
	}

	landing := lower(f, "landing_extension", "No")
	top := feet(f, "landing_length_top", 0)
	bottom := feet(f, "landing_length_bottom", 0)
	if (strings.Contains(landing, "top") || strings.Contains(landing, "both")) && top == 0 {
		top = 1
	}
	if (strings.Contains(landing, "bottom") || strings.Contains(landing, "both")) && bottom == 0 {
		bottom = 1
	}
	totalFt := slopeFt + top + bottom

	t.note("Stair angle: %.1f deg, %d risers.", angle, risers)
	if top > 0 || bottom > 0 {
		t.note("Landing extensions: top %.1f ft, bottom %.1f ft.", top, bottom)
	}

	railRun(t, f, totalFt, heightIn)

	t.note("Stair rake angle adds fabrication complexity vs. flat railing. All rail and baluster cuts are angled.")
	if strings.Contains(lower(f, "baluster_orientation", "plumb"), "raked") {
		t.note("Raked balusters: each cut to a different length along the stair angle, adds labor.")
	}

	wall := lower(f, "wall_handrail", "No")
	if strings.Contains(wall, "yes") || strings.Contains(wall, "both") {
		t.linear(fmt.Sprintf("Wall-mount handrail: 1-1/2\" round tube (%.1f ft)", totalFt),
			"dom_tubing", "round_tube_1.5_14ga", totalFt*12, "miter_45", WasteTube)
		t.addHardware("Wall handrail bracket", "surface_mount_flange", int(math.Ceil(totalFt/4))+1)
	}
	return t.list()
}

// ── Balcony railing ──────────────────────────────────────────────

type balconyRailing struct{}

func (balconyRailing) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobBalconyRailing)
	linearFt := feet(f, "linear_footage", 20)
	railRun(t, f, linearFt, railingHeight(f, 42))

	structure := lower(f, "balcony_structure", text(f, "structural_frame", "No"))
	if !strings.Contains(structure, "yes") {
		t.note("Railing only. No structural balcony frame; existing structure assumed adequate.")
		return t.list()
	}

	depthFt := feet(f, "balcony_depth", feet(f, "projection", 4))
	linearIn, depthIn := linearFt*12, depthFt*12
	cross := max(int(linearFt/4), 1)
	frameIn := Perimeter(linearIn, depthIn) + depthIn*float64(cross)
	t.linear(fmt.Sprintf("Balcony structural frame: 2\" sq tube 11ga (%.1f ft perimeter + %d cross members)",
		Perimeter(linearIn, depthIn)/12, cross), "square_tubing", "sq_tube_2x2_11ga", frameIn, "miter_45", WasteTube)
	t.weld += float64((cross+4)*2) * 3
	t.sqft += SqFt(linearIn, depthIn)
	t.note("Structural balcony frame: %.0f ft x %.0f ft with %d cross members.", linearFt, depthFt, cross)
	return t.list()
}
