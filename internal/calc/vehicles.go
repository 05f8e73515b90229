package calc

import (
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// ── Off-road bumpers ─────────────────────────────────────────────

type offroadBumper struct{}

func (offroadBumper) cutList() aiProfile { return defaultAIProfile }

func (offroadBumper) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobOffroadBumper)

	position := lower(f, "bumper_position", "Front bumper")
	front := strings.Contains(position, "front")
	both := strings.Contains(position, "both")
	bumpers := 1
	if both {
		bumpers = 2
	}

	thickness := 0.25
	switch s := text(f, "material_thickness", `1/4" (standard, most common)`); {
	case strings.Contains(s, "3/16"):
		thickness = 0.1875
	case strings.Contains(s, "3/8"):
		thickness = 0.375
	}
	sheet := "sheet_11ga"
	if thickness <= 0.19 {
		sheet = "sheet_14ga"
	}
	winch := yes(f, "winch_mount", "No")
	dRings := yes(f, "d_ring_mounts", "No")
	style := lower(f, "bumper_style", "Full-width plate bumper (maximum protection)")
	stubby := containsAny(style, "stubby", "mid-width")
	tube := containsAny(style, "tube", "pre-runner")

	width, height := 60.0, 16.0
	switch {
	case stubby:
		width, height = 48, 14
	case tube:
		width, height = 60, 12
	}
	// Plate pricing scales the 11ga sheet rate by thickness.
	perSqFt := cat.PricePerSqFt("sheet_11ga") * thickness / 0.1196

	for i := 0; i < bumpers; i++ {
		label := "Rear"
		if front || (both && i == 0) {
			label = "Front"
		}
		if !tube {
			t.add(domain.MaterialItem{
				Description:  fmt.Sprintf("%s bumper main plate: %.3f\" x %.0f\" x %.0f\"", label, thickness, width, height),
				MaterialType: "plate",
				Profile:      sheet,
				LengthInches: width,
				Quantity:     1,
				UnitPrice:    SqFt(width, height) * perSqFt,
				CutType:      "square",
				Group:        "body",
			})
			t.weight += cat.PlateWeightLbs(width, height, thickness, "mild_steel")
			t.add(domain.MaterialItem{
				Description:  fmt.Sprintf("%s bumper side returns: %.3f\" plate x 2", label, thickness),
				MaterialType: "plate",
				Profile:      sheet,
				LengthInches: 12,
				Quantity:     2,
				UnitPrice:    SqFt(12, height) * perSqFt,
				CutType:      "square",
				Group:        "body",
			})
			t.weight += cat.PlateWeightLbs(12, height, thickness, "mild_steel") * 2
			t.sqft += SqFt(width, height)*2 + SqFt(12, height)*4
		} else {
			t.sqft += SqFt(width, height)
		}

		if tube || front {
			tubeIn := width + 24
			t.linear(fmt.Sprintf("%s bumper tube structure: 2\" round tube (%.1f ft)", label, tubeIn/12),
				"dom_tubing", "round_tube_2_11ga", tubeIn, "cope", WasteTube)
		}

		const brackets = 4
		t.plate(fmt.Sprintf("%s bumper frame mount brackets x %d", label, brackets), 8, 6, thickness, brackets)

		if winch && (front || i == 0) {
			t.plate("Winch mount plate: 3/8\" x 10\" x 4.5\"", 10, 4.5, 0.375, 1)
			t.note("Winch plate: 3/8\" x 10\" x 4.5\" with standard bolt pattern.")
		}
		if dRings {
			t.plate(fmt.Sprintf("%s D-ring / shackle mount plates x 2", label), 6, 4, 0.375, 2)
			t.addHardware("3/4\" D-ring shackle", "d_ring_shackle", 2)
		}

		t.weld += width*2 + height*4 + brackets*12
	}

	desc := "Rear"
	switch {
	case both:
		desc = "Front + Rear"
	case front:
		desc = "Front"
	}
	kind := "full-width"
	switch {
	case stubby:
		kind = "stubby"
	case tube:
		kind = "tube"
	}
	t.note("%s bumper, %s style, %.3f\" plate.", desc, kind, thickness)
	return t.list()
}

// ── Rock sliders ─────────────────────────────────────────────────

type rockSlider struct{}

func (rockSlider) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobRockSlider,
		"Rock sliders are always quoted as a pair (driver + passenger side).")

	profile, od := domTube(text(f, "material_thickness", `1.75" OD x 0.120" wall DOM (standard)`), false)
	kickOut := yes(f, "kick_out", "No")
	topPlate := containsAny(lower(f, "top_plate", ""), "plate", "diamond")

	railIn := 60.0
	vehicle := lower(f, "vehicle_make_model", "")
	switch {
	case containsAny(vehicle, "crew", "4-door", "4 door"):
		railIn = 72
	case containsAny(vehicle, "short", "2-door", "2 door"):
		railIn = 48
	}

	sideIn := railIn
	cut, extra := "square", ""
	if kickOut {
		sideIn += 24
		cut, extra = "cope", " + kick-out"
	}
	t.pieces(fmt.Sprintf("Main rails: %s x 2 (%.0f\" each%s)", profile, railIn, extra),
		"dom_tubing", profile, sideIn, 2, cut, WasteTube)

	perSide := 4
	if railIn > 60 {
		perSide = 5
	}
	brackets := perSide * 2
	t.pieces(fmt.Sprintf("Mount brackets: 1-1/2\" sq tube x %d (%d per side)", brackets, perSide),
		"square_tubing", "sq_tube_1.5x1.5_11ga", 8, brackets, "square", WasteTube)
	t.plate(fmt.Sprintf("Gusset plates: 3/16\" x 4\" x 4\" x %d", brackets), 4, 4, 0.1875, brackets)

	if topPlate {
		t.add(domain.MaterialItem{
			Description:  fmt.Sprintf("Top step plate: 11ga x %.0f\" x 6\" x 2 (pair)", railIn),
			MaterialType: "plate",
			Profile:      "sheet_11ga",
			LengthInches: railIn,
			Quantity:     2,
			UnitPrice:    SqFt(railIn, 6) * cat.PricePerSqFt("sheet_11ga"),
			CutType:      "square",
		})
		t.weight += cat.PlateWeightLbs(railIn, 6, 0.1196, "mild_steel") * 2
		t.sqft += SqFt(railIn, 6) * 2
	}

	t.weld = float64(brackets*12) + railIn*2*0.3 + float64(brackets*8)
	t.sqft += math.Pi * od / 12 * sideIn * 2 / 12
	t.note("Rail length: %.0f\" per side based on vehicle type. %d mount brackets per side.", railIn, perSide)
	return t.list()
}

// domTube maps a DOM tube answer to the nearest stocked profile and its
// nominal OD.
func domTube(s string, cage bool) (profile string, od float64) {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, `2"`), strings.Contains(l, "2 "):
		return "round_tube_2_11ga", 2.0
	case cage && strings.Contains(l, "1.625"):
		return "round_tube_1.5_11ga", 1.625
	case !cage && strings.Contains(l, "1.5"),
		cage && (strings.Contains(l, `1.5"`) || strings.Contains(l, "1.5 ")):
		return "round_tube_1.5_11ga", 1.5
	}
	return "round_tube_2_11ga", 1.75
}

// ── Roll cages ───────────────────────────────────────────────────

type rollCage struct{}

func (rollCage) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobRollCage)

	style := text(f, "cage_style", "4-point cage (main hoop + down tubes)")
	tubeAnswer := text(f, "tube_size", `1.75" x 0.120" wall DOM (most common, street/trail)`)
	profile, od := domTube(tubeAnswer, true)
	vehicle := lower(f, "vehicle_type", "Truck / SUV (off-road / prerunner)")
	gussets := !strings.Contains(lower(f, "gussets", "Yes"), "no")

	footage := cageFootage(style)
	switch {
	case containsAny(vehicle, "utv", "buggy"):
		footage = math.Floor(footage * 0.7)
	case strings.Contains(lower(f, "door_count", "2-door"), "4-door"):
		footage = math.Floor(footage * 1.25)
	}
	name := style
	if i := strings.Index(name, "("); i > 0 {
		name = strings.TrimSpace(name[:i])
	}

	t.linear(fmt.Sprintf("Cage tubing: %s (%.0f ft total, %s)", profile, footage, name),
		"dom_tubing", profile, footage*12, "cope", WasteTube)

	plates, joints := cagePoints(style)
	t.plate(fmt.Sprintf("Cage foot / mounting plates: 1/4\" x 6\" x 6\" x %d", plates), 6, 6, 0.25, plates)
	if gussets {
		n := plates * 2
		t.plate(fmt.Sprintf("Gusset plates: 3/16\" x 3\" x 3\" x %d", n), 3, 3, 0.1875, n)
		t.weld += float64(n) * 6
	}

	t.weld += float64(joints) * math.Pi * od
	t.sqft = math.Pi * od / 12 * footage
	t.note("%s: estimated %.0f ft of %.2f\" DOM tube. %d joints.", name, footage, od, joints)
	if containsAny(strings.ToLower(tubeAnswer), "chromoly", "4130") {
		t.note("4130 chromoly requires TIG welding and post-weld normalization. Do NOT powder coat 4130; heat can weaken the material.")
	}
	return t.list()
}

// cageFootage is the estimated tube footage for a cage style.
func cageFootage(style string) float64 {
	s := strings.ToLower(style)
	switch {
	case strings.Contains(s, "roll bar"):
		return 12
	case strings.Contains(s, "4-point"):
		return 25
	case strings.Contains(s, "6-point"):
		return 40
	case strings.Contains(s, "full"):
		return 65
	case strings.Contains(s, "custom"):
		return 45
	}
	return 40
}

// cagePoints returns the mounting plate and joint counts for a cage style.
func cagePoints(style string) (plates, joints int) {
	s := strings.ToLower(style)
	switch {
	case strings.Contains(s, "roll bar"):
		return 2, 4
	case strings.Contains(s, "4-point"):
		return 4, 8
	case strings.Contains(s, "6-point"):
		return 6, 14
	case strings.Contains(s, "full"):
		return 8, 22
	}
	return 4, 10
}

// ── Custom exhaust ───────────────────────────────────────────────

type exhaustRun struct {
	match string
	feet  float64
	bends int
}

// exhaustRuns is checked in order; "full custom" answers also mention headers.
var exhaustRuns = []exhaustRun{
	{"full custom", 18, 8},
	{"cat-back", 10, 5},
	{"downpipe", 4, 3},
	{"header", 6, 4},
	{"repair", 3, 1},
}

type exhaustCustom struct{}

func (exhaustCustom) cutList() aiProfile { return defaultAIProfile }

func (exhaustCustom) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobExhaustCustom)

	kind := text(f, "exhaust_type", "Cat-back exhaust (catalytic converter back)")
	diameterAnswer := text(f, "pipe_diameter", `2.5" (V6 / small V8)`)
	od := exhaustOD(diameterAnswer)
	dual := strings.Contains(strings.ToLower(diameterAnswer), "dual")
	stainless := strings.Contains(lower(f, "material", "Mild steel"), "stainless")

	run := exhaustRun{feet: 10, bends: 4}
	kl := strings.ToLower(kind)
	for _, r := range exhaustRuns {
		if strings.Contains(kl, r.match) {
			run = r
			break
		}
	}
	pipeFt, bends := run.feet, run.bends
	if dual {
		pipeFt = math.Floor(pipeFt * 1.8)
		bends = int(float64(bends) * 1.6)
	}

	profile := "round_tube_2_11ga"
	if od <= 1.5 {
		profile = "round_tube_1.5_14ga"
	}
	perFt := cat.PricePerFoot(profile)
	material, label := "mild_steel", "mild steel"
	if stainless {
		perFt *= 2.5
		material, label = "stainless_304", "304 SS"
		t.note("304 stainless adds ~2.5x material cost over mild steel.")
	}
	wpf := exhaustWeightPerFt(od)

	sticks := max(StickCount(pipeFt), 1)
	dualLabel := ""
	if dual {
		dualLabel = " dual"
	}
	t.add(domain.MaterialItem{
		Description:  fmt.Sprintf("Exhaust pipe: %.2f\" OD %s (%.0f ft%s)", od, label, pipeFt, dualLabel),
		MaterialType: material,
		Profile:      profile,
		LengthInches: pipeFt * 12,
		Quantity:     sticks,
		UnitPrice:    pipeFt * perFt / float64(sticks),
		CutType:      "square",
		WasteFactor:  WasteTube,
	})
	t.weight += pipeFt * wpf

	bendPrice := 18.0
	if stainless {
		bendPrice = 45
	}
	t.add(domain.MaterialItem{
		Description:  fmt.Sprintf("Mandrel bends: %.2f\" %s x %d", od, label, bends),
		MaterialType: material,
		Profile:      profile,
		LengthInches: 18,
		Quantity:     bends,
		UnitPrice:    bendPrice,
		CutType:      "square",
	})
	t.weight += wpf * 1.5 * float64(bends)

	flanges := 2
	if dual {
		flanges = 4
	}
	t.addHardware("Exhaust flange / V-band clamp", "exhaust_vband_clamp", flanges)
	t.addHardware("Exhaust hanger / rubber mount", "exhaust_hanger", max(int(pipeFt/3), 2))

	t.weld = float64(bends+flanges) * math.Pi * od
	t.sqft = math.Pi * od / 12 * pipeFt
	name := kind
	if i := strings.Index(name, "("); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	t.note("%s: %.0f ft of %.2f\" pipe, %d bends.", name, pipeFt, od, bends)
	return t.list()
}

func exhaustOD(s string) float64 {
	switch {
	case strings.Contains(s, "2.25"):
		return 2.25
	case strings.Contains(s, "2.5"):
		return 2.5
	case strings.Contains(s, `2"`):
		return 2.0
	case strings.Contains(s, "3.5"):
		return 3.5
	case strings.Contains(s, `3"`):
		return 3.0
	case strings.Contains(s, `4"`), strings.Contains(s, "4 "):
		return 4.0
	}
	return 2.5
}

func exhaustWeightPerFt(od float64) float64 {
	switch od {
	case 2.0:
		return 1.5
	case 2.25:
		return 1.8
	case 2.5:
		return 2.1
	case 3.0:
		return 2.8
	case 3.5:
		return 3.4
	case 4.0:
		return 4.0
	}
	return 2.5
}

// ── Trailers ─────────────────────────────────────────────────────

type trailerFab struct{}

func (trailerFab) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobTrailerFab)

	lengthFt := feet(f, "length", 16)
	widthFt := trailerWidth(text(f, "width", "6.5' (standard utility)"))
	lengthIn, widthIn := lengthFt*12, widthFt*12
	axles := 2
	switch a := lower(f, "axle_count", "Single axle (up to 3,500 lb capacity)"); {
	case strings.Contains(a, "single"):
		axles = 1
	case strings.Contains(a, "triple"):
		axles = 3
	}
	deck := text(f, "deck_type", "Expanded metal deck")

	const tongueFt = 4.0
	railFt := lengthFt + tongueFt
	t.pieces(fmt.Sprintf("Main frame rails: C6x8.2 channel x 2 (%.1f ft each, includes tongue)", railFt),
		"channel", "channel_6x8.2", railFt*12, 2, "miter_45", WasteTube)

	cross := int(math.Ceil(lengthIn/16)) + 1
	t.pieces(fmt.Sprintf("Cross members: C4x5.4 channel x %d at 16\" OC (%.1f ft each)", cross, widthFt),
		"channel", "channel_4x5.4", widthIn, cross, "square", WasteTube)
	t.pieces(fmt.Sprintf("Tongue assembly: C6x8.2 A-frame (%.0f ft)", tongueFt),
		"channel", "channel_6x8.2", tongueFt*12, 2, "miter_45", 0)
	t.pieces(fmt.Sprintf("Axle mount crossmembers: 3\" sq tube 11ga x %d", axles),
		"square_tubing", "sq_tube_3x3_11ga", widthIn+12, axles, "square", WasteTube)

	deckSqFt := SqFt(lengthIn, widthIn)
	switch d := strings.ToLower(deck); {
	case strings.Contains(d, "expanded"):
		t.sheets(fmt.Sprintf("Deck: expanded metal 13ga (%.0f sq ft)", deckSqFt), "expanded_metal_13ga", lengthIn, deckSqFt, 0.075)
	case strings.Contains(d, "diamond"):
		t.sheets(fmt.Sprintf("Deck: 11ga diamond plate (%.0f sq ft)", deckSqFt), "sheet_11ga", lengthIn, deckSqFt, 0.1196)
	default:
		t.note("Deck type: %s. Deck material not included or by others.", deck)
	}

	t.addHardware("Trailer coupler (2\" ball for single axle, 2-5/16\" for tandem+)", "trailer_coupler", 1)
	t.addHardware("Safety chain set (pair)", "safety_chain_pair", 1)
	t.addHardware("Trailer tongue jack", "tongue_jack", 1)

	t.weld = float64(cross)*widthIn*0.2 + lengthIn*2*0.1 + float64(axles)*24
	t.sqft = deckSqFt + railFt*2*0.5
	t.note("%.0f ft x %.1f ft trailer, %d axle(s), %d cross members at 16\" OC.", lengthFt, widthFt, axles, cross)
	t.note("Axles, springs, wheels/tires, wiring, and fenders NOT included in material list.")
	return t.list()
}

func trailerWidth(s string) float64 {
	switch {
	case strings.Contains(s, "8.5"):
		return 8.5
	case strings.Contains(s, "6.5"):
		return 6.5
	case strings.Contains(s, "5'"), strings.Contains(s, "5 "):
		return 5
	case strings.Contains(s, "6'"):
		return 6
	case strings.Contains(s, "7'"), strings.Contains(s, "7 "):
		return 7
	case strings.Contains(s, "8'"):
		return 8
	}
	return 6.5
}
