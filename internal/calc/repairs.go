package calc

import (
	"fmt"
	"strings"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// ScopeCreepBuffer grows repair material when surrounding damage is
// reported.
const ScopeCreepBuffer = 0.25

var repairItemProfiles = map[string]string{
	"Gate (swing or sliding)":    "sq_tube_2x2_11ga",
	"Fence section":              "sq_bar_0.75",
	"Railing (stair or flat)":    "sq_tube_1.5x1.5_11ga",
	"Balcony railing or guard":   "sq_tube_1.5x1.5_11ga",
	"Window grate/bars":          "sq_bar_0.75",
	"Decorative panel or screen": "flat_bar_1x0.25",
}

// ── Decorative repair ────────────────────────────────────────────

type repairDecorative struct{}

func (repairDecorative) leadingNotes() int { return 2 }

func (repairDecorative) cutList() aiProfile {
	p := defaultAIProfile
	p.anyText = true
	p.priceFallback = 2.50
	p.note = "Repair cut list generated by AI from damage description."
	p.area = func(_ domain.Fields, cuts []Cut) float64 {
		total := 0.0
		for _, c := range cuts {
			total += SqFt(c.LengthInches, 4)
		}
		return max(total, 2.0)
	}
	return p
}

func (repairDecorative) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobRepairDecorative,
		"Repair estimates are approximate. Actual scope may change upon inspection.")

	itemType := text(f, "item_type", "Railing (stair or flat)")
	material := repairMaterial(text(f, "material_type", "Mild steel / carbon steel"))
	structural := lower(f, "is_structural", "Cosmetic")
	surrounding := lower(f, "surrounding_damage", "No")
	finish := lower(f, "finish", "Match existing")
	canRemove := lower(f, "can_remove", "Can be removed, bring to shop")

	length, width := damageDims(text(f, "damage_dimensions", ""))
	profile, ok := repairItemProfiles[itemType]
	if !ok {
		profile = "sq_tube_1.5x1.5_11ga"
	}

	for _, repair := range list(f, "repair_type", "Broken weld (piece detached)") {
		r := strings.ToLower(repair)
		switch {
		case strings.Contains(r, "broken"):
			weld := max(length*0.5, 6)
			t.weld += weld
			t.note("Broken weld repair: ~%.0f\" of reweld, no new material.", weld)
		case strings.Contains(r, "bent"), strings.Contains(r, "deformed"):
			pieceIn := max(length, 12)
			t.pieces(fmt.Sprintf("Replacement section: %s (%.1f ft, bent member)", profile, pieceIn/12),
				material, profile, pieceIn, 1, "square", 0)
			t.weld += 2 * 4
			t.note("Bent section: %.1f ft replacement piece estimated. May be straightened instead if feasible.", pieceIn/12)
		case strings.Contains(r, "rust"), strings.Contains(r, "corrosion"):
			patchL, patchW := max(length, 6), max(width, 4)
			pieceIn := patchL + 4
			t.pieces(fmt.Sprintf("Rust repair section: %s (%.1f ft, includes overlap)", profile, pieceIn/12),
				material, profile, pieceIn, 1, "square", 0)
			t.weld += 2 * pieceIn * 0.3
			t.sqft += SqFt(patchL, patchW)
			t.note("Rust-through: %.1f ft section replacement. Surrounding metal condition may require a larger patch.", pieceIn/12)
		case strings.Contains(r, "missing"):
			pieceIn := max(length, 12)
			cut := "square"
			if strings.Contains(strings.ToLower(itemType), "scroll") {
				cut = "cope"
			}
			t.pieces(fmt.Sprintf("Replacement piece: %s (%.1f ft)", profile, pieceIn/12),
				material, profile, pieceIn, 1, cut, 0)
			t.weld += 2 * 4
			t.note("Missing piece: %.1f ft replacement. Design match accuracy depends on photo reference.", pieceIn/12)
			if strings.Contains(lower(f, "matching_required", ""), "exactly") {
				t.note("Exact design match required. May require custom forming/forging; labor estimate will be higher.")
			}
		case strings.Contains(r, "crack"), strings.Contains(r, "split"):
			weld := max(length, 6)
			t.weld += weld
			if strings.Contains(structural, "structural") {
				reinfIn := length + 4
				t.add(domain.MaterialItem{
					Description:  fmt.Sprintf("Reinforcement plate: 1/4\" x 3\" x %.0f\"", reinfIn),
					MaterialType: "flat_bar",
					Profile:      "flat_bar_1.5x0.25",
					LengthInches: reinfIn,
					Quantity:     1,
					UnitPrice:    reinfIn / 12 * cat.PricePerFoot("flat_bar_1.5x0.25"),
					CutType:      "square",
					WasteFactor:  WasteFlat,
				})
				t.weight += cat.PlateWeightLbs(reinfIn, 3, 0.25, "mild_steel")
				t.weld += reinfIn * 2
				t.note("Crack/split repair: %.0f\" weld repair + reinforcement plate.", weld)
			} else {
				t.note("Crack/split repair: %.0f\" weld repair.", weld)
			}
		case strings.Contains(r, "loose"), strings.Contains(r, "wobbly"):
			t.weld += 12
			t.note("Loose anchor repair: reweld at base connection. May require redrilling if anchor bolts have failed.")
		}
	}

	if containsAny(surrounding, "yes", "widespread", "additional") {
		for i := range t.items {
			t.items[i].RawQuantity *= 1 + ScopeCreepBuffer
			t.items[i] = domain.NewMaterialItem(t.items[i])
		}
		t.weight *= 1 + ScopeCreepBuffer
		t.weld *= 1 + ScopeCreepBuffer
		t.note("Adjacent material condition may require additional work. %.0f%% material buffer applied; site assessment recommended.", ScopeCreepBuffer*100)
	}

	switch {
	case strings.Contains(finish, "refinish entire"), strings.Contains(finish, "powder coat"):
		t.sqft = max(t.sqft, SqFt(length*3, width*3))
		t.note("Finish area estimated for full refinish of the affected piece.")
	case strings.Contains(finish, "match"):
		t.sqft = max(t.sqft, SqFt(length*1.5, width*1.5))
		t.note("Spot-matching finish. Blending may show; full refinish recommended for best results.")
	default:
		t.sqft = max(t.sqft, 1)
	}

	if strings.Contains(canRemove, "in place") || strings.Contains(canRemove, "on-site") {
		t.note("On-site repair: on-site labor rate applies. Access constraints may increase time.")
	}
	return t.list()
}

// damageDims reads a damage size in inches, defaulting to 12" x 4".
func damageDims(s string) (length, width float64) {
	length, width = 12, 4
	nums := numberRe.FindAllString(s, 2)
	if len(nums) >= 1 {
		length, _ = firstNumber(nums[0])
	}
	if len(nums) >= 2 {
		width, _ = firstNumber(nums[1])
	}
	if hasFootMark(s) {
		length *= 12
	}
	return max(length, 1), max(width, 1)
}

func repairMaterial(s string) string {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "stainless"):
		return "stainless_304"
	case strings.Contains(l, "aluminum"):
		return "aluminum_6061"
	}
	return "mild_steel"
}

// ── Structural repair ────────────────────────────────────────────

type repairStructural struct{}

func (repairStructural) leadingNotes() int { return 2 }

func (repairStructural) cutList() aiProfile {
	p := defaultAIProfile
	p.anyText = true
	p.defaultProfile = "sq_tube_2x2_11ga"
	p.weightPerFt = 2.5
	p.weldPerPiece = 8
	p.note = "Structural repair cut list generated by AI from damage description."
	p.area = func(f domain.Fields, _ []Cut) float64 {
		section := 24.0
		if n, ok := firstNumber(text(f, "damage_dimensions", text(f, "approximate_size", ""))); ok {
			section = n
		}
		return max(SqFt(section, 8), 1)
	}
	return p
}

func (repairStructural) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobRepairStructural,
		"Structural repair estimates are conservative. Actual scope may change upon inspection.")

	repair := lower(f, "repair_type", text(f, "description", "General structural repair"))
	damageIn := 24.0
	if d := text(f, "damage_dimensions", text(f, "approximate_size", "")); d != "" {
		if n, ok := firstNumber(d); ok {
			if hasFootMark(d) {
				n *= 12
			}
			damageIn = max(n, 6)
		}
	}

	var profile, material string
	var sectionIn float64
	switch {
	case strings.Contains(repair, "trailer"):
		profile, material, sectionIn = "channel_4x5.4", "channel", max(damageIn, 24)
		t.note("Trailer frame repair: channel section replacement estimated.")
	case strings.Contains(repair, "chassis"):
		profile, material, sectionIn = "rect_tube_2x4_11ga", "square_tubing", max(damageIn, 36)
		t.note("Chassis repair: rectangular tube section replacement estimated.")
	case strings.Contains(repair, "beam"), strings.Contains(repair, "column"):
		profile, material, sectionIn = "channel_6x8.2", "channel", max(damageIn, 48)
		t.note("Structural beam/column repair: channel section replacement estimated.")
	default:
		profile, material, sectionIn = "sq_tube_2x2_11ga", "square_tubing", max(damageIn, 18)
		t.note("General structural repair: tube section replacement estimated.")
	}

	t.pieces(fmt.Sprintf("Replacement section: %s (%.1f ft)", profile, sectionIn/12),
		material, profile, sectionIn, 1, "square", 0)
	t.weld += sectionIn * 0.5

	spliceIn := min(sectionIn*0.5, 12)
	t.pieces(fmt.Sprintf("Splice plates: flat_bar_2x0.25 x 2 (%.0f\" each)", spliceIn),
		"flat_bar", "flat_bar_2x0.25", spliceIn, 2, "square", 0)
	t.weld += spliceIn * 2 * 2

	if sectionIn > 24 {
		t.plate("Gusset reinforcement plates: 1/4\" x 6\" x 6\" x 4", 6, 6, 0.25, 4)
		t.weld += 4 * 12
	}

	t.sqft = max(SqFt(sectionIn, 8), 1)
	t.note("Repair section: %.0f\" of %s. Splice plates at each end. Site inspection recommended to confirm scope.", sectionIn, profile)
	return t.list()
}

// ── Custom fabrication (universal fallback) ──────────────────────

type customFab struct{}

func (customFab) leadingNotes() int { return 2 }

func (customFab) cutList() aiProfile {
	p := defaultAIProfile
	p.anyText = true
	p.area = func(f domain.Fields, _ []Cut) float64 {
		l, w, _ := roughSize(text(f, "approximate_size", ""), 24, 12, 12, func(l float64) float64 { return max(l*0.5, 6) })
		return SqFt(l, w) * 2
	}
	return p
}

func (customFab) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobCustomFab,
		"Custom fabrication estimate. Actual material needs may vary significantly; this estimate is based on approximate dimensions only.")

	qty := atLeastOne(count(f, "quantity", 1))
	l, w, h := roughSize(text(f, "approximate_size", ""), 24, 12, 12, func(l float64) float64 { return max(l*0.5, 6) })
	profile, material := "sq_tube_1.5x1.5_11ga", fabMaterial(text(f, "material", "Mild steel"))

	perimIn := 2*(l+w) + 4*h
	t.pieces(fmt.Sprintf("Estimated frame/structural material: %s (%.1f ft per unit)", profile, perimIn/12),
		material, profile, perimIn, qty, "square", WasteTube)
	internalIn := (l + w) * 0.5
	t.pieces(fmt.Sprintf("Estimated internal bracing: %s (%.1f ft per unit)", profile, internalIn/12),
		material, profile, internalIn, qty, "square", WasteTube)

	t.sqft = SqFt(l, w) * 2 * float64(qty)
	t.weld = perimIn * 0.3 * float64(qty)
	t.note("Estimated from approximate size: %.0f\" x %.0f\" x %.0f\". Quantity: %d.", l, w, h, qty)
	return t.list()
}

func fabMaterial(s string) string {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "stainless"):
		return "stainless_304"
	case strings.Contains(l, "aluminum"):
		return "aluminum_6061"
	}
	return "mild_steel"
}

// roughSize reads free-text overall dimensions into inches. With only two
// values the height comes from heightOf(length); with one value the width
// is half the length.
func roughSize(s string, defL, defW, defH float64, heightOf func(float64) float64) (l, w, h float64) {
	vals, ok := dims(s)
	if !ok {
		return defL, defW, defH
	}
	switch len(vals) {
	case 1:
		return max(vals[0], 1), max(vals[0]*0.5, 1), heightOf(vals[0])
	case 2:
		return max(vals[0], 1), max(vals[1], 1), heightOf(vals[0])
	}
	return max(vals[0], 1), max(vals[1], 1), max(vals[2], 1)
}

// ── Other furniture and fixtures ─────────────────────────────────

type furnitureOther struct{}

func (furnitureOther) cutList() aiProfile {
	p := defaultAIProfile
	p.anyText = true
	p.priceFallback = 2.75
	p.note = "Cut list generated by AI from custom design description."
	p.area = func(f domain.Fields, _ []Cut) float64 {
		l, w, _ := roughSize(text(f, "approximate_size", ""), 48, 18, 36, func(float64) float64 { return 36 })
		return SqFt(l, w)
	}
	return p
}

func (furnitureOther) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobFurnitureOther)

	itemType := text(f, "item_type", "Shelving / storage rack")
	qty := atLeastOne(count(f, "quantity", 1))
	l, w, h := roughSize(text(f, "approximate_size", `48" x 18" x 72"`), 48, 18, 36, func(float64) float64 { return 36 })

	frame, material := "sq_tube_1.5x1.5_11ga", fabMaterial(text(f, "material", "Mild steel"))
	if material == "aluminum_6061" {
		frame = "sq_tube_1.5x1.5_14ga"
	}

	item := strings.ToLower(itemType)
	switch {
	case strings.Contains(item, "shelf"), strings.Contains(item, "rack"):
		uprights := 4 * qty
		shelves := max(int(h/18), 2) * qty
		t.pieces(fmt.Sprintf("Uprights: %s x %d (%.0f\" each)", frame, uprights, h), material, frame, h, uprights, "square", WasteTube)
		t.pieces(fmt.Sprintf("Shelf frames: %s x %d shelves", frame, shelves), material, frame, Perimeter(l, w), shelves, "miter_45", WasteTube)
		t.weld = float64(uprights*shelves*2+shelves*4) * 2
		t.note("Shelving: %d uprights, %d shelves at ~18\" spacing.", uprights, shelves)
	case strings.Contains(item, "bracket"), strings.Contains(item, "mount"):
		bracketIn := max(l, 8)
		t.pieces(fmt.Sprintf("Brackets: flat_bar_1.5x0.25 x %d (%.0f\" each, 2 per unit)", qty*2, bracketIn),
			"flat_bar", "flat_bar_1.5x0.25", bracketIn, qty*2, "square", WasteFlat)
		t.weld = float64(qty*2) * 6
		t.note("Brackets: 2 per unit, %.0f\" each.", bracketIn)
	default:
		unitIn := Perimeter(l, w) + 4*h + (l+w)*0.5
		totalIn := unitIn * float64(qty)
		sticks := max(StickCount(totalIn/12), 1)
		t.add(domain.MaterialItem{
			Description:  fmt.Sprintf("Frame material: %s (%.1f ft per unit x %d)", frame, unitIn/12, qty),
			MaterialType: material,
			Profile:      frame,
			LengthInches: unitIn,
			Quantity:     sticks,
			UnitPrice:    totalIn / 12 * cat.PricePerFoot(frame) / float64(sticks),
			CutType:      "miter_45",
			WasteFactor:  WasteTube,
		})
		t.weight += cat.WeightLbs(frame, totalIn/12)
		t.weld = float64(qty) * 12 * 3
		t.note("Generic furniture frame estimated from overall dimensions.")
	}

	t.sqft = SqFt(l, w) * float64(qty)
	name := itemType
	if i := strings.IndexAny(name, "/("); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	t.note("%s: %.0f\" x %.0f\" x %.0f\", %d unit(s).", name, l, w, h, qty)
	return t.list()
}
