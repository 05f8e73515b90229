package calc

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// ── Structural frames ────────────────────────────────────────────

// structuralPricePerLb is delivered structural steel.
const structuralPricePerLb = 1.50

type structuralFrame struct{}

func (structuralFrame) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobStructuralFrame)

	kind := lower(f, "frame_type", "Portal frame (beam + columns)")
	spanFt := feet(f, "span", 20)
	heightFt := feet(f, "height", 10)
	depthFt := feet(f, "depth", 0)
	material := lower(f, "material", "Wide flange / I-beam (most common for structural)")

	beam, beamWpf := structuralBeam(spanFt, material)
	column, colWpf := structuralColumn(heightFt, material)

	member := func(desc, profile string, lengthFt, wpf float64, n int) {
		t.add(domain.MaterialItem{
			Description:  desc,
			MaterialType: "mild_steel",
			Profile:      profile,
			LengthInches: lengthFt * 12,
			Quantity:     n,
			UnitPrice:    lengthFt * wpf * structuralPricePerLb,
			CutType:      "square",
			WasteFactor:  WasteTube,
		})
		t.weight += lengthFt * wpf * float64(n)
	}

	var columns int
	switch {
	case strings.Contains(kind, "mezzanine"):
		beams := 2
		columns = 4
		if depthFt == 0 {
			depthFt = min(spanFt, 12)
		}
		if spanFt > 20 {
			beams, columns = 3, 6
		}
		member(fmt.Sprintf("Main beams: %s x %d (%.0f ft span)", beam, beams, spanFt), beam, spanFt, beamWpf, beams)
		member(fmt.Sprintf("Cross beams: %s x %d (%.0f ft depth)", beam, beams+1, depthFt), beam, depthFt, beamWpf*0.6, beams+1)
		t.sqft = spanFt * depthFt
		t.note("Mezzanine: %.0f ft x %.0f ft, %.0f ft clear height.", spanFt, depthFt, heightFt)
	case strings.Contains(kind, "canopy"):
		projection := depthFt
		if projection <= 0 {
			projection = 10
		}
		rafters := max(int(spanFt/10), 2)
		columns = rafters
		member(fmt.Sprintf("Rafters: %s x %d (%.0f ft projection)", beam, rafters, projection), beam, projection, beamWpf, rafters)
		member(fmt.Sprintf("Header beam: %s (%.0f ft span)", beam, spanFt), beam, spanFt, beamWpf, 1)
		t.sqft = spanFt * projection
		t.note("Canopy: %.0f ft span x %.0f ft projection.", spanFt, projection)
	default:
		beams := 1
		columns = 2
		if spanFt > 30 {
			beams, columns = 2, 3
		}
		member(fmt.Sprintf("Beam: %s x %d (%.0f ft span)", beam, beams, spanFt), beam, spanFt, beamWpf, beams)
		t.sqft = spanFt * heightFt
		t.note("Portal frame: %.0f ft span x %.0f ft height.", spanFt, heightFt)
	}

	member(fmt.Sprintf("Columns: %s x %d (%.0f ft each)", column, columns, heightFt), column, heightFt, colWpf, columns)

	connections := columns * 2
	t.plate(fmt.Sprintf("Connection plates: 1/2\" x 12\" x 12\" x %d", connections), 12, 12, 0.5, connections)

	t.weld = float64(connections*48 + columns*24)
	t.note("Structural steel priced at ~$%.2f/lb delivered. Engineering/PE stamp not included; required for occupied structures.", structuralPricePerLb)
	return t.list()
}

// structuralBeam picks a beam stand-in and its weight per foot. Wide
// flange sizes are carried as their W-shape weights.
func structuralBeam(spanFt float64, material string) (string, float64) {
	switch {
	case containsAny(material, "hss", "tube"):
		if spanFt <= 12 {
			return "sq_tube_4x4_11ga", 4.18
		}
		return "rect_tube_2x4_11ga", 2.80
	case strings.Contains(material, "channel"):
		return "channel_6x8.2", 8.2
	case spanFt <= 15:
		return "channel_6x8.2", 21
	case spanFt <= 25:
		return "channel_6x8.2", 31
	}
	return "channel_6x8.2", 49
}

func structuralColumn(heightFt float64, material string) (string, float64) {
	switch {
	case containsAny(material, "hss", "tube"):
		return "sq_tube_4x4_11ga", 4.18
	case heightFt <= 12:
		return "sq_tube_4x4_11ga", 21
	}
	return "sq_tube_4x4_11ga", 31
}

// ── Sign frames ──────────────────────────────────────────────────

type signFrame struct{}

func (signFrame) cutList() aiProfile { return defaultAIProfile }

func (signFrame) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobSignFrame)

	kind := text(f, "sign_type", "Post-mount sign frame (street/parking lot)")
	width, height := signDims(text(f, "sign_dimensions", "4 ft x 3 ft"), 48, 36, true)
	frame := "sq_tube_1.5x1.5_11ga"
	if strings.Contains(lower(f, "material", "Mild steel"), "aluminum") {
		frame = "sq_tube_1.5x1.5_14ga"
	}

	t.linear(fmt.Sprintf("Sign frame: %s (%.0f\" x %.0f\" perimeter)", frame, width, height),
		"square_tubing", frame, Perimeter(width, height), "miter_45", WasteTube)
	t.weld += 4 * 3

	cross := 1
	if width > 48 {
		cross = 2
	}
	t.pieces(fmt.Sprintf("Frame cross members: %s x %d", frame, cross), "square_tubing", frame, height, cross, "square", 0)
	t.weld += float64(cross*2) * 3

	k := strings.ToLower(kind)
	switch {
	case strings.Contains(k, "post"):
		postIn := feet(f, "height_above_grade", 8)*12 + 36
		posts := cross
		t.pieces(fmt.Sprintf("Sign post: pipe_3_sch40 x %d (%.1f ft each, includes embed)", posts, postIn/12),
			"mild_steel", "pipe_3_sch40", postIn, posts, "square", 0)
		t.weld += float64(posts) * height * 0.2
	case containsAny(k, "wall", "bracket", "hanging"):
		n := 2
		if width > 48 {
			n = 3
		}
		t.pieces(fmt.Sprintf("Wall mount brackets: flat_bar_1.5x0.25 x %d (18\" projection)", n),
			"flat_bar", "flat_bar_1.5x0.25", 18, n, "square", 0)
	case strings.Contains(k, "monument"):
		baseW := width + 12
		t.linear(fmt.Sprintf("Monument base frame: sq_tube_2x2_11ga (%.0f\" x 12\")", baseW),
			"square_tubing", "sq_tube_2x2_11ga", Perimeter(baseW, 12), "miter_45", WasteTube)
	}

	t.sqft = SqFt(width, height)
	name := kind
	if i := strings.Index(name, "("); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	t.note("Sign frame: %.0f\" x %.0f\", %s.", width, height, name)
	t.note("Sign panel material NOT included; frame and mounting structure only.")
	return t.list()
}

// signDims parses "W x H" sign dimensions in inches. With single set, one
// value gives a 4:3 panel.
func signDims(s string, defW, defH float64, single bool) (w, h float64) {
	vals, ok := dims(s)
	switch {
	case !ok:
		return defW, defH
	case len(vals) >= 2:
		return max(vals[0], 6), max(vals[1], 6)
	case single:
		return max(vals[0], 6), max(vals[0]*0.75, 6)
	}
	return defW, defH
}

// ── Illuminated signs ────────────────────────────────────────────

type ledSign struct{}

func (ledSign) cutList() aiProfile { return defaultAIProfile }

func (ledSign) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobLEDSignCustom)

	kind := lower(f, "sign_type", "Channel letters (individual 3D letters)")
	width, height := signDims(text(f, "dimensions", "8 ft x 2 ft"), 96, 24, false)
	letterH := 18.0
	if n, ok := firstNumber(text(f, "letter_height", "18")); ok {
		letterH = max(n, 4)
	}
	letters := atLeastOne(count(f, "letter_count", 8))
	material := lower(f, "material", "Aluminum (standard for sign fabrication)")
	aluminum := strings.Contains(material, "aluminum")
	stainless := strings.Contains(material, "stainless")

	sheetPrice := cat.PricePerSqFt("sheet_16ga")
	sheetMaterial, sheetLabel := "plate", "steel"
	switch {
	case aluminum:
		sheetPrice *= 1.5
		sheetMaterial, sheetLabel = "aluminum_6061", "aluminum"
	case stainless:
		sheetPrice *= 3
		sheetMaterial, sheetLabel = "stainless_304", "stainless"
	}
	skin := func(desc string, lengthIn, sqft float64) {
		n := max(int(math.Ceil(sqft/SheetSqFt-1e-9)), 1)
		t.add(domain.MaterialItem{
			Description:  desc,
			MaterialType: sheetMaterial,
			Profile:      "sheet_16ga",
			LengthInches: lengthIn,
			Quantity:     n,
			UnitPrice:    sqft * sheetPrice / float64(n),
			CutType:      "square",
			WasteFactor:  WasteSheet,
		})
		t.weight += sqft * 1.5
	}

	switch {
	case containsAny(kind, "channel", "halo"):
		const returnDepth = 5.0
		letterW := letterH * 0.6
		perim := Perimeter(letterH, letterW)
		ret, retMaterial := "flat_bar_1x0.25", "flat_bar"
		if aluminum {
			ret, retMaterial = "flat_bar_1x0.1875", "aluminum_6061"
		}
		t.pieces(fmt.Sprintf("Channel letter returns: %s x %d letters (%.0f\" avg perimeter)", ret, letters, perim),
			retMaterial, ret, perim, letters, "square", WasteFlat)
		faceSqFt := letterH * letterW * float64(letters) / 144 * 2
		skin(fmt.Sprintf("Letter faces + backs: %s sheet_16ga (%.1f sq ft total)", sheetLabel, faceSqFt), letterH, faceSqFt)
		t.weld = perim * float64(letters) * 0.3
		t.sqft = faceSqFt
		t.note("%d channel letters at %.0f\" height, %.0f\" deep returns. LED modules and power supplies NOT included.", letters, letterH, returnDepth)
	case containsAny(kind, "cabinet", "box"):
		const depth = 6.0
		front := SqFt(width, height)
		sheetSqFt := SqFt(depth, height)*2 + SqFt(width, depth)*2 + front
		skin(fmt.Sprintf("Cabinet box: sheet_16ga (%.0f\" x %.0f\" x %.0f\" deep)", width, height, depth), width, sheetSqFt)
		frameIn := Perimeter(width, height) * 2
		t.linear("Internal frame: 1-1/2\" angle (front + back perimeter)", "angle_iron", "angle_1.5x1.5x0.125", frameIn, "miter_45", WasteTube)
		t.weld = frameIn * 0.2
		t.sqft = sheetSqFt + front
		t.note("Cabinet sign: %.0f\" x %.0f\" x %.0f\" deep. Front face panel (acrylic/polycarbonate) and LED modules NOT included.", width, height, depth)
	default:
		t.linear(fmt.Sprintf("Sign frame: sq_tube_1.5x1.5_11ga (%.0f\" x %.0f\")", width, height),
			"square_tubing", "sq_tube_1.5x1.5_11ga", Perimeter(width, height)+height, "miter_45", WasteTube)
		t.weld = 4 * 3
		t.sqft = SqFt(width, height)
		t.note("Custom LED sign frame: %.0f\" x %.0f\".", width, height)
	}

	if containsAny(lower(f, "mounting_location", ""), "raceway", "facade") {
		t.pieces(fmt.Sprintf("Mounting raceway: sq_tube_2x2_11ga (%.1f ft)", (width+12)/12),
			"square_tubing", "sq_tube_2x2_11ga", width+12, 1, "square", 0)
	}
	if yes(f, "include_led_kit", "No") {
		t.addHardware("LED module + power supply kit", "led_module_kit", 1)
	} else {
		t.note("LED modules, power supplies, and wiring NOT included in material estimate.")
	}
	return t.list()
}

// ── FireTable product ────────────────────────────────────────────

//go:embed firetable_bom.yaml
var firetableBOMYAML []byte

type bomLine struct {
	Desc      string  `yaml:"desc"`
	Material  string  `yaml:"material"`
	Qty       int     `yaml:"qty"`
	UnitPrice float64 `yaml:"unit_price"`
}

type productBOM struct {
	Product   string    `yaml:"product"`
	Supplier  string    `yaml:"supplier"`
	Materials []bomLine `yaml:"materials"`
	Totals    struct {
		WeightLbs float64 `yaml:"weight_lbs"`
	} `yaml:"totals"`
	Retail map[string]float64 `yaml:"retail_prices"`
}

// firetableBOM is nil when the embedded bill of materials does not parse;
// the strategy then estimates from standard figures.
var firetableBOM = func() *productBOM {
	var b productBOM
	if err := yaml.Unmarshal(firetableBOMYAML, &b); err != nil || len(b.Materials) == 0 {
		return nil
	}
	return &b
}()

type firetable struct{}

func (firetable) cutList() aiProfile { return defaultAIProfile }

func (firetable) Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList {
	t := newTakeoff(cat, domain.JobProductFiretable)

	config := lower(f, "configuration", "FireTable Pro System (base + basin + stand)")
	qty := atLeastOne(count(f, "quantity", 1))
	custom := strings.Contains(config, "custom")
	baseOnly := strings.Contains(config, "base only")

	if firetableBOM != nil && !custom {
		for _, m := range firetableBOM.Materials {
			if baseOnly && strings.Contains(strings.ToLower(m.Desc), "grill") {
				continue
			}
			t.add(domain.MaterialItem{
				Description:  m.Desc,
				MaterialType: m.Material,
				Profile:      "firetable_bom",
				Quantity:     max(m.Qty, 1) * qty,
				UnitPrice:    m.UnitPrice,
				CutType:      "square",
			})
		}
		t.weight = firetableBOM.Totals.WeightLbs * float64(qty)
		t.note("%s BOM loaded from supplier quote (%s). Prices are actual supplier quotes.", firetableBOM.Product, firetableBOM.Supplier)
		if qty > 1 {
			t.note("Quantity: %d units. Material costs scale linearly.", qty)
		}
	} else {
		t.add(domain.MaterialItem{
			Description:  "304 stainless sheet 11ga (basin + panels)",
			MaterialType: "stainless_304",
			Profile:      "ss_304_sheet",
			LengthInches: 96,
			Quantity:     qty,
			UnitPrice:    464.40,
			CutType:      "square",
		})
		t.weight += 80 * float64(qty)
		const frame = "sq_tube_1.5x1.5_14ga"
		t.add(domain.MaterialItem{
			Description:  "Frame tubing: 1-1/2\" sq tube 14ga (stand + supports)",
			MaterialType: "square_tubing",
			Profile:      frame,
			LengthInches: 240,
			Quantity:     qty,
			UnitPrice:    20 * cat.PricePerFoot(frame),
			CutType:      "miter_45",
		})
		t.weight += cat.WeightLbs(frame, 20) * float64(qty)
		t.add(domain.MaterialItem{
			Description:  "HR plate 3/4\" x 24\" x 34\" (basin base)",
			MaterialType: "plate",
			Profile:      "plate_0.75",
			LengthInches: 34,
			Quantity:     qty,
			UnitPrice:    212.41,
			CutType:      "square",
		})
		t.weight += cat.PlateWeightLbs(34, 24, 0.75, "mild_steel") * float64(qty)
		t.note("Custom FireTable: estimated from standard Pro BOM with adjustments.")
	}

	retail := func(key string, def float64) float64 {
		if firetableBOM != nil {
			if p, ok := firetableBOM.Retail[key]; ok {
				return p
			}
		}
		return def
	}
	for _, acc := range list(f, "accessories", "") {
		a := strings.ToLower(acc)
		var desc string
		var price float64
		lead := 5
		switch {
		case strings.Contains(a, "caster"):
			desc, price = "Locking Casters (set of 4)", retail("Locking Casters", 100)
		case strings.Contains(a, "hanger"):
			desc, price = "Hanger Bracket", retail("Hanger Bracket", 75)
		case strings.Contains(a, "suspension"):
			desc, price, lead = "FireTable Suspension System", retail("FireTable Suspension System_from", 1045), 10
		case strings.Contains(a, "burner"):
			t.addHardware("Burner ring kit", "burner_ring_kit", qty)
			continue
		default:
			continue
		}
		t.hardware = append(t.hardware, domain.HardwareItem{
			Description: desc,
			Quantity:    qty,
			Options:     []domain.PricingOption{{Supplier: "Direct", Price: price, LeadDays: lead}},
		})
	}

	t.sqft = 20 * float64(qty)
	t.weld = 120 * float64(qty)
	t.note("Fuel system (burner, gas connections, ignition) NOT included; sourced separately.")
	return t.list()
}
