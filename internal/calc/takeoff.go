package calc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// Waste fractions by material class.
const (
	WasteTube     = 0.05
	WasteFlat     = 0.10
	WasteSheet    = 0.15
	WasteHardware = 0.00
)

// StockLengthFt is the standard stick length for tube and bar.
const StockLengthFt = 20.0

// SheetSqFt is one 4x8 sheet.
const SheetSqFt = 32.0

const priceNote = "Material prices based on market averages. Update with supplier quotes for accuracy."

// ApplyWaste returns the purchased quantity for a raw quantity q: q grown
// by w and rounded up to the next whole unit.
func ApplyWaste(q, w float64) int {
	return domain.PurchaseQuantity(q, w)
}

// StickCount is the number of stock lengths needed for totalFt.
func StickCount(totalFt float64) int {
	return int(math.Ceil(totalFt/StockLengthFt - 1e-9))
}

// SqFt converts a width and height in inches to square feet.
func SqFt(widthIn, heightIn float64) float64 {
	return widthIn * heightIn / 144.0
}

// Perimeter is the frame perimeter in inches.
func Perimeter(widthIn, heightIn float64) float64 {
	return 2 * (widthIn + heightIn)
}

// takeoff accumulates one material list.
type takeoff struct {
	cat         *catalog.Catalog
	job         domain.JobType
	items       []domain.MaterialItem
	hardware    []domain.HardwareItem
	weight      float64
	sqft        float64
	weld        float64
	assumptions []string
}

func newTakeoff(cat *catalog.Catalog, job domain.JobType, notes ...string) *takeoff {
	return &takeoff{cat: cat, job: job, assumptions: append([]string{priceNote}, notes...)}
}

func (t *takeoff) add(item domain.MaterialItem) {
	t.items = append(t.items, domain.NewMaterialItem(item))
}

// addHardware appends a catalog hardware line. Zero quantities are skipped.
func (t *takeoff) addHardware(description, key string, qty int) {
	if qty <= 0 {
		return
	}
	t.hardware = append(t.hardware, domain.HardwareItem{
		Description: description,
		Quantity:    qty,
		Options:     t.cat.Hardware(key),
	})
}

func (t *takeoff) note(format string, args ...any) {
	t.assumptions = append(t.assumptions, fmt.Sprintf(format, args...))
}

// linear adds a run of stock sold by the stick: totalIn of profile,
// priced per stick. Waste is bought in whole sticks on top of the run.
func (t *takeoff) linear(description, materialType, profile string, totalIn float64, cut string, waste float64) {
	totalIn = max(totalIn, 0)
	ft := totalIn / 12
	sticks := max(StickCount(ft), 1)
	t.add(domain.MaterialItem{
		Description:  description,
		MaterialType: materialType,
		Profile:      profile,
		LengthInches: totalIn,
		Quantity:     sticks,
		UnitPrice:    ft * t.cat.PricePerFoot(profile) / float64(sticks),
		CutType:      cut,
		WasteFactor:  waste,
	})
	t.weight += t.cat.WeightLbs(profile, ft)
}

// pieces adds count cut pieces of lengthIn each, grown by waste.
func (t *takeoff) pieces(description, materialType, profile string, lengthIn float64, count int, cut string, waste float64) {
	if count <= 0 {
		return
	}
	lengthIn = max(lengthIn, 0)
	ft := lengthIn / 12
	t.add(domain.MaterialItem{
		Description:  description,
		MaterialType: materialType,
		Profile:      profile,
		LengthInches: lengthIn,
		Quantity:     count,
		UnitPrice:    ft * t.cat.PricePerFoot(profile),
		CutType:      cut,
		WasteFactor:  waste,
	})
	t.weight += t.cat.WeightLbs(profile, ft*float64(count))
}

// sheets adds sheet stock covering areaSqFt, bought in 4x8 sheets.
func (t *takeoff) sheets(description, profile string, widthIn, areaSqFt, thicknessIn float64) {
	areaSqFt = max(areaSqFt, 0)
	n := max(int(math.Ceil(areaSqFt/SheetSqFt-1e-9)), 1)
	t.add(domain.MaterialItem{
		Description:  description,
		MaterialType: "plate",
		Profile:      profile,
		LengthInches: widthIn,
		Quantity:     n,
		UnitPrice:    SheetSqFt * t.cat.PricePerSqFt(profile),
		CutType:      "square",
		WasteFactor:  WasteSheet,
	})
	t.weight += areaSqFt * 144 * thicknessIn * catalog.MildSteelDensity
}

// plate adds count cut plates priced at $0.50/lb.
func (t *takeoff) plate(description string, lengthIn, widthIn, thicknessIn float64, count int) {
	if count <= 0 {
		return
	}
	lengthIn, widthIn = max(lengthIn, 0), max(widthIn, 0)
	each := t.cat.PlateWeightLbs(lengthIn, widthIn, thicknessIn, "mild_steel")
	t.add(domain.MaterialItem{
		Description:  description,
		MaterialType: "plate",
		Profile:      fmt.Sprintf("plate_%s", trimFloat(thicknessIn)),
		LengthInches: lengthIn,
		Quantity:     count,
		UnitPrice:    each * platePricePerLb,
		CutType:      "square",
		WasteFactor:  WasteSheet,
	})
	t.weight += each * float64(count)
}

// concrete adds footing concrete for n round holes.
func (t *takeoff) concrete(n int, holeDiaIn, depthIn float64) {
	if n <= 0 || depthIn <= 0 {
		return
	}
	cuyd := catalog.ConcreteCubicYards(n, holeDiaIn, depthIn)
	price, _ := t.cat.UnitPrice("concrete_per_cuyd")
	t.add(domain.MaterialItem{
		Description:  fmt.Sprintf("Post concrete: %d holes x %.0f\" dia x %.0f\" deep (%.2f cu yd)", n, holeDiaIn, depthIn, cuyd),
		MaterialType: "concrete",
		Profile:      "concrete_footing",
		LengthInches: depthIn,
		Quantity:     n,
		UnitPrice:    cuyd * price / float64(n),
		CutType:      "n/a",
	})
	t.note("Post concrete: %.2f cu yd based on %d holes x %.0f\" diameter x %.0f\" deep.", cuyd, n, holeDiaIn, depthIn)
}

func (t *takeoff) list() domain.MaterialList {
	items := t.items
	if items == nil {
		items = []domain.MaterialItem{}
	}
	hw := t.hardware
	if hw == nil {
		hw = []domain.HardwareItem{}
	}
	return domain.MaterialList{
		JobType:          t.job,
		Items:            items,
		Hardware:         hw,
		TotalWeightLbs:   domain.Round(max(t.weight, 0), 1),
		TotalSqFt:        domain.Round(max(t.sqft, 0), 1),
		WeldLinearInches: domain.Round(max(t.weld, 0), 1),
		Assumptions:      t.assumptions,
	}
}

const platePricePerLb = 0.50

// ── Field parsing ────────────────────────────────────────────────

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// text returns the answer for key as a string, or def when it is absent or
// blank. List answers are joined with ", ".
func text(f domain.Fields, key, def string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return def
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			parts = append(parts, fmt.Sprint(p))
		}
		s = strings.Join(parts, ", ")
	case []string:
		s = strings.Join(x, ", ")
	case float64:
		s = trimFloat(x)
	case bool:
		if x {
			s = "Yes"
		} else {
			s = "No"
		}
	default:
		s = fmt.Sprint(x)
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// lower is text lowercased.
func lower(f domain.Fields, key, def string) string {
	return strings.ToLower(text(f, key, def))
}

// list returns a multi-choice answer as its parts.
func list(f domain.Fields, key, def string) []string {
	switch x := f[key].(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, p := range x {
			out = append(out, fmt.Sprint(p))
		}
		if len(out) > 0 {
			return out
		}
	case []string:
		if len(x) > 0 {
			return x
		}
	}
	return []string{text(f, key, def)}
}

// maxFieldValue bounds any parsed dimension or count. Larger answers are
// treated as unanswered.
const maxFieldValue = 100_000

// usable reports whether a parsed answer can feed geometry: finite, not
// negative and within maxFieldValue.
func usable(n float64) bool {
	return !math.IsNaN(n) && n >= 0 && n <= maxFieldValue
}

// firstNumber extracts the leading number from v. Negative, non-finite and
// out-of-range values are rejected so callers fall back to their defaults.
func firstNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case nil:
		return 0, false
	default:
		m := numberRe.FindString(fmt.Sprint(v))
		if m == "" {
			return 0, false
		}
		var err error
		if n, err = strconv.ParseFloat(m, 64); err != nil {
			return 0, false
		}
	}
	if !usable(n) {
		return 0, false
	}
	return n, true
}

func hasInchMark(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "\"") || strings.Contains(s, "in")
}

func hasFootMark(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "'") || strings.Contains(s, "ft") || strings.Contains(s, "feet") || strings.Contains(s, "foot")
}

// feet reads a length in feet. "10", "10'" and "10 ft" all mean ten feet;
// a value marked in inches is converted.
func feet(f domain.Fields, key string, def float64) float64 {
	v, ok := f[key]
	if !ok {
		return def
	}
	n, ok := firstNumber(v)
	if !ok {
		return def
	}
	if s, isStr := v.(string); isStr && hasInchMark(s) && !hasFootMark(s) {
		return n / 12
	}
	return n
}

// inches reads a length in inches, converting values marked in feet.
func inches(f domain.Fields, key string, def float64) float64 {
	v, ok := f[key]
	if !ok {
		return def
	}
	n, ok := firstNumber(v)
	if !ok {
		return def
	}
	if s, isStr := v.(string); isStr && hasFootMark(s) {
		return n * 12
	}
	return n
}

// count reads a whole number, truncating any fraction.
func count(f domain.Fields, key string, def int) int {
	n, ok := firstNumber(f[key])
	if !ok {
		return def
	}
	return int(n)
}

// number reads a plain number.
func number(f domain.Fields, key string, def float64) float64 {
	n, ok := firstNumber(f[key])
	if !ok {
		return def
	}
	return n
}

// atLeastOne floors a quantity at one.
func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// yes reports whether an answer reads as affirmative.
func yes(f domain.Fields, key, def string) bool {
	return strings.Contains(lower(f, key, def), "yes")
}

// dims parses free text such as `20 x 20 x 32` or `6' x 3'` into up to
// three values in inches. ok is false when no number was found.
func dims(s string) (vals []float64, ok bool) {
	for _, m := range numberRe.FindAllString(s, 3) {
		n, err := strconv.ParseFloat(m, 64)
		if err == nil && usable(math.Abs(n)) {
			vals = append(vals, math.Abs(n))
		}
	}
	if len(vals) == 0 {
		return nil, false
	}
	if hasFootMark(s) {
		for i := range vals {
			vals[i] *= 12
		}
	}
	return vals, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
