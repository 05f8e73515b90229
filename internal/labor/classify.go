package labor

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Simplici0/fabquote/internal/domain"
)

// Class is how a piece is handled at the bench.
type Class int

const (
	// Structural pieces carry load and are welded around their full
	// cross-section.
	Structural Class = iota
	// Precision pieces are placed to a pattern and welded with short
	// stitches.
	Precision
)

func (c Class) String() string {
	if c == Precision {
		return "B"
	}
	return "A"
}

// decorativeTerms mark an item as precision placement by description.
var decorativeTerms = []string{
	"decorative", "ornament", "scroll", "picket", "baluster", "spindle",
	"finial", "rosette", "collar", "basket", "twist", "medallion", "accent",
	"infill", "pattern", "lattice", "filigree",
}

var precisionGroups = map[string]bool{
	"infill":     true,
	"decorative": true,
	"pattern":    true,
}

// perimeters are cross-section perimeters in inches, matched by profile
// prefix so gauge suffixes are ignored.
var perimeters = []struct {
	prefix string
	inches float64
}{
	{"sq_tube_1x1", 4.0},
	{"sq_tube_1.5x1.5", 6.0},
	{"sq_tube_2x2", 8.0},
	{"sq_tube_3x3", 12.0},
	{"sq_tube_4x4", 16.0},
	{"rect_tube_2x3", 10.0},
	{"rect_tube_2x4", 12.0},
	{"round_tube_1.5", 4.7},
	{"round_tube_2", 6.3},
	{"dom_tube_1.75", 5.5},
	{"pipe_3", 11.0},
	{"pipe_4", 14.1},
	{"pipe_6", 20.4},
	{"channel_4", 8.0},
	{"channel_6", 12.0},
	{"angle_1.5x1.5", 6.0},
	{"angle_2x2", 8.0},
	{"angle_3x3", 12.0},
	{"sq_bar_0.5", 2.0},
	{"sq_bar_0.625", 2.5},
	{"sq_bar_0.75", 3.0},
	{"round_bar_0.5", 1.6},
	{"round_bar_0.625", 2.0},
	{"sheet", 4.0},
	{"plate", 4.0},
}

const defaultPerimeter = 6.0

// Perimeter is the cross-section perimeter of profile in inches.
func Perimeter(profile string) float64 {
	p := strings.ToLower(profile)
	best, bestLen := defaultPerimeter, 0
	for _, e := range perimeters {
		if strings.HasPrefix(p, e.prefix) && len(e.prefix) > bestLen {
			best, bestLen = e.inches, len(e.prefix)
		}
	}
	return best
}

func isFlatStock(profile string) bool {
	return strings.Contains(strings.ToLower(profile), "flat_bar")
}

// ClassOf places item into exactly one class. Flat stock is checked
// first, then the item group, then the description.
func ClassOf(item domain.MaterialItem) Class {
	if isFlatStock(item.Profile) {
		return Precision
	}
	if precisionGroups[strings.ToLower(item.Group)] {
		return Precision
	}
	desc := strings.ToLower(item.Description)
	for _, term := range decorativeTerms {
		if strings.Contains(desc, term) {
			return Precision
		}
	}
	return Structural
}

// Classification is the piece analysis of a material list.
type Classification struct {
	TypeA int `json:"type_a_count"`
	TypeB int `json:"type_b_count"`
	// WeldInches is the Type A weld length: perimeter x 0.75 coverage x 2
	// joints per piece.
	WeldInches float64 `json:"weld_inches"`
	JointsA    int     `json:"joints_a"`
	JointsB    int     `json:"joints_b"`
	SimpleCuts int     `json:"simple_cuts"`
	MiterCuts  int     `json:"miter_cuts"`
	CopeCuts   int     `json:"cope_cuts"`
	ThinGauge  bool    `json:"thin_gauge"`
}

// Pieces is the total piece count.
func (c Classification) Pieces() int { return c.TypeA + c.TypeB }

// Joints is the total joint count, two per piece.
func (c Classification) Joints() int { return c.JointsA + c.JointsB }

// Classify walks items. Concrete and other non-steel lines are skipped.
func Classify(items []domain.MaterialItem) Classification {
	var c Classification
	for _, it := range items {
		if !weldable(it) {
			continue
		}
		qty := max(it.Quantity, 1)
		switch strings.ToLower(it.CutType) {
		case "cope", "notch":
			c.CopeCuts += qty
		case "miter_45", "miter_22.5", "compound":
			c.MiterCuts += qty
		default:
			c.SimpleCuts += qty
		}
		if thinGauge(it.Profile) {
			c.ThinGauge = true
		}
		if ClassOf(it) == Precision {
			c.TypeB += qty
			c.JointsB += qty * 2
			continue
		}
		c.TypeA += qty
		c.JointsA += qty * 2
		c.WeldInches += Perimeter(it.Profile) * 0.75 * 2 * float64(qty)
	}
	return c
}

func weldable(it domain.MaterialItem) bool {
	switch strings.ToLower(it.MaterialType) {
	case "concrete", "hardware", "consumable", "wood", "glass":
		return false
	}
	return !strings.HasPrefix(it.Profile, "concrete")
}

var gaugeRe = regexp.MustCompile(`(\d+)ga\b`)

// thinGauge reports 16 gauge or thinner.
func thinGauge(profile string) bool {
	m := gaugeRe.FindStringSubmatch(strings.ToLower(profile))
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	return err == nil && n >= 16
}

// ── Shop conditions ──────────────────────────────────────────────

// Conditions are the job-wide facts that change shop time.
type Conditions struct {
	Finish    string
	Stainless bool
	TIG       bool
	MillScale bool
}

var tigKeywords = []string{
	"ground smooth", "blended", "furniture finish", "show quality",
	"visible welds", "glass top", "grind flush", "grind smooth",
	"seamless", "showroom", "polished", "mirror finish", "brushed finish",
}

var tigWord = regexp.MustCompile(`\btig\b`)

var bareMetalKeywords = []string{
	"clear_coat", "clear coat", "clearcoat", "raw", "waxed", "brushed", "patina",
}

var coatingKeywords = []string{
	"powder_coat", "powder coat", "powdercoat", "paint", "galvaniz",
}

// ConditionsFor reads finish, material and weld process from the answers
// and items.
func ConditionsFor(items []domain.MaterialItem, f domain.Fields) Conditions {
	finish := strings.ToLower(fieldText(f, "finish", "raw"))
	all := strings.ToLower(allText(f))

	c := Conditions{Finish: finish}
	c.Stainless = containsAny(all, "stainless", "304l", "316l", "ss304", "ss316")
	for _, it := range items {
		if strings.EqualFold(it.WeldProcess, "tig") {
			c.TIG = true
		}
		if strings.Contains(strings.ToLower(it.MaterialType+" "+it.Profile), "stainless") {
			c.Stainless = true
		}
	}
	if c.Stainless || tigWord.MatchString(all) || containsAny(all, tigKeywords...) {
		c.TIG = true
	}
	c.MillScale = !containsAny(finish, coatingKeywords...) && containsAny(finish, bareMetalKeywords...)
	return c
}

// ── Hours ────────────────────────────────────────────────────────

// Penalties added on top of the linear rules.
const (
	stainlessCutHours  = 0.5
	stainlessWeldHours = 1.0
	thinGaugeWeldHours = 0.5
	millScaleMinutes   = 90
)

// Guardrail limits.
const maxWeldHours = 40.0

// Shop is the deterministic hour breakdown for the eight shop processes.
type Shop struct {
	LayoutSetup     float64 `json:"layout_setup"`
	CutPrep         float64 `json:"cut_prep"`
	FitTack         float64 `json:"fit_tack"`
	FullWeld        float64 `json:"full_weld"`
	GrindClean      float64 `json:"grind_clean"`
	FinishPrep      float64 `json:"finish_prep"`
	Coating         float64 `json:"coating_application"`
	FinalInspection float64 `json:"final_inspection"`

	Classification Classification `json:"classification"`
	Reasoning      []string       `json:"reasoning"`
	Flagged        bool           `json:"flagged"`
	FlagReason     string         `json:"flag_reason,omitempty"`
}

// Total sums the eight processes.
func (s Shop) Total() float64 {
	return domain.Round(s.LayoutSetup+s.CutPrep+s.FitTack+s.FullWeld+s.GrindClean+s.FinishPrep+s.Coating+s.FinalInspection, 2)
}

func (s *Shop) flag(reason string) {
	s.Flagged = true
	if s.FlagReason == "" {
		s.FlagReason = reason
		return
	}
	s.FlagReason += "; " + reason
}

// emptyShop is returned for a list with no weldable pieces.
func emptyShop() Shop {
	return Shop{
		LayoutSetup:     1.5,
		CutPrep:         1.0,
		FitTack:         1.0,
		FullWeld:        1.0,
		GrindClean:      0.5,
		FinishPrep:      1.0,
		Coating:         0,
		FinalInspection: 0.5,
		Reasoning:       []string{"No cut pieces: using minimum shop defaults."},
	}
}

// ShopHours computes the eight shop processes from items and answers. It
// makes no external calls and returns the same result for the same input.
func ShopHours(items []domain.MaterialItem, f domain.Fields) Shop {
	cls := Classify(items)
	if cls.Pieces() == 0 {
		return emptyShop()
	}
	cond := ConditionsFor(items, f)

	s := Shop{Classification: cls}
	why := func(format string, args ...any) {
		s.Reasoning = append(s.Reasoning, fmt.Sprintf(format, args...))
	}
	pieces := cls.Pieces()
	why("%d pieces: %d Type A (structural), %d Type B (precision placement).", pieces, cls.TypeA, cls.TypeB)

	extra := max(0, pieces-10)
	s.LayoutSetup = 1.5 + float64(extra)/10*0.5
	why("Layout: 1.5 h base + 0.5 h per 10 pieces over 10 = %.2f h.", s.LayoutSetup)

	cutMin := cls.SimpleCuts*3 + cls.MiterCuts*5 + cls.CopeCuts*15 + pieces*4
	s.CutPrep = max(1.0, float64(cutMin)/60)
	why("Cut: %d square x 3 min + %d miter x 5 min + %d cope x 15 min + %d pieces x 4 min deburr and mark = %d min.",
		cls.SimpleCuts, cls.MiterCuts, cls.CopeCuts, pieces, cutMin)
	if cond.Stainless {
		s.CutPrep += stainlessCutHours
		why("Stainless: +%.1f h cut for slower blade speed and dedicated tooling.", stainlessCutHours)
	}

	fitMin := cls.SimpleCuts*4 + (cls.MiterCuts+cls.CopeCuts)*8
	s.FitTack = max(1.0, float64(fitMin)/60)
	why("Fit and tack: %d simple x 4 min + %d miter/cope x 8 min = %d min.", cls.SimpleCuts, cls.MiterCuts+cls.CopeCuts, fitMin)

	speed, process := 10.0, "MIG"
	if cond.TIG {
		speed, process = 4.0, "TIG"
	}
	typeAMin := cls.WeldInches / speed * 1.25
	typeBMin := float64(cls.TypeB) * 5
	s.FullWeld = max(0.5, (typeAMin+typeBMin)/60)
	why("Weld (%s at %.0f in/min): Type A %.1f in -> %.1f min with 25%% repositioning; Type B %d x 5 min = %.0f min.",
		process, speed, cls.WeldInches, typeAMin, cls.TypeB, typeBMin)
	if cond.Stainless {
		s.FullWeld += stainlessWeldHours
		why("Stainless: +%.1f h weld for back-purge and heat control.", stainlessWeldHours)
	}
	if cls.ThinGauge {
		s.FullWeld += thinGaugeWeldHours
		why("Thin gauge: +%.1f h weld for stitch sequencing against distortion.", thinGaugeWeldHours)
	}

	perJointA := 5
	if cond.TIG {
		perJointA = 3
	}
	grindMin := cls.JointsA*perJointA + cls.JointsB*3 + 30
	why("Grind: %d Type A joints x %d min + %d Type B joints x 3 min + 30 min wire brush.", cls.JointsA, perJointA, cls.JointsB)
	if cond.MillScale {
		grindMin += millScaleMinutes
		why("Bare-metal finish: +%d min mill scale removal.", millScaleMinutes)
	}
	s.GrindClean = max(0.5, float64(grindMin)/60)

	switch fin := cond.Finish; {
	case containsAny(fin, "clear", "brushed", "patina", "wax"):
		s.FinishPrep = 1.5
	case strings.Contains(fin, "galv"):
		s.FinishPrep = 0.5
	default:
		s.FinishPrep = 1.0
	}
	switch fin := cond.Finish; {
	case strings.Contains(fin, "clear"):
		s.Coating = 1.0
	case strings.Contains(fin, "paint") && !strings.Contains(fin, "powder"):
		s.Coating = 1.5
	}
	why("Finish %q: prep %.1f h, in-house coating %.1f h.", cond.Finish, s.FinishPrep, s.Coating)

	s.FinalInspection = 0.5

	s.LayoutSetup = domain.Round(s.LayoutSetup, 2)
	s.CutPrep = domain.Round(s.CutPrep, 2)
	s.FitTack = domain.Round(s.FitTack, 2)
	s.FullWeld = domain.Round(s.FullWeld, 2)
	s.GrindClean = domain.Round(s.GrindClean, 2)

	if s.FullWeld > maxWeldHours {
		s.flag(fmt.Sprintf("weld time %.1f h exceeds %.0f h; check piece counts", s.FullWeld, maxWeldHours))
	}
	if s.GrindClean > s.FullWeld {
		s.flag(fmt.Sprintf("grind time %.1f h exceeds weld time %.1f h", s.GrindClean, s.FullWeld))
	}
	return s
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func fieldText(f domain.Fields, key, def string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return def
	}
	return s
}

// allText joins every answer value, in key order, for keyword checks.
func allText(f domain.Fields) string {
	keys := slices.Sorted(maps.Keys(f))
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fmt.Sprint(f[k]))
		b.WriteByte(' ')
	}
	return b.String()
}
