package calc

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/llm"
)

// Cut is one validated line of an AI-generated cut list.
type Cut struct {
	Description  string
	PieceName    string
	Group        string
	MaterialType string
	Profile      string
	LengthInches float64
	Quantity     int
	CutType      string
	CutAngle     float64
	WeldProcess  string
	WeldType     string
	Notes        string
}

var (
	validCutTypes      = []string{"square", "miter_45", "miter_22.5", "cope", "notch", "compound"}
	validWeldProcesses = []string{"mig", "tig", "stick", "none"}
	validWeldTypes     = []string{"butt", "fillet", "lap", "plug", "tack_only", "full_penetration", "skip", "none"}
)

// descriptionWordThreshold is the word count a description must exceed
// before a templated calculator asks for a bespoke cut list.
const descriptionWordThreshold = 10

// hasDescription reports whether description, notes and photo observations
// together run past the word threshold.
func hasDescription(f domain.Fields) bool {
	combined := text(f, "description", "") + " " + text(f, "notes", "") + " " + text(f, "photo_observations", "")
	return len(strings.Fields(combined)) > descriptionWordThreshold
}

// hasAnyText reports whether there is any description or notes at all.
func hasAnyText(f domain.Fields) bool {
	return strings.TrimSpace(text(f, "description", "")+" "+text(f, "notes", "")) != ""
}

// aiProfile tunes how a strategy's AI cut list becomes a material list.
type aiProfile struct {
	// anyText tries the AI path whenever description or notes exist.
	anyText        bool
	defaultProfile string
	priceFallback  float64
	weightPerFt    float64
	weldPerPiece   float64
	note           string
	// area overrides the finish area; nil means half a square foot per
	// linear foot of cut stock.
	area func(f domain.Fields, cuts []Cut) float64
}

var defaultAIProfile = aiProfile{
	defaultProfile: "sq_tube_1.5x1.5_11ga",
	priceFallback:  catalog.MarketPricePerFoot,
	weightPerFt:    catalog.DefaultWeightPerFt,
	weldPerPiece:   6,
	note:           "Cut list generated by AI from project description.",
}

func (p aiProfile) wants(f domain.Fields) bool {
	if p.anyText {
		return hasAnyText(f)
	}
	return hasDescription(f)
}

// parseCuts validates a cut-list reply item by item. Missing or malformed
// fields are defaulted; an empty result is an error.
func parseCuts(reply, defaultProfile string) ([]Cut, error) {
	raw, err := llm.DecodeArray(reply)
	if err != nil {
		return nil, err
	}
	cuts := make([]Cut, 0, len(raw))
	for _, item := range raw {
		cut := Cut{
			Description:  str(item, "description", "Cut piece"),
			PieceName:    str(item, "piece_name", ""),
			Group:        str(item, "group", "general"),
			MaterialType: str(item, "material_type", "mild_steel"),
			Profile:      str(item, "profile", defaultProfile),
			LengthInches: num(item, "length_inches", 12),
			Quantity:     int(num(item, "quantity", 1)),
			CutType:      normalizeCutType(str(item, "cut_type", "square")),
			CutAngle:     num(item, "cut_angle", 90),
			WeldProcess:  oneOf(str(item, "weld_process", "mig"), validWeldProcesses, "mig"),
			WeldType:     oneOf(str(item, "weld_type", "fillet"), validWeldTypes, "fillet"),
			Notes:        str(item, "notes", ""),
		}
		if cut.LengthInches <= 0 {
			cut.LengthInches = 12
		}
		if cut.Quantity <= 0 {
			cut.Quantity = 1
		}
		if cut.CutAngle <= 0 || cut.CutAngle > 90 {
			cut.CutAngle = 45
			if cut.CutType == "square" {
				cut.CutAngle = 90
			}
		}
		cuts = append(cuts, cut)
	}
	if len(cuts) == 0 {
		return nil, errors.New("empty cut list")
	}
	return cuts, nil
}

func normalizeCutType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range validCutTypes {
		if s == v {
			return s
		}
	}
	switch {
	case strings.Contains(s, "miter") && strings.Contains(s, "22"):
		return "miter_22.5"
	case strings.Contains(s, "miter") || strings.Contains(s, "45"):
		return "miter_45"
	case strings.Contains(s, "cope"):
		return "cope"
	case strings.Contains(s, "notch"):
		return "notch"
	}
	return "square"
}

func oneOf(s string, valid []string, def string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range valid {
		if s == v {
			return s
		}
	}
	return def
}

func str(m map[string]any, key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return def
	}
	return s
}

// num reads a numeric cut field. Values outside the range firstNumber
// accepts fall back to def.
func num(m map[string]any, key string, def float64) float64 {
	if n, ok := llm.Number(m[key]); ok && usable(n) {
		return n
	}
	return def
}

// cutWaste picks the waste fraction for a cut by its stock class.
func cutWaste(profile, materialType string) float64 {
	key := strings.ToLower(profile + " " + materialType)
	switch {
	case containsAny(key, "flat_bar", "flat bar"):
		return WasteFlat
	case containsAny(key, "sheet", "plate", "expanded"):
		return WasteSheet
	}
	return WasteTube
}

// buildFromCuts turns validated cuts into a material list, priced and
// weighed from the catalog with the profile's fallbacks.
func buildFromCuts(cat *catalog.Catalog, job domain.JobType, f domain.Fields, cuts []Cut, p aiProfile, notes []string) domain.MaterialList {
	t := &takeoff{cat: cat, job: job, assumptions: append([]string(nil), notes...)}
	totalFt := 0.0
	for _, c := range cuts {
		price, ok := cat.LookupPricePerFoot(c.Profile)
		if !ok || price <= 0 {
			price = p.priceFallback
		}
		lengthFt := c.LengthInches / 12
		wpf := cat.WeightPerFoot(c.Profile)
		if wpf == 0 {
			wpf = p.weightPerFt
		}
		t.add(domain.MaterialItem{
			Description:  c.Description,
			MaterialType: c.MaterialType,
			Profile:      c.Profile,
			LengthInches: c.LengthInches,
			Quantity:     c.Quantity,
			UnitPrice:    lengthFt * price,
			CutType:      c.CutType,
			WasteFactor:  cutWaste(c.Profile, c.MaterialType),
			Group:        c.Group,
			WeldProcess:  c.WeldProcess,
		})
		t.weight += lengthFt * float64(c.Quantity) * wpf
		t.weld += float64(c.Quantity) * p.weldPerPiece
		totalFt += lengthFt * float64(c.Quantity)
	}
	if p.area != nil {
		t.sqft = p.area(f, cuts)
	} else {
		t.sqft = totalFt * 0.5
	}
	t.assumptions = append(t.assumptions, p.note)
	return t.list()
}

// cutListPrompt asks for a design-first cut list restricted to profiles the
// catalog knows.
func cutListPrompt(job domain.JobType, f domain.Fields) string {
	keys := make([]string, 0, len(f))
	for k := range f {
		if !strings.HasPrefix(k, "_") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var fieldsText strings.Builder
	for _, k := range keys {
		v := text(f, k, "")
		if v == "" {
			continue
		}
		fmt.Fprintf(&fieldsText, "  - %s: %s\n", k, v)
	}
	if fieldsText.Len() == 0 {
		fieldsText.WriteString("  (no fields provided)\n")
	}

	var all strings.Builder
	for _, k := range keys {
		all.WriteString(strings.ToLower(text(f, k, "")))
		all.WriteByte(' ')
	}
	weld := weldGuidance(all.String())

	return fmt.Sprintf(`You are an expert metal fabricator with 25+ years of shop experience.
You are generating a DETAILED cut list for a fabrication project.
Think through the design BEFORE listing pieces.

JOB TYPE: %s

USER-PROVIDED INFORMATION:
%s
STEP 1, DESIGN ANALYSIS: identify the overall structure, critical dimensions,
repeating patterns, visible versus hidden joints and the load path.

STEP 2, PATTERN GEOMETRY: for repeating elements compute
count = (available_space / spacing) + 1 and give each distinct piece its own line.

STEP 3, WELD PROCESS:
%s
STEP 4, CUT LIST.

AVAILABLE PROFILES (use ONLY these):
  Square tube: sq_tube_1x1_14ga, sq_tube_1.5x1.5_11ga, sq_tube_2x2_11ga, sq_tube_2x2_14ga, sq_tube_3x3_11ga, sq_tube_4x4_11ga
  Rectangular tube: rect_tube_2x3_11ga, rect_tube_2x4_11ga
  Round tube: round_tube_1.5_14ga, round_tube_2_11ga
  Flat bar: flat_bar_1x0.25, flat_bar_1.5x0.25, flat_bar_2x0.25, flat_bar_3x0.25
  Angle: angle_1.5x1.5x0.125, angle_2x2x0.1875, angle_2x2x0.25
  Square bar: sq_bar_0.5, sq_bar_0.625, sq_bar_0.75
  Round bar: round_bar_0.5, round_bar_0.625
  Channel: channel_4x5.4, channel_6x8.2
  Pipe: pipe_3_sch40, pipe_4_sch40, pipe_6_sch40
  DOM tube: dom_tube_1.75x0.120

CUT TYPES: square, miter_45, miter_22.5, cope, notch, compound

RULES:
1. Every piece has a specific length in inches.
2. Group related pieces (frame, infill, bracket).
3. List each unique piece separately with its quantity.
4. Include connection plates, gussets and brackets.
5. Use miter_45 for visible frame corners and cope for tube-to-tube T-joints.

Return ONLY a JSON array of objects with keys: description, piece_name, group,
material_type, profile, length_inches, quantity, cut_type, cut_angle,
weld_process, weld_type, notes.`, job, fieldsText.String(), weld)
}

func weldGuidance(all string) string {
	stainless := containsAny(all, "stainless", "304", "316")
	aluminum := containsAny(all, "aluminum", "6061")
	if stainless || aluminum || containsAny(all, tigIndicators...) {
		return "This project requires TIG welding. Use weld_process \"tig\" for all visible joints and \"mig\" for hidden structural joints only.\n"
	}
	return "Standard mild steel project. Default to weld_process \"mig\"; use \"tig\" only for show-quality joints.\n"
}

// tigIndicators are finish phrases that call for TIG on visible joints.
var tigIndicators = []string{
	"ground smooth", "blended", "furniture finish", "show quality",
	"visible welds", "tig", "glass top", "grind flush", "grind smooth",
	"seamless", "showroom", "polished", "mirror finish",
	"chrome", "brushed finish",
}
