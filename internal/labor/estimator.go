package labor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/llm"
	"github.com/Simplici0/fabquote/internal/logger"
)

// Job is everything the estimator reads.
type Job struct {
	Type      domain.JobType
	Fields    domain.Fields
	Materials domain.MaterialList
	Rates     domain.Rates
}

// Estimator produces labor estimates. It never fails: when the service is
// missing or its reply is unusable the rule-based estimate is returned.
type Estimator struct {
	completer domain.Completer
	log       *logger.Logger
	timeout   time.Duration
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithTimeout bounds each service call.
func WithTimeout(d time.Duration) EstimatorOption {
	return func(e *Estimator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEstimator creates an estimator. A nil completer is allowed and makes
// every estimate rule-based.
func NewEstimator(c domain.Completer, log *logger.Logger, opts ...EstimatorOption) *Estimator {
	e := &Estimator{completer: c, log: log, timeout: 90 * time.Second}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Estimate asks the service for per-process hours. The rule-based estimate
// is always computed first and is what the caller gets on any failure.
func (e *Estimator) Estimate(ctx context.Context, job Job) domain.LaborEstimate {
	fallback := RuleBased(job)
	onSite := OnSite(job.Type, job.Fields)

	req := domain.CompletionRequest{
		System:      "You are an expert metal fabrication labor estimator with 20+ years of shop experience.",
		Prompt:      estimatePrompt(job, onSite),
		MaxTokens:   2048,
		Temperature: 0.2,
	}
	res := llm.Ask(ctx, e.completer, req, e.timeout, func(reply string) (domain.LaborEstimate, error) {
		return parseEstimate(reply, onSite, job.Rates)
	}, fallback)

	if !res.IsOk() {
		e.log.Info("labor: using rule-based estimate", "job_type", job.Type, "reason", res.Reason())
		est := res.Value()
		est.Reasoning = append([]string{"AI estimator unavailable (" + res.Reason() + ")."}, est.Reasoning...)
		return est
	}
	est := res.Value()
	applyGuardrails(&est)
	e.log.Info("labor: AI estimate", "job_type", job.Type, "total_hours", est.TotalHours, "flagged", est.Flagged)
	return est
}

// RuleBased is the deterministic estimate: the eight shop processes from
// ShopHours plus hardware and site installation rules. The same job always
// yields the same estimate.
func RuleBased(job Job) domain.LaborEstimate {
	shop := ShopHours(job.Materials.Items, job.Fields)
	finish := strings.ToLower(fieldText(job.Fields, "finish", "raw"))

	var clear, paint float64
	switch {
	case strings.Contains(finish, "clear"):
		clear = shop.Coating
	case strings.Contains(finish, "paint") && !strings.Contains(finish, "powder"):
		paint = shop.Coating
	}

	hours := map[string]float64{
		LayoutSetup:     shop.LayoutSetup,
		CutPrep:         shop.CutPrep,
		FitTack:         shop.FitTack,
		FullWeld:        shop.FullWeld,
		GrindClean:      shop.GrindClean,
		FinishPrep:      shop.FinishPrep,
		Clearcoat:       clear,
		Paint:           paint,
		HardwareInstall: hardwareInstallHours(job.Materials),
		SiteInstall:     siteInstallHours(job.Materials, job.Fields),
		FinalInspection: shop.FinalInspection,
	}
	const note = "Rule-based: calculated from cut list and shop standards"
	notes := make(map[string]string, len(Processes))
	for _, p := range Processes {
		notes[p] = note
	}
	notes[HardwareInstall] = fmt.Sprintf("%s. %d hardware items.", note, job.Materials.HardwareCount())
	if hours[SiteInstall] == 0 {
		notes[SiteInstall] = note + ". Installation not included."
	}

	est := build(hours, notes, OnSite(job.Type, job.Fields), job.Rates)
	est.Source = SourceRuleBased
	est.Reasoning = shop.Reasoning
	if shop.Flagged {
		est.Flag(shop.FlagReason)
	}
	return est
}

// parseEstimate reads {"process": {"hours": h, "notes": "..."}} for every
// process. A missing process or a non-numeric hours value rejects the
// whole reply. Any total in the reply is ignored.
func parseEstimate(reply string, onSite bool, rates domain.Rates) (domain.LaborEstimate, error) {
	obj, err := llm.DecodeObject(reply)
	if err != nil {
		return domain.LaborEstimate{}, err
	}
	if len(obj) == 1 {
		for _, v := range obj {
			if inner, ok := v.(map[string]any); ok && inner[LayoutSetup] != nil {
				obj = inner
			}
		}
	}

	hours := make(map[string]float64, len(Processes))
	notes := make(map[string]string, len(Processes))
	for _, p := range Processes {
		raw, ok := obj[p]
		if !ok {
			return domain.LaborEstimate{}, fmt.Errorf("missing process %q", p)
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			return domain.LaborEstimate{}, fmt.Errorf("process %q: want an object with hours and notes", p)
		}
		h, ok := llm.Number(entry["hours"])
		if !ok {
			return domain.LaborEstimate{}, fmt.Errorf("process %q: hours is not a number", p)
		}
		hours[p] = h
		if s, ok := entry["notes"].(string); ok {
			notes[p] = s
		}
	}
	est := build(hours, notes, onSite, rates)
	est.Source = SourceAI
	return est, nil
}

func estimatePrompt(job Job, onSite bool) string {
	list := job.Materials
	f := job.Fields
	finish := fieldText(f, "finish", "raw")
	cond := ConditionsFor(list.Items, f)

	var dims strings.Builder
	for _, key := range []string{"clear_width", "height", "linear_footage", "railing_height", "panel_config", "stair_angle", "num_risers", "description"} {
		v, ok := f[key]
		if !ok {
			continue
		}
		s := fmt.Sprint(v)
		if len(s) > 200 {
			s = s[:200] + "..."
		}
		fmt.Fprintf(&dims, "  - %s: %s\n", key, s)
	}
	if dims.Len() == 0 {
		dims.WriteString("  (none specified)\n")
	}

	var mats strings.Builder
	for i, it := range list.Items {
		if i == 20 {
			break
		}
		weld := ""
		if it.WeldProcess != "" {
			weld = " [" + strings.ToUpper(it.WeldProcess) + "]"
		}
		fmt.Fprintf(&mats, "  - %s (qty: %d, cut: %s, class %s)%s\n", it.Description, it.Quantity, it.CutType, ClassOf(it), weld)
	}
	if mats.Len() == 0 {
		mats.WriteString("  (no materials)\n")
	}

	var hw strings.Builder
	for _, h := range list.Hardware {
		fmt.Fprintf(&hw, "  - %s (qty: %d)\n", h.Description, h.Quantity)
	}
	if hw.Len() == 0 {
		hw.WriteString("  (no hardware)\n")
	}

	return fmt.Sprintf(`TASK: Estimate labor hours per process for a %s fabrication job.

JOB SUMMARY:
  Total material pieces: %d
  Total weight: %.1f lbs
  Total weld linear inches: %.1f
  Total surface area (for finishing): %.1f sq ft
  Hardware items to install: %d
  Finish type: %s
  Installation included: %s
  On-site work (entire job): %s

KEY DIMENSIONS AND DESCRIPTION:
%s
MATERIAL LIST (class A = structural, class B = precision placement):
%s
HARDWARE:
%s
WELD PROCESS:
%s

SHOP KNOWLEDGE:
%s

PROCESS GUIDANCE:
1. layout_setup: 0.5 to 2.0 hrs.
2. cut_prep: square cut about 3 min, miter 5 min, cope 8 to 10 min, compound 10 to 15 min.
3. fit_tack: simple frame 1 to 2 hrs, gate with infill 3 to 5 hrs, pattern work adds 2 to 3 min per piece.
4. full_weld: 8 to 15 weld-inches per hour MIG on mild steel, 4 to 8 TIG, 3 to 6 TIG on stainless.
5. grind_clean: 30 to 40%% of weld time for painted MIG work, 75 to 100%% for ground-smooth TIG.
6. finish_prep: 0.5 to 1.0 hr for paint prep, 0.25 for powder coat prep, 0 for raw.
7. clearcoat: about 0.5 hr per 50 sq ft, 0 unless clear coat.
8. paint: about 0.75 hr per 50 sq ft, 0 unless paint.
9. hardware_install: 15 to 30 min per simple item, 1 to 2 hrs per motor or operator.
10. site_install: 2 to 4 hrs railing, 4 to 8 hrs gate with concrete, 6 to 12 hrs stairs, 0 without installation.
11. final_inspection: 0.25 to 0.5 hrs.

RULES:
- Return hours for ALL 11 processes. Use 0.0 when a process does not apply.
- Do NOT return a total.
- Give a brief note for each process.
- Powder coat and galvanizing are outsourced: clearcoat and paint are 0.

Return ONLY valid JSON:
{"layout_setup": {"hours": 1.5, "notes": "reason"}, "cut_prep": {"hours": 2.0, "notes": "reason"}, "fit_tack": {"hours": 3.0, "notes": "reason"}, "full_weld": {"hours": 4.0, "notes": "reason"}, "grind_clean": {"hours": 1.5, "notes": "reason"}, "finish_prep": {"hours": 1.0, "notes": "reason"}, "clearcoat": {"hours": 0.0, "notes": "reason"}, "paint": {"hours": 0.0, "notes": "reason"}, "hardware_install": {"hours": 2.0, "notes": "reason"}, "site_install": {"hours": 6.0, "notes": "reason"}, "final_inspection": {"hours": 0.5, "notes": "reason"}}`,
		job.Type,
		list.PieceCount(), list.TotalWeightLbs, list.WeldLinearInches, list.TotalSqFt,
		list.HardwareCount(), finish, yesNo(WantsInstall(f)), yesNo(onSite),
		dims.String(), mats.String(), hw.String(),
		weldSection(cond, list.WeldLinearInches),
		Knowledge(job.Type, finish, cond.Stainless),
	)
}

func weldSection(c Conditions, inches float64) string {
	if !c.TIG {
		return fmt.Sprintf("Standard mild steel, MIG. At 8 to 15 in/hr, %.0f weld inches is %.1f to %.1f welding hours.",
			inches, inches/15, inches/8)
	}
	material := "Mild steel with visible joints: TIG where seen, MIG on hidden structural joints."
	if c.Stainless {
		material = "Stainless steel: TIG required, back-purge closed joints, passivate after welding."
	}
	return fmt.Sprintf("THIS JOB REQUIRES TIG WELDING. %s At 4 to 8 in/hr, %.0f weld inches is %.1f to %.1f welding hours.",
		material, inches, inches/8, inches/4)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
