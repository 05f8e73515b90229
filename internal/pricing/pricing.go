package pricing

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/labor"
)

// MarkupLadder is the fixed set of markup percentages offered on a quote.
var MarkupLadder = []int{0, 5, 10, 15, 20, 25, 30}

// DefaultMarkup is used when the shop has not chosen one.
const DefaultMarkup = 15

// BulkMaterialThreshold is the material subtotal above which a bulk
// pricing note is added.
const BulkMaterialThreshold = 5000.0

// Input groups the upstream outputs a quote is priced from.
type Input struct {
	SessionID   string
	JobType     domain.JobType
	Fields      domain.Fields
	Materials   domain.MaterialList
	Hardware    []domain.PricedHardware
	Consumables []domain.ConsumableItem
	Labor       domain.LaborEstimate
	Finishing   domain.FinishingSection
	Markup      int
	Now         time.Time
}

// ValidMarkup reports whether pct is on the ladder.
func ValidMarkup(pct int) bool {
	return slices.Contains(MarkupLadder, pct)
}

// Subtotals computes the five named components.
func Subtotals(in Input) domain.Subtotals {
	var s domain.Subtotals
	for _, it := range in.Materials.Items {
		s.Materials += it.LineTotal()
	}
	for _, h := range in.Hardware {
		s.Hardware += h.LineTotal
	}
	for _, c := range in.Consumables {
		s.Consumables += c.LineTotal
	}
	for _, p := range in.Labor.Processes {
		s.Labor += p.Hours * p.Rate
	}
	s.Finishing = in.Finishing.Total

	s.Materials = domain.Round(s.Materials, 2)
	s.Hardware = domain.Round(s.Hardware, 2)
	s.Consumables = domain.Round(s.Consumables, 2)
	s.Labor = domain.Round(s.Labor, 2)
	s.Finishing = domain.Round(s.Finishing, 2)
	return s
}

// MarkupOptions prices subtotal at every step of the ladder.
func MarkupOptions(subtotal float64) []domain.MarkupOption {
	out := make([]domain.MarkupOption, len(MarkupLadder))
	for i, pct := range MarkupLadder {
		out[i] = domain.MarkupOption{Percent: pct, Total: applyMarkup(subtotal, pct)}
	}
	return out
}

func applyMarkup(subtotal float64, pct int) float64 {
	return domain.Round(subtotal*(1+float64(pct)/100), 2)
}

// Build assembles the priced quote. Advisory notes are appended to the
// assumptions and never change a number.
func Build(in Input) (domain.PricedQuote, error) {
	if !ValidMarkup(in.Markup) {
		return domain.PricedQuote{}, fmt.Errorf("markup %d%%: %w", in.Markup, domain.ErrInvalidMarkup)
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	subs := Subtotals(in)
	subtotal := subs.Sum()
	q := domain.PricedQuote{
		SessionID:      in.SessionID,
		JobType:        in.JobType,
		Materials:      in.Materials.Items,
		Hardware:       in.Hardware,
		Consumables:    in.Consumables,
		Labor:          in.Labor.Processes,
		Finishing:      in.Finishing,
		Subtotals:      subs,
		Subtotal:       subtotal,
		MarkupOptions:  MarkupOptions(subtotal),
		SelectedMarkup: in.Markup,
		Total:          applyMarkup(subtotal, in.Markup),
		Assumptions:    assumptions(in, subs),
		Exclusions:     exclusions(in.JobType, in.Fields),
		CreatedAt:      now.UTC(),
	}
	return q, nil
}

// WithMarkup reselects the markup. Only the selection and total change.
func WithMarkup(q domain.PricedQuote, pct int) (domain.PricedQuote, error) {
	if !ValidMarkup(pct) {
		return q, fmt.Errorf("markup %d%%: %w", pct, domain.ErrInvalidMarkup)
	}
	q.SelectedMarkup = pct
	q.Total = applyMarkup(q.Subtotal, pct)
	return q, nil
}

func assumptions(in Input, subs domain.Subtotals) []string {
	out := []string{"Material prices based on market averages. Update with supplier quotes for accuracy."}
	add := func(s string) {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}

	if in.Labor.Source == labor.SourceAI {
		add("Labor hours estimated by AI with shop guidance; totals computed from the per-process breakdown.")
	} else {
		add("Labor hours estimated by shop rules from the cut list. The AI estimator was not used.")
	}
	add("Hardware prices from catalog data. Verify availability and current pricing before ordering.")
	if subs.Consumables > 0 {
		add(fmt.Sprintf("Consumables estimated at $%.2f based on weld volume and finish area.", subs.Consumables))
	}
	for _, a := range in.Materials.Assumptions {
		add(a)
	}
	if in.Labor.Flagged {
		add("FLAGGED: " + in.Labor.FlagReason)
	}

	add(bulkMaterialNote(subs.Materials))
	add(bulkHardwareNote(subs.Hardware))
	if only := singleSourced(in.Hardware); len(only) > 0 {
		add(fmt.Sprintf("McMaster-Carr is the only source for: %s. Consider sourcing alternatives for cost savings.", strings.Join(only, ", ")))
	}
	return out
}

func bulkMaterialNote(materials float64) string {
	if materials <= BulkMaterialThreshold {
		return ""
	}
	return fmt.Sprintf("Material cost exceeds $%.0f ($%.2f). Negotiate a bulk rate with the supplier for potential 5-15%% savings.",
		BulkMaterialThreshold, materials)
}

func bulkHardwareNote(hardware float64) string {
	switch {
	case hardware > 2000:
		return fmt.Sprintf("Hardware total is $%.2f. Contact suppliers directly for bulk pricing; potential savings 10-20%%.", hardware)
	case hardware > 500:
		return fmt.Sprintf("Hardware total is $%.2f. Consolidate orders for volume discounts; potential savings 5-10%%.", hardware)
	}
	return ""
}

func exclusions(job domain.JobType, f domain.Fields) []string {
	out := []string{
		"Permit fees and engineering review",
		"Demolition or removal of existing work (unless explicitly included)",
	}
	jt := string(job)
	if strings.Contains(jt, "gate") {
		out = append(out, "Concrete work beyond post holes")
		if strings.HasPrefix(strings.ToLower(fmt.Sprint(f["has_motor"])), "yes") || f["has_motor"] == true {
			out = append(out, "Electrical wiring for gate operator (we mount the operator; an electrician handles wiring)")
		}
	}
	if labor.WantsInstall(f) {
		out = append(out, "Touch-up after other trades complete their work")
	}
	if strings.Contains(jt, "railing") || strings.Contains(jt, "stair") {
		out = append(out, "Concrete or structural modifications to mount surfaces")
	}
	if strings.Contains(jt, "repair") {
		out = append(out,
			"Additional damage discovered during disassembly",
			"Matching existing finish; exact color match not guaranteed",
		)
	}
	return out
}
