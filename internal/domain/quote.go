// Package domain holds the data shapes that flow through the quoting
// pipeline and the ports its collaborators implement.
package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Fields is the accumulated set of answers for one session, keyed by
// question id. Values are whatever the caller sent: strings, numbers,
// booleans or small lists.
type Fields map[string]any

// Clone returns a shallow copy so callers can merge without aliasing.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge overwrites keys in f with the values in other. Keys are never
// removed.
func (f Fields) Merge(other Fields) {
	for k, v := range other {
		f[k] = v
	}
}

// Has reports whether key has been answered.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// MaterialItem is one purchasable line of stock.
type MaterialItem struct {
	Description  string  `json:"description"`
	MaterialType string  `json:"material_type"`
	Profile      string  `json:"profile"`
	LengthInches float64 `json:"length_inches"`
	Quantity     int     `json:"quantity"`
	RawQuantity  float64 `json:"raw_quantity"`
	UnitPrice    float64 `json:"unit_price"`
	CutType      string  `json:"cut_type"`
	WasteFactor  float64 `json:"waste_factor"`
	Group        string  `json:"group,omitempty"`
	WeldProcess  string  `json:"weld_process,omitempty"`
}

// NewMaterialItem normalizes an item: length and unit price are rounded to
// cents and an empty cut type becomes square. The purchased Quantity is
// always PurchaseQuantity(RawQuantity, WasteFactor); an unset RawQuantity
// is taken from Quantity, and anything below one unit counts as one.
func NewMaterialItem(item MaterialItem) MaterialItem {
	raw := item.RawQuantity
	if !(raw > 0) || math.IsInf(raw, 0) {
		raw = float64(item.Quantity)
	}
	if raw <= 0 {
		raw = 1
	}
	if !(item.WasteFactor > 0) || math.IsInf(item.WasteFactor, 0) {
		item.WasteFactor = 0
	}
	item.RawQuantity = Round(raw, 4)
	item.Quantity = max(PurchaseQuantity(item.RawQuantity, item.WasteFactor), 1)
	if item.CutType == "" {
		item.CutType = "square"
	}
	item.LengthInches = Round(max(item.LengthInches, 0), 2)
	item.UnitPrice = Round(max(item.UnitPrice, 0), 2)
	return item
}

// PurchaseQuantity is the whole number of units bought for a raw quantity
// q at waste fraction w: q grown by w and rounded up.
func PurchaseQuantity(q, w float64) int {
	// The epsilon keeps 20*1.05 from becoming 22 through float error.
	return int(math.Ceil(q*(1+w) - 1e-9))
}

// LineTotal is unit price times quantity, rounded to cents.
func (m MaterialItem) LineTotal() float64 {
	return Round(m.UnitPrice*float64(m.Quantity), 2)
}

// MarshalJSON adds the derived line_total to the encoded item.
func (m MaterialItem) MarshalJSON() ([]byte, error) {
	type plain MaterialItem
	return json.Marshal(struct {
		plain
		LineTotal float64 `json:"line_total"`
	}{plain(m), m.LineTotal()})
}

// PricingOption is one supplier offer for a hardware item.
type PricingOption struct {
	Supplier   string  `json:"supplier"`
	Price      float64 `json:"price"`
	URL        string  `json:"url,omitempty"`
	PartNumber string  `json:"part_number,omitempty"`
	LeadDays   int     `json:"lead_days,omitempty"`
}

// HardwareItem is a bought-in component with sourcing options.
type HardwareItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Options     []PricingOption `json:"options"`
}

// MaterialList is the output of the calculation stage. A re-run produces a
// new list; nothing mutates one after it is built.
type MaterialList struct {
	JobType          JobType        `json:"job_type"`
	Items            []MaterialItem `json:"items"`
	Hardware         []HardwareItem `json:"hardware"`
	TotalWeightLbs   float64        `json:"total_weight_lbs"`
	TotalSqFt        float64        `json:"total_sq_ft"`
	WeldLinearInches float64        `json:"weld_linear_inches"`
	Assumptions      []string       `json:"assumptions"`
}

// PieceCount is the purchased quantity across all items.
func (m MaterialList) PieceCount() int {
	n := 0
	for _, it := range m.Items {
		n += it.Quantity
	}
	return n
}

// HardwareCount is the quantity across all hardware lines.
func (m MaterialList) HardwareCount() int {
	n := 0
	for _, h := range m.Hardware {
		n += h.Quantity
	}
	return n
}

// LaborProcess is the hour allocation for one of the fixed processes.
type LaborProcess struct {
	Process string  `json:"process"`
	Hours   float64 `json:"hours"`
	Rate    float64 `json:"rate"`
	Notes   string  `json:"notes"`
}

// LaborEstimate is the per-process breakdown feeding labor cost.
type LaborEstimate struct {
	Processes  []LaborProcess `json:"processes"`
	TotalHours float64        `json:"total_hours"`
	Flagged    bool           `json:"flagged"`
	FlagReason string         `json:"flag_reason,omitempty"`
	Source     string         `json:"source"`
	Reasoning  []string       `json:"reasoning,omitempty"`
}

// Hours returns the hours recorded for process, or zero.
func (e LaborEstimate) Hours(process string) float64 {
	for _, p := range e.Processes {
		if p.Process == process {
			return p.Hours
		}
	}
	return 0
}

// Flag marks the estimate for review, appending to any existing reason.
func (e *LaborEstimate) Flag(reason string) {
	e.Flagged = true
	if e.FlagReason == "" {
		e.FlagReason = reason
		return
	}
	e.FlagReason += "; " + reason
}

// FinishingSection is present on every quote, including unfinished steel.
type FinishingSection struct {
	Method        string  `json:"method"`
	AreaSqFt      float64 `json:"area_sq_ft"`
	Hours         float64 `json:"hours"`
	MaterialsCost float64 `json:"materials_cost"`
	OutsourceCost float64 `json:"outsource_cost"`
	Total         float64 `json:"total"`
}

// ConsumableItem is an estimated shop consumable (wire, discs, gas).
type ConsumableItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// PricedHardware is a hardware line with the option it was priced at.
type PricedHardware struct {
	HardwareItem
	UnitPrice float64 `json:"unit_price"`
	Supplier  string  `json:"supplier"`
	LineTotal float64 `json:"line_total"`
}

// Subtotals are the five named components of a quote subtotal.
type Subtotals struct {
	Materials   float64 `json:"materials"`
	Hardware    float64 `json:"hardware"`
	Consumables float64 `json:"consumables"`
	Labor       float64 `json:"labor"`
	Finishing   float64 `json:"finishing"`
}

// Sum adds the five components.
func (s Subtotals) Sum() float64 {
	return Round(s.Materials+s.Hardware+s.Consumables+s.Labor+s.Finishing, 2)
}

// MarkupOption is the total at one markup percentage.
type MarkupOption struct {
	Percent int     `json:"percent"`
	Total   float64 `json:"total"`
}

// PricedQuote is the assembled, priced output of the pipeline.
type PricedQuote struct {
	QuoteID        int64            `json:"quote_id,omitempty"`
	QuoteNumber    string           `json:"quote_number,omitempty"`
	SessionID      string           `json:"session_id"`
	JobType        JobType          `json:"job_type"`
	Materials      []MaterialItem   `json:"materials"`
	Hardware       []PricedHardware `json:"hardware"`
	Consumables    []ConsumableItem `json:"consumables"`
	Labor          []LaborProcess   `json:"labor"`
	Finishing      FinishingSection `json:"finishing"`
	Subtotals      Subtotals        `json:"subtotals"`
	Subtotal       float64          `json:"subtotal"`
	MarkupOptions  []MarkupOption   `json:"markup_options"`
	SelectedMarkup int              `json:"selected_markup_pct"`
	Total          float64          `json:"total"`
	Assumptions    []string         `json:"assumptions"`
	Exclusions     []string         `json:"exclusions"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Rates are the shop's hourly labor rates.
type Rates struct {
	InShop float64 `json:"rate_inshop"`
	OnSite float64 `json:"rate_onsite"`
}

// Round rounds v to the given number of decimal places, half away from
// zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
