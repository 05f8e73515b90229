// Package finishing builds the finishing section every quote carries, even
// when the steel ships bare.
package finishing

import (
	"strings"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/labor"
)

// Method is a canonical finish.
type Method string

const (
	Raw        Method = "raw"
	Clearcoat  Method = "clearcoat"
	Paint      Method = "paint"
	PowderCoat Method = "powder_coat"
	Galvanized Method = "galvanized"
)

// Rates per square foot.
const (
	PowderCoatPerSqFt     = 3.50
	GalvanizePerSqFt      = 2.00
	ClearcoatMaterialSqFt = 0.35
	PaintMaterialSqFt     = 0.50
)

// MinArea is the smallest area a finish is priced on.
const MinArea = 1.0

// Normalize maps a free-text finish answer onto a Method. Anything
// unrecognised but non-empty is treated as paint.
func Normalize(answer string) Method {
	f := strings.ToLower(strings.TrimSpace(answer))
	switch {
	case f == "", strings.Contains(f, "raw"), strings.Contains(f, "none"), strings.Contains(f, "no finish"):
		return Raw
	case strings.Contains(f, "clear"):
		return Clearcoat
	case strings.Contains(f, "powder"):
		return PowderCoat
	case strings.Contains(f, "galv"), strings.Contains(f, "hot dip"), strings.Contains(f, "hot-dip"):
		return Galvanized
	default:
		return Paint
	}
}

// Outsourced reports whether the method is done by an outside shop.
func (m Method) Outsourced() bool {
	return m == PowderCoat || m == Galvanized
}

// inHouseProcesses are the labor processes whose hours belong to a method.
var inHouseProcesses = map[Method][]string{
	Clearcoat:  {labor.FinishPrep, labor.Clearcoat},
	Paint:      {labor.FinishPrep, labor.Paint},
	PowderCoat: {labor.FinishPrep},
}

// Build prices the finish for area square feet. In-house hours are read
// from processes by name; they are reported, not costed, here since labor
// cost already includes them.
func Build(answer string, area float64, processes []domain.LaborProcess) domain.FinishingSection {
	m := Normalize(answer)
	area = max(area, MinArea)

	var hours float64
	for _, name := range inHouseProcesses[m] {
		for _, p := range processes {
			if p.Process == name {
				hours += p.Hours
			}
		}
	}

	s := domain.FinishingSection{
		Method:   string(m),
		AreaSqFt: domain.Round(area, 1),
		Hours:    domain.Round(hours, 2),
	}
	switch m {
	case Clearcoat:
		s.MaterialsCost = domain.Round(area*ClearcoatMaterialSqFt, 2)
	case Paint:
		s.MaterialsCost = domain.Round(area*PaintMaterialSqFt, 2)
	case PowderCoat:
		s.OutsourceCost = domain.Round(area*PowderCoatPerSqFt, 2)
	case Galvanized:
		s.OutsourceCost = domain.Round(area*GalvanizePerSqFt, 2)
	}
	s.Total = domain.Round(s.MaterialsCost+s.OutsourceCost, 2)
	return s
}
