// Package labor turns a material list into per-process shop hours. The
// deterministic path classifies every piece and applies linear shop
// standards; the estimator asks the text-completion service for the same
// breakdown and substitutes the deterministic one whenever the service
// cannot answer.
package labor

import (
	"fmt"
	"strings"

	"github.com/Simplici0/fabquote/internal/domain"
)

// The eleven labor processes, in quote order.
const (
	LayoutSetup     = "layout_setup"
	CutPrep         = "cut_prep"
	FitTack         = "fit_tack"
	FullWeld        = "full_weld"
	GrindClean      = "grind_clean"
	FinishPrep      = "finish_prep"
	Clearcoat       = "clearcoat"
	Paint           = "paint"
	HardwareInstall = "hardware_install"
	SiteInstall     = "site_install"
	FinalInspection = "final_inspection"
)

// Processes lists every process an estimate must cover.
var Processes = []string{
	LayoutSetup, CutPrep, FitTack, FullWeld, GrindClean, FinishPrep,
	Clearcoat, Paint, HardwareInstall, SiteInstall, FinalInspection,
}

// Source values on a LaborEstimate.
const (
	SourceAI        = "ai"
	SourceRuleBased = "rule_based"
)

// Default shop rates used when a profile has none.
const (
	DefaultInShopRate = 125.0
	DefaultOnSiteRate = 145.0
)

// normalizeRates fills zero rates with the defaults.
func normalizeRates(r domain.Rates) domain.Rates {
	if r.InShop <= 0 {
		r.InShop = DefaultInShopRate
	}
	if r.OnSite <= 0 {
		r.OnSite = DefaultOnSiteRate
	}
	return r
}

// rateFor picks the on-site rate for site installation and for jobs done
// entirely in the field; everything else is billed at the shop rate.
func rateFor(process string, onSite bool, r domain.Rates) float64 {
	if onSite || process == SiteInstall {
		return r.OnSite
	}
	return r.InShop
}

// OnSite reports whether the whole job is worked in the field.
func OnSite(job domain.JobType, f domain.Fields) bool {
	canRemove := strings.ToLower(fieldText(f, "can_remove", ""))
	if containsAny(canRemove, "in place", "on-site", "on site") {
		return true
	}
	if job == domain.JobRepairStructural {
		loc := strings.ToLower(fieldText(f, "repair_location", ""))
		if containsAny(loc, "field", "on-site", "on site") {
			return true
		}
	}
	return false
}

// WantsInstall reports whether the customer asked for installation.
func WantsInstall(f domain.Fields) bool {
	for _, key := range []string{"installation", "install_included"} {
		v, ok := f[key]
		if !ok {
			continue
		}
		if b, isBool := v.(bool); isBool {
			return b
		}
		s := strings.ToLower(fmt.Sprint(v))
		if containsAny(s, "customer install", "only") || strings.HasPrefix(s, "no") {
			return false
		}
		return containsAny(s, "install", "full", "yes", "erect")
	}
	return false
}

// hardwareInstallHours is about 25 minutes per purchased item plus 1.5
// hours for each operator or motor line.
func hardwareInstallHours(list domain.MaterialList) float64 {
	h := float64(list.HardwareCount()) * 0.4
	for _, hw := range list.Hardware {
		d := strings.ToLower(hw.Description)
		if strings.Contains(d, "operator") || strings.Contains(d, "motor") {
			h += 1.5
		}
	}
	return domain.Round(h, 2)
}

// siteInstallHours scales field time by shipped weight.
func siteInstallHours(list domain.MaterialList, f domain.Fields) float64 {
	if !WantsInstall(f) {
		return 0
	}
	var h float64
	switch w := list.TotalWeightLbs; {
	case w < 200:
		h = 3
	case w < 500:
		h = 5
	case w < 1000:
		h = 7
	default:
		h = 10
	}
	install := strings.ToLower(fieldText(f, "installation", ""))
	concrete := strings.ToLower(fieldText(f, "post_concrete", ""))
	if strings.HasPrefix(concrete, "yes") || strings.Contains(concrete, "concrete") || strings.Contains(install, "full installation") {
		h += 2
	}
	return h
}

// build assembles an estimate over all eleven processes in order. hours
// and notes are keyed by process; missing entries are zero.
func build(hours map[string]float64, notes map[string]string, onSite bool, rates domain.Rates) domain.LaborEstimate {
	rates = normalizeRates(rates)
	est := domain.LaborEstimate{Processes: make([]domain.LaborProcess, 0, len(Processes))}
	for _, p := range Processes {
		est.Processes = append(est.Processes, domain.LaborProcess{
			Process: p,
			Hours:   domain.Round(max(hours[p], 0), 2),
			Rate:    rateFor(p, onSite, rates),
			Notes:   notes[p],
		})
	}
	est.TotalHours = TotalHours(est.Processes)
	return est
}

// TotalHours sums process hours. An estimate's total is always this sum.
func TotalHours(ps []domain.LaborProcess) float64 {
	total := 0.0
	for _, p := range ps {
		total += p.Hours
	}
	return domain.Round(total, 2)
}

// applyGuardrails flags, never rejects, an estimate with unusual weld or
// grind time.
func applyGuardrails(est *domain.LaborEstimate) {
	weld, grind := est.Hours(FullWeld), est.Hours(GrindClean)
	if weld > maxWeldHours {
		est.Flag(fmt.Sprintf("weld time %.1f h exceeds %.0f h; check piece counts", weld, maxWeldHours))
	}
	if grind > weld {
		est.Flag(fmt.Sprintf("grind time %.1f h exceeds weld time %.1f h", grind, weld))
	}
}
