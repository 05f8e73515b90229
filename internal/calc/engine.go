// Package calc turns answered intake fields into a material list. Each job
// type has one hand-written strategy; the registry is closed and always
// resolves, falling back to the custom fabrication estimator.
package calc

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/llm"
	"github.com/Simplici0/fabquote/internal/logger"
)

// Calculator is one job type's material strategy.
type Calculator interface {
	Calculate(cat *catalog.Catalog, f domain.Fields) domain.MaterialList
}

// aiAssisted is implemented by strategies that may replace their template
// with an AI-generated cut list.
type aiAssisted interface {
	cutList() aiProfile
}

var registry = map[domain.JobType]Calculator{
	domain.JobCantileverGate:      cantileverGate{},
	domain.JobSwingGate:           swingGate{},
	domain.JobStraightRailing:     straightRailing{},
	domain.JobStairRailing:        stairRailing{},
	domain.JobBalconyRailing:      balconyRailing{},
	domain.JobRepairDecorative:    repairDecorative{},
	domain.JobRepairStructural:    repairStructural{},
	domain.JobOrnamentalFence:     ornamentalFence{},
	domain.JobCompleteStair:       completeStair{},
	domain.JobSpiralStair:         spiralStair{},
	domain.JobWindowSecurityGrate: windowGrate{},
	domain.JobFurnitureTable:      furnitureTable{},
	domain.JobFurnitureOther:      furnitureOther{},
	domain.JobUtilityEnclosure:    utilityEnclosure{},
	domain.JobBollard:             bollard{},
	domain.JobCustomFab:           customFab{},
	domain.JobOffroadBumper:       offroadBumper{},
	domain.JobRockSlider:          rockSlider{},
	domain.JobRollCage:            rollCage{},
	domain.JobExhaustCustom:       exhaustCustom{},
	domain.JobTrailerFab:          trailerFab{},
	domain.JobStructuralFrame:     structuralFrame{},
	domain.JobSignFrame:           signFrame{},
	domain.JobLEDSignCustom:       ledSign{},
	domain.JobProductFiretable:    firetable{},
}

// Lookup returns the strategy for job. Unknown job types get the custom
// fabrication estimator; Lookup never fails.
func Lookup(job domain.JobType) Calculator {
	if c, ok := registry[job]; ok {
		return c
	}
	return customFab{}
}

// Registered reports whether job has a dedicated strategy.
func Registered(job domain.JobType) bool {
	_, ok := registry[job]
	return ok
}

// Engine runs strategies with optional AI cut-list augmentation.
type Engine struct {
	cat       atomic.Pointer[catalog.Catalog]
	completer domain.Completer
	timeout   time.Duration
	log       *logger.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCompleter enables AI cut lists through c.
func WithCompleter(c domain.Completer) EngineOption {
	return func(e *Engine) { e.completer = c }
}

// WithTimeout bounds each cut-list request.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates an engine over a shared, read-only catalog.
func NewEngine(cat *catalog.Catalog, log *logger.Logger, opts ...EngineOption) *Engine {
	e := &Engine{timeout: 90 * time.Second, log: log}
	e.cat.Store(cat)
	for _, o := range opts {
		o(e)
	}
	return e
}

// Catalog returns the engine's current catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat.Load() }

// SetCatalog replaces the catalog used by later calculations. Catalogs are
// immutable; a price change builds a new one and swaps it in.
func (e *Engine) SetCatalog(cat *catalog.Catalog) {
	e.cat.Store(cat)
}

// substituteNote marks a list built by the generic estimator after the
// job type's own calculator failed.
const substituteNote = "The %s calculator failed on these answers; materials were estimated with the generic custom fabrication calculator. Review before sending."

// Calculate builds the material list for job. The templated result is
// always computed; an AI cut list replaces it only when the strategy allows
// one, the fields carry enough description and the reply validates.
func (e *Engine) Calculate(ctx context.Context, job domain.JobType, f domain.Fields) (out domain.MaterialList) {
	if !job.Known() {
		job = domain.JobCustomFab
	}
	calc := Lookup(job)
	cat := e.cat.Load()

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("calc: strategy panicked, using custom estimate", "job_type", job, "panic", fmt.Sprint(r))
			out = customFab{}.Calculate(cat, f)
			out.JobType = job
			out.Assumptions = append(out.Assumptions, fmt.Sprintf(substituteNote, job))
		}
	}()

	template := calc.Calculate(cat, f)
	template.JobType = job

	ai, ok := calc.(aiAssisted)
	if !ok {
		return template
	}
	profile := ai.cutList()
	if !profile.wants(f) {
		return template
	}

	notes := template.Assumptions[:min(len(template.Assumptions), baseNotes(calc))]
	req := domain.CompletionRequest{
		Prompt:      cutListPrompt(job, f),
		MaxTokens:   4096,
		Temperature: 0.2,
	}
	res := llm.Ask(ctx, e.completer, req, e.timeout, func(reply string) (domain.MaterialList, error) {
		cuts, err := parseCuts(reply, profile.defaultProfile)
		if err != nil {
			return domain.MaterialList{}, err
		}
		return buildFromCuts(cat, job, f, cuts, profile, notes), nil
	}, template)

	if !res.IsOk() {
		e.log.Info("calc: using templated material list", "job_type", job, "reason", res.Reason())
	} else {
		e.log.Info("calc: using AI cut list", "job_type", job, "items", len(res.Value().Items))
	}
	return res.Value()
}

// baseNotes is how many leading template assumptions are generic and carry
// over to an AI-built list.
func baseNotes(c Calculator) int {
	if n, ok := c.(interface{ leadingNotes() int }); ok {
		return n.leadingNotes()
	}
	return 1
}
