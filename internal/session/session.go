// Package session sequences the quoting pipeline. A session only moves
// forward, one stage at a time, and each stage's payload type carries
// exactly the outputs that exist at that point.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/questions"
)

// Stage names the pipeline position of a session.
type Stage string

const (
	StageIntake    Stage = "intake"
	StageClarify   Stage = "clarify"
	StageCalculate Stage = "calculate"
	StageEstimate  Stage = "estimate"
	StagePrice     Stage = "price"
	StageOutput    Stage = "output"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageIntake, StageClarify, StageCalculate, StageEstimate, StagePrice, StageOutput}

// Progress is the stage a session is in together with the outputs legal
// for that stage. The concrete types below are the only implementations.
type Progress interface {
	Stage() Stage
	progress()
}

// Intake is a session whose job type has no question tree yet.
type Intake struct{}

// Clarify is a session still collecting required answers.
type Clarify struct{}

// Calculate is a session whose required answers are all present.
type Calculate struct{}

// Estimate holds the material list awaiting a labor estimate.
type Estimate struct {
	Materials domain.MaterialList
}

// Price holds everything the pricing step reads.
type Price struct {
	Materials domain.MaterialList
	Labor     domain.LaborEstimate
	Finishing domain.FinishingSection
}

// Output is terminal and carries the persisted quote.
type Output struct {
	Materials domain.MaterialList
	Labor     domain.LaborEstimate
	Finishing domain.FinishingSection
	Quote     domain.PricedQuote
}

func (Intake) Stage() Stage    { return StageIntake }
func (Clarify) Stage() Stage   { return StageClarify }
func (Calculate) Stage() Stage { return StageCalculate }
func (Estimate) Stage() Stage  { return StageEstimate }
func (Price) Stage() Stage     { return StagePrice }
func (Output) Stage() Stage    { return StageOutput }

func (Intake) progress()    {}
func (Clarify) progress()   {}
func (Calculate) progress() {}
func (Estimate) progress()  {}
func (Price) progress()     {}
func (Output) progress()    {}

// Session is one quote conversation. Fields only grow; an edit overwrites
// a key and nothing removes one.
type Session struct {
	ID          string
	Owner       string
	JobType     domain.JobType
	Description string
	Fields      domain.Fields
	Photos      []string
	Detection   questions.Detection
	Progress    Progress
	// Version is bumped by the store on every successful update.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stage is the session's current stage.
func (s *Session) Stage() Stage {
	if s.Progress == nil {
		return StageIntake
	}
	return s.Progress.Stage()
}

// Materials returns the attached material list, if any.
func (s *Session) Materials() (domain.MaterialList, bool) {
	switch p := s.Progress.(type) {
	case Estimate:
		return p.Materials, true
	case Price:
		return p.Materials, true
	case Output:
		return p.Materials, true
	}
	return domain.MaterialList{}, false
}

// Quote returns the priced quote once the session is finished.
func (s *Session) Quote() (domain.PricedQuote, bool) {
	if p, ok := s.Progress.(Output); ok {
		return p.Quote, true
	}
	return domain.PricedQuote{}, false
}

// pipelineFields is the field set the calculators and estimator read. The
// opening description stands in for an unanswered description question.
func (s *Session) pipelineFields() domain.Fields {
	f := s.Fields.Clone()
	if v, ok := f["description"].(string); !ok || strings.TrimSpace(v) == "" {
		if s.Description != "" {
			f["description"] = s.Description
		}
	}
	return f
}

func (s *Session) quoteDescription() string {
	if v, ok := s.Fields["description"].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return s.Description
}

// Prerequisites named by PreconditionError.
const (
	NeedQuestionTree   = "question_tree"
	NeedRequiredFields = "required_fields"
	NeedMaterialList   = "material_list"
	NeedLaborEstimate  = "labor_estimate"
	NeedPricedQuote    = "priced_quote"
)

// ErrPrecondition matches every PreconditionError.
var ErrPrecondition = errors.New("stage precondition not met")

// PreconditionError names what an operation needed and did not find.
type PreconditionError struct {
	Op      string
	Stage   Stage
	Missing string
	// Fields lists the unanswered required ids when Missing is
	// NeedRequiredFields.
	Fields []string
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("%s: session at stage %s is missing %s", e.Op, e.Stage, e.Missing)
	if len(e.Fields) > 0 {
		msg += " (" + strings.Join(e.Fields, ", ") + ")"
	}
	return msg
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

func closed(op string, at Stage) error {
	return fmt.Errorf("%s: session at stage %s: %w", op, at, domain.ErrStageClosed)
}
