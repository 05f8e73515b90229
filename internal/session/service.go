package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/fabquote/internal/calc"
	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/finishing"
	"github.com/Simplici0/fabquote/internal/labor"
	"github.com/Simplici0/fabquote/internal/logger"
	"github.com/Simplici0/fabquote/internal/pricing"
	"github.com/Simplici0/fabquote/internal/questions"
)

// Deps are the collaborators a Service drives.
type Deps struct {
	Store     Store
	Quotes    domain.QuoteStore
	Shops     domain.ShopStore
	Library   *questions.Library
	Extractor *questions.Extractor
	Engine    *calc.Engine
	Estimator *labor.Estimator
	Validator *labor.Validator
	Log       *logger.Logger
}

// Service runs the stage operations. Every operation loads the session,
// checks the stage it needs, computes, and writes back under the version
// it read.
type Service struct {
	Deps
	rates  domain.Rates
	markup int
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithDefaults sets the rates and markup used when the owner has no shop
// profile.
func WithDefaults(r domain.Rates, markup int) Option {
	return func(s *Service) {
		if r.InShop > 0 {
			s.rates.InShop = r.InShop
		}
		if r.OnSite > 0 {
			s.rates.OnSite = r.OnSite
		}
		if pricing.ValidMarkup(markup) {
			s.markup = markup
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a service. Store, Quotes, Library, Extractor, Engine and
// Estimator are required; Shops and Validator may be nil.
func NewService(d Deps, opts ...Option) *Service {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	s := &Service{
		Deps:   d,
		rates:  domain.Rates{InShop: labor.DefaultInShopRate, OnSite: labor.DefaultOnSiteRate},
		markup: pricing.DefaultMarkup,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StartRequest opens a session. JobType may be empty, in which case it is
// detected from Description.
type StartRequest struct {
	Owner       string
	JobType     domain.JobType
	Description string
	Photos      []string
}

// Progressed is the question state returned after start and each batch of
// answers.
type Progressed struct {
	Session       *Session
	Extracted     domain.Fields
	NextQuestions []questions.Question
	Completion    questions.Completion
	Photo         *questions.PhotoResult
}

// Start detects or accepts the job type, pre-fills what the description
// already states and persists the session at clarify, or at calculate when
// nothing required is left. A job type with no question tree fails and
// nothing is stored.
func (s *Service) Start(ctx context.Context, req StartRequest) (Progressed, error) {
	var det questions.Detection
	switch {
	case req.JobType != "" && req.JobType.Known():
		det = questions.Declared(req.JobType)
	default:
		if req.JobType != "" {
			s.Log.Info("session: unknown job type, detecting", "job_type", req.JobType)
		}
		det = s.Extractor.DetectJobType(ctx, req.Description)
	}

	tree, ok := s.Library.Tree(det.JobType)
	if !ok {
		return Progressed{}, &PreconditionError{Op: "start", Stage: StageIntake, Missing: NeedQuestionTree}
	}

	extracted := s.Extractor.FromText(ctx, tree, req.Description)
	fields := extracted.Clone()
	comp := tree.Completion(fields)

	now := s.now().UTC()
	sess := &Session{
		ID:          s.newID(),
		Owner:       req.Owner,
		JobType:     det.JobType,
		Description: req.Description,
		Fields:      fields,
		Photos:      append([]string(nil), req.Photos...),
		Detection:   det,
		Progress:    clarifyOrCalculate(comp),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Create(ctx, sess); err != nil {
		return Progressed{}, fmt.Errorf("start: %w", err)
	}
	s.Log.Info("session: started",
		"session_id", sess.ID, "job_type", sess.JobType, "detected_by", det.Source,
		"extracted", len(extracted), "stage", sess.Stage())

	return Progressed{
		Session:       sess,
		Extracted:     extracted,
		NextQuestions: tree.NextQuestions(fields),
		Completion:    comp,
	}, nil
}

func clarifyOrCalculate(c questions.Completion) Progress {
	if c.IsComplete {
		return Calculate{}
	}
	return Clarify{}
}

// SubmitAnswers merges answers into the session. When photoRef is set the
// photo is read and any field it confidently shows fills a key that is
// still unanswered; explicit answers always win. Answers are accepted only
// before the material list exists.
func (s *Service) SubmitAnswers(ctx context.Context, id string, answers domain.Fields, photoRef string) (Progressed, error) {
	const op = "answer"
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return Progressed{}, err
	}
	switch sess.Progress.(type) {
	case Clarify, Calculate:
	case Intake:
		return Progressed{}, &PreconditionError{Op: op, Stage: sess.Stage(), Missing: NeedQuestionTree}
	default:
		return Progressed{}, closed(op, sess.Stage())
	}
	tree, ok := s.Library.Tree(sess.JobType)
	if !ok {
		return Progressed{}, &PreconditionError{Op: op, Stage: sess.Stage(), Missing: NeedQuestionTree}
	}

	sess.Fields.Merge(answers)

	var photo *questions.PhotoResult
	if ref := strings.TrimSpace(photoRef); ref != "" {
		pr := s.Extractor.FromPhoto(ctx, tree, ref, sess.Description)
		photo = &pr
		sess.Photos = append(sess.Photos, ref)
		for k, v := range pr.Fields {
			if !sess.Fields.Has(k) {
				sess.Fields[k] = v
			}
		}
		if obs := strings.TrimSpace(pr.Observations); obs != "" {
			if prev, _ := sess.Fields["photo_observations"].(string); prev != "" {
				obs = prev + "\n" + obs
			}
			sess.Fields["photo_observations"] = obs
		}
	}

	comp := tree.Completion(sess.Fields)
	sess.Progress = clarifyOrCalculate(comp)
	sess.UpdatedAt = s.now().UTC()
	if err := s.Store.Update(ctx, sess); err != nil {
		return Progressed{}, fmt.Errorf("%s: %w", op, err)
	}
	s.Log.Debug("session: answers recorded",
		"session_id", id, "answered", len(answers), "complete", comp.IsComplete)

	return Progressed{
		Session:       sess,
		NextQuestions: tree.NextQuestions(sess.Fields),
		Completion:    comp,
		Photo:         photo,
	}, nil
}

// Status reports where a session stands without changing it.
func (s *Service) Status(ctx context.Context, id string) (Progressed, error) {
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return Progressed{}, err
	}
	out := Progressed{Session: sess, NextQuestions: []questions.Question{}}
	if tree, ok := s.Library.Tree(sess.JobType); ok {
		out.NextQuestions = tree.NextQuestions(sess.Fields)
		out.Completion = tree.Completion(sess.Fields)
	} else {
		out.Completion = questions.Completion{MissingRequired: []string{}, TotalAnswered: len(sess.Fields)}
	}
	return out, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.Store.Get(ctx, id)
}

// Calculate builds the material list. It needs every required field; it
// may be re-run while the list still awaits a labor estimate, replacing
// the previous list.
func (s *Service) Calculate(ctx context.Context, id string) (domain.MaterialList, error) {
	const op = "calculate"
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.MaterialList{}, err
	}
	switch sess.Progress.(type) {
	case Clarify, Calculate, Estimate:
	case Intake:
		return domain.MaterialList{}, &PreconditionError{Op: op, Stage: sess.Stage(), Missing: NeedQuestionTree}
	default:
		return domain.MaterialList{}, closed(op, sess.Stage())
	}
	tree, ok := s.Library.Tree(sess.JobType)
	if !ok {
		return domain.MaterialList{}, &PreconditionError{Op: op, Stage: sess.Stage(), Missing: NeedQuestionTree}
	}
	if comp := tree.Completion(sess.Fields); !comp.IsComplete {
		return domain.MaterialList{}, &PreconditionError{
			Op: op, Stage: sess.Stage(), Missing: NeedRequiredFields, Fields: comp.MissingRequired,
		}
	}

	ml := s.Engine.Calculate(ctx, sess.JobType, sess.pipelineFields())
	sess.Progress = Estimate{Materials: ml}
	sess.UpdatedAt = s.now().UTC()
	if err := s.Store.Update(ctx, sess); err != nil {
		return domain.MaterialList{}, fmt.Errorf("%s: %w", op, err)
	}
	s.Log.Info("session: materials calculated",
		"session_id", id, "job_type", sess.JobType, "items", len(ml.Items),
		"weight_lbs", ml.TotalWeightLbs, "weld_in", ml.WeldLinearInches)
	return ml, nil
}

// LaborResult is the output of the estimate stage.
type LaborResult struct {
	Labor     domain.LaborEstimate
	Finishing domain.FinishingSection
}

// LaborCost is Σ hours × rate.
func (r LaborResult) LaborCost() float64 {
	total := 0.0
	for _, p := range r.Labor.Processes {
		total += p.Hours * p.Rate
	}
	return domain.Round(total, 2)
}

// EstimateLabor attaches the labor estimate and finishing section. It
// needs the material list, and may be re-run until the session is priced.
func (s *Service) EstimateLabor(ctx context.Context, id string) (LaborResult, error) {
	const op = "estimate"
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return LaborResult{}, err
	}
	var ml domain.MaterialList
	switch p := sess.Progress.(type) {
	case Estimate:
		ml = p.Materials
	case Price:
		ml = p.Materials
	case Output:
		return LaborResult{}, closed(op, sess.Stage())
	default:
		return LaborResult{}, &PreconditionError{Op: op, Stage: sess.Stage(), Missing: NeedMaterialList}
	}

	rates, _ := s.shop(ctx, sess.Owner)
	fields := sess.pipelineFields()
	est := s.Estimator.Estimate(ctx, labor.Job{
		Type:      sess.JobType,
		Fields:    fields,
		Materials: ml,
		Rates:     rates,
	})
	est = s.Validator.Validate(ctx, est, sess.JobType)
	fin := finishing.Build(finishAnswer(fields), ml.TotalSqFt, est.Processes)

	sess.Progress = Price{Materials: ml, Labor: est, Finishing: fin}
	sess.UpdatedAt = s.now().UTC()
	if err := s.Store.Update(ctx, sess); err != nil {
		return LaborResult{}, fmt.Errorf("%s: %w", op, err)
	}
	s.Log.Info("session: labor estimated",
		"session_id", id, "source", est.Source, "hours", est.TotalHours,
		"flagged", est.Flagged, "finish", fin.Method)
	return LaborResult{Labor: est, Finishing: fin}, nil
}

// Price assembles the quote, has the quote store assign its identifier and
// finishes the session.
func (s *Service) Price(ctx context.Context, id string) (domain.PricedQuote, error) {
	const op = "price"
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.PricedQuote{}, err
	}
	var p Price
	switch cur := sess.Progress.(type) {
	case Price:
		p = cur
	case Estimate:
		return domain.PricedQuote{}, &PreconditionError{Op: op, Stage: sess.Stage(), Missing: NeedLaborEstimate}
	case Output:
		return domain.PricedQuote{}, closed(op, sess.Stage())
	default:
		return domain.PricedQuote{}, &PreconditionError{Op: op, Stage: sess.Stage(), Missing: NeedMaterialList}
	}

	_, markup := s.shop(ctx, sess.Owner)
	fields := sess.pipelineFields()
	q, err := pricing.Build(pricing.Input{
		SessionID:   sess.ID,
		JobType:     sess.JobType,
		Fields:      fields,
		Materials:   p.Materials,
		Hardware:    pricing.PriceHardware(p.Materials.Hardware),
		Consumables: pricing.Consumables(p.Materials.WeldLinearInches, p.Finishing.AreaSqFt, finishAnswer(fields)),
		Labor:       p.Labor,
		Finishing:   p.Finishing,
		Markup:      markup,
		Now:         s.now(),
	})
	if err != nil {
		return domain.PricedQuote{}, fmt.Errorf("%s: %w", op, err)
	}

	rec, err := s.Quotes.AppendQuote(ctx, q, sess.quoteDescription())
	if err != nil {
		return domain.PricedQuote{}, fmt.Errorf("%s: store quote: %w", op, err)
	}
	q = rec.Quote

	sess.Progress = Output{Materials: p.Materials, Labor: p.Labor, Finishing: p.Finishing, Quote: q}
	sess.UpdatedAt = s.now().UTC()
	if err := s.Store.Update(ctx, sess); err != nil {
		return domain.PricedQuote{}, fmt.Errorf("%s: %w", op, err)
	}
	s.Log.Info("session: quote priced",
		"session_id", id, "quote_id", q.QuoteID, "quote_number", q.QuoteNumber,
		"subtotal", q.Subtotal, "total", q.Total)
	return q, nil
}

// SelectMarkup changes the selected markup on a finished session's quote.
// The subtotal is untouched.
func (s *Service) SelectMarkup(ctx context.Context, id string, pct int) (domain.PricedQuote, error) {
	const op = "markup"
	sess, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.PricedQuote{}, err
	}
	out, ok := sess.Progress.(Output)
	if !ok {
		return domain.PricedQuote{}, &PreconditionError{Op: op, Stage: sess.Stage(), Missing: NeedPricedQuote}
	}
	q, err := pricing.WithMarkup(out.Quote, pct)
	if err != nil {
		return domain.PricedQuote{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Quotes.UpdateQuote(ctx, q); err != nil {
		return domain.PricedQuote{}, fmt.Errorf("%s: store quote: %w", op, err)
	}
	out.Quote = q
	sess.Progress = out
	sess.UpdatedAt = s.now().UTC()
	if err := s.Store.Update(ctx, sess); err != nil {
		return domain.PricedQuote{}, fmt.Errorf("%s: %w", op, err)
	}
	return q, nil
}

// shop returns the owner's rates and default markup, or the service
// defaults for whatever the profile leaves unset.
func (s *Service) shop(ctx context.Context, owner string) (domain.Rates, int) {
	rates, markup := s.rates, s.markup
	if s.Shops == nil || owner == "" {
		return rates, markup
	}
	sh, err := s.Shops.Shop(ctx, owner)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.Log.Warn("session: shop profile unavailable", "owner", owner, "error", err)
		}
		return rates, markup
	}
	if sh.Rates.InShop > 0 {
		rates.InShop = sh.Rates.InShop
	}
	if sh.Rates.OnSite > 0 {
		rates.OnSite = sh.Rates.OnSite
	}
	if pricing.ValidMarkup(sh.MarkupDefault) {
		markup = sh.MarkupDefault
	}
	return rates, markup
}

func finishAnswer(f domain.Fields) string {
	v, ok := f["finish"]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
