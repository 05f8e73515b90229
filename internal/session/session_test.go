package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Simplici0/fabquote/internal/calc"
	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/labor"
	"github.com/Simplici0/fabquote/internal/logger"
	"github.com/Simplici0/fabquote/internal/questions"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

type replyCompleter struct{ reply string }

func (r replyCompleter) Complete(context.Context, domain.CompletionRequest) (string, error) {
	return r.reply, nil
}

type memQuotes struct {
	records []domain.QuoteRecord
}

func (m *memQuotes) AppendQuote(_ context.Context, q domain.PricedQuote, description string) (domain.QuoteRecord, error) {
	id := int64(len(m.records) + 1)
	q.QuoteID = id
	q.QuoteNumber = fmt.Sprintf("CS-2026-%04d", id)
	rec := domain.QuoteRecord{
		ID: id, Number: q.QuoteNumber, SessionID: q.SessionID, JobType: q.JobType,
		Subtotal: q.Subtotal, Total: q.Total, Description: description, Quote: q, CreatedAt: q.CreatedAt,
	}
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *memQuotes) GetQuote(_ context.Context, id int64) (domain.QuoteRecord, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.QuoteRecord{}, domain.ErrNotFound
}

func (m *memQuotes) ListQuotes(context.Context, string) ([]domain.QuoteRecord, error) {
	return m.records, nil
}

func (m *memQuotes) UpdateQuote(_ context.Context, q domain.PricedQuote) error {
	for i, r := range m.records {
		if r.ID == q.QuoteID {
			m.records[i].Quote = q
			m.records[i].Total = q.Total
			return nil
		}
	}
	return domain.ErrNotFound
}

type oneShop struct{ shop domain.Shop }

func (o oneShop) Shop(_ context.Context, email string) (domain.Shop, error) {
	if email != o.shop.Email {
		return domain.Shop{}, domain.ErrNotFound
	}
	return o.shop, nil
}

var clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, c domain.Completer, lib *questions.Library, opts ...func(*Deps)) (*Service, *MemoryStore, *memQuotes) {
	t.Helper()
	if lib == nil {
		var err error
		if lib, err = questions.Load(); err != nil {
			t.Fatalf("questions.Load: %v", err)
		}
	}
	log := logger.Nop()
	store := NewMemoryStore()
	quotes := &memQuotes{}
	d := Deps{
		Store:     store,
		Quotes:    quotes,
		Library:   lib,
		Extractor: questions.NewExtractor(c, log),
		Engine:    calc.NewEngine(catalog.Default(), log),
		Estimator: labor.NewEstimator(nil, log),
		Log:       log,
	}
	for _, o := range opts {
		o(&d)
	}
	return NewService(d, WithClock(func() time.Time { return clock })), store, quotes
}

func bollardAnswers() domain.Fields {
	return domain.Fields{
		"bollard_count":      4,
		"bollard_height":     `36" (standard)`,
		"pipe_size":          `6" schedule 40`,
		"fixed_or_removable": "Fixed: set in concrete (permanent)",
		"finish":             "Safety yellow paint",
		"installation":       "Full installation",
	}
}

func wantPrecondition(t *testing.T, err error, missing string) *PreconditionError {
	t.Helper()
	var pe *PreconditionError
	if !errors.As(err, &pe) || !errors.Is(err, ErrPrecondition) {
		t.Fatalf("err = %v, want precondition error", err)
	}
	if pe.Missing != missing {
		t.Fatalf("missing = %q, want %q", pe.Missing, missing)
	}
	return pe
}

// --- Pipeline ---

func TestPipeline_ForwardOnly(t *testing.T) {
	svc, store, quotes := newService(t, nil, nil)
	ctx := context.Background()

	started, err := svc.Start(ctx, StartRequest{Owner: "shop@example.com", JobType: domain.JobBollard, Description: "Bollards for a loading dock"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := started.Session.ID
	if started.Session.Stage() != StageClarify {
		t.Fatalf("stage = %s, want clarify", started.Session.Stage())
	}
	if started.Session.Detection.Source != "declared" {
		t.Fatalf("detection = %+v", started.Session.Detection)
	}
	if len(started.NextQuestions) == 0 || started.NextQuestions[0].ID != "bollard_count" {
		t.Fatalf("first question = %+v", started.NextQuestions)
	}

	_, err = svc.Calculate(ctx, id)
	pe := wantPrecondition(t, err, NeedRequiredFields)
	if !strings.Contains(strings.Join(pe.Fields, ","), "bollard_count") {
		t.Fatalf("missing fields = %v", pe.Fields)
	}
	_, err = svc.EstimateLabor(ctx, id)
	wantPrecondition(t, err, NeedMaterialList)
	_, err = svc.Price(ctx, id)
	wantPrecondition(t, err, NeedMaterialList)

	answered, err := svc.SubmitAnswers(ctx, id, bollardAnswers(), "")
	if err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if !answered.Completion.IsComplete || answered.Session.Stage() != StageCalculate {
		t.Fatalf("completion = %+v at %s", answered.Completion, answered.Session.Stage())
	}

	ml, err := svc.Calculate(ctx, id)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(ml.Items) == 0 || ml.JobType != domain.JobBollard {
		t.Fatalf("material list = %+v", ml)
	}
	_, err = svc.Price(ctx, id)
	wantPrecondition(t, err, NeedLaborEstimate)

	lr, err := svc.EstimateLabor(ctx, id)
	if err != nil {
		t.Fatalf("EstimateLabor: %v", err)
	}
	if len(lr.Labor.Processes) != len(labor.Processes) || lr.Labor.Source != labor.SourceRuleBased {
		t.Fatalf("labor = %+v", lr.Labor)
	}
	sum := 0.0
	for _, p := range lr.Labor.Processes {
		sum += p.Hours
	}
	nearlyEqual(t, "total hours", lr.Labor.TotalHours, domain.Round(sum, 2))
	if lr.Finishing.Method != "paint" {
		t.Fatalf("finish = %q, want paint", lr.Finishing.Method)
	}

	q, err := svc.Price(ctx, id)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if q.QuoteID != 1 || q.QuoteNumber != "CS-2026-0001" || q.SelectedMarkup != 15 {
		t.Fatalf("quote ids = %d %q markup %d", q.QuoteID, q.QuoteNumber, q.SelectedMarkup)
	}
	nearlyEqual(t, "total", q.Total, domain.Round(q.Subtotal*1.15, 2))
	nearlyEqual(t, "labor subtotal", q.Subtotals.Labor, lr.LaborCost())
	if quotes.records[0].Description != "Bollards for a loading dock" {
		t.Fatalf("description = %q", quotes.records[0].Description)
	}

	final, _ := store.Get(ctx, id)
	if final.Stage() != StageOutput {
		t.Fatalf("stage = %s, want output", final.Stage())
	}
	if got, ok := final.Quote(); !ok || got.QuoteID != 1 {
		t.Fatalf("stored quote = %+v", got)
	}

	for name, call := range map[string]func() error{
		"answer": func() error {
			_, err := svc.SubmitAnswers(ctx, id, domain.Fields{"cap_style": "Dome cap"}, "")
			return err
		},
		"calculate": func() error { _, err := svc.Calculate(ctx, id); return err },
		"estimate":  func() error { _, err := svc.EstimateLabor(ctx, id); return err },
		"price":     func() error { _, err := svc.Price(ctx, id); return err },
	} {
		if err := call(); !errors.Is(err, domain.ErrStageClosed) {
			t.Fatalf("%s after output: err = %v, want ErrStageClosed", name, err)
		}
	}
	if len(quotes.records) != 1 {
		t.Fatalf("quotes = %d, want 1", len(quotes.records))
	}
}

func TestEstimateLabor_NonFiniteHoursFallBack(t *testing.T) {
	var reply strings.Builder
	reply.WriteString("{")
	for i, p := range labor.Processes {
		if i > 0 {
			reply.WriteString(",")
		}
		hours := `1`
		if p == labor.FullWeld {
			hours = `"NaN"`
		}
		fmt.Fprintf(&reply, "%q: {\"hours\": %s, \"notes\": \"\"}", p, hours)
	}
	reply.WriteString("}")

	svc, store, _ := newService(t, nil, nil, func(d *Deps) {
		d.Estimator = labor.NewEstimator(replyCompleter{reply: reply.String()}, d.Log)
	})
	ctx := context.Background()
	started, err := svc.Start(ctx, StartRequest{Owner: "shop@example.com", JobType: domain.JobBollard, Description: "Bollards"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := started.Session.ID
	if _, err := svc.SubmitAnswers(ctx, id, bollardAnswers(), ""); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if _, err := svc.Calculate(ctx, id); err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	lr, err := svc.EstimateLabor(ctx, id)
	if err != nil {
		t.Fatalf("EstimateLabor: %v", err)
	}
	if lr.Labor.Source != labor.SourceRuleBased {
		t.Fatalf("source = %q, want rule_based", lr.Labor.Source)
	}
	if math.IsNaN(lr.Labor.TotalHours) {
		t.Fatalf("total hours is NaN")
	}
	if got, _ := store.Get(ctx, id); got.Stage() != StagePrice {
		t.Fatalf("stage = %s, want price", got.Stage())
	}
}

func TestCalculate_ExtremeAnswersStillPersist(t *testing.T) {
	svc, _, _ := newService(t, nil, nil)
	ctx := context.Background()
	started, err := svc.Start(ctx, StartRequest{Owner: "shop@example.com", JobType: domain.JobBollard, Description: "Bollards"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	answers := bollardAnswers()
	answers["bollard_count"] = 1e308
	answers["bollard_height"] = "-40"
	if _, err := svc.SubmitAnswers(ctx, started.Session.ID, answers, ""); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}

	ml, err := svc.Calculate(ctx, started.Session.ID)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if ml.TotalWeightLbs < 0 || math.IsInf(ml.TotalWeightLbs, 0) {
		t.Fatalf("weight = %v", ml.TotalWeightLbs)
	}
}

func TestSelectMarkup_KeepsSubtotal(t *testing.T) {
	svc, _, quotes := newService(t, nil, nil)
	ctx := context.Background()
	id := pricedSession(t, svc)

	_, err := svc.SelectMarkup(ctx, id, 12)
	if !errors.Is(err, domain.ErrInvalidMarkup) {
		t.Fatalf("err = %v, want ErrInvalidMarkup", err)
	}

	before, _ := svc.Get(ctx, id)
	q0, _ := before.Quote()
	q, err := svc.SelectMarkup(ctx, id, 25)
	if err != nil {
		t.Fatalf("SelectMarkup: %v", err)
	}
	nearlyEqual(t, "subtotal", q.Subtotal, q0.Subtotal)
	nearlyEqual(t, "total", q.Total, domain.Round(q.Subtotal*1.25, 2))
	nearlyEqual(t, "stored total", quotes.records[0].Total, q.Total)
}

func TestSelectMarkup_NeedsPricedQuote(t *testing.T) {
	svc, _, _ := newService(t, nil, nil)
	res, err := svc.Start(context.Background(), StartRequest{JobType: domain.JobBollard})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err = svc.SelectMarkup(context.Background(), res.Session.ID, 20)
	wantPrecondition(t, err, NeedPricedQuote)
}

func pricedSession(t *testing.T, svc *Service) string {
	t.Helper()
	ctx := context.Background()
	res, err := svc.Start(ctx, StartRequest{Owner: "shop@example.com", JobType: domain.JobBollard, Description: "bollards"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := res.Session.ID
	if _, err := svc.SubmitAnswers(ctx, id, bollardAnswers(), ""); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if _, err := svc.Calculate(ctx, id); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if _, err := svc.EstimateLabor(ctx, id); err != nil {
		t.Fatalf("EstimateLabor: %v", err)
	}
	if _, err := svc.Price(ctx, id); err != nil {
		t.Fatalf("Price: %v", err)
	}
	return id
}

func TestShopProfileRatesAndMarkup(t *testing.T) {
	shop := oneShop{shop: domain.Shop{
		Email: "shop@example.com", Rates: domain.Rates{InShop: 100, OnSite: 120}, MarkupDefault: 20,
	}}
	svc, store, _ := newService(t, nil, nil, func(d *Deps) { d.Shops = shop })
	id := pricedSession(t, svc)

	sess, _ := store.Get(context.Background(), id)
	out := sess.Progress.(Output)
	for _, p := range out.Labor.Processes {
		want := 100.0
		if p.Process == labor.SiteInstall {
			want = 120
		}
		nearlyEqual(t, p.Process+" rate", p.Rate, want)
	}
	if out.Quote.SelectedMarkup != 20 {
		t.Fatalf("markup = %d, want 20", out.Quote.SelectedMarkup)
	}
}

// --- Start ---

func TestStart_DetectsJobType(t *testing.T) {
	svc, _, _ := newService(t, nil, nil)
	tests := []struct {
		name string
		job  domain.JobType
		desc string
		want domain.JobType
	}{
		{"from description", "", "Need a cantilever gate across the driveway", domain.JobCantileverGate},
		{"unknown declared", "spaceship", "steel swing gate for the side yard", domain.JobSwingGate},
		{"nothing matches", "", "something nice", domain.JobCustomFab},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Start(context.Background(), StartRequest{JobType: tt.job, Description: tt.desc})
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if res.Session.JobType != tt.want {
				t.Fatalf("job type = %s, want %s", res.Session.JobType, tt.want)
			}
		})
	}
}

func TestStart_NoTreeStoresNothing(t *testing.T) {
	empty, err := questions.LoadFS(fstest.MapFS{})
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	ids := 0
	svc, store, _ := newService(t, nil, empty)
	svc.newID = func() string { ids++; return fmt.Sprintf("s-%d", ids) }

	_, err = svc.Start(context.Background(), StartRequest{JobType: domain.JobBollard})
	wantPrecondition(t, err, NeedQuestionTree)
	if ids != 0 || len(store.sessions) != 0 {
		t.Fatalf("session was created: ids=%d stored=%d", ids, len(store.sessions))
	}
}

func TestCalculate_UsesOpeningDescription(t *testing.T) {
	svc, store, _ := newService(t, nil, nil)
	ctx := context.Background()
	res, _ := svc.Start(ctx, StartRequest{JobType: domain.JobBollard, Description: "four bollards"})
	sess, _ := store.Get(ctx, res.Session.ID)

	f := sess.pipelineFields()
	if f["description"] != "four bollards" {
		t.Fatalf("description = %v", f["description"])
	}
	if sess.Fields.Has("description") {
		t.Fatal("opening description must not answer the description question")
	}
}

// --- Answers ---

func TestSubmitAnswers_PhotoFillsOnlyUnanswered(t *testing.T) {
	reply := `{"extracted_fields": {"bollard_count": 6, "pipe_size": "6\" schedule 80"},
		"photo_observations": "Rust at the base of two bollards", "material_detected": "mild_steel", "confidence": 0.9}`
	svc, _, _ := newService(t, replyCompleter{reply: reply}, nil)
	ctx := context.Background()
	res, err := svc.Start(ctx, StartRequest{JobType: domain.JobBollard})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	got, err := svc.SubmitAnswers(ctx, res.Session.ID, domain.Fields{"pipe_size": `4" schedule 40`}, "https://photos.example.com/dock.jpg")
	if err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	f := got.Session.Fields
	if f["pipe_size"] != `4" schedule 40` {
		t.Fatalf("explicit answer overwritten: %v", f["pipe_size"])
	}
	if n, ok := f["bollard_count"].(float64); !ok || n != 6 {
		t.Fatalf("bollard_count = %v", f["bollard_count"])
	}
	if f["photo_observations"] != "Rust at the base of two bollards" {
		t.Fatalf("observations = %v", f["photo_observations"])
	}
	if len(got.Session.Photos) != 1 || got.Photo == nil {
		t.Fatalf("photos = %v, result = %v", got.Session.Photos, got.Photo)
	}
}

func TestSubmitAnswers_EditingRestoresBranch(t *testing.T) {
	svc, _, _ := newService(t, nil, nil)
	ctx := context.Background()
	res, _ := svc.Start(ctx, StartRequest{JobType: domain.JobBollard})
	id := res.Session.ID

	got, _ := svc.SubmitAnswers(ctx, id, domain.Fields{"fixed_or_removable": "Surface mount: base plate bolted to slab"}, "")
	if !hasQuestion(got.NextQuestions, "base_plate_size") {
		t.Fatal("base_plate_size should follow a surface mount answer")
	}
	got, _ = svc.SubmitAnswers(ctx, id, domain.Fields{"fixed_or_removable": "Removable: drop-in sleeve (can be pulled out)"}, "")
	if hasQuestion(got.NextQuestions, "base_plate_size") || !hasQuestion(got.NextQuestions, "sleeve_type") {
		t.Fatalf("next = %v", got.NextQuestions)
	}
}

func hasQuestion(qs []questions.Question, id string) bool {
	for _, q := range qs {
		if q.ID == id {
			return true
		}
	}
	return false
}

// --- Store ---

func TestMemoryStore_VersionConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	s := &Session{ID: "s-1", JobType: domain.JobBollard, Fields: domain.Fields{}, Progress: Clarify{}}
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, _ := store.Get(ctx, "s-1")
	b, _ := store.Get(ctx, "s-1")
	a.Fields["finish"] = "Raw steel (no finish)"
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	b.Fields["finish"] = "Powder coat (outsourced)"
	if err := store.Update(ctx, b); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}

	got, _ := store.Get(ctx, "s-1")
	if got.Version != 2 || got.Fields["finish"] != "Raw steel (no finish)" {
		t.Fatalf("stored = v%d %v", got.Version, got.Fields)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDecode_RejectsStageWithoutOutputs(t *testing.T) {
	for _, stage := range []Stage{StageEstimate, StagePrice, StageOutput} {
		var s Session
		raw := fmt.Sprintf(`{"id":"s-1","stage":%q}`, stage)
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			t.Fatalf("%s without outputs decoded", stage)
		}
	}
	var s Session
	if err := json.Unmarshal([]byte(`{"id":"s-1","stage":"teleport"}`), &s); err == nil {
		t.Fatal("unknown stage decoded")
	}
}

func TestDecode_KeepsStagePayload(t *testing.T) {
	in := &Session{
		ID:       "s-1",
		JobType:  domain.JobBollard,
		Fields:   domain.Fields{"finish": "Raw steel (no finish)"},
		Progress: Estimate{Materials: domain.MaterialList{JobType: domain.JobBollard, TotalSqFt: 12.5}},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	ml, ok := out.Materials()
	if !ok || out.Stage() != StageEstimate {
		t.Fatalf("stage = %s", out.Stage())
	}
	nearlyEqual(t, "area", ml.TotalSqFt, 12.5)
}
