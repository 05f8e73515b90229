package questions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/llm"
	"github.com/Simplici0/fabquote/internal/logger"
)

const (
	// TextConfidence is the confidence an extracted answer must exceed.
	TextConfidence = 0.9
	// PhotoConfidence is the overall confidence a photo reading needs
	// before its fields are used.
	PhotoConfidence = 0.8
)

// Extractor lifts answers out of prose and photos through the
// text-completion service. Every method fails soft: a missing service or a
// bad reply yields an empty result, never an error.
type Extractor struct {
	completer    domain.Completer
	log          *logger.Logger
	textTimeout  time.Duration
	photoTimeout time.Duration
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithTimeouts sets the deadlines for text and photo requests.
func WithTimeouts(text, photo time.Duration) ExtractorOption {
	return func(x *Extractor) {
		if text > 0 {
			x.textTimeout = text
		}
		if photo > 0 {
			x.photoTimeout = photo
		}
	}
}

// NewExtractor creates an extractor. A nil completer is allowed and makes
// every extraction empty.
func NewExtractor(c domain.Completer, log *logger.Logger, opts ...ExtractorOption) *Extractor {
	x := &Extractor{
		completer:    c,
		log:          log,
		textTimeout:  30 * time.Second,
		photoTimeout: 60 * time.Second,
	}
	for _, o := range opts {
		o(x)
	}
	return x
}

// FromText returns the answers the customer clearly stated in description.
// Only values reported above TextConfidence are kept, and measurement
// fields need an explicit number.
func (x *Extractor) FromText(ctx context.Context, t *Tree, description string) domain.Fields {
	if strings.TrimSpace(description) == "" {
		return domain.Fields{}
	}
	req := domain.CompletionRequest{
		Prompt:      extractionPrompt(t, description),
		MaxTokens:   1024,
		Temperature: 0.1,
	}
	res := llm.Ask(ctx, x.completer, req, x.textTimeout, func(reply string) (domain.Fields, error) {
		obj, err := llm.DecodeObject(reply)
		if err != nil {
			return nil, err
		}
		return t.acceptScored(obj), nil
	}, domain.Fields{})
	if !res.IsOk() {
		x.log.Debug("questions: text extraction skipped", "job_type", t.JobType, "reason", res.Reason())
	}
	return res.Value()
}

// acceptScored keeps entries shaped {"value": v, "confidence": c} with c
// above TextConfidence.
func (t *Tree) acceptScored(obj map[string]any) domain.Fields {
	out := domain.Fields{}
	for id, raw := range obj {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		conf, ok := llm.Number(entry["confidence"])
		if !ok || conf <= TextConfidence {
			continue
		}
		if v, ok := t.acceptValue(id, entry["value"]); ok {
			out[id] = v
		}
	}
	return out
}

// acceptValue checks a proposed answer against the question it fills.
func (t *Tree) acceptValue(id string, v any) (any, bool) {
	q, ok := t.Question(id)
	if !ok || q.Kind == KindPhoto || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	switch q.Kind {
	case KindMeasurement, KindNumber:
		if !explicitNumber(v) {
			return nil, false
		}
	}
	return v, true
}

// explicitNumber reports whether v is, or literally contains, a number.
// "big" and "standard" are not measurements.
func explicitNumber(v any) bool {
	switch x := v.(type) {
	case float64, int:
		return true
	case string:
		return strings.ContainsAny(x, "0123456789")
	}
	return false
}

func extractionPrompt(t *Tree, description string) string {
	return fmt.Sprintf(`You are a metal fabrication quoting assistant. A customer is requesting a quote for a %s (%s).

The customer provided this description:
"""%s"""

Below are the fields we need for this job type. Extract any values the customer has CLEARLY stated.

RULES:
- For measurement fields, only extract a specific number the customer gave (e.g. "10 feet" gives 10). Never infer a measurement from words like "big" or "standard".
- For choice fields, map the customer's words to the closest option.
- If a field is not mentioned or unclear, leave it out.
- Report your confidence for each value from 0.0 to 1.0.

FIELDS:
%s
Return ONLY a JSON object shaped {"field_id": {"value": ..., "confidence": 0.95}}. Return {} if nothing can be extracted.`,
		t.DisplayName, t.JobType, description, t.fieldGuide())
}

// ── Photos ───────────────────────────────────────────────────────

// PhotoResult is what a vision pass saw in one photo.
type PhotoResult struct {
	Fields       domain.Fields     `json:"extracted_fields"`
	Observations string            `json:"photo_observations"`
	Material     string            `json:"material_detected"`
	Dimensions   map[string]string `json:"dimensions_detected"`
	Damage       string            `json:"damage_assessment"`
	Confidence   float64           `json:"confidence"`
}

func emptyPhotoResult() PhotoResult {
	return PhotoResult{
		Fields:       domain.Fields{},
		Observations: "Photo received. Vision processing unavailable; photo stored for reference.",
		Material:     "unknown",
		Dimensions:   map[string]string{},
		Damage:       "N/A",
	}
}

// FromPhoto reads the photo at url. Fields are only returned when the
// overall confidence reaches PhotoConfidence; observations are returned
// regardless so they can feed later stages.
func (x *Extractor) FromPhoto(ctx context.Context, t *Tree, url, description string) PhotoResult {
	if strings.TrimSpace(url) == "" {
		return emptyPhotoResult()
	}
	req := domain.CompletionRequest{
		Prompt:      visionPrompt(t, description),
		MaxTokens:   2048,
		Temperature: 0.1,
		ImageURLs:   []string{url},
	}
	res := llm.Ask(ctx, x.completer, req, x.photoTimeout, func(reply string) (PhotoResult, error) {
		obj, err := llm.DecodeObject(reply)
		if err != nil {
			return PhotoResult{}, err
		}
		return t.photoResult(obj), nil
	}, emptyPhotoResult())
	if !res.IsOk() {
		x.log.Debug("questions: photo extraction skipped", "job_type", t.JobType, "reason", res.Reason())
	}
	return res.Value()
}

func (t *Tree) photoResult(obj map[string]any) PhotoResult {
	r := emptyPhotoResult()
	r.Observations = stringOr(obj["photo_observations"], "")
	r.Material = stringOr(obj["material_detected"], "unknown")
	r.Damage = stringOr(obj["damage_assessment"], "N/A")
	if c, ok := llm.Number(obj["confidence"]); ok {
		r.Confidence = min(max(c, 0), 1)
	}
	if dims, ok := obj["dimensions_detected"].(map[string]any); ok {
		for k, v := range dims {
			r.Dimensions[k] = fmt.Sprint(v)
		}
	}
	if r.Confidence < PhotoConfidence {
		return r
	}
	if fields, ok := obj["extracted_fields"].(map[string]any); ok {
		for id, v := range fields {
			if val, ok := t.acceptValue(id, v); ok {
				r.Fields[id] = val
			}
		}
	}
	return r
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

func visionPrompt(t *Tree, description string) string {
	return fmt.Sprintf(`You are analyzing a photo for a metal fabrication quoting system.
Job type: %s
Additional context from user: %s

Look for:
1. MEASUREMENTS: tape measures or rulers in frame. Report readings with units.
2. MATERIAL: orange/red rust is mild steel or wrought iron; shiny silver with no rust is stainless or aluminum; dull grey is galvanized; uniform color is painted or powder coated.
3. DIMENSIONS from context: door frames are about 36" x 80", ceilings 8-9 ft, a hand span about 8".
4. CONDITION (repairs): cracks, weld failures, rust-through, deformation, missing sections.
5. HARDWARE: hinges, latches, operators, brackets.
6. DESIGN: picket style and spacing, infill pattern, decorative elements, frame profile.

Fields for this job type:
%s
Return ONLY a JSON object:
{"extracted_fields": {"field_id": "value"}, "photo_observations": "...", "material_detected": "mild_steel|stainless|aluminum|galvanized|unknown", "dimensions_detected": {"what": "value with units"}, "damage_assessment": "... or N/A", "confidence": 0.0}

Only include fields you are confident about. Do not guess measurements.`,
		t.JobType, description, t.fieldGuide())
}
