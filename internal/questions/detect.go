package questions

import (
	"context"
	"fmt"
	"strings"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/llm"
)

// Detection is the job type inferred from a description.
type Detection struct {
	JobType    domain.JobType `json:"job_type"`
	Confidence float64        `json:"confidence"`
	Ambiguous  bool           `json:"ambiguous"`
	Source     string         `json:"source"`
}

// Declared is the detection for a job type the caller named outright.
func Declared(job domain.JobType) Detection {
	return Detection{JobType: job, Confidence: 1, Source: "declared"}
}

type keywordSet struct {
	job      domain.JobType
	keywords []string
}

// detectionKeywords is checked in order; on equal scores the first,
// longest keyword wins.
var detectionKeywords = []keywordSet{
	{domain.JobCantileverGate, []string{"cantilever", "sliding gate", "slide gate", "roller gate"}},
	{domain.JobSwingGate, []string{"swing gate", "hinged gate", "driveway gate"}},
	{domain.JobStraightRailing, []string{"railing", "handrail", "guardrail", "guard rail"}},
	{domain.JobStairRailing, []string{"stair railing", "staircase railing", "stair handrail"}},
	{domain.JobRepairDecorative, []string{"repair", "fix", "restore", "broken", "rusted", "ornamental repair"}},
	{domain.JobOrnamentalFence, []string{"fence", "fencing", "iron fence", "picket fence"}},
	{domain.JobCompleteStair, []string{"stairs", "staircase", "stringer", "steel stairs", "metal stairs"}},
	{domain.JobSpiralStair, []string{"spiral stair", "spiral staircase", "helical stair"}},
	{domain.JobWindowSecurityGrate, []string{"window guard", "security bar", "window grate", "burglar bar", "security grate"}},
	{domain.JobBalconyRailing, []string{"balcony", "juliet balcony", "balcony rail"}},
	{domain.JobFurnitureTable, []string{"table base", "table frame", "steel table", "metal table", "desk frame", "table leg"}},
	{domain.JobUtilityEnclosure, []string{"enclosure", "electrical box", "nema", "equipment enclosure", "utility box"}},
	{domain.JobBollard, []string{"bollard", "parking post", "vehicle barrier"}},
	{domain.JobRepairStructural, []string{"structural repair", "trailer repair", "chassis repair", "beam repair", "weld repair"}},
	{domain.JobCustomFab, []string{"custom", "fabricat", "one-off", "prototype"}},
	{domain.JobOffroadBumper, []string{"bumper", "front bumper", "rear bumper", "off-road bumper", "offroad bumper", "truck bumper", "jeep bumper"}},
	{domain.JobRockSlider, []string{"rock slider", "rocker panel", "rock rail", "slider", "rocker guard"}},
	{domain.JobRollCage, []string{"roll cage", "roll bar", "cage", "race cage", "utv cage"}},
	{domain.JobExhaustCustom, []string{"exhaust", "header", "downpipe", "exhaust pipe", "exhaust system", "turbo exhaust"}},
	{domain.JobTrailerFab, []string{"trailer", "flatbed trailer", "utility trailer", "trailer frame", "car hauler"}},
	{domain.JobStructuralFrame, []string{"structural", "beam", "column", "mezzanine", "canopy frame", "steel frame", "i-beam", "h-beam"}},
	{domain.JobFurnitureOther, []string{"shelf", "shelving", "bracket", "mount", "rack", "stand", "console", "bench frame"}},
	{domain.JobSignFrame, []string{"sign frame", "sign bracket", "sign post", "monument sign", "sign mount"}},
	{domain.JobLEDSignCustom, []string{"led sign", "channel letter", "neon sign", "illuminated sign", "backlit sign", "light box"}},
	{domain.JobProductFiretable, []string{"fire table", "firetable", "fire pit", "fire bowl", "firepit"}},
}

// detectByKeywords scores each keyword found in description by its word
// count. Two or more words is a confident match; one word is a guess.
func detectByKeywords(description string) (Detection, bool) {
	desc := strings.ToLower(description)
	var (
		best      domain.JobType
		bestScore int
		bestLen   int
	)
	for _, set := range detectionKeywords {
		for _, kw := range set.keywords {
			if !strings.Contains(desc, kw) {
				continue
			}
			score := len(strings.Fields(kw))
			if score > bestScore || (score == bestScore && len(kw) > bestLen) {
				best, bestScore, bestLen = set.job, score, len(kw)
			}
		}
	}
	switch {
	case bestScore >= 2:
		return Detection{JobType: best, Confidence: 0.9, Source: "keyword"}, true
	case bestScore == 1:
		return Detection{JobType: best, Confidence: 0.6, Ambiguous: true, Source: "keyword"}, true
	}
	return Detection{}, false
}

// DetectJobType infers the job type from description. A confident keyword
// match returns immediately; otherwise the service is asked, and when it
// cannot answer the keyword guess (or custom fabrication) is used.
func (x *Extractor) DetectJobType(ctx context.Context, description string) Detection {
	kw, found := detectByKeywords(description)
	if found && kw.Confidence >= 0.9 {
		return kw
	}
	fallback := kw
	if !found {
		fallback = Detection{JobType: domain.JobCustomFab, Confidence: 0, Ambiguous: true, Source: "default"}
	}

	req := domain.CompletionRequest{
		Prompt:      detectionPrompt(description),
		MaxTokens:   256,
		Temperature: 0.1,
	}
	res := llm.Ask(ctx, x.completer, req, x.textTimeout, parseDetection, fallback)
	if !res.IsOk() {
		x.log.Debug("questions: job type from keywords", "job_type", fallback.JobType, "reason", res.Reason())
	}
	return res.Value()
}

func parseDetection(reply string) (Detection, error) {
	obj, err := llm.DecodeObject(reply)
	if err != nil {
		return Detection{}, err
	}
	name, _ := obj["job_type"].(string)
	if name == "" {
		return Detection{}, fmt.Errorf("missing job_type")
	}
	conf, _ := llm.Number(obj["confidence"])
	conf = min(max(conf, 0), 1)
	ambiguous, _ := obj["ambiguous"].(bool)

	d := Detection{JobType: domain.JobType(name), Confidence: conf, Ambiguous: ambiguous, Source: "ai"}
	if !d.JobType.Known() {
		d.JobType = domain.JobCustomFab
		d.Confidence = max(conf*0.5, 0.1)
	}
	return d, nil
}

func detectionPrompt(description string) string {
	names := make([]string, len(domain.AllJobTypes))
	for i, j := range domain.AllJobTypes {
		names[i] = string(j)
	}
	return fmt.Sprintf(`You are a metal fabrication quoting assistant. A customer has described a job. Determine which job type best matches.

Available job types: %s

Customer description:
"""%s"""

RULES:
- Choose the single best matching job type from the list.
- If the description could match several types, set ambiguous to true and pick the most likely.
- confidence is 0.0 to 1.0 where 1.0 means certain.
- If nothing matches well, use "custom_fab".

Return ONLY valid JSON:
{"job_type": "one_of_the_types", "confidence": 0.85, "ambiguous": false}`, strings.Join(names, ", "), description)
}
