// Package questions holds the per-job-type intake trees and the engine that
// decides which questions are still open, how complete a session is, and
// which answers can be lifted from a free-text description or a photo.
package questions

import (
	"embed"
	"fmt"
	"io/fs"
	"math"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Simplici0/fabquote/internal/domain"
)

// Kind is how a question is answered.
type Kind string

const (
	KindMeasurement Kind = "measurement"
	KindChoice      Kind = "choice"
	KindMultiChoice Kind = "multi_choice"
	KindText        Kind = "text"
	KindPhoto       Kind = "photo"
	KindNumber      Kind = "number"
	KindBoolean     Kind = "boolean"
)

func (k Kind) valid() bool {
	switch k {
	case KindMeasurement, KindChoice, KindMultiChoice, KindText, KindPhoto, KindNumber, KindBoolean:
		return true
	}
	return false
}

// Question is one intake question. Branches maps an answer of this
// question to the follow-up ids it unlocks.
type Question struct {
	ID        string              `yaml:"id" json:"id"`
	Text      string              `yaml:"text" json:"text"`
	Kind      Kind                `yaml:"type" json:"type"`
	Options   []string            `yaml:"options,omitempty" json:"options,omitempty"`
	Unit      string              `yaml:"unit,omitempty" json:"unit,omitempty"`
	Required  bool                `yaml:"required,omitempty" json:"required"`
	Hint      string              `yaml:"hint,omitempty" json:"hint,omitempty"`
	DependsOn string              `yaml:"depends_on,omitempty" json:"-"`
	Branches  map[string][]string `yaml:"branches,omitempty" json:"-"`
}

// Tree is the ordered question set for one job type.
type Tree struct {
	JobType        domain.JobType `yaml:"job_type"`
	Version        int            `yaml:"version"`
	DisplayName    string         `yaml:"display_name"`
	Category       string         `yaml:"category"`
	RequiredFields []string       `yaml:"required_fields"`
	Questions      []Question     `yaml:"questions"`

	index map[string]int
}

// Question returns the question with id.
func (t *Tree) Question(id string) (Question, bool) {
	i, ok := t.index[id]
	if !ok {
		return Question{}, false
	}
	return t.Questions[i], true
}

// validate checks that every reference in the tree resolves and builds the
// id index.
func (t *Tree) validate() error {
	if !t.JobType.Known() {
		return fmt.Errorf("unknown job type %q", t.JobType)
	}
	if len(t.Questions) == 0 {
		return fmt.Errorf("%s: no questions", t.JobType)
	}
	t.index = make(map[string]int, len(t.Questions))
	for i, q := range t.Questions {
		if q.ID == "" {
			return fmt.Errorf("%s: question %d has no id", t.JobType, i)
		}
		if _, dup := t.index[q.ID]; dup {
			return fmt.Errorf("%s: duplicate question %q", t.JobType, q.ID)
		}
		if !q.Kind.valid() {
			return fmt.Errorf("%s: question %q has invalid type %q", t.JobType, q.ID, q.Kind)
		}
		if (q.Kind == KindChoice || q.Kind == KindMultiChoice) && len(q.Options) == 0 {
			return fmt.Errorf("%s: choice question %q has no options", t.JobType, q.ID)
		}
		t.index[q.ID] = i
	}
	for _, q := range t.Questions {
		if q.DependsOn != "" {
			if _, ok := t.index[q.DependsOn]; !ok {
				return fmt.Errorf("%s: %q depends on unknown question %q", t.JobType, q.ID, q.DependsOn)
			}
		}
		for answer, ids := range q.Branches {
			for _, id := range ids {
				if _, ok := t.index[id]; !ok {
					return fmt.Errorf("%s: %q branch %q activates unknown question %q", t.JobType, q.ID, answer, id)
				}
			}
		}
	}
	for _, id := range t.RequiredFields {
		if _, ok := t.index[id]; !ok {
			return fmt.Errorf("%s: required field %q has no question", t.JobType, id)
		}
	}
	return nil
}

// NextQuestions returns, in tree order, every unanswered question whose
// parent (if any) is answered and, when that parent branches, whose id is
// in the branch picked by the parent's current answer. It reads answered
// only, so editing an earlier answer changes the result without any other
// bookkeeping.
func (t *Tree) NextQuestions(answered domain.Fields) []Question {
	active := make(map[string]bool)
	for _, q := range t.Questions {
		if len(q.Branches) == 0 {
			continue
		}
		v, ok := answered[q.ID]
		if !ok {
			continue
		}
		for _, id := range q.Branches[answerKey(v)] {
			active[id] = true
		}
	}

	out := make([]Question, 0, len(t.Questions))
	for _, q := range t.Questions {
		if answered.Has(q.ID) {
			continue
		}
		if q.DependsOn != "" {
			if !answered.Has(q.DependsOn) {
				continue
			}
			if parent, _ := t.Question(q.DependsOn); len(parent.Branches) > 0 && !active[q.ID] {
				continue
			}
		}
		out = append(out, q)
	}
	return out
}

// answerKey renders an answer the way branch keys are written.
func answerKey(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(x)
	}
}

// Completion reports how many of the tree's required fields are answered.
type Completion struct {
	IsComplete       bool     `json:"is_complete"`
	RequiredTotal    int      `json:"required_total"`
	RequiredAnswered int      `json:"required_answered"`
	MissingRequired  []string `json:"required_missing"`
	TotalAnswered    int      `json:"total_answered"`
	Percent          float64  `json:"completion_pct"`
}

// Completion is complete exactly when every required id is a key of
// answered.
func (t *Tree) Completion(answered domain.Fields) Completion {
	missing := make([]string, 0)
	for _, id := range t.RequiredFields {
		if !answered.Has(id) {
			missing = append(missing, id)
		}
	}
	total := len(t.RequiredFields)
	done := total - len(missing)
	return Completion{
		IsComplete:       len(missing) == 0,
		RequiredTotal:    total,
		RequiredAnswered: done,
		MissingRequired:  missing,
		TotalAnswered:    len(answered),
		Percent:          math.Round(float64(done)/float64(max(total, 1))*1000) / 10,
	}
}

// fieldGuide lists the tree's questions for an extraction prompt.
func (t *Tree) fieldGuide() string {
	var b strings.Builder
	for _, q := range t.Questions {
		if q.Kind == KindPhoto {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s", q.ID, q.Text)
		switch q.Kind {
		case KindChoice, KindMultiChoice:
			fmt.Fprintf(&b, " Options: %s", strings.Join(q.Options, ", "))
		case KindMeasurement:
			unit := q.Unit
			if unit == "" {
				unit = "units"
			}
			fmt.Fprintf(&b, " (numeric value in %s)", unit)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ── Library ──────────────────────────────────────────────────────

//go:embed trees/*.yaml
var treeFiles embed.FS

// Library is the immutable set of loaded trees. It is built once at
// startup and shared by every session.
type Library struct {
	trees map[domain.JobType]*Tree
}

// Load parses the embedded trees.
func Load() (*Library, error) {
	sub, err := fs.Sub(treeFiles, "trees")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS parses every *.yaml file at the root of fsys. Each file must hold
// one valid tree named after its job type.
func LoadFS(fsys fs.FS) (*Library, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	lib := &Library{trees: make(map[domain.JobType]*Tree, len(names))}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var t Tree
		if err := yaml.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if want := strings.TrimSuffix(path.Base(name), ".yaml"); string(t.JobType) != want {
			return nil, fmt.Errorf("%s: declares job type %q", name, t.JobType)
		}
		lib.trees[t.JobType] = &t
	}
	return lib, nil
}

// Tree returns the tree for job.
func (l *Library) Tree(job domain.JobType) (*Tree, bool) {
	t, ok := l.trees[job]
	return t, ok
}

// JobTypes lists the job types that have a tree, sorted.
func (l *Library) JobTypes() []domain.JobType {
	out := make([]domain.JobType, 0, len(l.trees))
	for j := range l.trees {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i] < out[k] })
	return out
}
