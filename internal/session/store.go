package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/questions"
)

// Store persists sessions. Update succeeds only when the stored version
// equals s.Version, and bumps it; otherwise it returns
// domain.ErrVersionConflict.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
}

// record is the stored form of a Session.
type record struct {
	ID          string                   `json:"id"`
	Owner       string                   `json:"owner,omitempty"`
	JobType     domain.JobType           `json:"job_type"`
	Description string                   `json:"description"`
	Fields      domain.Fields            `json:"fields"`
	Photos      []string                 `json:"photos"`
	Detection   questions.Detection      `json:"detection"`
	Stage       Stage                    `json:"stage"`
	Materials   *domain.MaterialList     `json:"material_list,omitempty"`
	Labor       *domain.LaborEstimate    `json:"labor_estimate,omitempty"`
	Finishing   *domain.FinishingSection `json:"finishing,omitempty"`
	Quote       *domain.PricedQuote      `json:"quote,omitempty"`
	Version     int                      `json:"version"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// MarshalJSON writes the session with its stage as a tag and the stage's
// outputs alongside.
func (s *Session) MarshalJSON() ([]byte, error) {
	r := record{
		ID:          s.ID,
		Owner:       s.Owner,
		JobType:     s.JobType,
		Description: s.Description,
		Fields:      s.Fields,
		Photos:      s.Photos,
		Detection:   s.Detection,
		Stage:       s.Stage(),
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	switch p := s.Progress.(type) {
	case Estimate:
		r.Materials = &p.Materials
	case Price:
		r.Materials, r.Labor, r.Finishing = &p.Materials, &p.Labor, &p.Finishing
	case Output:
		r.Materials, r.Labor, r.Finishing, r.Quote = &p.Materials, &p.Labor, &p.Finishing, &p.Quote
	}
	return json.Marshal(r)
}

// UnmarshalJSON rebuilds the stage payload from the tag. A stage whose
// outputs are absent is rejected.
func (s *Session) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	p, err := r.progress()
	if err != nil {
		return fmt.Errorf("session %s: %w", r.ID, err)
	}
	if r.Fields == nil {
		r.Fields = domain.Fields{}
	}
	*s = Session{
		ID:          r.ID,
		Owner:       r.Owner,
		JobType:     r.JobType,
		Description: r.Description,
		Fields:      r.Fields,
		Photos:      r.Photos,
		Detection:   r.Detection,
		Progress:    p,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	return nil
}

func (r record) progress() (Progress, error) {
	need := func(ok bool, what string) error {
		if !ok {
			return fmt.Errorf("stage %s stored without %s", r.Stage, what)
		}
		return nil
	}
	switch r.Stage {
	case StageIntake, "":
		return Intake{}, nil
	case StageClarify:
		return Clarify{}, nil
	case StageCalculate:
		return Calculate{}, nil
	case StageEstimate:
		if err := need(r.Materials != nil, NeedMaterialList); err != nil {
			return nil, err
		}
		return Estimate{Materials: *r.Materials}, nil
	case StagePrice:
		if err := need(r.Materials != nil && r.Labor != nil && r.Finishing != nil, "pipeline outputs"); err != nil {
			return nil, err
		}
		return Price{Materials: *r.Materials, Labor: *r.Labor, Finishing: *r.Finishing}, nil
	case StageOutput:
		if err := need(r.Materials != nil && r.Labor != nil && r.Finishing != nil && r.Quote != nil, "pipeline outputs"); err != nil {
			return nil, err
		}
		return Output{Materials: *r.Materials, Labor: *r.Labor, Finishing: *r.Finishing, Quote: *r.Quote}, nil
	}
	return nil, fmt.Errorf("unknown stage %q", r.Stage)
}

// MemoryStore keeps encoded sessions in a map. Each Get decodes a fresh
// copy, so callers never share state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	versions map[string]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte), versions: make(map[string]int)}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	s.Version = 1
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	m.sessions[s.ID] = data
	m.versions[s.ID] = s.Version
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.versions[s.ID]
	if !ok {
		return fmt.Errorf("session %s: %w", s.ID, domain.ErrNotFound)
	}
	if current != s.Version {
		return fmt.Errorf("session %s at version %d, stored %d: %w", s.ID, s.Version, current, domain.ErrVersionConflict)
	}
	s.Version++
	data, err := json.Marshal(s)
	if err != nil {
		s.Version--
		return fmt.Errorf("encode session: %w", err)
	}
	m.sessions[s.ID] = data
	m.versions[s.ID] = s.Version
	return nil
}
