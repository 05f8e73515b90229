package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/questions"
	"github.com/Simplici0/fabquote/internal/session"
)

type progressView struct {
	SessionID       string                 `json:"session_id"`
	JobType         domain.JobType         `json:"job_type"`
	Stage           session.Stage          `json:"stage"`
	Version         int                    `json:"version"`
	Detection       questions.Detection    `json:"detection"`
	ExtractedFields domain.Fields          `json:"extracted_fields,omitempty"`
	Fields          domain.Fields          `json:"fields"`
	NextQuestions   []questions.Question   `json:"next_questions"`
	Completion      questions.Completion   `json:"completion"`
	Photo           *questions.PhotoResult `json:"photo,omitempty"`

	Materials *domain.MaterialList     `json:"material_list,omitempty"`
	Labor     *domain.LaborEstimate    `json:"labor_estimate,omitempty"`
	Finishing *domain.FinishingSection `json:"finishing,omitempty"`
	Quote     *domain.PricedQuote      `json:"quote,omitempty"`
}

func newProgressView(p session.Progressed) progressView {
	sess := p.Session
	v := progressView{
		SessionID:       sess.ID,
		JobType:         sess.JobType,
		Stage:           sess.Stage(),
		Version:         sess.Version,
		Detection:       sess.Detection,
		ExtractedFields: p.Extracted,
		Fields:          sess.Fields,
		NextQuestions:   p.NextQuestions,
		Completion:      p.Completion,
		Photo:           p.Photo,
	}
	if v.NextQuestions == nil {
		v.NextQuestions = []questions.Question{}
	}
	switch out := sess.Progress.(type) {
	case session.Estimate:
		v.Materials = &out.Materials
	case session.Price:
		v.Materials, v.Labor, v.Finishing = &out.Materials, &out.Labor, &out.Finishing
	case session.Output:
		v.Materials, v.Labor, v.Finishing, v.Quote = &out.Materials, &out.Labor, &out.Finishing, &out.Quote
	}
	return v
}

type laborView struct {
	SessionID string                  `json:"session_id"`
	Labor     domain.LaborEstimate    `json:"labor_estimate"`
	Finishing domain.FinishingSection `json:"finishing"`
	LaborCost float64                 `json:"labor_cost"`
}

func (s *server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	req, err := parseStartRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	p, err := s.sessions.Start(r.Context(), session.StartRequest{
		Owner:       ownerFrom(r.Context()),
		JobType:     domain.JobType(req.JobType),
		Description: req.Description,
		Photos:      req.Photos,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newProgressView(p))
}

// ownedSession writes a response and returns false unless the session in
// the path exists and belongs to the caller.
func (s *server) ownedSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	if sess.Owner != ownerFrom(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "session belongs to another shop"})
		return "", false
	}
	return id, true
}

func (s *server) handleSessionAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	req, err := parseAnswerRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	p, err := s.sessions.SubmitAnswers(r.Context(), id, req.Answers, req.PhotoURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProgressView(p))
}

func (s *server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	p, err := s.sessions.Status(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProgressView(p))
}

func (s *server) handleSessionCalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	ml, err := s.sessions.Calculate(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "material_list": ml})
}

func (s *server) handleSessionEstimate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	res, err := s.sessions.EstimateLabor(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, laborView{
		SessionID: id, Labor: res.Labor, Finishing: res.Finishing, LaborCost: res.LaborCost(),
	})
}

func (s *server) handleSessionPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	q, err := s.sessions.Price(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleSessionMarkup(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	pct, err := parseMarkupRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	q, err := s.sessions.SelectMarkup(r.Context(), id, pct)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
