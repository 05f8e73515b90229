package main

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strings"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/labor"
	"github.com/Simplici0/fabquote/internal/pricing"
)

type startRequest struct {
	Description string   `json:"description"`
	JobType     string   `json:"job_type"`
	Photos      []string `json:"photos"`
}

func parseStartRequest(w http.ResponseWriter, r *http.Request) (startRequest, error) {
	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return startRequest{}, err
	}
	req.Description = strings.TrimSpace(req.Description)
	req.JobType = strings.TrimSpace(req.JobType)
	if req.Description == "" {
		return startRequest{}, errors.New("description is required")
	}
	photos := req.Photos[:0]
	for _, p := range req.Photos {
		if p = strings.TrimSpace(p); p != "" {
			photos = append(photos, p)
		}
	}
	req.Photos = photos
	return req, nil
}

type answerRequest struct {
	Answers  domain.Fields `json:"answers"`
	PhotoURL string        `json:"photo_url"`
}

func parseAnswerRequest(w http.ResponseWriter, r *http.Request) (answerRequest, error) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return answerRequest{}, err
	}
	req.PhotoURL = strings.TrimSpace(req.PhotoURL)
	if len(req.Answers) == 0 && req.PhotoURL == "" {
		return answerRequest{}, errors.New("answers or photo_url is required")
	}
	if req.Answers == nil {
		req.Answers = domain.Fields{}
	}
	for k := range req.Answers {
		if strings.TrimSpace(k) == "" {
			return answerRequest{}, errors.New("answer keys must not be empty")
		}
	}
	return req, nil
}

type markupRequest struct {
	MarkupPct *int `json:"markup_pct"`
}

func parseMarkupRequest(w http.ResponseWriter, r *http.Request) (int, error) {
	var req markupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return 0, err
	}
	if req.MarkupPct == nil {
		return 0, errors.New("markup_pct is required")
	}
	if !pricing.ValidMarkup(*req.MarkupPct) {
		return 0, fmt.Errorf("markup %d%%: %w", *req.MarkupPct, domain.ErrInvalidMarkup)
	}
	return *req.MarkupPct, nil
}

type actualRequest struct {
	HoursByProcess map[string]float64 `json:"hours_by_process"`
	MaterialCost   float64            `json:"material_cost"`
	Notes          string             `json:"notes"`
}

func parseActualRequest(w http.ResponseWriter, r *http.Request) (actualRequest, error) {
	var req actualRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return actualRequest{}, err
	}
	if len(req.HoursByProcess) == 0 {
		return actualRequest{}, errors.New("hours_by_process is required")
	}
	for process, hours := range req.HoursByProcess {
		if !slices.Contains(labor.Processes, process) {
			return actualRequest{}, fmt.Errorf("unknown process %q", process)
		}
		if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
			return actualRequest{}, fmt.Errorf("%s hours must be a non-negative number", process)
		}
	}
	if req.MaterialCost < 0 {
		return actualRequest{}, errors.New("material_cost must be non-negative")
	}
	req.Notes = strings.TrimSpace(req.Notes)
	return req, nil
}

type profileRequest struct {
	ShopName      *string  `json:"shop_name"`
	RateInShop    *float64 `json:"rate_inshop"`
	RateOnSite    *float64 `json:"rate_onsite"`
	MarkupDefault *int     `json:"markup_default"`
}

// apply overlays the fields the caller sent onto sh.
func (p profileRequest) apply(sh domain.Shop) (domain.Shop, error) {
	if p.ShopName != nil {
		sh.Name = strings.TrimSpace(*p.ShopName)
	}
	if p.RateInShop != nil {
		if *p.RateInShop <= 0 {
			return domain.Shop{}, errors.New("rate_inshop must be positive")
		}
		sh.Rates.InShop = *p.RateInShop
	}
	if p.RateOnSite != nil {
		if *p.RateOnSite <= 0 {
			return domain.Shop{}, errors.New("rate_onsite must be positive")
		}
		sh.Rates.OnSite = *p.RateOnSite
	}
	if p.MarkupDefault != nil {
		if !pricing.ValidMarkup(*p.MarkupDefault) {
			return domain.Shop{}, fmt.Errorf("markup %d%%: %w", *p.MarkupDefault, domain.ErrInvalidMarkup)
		}
		sh.MarkupDefault = *p.MarkupDefault
	}
	return sh, nil
}
