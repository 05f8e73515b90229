package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

type priceBook interface {
	SeededPrices(ctx context.Context) (map[string]catalog.SeededPrice, error)
	SetSeededPrice(ctx context.Context, profile string, p catalog.SeededPrice) error
}

type materialPrice struct {
	Profile      string  `json:"profile"`
	PricePerFoot float64 `json:"price_per_foot"`
	Source       string  `json:"source"`
}

func (s *server) handleMaterialsList(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.Catalog()
	profiles := cat.Profiles()
	prices := make([]materialPrice, 0, len(profiles))
	for _, p := range profiles {
		price, source := cat.PriceSource(p)
		prices = append(prices, materialPrice{Profile: p, PricePerFoot: price, Source: source})
	}
	writeJSON(w, http.StatusOK, map[string]any{"materials": prices})
}

type materialPriceRequest struct {
	PricePerFoot *float64 `json:"price_per_foot"`
	Supplier     string   `json:"supplier"`
}

func parseMaterialPriceRequest(w http.ResponseWriter, r *http.Request) (catalog.SeededPrice, error) {
	var req materialPriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return catalog.SeededPrice{}, err
	}
	if req.PricePerFoot == nil {
		return catalog.SeededPrice{}, errors.New("price_per_foot is required")
	}
	p := *req.PricePerFoot
	if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
		return catalog.SeededPrice{}, errors.New("price_per_foot must be a positive number")
	}
	return catalog.SeededPrice{PricePerFoot: p, Supplier: strings.TrimSpace(req.Supplier)}, nil
}

// handleMaterialUpdate stores a supplier price for a known profile and
// swaps a rebuilt catalog into the engine, so later calculations use it.
func (s *server) handleMaterialUpdate(w http.ResponseWriter, r *http.Request) {
	profile := strings.TrimSpace(chi.URLParam(r, "profile"))
	if _, known := s.engine.Catalog().LookupPricePerFoot(profile); !known {
		s.writeError(w, r, fmt.Errorf("material %q: %w", profile, domain.ErrNotFound))
		return
	}
	price, err := parseMaterialPriceRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	s.pricesMu.Lock()
	defer s.pricesMu.Unlock()
	if err := s.prices.SetSeededPrice(r.Context(), profile, price); err != nil {
		s.writeError(w, r, err)
		return
	}
	seeded, err := s.prices.SeededPrices(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cat := catalog.New(catalog.WithSeededPrices(seeded))
	s.engine.SetCatalog(cat)
	s.log.Info("catalog: price updated", "profile", profile, "price_per_foot", price.PricePerFoot, "supplier", price.Supplier)

	current, source := cat.PriceSource(profile)
	writeJSON(w, http.StatusOK, materialPrice{Profile: profile, PricePerFoot: current, Source: source})
}
