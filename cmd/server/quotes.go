package main

import (
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
)

type quoteListItem struct {
	ID          int64          `json:"id"`
	Number      string         `json:"quote_number"`
	JobType     domain.JobType `json:"job_type"`
	Description string         `json:"description"`
	CustomerID  *int64         `json:"customer_id"`
	Subtotal    float64        `json:"subtotal"`
	Total       float64        `json:"total"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	records, err := s.quotes.ListQuotes(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "quotes": quoteListItems(records)})
}

func quoteListItems(records []domain.QuoteRecord) []quoteListItem {
	items := make([]quoteListItem, 0, len(records))
	for _, rec := range records {
		items = append(items, quoteListItem{
			ID:          rec.ID,
			Number:      rec.Number,
			JobType:     rec.JobType,
			Description: rec.Description,
			CustomerID:  rec.CustomerID,
			Subtotal:    rec.Subtotal,
			Total:       rec.Total,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return items
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	rec, err := s.quotes.GetQuote(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Quote)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := s.quotes.GetQuote(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(quoteText(rec)))
}

func (s *server) handleRecordActual(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	req, err := parseActualRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	a, err := s.validator.RecordActual(r.Context(), domain.Actual{
		QuoteID:        id,
		HoursByProcess: req.HoursByProcess,
		MaterialCost:   req.MaterialCost,
		Notes:          req.Notes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"quote_id":     a.QuoteID,
		"job_type":     a.JobType,
		"total_hours":  domain.Round(a.TotalHours(), 2),
		"variance_pct": a.VariancePct,
		"recorded_at":  a.RecordedAt,
	})
}

// quoteText renders the stored snapshot as a plain-text quote.
func quoteText(rec domain.QuoteRecord) string {
	q := rec.Quote
	var b strings.Builder

	fmt.Fprintf(&b, "Quote %s\n", rec.Number)
	fmt.Fprintf(&b, "Date: %s\n", rec.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Job type: %s\n", rec.JobType)
	if rec.Description != "" {
		fmt.Fprintf(&b, "Project: %s\n", rec.Description)
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	if len(q.Materials) > 0 {
		fmt.Fprintln(tw, "\nMaterials:")
		for _, m := range q.Materials {
			fmt.Fprintf(tw, "  %s\t%d x %.2f in\t%.2f\n", m.Description, m.Quantity, m.LengthInches, m.LineTotal())
		}
	}
	if len(q.Hardware) > 0 {
		fmt.Fprintln(tw, "\nHardware:")
		for _, h := range q.Hardware {
			fmt.Fprintf(tw, "  %s\t%d @ %.2f (%s)\t%.2f\n", h.Description, h.Quantity, h.UnitPrice, h.Supplier, h.LineTotal)
		}
	}
	if len(q.Consumables) > 0 {
		fmt.Fprintln(tw, "\nConsumables:")
		for _, c := range q.Consumables {
			fmt.Fprintf(tw, "  %s\t%d @ %.2f\t%.2f\n", c.Description, c.Quantity, c.UnitPrice, c.LineTotal)
		}
	}
	if len(q.Labor) > 0 {
		fmt.Fprintln(tw, "\nLabor:")
		for _, l := range q.Labor {
			if l.Hours == 0 {
				continue
			}
			fmt.Fprintf(tw, "  %s\t%.2f hrs @ %.2f\t%.2f\n", l.Process, l.Hours, l.Rate, domain.Round(l.Hours*l.Rate, 2))
		}
	}
	fmt.Fprintln(tw, "\nFinishing:")
	fmt.Fprintf(tw, "  %s\t%.1f sq ft\t%.2f\n", q.Finishing.Method, q.Finishing.AreaSqFt, q.Finishing.Total)

	fmt.Fprintln(tw, "\nSubtotals:")
	fmt.Fprintf(tw, "  Materials\t\t%.2f\n", q.Subtotals.Materials)
	fmt.Fprintf(tw, "  Hardware\t\t%.2f\n", q.Subtotals.Hardware)
	fmt.Fprintf(tw, "  Consumables\t\t%.2f\n", q.Subtotals.Consumables)
	fmt.Fprintf(tw, "  Labor\t\t%.2f\n", q.Subtotals.Labor)
	fmt.Fprintf(tw, "  Finishing\t\t%.2f\n", q.Subtotals.Finishing)
	_ = tw.Flush()

	fmt.Fprintf(&b, "\nSubtotal: %.2f\n", q.Subtotal)
	fmt.Fprintf(&b, "Markup: %d%%\n", q.SelectedMarkup)
	fmt.Fprintf(&b, "Total: %.2f\n", q.Total)

	writeList(&b, "Assumptions", q.Assumptions)
	writeList(&b, "Exclusions", q.Exclusions)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "  - %s\n", it)
	}
}

func (s *server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sh, err := s.shops.Shop(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileView(sh))
}

func (s *server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	sh, err := s.shops.Shop(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sh, err = req.apply(sh); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if err := s.shops.UpdateShop(r.Context(), sh); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileView(sh))
}

func profileView(sh domain.Shop) map[string]any {
	return map[string]any{
		"email":          sh.Email,
		"shop_name":      sh.Name,
		"rate_inshop":    sh.Rates.InShop,
		"rate_onsite":    sh.Rates.OnSite,
		"markup_default": sh.MarkupDefault,
	}
}
