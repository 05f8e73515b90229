package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Simplici0/fabquote/internal/domain"
)

type customerRequest struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// apply copies the fields present in the request onto c. A present name
// must not be blank.
func (req customerRequest) apply(c domain.Customer) (domain.Customer, error) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return domain.Customer{}, errors.New("name must not be empty")
	}
	set(&c.Name, req.Name)
	set(&c.Company, req.Company)
	set(&c.Email, req.Email)
	set(&c.Phone, req.Phone)
	set(&c.Address, req.Address)
	set(&c.Notes, req.Notes)
	return c, nil
}

func (s *server) handleCustomerCreate(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if req.Name == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "name is required"})
		return
	}
	c, err := req.apply(domain.Customer{})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if c, err = s.customers.CreateCustomer(r.Context(), c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *server) handleCustomersList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	customers, err := s.customers.ListCustomers(r.Context(), limit, skip)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (s *server) handleCustomerDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	c, err := s.customers.Customer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleCustomerUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var req customerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	c, err := s.customers.Customer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if c, err = req.apply(c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if err := s.customers.UpdateCustomer(r.Context(), c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleCustomerQuotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	records, err := s.customers.QuotesForCustomer(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer_id": id, "quotes": quoteListItems(records)})
}

func (s *server) handleQuoteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var req struct {
		CustomerID int64 `json:"customer_id"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if req.CustomerID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "customer_id must be a positive integer"})
		return
	}
	if err := s.customers.SetQuoteCustomer(r.Context(), id, req.CustomerID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"quote_id": id, "customer_id": req.CustomerID})
}

// queryInt reads a non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}
