package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Simplici0/fabquote/internal/config"
	"github.com/Simplici0/fabquote/internal/db"
	"github.com/Simplici0/fabquote/internal/logger"
	"github.com/Simplici0/fabquote/internal/migrations"
	"github.com/Simplici0/fabquote/internal/seed"
)

const testPassword = "12345"

func newTestServer(t *testing.T, shops ...string) http.Handler {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	for _, email := range shops {
		if _, err := seed.Run(database, seed.Config{AdminEmail: email, AdminPassword: testPassword}); err != nil {
			t.Fatalf("seed %s: %v", email, err)
		}
	}

	cfg := config.Config{
		SessionSecret: "test-secret",
		RateInShop:    125,
		RateOnSite:    145,
		MarkupDefault: 15,
	}
	srv, err := newServer(context.Background(), database, cfg, logger.Nop())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return srv.routes()
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rr := httptest.NewRecorder()
	c.h.ServeHTTP(rr, req)
	return rr
}

func (c *client) decode(rr *httptest.ResponseRecorder, wantStatus int, v any) {
	c.t.Helper()
	if rr.Code != wantStatus {
		c.t.Fatalf("status = %d, want %d; body: %s", rr.Code, wantStatus, rr.Body.String())
	}
	if v == nil {
		return
	}
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		c.t.Fatalf("decode body: %v; body: %s", err, rr.Body.String())
	}
}

func login(t *testing.T, h http.Handler, email string) *client {
	t.Helper()
	c := &client{t: t, h: h}
	var out struct {
		Token string `json:"token"`
	}
	c.decode(c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": testPassword}), http.StatusOK, &out)
	if out.Token == "" {
		t.Fatalf("login returned no token")
	}
	c.token = out.Token
	return c
}

func bollardAnswers() map[string]any {
	return map[string]any{
		"bollard_count":      4,
		"bollard_height":     `36" (standard)`,
		"pipe_size":          `6" schedule 40`,
		"fixed_or_removable": "Fixed: set in concrete (permanent)",
		"finish":             "Safety yellow paint",
		"installation":       "Full installation",
	}
}

func startBollard(c *client) string {
	c.t.Helper()
	var started struct {
		SessionID string `json:"session_id"`
		Stage     string `json:"stage"`
	}
	c.decode(c.do(http.MethodPost, "/api/session/start", map[string]any{
		"description": "Four bollards in front of the loading dock",
		"job_type":    "bollard",
	}), http.StatusCreated, &started)
	if started.SessionID == "" || started.Stage != "clarify" {
		c.t.Fatalf("start = %+v, want a clarify session", started)
	}
	return started.SessionID
}

func TestPipelineOverHTTP(t *testing.T) {
	h := newTestServer(t, "shop@example.com")
	c := login(t, h, "shop@example.com")

	id := startBollard(c)

	var answered struct {
		Stage      string `json:"stage"`
		Completion struct {
			IsComplete bool `json:"is_complete"`
		} `json:"completion"`
	}
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/answer", map[string]any{"answers": bollardAnswers()}), http.StatusOK, &answered)
	if !answered.Completion.IsComplete || answered.Stage != "calculate" {
		t.Fatalf("after answers = %+v, want complete at calculate", answered)
	}

	var calculated struct {
		MaterialList struct {
			Items []json.RawMessage `json:"items"`
		} `json:"material_list"`
	}
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/calculate", nil), http.StatusOK, &calculated)
	if len(calculated.MaterialList.Items) == 0 {
		t.Fatalf("material list has no items")
	}

	var estimated struct {
		Labor struct {
			Source string `json:"source"`
		} `json:"labor_estimate"`
		LaborCost float64 `json:"labor_cost"`
	}
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/estimate", nil), http.StatusOK, &estimated)
	if estimated.Labor.Source != "rule_based" || estimated.LaborCost <= 0 {
		t.Fatalf("estimate = %+v, want a rule-based estimate with cost", estimated)
	}

	var priced struct {
		QuoteID        int64   `json:"quote_id"`
		QuoteNumber    string  `json:"quote_number"`
		Subtotal       float64 `json:"subtotal"`
		SelectedMarkup int     `json:"selected_markup_pct"`
		Total          float64 `json:"total"`
	}
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/price", nil), http.StatusOK, &priced)
	if priced.QuoteID != 1 || !strings.HasPrefix(priced.QuoteNumber, "CS-") || !strings.HasSuffix(priced.QuoteNumber, "-0001") {
		t.Fatalf("priced = %+v, want the first quote number", priced)
	}
	if priced.SelectedMarkup != 15 {
		t.Fatalf("markup = %d, want 15", priced.SelectedMarkup)
	}

	var remarked struct {
		Subtotal       float64 `json:"subtotal"`
		SelectedMarkup int     `json:"selected_markup_pct"`
	}
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/markup", map[string]int{"markup_pct": 25}), http.StatusOK, &remarked)
	if remarked.SelectedMarkup != 25 || remarked.Subtotal != priced.Subtotal {
		t.Fatalf("markup change = %+v, want 25%% on subtotal %v", remarked, priced.Subtotal)
	}

	var detail struct {
		SelectedMarkup int `json:"selected_markup_pct"`
	}
	c.decode(c.do(http.MethodGet, "/api/quotes/1", nil), http.StatusOK, &detail)
	if detail.SelectedMarkup != 25 {
		t.Fatalf("stored markup = %d, want 25", detail.SelectedMarkup)
	}

	text := c.do(http.MethodGet, "/api/quotes/1/text", nil)
	if text.Code != http.StatusOK || !strings.Contains(text.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("text status = %d, content type %q", text.Code, text.Header().Get("Content-Type"))
	}
	for _, want := range []string{"Quote " + priced.QuoteNumber, "Materials:", "Labor:", "Markup: 25%", "Total: "} {
		if !strings.Contains(text.Body.String(), want) {
			t.Fatalf("quote text missing %q:\n%s", want, text.Body.String())
		}
	}

	var listed struct {
		Quotes []struct {
			Number string `json:"quote_number"`
		} `json:"quotes"`
	}
	c.decode(c.do(http.MethodGet, "/api/quotes?q=loading+dock", nil), http.StatusOK, &listed)
	if len(listed.Quotes) != 1 || listed.Quotes[0].Number != priced.QuoteNumber {
		t.Fatalf("list = %+v, want the priced quote", listed.Quotes)
	}

	var actual struct {
		JobType     string   `json:"job_type"`
		TotalHours  float64  `json:"total_hours"`
		VariancePct *float64 `json:"variance_pct"`
	}
	c.decode(c.do(http.MethodPost, "/api/quotes/1/actuals", map[string]any{
		"hours_by_process": map[string]float64{"cut_prep": 2, "full_weld": 3.5},
	}), http.StatusCreated, &actual)
	if actual.JobType != "bollard" || actual.TotalHours != 5.5 || actual.VariancePct == nil {
		t.Fatalf("actual = %+v, want bollard with 5.5 hrs and a variance", actual)
	}

	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/price", nil), http.StatusConflict, nil)
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/answer", map[string]any{"answers": map[string]any{"cap_style": "Dome cap"}}), http.StatusConflict, nil)
}

func TestStageOutOfOrderNamesMissingInput(t *testing.T) {
	h := newTestServer(t, "shop@example.com")
	c := login(t, h, "shop@example.com")
	id := startBollard(c)

	var body errorBody
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/calculate", nil), http.StatusBadRequest, &body)
	if body.Missing != "required_fields" || len(body.Fields) == 0 {
		t.Fatalf("calculate error = %+v, want required_fields with names", body)
	}

	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/price", nil), http.StatusBadRequest, &body)
	if body.Missing != "material_list" {
		t.Fatalf("price error = %+v, want material_list", body)
	}

	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/markup", map[string]int{"markup_pct": 15}), http.StatusBadRequest, &body)
	if body.Missing != "priced_quote" {
		t.Fatalf("markup error = %+v, want priced_quote", body)
	}
}

func TestSessionsAreScopedToOwner(t *testing.T) {
	h := newTestServer(t, "a@example.com", "b@example.com")
	a := login(t, h, "a@example.com")
	b := login(t, h, "b@example.com")

	id := startBollard(a)

	b.decode(b.do(http.MethodGet, "/api/session/"+id+"/status", nil), http.StatusForbidden, nil)
	a.decode(a.do(http.MethodGet, "/api/session/"+id+"/status", nil), http.StatusOK, nil)
	a.decode(a.do(http.MethodGet, "/api/session/missing/status", nil), http.StatusNotFound, nil)
}

func TestAuthRequired(t *testing.T) {
	h := newTestServer(t, "shop@example.com")
	anon := &client{t: t, h: h}

	anon.decode(anon.do(http.MethodPost, "/api/session/start", map[string]string{"description": "gate"}), http.StatusUnauthorized, nil)
	anon.decode(anon.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "shop@example.com", "password": "wrong"}), http.StatusUnauthorized, nil)

	anon.token = "forged.token"
	anon.decode(anon.do(http.MethodGet, "/api/quotes", nil), http.StatusUnauthorized, nil)

	anon.token = ""
	anon.decode(anon.do(http.MethodGet, "/healthz", nil), http.StatusOK, nil)
}

func TestProfileUpdateDrivesPricing(t *testing.T) {
	h := newTestServer(t, "shop@example.com")
	c := login(t, h, "shop@example.com")

	var profile struct {
		ShopName      string  `json:"shop_name"`
		RateInShop    float64 `json:"rate_inshop"`
		MarkupDefault int     `json:"markup_default"`
	}
	c.decode(c.do(http.MethodPut, "/api/auth/profile", map[string]any{
		"shop_name": "Desert Iron Works", "rate_inshop": 100, "markup_default": 20,
	}), http.StatusOK, &profile)
	if profile.ShopName != "Desert Iron Works" || profile.RateInShop != 100 || profile.MarkupDefault != 20 {
		t.Fatalf("profile = %+v", profile)
	}

	c.decode(c.do(http.MethodPut, "/api/auth/profile", map[string]any{"markup_default": 17}), http.StatusBadRequest, nil)

	id := startBollard(c)
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/answer", map[string]any{"answers": bollardAnswers()}), http.StatusOK, nil)
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/calculate", nil), http.StatusOK, nil)

	var estimated struct {
		Labor struct {
			Processes []struct {
				Process string  `json:"process"`
				Rate    float64 `json:"rate"`
			} `json:"processes"`
		} `json:"labor_estimate"`
	}
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/estimate", nil), http.StatusOK, &estimated)
	for _, p := range estimated.Labor.Processes {
		if p.Process == "full_weld" && p.Rate != 100 {
			t.Fatalf("full_weld rate = %v, want 100", p.Rate)
		}
	}

	var priced struct {
		SelectedMarkup int `json:"selected_markup_pct"`
	}
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/price", nil), http.StatusOK, &priced)
	if priced.SelectedMarkup != 20 {
		t.Fatalf("markup = %d, want 20", priced.SelectedMarkup)
	}
}

func TestCustomersAndQuoteLinking(t *testing.T) {
	h := newTestServer(t, "shop@example.com")
	c := login(t, h, "shop@example.com")

	c.decode(c.do(http.MethodPost, "/api/customers", map[string]any{"company": "No Name LLC"}), http.StatusBadRequest, nil)

	var created struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	c.decode(c.do(http.MethodPost, "/api/customers", map[string]any{
		"name": "  Loading Dock Co  ", "phone": "555-0142",
	}), http.StatusCreated, &created)
	if created.ID == 0 || created.Name != "Loading Dock Co" {
		t.Fatalf("created = %+v", created)
	}

	var patched struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	path := "/api/customers/" + strconv.FormatInt(created.ID, 10)
	c.decode(c.do(http.MethodPatch, path, map[string]any{"email": "ops@dock.example"}), http.StatusOK, &patched)
	if patched.Name != "Loading Dock Co" || patched.Email != "ops@dock.example" || patched.Phone != "555-0142" {
		t.Fatalf("patched = %+v, want only email changed", patched)
	}
	c.decode(c.do(http.MethodPatch, path, map[string]any{"name": " "}), http.StatusBadRequest, nil)
	c.decode(c.do(http.MethodGet, "/api/customers/999", nil), http.StatusNotFound, nil)

	var listed struct {
		Customers []struct {
			Name string `json:"name"`
		} `json:"customers"`
	}
	c.decode(c.do(http.MethodGet, "/api/customers?limit=10&skip=0", nil), http.StatusOK, &listed)
	if len(listed.Customers) != 1 {
		t.Fatalf("customers = %+v", listed.Customers)
	}

	id := startBollard(c)
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/answer", map[string]any{"answers": bollardAnswers()}), http.StatusOK, nil)
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/calculate", nil), http.StatusOK, nil)
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/estimate", nil), http.StatusOK, nil)
	var priced struct {
		QuoteID int64 `json:"quote_id"`
	}
	c.decode(c.do(http.MethodPost, "/api/session/"+id+"/price", nil), http.StatusOK, &priced)

	quotePath := "/api/quotes/" + strconv.FormatInt(priced.QuoteID, 10) + "/customer"
	c.decode(c.do(http.MethodPut, quotePath, map[string]any{"customer_id": 999}), http.StatusNotFound, nil)
	c.decode(c.do(http.MethodPut, quotePath, map[string]any{"customer_id": created.ID}), http.StatusOK, nil)

	var quotes struct {
		Quotes []struct {
			ID         int64  `json:"id"`
			CustomerID *int64 `json:"customer_id"`
		} `json:"quotes"`
	}
	c.decode(c.do(http.MethodGet, path+"/quotes", nil), http.StatusOK, &quotes)
	if len(quotes.Quotes) != 1 || quotes.Quotes[0].ID != priced.QuoteID {
		t.Fatalf("customer quotes = %+v", quotes.Quotes)
	}
	if quotes.Quotes[0].CustomerID == nil || *quotes.Quotes[0].CustomerID != created.ID {
		t.Fatalf("customer_id = %v, want %d", quotes.Quotes[0].CustomerID, created.ID)
	}
}

func TestMaterialPriceUpdateDrivesCalculation(t *testing.T) {
	h := newTestServer(t, "shop@example.com")
	c := login(t, h, "shop@example.com")

	pipeUnitPrice := func() float64 {
		t.Helper()
		id := startBollard(c)
		c.decode(c.do(http.MethodPost, "/api/session/"+id+"/answer", map[string]any{"answers": bollardAnswers()}), http.StatusOK, nil)
		var calculated struct {
			MaterialList struct {
				Items []struct {
					Profile   string  `json:"profile"`
					UnitPrice float64 `json:"unit_price"`
				} `json:"items"`
			} `json:"material_list"`
		}
		c.decode(c.do(http.MethodPost, "/api/session/"+id+"/calculate", nil), http.StatusOK, &calculated)
		for _, it := range calculated.MaterialList.Items {
			if it.Profile == "pipe_6_sch40" {
				return it.UnitPrice
			}
		}
		t.Fatalf("no pipe_6_sch40 line in %+v", calculated.MaterialList.Items)
		return 0
	}

	before := pipeUnitPrice()

	c.decode(c.do(http.MethodPatch, "/api/materials/unobtainium_bar", map[string]any{"price_per_foot": 5}), http.StatusNotFound, nil)
	c.decode(c.do(http.MethodPatch, "/api/materials/pipe_6_sch40", map[string]any{"price_per_foot": -3}), http.StatusBadRequest, nil)
	c.decode(c.do(http.MethodPatch, "/api/materials/pipe_6_sch40", map[string]any{"supplier": "Valley Steel"}), http.StatusBadRequest, nil)

	var updated struct {
		Profile      string  `json:"profile"`
		PricePerFoot float64 `json:"price_per_foot"`
		Source       string  `json:"source"`
	}
	c.decode(c.do(http.MethodPatch, "/api/materials/pipe_6_sch40", map[string]any{
		"price_per_foot": 24, "supplier": "Valley Steel",
	}), http.StatusOK, &updated)
	if updated.PricePerFoot != 24 || updated.Source != "Valley Steel" {
		t.Fatalf("updated = %+v", updated)
	}

	if after := pipeUnitPrice(); after != before*2 {
		t.Fatalf("pipe unit price = %v after update, want %v", after, before*2)
	}

	var listed struct {
		Materials []struct {
			Profile string `json:"profile"`
			Source  string `json:"source"`
		} `json:"materials"`
	}
	c.decode(c.do(http.MethodGet, "/api/materials", nil), http.StatusOK, &listed)
	found := false
	for _, m := range listed.Materials {
		if m.Profile == "pipe_6_sch40" {
			found = m.Source == "Valley Steel"
		}
	}
	if !found {
		t.Fatalf("materials list does not show the seeded pipe price")
	}
}
