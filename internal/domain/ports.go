package domain

import (
	"context"
	"time"
)

// CompletionRequest is a single prompt sent to the text-completion service.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	// ImageURLs are attached as image blocks alongside the prompt.
	ImageURLs []string
}

// Completer sends prompts to an external text-completion service. Callers
// treat any error, or any reply they cannot parse, as "use the fallback".
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// QuoteRecord is a persisted priced quote.
type QuoteRecord struct {
	ID          int64
	Number      string
	SessionID   string
	JobType     JobType
	Subtotal    float64
	Total       float64
	Description string
	// CustomerID is nil until the quote is linked to a customer.
	CustomerID *int64
	Quote      PricedQuote
	CreatedAt  time.Time
}

// QuoteStore appends priced quotes and assigns their identifiers.
type QuoteStore interface {
	AppendQuote(ctx context.Context, q PricedQuote, description string) (QuoteRecord, error)
	GetQuote(ctx context.Context, id int64) (QuoteRecord, error)
	ListQuotes(ctx context.Context, query string) ([]QuoteRecord, error)
	// UpdateQuote replaces the stored snapshot of q, keyed by q.QuoteID.
	UpdateQuote(ctx context.Context, q PricedQuote) error
}

// Actual is the hours a finished job really took, recorded after the fact.
type Actual struct {
	QuoteID        int64
	JobType        JobType
	HoursByProcess map[string]float64
	MaterialCost   float64
	Notes          string
	VariancePct    *float64
	RecordedAt     time.Time
}

// TotalHours sums the recorded process hours.
func (a Actual) TotalHours() float64 {
	total := 0.0
	for _, h := range a.HoursByProcess {
		total += h
	}
	return total
}

// HistoryStore holds recorded actuals for variance checks.
type HistoryStore interface {
	RecordActual(ctx context.Context, a Actual) error
	ActualsForJobType(ctx context.Context, jobType JobType) ([]Actual, error)
}

// Shop is the quoting profile of one shop user.
type Shop struct {
	Email         string
	Name          string
	Rates         Rates
	MarkupDefault int
}

// ShopStore looks up shop profiles by login email.
type ShopStore interface {
	Shop(ctx context.Context, email string) (Shop, error)
}

// Customer is someone a shop quotes for.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerStore keeps the customer book and links quotes to it.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	Customer(ctx context.Context, id int64) (Customer, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]Customer, error)
	UpdateCustomer(ctx context.Context, c Customer) error
	SetQuoteCustomer(ctx context.Context, quoteID, customerID int64) error
	QuotesForCustomer(ctx context.Context, customerID int64) ([]QuoteRecord, error)
}
