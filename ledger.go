package coverpick

import (
	"context"
	"sort"
	"sync"
)

// Operation names a metered external call.
type Operation string

const (
	OpKeywordExtraction Operation = "keywordExtraction"
	OpVisionScoring     Operation = "visionScoring"
	OpWebSearch         Operation = "webSearch"
	OpGenerativeImage   Operation = "generativeImage"
)

const tokensPerMillion = 1_000_000

// Pricing is the process-wide cost table, read-only after startup.
type Pricing struct {
	LLMInputPerMTok  float64 `yaml:"llm_input_per_mtok"`  // USD per 1M input tokens
	LLMOutputPerMTok float64 `yaml:"llm_output_per_mtok"` // USD per 1M output tokens
	WebSearchPerCall float64 `yaml:"web_search_per_call"`
	ImagePerCall     float64 `yaml:"image_per_call"`
}

// DefaultPricing approximates gemini-2.5-flash, Programmable Search and Imagen list prices.
var DefaultPricing = Pricing{
	LLMInputPerMTok:  0.30,
	LLMOutputPerMTok: 2.50,
	WebSearchPerCall: 0.005,
	ImagePerCall:     0.04,
}

// Usage is the accumulated consumption of one operation.
type Usage struct {
	Calls        int     `json:"calls"`
	InputTokens  int64   `json:"input_tokens,omitempty"`
	OutputTokens int64   `json:"output_tokens,omitempty"`
	Units        int64   `json:"units"`
	CostUSD      float64 `json:"cost_usd"`
}

// CostEntry is one line of a finalized cost breakdown.
type CostEntry struct {
	Operation Operation `json:"operation"`
	Usage
}

// CostSummary is the finalized ledger.
type CostSummary struct {
	Entries  []CostEntry `json:"entries"`
	TotalUSD float64     `json:"total_usd"`
}

// Ledger accumulates metered cost for one request. It is created per Pick,
// never shared across requests, and is safe for the request's own goroutines.
// A nil *Ledger discards everything.
type Ledger struct {
	mu      sync.Mutex
	pricing Pricing
	entries map[Operation]*Usage
}

// NewLedger creates an empty ledger priced with p.
func NewLedger(p Pricing) *Ledger {
	return &Ledger{pricing: p, entries: make(map[Operation]*Usage)}
}

// AddTokens meters one LLM call.
func (l *Ledger) AddTokens(op Operation, input, output int) {
	if l == nil {
		return
	}
	cost := float64(input)*l.pricing.LLMInputPerMTok/tokensPerMillion +
		float64(output)*l.pricing.LLMOutputPerMTok/tokensPerMillion

	l.mu.Lock()
	defer l.mu.Unlock()
	u := l.entry(op)
	u.Calls++
	u.InputTokens += int64(input)
	u.OutputTokens += int64(output)
	u.Units += int64(input + output)
	u.CostUSD += cost
}

// AddCall meters one flat-priced call (web search, image generation).
func (l *Ledger) AddCall(op Operation) {
	if l == nil {
		return
	}
	var price float64
	switch op {
	case OpWebSearch:
		price = l.pricing.WebSearchPerCall
	case OpGenerativeImage:
		price = l.pricing.ImagePerCall
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	u := l.entry(op)
	u.Calls++
	u.Units++
	u.CostUSD += price
}

func (l *Ledger) entry(op Operation) *Usage {
	u, ok := l.entries[op]
	if !ok {
		u = &Usage{}
		l.entries[op] = u
	}
	return u
}

// Summary finalizes the ledger: one entry per metered operation, sorted by
// name, and their sum.
func (l *Ledger) Summary() CostSummary {
	if l == nil {
		return CostSummary{Entries: []CostEntry{}}
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	s := CostSummary{Entries: make([]CostEntry, 0, len(l.entries))}
	for op, u := range l.entries {
		s.Entries = append(s.Entries, CostEntry{Operation: op, Usage: *u})
	}
	sort.Slice(s.Entries, func(i, j int) bool {
		return s.Entries[i].Operation < s.Entries[j].Operation
	})
	for _, e := range s.Entries {
		s.TotalUSD += e.CostUSD
	}
	return s
}

// Entry returns the usage recorded for op and whether any was recorded.
func (s CostSummary) Entry(op Operation) (Usage, bool) {
	for _, e := range s.Entries {
		if e.Operation == op {
			return e.Usage, true
		}
	}
	return Usage{}, false
}

type ledgerKey struct{}

// WithLedger attaches l to ctx so sources can meter their own calls.
func WithLedger(ctx context.Context, l *Ledger) context.Context {
	return context.WithValue(ctx, ledgerKey{}, l)
}

// LedgerFromContext returns the ledger attached to ctx, or nil.
func LedgerFromContext(ctx context.Context) *Ledger {
	l, _ := ctx.Value(ledgerKey{}).(*Ledger)
	return l
}
