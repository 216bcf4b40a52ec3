package coverpick

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// verdict is a scripted judge reply for one candidate.
type verdict struct {
	score     int
	violation bool
	err       error  // returned by the model call
	raw       string // overrides the JSON reply when set
}

// fakeModel scripts planner and judge replies. Judge verdicts are keyed by
// candidate attribution, which the judge prompt includes.
type fakeModel struct {
	plan    string
	planErr error
	tokens  [2]int // input, output reported per call

	mu       sync.Mutex
	verdicts map[string]verdict
	prompts  []string

	planCalls  atomic.Int32
	judgeCalls atomic.Int32
}

func (m *fakeModel) Complete(_ context.Context, req CompletionRequest) (*Completion, error) {
	in, out := m.tokens[0], m.tokens[1]
	if req.System == PlannerPrompt {
		m.planCalls.Add(1)
		m.mu.Lock()
		m.prompts = append(m.prompts, req.Prompt)
		m.mu.Unlock()
		if m.planErr != nil {
			return nil, m.planErr
		}
		return &Completion{Text: m.plan, InputTokens: in, OutputTokens: out}, nil
	}

	m.judgeCalls.Add(1)
	if req.Image == nil || len(req.Image.Data) == 0 {
		return nil, errors.New("judge called without image")
	}
	m.mu.Lock()
	var v verdict
	found := false
	for attr, vv := range m.verdicts {
		if strings.Contains(req.Prompt, "("+attr+")") {
			v, found = vv, true
			break
		}
	}
	m.mu.Unlock()
	if !found {
		return nil, fmt.Errorf("no verdict scripted for prompt %q", req.Prompt)
	}
	if v.err != nil {
		return nil, v.err
	}
	text := v.raw
	if text == "" {
		text = fmt.Sprintf("```json\n{\"score\": %d, \"rationale\": \"scripted\", \"violates_brand_safety\": %t}\n```", v.score, v.violation)
	}
	return &Completion{Text: text, InputTokens: in, OutputTokens: out}, nil
}

// fakeSource returns scripted candidates per query.
type fakeSource struct {
	kind     SourceKind
	disabled bool
	results  map[string][]Candidate
	err      error
	meter    bool // meter a webSearch call like WebSearchSource

	calls atomic.Int32
}

func (s *fakeSource) Kind() SourceKind { return s.kind }
func (s *fakeSource) Enabled() bool    { return !s.disabled }

func (s *fakeSource) Search(ctx context.Context, query string) ([]Candidate, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if s.meter {
		LedgerFromContext(ctx).AddCall(OpWebSearch)
	}
	return s.results[query], nil
}

// fakeGenerator returns a fixed URL or error.
type fakeGenerator struct {
	url     string
	err     error
	prompts []string
	calls   atomic.Int32
}

func (g *fakeGenerator) Create(_ context.Context, prompt, _ string) (string, error) {
	g.calls.Add(1)
	g.prompts = append(g.prompts, prompt)
	return g.url, g.err
}

// candidates builds n decodable candidates of kind k whose attributions are
// prefix0..prefixN-1.
func candidates(t *testing.T, k SourceKind, prefix string, n int) []Candidate {
	t.Helper()
	img := EncodeDataURL(testJPEG(t, 64, 36), "image/jpeg")
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{URL: img, Kind: k, Attribution: fmt.Sprintf("%s%d", prefix, i)}
	}
	return out
}

// planJSON renders a planner reply.
func planJSON(t *testing.T, entity string, threshold *int, queries ...QueryVariant) string {
	t.Helper()
	type q struct {
		Stock *string `json:"stock"`
		Web   *string `json:"web"`
	}
	ptr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	reply := map[string]any{
		"topic":              "test topic",
		"forbidden_entities": []string{"Rival Corp"},
		"fallback_prompt":    "a calm office at dawn",
		"visual_style":       "editorial",
	}
	if entity != "" {
		reply["main_entity"] = entity
	} else {
		reply["main_entity"] = nil
	}
	if threshold != nil {
		reply["accept_threshold"] = *threshold
	}
	qs := make([]q, len(queries))
	for i, v := range queries {
		qs[i] = q{Stock: ptr(v.StockQuery), Web: ptr(v.WebQuery)}
	}
	reply["queries"] = qs
	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("marshal plan: %v", err)
	}
	return string(data)
}

func newTestPicker(t *testing.T, model LanguageModel, gen ImageGenerator, sources ...Source) *Picker {
	t.Helper()
	p, err := New(Config{Model: model, Generator: gen, Sources: sources})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}
