package coverpick

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func urls(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.URL
	}
	return out
}

func named(prefix string, n int) []Candidate {
	out := make([]Candidate, n)
	for i := range out {
		out[i] = Candidate{URL: fmt.Sprintf("%s%d", prefix, i)}
	}
	return out
}

func TestInterleave(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lists [][]Candidate
		limit int
		want  []string
	}{
		{
			name:  "uneven lists",
			lists: [][]Candidate{named("A", 3), named("B", 1)},
			limit: maxRoundCandidates,
			want:  []string{"A0", "B0", "A1", "A2"},
		},
		{
			name:  "three sources",
			lists: [][]Candidate{named("W", 2), named("A", 2), named("B", 2)},
			limit: maxRoundCandidates,
			want:  []string{"W0", "A0", "B0", "W1", "A1", "B1"},
		},
		{
			name:  "nil list skipped",
			lists: [][]Candidate{nil, named("B", 2)},
			limit: maxRoundCandidates,
			want:  []string{"B0", "B1"},
		},
		{
			name:  "limit cuts mid step",
			lists: [][]Candidate{named("A", 3), named("B", 3)},
			limit: 3,
			want:  []string{"A0", "B0", "A1"},
		},
		{
			name:  "all empty",
			lists: [][]Candidate{nil, {}},
			limit: maxRoundCandidates,
			want:  []string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := urls(interleave(tc.lists, tc.limit))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("interleave mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInterleave_Cap(t *testing.T) {
	t.Parallel()

	got := interleave([][]Candidate{named("W", 10), named("A", 8), named("B", 8)}, maxRoundCandidates)
	if len(got) != maxRoundCandidates {
		t.Fatalf("len = %d, want %d", len(got), maxRoundCandidates)
	}
	if got[14].URL != "B4" {
		t.Errorf("last = %s, want B4", got[14].URL)
	}
}

func TestAssembleRound_PriorityAndIsolation(t *testing.T) {
	t.Parallel()

	v := QueryVariant{StockQuery: "office building", WebQuery: "acme headquarters"}
	web := &fakeSource{kind: KindWebSearch, results: map[string][]Candidate{
		"acme headquarters": named("W", 2),
	}}
	stockA := &fakeSource{kind: KindStockA, results: map[string][]Candidate{
		"office building": named("A", 2),
	}}
	stockB := &fakeSource{kind: KindStockB, err: errors.New("rate limited")}
	off := &fakeSource{kind: KindStockB, disabled: true}

	// Registration order deliberately differs from merge priority.
	p := newTestPicker(t, &fakeModel{}, nil, stockB, stockA, off, web)
	got := urls(p.assembleRound(context.Background(), slog.Default(), v))

	if diff := cmp.Diff([]string{"W0", "A0", "W1", "A1"}, got); diff != "" {
		t.Errorf("assembleRound mismatch (-want +got):\n%s", diff)
	}
	if off.calls.Load() != 0 {
		t.Error("disabled source was queried")
	}
	if stockB.calls.Load() != 1 {
		t.Error("failing source should still be queried once")
	}
}

func TestAssembleRound_SkipsSourcesWithoutQuery(t *testing.T) {
	t.Parallel()

	web := &fakeSource{kind: KindWebSearch}
	stock := &fakeSource{kind: KindStockA, results: map[string][]Candidate{"skyline": named("A", 1)}}
	p := newTestPicker(t, &fakeModel{}, nil, web, stock)

	got := p.assembleRound(context.Background(), slog.Default(), QueryVariant{StockQuery: "skyline"})
	if len(got) != 1 || web.calls.Load() != 0 {
		t.Errorf("got %d candidates, web calls %d; want 1 and 0", len(got), web.calls.Load())
	}

	if got := p.assembleRound(context.Background(), slog.Default(), QueryVariant{}); got != nil {
		t.Errorf("empty variant produced %v", got)
	}
}

func TestAssembleRound_RecoversPanickingSource(t *testing.T) {
	t.Parallel()

	var tags []string
	p, err := New(Config{
		Model:   &fakeModel{},
		Sources: []Source{panicSource{}, &fakeSource{kind: KindStockB, results: map[string][]Candidate{"cat": named("B", 1)}}},
		OnPanic: func(tag string, _ any) { tags = append(tags, tag) },
	})
	if err != nil {
		t.Fatal(err)
	}
	got := p.assembleRound(context.Background(), slog.Default(), QueryVariant{StockQuery: "cat"})
	if diff := cmp.Diff([]string{"B0"}, urls(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if len(tags) != 1 {
		t.Errorf("OnPanic called %d times, want 1", len(tags))
	}
}

type panicSource struct{}

func (panicSource) Kind() SourceKind { return KindStockA }
func (panicSource) Enabled() bool    { return true }
func (panicSource) Search(context.Context, string) ([]Candidate, error) {
	panic("boom")
}

func TestUnsplashSource(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/photos" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("query") != "city skyline" || q.Get("per_page") != "8" || q.Get("orientation") != "landscape" {
			t.Errorf("unexpected query %v", q)
		}
		if got := r.Header.Get("Authorization"); got != "Client-ID key123" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": [
			{"urls": {"regular": "https://images.unsplash.com/1"}, "links": {"html": "https://unsplash.com/photos/1"}, "user": {"name": "Ana"}},
			{"urls": {"full": "https://images.unsplash.com/2-full"}, "user": {"name": "Ben"}},
			{"urls": {}, "user": {"name": "Nobody"}}
		]}`)
	}))
	defer srv.Close()

	s := &UnsplashSource{AccessKey: "key123", BaseURL: srv.URL, HTTPClient: srv.Client()}
	if s.Kind() != KindStockA || !s.Enabled() {
		t.Fatalf("kind/enabled = %s/%v", s.Kind(), s.Enabled())
	}
	got, err := s.Search(context.Background(), "city skyline")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []Candidate{
		{URL: "https://images.unsplash.com/1", Kind: KindStockA, Attribution: "Photo by Ana on Unsplash", PageURL: "https://unsplash.com/photos/1"},
		{URL: "https://images.unsplash.com/2-full", Kind: KindStockA, Attribution: "Photo by Ben on Unsplash"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}

	if (&UnsplashSource{}).Enabled() {
		t.Error("source without key should be disabled")
	}
}

func TestPexelsSource(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "pk" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"photos": [
			{"url": "https://www.pexels.com/photo/1", "photographer": "Cy", "src": {"large2x": "https://images.pexels.com/1-l2x", "original": "https://images.pexels.com/1"}},
			{"photographer": "Di", "src": {"landscape": "https://images.pexels.com/2-land"}}
		]}`)
	}))
	defer srv.Close()

	s := &PexelsSource{APIKey: "pk", BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := s.Search(context.Background(), "forest")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []Candidate{
		{URL: "https://images.pexels.com/1-l2x", Kind: KindStockB, Attribution: "Photo by Cy on Pexels", PageURL: "https://www.pexels.com/photo/1"},
		{URL: "https://images.pexels.com/2-land", Kind: KindStockB, Attribution: "Photo by Di on Pexels"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}
}

func TestStockSource_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := (&PexelsSource{APIKey: "k", BaseURL: srv.URL}).Search(context.Background(), "x"); err == nil {
		t.Error("pexels: expected error on 429")
	}
	if _, err := (&UnsplashSource{AccessKey: "k", BaseURL: srv.URL}).Search(context.Background(), "x"); err == nil {
		t.Error("unsplash: expected error on 429")
	}
}

func TestWebSearchSource_Filters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("searchType") != "image" || q.Get("cx") != "cx1" || q.Get("q") != "acme headquarters" || q.Get("safe") != "active" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("key") != "gk" && r.Header.Get("X-Goog-Api-Key") != "gk" {
			t.Errorf("api key not sent: %v", r.URL)
		}
		fmt.Fprint(w, `{"items": [
			{"link": "https://news.example/acme-hq.jpg", "displayLink": "news.example", "image": {"contextLink": "https://news.example/story", "width": 1600, "height": 900}},
			{"link": "https://acme.example/logo.png", "displayLink": "acme.example", "image": {"width": 1200, "height": 600}},
			{"link": "https://www.shutterstock.com/acme.jpg", "displayLink": "shutterstock.com", "image": {"width": 2000, "height": 1000}},
			{"link": "https://blog.example/portrait.jpg", "displayLink": "blog.example", "image": {"width": 900, "height": 1400}},
			{"link": "https://blog.example/narrow.jpg", "displayLink": "blog.example", "image": {"width": 640, "height": 400}},
			{"link": "https://cdn.example/unsized.jpg", "displayLink": "cdn.example", "image": {}},
			{"link": "https://images.unsplash.com/acme.jpg", "displayLink": "unsplash.com", "image": {"width": 1920, "height": 1080}}
		]}`)
	}))
	defer srv.Close()

	s := &WebSearchSource{APIKey: "gk", EngineID: "cx1", BaseURL: srv.URL + "/"}
	ledger := NewLedger(DefaultPricing)
	got, err := s.Search(WithLedger(context.Background(), ledger), "acme headquarters")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	want := []string{
		"https://images.unsplash.com/acme.jpg", // safe host sorts first
		"https://news.example/acme-hq.jpg",
		"https://cdn.example/unsized.jpg",
	}
	if diff := cmp.Diff(want, urls(got)); diff != "" {
		t.Errorf("filtered results mismatch (-want +got):\n%s", diff)
	}
	if got[1].PageURL != "https://news.example/story" || got[1].Attribution != "news.example" {
		t.Errorf("candidate = %+v", got[1])
	}

	u, ok := ledger.Summary().Entry(OpWebSearch)
	if !ok || u.Calls != 1 {
		t.Errorf("webSearch usage = %+v, %v; want 1 call", u, ok)
	}
}

func TestWebSearchSource_Metering(t *testing.T) {
	t.Parallel()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer empty.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusForbidden)
	}))
	defer failing.Close()

	ledger := NewLedger(DefaultPricing)
	ctx := WithLedger(context.Background(), ledger)

	got, err := (&WebSearchSource{APIKey: "k", EngineID: "c", BaseURL: empty.URL + "/"}).Search(ctx, "q")
	if err != nil || len(got) != 0 {
		t.Fatalf("empty search = %v, %v", got, err)
	}
	if _, err := (&WebSearchSource{APIKey: "k", EngineID: "c", BaseURL: failing.URL + "/"}).Search(ctx, "q"); err == nil {
		t.Fatal("expected error on 403")
	}

	u, _ := ledger.Summary().Entry(OpWebSearch)
	if u.Calls != 1 {
		t.Errorf("webSearch calls = %d, want 1 (zero results metered, failures not)", u.Calls)
	}
	if !approxEqual(u.CostUSD, DefaultPricing.WebSearchPerCall) {
		t.Errorf("webSearch cost = %f", u.CostUSD)
	}
}

func TestWebSearchSource_Enabled(t *testing.T) {
	t.Parallel()

	if (&WebSearchSource{APIKey: "k"}).Enabled() {
		t.Error("missing engine id should disable web search")
	}
	if !(&WebSearchSource{APIKey: "k", EngineID: "c"}).Enabled() {
		t.Error("configured web search should be enabled")
	}
}
