package coverpick

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const webPageSize = 10 // API maximum

// WebSearchSource queries Google Programmable Search in image mode.
// Every completed call is metered as one webSearch unit on the context ledger.
type WebSearchSource struct {
	APIKey        string
	EngineID      string   // the "cx" parameter
	BaseURL       string   // default: the customsearch service endpoint
	MinImageWidth int      // default: DefaultMinImageWidth
	ExtraBlocked  []string // extra stock domains to drop
	AllowUnsafe   bool     // when true, SafeSearch is not forced on
}

func (s *WebSearchSource) Kind() SourceKind { return KindWebSearch }
func (s *WebSearchSource) Enabled() bool    { return s.APIKey != "" && s.EngineID != "" }

func (s *WebSearchSource) service(ctx context.Context) (*customsearch.Service, error) {
	opts := []option.ClientOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(s.BaseURL))
	}
	return customsearch.NewService(ctx, opts...)
}

// Search runs one image query. Results from stock agencies, logo/banner URLs
// and portrait or undersized images are dropped; known free hosts sort first.
func (s *WebSearchSource) Search(ctx context.Context, query string) ([]Candidate, error) {
	minWidth := int64(s.MinImageWidth)
	if minWidth <= 0 {
		minWidth = DefaultMinImageWidth
	}

	svc, err := s.service(ctx)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	call := svc.Cse.List().
		Context(ctx).
		Cx(s.EngineID).
		Q(query).
		SearchType("image").
		Num(webPageSize).
		ImgSize("xlarge")
	if !s.AllowUnsafe {
		call = call.Safe("active")
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	LedgerFromContext(ctx).AddCall(OpWebSearch)

	type ranked struct {
		cand    Candidate
		license ImageLicense
	}
	var kept []ranked
	for _, it := range resp.Items {
		if it == nil || it.Link == "" || IsLogoOrBanner(strings.ToLower(it.Link)) {
			continue
		}
		img := it.Image
		if img == nil {
			img = &customsearch.ResultImage{}
		}
		lic := CheckLicense(it.Link, img.ContextLink, s.ExtraBlocked)
		if lic == LicenseBlocked {
			slog.Debug("coverpick: web result blocked by license", "url", it.Link)
			continue
		}
		if w, h := img.Width, img.Height; w > 0 && h > 0 && (w < h || w < minWidth) {
			continue
		}
		kept = append(kept, ranked{
			cand: Candidate{
				URL:         it.Link,
				Kind:        KindWebSearch,
				Attribution: it.DisplayLink,
				PageURL:     img.ContextLink,
			},
			license: lic,
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].license < kept[j].license
	})

	out := make([]Candidate, len(kept))
	for i, r := range kept {
		out[i] = r.cand
	}
	return out, nil
}
