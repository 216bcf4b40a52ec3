package coverpick

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	unsplashBaseURL = "https://api.unsplash.com"
	pexelsBaseURL   = "https://api.pexels.com"
)

// UnsplashSource searches Unsplash landscape photos.
type UnsplashSource struct {
	AccessKey  string
	BaseURL    string       // default: https://api.unsplash.com
	HTTPClient *http.Client // default: http.DefaultClient
}

func (s *UnsplashSource) Kind() SourceKind { return KindStockA }
func (s *UnsplashSource) Enabled() bool    { return s.AccessKey != "" }

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
			Full    string `json:"full"`
		} `json:"urls"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"results"`
}

// Search queries /search/photos.
func (s *UnsplashSource) Search(ctx context.Context, query string) ([]Candidate, error) {
	base := s.BaseURL
	if base == "" {
		base = unsplashBaseURL
	}
	q := url.Values{
		"query":       {query},
		"per_page":    {strconv.Itoa(stockPageSize)},
		"orientation": {"landscape"},
	}
	header := http.Header{
		"Authorization":  {"Client-ID " + s.AccessKey},
		"Accept-Version": {"v1"},
	}

	var resp unsplashResponse
	if err := getJSON(ctx, clientOrDefault(s.HTTPClient), base+"/search/photos?"+q.Encode(), header, &resp); err != nil {
		return nil, fmt.Errorf("unsplash: %w", err)
	}

	out := make([]Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		img := r.URLs.Regular
		if img == "" {
			img = r.URLs.Full
		}
		if img == "" {
			continue
		}
		out = append(out, Candidate{
			URL:         img,
			Kind:        KindStockA,
			Attribution: "Photo by " + r.User.Name + " on Unsplash",
			PageURL:     r.Links.HTML,
		})
	}
	return out, nil
}

// PexelsSource searches Pexels landscape photos.
type PexelsSource struct {
	APIKey     string
	BaseURL    string       // default: https://api.pexels.com
	HTTPClient *http.Client // default: http.DefaultClient
}

func (s *PexelsSource) Kind() SourceKind { return KindStockB }
func (s *PexelsSource) Enabled() bool    { return s.APIKey != "" }

type pexelsResponse struct {
	Photos []struct {
		URL          string `json:"url"`
		Photographer string `json:"photographer"`
		Src          struct {
			Large2x   string `json:"large2x"`
			Landscape string `json:"landscape"`
			Original  string `json:"original"`
		} `json:"src"`
	} `json:"photos"`
}

// Search queries /v1/search.
func (s *PexelsSource) Search(ctx context.Context, query string) ([]Candidate, error) {
	base := s.BaseURL
	if base == "" {
		base = pexelsBaseURL
	}
	q := url.Values{
		"query":       {query},
		"per_page":    {strconv.Itoa(stockPageSize)},
		"orientation": {"landscape"},
	}

	var resp pexelsResponse
	if err := getJSON(ctx, clientOrDefault(s.HTTPClient), base+"/v1/search?"+q.Encode(), http.Header{"Authorization": {s.APIKey}}, &resp); err != nil {
		return nil, fmt.Errorf("pexels: %w", err)
	}

	out := make([]Candidate, 0, len(resp.Photos))
	for _, p := range resp.Photos {
		img := firstNonEmpty(p.Src.Large2x, p.Src.Landscape, p.Src.Original)
		if img == "" {
			continue
		}
		out = append(out, Candidate{
			URL:         img,
			Kind:        KindStockB,
			Attribution: "Photo by " + p.Photographer + " on Pexels",
			PageURL:     p.URL,
		})
	}
	return out, nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
