package coverpick

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// stockPageSize is the number of results requested from stock providers.
const stockPageSize = 8

const maxAPIResponseBytes = 2 << 20 // 2MB

// Source is a candidate image backend.
type Source interface {
	// Kind identifies the backend and fixes its merge priority.
	Kind() SourceKind
	// Enabled reports whether the backend's credentials are configured.
	Enabled() bool
	// Search returns candidates for query. Implementations do not retry.
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// queryFor returns the query a source of kind k uses from v.
func queryFor(k SourceKind, v QueryVariant) string {
	if k == KindWebSearch {
		return v.WebQuery
	}
	return v.StockQuery
}

// getJSON performs a GET request and decodes a JSON body into dest.
// Non-200 responses are errors.
func getJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxAPIResponseBytes))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxAPIResponseBytes)).Decode(dest)
}

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}
