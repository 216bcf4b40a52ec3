package coverpick

// Round count and threshold bounds.
const (
	MaxRounds    = 3
	MinThreshold = 1
	MaxThreshold = 10

	entityThreshold  = 7 // default when the post names a specific entity
	genericThreshold = 6
)

// QueryVariant is one round's pair of queries. An empty field means the
// corresponding source kind sits the round out.
type QueryVariant struct {
	StockQuery string `json:"stock_query,omitempty"`
	WebQuery   string `json:"web_query,omitempty"`
}

// Empty reports whether neither query is present.
func (v QueryVariant) Empty() bool {
	return v.StockQuery == "" && v.WebQuery == ""
}

// Intent is the planner's structured reading of a post. Queries run from
// most specific to most abstract and are consumed in order.
type Intent struct {
	Topic             string
	Queries           []QueryVariant
	MainEntity        string // "" when the post names no specific entity
	ForbiddenEntities []string
	AcceptThreshold   int
	FallbackPrompt    string
	StyleHint         string // "" when the planner gave none
}

// SourceKind identifies where a candidate came from.
type SourceKind string

const (
	KindStockA     SourceKind = "stock-a"
	KindStockB     SourceKind = "stock-b"
	KindWebSearch  SourceKind = "web-search"
	KindGenerative SourceKind = "generative"
)

// priority orders sources for round-robin merging: web results first since
// they are most likely to show the named entity itself.
func (k SourceKind) priority() int {
	switch k {
	case KindWebSearch:
		return 0
	case KindStockA:
		return 1
	case KindStockB:
		return 2
	default:
		return 3
	}
}

// Candidate is an unvalidated image reference. It is never fetched until judged.
type Candidate struct {
	URL         string     `json:"url"`
	Kind        SourceKind `json:"source"`
	Attribution string     `json:"attribution"`
	PageURL     string     `json:"page_url,omitempty"`
}

// ScoredCandidate is a judged candidate.
type ScoredCandidate struct {
	Candidate
	Score               int    `json:"score"`
	Rationale           string `json:"rationale"`
	ViolatesBrandSafety bool   `json:"violates_brand_safety"`
}

func clampScale(n int) int {
	switch {
	case n < MinThreshold:
		return MinThreshold
	case n > MaxThreshold:
		return MaxThreshold
	default:
		return n
	}
}
