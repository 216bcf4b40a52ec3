package coverpick

import (
	"context"
	"net/http"
	"time"
)

// DefaultMinImageWidth is the minimum pixel width for web search results
// whose dimensions are reported by the provider.
const DefaultMinImageWidth = 880

const (
	defaultSourceTimeout   = 15 * time.Second
	defaultJudgeTimeout    = 30 * time.Second
	defaultPlannerTimeout  = 30 * time.Second
	defaultGenerateTimeout = 90 * time.Second
)

// ImageInput is an image attached to a multimodal LLM prompt.
// Data takes precedence over URL when both are set.
type ImageInput struct {
	URL      string // data: URI; remote images must be downloaded into Data
	MIMEType string // e.g. "image/jpeg"
	Data     []byte
}

// CompletionRequest is a single LLM call.
type CompletionRequest struct {
	System          string
	Prompt          string
	MaxOutputTokens int
	Image           *ImageInput // optional
}

// Completion is the LLM reply with the token counts reported by the provider.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// LanguageModel abstracts the LLM used by the planner and the judge.
type LanguageModel interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// ImageGenerator abstracts text-to-image synthesis. The returned URL may be
// a data: URI.
type ImageGenerator interface {
	Create(ctx context.Context, prompt, size string) (string, error)
}

// Config holds all dependencies injected by the consumer.
// A Config is read-only once the first Pick starts.
type Config struct {
	Model     LanguageModel  // required: planner and judge
	Generator ImageGenerator // optional: nil = no generative fallback
	Sources   []Source       // stock and web search backends

	HTTPClient *http.Client // optional: client for image downloads (nil = http.DefaultClient)
	UserAgent  string       // default: "Mozilla/5.0 (compatible; go-coverpick/1.0)"

	Pricing Pricing // zero value = DefaultPricing

	// Per-call timeouts. Zero means the package default.
	SourceTimeout   time.Duration // default 15s
	JudgeTimeout    time.Duration // default 30s
	PlannerTimeout  time.Duration // default 30s
	GenerateTimeout time.Duration // default 90s

	// Optional callbacks for metrics/logging.
	OnPanic    func(tag string, r any)
	OnJudgment func(JudgmentEvent) // audit log for every scored candidate
}

// JudgmentEvent records one judge decision.
type JudgmentEvent struct {
	Round     int
	URL       string
	Kind      SourceKind
	Score     int
	Violation bool
	Err       error
}

// defaults fills zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; go-coverpick/1.0)"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Pricing == (Pricing{}) {
		c.Pricing = DefaultPricing
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = defaultSourceTimeout
	}
	if c.JudgeTimeout <= 0 {
		c.JudgeTimeout = defaultJudgeTimeout
	}
	if c.PlannerTimeout <= 0 {
		c.PlannerTimeout = defaultPlannerTimeout
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = defaultGenerateTimeout
	}
}
