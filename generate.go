package coverpick

import (
	"context"
	"fmt"
	"strings"
)

// GenerativeSize is the requested output size (landscape).
const GenerativeSize = "1792x1024"

// generativeSuffix is appended to every generation prompt and cannot be
// overridden by the planner.
const generativeSuffix = " The image must contain no text, letters or numbers, no logos, " +
	"no watermarks and no people. Landscape 16:9 composition."

const (
	generativeScore     = 10
	generativeRationale = "generated image; not gated by the quality judge"
	generativeCredit    = "AI-generated"
)

// buildGenerativePrompt composes the final prompt for the image generator.
func buildGenerativePrompt(prompt, styleHint string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))
	if styleHint = strings.TrimSpace(styleHint); styleHint != "" {
		b.WriteString(" Style: ")
		b.WriteString(styleHint)
		b.WriteString(".")
	}
	b.WriteString(generativeSuffix)
	return b.String()
}

// Generate synthesizes one image. It either returns a candidate or fails
// outright; the result carries a synthetic top score since it never passes
// through the judge.
func (p *Picker) Generate(ctx context.Context, prompt, styleHint string) (*ScoredCandidate, error) {
	if p.cfg.Generator == nil {
		return nil, fmt.Errorf("generate: no image generator configured")
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.GenerateTimeout)
	defer cancel()

	url, err := p.cfg.Generator.Create(ctx, buildGenerativePrompt(prompt, styleHint), GenerativeSize)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if url == "" {
		return nil, fmt.Errorf("generate: empty image url")
	}
	LedgerFromContext(ctx).AddCall(OpGenerativeImage)

	return &ScoredCandidate{
		Candidate: Candidate{
			URL:         url,
			Kind:        KindGenerative,
			Attribution: generativeCredit,
		},
		Score:     generativeScore,
		Rationale: generativeRationale,
	}, nil
}
