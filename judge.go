package coverpick

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// JudgePrompt is the system guide for vision scoring. The real-photo bonus
// is guidance for the model only; no code adjusts the returned score.
const JudgePrompt = `You are the photo editor choosing a header image for a social post.
You will see one candidate image and the post context. Score it and answer with
ONE JSON object, no prose:

{"score": 1-10, "rationale": "one sentence", "violates_brand_safety": true|false}

Scoring:
- 9-10: clearly about the topic, high quality, no distracting text.
- 6-8: relevant and usable.
- 3-5: loosely related or mediocre quality.
- 1-2: unrelated, broken, or unusable.
- +1 if it is a real photo of the named entity (its office, product, people at work), max 10.
- Deduct heavily for visible watermarks, large text overlays, collages, memes or screenshots.

violates_brand_safety is true when the image shows or prominently features any
forbidden entity (logo, product, storefront, name), contains offensive, violent
or sexual content, or would embarrass the named entity.`

const judgeMaxTokens = 300

// previewWidth is the width images are downscaled to before judging.
const previewWidth = 1024

type judgeReply struct {
	Score     *int   `json:"score"`
	Rationale string `json:"rationale"`
	Violates  bool   `json:"violates_brand_safety"`
}

// judgeContext renders the topical and brand-safety context for one intent.
func judgeContext(in *Intent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	if in.MainEntity != "" {
		fmt.Fprintf(&b, "Named entity: %s\n", in.MainEntity)
	} else {
		b.WriteString("Named entity: none\n")
	}
	if len(in.ForbiddenEntities) > 0 {
		fmt.Fprintf(&b, "Forbidden entities: %s\n", strings.Join(in.ForbiddenEntities, ", "))
	} else {
		b.WriteString("Forbidden entities: none\n")
	}
	if in.StyleHint != "" {
		fmt.Fprintf(&b, "Intended visual theme: %s\n", in.StyleHint)
	}
	return b.String()
}

// score judges one candidate. Any failure (download, model, parse) is
// returned so the caller can drop the candidate.
func (p *Picker) score(ctx context.Context, cand Candidate, in *Intent) (ScoredCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.JudgeTimeout)
	defer cancel()

	img, err := p.preview(ctx, cand.URL)
	if err != nil {
		return ScoredCandidate{}, fmt.Errorf("judge: preview: %w", err)
	}

	resp, err := p.cfg.Model.Complete(ctx, CompletionRequest{
		System:          JudgePrompt,
		Prompt:          judgeContext(in) + fmt.Sprintf("Image source: %s (%s)\n", cand.Kind, cand.Attribution),
		MaxOutputTokens: judgeMaxTokens,
		Image:           img,
	})
	if err != nil {
		return ScoredCandidate{}, fmt.Errorf("%w: judge: %w", ErrUpstream, err)
	}

	var reply judgeReply
	if err := parseModelJSON(resp.Text, &reply); err != nil {
		return ScoredCandidate{}, fmt.Errorf("judge: %w", err)
	}
	if reply.Score == nil {
		return ScoredCandidate{}, fmt.Errorf("judge: %w: missing score", ErrUpstreamParse)
	}
	LedgerFromContext(ctx).AddTokens(OpVisionScoring, resp.InputTokens, resp.OutputTokens)

	return ScoredCandidate{
		Candidate:           cand,
		Score:               clampScale(*reply.Score),
		Rationale:           strings.TrimSpace(reply.Rationale),
		ViolatesBrandSafety: reply.Violates,
	}, nil
}

// preview downloads the candidate and downscales it to a JPEG for the model.
// Undecodable images are sent as downloaded.
func (p *Picker) preview(ctx context.Context, rawURL string) (*ImageInput, error) {
	r, err := Download(ctx, p.cfg.HTTPClient, rawURL, DownloadOpts{
		UserAgent: p.cfg.UserAgent,
		Timeout:   p.cfg.JudgeTimeout,
	})
	if err != nil {
		return nil, err
	}

	img, err := decodeImage(r.Data)
	if err != nil {
		return &ImageInput{Data: r.Data, MIMEType: r.MIMEType}, nil
	}
	data, err := encodeJPEG(scaleToWidth(img, previewWidth), 85)
	if err != nil {
		return &ImageInput{Data: r.Data, MIMEType: r.MIMEType}, nil
	}
	return &ImageInput{Data: data, MIMEType: "image/jpeg"}, nil
}

// judgeBatch scores every candidate concurrently. Failed candidates are
// logged and left out; survivors keep batch order.
func (p *Picker) judgeBatch(ctx context.Context, log *slog.Logger, round int, batch []Candidate, in *Intent) []ScoredCandidate {
	results := settleAll(ctx, len(batch), p.cfg.OnPanic, func(ctx context.Context, i int) (ScoredCandidate, error) {
		return p.score(ctx, batch[i], in)
	})

	scored := make([]ScoredCandidate, 0, len(batch))
	for i, r := range results {
		if p.cfg.OnJudgment != nil {
			p.cfg.OnJudgment(JudgmentEvent{
				Round:     round,
				URL:       batch[i].URL,
				Kind:      batch[i].Kind,
				Score:     r.Value.Score,
				Violation: r.Value.ViolatesBrandSafety,
				Err:       r.Err,
			})
		}
		if r.Err != nil {
			level := slog.LevelWarn
			if errors.Is(r.Err, context.Canceled) {
				level = slog.LevelDebug
			}
			log.Log(ctx, level, "coverpick: judge failed, candidate dropped", "url", batch[i].URL, "error", r.Err.Error())
			continue
		}
		log.Debug("coverpick: judged", "url", r.Value.URL, "score", r.Value.Score,
			"violation", r.Value.ViolatesBrandSafety, "rationale", r.Value.Rationale)
		scored = append(scored, r.Value)
	}
	return scored
}

// pickBestFromBatch drops brand-safety violators, stable-sorts the rest by
// score and accepts the top one only if it reaches threshold.
func pickBestFromBatch(batch []ScoredCandidate, threshold int) *ScoredCandidate {
	safe := make([]ScoredCandidate, 0, len(batch))
	for _, c := range batch {
		if !c.ViolatesBrandSafety {
			safe = append(safe, c)
		}
	}
	if len(safe) == 0 {
		return nil
	}

	sort.SliceStable(safe, func(i, j int) bool {
		return safe[i].Score > safe[j].Score
	})

	best := safe[0]
	if best.Score < threshold {
		return nil
	}
	return &best
}
