package coverpick

import (
	"context"
	"log/slog"
	"sort"
)

// maxRoundCandidates caps one round's merged batch.
const maxRoundCandidates = 15

// applicableSources returns the enabled sources that have a query for this
// round, in merge priority order.
func (p *Picker) applicableSources(v QueryVariant) []Source {
	var out []Source
	for _, s := range p.cfg.Sources {
		if s == nil || !s.Enabled() || queryFor(s.Kind(), v) == "" {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind().priority() < out[j].Kind().priority()
	})
	return out
}

// assembleRound fans out to every applicable source concurrently and merges
// the results round-robin. A failing source contributes nothing.
func (p *Picker) assembleRound(ctx context.Context, log *slog.Logger, v QueryVariant) []Candidate {
	sources := p.applicableSources(v)
	if len(sources) == 0 {
		return nil
	}

	results := settleAll(ctx, len(sources), p.cfg.OnPanic, func(ctx context.Context, i int) ([]Candidate, error) {
		src := sources[i]
		ctx, cancel := context.WithTimeout(ctx, p.cfg.SourceTimeout)
		defer cancel()
		return src.Search(ctx, queryFor(src.Kind(), v))
	})

	lists := make([][]Candidate, len(sources))
	for i, r := range results {
		if r.Err != nil {
			log.Warn("coverpick: source search failed", "source", sources[i].Kind(), "error", r.Err.Error())
			continue
		}
		log.Debug("coverpick: source results", "source", sources[i].Kind(), "count", len(r.Value))
		lists[i] = r.Value
	}
	return interleave(lists, maxRoundCandidates)
}

// interleave merges lists round-robin, taking one item from each non-exhausted
// list per step, until all are exhausted or limit items are collected.
func interleave(lists [][]Candidate, limit int) []Candidate {
	var out []Candidate
	for pos := 0; len(out) < limit; pos++ {
		advanced := false
		for _, l := range lists {
			if pos >= len(l) {
				continue
			}
			advanced = true
			out = append(out, l[pos])
			if len(out) == limit {
				return out
			}
		}
		if !advanced {
			break
		}
	}
	return out
}
