package coverpick

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Picker runs the image acquisition waterfall. It is safe for concurrent
// use; every Pick gets its own ledger.
type Picker struct {
	cfg    Config
	rounds []int // threshold delta per round, applied in order
}

// New validates cfg and fills defaults.
func New(cfg Config) (*Picker, error) {
	if cfg.Model == nil {
		return nil, ErrNoModel
	}
	cfg.defaults()
	return &Picker{cfg: cfg, rounds: []int{0, -1, -2}}, nil
}

// Result is an accepted header image and what it cost to find.
type Result struct {
	RequestID string          `json:"request_id"`
	Topic     string          `json:"topic"`
	Winner    ScoredCandidate `json:"winner"`
	Round     int             `json:"round"`     // 1-based; 0 for the generative fallback
	Threshold int             `json:"threshold"` // effective threshold of the winning round
	Gated     bool            `json:"gated"`     // false for generated images
	Cost      CostSummary     `json:"cost"`
}

// roundStrategy is one step of the waterfall.
type roundStrategy struct {
	index     int
	variant   QueryVariant
	threshold int
}

// strategies pairs the intent's query variants with decaying thresholds.
// Missing variants become empty rounds so the decay stays continuous.
func (p *Picker) strategies(in *Intent) []roundStrategy {
	out := make([]roundStrategy, len(p.rounds))
	for i, delta := range p.rounds {
		var v QueryVariant
		if i < len(in.Queries) {
			v = in.Queries[i]
		}
		out[i] = roundStrategy{
			index:     i + 1,
			variant:   v,
			threshold: clampScale(in.AcceptThreshold + delta),
		}
	}
	return out
}

// Pick plans the post, runs the retrieval rounds and falls back to generation.
func (p *Picker) Pick(ctx context.Context, postText string) (*Result, error) {
	res, _, err := p.PickWithCost(ctx, postText)
	return res, err
}

// PickWithCost is Pick that also returns the finalized cost on failure.
func (p *Picker) PickWithCost(ctx context.Context, postText string) (*Result, CostSummary, error) {
	reqID := uuid.NewString()
	log := slog.With("request_id", reqID)
	ledger := NewLedger(p.cfg.Pricing)
	ctx = WithLedger(ctx, ledger)

	intent, err := p.Plan(ctx, postText)
	if err != nil {
		log.Error("coverpick: planning failed", "error", err.Error())
		return nil, ledger.Summary(), err
	}
	log.Info("coverpick: planned", "topic", intent.Topic, "entity", intent.MainEntity,
		"threshold", intent.AcceptThreshold, "rounds", len(intent.Queries))

	winner, round, threshold := p.runRounds(ctx, log, intent)
	if winner == nil {
		log.Info("coverpick: rounds exhausted, generating")
		winner, err = p.Generate(ctx, intent.FallbackPrompt, intent.StyleHint)
		if err != nil {
			log.Error("coverpick: generative fallback failed", "error", err.Error())
			return nil, ledger.Summary(), fmt.Errorf("%w: %w", ErrAllImageSourcesFailed, err)
		}
	}

	res := &Result{
		RequestID: reqID,
		Topic:     intent.Topic,
		Winner:    *winner,
		Round:     round,
		Threshold: threshold,
		Gated:     round > 0,
		Cost:      ledger.Summary(),
	}
	log.Info("coverpick: accepted", "source", res.Winner.Kind, "round", res.Round,
		"score", res.Winner.Score, "cost_usd", res.Cost.TotalUSD)
	return res, res.Cost, nil
}

// runRounds executes the retrieval rounds in order and stops at the first
// winner. It returns nil when no round produced one.
func (p *Picker) runRounds(ctx context.Context, log *slog.Logger, in *Intent) (*ScoredCandidate, int, int) {
	for _, st := range p.strategies(in) {
		rlog := log.With("round", st.index, "threshold", st.threshold)

		batch := p.assembleRound(ctx, rlog, st.variant)
		if len(batch) == 0 {
			rlog.Info("coverpick: round produced no candidates")
			continue
		}

		scored := p.judgeBatch(ctx, rlog, st.index, batch, in)
		if best := pickBestFromBatch(scored, st.threshold); best != nil {
			return best, st.index, st.threshold
		}
		rlog.Info("coverpick: no winner", "candidates", len(batch), "judged", len(scored))
	}
	return nil, 0, 0
}
