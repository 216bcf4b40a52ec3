package coverpick

import (
	"context"
	"fmt"
	"strings"
)

// maxPostRunes bounds how much of the post is sent to the planner.
const maxPostRunes = 2000

const plannerMaxTokens = 600

// PlannerPrompt is the system guide for keyword extraction.
const PlannerPrompt = `You pick search strategies for the header image of a short social post.
Read the post and answer with ONE JSON object, no prose:

{
  "topic": "3-6 word summary of what the post is about",
  "main_entity": "the specific company, product, person or place the post is about, or null",
  "forbidden_entities": ["competitors or brands that must NOT appear in the image"],
  "queries": [
    {"stock": "most specific stock photo keywords", "web": "most specific web image query, usually naming main_entity"},
    {"stock": "broader keywords", "web": "broader web query or null"},
    {"stock": "abstract visual concept", "web": null}
  ],
  "accept_threshold": 7,
  "fallback_prompt": "a description of a photorealistic image that would illustrate the post",
  "visual_style": "optional style hint such as 'warm editorial photography', or null"
}

Rules:
- Order queries from most specific to most abstract. Give exactly 3.
- accept_threshold is 1-10: use 7 when main_entity is set, 6 otherwise.
- fallback_prompt must not ask for text, logos or recognizable people.`

// planReply is the wire shape of the planner reply.
type planReply struct {
	Topic             string   `json:"topic"`
	MainEntity        *string  `json:"main_entity"`
	ForbiddenEntities []string `json:"forbidden_entities"`
	Queries           []struct {
		Stock *string `json:"stock"`
		Web   *string `json:"web"`
	} `json:"queries"`
	AcceptThreshold *int    `json:"accept_threshold"`
	FallbackPrompt  string  `json:"fallback_prompt"`
	VisualStyle     *string `json:"visual_style"`
}

// Plan turns post text into an Intent. It fails with ErrUpstream when the
// model call fails and ErrUpstreamParse when the reply is malformed.
func (p *Picker) Plan(ctx context.Context, postText string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.PlannerTimeout)
	defer cancel()

	resp, err := p.cfg.Model.Complete(ctx, CompletionRequest{
		System:          PlannerPrompt,
		Prompt:          "Post:\n" + truncateRunes(strings.TrimSpace(postText), maxPostRunes),
		MaxOutputTokens: plannerMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: plan: %w", ErrUpstream, err)
	}
	LedgerFromContext(ctx).AddTokens(OpKeywordExtraction, resp.InputTokens, resp.OutputTokens)

	var reply planReply
	if err := parseModelJSON(resp.Text, &reply); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	in := reply.intent()
	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return in, nil
}

// validate rejects replies that decoded cleanly but carry no plan,
// such as "null" or "{}".
func (in *Intent) validate() error {
	if in.Topic == "" {
		return fmt.Errorf("%w: missing topic", ErrUpstreamParse)
	}
	for _, v := range in.Queries {
		if !v.Empty() {
			return nil
		}
	}
	return fmt.Errorf("%w: no search queries", ErrUpstreamParse)
}

// intent normalizes the reply: exactly MaxRounds variants, defaulted threshold
// and a non-empty fallback prompt.
func (r *planReply) intent() *Intent {
	in := &Intent{
		Topic:          strings.TrimSpace(r.Topic),
		MainEntity:     strOrEmpty(r.MainEntity),
		StyleHint:      strOrEmpty(r.VisualStyle),
		FallbackPrompt: strings.TrimSpace(r.FallbackPrompt),
	}

	for _, e := range r.ForbiddenEntities {
		if e = strings.TrimSpace(e); e != "" {
			in.ForbiddenEntities = append(in.ForbiddenEntities, e)
		}
	}

	in.Queries = make([]QueryVariant, MaxRounds)
	for i := 0; i < MaxRounds && i < len(r.Queries); i++ {
		in.Queries[i] = QueryVariant{
			StockQuery: BuildStockQuery(strOrEmpty(r.Queries[i].Stock)),
			WebQuery:   strOrEmpty(r.Queries[i].Web),
		}
	}

	switch {
	case r.AcceptThreshold != nil:
		in.AcceptThreshold = clampScale(*r.AcceptThreshold)
	case in.MainEntity != "":
		in.AcceptThreshold = entityThreshold
	default:
		in.AcceptThreshold = genericThreshold
	}

	if in.FallbackPrompt == "" {
		in.FallbackPrompt = "A photorealistic editorial image illustrating " + in.Topic
	}
	return in
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	if strings.EqualFold(v, "null") || strings.EqualFold(v, "none") {
		return ""
	}
	return v
}
