package coverpick

import "errors"

// Response is the service boundary shape for one request.
type Response struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	RequestID   string      `json:"request_id,omitempty"`
	Source      SourceKind  `json:"source,omitempty"`
	URL         string      `json:"url,omitempty"`
	Attribution string      `json:"attribution,omitempty"`
	PageURL     string      `json:"page_url,omitempty"`
	Score       *int        `json:"score,omitempty"` // nil for generated images
	Rationale   string      `json:"rationale,omitempty"`
	Topic       string      `json:"topic,omitempty"`
	Round       int         `json:"round,omitempty"`
	Cost        CostSummary `json:"cost"`

	Persisted *PersistedImage `json:"persisted,omitempty"`
}

// NewResponse builds the boundary response. A non-nil err always yields a
// failure response; there is no partial success.
func NewResponse(res *Result, cost CostSummary, err error) Response {
	if err != nil || res == nil {
		return Response{Success: false, Message: failureMessage(err), Cost: cost}
	}

	r := Response{
		Success:     true,
		RequestID:   res.RequestID,
		Source:      res.Winner.Kind,
		URL:         res.Winner.URL,
		Attribution: res.Winner.Attribution,
		PageURL:     res.Winner.PageURL,
		Rationale:   res.Winner.Rationale,
		Topic:       res.Topic,
		Round:       res.Round,
		Cost:        res.Cost,
	}
	if res.Gated {
		score := res.Winner.Score
		r.Score = &score
	}
	return r
}

func failureMessage(err error) string {
	switch {
	case err == nil:
		return "no image selected"
	case errors.Is(err, ErrUpstreamParse):
		return "could not understand the post: the planning model returned malformed output"
	case errors.Is(err, ErrUpstream):
		return "could not understand the post: the planning model is unavailable"
	case errors.Is(err, ErrAllImageSourcesFailed):
		return "no suitable image was found and image generation failed"
	default:
		return err.Error()
	}
}
