package coverpick

import "errors"

var (
	// ErrUpstream is returned when the language model call itself fails.
	ErrUpstream = errors.New("coverpick: upstream model call failed")

	// ErrUpstreamParse is returned when a model reply is not the expected JSON shape.
	ErrUpstreamParse = errors.New("coverpick: upstream reply not parseable")

	// ErrAllImageSourcesFailed is returned when every round found no winner
	// and the generative fallback failed or is not configured.
	ErrAllImageSourcesFailed = errors.New("coverpick: all image sources failed")

	// ErrNoModel is returned by New when Config.Model is nil.
	ErrNoModel = errors.New("coverpick: language model is required")
)
