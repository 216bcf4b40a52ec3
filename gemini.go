package coverpick

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultImagenModel = "imagen-4.0-generate-001"
)

// Gemini implements LanguageModel and ImageGenerator on the Gemini API.
type Gemini struct {
	client     *genai.Client
	model      string
	imageModel string
}

// NewGemini creates a Gemini client. Empty model names use the defaults.
func NewGemini(ctx context.Context, apiKey, model, imageModel string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if imageModel == "" {
		imageModel = defaultImagenModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Gemini{client: client, model: model, imageModel: imageModel}, nil
}

// Complete sends one prompt, optionally with an image, and returns the text
// reply with token usage.
func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	parts, err := promptParts(req)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxOutputTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	out := &Completion{Text: resp.Text()}
	if u := resp.UsageMetadata; u != nil {
		out.InputTokens = int(u.PromptTokenCount)
		out.OutputTokens = int(u.CandidatesTokenCount)
	}
	return out, nil
}

// promptParts builds the user parts for req. Images must be inline bytes or
// data: URLs; the API does not fetch arbitrary http(s) URLs.
func promptParts(req CompletionRequest) ([]*genai.Part, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	img := req.Image
	switch {
	case img == nil:
	case len(img.Data) > 0:
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	case isDataURL(img.URL):
		data, mimeType, err := DecodeDataURL(img.URL)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, mimeType))
	case img.URL != "":
		return nil, fmt.Errorf("gemini: image %q must be downloaded first", img.URL)
	}
	return parts, nil
}

// Create generates one image with Imagen and returns it as a data: URL.
func (g *Gemini) Create(ctx context.Context, prompt, size string) (string, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		AspectRatio:      aspectRatio(size),
		PersonGeneration: genai.PersonGenerationDontAllow,
	})
	if err != nil {
		return "", fmt.Errorf("imagen: generate images: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", errors.New("imagen: no image returned")
	}

	img := resp.GeneratedImages[0].Image
	if len(img.ImageBytes) == 0 {
		return "", fmt.Errorf("imagen: empty image (filtered: %q)", resp.GeneratedImages[0].RAIFilteredReason)
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return EncodeDataURL(img.ImageBytes, mimeType), nil
}

// supportedAspects are the ratios Imagen accepts.
var supportedAspects = map[string]float64{
	"1:1":  1,
	"4:3":  4.0 / 3,
	"3:4":  3.0 / 4,
	"16:9": 16.0 / 9,
	"9:16": 9.0 / 16,
}

// aspectRatio maps a "WxH" size to the closest supported aspect ratio.
// Unparseable sizes map to 16:9.
func aspectRatio(size string) string {
	ws, hs, ok := strings.Cut(strings.ToLower(size), "x")
	if !ok {
		return "16:9"
	}
	w, errW := strconv.Atoi(strings.TrimSpace(ws))
	h, errH := strconv.Atoi(strings.TrimSpace(hs))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return "16:9"
	}

	want := float64(w) / float64(h)
	best, bestDiff := "16:9", -1.0
	for _, name := range []string{"1:1", "4:3", "3:4", "16:9", "9:16"} {
		diff := supportedAspects[name] - want
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = name, diff
		}
	}
	return best
}
