package backend

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"
)

// DefaultGeminiModel is used when the gemini backend has no model configured.
const DefaultGeminiModel = "gemini-2.5-flash"

var errEmptyCandidate = errors.New("empty candidate")

// Gemini is a TextBackend over the Gemini API.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a client. An empty apiKey lets the SDK read
// GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, &Error{Backend: "gemini:" + model, Op: "connect", Err: err}
	}
	return &Gemini{cli: cli, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	p = p.Normalize()
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(p.MaxTokens),
		Temperature:     genai.Ptr(float32(p.Temperature)),
		TopP:            genai.Ptr(float32(p.TopP)),
		TopK:            genai.Ptr(float32(p.TopK)),
		StopSequences:   p.Stop,
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		cfg,
	)
	if err != nil {
		return "", &Error{Backend: g.Name(), Op: "generate", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &Error{Backend: g.Name(), Op: "generate", Err: errEmptyCandidate}
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
