package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// DefaultOllamaModel is the instruction-tuned code model used when none is
// configured.
const DefaultOllamaModel = "deepseek-coder:6.7b-instruct"

// Ollama is a TextBackend served by a local or remote Ollama daemon.
type Ollama struct {
	cli   *ollama.Client
	model string
}

// NewOllama connects to host, or to OLLAMA_HOST when host is empty.
func NewOllama(host, model string) (*Ollama, error) {
	if model == "" {
		model = DefaultOllamaModel
	}
	model = strings.TrimPrefix(model, "ollama:")

	if host == "" {
		cli, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("backend: could not create ollama client: %w", err)
		}
		return &Ollama{cli: cli, model: model}, nil
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("backend: invalid ollama host %q: %w", host, err)
	}
	return &Ollama{cli: ollama.NewClient(u, http.DefaultClient), model: model}, nil
}

func (o *Ollama) Name() string { return "ollama:" + o.model }

// Generate issues a single non-streaming raw completion. The prompt is sent
// as-is; the instruction template is applied by Instruct.
func (o *Ollama) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	p = p.Normalize()
	stream := false
	opts := map[string]any{
		"num_predict": p.MaxTokens,
		"temperature": p.Temperature,
		"top_p":       p.TopP,
		"top_k":       p.TopK,
	}
	if len(p.Stop) > 0 {
		opts["stop"] = p.Stop
	}
	req := &ollama.GenerateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Raw:     true,
		Stream:  &stream,
		Options: opts,
	}

	var sb strings.Builder
	err := o.cli.Generate(ctx, req, func(r ollama.GenerateResponse) error {
		sb.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", &Error{Backend: o.Name(), Op: "generate", Err: err}
	}
	return sb.String(), nil
}
