package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/config"
)

// newBackend builds the configured provider and decorates it.
func newBackend(ctx context.Context, cfg *config.ProjectConfig, logger *log.Logger) (backend.TextBackend, error) {
	b, err := provider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Printf("backend: %s", b.Name())
	return decorate(b, cfg, logger), nil
}

func provider(ctx context.Context, cfg *config.ProjectConfig) (backend.TextBackend, error) {
	var b backend.TextBackend
	switch cfg.BackendName() {
	case config.BackendOllama:
		o, err := backend.NewOllama(cfg.OllamaHost, cfg.Model)
		if err != nil {
			return nil, err
		}
		b = o
	case config.BackendGemini:
		key := cfg.GeminiAPIKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		if key == "" {
			key = os.Getenv("GOOGLE_API_KEY")
		}
		g, err := backend.NewGemini(ctx, key, cfg.Model)
		if err != nil {
			return nil, err
		}
		b = g
	case config.BackendScripted:
		b = backend.NewOffline()
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}

	return b, nil
}

// decorate renders every prompt in the instruction template, whatever the
// provider, and wraps it in logging, retry, caching and parameter
// normalization, outermost first.
func decorate(b backend.TextBackend, cfg *config.ProjectConfig, logger *log.Logger) backend.TextBackend {
	return backend.Wrap(backend.Instruct(b),
		backend.WithLogging(logger),
		backend.Retry(cfg.Attempts(), 0),
		backend.Cache(cfg.CacheSize),
		backend.Normalized(),
	)
}
