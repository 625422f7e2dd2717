package backend

import (
	"context"
	"log"
	"time"
)

// Middleware decorates a TextBackend with a cross-cutting concern.
type Middleware func(TextBackend) TextBackend

// Wrap applies middlewares so that the first one is outermost:
// Wrap(inner, A, B) => A(B(inner)).
func Wrap(inner TextBackend, mws ...Middleware) TextBackend {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		out = mws[i](out)
	}
	return out
}

type phaseKey struct{}

// Phase names tagged on the context by the pipeline stages.
const (
	PhasePlanning      = "planning"
	PhaseStructure     = "structure"
	PhaseFile          = "file"
	PhaseRegenerate    = "regenerate"
	PhaseTests         = "tests"
	PhaseDocs          = "docs"
	PhaseOneShot       = "oneshot"
	PhaseImprove       = "improve"
	PhaseGenerateTests = "generate-tests"
	PhaseSingle        = "single"
)

// WithPhase tags ctx with the pipeline phase issuing backend calls.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey{}, phase)
}

// PhaseFrom returns the phase set by WithPhase, or "-".
func PhaseFrom(ctx context.Context) string {
	if p, ok := ctx.Value(phaseKey{}).(string); ok && p != "" {
		return p
	}
	return "-"
}

// -------- Retry with exponential backoff --------

// singleCallPhases have a fixed backend call budget and are never retried:
// planning failures are fatal, file synthesis is bounded by the regeneration
// limit, and test generation is best-effort.
var singleCallPhases = map[string]bool{
	PhasePlanning:   true,
	PhaseFile:       true,
	PhaseRegenerate: true,
	PhaseTests:      true,
}

// Retry calls the backend up to maxAttempts times with exponential backoff
// starting at baseDelay. Calls tagged with a single-call phase go through
// once. Context cancellation stops it immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next TextBackend) TextBackend {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next TextBackend
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }

func (r *retrying) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if singleCallPhases[PhaseFrom(ctx)] {
		return r.next.Generate(ctx, prompt, p)
	}
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Generate(ctx, prompt, p)
		if err == nil {
			return out, nil
		}
		last = err
		if i == r.max-1 {
			break
		}
		t := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return "", last
}

// -------- Logging --------

// WithLogging logs prompt size, latency and errors. A nil logger means
// log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next TextBackend) TextBackend {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next TextBackend
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }

func (l *logging) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	start := time.Now()
	out, err := l.next.Generate(ctx, prompt, p)
	if err != nil {
		l.log.Printf("backend %s (%s): error after %s: %v", l.next.Name(), PhaseFrom(ctx), time.Since(start).Round(time.Millisecond), err)
		return out, err
	}
	l.log.Printf("backend %s (%s): %d bytes in, %d bytes out, %s", l.next.Name(), PhaseFrom(ctx), len(prompt), len(out), time.Since(start).Round(time.Millisecond))
	return out, nil
}

// -------- Parameter normalization --------

// Normalized clamps every request's Params via Params.Normalize.
func Normalized() Middleware {
	return func(next TextBackend) TextBackend {
		return &normalized{next: next}
	}
}

type normalized struct{ next TextBackend }

func (n *normalized) Name() string { return n.next.Name() }

func (n *normalized) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	return n.next.Generate(ctx, prompt, p.Normalize())
}
