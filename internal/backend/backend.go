// Package backend defines the boundary to the generative text service and
// the adapters and middlewares that sit on it.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// ErrGeneration is the sentinel every backend failure matches via errors.Is.
var ErrGeneration = errors.New("backend: generation failed")

// Params are the sampling parameters for one completion request.
type Params struct {
	MaxTokens   int      `json:"maxTokens"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"topP"`
	TopK        int      `json:"topK"`
	Stop        []string `json:"stop,omitempty"`
}

// DefaultParams mirrors the defaults of a single free-form generation.
func DefaultParams() Params {
	return Params{MaxTokens: 2048, Temperature: 0.7, TopP: 0.95, TopK: 50}
}

// With returns p with max tokens and temperature replaced.
func (p Params) With(maxTokens int, temperature float64) Params {
	p.MaxTokens = maxTokens
	p.Temperature = temperature
	return p
}

// Normalize clamps temperature to [0,1] and fills zero values from
// DefaultParams.
func (p Params) Normalize() Params {
	d := DefaultParams()
	if p.MaxTokens <= 0 {
		p.MaxTokens = d.MaxTokens
	}
	if p.Temperature < 0 {
		p.Temperature = 0
	}
	if p.Temperature > 1 {
		p.Temperature = 1
	}
	if p.TopP <= 0 || p.TopP > 1 {
		p.TopP = d.TopP
	}
	if p.TopK <= 0 {
		p.TopK = d.TopK
	}
	return p
}

// TextBackend is a stateless request/response text completion service.
// Implementations must be safe for concurrent use.
type TextBackend interface {
	Name() string
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}

// Error wraps a failure from a named backend.
type Error struct {
	Backend string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}

// Wrapf returns err as an *Error unless it already is one.
func Wrapf(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	return &Error{Backend: backend, Op: op, Err: err}
}
