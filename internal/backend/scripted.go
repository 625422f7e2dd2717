package backend

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNoScript is returned by Scripted when no rule matches and no default
// reply is set.
var ErrNoScript = errors.New("no scripted reply")

// Rule is one scripted response. Empty matchers match everything.
type Rule struct {
	Phase    string
	Contains string
	Reply    string
	Err      error
	// Times limits how often the rule fires; zero means unlimited.
	Times int
}

// Call records one request seen by Scripted.
type Call struct {
	Phase  string
	Prompt string
	Params Params
}

// Scripted is a deterministic in-process TextBackend. Rules are tried in
// the order they were added; the first match wins.
type Scripted struct {
	mu       sync.Mutex
	name     string
	rules    []*Rule
	fallback *string
	calls    []Call
}

// NewScripted returns an empty Scripted backend.
func NewScripted() *Scripted {
	return &Scripted{name: "scripted"}
}

// On appends a rule.
func (s *Scripted) On(r Rule) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, &r)
	return s
}

// Default sets the reply used when no rule matches.
func (s *Scripted) Default(reply string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &reply
	return s
}

func (s *Scripted) Name() string { return s.name }

func (s *Scripted) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	phase := PhaseFrom(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Phase: phase, Prompt: prompt, Params: p})

	for _, r := range s.rules {
		if r.Times < 0 {
			continue
		}
		if r.Phase != "" && r.Phase != phase {
			continue
		}
		if r.Contains != "" && !strings.Contains(prompt, r.Contains) {
			continue
		}
		if r.Times > 0 {
			r.Times--
			if r.Times == 0 {
				r.Times = -1
			}
		}
		if r.Err != nil {
			return "", &Error{Backend: s.name, Op: "generate", Err: r.Err}
		}
		return r.Reply, nil
	}
	if s.fallback != nil {
		return *s.fallback, nil
	}
	return "", &Error{Backend: s.name, Op: "generate", Err: ErrNoScript}
}

// Calls returns a copy of every recorded request.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of requests tagged with phase. An empty
// phase counts all requests.
func (s *Scripted) CallCount(phase string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if phase == "" {
		return len(s.calls)
	}
	n := 0
	for _, c := range s.calls {
		if c.Phase == phase {
			n++
		}
	}
	return n
}
