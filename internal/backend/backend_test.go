package backend

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Normalize(t *testing.T) {
	p := Params{MaxTokens: 0, Temperature: 1.7, TopP: 0, TopK: -1}.Normalize()
	assert.Equal(t, 2048, p.MaxTokens)
	assert.Equal(t, 1.0, p.Temperature)
	assert.Equal(t, 0.95, p.TopP)
	assert.Equal(t, 50, p.TopK)

	p = Params{Temperature: -0.2}.Normalize()
	assert.Equal(t, 0.0, p.Temperature)

	p = DefaultParams().With(1500, 0.3)
	assert.Equal(t, 1500, p.MaxTokens)
	assert.Equal(t, 0.3, p.Temperature)
	assert.Equal(t, 0.95, p.TopP)
}

func TestError_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf("ollama:x", "generate", cause)

	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ollama:x")

	// Already wrapped errors are not wrapped twice.
	assert.Same(t, err, Wrapf("other", "op", err))
	assert.NoError(t, Wrapf("x", "y", nil))
}

func TestInstruct_FormatsAndExtracts(t *testing.T) {
	s := NewScripted().Default("### Instruction:\nwrite code\n\n### Response:\n  print(1)\n")
	b := Instruct(s)

	out, err := b.Generate(context.Background(), "write code", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "print(1)", out)

	calls := s.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "### Instruction:\nwrite code\n\n### Response:\n", calls[0].Prompt)
}

func TestExtractResponse(t *testing.T) {
	assert.Equal(t, "plain", ExtractResponse("  plain \n"))
	assert.Equal(t, "last", ExtractResponse("### Response: first ### Response:\nlast"))
}

func TestWrap_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next TextBackend) TextBackend {
			return &marking{next: next, f: func() { order = append(order, name) }}
		}
	}
	b := Wrap(NewScripted().Default("ok"), mark("A"), nil, mark("B"))
	_, err := b.Generate(context.Background(), "p", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, order)
}

type marking struct {
	next TextBackend
	f    func()
}

func (m *marking) Name() string { return m.next.Name() }
func (m *marking) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	m.f()
	return m.next.Generate(ctx, prompt, p)
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	s := NewScripted().
		On(Rule{Err: errors.New("boom"), Times: 2}).
		Default("ok")
	b := Wrap(s, Retry(3, time.Millisecond))

	out, err := b.Generate(context.Background(), "p", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, s.CallCount(""))
}

func TestRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	s := NewScripted().On(Rule{Err: errors.New("boom")})
	b := Wrap(s, Retry(2, time.Millisecond))

	_, err := b.Generate(context.Background(), "p", DefaultParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 2, s.CallCount(""))
}

func TestRetry_SkipsSingleCallPhases(t *testing.T) {
	for _, phase := range []string{PhasePlanning, PhaseFile, PhaseRegenerate, PhaseTests} {
		t.Run(phase, func(t *testing.T) {
			s := NewScripted().On(Rule{Err: errors.New("boom")})
			b := Wrap(s, Retry(3, time.Millisecond))

			_, err := b.Generate(WithPhase(context.Background(), phase), "p", DefaultParams())
			require.Error(t, err)
			assert.Equal(t, 1, s.CallCount(phase))
		})
	}

	s := NewScripted().On(Rule{Err: errors.New("boom"), Times: 1}).Default("ok")
	b := Wrap(s, Retry(3, time.Millisecond))
	out, err := b.Generate(WithPhase(context.Background(), PhaseStructure), "p", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, s.CallCount(PhaseStructure))
}

func TestRetry_StopsOnCancel(t *testing.T) {
	s := NewScripted().On(Rule{Err: errors.New("boom")})
	b := Wrap(s, Retry(5, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := b.Generate(ctx, "p", DefaultParams())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, s.CallCount(""))
}

func TestCache_MemoizesSuccesses(t *testing.T) {
	s := NewScripted().
		On(Rule{Contains: "fail", Err: errors.New("boom")}).
		Default("ok")
	b := Wrap(s, Cache(8))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		out, err := b.Generate(ctx, "same", DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	}
	assert.Equal(t, 1, s.CallCount(""))

	// Different params are a different key.
	_, err := b.Generate(ctx, "same", DefaultParams().With(10, 0.1))
	require.NoError(t, err)
	assert.Equal(t, 2, s.CallCount(""))

	// Failures are not cached.
	_, err = b.Generate(ctx, "fail", DefaultParams())
	require.Error(t, err)
	_, err = b.Generate(ctx, "fail", DefaultParams())
	require.Error(t, err)
	assert.Equal(t, 4, s.CallCount(""))
}

func TestCache_DisabledWhenSizeZero(t *testing.T) {
	s := NewScripted().Default("ok")
	b := Wrap(s, Cache(0))
	assert.Same(t, TextBackend(s), b)
}

func TestWithLogging_WritesPhase(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	b := Wrap(NewScripted().Default("out"), WithLogging(logger))

	_, err := b.Generate(WithPhase(context.Background(), PhaseDocs), "prompt", DefaultParams())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "(docs)")
	assert.Contains(t, buf.String(), "6 bytes in")
}

func TestNormalized_ClampsBeforeDispatch(t *testing.T) {
	s := NewScripted().Default("ok")
	b := Wrap(s, Normalized())
	_, err := b.Generate(context.Background(), "p", Params{Temperature: 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Calls()[0].Params.Temperature)
}

func TestScripted_RulesByPhaseAndTimes(t *testing.T) {
	s := NewScripted().
		On(Rule{Phase: PhasePlanning, Reply: "plan", Times: 1}).
		On(Rule{Phase: PhasePlanning, Reply: "plan-again"})
	ctx := WithPhase(context.Background(), PhasePlanning)

	out, err := s.Generate(ctx, "x", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "plan", out)
	out, err = s.Generate(ctx, "x", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "plan-again", out)

	_, err = s.Generate(WithPhase(context.Background(), PhaseDocs), "x", DefaultParams())
	assert.ErrorIs(t, err, ErrNoScript)
	assert.Equal(t, 2, s.CallCount(PhasePlanning))
	assert.Equal(t, 3, s.CallCount(""))
}

func TestScripted_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScripted().Default("ok").Generate(ctx, "x", DefaultParams())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPhaseFrom_Default(t *testing.T) {
	assert.Equal(t, "-", PhaseFrom(context.Background()))
}
