package backend

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes successful completions keyed by prompt and Params. A size
// of zero or less disables caching. Only useful with low temperatures or
// for repeated identical requests, since it makes output deterministic.
func Cache(size int) Middleware {
	return func(next TextBackend) TextBackend {
		if size <= 0 {
			return next
		}
		c, err := lru.New[string, string](size)
		if err != nil {
			return next
		}
		return &cached{next: next, lru: c}
	}
}

type cached struct {
	next TextBackend
	lru  *lru.Cache[string, string]
}

func (c *cached) Name() string { return c.next.Name() }

func (c *cached) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	key := cacheKey(prompt, p)
	if out, ok := c.lru.Get(key); ok {
		return out, nil
	}
	out, err := c.next.Generate(ctx, prompt, p)
	if err != nil {
		return "", err
	}
	c.lru.Add(key, out)
	return out, nil
}

func cacheKey(prompt string, p Params) string {
	return fmt.Sprintf("%d|%g|%g|%d|%s\x00%s", p.MaxTokens, p.Temperature, p.TopP, p.TopK, strings.Join(p.Stop, "\x1f"), prompt)
}
