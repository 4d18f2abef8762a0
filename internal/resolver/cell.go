package resolver

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// discoverFunc looks up the current substitution for a pattern.
type discoverFunc func(ctx context.Context, pattern string) (string, error)

// memoCell holds one memoized macro substitution. Concurrent misses share a
// single discovery. A discovery that started before an invalidation never
// repopulates the cell.
type memoCell struct {
	pattern string

	mu         sync.Mutex
	value      string
	resolved   bool
	generation uint64

	flights singleflight.Group
}

func newMemoCell(pattern string) *memoCell {
	return &memoCell{pattern: pattern}
}

// get returns the memoized value, running discover on a miss.
func (c *memoCell) get(ctx context.Context, discover discoverFunc) (string, error) {
	c.mu.Lock()
	if c.resolved {
		value := c.value
		c.mu.Unlock()
		return value, nil
	}
	gen := c.generation
	c.mu.Unlock()

	ch := c.flights.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		// a previous flight of this generation may have landed already
		if value, ok := c.peek(); ok {
			return value, nil
		}

		value, err := discover(ctx, c.pattern)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation == gen {
			c.value = value
			c.resolved = true
		}
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// peek returns the memoized value without discovering.
func (c *memoCell) peek() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.resolved
}

// invalidate drops the memoized value.
func (c *memoCell) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = ""
	c.resolved = false
	c.generation++
}
