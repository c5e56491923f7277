// Package layout measures the rendered height of document blocks.
package layout

import (
	"sync"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/parser/html"
)

// Measurer returns the rendered height of a top-level block in CSS pixels.
type Measurer interface {
	Measure(node *document.Node) (float64, error)
}

// MeasureFunc adapts a function to the Measurer interface
type MeasureFunc func(node *document.Node) (float64, error)

// Measure calls f(node)
func (f MeasureFunc) Measure(node *document.Node) (float64, error) {
	return f(node)
}

// CachedMeasurer memoizes heights by the serialized form of a block, so
// unchanged blocks are not laid out again on every pass.
type CachedMeasurer struct {
	next  Measurer
	mu    sync.RWMutex
	cache map[string]float64
	limit int
}

// NewCachedMeasurer wraps next with a cache of at most limit entries.
// The cache is dropped when it fills up.
func NewCachedMeasurer(next Measurer, limit int) *CachedMeasurer {
	if limit <= 0 {
		limit = 4096
	}
	return &CachedMeasurer{next: next, cache: make(map[string]float64), limit: limit}
}

// Measure returns the cached height or measures and stores it. Failures are
// never cached.
func (c *CachedMeasurer) Measure(node *document.Node) (float64, error) {
	key, err := html.RenderBlock(node)
	if err != nil {
		return c.next.Measure(node)
	}

	c.mu.RLock()
	h, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return h, nil
	}

	h, err = c.next.Measure(node)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	if len(c.cache) >= c.limit {
		c.cache = make(map[string]float64)
	}
	c.cache[key] = h
	c.mu.Unlock()
	return h, nil
}

// Len returns the number of cached heights
func (c *CachedMeasurer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
