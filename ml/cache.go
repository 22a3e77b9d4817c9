package ml

import (
	"encoding/binary"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedPredictor memoizes predictions per model version. Entries for an
// older version are never returned once the registry moves on; they age out
// of the LRU.
type CachedPredictor struct {
	registry *Registry
	cache    *lru.Cache[string, *Prediction]
}

// NewCachedPredictor wraps registry with an LRU of the given size.
func NewCachedPredictor(registry *Registry, size int) (*CachedPredictor, error) {
	cache, err := lru.New[string, *Prediction](size)
	if err != nil {
		return nil, err
	}
	return &CachedPredictor{registry: registry, cache: cache}, nil
}

// Predict returns a cached copy when the same features were scored against
// the current model version, and scores them otherwise.
func (c *CachedPredictor) Predict(features []float64) (*Prediction, error) {
	snap := c.registry.Current()
	if snap == nil {
		return nil, ErrNoModel
	}
	key := cacheKey(snap.Version, features)
	if p, ok := c.cache.Get(key); ok {
		return p.Clone(), nil
	}
	p, err := Predict(snap.Model, features)
	if err != nil {
		return nil, err
	}
	p.ModelVersion = snap.Version
	c.cache.Add(key, p.Clone())
	return p, nil
}

// Len reports the number of cached predictions.
func (c *CachedPredictor) Len() int { return c.cache.Len() }

// Purge drops every cached prediction.
func (c *CachedPredictor) Purge() { c.cache.Purge() }

// cacheKey uses exact bit patterns so 0.1+0.2 and 0.3 do not collide.
func cacheKey(version uint64, features []float64) string {
	var b strings.Builder
	b.Grow(8 * (len(features) + 1))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], version)
	b.Write(buf[:])
	for _, x := range features {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		b.Write(buf[:])
	}
	return b.String()
}
