package ml

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNoModel is returned by a Registry that has never been given a model.
var ErrNoModel = errors.New("no model loaded")

// Snapshot is one published model together with its version.
type Snapshot struct {
	Model   *Model
	Version uint64
}

// Registry publishes the current model as an immutable snapshot. Readers
// see either the previous or the next model in full, never a mix.
type Registry struct {
	current atomic.Pointer[Snapshot]

	mu      sync.Mutex
	version uint64
}

// NewRegistry returns a registry holding m, which may be nil.
func NewRegistry(m *Model) *Registry {
	r := &Registry{}
	if m != nil {
		r.Swap(m)
	}
	return r
}

// Swap publishes m and returns the snapshot it stored.
func (r *Registry) Swap(m *Model) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version++
	snap := &Snapshot{Model: m, Version: r.version}
	r.current.Store(snap)
	return snap
}

// Current returns the published snapshot, or nil before the first Swap.
func (r *Registry) Current() *Snapshot {
	return r.current.Load()
}

// Predict scores features against a single snapshot.
func (r *Registry) Predict(features []float64) (*Prediction, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, ErrNoModel
	}
	p, err := Predict(snap.Model, features)
	if err != nil {
		return nil, err
	}
	p.ModelVersion = snap.Version
	return p, nil
}
