package rng

import (
	"context"
	"hash/fnv"
	"math/rand"

	"calinfer/ports"
)

// Adapter implements RNGPort with name-derived deterministic streams. Every
// call allocates a fresh generator, so concurrent callers never share a
// rand.Rand.
type Adapter struct{}

// New creates the RNG adapter
func New() *Adapter {
	return &Adapter{}
}

var _ ports.RNGPort = (*Adapter)(nil)

// Stream returns a generator whose seed mixes the base seed with the
// operation name, so distinct operations never share a stream
func (a *Adapter) Stream(ctx context.Context, name string, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	derived := baseSeed ^ int64(h.Sum64())
	return rand.New(rand.NewSource(derived)), nil
}
