package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// Stream creates a deterministic random number generator for a named
	// operation. Streams for distinct names are independent; the same
	// name and base seed always yield the same stream.
	Stream(ctx context.Context, name string, baseSeed int64) (*rand.Rand, error)
}
