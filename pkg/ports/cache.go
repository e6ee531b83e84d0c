package ports

import (
	"context"

	"github.com/aretw0/hsmgen/pkg/domain"
)

// ModelCache stores the diagrams extracted from one input, keyed by a digest
// of the input text and the parser options.
type ModelCache interface {
	// Get returns the cached diagrams.
	// Returns domain.ErrCacheMiss if the key is unknown or expired.
	Get(ctx context.Context, key string) ([]*domain.Diagram, error)

	// Put stores diagrams under key, replacing any previous entry.
	Put(ctx context.Context, key string, diagrams []*domain.Diagram) error

	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the live keys.
	List(ctx context.Context) ([]string, error)
}
