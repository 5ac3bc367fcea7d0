package kubeping

import (
	"context"
)

var _ Discoverer = &Provider{}

// Discoverer is what a host cluster framework polls for its peer list.
type Discoverer interface {
	Discover(ctx context.Context) ([]Member, error)
}
