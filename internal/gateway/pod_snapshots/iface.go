package pod_snapshots

import (
	"context"

	"github.com/horockey/kubeping/internal/model"
)

// Gateway fetches one snapshot of the workload pods per call.
// Errors returned by Fetch are always model.FetchError.
type Gateway interface {
	model.MetricsProvider
	Fetch(ctx context.Context) (model.Snapshot, error)
}
