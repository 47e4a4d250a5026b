package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/hotspotmap/internal/core/ports"
)

// IngestInput is the input for the ingest workflow.
type IngestInput struct {
	// RequestedBy names the caller in workflow logs.
	RequestedBy string
	// Path is a CSV on the worker's filesystem. Empty uses the worker's
	// configured source.
	Path string
}

// IngestWorkflow checks the source, swaps it into the repository and
// announces the new data. Only paths and summaries pass through history.
// A failed store leaves the previous table in place, so nothing needs undoing.
func IngestWorkflow(ctx workflow.Context, input IngestInput) (*ports.DatasetLoaded, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting ingest workflow", "requestedBy", input.RequestedBy, "path", input.Path)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Read and check the source
	var info *DatasetInfo
	if err := workflow.ExecuteActivity(ctx, "LoadDataset", input.Path).Get(ctx, &info); err != nil {
		return nil, err
	}
	logger.Info("Source checked", "source", info.Source, "rows", info.Rows)

	// Step 2: Replace the stored table
	var loaded *ports.DatasetLoaded
	if err := workflow.ExecuteActivity(ctx, "StoreDataset", input.Path).Get(ctx, &loaded); err != nil {
		return nil, err
	}

	// Step 3: Announce; a lost event only delays cache invalidation
	if err := workflow.ExecuteActivity(ctx, "AnnounceDataset", loaded).Get(ctx, nil); err != nil {
		logger.Warn("announce failed", "error", err)
	}

	logger.Info("Ingest finished", "rows", loaded.Rows)
	return loaded, nil
}
