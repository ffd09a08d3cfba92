package github

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/runlens/runlens/internal/logging"
)

// PrefetchLogs warms the persistent log cache for the completed jobs of a
// run. Failures are logged and skipped so a single expired log never
// blocks the rest; the caller treats prefetching as best effort.
func (c *Client) PrefetchLogs(ctx context.Context, runID int64, jobs []Job, concurrency int) {
	if c.logs == nil {
		return
	}
	if concurrency <= 0 {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	fetched := 0
	for _, job := range jobs {
		if !job.Completed() {
			continue
		}
		if _, ok, err := c.logs.Get(ctx, c.repo, job.ID); err == nil && ok {
			continue
		}
		fetched++
		g.Go(func() error {
			log, err := c.fetchJobLog(ctx, job.ID)
			if err != nil {
				logging.Warn("prefetch skipped job", "jobID", job.ID, "error", err)
				return nil
			}
			if err := c.logs.Put(ctx, c.repo, runID, job.ID, log); err != nil {
				logging.Warn("prefetch cache write failed", "jobID", job.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if fetched > 0 {
		if err := c.logs.Prune(ctx, c.maxCachedLogs); err != nil {
			logging.Warn("prefetch cache prune failed", "error", err)
		}
		logging.Debug("prefetched job logs", "runID", runID, "count", fetched)
	}
}
