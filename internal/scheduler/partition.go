package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunPartitions advances every partition's Scheduler to completion
// concurrently and waits for all of them. Per spec.md §5, each partition
// advances independently and the core relay/reconciliation logic is
// oblivious to the split — this is the only place that split is realized.
//
// golang.org/x/sync/errgroup is one of the teacher's own dependencies; here
// it plays exactly the role it plays in go-ethereum-family code: bounding a
// fan-out of goroutines that share a single error/cancellation path.
func RunPartitions(ctx context.Context, partitions []*Scheduler) error {
	g, _ := errgroup.WithContext(ctx)
	for _, p := range partitions {
		p := p
		g.Go(func() error {
			p.Run()
			return nil
		})
	}
	return g.Wait()
}
