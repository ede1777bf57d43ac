package app

import (
	"context"
	"sync"
)

// runParallel executes tasks concurrently with at most limit in flight and
// waits for all of them. Tasks must honor ctx themselves; the runner never
// abandons a task mid-flight, matching the rule that aggregation only
// starts once every fetch has returned or timed out.
func runParallel(ctx context.Context, limit int, tasks []func(context.Context)) {
	if limit <= 0 {
		limit = len(tasks)
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(run func(context.Context)) {
			defer func() {
				<-sem
				wg.Done()
			}()
			run(ctx)
		}(task)
	}
	wg.Wait()
}
