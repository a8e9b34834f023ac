package common

import (
	"context"
	"fmt"
	"sync"
)

// TaskResult holds the outcome of one task in a concurrent batch.
// Exactly one of Value or Err is meaningful.
type TaskResult[T any] struct {
	Value T
	Err   error
}

// GatherSlice runs all tasks concurrently and returns their results in task
// order. A failing or panicking task fills its own slot with an error and
// never affects its siblings.
func GatherSlice[T any](ctx context.Context, tasks []func(context.Context) (T, error)) []TaskResult[T] {
	results := make([]TaskResult[T], len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func(context.Context) (T, error)) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i].Err = fmt.Errorf("task panicked: %v", r)
				}
			}()
			results[i].Value, results[i].Err = task(ctx)
		}(i, task)
	}
	wg.Wait()

	return results
}

// GatherMap runs all named tasks concurrently and returns a result per name.
// Used for fan-out where each slot carries a differently shaped payload and
// a failed slot must surface as an error marker rather than abort the batch.
func GatherMap(ctx context.Context, tasks map[string]func(context.Context) (any, error)) map[string]TaskResult[any] {
	results := make(map[string]TaskResult[any], len(tasks))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, task := range tasks {
		wg.Add(1)
		go func(name string, task func(context.Context) (any, error)) {
			defer wg.Done()
			var res TaskResult[any]
			defer func() {
				if r := recover(); r != nil {
					res = TaskResult[any]{Err: fmt.Errorf("task panicked: %v", r)}
				}
				mu.Lock()
				results[name] = res
				mu.Unlock()
			}()
			res.Value, res.Err = task(ctx)
		}(name, task)
	}
	wg.Wait()

	return results
}
