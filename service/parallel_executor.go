package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ludo-technologies/treerate/domain"
)

// ParallelExecutorImpl runs tasks on a fixed pool of workers
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration

	// onDone is called after every finished task with the number done so far
	onDone func(done, total int)
}

// NewParallelExecutor creates a parallel executor with one worker per CPU
func NewParallelExecutor() *ParallelExecutorImpl {
	return &ParallelExecutorImpl{
		maxConcurrency: runtime.NumCPU(),
		timeout:        10 * time.Minute,
	}
}

// Execute runs the enabled tasks and waits for them. Task errors are joined;
// cancellation or timeout stops tasks that have not started yet.
func (pe *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	enabled := make([]domain.ExecutableTask, 0, len(tasks))
	for _, task := range tasks {
		if task != nil && task.IsEnabled() {
			enabled = append(enabled, task)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	if pe.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pe.timeout)
		defer cancel()
	}

	workers := pe.maxConcurrency
	if workers <= 0 || workers > len(enabled) {
		workers = len(enabled)
	}

	queue := make(chan domain.ExecutableTask)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		done int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				_, err := task.Execute(ctx)

				mu.Lock()
				if err != nil {
					errs = append(errs, fmt.Errorf("task %s failed: %w", task.Name(), err))
				}
				done++
				if pe.onDone != nil {
					pe.onDone(done, len(enabled))
				}
				mu.Unlock()
			}
		}()
	}

	var cancelled error
feed:
	for _, task := range enabled {
		select {
		case queue <- task:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(queue)
	wg.Wait()

	if cancelled == nil {
		cancelled = ctx.Err()
	}

	if cancelled != nil {
		if errors.Is(cancelled, context.DeadlineExceeded) && pe.timeout > 0 {
			return fmt.Errorf("parallel execution timed out after %v: %w", pe.timeout, cancelled)
		}
		return fmt.Errorf("parallel execution cancelled: %w", cancelled)
	}
	if len(errs) > 0 {
		return fmt.Errorf("parallel execution failed with %d errors: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// SetMaxConcurrency sets the number of workers; zero or less means one per task
func (pe *ParallelExecutorImpl) SetMaxConcurrency(max int) {
	pe.maxConcurrency = max
}

// SetTimeout sets the timeout for all tasks; zero disables it
func (pe *ParallelExecutorImpl) SetTimeout(timeout time.Duration) {
	pe.timeout = timeout
}

// OnTaskDone registers a callback run after each task, serialized across workers
func (pe *ParallelExecutorImpl) OnTaskDone(fn func(done, total int)) {
	pe.onDone = fn
}

// SimpleTask is a basic implementation of ExecutableTask
type SimpleTask struct {
	name    string
	enabled bool
	execute func(context.Context) (interface{}, error)
}

// NewSimpleTask creates a new simple task
func NewSimpleTask(name string, enabled bool, execute func(context.Context) (interface{}, error)) domain.ExecutableTask {
	return &SimpleTask{
		name:    name,
		enabled: enabled,
		execute: execute,
	}
}

// Name returns the name of the task
func (t *SimpleTask) Name() string {
	return t.name
}

// Execute runs the task and returns the result
func (t *SimpleTask) Execute(ctx context.Context) (interface{}, error) {
	if t.execute == nil {
		return nil, fmt.Errorf("task %s has no execute function", t.name)
	}
	return t.execute(ctx)
}

// IsEnabled returns whether the task should be executed
func (t *SimpleTask) IsEnabled() bool {
	return t.enabled
}
