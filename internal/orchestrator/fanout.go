package orchestrator

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of concurrent work. Run must write its output to a slot
// owned by the caller; FanOut never inspects results.
type Task struct {
	// Section identifies the task in progress events (usually a file path).
	Section string

	Run func(ctx context.Context) error
}

// FanOut runs tasks concurrently under a worker limit and reports progress.
// A failing task does not cancel its siblings; context cancellation skips
// every task that has not started yet.
type FanOut struct {
	limit      int
	onProgress func(ProgressEvent)
}

// NewFanOut creates a FanOut running at most limit tasks at once.
// onProgress is called from each goroutine; it may be nil.
func NewFanOut(limit int, onProgress func(ProgressEvent)) *FanOut {
	if limit <= 0 {
		limit = 1
	}
	return &FanOut{limit: limit, onProgress: onProgress}
}

// Run dispatches every task and waits for them. It returns ctx.Err() when
// the context ended before all tasks ran, otherwise the joined task errors.
func (f *FanOut) Run(ctx context.Context, runID string, stage Stage, tasks []Task) error {
	var g errgroup.Group
	g.SetLimit(f.limit)

	var (
		mu   sync.Mutex
		errs []error
	)

	for _, task := range tasks {
		f.emit(ProgressEvent{RunID: runID, Stage: stage, Section: task.Section, Status: ProgressPending})
	}

	for _, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				f.emit(ProgressEvent{RunID: runID, Stage: stage, Section: task.Section, Status: ProgressFailed, Message: "skipped: " + err.Error()})
				return nil
			}
			f.emit(ProgressEvent{RunID: runID, Stage: stage, Section: task.Section, Status: ProgressWorking})

			if err := task.Run(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				f.emit(ProgressEvent{RunID: runID, Stage: stage, Section: task.Section, Status: ProgressFailed, Message: err.Error()})
				return nil
			}
			f.emit(ProgressEvent{RunID: runID, Stage: stage, Section: task.Section, Status: ProgressComplete})
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (f *FanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
