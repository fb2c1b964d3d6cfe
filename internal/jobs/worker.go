package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ncc-airhealth/korea-geovariable/internal/validate"
)

// Worker polls the store and executes claimed jobs concurrently.
type Worker struct {
	store        Store
	run          Runner
	concurrency  int
	pollInterval time.Duration
}

// NewWorker builds a worker pool. Concurrency below 1 and a zero poll
// interval fall back to 4 workers polling every second.
func NewWorker(store Store, run Runner, concurrency int, pollInterval time.Duration) *Worker {
	if concurrency < 1 {
		concurrency = 4
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Worker{
		store:        store,
		run:          run,
		concurrency:  concurrency,
		pollInterval: pollInterval,
	}
}

// Start runs the pool until the context is canceled.
func (w *Worker) Start(ctx context.Context) error {
	zap.L().Info("jobs: worker pool starting",
		zap.Int("concurrency", w.concurrency),
		zap.Duration("poll_interval", w.pollInterval),
	)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			w.loop(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for {
			job, err := w.store.ClaimNext(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Error("jobs: claim failed", zap.Error(err))
				break
			}
			if job == nil {
				break
			}
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	start := time.Now()
	zap.L().Info("jobs: running",
		zap.String("task_id", job.ID),
		zap.String("variable", job.Variable),
	)

	result, err := w.run(ctx, job)
	if err != nil {
		zap.L().Error("jobs: failed",
			zap.String("task_id", job.ID),
			zap.String("variable", job.Variable),
			zap.Error(err),
		)
		if ferr := w.store.Fail(ctx, job.ID, FailureMeta(err)); ferr != nil {
			zap.L().Error("jobs: record failure", zap.String("task_id", job.ID), zap.Error(ferr))
		}
		return
	}

	if cerr := w.store.Complete(ctx, job.ID, result); cerr != nil {
		zap.L().Error("jobs: record completion", zap.String("task_id", job.ID), zap.Error(cerr))
		return
	}
	zap.L().Info("jobs: complete",
		zap.String("task_id", job.ID),
		zap.String("variable", job.Variable),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// FailureMeta converts an execution error into the status payload shape.
// Validation failures surface as ValueError so callers can distinguish a
// bad request from a database fault.
func FailureMeta(err error) ErrorMeta {
	excType := "CalculationError"
	if validate.IsValidation(err) {
		excType = "ValueError"
	}
	return ErrorMeta{ExcType: excType, ExcMessage: err.Error()}
}
