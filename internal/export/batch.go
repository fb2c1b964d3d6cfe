package export

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

// Item is one unit of a batch export: a named calculation plus the file
// it should land in.
type Item struct {
	Name string
	Path string
	Run  func(ctx context.Context) (*frame.Frame, error)
}

// Result records the outcome of one batch item.
type Result struct {
	Name string
	Path string
	Err  error
}

// Failed reports how many items errored.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// RunBatch executes items with bounded concurrency and writes each
// frame to its CSV path. A failing item is recorded and skipped, the
// rest of the batch proceeds.
func RunBatch(ctx context.Context, items []Item, concurrency int, csvOpts CSVOptions) []Result {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = Result{Name: item.Name, Path: item.Path}

			f, err := item.Run(ctx)
			if err != nil {
				zap.L().Warn("export: batch item failed",
					zap.String("item", item.Name),
					zap.Error(err),
				)
				results[i].Err = err
				return nil
			}
			if err := WriteCSVFile(f, item.Path, csvOpts); err != nil {
				zap.L().Warn("export: batch item write failed",
					zap.String("item", item.Name),
					zap.Error(err),
				)
				results[i].Err = err
				return nil
			}

			zap.L().Info("export: batch item done",
				zap.String("item", item.Name),
				zap.String("path", item.Path),
				zap.Int("rows", f.Len()),
			)
			return nil
		})
	}

	g.Wait() //nolint:errcheck

	zap.L().Info("export: batch finished",
		zap.Int("items", len(items)),
		zap.Int("failed", Failed(results)),
	)
	return results
}
