package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ncc-airhealth/korea-geovariable/internal/border"
	"github.com/ncc-airhealth/korea-geovariable/internal/export"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
	"github.com/ncc-airhealth/korea-geovariable/internal/point"
)

var (
	batchBorderType  string
	batchYears       []int
	batchBufferSizes []int
	batchOutDir      string
	batchConcurrency int
	batchCP949       bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <border|point> <variable>",
	Short: "Run one variable across many years and write a CSV per run",
	Long: `Batch runs a single variable for every requested year (and, for
point variables that take one, every requested buffer size) and writes
each result to its own CSV file. A failing combination is logged and
skipped, the rest of the batch proceeds.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, variable := args[0], args[1]

		if len(batchYears) == 0 {
			return eris.New("at least one --year is required")
		}

		outDir := batchOutDir
		if outDir == "" {
			outDir = cfg.Batch.OutputDir
		}
		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		items, err := buildBatchItems(kind, variable, outDir, env)
		if err != nil {
			return err
		}

		results := export.RunBatch(cmd.Context(), items, concurrency, export.CSVOptions{CP949: batchCP949})
		if failed := export.Failed(results); failed > 0 {
			return eris.Errorf("%d of %d batch items failed", failed, len(results))
		}

		zap.L().Info("batch complete",
			zap.String("variable", variable),
			zap.Int("items", len(results)),
			zap.String("out_dir", outDir),
		)
		return nil
	},
}

func buildBatchItems(kind, variable, outDir string, env *appEnv) ([]export.Item, error) {
	var items []export.Item

	switch kind {
	case "border":
		bt, err := border.ParseType(batchBorderType)
		if err != nil {
			return nil, err
		}
		for _, year := range batchYears {
			name := fmt.Sprintf("%s_%s_%d", variable, bt, year)
			year := year
			items = append(items, export.Item{
				Name: name,
				Path: filepath.Join(outDir, name+".csv"),
				Run: func(ctx context.Context) (*frame.Frame, error) {
					calc, err := border.New(variable, bt, year)
					if err != nil {
						return nil, err
					}
					return calc.Calculate(ctx, env.pool)
				},
			})
		}

	case "point":
		buffers := batchBufferSizes
		if len(buffers) == 0 {
			buffers = []int{0}
		}
		for _, year := range batchYears {
			for _, buffer := range buffers {
				name := fmt.Sprintf("%s_%d", variable, year)
				if buffer > 0 {
					name = fmt.Sprintf("%s_%d_%04d", variable, year, buffer)
				}
				params := point.Params{Year: year, BufferSize: buffer}
				items = append(items, export.Item{
					Name: name,
					Path: filepath.Join(outDir, name+".csv"),
					Run: func(ctx context.Context) (*frame.Frame, error) {
						calc, err := point.New(variable, params)
						if err != nil {
							return nil, err
						}
						return calc.Calculate(ctx, env.pool)
					},
				})
			}
		}

	default:
		return nil, eris.Errorf("unknown calculation kind %q, valid kinds are: border, point", kind)
	}

	return items, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchBorderType, "border-type", "sgg", "border type for border variables (sgg, emd, jgg)")
	batchCmd.Flags().IntSliceVar(&batchYears, "year", nil, "reference year, repeatable")
	batchCmd.Flags().IntSliceVar(&batchBufferSizes, "buffer-size", nil, "buffer size in meters, repeatable (point variables)")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "output directory (default from config)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent calculations (default from config)")
	batchCmd.Flags().BoolVar(&batchCP949, "cp949", false, "encode CSV output as CP949 instead of UTF-8")
	rootCmd.AddCommand(batchCmd)
}
