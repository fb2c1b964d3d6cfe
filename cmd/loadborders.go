package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ncc-airhealth/korea-geovariable/internal/shapeload"
)

var (
	loadDataset string
	loadYear    int
	loadShp     string
	loadReplace bool
)

var loadBordersCmd = &cobra.Command{
	Use:   "load-borders",
	Short: "Load an administrative boundary shapefile into PostGIS",
	Long: `Parses a Korean census boundary shapefile (EPSG:5179) and bulk-copies
its polygons into the matching border table, creating the table and its
spatial index if missing. The sigungu and emd datasets are yearly; jgg
loads into the fixed grid table.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := shapeload.Load(ctx, env.pool, shapeload.LoadOptions{
			Dataset: loadDataset,
			Year:    loadYear,
			ShpPath: loadShp,
			SRID:    cfg.Loader.SRID,
			Replace: loadReplace,
		})
		if err != nil {
			return err
		}

		zap.L().Info("borders loaded",
			zap.String("dataset", loadDataset),
			zap.Int("year", loadYear),
			zap.Int64("rows", n),
		)
		return nil
	},
}

func init() {
	loadBordersCmd.Flags().StringVar(&loadDataset, "dataset", "", "dataset to load (sigungu, emd, jgg)")
	loadBordersCmd.Flags().IntVar(&loadYear, "year", 0, "census year for yearly datasets")
	loadBordersCmd.Flags().StringVar(&loadShp, "shp", "", "path to the source .shp file")
	loadBordersCmd.Flags().BoolVar(&loadReplace, "replace", false, "truncate the table before loading")
	loadBordersCmd.MarkFlagRequired("dataset") //nolint:errcheck
	loadBordersCmd.MarkFlagRequired("shp")     //nolint:errcheck
	rootCmd.AddCommand(loadBordersCmd)
}
