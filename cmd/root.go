package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ncc-airhealth/korea-geovariable/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geovar",
	Short: "Geospatial variable computation for Korean health studies",
	Long:  "Computes border- and point-based geographic variables (emissions, land use, distances, facility counts) from PostGIS, served over HTTP or run as batch exports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
