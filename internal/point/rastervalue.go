package point

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("dem_value", func(p Params) Calculator {
		return &RasterValueCalculator{table: "dem", column: "Altitude_k"}
	})
	register("dsm_value", func(p Params) Calculator {
		return &RasterValueCalculator{table: "dsm", column: "Altitude_a"}
	})
}

// RasterValueCalculator samples an elevation raster at each centroid.
// The dem raster carries terrain altitude, the dsm raster surface altitude
// including buildings and canopy. Neither raster is versioned by year.
type RasterValueCalculator struct {
	table  string
	column string
}

func (c *RasterValueCalculator) Name() string      { return c.table + "_value" }
func (c *RasterValueCalculator) ValidYears() []int { return nil }

func (c *RasterValueCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	sql := fmt.Sprintf(`
		SELECT src.tot_reg_cd, ST_Value(dst.rast, 1, src.geom) AS "%s"
		FROM jgg_centroid_adjusted AS src, %s AS dst
		WHERE ST_Intersects(src.geom, dst.rast)
		ORDER BY src.tot_reg_cd
	`, c.column, c.table)
	return queryFrame(ctx, pool, c.Name(), sql)
}
