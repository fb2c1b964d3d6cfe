package border

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

// rasterEmissionBorderYears maps emission inventory vintages onto the
// nearest available boundary survey year.
var rasterEmissionBorderYears = map[int]int{
	2001: 2000,
	2005: 2005,
	2010: 2010,
	2015: 2015,
	2019: 2020,
}

func init() {
	register("raster_emission", func(bt Type, year int) Calculator {
		return &RasterEmissionCalculator{bt: bt, year: year}
	})
}

// RasterEmissionCalculator sums the rasterized emission inventory per
// region and pollutant. Point, line and area rasters are added cell-wise
// with ST_MapAlgebra before clipping; one query per pollutant, merged wide.
type RasterEmissionCalculator struct {
	bt   Type
	year int
}

func (c *RasterEmissionCalculator) Name() string { return "raster_emission" }

func (c *RasterEmissionCalculator) ValidYears() []int { return []int{2001, 2005, 2010, 2015, 2019} }

func (c *RasterEmissionCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, rasterEmissionBorderYears[c.year])

	frames := make([]*frame.Frame, 0, len(matters))
	for _, m := range matters {
		sql := fmt.Sprintf(`
			WITH tmp1 AS (
				SELECT *
				FROM emission_raster AS e
				WHERE
					e.year = '%[3]d'
					AND e.alias = '%[4]s'
			), tmp2 AS (
				SELECT ST_MapAlgebra(rp, 1, rl, 1, '[rast1] + [rast2]', '32BF'::text) AS rast
				FROM (
					SELECT
						(SELECT rast FROM tmp1 WHERE geom_type = 'point') AS rp,
						(SELECT rast FROM tmp1 WHERE geom_type = 'line') AS rl
				)
			), emission_sum AS (
				SELECT ST_MapAlgebra(rpl, 1, ra, 1, '[rast1] + [rast2]', '32BF'::text) AS rast
				FROM (
					SELECT
						(SELECT rast FROM tmp2) AS rpl,
						(SELECT rast FROM tmp1 WHERE geom_type = 'area') AS ra
				)
			)
			SELECT
				b.%[1]s AS %[1]s,
				( ST_SummaryStats(ST_Clip(es.rast, b.geom), 1) ).sum AS r_emission_%[4]s
			FROM
				%[2]s AS b,
				emission_sum AS es
			WHERE
				ST_Intersects(es.rast, b.geom)`,
			tbl.CodeColumn, tbl.Name, c.year, m.Column)

		f, err := queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frame.MergeAll(frames)
}
