package border

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("topographic_model", func(bt Type, year int) Calculator {
		return &TopographicModelCalculator{bt: bt, year: year}
	})
}

// TopographicModelCalculator summarizes the terrain (dem) and surface (dsm)
// elevation rasters clipped to each region, outer-merged into columns
// dem_count..dem_max and dsm_count..dsm_max.
type TopographicModelCalculator struct {
	bt   Type
	year int
}

func (c *TopographicModelCalculator) Name() string { return "topographic_model" }

func (c *TopographicModelCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *TopographicModelCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	frames := make([]*frame.Frame, 0, 2)
	for _, topo := range []string{"dem", "dsm"} {
		sql := fmt.Sprintf(`
			WITH %[3]s_merged AS (
				SELECT
					b.%[1]s AS %[1]s,
					ST_Union(ST_Clip(t.rast, b.geom)) AS clipped_rast
				FROM
					%[2]s AS b,
					%[3]s AS t
				WHERE
					ST_Intersects(t.rast, b.geom)
				GROUP BY
					b.%[1]s
			)
			SELECT
				%[1]s,
				ST_SummaryStats(clipped_rast, 1, TRUE)::text AS stats
			FROM
				%[3]s_merged`,
			tbl.CodeColumn, tbl.Name, topo)

		raw, err := queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
		if err != nil {
			return nil, err
		}
		f, err := expandStats(raw, tbl.CodeColumn, topo)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frame.MergeAll(frames)
}
