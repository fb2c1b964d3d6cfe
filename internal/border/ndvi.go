package border

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("ndvi", func(bt Type, year int) Calculator {
		return &NdviCalculator{bt: bt, year: year}
	})
}

// NdviCalculator clips the NDVI raster to each region and summarizes the
// pixel values. PostGIS returns the summary as one composite string per
// region, which gets split into count/sum/mean/std/min/max columns.
type NdviCalculator struct {
	bt   Type
	year int
}

func (c *NdviCalculator) Name() string { return "ndvi" }

func (c *NdviCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *NdviCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sql := fmt.Sprintf(`
		WITH ndvi_merged AS (
			SELECT
				b.%[1]s AS %[1]s,
				ST_Union(ST_Clip(n.rast, b.geom)) AS clipped_rast
			FROM
				%[2]s AS b,
				ndvi AS n
			WHERE
				n.year = %[3]d
				AND ST_Intersects(n.rast, b.geom)
			GROUP BY
				b.%[1]s
		)
		SELECT
			nm.%[1]s AS %[1]s,
			ST_SummaryStats(nm.clipped_rast, 1, TRUE)::text AS stats
		FROM ndvi_merged AS nm`,
		tbl.CodeColumn, tbl.Name, c.year)

	raw, err := queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
	if err != nil {
		return nil, err
	}
	return expandStats(raw, tbl.CodeColumn, "ndvi")
}

// expandStats replaces the composite "stats" column with one column per
// summary statistic, prefixed by label.
func expandStats(raw *frame.Frame, key, label string) (*frame.Frame, error) {
	out := frame.New(key)
	for _, stat := range frame.StatLabels {
		out.AddColumn(fmt.Sprintf("%s_%s", label, stat))
	}

	for i := 0; i < raw.Len(); i++ {
		src := raw.Row(i)
		stats, ok := src["stats"].(string)
		if !ok {
			return nil, eris.Errorf("border: %s row %d has no summary stats string", label, i)
		}
		parts, err := frame.SplitStats(stats)
		if err != nil {
			return nil, eris.Wrapf(err, "border: %s stats", label)
		}
		row := map[string]any{key: src[key]}
		for si, stat := range frame.StatLabels {
			row[fmt.Sprintf("%s_%s", label, stat)] = frame.StatValue(parts[si])
		}
		if err := out.Append(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}
