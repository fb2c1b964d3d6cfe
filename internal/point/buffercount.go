package point

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("bus_stop_count", func(p Params) Calculator {
		return &BufferCountCalculator{
			variable: "bus_stop_count",
			table:    "bus_stop",
			prefix:   "C_Bus",
			years:    []int{2023},
			year:     p.Year,
			buffer:   p.BufferSize,
		}
	})
	register("rail_station_count", func(p Params) Calculator {
		return &BufferCountCalculator{
			variable:  "rail_station_count",
			table:     "railstation",
			prefix:    "C_Railstation",
			years:     []int{2000, 2005, 2010, 2015, 2020},
			remap2000: true,
			year:      p.Year,
			buffer:    p.BufferSize,
		}
	})
}

// BufferCountCalculator counts features falling inside the pre-buffered
// circle around each centroid. One output column, named
// {prefix}_{buffer:04d}.
type BufferCountCalculator struct {
	variable  string
	table     string
	prefix    string
	years     []int
	remap2000 bool
	year      int
	buffer    int
}

func (c *BufferCountCalculator) Name() string      { return c.variable }
func (c *BufferCountCalculator) ValidYears() []int { return c.years }

func (c *BufferCountCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	year := c.year
	if c.remap2000 {
		year = remapYear2000(c.variable, year)
	}
	if err := validateYear(year, c.years); err != nil {
		return nil, err
	}
	if err := validateBuffer(c.buffer, BufferSizes); err != nil {
		return nil, err
	}
	column := fmt.Sprintf("%s_%04d", c.prefix, c.buffer)
	sql := fmt.Sprintf(`
		SELECT
			jb.tot_reg_cd,
			COUNT(t.*) AS "%[1]s"
		FROM
			public.jgg_centroid_adjusted_buffered jb
			LEFT JOIN public.%[2]s t
				ON ST_Within(t.geometry, jb.geom_%[3]d)
				AND t.year = %[4]d
		GROUP BY
			jb.tot_reg_cd
	`, column, c.table, c.buffer, year)
	return queryFrame(ctx, pool, c.variable, sql)
}
