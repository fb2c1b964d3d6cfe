package point

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

// shortestDistanceTargets enumerates the feature tables the shortest
// distance family runs against. The rail and subway datasets start in
// 2005, so their 2000 requests fall back to 2005 with a warning.
var shortestDistanceTargets = []struct {
	variable  string
	table     string
	prefix    string
	years     []int
	remap2000 bool
}{
	{"bus_stop_distance", "bus_stop", "D_Bus", []int{2023}, false},
	{"airport_distance", "airport", "D_Airport", []int{2000, 2005, 2010, 2015, 2020}, false},
	{"rail_distance", "rails", "D_Rail", []int{2000, 2005, 2010, 2015, 2020}, true},
	{"rail_station_distance", "railstation", "D_Sub", []int{2000, 2005, 2010, 2015, 2020}, true},
	{"coastline_distance", "coastline", "D_Coast", []int{2000, 2005, 2010, 2015, 2020}, false},
	{"mdl_distance", "mdl", "D_North", []int{2000, 2005, 2010, 2015, 2020}, false},
	{"port_distance", "port", "D_Port", []int{2000, 2005, 2010, 2015, 2020}, false},
	{"mr1_distance", "mr1", "D_MR1", []int{2005, 2010, 2015, 2020}, false},
	{"mr2_distance", "mr2", "D_MR2", []int{2005, 2010, 2015, 2020}, false},
	{"road_distance", "roads", "D_Road", []int{2005, 2010, 2015, 2020}, false},
	{"river_distance", "river", "D_River", []int{2000, 2005, 2010, 2015, 2020}, false},
}

func init() {
	for _, t := range shortestDistanceTargets {
		t := t
		register(t.variable, func(p Params) Calculator {
			return &ShortestDistanceCalculator{
				variable:  t.variable,
				table:     t.table,
				prefix:    t.prefix,
				years:     t.years,
				remap2000: t.remap2000,
				year:      p.Year,
			}
		})
	}
}

// ShortestDistanceCalculator reports the distance from each centroid to
// the nearest feature of one table, as a {prefix}_{year} column.
type ShortestDistanceCalculator struct {
	variable  string
	table     string
	prefix    string
	years     []int
	remap2000 bool
	year      int
}

func (c *ShortestDistanceCalculator) Name() string      { return c.variable }
func (c *ShortestDistanceCalculator) ValidYears() []int { return c.years }

func (c *ShortestDistanceCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	year := c.year
	if c.remap2000 {
		year = remapYear2000(c.variable, year)
	}
	if err := validateYear(year, c.years); err != nil {
		return nil, err
	}
	column := fmt.Sprintf("%s_%d", c.prefix, year)
	sql := fmt.Sprintf(`
		SELECT
			src.tot_reg_cd,
			min(ST_Distance(src.geom, dst.geometry)) AS "%[1]s"
		FROM
			public.jgg_centroid_adjusted AS src
			JOIN public."%[2]s" AS dst ON dst.year = %[3]d
		GROUP BY
			src.tot_reg_cd
		ORDER BY
			src.tot_reg_cd
	`, column, c.table, year)
	return queryFrame(ctx, pool, c.variable, sql)
}
