package border

import (
	"context"
	"fmt"
	"strings"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

// matter associates an emission table column with its label spelling.
type matter struct {
	Column string
	Label  string
}

// matters is the fixed pollutant set of the national air emission
// inventory, in output column order.
var matters = []matter{
	{"co", "CO"},
	{"nox", "NOx"},
	{"nh3", "NH3"},
	{"voc", "VOC"},
	{"pm10", "PM10"},
	{"sox", "SOx"},
	{"tsp", "TSP"},
}

func init() {
	register("emission", func(bt Type, year int) Calculator {
		return &EmissionCalculator{bt: bt, year: year}
	})
}

// EmissionCalculator totals vector emission inventories (point, line and
// area sources) contained in each region, one column per pollutant.
type EmissionCalculator struct {
	bt   Type
	year int
}

func (c *EmissionCalculator) Name() string { return "emission" }

func (c *EmissionCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *EmissionCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sums := make([]string, len(matters))
	labels := make([]string, len(matters))
	for i, m := range matters {
		sums[i] = fmt.Sprintf("COALESCE(SUM(e.%[1]s), 0) AS %[1]s", m.Column)
		labels[i] = fmt.Sprintf(`sum(%s) AS "EM_%s_%d"`, m.Column, m.Label, c.year)
	}

	// One branch per source geometry table; the outer query folds the three
	// partial sums per region into a single row.
	branches := make([]string, 0, 3)
	for _, src := range []string{"emission_point", "emission_line", "emission_area"} {
		branches = append(branches, fmt.Sprintf(`
			SELECT
				b.%[1]s AS %[1]s,
				'%[3]s' AS tablename,
				%[4]s
			FROM
				%[2]s AS b
				LEFT JOIN "public".%[3]s AS e
					ON ST_Contains(b.geom, e.geometry)
					AND e.year = %[5]d
			GROUP BY
				b.%[1]s`,
			tbl.CodeColumn, tbl.Name, src, strings.Join(sums, ",\n\t\t\t\t"), c.year))
	}

	sql := fmt.Sprintf(`
		WITH tmp AS (%s)
		SELECT
			%s,
			%s
		FROM tmp
		GROUP BY %s
		ORDER BY %s`,
		strings.Join(branches, "\n\t\t\tUNION"),
		tbl.CodeColumn,
		strings.Join(labels, ",\n\t\t\t"),
		tbl.CodeColumn, tbl.CodeColumn)

	return queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
}
