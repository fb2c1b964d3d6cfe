package border

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("river", func(bt Type, year int) Calculator {
		return &RiverCalculator{bt: bt, year: year}
	})
}

// RiverCalculator sums river surface area intersecting each region.
type RiverCalculator struct {
	bt   Type
	year int
}

func (c *RiverCalculator) Name() string { return "river" }

func (c *RiverCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *RiverCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sql := fmt.Sprintf(`
		SELECT
			b.%[1]s AS %[1]s,
			SUM(COALESCE(ST_Area(ST_Intersection(r.geometry, b.geom)), 0)) AS river_area_sum
		FROM
			%[2]s AS b
			LEFT JOIN river r ON ST_Intersects(b.geom, r.geometry)
		GROUP BY
			b.%[1]s
		ORDER BY
			b.%[1]s`,
		tbl.CodeColumn, tbl.Name)

	return queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
}
