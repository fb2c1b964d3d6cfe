package border

import (
	"context"
	"fmt"

	"github.com/ncc-airhealth/korea-geovariable/internal/db"
	"github.com/ncc-airhealth/korea-geovariable/internal/frame"
)

func init() {
	register("rail", func(bt Type, year int) Calculator {
		return &RailCalculator{bt: bt, year: year}
	})
}

// RailCalculator sums the length of rail lines intersecting each region.
type RailCalculator struct {
	bt   Type
	year int
}

func (c *RailCalculator) Name() string { return "rail" }

func (c *RailCalculator) ValidYears() []int { return []int{2000, 2005, 2010, 2015, 2020} }

func (c *RailCalculator) Calculate(ctx context.Context, pool db.Pool) (*frame.Frame, error) {
	if err := validateYear(c.year, c.ValidYears()); err != nil {
		return nil, err
	}
	tbl := TableFor(c.bt, c.year)

	sql := fmt.Sprintf(`
		WITH rail_1year AS ( SELECT * FROM rails WHERE year = %[3]d )
		SELECT
			b.%[1]s AS %[1]s,
			COALESCE(SUM(ST_Length(ST_Intersection(r.geometry, b.geom))), 0) AS rail_length
		FROM
			%[2]s AS b
			LEFT JOIN rail_1year r ON ST_Intersects(b.geom, r.geometry)
		GROUP BY
			b.%[1]s
		ORDER BY
			b.%[1]s`,
		tbl.CodeColumn, tbl.Name, c.year)

	return queryFrame(ctx, pool, c.Name(), tbl.CodeColumn, sql)
}
